// Package ephemeris computes the sun and moon events displayed on the
// panel. It performs no I/O.
package ephemeris

import (
	"time"

	"github.com/formicidae-tracker/calenv/internal/calenv"
	"github.com/sixdouglas/suncalc"
)

// Location is the observer position.
type Location struct {
	Name      string
	Latitude  float64
	Longitude float64
	// Elevation of the observer above the horizon, in meters. It
	// advances rises and delays sets.
	Elevation float64
	TimeZone  *time.Location
}

var Tokyo = Location{
	Name:      "Tokyo",
	Latitude:  35.6895,
	Longitude: 139.6917,
	Elevation: 40.0,
	TimeZone:  time.FixedZone("JST", 9*60*60),
}

// searchDays bounds the look-ahead for the next occurrence of an
// event. The moon rises at least once every two days outside polar
// circles.
const searchDays = 3

func (l Location) zone() *time.Location {
	if l.TimeZone == nil {
		return time.UTC
	}
	return l.TimeZone
}

func (l Location) observer() suncalc.Observer {
	return suncalc.Observer{
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
		Height:    l.Elevation,
		Location:  l.zone(),
	}
}

// days returns the local midnight of the day of now and of the
// following days.
func (l Location) days(now time.Time) []time.Time {
	local := now.In(l.zone())
	res := make([]time.Time, 0, searchDays)
	for i := 0; i < searchDays; i++ {
		res = append(res, time.Date(local.Year(), local.Month(), local.Day()+i, 0, 0, 0, 0, l.zone()))
	}
	return res
}

// withinDay rejects the undefined instants produced for events that
// do not occur on a given day (polar day or night).
func withinDay(t, day time.Time) bool {
	if t.IsZero() == true {
		return false
	}
	return t.After(day.Add(-12*time.Hour)) && t.Before(day.Add(36*time.Hour))
}

func (l Location) nextSunEvent(now time.Time, name suncalc.DayTimeName) (time.Time, error) {
	for _, day := range l.days(now) {
		times := suncalc.GetTimesWithObserver(day.Add(12*time.Hour), l.observer())
		t, ok := times[name]
		if ok == false || withinDay(t.Value, day) == false {
			continue
		}
		if t.Value.After(now) == true {
			return t.Value.In(l.zone()), nil
		}
	}
	return time.Time{}, calenv.ComputationFault("no %s at %s within %d days of %s",
		name, l.Name, searchDays, now.Format(time.RFC3339))
}

func (l Location) nextMoonrise(now time.Time) (time.Time, error) {
	for _, day := range l.days(now) {
		times := suncalc.GetMoonTimesWithObserver(day, l.observer())
		if times.AlwaysUp == true || times.AlwaysDown == true || withinDay(times.Rise, day) == false {
			continue
		}
		if times.Rise.After(now) == true {
			return times.Rise.In(l.zone()), nil
		}
	}
	return time.Time{}, calenv.ComputationFault("no moonrise at %s within %d days of %s",
		l.Name, searchDays, now.Format(time.RFC3339))
}

// Compute returns the next sunrise, sunset and moonrise after now, in
// the location time zone, and the current moon age. An error is a
// computation fault and should not be recovered.
func Compute(now time.Time, location Location) (calenv.AstronomicalEvents, error) {
	sunrise, err := location.nextSunEvent(now, suncalc.Sunrise)
	if err != nil {
		return calenv.AstronomicalEvents{}, err
	}
	sunset, err := location.nextSunEvent(now, suncalc.Sunset)
	if err != nil {
		return calenv.AstronomicalEvents{}, err
	}
	moonrise, err := location.nextMoonrise(now)
	if err != nil {
		return calenv.AstronomicalEvents{}, err
	}

	return calenv.AstronomicalEvents{
		Sunrise:  sunrise,
		Sunset:   sunset,
		Moonrise: moonrise,
		MoonAge:  MoonAge(now),
	}, nil
}
