package ephemeris

import (
	"math"
	"time"
)

// SynodicMonth is the mean length of a lunation in days.
const SynodicMonth = 29.530588861

const (
	unixEpochJD = 2440587.5
	// TT - UT, close enough for this century.
	deltaT = 69.0 / 86400.0
)

func julianDay(t time.Time) float64 {
	return float64(t.UnixNano())/float64(24*time.Hour) + unixEpochJD
}

func fromJulianDay(jd float64) time.Time {
	ns := (jd - unixEpochJD) * float64(24*time.Hour)
	return time.Unix(0, int64(math.Round(ns))).UTC()
}

func sin(deg float64) float64 {
	return math.Sin(deg * math.Pi / 180)
}

// newMoon returns the Julian day (UT) of the k-th new moon since
// January 6th 2000, from the periodic terms of J. Meeus, Astronomical
// Algorithms ch. 49. Planetary arguments are neglected.
func newMoon(k float64) float64 {
	T := k / 1236.85
	T2, T3, T4 := T*T, T*T*T, T*T*T*T

	jde := 2451550.09766 + SynodicMonth*k + 0.00015437*T2 - 0.000000150*T3 + 0.00000000073*T4

	E := 1 - 0.002516*T - 0.0000074*T2
	M := 2.5534 + 29.10535670*k - 0.0000014*T2 - 0.00000011*T3
	Mp := 201.5643 + 385.81693528*k + 0.0107582*T2 + 0.00001238*T3 - 0.000000058*T4
	F := 160.7108 + 390.67050284*k - 0.0016118*T2 - 0.00000227*T3 + 0.000000011*T4
	Omega := 124.7746 - 1.56375588*k + 0.0020672*T2 + 0.00000215*T3

	jde += -0.40720*sin(Mp) +
		0.17241*E*sin(M) +
		0.01608*sin(2*Mp) +
		0.01039*sin(2*F) +
		0.00739*E*sin(Mp-M) -
		0.00514*E*sin(Mp+M) +
		0.00208*E*E*sin(2*M) -
		0.00111*sin(Mp-2*F) -
		0.00057*sin(Mp+2*F) +
		0.00056*E*sin(2*Mp+M) -
		0.00042*sin(3*Mp) +
		0.00042*E*sin(M+2*F) +
		0.00038*E*sin(M-2*F) -
		0.00024*E*sin(2*Mp-M) -
		0.00017*sin(Omega) -
		0.00007*sin(Mp+2*M) +
		0.00004*sin(2*Mp-2*F) +
		0.00004*sin(3*M) +
		0.00003*sin(Mp+M-2*F) +
		0.00003*sin(2*Mp+2*F) -
		0.00003*sin(Mp+M+2*F) +
		0.00003*sin(Mp-M+2*F) -
		0.00002*sin(Mp-M-2*F) -
		0.00002*sin(3*Mp+M) +
		0.00002*sin(4*Mp)

	return jde - deltaT
}

// lunation returns the new moons enclosing t: previous <= t < next.
func lunation(t time.Time) (previous, next float64) {
	jd := julianDay(t)
	k := math.Floor((jd - 2451550.09766) / SynodicMonth)
	for newMoon(k) > jd {
		k -= 1
	}
	for newMoon(k+1) <= jd {
		k += 1
	}
	return newMoon(k), newMoon(k + 1)
}

// PreviousNewMoon returns the last new moon at or before t.
func PreviousNewMoon(t time.Time) time.Time {
	previous, _ := lunation(t)
	return fromJulianDay(previous)
}

// MoonAge returns the number of days elapsed since the previous new
// moon. It is always in [0, lunation length).
func MoonAge(t time.Time) float64 {
	previous, _ := lunation(t)
	return julianDay(t) - previous
}
