package calenv

import "time"

// ZoneLine is a zone reading already formatted for the panel.
type ZoneLine struct {
	Zone        Zone   `json:"zone"`
	Temperature string `json:"temperature"`
	Humidity    string `json:"humidity"`
	CO2         string `json:"co2"`
	Alert       bool   `json:"alert"`
}

// DashboardData is everything the panel displays. Every field holds
// either a value or its placeholder.
type DashboardData struct {
	Now         time.Time          `json:"time"`
	Zones       []ZoneLine         `json:"zones"`
	Events      AstronomicalEvents `json:"-"`
	Forecast    ForecastSummary    `json:"forecast"`
	Observation ObservationSummary `json:"observation"`
}

// Aggregate merges the sources outcome into a DashboardData, in the
// order of zones. Failed results are replaced by their placeholders,
// as are zones missing from readings. It never fails.
func Aggregate(zones []Zone,
	readings Result[Readings],
	events AstronomicalEvents,
	forecast Result[ForecastSummary],
	observation Result[ObservationSummary],
	now time.Time) (DashboardData, AlertFlags) {

	perZone, _ := readings.Resolve(nil)
	flags := make(AlertFlags, len(zones))

	data := DashboardData{
		Now:    now,
		Zones:  make([]ZoneLine, 0, len(zones)),
		Events: events,
	}

	for _, z := range zones {
		r, ok := perZone[z.Name]
		if ok == false {
			r = UnavailableReading()
		}
		flags[z.Name] = CO2Alert(r)
		data.Zones = append(data.Zones, ZoneLine{
			Zone:        z,
			Temperature: r.Temperature.Format(),
			Humidity:    r.Humidity.Format(),
			CO2:         r.CO2.Format(),
			Alert:       flags[z.Name],
		})
	}

	data.Forecast, _ = forecast.Resolve(PlaceholderForecast())
	data.Forecast = data.Forecast.normalized()
	data.Observation, _ = observation.Resolve(PlaceholderObservation())
	data.Observation = data.Observation.normalized()

	return data, flags
}

// Alerts lists the raised flags with their level.
func Alerts(zones []Zone, readings Result[Readings]) []Alert {
	perZone, _ := readings.Resolve(nil)
	var res []Alert = nil
	for _, z := range zones {
		r := perZone[z.Name]
		if CO2Alert(r) == false {
			continue
		}
		level, _ := r.CO2.Get()
		res = append(res, Alert{Zone: z.Name, Level: level})
	}
	return res
}

func orPlaceholder(s string) string {
	if len(s) == 0 {
		return Placeholder
	}
	return s
}

func (d DayForecast) normalized() DayForecast {
	return DayForecast{
		Condition: orPlaceholder(d.Condition),
		MaxC:      orPlaceholder(d.MaxC),
		MinC:      orPlaceholder(d.MinC),
	}
}

func (f ForecastSummary) normalized() ForecastSummary {
	return ForecastSummary{Today: f.Today.normalized(), Tomorrow: f.Tomorrow.normalized()}
}

func (o ObservationSummary) normalized() ObservationSummary {
	return ObservationSummary{
		TimeLabel:    orPlaceholder(o.TimeLabel),
		TemperatureC: orPlaceholder(o.TemperatureC),
		HumidityPct:  orPlaceholder(o.HumidityPct),
	}
}
