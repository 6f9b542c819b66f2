package calenv

import "time"

// Zone is a monitored location with its own sensor module.
type Zone struct {
	// Name is the module name reported by the sensor service.
	Name string `yaml:"name"`
	// Label prefixes the zone line on the panel.
	Label string `yaml:"label"`
}

type SensorReading struct {
	Temperature Measure[Temperature]
	Humidity    Measure[Humidity]
	CO2         Measure[CO2]
}

func UnavailableReading() SensorReading {
	return SensorReading{}
}

// Readings are indexed by zone name.
type Readings map[string]SensorReading

type AstronomicalEvents struct {
	Sunrise  time.Time
	Sunset   time.Time
	Moonrise time.Time
	// MoonAge is the number of days elapsed since the previous new moon.
	MoonAge float64
}

type DayForecast struct {
	Condition string `json:"condition"`
	MaxC      string `json:"max"`
	MinC      string `json:"min"`
}

type ForecastSummary struct {
	Today    DayForecast `json:"today"`
	Tomorrow DayForecast `json:"tomorrow"`
}

func PlaceholderForecast() ForecastSummary {
	day := DayForecast{Condition: Placeholder, MaxC: Placeholder, MinC: Placeholder}
	return ForecastSummary{Today: day, Tomorrow: day}
}

type ObservationSummary struct {
	TimeLabel    string `json:"time"`
	TemperatureC string `json:"temperature"`
	HumidityPct  string `json:"humidity"`
}

func PlaceholderObservation() ObservationSummary {
	return ObservationSummary{
		TimeLabel:    Placeholder,
		TemperatureC: Placeholder,
		HumidityPct:  Placeholder,
	}
}
