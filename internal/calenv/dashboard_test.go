package calenv_test

import (
	"errors"
	"time"

	"github.com/formicidae-tracker/calenv/internal/calenv"
	. "gopkg.in/check.v1"
)

type DashboardSuite struct {
	zones []calenv.Zone
	now   time.Time
}

var _ = Suite(&DashboardSuite{})

func (s *DashboardSuite) SetUpTest(c *C) {
	s.zones = []calenv.Zone{{Name: "Indoor", Label: "L"}, {Name: "bedroom", Label: "B"}}
	s.now = time.Date(2023, 10, 18, 9, 5, 0, 0, time.UTC)
}

func reading(t float64, h, co2 int) calenv.SensorReading {
	return calenv.SensorReading{
		Temperature: calenv.Present(calenv.Temperature(t)),
		Humidity:    calenv.Present(calenv.Humidity(h)),
		CO2:         calenv.Present(calenv.CO2(co2)),
	}
}

func (s *DashboardSuite) TestCO2Alert(c *C) {
	testdata := []struct {
		Reading  calenv.SensorReading
		Expected bool
	}{
		{calenv.UnavailableReading(), false},
		{reading(20, 40, 999), false},
		{reading(20, 40, 1000), false},
		{reading(20, 40, 1001), true},
		{reading(20, 40, 1200), true},
		{calenv.SensorReading{Temperature: calenv.Present(calenv.Temperature(20))}, false},
	}

	for _, d := range testdata {
		c.Check(calenv.CO2Alert(d.Reading), Equals, d.Expected, Commentf("reading: %+v", d.Reading))
	}
}

func (s *DashboardSuite) TestAggregateIsTotal(c *C) {
	failure := errors.New("nope")
	readings := []calenv.Result[calenv.Readings]{
		calenv.Fail[calenv.Readings](failure),
		calenv.Ok(calenv.Readings{}),
		calenv.Ok(calenv.Readings(nil)),
		calenv.Ok(calenv.Readings{"Indoor": reading(21.5, 45, 800)}),
	}
	forecasts := []calenv.Result[calenv.ForecastSummary]{
		calenv.Fail[calenv.ForecastSummary](failure),
		calenv.Ok(calenv.ForecastSummary{}),
	}
	observations := []calenv.Result[calenv.ObservationSummary]{
		calenv.Fail[calenv.ObservationSummary](failure),
		calenv.Ok(calenv.ObservationSummary{}),
	}

	for _, r := range readings {
		for _, f := range forecasts {
			for _, o := range observations {
				data, flags := calenv.Aggregate(s.zones, r, calenv.AstronomicalEvents{}, f, o, s.now)
				c.Assert(data.Zones, HasLen, 2)
				c.Check(flags, HasLen, 2)
				for _, z := range data.Zones {
					c.Check(z.Temperature, Not(Equals), "")
					c.Check(z.Humidity, Not(Equals), "")
					c.Check(z.CO2, Not(Equals), "")
				}
				c.Check(data.Forecast, DeepEquals, calenv.PlaceholderForecast())
				c.Check(data.Observation, DeepEquals, calenv.PlaceholderObservation())
			}
		}
	}
}

func (s *DashboardSuite) TestSensorFailure(c *C) {
	data, flags := calenv.Aggregate(s.zones,
		calenv.Fail[calenv.Readings](calenv.SourceUnavailable("netatmo", errors.New("401 Unauthorized"))),
		calenv.AstronomicalEvents{},
		calenv.Ok(calenv.ForecastSummary{}),
		calenv.Ok(calenv.ObservationSummary{}),
		s.now)

	c.Check(flags, DeepEquals, calenv.AlertFlags{"Indoor": false, "bedroom": false})
	c.Check(flags.Raised(s.zones), IsNil)
	for i, z := range data.Zones {
		c.Check(z.Zone, Equals, s.zones[i])
		c.Check(z.Temperature, Equals, calenv.Placeholder)
		c.Check(z.Humidity, Equals, calenv.Placeholder)
		c.Check(z.CO2, Equals, calenv.Placeholder)
		c.Check(z.Alert, Equals, false)
	}
}

func (s *DashboardSuite) TestOnlyBedroomAlerts(c *C) {
	readings := calenv.Ok(calenv.Readings{
		"Indoor":  calenv.UnavailableReading(),
		"bedroom": {CO2: calenv.Present(calenv.CO2(1200))},
	})
	data, flags := calenv.Aggregate(s.zones, readings, calenv.AstronomicalEvents{},
		calenv.Ok(calenv.ForecastSummary{}), calenv.Ok(calenv.ObservationSummary{}), s.now)

	c.Check(flags, DeepEquals, calenv.AlertFlags{"Indoor": false, "bedroom": true})
	c.Check(flags.Raised(s.zones), DeepEquals, []string{"bedroom"})
	c.Check(data.Zones[1].CO2, Equals, "1200")
	c.Check(data.Zones[1].Temperature, Equals, calenv.Placeholder)
	c.Check(data.Zones[1].Alert, Equals, true)
	c.Check(data.Zones[0].Alert, Equals, false)

	c.Check(calenv.Alerts(s.zones, readings), DeepEquals, []calenv.Alert{{Zone: "bedroom", Level: 1200}})
	c.Check(calenv.Alert{Zone: "bedroom", Level: 1200}.Description(), Equals,
		"CO2 level in bedroom is 1200 ppm ( > 1000 ppm )")
}

func (s *DashboardSuite) TestValuesAreFormatted(c *C) {
	forecast := calenv.ForecastSummary{
		Today:    calenv.DayForecast{Condition: "晴れ", MaxC: "25", MinC: "15"},
		Tomorrow: calenv.DayForecast{Condition: "曇り", MaxC: "22", MinC: "14"},
	}
	observation := calenv.ObservationSummary{TimeLabel: "14", TemperatureC: "21.3", HumidityPct: "55"}
	events := calenv.AstronomicalEvents{MoonAge: 3.2}

	data, _ := calenv.Aggregate(s.zones,
		calenv.Ok(calenv.Readings{"Indoor": reading(21.53, 45, 800), "bedroom": reading(19, 50, 650)}),
		events, calenv.Ok(forecast), calenv.Ok(observation), s.now)

	c.Check(data.Now, Equals, s.now)
	c.Check(data.Events, Equals, events)
	c.Check(data.Zones, DeepEquals, []calenv.ZoneLine{
		{Zone: s.zones[0], Temperature: "21.5", Humidity: "45", CO2: "800"},
		{Zone: s.zones[1], Temperature: "19.0", Humidity: "50", CO2: "650"},
	})
	c.Check(data.Forecast, DeepEquals, forecast)
	c.Check(data.Observation, DeepEquals, observation)
}
