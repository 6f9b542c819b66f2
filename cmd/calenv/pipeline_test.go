package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/formicidae-tracker/calenv/internal/calenv"
	"github.com/formicidae-tracker/calenv/internal/canvas"
	"github.com/formicidae-tracker/calenv/internal/display"
	"github.com/formicidae-tracker/calenv/internal/ephemeris"
	"github.com/formicidae-tracker/calenv/internal/layout"
	"github.com/formicidae-tracker/calenv/internal/publish"
	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	. "gopkg.in/check.v1"
)

type fakeSensors struct {
	result calenv.Result[calenv.Readings]
	zones  []calenv.Zone
}

func (f *fakeSensors) FetchReadings(ctx context.Context, zones []calenv.Zone) calenv.Result[calenv.Readings] {
	f.zones = zones
	return f.result
}

type fakeForecast struct {
	result calenv.Result[calenv.ForecastSummary]
	now    time.Time
}

func (f *fakeForecast) Fetch(ctx context.Context, now time.Time) calenv.Result[calenv.ForecastSummary] {
	f.now = now
	return f.result
}

type fakeObservation struct {
	result  calenv.Result[calenv.ObservationSummary]
	station string
}

func (f *fakeObservation) Fetch(ctx context.Context, station string) calenv.Result[calenv.ObservationSummary] {
	f.station = station
	return f.result
}

type PipelineSuite struct {
	ctrl        *gomock.Controller
	sink        *display.MockSink
	sensors     *fakeSensors
	forecast    *fakeForecast
	observation *fakeObservation
	publisher   *publish.FakePublisher
	hook        *test.Hook
	pipeline    *Pipeline
	events      calenv.AstronomicalEvents
}

var _ = Suite(&PipelineSuite{})

var jst = time.FixedZone("JST", 9*60*60)

func (s *PipelineSuite) SetUpTest(c *C) {
	s.ctrl = gomock.NewController(c)
	s.sink = display.NewMockSink(s.ctrl)

	s.sensors = &fakeSensors{result: calenv.Ok(calenv.Readings{
		"Indoor": {
			Temperature: calenv.Present(calenv.Temperature(21.5)),
			Humidity:    calenv.Present(calenv.Humidity(45)),
			CO2:         calenv.Present(calenv.CO2(800)),
		},
		"bedroom": {
			Temperature: calenv.Present(calenv.Temperature(19.0)),
			Humidity:    calenv.Present(calenv.Humidity(52)),
			CO2:         calenv.Present(calenv.CO2(1200)),
		},
	})}
	s.forecast = &fakeForecast{result: calenv.Ok(calenv.ForecastSummary{
		Today:    calenv.DayForecast{Condition: "晴れ", MaxC: "25", MinC: "15"},
		Tomorrow: calenv.DayForecast{Condition: "雨", MaxC: "20", MinC: "14"},
	})}
	s.observation = &fakeObservation{result: calenv.Ok(calenv.ObservationSummary{
		TimeLabel: "14", TemperatureC: "21.3", HumidityPct: "55",
	})}
	s.publisher = &publish.FakePublisher{}
	s.events = calenv.AstronomicalEvents{
		Sunrise:  time.Date(2023, 10, 19, 5, 49, 0, 0, jst),
		Sunset:   time.Date(2023, 10, 18, 17, 6, 0, 0, jst),
		Moonrise: time.Date(2023, 10, 18, 10, 41, 0, 0, jst),
		MoonAge:  3.5,
	}

	var logger *logrus.Logger
	logger, s.hook = test.NewNullLogger()

	location := ephemeris.Tokyo
	s.pipeline = &Pipeline{
		zones:       DefaultConfig().Zones,
		location:    location,
		station:     "44132",
		sensors:     s.sensors,
		forecast:    s.forecast,
		observation: s.observation,
		publisher:   s.publisher,
		formatter:   layout.NewFormatter(layout.DefaultLabels()),
		fonts:       canvas.Fonts{Regular: filepath.Join(c.MkDir(), "none.ttf")},
		background:  filepath.Join(c.MkDir(), "none.png"),
		ephemeris: func(now time.Time, l ephemeris.Location) (calenv.AstronomicalEvents, error) {
			return s.events, nil
		},
		now: func() time.Time {
			return time.Date(2023, 10, 17, 23, 30, 0, 0, time.UTC)
		},
		logger: logger.WithField("domain", "pipeline"),
	}
}

func (s *PipelineSuite) TearDownTest(c *C) {
	s.ctrl.Finish()
}

func (s *PipelineSuite) TestGather(c *C) {
	d, err := s.pipeline.Gather(context.Background())
	c.Assert(err, IsNil)

	c.Check(s.sensors.zones, DeepEquals, DefaultConfig().Zones)
	c.Check(s.observation.station, Equals, "44132")
	c.Check(s.forecast.now.Location(), Equals, ephemeris.Tokyo.TimeZone)
	c.Check(s.forecast.now.Day(), Equals, 18)

	c.Check(d.Data.Now.Format("Jan 02 15:04"), Equals, "Oct 18 08:30")
	c.Check(d.Flags, DeepEquals, calenv.AlertFlags{"Indoor": false, "bedroom": true})
	c.Assert(d.Alerts, HasLen, 1)
	c.Check(d.Alerts[0].Zone, Equals, "bedroom")
	c.Check(d.Data.Observation.TimeLabel, Equals, "14")

	c.Assert(s.hook.Entries, HasLen, 1)
	c.Check(s.hook.LastEntry().Level, Equals, logrus.WarnLevel)
	c.Check(s.hook.LastEntry().Message, Equals, "CO2 level in bedroom is 1200 ppm ( > 1000 ppm )")
}

func (s *PipelineSuite) TestGatherAllFailed(c *C) {
	s.sensors.result = calenv.Fail[calenv.Readings](calenv.SourceUnavailable("netatmo", errors.New("timeout")))
	s.forecast.result = calenv.Fail[calenv.ForecastSummary](calenv.MalformedSource("forecast", "no node"))
	s.observation.result = calenv.Fail[calenv.ObservationSummary](calenv.SourceUnavailable("amedas", errors.New("refused")))

	d, err := s.pipeline.Gather(context.Background())
	c.Assert(err, IsNil)
	for _, z := range d.Data.Zones {
		c.Check(z.Temperature, Equals, calenv.Placeholder)
		c.Check(z.Humidity, Equals, calenv.Placeholder)
		c.Check(z.CO2, Equals, calenv.Placeholder)
		c.Check(z.Alert, Equals, false)
	}
	c.Check(d.Data.Forecast, Equals, calenv.PlaceholderForecast())
	c.Check(d.Data.Observation, Equals, calenv.PlaceholderObservation())
	c.Check(d.Alerts, HasLen, 0)

	c.Assert(s.hook.Entries, HasLen, 3)
	sources := map[string]bool{}
	for _, e := range s.hook.Entries {
		c.Check(e.Level, Equals, logrus.WarnLevel)
		sources[e.Data["source"].(string)] = true
	}
	c.Check(sources, DeepEquals, map[string]bool{"netatmo": true, "forecast": true, "amedas": true})
}

func (s *PipelineSuite) TestComputationFaultAborts(c *C) {
	s.pipeline.ephemeris = func(time.Time, ephemeris.Location) (calenv.AstronomicalEvents, error) {
		return calenv.AstronomicalEvents{}, calenv.ComputationFault("no sunrise")
	}
	err := s.pipeline.Render(context.Background(), s.sink)
	c.Check(errors.Is(err, calenv.ErrComputationFault), Equals, true)
	c.Check(s.publisher.Payloads, HasLen, 0)
}

func (s *PipelineSuite) TestRender(c *C) {
	config := display.NewDisplayConfig(display.Yellow, display.DefaultWidth, display.DefaultHeight)
	var shown image.Image
	gomock.InOrder(
		s.sink.EXPECT().Config().Return(config),
		s.sink.EXPECT().Show(gomock.Any()).DoAndReturn(func(img image.Image) error {
			shown = img
			return nil
		}),
	)

	c.Assert(s.pipeline.Render(context.Background(), s.sink), IsNil)
	c.Assert(shown, NotNil)
	c.Check(shown.Bounds(), Equals, image.Rect(0, 0, 212, 104))

	origin := layout.PanelOrigin(config)
	// bedroom indicator is raised, indoor is not.
	c.Check(shown.At(origin.X+2, origin.Y+30+5), Equals, config.Alert)
	c.Check(shown.At(origin.X+2, origin.Y+17+5), Equals, config.Background)

	c.Check(s.publisher.Payloads, HasLen, 1)
	c.Check(bytes.Contains(s.publisher.Payloads[0], []byte(`"ventilation.co2.bedroom"`)), Equals, true)
}

func (s *PipelineSuite) TestPublicationFailureIsNotFatal(c *C) {
	s.publisher.PublishError = errors.New("broker down")
	s.sink.EXPECT().Config().Return(display.NewDisplayConfig(display.Red, display.DefaultWidth, display.DefaultHeight))
	s.sink.EXPECT().Show(gomock.Any()).Return(nil)
	c.Check(s.pipeline.Render(context.Background(), s.sink), IsNil)
}

func (s *PipelineSuite) TestCorruptBackgroundStillRenders(c *C) {
	s.pipeline.background = filepath.Join(c.MkDir(), "background.png")
	c.Assert(os.WriteFile(s.pipeline.background, []byte("truncated"), 0644), IsNil)
	config := display.NewDisplayConfig(display.Red, display.DefaultWidth, display.DefaultHeight)
	var shown image.Image
	s.sink.EXPECT().Config().Return(config)
	s.sink.EXPECT().Show(gomock.Any()).DoAndReturn(func(img image.Image) error {
		shown = img
		return nil
	})

	c.Assert(s.pipeline.Render(context.Background(), s.sink), IsNil)
	c.Assert(shown, NotNil)
	c.Check(shown.Bounds(), Equals, config.Bounds())
	c.Check(shown.At(0, config.Height-1), Equals, config.Background)
}

func (s *PipelineSuite) TestShowError(c *C) {
	s.pipeline.publisher = nil
	s.sink.EXPECT().Config().Return(display.NewDisplayConfig(display.Red, display.DefaultWidth, display.DefaultHeight))
	s.sink.EXPECT().Show(gomock.Any()).Return(errors.New("busy pin timeout"))
	c.Check(s.pipeline.Render(context.Background(), s.sink), ErrorMatches, "could not show dashboard: busy pin timeout")
}

func (s *PipelineSuite) TestDumpTable(c *C) {
	d, err := s.pipeline.Gather(context.Background())
	c.Assert(err, IsNil)
	out := bytes.NewBuffer(nil)
	c.Assert(writeTable(out, d, layout.DefaultLabels()), IsNil)
	c.Check(out.String(), Equals, `Time          Oct 18 08:30
Events        日出 05:49 日没 17:06 月出 10:41
Moon          月齢  3.5
Zone Indoor   L 21.5℃ 45% 800ppm
Zone bedroom  B 19.0℃ 52% 1200ppm  CO2 ALERT
Observation   東京 21.3℃ 55% (14時)
Today         今日 晴れ 25℃ 15℃
Tomorrow      明日 雨 20℃ 14℃
`)
}
