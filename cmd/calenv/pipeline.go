package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/formicidae-tracker/calenv/internal/amedas"
	"github.com/formicidae-tracker/calenv/internal/calenv"
	"github.com/formicidae-tracker/calenv/internal/canvas"
	"github.com/formicidae-tracker/calenv/internal/display"
	"github.com/formicidae-tracker/calenv/internal/ephemeris"
	"github.com/formicidae-tracker/calenv/internal/fetch"
	"github.com/formicidae-tracker/calenv/internal/forecast"
	"github.com/formicidae-tracker/calenv/internal/layout"
	"github.com/formicidae-tracker/calenv/internal/netatmo"
	"github.com/formicidae-tracker/calenv/internal/publish"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type SensorSource interface {
	FetchReadings(ctx context.Context, zones []calenv.Zone) calenv.Result[calenv.Readings]
}

type ForecastSource interface {
	Fetch(ctx context.Context, now time.Time) calenv.Result[calenv.ForecastSummary]
}

type unconfiguredSensors struct{}

func (unconfiguredSensors) FetchReadings(ctx context.Context, zones []calenv.Zone) calenv.Result[calenv.Readings] {
	return calenv.Fail[calenv.Readings](calenv.SourceUnavailable("netatmo", errors.New("no credentials configured")))
}

// Pipeline gathers the sources and renders the dashboard. It holds no
// state between runs.
type Pipeline struct {
	zones       []calenv.Zone
	location    ephemeris.Location
	station     string
	sensors     SensorSource
	forecast    ForecastSource
	observation amedas.Source
	publisher   publish.Publisher
	formatter   layout.Formatter
	fonts       canvas.Fonts
	background  string

	ephemeris func(time.Time, ephemeris.Location) (calenv.AstronomicalEvents, error)
	now       func() time.Time
	logger    *logrus.Entry
}

// NewPipeline builds the sources described by config. The publisher
// is not connected here.
func NewPipeline(config *Config) (*Pipeline, error) {
	location, err := config.Location.Location()
	if err != nil {
		return nil, err
	}
	client := fetch.NewHTTPClient(config.Timeout)

	observation, err := amedas.NewSource(config.Observation, client)
	if err != nil {
		return nil, err
	}

	var sensors SensorSource = unconfiguredSensors{}
	if config.HasNetatmo() == true {
		sensors = netatmo.NewClient(config.Netatmo, client)
	}

	return &Pipeline{
		zones:       config.Zones,
		location:    location,
		station:     config.Observation.Station,
		sensors:     sensors,
		forecast:    forecast.NewScraper(config.Forecast, client),
		observation: observation,
		formatter:   layout.NewFormatter(config.Labels),
		fonts:       config.Fonts,
		background:  config.Background,
		ephemeris:   ephemeris.Compute,
		now:         time.Now,
		logger:      calenv.NewLogger("pipeline"),
	}, nil
}

func (p *Pipeline) warnFailed(source string, err error) {
	if err == nil {
		return
	}
	p.logger.WithFields(logrus.Fields{
		"source": source,
		"error":  err,
	}).Warn("using placeholders")
}

// Dashboard is the outcome of a gathering.
type Dashboard struct {
	Data   calenv.DashboardData
	Flags  calenv.AlertFlags
	Alerts []calenv.Alert
}

// Gather queries all sources and aggregates them. Only a computation
// fault is returned as an error, any source failure is replaced by
// placeholders.
func (p *Pipeline) Gather(ctx context.Context) (*Dashboard, error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "pipeline/Gather")
	defer span.End()

	now := p.now().In(p.location.TimeZone)

	events, err := p.ephemeris(now, p.location)
	if err != nil {
		span.SetStatus(codes.Error, "ephemeris failed")
		span.RecordError(err)
		return nil, err
	}

	var (
		readings calenv.Result[calenv.Readings]
		outlook  calenv.Result[calenv.ForecastSummary]
		observed calenv.Result[calenv.ObservationSummary]
		wg       sync.WaitGroup
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		readings = p.sensors.FetchReadings(ctx, p.zones)
	}()
	go func() {
		defer wg.Done()
		outlook = p.forecast.Fetch(ctx, now)
	}()
	go func() {
		defer wg.Done()
		observed = p.observation.Fetch(ctx, p.station)
	}()
	wg.Wait()

	p.warnFailed("netatmo", readings.Err)
	p.warnFailed("forecast", outlook.Err)
	p.warnFailed("amedas", observed.Err)

	data, flags := calenv.Aggregate(p.zones, readings, events, outlook, observed, now)
	res := &Dashboard{
		Data:   data,
		Flags:  flags,
		Alerts: calenv.Alerts(p.zones, readings),
	}
	for _, a := range res.Alerts {
		p.logger.WithField("alert", a.Identifier()).Warn(a.Description())
	}
	span.SetAttributes(
		attribute.Int("alerts", len(res.Alerts)),
		attribute.Bool("sensors", readings.Failed() == false),
		attribute.Bool("forecast", outlook.Failed() == false),
		attribute.Bool("observation", observed.Failed() == false),
	)

	return res, nil
}

func (p *Pipeline) publish(d *Dashboard) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(d.Data, d.Alerts); err != nil {
		p.logger.WithError(err).Warn("could not publish dashboard")
	}
}

// Compose lays out and paints the dashboard for the display.
func (p *Pipeline) Compose(d *Dashboard, config display.DisplayConfig) *image.RGBA {
	compositor := canvas.NewCompositor(p.fonts)
	base := compositor.LoadBackground(p.background, config)
	cmds := p.formatter.Format(d.Data, layout.PanelOrigin(config), config)
	return compositor.Render(base, cmds)
}

// Render runs the whole pipeline and shows the result on sink.
func (p *Pipeline) Render(ctx context.Context, sink display.Sink) (err error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "pipeline/Render")
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, "render failed")
			span.RecordError(err)
		}
		span.End()
	}()

	d, err := p.Gather(ctx)
	if err != nil {
		return err
	}
	p.publish(d)

	if err := sink.Show(p.Compose(d, sink.Config())); err != nil {
		return fmt.Errorf("could not show dashboard: %w", err)
	}
	p.logger.WithField("raised", d.Flags.Raised(p.zones)).Info("dashboard rendered")
	return nil
}
