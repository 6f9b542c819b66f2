// Package amedas reads the latest hourly observation of a weather
// station.
package amedas

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/formicidae-tracker/calenv/internal/calenv"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const DefaultStation = "44132"

const instrumentationName = "github.com/formicidae-tracker/calenv/internal/amedas"

// Source fetches the current observation of a station. A failure is
// reported in the result, never panics.
type Source interface {
	Fetch(ctx context.Context, station string) calenv.Result[calenv.ObservationSummary]
}

type Backend string

const (
	JSONBackend  Backend = "json"
	TableBackend Backend = "table"
)

// Options select and configure the backend. URL is a template where
// {station} is substituted.
type Options struct {
	Backend Backend `yaml:"backend"`
	Station string  `yaml:"station"`
	URL     string  `yaml:"url,omitempty"`
	Table   string  `yaml:"table,omitempty"`
}

func DefaultOptions() Options {
	return Options{
		Backend: JSONBackend,
		Station: DefaultStation,
	}
}

func (o Options) Check() error {
	switch o.Backend {
	case JSONBackend, TableBackend:
	default:
		return fmt.Errorf("unknown backend '%s' (expected '%s' or '%s')", o.Backend, JSONBackend, TableBackend)
	}
	if len(o.Station) == 0 {
		return errors.New("missing station")
	}
	if len(o.URL) > 0 && strings.Contains(o.URL, "{station}") == false {
		return fmt.Errorf("url '%s' does not contain {station}", o.URL)
	}
	return nil
}

// NewSource returns the backend selected by options.
func NewSource(options Options, httpClient *http.Client) (Source, error) {
	if err := options.Check(); err != nil {
		return nil, err
	}
	switch options.Backend {
	case TableBackend:
		return NewTableScraper(options.URL, options.Table, httpClient), nil
	default:
		return NewJSONFeed(options.URL, httpClient), nil
	}
}

func expand(template, station string) string {
	return strings.ReplaceAll(template, "{station}", station)
}

func traced(ctx context.Context, name, station string, fetch func(context.Context) calenv.Result[calenv.ObservationSummary]) calenv.Result[calenv.ObservationSummary] {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, name)
	defer span.End()
	span.SetAttributes(attribute.String("station", station))
	res := fetch(ctx)
	if res.Err != nil {
		span.SetStatus(codes.Error, "observation unavailable")
		span.RecordError(res.Err)
	}
	return res
}
