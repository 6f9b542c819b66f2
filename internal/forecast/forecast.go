// Package forecast scrapes today's and tomorrow's forecast from a
// weather web page.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/formicidae-tracker/calenv/internal/calenv"
	"github.com/formicidae-tracker/calenv/internal/fetch"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/net/html"
)

const DefaultURL = "https://weather.yahoo.co.jp/weather/jp/13/4410.html"

// DefaultRoot searches tr at any depth since the parser inserts a tbody.
const DefaultRoot = "/html/body/div[1]/div[2]/div[2]/div[1]/div[6]/table//tr"

const instrumentationName = "github.com/formicidae-tracker/calenv/internal/forecast"

// Options locate the forecast table. Root selects the table row whose
// first two cells are today and tomorrow.
type Options struct {
	URL  string `yaml:"url"`
	Root string `yaml:"root"`
	// CheckDate rejects a page whose day headers do not match the
	// current date.
	CheckDate bool `yaml:"check-date"`
}

func DefaultOptions() Options {
	return Options{URL: DefaultURL, Root: DefaultRoot, CheckDate: true}
}

func (o Options) Check() error {
	if len(o.URL) == 0 {
		return errors.New("missing url")
	}
	if len(o.Root) == 0 {
		return errors.New("missing root")
	}
	return nil
}

type Scraper struct {
	options Options
	http    *http.Client
	logger  *logrus.Entry
}

func NewScraper(options Options, httpClient *http.Client) *Scraper {
	return &Scraper{
		options: options,
		http:    httpClient,
		logger:  calenv.NewLogger("source/forecast"),
	}
}

type field struct {
	name string
	expr string
	dest *string
}

func (s *Scraper) dayFields(column int, dest *calenv.DayForecast) []field {
	prefix := fmt.Sprintf("%s/td[%d]/div", s.options.Root, column)
	return []field{
		{fmt.Sprintf("td[%d] condition", column), prefix + "/p[2]", &dest.Condition},
		{fmt.Sprintf("td[%d] max", column), prefix + "/ul/li[1]/em", &dest.MaxC},
		{fmt.Sprintf("td[%d] min", column), prefix + "/ul/li[2]/em", &dest.MinC},
	}
}

// extract reads the six fields of the forecast, or none.
func (s *Scraper) extract(top *html.Node) (calenv.ForecastSummary, error) {
	res := calenv.ForecastSummary{}
	fields := append(s.dayFields(1, &res.Today), s.dayFields(2, &res.Tomorrow)...)
	for _, f := range fields {
		text, ok, err := fetch.Text(top, f.expr)
		if err != nil {
			return calenv.ForecastSummary{}, calenv.MalformedSource("forecast", "invalid expression for %s: %s", f.name, err)
		}
		if ok == false || len(text) == 0 {
			return calenv.ForecastSummary{}, calenv.MalformedSource("forecast", "no %s at '%s'", f.name, f.expr)
		}
		*f.dest = text
	}
	return res, nil
}

func dateHeader(t time.Time) string {
	return fmt.Sprintf("%d月%d日", int(t.Month()), t.Day())
}

func (s *Scraper) checkDates(top *html.Node, now time.Time) error {
	for i, day := range []time.Time{now, now.AddDate(0, 0, 1)} {
		expr := fmt.Sprintf("%s/td[%d]/div/p[1]", s.options.Root, i+1)
		text, ok, err := fetch.Text(top, expr)
		if err != nil {
			return calenv.MalformedSource("forecast", "invalid date expression: %s", err)
		}
		if ok == false {
			return calenv.MalformedSource("forecast", "no date header at '%s'", expr)
		}
		if strings.HasPrefix(text, dateHeader(day)) == false {
			return calenv.MalformedSource("forecast", "column %d is for '%s', expected %s", i+1, text, dateHeader(day))
		}
	}
	return nil
}

// Fetch returns the forecast of the day of now and of the following
// day. If any of the six fields cannot be extracted, the result fails
// as a whole.
func (s *Scraper) Fetch(ctx context.Context, now time.Time) (res calenv.Result[calenv.ForecastSummary]) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "forecast/Fetch")
	span.SetAttributes(attribute.String("url", s.options.URL))
	defer func() {
		if res.Err != nil {
			span.SetStatus(codes.Error, "forecast unavailable")
			span.RecordError(res.Err)
		}
		span.End()
	}()

	top, err := fetch.GetHTML(ctx, s.http, s.options.URL, s.logger)
	if err != nil {
		return calenv.Fail[calenv.ForecastSummary](calenv.SourceUnavailable("forecast", err))
	}

	if s.options.CheckDate == true {
		if err := s.checkDates(top, now); err != nil {
			return calenv.Fail[calenv.ForecastSummary](err)
		}
	}

	summary, err := s.extract(top)
	if err != nil {
		return calenv.Fail[calenv.ForecastSummary](err)
	}

	s.logger.WithFields(logrus.Fields{
		"today":    summary.Today.Condition,
		"tomorrow": summary.Tomorrow.Condition,
	}).Debug("forecast extracted")

	return calenv.Ok(summary)
}
