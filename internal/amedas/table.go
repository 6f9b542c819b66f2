package amedas

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/formicidae-tracker/calenv/internal/calenv"
	"github.com/formicidae-tracker/calenv/internal/fetch"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

const (
	DefaultTableURL = "http://www.jma.go.jp/jp/amedas_h/today-{station}.html"
	DefaultTable    = "/html/body/div[2]/div[2]/div[4]/div[1]/div[2]/table"
)

// The hourly table has two header rows, then one row per hour.
const (
	hours           = 24
	firstHourRow    = 3
	temperatureCell = 2
	humidityCell    = 8
)

// TableScraper reads the last populated row of the hourly observation
// table of a station.
type TableScraper struct {
	url    string
	table  string
	http   *http.Client
	logger *logrus.Entry
}

func NewTableScraper(url, table string, httpClient *http.Client) *TableScraper {
	if len(url) == 0 {
		url = DefaultTableURL
	}
	if len(table) == 0 {
		table = DefaultTable
	}
	return &TableScraper{
		url:    url,
		table:  table,
		http:   httpClient,
		logger: calenv.NewLogger("source/amedas"),
	}
}

func (s *TableScraper) cell(top *html.Node, hour, column int) (string, error) {
	// the parser may insert a tbody.
	expr := fmt.Sprintf("%s//tr[%d]/td[%d]", s.table, hour-1+firstHourRow, column)
	text, ok, err := fetch.Text(top, expr)
	if err != nil {
		return "", calenv.MalformedSource("amedas", "invalid expression: %s", err)
	}
	if ok == false {
		return "", calenv.MalformedSource("amedas", "no cell at '%s'", expr)
	}
	return text, nil
}

// lastObservation scans the table from the last hour backward and
// returns the first row where temperature or humidity is set. The
// placeholder triple is returned when the table is empty.
func (s *TableScraper) lastObservation(top *html.Node) (calenv.ObservationSummary, error) {
	for hour := hours; hour >= 1; hour-- {
		temperature, err := s.cell(top, hour, temperatureCell)
		if err != nil {
			return calenv.ObservationSummary{}, err
		}
		humidity, err := s.cell(top, hour, humidityCell)
		if err != nil {
			return calenv.ObservationSummary{}, err
		}
		if fetch.IsBlank(temperature) && fetch.IsBlank(humidity) {
			continue
		}
		return calenv.ObservationSummary{
			TimeLabel:    strconv.Itoa(hour),
			TemperatureC: temperature,
			HumidityPct:  humidity,
		}, nil
	}
	return calenv.PlaceholderObservation(), nil
}

func (s *TableScraper) Fetch(ctx context.Context, station string) calenv.Result[calenv.ObservationSummary] {
	return traced(ctx, "amedas/TableScraper.Fetch", station, func(ctx context.Context) calenv.Result[calenv.ObservationSummary] {
		top, err := fetch.GetHTML(ctx, s.http, expand(s.url, station), s.logger)
		if err != nil {
			return calenv.Fail[calenv.ObservationSummary](calenv.SourceUnavailable("amedas", err))
		}
		obs, err := s.lastObservation(top)
		if err != nil {
			return calenv.Fail[calenv.ObservationSummary](err)
		}
		if obs.TimeLabel == calenv.Placeholder {
			s.logger.WithField("station", station).Warn("no observation reported yet today")
		}
		return calenv.Ok(obs)
	})
}
