package amedas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/formicidae-tracker/calenv/internal/calenv"
	"github.com/formicidae-tracker/calenv/internal/fetch"
	"github.com/sirupsen/logrus"
)

const DefaultJSONURL = "https://www.jma.go.jp/bosai/amedas/data/latest/{station}.json"

// value is a field of the feed, sent either as a string or as a
// number. Numbers keep their literal text.
type value struct {
	text  string
	valid bool
}

func (v *value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &v.text); err != nil {
			return err
		}
		v.valid = true
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected a string or a number, got %s", data)
	}
	v.text = n.String()
	v.valid = true
	return nil
}

type observation struct {
	Time        value `json:"time"`
	Temperature value `json:"temp"`
	Humidity    value `json:"humd"`
}

type JSONFeed struct {
	url    string
	http   *http.Client
	logger *logrus.Entry
}

func NewJSONFeed(url string, httpClient *http.Client) *JSONFeed {
	if len(url) == 0 {
		url = DefaultJSONURL
	}
	return &JSONFeed{
		url:    url,
		http:   httpClient,
		logger: calenv.NewLogger("source/amedas"),
	}
}

func (f *JSONFeed) Fetch(ctx context.Context, station string) calenv.Result[calenv.ObservationSummary] {
	return traced(ctx, "amedas/JSONFeed.Fetch", station, func(ctx context.Context) calenv.Result[calenv.ObservationSummary] {
		url := expand(f.url, station)
		body, _, err := fetch.Get(ctx, f.http, url, f.logger)
		if err != nil {
			return calenv.Fail[calenv.ObservationSummary](calenv.SourceUnavailable("amedas", err))
		}
		obs := observation{}
		if err := json.Unmarshal(body, &obs); err != nil {
			return calenv.Fail[calenv.ObservationSummary](calenv.MalformedSource("amedas", "invalid feed: %s", err))
		}
		for _, field := range []struct {
			Name  string
			Value value
		}{{"time", obs.Time}, {"temp", obs.Temperature}, {"humd", obs.Humidity}} {
			if field.Value.valid == false {
				return calenv.Fail[calenv.ObservationSummary](calenv.MalformedSource("amedas", "missing '%s'", field.Name))
			}
		}
		return calenv.Ok(calenv.ObservationSummary{
			TimeLabel:    obs.Time.text,
			TemperatureC: obs.Temperature.text,
			HumidityPct:  obs.Humidity.text,
		})
	})
}
