// Package netatmo reads the last reported values of indoor weather
// station modules.
package netatmo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/formicidae-tracker/calenv/internal/calenv"
	"github.com/formicidae-tracker/calenv/internal/fetch"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/oauth2"
)

const DefaultAPIURL = "https://api.netatmo.com"

const instrumentationName = "github.com/formicidae-tracker/calenv/internal/netatmo"

// Options are the credentials of the sensor service. RefreshToken
// takes precedence over Username and Password.
type Options struct {
	ClientID     string `yaml:"client-id"`
	ClientSecret string `yaml:"client-secret"`
	Username     string `yaml:"username,omitempty"`
	Password     string `yaml:"password,omitempty"`
	RefreshToken string `yaml:"refresh-token,omitempty"`
	APIURL       string `yaml:"api-url,omitempty"`
}

func (o Options) apiURL() string {
	if len(o.APIURL) == 0 {
		return DefaultAPIURL
	}
	return strings.TrimSuffix(o.APIURL, "/")
}

func (o Options) Check() error {
	if len(o.ClientID) == 0 || len(o.ClientSecret) == 0 {
		return errors.New("missing client-id or client-secret")
	}
	if len(o.RefreshToken) == 0 && (len(o.Username) == 0 || len(o.Password) == 0) {
		return errors.New("needs either a refresh-token or username and password")
	}
	return nil
}

type Client struct {
	options Options
	http    *http.Client
	logger  *logrus.Entry
}

func NewClient(options Options, httpClient *http.Client) *Client {
	return &Client{
		options: options,
		http:    httpClient,
		logger:  calenv.NewLogger("source/netatmo"),
	}
}

func (c *Client) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.options.ClientID,
		ClientSecret: c.options.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.options.apiURL() + "/oauth2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: []string{"read_station"},
	}
}

func (c *Client) tokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	conf := c.oauthConfig()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	if len(c.options.RefreshToken) > 0 {
		return conf.TokenSource(ctx, &oauth2.Token{RefreshToken: c.options.RefreshToken}), nil
	}
	token, err := conf.PasswordCredentialsToken(ctx, c.options.Username, c.options.Password)
	if err != nil {
		return nil, fmt.Errorf("authentication: %w", err)
	}
	return conf.TokenSource(ctx, token), nil
}

func (c *Client) authenticatedClient(ctx context.Context) (*http.Client, error) {
	ts, err := c.tokenSource(ctx)
	if err != nil {
		return nil, err
	}
	// fails early on an invalid refresh token.
	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("authentication: %w", err)
	}
	client := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, c.http), ts)
	client.Timeout = c.http.Timeout
	return client, nil
}

type dashboardData struct {
	Temperature *float64 `json:"Temperature"`
	Humidity    *float64 `json:"Humidity"`
	CO2         *float64 `json:"CO2"`
}

type module struct {
	ID            string         `json:"_id"`
	ModuleName    string         `json:"module_name"`
	DashboardData *dashboardData `json:"dashboard_data"`
}

type device struct {
	module
	StationName string   `json:"station_name"`
	Modules     []module `json:"modules"`
}

type stationsData struct {
	Status string `json:"status"`
	Body   struct {
		Devices []device `json:"devices"`
	} `json:"body"`
}

func (d dashboardData) reading() calenv.SensorReading {
	res := calenv.UnavailableReading()
	if d.Temperature != nil {
		res.Temperature = calenv.Present(calenv.Temperature(*d.Temperature))
	}
	if d.Humidity != nil {
		res.Humidity = calenv.Present(calenv.Humidity(math.Round(*d.Humidity)))
	}
	if d.CO2 != nil {
		res.CO2 = calenv.Present(calenv.CO2(math.Round(*d.CO2)))
	}
	return res
}

// lastData indexes the last reported values by module name.
func (s stationsData) lastData() map[string]calenv.SensorReading {
	res := make(map[string]calenv.SensorReading)
	add := func(m module) {
		if m.DashboardData == nil || len(m.ModuleName) == 0 {
			return
		}
		res[m.ModuleName] = m.DashboardData.reading()
	}
	for _, d := range s.Body.Devices {
		add(d.module)
		for _, m := range d.Modules {
			add(m)
		}
	}
	return res
}

func (c *Client) stationsData(ctx context.Context) (*stationsData, error) {
	client, err := c.authenticatedClient(ctx)
	if err != nil {
		return nil, err
	}
	data := &stationsData{}
	if err := fetch.GetJSON(ctx, client, c.options.apiURL()+"/api/getstationsdata", data, c.logger); err != nil {
		return nil, err
	}
	if data.Status != "ok" {
		return nil, fmt.Errorf("API status '%s'", data.Status)
	}
	return data, nil
}

// FetchReadings returns a reading for each of zones. Any failure to
// reach the service fails the whole result. A zone the service does
// not report falls back alone to an unavailable reading.
func (c *Client) FetchReadings(ctx context.Context, zones []calenv.Zone) (res calenv.Result[calenv.Readings]) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "netatmo/FetchReadings")
	defer func() {
		if res.Err != nil {
			span.SetStatus(codes.Error, "source unavailable")
			span.RecordError(res.Err)
		}
		span.End()
	}()

	data, err := c.stationsData(ctx)
	if err != nil {
		return calenv.Fail[calenv.Readings](calenv.SourceUnavailable("netatmo", err))
	}

	last := data.lastData()
	readings := make(calenv.Readings, len(zones))
	for _, z := range zones {
		r, ok := last[z.Name]
		if ok == false {
			c.logger.WithField("zone", z.Name).Warn("zone not reported by any station")
			r = calenv.UnavailableReading()
		}
		readings[z.Name] = r
	}
	span.SetAttributes(attribute.Int("modules", len(last)))

	return calenv.Ok(readings)
}
