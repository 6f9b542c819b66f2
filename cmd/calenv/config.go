package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/adrg/xdg"
	"github.com/formicidae-tracker/calenv/internal/amedas"
	"github.com/formicidae-tracker/calenv/internal/calenv"
	"github.com/formicidae-tracker/calenv/internal/canvas"
	"github.com/formicidae-tracker/calenv/internal/ephemeris"
	"github.com/formicidae-tracker/calenv/internal/fetch"
	"github.com/formicidae-tracker/calenv/internal/forecast"
	"github.com/formicidae-tracker/calenv/internal/layout"
	"github.com/formicidae-tracker/calenv/internal/netatmo"
	"github.com/formicidae-tracker/calenv/internal/publish"
	flags "github.com/jessevdk/go-flags"
	yaml "gopkg.in/yaml.v2"
)

type LocationDefinition struct {
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Elevation float64 `yaml:"elevation"`
	TimeZone  string  `yaml:"timezone"`
}

func (d LocationDefinition) Location() (ephemeris.Location, error) {
	tz, err := time.LoadLocation(d.TimeZone)
	if err != nil {
		return ephemeris.Location{}, err
	}
	return ephemeris.Location{
		Name:      d.Name,
		Latitude:  d.Latitude,
		Longitude: d.Longitude,
		Elevation: d.Elevation,
		TimeZone:  tz,
	}, nil
}

type Config struct {
	Zones       []calenv.Zone      `yaml:"zones"`
	Netatmo     netatmo.Options    `yaml:"netatmo"`
	Location    LocationDefinition `yaml:"location"`
	Forecast    forecast.Options   `yaml:"forecast"`
	Observation amedas.Options     `yaml:"observation"`
	Labels      layout.Labels      `yaml:"labels"`
	Fonts       canvas.Fonts       `yaml:"fonts"`
	Background  string             `yaml:"background"`
	MQTT        publish.Options    `yaml:"mqtt"`
	Timeout     time.Duration      `yaml:"timeout"`
}

const (
	ENV_CLIENT_SECRET = "CALENV_NETATMO_CLIENT_SECRET"
	ENV_PASSWORD      = "CALENV_NETATMO_PASSWORD"
	ENV_REFRESH_TOKEN = "CALENV_NETATMO_REFRESH_TOKEN"
)

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "calenv", "config.yml")
}

func DefaultConfig() *Config {
	return &Config{
		Zones: []calenv.Zone{
			{Name: "Indoor", Label: "L"},
			{Name: "bedroom", Label: "B"},
		},
		Location: LocationDefinition{
			Name:      ephemeris.Tokyo.Name,
			Latitude:  ephemeris.Tokyo.Latitude,
			Longitude: ephemeris.Tokyo.Longitude,
			Elevation: ephemeris.Tokyo.Elevation,
			TimeZone:  "Asia/Tokyo",
		},
		Forecast:    forecast.DefaultOptions(),
		Observation: amedas.DefaultOptions(),
		Labels:      layout.DefaultLabels(),
		Fonts:       canvas.DefaultFonts(),
		Background:  filepath.Join(xdg.DataHome, "calenv", "background.png"),
		MQTT:        publish.Options{Topic: publish.DefaultTopic},
		Timeout:     fetch.DefaultTimeout,
	}
}

func OpenConfigFromArg(option flags.Filename) (*Config, error) {
	configPath := DefaultConfigPath()
	if len(option) > 0 {
		configPath = string(option)
	}
	return OpenConfig(configPath)
}

// OpenConfig reads filename over the defaults. A missing file is not
// an error.
func OpenConfig(filename string) (*Config, error) {
	c := DefaultConfig()
	buf, err := os.ReadFile(filename)
	if err != nil && errors.Is(err, fs.ErrNotExist) == false {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(buf, c); err != nil {
			return nil, fmt.Errorf("could not parse '%s': %w", filename, err)
		}
	}
	c.applyEnvironment()

	if err := c.Check(); err != nil {
		return nil, err
	}
	return c, nil
}

// applyEnvironment overrides the secrets with the environment.
func (c *Config) applyEnvironment() {
	for _, v := range []struct {
		Name  string
		Value *string
	}{
		{ENV_CLIENT_SECRET, &c.Netatmo.ClientSecret},
		{ENV_PASSWORD, &c.Netatmo.Password},
		{ENV_REFRESH_TOKEN, &c.Netatmo.RefreshToken},
	} {
		if value, ok := os.LookupEnv(v.Name); ok == true && len(value) > 0 {
			*v.Value = value
		}
	}
}

// HasNetatmo reports if sensor service credentials are configured.
func (c *Config) HasNetatmo() bool {
	return len(c.Netatmo.ClientID) > 0
}

func (c *Config) checkZones() error {
	if len(c.Zones) == 0 || len(c.Zones) > 2 {
		return fmt.Errorf("Invalid zones: the panel shows one or two zones, got %d", len(c.Zones))
	}
	names := map[string]int{}
	for i, z := range c.Zones {
		if len(z.Name) == 0 {
			return fmt.Errorf("Invalid zone definition %d: missing name", i)
		}
		if j, ok := names[z.Name]; ok == true {
			return fmt.Errorf("Invalid zone definition '%s': already defined by zone %d", z.Name, j)
		}
		names[z.Name] = i
		if utf8.RuneCountInString(z.Label) != 1 {
			return fmt.Errorf("Invalid zone definition '%s': label '%s' should be a single character", z.Name, z.Label)
		}
	}
	return nil
}

func (c *Config) checkLocation() error {
	if c.Location.Latitude < -90.0 || c.Location.Latitude > 90.0 {
		return fmt.Errorf("Invalid location '%s': latitude %g is not in [-90,90]", c.Location.Name, c.Location.Latitude)
	}
	if c.Location.Longitude < -180.0 || c.Location.Longitude > 180.0 {
		return fmt.Errorf("Invalid location '%s': longitude %g is not in [-180,180]", c.Location.Name, c.Location.Longitude)
	}
	if c.Location.Elevation < 0.0 {
		return fmt.Errorf("Invalid location '%s': elevation %g is below the horizon", c.Location.Name, c.Location.Elevation)
	}
	if _, err := c.Location.Location(); err != nil {
		return fmt.Errorf("Invalid location '%s': %w", c.Location.Name, err)
	}
	return nil
}

func (c *Config) Check() error {
	if err := c.checkZones(); err != nil {
		return err
	}
	if c.HasNetatmo() == true {
		if err := c.Netatmo.Check(); err != nil {
			return fmt.Errorf("Invalid netatmo definition: %w", err)
		}
	}
	if err := c.checkLocation(); err != nil {
		return err
	}
	if err := c.Forecast.Check(); err != nil {
		return fmt.Errorf("Invalid forecast definition: %w", err)
	}
	if err := c.Observation.Check(); err != nil {
		return fmt.Errorf("Invalid observation definition: %w", err)
	}
	if err := c.MQTT.Check(); err != nil {
		return fmt.Errorf("Invalid mqtt definition: %w", err)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("Invalid timeout %s", c.Timeout)
	}
	return nil
}
