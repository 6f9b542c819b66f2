// Package publish sends the dashboard values to an MQTT broker, for
// other consumers than the panel.
package publish

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/formicidae-tracker/calenv/internal/calenv"
)

const DefaultTopic = "calenv/dashboard"

type Options struct {
	// Broker is the URL of the broker, publication is disabled when
	// empty.
	Broker   string `yaml:"broker,omitempty"`
	Topic    string `yaml:"topic,omitempty"`
	ClientID string `yaml:"client-id,omitempty"`
}

func (o Options) Enabled() bool {
	return len(o.Broker) > 0
}

func (o Options) Check() error {
	if o.Enabled() == true && len(o.Topic) == 0 {
		return errors.New("missing topic")
	}
	return nil
}

// Publisher publishes one dashboard record.
type Publisher interface {
	Publish(data calenv.DashboardData, alerts []calenv.Alert) error
	Close() error
}

type EventsPayload struct {
	Sunrise  string  `json:"sunrise"`
	Sunset   string  `json:"sunset"`
	Moonrise string  `json:"moonrise"`
	MoonAge  float64 `json:"moon_age"`
}

type AlertPayload struct {
	Identifier  string `json:"identifier"`
	Zone        string `json:"zone"`
	Level       int    `json:"level"`
	Description string `json:"description"`
}

type Payload struct {
	calenv.DashboardData
	Events EventsPayload  `json:"events"`
	Alerts []AlertPayload `json:"alerts"`
}

func FormatPayload(data calenv.DashboardData, alerts []calenv.Alert) ([]byte, error) {
	payload := Payload{
		DashboardData: data,
		Events: EventsPayload{
			Sunrise:  data.Events.Sunrise.Format(time.RFC3339),
			Sunset:   data.Events.Sunset.Format(time.RFC3339),
			Moonrise: data.Events.Moonrise.Format(time.RFC3339),
			MoonAge:  data.Events.MoonAge,
		},
		Alerts: make([]AlertPayload, 0, len(alerts)),
	}
	for _, a := range alerts {
		payload.Alerts = append(payload.Alerts, AlertPayload{
			Identifier:  a.Identifier(),
			Zone:        a.Zone,
			Level:       int(a.Level),
			Description: a.Description(),
		})
	}
	return json.Marshal(payload)
}
