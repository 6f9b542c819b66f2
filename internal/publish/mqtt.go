package publish

import (
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/formicidae-tracker/calenv/internal/calenv"
	"github.com/sirupsen/logrus"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// MQTTPublisher publishes a retained message, so a subscriber gets the
// last dashboard as soon as it connects.
type MQTTPublisher struct {
	client paho.Client
	topic  string
	logger *logrus.Entry
}

func defaultClientID() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "calenv"
	}
	return "calenv-" + hostname
}

func NewMQTTPublisher(options Options) (*MQTTPublisher, error) {
	if err := options.Check(); err != nil {
		return nil, err
	}
	clientID := options.ClientID
	if len(clientID) == 0 {
		clientID = defaultClientID()
	}
	opts := paho.NewClientOptions().
		AddBroker(options.Broker).
		SetClientID(clientID).
		SetConnectTimeout(connectTimeout)

	client := paho.NewClient(opts)
	token := client.Connect()
	if token.WaitTimeout(connectTimeout) == false {
		return nil, fmt.Errorf("connection to %s timeout", options.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", options.Broker, err)
	}

	return &MQTTPublisher{
		client: client,
		topic:  options.Topic,
		logger: calenv.NewLogger("publish").WithField("topic", options.Topic),
	}, nil
}

func (p *MQTTPublisher) Publish(data calenv.DashboardData, alerts []calenv.Alert) error {
	payload, err := FormatPayload(data, alerts)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	token := p.client.Publish(p.topic, 1, true, payload)
	if token.WaitTimeout(publishTimeout) == false {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	p.logger.WithField("size", len(payload)).Debug("dashboard published")
	return nil
}

func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
