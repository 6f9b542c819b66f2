package publish

import "github.com/formicidae-tracker/calenv/internal/calenv"

// FakePublisher records the published payloads.
type FakePublisher struct {
	Payloads     [][]byte
	PublishError error
	Closed       bool
}

func (f *FakePublisher) Publish(data calenv.DashboardData, alerts []calenv.Alert) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(data, alerts)
	if err != nil {
		return err
	}
	f.Payloads = append(f.Payloads, payload)
	return nil
}

func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}
