// Package fetch holds the HTTP plumbing shared by the source adapters.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/antchfx/htmlquery"
	humanize "github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

const DefaultTimeout = 30 * time.Second

const userAgent = "calenv (+https://github.com/formicidae-tracker/calenv)"

// NewHTTPClient returns a client whose requests are traced.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   timeout,
	}
}

// StatusError is returned for any non 2xx answer.
type StatusError struct {
	URL    string
	Status string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status code: %s", e.URL, e.Status)
}

// Get performs a GET request and returns the full body with its
// content type.
func Get(ctx context.Context, client *http.Client, url string, logger *logrus.Entry) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	res, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, "", err
	}

	if logger != nil {
		logger.WithFields(logrus.Fields{
			"url":     url,
			"status":  res.StatusCode,
			"size":    humanize.Bytes(uint64(len(body))),
			"elapsed": time.Since(start),
		}).Debug("fetched")
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, "", &StatusError{URL: url, Status: res.Status, Code: res.StatusCode}
	}

	return body, res.Header.Get("Content-Type"), nil
}

// ParseHTML decodes body according to the charset announced by
// contentType or by the document itself, and parses it.
func ParseHTML(body []byte, contentType string) (*html.Node, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("could not determine charset: %w", err)
	}
	return htmlquery.Parse(r)
}

// GetHTML fetches and parses an HTML document.
func GetHTML(ctx context.Context, client *http.Client, url string, logger *logrus.Entry) (*html.Node, error) {
	body, contentType, err := Get(ctx, client, url, logger)
	if err != nil {
		return nil, err
	}
	return ParseHTML(body, contentType)
}

// GetJSON fetches url and decodes the JSON body into v.
func GetJSON(ctx context.Context, client *http.Client, url string, v any, logger *logrus.Entry) error {
	body, _, err := Get(ctx, client, url, logger)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &DecodeError{URL: url, Err: err}
	}
	return nil
}

// DecodeError is returned when a body cannot be decoded.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("GET %s: invalid body: %s", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
