// Package webhook POSTs run completion events as JSON.
//
// Network errors and 5xx responses are retried with exponential backoff;
// any other non-2xx status ends the publish on the first attempt.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pithecene-io/relay/adapter"
	"github.com/pithecene-io/relay/iox"
)

const (
	DefaultTimeout = 10 * time.Second
	DefaultRetries = 3
)

// Header names set on every delivery, ahead of user headers.
const (
	HeaderEvent = "X-Relay-Event"
	HeaderRunID = "X-Relay-Run-Id"
)

// Config configures the webhook adapter.
type Config struct {
	URL     string
	Headers map[string]string
	// Timeout bounds a single request. Zero means DefaultTimeout.
	Timeout time.Duration
	// Retries is the number of attempts after the first one.
	Retries       int
	RetryInterval time.Duration
}

// Adapter publishes run completion events over HTTP.
type Adapter struct {
	config Config
	client *http.Client
}

// New validates cfg and returns an adapter with its own HTTP client.
func New(cfg Config) (*Adapter, error) {
	switch {
	case cfg.URL == "":
		return nil, errors.New("webhook adapter requires a URL")
	case cfg.Retries < 0:
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Adapter{config: cfg, client: &http.Client{Timeout: cfg.Timeout}}, nil
}

// StatusError is a non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Retriable reports whether the receiver may accept the same delivery later.
func (e *StatusError) Retriable() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// Publish delivers event, retrying transient failures.
func (a *Adapter) Publish(ctx context.Context, event *adapter.RunCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	attempts := 0
	err = adapter.Retry(ctx, a.config.Retries, a.config.RetryInterval, func(ctx context.Context) error {
		attempts++
		err := a.post(ctx, event, body)
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Retriable() {
			return backoff.Permanent(err)
		}
		return err
	})
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return fmt.Errorf("webhook: context canceled: %w", err)
	case attempts == 1:
		return fmt.Errorf("webhook: %w", err)
	default:
		return fmt.Errorf("webhook: failed after %d attempts: %w", attempts, err)
	}
}

func (a *Adapter) post(ctx context.Context, event *adapter.RunCompletedEvent, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.URL, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEvent, event.EventType)
	req.Header.Set(HeaderRunID, event.RunID)
	for k, v := range a.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer iox.DiscardClose(resp.Body)
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

// Close drops idle connections.
func (a *Adapter) Close() error {
	a.client.CloseIdleConnections()
	return nil
}

var _ adapter.Adapter = (*Adapter)(nil)
