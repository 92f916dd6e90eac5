package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pithecene-io/relay/adapter"
	"github.com/pithecene-io/relay/iox"
	"github.com/pithecene-io/relay/metrics"
)

const fastRetry = 5 * time.Millisecond

func testEvent() *adapter.RunCompletedEvent {
	return &adapter.RunCompletedEvent{
		ContractVersion:    "0.3.0",
		EventType:          adapter.EventTypeRunCompleted,
		RunID:              "run-001",
		Attempt:            1,
		Source:             "https://sqs.us-east-1.amazonaws.com/123/fragments",
		Destination:        "https://sqs.us-east-1.amazonaws.com/123/solutions",
		Day:                "2026-03-01",
		Outcome:            "success",
		Timestamp:          "2026-03-01T12:00:00Z",
		FragmentsCollected: 21,
		FragmentsValid:     21,
		TargetCount:        21,
		DrainRounds:        3,
		StatusCode:         200,
		DurationMs:         1500,
		Metrics:            &metrics.Snapshot{MessagesReceived: 21, MessagesDeleted: 21},
	}
}

func newAdapter(t *testing.T, cfg Config) *Adapter {
	t.Helper()
	if cfg.RetryInterval == 0 {
		cfg.RetryInterval = fastRetry
	}
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	t.Cleanup(func() { iox.DiscardClose(a) })
	return a
}

func TestPublish_Success(t *testing.T) {
	var received adapter.RunCompletedEvent
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %s", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("unmarshal: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	a := newAdapter(t, Config{URL: ts.URL})
	if err := a.Publish(t.Context(), testEvent()); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if received.RunID != "run-001" || received.EventType != "run_completed" || received.Outcome != "success" {
		t.Errorf("unexpected event: %+v", received)
	}
	if received.FragmentsValid != 21 || received.StatusCode != 200 {
		t.Errorf("fragments_valid=%d status_code=%d", received.FragmentsValid, received.StatusCode)
	}
	if received.Metrics == nil || received.Metrics.MessagesDeleted != 21 {
		t.Errorf("metrics = %+v", received.Metrics)
	}
}

func TestPublish_CustomHeaders(t *testing.T) {
	var authHeader, eventHeader, runHeader string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		eventHeader = r.Header.Get(HeaderEvent)
		runHeader = r.Header.Get(HeaderRunID)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	a := newAdapter(t, Config{
		URL:     ts.URL,
		Headers: map[string]string{"Authorization": "Bearer test-token"},
	})
	if err := a.Publish(t.Context(), testEvent()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if authHeader != "Bearer test-token" {
		t.Errorf("expected Bearer test-token, got %s", authHeader)
	}
	if eventHeader != adapter.EventTypeRunCompleted || runHeader != "run-001" {
		t.Errorf("relay headers = %q, %q", eventHeader, runHeader)
	}
}

func TestPublish_RetriesOnFailure(t *testing.T) {
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	a := newAdapter(t, Config{URL: ts.URL, Retries: 3})
	if err := a.Publish(t.Context(), testEvent()); err != nil {
		t.Fatalf("publish should succeed after retries: %v", err)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestPublish_StatusHandling(t *testing.T) {
	tests := []struct {
		code         int
		retries      int
		wantErr      bool
		wantAttempts int32
	}{
		{code: 200, retries: 3, wantAttempts: 1},
		{code: 202, retries: 3, wantAttempts: 1},
		{code: 400, retries: 3, wantErr: true, wantAttempts: 1},
		{code: 404, retries: 3, wantErr: true, wantAttempts: 1},
		{code: 429, retries: 1, wantErr: true, wantAttempts: 2},
		{code: 500, retries: 2, wantErr: true, wantAttempts: 3},
		{code: 503, retries: 0, wantErr: true, wantAttempts: 1},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			var attempts atomic.Int32
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				attempts.Add(1)
				w.WriteHeader(tt.code)
			}))
			defer ts.Close()

			a := newAdapter(t, Config{URL: ts.URL, Retries: tt.retries})
			err := a.Publish(t.Context(), testEvent())

			if (err != nil) != tt.wantErr {
				t.Fatalf("Publish error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := attempts.Load(); got != tt.wantAttempts {
				t.Errorf("expected %d attempts, got %d", tt.wantAttempts, got)
			}
			if tt.wantErr {
				var statusErr *StatusError
				if !errors.As(err, &statusErr) || statusErr.Code != tt.code {
					t.Errorf("expected StatusError %d in chain, got %v", tt.code, err)
				}
			}
		})
	}
}

func TestPublish_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()
	defer close(release)

	a := newAdapter(t, Config{URL: ts.URL, Timeout: 10 * time.Second})

	ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
	defer cancel()

	if err := a.Publish(ctx, testEvent()); err == nil {
		t.Fatal("expected error on canceled context")
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for empty URL")
	}
	if _, err := New(Config{URL: "http://example.com", Retries: -1}); err == nil {
		t.Error("expected error for negative retries")
	}

	a, err := New(Config{URL: "http://example.com"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if a.config.Timeout != DefaultTimeout {
		t.Errorf("expected default timeout %v, got %v", DefaultTimeout, a.config.Timeout)
	}
}
