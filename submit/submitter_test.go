package submit

import (
	"errors"
	"testing"

	"github.com/pithecene-io/relay/metrics"
	"github.com/pithecene-io/relay/queue"
)

func newTestSubmitter(t *testing.T, q *queue.MemoryQueue, opts ...Option) *Submitter {
	t.Helper()
	s, err := New(q, Config{Identity: "student-42", Platform: "go"}, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func TestSubmit_SendsOneMessage(t *testing.T) {
	q := queue.NewMemoryQueue()
	s := newTestSubmitter(t, q)

	result, err := s.Submit(t.Context(), "Hello there world")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200", result.StatusCode)
	}
	if len(q.Sent) != 1 {
		t.Fatalf("expected 1 sent message, got %d", len(q.Sent))
	}

	msg := q.Sent[0]
	if msg.Body != DefaultBody {
		t.Errorf("Body = %q, want %q", msg.Body, DefaultBody)
	}
	want := map[string]string{
		"uvaid":    "student-42",
		"platform": "go",
		"phrase":   "Hello there world",
	}
	for k, v := range want {
		if msg.Attributes[k] != v {
			t.Errorf("attribute %s = %q, want %q", k, msg.Attributes[k], v)
		}
	}
	if len(msg.Attributes) != len(want) {
		t.Errorf("unexpected attributes: %v", msg.Attributes)
	}
}

func TestSubmit_CustomBody(t *testing.T) {
	q := queue.NewMemoryQueue()
	s, err := New(q, Config{Identity: "id", Platform: "p", Body: "custom"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := s.Submit(t.Context(), "x"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if q.Sent[0].Body != "custom" {
		t.Errorf("Body = %q, want custom", q.Sent[0].Body)
	}
}

func TestSubmit_EmptyPhrase(t *testing.T) {
	for _, text := range []string{"", " ", "\t\n  "} {
		q := queue.NewMemoryQueue()
		s := newTestSubmitter(t, q)

		_, err := s.Submit(t.Context(), text)
		if !errors.Is(err, ErrEmptyPhrase) {
			t.Errorf("Submit(%q) error = %v, want ErrEmptyPhrase", text, err)
		}
		if len(q.Sent) != 0 || len(q.Ops) != 0 {
			t.Errorf("Submit(%q) touched the queue: %v", text, q.Ops)
		}
	}
}

func TestSubmit_StatusReturnedUnmodified(t *testing.T) {
	q := queue.NewMemoryQueue()
	q.SendStatus = 503
	c := metrics.NewCollector("src", "file", "run-1", "")
	s := newTestSubmitter(t, q, WithCollector(c))

	result, err := s.Submit(t.Context(), "phrase")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.StatusCode != 503 {
		t.Errorf("StatusCode = %d, want 503", result.StatusCode)
	}
	if snap := c.Snapshot(); snap.SubmissionFailure != 1 || snap.SubmissionSuccess != 0 {
		t.Errorf("unexpected counters: %+v", snap)
	}
}

func TestSubmit_TransportError(t *testing.T) {
	q := queue.NewMemoryQueue()
	q.SendErr = errors.New("connection refused")
	c := metrics.NewCollector("src", "file", "run-1", "")
	s := newTestSubmitter(t, q, WithCollector(c))

	_, err := s.Submit(t.Context(), "phrase")
	if !queue.IsTransportError(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if snap := c.Snapshot(); snap.TransportErrors != 1 || snap.SubmissionFailure != 1 {
		t.Errorf("unexpected counters: %+v", snap)
	}
}

func TestNew_Validation(t *testing.T) {
	q := queue.NewMemoryQueue()
	tests := []struct {
		name   string
		client queue.Client
		cfg    Config
	}{
		{name: "nil client", cfg: Config{Identity: "a", Platform: "b"}},
		{name: "missing identity", client: q, cfg: Config{Platform: "b"}},
		{name: "missing platform", client: q, cfg: Config{Identity: "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.client, tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}
