// Package lode persists run artifacts: the drained fragments and the
// reassembled phrase.
//
// Two sinks are provided. FileSink writes a flat dump into a directory.
// DatasetSink writes Hive-partitioned records into a Lode dataset backed by
// the local filesystem or S3.
package lode

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/pithecene-io/relay/iox"
	"github.com/pithecene-io/relay/types"
)

// DeriveDay computes the partition day from run start time.
// Format: YYYY-MM-DD in UTC.
func DeriveDay(startTime time.Time) string {
	return startTime.UTC().Format("2006-01-02")
}

// Sink receives the artifacts of one run.
// WriteFragments is called once after the drain, including on drain failure,
// so the deleted messages are never lost. WritePhrase is called once after
// a successful reassembly.
type Sink interface {
	// WriteFragments persists the drained set in arrival order.
	WriteFragments(ctx context.Context, fragments types.FragmentSet) error

	// WritePhrase persists the reassembled phrase.
	WritePhrase(ctx context.Context, phrase string) error

	// Close releases sink resources.
	Close() error
}

// multiSink fans writes out to every sink in order.
type multiSink struct {
	sinks []Sink
}

// Multi combines sinks. Every sink is attempted; errors are joined.
func Multi(sinks ...Sink) Sink {
	return &multiSink{sinks: sinks}
}

func (m *multiSink) WriteFragments(ctx context.Context, fragments types.FragmentSet) error {
	var errs []error
	for _, s := range m.sinks {
		errs = append(errs, s.WriteFragments(ctx, fragments))
	}
	return errors.Join(errs...)
}

func (m *multiSink) WritePhrase(ctx context.Context, phrase string) error {
	var errs []error
	for _, s := range m.sinks {
		errs = append(errs, s.WritePhrase(ctx, phrase))
	}
	return errors.Join(errs...)
}

func (m *multiSink) Close() error {
	closers := make([]io.Closer, len(m.sinks))
	for i, s := range m.sinks {
		closers[i] = s
	}
	return iox.CloseAll(closers...)
}

// StubSink records writes without persisting. Use for tests and dry runs.
type StubSink struct {
	mu sync.Mutex

	// Fragments holds each WriteFragments call.
	Fragments []types.FragmentSet
	// Phrases holds each WritePhrase call.
	Phrases []string
	// Closed reports whether Close was called.
	Closed bool

	// WriteErr is returned from both write methods when set.
	WriteErr error
}

// NewStubSink creates a new stub sink.
func NewStubSink() *StubSink {
	return &StubSink{}
}

// WriteFragments implements Sink.
func (s *StubSink) WriteFragments(_ context.Context, fragments types.FragmentSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.Fragments = append(s.Fragments, fragments)
	return nil
}

// WritePhrase implements Sink.
func (s *StubSink) WritePhrase(_ context.Context, phrase string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.Phrases = append(s.Phrases, phrase)
	return nil
}

// Close implements Sink.
func (s *StubSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	return nil
}

// Verify implementations.
var (
	_ Sink = (*multiSink)(nil)
	_ Sink = (*StubSink)(nil)
)
