package lode

import (
	"context"

	"github.com/pithecene-io/relay/metrics"
	"github.com/pithecene-io/relay/types"
)

// InstrumentedSink wraps a Sink and records write metrics. Each write call
// increments sink_write_success or sink_write_failure on the collector.
type InstrumentedSink struct {
	inner     Sink
	collector *metrics.Collector
}

// NewInstrumentedSink wraps a sink with metrics instrumentation.
func NewInstrumentedSink(inner Sink, collector *metrics.Collector) *InstrumentedSink {
	return &InstrumentedSink{inner: inner, collector: collector}
}

// WriteFragments delegates to the inner sink and records success or failure.
func (s *InstrumentedSink) WriteFragments(ctx context.Context, fragments types.FragmentSet) error {
	return s.record(s.inner.WriteFragments(ctx, fragments))
}

// WritePhrase delegates to the inner sink and records success or failure.
func (s *InstrumentedSink) WritePhrase(ctx context.Context, phrase string) error {
	return s.record(s.inner.WritePhrase(ctx, phrase))
}

// Close delegates to the inner sink.
func (s *InstrumentedSink) Close() error {
	return s.inner.Close()
}

func (s *InstrumentedSink) record(err error) error {
	if err != nil {
		s.collector.IncSinkWriteFailure()
	} else {
		s.collector.IncSinkWriteSuccess()
	}
	return err
}

// Verify InstrumentedSink implements Sink.
var _ Sink = (*InstrumentedSink)(nil)
