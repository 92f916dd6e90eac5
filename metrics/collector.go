// Package metrics provides per-run metrics collection.
//
// The Collector accumulates counters during a single run. It is a leaf package
// with no internal dependencies. All increment methods are nil-receiver safe so
// components can be constructed without a collector.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all run metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Run lifecycle
	RunsStarted   int64 `json:"runs_started"`
	RunsCompleted int64 `json:"runs_completed"`
	RunsFailed    int64 `json:"runs_failed"`

	// Drain
	DrainRounds       int64 `json:"drain_rounds"`
	DepthPolls        int64 `json:"depth_polls"`
	EmptyReceives     int64 `json:"empty_receives"`
	MessagesReceived  int64 `json:"messages_received"`
	MessagesDeleted   int64 `json:"messages_deleted"`
	MalformedMessages int64 `json:"malformed_messages"`

	// Reassembly
	DuplicateFragments int64 `json:"duplicate_fragments"`

	// Transport
	TransportErrors   int64 `json:"transport_errors"`
	SubmissionSuccess int64 `json:"submission_success"`
	SubmissionFailure int64 `json:"submission_failure"`

	// Artifact sinks
	SinkWriteSuccess int64 `json:"sink_write_success"`
	SinkWriteFailure int64 `json:"sink_write_failure"`

	// Dimensions (informational, set at construction)
	SourceQueue string `json:"source_queue"`
	SinkBackend string `json:"sink_backend"`
	RunID       string `json:"run_id"`
	JobID       string `json:"job_id,omitempty"`
}

// Collector accumulates metrics during a single run.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex
	s  Snapshot
}

// NewCollector creates a Collector with dimension labels.
// jobID is optional.
func NewCollector(sourceQueue, sinkBackend, runID, jobID string) *Collector {
	return &Collector{s: Snapshot{
		SourceQueue: sourceQueue,
		SinkBackend: sinkBackend,
		RunID:       runID,
		JobID:       jobID,
	}}
}

func (c *Collector) add(field *int64, n int64) {
	c.mu.Lock()
	*field += n
	c.mu.Unlock()
}

// --- Run lifecycle ---

// IncRunStarted records a run start.
func (c *Collector) IncRunStarted() {
	if c == nil {
		return
	}
	c.add(&c.s.RunsStarted, 1)
}

// IncRunCompleted records a run that submitted its phrase.
func (c *Collector) IncRunCompleted() {
	if c == nil {
		return
	}
	c.add(&c.s.RunsCompleted, 1)
}

// IncRunFailed records a run aborted by any fatal condition.
func (c *Collector) IncRunFailed() {
	if c == nil {
		return
	}
	c.add(&c.s.RunsFailed, 1)
}

// --- Drain ---

// IncDrainRound records one polling round.
func (c *Collector) IncDrainRound() {
	if c == nil {
		return
	}
	c.add(&c.s.DrainRounds, 1)
}

// IncDepthPoll records one queue depth query.
func (c *Collector) IncDepthPoll() {
	if c == nil {
		return
	}
	c.add(&c.s.DepthPolls, 1)
}

// IncEmptyReceive records a receive that returned no messages.
func (c *Collector) IncEmptyReceive() {
	if c == nil {
		return
	}
	c.add(&c.s.EmptyReceives, 1)
}

// AddMessagesReceived records n received messages.
func (c *Collector) AddMessagesReceived(n int) {
	if c == nil {
		return
	}
	c.add(&c.s.MessagesReceived, int64(n))
}

// IncMessageDeleted records one acknowledged message.
func (c *Collector) IncMessageDeleted() {
	if c == nil {
		return
	}
	c.add(&c.s.MessagesDeleted, 1)
}

// IncMalformedMessage records a message degraded to an invalid fragment.
func (c *Collector) IncMalformedMessage() {
	if c == nil {
		return
	}
	c.add(&c.s.MalformedMessages, 1)
}

// --- Reassembly ---

// AddDuplicateFragments records fragments dropped by the first-seen policy.
func (c *Collector) AddDuplicateFragments(n int) {
	if c == nil {
		return
	}
	c.add(&c.s.DuplicateFragments, int64(n))
}

// --- Transport ---

// IncTransportError records a failed queue service call.
func (c *Collector) IncTransportError() {
	if c == nil {
		return
	}
	c.add(&c.s.TransportErrors, 1)
}

// IncSubmissionSuccess records a sent submission.
func (c *Collector) IncSubmissionSuccess() {
	if c == nil {
		return
	}
	c.add(&c.s.SubmissionSuccess, 1)
}

// IncSubmissionFailure records a submission that was attempted and failed.
func (c *Collector) IncSubmissionFailure() {
	if c == nil {
		return
	}
	c.add(&c.s.SubmissionFailure, 1)
}

// --- Artifact sinks ---
// Sink counters are per-call, not per-record.

// IncSinkWriteSuccess records a successful artifact write.
func (c *Collector) IncSinkWriteSuccess() {
	if c == nil {
		return
	}
	c.add(&c.s.SinkWriteSuccess, 1)
}

// IncSinkWriteFailure records a failed artifact write.
func (c *Collector) IncSinkWriteFailure() {
	if c == nil {
		return
	}
	c.add(&c.s.SinkWriteFailure, 1)
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s
}
