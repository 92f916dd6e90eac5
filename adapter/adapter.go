// Package adapter defines the notification boundary for finished runs.
//
// Adapters publish run completion notifications to downstream systems.
// The runtime owns adapter lifecycle; users provide configuration only.
package adapter

import (
	"context"

	"github.com/pithecene-io/relay/metrics"
)

// EventTypeRunCompleted is the only event type published.
const EventTypeRunCompleted = "run_completed"

// RunCompletedEvent is the payload published when a run finishes,
// successfully or not.
type RunCompletedEvent struct {
	ContractVersion string `json:"contract_version"`
	EventType       string `json:"event_type"` // always "run_completed"
	RunID           string `json:"run_id"`
	JobID           string `json:"job_id,omitempty"`
	Attempt         int    `json:"attempt"`
	Source          string `json:"source"`
	Destination     string `json:"destination"`
	Day             string `json:"day"`
	Outcome         string `json:"outcome"` // success, transport_error, etc.
	Message         string `json:"message,omitempty"`
	Timestamp       string `json:"timestamp"` // RFC 3339

	FragmentsCollected int `json:"fragments_collected"`
	FragmentsValid     int `json:"fragments_valid"`
	TargetCount        int `json:"target_count"`
	DrainRounds        int `json:"drain_rounds"`

	StatusCode   int    `json:"status_code,omitempty"`
	MessageID    string `json:"message_id,omitempty"`
	ArtifactPath string `json:"artifact_path,omitempty"`
	DurationMs   int64  `json:"duration_ms"`

	Metrics *metrics.Snapshot `json:"metrics,omitempty"`
}

// Adapter publishes run completion events to a downstream system.
// Implementations must be safe for single-use per run.
type Adapter interface {
	// Publish sends a run completion event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *RunCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}
