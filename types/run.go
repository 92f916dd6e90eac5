// Package types defines core domain types for the relay pipeline.
//
//nolint:revive // types is a common Go package naming convention
package types

import (
	"errors"
	"fmt"
)

// RunMeta identifies one drain/reassemble/submit pass and links it to the
// attempt it retries, if any.
type RunMeta struct {
	RunID string
	// JobID is assigned by whatever schedules relay. Optional.
	JobID *string
	// ParentRunID is set exactly when Attempt > 1.
	ParentRunID *string
	Attempt     int
}

// IsRetry reports whether the run retries an earlier attempt.
func (r *RunMeta) IsRetry() bool { return r.Attempt > 1 }

// Validate reports every lineage violation at once.
func (r *RunMeta) Validate() error {
	var errs []error
	if r.RunID == "" {
		errs = append(errs, errors.New("run_id must be non-empty"))
	}
	switch {
	case r.Attempt < 1:
		errs = append(errs, fmt.Errorf("attempt must be >= 1, got %d", r.Attempt))
	case r.IsRetry() && r.ParentRunID == nil:
		errs = append(errs, fmt.Errorf("retry run (attempt=%d) must have parent_run_id", r.Attempt))
	case !r.IsRetry() && r.ParentRunID != nil:
		errs = append(errs, errors.New("initial run (attempt=1) must not have parent_run_id"))
	}
	return errors.Join(errs...)
}

// OutcomeStatus classifies how a run ended.
type OutcomeStatus string

const (
	OutcomeSuccess               OutcomeStatus = "success"
	OutcomeTransportError        OutcomeStatus = "transport_error"
	OutcomeInsufficientFragments OutcomeStatus = "insufficient_fragments"
	// OutcomeEmptyPhrase means reassembly produced nothing submittable.
	OutcomeEmptyPhrase OutcomeStatus = "empty_phrase"
	// OutcomeSinkFailure means an artifact sink rejected a write.
	OutcomeSinkFailure OutcomeStatus = "sink_failure"
)

// RunOutcome is a status plus a human-readable message.
type RunOutcome struct {
	Status  OutcomeStatus
	Message string
}

func (o RunOutcome) String() string {
	if o.Message == "" {
		return string(o.Status)
	}
	return string(o.Status) + ": " + o.Message
}
