// Package runtime runs one drain, reassemble, submit pass and reports how it
// ended.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pithecene-io/relay/adapter"
	"github.com/pithecene-io/relay/drain"
	"github.com/pithecene-io/relay/lode"
	"github.com/pithecene-io/relay/log"
	"github.com/pithecene-io/relay/metrics"
	"github.com/pithecene-io/relay/reassemble"
	"github.com/pithecene-io/relay/submit"
	"github.com/pithecene-io/relay/types"
)

// cleanupTimeout bounds artifact writes and notifications that run after the
// run context is canceled.
const cleanupTimeout = 30 * time.Second

// Drainer collects fragments from the source queue.
type Drainer interface {
	Run(ctx context.Context, targetCount, maxRounds int) (*drain.Result, error)
}

// Submitter forwards the phrase to the destination queue.
type Submitter interface {
	Submit(ctx context.Context, text string) (types.SubmissionResult, error)
}

// RunConfig configures a single run.
type RunConfig struct {
	// RunMeta is the run identity and lineage metadata.
	RunMeta *types.RunMeta
	// Drainer drains the source queue (required).
	Drainer Drainer
	// Submitter submits the phrase (required).
	Submitter Submitter
	// TargetCount is the number of distinct fragments required.
	TargetCount int
	// MaxRounds bounds the drain.
	MaxRounds int
	// Sink receives the fragment set and phrase. Nil disables artifacts.
	Sink lode.Sink
	// Adapter is notified after the run. Nil disables notifications.
	Adapter adapter.Adapter
	// Source and Destination label the queues in logs and events.
	Source      string
	Destination string
	// ArtifactPath is reported in the completion event.
	ArtifactPath string
	// Collector is the metrics collector for this run.
	// If nil, no metrics are recorded (all Collector methods are nil-safe).
	Collector *metrics.Collector
	// Logger overrides the default stderr logger.
	Logger *log.Logger
}

// RunResult represents the result of a run.
type RunResult struct {
	// RunMeta is the run identity and lineage.
	RunMeta *types.RunMeta
	// Outcome is the run outcome.
	Outcome *types.RunOutcome
	// StartedAt is when Execute began.
	StartedAt time.Time
	// Duration is the total run duration.
	Duration time.Duration
	// Fragments is everything the drain collected, in arrival order.
	Fragments types.FragmentSet
	// DrainRounds is the number of drain rounds started.
	DrainRounds int
	// DrainStop is why the drain ended. Empty when the drain failed.
	DrainStop drain.StopReason
	// Reassembly describes how fragments were filtered. Zero when the
	// drain failed.
	Reassembly reassemble.Report
	// Phrase is the reassembled phrase, if reassembly succeeded.
	Phrase string
	// Submission is set once a send was attempted and answered.
	Submission *types.SubmissionResult
}

// ExitCode returns the process exit code for the outcome.
func (r *RunResult) ExitCode() int {
	return ExitCodeFor(r.Outcome.Status)
}

// RunOrchestrator orchestrates a single run.
type RunOrchestrator struct {
	config    *RunConfig
	logger    *log.Logger
	startTime time.Time
}

// NewRunOrchestrator creates a new run orchestrator.
// Returns error if run metadata or wiring is invalid.
func NewRunOrchestrator(config *RunConfig) (*RunOrchestrator, error) {
	if config.RunMeta == nil {
		return nil, errors.New("run metadata is required")
	}
	if err := config.RunMeta.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run metadata: %w", err)
	}
	if config.Drainer == nil || config.Submitter == nil {
		return nil, errors.New("drainer and submitter are required")
	}
	if config.TargetCount < 0 {
		return nil, fmt.Errorf("target count must be >= 0, got %d", config.TargetCount)
	}
	if config.MaxRounds < 1 {
		return nil, fmt.Errorf("max rounds must be >= 1, got %d", config.MaxRounds)
	}

	logger := config.Logger
	if logger == nil {
		logger = log.NewLogger(config.RunMeta)
	}

	return &RunOrchestrator{
		config: config,
		logger: logger,
	}, nil
}

// Execute runs the pipeline end-to-end.
//
// Execution flow:
//  1. Drain the source queue
//  2. Write the fragment set to the sink (also on drain failure)
//  3. Reassemble and gate on completeness
//  4. Write the phrase to the sink
//  5. Submit the phrase
//  6. Publish the completion event
//
// Any failure before step 5 aborts the run without sending. Run failures
// are reported through RunResult.Outcome; the error return is reserved for
// failures outside the pipeline and is currently always nil.
func (r *RunOrchestrator) Execute(ctx context.Context) (*RunResult, error) {
	r.startTime = time.Now()
	r.config.Collector.IncRunStarted()

	r.logger.Info("starting run", map[string]any{
		"source":       r.config.Source,
		"destination":  r.config.Destination,
		"target_count": r.config.TargetCount,
		"max_rounds":   r.config.MaxRounds,
	})

	result := &RunResult{
		RunMeta:   r.config.RunMeta,
		StartedAt: r.startTime,
	}
	result.Outcome = r.run(ctx, result)
	r.finish(ctx, result)
	return result, nil
}

// run executes the stages and returns the outcome. It fills result as
// stages complete.
func (r *RunOrchestrator) run(ctx context.Context, result *RunResult) *types.RunOutcome {
	dres, drainErr := r.config.Drainer.Run(ctx, r.config.TargetCount, r.config.MaxRounds)
	if dres != nil {
		result.Fragments = dres.Fragments
		result.DrainRounds = dres.Rounds
		if drainErr == nil {
			result.DrainStop = dres.Stop
		}
	}

	// Fragments are written even when the drain failed: their messages are
	// already deleted from the queue.
	if sinkErr := r.writeFragments(ctx, result.Fragments); sinkErr != nil {
		if drainErr == nil {
			return sinkFailure("fragment", sinkErr)
		}
		r.logger.Warn("fragment artifact write failed after drain error", map[string]any{
			"error": sinkErr.Error(),
		})
	}

	if drainErr != nil {
		r.logger.Error("drain failed", map[string]any{
			"error":     drainErr.Error(),
			"collected": len(result.Fragments),
		})
		return DetermineOutcome(drainErr)
	}

	phrase, report, err := reassemble.ReassembleWithReport(result.Fragments, r.config.TargetCount)
	result.Reassembly = report
	r.config.Collector.AddDuplicateFragments(report.Duplicates)
	if report.Duplicates > 0 {
		r.logger.Warn("duplicate fragment indices dropped", map[string]any{
			"duplicates": report.Duplicates,
			"indices":    report.DuplicateIndices,
		})
	}
	if err != nil {
		r.logger.Error("reassembly failed", map[string]any{
			"error":    err.Error(),
			"valid":    report.Valid,
			"invalid":  report.Invalid,
			"distinct": report.Distinct,
		})
		return DetermineOutcome(err)
	}
	result.Phrase = phrase

	if strings.TrimSpace(phrase) == "" {
		r.logger.Error("reassembled phrase is empty", nil)
		return DetermineOutcome(submit.ErrEmptyPhrase)
	}

	if r.config.Sink != nil {
		if err := r.config.Sink.WritePhrase(ctx, phrase); err != nil {
			r.logger.Error("phrase artifact write failed", map[string]any{"error": err.Error()})
			return sinkFailure("phrase", err)
		}
	}

	sub, err := r.config.Submitter.Submit(ctx, phrase)
	if err != nil {
		r.logger.Error("submission failed", map[string]any{"error": err.Error()})
		return DetermineOutcome(err)
	}
	result.Submission = &sub

	if sub.StatusCode < 200 || sub.StatusCode >= 300 {
		return &types.RunOutcome{
			Status:  types.OutcomeTransportError,
			Message: fmt.Sprintf("destination returned status %d", sub.StatusCode),
		}
	}

	return DetermineOutcome(nil)
}

// writeFragments writes the fragment set with a context that survives
// cancellation of the run, so a canceled drain still persists what it took.
func (r *RunOrchestrator) writeFragments(ctx context.Context, fragments types.FragmentSet) error {
	if r.config.Sink == nil {
		return nil
	}
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	return r.config.Sink.WriteFragments(writeCtx, fragments)
}

// finish records outcome metrics, logs, and publishes the completion event.
func (r *RunOrchestrator) finish(ctx context.Context, result *RunResult) {
	result.Duration = time.Since(r.startTime)

	if result.Outcome.Status == types.OutcomeSuccess {
		r.config.Collector.IncRunCompleted()
	} else {
		r.config.Collector.IncRunFailed()
	}

	fields := map[string]any{
		"outcome":   result.Outcome.Status,
		"message":   result.Outcome.Message,
		"duration":  result.Duration.String(),
		"collected": len(result.Fragments),
		"rounds":    result.DrainRounds,
	}
	if result.Submission != nil {
		fields["status_code"] = result.Submission.StatusCode
	}
	r.logger.Info("run completed", fields)

	if r.config.Adapter == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := r.config.Adapter.Publish(pubCtx, r.buildEvent(result)); err != nil {
		r.logger.Warn("completion notification failed (best effort)", map[string]any{
			"error": err.Error(),
		})
	}
}

// buildEvent composes the completion event from a finished result.
func (r *RunOrchestrator) buildEvent(result *RunResult) *adapter.RunCompletedEvent {
	event := &adapter.RunCompletedEvent{
		ContractVersion:    types.EventContractVersion,
		EventType:          adapter.EventTypeRunCompleted,
		RunID:              result.RunMeta.RunID,
		Attempt:            result.RunMeta.Attempt,
		Source:             r.config.Source,
		Destination:        r.config.Destination,
		Day:                lode.DeriveDay(result.StartedAt),
		Outcome:            string(result.Outcome.Status),
		Timestamp:          time.Now().UTC().Format(time.RFC3339),
		FragmentsCollected: len(result.Fragments),
		FragmentsValid:     len(result.Fragments.Valid()),
		TargetCount:        r.config.TargetCount,
		DrainRounds:        result.DrainRounds,
		ArtifactPath:       r.config.ArtifactPath,
		DurationMs:         result.Duration.Milliseconds(),
	}
	if result.Outcome.Status != types.OutcomeSuccess {
		event.Message = result.Outcome.Message
	}
	if result.RunMeta.JobID != nil {
		event.JobID = *result.RunMeta.JobID
	}
	if result.Submission != nil {
		event.StatusCode = result.Submission.StatusCode
		event.MessageID = result.Submission.MessageID
	}
	if r.config.Collector != nil {
		snap := r.config.Collector.Snapshot()
		event.Metrics = &snap
	}
	return event
}
