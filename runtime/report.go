package runtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pithecene-io/relay/metrics"
	"github.com/pithecene-io/relay/types"
)

// RunReport is the structured JSON report written by --report.
// All fields use json tags matching the documented contract.
type RunReport struct {
	RunID       string              `json:"run_id"`
	JobID       string              `json:"job_id,omitempty"`
	Attempt     int                 `json:"attempt"`
	Outcome     types.OutcomeStatus `json:"outcome"`
	Message     string              `json:"message"`
	ExitCode    int                 `json:"exit_code"`
	DurationMs  int64               `json:"duration_ms"`
	Source      string              `json:"source"`
	Destination string              `json:"destination"`

	Drain      *ReportDrain      `json:"drain"`
	Reassembly *ReportReassembly `json:"reassembly"`
	Submission *ReportSubmission `json:"submission,omitempty"`
	Metrics    *metrics.Snapshot `json:"metrics"`

	Phrase       string `json:"phrase,omitempty"`
	ArtifactPath string `json:"artifact_path,omitempty"`
}

// ReportDrain holds drain stats in the report.
type ReportDrain struct {
	Rounds    int    `json:"rounds"`
	Collected int    `json:"collected"`
	Stop      string `json:"stop,omitempty"`
}

// ReportReassembly holds reassembly stats in the report.
type ReportReassembly struct {
	TargetCount      int   `json:"target_count"`
	Valid            int   `json:"valid"`
	Invalid          int   `json:"invalid"`
	Distinct         int   `json:"distinct"`
	Duplicates       int   `json:"duplicates"`
	DuplicateIndices []int `json:"duplicate_indices,omitempty"`
}

// ReportSubmission holds the destination response in the report.
type ReportSubmission struct {
	StatusCode int    `json:"status_code"`
	MessageID  string `json:"message_id,omitempty"`
}

// BuildRunReport composes a RunReport from a RunResult and metrics snapshot.
// The exitCode is the process exit code that will be returned to the caller.
func BuildRunReport(result *RunResult, cfg *RunConfig, snap metrics.Snapshot, exitCode int) *RunReport {
	report := &RunReport{
		RunID:        result.RunMeta.RunID,
		Attempt:      result.RunMeta.Attempt,
		Outcome:      result.Outcome.Status,
		Message:      result.Outcome.Message,
		ExitCode:     exitCode,
		DurationMs:   result.Duration.Milliseconds(),
		Source:       cfg.Source,
		Destination:  cfg.Destination,
		ArtifactPath: cfg.ArtifactPath,
		Drain: &ReportDrain{
			Rounds:    result.DrainRounds,
			Collected: len(result.Fragments),
			Stop:      string(result.DrainStop),
		},
		Reassembly: &ReportReassembly{
			TargetCount:      cfg.TargetCount,
			Valid:            result.Reassembly.Valid,
			Invalid:          result.Reassembly.Invalid,
			Distinct:         result.Reassembly.Distinct,
			Duplicates:       result.Reassembly.Duplicates,
			DuplicateIndices: result.Reassembly.DuplicateIndices,
		},
		Metrics: &snap,
		Phrase:  result.Phrase,
	}

	if result.RunMeta.JobID != nil {
		report.JobID = *result.RunMeta.JobID
	}
	if result.Submission != nil {
		report.Submission = &ReportSubmission{
			StatusCode: result.Submission.StatusCode,
			MessageID:  result.Submission.MessageID,
		}
	}

	return report
}

// WriteRunReport writes the report as JSON to the specified path.
// If path is "-", writes to stderr.
func WriteRunReport(report *RunReport, path string) error {
	if path == "" {
		return errors.New("report path must not be empty")
	}

	if path == "-" {
		if err := writeRunReportTo(report, os.Stderr); err != nil {
			return fmt.Errorf("failed to write report to stderr: %w", err)
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	if err := writeRunReportTo(report, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return f.Close()
}

func writeRunReportTo(report *RunReport, w io.Writer) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
