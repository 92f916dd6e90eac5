package runtime

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pithecene-io/relay/metrics"
	"github.com/pithecene-io/relay/reassemble"
	"github.com/pithecene-io/relay/types"
)

func newTestRunResult() *RunResult {
	jobID := "job-001"
	return &RunResult{
		RunMeta: &types.RunMeta{
			RunID:   "run-001",
			JobID:   &jobID,
			Attempt: 1,
		},
		Outcome: &types.RunOutcome{
			Status:  types.OutcomeSuccess,
			Message: "phrase submitted",
		},
		Duration: 5 * time.Second,
		Fragments: types.FragmentSet{
			types.NewFragment(1, "world"),
			types.NewFragment(0, "hello"),
			types.NewFragment(0, "hello"),
		},
		DrainRounds: 3,
		DrainStop:   "queue_empty",
		Reassembly: reassemble.Report{
			Total:            3,
			Valid:            3,
			Distinct:         2,
			Duplicates:       1,
			DuplicateIndices: []int{0},
		},
		Phrase:     "hello world",
		Submission: &types.SubmissionResult{StatusCode: 200, MessageID: "m-1"},
	}
}

func newTestRunConfig() *RunConfig {
	return &RunConfig{
		TargetCount:  2,
		Source:       "https://sqs.us-east-1.amazonaws.com/1/src",
		Destination:  "https://sqs.us-east-1.amazonaws.com/1/dst",
		ArtifactPath: "./out",
	}
}

func TestBuildRunReport(t *testing.T) {
	snap := metrics.Snapshot{RunsStarted: 1, RunsCompleted: 1, MessagesReceived: 3}
	report := BuildRunReport(newTestRunResult(), newTestRunConfig(), snap, 0)

	if report.RunID != "run-001" || report.JobID != "job-001" || report.Attempt != 1 {
		t.Errorf("identity = %s/%s/%d", report.RunID, report.JobID, report.Attempt)
	}
	if report.Outcome != types.OutcomeSuccess || report.ExitCode != 0 {
		t.Errorf("outcome = %s exit = %d", report.Outcome, report.ExitCode)
	}
	if report.DurationMs != 5000 {
		t.Errorf("duration_ms = %d, want 5000", report.DurationMs)
	}
	if report.Drain.Rounds != 3 || report.Drain.Collected != 3 || report.Drain.Stop != "queue_empty" {
		t.Errorf("drain = %+v", report.Drain)
	}
	if report.Reassembly.TargetCount != 2 || report.Reassembly.Duplicates != 1 {
		t.Errorf("reassembly = %+v", report.Reassembly)
	}
	if report.Submission == nil || report.Submission.StatusCode != 200 {
		t.Errorf("submission = %+v", report.Submission)
	}
	if report.Metrics.MessagesReceived != 3 {
		t.Errorf("metrics = %+v", report.Metrics)
	}
}

func TestBuildRunReport_NoSubmission(t *testing.T) {
	result := newTestRunResult()
	result.Submission = nil
	result.Outcome = &types.RunOutcome{Status: types.OutcomeInsufficientFragments, Message: "insufficient"}

	report := BuildRunReport(result, newTestRunConfig(), metrics.Snapshot{}, ExitCodeInsufficientFragments)
	if report.Submission != nil {
		t.Errorf("expected no submission, got %+v", report.Submission)
	}

	var buf bytes.Buffer
	if err := writeRunReportTo(report, &buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := decoded["submission"]; ok {
		t.Error("submission key should be omitted")
	}
	if decoded["exit_code"] != float64(ExitCodeInsufficientFragments) {
		t.Errorf("exit_code = %v", decoded["exit_code"])
	}
}

func TestWriteRunReport_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	report := BuildRunReport(newTestRunResult(), newTestRunConfig(), metrics.Snapshot{}, 0)

	if err := WriteRunReport(report, path); err != nil {
		t.Fatalf("WriteRunReport: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var decoded RunReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Phrase != "hello world" {
		t.Errorf("phrase = %q", decoded.Phrase)
	}
	if !bytes.HasSuffix(data, []byte("\n")) {
		t.Error("report should end with a newline")
	}
}

func TestWriteRunReport_Errors(t *testing.T) {
	report := BuildRunReport(newTestRunResult(), newTestRunConfig(), metrics.Snapshot{}, 0)

	if err := WriteRunReport(report, ""); err == nil {
		t.Error("expected error for empty path")
	}
	bad := filepath.Join(t.TempDir(), "missing", "report.json")
	if err := WriteRunReport(report, bad); err == nil {
		t.Error("expected error for missing directory")
	}
}
