package types //nolint:revive // types is a valid package name

import (
	"strings"
	"testing"
)

func TestRunMeta_Validate(t *testing.T) {
	parent := "run-parent-001"

	tests := []struct {
		name string
		meta RunMeta
		want []string
	}{
		{"valid initial run", RunMeta{RunID: "run-001", Attempt: 1}, nil},
		{"valid retry run", RunMeta{RunID: "run-002", Attempt: 2, ParentRunID: &parent}, nil},
		{"empty run_id", RunMeta{Attempt: 1}, []string{"run_id must be non-empty"}},
		{"attempt zero", RunMeta{RunID: "run-001"}, []string{"attempt must be >= 1"}},
		{"initial run with parent", RunMeta{RunID: "run-001", Attempt: 1, ParentRunID: &parent}, []string{"must not have parent_run_id"}},
		{"retry without parent", RunMeta{RunID: "run-001", Attempt: 2}, []string{"must have parent_run_id"}},
		{"all reported", RunMeta{Attempt: 3}, []string{"run_id must be non-empty", "attempt=3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.meta.Validate()
			if len(tt.want) == 0 {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			for _, w := range tt.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("error %q missing %q", err, w)
				}
			}
		})
	}
}

func TestRunOutcome_String(t *testing.T) {
	if got := (RunOutcome{Status: OutcomeSuccess}).String(); got != "success" {
		t.Errorf("String() = %q", got)
	}
	o := RunOutcome{Status: OutcomeInsufficientFragments, Message: "18/21"}
	if got := o.String(); got != "insufficient_fragments: 18/21" {
		t.Errorf("String() = %q", got)
	}
}
