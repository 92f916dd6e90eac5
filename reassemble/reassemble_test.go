package reassemble

import (
	"errors"
	"slices"
	"testing"

	"github.com/pithecene-io/relay/types"
)

func frag(index int, text string) types.Fragment {
	return types.NewFragment(index, text)
}

func TestReassemble_SortsByIndex(t *testing.T) {
	set := types.FragmentSet{
		frag(3, "world"),
		frag(1, "Hello"),
		frag(2, "there"),
	}

	got, err := Reassemble(set, 3)
	if err != nil {
		t.Fatalf("Reassemble failed: %v", err)
	}
	if got != "Hello there world" {
		t.Errorf("got %q, want %q", got, "Hello there world")
	}
}

func TestReassemble_Deterministic(t *testing.T) {
	base := types.FragmentSet{
		frag(0, "The"),
		frag(1, "quick"),
		frag(2, "brown"),
		frag(3, "fox"),
		frag(4, "."),
	}
	want, err := Reassemble(base, len(base))
	if err != nil {
		t.Fatalf("Reassemble failed: %v", err)
	}
	if want != "The quick brown fox." {
		t.Fatalf("got %q", want)
	}

	permutations := [][]int{
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
		{1, 4, 0, 3, 2},
	}
	for _, perm := range permutations {
		shuffled := make(types.FragmentSet, 0, len(base))
		for _, i := range perm {
			shuffled = append(shuffled, base[i])
		}
		got, err := Reassemble(shuffled, len(base))
		if err != nil {
			t.Fatalf("Reassemble(%v) failed: %v", perm, err)
		}
		if got != want {
			t.Errorf("Reassemble(%v) = %q, want %q", perm, got, want)
		}
	}
}

func TestReassemble_ExcludesInvalid(t *testing.T) {
	idx := 9
	text := "ghost"
	set := types.FragmentSet{
		frag(2, "b"),
		{OrderIndex: &idx},
		{Text: &text},
		frag(1, "a"),
		{},
	}

	got, report, err := ReassembleWithReport(set, 2)
	if err != nil {
		t.Fatalf("Reassemble failed: %v", err)
	}
	if got != "a b" {
		t.Errorf("got %q, want %q", got, "a b")
	}
	if report.Total != 5 || report.Valid != 2 || report.Invalid != 3 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestReassemble_EmptyTextIsInvalid(t *testing.T) {
	set := types.FragmentSet{frag(1, "a"), frag(2, "")}

	_, err := Reassemble(set, 2)
	var insufficient *InsufficientFragmentsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientFragmentsError, got %v", err)
	}
	if insufficient.Observed != 1 {
		t.Errorf("Observed = %d, want 1", insufficient.Observed)
	}
}

func TestReassemble_CompletenessGate(t *testing.T) {
	tests := []struct {
		name        string
		count       int
		target      int
		wantErr     bool
		wantObserve int
	}{
		{name: "exact", count: 21, target: 21},
		{name: "surplus", count: 25, target: 21},
		{name: "one short", count: 20, target: 21, wantErr: true, wantObserve: 20},
		{name: "nothing", count: 0, target: 21, wantErr: true, wantObserve: 0},
		{name: "zero target accepts empty", count: 0, target: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := make(types.FragmentSet, 0, tt.count)
			for i := range tt.count {
				set = append(set, frag(i, "w"))
			}

			got, err := Reassemble(set, tt.target)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			if got != "" {
				t.Errorf("expected no partial phrase, got %q", got)
			}
			if !errors.Is(err, ErrInsufficientFragments) {
				t.Fatalf("error %v should match ErrInsufficientFragments", err)
			}
			var insufficient *InsufficientFragmentsError
			if !errors.As(err, &insufficient) {
				t.Fatalf("expected *InsufficientFragmentsError, got %T", err)
			}
			if insufficient.Observed != tt.wantObserve || insufficient.Required != tt.target {
				t.Errorf("got %d/%d, want %d/%d",
					insufficient.Observed, insufficient.Required, tt.wantObserve, tt.target)
			}
		})
	}
}

func TestReassemble_DuplicatesFirstSeenWins(t *testing.T) {
	set := types.FragmentSet{
		frag(1, "alpha"),
		frag(2, "beta"),
		frag(1, "ALPHA"),
		frag(2, "BETA"),
		frag(2, "Beta"),
	}

	got, report, err := ReassembleWithReport(set, 2)
	if err != nil {
		t.Fatalf("Reassemble failed: %v", err)
	}
	if got != "alpha beta" {
		t.Errorf("got %q, want %q", got, "alpha beta")
	}
	if report.Duplicates != 3 {
		t.Errorf("Duplicates = %d, want 3", report.Duplicates)
	}
	if report.Distinct != 2 {
		t.Errorf("Distinct = %d, want 2", report.Distinct)
	}
	if !slices.Equal(report.DuplicateIndices, []int{1, 2}) {
		t.Errorf("DuplicateIndices = %v, want [1 2]", report.DuplicateIndices)
	}
}

func TestReassemble_DuplicatesDoNotSatisfyGate(t *testing.T) {
	set := types.FragmentSet{frag(1, "a"), frag(1, "a"), frag(1, "a")}

	_, err := Reassemble(set, 3)
	var insufficient *InsufficientFragmentsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientFragmentsError, got %v", err)
	}
	if insufficient.Observed != 1 {
		t.Errorf("Observed = %d, want 1", insufficient.Observed)
	}
}

func TestReassemble_ConflictingDuplicateCountsOnce(t *testing.T) {
	set := types.FragmentSet{frag(1, "a"), frag(1, "b")}

	if _, err := Reassemble(set, 2); !errors.Is(err, ErrInsufficientFragments) {
		t.Fatalf("Reassemble(target=2) error = %v, want ErrInsufficientFragments", err)
	}
	got, err := Reassemble(set, 1)
	if err != nil {
		t.Fatalf("Reassemble(target=1): %v", err)
	}
	if got != "a" {
		t.Errorf("Reassemble() = %q, want first-seen %q", got, "a")
	}
}

func TestReassemble_IndicesNeedNotBeContiguous(t *testing.T) {
	set := types.FragmentSet{frag(40, "c"), frag(-2, "a"), frag(7, "b")}

	got, err := Reassemble(set, 3)
	if err != nil {
		t.Fatalf("Reassemble failed: %v", err)
	}
	if got != "a b c" {
		t.Errorf("got %q, want %q", got, "a b c")
	}
}

func TestAnalyze_ReturnsSortedKept(t *testing.T) {
	kept, report := Analyze(types.FragmentSet{frag(5, "e"), frag(1, "a"), frag(3, "c")})

	var indices []int
	for _, f := range kept {
		indices = append(indices, *f.OrderIndex)
	}
	if !slices.Equal(indices, []int{1, 3, 5}) {
		t.Errorf("indices = %v, want [1 3 5]", indices)
	}
	if report.Distinct != 3 || report.Duplicates != 0 || report.DuplicateIndices != nil {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestInsufficientFragmentsError_Message(t *testing.T) {
	err := &InsufficientFragmentsError{Observed: 18, Required: 21}
	want := "insufficient fragments: only 18/21 fragments collected"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
