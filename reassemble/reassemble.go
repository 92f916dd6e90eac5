// Package reassemble rebuilds the ordered phrase from a drained fragment set.
//
// Reassembly is a pure function of its input: filter valid fragments, drop
// later duplicates of an index, gate on completeness, sort, join, and
// normalize punctuation spacing.
package reassemble

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pithecene-io/relay/types"
)

// ErrInsufficientFragments matches every InsufficientFragmentsError via errors.Is.
var ErrInsufficientFragments = errors.New("insufficient fragments")

// InsufficientFragmentsError reports a failed completeness gate.
type InsufficientFragmentsError struct {
	// Observed is the number of distinct valid fragment indices.
	Observed int
	// Required is the target count.
	Required int
}

func (e *InsufficientFragmentsError) Error() string {
	return fmt.Sprintf("%s: only %d/%d fragments collected", ErrInsufficientFragments, e.Observed, e.Required)
}

// Is reports whether target is ErrInsufficientFragments.
func (e *InsufficientFragmentsError) Is(target error) bool {
	return target == ErrInsufficientFragments
}

// Report summarizes how a fragment set was interpreted.
type Report struct {
	// Total is the number of fragments in the set.
	Total int `json:"total"`
	// Valid is the number of valid fragments, duplicates included.
	Valid int `json:"valid"`
	// Invalid is the number of fragments missing an index or text.
	Invalid int `json:"invalid"`
	// Distinct is the number of valid fragments kept after deduplication.
	Distinct int `json:"distinct"`
	// Duplicates is the number of valid fragments dropped because an
	// earlier arrival already claimed the same index.
	Duplicates int `json:"duplicates"`
	// DuplicateIndices lists each index that appeared more than once, ascending.
	DuplicateIndices []int `json:"duplicate_indices,omitempty"`
}

// Analyze filters and deduplicates fragments without gating.
// It returns the kept fragments in ascending index order.
//
// When two valid fragments share an index, the first to arrive wins and
// later ones are counted as duplicates.
func Analyze(fragments types.FragmentSet) ([]types.Fragment, Report) {
	report := Report{Total: len(fragments)}

	seen := make(map[int]struct{}, len(fragments))
	dupSeen := make(map[int]struct{})
	kept := make([]types.Fragment, 0, len(fragments))

	for _, f := range fragments {
		if !f.Valid() {
			report.Invalid++
			continue
		}
		report.Valid++

		idx := *f.OrderIndex
		if _, dup := seen[idx]; dup {
			report.Duplicates++
			if _, ok := dupSeen[idx]; !ok {
				dupSeen[idx] = struct{}{}
				report.DuplicateIndices = append(report.DuplicateIndices, idx)
			}
			continue
		}
		seen[idx] = struct{}{}
		kept = append(kept, f)
	}
	report.Distinct = len(kept)
	sort.Ints(report.DuplicateIndices)

	sort.SliceStable(kept, func(i, j int) bool {
		return *kept[i].OrderIndex < *kept[j].OrderIndex
	})

	return kept, report
}

// Reassemble returns the normalized phrase built from fragments.
// It fails with *InsufficientFragmentsError when fewer than targetCount
// distinct valid indices are present; no partial phrase is returned.
// Duplicates do not count toward targetCount: only the first fragment seen
// for an index is kept, so {1:"a", 1:"b"} holds one index, not two.
func Reassemble(fragments types.FragmentSet, targetCount int) (string, error) {
	text, _, err := ReassembleWithReport(fragments, targetCount)
	return text, err
}

// ReassembleWithReport is Reassemble that also returns the analysis report,
// including on gate failure.
func ReassembleWithReport(fragments types.FragmentSet, targetCount int) (string, Report, error) {
	kept, report := Analyze(fragments)
	if len(kept) < targetCount {
		return "", report, &InsufficientFragmentsError{Observed: len(kept), Required: targetCount}
	}

	words := make([]string, len(kept))
	for i, f := range kept {
		words[i] = *f.Text
	}

	return NormalizePunctuation(strings.Join(words, " ")), report, nil
}
