package reader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/justapithecus/lode/lode"

	relaylode "github.com/pithecene-io/relay/lode"
	"github.com/pithecene-io/relay/queue"
	"github.com/pithecene-io/relay/reassemble"
	"github.com/pithecene-io/relay/types"
)

// DepthQuerier is the read-only slice of queue.Client.
type DepthQuerier interface {
	Depth(ctx context.Context) (types.QueueDepth, error)
}

// Depth reads the approximate depth of a queue.
func Depth(ctx context.Context, q DepthQuerier, label string) (*DepthResponse, error) {
	d, err := q.Depth(ctx)
	if err != nil {
		return nil, err
	}
	return &DepthResponse{
		Queue:     label,
		Visible:   d.Visible,
		InFlight:  d.InFlight,
		Delayed:   d.Delayed,
		Total:     d.Total(),
		Empty:     d.Total() == 0,
		CheckedAt: time.Now().UTC(),
	}, nil
}

// InspectFile summarizes a fragment dump written by the file sink. When the
// phrase file sits next to it, its contents are included.
func InspectFile(path string) (*InspectRunResponse, error) {
	set, err := relaylode.ReadFragmentsFile(path)
	if err != nil {
		return nil, err
	}
	resp := Summarize(set)
	resp.Origin = path

	phrasePath := filepath.Join(filepath.Dir(path), relaylode.PhraseFile)
	data, err := os.ReadFile(phrasePath)
	switch {
	case err == nil:
		resp.Phrase = strings.TrimRight(string(data), "\n")
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read %s: %w", phrasePath, err)
	}
	return resp, nil
}

// InspectRun summarizes the records a dataset sink wrote for runID.
func InspectRun(ctx context.Context, ds lode.Dataset, runID string) (*InspectRunResponse, error) {
	records, err := relaylode.QueryRun(ctx, ds, runID)
	if err != nil {
		return nil, err
	}

	resp := Summarize(records.FragmentSet())
	resp.Origin = "lode"
	resp.RunID = runID

	switch {
	case len(records.Fragments) > 0:
		first := records.Fragments[0]
		resp.Attempt = first.Attempt
		resp.Source = first.Source
		resp.Day = first.Day
		if first.JobID != nil {
			resp.JobID = *first.JobID
		}
	case records.Phrase != nil:
		resp.Attempt = records.Phrase.Attempt
		resp.Source = records.Phrase.Source
		resp.Day = records.Phrase.Day
		if records.Phrase.JobID != nil {
			resp.JobID = *records.Phrase.JobID
		}
	}
	if records.Phrase != nil {
		resp.Phrase = records.Phrase.Phrase
	}
	return resp, nil
}

// Summarize computes the inspect view of a fragment set.
// Missing lists absent indices between 0 and the highest valid index.
func Summarize(set types.FragmentSet) *InspectRunResponse {
	kept, report := reassemble.Analyze(set)

	resp := &InspectRunResponse{
		Collected:  report.Total,
		Valid:      report.Valid,
		Invalid:    report.Invalid,
		Distinct:   report.Distinct,
		Duplicates: report.Duplicates,
		Missing:    []int{},
		Fragments:  make([]FragmentEntry, 0, len(set)),
	}

	for i, f := range set {
		resp.Fragments = append(resp.Fragments, FragmentEntry{
			Seq:     i,
			OrderNo: f.OrderIndex,
			Word:    f.Text,
			Valid:   f.Valid(),
		})
	}

	if len(kept) == 0 {
		return resp
	}

	maxIndex := *kept[len(kept)-1].OrderIndex
	resp.MaxIndex = &maxIndex
	present := make(map[int]struct{}, len(kept))
	for _, f := range kept {
		present[*f.OrderIndex] = struct{}{}
	}
	for i := 0; i <= maxIndex; i++ {
		if _, ok := present[i]; !ok {
			resp.Missing = append(resp.Missing, i)
		}
	}

	// A zero target never fails the gate.
	resp.Preview, _ = reassemble.Reassemble(set, 0)
	return resp
}

// Verify the queue client satisfies DepthQuerier.
var _ DepthQuerier = (queue.Client)(nil)
