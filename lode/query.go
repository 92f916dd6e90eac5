package lode

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/justapithecus/lode/lode"

	"github.com/pithecene-io/relay/types"
)

// ErrRunNotFound is returned when no records exist for the requested run.
var ErrRunNotFound = errors.New("no records found for run")

// RunRecords holds everything a DatasetSink wrote for one run.
type RunRecords struct {
	// Fragments are ordered by arrival (seq).
	Fragments []FragmentRecord
	// Phrase is nil when the run never reassembled a phrase.
	Phrase *PhraseRecord
}

// FragmentSet returns the stored fragments in arrival order.
func (r *RunRecords) FragmentSet() types.FragmentSet {
	set := make(types.FragmentSet, 0, len(r.Fragments))
	for _, rec := range r.Fragments {
		set = append(set, rec.Fragment())
	}
	return set
}

// QueryRun reads the fragment and phrase records of runID from ds.
// Snapshot manifests are a coarse pre-filter; record fields are authoritative,
// and fragments are keyed by seq so overlapping snapshots do not duplicate.
func QueryRun(ctx context.Context, ds lode.Dataset, runID string) (*RunRecords, error) {
	if runID == "" {
		return nil, errors.New("run id is required")
	}

	snapshots, err := ds.Snapshots(ctx)
	if err != nil {
		return nil, WrapReadError(err, fmt.Sprintf("%s/snapshots", ds.ID()))
	}

	fragments := make(map[int64]FragmentRecord)
	var phrase *PhraseRecord
	found := false

	for _, snap := range snapshots {
		if !snapshotMatchesFilter(snap, "run_id", runID) {
			continue
		}

		data, err := ds.Read(ctx, snap.ID)
		if err != nil {
			return nil, WrapReadError(err, fmt.Sprintf("%s/snapshot/%s", ds.ID(), snap.ID))
		}

		for _, item := range data {
			record, ok := item.(map[string]any)
			if !ok || toString(record["run_id"]) != runID {
				continue
			}
			switch record["record_kind"] {
			case RecordKindFragment:
				rec := fragmentRecordFromMap(record)
				fragments[rec.Seq] = rec
				found = true
			case RecordKindPhrase:
				rec := phraseRecordFromMap(record)
				phrase = &rec
				found = true
			}
		}
	}

	if !found {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	out := &RunRecords{Phrase: phrase}
	for _, rec := range fragments {
		out.Fragments = append(out.Fragments, rec)
	}
	sort.Slice(out.Fragments, func(i, j int) bool {
		return out.Fragments[i].Seq < out.Fragments[j].Seq
	})
	return out, nil
}

// snapshotMatchesFilter checks if a snapshot's file paths match
// the given partition key=value filter.
func snapshotMatchesFilter(snap *lode.DatasetSnapshot, key, value string) bool {
	if value == "" {
		return true
	}
	for _, f := range snap.Manifest.Files {
		if matchesPartitionValue(f.Path, key, value) {
			return true
		}
	}
	return false
}

// matchesPartitionValue checks if a Hive-partitioned path contains an exact
// key=value segment, so run_id=run-1 does not match run_id=run-10.
func matchesPartitionValue(path, key, value string) bool {
	segment := key + "=" + value
	for _, part := range strings.Split(path, "/") {
		if part == segment {
			return true
		}
	}
	return false
}
