package lode

import (
	"strings"

	"github.com/pithecene-io/relay/types"
)

// RecordKind discriminator values. record_kind is also the last partition key.
const (
	RecordKindFragment = "fragment"
	RecordKindPhrase   = "phrase"
)

// FragmentRecord is the storage format for one drained fragment.
type FragmentRecord struct {
	RecordKind string `json:"record_kind"`

	// Seq is the arrival position within the drain, starting at 0.
	Seq     int64   `json:"seq"`
	OrderNo *int    `json:"order_no"`
	Word    *string `json:"word"`
	Valid   bool    `json:"valid"`

	RunID   string  `json:"run_id"`
	JobID   *string `json:"job_id,omitempty"`
	Attempt int     `json:"attempt"`

	// Partition keys
	Source string `json:"source"`
	Day    string `json:"day"`
}

// PhraseRecord is the storage format for the reassembled phrase.
type PhraseRecord struct {
	RecordKind string `json:"record_kind"`

	Phrase    string `json:"phrase"`
	WordCount int    `json:"word_count"`

	RunID   string  `json:"run_id"`
	JobID   *string `json:"job_id,omitempty"`
	Attempt int     `json:"attempt"`

	// Partition keys
	Source string `json:"source"`
	Day    string `json:"day"`
}

// toFragmentRecordMap converts a fragment to a map for Lode storage.
// Lode HiveLayout requires records as map[string]any.
func toFragmentRecordMap(f types.Fragment, seq int64, cfg Config) map[string]any {
	m := map[string]any{
		"record_kind": RecordKindFragment,
		"seq":         seq,
		"order_no":    nil,
		"word":        nil,
		"valid":       f.Valid(),
		"run_id":      cfg.RunID,
		"attempt":     cfg.Attempt,
		"source":      cfg.Source,
		"day":         cfg.Day,
	}
	if f.OrderIndex != nil {
		m["order_no"] = *f.OrderIndex
	}
	if f.Text != nil {
		m["word"] = *f.Text
	}
	if cfg.JobID != "" {
		m["job_id"] = cfg.JobID
	}
	return m
}

// toPhraseRecordMap converts a phrase to a map for Lode storage.
func toPhraseRecordMap(phrase string, cfg Config) map[string]any {
	m := map[string]any{
		"record_kind": RecordKindPhrase,
		"phrase":      phrase,
		"word_count":  len(strings.Fields(phrase)),
		"run_id":      cfg.RunID,
		"attempt":     cfg.Attempt,
		"source":      cfg.Source,
		"day":         cfg.Day,
	}
	if cfg.JobID != "" {
		m["job_id"] = cfg.JobID
	}
	return m
}

// fragmentRecordFromMap rebuilds a FragmentRecord from a decoded record.
// JSONL decoding yields float64 for numbers.
func fragmentRecordFromMap(m map[string]any) FragmentRecord {
	r := FragmentRecord{
		RecordKind: RecordKindFragment,
		Seq:        toInt64(m["seq"]),
		RunID:      toString(m["run_id"]),
		Attempt:    int(toInt64(m["attempt"])),
		Source:     toString(m["source"]),
		Day:        toString(m["day"]),
	}
	if m["order_no"] != nil {
		idx := int(toInt64(m["order_no"]))
		r.OrderNo = &idx
	}
	if w, ok := m["word"].(string); ok {
		r.Word = &w
	}
	if v, ok := m["valid"].(bool); ok {
		r.Valid = v
	}
	if j := toString(m["job_id"]); j != "" {
		r.JobID = &j
	}
	return r
}

// phraseRecordFromMap rebuilds a PhraseRecord from a decoded record.
func phraseRecordFromMap(m map[string]any) PhraseRecord {
	r := PhraseRecord{
		RecordKind: RecordKindPhrase,
		Phrase:     toString(m["phrase"]),
		WordCount:  int(toInt64(m["word_count"])),
		RunID:      toString(m["run_id"]),
		Attempt:    int(toInt64(m["attempt"])),
		Source:     toString(m["source"]),
		Day:        toString(m["day"]),
	}
	if j := toString(m["job_id"]); j != "" {
		r.JobID = &j
	}
	return r
}

// Fragment returns the fragment carried by the record.
func (r FragmentRecord) Fragment() types.Fragment {
	return types.Fragment{OrderIndex: r.OrderNo, Text: r.Word}
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}

// toString converts a value to string, returning empty string for nil/non-string.
func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
