// Package reader provides the read-side data access layer for the relay CLI.
//
// Read-only commands go through this package: it turns queue depth
// snapshots and persisted artifacts into response shapes the renderer and
// TUI share. Nothing here sends, receives, or deletes messages.
package reader

import "time"

// DepthResponse is a point-in-time depth reading of one queue.
type DepthResponse struct {
	Queue     string    `json:"queue" yaml:"queue"`
	Visible   int       `json:"visible" yaml:"visible"`
	InFlight  int       `json:"in_flight" yaml:"in_flight"`
	Delayed   int       `json:"delayed" yaml:"delayed"`
	Total     int       `json:"total" yaml:"total"`
	Empty     bool      `json:"empty" yaml:"empty"`
	CheckedAt time.Time `json:"checked_at" yaml:"checked_at"`
}

// FragmentEntry is one persisted fragment in arrival order.
type FragmentEntry struct {
	Seq     int     `json:"seq" yaml:"seq"`
	OrderNo *int    `json:"order_no" yaml:"order_no"`
	Word    *string `json:"word" yaml:"word"`
	Valid   bool    `json:"valid" yaml:"valid"`
}

// InspectRunResponse summarizes the artifacts of one run.
type InspectRunResponse struct {
	// Origin is the artifact file path or "lode".
	Origin  string `json:"origin" yaml:"origin"`
	RunID   string `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	JobID   string `json:"job_id,omitempty" yaml:"job_id,omitempty"`
	Attempt int    `json:"attempt,omitempty" yaml:"attempt,omitempty"`
	Source  string `json:"source,omitempty" yaml:"source,omitempty"`
	Day     string `json:"day,omitempty" yaml:"day,omitempty"`

	Collected  int   `json:"collected" yaml:"collected"`
	Valid      int   `json:"valid" yaml:"valid"`
	Invalid    int   `json:"invalid" yaml:"invalid"`
	Distinct   int   `json:"distinct" yaml:"distinct"`
	Duplicates int   `json:"duplicates" yaml:"duplicates"`
	MaxIndex   *int  `json:"max_index" yaml:"max_index"`
	Missing    []int `json:"missing" yaml:"missing"`

	// Preview is the phrase the fragments reassemble to, gate ignored.
	Preview string `json:"preview" yaml:"preview"`
	// Phrase is the persisted phrase, if the run got that far.
	Phrase string `json:"phrase,omitempty" yaml:"phrase,omitempty"`

	Fragments []FragmentEntry `json:"fragments" yaml:"fragments"`
}
