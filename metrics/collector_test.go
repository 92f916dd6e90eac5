package metrics

import (
	"sync"
	"testing"
)

func TestCollector_IncrementMethods(t *testing.T) {
	c := NewCollector("fragments", "fs", "run-001", "job-001")

	c.IncRunStarted()
	c.IncRunCompleted()
	c.IncRunFailed()
	c.IncRunFailed()
	c.IncDrainRound()
	c.IncDrainRound()
	c.IncDrainRound()
	c.IncDepthPoll()
	c.IncEmptyReceive()
	c.AddMessagesReceived(10)
	c.AddMessagesReceived(11)
	c.IncMessageDeleted()
	c.IncMalformedMessage()
	c.AddDuplicateFragments(2)
	c.IncTransportError()
	c.IncSubmissionSuccess()
	c.IncSubmissionFailure()
	c.IncSinkWriteSuccess()
	c.IncSinkWriteSuccess()
	c.IncSinkWriteFailure()

	s := c.Snapshot()

	checks := []struct {
		name string
		got  int64
		want int64
	}{
		{"RunsStarted", s.RunsStarted, 1},
		{"RunsCompleted", s.RunsCompleted, 1},
		{"RunsFailed", s.RunsFailed, 2},
		{"DrainRounds", s.DrainRounds, 3},
		{"DepthPolls", s.DepthPolls, 1},
		{"EmptyReceives", s.EmptyReceives, 1},
		{"MessagesReceived", s.MessagesReceived, 21},
		{"MessagesDeleted", s.MessagesDeleted, 1},
		{"MalformedMessages", s.MalformedMessages, 1},
		{"DuplicateFragments", s.DuplicateFragments, 2},
		{"TransportErrors", s.TransportErrors, 1},
		{"SubmissionSuccess", s.SubmissionSuccess, 1},
		{"SubmissionFailure", s.SubmissionFailure, 1},
		{"SinkWriteSuccess", s.SinkWriteSuccess, 2},
		{"SinkWriteFailure", s.SinkWriteFailure, 1},
	}
	for _, ch := range checks {
		if ch.got != ch.want {
			t.Errorf("%s = %d, want %d", ch.name, ch.got, ch.want)
		}
	}
}

func TestCollector_Dimensions(t *testing.T) {
	c := NewCollector("fragments", "s3", "run-42", "job-7")
	s := c.Snapshot()

	if s.SourceQueue != "fragments" {
		t.Errorf("SourceQueue = %q, want %q", s.SourceQueue, "fragments")
	}
	if s.SinkBackend != "s3" {
		t.Errorf("SinkBackend = %q, want %q", s.SinkBackend, "s3")
	}
	if s.RunID != "run-42" {
		t.Errorf("RunID = %q, want %q", s.RunID, "run-42")
	}
	if s.JobID != "job-7" {
		t.Errorf("JobID = %q, want %q", s.JobID, "job-7")
	}
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector

	// None of these may panic.
	c.IncRunStarted()
	c.IncRunCompleted()
	c.IncRunFailed()
	c.IncDrainRound()
	c.IncDepthPoll()
	c.IncEmptyReceive()
	c.AddMessagesReceived(3)
	c.IncMessageDeleted()
	c.IncMalformedMessage()
	c.AddDuplicateFragments(1)
	c.IncTransportError()
	c.IncSubmissionSuccess()
	c.IncSubmissionFailure()
	c.IncSinkWriteSuccess()
	c.IncSinkWriteFailure()

	if s := c.Snapshot(); s.RunsStarted != 0 || s.RunID != "" {
		t.Errorf("nil collector snapshot = %+v, want zero value", s)
	}
}

func TestCollector_SnapshotIsCopy(t *testing.T) {
	c := NewCollector("q", "fs", "run-1", "")
	c.IncDrainRound()

	s := c.Snapshot()
	c.IncDrainRound()

	if s.DrainRounds != 1 {
		t.Errorf("snapshot mutated after further increments: DrainRounds = %d", s.DrainRounds)
	}
}

func TestCollector_ConcurrentIncrements(t *testing.T) {
	c := NewCollector("q", "fs", "run-1", "")

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.IncMessageDeleted()
			c.AddMessagesReceived(2)
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	if s.MessagesDeleted != 50 {
		t.Errorf("MessagesDeleted = %d, want 50", s.MessagesDeleted)
	}
	if s.MessagesReceived != 100 {
		t.Errorf("MessagesReceived = %d, want 100", s.MessagesReceived)
	}
}
