package lode

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/justapithecus/lode/lode"

	"github.com/pithecene-io/relay/types"
)

// sharedFactory returns the same store for every call so a write dataset and
// a read dataset see the same data.
func sharedFactory(store lode.Store) lode.StoreFactory {
	return func() (lode.Store, error) { return store, nil }
}

func testConfig(runID string) Config {
	return Config{
		Source:  "fragments-queue",
		Day:     DeriveDay(time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)),
		RunID:   runID,
		Attempt: 1,
	}
}

func TestDatasetSink_WriteAndQuery(t *testing.T) {
	factory := sharedFactory(lode.NewMemory())

	sink, err := NewDatasetSinkWithFactory(testConfig("run-1"), factory)
	if err != nil {
		t.Fatalf("NewDatasetSinkWithFactory failed: %v", err)
	}
	defer func() { _ = sink.Close() }()

	if err := sink.WriteFragments(t.Context(), sampleFragments()); err != nil {
		t.Fatalf("WriteFragments failed: %v", err)
	}
	if err := sink.WritePhrase(t.Context(), "Hello world"); err != nil {
		t.Fatalf("WritePhrase failed: %v", err)
	}

	ds, err := NewDataset(DatasetID, factory)
	if err != nil {
		t.Fatalf("NewDataset failed: %v", err)
	}
	got, err := QueryRun(t.Context(), ds, "run-1")
	if err != nil {
		t.Fatalf("QueryRun failed: %v", err)
	}

	if len(got.Fragments) != 3 {
		t.Fatalf("got %d fragment records, want 3", len(got.Fragments))
	}
	for i, rec := range got.Fragments {
		if rec.Seq != int64(i) {
			t.Errorf("record %d has seq %d", i, rec.Seq)
		}
		if rec.Source != "fragments-queue" || rec.Day != "2026-03-01" || rec.RunID != "run-1" {
			t.Errorf("record %d partition fields = %s/%s/%s", i, rec.Source, rec.Day, rec.RunID)
		}
	}
	if !got.Fragments[0].Valid || got.Fragments[2].Valid {
		t.Errorf("valid flags = %v, %v", got.Fragments[0].Valid, got.Fragments[2].Valid)
	}
	if got.Fragments[2].OrderNo != nil {
		t.Errorf("missing order_no should read back nil, got %d", *got.Fragments[2].OrderNo)
	}

	set := got.FragmentSet()
	if *set[0].OrderIndex != 2 || *set[0].Text != "world" {
		t.Errorf("first fragment = %+v", set[0])
	}

	if got.Phrase == nil {
		t.Fatal("expected phrase record")
	}
	if got.Phrase.Phrase != "Hello world" || got.Phrase.WordCount != 2 {
		t.Errorf("phrase record = %+v", *got.Phrase)
	}
}

func TestDatasetSink_QueryIsolatesRuns(t *testing.T) {
	factory := sharedFactory(lode.NewMemory())

	for _, runID := range []string{"run-1", "run-10"} {
		sink, err := NewDatasetSinkWithFactory(testConfig(runID), factory)
		if err != nil {
			t.Fatalf("NewDatasetSinkWithFactory failed: %v", err)
		}
		if err := sink.WriteFragments(t.Context(), types.FragmentSet{types.NewFragment(0, runID)}); err != nil {
			t.Fatalf("WriteFragments failed: %v", err)
		}
	}

	ds, err := NewDataset(DatasetID, factory)
	if err != nil {
		t.Fatalf("NewDataset failed: %v", err)
	}
	got, err := QueryRun(t.Context(), ds, "run-1")
	if err != nil {
		t.Fatalf("QueryRun failed: %v", err)
	}
	if len(got.Fragments) != 1 || *got.Fragments[0].Word != "run-1" {
		t.Errorf("unexpected records: %+v", got.Fragments)
	}
	if got.Phrase != nil {
		t.Errorf("expected no phrase, got %+v", got.Phrase)
	}

	if _, err := QueryRun(t.Context(), ds, "run-2"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestDatasetSink_EmptyFragmentsIsNoop(t *testing.T) {
	store := &recordingStore{}
	sink, err := NewDatasetSinkWithFactory(testConfig("run-1"), sharedFactory(store))
	if err != nil {
		t.Fatalf("NewDatasetSinkWithFactory failed: %v", err)
	}
	if err := sink.WriteFragments(t.Context(), nil); err != nil {
		t.Fatalf("WriteFragments failed: %v", err)
	}
	if store.PutCalls != 0 {
		t.Errorf("expected no store writes, got %d", store.PutCalls)
	}
}

func TestDatasetSink_PhraseSidecarPath(t *testing.T) {
	store := &recordingStore{}
	sink, err := NewDatasetSinkWithFactory(testConfig("run-7"), sharedFactory(store))
	if err != nil {
		t.Fatalf("NewDatasetSinkWithFactory failed: %v", err)
	}

	if err := sink.PutFile(t.Context(), PhraseFile, "text/plain", []byte("hi\n")); err != nil {
		t.Fatalf("PutFile failed: %v", err)
	}
	want := "datasets/relay/partitions/source=fragments-queue/day=2026-03-01/run_id=run-7/files/full_message.txt"
	if len(store.PutPaths) != 1 || store.PutPaths[0] != want {
		t.Errorf("PutPaths = %v, want [%s]", store.PutPaths, want)
	}

	for _, bad := range []string{"", "../escape", "a/b"} {
		if err := sink.PutFile(t.Context(), bad, "", nil); err == nil {
			t.Errorf("PutFile(%q) should fail", bad)
		}
	}
}

func TestDatasetSink_WriteFailureIsStorageError(t *testing.T) {
	store := &recordingStore{PutErr: errors.New("AccessDenied: bucket policy")}
	sink, err := NewDatasetSinkWithFactory(testConfig("run-1"), sharedFactory(store))
	if err != nil {
		t.Fatalf("NewDatasetSinkWithFactory failed: %v", err)
	}

	err = sink.WriteFragments(t.Context(), sampleFragments())
	if err == nil {
		t.Fatal("expected write error")
	}
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected *StorageError, got %T: %v", err, err)
	}
	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("expected ErrAccessDenied, got %v", storageErr.Kind)
	}
	if !strings.Contains(storageErr.Path, "record_kind=fragment") {
		t.Errorf("Path = %s", storageErr.Path)
	}
}

func TestNewDatasetSink_RequiresPartitions(t *testing.T) {
	cfg := testConfig("")
	if _, err := NewDatasetSinkWithFactory(cfg, lode.NewMemoryFactory()); err == nil {
		t.Error("expected error for missing run id")
	}
}

func TestNewDatasetSink_FS(t *testing.T) {
	root := t.TempDir()
	sink, err := NewDatasetSink(testConfig("run-fs"), root)
	if err != nil {
		t.Fatalf("NewDatasetSink failed: %v", err)
	}
	if err := sink.WritePhrase(t.Context(), "on disk"); err != nil {
		t.Fatalf("WritePhrase failed: %v", err)
	}

	ds, err := NewReadDatasetFS(DatasetID, root)
	if err != nil {
		t.Fatalf("NewReadDatasetFS failed: %v", err)
	}
	got, err := QueryRun(t.Context(), ds, "run-fs")
	if err != nil {
		t.Fatalf("QueryRun failed: %v", err)
	}
	if got.Phrase == nil || got.Phrase.Phrase != "on disk" {
		t.Errorf("phrase = %+v", got.Phrase)
	}
}

func TestParseS3Path(t *testing.T) {
	tests := []struct {
		path, bucket, prefix string
	}{
		{"bucket", "bucket", ""},
		{"bucket/relay", "bucket", "relay"},
		{"bucket/a/b", "bucket", "a/b"},
	}
	for _, tt := range tests {
		b, p := ParseS3Path(tt.path)
		if b != tt.bucket || p != tt.prefix {
			t.Errorf("ParseS3Path(%q) = %q, %q", tt.path, b, p)
		}
	}

	cfg := S3Config{}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty bucket")
	}
}

func TestMatchesPartitionValue(t *testing.T) {
	path := "datasets/relay/partitions/source=q/day=2026-03-01/run_id=run-10/record_kind=fragment/seg.jsonl"
	if matchesPartitionValue(path, "run_id", "run-1") {
		t.Error("run-1 must not match run-10")
	}
	if !matchesPartitionValue(path, "run_id", "run-10") {
		t.Error("run-10 should match")
	}
}

func TestSnapshotMatchesFilter(t *testing.T) {
	snap := &lode.DatasetSnapshot{
		ID: "snap-1",
		Manifest: &lode.Manifest{Files: []lode.FileRef{
			{Path: "datasets/relay/partitions/source=q/day=2026-03-01/run_id=run-7/record_kind=fragment/a.jsonl"},
			{Path: "datasets/relay/partitions/source=q/day=2026-03-01/run_id=run-8/record_kind=phrase/b.jsonl"},
		}},
	}
	tests := []struct {
		value string
		want  bool
	}{
		{"run-7", true},
		{"run-8", true},
		{"run-70", false},
		{"", true},
	}
	for _, tt := range tests {
		if got := snapshotMatchesFilter(snap, "run_id", tt.value); got != tt.want {
			t.Errorf("snapshotMatchesFilter(run_id=%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestQueryRun_SkipsOtherRunSnapshots(t *testing.T) {
	factory := sharedFactory(lode.NewMemory())
	for _, id := range []string{"run-1", "run-10"} {
		sink, err := NewDatasetSinkWithFactory(testConfig(id), factory)
		if err != nil {
			t.Fatalf("NewDatasetSinkWithFactory: %v", err)
		}
		if err := sink.WriteFragments(t.Context(), types.FragmentSet{types.NewFragment(0, id)}); err != nil {
			t.Fatalf("WriteFragments %s: %v", id, err)
		}
	}

	ds, err := NewDataset(DatasetID, factory)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	got, err := QueryRun(t.Context(), ds, "run-1")
	if err != nil {
		t.Fatalf("QueryRun: %v", err)
	}
	if len(got.Fragments) != 1 || got.Fragments[0].Word == nil || *got.Fragments[0].Word != "run-1" {
		t.Errorf("fragments = %+v, want only run-1", got.Fragments)
	}
}

// recordingStore is a lode.Store that records puts and returns PutErr.
type recordingStore struct {
	PutErr   error
	PutCalls int
	PutPaths []string
}

func (s *recordingStore) Put(_ context.Context, path string, _ io.Reader) error {
	s.PutCalls++
	s.PutPaths = append(s.PutPaths, path)
	return s.PutErr
}

func (s *recordingStore) Get(_ context.Context, _ string) (io.ReadCloser, error) {
	return nil, nil
}

func (s *recordingStore) Exists(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (s *recordingStore) List(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}

func (s *recordingStore) Delete(_ context.Context, _ string) error {
	return nil
}

func (s *recordingStore) ReadRange(_ context.Context, _ string, _, _ int64) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (s *recordingStore) ReaderAt(_ context.Context, _ string) (io.ReaderAt, error) {
	return nil, errors.New("not implemented")
}

var _ lode.Store = (*recordingStore)(nil)
