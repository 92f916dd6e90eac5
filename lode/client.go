package lode

import (
	"context"
	"fmt"
	"sync"

	"github.com/justapithecus/lode/lode"

	"github.com/pithecene-io/relay/types"
)

// DatasetSink is a Lode-backed implementation of Sink.
// Uses HiveLayout with partition keys: source/day/run_id/record_kind.
type DatasetSink struct {
	dataset lode.Dataset
	config  Config

	storeFactory lode.StoreFactory
	storeOnce    sync.Once
	store        lode.Store
	storeErr     error

	mu sync.Mutex // serializes dataset writes
}

// NewDatasetSink creates a dataset sink with filesystem storage.
// The root parameter is the base directory for Hive-partitioned storage.
func NewDatasetSink(cfg Config, root string) (*DatasetSink, error) {
	return NewDatasetSinkWithFactory(cfg, lode.NewFSFactory(root))
}

// NewDatasetSinkWithFactory creates a dataset sink with a custom store factory.
// Use lode.NewMemoryFactory() for testing.
func NewDatasetSinkWithFactory(cfg Config, factory lode.StoreFactory) (*DatasetSink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Dataset == "" {
		cfg.Dataset = DatasetID
	}

	ds, err := NewDataset(cfg.datasetID(), factory)
	if err != nil {
		return nil, WrapInitError(err, cfg.Dataset)
	}

	return &DatasetSink{
		dataset:      ds,
		config:       cfg,
		storeFactory: factory,
	}, nil
}

// Dataset returns the underlying Lode dataset.
func (s *DatasetSink) Dataset() lode.Dataset {
	return s.dataset
}

// WriteFragments writes one fragment record per drained message, in
// arrival order, to the record_kind=fragment partition. Invalid fragments
// are written with valid=false.
func (s *DatasetSink) WriteFragments(ctx context.Context, fragments types.FragmentSet) error {
	if len(fragments) == 0 {
		return nil
	}

	records := make([]any, 0, len(fragments))
	for i, f := range fragments {
		records = append(records, toFragmentRecordMap(f, int64(i), s.config))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.dataset.Write(ctx, records, lode.Metadata{}); err != nil {
		return WrapWriteError(err, s.partitionPath(RecordKindFragment))
	}
	return nil
}

// WritePhrase writes the phrase record and a full_message.txt sidecar file.
func (s *DatasetSink) WritePhrase(ctx context.Context, phrase string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := []any{toPhraseRecordMap(phrase, s.config)}
	if _, err := s.dataset.Write(ctx, records, lode.Metadata{}); err != nil {
		return WrapWriteError(err, s.partitionPath(RecordKindPhrase))
	}

	if err := s.PutFile(ctx, PhraseFile, "text/plain", []byte(phrase+"\n")); err != nil {
		return WrapWriteError(err, s.buildFilePath(PhraseFile))
	}
	return nil
}

// Close releases sink resources.
func (s *DatasetSink) Close() error {
	// Dataset doesn't require explicit close in current Lode API
	return nil
}

// partitionPath is the Hive partition used in error messages.
func (s *DatasetSink) partitionPath(recordKind string) string {
	return fmt.Sprintf("%s/source=%s/day=%s/run_id=%s/record_kind=%s",
		s.config.Dataset, s.config.Source, s.config.Day, s.config.RunID, recordKind)
}

// Verify DatasetSink implements Sink.
var _ Sink = (*DatasetSink)(nil)
