package lode

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/justapithecus/lode/lode"
)

// FileWriter writes sidecar files next to the dataset partitions.
// Files land under files/ of the run partition, bypassing Dataset
// segment/manifest machinery entirely.
type FileWriter interface {
	// PutFile writes a file to the run's files/ prefix.
	// The filename must not contain path separators or "..".
	PutFile(ctx context.Context, filename, contentType string, data []byte) error
}

// Verify DatasetSink implements FileWriter.
var _ FileWriter = (*DatasetSink)(nil)

// PutFile writes a sidecar file to the Lode store at the run path.
// The store is created lazily from the factory.
func (s *DatasetSink) PutFile(ctx context.Context, filename, _ string, data []byte) error {
	if filename == "" || strings.ContainsAny(filename, `/\`) || strings.Contains(filename, "..") {
		return fmt.Errorf("invalid sidecar filename: %q", filename)
	}

	store, err := s.getOrCreateStore()
	if err != nil {
		return fmt.Errorf("file write store init failed: %w", err)
	}

	return store.Put(ctx, s.buildFilePath(filename), bytes.NewReader(data))
}

func (s *DatasetSink) getOrCreateStore() (lode.Store, error) {
	s.storeOnce.Do(func() {
		s.store, s.storeErr = s.storeFactory()
	})
	return s.store, s.storeErr
}

// buildFilePath computes the path for a sidecar file.
// Format: datasets/<dataset>/partitions/source=<s>/day=<d>/run_id=<r>/files/<filename>
func (s *DatasetSink) buildFilePath(filename string) string {
	return fmt.Sprintf("datasets/%s/partitions/source=%s/day=%s/run_id=%s/files/%s",
		s.config.Dataset,
		s.config.Source,
		s.config.Day,
		s.config.RunID,
		filename,
	)
}
