package lode

import (
	"errors"

	"github.com/justapithecus/lode/lode"
)

// DatasetID is the fixed Lode dataset name for relay artifacts.
const DatasetID = "relay"

// partitionKeys is the Hive layout shared by the write and read paths.
var partitionKeys = []string{"source", "day", "run_id", "record_kind"}

// Config holds dataset sink configuration.
// Source, Day and RunID are partition keys and are required.
type Config struct {
	// Dataset is the Lode dataset ID (defaults to DatasetID).
	Dataset string
	// Source is the partition key for the origin queue.
	Source string
	// Day is the partition key derived from run start time (YYYY-MM-DD UTC).
	Day string
	// RunID is the partition key for the run identifier.
	RunID string
	// Attempt is the run attempt number.
	Attempt int
	// JobID is the optional orchestrator job identifier.
	JobID string
}

// Validate checks that all partition keys are present.
func (c *Config) Validate() error {
	if c.Source == "" {
		return errors.New("lode source partition is required")
	}
	if c.Day == "" {
		return errors.New("lode day partition is required")
	}
	if c.RunID == "" {
		return errors.New("lode run_id partition is required")
	}
	return nil
}

func (c Config) datasetID() string {
	if c.Dataset == "" {
		return DatasetID
	}
	return c.Dataset
}

// NewDataset creates a Lode Dataset with the relay layout and codec.
// The write and read paths both go through here.
func NewDataset(dataset string, factory lode.StoreFactory) (lode.Dataset, error) {
	return lode.NewDataset(
		lode.DatasetID(dataset),
		factory,
		lode.WithHiveLayout(partitionKeys...),
		lode.WithCodec(lode.NewJSONLCodec()),
	)
}

// NewReadDatasetFS creates a read Dataset with filesystem storage.
func NewReadDatasetFS(dataset, rootPath string) (lode.Dataset, error) {
	return NewDataset(dataset, lode.NewFSFactory(rootPath))
}
