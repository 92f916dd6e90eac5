package config

import (
	"fmt"
	"time"
)

// Config represents a relay.yaml configuration file.
// All values are optional and act as defaults for relay command flags.
// CLI flags always override config values.
type Config struct {
	Source      SourceConfig      `yaml:"source"`
	Destination DestinationConfig `yaml:"destination"`
	Submitter   SubmitterConfig   `yaml:"submitter"`
	Drain       DrainConfig       `yaml:"drain"`
	Artifacts   ArtifactsConfig   `yaml:"artifacts"`
	Adapter     AdapterConfig     `yaml:"adapter"`
	LogLevel    string            `yaml:"log_level"`
}

// SourceConfig describes the queue drained for fragments.
type SourceConfig struct {
	QueueURL string `yaml:"queue_url"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// DestinationConfig describes the queue receiving the phrase.
// Region and Endpoint fall back to the source values when empty.
type DestinationConfig struct {
	QueueURL string `yaml:"queue_url"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// SubmitterConfig holds the submission identity.
type SubmitterConfig struct {
	Identity string `yaml:"identity"`
	Platform string `yaml:"platform"`
	Body     string `yaml:"body"`
}

// DrainConfig holds polling defaults.
type DrainConfig struct {
	TargetCount       int           `yaml:"target_count"`
	MaxRounds         int           `yaml:"max_rounds"`
	BatchSize         int           `yaml:"batch_size"`
	VisibilityTimeout Duration      `yaml:"visibility_timeout"`
	WaitTime          Duration      `yaml:"wait_time"`
	RoundPause        Duration      `yaml:"round_pause"`
	EmptyBackoff      BackoffConfig `yaml:"empty_backoff"`
}

// BackoffConfig holds the empty-receive wait policy.
type BackoffConfig struct {
	Policy     string   `yaml:"policy"`
	Initial    Duration `yaml:"initial"`
	Max        Duration `yaml:"max"`
	Multiplier float64  `yaml:"multiplier"`
}

// ArtifactsConfig holds artifact sink defaults.
type ArtifactsConfig struct {
	Dir    string     `yaml:"dir"`
	Format string     `yaml:"format"`
	Lode   LodeConfig `yaml:"lode"`
}

// LodeConfig holds Lode dataset sink defaults.
type LodeConfig struct {
	Dataset     string `yaml:"dataset"`
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// AdapterConfig holds adapter defaults from the config file.
type AdapterConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	ListKey string            `yaml:"list_key,omitempty"`
	ListMax int64             `yaml:"list_max,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML renders the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	if d.Duration == 0 {
		return "", nil
	}
	return d.String(), nil
}

// DestinationRegion returns the destination region, falling back to the
// source region.
func (c *Config) DestinationRegion() string {
	if c.Destination.Region != "" {
		return c.Destination.Region
	}
	return c.Source.Region
}

// DestinationEndpoint returns the destination endpoint, falling back to the
// source endpoint.
func (c *Config) DestinationEndpoint() string {
	if c.Destination.Endpoint != "" {
		return c.Destination.Endpoint
	}
	return c.Source.Endpoint
}
