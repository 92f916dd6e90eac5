package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file, expands environment variables, and
// decodes into a Config struct. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("cannot read config file %q: %w", path, err)
	}

	expanded := ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, nil
}

// Validate checks enumerated values and numeric ranges. Missing values are
// allowed: flags may still provide them.
func (c *Config) Validate() error {
	switch c.Artifacts.Format {
	case "", "json", "msgpack":
	default:
		return fmt.Errorf("artifacts.format must be json or msgpack, got %q", c.Artifacts.Format)
	}
	switch c.Artifacts.Lode.Backend {
	case "", "fs", "s3":
	default:
		return fmt.Errorf("artifacts.lode.backend must be fs or s3, got %q", c.Artifacts.Lode.Backend)
	}
	switch c.Adapter.Type {
	case "", "webhook", "redis":
	default:
		return fmt.Errorf("adapter.type must be webhook or redis, got %q", c.Adapter.Type)
	}
	switch c.Drain.EmptyBackoff.Policy {
	case "", "constant", "exponential":
	default:
		return fmt.Errorf("drain.empty_backoff.policy must be constant or exponential, got %q", c.Drain.EmptyBackoff.Policy)
	}
	if c.Drain.TargetCount < 0 {
		return fmt.Errorf("drain.target_count must be >= 0, got %d", c.Drain.TargetCount)
	}
	if c.Drain.MaxRounds < 0 {
		return fmt.Errorf("drain.max_rounds must be >= 0, got %d", c.Drain.MaxRounds)
	}
	if c.Adapter.Retries != nil && *c.Adapter.Retries < 0 {
		return fmt.Errorf("adapter.retries must be >= 0, got %d", *c.Adapter.Retries)
	}
	return nil
}
