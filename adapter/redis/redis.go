// Package redis announces finished runs on a Redis pub/sub channel.
//
// With a list key configured, each event is also kept in a capped history
// list, so a consumer that connects after the run can still read it.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pithecene-io/relay/adapter"
)

const (
	DefaultChannel = "relay:run_completed"
	DefaultTimeout = 5 * time.Second
	DefaultRetries = 3
)

// Config configures the Redis adapter.
type Config struct {
	// URL has the form redis://[:password@]host:port[/db].
	URL     string
	Channel string
	ListKey string
	// ListMax caps the history list to the newest N events. Zero keeps all.
	ListMax int64
	// Timeout bounds each attempt.
	Timeout       time.Duration
	Retries       int
	RetryInterval time.Duration
}

// Adapter publishes events through one go-redis client.
type Adapter struct {
	config Config
	client *goredis.Client
}

// New validates cfg, applies defaults and opens a lazy client.
func New(cfg Config) (*Adapter, error) {
	switch {
	case cfg.URL == "":
		return nil, errors.New("redis adapter requires a URL")
	case cfg.Retries < 0:
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	case cfg.ListMax < 0:
		return nil, fmt.Errorf("list max must be >= 0, got %d", cfg.ListMax)
	}
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis adapter: invalid URL: %w", err)
	}
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Adapter{config: cfg, client: goredis.NewClient(opts)}, nil
}

// Publish announces event, retrying on any Redis error.
func (a *Adapter) Publish(ctx context.Context, event *adapter.RunCompletedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis: marshal event: %w", err)
	}

	attempts := 0
	err = adapter.Retry(ctx, a.config.Retries, a.config.RetryInterval, func(ctx context.Context) error {
		attempts++
		attemptCtx, cancel := context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
		return a.announce(attemptCtx, payload)
	})
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return fmt.Errorf("redis: context canceled: %w", err)
	default:
		return fmt.Errorf("redis: failed after %d attempts: %w", attempts, err)
	}
}

// announce publishes payload. History writes share one MULTI/EXEC with the
// publish so subscribers and the list never disagree.
func (a *Adapter) announce(ctx context.Context, payload []byte) error {
	channel, list := a.config.Channel, a.config.ListKey
	if list == "" {
		return a.client.Publish(ctx, channel, payload).Err()
	}
	_, err := a.client.TxPipelined(ctx, func(tx goredis.Pipeliner) error {
		tx.Publish(ctx, channel, payload)
		tx.RPush(ctx, list, payload)
		if n := a.config.ListMax; n > 0 {
			tx.LTrim(ctx, list, -n, -1)
		}
		return nil
	})
	return err
}

// Close closes the client pool.
func (a *Adapter) Close() error {
	return a.client.Close()
}

var _ adapter.Adapter = (*Adapter)(nil)
