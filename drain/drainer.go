// Package drain empties the source queue into an in-memory fragment set.
//
// A drain polls queue depth each round and stops once nothing is visible,
// in flight, or delayed, or when the round budget runs out. Every received
// message is appended to the set before it is deleted from the queue.
package drain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pithecene-io/relay/log"
	"github.com/pithecene-io/relay/metrics"
	"github.com/pithecene-io/relay/queue"
	"github.com/pithecene-io/relay/types"
)

// Defaults mirror the polling parameters the pipeline has always used.
const (
	DefaultMaxRounds         = 200
	DefaultBatchSize         = 10
	DefaultVisibilityTimeout = 30 * time.Second
	DefaultWaitTime          = 10 * time.Second
	DefaultRoundPause        = 1 * time.Second
	DefaultEmptyBackoff      = 3 * time.Second
)

// StopReason says why a drain ended.
type StopReason string

const (
	// StopQueueEmpty means the depth total reached zero.
	StopQueueEmpty StopReason = "queue_empty"
	// StopMaxRounds means the round budget was exhausted.
	StopMaxRounds StopReason = "max_rounds"
)

// Config configures polling behavior.
type Config struct {
	// BatchSize is the receive batch size (clamped to 1..10).
	BatchSize int
	// VisibilityTimeout hides received messages while they are processed.
	VisibilityTimeout time.Duration
	// WaitTime is the long-poll duration per receive.
	WaitTime time.Duration
	// RoundPause is the sleep after each non-empty round.
	RoundPause time.Duration
	// EmptyBackoff governs the sleep after an empty receive.
	EmptyBackoff BackoffConfig
}

// DefaultConfig returns the default polling configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:         DefaultBatchSize,
		VisibilityTimeout: DefaultVisibilityTimeout,
		WaitTime:          DefaultWaitTime,
		RoundPause:        DefaultRoundPause,
		EmptyBackoff:      BackoffConfig{Policy: BackoffConstant, Initial: DefaultEmptyBackoff},
	}
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Result is the outcome of one drain.
type Result struct {
	// Fragments holds every received fragment in arrival order, valid or not.
	Fragments types.FragmentSet
	// Rounds is the number of rounds started.
	Rounds int
	// Stop is why the loop ended.
	Stop StopReason
	// LastDepth is the most recent depth snapshot.
	LastDepth types.QueueDepth
}

// Drainer polls one queue. It holds no state between drains.
type Drainer struct {
	client    queue.Client
	config    Config
	logger    *log.Logger
	collector *metrics.Collector
	sleep     Sleeper
}

// Option configures a Drainer.
type Option func(*Drainer)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *log.Logger) Option {
	return func(d *Drainer) { d.logger = l }
}

// WithCollector sets the metrics collector. Nil is allowed.
func WithCollector(c *metrics.Collector) Option {
	return func(d *Drainer) { d.collector = c }
}

// WithSleeper replaces the context-aware sleep (for tests).
func WithSleeper(s Sleeper) Option {
	return func(d *Drainer) { d.sleep = s }
}

// New creates a Drainer over client.
func New(client queue.Client, config Config, opts ...Option) *Drainer {
	d := &Drainer{
		client: client,
		config: config,
		logger: log.NewNop(),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Drain collects fragments until the queue is empty or maxRounds is reached.
// See Run for error semantics.
func (d *Drainer) Drain(ctx context.Context, targetCount, maxRounds int) (types.FragmentSet, error) {
	res, err := d.Run(ctx, targetCount, maxRounds)
	return res.Fragments, err
}

// Run drains the queue and reports how the loop ended.
//
// targetCount only drives progress logging; reaching it does not stop the
// drain. Exhausting maxRounds is not an error. A queue service failure or
// context cancellation aborts the drain; the returned Result still holds
// every fragment collected so far, because those messages are already
// deleted from the queue.
func (d *Drainer) Run(ctx context.Context, targetCount, maxRounds int) (*Result, error) {
	if maxRounds < 1 {
		return &Result{}, fmt.Errorf("max rounds must be >= 1, got %d", maxRounds)
	}

	bo, err := d.config.EmptyBackoff.build()
	if err != nil {
		return &Result{}, err
	}

	opts := queue.ReceiveOptions{
		MaxMessages:       d.config.BatchSize,
		VisibilityTimeout: d.config.VisibilityTimeout,
		WaitTime:          d.config.WaitTime,
	}.Clamp()

	res := &Result{Stop: StopMaxRounds}
	valid := 0

	for round := 0; round < maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Rounds++
		d.collector.IncDrainRound()

		depth, err := d.client.Depth(ctx)
		d.collector.IncDepthPoll()
		if err != nil {
			d.collector.IncTransportError()
			return res, fmt.Errorf("query queue depth: %w", err)
		}
		res.LastDepth = depth

		d.logger.Debug("drain round", map[string]any{
			"round":     round,
			"visible":   depth.Visible,
			"in_flight": depth.InFlight,
			"delayed":   depth.Delayed,
			"total":     depth.Total(),
		})

		if depth.Total() == 0 {
			res.Stop = StopQueueEmpty
			d.logger.Info("queue empty, stop draining", map[string]any{
				"round":     round,
				"collected": len(res.Fragments),
			})
			break
		}

		msgs, err := d.client.Receive(ctx, opts)
		if err != nil {
			d.collector.IncTransportError()
			return res, fmt.Errorf("receive messages: %w", err)
		}

		if len(msgs) == 0 {
			d.collector.IncEmptyReceive()
			wait := bo.NextBackOff()
			if wait == backoff.Stop {
				wait = d.config.EmptyBackoff.Max
			}
			d.logger.Debug("no visible messages this round", map[string]any{
				"round":   round,
				"backoff": wait.String(),
			})
			if err := d.sleep(ctx, wait); err != nil {
				return res, err
			}
			continue
		}
		bo.Reset()
		d.collector.AddMessagesReceived(len(msgs))

		for _, m := range msgs {
			frag, perr := ParseFragment(m.Attributes)
			if perr != nil {
				d.collector.IncMalformedMessage()
				d.logger.Warn("malformed fragment", map[string]any{
					"message_id": m.ID,
					"error":      perr.Error(),
				})
			}

			// Capture first: the delete below cannot be undone.
			res.Fragments = append(res.Fragments, frag)
			if frag.Valid() {
				valid++
			}

			if err := d.client.Delete(ctx, m.ReceiptHandle); err != nil {
				d.collector.IncTransportError()
				return res, fmt.Errorf("delete message %s: %w", m.ID, err)
			}
			d.collector.IncMessageDeleted()
		}

		d.logger.Info("collected batch", map[string]any{
			"round":     round,
			"batch":     len(msgs),
			"collected": len(res.Fragments),
			"valid":     valid,
			"target":    targetCount,
		})

		if err := d.sleep(ctx, d.config.RoundPause); err != nil {
			return res, err
		}
	}

	d.logger.Info("drain finished", map[string]any{
		"rounds":    res.Rounds,
		"stop":      string(res.Stop),
		"collected": len(res.Fragments),
		"valid":     valid,
		"target":    targetCount,
	})

	return res, nil
}

// IsCanceled reports whether err came from context cancellation rather
// than the queue service.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
