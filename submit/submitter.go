// Package submit forwards the reassembled phrase to the destination queue.
package submit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pithecene-io/relay/log"
	"github.com/pithecene-io/relay/metrics"
	"github.com/pithecene-io/relay/queue"
	"github.com/pithecene-io/relay/types"
)

// DefaultBody is the fixed body literal of the submission message.
const DefaultBody = "dp2 solution"

// ErrEmptyPhrase is returned when the phrase is empty or whitespace only.
// Nothing is sent in that case.
var ErrEmptyPhrase = errors.New("empty phrase")

// Config identifies the submitter to the destination.
type Config struct {
	// Identity is sent as the uvaid attribute.
	Identity string
	// Platform is sent as the platform attribute.
	Platform string
	// Body is the message body. Empty means DefaultBody.
	Body string
}

// Validate checks that the identity attributes are present.
func (c Config) Validate() error {
	if c.Identity == "" {
		return errors.New("submitter identity is required")
	}
	if c.Platform == "" {
		return errors.New("submitter platform is required")
	}
	return nil
}

// Submitter sends exactly one message per Submit call.
type Submitter struct {
	client    queue.Client
	cfg       Config
	logger    *log.Logger
	collector *metrics.Collector
}

// Option configures a Submitter.
type Option func(*Submitter)

// WithLogger sets the submitter logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Submitter) { s.logger = l }
}

// WithCollector sets the metrics collector.
func WithCollector(c *metrics.Collector) Option {
	return func(s *Submitter) { s.collector = c }
}

// New creates a Submitter for the destination client.
func New(client queue.Client, cfg Config, opts ...Option) (*Submitter, error) {
	if client == nil {
		return nil, errors.New("destination client is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Body == "" {
		cfg.Body = DefaultBody
	}

	s := &Submitter{client: client, cfg: cfg, logger: log.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Submit sends text as the phrase attribute of a single message and returns
// the transport status code unmodified. There is no retry.
func (s *Submitter) Submit(ctx context.Context, text string) (types.SubmissionResult, error) {
	if strings.TrimSpace(text) == "" {
		return types.SubmissionResult{}, ErrEmptyPhrase
	}

	result, err := s.client.Send(ctx, queue.OutboundMessage{
		Body: s.cfg.Body,
		Attributes: map[string]string{
			queue.AttrIdentity: s.cfg.Identity,
			queue.AttrPlatform: s.cfg.Platform,
			queue.AttrPhrase:   text,
		},
	})
	if err != nil {
		s.collector.IncSubmissionFailure()
		if queue.IsTransportError(err) {
			s.collector.IncTransportError()
		}
		return types.SubmissionResult{}, fmt.Errorf("submit phrase: %w", err)
	}

	if result.StatusCode >= 200 && result.StatusCode < 300 {
		s.collector.IncSubmissionSuccess()
	} else {
		s.collector.IncSubmissionFailure()
	}

	s.logger.Info("phrase submitted", map[string]any{
		"status_code": result.StatusCode,
		"message_id":  result.MessageID,
		"length":      len(text),
	})
	return result, nil
}
