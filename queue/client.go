// Package queue abstracts the message-queue capability the pipeline drains
// from and submits to.
//
// The pipeline only needs four operations: an approximate depth query, a
// bounded receive, an irrevocable delete, and a single send. Client captures
// exactly those so the drain and submit stages can be driven by a fake.
package queue

import (
	"context"
	"time"

	"github.com/pithecene-io/relay/types"
)

// Attribute names carried by source messages.
const (
	AttrOrderNo = "order_no"
	AttrWord    = "word"
)

// Attribute names carried by the outbound submission.
const (
	AttrIdentity = "uvaid"
	AttrPlatform = "platform"
	AttrPhrase   = "phrase"
)

// MaxBatchSize is the largest receive batch the queue service accepts.
const MaxBatchSize = 10

// MaxWaitTime is the longest long-poll wait the queue service accepts.
const MaxWaitTime = 20 * time.Second

// Message is one received message.
type Message struct {
	// ID is the service-assigned message identifier.
	ID string
	// ReceiptHandle identifies this delivery for deletion.
	ReceiptHandle string
	// Body is the raw message body. Not interpreted by the pipeline.
	Body string
	// Attributes holds the string-valued message attributes.
	// Absent attributes are absent keys, never empty strings.
	Attributes map[string]string
}

// ReceiveOptions bounds a single receive call.
type ReceiveOptions struct {
	// MaxMessages caps the batch size (1..MaxBatchSize).
	MaxMessages int
	// VisibilityTimeout hides received messages from other consumers.
	VisibilityTimeout time.Duration
	// WaitTime is the long-poll duration (0..MaxWaitTime).
	WaitTime time.Duration
}

// OutboundMessage is a message to send.
type OutboundMessage struct {
	// Body is the message body.
	Body string
	// Attributes are sent as String-typed message attributes.
	Attributes map[string]string
}

// Client is the queue capability used by one queue URL.
type Client interface {
	// Depth returns the approximate visible/in-flight/delayed counters.
	Depth(ctx context.Context) (types.QueueDepth, error)

	// Receive performs one bounded receive. An empty slice is not an error.
	Receive(ctx context.Context, opts ReceiveOptions) ([]Message, error)

	// Delete acknowledges a received message. Irrevocable.
	Delete(ctx context.Context, receiptHandle string) error

	// Send delivers one message and returns the transport status code.
	Send(ctx context.Context, msg OutboundMessage) (types.SubmissionResult, error)
}

// Clamp normalizes receive options to the limits the service accepts.
func (o ReceiveOptions) Clamp() ReceiveOptions {
	if o.MaxMessages < 1 {
		o.MaxMessages = 1
	}
	if o.MaxMessages > MaxBatchSize {
		o.MaxMessages = MaxBatchSize
	}
	if o.WaitTime < 0 {
		o.WaitTime = 0
	}
	if o.WaitTime > MaxWaitTime {
		o.WaitTime = MaxWaitTime
	}
	if o.VisibilityTimeout < 0 {
		o.VisibilityTimeout = 0
	}
	return o
}
