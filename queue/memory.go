package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pithecene-io/relay/types"
)

// MemoryQueue is an in-process Client for tests and dry runs.
// Visibility timeouts never expire: received messages stay in flight until
// deleted. Depth is exact rather than approximate.
type MemoryQueue struct {
	mu sync.Mutex

	pending  []Message
	inFlight map[string]Message
	nextID   int

	// Delayed is reported as the delayed counter in Depth.
	Delayed int
	// BatchLimit caps messages per receive below the requested size (0 = no cap).
	BatchLimit int
	// EmptyReceives makes the next N receives return nothing even when
	// messages are pending, mimicking approximate depth counters.
	EmptyReceives int
	// SendStatus is the status code returned by Send (default 200).
	SendStatus int

	// DepthErr, ReceiveErr, DeleteErr and SendErr are returned by the
	// corresponding call when set.
	DepthErr   error
	ReceiveErr error
	DeleteErr  error
	SendErr    error

	// Ops records every call in order ("depth", "receive", "delete:<handle>", "send").
	Ops []string
	// Deleted records deleted receipt handles in order.
	Deleted []string
	// Sent records every sent message.
	Sent []OutboundMessage
	// Receives records the options of every receive call.
	Receives []ReceiveOptions
}

// NewMemoryQueue creates an empty in-memory queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{inFlight: make(map[string]Message)}
}

// Push enqueues a message with the given attributes.
func (q *MemoryQueue) Push(attrs map[string]string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	q.pending = append(q.pending, Message{
		ID:         fmt.Sprintf("msg-%d", q.nextID),
		Body:       "fragment",
		Attributes: attrs,
	})
}

// PushFragment enqueues a message carrying order_no and word attributes.
func (q *MemoryQueue) PushFragment(orderNo, word string) {
	q.Push(map[string]string{AttrOrderNo: orderNo, AttrWord: word})
}

// Depth implements Client.
func (q *MemoryQueue) Depth(_ context.Context) (types.QueueDepth, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Ops = append(q.Ops, "depth")
	if q.DepthErr != nil {
		return types.QueueDepth{}, WrapTransportError(q.DepthErr, "depth", "memory")
	}
	return types.QueueDepth{
		Visible:  len(q.pending),
		InFlight: len(q.inFlight),
		Delayed:  q.Delayed,
	}, nil
}

// Receive implements Client.
func (q *MemoryQueue) Receive(ctx context.Context, opts ReceiveOptions) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, WrapTransportError(err, "receive", "memory")
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.Ops = append(q.Ops, "receive")
	q.Receives = append(q.Receives, opts)
	if q.ReceiveErr != nil {
		return nil, WrapTransportError(q.ReceiveErr, "receive", "memory")
	}
	if q.EmptyReceives > 0 {
		q.EmptyReceives--
		return nil, nil
	}

	n := opts.Clamp().MaxMessages
	if q.BatchLimit > 0 && q.BatchLimit < n {
		n = q.BatchLimit
	}
	if n > len(q.pending) {
		n = len(q.pending)
	}

	batch := make([]Message, 0, n)
	for _, m := range q.pending[:n] {
		m.ReceiptHandle = "rh-" + m.ID
		q.inFlight[m.ReceiptHandle] = m
		batch = append(batch, m)
	}
	q.pending = q.pending[n:]
	return batch, nil
}

// Delete implements Client.
func (q *MemoryQueue) Delete(_ context.Context, receiptHandle string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Ops = append(q.Ops, "delete:"+receiptHandle)
	if q.DeleteErr != nil {
		return WrapTransportError(q.DeleteErr, "delete", "memory")
	}
	if _, ok := q.inFlight[receiptHandle]; !ok {
		return WrapTransportError(errors.New("receipt handle is invalid"), "delete", "memory")
	}
	delete(q.inFlight, receiptHandle)
	q.Deleted = append(q.Deleted, receiptHandle)
	return nil
}

// Send implements Client.
func (q *MemoryQueue) Send(_ context.Context, msg OutboundMessage) (types.SubmissionResult, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Ops = append(q.Ops, "send")
	if q.SendErr != nil {
		return types.SubmissionResult{}, WrapTransportError(q.SendErr, "send", "memory")
	}
	q.Sent = append(q.Sent, msg)
	status := q.SendStatus
	if status == 0 {
		status = 200
	}
	return types.SubmissionResult{
		StatusCode: status,
		MessageID:  fmt.Sprintf("sent-%d", len(q.Sent)),
	}, nil
}

// Verify MemoryQueue implements Client.
var _ Client = (*MemoryQueue)(nil)
