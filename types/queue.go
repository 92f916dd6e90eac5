package types

// QueueDepth is an approximate snapshot of the source queue.
// The counters are eventually consistent and only drive the stop condition.
type QueueDepth struct {
	// Visible is the number of messages available for receive.
	Visible int `json:"visible"`
	// InFlight is the number of received messages still inside their visibility timeout.
	InFlight int `json:"in_flight"`
	// Delayed is the number of messages not yet visible due to a delivery delay.
	Delayed int `json:"delayed"`
}

// Total returns the number of messages anywhere in the queue lifecycle.
func (d QueueDepth) Total() int {
	return d.Visible + d.InFlight + d.Delayed
}

// SubmissionResult is the outcome of the outbound send.
type SubmissionResult struct {
	// StatusCode is the transport status code, returned unmodified.
	StatusCode int `json:"status_code"`
	// MessageID is the identifier assigned by the destination queue, if any.
	MessageID string `json:"message_id,omitempty"`
}
