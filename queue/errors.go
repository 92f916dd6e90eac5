package queue

import (
	"errors"
	"fmt"
	"net"
	"strings"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
)

// Sentinel errors for transport failure classification.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrThrottled indicates rate limiting (429, RequestThrottled).
	ErrThrottled = errors.New("rate limited")

	// ErrAuth indicates authentication failure (no credentials, expired token).
	ErrAuth = errors.New("authentication failed")

	// ErrAccessDenied indicates authorization failure (valid creds but no permission).
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound indicates the queue does not exist.
	ErrNotFound = errors.New("queue not found")

	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrNetwork indicates a network-level failure (connection refused, DNS).
	ErrNetwork = errors.New("network error")

	// ErrService is the fallback for any other service-side failure.
	ErrService = errors.New("queue service error")
)

// TransportError wraps a failed queue service call with a classification.
// The original error stays in the chain for errors.As.
type TransportError struct {
	// Kind is the sentinel error for classification (e.g., ErrThrottled).
	Kind error
	// Op is the queue operation that failed ("depth", "receive", "delete", "send").
	Op string
	// Queue is the queue URL involved.
	Queue string
	// Err is the underlying error.
	Err error
}

func (e *TransportError) Error() string {
	if e.Queue != "" {
		return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Queue, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target sentinel.
func (e *TransportError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// WrapTransportError classifies err and wraps it for op against queueURL.
// Returns nil if err is nil.
func WrapTransportError(err error, op, queueURL string) error {
	if err == nil {
		return nil
	}
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{
		Kind:  classifyError(err),
		Op:    op,
		Queue: queueURL,
		Err:   err,
	}
}

// IsTransportError reports whether err carries a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// classifyError picks the sentinel for err. API error codes and HTTP status
// are checked first; message patterns are the fallback.
func classifyError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AWS.SimpleQueueService.NonExistentQueue", "QueueDoesNotExist":
			return ErrNotFound
		case "RequestThrottled", "ThrottlingException", "KmsThrottled":
			return ErrThrottled
		case "InvalidClientTokenId", "UnrecognizedClientException", "SignatureDoesNotMatch",
			"ExpiredToken", "InvalidSecurity", "MissingAuthenticationToken":
			return ErrAuth
		case "AccessDenied", "AccessDeniedException", "KmsAccessDenied":
			return ErrAccessDenied
		}
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		switch code := respErr.HTTPStatusCode(); {
		case code == 429:
			return ErrThrottled
		case code == 401:
			return ErrAuth
		case code == 403:
			return ErrAccessDenied
		}
	}

	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return ErrTimeout
	}

	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return ErrNetwork
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case containsAny(errStr, "nonexistentqueue", "does not exist", "not found"):
		return ErrNotFound
	case containsAny(errStr, "deadline exceeded", "timed out", "timeout"):
		return ErrTimeout
	case containsAny(errStr, "throttl", "rate exceeded", "toomanyrequests"):
		return ErrThrottled
	case containsAny(errStr, "nocredentialproviders", "failed to retrieve credentials",
		"invalidclienttokenid", "expiredtoken", "unauthorized"):
		return ErrAuth
	case containsAny(errStr, "accessdenied", "forbidden"):
		return ErrAccessDenied
	case containsAny(errStr, "connection refused", "no such host", "no route to host",
		"network is unreachable", "dial tcp"):
		return ErrNetwork
	default:
		return ErrService
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
