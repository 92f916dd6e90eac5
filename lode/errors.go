package lode

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"syscall"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
)

// Storage failure kinds. Match with errors.Is.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrDiskFull         = errors.New("no space left on device")
	ErrTimeout          = errors.New("operation timed out")
	ErrThrottled        = errors.New("rate limited")
	// ErrAuth covers missing or expired credentials.
	ErrAuth = errors.New("authentication failed")
	// ErrAccessDenied covers valid credentials without permission.
	ErrAccessDenied = errors.New("access denied")
	ErrNetwork      = errors.New("network error")
	// ErrStorage is the kind of anything not classified above.
	ErrStorage = errors.New("storage error")
)

// StorageError is a classified artifact storage failure. The cause stays in
// the chain.
type StorageError struct {
	Kind error
	// Op is "write", "read" or "init".
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is matches the kind sentinel.
func (e *StorageError) Is(target error) bool { return errors.Is(e.Kind, target) }

// NewStorageError creates a classified storage error.
func NewStorageError(kind error, op, path string, err error) *StorageError {
	return &StorageError{Kind: kind, Op: op, Path: path, Err: err}
}

// WrapWriteError classifies err as a failed write of path. Nil stays nil.
func WrapWriteError(err error, path string) error { return wrap(err, "write", path) }

// WrapReadError classifies err as a failed read of path. Nil stays nil.
func WrapReadError(err error, path string) error { return wrap(err, "read", path) }

// WrapInitError classifies err as a failed backend setup. Nil stays nil.
func WrapInitError(err error, target string) error { return wrap(err, "init", target) }

func wrap(err error, op, path string) error {
	if err == nil {
		return nil
	}
	return NewStorageError(classifyError(err), op, path, err)
}

// s3Codes maps S3 API error codes to kinds.
var s3Codes = map[string]error{
	"NoSuchKey":             ErrNotFound,
	"NoSuchBucket":          ErrNotFound,
	"NotFound":              ErrNotFound,
	"AccessDenied":          ErrAccessDenied,
	"AllAccessDisabled":     ErrAccessDenied,
	"SlowDown":              ErrThrottled,
	"Throttling":            ErrThrottled,
	"RequestLimitExceeded":  ErrThrottled,
	"InvalidAccessKeyId":    ErrAuth,
	"SignatureDoesNotMatch": ErrAuth,
	"ExpiredToken":          ErrAuth,
	"RequestTimeout":        ErrTimeout,
}

// messagePatterns is the fallback for untyped errors (local fs wrappers,
// Lode store errors). The first matching row wins.
var messagePatterns = []struct {
	kind     error
	patterns []string
}{
	{ErrAccessDenied, []string{"accessdenied", "forbidden", "403"}},
	{ErrPermissionDenied, []string{"permission denied", "eacces"}},
	{ErrNotFound, []string{"no such file", "does not exist", "not found", "enoent", "404", "nosuchkey", "nosuchbucket"}},
	{ErrDiskFull, []string{"no space left", "disk full", "enospc", "quota exceeded"}},
	{ErrTimeout, []string{"deadline exceeded", "timed out", "timeout"}},
	{ErrThrottled, []string{"slowdown", "rate exceeded", "throttl", "429", "toomanyrequests"}},
	{ErrAuth, []string{"nocredentialproviders", "credential", "invalidaccesskeyid", "signaturedoesnotmatch", "expiredtoken", "401", "unauthorized"}},
	{ErrNetwork, []string{"connection refused", "no route to host", "network is unreachable", "no such host", "dial tcp"}},
}

// classifyError picks the kind for err: typed errors first, then S3 API
// codes and HTTP status, then message patterns.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return ErrTimeout
	}
	switch {
	case errors.Is(err, fs.ErrPermission):
		return ErrPermissionDenied
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, syscall.ENOSPC):
		return ErrDiskFull
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if kind, ok := s3Codes[apiErr.ErrorCode()]; ok {
			return kind
		}
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case 401:
			return ErrAuth
		case 403:
			return ErrAccessDenied
		case 404:
			return ErrNotFound
		case 429, 503:
			return ErrThrottled
		}
	}

	msg := strings.ToLower(err.Error())
	for _, row := range messagePatterns {
		for _, p := range row.patterns {
			if strings.Contains(msg, p) {
				return row.kind
			}
		}
	}
	return ErrStorage
}
