package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
)

func TestRetry(t *testing.T) {
	errTransient := errors.New("transient")
	errFatal := errors.New("fatal")

	tests := []struct {
		name      string
		retries   int
		failFirst int
		permanent bool
		wantCalls int
		wantErr   error
	}{
		{name: "first attempt succeeds", retries: 3, wantCalls: 1},
		{name: "succeeds after two failures", retries: 3, failFirst: 2, wantCalls: 3},
		{name: "exhausts retries", retries: 2, failFirst: 10, wantCalls: 3, wantErr: errTransient},
		{name: "no retries", retries: 0, failFirst: 10, wantCalls: 1, wantErr: errTransient},
		{name: "permanent stops", retries: 5, failFirst: 10, permanent: true, wantCalls: 1, wantErr: errFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(t.Context(), tt.retries, time.Millisecond, func(context.Context) error {
				calls++
				if calls > tt.failFirst {
					return nil
				}
				if tt.permanent {
					return backoff.Permanent(errFatal)
				}
				return errTransient
			})

			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetry_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	calls := 0
	err := Retry(ctx, 3, time.Millisecond, func(context.Context) error {
		calls++
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Errorf("fn should not run on a canceled context, ran %d times", calls)
	}
}
