package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/relay/runtime"
)

func TestExitErrHandler_NilError(t *testing.T) {
	// Should not panic or exit on nil error
	exitErrHandler(nil, nil)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"success no message", cli.Exit("", runtime.ExitCodeSuccess), 0, ""},
		{"transport error", cli.Exit("destination returned status 503", runtime.ExitCodeTransportError), 1, "destination returned status 503\n"},
		{"insufficient fragments", cli.Exit("", runtime.ExitCodeInsufficientFragments), 2, ""},
		{"empty phrase", cli.Exit("", runtime.ExitCodeEmptyPhrase), 3, ""},
		{"config failure", cli.Exit("--source-queue is required", runtime.ExitCodeSinkOrConfig), 4, "--source-queue is required\n"},
		{"wrapped", fmt.Errorf("outer: %w", cli.Exit("inner", 42)), 42, "inner\n"},
		{"regular error", errors.New("boom"), 1, "Error: boom\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b strings.Builder
			if got := exitCode(tt.err, &b); got != tt.wantCode {
				t.Errorf("exitCode = %d, want %d", got, tt.wantCode)
			}
			if b.String() != tt.wantMsg {
				t.Errorf("message = %q, want %q", b.String(), tt.wantMsg)
			}
		})
	}
}

func TestExitCodes_MatchRuntime(t *testing.T) {
	codes := map[string]int{
		"success":                runtime.ExitCodeSuccess,
		"transport_error":        runtime.ExitCodeTransportError,
		"insufficient_fragments": runtime.ExitCodeInsufficientFragments,
		"empty_phrase":           runtime.ExitCodeEmptyPhrase,
		"sink_or_config":         runtime.ExitCodeSinkOrConfig,
	}
	seen := make(map[int]string)
	for name, code := range codes {
		if other, ok := seen[code]; ok {
			t.Errorf("%s and %s share exit code %d", name, other, code)
		}
		seen[code] = name
	}
}
