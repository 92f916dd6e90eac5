// Command relay drains a fragment queue, rebuilds the phrase and submits it.
//
//	relay run --source-queue URL --destination-queue URL --identity ID --platform P --target-count N
//
// Exit codes for run:
//   - 0: success
//   - 1: transport error
//   - 2: insufficient fragments
//   - 3: empty phrase
//   - 4: sink or configuration failure
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/relay/cli/cmd"
	"github.com/pithecene-io/relay/types"
)

// commit is set with -ldflags "-X main.commit=...".
var commit string

func main() {
	app := &cli.App{
		Name:           "relay",
		Usage:          "Reassemble a fragmented phrase from one queue and submit it to another",
		Version:        types.Version,
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			cmd.RunCommand(),
			cmd.DepthCommand(),
			cmd.InspectCommand(),
			cmd.VersionCommand(commit),
		},
	}

	if err := app.Run(os.Args); err != nil {
		// ExitErrHandler already exited for cli.ExitCoder errors.
		os.Exit(1)
	}
}

// exitErrHandler preserves exit codes from cli.Exit so `run` outcomes
// reach the shell.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}
	os.Exit(exitCode(err, os.Stderr))
}

// exitCode writes the user-facing message for err to w and returns the
// process exit code.
func exitCode(err error, w io.StringWriter) int {
	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// cli.Exit("", N).Error() returns "exit status N"; skip those.
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			_, _ = w.WriteString(msg + "\n")
		}
		return code
	}

	_, _ = w.WriteString(fmt.Sprintf("Error: %v\n", err))
	return 1
}
