// Package cmd holds the relay subcommands.
//
// run is the only command that consumes or sends messages. depth, inspect
// and version are read-only and share the output flags below.
package cmd

import "github.com/urfave/cli/v2"

// outputFlags returns fresh copies of the shared output flags, followed by
// extra. Every read-only command accepts --tui so that commands without a
// TUI view can reject it with a clear message.
func outputFlags(extra ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: json, table, yaml",
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "Disable colored output",
		},
		&cli.BoolFlag{
			Name:  "tui",
			Usage: "Interactive view (inspect, depth)",
		},
	}, extra...)
}
