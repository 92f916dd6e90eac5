package cmd

import (
	goruntime "runtime"
	"runtime/debug"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/relay/cli/render"
	"github.com/pithecene-io/relay/types"
)

// VersionResponse is what the version command prints.
type VersionResponse struct {
	Version      string `json:"version" yaml:"version"`
	EventVersion string `json:"event_version" yaml:"event_version"`
	Commit       string `json:"commit" yaml:"commit"`
	Go           string `json:"go" yaml:"go"`
}

// VersionCommand prints build information. commit is set by the linker;
// when empty, the VCS revision embedded by the Go toolchain is used.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Flags: outputFlags(),
		Action: func(c *cli.Context) error {
			if c.Bool("tui") {
				return cli.Exit("--tui is not supported for version command", 1)
			}
			r, err := render.NewRenderer(c)
			if err != nil {
				return err
			}
			return r.Render(VersionResponse{
				Version:      types.Version,
				EventVersion: types.EventContractVersion,
				Commit:       buildCommit(commit),
				Go:           goruntime.Version(),
			})
		},
	}
}

func buildCommit(linked string) string {
	if linked != "" {
		return linked
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
