package cmd

import (
	"github.com/urfave/cli/v2"

	relayconfig "github.com/pithecene-io/relay/cli/config"
	"github.com/pithecene-io/relay/cli/reader"
	"github.com/pithecene-io/relay/cli/render"
	"github.com/pithecene-io/relay/cli/tui"
	"github.com/pithecene-io/relay/queue"
)

// DepthCommand returns the depth command.
// Depth reads the approximate message counts of a queue without receiving.
func DepthCommand() *cli.Command {
	return &cli.Command{
		Name:  "depth",
		Usage: "Show the approximate depth of a queue",
		Flags: outputFlags(
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to relay.yaml (source queue is the default)",
			},
			&cli.StringFlag{
				Name:  "queue-url",
				Usage: "Queue URL",
			},
			&cli.StringFlag{
				Name:  "region",
				Usage: "AWS region (optional, uses default chain)",
			},
			&cli.StringFlag{
				Name:  "endpoint",
				Usage: "Custom SQS endpoint URL",
			},
		),
		Action: depthAction,
	}
}

func depthAction(c *cli.Context) error {
	var cfg *relayconfig.Config
	if p := c.String("config"); p != "" {
		loaded, err := relayconfig.Load(p)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		cfg = loaded
	}

	sqsCfg := queue.SQSConfig{
		QueueURL: resolveString(c, "queue-url", configVal(cfg, func(c *relayconfig.Config) string { return c.Source.QueueURL })),
		Region:   resolveString(c, "region", configVal(cfg, func(c *relayconfig.Config) string { return c.Source.Region })),
		Endpoint: resolveString(c, "endpoint", configVal(cfg, func(c *relayconfig.Config) string { return c.Source.Endpoint })),
	}
	if sqsCfg.QueueURL == "" {
		return cli.Exit("--queue-url is required (flag or source.queue_url in config)", 1)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	client, err := queue.NewSQSClient(c.Context, sqsCfg)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	resp, err := reader.Depth(c.Context, client, sqsCfg.QueueURL)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if c.Bool("tui") {
		return r.RenderTUI(tui.ViewDepth, resp)
	}
	return r.Render(resp)
}
