package cmd

import (
	"fmt"

	"github.com/justapithecus/lode/lode"
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/relay/cli/reader"
	"github.com/pithecene-io/relay/cli/render"
	"github.com/pithecene-io/relay/cli/tui"
	relaylode "github.com/pithecene-io/relay/lode"
)

// InspectCommand returns the inspect command.
// Inspect reads persisted artifacts of one run, either a fragment dump
// file or the run's records in a Lode dataset. It never touches a queue.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Inspect the artifacts of a run",
		ArgsUsage: "[messages.json|messages.msgpack]",
		Flags: outputFlags(
			&cli.StringFlag{
				Name:  "run-id",
				Usage: "Run ID to read from the Lode dataset",
			},
			&cli.StringFlag{
				Name:  "lode-backend",
				Usage: "Lode dataset backend: fs or s3",
				Value: "fs",
			},
			&cli.StringFlag{
				Name:  "lode-path",
				Usage: "Lode storage path (fs: directory, s3: bucket/prefix)",
			},
			&cli.StringFlag{
				Name:  "lode-dataset",
				Usage: "Lode dataset ID",
				Value: relaylode.DatasetID,
			},
			&cli.StringFlag{
				Name:  "lode-s3-region",
				Usage: "AWS region for the S3 backend",
			},
			&cli.StringFlag{
				Name:  "lode-s3-endpoint",
				Usage: "Custom S3 endpoint URL (MinIO, LocalStack)",
			},
			&cli.BoolFlag{
				Name:  "lode-s3-path-style",
				Usage: "Force path-style S3 addressing",
			},
		),
		Action: inspectAction,
	}
}

func inspectAction(c *cli.Context) error {
	runID := c.String("run-id")
	if c.NArg() < 1 && runID == "" {
		return cli.Exit("a fragments file or --run-id is required", 1)
	}
	if c.NArg() > 0 && runID != "" {
		return cli.Exit("pass either a fragments file or --run-id, not both", 1)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	var resp *reader.InspectRunResponse
	if runID == "" {
		resp, err = reader.InspectFile(c.Args().First())
	} else {
		var ds lode.Dataset
		ds, err = openReadDataset(c)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		resp, err = reader.InspectRun(c.Context, ds, runID)
	}
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if c.Bool("tui") {
		return r.RenderTUI(tui.ViewInspectRun, resp)
	}
	return r.Render(resp)
}

func openReadDataset(c *cli.Context) (lode.Dataset, error) {
	storagePath := c.String("lode-path")
	if storagePath == "" {
		return nil, fmt.Errorf("--lode-path is required with --run-id")
	}
	dataset := c.String("lode-dataset")

	switch backend := c.String("lode-backend"); backend {
	case "fs":
		return relaylode.NewReadDatasetFS(dataset, storagePath)
	case "s3":
		bucket, prefix := relaylode.ParseS3Path(storagePath)
		return relaylode.NewReadDatasetS3(c.Context, dataset, relaylode.S3Config{
			Bucket:       bucket,
			Prefix:       prefix,
			Region:       c.String("lode-s3-region"),
			Endpoint:     c.String("lode-s3-endpoint"),
			UsePathStyle: c.Bool("lode-s3-path-style"),
		})
	default:
		return nil, fmt.Errorf("invalid --lode-backend: %s (must be fs or s3)", backend)
	}
}
