package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/relay/adapter"
	"github.com/pithecene-io/relay/adapter/redis"
	"github.com/pithecene-io/relay/adapter/webhook"
	relayconfig "github.com/pithecene-io/relay/cli/config"
	"github.com/pithecene-io/relay/drain"
	"github.com/pithecene-io/relay/iox"
	"github.com/pithecene-io/relay/lode"
	"github.com/pithecene-io/relay/log"
	"github.com/pithecene-io/relay/metrics"
	"github.com/pithecene-io/relay/queue"
	"github.com/pithecene-io/relay/runtime"
	"github.com/pithecene-io/relay/submit"
	"github.com/pithecene-io/relay/types"
)

// RunCommand returns the run command.
// This is the only command that receives, deletes, or sends messages.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Drain the source queue, reassemble the phrase, and submit it",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to relay.yaml (values act as flag defaults)",
			},
			// Run identity
			&cli.StringFlag{
				Name:  "run-id",
				Usage: "Run ID (generated when omitted)",
			},
			&cli.IntFlag{
				Name:  "attempt",
				Usage: "Attempt number (starts at 1)",
				Value: 1,
			},
			&cli.StringFlag{
				Name:  "job-id",
				Usage: "Job ID (optional)",
			},
			&cli.StringFlag{
				Name:  "parent-run-id",
				Usage: "Parent run ID (required for retries)",
			},
			// Queues
			&cli.StringFlag{
				Name:  "source-queue",
				Usage: "Source queue URL holding the fragments",
			},
			&cli.StringFlag{
				Name:  "destination-queue",
				Usage: "Destination queue URL receiving the phrase",
			},
			&cli.StringFlag{
				Name:  "region",
				Usage: "AWS region (optional, uses default chain)",
			},
			&cli.StringFlag{
				Name:  "endpoint",
				Usage: "Custom SQS endpoint URL (LocalStack, ElasticMQ)",
			},
			&cli.StringFlag{
				Name:  "destination-region",
				Usage: "AWS region for the destination queue (defaults to --region)",
			},
			&cli.StringFlag{
				Name:  "destination-endpoint",
				Usage: "Custom SQS endpoint for the destination queue (defaults to --endpoint)",
			},
			// Submission
			&cli.StringFlag{
				Name:  "identity",
				Usage: "Submitter identity, sent as the uvaid attribute",
			},
			&cli.StringFlag{
				Name:  "platform",
				Usage: "Submitter platform attribute",
			},
			&cli.StringFlag{
				Name:  "body",
				Usage: "Destination message body",
				Value: submit.DefaultBody,
			},
			// Drain
			&cli.IntFlag{
				Name:  "target-count",
				Usage: "Number of distinct fragments required",
			},
			&cli.IntFlag{
				Name:  "max-rounds",
				Usage: "Upper bound on receive rounds",
				Value: drain.DefaultMaxRounds,
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Messages per receive (1-10)",
				Value: drain.DefaultBatchSize,
			},
			&cli.DurationFlag{
				Name:  "visibility-timeout",
				Usage: "Visibility timeout for received messages",
				Value: drain.DefaultVisibilityTimeout,
			},
			&cli.DurationFlag{
				Name:  "wait-time",
				Usage: "Long-poll wait per receive",
				Value: drain.DefaultWaitTime,
			},
			&cli.DurationFlag{
				Name:  "round-pause",
				Usage: "Pause after each non-empty round",
				Value: drain.DefaultRoundPause,
			},
			&cli.StringFlag{
				Name:  "empty-backoff",
				Usage: "Wait policy after an empty receive: constant or exponential",
				Value: string(drain.BackoffConstant),
			},
			&cli.DurationFlag{
				Name:  "empty-backoff-initial",
				Usage: "First wait after an empty receive",
				Value: drain.DefaultEmptyBackoff,
			},
			&cli.DurationFlag{
				Name:  "empty-backoff-max",
				Usage: "Cap for exponential empty backoff (0 = 10x initial)",
			},
			&cli.Float64Flag{
				Name:  "empty-backoff-multiplier",
				Usage: "Growth factor for exponential empty backoff (0 = 2)",
			},
			// Artifacts
			&cli.StringFlag{
				Name:  "artifacts-dir",
				Usage: "Directory for messages.json and full_message.txt",
				Value: ".",
			},
			&cli.StringFlag{
				Name:  "artifacts-format",
				Usage: "Fragment dump format: json or msgpack",
				Value: string(lode.FormatJSON),
			},
			&cli.StringFlag{
				Name:  "lode-backend",
				Usage: "Lode dataset backend: fs or s3 (empty disables)",
			},
			&cli.StringFlag{
				Name:  "lode-path",
				Usage: "Lode storage path (fs: directory, s3: bucket/prefix)",
			},
			&cli.StringFlag{
				Name:  "lode-dataset",
				Usage: "Lode dataset ID",
				Value: lode.DatasetID,
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
			// Adapter
			&cli.StringFlag{
				Name:  "adapter",
				Usage: "Completion event adapter: webhook or redis",
			},
			&cli.StringFlag{
				Name:  "adapter-url",
				Usage: "Webhook URL or Redis URL",
			},
			&cli.StringFlag{
				Name:  "adapter-channel",
				Usage: "Redis pub/sub channel",
			},
			&cli.StringFlag{
				Name:  "adapter-list-key",
				Usage: "Redis list that also receives each event",
			},
			&cli.IntFlag{
				Name:  "adapter-list-max",
				Usage: "Keep only the newest N events in --adapter-list-key (0 keeps all)",
			},
			&cli.StringSliceFlag{
				Name:  "adapter-header",
				Usage: "Webhook header as key=value (repeatable)",
			},
			&cli.DurationFlag{
				Name:  "adapter-timeout",
				Usage: "Per-publish timeout",
				Value: webhook.DefaultTimeout,
			},
			&cli.IntFlag{
				Name:  "adapter-retries",
				Usage: "Publish retry attempts",
				Value: webhook.DefaultRetries,
			},
			// Output
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write a JSON run report to this path (- for stderr)",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Suppress result output",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Minimum log level: debug, info, warn, error",
				Value: "info",
			},
		},
		Action: runAction,
	}
}

// runSettings is the run command input after merging config and flags.
type runSettings struct {
	runMeta *types.RunMeta

	source      queue.SQSConfig
	destination queue.SQSConfig

	submitter submit.Config

	targetCount int
	maxRounds   int
	drain       drain.Config

	artifactsDir    string
	artifactsFormat string
	lode            lodeChoice
	adapter         *adapterChoice

	report   string
	quiet    bool
	logLevel string
}

// lodeChoice holds parsed Lode storage configuration.
type lodeChoice struct {
	backend   string // "fs", "s3", or "" (disabled)
	path      string // fs: directory, s3: bucket/prefix
	dataset   string
	region    string
	endpoint  string
	pathStyle bool
}

// adapterChoice holds parsed adapter configuration.
type adapterChoice struct {
	typ     string
	url     string
	channel string
	listKey string
	listMax int64
	headers map[string]string
	timeout time.Duration
	retries int
}

func runAction(c *cli.Context) error {
	s, err := loadRunSettings(c)
	if err != nil {
		return cli.Exit(err.Error(), runtime.ExitCodeSinkOrConfig)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startTime := time.Now()
	logger := log.NewLogger(s.runMeta)
	defer iox.DiscardErr(logger.Sync)
	if err := logger.SetLevel(s.logLevel); err != nil {
		return cli.Exit(err.Error(), runtime.ExitCodeSinkOrConfig)
	}

	sourceClient, err := queue.NewSQSClient(ctx, s.source)
	if err != nil {
		return cli.Exit(fmt.Sprintf("source queue: %v", err), runtime.ExitCodeSinkOrConfig)
	}
	destClient, err := queue.NewSQSClient(ctx, s.destination)
	if err != nil {
		return cli.Exit(fmt.Sprintf("destination queue: %v", err), runtime.ExitCodeSinkOrConfig)
	}

	collector := metrics.NewCollector(s.source.QueueURL, sinkBackendLabel(s), s.runMeta.RunID, jobIDOf(s.runMeta))

	sink, artifactPath, err := buildSink(ctx, s, startTime, collector)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to create artifact sink: %v", err), runtime.ExitCodeSinkOrConfig)
	}
	if sink != nil {
		defer iox.DiscardClose(sink)
	}

	var notifier adapter.Adapter
	if s.adapter != nil {
		notifier, err = buildAdapter(s.adapter)
		if err != nil {
			return cli.Exit(fmt.Sprintf("failed to create adapter: %v", err), runtime.ExitCodeSinkOrConfig)
		}
		defer iox.DiscardClose(notifier)
	}

	drainer := drain.New(sourceClient, s.drain, drain.WithLogger(logger), drain.WithCollector(collector))
	submitter, err := submit.New(destClient, s.submitter, submit.WithLogger(logger), submit.WithCollector(collector))
	if err != nil {
		return cli.Exit(err.Error(), runtime.ExitCodeSinkOrConfig)
	}

	runConfig := &runtime.RunConfig{
		RunMeta:      s.runMeta,
		Drainer:      drainer,
		Submitter:    submitter,
		TargetCount:  s.targetCount,
		MaxRounds:    s.maxRounds,
		Sink:         sink,
		Adapter:      notifier,
		Source:       s.source.QueueURL,
		Destination:  s.destination.QueueURL,
		ArtifactPath: artifactPath,
		Collector:    collector,
		Logger:       logger,
	}

	orchestrator, err := runtime.NewRunOrchestrator(runConfig)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to create orchestrator: %v", err), runtime.ExitCodeSinkOrConfig)
	}

	result, err := orchestrator.Execute(ctx)
	if err != nil {
		return cli.Exit(fmt.Sprintf("execution failed: %v", err), runtime.ExitCodeSinkOrConfig)
	}

	if !s.quiet {
		printRunResult(c.App.Writer, result)
	}

	if s.report != "" {
		report := runtime.BuildRunReport(result, runConfig, collector.Snapshot(), result.ExitCode())
		if err := runtime.WriteRunReport(report, s.report); err != nil {
			logger.Sugar().Warnf("failed to write run report to %s: %v", s.report, err)
		}
	}

	return cli.Exit("", result.ExitCode())
}

// loadRunSettings loads the optional --config file and resolves flags
// against it.
func loadRunSettings(c *cli.Context) (*runSettings, error) {
	var cfg *relayconfig.Config
	if p := c.String("config"); p != "" {
		loaded, err := relayconfig.Load(p)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	return resolveRunSettings(c, cfg)
}

// resolveRunSettings merges config values and flags and validates the
// result. Flags set on the command line always win.
func resolveRunSettings(c *cli.Context, cfg *relayconfig.Config) (*runSettings, error) {
	runMeta, err := resolveRunMeta(c)
	if err != nil {
		return nil, err
	}

	s := &runSettings{
		runMeta: runMeta,
		report:  c.String("report"),
		quiet:   c.Bool("quiet"),
	}

	s.logLevel = resolveString(c, "log-level", configVal(cfg, func(c *relayconfig.Config) string { return c.LogLevel }))
	if _, err := log.ParseLevel(s.logLevel); err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}

	region := resolveString(c, "region", configVal(cfg, func(c *relayconfig.Config) string { return c.Source.Region }))
	endpoint := resolveString(c, "endpoint", configVal(cfg, func(c *relayconfig.Config) string { return c.Source.Endpoint }))
	s.source = queue.SQSConfig{
		QueueURL: resolveString(c, "source-queue", configVal(cfg, func(c *relayconfig.Config) string { return c.Source.QueueURL })),
		Region:   region,
		Endpoint: endpoint,
	}
	s.destination = queue.SQSConfig{
		QueueURL: resolveString(c, "destination-queue", configVal(cfg, func(c *relayconfig.Config) string { return c.Destination.QueueURL })),
		Region:   resolveString(c, "destination-region", configVal(cfg, func(c *relayconfig.Config) string { return c.Destination.Region })),
		Endpoint: resolveString(c, "destination-endpoint", configVal(cfg, func(c *relayconfig.Config) string { return c.Destination.Endpoint })),
	}
	if s.destination.Region == "" {
		s.destination.Region = region
	}
	if s.destination.Endpoint == "" {
		s.destination.Endpoint = endpoint
	}
	if s.source.QueueURL == "" {
		return nil, errors.New("--source-queue is required (flag or source.queue_url in config)")
	}
	if s.destination.QueueURL == "" {
		return nil, errors.New("--destination-queue is required (flag or destination.queue_url in config)")
	}

	s.submitter = submit.Config{
		Identity: resolveString(c, "identity", configVal(cfg, func(c *relayconfig.Config) string { return c.Submitter.Identity })),
		Platform: resolveString(c, "platform", configVal(cfg, func(c *relayconfig.Config) string { return c.Submitter.Platform })),
		Body:     resolveString(c, "body", configVal(cfg, func(c *relayconfig.Config) string { return c.Submitter.Body })),
	}
	if err := s.submitter.Validate(); err != nil {
		return nil, fmt.Errorf("invalid submitter: %w (set --identity and --platform)", err)
	}

	s.targetCount = resolveInt(c, "target-count", configVal(cfg, func(c *relayconfig.Config) int { return c.Drain.TargetCount }))
	if s.targetCount < 1 {
		return nil, errors.New("--target-count must be >= 1 (flag or drain.target_count in config)")
	}
	s.maxRounds = resolveInt(c, "max-rounds", configVal(cfg, func(c *relayconfig.Config) int { return c.Drain.MaxRounds }))
	if s.maxRounds < 1 {
		return nil, fmt.Errorf("--max-rounds must be >= 1, got %d", s.maxRounds)
	}

	s.drain = drain.Config{
		BatchSize:         resolveInt(c, "batch-size", configVal(cfg, func(c *relayconfig.Config) int { return c.Drain.BatchSize })),
		VisibilityTimeout: resolveDuration(c, "visibility-timeout", configVal(cfg, func(c *relayconfig.Config) time.Duration { return c.Drain.VisibilityTimeout.Duration })),
		WaitTime:          resolveDuration(c, "wait-time", configVal(cfg, func(c *relayconfig.Config) time.Duration { return c.Drain.WaitTime.Duration })),
		RoundPause:        resolveDuration(c, "round-pause", configVal(cfg, func(c *relayconfig.Config) time.Duration { return c.Drain.RoundPause.Duration })),
		EmptyBackoff: drain.BackoffConfig{
			Policy:     drain.BackoffPolicy(resolveString(c, "empty-backoff", configVal(cfg, func(c *relayconfig.Config) string { return c.Drain.EmptyBackoff.Policy }))),
			Initial:    resolveDuration(c, "empty-backoff-initial", configVal(cfg, func(c *relayconfig.Config) time.Duration { return c.Drain.EmptyBackoff.Initial.Duration })),
			Max:        resolveDuration(c, "empty-backoff-max", configVal(cfg, func(c *relayconfig.Config) time.Duration { return c.Drain.EmptyBackoff.Max.Duration })),
			Multiplier: resolveFloat64(c, "empty-backoff-multiplier", configVal(cfg, func(c *relayconfig.Config) float64 { return c.Drain.EmptyBackoff.Multiplier })),
		},
	}
	if err := s.drain.EmptyBackoff.Validate(); err != nil {
		return nil, fmt.Errorf("invalid --empty-backoff: %w", err)
	}

	s.artifactsDir = resolveString(c, "artifacts-dir", configVal(cfg, func(c *relayconfig.Config) string { return c.Artifacts.Dir }))
	s.artifactsFormat = resolveString(c, "artifacts-format", configVal(cfg, func(c *relayconfig.Config) string { return c.Artifacts.Format }))
	if _, err := lode.ParseFormat(s.artifactsFormat); err != nil {
		return nil, fmt.Errorf("invalid --artifacts-format: %w", err)
	}

	s.lode = lodeChoice{
		backend:   resolveString(c, "lode-backend", configVal(cfg, func(c *relayconfig.Config) string { return c.Artifacts.Lode.Backend })),
		path:      resolveString(c, "lode-path", configVal(cfg, func(c *relayconfig.Config) string { return c.Artifacts.Lode.Path })),
		dataset:   resolveString(c, "lode-dataset", configVal(cfg, func(c *relayconfig.Config) string { return c.Artifacts.Lode.Dataset })),
		region:    resolveString(c, "lode-s3-region", configVal(cfg, func(c *relayconfig.Config) string { return c.Artifacts.Lode.Region })),
		endpoint:  resolveString(c, "lode-s3-endpoint", configVal(cfg, func(c *relayconfig.Config) string { return c.Artifacts.Lode.Endpoint })),
		pathStyle: resolveBool(c, "lode-s3-path-style", configVal(cfg, func(c *relayconfig.Config) bool { return c.Artifacts.Lode.S3PathStyle })),
	}
	if err := validateLodeChoice(s.lode); err != nil {
		return nil, err
	}

	s.adapter, err = parseAdapterConfig(c, cfg)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func resolveRunMeta(c *cli.Context) (*types.RunMeta, error) {
	runID := c.String("run-id")
	if runID == "" {
		runID = uuid.NewString()
	}
	meta := &types.RunMeta{
		RunID:   runID,
		Attempt: c.Int("attempt"),
	}
	if jobID := c.String("job-id"); jobID != "" {
		meta.JobID = &jobID
	}
	if parent := c.String("parent-run-id"); parent != "" {
		meta.ParentRunID = &parent
	}
	if err := meta.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run identity: %w", err)
	}
	return meta, nil
}

func validateLodeChoice(l lodeChoice) error {
	switch l.backend {
	case "":
		return nil
	case "fs":
		if l.path == "" {
			return errors.New("--lode-path is required for the fs backend")
		}
		info, err := os.Stat(l.path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("--lode-path %q does not exist", l.path)
			}
			return fmt.Errorf("--lode-path %q: %w", l.path, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("--lode-path %q is not a directory", l.path)
		}
		return nil
	case "s3":
		if l.path == "" {
			return errors.New("--lode-path is required for the s3 backend (bucket/prefix)")
		}
		return nil
	default:
		return fmt.Errorf("invalid --lode-backend: %s (must be fs or s3)", l.backend)
	}
}

// parseAdapterConfig returns nil when no adapter is configured.
func parseAdapterConfig(c *cli.Context, cfg *relayconfig.Config) (*adapterChoice, error) {
	typ := resolveString(c, "adapter", configVal(cfg, func(c *relayconfig.Config) string { return c.Adapter.Type }))
	if typ == "" {
		return nil, nil
	}

	ac := &adapterChoice{
		typ:     typ,
		url:     resolveString(c, "adapter-url", configVal(cfg, func(c *relayconfig.Config) string { return c.Adapter.URL })),
		channel: resolveString(c, "adapter-channel", configVal(cfg, func(c *relayconfig.Config) string { return c.Adapter.Channel })),
		listKey: resolveString(c, "adapter-list-key", configVal(cfg, func(c *relayconfig.Config) string { return c.Adapter.ListKey })),
		listMax: int64(resolveInt(c, "adapter-list-max", int(configVal(cfg, func(c *relayconfig.Config) int64 { return c.Adapter.ListMax })))),
		timeout: resolveDuration(c, "adapter-timeout", configVal(cfg, func(c *relayconfig.Config) time.Duration { return c.Adapter.Timeout.Duration })),
		retries: c.Int("adapter-retries"),
		headers: make(map[string]string),
	}
	if !c.IsSet("adapter-retries") && cfg != nil && cfg.Adapter.Retries != nil {
		ac.retries = *cfg.Adapter.Retries
	}
	if ac.retries < 0 {
		return nil, fmt.Errorf("--adapter-retries must be >= 0, got %d", ac.retries)
	}
	if ac.listMax < 0 {
		return nil, fmt.Errorf("--adapter-list-max must be >= 0, got %d", ac.listMax)
	}

	if cfg != nil {
		for k, v := range cfg.Adapter.Headers {
			ac.headers[k] = v
		}
	}
	for _, h := range c.StringSlice("adapter-header") {
		k, v, ok := strings.Cut(h, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --adapter-header %q (expected key=value)", h)
		}
		ac.headers[strings.TrimSpace(k)] = v
	}

	switch ac.typ {
	case "webhook", "redis":
	default:
		return nil, fmt.Errorf("invalid --adapter: %s (must be webhook or redis)", ac.typ)
	}
	if ac.url == "" {
		return nil, fmt.Errorf("--adapter-url is required for the %s adapter", ac.typ)
	}
	return ac, nil
}

// buildAdapter returns a nil interface on error, never a typed nil.
func buildAdapter(ac *adapterChoice) (adapter.Adapter, error) {
	switch ac.typ {
	case "webhook":
		a, err := webhook.New(webhook.Config{
			URL:     ac.url,
			Headers: ac.headers,
			Timeout: ac.timeout,
			Retries: ac.retries,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	case "redis":
		a, err := redis.New(redis.Config{
			URL:     ac.url,
			Channel: ac.channel,
			ListKey: ac.listKey,
			ListMax: ac.listMax,
			Timeout: ac.timeout,
			Retries: ac.retries,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown adapter: %s", ac.typ)
	}
}

// buildSink assembles the file and Lode sinks. The returned path is the
// artifact location reported in the completion event.
func buildSink(ctx context.Context, s *runSettings, startTime time.Time, collector *metrics.Collector) (lode.Sink, string, error) {
	var sinks []lode.Sink
	var artifactPath string

	if s.artifactsDir != "" {
		format, err := lode.ParseFormat(s.artifactsFormat)
		if err != nil {
			return nil, "", err
		}
		fs, err := lode.NewFileSink(s.artifactsDir, format)
		if err != nil {
			return nil, "", err
		}
		sinks = append(sinks, fs)
		artifactPath = fs.Dir()
	}

	if s.lode.backend != "" {
		cfg := lode.Config{
			Dataset: s.lode.dataset,
			Source:  queueName(s.source.QueueURL),
			Day:     lode.DeriveDay(startTime),
			RunID:   s.runMeta.RunID,
			Attempt: s.runMeta.Attempt,
			JobID:   jobIDOf(s.runMeta),
		}

		var ds *lode.DatasetSink
		var err error
		switch s.lode.backend {
		case "fs":
			ds, err = lode.NewDatasetSink(cfg, s.lode.path)
		case "s3":
			bucket, prefix := lode.ParseS3Path(s.lode.path)
			ds, err = lode.NewDatasetSinkS3(ctx, cfg, lode.S3Config{
				Bucket:       bucket,
				Prefix:       prefix,
				Region:       s.lode.region,
				Endpoint:     s.lode.endpoint,
				UsePathStyle: s.lode.pathStyle,
			})
		}
		if err != nil {
			iox.DiscardErr(lode.Multi(sinks...).Close)
			return nil, "", err
		}
		sinks = append(sinks, ds)
		if artifactPath == "" {
			artifactPath = s.lode.backend + ":" + s.lode.path
		}
	}

	if len(sinks) == 0 {
		return nil, "", nil
	}
	return lode.NewInstrumentedSink(lode.Multi(sinks...), collector), artifactPath, nil
}

func sinkBackendLabel(s *runSettings) string {
	var parts []string
	if s.artifactsDir != "" {
		parts = append(parts, "file")
	}
	if s.lode.backend != "" {
		parts = append(parts, "lode-"+s.lode.backend)
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// queueName returns the last path segment of a queue URL.
func queueName(queueURL string) string {
	name := path.Base(strings.TrimRight(queueURL, "/"))
	if name == "." || name == "/" {
		return queueURL
	}
	return name
}

func jobIDOf(meta *types.RunMeta) string {
	if meta.JobID == nil {
		return ""
	}
	return *meta.JobID
}

// configVal reads a value from an optional config.
func configVal[T any](cfg *relayconfig.Config, get func(*relayconfig.Config) T) T {
	if cfg == nil {
		var zero T
		return zero
	}
	return get(cfg)
}

// resolveString returns the flag value when set on the command line, the
// config value when non-empty, and the flag default otherwise.
func resolveString(c *cli.Context, name, cfgVal string) string {
	if c.IsSet(name) || cfgVal == "" {
		return c.String(name)
	}
	return cfgVal
}

func resolveInt(c *cli.Context, name string, cfgVal int) int {
	if c.IsSet(name) || cfgVal == 0 {
		return c.Int(name)
	}
	return cfgVal
}

func resolveFloat64(c *cli.Context, name string, cfgVal float64) float64 {
	if c.IsSet(name) || cfgVal == 0 {
		return c.Float64(name)
	}
	return cfgVal
}

func resolveBool(c *cli.Context, name string, cfgVal bool) bool {
	if c.IsSet(name) {
		return c.Bool(name)
	}
	return cfgVal || c.Bool(name)
}

func resolveDuration(c *cli.Context, name string, cfgVal time.Duration) time.Duration {
	if c.IsSet(name) || cfgVal == 0 {
		return c.Duration(name)
	}
	return cfgVal
}

func printRunResult(w io.Writer, result *runtime.RunResult) {
	fmt.Fprintf(w, "\nrun_id=%s, attempt=%d, outcome=%s, duration=%s\n",
		result.RunMeta.RunID,
		result.RunMeta.Attempt,
		result.Outcome.Status,
		result.Duration.Round(time.Millisecond),
	)

	fmt.Fprintf(w, "\n=== Run Result ===\n")
	fmt.Fprintf(w, "Run ID:       %s\n", result.RunMeta.RunID)
	if result.RunMeta.JobID != nil {
		fmt.Fprintf(w, "Job ID:       %s\n", *result.RunMeta.JobID)
	}
	if result.RunMeta.ParentRunID != nil {
		fmt.Fprintf(w, "Parent Run:   %s\n", *result.RunMeta.ParentRunID)
	}
	fmt.Fprintf(w, "Attempt:      %d\n", result.RunMeta.Attempt)
	fmt.Fprintf(w, "Outcome:      %s\n", result.Outcome.Status)
	fmt.Fprintf(w, "Message:      %s\n", result.Outcome.Message)
	fmt.Fprintf(w, "Exit Code:    %d\n", result.ExitCode())

	fmt.Fprintf(w, "\n=== Drain ===\n")
	fmt.Fprintf(w, "Rounds:       %d\n", result.DrainRounds)
	fmt.Fprintf(w, "Stop:         %s\n", result.DrainStop)
	fmt.Fprintf(w, "Collected:    %d\n", len(result.Fragments))
	fmt.Fprintf(w, "Valid:        %d\n", result.Reassembly.Valid)
	fmt.Fprintf(w, "Invalid:      %d\n", result.Reassembly.Invalid)
	fmt.Fprintf(w, "Duplicates:   %d\n", result.Reassembly.Duplicates)

	if result.Phrase != "" {
		fmt.Fprintf(w, "\n=== Phrase ===\n%s\n", result.Phrase)
	}

	if result.Submission != nil {
		fmt.Fprintf(w, "\n=== Submission ===\n")
		fmt.Fprintf(w, "Status:       %d\n", result.Submission.StatusCode)
		if result.Submission.MessageID != "" {
			fmt.Fprintf(w, "Message ID:   %s\n", result.Submission.MessageID)
		}
	}
}
