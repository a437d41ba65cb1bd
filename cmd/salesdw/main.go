// Command salesdw rebuilds the sales star-schema warehouse from raw CSV
// inputs, either once or on a fixed interval.
//
//	salesdw -config salesdw.json                  # one run
//	salesdw -config salesdw.json -mode scheduled  # every schedule.interval
//	salesdw -config salesdw.json -validate        # lint the config and exit
//	salesdw -config salesdw.json -ddl             # print warehouse DDL and exit
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"salesdw/internal/config"
	"salesdw/internal/logging"
	"salesdw/internal/metrics"
	"salesdw/internal/metrics/datadog"
	"salesdw/internal/metrics/prompush"
	"salesdw/internal/pipeline"
	"salesdw/internal/schema"
	"salesdw/internal/storage"

	// register all backends with the storage factory.
	_ "salesdw/internal/storage/all"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitPartial = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("salesdw", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		cfgPath  = fs.String("config", "", "config JSON path (empty: built-in defaults)")
		mode     = fs.String("mode", "once", "run mode: once or scheduled")
		validate = fs.Bool("validate", false, "validate the configuration and exit")
		ddl      = fs.Bool("ddl", false, "print the warehouse DDL for storage.kind and exit")
		level    = fs.String("log-level", "", "override logging.level")
	)
	if err := fs.Parse(args); err != nil {
		return exitFailure
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.LoadFile(*cfgPath); err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return exitFailure
		}
	}
	if *level != "" {
		cfg.Logging.Level = *level
	}

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fmt.Fprintf(stderr, "configuration is invalid\n")
		return exitFailure
	}
	if *validate {
		fmt.Fprintf(stdout, "configuration is valid\n")
		return exitOK
	}
	if *ddl {
		if err := printDDL(stdout, cfg.Storage.Kind); err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return exitFailure
		}
		return exitOK
	}

	log := logging.New(cfg.Logging, stderr)
	flush, err := setupMetrics(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("metrics disabled")
	}
	defer flush(log)

	p := pipeline.New(cfg, log)
	switch *mode {
	case "once":
		return runOnce(ctx, p, log)
	case "scheduled":
		every, err := cfg.Schedule.Every()
		if err != nil {
			log.Error().Err(err).Msg("invalid schedule")
			return exitFailure
		}
		if err := runScheduled(ctx, every, func(ctx context.Context) {
			runOnce(ctx, p, log)
			flush(log)
		}, log); err != nil {
			log.Error().Err(err).Msg("scheduler failed")
			return exitFailure
		}
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown -mode %q (want once or scheduled)\n", *mode)
		return exitFailure
	}
}

// runOnce executes one pipeline run and maps its outcome to an exit code.
func runOnce(ctx context.Context, p *pipeline.Pipeline, log zerolog.Logger) int {
	rep, err := p.Run(ctx)
	if err != nil {
		log.Error().Err(err).Str("run_id", rep.RunID).Msg("run failed")
		return exitFailure
	}
	if !rep.Success() || rep.TransformErr != nil {
		for _, r := range rep.Tables {
			if !r.OK() {
				log.Warn().Str("table", r.Table).Err(r.Err).Msg("table not loaded")
			}
		}
		return exitPartial
	}
	return exitOK
}

// printDDL writes the CREATE TABLE statement of every warehouse table for kind.
func printDDL(w io.Writer, kind string) error {
	for _, c := range schema.Warehouse() {
		stmt, err := storage.RenderDDL(kind, c)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\n\n", stmt)
	}
	return nil
}

// setupMetrics installs the configured metrics backend and returns a
// function that flushes it. The flush function is always non-nil.
func setupMetrics(cfg config.Config) (func(zerolog.Logger), error) {
	noop := func(zerolog.Logger) {}

	var (
		b   metrics.Backend
		err error
	)
	switch cfg.Metrics.Backend {
	case "", "none":
		return noop, nil
	case "pushgateway":
		b, err = prompush.NewBackend(cfg.Job, cfg.Metrics.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       cfg.Metrics.DatadogAddr,
			Namespace:  "salesdw.",
			GlobalTags: []string{"job:" + cfg.Job},
		})
	default:
		return noop, fmt.Errorf("unknown metrics backend %q", cfg.Metrics.Backend)
	}
	if err != nil {
		return noop, err
	}
	metrics.SetBackend(b)
	return func(log zerolog.Logger) {
		if err := metrics.Flush(); err != nil {
			log.Warn().Err(err).Msg("metrics flush failed")
		}
	}, nil
}
