// Command vodf-split loads composite observations from a sqlengine database and prints the
// homogeneous observations they split into, one JSON object per line.
//
//	vodf-split -config vodf.yaml -obs 23523,23526 -category 0 -category 1
//
// Without -obs every observation in the component index is split.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"

	"github.com/vodfgo/vodf/internal/config"
	"github.com/vodfgo/vodf/vodf"
	"github.com/vodfgo/vodf/vodf/oteladapters"
	"github.com/vodfgo/vodf/vodf/promadapters"
)

const tracerName = "github.com/vodfgo/vodf/cmd/vodf-split"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatalf("vodf-split failed: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	handler, err := newLogHandler(cfg.Log, stderr)
	if err != nil {
		return err
	}
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(handler)

	registry := prometheus.NewRegistry()
	metrics := promadapters.NewMetricsCollector(registry)
	tracing := oteladapters.NewTracingCollector(otel.Tracer(tracerName))

	engine, closeEngine, err := openEngine(ctx, cfg.Database, logger, metrics, tracing)
	if err != nil {
		return err
	}
	defer closeEngine()

	loadOptions := []vodf.LoadOption{
		vodf.WithLoadLogger(logger),
		vodf.WithLoadMetrics(metrics),
		vodf.WithLoadTracing(tracing),
	}

	resolver, err := openResolver(ctx, cfg.Blob, logger)
	if err != nil {
		return err
	}
	if resolver != nil {
		loadOptions = append(loadOptions, vodf.WithEagerResolution(resolver))
	}

	obsIDs := opts.obsIDs
	if len(obsIDs) == 0 {
		if obsIDs, err = engine.ObsIDs(ctx); err != nil {
			return err
		}
	}

	composites := make([]vodf.CompositeObservation, 0, len(obsIDs))
	for _, obsID := range obsIDs {
		composite, err := engine.LoadComposite(ctx, obsID, cfg.Requirement(), loadOptions)
		if err != nil {
			return fmt.Errorf("load observation %d: %w", obsID, err)
		}

		composites = append(composites, composite)
	}

	splitCfg := cfg.SplitConfig()
	splitCfg.Logger = logger
	splitCfg.Metrics = metrics
	splitCfg.Tracing = tracing

	results, err := vodf.SplitAll(ctx, splitCfg, composites, cfg.Split.Concurrency, opts.categories...)
	if err != nil {
		return err
	}

	if err = writeResults(stdout, results); err != nil {
		return err
	}

	metricsFile := cfg.Metrics.TextFile
	if opts.metricsFile != "" {
		metricsFile = opts.metricsFile
	}

	if metricsFile != "" {
		if err = prometheus.WriteToTextfile(metricsFile, registry); err != nil {
			return fmt.Errorf("write metrics textfile: %w", err)
		}
	}

	return nil
}
