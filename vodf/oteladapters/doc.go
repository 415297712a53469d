// Package oteladapters provides OpenTelemetry implementations of the vodf observability
// interfaces, usable with vodf.SplitConfig, vodf.LoadOption and sqlengine options alike.
//
//	tracer := otel.Tracer("vodf")
//	meter := otel.Meter("vodf")
//
//	cfg := vodf.DefaultSplitConfig()
//	cfg.Logger = oteladapters.NewSlogBridgeLogger("vodf")
//	cfg.Metrics = oteladapters.NewMetricsCollector(meter)
//	cfg.Tracing = oteladapters.NewTracingCollector(tracer)
package oteladapters
