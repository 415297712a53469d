// Package testdoubles provides spies for the observability interfaces of the vodf packages.
//
//   - MetricsCollectorSpy: captures duration, counter and value recordings
//   - TracingCollectorSpy: captures started and finished spans
//   - ContextualLoggerSpy: captures context-aware log calls per level
//   - LogHandlerSpy: a slog.Handler capturing records, for code that takes a *slog.Logger
//
// None of them needs a telemetry backend.
package testdoubles
