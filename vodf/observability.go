package vodf

import (
	"context"
	"time"
)

// Logger interface for operational logging, warnings, and error reporting.
// *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ContextualLogger interface for context-aware logging with automatic trace correlation.
// *slog.Logger satisfies it.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// MetricsCollector interface for collecting operational metrics of load and split operations.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// ContextualMetricsCollector extends MetricsCollector with context-aware methods.
// Its methods are preferred when a collector implements it.
type ContextualMetricsCollector interface {
	MetricsCollector
	RecordDurationContext(ctx context.Context, metric string, duration time.Duration, labels map[string]string)
	IncrementCounterContext(ctx context.Context, metric string, labels map[string]string)
	RecordValueContext(ctx context.Context, metric string, value float64, labels map[string]string)
}

// SpanContext represents an active tracing span that can be finished and updated with attributes.
type SpanContext interface {
	SetStatus(status string)
	AddAttribute(key, value string)
}

// TracingCollector interface for collecting tracing information without depending on a tracing backend.
type TracingCollector interface {
	StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, SpanContext)
	FinishSpan(spanCtx SpanContext, status string, attrs map[string]string)
}

const (
	MetricSplitDuration       = "vodf_split_duration_seconds"
	MetricSplitObservations   = "vodf_split_observations"
	MetricSplitSkippedBundles = "vodf_split_skipped_bundles_total"
	MetricLoadDuration        = "vodf_load_duration_seconds"
	MetricLoadErrors          = "vodf_load_errors_total"

	SpanSplit      = "vodf.split"
	SpanLoadBundle = "vodf.load_bundle"

	StatusSuccess = "success"
	StatusError   = "error"

	LabelOperation = "operation"
	LabelStatus    = "status"
	LabelErrorType = "error_type"
	LabelObsID     = "obs_id"
)

// observer bundles the optional observability collaborators of one operation.
type observer struct {
	logger  ContextualLogger
	metrics MetricsCollector
	tracing TracingCollector
}

func (o observer) startSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, SpanContext) {
	if o.tracing == nil {
		return ctx, nil
	}

	return o.tracing.StartSpan(ctx, name, attrs)
}

func (o observer) finishSpan(span SpanContext, status string, attrs map[string]string) {
	if o.tracing == nil || span == nil {
		return
	}

	o.tracing.FinishSpan(span, status, attrs)
}

func (o observer) debug(ctx context.Context, msg string, args ...any) {
	if o.logger != nil {
		o.logger.DebugContext(ctx, msg, args...)
	}
}

func (o observer) info(ctx context.Context, msg string, args ...any) {
	if o.logger != nil {
		o.logger.InfoContext(ctx, msg, args...)
	}
}

func (o observer) logError(ctx context.Context, msg string, err error, args ...any) {
	if o.logger != nil {
		o.logger.ErrorContext(ctx, msg, append([]any{"error", err.Error()}, args...)...)
	}
}

func (o observer) recordDuration(ctx context.Context, metric string, d time.Duration, labels map[string]string) {
	if o.metrics == nil {
		return
	}

	if contextual, ok := o.metrics.(ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, d, labels)
		return
	}

	o.metrics.RecordDuration(metric, d, labels)
}

func (o observer) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if o.metrics == nil {
		return
	}

	if contextual, ok := o.metrics.(ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	o.metrics.IncrementCounter(metric, labels)
}

func (o observer) recordValue(ctx context.Context, metric string, v float64, labels map[string]string) {
	if o.metrics == nil {
		return
	}

	if contextual, ok := o.metrics.(ContextualMetricsCollector); ok {
		contextual.RecordValueContext(ctx, metric, v, labels)
		return
	}

	o.metrics.RecordValue(metric, v, labels)
}
