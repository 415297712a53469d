package sqlengine

import (
	"fmt"

	"github.com/vodfgo/vodf/vodf"
)

// Option defines a functional option for configuring Engine.
type Option func(*Engine) error

// WithDialect selects the SQL dialect, DialectPostgres (default) or DialectSQLite.
func WithDialect(dialect string) Option {
	return func(e *Engine) error {
		switch dialect {
		case DialectPostgres, DialectSQLite:
			e.dialect = dialect
			return nil
		default:
			return fmt.Errorf("%w: %q", ErrUnsupportedDialect, dialect)
		}
	}
}

// WithIndexTableName sets the table holding component index entries.
func WithIndexTableName(tableName string) Option {
	return func(e *Engine) error {
		if tableName == "" {
			return ErrEmptyTableName
		}

		e.indexTable = tableName

		return nil
	}
}

// WithEventTableName sets the table holding events.
func WithEventTableName(tableName string) Option {
	return func(e *Engine) error {
		if tableName == "" {
			return ErrEmptyTableName
		}

		e.eventTable = tableName

		return nil
	}
}

// WithHeaderTableName sets the table holding event-list headers.
func WithHeaderTableName(tableName string) Option {
	return func(e *Engine) error {
		if tableName == "" {
			return ErrEmptyTableName
		}

		e.headerTable = tableName

		return nil
	}
}

// WithLogger sets the logger for the Engine.
//
// Debug level: rendered SQL with execution timing
// Info level: row counts and durations
// Warn level: failures to close result rows
// Error level: failures that abort an operation.
func WithLogger(logger vodf.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger. It takes precedence over WithLogger.
func WithContextualLogger(logger vodf.ContextualLogger) Option {
	return func(e *Engine) error {
		e.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Engine.
func WithMetrics(collector vodf.MetricsCollector) Option {
	return func(e *Engine) error {
		e.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Engine.
func WithTracing(collector vodf.TracingCollector) Option {
	return func(e *Engine) error {
		e.tracingCollector = collector
		return nil
	}
}
