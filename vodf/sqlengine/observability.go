package sqlengine

import (
	"context"
	"time"

	"github.com/vodfgo/vodf/vodf"
)

const (
	metricQueryDuration = "vodf_sql_query_duration_seconds"
	metricRows          = "vodf_sql_rows"
	metricErrors        = "vodf_sql_errors_total"

	spanLookup      = "vodf.sql.lookup"
	spanQueryEvents = "vodf.sql.query_events"
	spanWrite       = "vodf.sql.write"

	actionMigrate     = "migrate"
	actionLookup      = "lookup"
	actionListObsIDs  = "list_obs_ids"
	actionQueryEvents = "query_events"
	actionLoadHeader  = "load_header"
	actionPutIndex    = "put_index"
	actionPutEvents   = "put_events"
	actionPutHeader   = "put_header"

	statusSuccess = vodf.StatusSuccess
	statusError   = vodf.StatusError

	errorTypeQuery = "query"
	errorTypeExec  = "exec"
	errorTypeScan  = "scan"
	errorTypeBuild = "build"

	logMsgBuildQueryFailed   = "failed to build query"
	logMsgDBQueryFailed      = "database query execution failed"
	logMsgDBExecFailed       = "database statement execution failed"
	logMsgCloseRowsFailed    = "failed to close database rows"
	logMsgScanRowFailed      = "failed to scan database row"
	logMsgRowsAffectedFailed = "failed to get rows affected count"
	logMsgSQLExecuted        = "executed sql for: "
	logMsgOperation          = "sqlengine operation: "
	logMsgLookupCompleted    = "lookup completed"
	logMsgEventsQueried      = "events queried"
	logMsgRowsWritten        = "rows written"
	logAttrError             = "error"
	logAttrQuery             = "query"
	logAttrObsID             = "obs_id"
	logAttrRowCount          = "row_count"
	logAttrDurationMS        = "duration_ms"
)

// logQueryWithDuration logs rendered SQL with its execution time at debug level.
func (e Engine) logQueryWithDuration(ctx context.Context, sqlQuery, action string, duration time.Duration) {
	e.logDebug(ctx, logMsgSQLExecuted+action, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
}

// logOperation logs operational information at info level.
func (e Engine) logOperation(ctx context.Context, action string, args ...any) {
	switch {
	case e.contextualLogger != nil:
		e.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	case e.logger != nil:
		e.logger.Info(logMsgOperation+action, args...)
	}
}

func (e Engine) logDebug(ctx context.Context, msg string, args ...any) {
	switch {
	case e.contextualLogger != nil:
		e.contextualLogger.DebugContext(ctx, msg, args...)
	case e.logger != nil:
		e.logger.Debug(msg, args...)
	}
}

func (e Engine) logWarn(ctx context.Context, msg string, args ...any) {
	switch {
	case e.contextualLogger != nil:
		e.contextualLogger.WarnContext(ctx, msg, args...)
	case e.logger != nil:
		e.logger.Warn(msg, args...)
	}
}

// logError logs at error level, prepending the error attribute.
func (e Engine) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	switch {
	case e.contextualLogger != nil:
		e.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	case e.logger != nil:
		e.logger.Error(msg, allArgs...)
	}
}

// recordError counts a failed database operation.
func (e Engine) recordError(ctx context.Context, action, errorType string) {
	if e.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		vodf.LabelOperation: action,
		vodf.LabelStatus:    statusError,
		vodf.LabelErrorType: errorType,
	}

	if contextual, ok := e.metricsCollector.(vodf.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metricErrors, labels)
		return
	}

	e.metricsCollector.IncrementCounter(metricErrors, labels)
}

// recordDuration records the duration of a database operation.
func (e Engine) recordDuration(ctx context.Context, metric string, d time.Duration, action, status string) {
	if e.metricsCollector == nil {
		return
	}

	labels := map[string]string{vodf.LabelOperation: action, vodf.LabelStatus: status}

	if contextual, ok := e.metricsCollector.(vodf.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, d, labels)
		return
	}

	e.metricsCollector.RecordDuration(metric, d, labels)
}

// recordRows records how many rows an operation returned or wrote.
func (e Engine) recordRows(ctx context.Context, action string, rows int) {
	if e.metricsCollector == nil {
		return
	}

	labels := map[string]string{vodf.LabelOperation: action}

	if contextual, ok := e.metricsCollector.(vodf.ContextualMetricsCollector); ok {
		contextual.RecordValueContext(ctx, metricRows, float64(rows), labels)
		return
	}

	e.metricsCollector.RecordValue(metricRows, float64(rows), labels)
}

func (e Engine) startSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, vodf.SpanContext) {
	if e.tracingCollector == nil {
		return ctx, nil
	}

	return e.tracingCollector.StartSpan(ctx, name, attrs)
}

func (e Engine) finishSpan(span vodf.SpanContext, err error) {
	if e.tracingCollector == nil || span == nil {
		return
	}

	if err != nil {
		e.tracingCollector.FinishSpan(span, statusError, map[string]string{logAttrError: err.Error()})
		return
	}

	e.tracingCollector.FinishSpan(span, statusSuccess, nil)
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return float64(d.Round(time.Microsecond).Microseconds()) / 1000
}
