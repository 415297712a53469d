package sqlengine

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/vodfgo/vodf/vodf"
)

// eventColumns maps event column names to table columns.
var eventColumns = map[string]string{
	vodf.ColumnTime:      colTime,
	vodf.ColumnEventType: colEventType,
	vodf.ColumnEnergy:    colEnergy,
	vodf.ColumnRA:        colRA,
	vodf.ColumnDec:       colDec,
}

// PutEvents stores the events of obsID. Event ids must be unique per observation.
func (e Engine) PutEvents(ctx context.Context, obsID int64, events ...vodf.Event) (err error) {
	if len(events) == 0 {
		return nil
	}

	ctx, span := e.startSpan(ctx, spanWrite, map[string]string{
		vodf.LabelOperation: actionPutEvents,
		vodf.LabelObsID:     strconv.FormatInt(obsID, 10),
	})
	defer func() { e.finishSpan(span, err) }()

	records := make([]any, 0, len(events))
	for _, ev := range events {
		records = append(records, goqu.Record{
			colObsID:     obsID,
			colEventID:   ev.ID,
			colTime:      ev.Time.UnixNano(),
			colEventType: ev.Category,
			colEnergy:    ev.Energy,
			colRA:        ev.RA,
			colDec:       ev.Dec,
		})
	}

	written, err := e.insertBatched(ctx, actionPutEvents, e.eventTable, records)
	if err != nil {
		return err
	}

	e.logOperation(ctx, logMsgRowsWritten, logAttrObsID, obsID, logAttrRowCount, written)
	e.recordRows(ctx, actionPutEvents, int(written))

	return nil
}

// QueryEvents returns the events of obsID passing filter, ordered by time then id.
// The time window and every band of the filter are evaluated by the database.
func (e Engine) QueryEvents(ctx context.Context, obsID int64, filter vodf.ObservationFilter) (events []vodf.Event, err error) {
	ctx, span := e.startSpan(ctx, spanQueryEvents, map[string]string{vodf.LabelObsID: strconv.FormatInt(obsID, 10)})
	defer func() { e.finishSpan(span, err) }()

	where, err := filterExpressions(filter)
	if err != nil {
		e.logError(ctx, logMsgBuildQueryFailed, err)
		e.recordError(ctx, actionQueryEvents, errorTypeBuild)

		return nil, err
	}

	selectStmt := e.builder().
		From(e.eventTable).
		Select(colEventID, colTime, colEventType, colEnergy, colRA, colDec).
		Where(append([]exp.Expression{goqu.C(colObsID).Eq(obsID)}, where...)...).
		Order(goqu.C(colTime).Asc(), goqu.C(colEventID).Asc())

	sqlQuery, err := e.toSQL(ctx, actionQueryEvents, selectStmt)
	if err != nil {
		return nil, err
	}

	rows, duration, err := e.query(ctx, actionQueryEvents, sqlQuery)
	if err != nil {
		return nil, err
	}
	defer e.closeRows(ctx, rows)

	events = make([]vodf.Event, 0)
	for rows.Next() {
		var ev vodf.Event
		var nanos int64

		if scanErr := rows.Scan(&ev.ID, &nanos, &ev.Category, &ev.Energy, &ev.RA, &ev.Dec); scanErr != nil {
			return nil, e.scanFailed(ctx, actionQueryEvents, scanErr)
		}

		ev.Time = vodf.FromUnixNano(nanos)
		events = append(events, ev)
	}

	if iterErr := rows.Err(); iterErr != nil {
		return nil, e.scanFailed(ctx, actionQueryEvents, iterErr)
	}

	e.recordDuration(ctx, metricQueryDuration, duration, actionQueryEvents, statusSuccess)
	e.recordRows(ctx, actionQueryEvents, len(events))
	e.logOperation(ctx, logMsgEventsQueried,
		logAttrObsID, obsID,
		logAttrRowCount, len(events),
		logAttrDurationMS, toMilliseconds(duration))

	return events, nil
}

// filterExpressions translates an ObservationFilter into WHERE clauses with the same
// half-open semantics.
func filterExpressions(filter vodf.ObservationFilter) ([]exp.Expression, error) {
	expressions := make([]exp.Expression, 0, 2+2*len(filter.Bands()))

	if window, ok := filter.TimeWindow(); ok {
		expressions = append(expressions,
			goqu.C(colTime).Gte(window.Start.UnixNano()),
			goqu.C(colTime).Lt(window.Stop.UnixNano()),
		)
	}

	for _, band := range filter.Bands() {
		column, ok := eventColumns[band.Parameter()]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedFilterParameter, band.Parameter())
		}

		lo, hi := any(band.Lo()), any(band.Hi())
		if column == colTime {
			lo, hi = secondsToNanoBound(band.Lo()), secondsToNanoBound(band.Hi())
		}

		expressions = append(expressions,
			goqu.C(column).Gte(lo),
			goqu.C(column).Lt(hi),
		)
	}

	return expressions, nil
}

// secondsToNanoBound converts a band bound in Unix seconds to the smallest nanosecond count
// not below it, so that ns >= bound matches seconds >= lo.
func secondsToNanoBound(seconds float64) int64 {
	return int64(math.Ceil(seconds * 1e9))
}
