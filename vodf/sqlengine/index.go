package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/doug-martin/goqu/v9"

	"github.com/vodfgo/vodf/vodf"
)

type indexRow struct {
	component   string
	locationKey string
	hdu         string
	start       int64
	stop        int64
	category    sql.NullInt64
	pointLike   int64
}

// PutIndexEntries appends entries to the component index. Their order is kept for Lookup.
func (e Engine) PutIndexEntries(ctx context.Context, entries ...vodf.IndexEntry) (err error) {
	if len(entries) == 0 {
		return nil
	}

	ctx, span := e.startSpan(ctx, spanWrite, map[string]string{vodf.LabelOperation: actionPutIndex})
	defer func() { e.finishSpan(span, err) }()

	rows := make([]any, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, indexRecord(entry))
	}

	written, err := e.insertBatched(ctx, actionPutIndex, e.indexTable, rows)
	if err != nil {
		return err
	}

	e.logOperation(ctx, logMsgRowsWritten, logAttrRowCount, written)
	e.recordRows(ctx, actionPutIndex, int(written))

	return nil
}

func indexRecord(entry vodf.IndexEntry) goqu.Record {
	var category any
	if n, ok := entry.Category.Value(); ok {
		category = n
	}

	pointLike := 0
	if entry.PointLike {
		pointLike = 1
	}

	return goqu.Record{
		colObsID:       entry.ObsID,
		colComponent:   entry.Component,
		colLocationKey: entry.Location.Key,
		colHDU:         entry.Location.HDU,
		colStart:       entry.Validity.Start.UnixNano(),
		colStop:        entry.Validity.Stop.UnixNano(),
		colCategory:    category,
		colPointLike:   pointLike,
	}
}

// Lookup implements vodf.ComponentIndex. Entries come back in insertion order.
func (e Engine) Lookup(ctx context.Context, obsID int64) (entries []vodf.IndexEntry, err error) {
	ctx, span := e.startSpan(ctx, spanLookup, map[string]string{vodf.LabelObsID: strconv.FormatInt(obsID, 10)})
	defer func() { e.finishSpan(span, err) }()

	selectStmt := e.builder().
		From(e.indexTable).
		Select(colComponent, colLocationKey, colHDU, colStart, colStop, colCategory, colPointLike).
		Where(goqu.C(colObsID).Eq(obsID)).
		Order(goqu.C(colSeq).Asc())

	sqlQuery, err := e.toSQL(ctx, actionLookup, selectStmt)
	if err != nil {
		return nil, err
	}

	rows, duration, err := e.query(ctx, actionLookup, sqlQuery)
	if err != nil {
		return nil, err
	}
	defer e.closeRows(ctx, rows)

	entries = make([]vodf.IndexEntry, 0)
	for rows.Next() {
		row := indexRow{}
		if scanErr := rows.Scan(&row.component, &row.locationKey, &row.hdu, &row.start, &row.stop, &row.category, &row.pointLike); scanErr != nil {
			return nil, e.scanFailed(ctx, actionLookup, scanErr)
		}

		entries = append(entries, row.toEntry(obsID))
	}

	if iterErr := rows.Err(); iterErr != nil {
		return nil, e.scanFailed(ctx, actionLookup, iterErr)
	}

	e.recordDuration(ctx, metricQueryDuration, duration, actionLookup, statusSuccess)

	if len(entries) == 0 {
		return nil, &vodf.UnknownObservationError{ObsID: obsID}
	}

	e.logOperation(ctx, logMsgLookupCompleted,
		logAttrObsID, obsID,
		logAttrRowCount, len(entries),
		logAttrDurationMS, toMilliseconds(duration))

	return entries, nil
}

func (r indexRow) toEntry(obsID int64) vodf.IndexEntry {
	category := vodf.NoCategory
	if r.category.Valid {
		category = vodf.CategoryOf(int(r.category.Int64))
	}

	return vodf.IndexEntry{
		ObsID:     obsID,
		Component: r.component,
		Location:  vodf.Location{Key: r.locationKey, HDU: r.hdu},
		Validity: vodf.Interval{
			Start: vodf.FromUnixNano(r.start),
			Stop:  vodf.FromUnixNano(r.stop),
		},
		Category:  category,
		PointLike: r.pointLike != 0,
	}
}

// ObsIDs lists the observation ids present in the component index in ascending order.
func (e Engine) ObsIDs(ctx context.Context) ([]int64, error) {
	selectStmt := e.builder().
		From(e.indexTable).
		Select(goqu.C(colObsID)).
		Distinct().
		Order(goqu.C(colObsID).Asc())

	sqlQuery, err := e.toSQL(ctx, actionListObsIDs, selectStmt)
	if err != nil {
		return nil, err
	}

	rows, duration, err := e.query(ctx, actionListObsIDs, sqlQuery)
	if err != nil {
		return nil, err
	}
	defer e.closeRows(ctx, rows)

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, e.scanFailed(ctx, actionListObsIDs, scanErr)
		}
		ids = append(ids, id)
	}

	if iterErr := rows.Err(); iterErr != nil {
		return nil, e.scanFailed(ctx, actionListObsIDs, iterErr)
	}

	e.recordDuration(ctx, metricQueryDuration, duration, actionListObsIDs, statusSuccess)

	return ids, nil
}

func (e Engine) scanFailed(ctx context.Context, action string, err error) error {
	e.logError(ctx, logMsgScanRowFailed, err)
	e.recordError(ctx, action, errorTypeScan)

	return errors.Join(ErrScanningDBRowFailed, err)
}

// insertBatched inserts records in chunks and returns the number of rows written.
func (e Engine) insertBatched(ctx context.Context, action, table string, records []any) (int64, error) {
	var written int64

	for start := 0; start < len(records); start += insertBatchSize {
		end := min(start+insertBatchSize, len(records))

		sqlQuery, err := e.toSQL(ctx, action, e.builder().Insert(table).Rows(records[start:end]...))
		if err != nil {
			return written, err
		}

		affected, err := e.exec(ctx, action, sqlQuery)
		if err != nil {
			return written, err
		}

		written += affected
	}

	return written, nil
}
