package sqlengine

import (
	"context"
	"errors"
	"strconv"

	"github.com/doug-martin/goqu/v9"
	jsoniter "github.com/json-iterator/go"

	"github.com/vodfgo/vodf/vodf"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PutHeader stores the event-list header of obsID as a JSON object, replacing any previous one.
func (e Engine) PutHeader(ctx context.Context, obsID int64, header map[string]string) (err error) {
	ctx, span := e.startSpan(ctx, spanWrite, map[string]string{
		vodf.LabelOperation: actionPutHeader,
		vodf.LabelObsID:     strconv.FormatInt(obsID, 10),
	})
	defer func() { e.finishSpan(span, err) }()

	if header == nil {
		header = map[string]string{}
	}

	encoded, err := json.Marshal(header)
	if err != nil {
		return errors.Join(ErrWritingFailed, err)
	}

	deleteSQL, err := e.toSQL(ctx, actionPutHeader, e.builder().Delete(e.headerTable).Where(goqu.C(colObsID).Eq(obsID)))
	if err != nil {
		return err
	}

	insertSQL, err := e.toSQL(ctx, actionPutHeader, e.builder().Insert(e.headerTable).Rows(goqu.Record{
		colObsID:  obsID,
		colHeader: string(encoded),
	}))
	if err != nil {
		return err
	}

	if _, err = e.exec(ctx, actionPutHeader, deleteSQL); err != nil {
		return err
	}

	if _, err = e.exec(ctx, actionPutHeader, insertSQL); err != nil {
		return err
	}

	return nil
}

// LoadHeader returns the stored header of obsID. ok is false when none is stored.
func (e Engine) LoadHeader(ctx context.Context, obsID int64) (header map[string]string, ok bool, err error) {
	selectStmt := e.builder().
		From(e.headerTable).
		Select(colHeader).
		Where(goqu.C(colObsID).Eq(obsID))

	sqlQuery, err := e.toSQL(ctx, actionLoadHeader, selectStmt)
	if err != nil {
		return nil, false, err
	}

	rows, duration, err := e.query(ctx, actionLoadHeader, sqlQuery)
	if err != nil {
		return nil, false, err
	}
	defer e.closeRows(ctx, rows)

	if !rows.Next() {
		if iterErr := rows.Err(); iterErr != nil {
			return nil, false, e.scanFailed(ctx, actionLoadHeader, iterErr)
		}

		return nil, false, nil
	}

	var raw string
	if scanErr := rows.Scan(&raw); scanErr != nil {
		return nil, false, e.scanFailed(ctx, actionLoadHeader, scanErr)
	}

	if !json.Valid([]byte(raw)) {
		return nil, false, ErrInvalidHeaderJSON
	}

	header = make(map[string]string)
	if unmarshalErr := json.Unmarshal([]byte(raw), &header); unmarshalErr != nil {
		return nil, false, errors.Join(ErrInvalidHeaderJSON, unmarshalErr)
	}

	e.recordDuration(ctx, metricQueryDuration, duration, actionLoadHeader, statusSuccess)

	return header, true, nil
}
