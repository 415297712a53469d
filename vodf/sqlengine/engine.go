package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/vodfgo/vodf/vodf"
	"github.com/vodfgo/vodf/vodf/sqlengine/internal/adapters"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"

	defaultIndexTableName  = "vodf_component_index"
	defaultEventTableName  = "vodf_events"
	defaultHeaderTableName = "vodf_event_headers"

	colSeq         = "seq"
	colObsID       = "obs_id"
	colComponent   = "component"
	colLocationKey = "location_key"
	colHDU         = "hdu"
	colStart       = "start_ns"
	colStop        = "stop_ns"
	colCategory    = "category"
	colPointLike   = "point_like"
	colEventID     = "event_id"
	colTime        = "time_ns"
	colEventType   = "event_type"
	colEnergy      = "energy_tev"
	colRA          = "ra_deg"
	colDec         = "dec_deg"
	colHeader      = "header"

	insertBatchSize = 500
)

type sqlQueryString = string

// Engine stores and serves component index entries, events and event-list headers.
type Engine struct {
	db               adapters.DBAdapter
	dialect          string
	indexTable       string
	eventTable       string
	headerTable      string
	logger           vodf.Logger
	contextualLogger vodf.ContextualLogger
	metricsCollector vodf.MetricsCollector
	tracingCollector vodf.TracingCollector
}

// NewEngineFromPGXPool creates a PostgreSQL Engine using a pgx Pool.
func NewEngineFromPGXPool(db *pgxpool.Pool, options ...Option) (Engine, error) {
	if db == nil {
		return Engine{}, ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewPGXAdapter(db), options...)
}

// NewEngineFromSQLDB creates an Engine using a sql.DB. Pass WithDialect(DialectSQLite) for SQLite.
func NewEngineFromSQLDB(db *sql.DB, options ...Option) (Engine, error) {
	if db == nil {
		return Engine{}, ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLAdapter(db), options...)
}

// NewEngineFromSQLX creates an Engine using a sqlx.DB.
func NewEngineFromSQLX(db *sqlx.DB, options ...Option) (Engine, error) {
	if db == nil {
		return Engine{}, ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLXAdapter(db), options...)
}

func newEngine(db adapters.DBAdapter, options ...Option) (Engine, error) {
	e := Engine{
		db:          db,
		dialect:     DialectPostgres,
		indexTable:  defaultIndexTableName,
		eventTable:  defaultEventTableName,
		headerTable: defaultHeaderTableName,
	}

	for _, option := range options {
		if err := option(&e); err != nil {
			return Engine{}, err
		}
	}

	return e, nil
}

// Dialect returns the configured SQL dialect.
func (e Engine) Dialect() string {
	return e.dialect
}

// TableNames returns the index, event and header table names.
func (e Engine) TableNames() []string {
	return []string{e.indexTable, e.eventTable, e.headerTable}
}

func (e Engine) builder() goqu.DialectWrapper {
	return goqu.Dialect(e.dialect)
}

// Migrate creates the tables and indexes if they do not exist.
func (e Engine) Migrate(ctx context.Context) error {
	for _, stmt := range e.schema() {
		if _, err := e.exec(ctx, actionMigrate, stmt); err != nil {
			return errors.Join(ErrMigrationFailed, err)
		}
	}

	return nil
}

func (e Engine) schema() []sqlQueryString {
	seqColumn := colSeq + " BIGSERIAL PRIMARY KEY"
	if e.dialect == DialectSQLite {
		seqColumn = colSeq + " INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	return []sqlQueryString{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s,
	%s BIGINT NOT NULL,
	%s TEXT NOT NULL,
	%s TEXT NOT NULL,
	%s TEXT NOT NULL DEFAULT '',
	%s BIGINT NOT NULL,
	%s BIGINT NOT NULL,
	%s INTEGER,
	%s INTEGER NOT NULL DEFAULT 0
)`, e.indexTable, seqColumn, colObsID, colComponent, colLocationKey, colHDU, colStart, colStop, colCategory, colPointLike),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_%s_idx ON %s (%s)`, e.indexTable, colObsID, e.indexTable, colObsID),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s BIGINT NOT NULL,
	%s BIGINT NOT NULL,
	%s BIGINT NOT NULL,
	%s DOUBLE PRECISION NOT NULL,
	%s DOUBLE PRECISION NOT NULL,
	%s DOUBLE PRECISION NOT NULL,
	%s DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (%s, %s)
)`, e.eventTable, colObsID, colEventID, colTime, colEventType, colEnergy, colRA, colDec, colObsID, colEventID),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_%s_%s_idx ON %s (%s, %s)`, e.eventTable, colObsID, colTime, e.eventTable, colObsID, colTime),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s BIGINT PRIMARY KEY,
	%s TEXT NOT NULL
)`, e.headerTable, colObsID, colHeader),
	}
}

// query runs a SELECT and logs it with its duration.
func (e Engine) query(ctx context.Context, action string, sqlQuery sqlQueryString) (adapters.DBRows, time.Duration, error) {
	start := time.Now()
	rows, err := e.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	e.logQueryWithDuration(ctx, sqlQuery, action, duration)

	if err != nil {
		e.logError(ctx, logMsgDBQueryFailed, err, logAttrQuery, sqlQuery)
		e.recordError(ctx, action, errorTypeQuery)

		return nil, duration, errors.Join(ErrQueryingFailed, err)
	}

	return rows, duration, nil
}

// exec runs a statement and logs it with its duration.
func (e Engine) exec(ctx context.Context, action string, sqlQuery sqlQueryString) (int64, error) {
	start := time.Now()
	result, err := e.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	e.logQueryWithDuration(ctx, sqlQuery, action, duration)

	if err != nil {
		e.logError(ctx, logMsgDBExecFailed, err, logAttrQuery, sqlQuery)
		e.recordError(ctx, action, errorTypeExec)

		return 0, errors.Join(ErrWritingFailed, err)
	}

	e.recordDuration(ctx, metricQueryDuration, duration, action, statusSuccess)

	affected, err := result.RowsAffected()
	if err != nil {
		e.logWarn(ctx, logMsgRowsAffectedFailed, logAttrError, err.Error())
		return 0, nil
	}

	return affected, nil
}

// closeRows closes rows and logs a failure to do so.
func (e Engine) closeRows(ctx context.Context, rows adapters.DBRows) {
	if err := rows.Close(); err != nil {
		e.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, err.Error())
	}
}

func (e Engine) toSQL(ctx context.Context, action string, ds interface{ ToSQL() (string, []any, error) }) (sqlQueryString, error) {
	sqlQuery, _, err := ds.ToSQL()
	if err != nil {
		e.logError(ctx, logMsgBuildQueryFailed, err)
		e.recordError(ctx, action, errorTypeBuild)

		return "", errors.Join(ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}
