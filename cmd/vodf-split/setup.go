package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // postgres driver for database/sql
	_ "modernc.org/sqlite" // sqlite driver for database/sql

	"github.com/vodfgo/vodf/internal/config"
	"github.com/vodfgo/vodf/vodf"
	"github.com/vodfgo/vodf/vodf/blobstore"
	"github.com/vodfgo/vodf/vodf/blobstore/fs"
	"github.com/vodfgo/vodf/vodf/blobstore/memory"
	"github.com/vodfgo/vodf/vodf/blobstore/s3"
	"github.com/vodfgo/vodf/vodf/sqlengine"
)

func newLogHandler(cfg config.LogConfig, w io.Writer) (slog.Handler, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	handlerOptions := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.NewTextHandler(w, handlerOptions), nil
	}

	return slog.NewJSONHandler(w, handlerOptions), nil
}

// openEngine connects to the configured database and returns the engine with a close func.
func openEngine(
	ctx context.Context,
	cfg config.DatabaseConfig,
	logger vodf.ContextualLogger,
	metrics vodf.MetricsCollector,
	tracing vodf.TracingCollector,
) (sqlengine.Engine, func(), error) {
	options := []sqlengine.Option{
		sqlengine.WithContextualLogger(logger),
		sqlengine.WithMetrics(metrics),
		sqlengine.WithTracing(tracing),
	}

	if cfg.Tables.Index != "" {
		options = append(options, sqlengine.WithIndexTableName(cfg.Tables.Index))
	}
	if cfg.Tables.Events != "" {
		options = append(options, sqlengine.WithEventTableName(cfg.Tables.Events))
	}
	if cfg.Tables.Headers != "" {
		options = append(options, sqlengine.WithHeaderTableName(cfg.Tables.Headers))
	}

	var (
		engine sqlengine.Engine
		closer func()
		err    error
	)

	switch {
	case cfg.Driver == "sqlite":
		db, openErr := sql.Open("sqlite", cfg.DSN)
		if openErr != nil {
			return sqlengine.Engine{}, nil, fmt.Errorf("open sqlite: %w", openErr)
		}
		db.SetMaxOpenConns(1)
		closer = func() { _ = db.Close() }
		engine, err = sqlengine.NewEngineFromSQLDB(db, append(options, sqlengine.WithDialect(sqlengine.DialectSQLite))...)

	case cfg.Adapter == "sql":
		db, openErr := sql.Open("postgres", cfg.DSN)
		if openErr != nil {
			return sqlengine.Engine{}, nil, fmt.Errorf("open postgres: %w", openErr)
		}
		closer = func() { _ = db.Close() }
		engine, err = sqlengine.NewEngineFromSQLDB(db, options...)

	case cfg.Adapter == "sqlx":
		db, openErr := sqlx.ConnectContext(ctx, "postgres", cfg.DSN)
		if openErr != nil {
			return sqlengine.Engine{}, nil, fmt.Errorf("connect postgres: %w", openErr)
		}
		closer = func() { _ = db.Close() }
		engine, err = sqlengine.NewEngineFromSQLX(db, options...)

	default:
		pool, openErr := pgxpool.New(ctx, cfg.DSN)
		if openErr != nil {
			return sqlengine.Engine{}, nil, fmt.Errorf("connect postgres: %w", openErr)
		}
		closer = pool.Close
		engine, err = sqlengine.NewEngineFromPGXPool(pool, options...)
	}

	if err != nil {
		closer()
		return sqlengine.Engine{}, nil, err
	}

	if cfg.Migrate {
		if err = engine.Migrate(ctx); err != nil {
			closer()
			return sqlengine.Engine{}, nil, err
		}
	}

	return engine, closer, nil
}

// openResolver builds the payload resolver of the configured blob driver. It returns nil
// when no driver is configured.
func openResolver(ctx context.Context, cfg config.BlobConfig, logger vodf.ContextualLogger) (*blobstore.Resolver, error) {
	if cfg.Driver == "" {
		return nil, nil //nolint:nilnil // no resolution configured
	}

	driver, err := blobstore.ParseDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}

	var store blobstore.Store

	switch driver {
	case blobstore.DriverFilesystem:
		store, err = fs.New(cfg.Root)
	case blobstore.DriverMemory:
		store = memory.New()
	case blobstore.DriverS3:
		store, err = s3.New(ctx, s3.Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			Prefix:    cfg.S3.Prefix,
			PathStyle: cfg.S3.PathStyle,
		})
	}

	if err != nil {
		return nil, err
	}

	options := []blobstore.ResolverOption{blobstore.WithResolverLogger(logger)}
	if cfg.MaxPayloadBytes > 0 {
		options = append(options, blobstore.WithMaxPayloadBytes(cfg.MaxPayloadBytes))
	}

	return blobstore.NewResolver(store, options...)
}
