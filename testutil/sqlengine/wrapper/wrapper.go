package wrapper

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/vodfgo/vodf/testutil/sqlengine/config"
	"github.com/vodfgo/vodf/vodf/sqlengine"
)

const (
	typeSQLite  = "sqlite"
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"

	envAdapterType = "ADAPTER_TYPE"
)

// Wrapper owns a database connection and the Engine running on it.
type Wrapper interface {
	Engine() sqlengine.Engine
	Exec(ctx context.Context, query string) error
	Close()
}

type closer func()

type execer func(ctx context.Context, query string) error

type wrapper struct {
	engine sqlengine.Engine
	exec   execer
	close  closer
}

func (w wrapper) Engine() sqlengine.Engine {
	return w.engine
}

func (w wrapper) Exec(ctx context.Context, query string) error {
	return w.exec(ctx, query)
}

func (w wrapper) Close() {
	w.close()
}

// AdapterType returns the backend selected by ADAPTER_TYPE.
func AdapterType() string {
	adapterType := strings.ToLower(os.Getenv(envAdapterType))
	if adapterType == "" {
		return typeSQLite
	}

	return adapterType
}

// Create builds a migrated Engine for the selected backend and cleans its tables.
func Create(t testing.TB, options ...sqlengine.Option) Wrapper {
	return CreateWithDSN(t, AdapterType(), config.PostgresDSN(), options...)
}

// CreateWithDSN is Create with an explicit backend and PostgreSQL DSN.
func CreateWithDSN(t testing.TB, adapterType, dsn string, options ...sqlengine.Option) Wrapper {
	ctx := context.Background()

	var w wrapper

	switch adapterType {
	case typeSQLite:
		db := config.SQLiteMemoryDB()
		engine, err := sqlengine.NewEngineFromSQLDB(db, append([]sqlengine.Option{sqlengine.WithDialect(sqlengine.DialectSQLite)}, options...)...)
		require.NoError(t, err, "error creating engine")

		w = wrapper{
			engine: engine,
			exec:   func(ctx context.Context, q string) error { _, err := db.ExecContext(ctx, q); return err },
			close:  func() { _ = db.Close() },
		}

	case typePGXPool:
		pool, err := pgxpool.NewWithConfig(ctx, config.PostgresPGXPoolConfig(dsn))
		require.NoError(t, err, "error connecting to DB pool in test setup")

		engine, err := sqlengine.NewEngineFromPGXPool(pool, options...)
		require.NoError(t, err, "error creating engine")

		w = wrapper{
			engine: engine,
			exec:   func(ctx context.Context, q string) error { _, err := pool.Exec(ctx, q); return err },
			close:  pool.Close,
		}

	case typeSQLDB:
		db := config.PostgresSQLDB(dsn)
		engine, err := sqlengine.NewEngineFromSQLDB(db, options...)
		require.NoError(t, err, "error creating engine")

		w = wrapper{
			engine: engine,
			exec:   func(ctx context.Context, q string) error { _, err := db.ExecContext(ctx, q); return err },
			close:  func() { _ = db.Close() },
		}

	case typeSQLXDB:
		db := config.PostgresSQLX(dsn)
		engine, err := sqlengine.NewEngineFromSQLX(db, options...)
		require.NoError(t, err, "error creating engine")

		w = wrapper{
			engine: engine,
			exec:   func(ctx context.Context, q string) error { _, err := db.ExecContext(ctx, q); return err },
			close:  func() { _ = db.Close() },
		}

	default:
		panic(fmt.Sprintf("unsupported adapter type: %s", adapterType))
	}

	require.NoError(t, w.engine.Migrate(ctx), "error migrating tables")
	CleanUp(t, w)

	return w
}

// CleanUp empties every table of the wrapped Engine.
func CleanUp(t testing.TB, w Wrapper) {
	for _, table := range w.Engine().TableNames() {
		require.NoError(t, w.Exec(context.Background(), "DELETE FROM "+table), "error cleaning up table %s", table)
	}
}
