package sqlengine_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vodfgo/vodf/testutil/sqlengine/config"
	"github.com/vodfgo/vodf/testutil/sqlengine/wrapper"
	"github.com/vodfgo/vodf/vodf/sqlengine"
)

func Test_NewEngine_NilConnection(t *testing.T) {
	var pool *pgxpool.Pool
	var db *sql.DB
	var dbx *sqlx.DB

	_, err := sqlengine.NewEngineFromPGXPool(pool)
	assert.ErrorIs(t, err, sqlengine.ErrNilDatabaseConnection)

	_, err = sqlengine.NewEngineFromSQLDB(db)
	assert.ErrorIs(t, err, sqlengine.ErrNilDatabaseConnection)

	_, err = sqlengine.NewEngineFromSQLX(dbx)
	assert.ErrorIs(t, err, sqlengine.ErrNilDatabaseConnection)
}

func Test_NewEngine_Options(t *testing.T) {
	db := config.SQLiteMemoryDB()
	defer func() { _ = db.Close() }()

	testCases := []struct {
		name   string
		option sqlengine.Option
		err    error
	}{
		{name: "empty_index_table", option: sqlengine.WithIndexTableName(""), err: sqlengine.ErrEmptyTableName},
		{name: "empty_event_table", option: sqlengine.WithEventTableName(""), err: sqlengine.ErrEmptyTableName},
		{name: "empty_header_table", option: sqlengine.WithHeaderTableName(""), err: sqlengine.ErrEmptyTableName},
		{name: "unknown_dialect", option: sqlengine.WithDialect("mysql"), err: sqlengine.ErrUnsupportedDialect},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := sqlengine.NewEngineFromSQLDB(db, tc.option)
			assert.ErrorIs(t, err, tc.err)
		})
	}

	engine, err := sqlengine.NewEngineFromSQLDB(db)
	require.NoError(t, err)
	assert.Equal(t, sqlengine.DialectPostgres, engine.Dialect())
	assert.Equal(t, []string{"vodf_component_index", "vodf_events", "vodf_event_headers"}, engine.TableNames())
}

func Test_Migrate_IsIdempotent(t *testing.T) {
	w := wrapper.Create(t)
	defer w.Close()

	assert.NoError(t, w.Engine().Migrate(context.Background()))
}

func Test_Migrate_CustomTableNames(t *testing.T) {
	w := wrapper.Create(t,
		sqlengine.WithIndexTableName("custom_index"),
		sqlengine.WithEventTableName("custom_events"),
		sqlengine.WithHeaderTableName("custom_headers"),
	)
	defer w.Close()

	engine := w.Engine()
	ctx := context.Background()

	assert.Equal(t, []string{"custom_index", "custom_events", "custom_headers"}, engine.TableNames())
	require.NoError(t, engine.PutHeader(ctx, 7, map[string]string{"OBS_ID": "7"}))

	header, ok, err := engine.LoadHeader(ctx, 7)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "7", header["OBS_ID"])
}
