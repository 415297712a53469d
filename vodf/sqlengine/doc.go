// Package sqlengine stores component indexes, event lists and event-list headers in SQL
// tables and serves them back to the vodf core.
//
// An Engine runs on PostgreSQL (through pgxpool.Pool, sql.DB with lib/pq, or sqlx.DB) or on
// SQLite (sql.DB with modernc.org/sqlite). Queries are built with goqu for the configured
// dialect.
//
// Engine implements vodf.ComponentIndex, so it plugs directly into vodf.LoadBundle and
// vodf.LoadRegistry:
//
//	engine, err := sqlengine.NewEngineFromPGXPool(pool)
//	if err != nil {
//		// handle error
//	}
//
//	composite, err := engine.LoadComposite(ctx, obsID, vodf.RequirePreset(vodf.PresetFullEnclosure), nil)
//
// Times are stored as Unix nanoseconds in BIGINT columns. Event categories are stored as numbers so
// that the category band of a split filter can be pushed down into the query.
package sqlengine
