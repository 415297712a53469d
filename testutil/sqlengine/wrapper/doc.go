// Package wrapper runs sqlengine tests against every supported connection type.
//
// ADAPTER_TYPE selects the backend: "sqlite" (default, in-memory), "pgx.pool", "sql.db" or
// "sqlx.db". The PostgreSQL backends connect to config.PostgresDSN().
package wrapper
