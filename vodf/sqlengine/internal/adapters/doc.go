// Package adapters lets the SQL engine run on pgxpool.Pool, sql.DB or sqlx.DB through one
// DBAdapter interface. Queries arrive fully rendered; no adapter binds arguments.
package adapters
