// Package config provides database connections for sqlengine tests: in-memory SQLite and
// PostgreSQL reached through pgxpool, database/sql (lib/pq) or sqlx.
package config
