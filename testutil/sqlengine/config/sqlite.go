package config

import (
	"database/sql"
	"log"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLiteMemoryDB opens a private in-memory SQLite database. The pool is pinned to one
// connection, every new connection would see an empty database.
func SQLiteMemoryDB() *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		log.Fatal("Failed to open sqlite database, error: ", err)
	}

	db.SetMaxOpenConns(1)

	return db
}
