package storage

import (
	"database/sql"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var sqliteDialect = sqlDialect{
	name: "sqlite",
	schema: `
		CREATE TABLE IF NOT EXISTS products (
			id       TEXT PRIMARY KEY,
			name     TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			price    REAL NOT NULL
		)`,
	insert: `INSERT INTO products (id, name, quantity, price) VALUES (?, ?, ?, ?)`,
}

func NewSQLiteAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db, dialect: sqliteDialect}
}
