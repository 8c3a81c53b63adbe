package storage

import (
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

var postgresDialect = sqlDialect{
	name: "postgres",
	schema: `
		CREATE TABLE IF NOT EXISTS products (
			id       TEXT PRIMARY KEY,
			name     TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			price    DOUBLE PRECISION NOT NULL
		)`,
	insert: `INSERT INTO products (id, name, quantity, price) VALUES ($1, $2, $3, $4)`,
}

func NewPostgresAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db, dialect: postgresDialect}
}
