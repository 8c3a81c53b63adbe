package storage

import (
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
)

var mysqlDialect = sqlDialect{
	name: "mysql",
	schema: `
		CREATE TABLE IF NOT EXISTS products (
			id       VARCHAR(191) NOT NULL PRIMARY KEY,
			name     VARCHAR(255) NOT NULL,
			quantity INT NOT NULL,
			price    DOUBLE NOT NULL
		)`,
	insert: `INSERT INTO products (id, name, quantity, price) VALUES (?, ?, ?, ?)`,
}

func NewMySQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db, dialect: mysqlDialect}
}
