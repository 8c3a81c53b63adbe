package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rl1809/inventory/internal/core/domain"
	"github.com/rl1809/inventory/internal/port"
)

type sqlDialect struct {
	name   string
	schema string
	insert string
}

// SQLAdapter keeps the inventory in a products table. Save replaces the
// table content inside one transaction.
type SQLAdapter struct {
	db      *sql.DB
	dialect sqlDialect
}

func (a *SQLAdapter) Dialect() string { return a.dialect.name }

func (a *SQLAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, a.dialect.schema); err != nil {
		return fmt.Errorf("%w: create %s products table: %w", domain.ErrStorage, a.dialect.name, err)
	}
	return nil
}

// Load returns every valid row. Rows that violate product invariants are
// skipped and counted as corrupted.
func (a *SQLAdapter) Load(ctx context.Context) ([]domain.Product, port.LoadReport, error) {
	var report port.LoadReport

	rows, err := a.db.QueryContext(ctx, `SELECT id, name, quantity, price FROM products ORDER BY id`)
	if err != nil {
		return nil, report, fmt.Errorf("%w: query products: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var (
			id, name string
			quantity int64
			price    float64
		)
		if err := rows.Scan(&id, &name, &quantity, &price); err != nil {
			return nil, report, fmt.Errorf("%w: scan product: %w", domain.ErrStorage, err)
		}

		p, err := domain.NewProduct(id, name, int(quantity), price)
		if err != nil {
			report.Corrupted++
			continue
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, report, fmt.Errorf("%w: iterate products: %w", domain.ErrStorage, err)
	}

	report.Loaded = len(products)
	return products, report, nil
}

func (a *SQLAdapter) Save(ctx context.Context, products []domain.Product) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %w", domain.ErrStorage, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("%w: clear products: %w", domain.ErrStorage, err)
	}

	stmt, err := tx.PrepareContext(ctx, a.dialect.insert)
	if err != nil {
		return fmt.Errorf("%w: prepare insert: %w", domain.ErrStorage, err)
	}
	defer stmt.Close()

	for _, p := range products {
		if _, err := stmt.ExecContext(ctx, p.ID, p.Name, p.Quantity, p.Price); err != nil {
			return fmt.Errorf("%w: insert product %q: %w", domain.ErrStorage, p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", domain.ErrStorage, err)
	}
	return nil
}
