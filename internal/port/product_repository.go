package port

import (
	"context"

	"github.com/rl1809/inventory/internal/core/domain"
)

// LoadReport describes what a repository skipped while loading.
type LoadReport struct {
	Loaded     int
	Corrupted  int // entries that failed to parse or validate
	Duplicates int // repeated ids, first occurrence kept
}

type ProductRepository interface {
	// Load returns every persisted product. A missing backing store is an
	// empty inventory, not an error.
	Load(ctx context.Context) ([]domain.Product, LoadReport, error)

	// Save replaces the persisted collection with products. Readers never
	// observe a partially written collection.
	Save(ctx context.Context, products []domain.Product) error
}
