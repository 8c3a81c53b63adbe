package storage

import (
	"context"
	"reflect"
	"testing"

	"github.com/rl1809/inventory/internal/core/domain"
	"github.com/rl1809/inventory/internal/port"
)

func sampleProducts(t *testing.T) []domain.Product {
	t.Helper()
	raw := []struct {
		id       string
		name     string
		quantity int
		price    float64
	}{
		{"1", "Cable USB-C", 12, 4.5},
		{"2", "Mouse", 2, 3.5},
		{"3", "Teclado mecánico", 1, 10},
		{"4", "Monitor", 0, 199.99},
	}

	products := make([]domain.Product, 0, len(raw))
	for _, r := range raw {
		p, err := domain.NewProduct(r.id, r.name, r.quantity, r.price)
		if err != nil {
			t.Fatalf("NewProduct(%q) failed: %v", r.id, err)
		}
		products = append(products, p)
	}
	return products
}

func byID(products []domain.Product) map[string]domain.Product {
	out := make(map[string]domain.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out
}

// assertRoundTrip saves products through repo, loads them back and compares
// field by field, ignoring order.
func assertRoundTrip(t *testing.T, repo port.ProductRepository, products []domain.Product) {
	t.Helper()
	ctx := context.Background()

	if err := repo.Save(ctx, products); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, report, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if report.Corrupted != 0 || report.Duplicates != 0 {
		t.Errorf("unexpected load report: %+v", report)
	}
	if report.Loaded != len(products) {
		t.Errorf("expected %d loaded, got %d", len(products), report.Loaded)
	}
	if !reflect.DeepEqual(byID(got), byID(products)) {
		t.Errorf("round trip mismatch:\nwant %+v\ngot  %+v", products, got)
	}
}
