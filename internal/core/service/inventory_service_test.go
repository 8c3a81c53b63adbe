package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rl1809/inventory/internal/core/domain"
	"github.com/rl1809/inventory/internal/port"
)

// Mock ProductRepository
type mockRepo struct {
	products []domain.Product
	report   port.LoadReport
	loadErr  error
	saveErr  error
	saves    int
}

func (m *mockRepo) Load(ctx context.Context) ([]domain.Product, port.LoadReport, error) {
	if m.loadErr != nil {
		return nil, port.LoadReport{}, m.loadErr
	}
	out := make([]domain.Product, len(m.products))
	copy(out, m.products)
	return out, m.report, nil
}

func (m *mockRepo) Save(ctx context.Context, products []domain.Product) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.products = append([]domain.Product(nil), products...)
	return nil
}

// Mock MetricsRecorder
type mockMetrics struct {
	ops      map[string]int
	failures map[string]int
	saves    int
	loads    int
	distinct int
	units    int
	value    float64
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{ops: make(map[string]int), failures: make(map[string]int)}
}

func (m *mockMetrics) ObserveOperation(op string, err error) {
	m.ops[op]++
	if err != nil {
		m.failures[op]++
	}
}

func (m *mockMetrics) ObserveLoad(report port.LoadReport, err error) { m.loads++ }

func (m *mockMetrics) ObserveSave(err error) { m.saves++ }

func (m *mockMetrics) ObserveInventory(distinct, units int, value float64) {
	m.distinct, m.units, m.value = distinct, units, value
}

func mustProduct(t *testing.T, id, name string, quantity int, price float64) domain.Product {
	t.Helper()
	p, err := domain.NewProduct(id, name, quantity, price)
	if err != nil {
		t.Fatalf("NewProduct(%q) failed: %v", id, err)
	}
	return p
}

func names(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestAdd_Success(t *testing.T) {
	svc := NewInventoryService(nil)

	if err := svc.Add(mustProduct(t, "1", "Mouse", 2, 3.5)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	p, ok := svc.Get("1")
	if !ok {
		t.Fatal("expected product 1 to exist")
	}
	if p.Name != "Mouse" || p.Quantity != 2 || p.Price != 3.5 {
		t.Errorf("unexpected product: %+v", p)
	}
}

func TestAdd_DuplicateKeepsFirst(t *testing.T) {
	svc := NewInventoryService(nil)

	if err := svc.Add(mustProduct(t, "1", "Mouse", 2, 3.5)); err != nil {
		t.Fatalf("first add failed: %v", err)
	}

	err := svc.Add(mustProduct(t, "1", "Keyboard", 9, 20))
	if !errors.Is(err, domain.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got: %v", err)
	}

	if svc.Len() != 1 {
		t.Errorf("expected 1 product, got %d", svc.Len())
	}
	p, _ := svc.Get("1")
	if p.Name != "Mouse" {
		t.Errorf("expected first product to survive, got %q", p.Name)
	}
}

func TestAdd_RejectsInvalidLiteral(t *testing.T) {
	svc := NewInventoryService(nil)

	err := svc.Add(domain.Product{ID: "1", Name: "Mouse", Quantity: -1})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got: %v", err)
	}
	if svc.Len() != 0 {
		t.Errorf("expected empty inventory, got %d", svc.Len())
	}
}

func TestRemove(t *testing.T) {
	svc := NewInventoryService(nil)
	svc.Add(mustProduct(t, "1", "Mouse", 2, 3.5))

	if err := svc.Remove(" 1 "); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok := svc.Get("1"); ok {
		t.Error("expected product to be removed")
	}
}

func TestRemove_NotFound(t *testing.T) {
	svc := NewInventoryService(nil)
	svc.Add(mustProduct(t, "1", "Mouse", 2, 3.5))

	err := svc.Remove("2")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
	if svc.Len() != 1 {
		t.Errorf("expected store unchanged, got %d products", svc.Len())
	}
}

func TestUpdate_Fields(t *testing.T) {
	svc := NewInventoryService(nil)
	svc.Add(mustProduct(t, "1", "Mouse", 2, 3.5))

	if err := svc.Update("1", intPtr(7), nil); err != nil {
		t.Fatalf("Update quantity failed: %v", err)
	}
	p, _ := svc.Get("1")
	if p.Quantity != 7 || p.Price != 3.5 {
		t.Errorf("unexpected product after quantity update: %+v", p)
	}

	if err := svc.Update("1", nil, floatPtr(4.25)); err != nil {
		t.Fatalf("Update price failed: %v", err)
	}
	p, _ = svc.Get("1")
	if p.Quantity != 7 || p.Price != 4.25 {
		t.Errorf("unexpected product after price update: %+v", p)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc := NewInventoryService(nil)

	err := svc.Update("missing", intPtr(1), nil)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestUpdate_PartialApplication(t *testing.T) {
	svc := NewInventoryService(nil)
	svc.Add(mustProduct(t, "1", "Mouse", 2, 3.5))

	err := svc.Update("1", intPtr(5), floatPtr(-1))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got: %v", err)
	}

	p, _ := svc.Get("1")
	if p.Quantity != 5 {
		t.Errorf("expected applied quantity 5 to stand, got %d", p.Quantity)
	}
	if p.Price != 3.5 {
		t.Errorf("expected price unchanged, got %v", p.Price)
	}
}

func TestUpdate_InvalidQuantityStopsEarly(t *testing.T) {
	svc := NewInventoryService(nil)
	svc.Add(mustProduct(t, "1", "Mouse", 2, 3.5))

	err := svc.Update("1", intPtr(-3), floatPtr(9))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got: %v", err)
	}

	p, _ := svc.Get("1")
	if p.Quantity != 2 || p.Price != 3.5 {
		t.Errorf("expected product unchanged, got %+v", p)
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	svc := NewInventoryService(nil)
	svc.Add(mustProduct(t, "1", "Mouse", 2, 3.5))

	p, _ := svc.Get("1")
	p.Quantity = -100
	p.Name = ""

	stored, _ := svc.Get("1")
	if stored.Quantity != 2 || stored.Name != "Mouse" {
		t.Errorf("stored product was mutated through a copy: %+v", stored)
	}
}

func TestSearchByName(t *testing.T) {
	svc := NewInventoryService(nil)
	svc.Add(mustProduct(t, "1", "Mouse", 1, 1))
	svc.Add(mustProduct(t, "2", "House", 1, 1))
	svc.Add(mustProduct(t, "3", "Keyboard", 1, 1))

	got := names(svc.SearchByName("ouse"))
	want := []string{"House", "Mouse"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSearchByName_CaseInsensitive(t *testing.T) {
	svc := NewInventoryService(nil)
	svc.Add(mustProduct(t, "b", "USB Hub", 1, 1))
	svc.Add(mustProduct(t, "a", "usb hub", 1, 1))

	got := svc.SearchByName("  HUB ")
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("expected ties broken by id, got %s, %s", got[0].ID, got[1].ID)
	}
}

func TestSearchByName_EmptyQuery(t *testing.T) {
	svc := NewInventoryService(nil)
	svc.Add(mustProduct(t, "1", "Mouse", 1, 1))

	if got := svc.SearchByName("   "); len(got) != 0 {
		t.Errorf("expected no results for blank query, got %v", names(got))
	}
}

func TestListAll_Ordering(t *testing.T) {
	svc := NewInventoryService(nil)
	svc.Add(mustProduct(t, "2", "mouse", 1, 1))
	svc.Add(mustProduct(t, "1", "Mouse", 1, 1))
	svc.Add(mustProduct(t, "3", "Cable", 1, 1))

	got := svc.ListAll()
	ids := []string{got[0].ID, got[1].ID, got[2].ID}
	want := []string{"3", "1", "2"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("expected order %v, got %v", want, ids)
	}
}

func TestSummary(t *testing.T) {
	svc := NewInventoryService(nil)
	svc.Add(mustProduct(t, "1", "Mouse", 2, 3.50))
	svc.Add(mustProduct(t, "2", "Keyboard", 1, 10.00))

	got := svc.Summary()
	want := Summary{Distinct: 2, Units: 3, TotalValue: 17.00}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestSummary_RoundsToCents(t *testing.T) {
	svc := NewInventoryService(nil)
	svc.Add(mustProduct(t, "1", "Tornillo", 3, 0.333))

	if got := svc.Summary().TotalValue; got != 1.0 {
		t.Errorf("expected 1.00, got %v", got)
	}
}

func TestLoad_ReplacesProducts(t *testing.T) {
	repo := &mockRepo{
		products: []domain.Product{mustProduct(t, "1", "Mouse", 1, 1), mustProduct(t, "2", "Cable", 4, 2)},
		report:   port.LoadReport{Loaded: 2, Corrupted: 1},
	}
	svc := NewInventoryService(repo)
	svc.Add(mustProduct(t, "old", "Stale", 1, 1))

	report, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if report.Corrupted != 1 {
		t.Errorf("expected corrupted 1, got %d", report.Corrupted)
	}
	if svc.Len() != 2 {
		t.Errorf("expected 2 products, got %d", svc.Len())
	}
	if _, ok := svc.Get("old"); ok {
		t.Error("expected previous content to be replaced")
	}
}

func TestLoad_FailureKeepsState(t *testing.T) {
	repo := &mockRepo{loadErr: domain.ErrFormat}
	svc := NewInventoryService(repo)
	svc.Add(mustProduct(t, "1", "Mouse", 1, 1))

	_, err := svc.Load(context.Background())
	if !errors.Is(err, domain.ErrFormat) {
		t.Errorf("expected ErrFormat, got: %v", err)
	}
	if svc.Len() != 1 {
		t.Errorf("expected state kept, got %d products", svc.Len())
	}
}

func TestLoad_RejectsDuplicateFromRepository(t *testing.T) {
	repo := &mockRepo{products: []domain.Product{mustProduct(t, "1", "Mouse", 1, 1), mustProduct(t, "1", "Cable", 1, 1)}}
	svc := NewInventoryService(repo)

	_, err := svc.Load(context.Background())
	if !errors.Is(err, domain.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got: %v", err)
	}
}

func TestSave_WritesSortedProducts(t *testing.T) {
	repo := &mockRepo{}
	svc := NewInventoryService(repo)
	svc.Add(mustProduct(t, "1", "Mouse", 1, 1))
	svc.Add(mustProduct(t, "2", "Cable", 1, 1))

	if err := svc.Save(context.Background()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if got := names(repo.products); !reflect.DeepEqual(got, []string{"Cable", "Mouse"}) {
		t.Errorf("unexpected saved order: %v", got)
	}
}

func TestSave_FailureKeepsMemory(t *testing.T) {
	repo := &mockRepo{saveErr: domain.ErrStorage}
	svc := NewInventoryService(repo)
	svc.Add(mustProduct(t, "1", "Mouse", 1, 1))

	err := svc.Save(context.Background())
	if !errors.Is(err, domain.ErrStorage) {
		t.Errorf("expected ErrStorage, got: %v", err)
	}
	if _, ok := svc.Get("1"); !ok {
		t.Error("expected in-memory product to survive failed save")
	}
}

func TestNilRepository(t *testing.T) {
	svc := NewInventoryService(nil)

	if _, err := svc.Load(context.Background()); err != nil {
		t.Errorf("unexpected load error: %v", err)
	}
	if err := svc.Save(context.Background()); err != nil {
		t.Errorf("unexpected save error: %v", err)
	}
}

func TestMetrics(t *testing.T) {
	m := newMockMetrics()
	svc := NewInventoryService(&mockRepo{}).WithMetrics(m)

	svc.Add(mustProduct(t, "1", "Mouse", 2, 3.5))
	svc.Add(mustProduct(t, "1", "Mouse", 2, 3.5))
	svc.Remove("nope")
	svc.Save(context.Background())

	if m.ops[opAdd] != 2 || m.failures[opAdd] != 1 {
		t.Errorf("unexpected add counts: %d ops, %d failures", m.ops[opAdd], m.failures[opAdd])
	}
	if m.failures[opRemove] != 1 {
		t.Errorf("expected 1 remove failure, got %d", m.failures[opRemove])
	}
	if m.saves != 1 {
		t.Errorf("expected 1 save, got %d", m.saves)
	}
	if m.distinct != 1 || m.units != 2 || m.value != 7 {
		t.Errorf("unexpected gauges: %d/%d/%v", m.distinct, m.units, m.value)
	}
}
