package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rl1809/inventory/internal/core/domain"
	"github.com/rl1809/inventory/internal/port"
)

const (
	opAdd    = "add"
	opRemove = "remove"
	opUpdate = "update"
	opSearch = "search"
)

// Summary aggregates the whole inventory. TotalValue is rounded to cents.
type Summary struct {
	Distinct   int
	Units      int
	TotalValue float64
}

// InventoryService keeps products in memory keyed by id. It is not safe for
// concurrent use; one session owns it.
type InventoryService struct {
	products map[string]*domain.Product
	repo     port.ProductRepository
	metrics  port.MetricsRecorder
}

// NewInventoryService returns an empty inventory. repo may be nil, in which
// case Load and Save are no-ops.
func NewInventoryService(repo port.ProductRepository) *InventoryService {
	return &InventoryService{
		products: make(map[string]*domain.Product),
		repo:     repo,
	}
}

func (s *InventoryService) WithMetrics(m port.MetricsRecorder) *InventoryService {
	s.metrics = m
	s.publish()
	return s
}

// Load replaces the in-memory products with the repository content. The
// current products are kept if loading fails.
func (s *InventoryService) Load(ctx context.Context) (port.LoadReport, error) {
	if s.repo == nil {
		return port.LoadReport{}, nil
	}

	products, report, err := s.repo.Load(ctx)
	if s.metrics != nil {
		s.metrics.ObserveLoad(report, err)
	}
	if err != nil {
		return report, fmt.Errorf("load inventory: %w", err)
	}

	loaded := make(map[string]*domain.Product, len(products))
	for i := range products {
		p := products[i]
		if err := p.Validate(); err != nil {
			return report, fmt.Errorf("load inventory: %w", err)
		}
		if _, exists := loaded[p.ID]; exists {
			return report, fmt.Errorf("load inventory: %w: %q", domain.ErrDuplicateKey, p.ID)
		}
		loaded[p.ID] = &p
	}

	s.products = loaded
	s.publish()
	return report, nil
}

// Save writes every product through the repository. In-memory state is never
// touched, whether or not the write succeeds.
func (s *InventoryService) Save(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	err := s.repo.Save(ctx, s.ListAll())
	if s.metrics != nil {
		s.metrics.ObserveSave(err)
	}
	if err != nil {
		return fmt.Errorf("save inventory: %w", err)
	}
	return nil
}

func (s *InventoryService) Add(p domain.Product) error {
	err := s.add(p)
	s.observe(opAdd, err)
	return err
}

func (s *InventoryService) add(p domain.Product) error {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return err
	}
	if _, exists := s.products[p.ID]; exists {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateKey, p.ID)
	}
	s.products[p.ID] = &p
	return nil
}

func (s *InventoryService) Remove(id string) error {
	id = strings.TrimSpace(id)
	if _, exists := s.products[id]; !exists {
		err := fmt.Errorf("%w: %q", domain.ErrNotFound, id)
		s.observe(opRemove, err)
		return err
	}
	delete(s.products, id)
	s.observe(opRemove, nil)
	return nil
}

// Update applies the non-nil fields one at a time, quantity first. When the
// price is rejected, an already applied quantity change stays in place.
func (s *InventoryService) Update(id string, quantity *int, price *float64) error {
	err := s.update(strings.TrimSpace(id), quantity, price)
	s.observe(opUpdate, err)
	return err
}

func (s *InventoryService) update(id string, quantity *int, price *float64) error {
	p, exists := s.products[id]
	if !exists {
		return fmt.Errorf("%w: %q", domain.ErrNotFound, id)
	}
	if quantity != nil {
		if err := p.SetQuantity(*quantity); err != nil {
			return err
		}
	}
	if price != nil {
		if err := p.SetPrice(*price); err != nil {
			return err
		}
	}
	return nil
}

// Get returns a copy of the product stored under id.
func (s *InventoryService) Get(id string) (domain.Product, bool) {
	p, exists := s.products[strings.TrimSpace(id)]
	if !exists {
		return domain.Product{}, false
	}
	return *p, true
}

// SearchByName matches query as a case-insensitive substring of product
// names. A blank query matches nothing.
func (s *InventoryService) SearchByName(query string) []domain.Product {
	q := normalize(query)
	if q == "" {
		s.observe(opSearch, nil)
		return []domain.Product{}
	}

	result := make([]domain.Product, 0)
	for _, p := range s.products {
		if strings.Contains(normalize(p.Name), q) {
			result = append(result, *p)
		}
	}
	sortProducts(result)
	s.observe(opSearch, nil)
	return result
}

// ListAll returns every product ordered by normalized name, then id.
func (s *InventoryService) ListAll() []domain.Product {
	result := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		result = append(result, *p)
	}
	sortProducts(result)
	return result
}

func (s *InventoryService) Summary() Summary {
	var sum Summary
	var total float64
	for _, p := range s.products {
		sum.Distinct++
		sum.Units += p.Quantity
		total += p.Value()
	}
	sum.TotalValue = roundCents(total)
	return sum
}

func (s *InventoryService) Len() int {
	return len(s.products)
}

func (s *InventoryService) observe(op string, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveOperation(op, err)
	if err == nil {
		s.publish()
	}
}

func (s *InventoryService) publish() {
	if s.metrics == nil {
		return
	}
	sum := s.Summary()
	s.metrics.ObserveInventory(sum.Distinct, sum.Units, sum.TotalValue)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func sortProducts(products []domain.Product) {
	sort.Slice(products, func(i, j int) bool {
		ni, nj := normalize(products[i].Name), normalize(products[j].Name)
		if ni != nj {
			return ni < nj
		}
		return products[i].ID < products[j].ID
	})
}

// roundCents rounds half away from zero to two decimals.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
