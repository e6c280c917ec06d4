package warehouse

import (
	"fmt"
	"sort"
	"sync"

	"github.com/nmthanh/warehouse-vision/internal/domain"
)

// Store is an in-memory product and slip store, safe for concurrent use.
// Relational persistence sits outside this subsystem; the store holds the
// working catalog and hands read-only copies out.
type Store struct {
	mu          sync.RWMutex
	products    map[string]*domain.Product // by ID
	nameToID    map[string]string
	importSlips map[string]*domain.ImportSlip
	exportSlips map[string]*domain.ExportSlip
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		products:    make(map[string]*domain.Product),
		nameToID:    make(map[string]string),
		importSlips: make(map[string]*domain.ImportSlip),
		exportSlips: make(map[string]*domain.ExportSlip),
	}
}

// ListProducts returns all products sorted by name.
func (s *Store) ListProducts() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GetProduct returns a copy of the product, or false when absent.
func (s *Store) GetProduct(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, false
	}
	return *p, true
}

// FindProductByName returns a copy of the product with the exact name.
func (s *Store) FindProductByName(name string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.nameToID[name]
	if !ok {
		return domain.Product{}, false
	}
	return *s.products[id], true
}

// PutProduct inserts or replaces a product.
func (s *Store) PutProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := p
	s.products[p.ID] = &copied
	s.nameToID[p.Name] = p.ID
}

// AdjustStock changes a product's stock level by delta, failing when the
// product is missing or the result would go negative.
func (s *Store) AdjustStock(id string, delta int) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("product %s not found", id)
	}
	next := p.QuantityInStock + delta
	if next < 0 {
		return domain.Product{}, fmt.Errorf("product %q has insufficient stock (have %d, need %d)",
			p.Name, p.QuantityInStock, -delta)
	}
	p.QuantityInStock = next
	return *p, nil
}

// StockDeduction is one product/quantity pair removed by an export slip.
type StockDeduction struct {
	ProductID string
	Quantity  int
}

// DeductStock applies all deductions under one lock: every line is checked
// before any stock changes, so a failing line leaves the catalog untouched
// and a concurrent export cannot slip between check and deduction.
func (s *Store) DeductStock(deductions []StockDeduction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range deductions {
		p, ok := s.products[d.ProductID]
		if !ok {
			return fmt.Errorf("product %s not found", d.ProductID)
		}
		if p.QuantityInStock < d.Quantity {
			return fmt.Errorf("product %q has insufficient stock (have %d, need %d)",
				p.Name, p.QuantityInStock, d.Quantity)
		}
	}
	for _, d := range deductions {
		s.products[d.ProductID].QuantityInStock -= d.Quantity
	}
	return nil
}

// SaveImportSlip stores a finished import slip.
func (s *Store) SaveImportSlip(slip *domain.ImportSlip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.importSlips[slip.ID] = slip
}

// SaveExportSlip stores a finished export slip.
func (s *Store) SaveExportSlip(slip *domain.ExportSlip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exportSlips[slip.ID] = slip
}
