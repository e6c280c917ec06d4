package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nmthanh/warehouse-vision/internal/domain"
	"github.com/nmthanh/warehouse-vision/internal/match"
	"github.com/nmthanh/warehouse-vision/internal/textutil"
)

// indexSyncTimeout bounds each background index write.
const indexSyncTimeout = 5 * time.Second

// IndexWriter mirrors catalog mutations into the search index. The index is
// an eventually-consistent read cache: failures are logged, never propagated
// into the primary write.
type IndexWriter interface {
	Upsert(ctx context.Context, c match.Candidate) error
}

// ImportItem is one received line on an incoming import slip request.
// Unknown product names are created on the fly.
type ImportItem struct {
	ItemName  string  `json:"itemName"`
	SKU       string  `json:"sku,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Amount    float64 `json:"amount"`
}

// ImportSlipRequest is the payload for creating an import slip.
type ImportSlipRequest struct {
	Code         string       `json:"code"`
	InvoiceTotal float64      `json:"invoice_total"`
	Items        []ImportItem `json:"items"`
}

// ExportItem is one issued line on an outgoing export slip request.
type ExportItem struct {
	ProductID   string  `json:"product_id"`
	Quantity    int     `json:"quantity"`
	ExportPrice float64 `json:"export_price"`
}

// ExportSlipRequest is the payload for creating an export slip.
type ExportSlipRequest struct {
	Code   string       `json:"code"`
	Reason string       `json:"reason,omitempty"`
	Items  []ExportItem `json:"items"`
}

// Service owns catalog and slip operations and keeps the search index in
// sync with catalog mutations.
type Service struct {
	store *Store
	index IndexWriter
	log   zerolog.Logger
}

// NewService wires the store and the index writer together.
func NewService(store *Store, index IndexWriter, log zerolog.Logger) *Service {
	return &Service{store: store, index: index, log: log}
}

// ListProducts returns the catalog sorted by name.
func (s *Service) ListProducts(ctx context.Context) []domain.Product {
	return s.store.ListProducts()
}

// CreateProduct adds a catalog entry and mirrors it into the search index.
func (s *Service) CreateProduct(ctx context.Context, name, sku, description string, stock int) (domain.Product, error) {
	if name == "" {
		return domain.Product{}, fmt.Errorf("CreateProduct: name is required")
	}
	if _, exists := s.store.FindProductByName(name); exists {
		return domain.Product{}, fmt.Errorf("CreateProduct: product %q already exists", name)
	}

	p := domain.Product{
		ID:              uuid.NewString(),
		Name:            name,
		SKU:             sku,
		Description:     description,
		QuantityInStock: stock,
	}
	s.store.PutProduct(p)
	s.syncIndex(p)
	return p, nil
}

// CreateImportSlip records a goods-in event: it creates the slip, finds or
// creates each product by name, raises stock and writes the details. Every
// item is validated before the first catalog mutation, so a rejected slip
// leaves no partial state behind.
func (s *Service) CreateImportSlip(ctx context.Context, req ImportSlipRequest) (*domain.ImportSlip, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("CreateImportSlip: slip has no items")
	}
	for i, item := range req.Items {
		if item.ItemName == "" {
			return nil, fmt.Errorf("CreateImportSlip: item %d has no name", i)
		}
		if item.Quantity < 0 {
			return nil, fmt.Errorf("CreateImportSlip: item %q has negative quantity", item.ItemName)
		}
	}

	slip := &domain.ImportSlip{
		ID:          uuid.NewString(),
		Code:        req.Code,
		TotalAmount: req.InvoiceTotal,
		CreatedAt:   time.Now(),
	}

	for _, item := range req.Items {
		product, ok := s.store.FindProductByName(item.ItemName)
		if !ok {
			product = domain.Product{
				ID:              uuid.NewString(),
				Name:            item.ItemName,
				SKU:             item.SKU,
				QuantityInStock: item.Quantity,
			}
			s.store.PutProduct(product)
			s.syncIndex(product)
		} else {
			updated, err := s.store.AdjustStock(product.ID, item.Quantity)
			if err != nil {
				return nil, fmt.Errorf("CreateImportSlip: %w", err)
			}
			product = updated
		}

		slip.Details = append(slip.Details, domain.ImportSlipDetail{
			ProductID:   product.ID,
			Quantity:    item.Quantity,
			ImportPrice: item.UnitPrice,
			TotalPrice:  item.Amount,
		})
	}

	s.store.SaveImportSlip(slip)
	return slip, nil
}

// CreateExportSlip records a goods-out event. Stock is checked and deducted
// atomically across all lines, so a failing line leaves the catalog untouched
// even under concurrent exports.
func (s *Service) CreateExportSlip(ctx context.Context, req ExportSlipRequest) (*domain.ExportSlip, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("CreateExportSlip: slip has no items")
	}

	deductions := make([]StockDeduction, 0, len(req.Items))
	for _, item := range req.Items {
		deductions = append(deductions, StockDeduction{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	if err := s.store.DeductStock(deductions); err != nil {
		return nil, fmt.Errorf("CreateExportSlip: %w", err)
	}

	slip := &domain.ExportSlip{
		ID:        uuid.NewString(),
		Code:      req.Code,
		Reason:    req.Reason,
		CreatedAt: time.Now(),
	}
	for _, item := range req.Items {
		slip.Details = append(slip.Details, domain.ExportSlipDetail{
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			ExportPrice: item.ExportPrice,
		})
	}

	s.store.SaveExportSlip(slip)
	return slip, nil
}

// syncIndex pushes one product into the search index in the background. The
// primary write has already committed; a sync failure only delays when the
// product becomes matchable.
func (s *Service) syncIndex(p domain.Product) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), indexSyncTimeout)
		defer cancel()

		c := match.Candidate{
			ExternalID:     p.ID,
			Name:           p.Name,
			NormalizedName: textutil.NormalizeTones(p.Name),
			SKU:            p.SKU,
		}
		if err := s.index.Upsert(ctx, c); err != nil {
			s.log.Warn().Err(err).Str("product_id", p.ID).Str("name", p.Name).
				Msg("catalog index sync failed")
		}
	}()
}
