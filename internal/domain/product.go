package domain

import "time"

// Product is one catalog entry. The in-memory store is authoritative for
// stock levels; the search index only mirrors name/sku for fuzzy lookup.
type Product struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	SKU             string `json:"sku"`
	Description     string `json:"description,omitempty"`
	QuantityInStock int    `json:"quantity_in_stock"`
}

// ImportSlipDetail is one received line on an import slip.
type ImportSlipDetail struct {
	ProductID   string  `json:"product_id"`
	Quantity    int     `json:"quantity"`
	ImportPrice float64 `json:"import_price"`
	TotalPrice  float64 `json:"total_price"`
}

// ImportSlip records one goods-in event.
type ImportSlip struct {
	ID          string             `json:"id"`
	Code        string             `json:"code"`
	TotalAmount float64            `json:"total_amount"`
	CreatedAt   time.Time          `json:"created_at"`
	Details     []ImportSlipDetail `json:"details"`
}

// ExportSlipDetail is one issued line on an export slip.
type ExportSlipDetail struct {
	ProductID   string  `json:"product_id"`
	Quantity    int     `json:"quantity"`
	ExportPrice float64 `json:"export_price"`
}

// ExportSlip records one goods-out event.
type ExportSlip struct {
	ID        string             `json:"id"`
	Code      string             `json:"code"`
	Reason    string             `json:"reason,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	Details   []ExportSlipDetail `json:"details"`
}
