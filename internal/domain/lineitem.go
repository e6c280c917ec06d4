package domain

// MatchStatus is the confidence tier assigned to a reconciled line item.
type MatchStatus string

const (
	// StatusAuto means the catalog match is safe to accept without review.
	StatusAuto MatchStatus = "AUTO"
	// StatusSuggestion means a human should confirm the proposed match.
	StatusSuggestion MatchStatus = "SUGGESTION"
	// StatusNew means the item could not be matched and is treated as a new product.
	StatusNew MatchStatus = "NEW"
)

// ReconciledLineItem is one invoice row after cleaning, numeric resolution
// and catalog matching. It is handed to the caller for display and eventual
// persistence into import-slip details; this subsystem never stores it.
type ReconciledLineItem struct {
	// TempID is unique within one invoice batch; derived from the batch
	// timestamp plus the item's sequence position.
	TempID  int64  `json:"tempId"`
	OCRText string `json:"ocrText"`

	// ProductID is empty when Status is NEW.
	ProductID   string `json:"productId,omitempty"`
	ProductName string `json:"productName"`
	SKU         string `json:"sku,omitempty"`

	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Amount    float64 `json:"amount"`

	Status     MatchStatus `json:"status"`
	Confidence float64     `json:"confidence"`

	// NeedsManualCheck is set when the quantity/price/amount triple failed
	// the algebraic consistency check.
	NeedsManualCheck bool `json:"needsManualCheck"`
}
