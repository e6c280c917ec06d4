package recon

import "github.com/nmthanh/warehouse-vision/internal/domain"

// ParsedItem is one invoice row after name cleaning and numeric resolution.
// When Trustworthy is set, Quantity * UnitPrice is within 5% of Amount.
type ParsedItem struct {
	Name        string
	Quantity    int
	UnitPrice   float64
	Amount      float64
	Trustworthy bool
}

// SkipReason says why a row was dropped instead of reconciled. Row-level
// failures are values, not errors: one bad row never aborts the batch.
type SkipReason string

const (
	SkipHeader        SkipReason = "header_row"
	SkipMalformed     SkipReason = "missing_separator"
	SkipShortName     SkipReason = "name_too_short"
	SkipNoNumericData SkipReason = "no_numeric_data"
	SkipZeroValues    SkipReason = "zero_price_and_amount"
)

// SkippedRow records one discarded input line and the reason, so skips are
// observable instead of silently swallowed.
type SkippedRow struct {
	Line   string     `json:"line"`
	Reason SkipReason `json:"reason"`
}

// BatchResult is the outcome of reconciling one invoice.
type BatchResult struct {
	Items []domain.ReconciledLineItem `json:"items"`
	// RawText echoes the original OCR block for audit and UI fallback.
	RawText string       `json:"rawText"`
	Skipped []SkippedRow `json:"skipped,omitempty"`
}
