package match

import (
	"context"

	"github.com/nmthanh/warehouse-vision/internal/domain"
)

// Candidate is a read-only view of one catalog entry held in the secondary
// search index.
type Candidate struct {
	ExternalID     string `json:"id"`
	Name           string `json:"name"`
	NormalizedName string `json:"-"`
	SKU            string `json:"sku"`
}

// CatalogIndex is the text-search store the matcher retrieves candidates
// from. It is an eventually-consistent mirror of the catalog, never a source
// of truth; implementations must be safe for concurrent use. The matcher
// owns no lifecycle; the caller connects and closes the store.
type CatalogIndex interface {
	// Search runs a ranked full-text query and returns up to limit
	// candidates, best first.
	Search(ctx context.Context, query string, limit int64) ([]Candidate, error)

	// SearchFragment returns candidates whose search text contains the
	// literal fragment, case-insensitive.
	SearchFragment(ctx context.Context, fragment string, limit int64) ([]Candidate, error)
}

// Result is the outcome of matching one cleaned item name.
// Status NEW implies Candidate is nil.
type Result struct {
	Status     domain.MatchStatus `json:"status"`
	Confidence float64            `json:"confidence"`
	Candidate  *Candidate         `json:"candidate,omitempty"`
}
