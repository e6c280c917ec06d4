package recon

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nmthanh/warehouse-vision/internal/domain"
	"github.com/nmthanh/warehouse-vision/internal/match"
)

// fakeMatcher returns canned results keyed by cleaned item name.
type fakeMatcher struct {
	results map[string]match.Result
	queries []string
}

func (f *fakeMatcher) Match(ctx context.Context, name string) match.Result {
	f.queries = append(f.queries, name)
	if r, ok := f.results[name]; ok {
		return r
	}
	return match.Result{Status: domain.StatusNew}
}

func newTestPipeline(m ProductMatcher) *Pipeline {
	p := NewPipeline(m)
	p.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return p
}

func TestPipeline_Reconcile(t *testing.T) {
	matcher := &fakeMatcher{results: map[string]match.Result{
		"Nuoc mam Nam Ngu 500ml": {
			Status:     domain.StatusAuto,
			Confidence: 1.0,
			Candidate:  &match.Candidate{ExternalID: "p-1", Name: "Nước mắm Nam Ngư 500ml", SKU: "NM500"},
		},
	}}
	p := newTestPipeline(matcher)

	raw := strings.Join([]string{
		"ITEMNAME QUANTITY AMOUNT UNITPRICE",
		"8934563112223 Nuoc mam Nam Ngu 500ml | 2 | 76000 | 38000",
		"Keo la me | 21000",
	}, "\n")

	result := p.Reconcile(context.Background(), raw)

	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d (skipped: %+v)", len(result.Items), result.Skipped)
	}
	if result.RawText != raw {
		t.Error("RawText should echo the input block")
	}

	first := result.Items[0]
	if first.ProductID != "p-1" || first.Status != domain.StatusAuto {
		t.Errorf("first item not matched: %+v", first)
	}
	if first.ProductName != "Nước mắm Nam Ngư 500ml" || first.SKU != "NM500" {
		t.Errorf("first item should carry the catalog entry, got %+v", first)
	}
	if first.Quantity != 2 || first.UnitPrice != 38000 || first.Amount != 76000 {
		t.Errorf("first item numbers wrong: %+v", first)
	}
	if first.NeedsManualCheck {
		t.Error("consistent triple should not need manual check")
	}

	second := result.Items[1]
	if second.Status != domain.StatusNew || second.ProductID != "" {
		t.Errorf("unmatched item should be NEW with no product: %+v", second)
	}
	if second.ProductName != "Keo la me" {
		t.Errorf("unmatched item keeps its cleaned name, got %q", second.ProductName)
	}
	if second.Quantity != 1 || second.Amount != 21000 || second.UnitPrice != 21000 {
		t.Errorf("lone value handling wrong: %+v", second)
	}
	if !second.NeedsManualCheck {
		t.Error("unverifiable row must need manual check")
	}
}

func TestPipeline_TempIDsAreSequential(t *testing.T) {
	p := newTestPipeline(&fakeMatcher{})

	raw := "Banh quy | 2 | 20000 | 10000\nKeo deo | 3 | 15000 | 5000\nMi tom | 1 | 4000 | 4000"
	result := p.Reconcile(context.Background(), raw)

	if len(result.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(result.Items))
	}
	seen := map[int64]bool{}
	for i, item := range result.Items {
		if seen[item.TempID] {
			t.Errorf("duplicate TempID %d", item.TempID)
		}
		seen[item.TempID] = true
		if i > 0 && item.TempID != result.Items[i-1].TempID+1 {
			t.Errorf("TempIDs not sequential: %d after %d", item.TempID, result.Items[i-1].TempID)
		}
	}
}

func TestPipeline_SkipReasons(t *testing.T) {
	tests := []struct {
		name string
		line string
		want SkipReason
	}{
		{"header line", "ItemName Quantity Amount UnitPrice", SkipHeader},
		{"lowercase header keyword", "so luong quantity", SkipHeader},
		{"missing separator", "Banh quy 2 20000 10000", SkipMalformed},
		{"name too short", "8934563112223 | 2 | 20000 | 10000", SkipShortName},
		{"no numeric data", "Banh quy | khong ro", SkipNoNumericData},
		{"zero price and amount", "Banh quy | 0 | 0 | 0", SkipZeroValues},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipeline(&fakeMatcher{})
			result := p.Reconcile(context.Background(), tt.line)
			if len(result.Items) != 0 {
				t.Fatalf("expected no items, got %+v", result.Items)
			}
			if len(result.Skipped) != 1 {
				t.Fatalf("expected 1 skipped row, got %+v", result.Skipped)
			}
			if result.Skipped[0].Reason != tt.want {
				t.Errorf("reason = %q, want %q", result.Skipped[0].Reason, tt.want)
			}
		})
	}
}

// One malformed row never aborts the batch.
func TestPipeline_BadRowDoesNotAbortBatch(t *testing.T) {
	p := newTestPipeline(&fakeMatcher{})

	raw := "garbage without separator\nBanh quy | 2 | 20000 | 10000\n| 1 | 0 | 0"
	result := p.Reconcile(context.Background(), raw)

	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Items))
	}
	if len(result.Skipped) != 2 {
		t.Errorf("expected 2 skipped rows, got %+v", result.Skipped)
	}
}

func TestPipeline_EmptyInput(t *testing.T) {
	p := newTestPipeline(&fakeMatcher{})

	for _, raw := range []string{"", "\n\n", "   \n  "} {
		result := p.Reconcile(context.Background(), raw)
		if len(result.Items) != 0 || len(result.Skipped) != 0 {
			t.Errorf("Reconcile(%q): expected empty result, got %+v", raw, result)
		}
	}
}

func TestPipeline_MatcherReceivesCleanedName(t *testing.T) {
	matcher := &fakeMatcher{}
	p := newTestPipeline(matcher)

	p.Reconcile(context.Background(), "8934563112223 Nuoc mam Nam Ngu 500ml | 2 | 76000 | 38000")

	if len(matcher.queries) != 1 {
		t.Fatalf("expected 1 matcher call, got %d", len(matcher.queries))
	}
	if matcher.queries[0] != "Nuoc mam Nam Ngu 500ml" {
		t.Errorf("matcher query = %q, want cleaned name", matcher.queries[0])
	}
}
