package recon

import (
	"context"
	"strings"
	"time"

	"github.com/nmthanh/warehouse-vision/internal/domain"
	"github.com/nmthanh/warehouse-vision/internal/match"
	"github.com/nmthanh/warehouse-vision/internal/textutil"
)

// minNameLen is the shortest cleaned item name worth reconciling.
const minNameLen = 2

// headerKeywords identify column-header lines leaked into the OCR output.
var headerKeywords = []string{"itemname", "quantity", "amount", "unitprice"}

// ProductMatcher scores a cleaned item name against the product catalog.
type ProductMatcher interface {
	Match(ctx context.Context, name string) match.Result
}

// Pipeline converts raw OCR row text into reconciled line items. Stateless
// per invocation apart from read access to the catalog index via the
// matcher; invocations may run concurrently without coordination.
type Pipeline struct {
	matcher ProductMatcher

	// now is swappable for deterministic temp IDs in tests.
	now func() time.Time
}

// NewPipeline creates a reconciliation pipeline over the given matcher.
func NewPipeline(matcher ProductMatcher) *Pipeline {
	return &Pipeline{matcher: matcher, now: time.Now}
}

// Reconcile parses the raw OCR text block (one physical row per line, name
// segment separated from the numeric segments by the fixed separator) and
// reconciles each row against the catalog.
//
// Row-level failures skip that row and continue; the total absence of input
// surfaces as an empty result, never an error.
func (p *Pipeline) Reconcile(ctx context.Context, rawText string) *BatchResult {
	result := &BatchResult{RawText: rawText}
	tempBase := p.now().UnixMilli()

	for _, line := range strings.Split(rawText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		item, skip := p.parseLine(line)
		if skip != "" {
			result.Skipped = append(result.Skipped, SkippedRow{Line: line, Reason: skip})
			continue
		}

		matched := p.matcher.Match(ctx, item.Name)

		out := domain.ReconciledLineItem{
			TempID:           tempBase + int64(len(result.Items)),
			OCRText:          line,
			ProductName:      item.Name,
			Quantity:         item.Quantity,
			UnitPrice:        item.UnitPrice,
			Amount:           item.Amount,
			Status:           matched.Status,
			Confidence:       matched.Confidence,
			NeedsManualCheck: !item.Trustworthy,
		}
		if matched.Candidate != nil {
			out.ProductID = matched.Candidate.ExternalID
			out.ProductName = matched.Candidate.Name
			out.SKU = matched.Candidate.SKU
		}
		result.Items = append(result.Items, out)
	}
	return result
}

// parseLine splits one row line into a cleaned name and resolved numbers.
func (p *Pipeline) parseLine(line string) (ParsedItem, SkipReason) {
	if isHeaderLine(line) {
		return ParsedItem{}, SkipHeader
	}

	parts := strings.Split(line, "|")
	if len(parts) < 2 {
		return ParsedItem{}, SkipMalformed
	}

	name := textutil.CleanItemName(parts[0])
	if len([]rune(name)) < minNameLen {
		return ParsedItem{}, SkipShortName
	}

	item, skip := ResolveNumbers(strings.Join(parts[1:], " "))
	if skip != "" {
		return ParsedItem{}, skip
	}
	if item.UnitPrice == 0 && item.Amount == 0 {
		return ParsedItem{}, SkipZeroValues
	}

	item.Name = name
	return item, ""
}

func isHeaderLine(line string) bool {
	lowered := strings.ToLower(line)
	for _, kw := range headerKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
