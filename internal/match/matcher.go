package match

import (
	"context"
	"strings"
	"time"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"github.com/rs/zerolog"

	"github.com/nmthanh/warehouse-vision/internal/domain"
	"github.com/nmthanh/warehouse-vision/internal/textutil"
)

// Similarity thresholds on the 0-100 fuzzy scale. Empirically tuned against
// scanned invoices; do not adjust without domain validation data.
const (
	autoLooseMin      = 90
	autoStrictMin     = 80
	rejectStrictMax   = 50
	suggestLooseMin   = 85
	suggestStrictMin  = 60
	fallbackStrictMin = 70

	// lengthPenaltyRatio downgrades AUTO results whose normalized lengths
	// diverge too much; short-token overlaps otherwise score deceptively
	// high.
	lengthPenaltyRatio = 0.3
)

const (
	searchLimit    = 20
	fragmentLimit  = 10
	minFragmentLen = 4
	defaultTimeout = 3 * time.Second
)

// Matcher reconciles a cleaned item name against the product catalog using a
// dual fuzzy-similarity decision matrix. Stateless per call apart from read
// access to the index; safe for concurrent use.
type Matcher struct {
	index   CatalogIndex
	timeout time.Duration
	log     zerolog.Logger
}

// New creates a Matcher over the given index. timeout bounds each candidate
// retrieval call; zero picks a default.
func New(index CatalogIndex, timeout time.Duration, log zerolog.Logger) *Matcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Matcher{index: index, timeout: timeout, log: log}
}

// Match scores name against the catalog and returns a status tier with a
// calibrated confidence. Retrieval failures degrade to the fragment fallback
// and finally to a NEW result; Match never returns an error.
func (m *Matcher) Match(ctx context.Context, name string) Result {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < 2 {
		return Result{Status: domain.StatusNew}
	}

	candidates := m.retrieve(ctx, name)
	if len(candidates) == 0 {
		return Result{Status: domain.StatusNew}
	}

	normQuery := textutil.NormalizeTones(name)

	bestIdx := -1
	looseScore := -1
	for i, c := range candidates {
		score := fuzzy.WRatio(normQuery, normalizedName(c))
		if score > looseScore {
			looseScore = score
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return Result{Status: domain.StatusNew}
	}

	best := candidates[bestIdx]
	strictScore := fuzzy.TokenSortRatio(normQuery, normalizedName(best))

	status, confidence := decide(looseScore, strictScore)
	if status == domain.StatusAuto && lengthRatio(normQuery, normalizedName(best)) > lengthPenaltyRatio {
		status = domain.StatusSuggestion
	}

	if status == domain.StatusNew {
		return Result{Status: domain.StatusNew, Confidence: confidence}
	}
	return Result{Status: status, Confidence: confidence, Candidate: &best}
}

// retrieve queries the index for candidates, falling back to a substring
// scan on the query's longest word when the ranked query times out or comes
// back empty. Each call gets its own deadline so a ranked query that burns
// the whole budget still leaves the fallback a real chance.
func (m *Matcher) retrieve(ctx context.Context, query string) []Candidate {
	searchCtx, cancel := context.WithTimeout(ctx, m.timeout)
	candidates, err := m.index.Search(searchCtx, query, searchLimit)
	cancel()
	if err != nil {
		m.log.Warn().Err(err).Str("query", query).Msg("catalog index search failed, trying fragment fallback")
	}
	if len(candidates) > 0 {
		return candidates
	}

	fragment := longestWord(query)
	if len([]rune(fragment)) < minFragmentLen {
		return nil
	}

	fragmentCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	candidates, err = m.index.SearchFragment(fragmentCtx, fragment, fragmentLimit)
	if err != nil {
		m.log.Warn().Err(err).Str("fragment", fragment).Msg("catalog index fragment search failed")
		return nil
	}
	return candidates
}

// decide applies the decision matrix top to bottom; first match wins.
// The second rule guards against a high loose score caused by coincidental
// substring overlap between unrelated products.
func decide(loose, strict int) (domain.MatchStatus, float64) {
	switch {
	case loose >= autoLooseMin && strict >= autoStrictMin:
		return domain.StatusAuto, float64(loose) / 100
	case loose >= autoLooseMin && strict < rejectStrictMax:
		return domain.StatusNew, float64(strict) / 100
	case loose >= suggestLooseMin && strict >= suggestStrictMin:
		return domain.StatusSuggestion, float64(loose) / 100
	case strict >= fallbackStrictMin:
		return domain.StatusSuggestion, float64(loose) / 100
	default:
		return domain.StatusNew, float64(loose) / 100
	}
}

func lengthRatio(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 && lb == 0 {
		return 0
	}
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	longer := la
	if lb > longer {
		longer = lb
	}
	return float64(diff) / float64(longer)
}

func longestWord(s string) string {
	longest := ""
	for _, w := range strings.Fields(s) {
		if len([]rune(w)) > len([]rune(longest)) {
			longest = w
		}
	}
	return longest
}

func normalizedName(c Candidate) string {
	if c.NormalizedName != "" {
		return c.NormalizedName
	}
	return textutil.NormalizeTones(c.Name)
}
