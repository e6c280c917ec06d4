package recon

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// quotientTolerance bounds how far amount/unitPrice may sit from an integer
// before the quantity cross-check fails. Empirically tuned; do not change
// without domain validation data.
const quotientTolerance = 0.05

var numberPattern = regexp.MustCompile(`[0-9]+(?:[.,][0-9]+)*`)

// charRepairs fixes single-character OCR confusions before number scanning.
var charRepairs = strings.NewReplacer(
	"(", "1",
	"l", "1",
	"O", "0",
	"o", "0",
)

var groupingChars = strings.NewReplacer(".", "", ",", "")

// ResolveNumbers extracts quantity, unit price and amount from a noisy
// numeric blob. Column identity in the blob is not trusted: OCR frequently
// misplaces which token is which, so the two largest values are taken as
// amount and unit price (in a three-column layout amount >= unit price >=
// quantity almost always holds) and the quantity is recovered from their
// quotient. A quotient close to an integer marks the row trustworthy.
func ResolveNumbers(blob string) (ParsedItem, SkipReason) {
	repaired := charRepairs.Replace(blob)

	matches := numberPattern.FindAllString(repaired, -1)
	values := make([]float64, 0, len(matches))
	for _, m := range matches {
		v, err := strconv.ParseFloat(groupingChars.Replace(m), 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}

	switch len(values) {
	case 0:
		return ParsedItem{}, SkipNoNumericData
	case 1:
		// A lone value cannot be cross-checked; assume quantity 1 and flag
		// the row for manual review.
		return ParsedItem{Quantity: 1, UnitPrice: values[0], Amount: values[0]}, ""
	}

	sort.Float64s(values)
	amount := values[len(values)-1]
	unitPrice := values[len(values)-2]

	item := ParsedItem{UnitPrice: unitPrice, Amount: amount}
	if unitPrice > 0 {
		implied := amount / unitPrice
		if math.Abs(implied-math.Round(implied)) < quotientTolerance {
			item.Quantity = int(math.Round(implied))
			item.Trustworthy = true
		}
	}
	return item, ""
}
