package layout

import (
	"fmt"
	"strings"
)

// HeaderLine precedes the row lines in the text handed to the reconciliation
// pipeline, mirroring the upstream OCR contract. The pipeline filters it by
// keyword.
const HeaderLine = "ITEMNAME QUANTITY AMOUNT UNITPRICE"

// Separator delimits the name segment from the numeric segments in one row
// line.
const Separator = "|"

var groupingStripper = strings.NewReplacer(".", "", ",", "")

// FormatLines renders grouped rows into the pipeline's line format:
// one row per line, "name | qty | amount | price", preceded by HeaderLine.
func FormatLines(rows []Row) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, HeaderLine)
	for _, r := range rows {
		qty := r.Quantity
		if qty == "" {
			qty = "1"
		}
		qty = strings.ReplaceAll(qty, ",", ".")

		price := groupingStripper.Replace(r.UnitPrice)
		if price == "" {
			price = "0"
		}
		amount := groupingStripper.Replace(r.Amount)
		if amount == "" {
			amount = "0"
		}

		lines = append(lines, fmt.Sprintf("%s %s %s %s %s %s %s",
			r.ItemName, Separator, qty, Separator, amount, Separator, price))
	}
	return strings.Join(lines, "\n")
}
