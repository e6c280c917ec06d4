package textutil

import (
	"regexp"
	"strings"
)

// leadingBarcode matches the longest leading run of garbage characters
// followed by a barcode-length (>= 6 digits) numeric sequence and any
// trailing punctuation or spaces. Anchored so names that merely contain a
// digit run are left alone.
var leadingBarcode = regexp.MustCompile(`^[^0-9A-Za-zÀ-ỹ]*[0-9]{6,}[[:punct:]\s]*`)

// noiseTokens are common OCR misreads of row separators that survive at the
// start of a name after barcode stripping.
var noiseTokens = map[string]bool{
	"-": true,
	".": true,
	",": true,
	":": true,
	";": true,
	"|": true,
	"*": true,
}

// CleanItemName strips a leading barcode and OCR noise markers from a raw
// item-name token and returns the trimmed remainder. Callers discard rows
// whose cleaned name is shorter than two characters.
func CleanItemName(raw string) string {
	s := strings.TrimSpace(raw)
	s = leadingBarcode.ReplaceAllString(s, "")

	fields := strings.Fields(s)
	for len(fields) > 0 && noiseTokens[fields[0]] {
		fields = fields[1:]
	}
	return strings.Join(fields, " ")
}
