package layout

import (
	"strings"
	"testing"
)

func word(text string, label FieldLabel, x1, y1, x2, y2 int) TaggedWord {
	return TaggedWord{Text: text, Label: label, Box: [4]int{x1, y1, x2, y2}}
}

func TestGroupRows_SingleLine(t *testing.T) {
	words := []TaggedWord{
		word("76000", LabelAmount, 800, 100, 900, 120),
		word("Nuoc", LabelItemName, 10, 100, 80, 120),
		word("mam", LabelItemName, 90, 101, 150, 121),
		word("2", LabelQuantity, 500, 100, 520, 120),
		word("38000", LabelUnitPrice, 600, 99, 700, 119),
	}

	rows := GroupRows(words)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.ItemName != "Nuoc mam" {
		t.Errorf("ItemName = %q, want %q", r.ItemName, "Nuoc mam")
	}
	if r.Quantity != "2" || r.UnitPrice != "38000" || r.Amount != "76000" {
		t.Errorf("unexpected fields: %+v", r)
	}
}

func TestGroupRows_DropsNoiseLabels(t *testing.T) {
	words := []TaggedWord{
		word("HOA DON", LabelOther, 10, 10, 200, 30),
		word("Keo deo", LabelItemName, 10, 100, 200, 120),
		word("5000", LabelAmount, 800, 100, 900, 120),
	}

	rows := GroupRows(words)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if strings.Contains(rows[0].ItemName, "HOA DON") {
		t.Errorf("noise label leaked into row: %+v", rows[0])
	}
}

func TestGroupRows_SeparateLines(t *testing.T) {
	words := []TaggedWord{
		word("Banh", LabelItemName, 10, 100, 100, 120),
		word("10000", LabelAmount, 800, 100, 900, 120),
		word("Keo", LabelItemName, 10, 200, 100, 220),
		word("5000", LabelAmount, 800, 200, 900, 220),
	}

	rows := GroupRows(words)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].ItemName != "Banh" || rows[1].ItemName != "Keo" {
		t.Errorf("unexpected rows: %+v", rows)
	}
}

// A wrapped item name sits on its own line directly above the price columns;
// the grouper merges it with the next row but never looks further ahead.
func TestGroupRows_LookaheadIsExactlyOneRow(t *testing.T) {
	words := []TaggedWord{
		// Row 1: name only.
		word("Sua tuoi Vinamilk", LabelItemName, 10, 100, 300, 120),
		// Row 2: prices only.
		word("2", LabelQuantity, 500, 200, 520, 220),
		word("60000", LabelAmount, 800, 200, 900, 220),
		// Row 3: prices only, must stay separate.
		word("30000", LabelUnitPrice, 600, 300, 700, 320),
	}

	rows := GroupRows(words)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row (rows 1+2 merged, row 3 dropped for missing name), got %d: %+v", len(rows), rows)
	}
	r := rows[0]
	if r.ItemName != "Sua tuoi Vinamilk" {
		t.Errorf("ItemName = %q", r.ItemName)
	}
	if r.Amount != "60000" || r.Quantity != "2" {
		t.Errorf("merge did not pick up price row: %+v", r)
	}
	if r.UnitPrice == "30000" {
		t.Errorf("lookahead extended beyond one row: %+v", r)
	}
}

func TestGroupRows_NoMergeWhenRowHasPrice(t *testing.T) {
	words := []TaggedWord{
		word("Banh quy", LabelItemName, 10, 100, 200, 120),
		word("10000", LabelAmount, 800, 100, 900, 120),
		word("Keo", LabelItemName, 10, 200, 100, 220),
		word("5000", LabelAmount, 800, 200, 900, 220),
	}

	rows := GroupRows(words)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
}

func TestGroupRows_LeftToRightConcatenation(t *testing.T) {
	words := []TaggedWord{
		word("500ml", LabelItemName, 300, 100, 380, 120),
		word("Nuoc", LabelItemName, 10, 100, 80, 120),
		word("mam", LabelItemName, 90, 100, 150, 120),
		word("76000", LabelAmount, 800, 100, 900, 120),
	}

	rows := GroupRows(words)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].ItemName != "Nuoc mam 500ml" {
		t.Errorf("ItemName = %q, want left-to-right order", rows[0].ItemName)
	}
}

func TestGroupRows_Empty(t *testing.T) {
	if rows := GroupRows(nil); rows != nil {
		t.Errorf("expected nil rows, got %+v", rows)
	}
	noise := []TaggedWord{word("x", LabelOther, 0, 0, 10, 10)}
	if rows := GroupRows(noise); rows != nil {
		t.Errorf("expected nil rows for noise-only input, got %+v", rows)
	}
}

func TestSameLine(t *testing.T) {
	tests := []struct {
		name string
		a, b TaggedWord
		want bool
	}{
		{
			name: "full overlap",
			a:    word("a", LabelItemName, 0, 100, 10, 120),
			b:    word("b", LabelAmount, 50, 100, 60, 120),
			want: true,
		},
		{
			name: "slight offset still same line",
			a:    word("a", LabelItemName, 0, 100, 10, 120),
			b:    word("b", LabelAmount, 50, 108, 60, 128),
			want: true,
		},
		{
			name: "half overlap is not enough",
			a:    word("a", LabelItemName, 0, 100, 10, 120),
			b:    word("b", LabelAmount, 50, 110, 60, 130),
			want: false,
		},
		{
			name: "disjoint",
			a:    word("a", LabelItemName, 0, 100, 10, 120),
			b:    word("b", LabelAmount, 50, 200, 60, 220),
			want: false,
		},
		{
			name: "zero height",
			a:    word("a", LabelItemName, 0, 100, 10, 100),
			b:    word("b", LabelAmount, 50, 100, 60, 120),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sameLine(tt.a, tt.b); got != tt.want {
				t.Errorf("sameLine() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLabelFromModel(t *testing.T) {
	tests := []struct {
		raw  string
		want FieldLabel
	}{
		{"B-ItemNameValue", LabelItemName},
		{"I-ItemNameValue", LabelItemName},
		{"QuantityValue", LabelQuantity},
		{"B-UnitPriceValue", LabelUnitPrice},
		{"AmountValue", LabelAmount},
		{"ItemName", LabelItemName},
		{"O", LabelOther},
		{"SellerName", LabelOther},
	}

	for _, tt := range tests {
		if got := LabelFromModel(tt.raw); got != tt.want {
			t.Errorf("LabelFromModel(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestFormatLines(t *testing.T) {
	rows := []Row{
		{ItemName: "Nuoc mam Nam Ngu", Quantity: "2", UnitPrice: "38.000", Amount: "76,000"},
		{ItemName: "Keo deo"},
	}

	got := FormatLines(rows)
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 lines, got %d: %q", len(lines), got)
	}
	if lines[0] != HeaderLine {
		t.Errorf("first line = %q, want header", lines[0])
	}
	if lines[1] != "Nuoc mam Nam Ngu | 2 | 76000 | 38000" {
		t.Errorf("line 1 = %q", lines[1])
	}
	if lines[2] != "Keo deo | 1 | 0 | 0" {
		t.Errorf("line 2 = %q", lines[2])
	}
}
