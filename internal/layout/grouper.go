package layout

import "sort"

// sameLineRatio is the minimum y-overlap over min-height ratio for two boxes
// to count as the same visual line. Empirically tuned.
const sameLineRatio = 0.5

// Row is the text of one physical invoice row keyed by field, with same-label
// tokens already joined in left-to-right reading order.
type Row struct {
	ItemName  string
	Quantity  string
	UnitPrice string
	Amount    string
}

// GroupRows clusters spatially tagged words into physical invoice rows.
//
// Words outside the four field classes are dropped. The remainder is sorted
// by vertical center and clustered greedily: each word is tested against the
// current row's first member, and a row closes as soon as one word falls
// outside it. A row that carries an item name but no price field is merged
// with the immediately following row when that row carries a price field;
// the lookahead never extends past one row. Rows without an item name are
// discarded.
func GroupRows(words []TaggedWord) []Row {
	entities := make([]TaggedWord, 0, len(words))
	for _, w := range words {
		switch w.Label {
		case LabelItemName, LabelQuantity, LabelUnitPrice, LabelAmount:
			entities = append(entities, w)
		}
	}
	if len(entities) == 0 {
		return nil
	}

	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].centerY() < entities[j].centerY()
	})

	var clusters [][]TaggedWord
	current := []TaggedWord{entities[0]}
	for _, w := range entities[1:] {
		if sameLine(current[0], w) {
			current = append(current, w)
		} else {
			clusters = append(clusters, current)
			current = []TaggedWord{w}
		}
	}
	clusters = append(clusters, current)

	var rows []Row
	for i := 0; i < len(clusters); i++ {
		cluster := clusters[i]

		if hasLabel(cluster, LabelItemName) && !hasPriceField(cluster) &&
			i+1 < len(clusters) && hasPriceField(clusters[i+1]) {
			merged := make([]TaggedWord, 0, len(cluster)+len(clusters[i+1]))
			merged = append(merged, cluster...)
			merged = append(merged, clusters[i+1]...)
			cluster = merged
			i++
		}

		sort.SliceStable(cluster, func(a, b int) bool {
			return cluster[a].Box[0] < cluster[b].Box[0]
		})

		row := buildRow(cluster)
		if row.ItemName != "" {
			rows = append(rows, row)
		}
	}
	return rows
}

// sameLine reports whether two boxes share a visual line, using the ratio of
// their y-range intersection to the smaller box height.
func sameLine(a, b TaggedWord) bool {
	top := a.Box[1]
	if b.Box[1] > top {
		top = b.Box[1]
	}
	bottom := a.Box[3]
	if b.Box[3] < bottom {
		bottom = b.Box[3]
	}
	if bottom <= top {
		return false
	}
	minHeight := a.height()
	if b.height() < minHeight {
		minHeight = b.height()
	}
	if minHeight == 0 {
		return false
	}
	return float64(bottom-top)/float64(minHeight) > sameLineRatio
}

func hasLabel(cluster []TaggedWord, label FieldLabel) bool {
	for _, w := range cluster {
		if w.Label == label {
			return true
		}
	}
	return false
}

func hasPriceField(cluster []TaggedWord) bool {
	return hasLabel(cluster, LabelAmount) || hasLabel(cluster, LabelUnitPrice)
}

func buildRow(cluster []TaggedWord) Row {
	var row Row
	for _, w := range cluster {
		var field *string
		switch w.Label {
		case LabelItemName:
			field = &row.ItemName
		case LabelQuantity:
			field = &row.Quantity
		case LabelUnitPrice:
			field = &row.UnitPrice
		case LabelAmount:
			field = &row.Amount
		default:
			continue
		}
		if *field == "" {
			*field = w.Text
		} else {
			*field += " " + w.Text
		}
	}
	return row
}
