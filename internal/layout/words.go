package layout

import "strings"

// FieldLabel classifies a recognized token into one of the invoice columns.
type FieldLabel string

const (
	LabelItemName  FieldLabel = "ItemName"
	LabelQuantity  FieldLabel = "Quantity"
	LabelUnitPrice FieldLabel = "UnitPrice"
	LabelAmount    FieldLabel = "Amount"
	// LabelOther marks tokens outside the four recognized field classes;
	// the grouper drops them as noise.
	LabelOther FieldLabel = "Other"
)

// TaggedWord is a single recognized token with its bounding box in the
// 0..1000 normalized coordinate space and the field label predicted by the
// external classification service. Immutable once produced.
type TaggedWord struct {
	Text  string     `json:"text"`
	Label FieldLabel `json:"label"`
	Box   [4]int     `json:"box"` // x1, y1, x2, y2
}

func (w TaggedWord) centerY() float64 { return float64(w.Box[1]+w.Box[3]) / 2 }

func (w TaggedWord) height() int { return w.Box[3] - w.Box[1] }

// modelLabels maps the classification model's raw class names onto field
// labels.
var modelLabels = map[string]FieldLabel{
	"ItemNameValue":  LabelItemName,
	"QuantityValue":  LabelQuantity,
	"UnitPriceValue": LabelUnitPrice,
	"AmountValue":    LabelAmount,
}

// LabelFromModel converts a raw model class name (possibly carrying a BIO
// prefix, e.g. "B-ItemNameValue") into a FieldLabel. Unrecognized classes
// map to LabelOther.
func LabelFromModel(raw string) FieldLabel {
	s := strings.TrimPrefix(strings.TrimPrefix(raw, "B-"), "I-")
	if label, ok := modelLabels[s]; ok {
		return label
	}
	if label := FieldLabel(s); label == LabelItemName || label == LabelQuantity ||
		label == LabelUnitPrice || label == LabelAmount {
		return label
	}
	return LabelOther
}
