package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortField names a sortable product column.
type SortField string

const (
	SortCategory    SortField = "category"
	SortDescription SortField = "description"
	SortUnit        SortField = "unit"
	SortPrice       SortField = "price"
	SortLabelSize   SortField = "labelSize"
	SortTaxStatus   SortField = "taxStatus"
	SortPrint       SortField = "print"
)

var sortFields = []SortField{
	SortCategory, SortDescription, SortUnit, SortPrice, SortLabelSize, SortTaxStatus, SortPrint,
}

// SortFields returns the sortable columns in table order.
func SortFields() []SortField {
	out := make([]SortField, len(sortFields))
	copy(out, sortFields)
	return out
}

// Valid reports whether f is a sortable column.
func (f SortField) Valid() bool {
	for _, known := range sortFields {
		if f == known {
			return true
		}
	}
	return false
}

// Sort is a single-key ordering of the product list.
type Sort struct {
	Field SortField
	Desc  bool
}

// DefaultSort orders by description ascending.
func DefaultSort() Sort {
	return Sort{Field: SortDescription}
}

// ParseSort builds a Sort from query-string style values. Unknown fields fall
// back to DefaultSort; dir is "desc" for descending, anything else ascending.
func ParseSort(field, dir string) Sort {
	f := SortField(field)
	if !f.Valid() {
		return DefaultSort()
	}
	return Sort{Field: f, Desc: strings.EqualFold(dir, "desc")}
}

// Dir returns "asc" or "desc".
func (s Sort) Dir() string {
	if s.Desc {
		return "desc"
	}
	return "asc"
}

// Toggle returns the sort produced by clicking on field: the same field flips
// direction, a different field starts ascending.
func (s Sort) Toggle(field SortField) Sort {
	if s.Field == field {
		return Sort{Field: field, Desc: !s.Desc}
	}
	return Sort{Field: field}
}

// SortProducts returns a sorted copy of products. Ties break on ID so the
// result is deterministic regardless of input order.
func SortProducts(products []Product, s Sort) []Product {
	if !s.Field.Valid() {
		s = DefaultSort()
	}
	out := make([]Product, len(products))
	copy(out, products)

	// collate.Collator is not safe for concurrent use; one per call.
	coll := collate.New(language.Portuguese)

	sort.SliceStable(out, func(i, j int) bool {
		c := compareField(coll, out[i], out[j], s.Field)
		if c == 0 {
			return out[i].ID < out[j].ID
		}
		if s.Desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func compareField(coll *collate.Collator, a, b Product, f SortField) int {
	switch f {
	case SortCategory:
		return coll.CompareString(string(a.Category), string(b.Category))
	case SortUnit:
		return coll.CompareString(string(a.Unit), string(b.Unit))
	case SortLabelSize:
		return coll.CompareString(string(a.LabelSize), string(b.LabelSize))
	case SortPrice:
		return comparePrice(a.Price, b.Price)
	case SortTaxStatus:
		return compareBool(a.TaxStatus, b.TaxStatus)
	case SortPrint:
		return compareBool(a.Print, b.Print)
	default:
		return coll.CompareString(a.Description, b.Description)
	}
}

// comparePrice orders numerically; unparsable prices sort after valid ones.
func comparePrice(a, b string) int {
	ca, errA := ParsePrice(a)
	cb, errB := ParsePrice(b)
	switch {
	case errA != nil && errB != nil:
		return strings.Compare(a, b)
	case errA != nil:
		return 1
	case errB != nil:
		return -1
	case ca < cb:
		return -1
	case ca > cb:
		return 1
	}
	return 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}
