package catalog

import "strings"

// Category groups products on the shelf and picks the label icon.
type Category string

const (
	CategoryVaca        Category = "VACA"        // beef
	CategoryQueijo      Category = "QUEIJO"      // cheese
	CategoryMercearia   Category = "MERCEARIA"   // grocery
	CategoryPorco       Category = "PORCO"       // pork
	CategoryAve         Category = "AVE"         // poultry
	CategoryBorrego     Category = "BORREGO"     // lamb
	CategoryCabrito     Category = "CABRITO"     // goat
	CategoryCharcutaria Category = "CHARCUTARIA" // deli
	CategoryCoelho      Category = "COELHO"      // rabbit
	CategoryGeral       Category = "GERAL"
)

var categories = []Category{
	CategoryVaca, CategoryQueijo, CategoryMercearia, CategoryPorco, CategoryAve,
	CategoryBorrego, CategoryCabrito, CategoryCharcutaria, CategoryCoelho, CategoryGeral,
}

// Categories returns every known category in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// ImageName is the label icon file for the category, e.g. "vaca.png".
func (c Category) ImageName() string {
	return strings.ToLower(string(c)) + ".png"
}

// Unit is the selling unit printed after the price.
type Unit string

const (
	UnitKG Unit = "KG"
	UnitUN Unit = "UN"
)

// Units returns the known units in display order.
func Units() []Unit { return []Unit{UnitKG, UnitUN} }

func (u Unit) Valid() bool { return u == UnitKG || u == UnitUN }

// Suffix is the lowercase unit used on labels ("kg", "un").
func (u Unit) Suffix() string {
	if u == UnitKG {
		return "kg"
	}
	return "un"
}

// LabelSize selects the physical label layout.
type LabelSize string

const (
	LabelNormal LabelSize = "Normal" // 8 x 5 cm
	LabelSmall  LabelSize = "Small"  // 6.5 x 3.5 cm
)

// LabelSizes returns the known sizes in display order.
func LabelSizes() []LabelSize { return []LabelSize{LabelNormal, LabelSmall} }

func (s LabelSize) Valid() bool { return s == LabelNormal || s == LabelSmall }

// Product is a priced catalog item.
type Product struct {
	ID          string    `json:"id" yaml:"id"`
	Category    Category  `json:"category" yaml:"category"`
	Unit        Unit      `json:"unit" yaml:"unit"`
	Price       string    `json:"price" yaml:"price"`
	Description string    `json:"description" yaml:"description"`
	TaxStatus   bool      `json:"taxStatus" yaml:"taxStatus"`
	Print       bool      `json:"print" yaml:"print"`
	LabelSize   LabelSize `json:"labelSize" yaml:"labelSize"`
}

// ProductInput holds the editable fields of a product.
type ProductInput struct {
	Category    Category  `json:"category"`
	Unit        Unit      `json:"unit"`
	Price       string    `json:"price"`
	Description string    `json:"description"`
	TaxStatus   bool      `json:"taxStatus"`
	Print       bool      `json:"print"`
	LabelSize   LabelSize `json:"labelSize"`
}

// DefaultProductInput is the blank "new product" form.
func DefaultProductInput() ProductInput {
	return ProductInput{
		Category:  CategoryMercearia,
		Unit:      UnitUN,
		Print:     true,
		LabelSize: LabelNormal,
	}
}

// Input returns the editable fields of p.
func (p Product) Input() ProductInput {
	return ProductInput{
		Category:    p.Category,
		Unit:        p.Unit,
		Price:       p.Price,
		Description: p.Description,
		TaxStatus:   p.TaxStatus,
		Print:       p.Print,
		LabelSize:   p.LabelSize,
	}
}

// WithInput returns p with its editable fields replaced by in.
func (p Product) WithInput(in ProductInput) Product {
	p.Category = in.Category
	p.Unit = in.Unit
	p.Price = in.Price
	p.Description = in.Description
	p.TaxStatus = in.TaxStatus
	p.Print = in.Print
	p.LabelSize = in.LabelSize
	return p
}

// Duplicate returns a copy of p suitable for creating a new product: the id is
// cleared, the description marked as a copy and printing switched off.
func Duplicate(p Product) ProductInput {
	in := p.Input()
	in.Description = p.Description + " (Copy)"
	in.Print = false
	return in
}

// ProductDocument is the stored / imported shape of a product. Pointer fields
// distinguish "absent" from the zero value so FromDocument can apply defaults
// to documents written before a field existed.
type ProductDocument struct {
	ID          string  `json:"id,omitempty" yaml:"id,omitempty"`
	Category    string  `json:"category" yaml:"category"`
	Unit        string  `json:"unit" yaml:"unit"`
	Price       string  `json:"price" yaml:"price"`
	Description string  `json:"description" yaml:"description"`
	TaxStatus   bool    `json:"taxStatus" yaml:"taxStatus"`
	Print       *bool   `json:"print,omitempty" yaml:"print,omitempty"`
	LabelSize   *string `json:"labelSize,omitempty" yaml:"labelSize,omitempty"`
}

// Document converts p to its stored shape.
func (p Product) Document() ProductDocument {
	printFlag := p.Print
	size := string(p.LabelSize)
	return ProductDocument{
		ID:          p.ID,
		Category:    string(p.Category),
		Unit:        string(p.Unit),
		Price:       p.Price,
		Description: p.Description,
		TaxStatus:   p.TaxStatus,
		Print:       &printFlag,
		LabelSize:   &size,
	}
}

// FromDocument reads a stored document leniently. Unknown categories fall back
// to MERCEARIA, unknown units to UN, a missing or unknown label size to Normal
// and a missing print flag to true.
func FromDocument(doc ProductDocument) Product {
	p := Product{
		ID:          doc.ID,
		Category:    Category(doc.Category),
		Unit:        Unit(doc.Unit),
		Price:       doc.Price,
		Description: doc.Description,
		TaxStatus:   doc.TaxStatus,
		Print:       true,
		LabelSize:   LabelNormal,
	}
	if !p.Category.Valid() {
		p.Category = CategoryMercearia
	}
	if !p.Unit.Valid() {
		p.Unit = UnitUN
	}
	if doc.Print != nil {
		p.Print = *doc.Print
	}
	if doc.LabelSize != nil && LabelSize(*doc.LabelSize).Valid() {
		p.LabelSize = LabelSize(*doc.LabelSize)
	}
	return p
}

// Printable returns the products flagged for printing, preserving order.
func Printable(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Print {
			out = append(out, p)
		}
	}
	return out
}

// CountPrintable returns how many products are flagged for printing.
func CountPrintable(products []Product) int {
	n := 0
	for _, p := range products {
		if p.Print {
			n++
		}
	}
	return n
}
