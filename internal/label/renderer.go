package label

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/roach88/precario/internal/catalog"
	"github.com/roach88/precario/internal/metrics"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// Output formats counted in metrics.
const (
	FormatHTML = "html"
	FormatPDF  = "pdf"
)

// Renderer renders label fragments and full print sheets.
//
// Thread-safety: safe for concurrent use once built.
type Renderer struct {
	tmpl    *template.Template
	assets  *Assets
	metrics *metrics.Metrics
}

// NewRenderer parses the embedded templates. assets and m may be nil.
func NewRenderer(assets *Assets, m *metrics.Metrics) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("parse label templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, assets: assets, metrics: m}, nil
}

// view is the template data for one label.
type view struct {
	ID            string
	Category      string
	CategoryImage template.URL
	Background    template.URL
	Price         string
	Unit          string
	Description   string
}

func (r *Renderer) view(p catalog.Product) (string, view) {
	v := view{
		ID:          p.ID,
		Category:    string(p.Category),
		Unit:        p.Unit.Suffix(),
		Description: p.Description,
	}
	if p.LabelSize == catalog.LabelSmall {
		v.Price = p.Price
		v.Background = r.assets.URL(SmallBackground)
		return "label-small", v
	}
	v.Price = catalog.DisplayPrice(p.Price)
	v.Background = r.assets.URL(NormalBackground)
	v.CategoryImage = r.assets.URL(p.Category.ImageName())
	return "label-normal", v
}

// Label renders the fragment for p, choosing the layout by p.LabelSize.
func (r *Renderer) Label(p catalog.Product) (template.HTML, error) {
	name, v := r.view(p)

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, v); err != nil {
		return "", fmt.Errorf("render label %s: %w", p.ID, err)
	}
	return template.HTML(buf.String()), nil
}

// StyleSheet returns the <style> block label fragments rely on.
func (r *Renderer) StyleSheet() (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "label-css", nil); err != nil {
		return "", fmt.Errorf("render label css: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// SheetOptions tweaks a print sheet.
type SheetOptions struct {
	Title     string
	PageSize  string // CSS @page size, "A4" when empty
	AutoPrint bool   // open the print dialog on load
}

type sheetView struct {
	Title     string
	PageSize  string
	AutoPrint bool
	Labels    []template.HTML
}

// Sheet writes a standalone HTML document with one label per product in a
// two column grid. Callers decide which products to include (usually
// catalog.Printable).
func (r *Renderer) Sheet(w io.Writer, products []catalog.Product, opts SheetOptions) error {
	if err := r.sheet(w, products, opts); err != nil {
		return err
	}
	r.count(products, FormatHTML)
	return nil
}

func (r *Renderer) sheet(w io.Writer, products []catalog.Product, opts SheetOptions) error {
	sv := sheetView{
		Title:     opts.Title,
		PageSize:  opts.PageSize,
		AutoPrint: opts.AutoPrint,
		Labels:    make([]template.HTML, 0, len(products)),
	}
	if sv.Title == "" {
		sv.Title = "Etiquetas"
	}
	if sv.PageSize == "" {
		sv.PageSize = "A4"
	}

	for _, p := range products {
		html, err := r.Label(p)
		if err != nil {
			return err
		}
		sv.Labels = append(sv.Labels, html)
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "sheet", sv); err != nil {
		return fmt.Errorf("render sheet: %w", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write sheet: %w", err)
	}
	return nil
}

// count records rendered labels per size.
func (r *Renderer) count(products []catalog.Product, format string) {
	normal, small := 0, 0
	for _, p := range products {
		if p.LabelSize == catalog.LabelSmall {
			small++
		} else {
			normal++
		}
	}
	r.metrics.LabelsRendered(string(catalog.LabelNormal), format, normal)
	r.metrics.LabelsRendered(string(catalog.LabelSmall), format, small)
}
