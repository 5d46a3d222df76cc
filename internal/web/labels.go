package web

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/roach88/precario/internal/auth"
	"github.com/roach88/precario/internal/catalog"
)

var sortLabels = map[catalog.SortField]string{
	catalog.SortCategory:    "Category",
	catalog.SortDescription: "Description",
	catalog.SortUnit:        "Unit",
	catalog.SortPrice:       "Price",
	catalog.SortLabelSize:   "Size",
	catalog.SortTaxStatus:   "Tax",
	catalog.SortPrint:       "Print",
}

type sortHeader struct {
	Label string
	URL   string
	Arrow string
}

type productRow struct {
	catalog.Product
	Preview template.HTML
}

type labelsView struct {
	Rows             []productRow
	Headers          []sortHeader
	Sort             catalog.Sort
	Preview          bool
	TogglePreviewURL string
	Printable        int
	Total            int
	ReturnTo         string
}

func labelsURL(sort catalog.Sort, preview bool) string {
	q := url.Values{}
	q.Set("sort", string(sort.Field))
	q.Set("dir", sort.Dir())
	if preview {
		q.Set("preview", "1")
	}
	return "/labels?" + q.Encode()
}

func (s *Server) handleLabels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sort := catalog.ParseSort(q.Get("sort"), q.Get("dir"))
	preview := q.Get("preview") == "1"

	products, err := s.svc.Products(r.Context(), sort)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.observeProducts(products)

	v := labelsView{
		Rows:             make([]productRow, 0, len(products)),
		Sort:             sort,
		Preview:          preview,
		TogglePreviewURL: labelsURL(sort, !preview),
		Printable:        catalog.CountPrintable(products),
		Total:            len(products),
		ReturnTo:         labelsURL(sort, preview),
	}
	for _, f := range catalog.SortFields() {
		h := sortHeader{Label: sortLabels[f], URL: labelsURL(sort.Toggle(f), preview)}
		if f == sort.Field {
			h.Arrow = "▲"
			if sort.Desc {
				h.Arrow = "▼"
			}
		}
		v.Headers = append(v.Headers, h)
	}
	for _, p := range products {
		row := productRow{Product: p}
		if preview {
			if row.Preview, err = s.renderer.Label(p); err != nil {
				s.renderError(w, r, err)
				return
			}
		}
		v.Rows = append(v.Rows, row)
	}

	pg := page{Title: "Labels", Nav: "labels", Data: v}
	if preview {
		pg.LabelCSS = s.labelCSS()
	}
	s.render(w, r, http.StatusOK, "labels", pg)
}

type productFormView struct {
	Action     string
	ID         string
	Input      catalog.ProductInput
	Errors     map[string]string
	Categories []catalog.Category
	Units      []catalog.Unit
	Sizes      []catalog.LabelSize
	Preview    template.HTML
}

func (s *Server) renderProductForm(w http.ResponseWriter, r *http.Request, status int, id string, in catalog.ProductInput, errs map[string]string) {
	v := productFormView{
		Action:     "/labels",
		ID:         id,
		Input:      in,
		Errors:     errs,
		Categories: catalog.Categories(),
		Units:      catalog.Units(),
		Sizes:      catalog.LabelSizes(),
	}
	title := "New label"
	if id != "" {
		v.Action = "/labels/" + url.PathEscape(id)
		title = "Edit label"
		preview, err := s.renderer.Label(catalog.Product{ID: id}.WithInput(catalog.NormalizeProductInput(in)))
		if err == nil {
			v.Preview = preview
		}
	}
	s.render(w, r, status, "label_form", page{Title: title, Nav: "labels", LabelCSS: s.labelCSS(), Data: v})
}

func (s *Server) handleLabelNew(w http.ResponseWriter, r *http.Request) {
	s.renderProductForm(w, r, http.StatusOK, "", catalog.DefaultProductInput(), nil)
}

func (s *Server) handleLabelEdit(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Product(r.Context(), r.PathValue("id"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.renderProductForm(w, r, http.StatusOK, p.ID, p.Input(), nil)
}

func (s *Server) handleLabelCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, err)
		return
	}
	in := productFromForm(r.PostForm)
	if _, err := s.svc.CreateProduct(r.Context(), in); err != nil {
		s.productFormFailed(w, r, "", in, err)
		return
	}
	redirect(w, r, "/labels")
}

func (s *Server) handleLabelUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, err)
		return
	}
	id := r.PathValue("id")
	in := productFromForm(r.PostForm)
	if _, err := s.svc.UpdateProduct(r.Context(), id, in); err != nil {
		s.productFormFailed(w, r, id, in, err)
		return
	}
	redirect(w, r, "/labels")
}

// productFormFailed re-renders the form with field messages on validation
// errors and shows the error page otherwise.
func (s *Server) productFormFailed(w http.ResponseWriter, r *http.Request, id string, in catalog.ProductInput, err error) {
	if fields := validationFields(err); fields != nil {
		s.renderProductForm(w, r, http.StatusUnprocessableEntity, id, in, fields)
		return
	}
	s.renderError(w, r, err)
}

func (s *Server) handleLabelDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		s.renderError(w, r, err)
		return
	}
	redirect(w, r, returnTo(r, "/labels"))
}

// handleLabelPrint sets the print flag from the "print" form value
// ("true"/"on" or "false"/"off").
func (s *Server) handleLabelPrint(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, err)
		return
	}
	if err := s.svc.SetPrint(r.Context(), r.PathValue("id"), formBool(r.PostForm.Get("print"))); err != nil {
		s.renderError(w, r, err)
		return
	}
	redirect(w, r, returnTo(r, "/labels"))
}

func (s *Server) handleLabelDuplicate(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.DuplicateProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.logger.Debug("duplicated product", zap.String("id", p.ID))
	redirect(w, r, "/labels/"+url.PathEscape(p.ID)+"/edit")
}

// returnTo reads a local "return" form value, used to keep the list sort
// after row actions.
func returnTo(r *http.Request, fallback string) string {
	next := r.FormValue("return")
	if !auth.IsLocalPath(next) {
		return fallback
	}
	return next
}

func formBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func productFromForm(f url.Values) catalog.ProductInput {
	return catalog.ProductInput{
		Category:    catalog.Category(f.Get("category")),
		Unit:        catalog.Unit(f.Get("unit")),
		Price:       f.Get("price"),
		Description: f.Get("description"),
		TaxStatus:   formBool(f.Get("taxStatus")),
		Print:       formBool(f.Get("print")),
		LabelSize:   catalog.LabelSize(f.Get("labelSize")),
	}
}

// queueFromForm parses the queue form. Numeric fields that do not parse are
// reported as field errors alongside the service validation.
func queueFromForm(f url.Values) (catalog.QueueInput, map[string]string) {
	errs := map[string]string{}
	num := func(field, msg string) int {
		raw := strings.TrimSpace(f.Get(field))
		if raw == "" {
			return 0
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs[field] = msg
		}
		return n
	}

	in := catalog.QueueInput{
		Name:        f.Get("name"),
		Number:      num("number", "Number must be a whole number"),
		Icon:        num("icon", "Icon must be a whole number"),
		VideoURL:    f.Get("videoURL"),
		VideoVolume: num("videoVolume", "Video volume must be between 0 and 100"),
		SoundVolume: num("soundVolume", "Sound volume must be between 0 and 100"),
		Velocity:    num("velocity", "Velocity must be positive"),
		HasNews:     formBool(f.Get("hasNews")),
	}

	color, err := catalog.ParseColor(f.Get("backgroundColor"))
	if err != nil {
		errs["backgroundColor"] = "Background color must be #rrggbb"
	}
	in.BackgroundColor = color

	if len(errs) == 0 {
		return in, nil
	}
	return in, errs
}

func validationFields(err error) map[string]string {
	var ve *catalog.ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}
