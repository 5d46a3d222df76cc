package web

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/roach88/precario/internal/catalog"
	"github.com/roach88/precario/internal/label"
)

// Paper sizes offered on the print page.
var paperSizes = []string{"A4", "Letter"}

func paperSize(raw string) string {
	for _, p := range paperSizes {
		if strings.EqualFold(raw, p) {
			return p
		}
	}
	return paperSizes[0]
}

type printView struct {
	Labels     []template.HTML
	Count      int
	Normal     int
	Small      int
	Papers     []string
	PDFEnabled bool
}

func (s *Server) handlePrint(w http.ResponseWriter, r *http.Request) {
	products, err := s.svc.Printable(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	v := printView{
		Labels:     make([]template.HTML, 0, len(products)),
		Count:      len(products),
		Papers:     paperSizes,
		PDFEnabled: s.printer != nil,
	}
	for _, p := range products {
		html, err := s.renderer.Label(p)
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		v.Labels = append(v.Labels, html)
		if p.LabelSize == catalog.LabelSmall {
			v.Small++
		} else {
			v.Normal++
		}
	}
	s.render(w, r, http.StatusOK, "print", page{Title: "Print", Nav: "print", LabelCSS: s.labelCSS(), Data: v})
}

func sheetOptions(r *http.Request) label.SheetOptions {
	q := r.URL.Query()
	return label.SheetOptions{
		Title:     "Etiquetas",
		PageSize:  paperSize(q.Get("paper")),
		AutoPrint: q.Get("autoprint") == "1",
	}
}

// handlePrintSheet serves the standalone sheet the browser prints.
func (s *Server) handlePrintSheet(w http.ResponseWriter, r *http.Request) {
	products, err := s.svc.Printable(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := s.renderer.Sheet(&buf, products, sheetOptions(r)); err != nil {
		s.renderError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handlePrintPDF(w http.ResponseWriter, r *http.Request) {
	if s.printer == nil {
		s.render(w, r, http.StatusNotFound, "error", page{
			Title: "Not Found",
			Data:  errorView{Status: http.StatusNotFound, Message: "PDF output is not enabled on this server."},
		})
		return
	}

	products, err := s.svc.Printable(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	pdf, err := s.pdfRenderer.PDF(r.Context(), s.printer, products, sheetOptions(r))
	if err != nil {
		s.logger.Error("render pdf",
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err),
		)
		http.Error(w, "PDF rendering failed", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="etiquetas.pdf"`)
	_, _ = w.Write(pdf)
}
