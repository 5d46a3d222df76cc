package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/roach88/precario/internal/auth"
	"github.com/roach88/precario/internal/catalog"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

var pageNames = []string{
	"labels", "label_form", "print", "queues", "queue_form", "signin", "error",
}

// pageSet holds one template set per page, each joined with the layout.
type pageSet struct {
	pages map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"displayPrice": catalog.DisplayPrice,
	"colorHex":     catalog.ColorHex,
	"rgb":          rgbHex,
}

func parsePages() (*pageSet, error) {
	ps := &pageSet{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS,
			"templates/layout.gohtml", "templates/"+name+".gohtml")
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		ps.pages[name] = t
	}
	return ps, nil
}

// page is the data every page template receives.
type page struct {
	Title    string
	Nav      string
	User     string
	ShowNav  bool
	LabelCSS template.HTML
	Data     any
}

// render executes a page into a buffer first so a template error still
// produces a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	t, ok := s.pages.pages[name]
	if !ok {
		s.logger.Error("unknown page", zap.String("page", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if sess, ok := auth.SessionFrom(r.Context()); ok {
		p.User = sess.Email
		p.ShowNav = true
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		s.logger.Error("render page",
			zap.String("page", name),
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errorView struct {
	Status  int
	Message string
}

// renderError shows the error page for a failed page request.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status, _ := statusFor(err)
	msg := http.StatusText(status)
	if status == http.StatusInternalServerError {
		s.logger.Error("page request failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err),
		)
	} else {
		msg = err.Error()
	}
	if errors.Is(err, catalog.ErrNotFound) {
		msg = "The record you are looking for does not exist."
	}
	s.render(w, r, status, "error", page{
		Title: http.StatusText(status),
		Data:  errorView{Status: status, Message: msg},
	})
}

func (s *Server) labelCSS() template.HTML {
	css, err := s.renderer.StyleSheet()
	if err != nil {
		s.logger.Warn("label stylesheet", zap.Error(err))
		return ""
	}
	return css
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/labels", http.StatusSeeOther)
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// rgbHex converts an ARGB value to the "#rrggbb" form of <input type=color>.
func rgbHex(argb int64) string {
	return fmt.Sprintf("#%06x", uint32(argb)&0x00FFFFFF)
}
