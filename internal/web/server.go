package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/precario/internal/auth"
	"github.com/roach88/precario/internal/catalog"
	"github.com/roach88/precario/internal/label"
	"github.com/roach88/precario/internal/metrics"
)

// Options wires a Server. Service, Renderer and Auth are required.
type Options struct {
	Service  *catalog.Service
	Renderer *label.Renderer

	// PDFRenderer renders sheets for PDF output, normally with inlined
	// assets. Falls back to Renderer.
	PDFRenderer *label.Renderer

	// Printer enables GET /print/sheet.pdf when set.
	Printer label.HTMLToPDF

	Auth         *auth.Authenticator
	SecureCookie bool

	// DisplayToken guards the display feed when non-empty.
	DisplayToken string

	// AssetsDir is served under /assets/. Empty disables the route.
	AssetsDir string

	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// Server is the HTTP admin surface: HTML pages, the JSON API and the display
// feed for the TV app.
type Server struct {
	svc          *catalog.Service
	renderer     *label.Renderer
	pdfRenderer  *label.Renderer
	printer      label.HTMLToPDF
	auth         *auth.Authenticator
	guard        *auth.Middleware
	displayToken string
	assetsDir    string
	metrics      *metrics.Metrics
	logger       *zap.Logger
	pages        *pageSet
	handler      http.Handler
}

// New builds a Server and its routes.
func New(opts Options) (*Server, error) {
	if opts.Service == nil {
		return nil, errors.New("web: catalog service is required")
	}
	if opts.Renderer == nil {
		return nil, errors.New("web: label renderer is required")
	}
	if opts.Auth == nil {
		return nil, errors.New("web: authenticator is required")
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	s := &Server{
		svc:          opts.Service,
		renderer:     opts.Renderer,
		pdfRenderer:  opts.PDFRenderer,
		printer:      opts.Printer,
		auth:         opts.Auth,
		displayToken: opts.DisplayToken,
		assetsDir:    opts.AssetsDir,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
		pages:        pages,
	}
	if s.pdfRenderer == nil {
		s.pdfRenderer = s.renderer
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.guard = &auth.Middleware{
		Auth:         opts.Auth,
		Unauthorized: writeUnauthorized,
		Secure:       opts.SecureCookie,
	}

	mux := http.NewServeMux()
	s.routes(mux)
	s.handler = s.observe(s.recoverPanics(routed(mux)))
	return s, nil
}

// Handler returns the root handler with logging, recovery and metrics.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes(mux *http.ServeMux) {
	guarded := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.guard.Require(h))
	}

	// Operational, no auth.
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())
	if s.assetsDir != "" {
		mux.Handle("GET /assets/", http.StripPrefix("/assets/", noListing(http.FileServer(http.Dir(s.assetsDir)))))
	}

	// Display feed, guarded by its own token.
	mux.HandleFunc("GET /api/display/queues", s.handleDisplayQueues)

	// Sign-in.
	mux.HandleFunc("GET /signin", s.handleSignInForm)
	mux.HandleFunc("POST /signin", s.handleSignIn)
	mux.HandleFunc("POST /signout", s.handleSignOut)

	// Pages.
	guarded("GET /{$}", s.handleHome)
	guarded("GET /labels", s.handleLabels)
	guarded("GET /labels/new", s.handleLabelNew)
	guarded("GET /labels/{id}/edit", s.handleLabelEdit)
	guarded("POST /labels", s.handleLabelCreate)
	guarded("POST /labels/{id}", s.handleLabelUpdate)
	guarded("POST /labels/{id}/delete", s.handleLabelDelete)
	guarded("POST /labels/{id}/print", s.handleLabelPrint)
	guarded("POST /labels/{id}/duplicate", s.handleLabelDuplicate)
	guarded("GET /print", s.handlePrint)
	guarded("GET /print/sheet", s.handlePrintSheet)
	guarded("GET /print/sheet.pdf", s.handlePrintPDF)
	guarded("GET /queues", s.handleQueues)
	guarded("GET /queues/new", s.handleQueueNew)
	guarded("GET /queues/{id}/edit", s.handleQueueEdit)
	guarded("POST /queues", s.handleQueueCreate)
	guarded("POST /queues/{id}", s.handleQueueUpdate)
	guarded("POST /queues/{id}/delete", s.handleQueueDelete)

	// JSON API.
	guarded("GET /api/products", s.apiListProducts)
	guarded("POST /api/products", s.apiCreateProduct)
	guarded("GET /api/products/printable", s.apiPrintableProducts)
	guarded("GET /api/products/{id}", s.apiGetProduct)
	guarded("PUT /api/products/{id}", s.apiUpdateProduct)
	guarded("DELETE /api/products/{id}", s.apiDeleteProduct)
	guarded("PUT /api/products/{id}/print", s.apiSetPrint)
	guarded("POST /api/products/{id}/duplicate", s.apiDuplicateProduct)
	guarded("GET /api/queues", s.apiListQueues)
	guarded("POST /api/queues", s.apiCreateQueue)
	guarded("GET /api/queues/{id}", s.apiGetQueue)
	guarded("PUT /api/queues/{id}", s.apiUpdateQueue)
	guarded("DELETE /api/queues/{id}", s.apiDeleteQueue)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ServerConfig holds the listener settings for Serve.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Serve listens on cfg.Addr until ctx is cancelled, then shuts down
// gracefully. ready, when non-nil, receives the bound address.
func (s *Server) Serve(ctx context.Context, cfg ServerConfig, ready func(addr string)) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		ErrorLog:          zap.NewStdLog(s.logger.Named("http")),
	}

	s.logger.Info("http server listening", zap.String("addr", ln.Addr().String()))
	if ready != nil {
		ready(ln.Addr().String())
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}
	return nil
}
