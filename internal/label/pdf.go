package label

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/roach88/precario/internal/catalog"
)

// HTMLToPDF converts a standalone HTML document to PDF bytes.
type HTMLToPDF interface {
	PrintPDF(ctx context.Context, html []byte) ([]byte, error)
}

// ChromePrinter prints through a headless Chrome started per document.
type ChromePrinter struct {
	// Bin is the browser executable. Empty lets the launcher look for a
	// local install or download one.
	Bin     string
	Timeout time.Duration
	Logger  *zap.Logger
}

// PrintPDF loads html into a blank page and prints it with backgrounds on and
// the document's @page size.
func (c *ChromePrinter) PrintPDF(ctx context.Context, html []byte) ([]byte, error) {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	l := launcher.New().Headless(true).Context(ctx)
	if c.Bin != "" {
		l = l.Bin(c.Bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}
	defer l.Cleanup()
	defer l.Kill()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	if err := page.SetDocumentContent(string(html)); err != nil {
		return nil, fmt.Errorf("set document content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait for page load: %w", err)
	}

	start := time.Now()
	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("print to pdf: %w", err)
	}
	pdf, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read pdf stream: %w", err)
	}

	logger.Debug("printed pdf",
		zap.Int("html_bytes", len(html)),
		zap.Int("pdf_bytes", len(pdf)),
		zap.Duration("duration", time.Since(start)),
	)
	return pdf, nil
}

// PDF renders the sheet for products and converts it with printer. Images
// should be inlined (Assets.Inline) since the page has no base URL.
func (r *Renderer) PDF(ctx context.Context, printer HTMLToPDF, products []catalog.Product, opts SheetOptions) ([]byte, error) {
	if printer == nil {
		return nil, fmt.Errorf("render pdf: no printer configured")
	}

	var buf bytes.Buffer
	if err := r.sheet(&buf, products, opts); err != nil {
		return nil, err
	}
	pdf, err := printer.PrintPDF(ctx, buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	r.count(products, FormatPDF)
	return pdf, nil
}
