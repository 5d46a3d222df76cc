package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/roach88/precario/internal/catalog"
	"github.com/roach88/precario/internal/metrics"
)

// Counts tallies the outcome of one collection in an import.
type Counts struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// Failure describes one record that could not be imported. Index is the
// zero-based position of the record within its collection.
type Failure struct {
	Collection string `json:"collection"`
	Index      int    `json:"index"`
	ID         string `json:"id,omitempty"`
	Message    string `json:"message"`
}

// Result summarizes an import.
type Result struct {
	Products Counts    `json:"products"`
	Queues   Counts    `json:"queues"`
	Failures []Failure `json:"failures"`
}

// Failed reports whether any record was rejected.
func (r Result) Failed() bool { return len(r.Failures) > 0 }

// Importer loads catalog documents into the catalog service and writes them
// back out.
type Importer struct {
	svc     *catalog.Service
	schema  *Schema
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New builds an Importer. m may be nil.
func New(svc *catalog.Service, logger *zap.Logger, m *metrics.Metrics) (*Importer, error) {
	schema, err := NewSchema()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{svc: svc, schema: schema, logger: logger, metrics: m}, nil
}

// ImportFile parses path by extension and imports it.
func (im *Importer) ImportFile(ctx context.Context, path string) (Result, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Result{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read import file: %w", err)
	}
	doc, err := im.Parse(filepath.Base(path), data, format)
	if err != nil {
		return Result{}, err
	}
	return im.Import(ctx, doc)
}

// Import upserts every record of doc. Records with an id update the existing
// record or create it under that id; records without one get a generated id.
// A record that fails validation is counted and skipped. Only repository
// errors other than validation abort the import.
func (im *Importer) Import(ctx context.Context, doc Catalog) (Result, error) {
	res := Result{Failures: []Failure{}}

	for i, pd := range doc.Products {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		_, created, err := im.svc.UpsertProduct(ctx, pd.ID, productInput(pd))
		switch {
		case err == nil && created:
			res.Products.Created++
		case err == nil:
			res.Products.Updated++
		case recordError(err):
			res.Products.Failed++
			res.Failures = append(res.Failures, Failure{Collection: "products", Index: i, ID: pd.ID, Message: err.Error()})
		default:
			return res, fmt.Errorf("import product %d: %w", i, err)
		}
	}

	for i, qd := range doc.Queues {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		_, created, err := im.svc.UpsertQueue(ctx, qd.ID, catalog.FromQueueDocument(qd).Input())
		switch {
		case err == nil && created:
			res.Queues.Created++
		case err == nil:
			res.Queues.Updated++
		case recordError(err):
			res.Queues.Failed++
			res.Failures = append(res.Failures, Failure{Collection: "queues", Index: i, ID: qd.ID, Message: err.Error()})
		default:
			return res, fmt.Errorf("import queue %d: %w", i, err)
		}
	}

	im.metrics.ImportRecords("products", res.Products.Created, res.Products.Updated, res.Products.Failed)
	im.metrics.ImportRecords("queues", res.Queues.Created, res.Queues.Updated, res.Queues.Failed)
	im.logger.Info("catalog import",
		zap.Int("products_created", res.Products.Created),
		zap.Int("products_updated", res.Products.Updated),
		zap.Int("queues_created", res.Queues.Created),
		zap.Int("queues_updated", res.Queues.Updated),
		zap.Int("failed", len(res.Failures)),
	)
	return res, nil
}

// Check validates every record of doc the way Import would, without touching
// the store. Duplicate ids are not detected.
func Check(doc Catalog) []Failure {
	failures := []Failure{}
	for i, pd := range doc.Products {
		if err := catalog.ValidateProduct(catalog.NormalizeProductInput(productInput(pd))); err != nil {
			failures = append(failures, Failure{Collection: "products", Index: i, ID: pd.ID, Message: err.Error()})
		}
	}
	for i, qd := range doc.Queues {
		in := catalog.NormalizeQueueInput(catalog.FromQueueDocument(qd).Input())
		if err := catalog.ValidateQueue(in); err != nil {
			failures = append(failures, Failure{Collection: "queues", Index: i, ID: qd.ID, Message: err.Error()})
		}
	}
	return failures
}

func recordError(err error) bool {
	return catalog.IsValidationError(err) || errors.Is(err, catalog.ErrAlreadyExists)
}

// productInput converts an imported document strictly: unlike
// catalog.FromDocument, unknown categories, units and sizes are kept so that
// validation rejects them instead of silently defaulting.
func productInput(doc catalog.ProductDocument) catalog.ProductInput {
	in := catalog.ProductInput{
		Category:    catalog.Category(doc.Category),
		Unit:        catalog.Unit(doc.Unit),
		Price:       doc.Price,
		Description: doc.Description,
		TaxStatus:   doc.TaxStatus,
		Print:       true,
		LabelSize:   catalog.LabelNormal,
	}
	if doc.Print != nil {
		in.Print = *doc.Print
	}
	if doc.LabelSize != nil {
		in.LabelSize = catalog.LabelSize(*doc.LabelSize)
	}
	return in
}

// Snapshot returns the whole catalog as a document, products in description
// order and queues in name order.
func (im *Importer) Snapshot(ctx context.Context) (Catalog, error) {
	products, err := im.svc.Products(ctx, catalog.DefaultSort())
	if err != nil {
		return Catalog{}, err
	}
	queues, err := im.svc.Queues(ctx)
	if err != nil {
		return Catalog{}, err
	}

	doc := Catalog{
		Products: make([]catalog.ProductDocument, 0, len(products)),
		Queues:   make([]catalog.QueueDocument, 0, len(queues)),
	}
	for _, p := range products {
		doc.Products = append(doc.Products, p.Document())
	}
	for _, q := range queues {
		doc.Queues = append(doc.Queues, q.Document())
	}
	return doc, nil
}

// Export writes the whole catalog to w as YAML or JSON.
func (im *Importer) Export(ctx context.Context, w io.Writer, format Format) error {
	doc, err := im.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("export catalog: %w", err)
	}
	return Encode(w, doc, format)
}

// Encode writes doc in format. CSV is import-only.
func Encode(w io.Writer, doc Catalog, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w for export: %q", ErrUnsupportedFormat, format)
}
