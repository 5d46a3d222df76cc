package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/roach88/precario/internal/catalog"
)

// Format is the encoding of an import or export file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ErrUnsupportedFormat is returned for file extensions the importer skips.
var ErrUnsupportedFormat = errors.New("unsupported format")

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

// ParseFormat validates a user supplied format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatYAML, FormatJSON, FormatCSV:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// Catalog is the import/export document: products and queues in their stored
// shape.
type Catalog struct {
	Products []catalog.ProductDocument `json:"products" yaml:"products"`
	Queues   []catalog.QueueDocument   `json:"queues" yaml:"queues"`
}

// Len is the number of records in the document.
func (c Catalog) Len() int { return len(c.Products) + len(c.Queues) }

// legacy export columns: category;description;unit;price;tax
const csvColumns = 5

// ParseCSV reads the legacy semicolon separated product list. A first row whose
// first cell is "category" is treated as a header. Rows are not validated
// here; bad values fail per record during Import.
func ParseCSV(r io.Reader) (Catalog, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	doc := Catalog{Products: []catalog.ProductDocument{}, Queues: []catalog.QueueDocument{}}
	line := 0
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Catalog{}, fmt.Errorf("read csv: %w", err)
		}
		line++
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "category") {
			continue
		}
		if isBlankRow(row) {
			continue
		}
		if len(row) < csvColumns-1 {
			return Catalog{}, fmt.Errorf("read csv: line %d: expected %d columns, got %d", line, csvColumns, len(row))
		}

		tax := ""
		if len(row) >= csvColumns {
			tax = row[4]
		}
		doc.Products = append(doc.Products, catalog.ProductDocument{
			Category:    strings.ToUpper(strings.TrimSpace(row[0])),
			Description: row[1],
			Unit:        strings.ToUpper(strings.TrimSpace(row[2])),
			Price:       row[3],
			TaxStatus:   strings.EqualFold(strings.TrimSpace(tax), "S"),
		})
	}
	return doc, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Parse decodes data in the given format. YAML and JSON documents are checked
// against the catalog schema first.
func (im *Importer) Parse(name string, data []byte, format Format) (Catalog, error) {
	if format == FormatCSV {
		return ParseCSV(bytes.NewReader(data))
	}
	return im.schema.Decode(name, data, format)
}
