package importer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/roach88/precario/internal/catalog"
	"github.com/roach88/precario/internal/metrics"
	"github.com/roach88/precario/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestImporter(t *testing.T, ids ...string) (*Importer, *catalog.Service) {
	t.Helper()
	svc := testutil.NewService(t, ids...)
	im, err := New(svc, zaptest.NewLogger(t), metrics.New())
	require.NoError(t, err)
	return im, svc
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"catalog.yaml": FormatYAML,
		"catalog.YML":  FormatYAML,
		"dump.json":    FormatJSON,
		"legacy.csv":   FormatCSV,
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFromPath("notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseCSV(t *testing.T) {
	doc, err := ParseCSV(bytes.NewReader(readFixture(t, "legacy.csv")))
	require.NoError(t, err)
	require.Len(t, doc.Products, 2)
	assert.Empty(t, doc.Queues)

	first := doc.Products[0]
	assert.Equal(t, "VACA", first.Category)
	assert.Equal(t, "KG", first.Unit)
	assert.Equal(t, "PICANHA ANGUS#IRLANDA", first.Description)
	assert.Equal(t, "24.95", first.Price)
	assert.True(t, first.TaxStatus)
	assert.False(t, doc.Products[1].TaxStatus)
}

func TestParseCSV_NoHeaderNoTaxColumn(t *testing.T) {
	doc, err := ParseCSV(strings.NewReader("AVE;FRANGO DO CAMPO;KG;4,99\n\n"))
	require.NoError(t, err)
	require.Len(t, doc.Products, 1)
	assert.Equal(t, "AVE", doc.Products[0].Category)
	assert.False(t, doc.Products[0].TaxStatus)
}

func TestParseCSV_TooFewColumns(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("AVE;FRANGO\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestSchema_DecodeYAML(t *testing.T) {
	s, err := NewSchema()
	require.NoError(t, err)

	doc, err := s.Decode("catalog.yaml", readFixture(t, "catalog.yaml"), FormatYAML)
	require.NoError(t, err)
	require.Len(t, doc.Products, 2)
	require.Len(t, doc.Queues, 1)

	assert.Equal(t, "product_picanha", doc.Products[0].ID)
	assert.Nil(t, doc.Products[0].Print)
	require.NotNil(t, doc.Products[1].Print)
	assert.False(t, *doc.Products[1].Print)
	require.NotNil(t, doc.Products[1].LabelSize)
	assert.Equal(t, "Small", *doc.Products[1].LabelSize)

	q := doc.Queues[0]
	assert.Equal(t, "Talho", q.Name)
	require.NotNil(t, q.Number)
	assert.Equal(t, 7, *q.Number)
	assert.Nil(t, q.BackgroundColor)
}

func TestSchema_DecodeJSON(t *testing.T) {
	s, err := NewSchema()
	require.NoError(t, err)

	raw := `{"queues": [{"name": "Peixaria", "backgroundColor": 4294922834}]}`
	doc, err := s.Decode("q.json", []byte(raw), FormatJSON)
	require.NoError(t, err)
	require.Len(t, doc.Queues, 1)
	require.NotNil(t, doc.Queues[0].BackgroundColor)
	assert.Equal(t, catalog.DefaultQueueColor, *doc.Queues[0].BackgroundColor)
}

func TestSchema_RejectsInvalidDocuments(t *testing.T) {
	s, err := NewSchema()
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
		path string
	}{
		{
			name: "unknown category",
			raw:  `{"products": [{"category": "PEIXE", "unit": "KG", "price": "1", "description": "x"}]}`,
			path: "products.0",
		},
		{
			name: "bad price",
			raw:  `{"products": [{"category": "AVE", "unit": "KG", "price": "abc", "description": "x"}]}`,
			path: "products.0.price",
		},
		{
			name: "numeric price",
			raw:  `{"products": [{"category": "AVE", "unit": "KG", "price": 3.5, "description": "x"}]}`,
			path: "products.0.price",
		},
		{
			name: "volume out of range",
			raw:  `{"queues": [{"name": "Talho", "soundVolume": 101}]}`,
			path: "queues.0.soundVolume",
		},
		{
			name: "unknown field",
			raw:  `{"queues": [{"name": "Talho", "colour": 1}]}`,
			path: "queues.0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Decode("doc.json", []byte(tt.raw), FormatJSON)
			var se *SchemaError
			require.True(t, errors.As(err, &se), "want SchemaError, got %v", err)
			require.NotEmpty(t, se.Issues)

			found := false
			for _, is := range se.Issues {
				if strings.HasPrefix(is.Path, tt.path) {
					found = true
				}
			}
			assert.True(t, found, "no issue under %s in %v", tt.path, se.Issues)
			for _, is := range se.Issues {
				assert.False(t, strings.HasPrefix(is.Path, "#"), "definition selector leaked into %q", is.Path)
			}
			assert.Contains(t, se.Error(), "doc.json")
		})
	}
}

func TestIssuePath(t *testing.T) {
	assert.Equal(t, "products.0.price", issuePath([]string{"#Catalog", "products", "0", "price"}))
	assert.Equal(t, "queues.1", issuePath([]string{"queues", "1"}))
	assert.Equal(t, "", issuePath(nil))
}

func TestSchema_SyntaxError(t *testing.T) {
	s, err := NewSchema()
	require.NoError(t, err)

	_, err = s.Decode("broken.yaml", []byte("products: [\n"), FormatYAML)
	require.Error(t, err)
	var se *SchemaError
	assert.False(t, errors.As(err, &se))
}

func TestImport_CreatesAndUpdates(t *testing.T) {
	im, svc := newTestImporter(t, "product_new")
	ctx := context.Background()

	doc, err := im.Parse("catalog.yaml", readFixture(t, "catalog.yaml"), FormatYAML)
	require.NoError(t, err)

	res, err := im.Import(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, Counts{Created: 2}, res.Products)
	assert.Equal(t, Counts{Created: 1}, res.Queues)
	assert.False(t, res.Failed())

	picanha, err := svc.Product(ctx, "product_picanha")
	require.NoError(t, err)
	assert.True(t, picanha.Print)
	assert.Equal(t, catalog.LabelNormal, picanha.LabelSize)

	queijo, err := svc.Product(ctx, "product_new")
	require.NoError(t, err)
	assert.Equal(t, "12,5", queijo.Price)
	assert.Equal(t, catalog.LabelSmall, queijo.LabelSize)
	assert.False(t, queijo.Print)

	talho, err := svc.Queue(ctx, "queue_talho")
	require.NoError(t, err)
	assert.Equal(t, 30, talho.VideoVolume)
	assert.Equal(t, catalog.DefaultQueueColor, talho.BackgroundColor)
	assert.Equal(t, catalog.DefaultQueueSoundVolume, talho.SoundVolume)

	// Importing the same ids again updates in place.
	doc.Products = doc.Products[:1]
	doc.Products[0].Price = "26"
	res, err = im.Import(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, Counts{Updated: 1}, res.Products)
	assert.Equal(t, Counts{Updated: 1}, res.Queues)

	picanha, err = svc.Product(ctx, "product_picanha")
	require.NoError(t, err)
	assert.Equal(t, "26", picanha.Price)
}

func TestImport_PerRecordFailures(t *testing.T) {
	im, svc := newTestImporter(t, "product_1", "product_2", "product_3")
	ctx := context.Background()

	doc, err := ParseCSV(strings.NewReader(strings.Join([]string{
		"VACA;ENTRECOSTO;KG;9,90;",
		"PEIXE;BACALHAU;KG;12;",
		"AVE;FRANGO;KG;abc;",
	}, "\n")))
	require.NoError(t, err)

	res, err := im.Import(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, Counts{Created: 1, Failed: 2}, res.Products)
	require.Len(t, res.Failures, 2)
	assert.Equal(t, 1, res.Failures[0].Index)
	assert.Contains(t, res.Failures[0].Message, "category")
	assert.Equal(t, 2, res.Failures[1].Index)
	assert.Contains(t, res.Failures[1].Message, "price")

	products, err := svc.Products(ctx, catalog.DefaultSort())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "ENTRECOSTO", products[0].Description)
}

func TestCheck(t *testing.T) {
	doc, err := ParseCSV(strings.NewReader(strings.Join([]string{
		"VACA;ENTRECOSTO;KG;9,90;",
		"PEIXE;BACALHAU;KG;12;",
	}, "\n")))
	require.NoError(t, err)
	doc.Queues = []catalog.QueueDocument{{ID: "queue_1"}}

	failures := Check(doc)
	require.Len(t, failures, 2)
	assert.Equal(t, "products", failures[0].Collection)
	assert.Equal(t, 1, failures[0].Index)
	assert.Equal(t, "queues", failures[1].Collection)
	assert.Equal(t, "queue_1", failures[1].ID)
	assert.Contains(t, failures[1].Message, "name")

	assert.Empty(t, Check(Catalog{}))
}

func TestImport_ContextCancelled(t *testing.T) {
	im, _ := newTestImporter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc := Catalog{Products: []catalog.ProductDocument{{Category: "AVE", Unit: "KG", Price: "1", Description: "x"}}}
	_, err := im.Import(ctx, doc)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImportFile_RecordsMetrics(t *testing.T) {
	svc := testutil.NewService(t, "product_1", "product_2")
	m := metrics.New()
	im, err := New(svc, zaptest.NewLogger(t), m)
	require.NoError(t, err)

	res, err := im.ImportFile(context.Background(), filepath.Join("testdata", "legacy.csv"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Products.Created)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	var created float64
	for _, mf := range families {
		if mf.GetName() != "precario_import_records_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["collection"] == "products" && labels["result"] == "created" {
				created = metric.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, float64(2), created)
}

func TestExport_JSONGolden(t *testing.T) {
	im, svc := newTestImporter(t, "product_1", "product_2", "queue_1")
	ctx := context.Background()

	doc, err := ParseCSV(bytes.NewReader(readFixture(t, "legacy.csv")))
	require.NoError(t, err)
	_, err = im.Import(ctx, doc)
	require.NoError(t, err)
	_, err = svc.CreateQueue(ctx, testutil.QueueInput("Peixaria"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, im.Export(ctx, &buf, FormatJSON))

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "export_json", buf.Bytes())
}

func TestExport_YAMLRoundTrip(t *testing.T) {
	src, _ := newTestImporter(t, "product_1", "product_2")
	ctx := context.Background()

	doc, err := ParseCSV(bytes.NewReader(readFixture(t, "legacy.csv")))
	require.NoError(t, err)
	_, err = src.Import(ctx, doc)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, src.Export(ctx, &buf, FormatYAML))

	dst, _ := newTestImporter(t)
	parsed, err := dst.Parse("export.yaml", buf.Bytes(), FormatYAML)
	require.NoError(t, err)
	res, err := dst.Import(ctx, parsed)
	require.NoError(t, err)
	assert.Equal(t, Counts{Created: 2}, res.Products)

	want, err := src.Snapshot(ctx)
	require.NoError(t, err)
	got, err := dst.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestExport_CSVUnsupported(t *testing.T) {
	im, _ := newTestImporter(t)
	err := im.Export(context.Background(), &bytes.Buffer{}, FormatCSV)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
