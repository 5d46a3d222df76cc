package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/precario/internal/catalog"
	"github.com/roach88/precario/internal/importer"
)

const fixtureCatalog = "../importer/testdata/catalog.yaml"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImport_YAML(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "import", fixtureCatalog)
	assert.Contains(t, out, "products: 2 created, 0 updated, 0 failed")
	assert.Contains(t, out, "queues:   1 created, 0 updated, 0 failed")
	assert.NotContains(t, out, "Rejected")

	// Records with ids update on the second run; the one without an id is
	// created again.
	resp, err := jsonRun[importer.Result](t, env, "import", fixtureCatalog)
	require.NoError(t, err)
	assert.Equal(t, importer.Counts{Created: 1, Updated: 1}, resp.Data.Products)
	assert.Equal(t, importer.Counts{Updated: 1}, resp.Data.Queues)

	list, err := jsonRun[[]catalog.Product](t, env, "product", "list")
	require.NoError(t, err)
	assert.Len(t, list.Data, 3)
}

func TestImport_CSVWithRejectedRows(t *testing.T) {
	env := newCLIEnv(t)
	path := writeFile(t, env.dir, "precos.csv", "category;description;unit;price;tax\n"+
		"vaca;Picanha;kg;24.95;S\n"+
		"PEIXE;Sardinha;KG;4;\n")

	out, err := env.run(t, "import", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeImport)
	assert.Contains(t, out, "products: 1 created, 0 updated, 1 failed")
	assert.Contains(t, out, "✗ Rejected records")
	assert.Contains(t, out, "products[1]")

	list, err := jsonRun[[]catalog.Product](t, env, "product", "list")
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Picanha", list.Data[0].Description)
}

func TestImport_SchemaMismatch(t *testing.T) {
	env := newCLIEnv(t)
	path := writeFile(t, env.dir, "bad.json",
		`{"products": [{"category": "AVE", "unit": "KG", "price": 3.5, "description": "Frango"}]}`)

	resp, err := jsonRun[any](t, env, "import", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeSchema, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.Details)

	list, err := jsonRun[[]catalog.Product](t, env, "product", "list")
	require.NoError(t, err)
	assert.Empty(t, list.Data, "nothing is written when the document is rejected")
}

func TestImport_MissingAndUnsupported(t *testing.T) {
	env := newCLIEnv(t)

	resp, err := jsonRun[any](t, env, "import", filepath.Join(env.dir, "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)

	_, err = env.run(t, "import", "catalog.xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExport_RoundTrip(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, "import", fixtureCatalog)

	path := filepath.Join(env.dir, "backup.json")
	resp, err := jsonRun[ExportResult](t, env, "export", "--out", path)
	require.NoError(t, err)
	assert.Equal(t, ExportResult{File: path, Format: "json", Products: 2, Queues: 1}, resp.Data)

	out := env.mustRun(t, "validate", path)
	assert.Contains(t, out, "is valid (2 products, 1 queues)")

	other := newCLIEnv(t)
	out = other.mustRun(t, "import", path)
	assert.Contains(t, out, "products: 2 created, 0 updated, 0 failed")
}

func TestExport_Stdout(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, "import", fixtureCatalog)

	out := env.mustRun(t, "export")
	assert.Contains(t, out, "products:")
	assert.Contains(t, out, "id: product_picanha")
	assert.Contains(t, out, "queue_talho")
}

func TestExport_CSVRejected(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "export", "--as", "csv")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "csv is import-only")
}
