package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/roach88/precario/internal/config"
	"github.com/roach88/precario/internal/label"
)

type fakePrinter struct {
	html []byte
}

func (p *fakePrinter) PrintPDF(_ context.Context, html []byte) ([]byte, error) {
	p.html = html
	return []byte("%PDF-1.4 fake"), nil
}

func usePrinter(t *testing.T, p label.HTMLToPDF) {
	t.Helper()
	orig := newPrinter
	newPrinter = func(*config.Config, *zap.Logger) label.HTMLToPDF { return p }
	t.Cleanup(func() { newPrinter = orig })
}

func TestLabelsRender_HTMLToStdout(t *testing.T) {
	env := newCLIEnv(t)
	addProduct(t, env, "--description", "PICANHA ANGUS", "--price", "24.95", "--category", "VACA", "--unit", "KG")
	addProduct(t, env, "--description", "Fora da folha", "--price", "1", "--print=false")
	addProduct(t, env, "--description", "Queijo", "--price", "12,5", "--label-size", "Small")

	out := env.mustRun(t, "labels", "render", "--paper", "letter")
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "size: Letter")
	assert.Contains(t, out, "PICANHA ANGUS")
	assert.Contains(t, out, "24,95")
	assert.Contains(t, out, `data-size="Small"`)
	assert.NotContains(t, out, "Fora da folha")
}

func TestLabelsRender_EmptySheet(t *testing.T) {
	env := newCLIEnv(t)
	out := env.mustRun(t, "labels", "render")
	assert.Contains(t, out, "No products are currently marked for printing.")
}

func TestLabelsRender_ToFile(t *testing.T) {
	env := newCLIEnv(t)
	addProduct(t, env, "--description", "Alheira", "--price", "3,5")
	path := filepath.Join(env.dir, "etiquetas.html")

	resp, err := jsonRun[LabelsRenderResult](t, env, "labels", "render", "--out", path)
	require.NoError(t, err)
	assert.Equal(t, path, resp.Data.File)
	assert.Equal(t, label.FormatHTML, resp.Data.Format)
	assert.Equal(t, 1, resp.Data.Labels)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, resp.Data.Bytes, len(data))
	assert.Contains(t, string(data), "Alheira")
}

func TestLabelsRender_PDF(t *testing.T) {
	env := newCLIEnv(t)
	addProduct(t, env, "--description", "Alheira", "--price", "3,5")
	printer := &fakePrinter{}
	usePrinter(t, printer)
	path := filepath.Join(env.dir, "etiquetas.pdf")

	out := env.mustRun(t, "labels", "render", "--pdf", "-o", path)
	assert.Contains(t, out, "Wrote 1 label(s) to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))
	assert.Contains(t, string(printer.html), "Alheira")
}

func TestLabelsRender_BadPaper(t *testing.T) {
	env := newCLIEnv(t)
	resp, err := jsonRun[any](t, env, "labels", "render", "--paper", "A3")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUsage, resp.Error.Code)
}

func TestLabelsRender_WriteFailure(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run(t, "labels", "render", "--out", filepath.Join(env.dir, "missing", "x.html"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeWriteFailed)
}
