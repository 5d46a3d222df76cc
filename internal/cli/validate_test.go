package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand_ValidFile(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "validate", fixtureCatalog)
	assert.Contains(t, out, "✓ "+fixtureCatalog+" is valid (2 products, 1 queues)")

	resp, err := jsonRun[ValidationResult](t, env, "validate", fixtureCatalog)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 2, resp.Data.Products)
	assert.Empty(t, resp.Data.Failures)
}

func TestValidateCommand_LegacyCSV(t *testing.T) {
	env := newCLIEnv(t)
	out := env.mustRun(t, "validate", "../importer/testdata/legacy.csv")
	assert.Contains(t, out, "is valid (2 products, 0 queues)")
}

func TestValidateCommand_RecordFailures(t *testing.T) {
	env := newCLIEnv(t)
	path := writeFile(t, env.dir, "precos.csv", "category;description;unit;price;tax\n"+
		"vaca;Picanha;kg;24.95;S\n"+
		"PEIXE;Sardinha;KG;4;\n"+
		"AVE;;UN;2;\n")

	out, err := env.run(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed with 2 error(s)")
	assert.Contains(t, out, "✗ Validation failed for "+path)
	assert.Contains(t, out, "products[1]")
	assert.Contains(t, out, "products[2]")

	resp, err := jsonRun[ValidationResult](t, env, "validate", path)
	require.Error(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Failures, 2)
	assert.Equal(t, 1, resp.Data.Failures[0].Index)
}

func TestValidateCommand_SchemaMismatch(t *testing.T) {
	env := newCLIEnv(t)
	path := writeFile(t, env.dir, "bad.yaml", "queues:\n  - name: Talho\n    soundVolume: 101\n")

	out, err := env.run(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeSchema)
	assert.Contains(t, out, "does not match the catalog schema")
	assert.Contains(t, out, "queues.0.soundVolume")
}

func TestValidateCommand_FileErrors(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "validate", filepath.Join(env.dir, "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)

	_, err = env.run(t, "validate", "catalog.toml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateCommand_DoesNotOpenStore(t *testing.T) {
	env := newCLIEnv(t)
	env.driver = "postgres"

	env.mustRun(t, "validate", fixtureCatalog)
}
