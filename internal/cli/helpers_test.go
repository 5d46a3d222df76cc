package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// cliEnv runs commands against one temp store.
type cliEnv struct {
	dir    string
	db     string
	driver string
	stdin  string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	return &cliEnv{dir: dir, db: filepath.Join(dir, "catalog.db")}
}

// run executes the root command with the env's store flags prepended and
// returns stdout.
func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	full := []string{"--db", e.db}
	if e.driver != "" {
		full = append(full, "--driver", e.driver)
	}
	full = append(full, args...)

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(e.stdin))
	cmd.SetArgs(full)

	err := cmd.Execute()
	return out.String(), err
}

// mustRun fails the test when the command fails.
func (e *cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, out)
	return out
}

// response is CLIResponse with a typed payload.
type response[T any] struct {
	Status string    `json:"status"`
	Data   T         `json:"data"`
	Error  *CLIError `json:"error"`
}

// jsonRun runs args with --format json and decodes the envelope.
func jsonRun[T any](t *testing.T, e *cliEnv, args ...string) (response[T], error) {
	t.Helper()
	out, err := e.run(t, append([]string{"--format", "json"}, args...)...)
	var resp response[T]
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp, err
}
