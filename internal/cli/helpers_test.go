package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/bankcheck/internal/store"
	"github.com/roach88/bankcheck/internal/testutil"
)

// executeCommand runs the root command with args and returns what it wrote
// to stdout and stderr.
func executeCommand(t *testing.T, opts *RootOptions, args ...string) (string, string, error) {
	t.Helper()

	if opts == nil {
		opts = &RootOptions{}
	}
	cmd := newRootCommand(opts)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// deterministicOptions returns root options whose recorded runs get the
// ids run-1, run-2, ...
func deterministicOptions() *RootOptions {
	return &RootOptions{
		StoreOptions: []store.Option{
			store.WithIDGenerator(testutil.NewSequenceIDGenerator("run")),
		},
	}
}

// tempDB returns a database path in a fresh temporary directory.
func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "runs.db")
}

// decodeResponse parses a JSON CLIResponse and decodes its data into v.
func decodeResponse(t *testing.T, out string, v any) CLIResponse {
	t.Helper()

	var raw struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *CLIError       `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw))
	if v != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, v))
	}
	return CLIResponse{Status: raw.Status, Error: raw.Error}
}

var (
	out0 = filepath.Join("testdata", "traces", "out0.itf.json")
	out1 = filepath.Join("testdata", "traces", "out1.itf.json")
)
