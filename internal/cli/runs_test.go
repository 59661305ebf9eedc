package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bankcheck/internal/store"
)

// seedRuns records two runs: run-1 conforms, run-2 diverges.
func seedRuns(t *testing.T) string {
	t.Helper()

	db := tempDB(t)
	opts := deterministicOptions()

	_, _, err := executeCommand(t, opts, "check", "--db", db, out0)
	require.NoError(t, err)
	_, _, err = executeCommand(t, opts, "check", "--db", db, out0, out1)
	require.Equal(t, ExitFailure, GetExitCode(err))

	return db
}

func TestRuns_List(t *testing.T) {
	db := seedRuns(t)

	stdout, _, err := executeCommand(t, nil, "runs", "--db", db)
	require.NoError(t, err)

	want := "#1 run-1  1 trace(s)  0 finding(s)  pass\n" +
		"#2 run-2  2 trace(s)  8 finding(s)  fail\n"
	assert.Equal(t, want, stdout)
}

func TestRuns_Empty(t *testing.T) {
	stdout, _, err := executeCommand(t, nil, "runs", "--db", tempDB(t))
	require.NoError(t, err)
	assert.Equal(t, "No runs recorded.\n", stdout)
}

func TestRuns_JSON(t *testing.T) {
	db := seedRuns(t)

	stdout, _, err := executeCommand(t, nil, "--format", "json", "runs", "--db", db)
	require.NoError(t, err)

	var runs []store.Run
	resp := decodeResponse(t, stdout, &runs)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.True(t, runs[0].Pass)
	assert.True(t, runs[1].Finished)
	assert.False(t, runs[1].Pass)
	assert.Equal(t, db, runs[1].Config["database"], "the resolved config is recorded")
}

func TestRuns_Show(t *testing.T) {
	db := seedRuns(t)

	stdout, _, err := executeCommand(t, nil, "runs", "--db", db, "run-2")
	require.NoError(t, err)

	want := "Run #2 run-2: fail\n" +
		"  ✓ trace #0 testdata/traces/out0.itf.json: 8 step(s), 0 divergent\n" +
		"  ✗ trace #1 testdata/traces/out1.itf.json: 6 step(s), 5 divergent\n"
	assert.Equal(t, want, stdout)
}

func TestRuns_ShowUnknown(t *testing.T) {
	db := seedRuns(t)

	_, _, err := executeCommand(t, nil, "runs", "--db", db, "run-9")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, store.ErrRunNotFound)
}

func TestRuns_NoDatabase(t *testing.T) {
	stdout, _, err := executeCommand(t, nil, "--format", "json", "runs")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, stdout, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNoDatabase, resp.Error.Code)
}

func TestRuns_DatabaseFromConfig(t *testing.T) {
	db := seedRuns(t)
	cfg := filepath.Join(t.TempDir(), "bankcheck.cue")
	require.NoError(t, os.WriteFile(cfg, []byte("database: \""+filepath.ToSlash(db)+"\"\n"), 0o644))

	stdout, _, err := executeCommand(t, nil, "runs", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, "#2 run-2")
}

func TestRuns_DatabaseFromEnv(t *testing.T) {
	db := seedRuns(t)
	t.Setenv("BANKCHECK_DB", db)

	stdout, _, err := executeCommand(t, nil, "runs")
	require.NoError(t, err)
	assert.Contains(t, stdout, "#1 run-1")
}
