package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/bankcheck/internal/harness"
)

// Run is one recorded checker run.
type Run struct {
	ID       string         `json:"id"`
	Seq      int64          `json:"seq"`
	Config   map[string]any `json:"config"`
	Traces   int            `json:"traces"`
	Findings int            `json:"findings"`
	Pass     bool           `json:"pass"`

	// Finished is false for a run that was begun but never finished,
	// e.g. because a trace failed to load.
	Finished bool `json:"finished"`
}

// FindingFilter narrows ReadFindings. Zero values match everything.
type FindingFilter struct {
	// Trace restricts results to one trace index when non-nil.
	Trace *int

	// Kind restricts results to one finding kind when non-empty.
	Kind harness.FindingKind
}

const runColumns = `id, seq, config, traces, findings, pass, finished`

// GetRun retrieves a run by id.
// Returns ErrRunNotFound if it does not exist.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrRunNotFound)
	}
	return run, err
}

// LatestRun retrieves the run with the highest seq.
// Returns ErrRunNotFound if the store holds no runs.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY seq DESC
		LIMIT 1
	`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	return run, err
}

// ListRuns returns every run ordered by seq ascending.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadTraceResults returns the per-trace results of a run ordered by trace
// index. Findings are not loaded; use ReadFindings.
func (s *Store) ReadTraceResults(ctx context.Context, runID string) ([]harness.TraceResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT trace_index, path, digest, steps, divergent_steps, pass
		FROM trace_results
		WHERE run_id = ?
		ORDER BY trace_index ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query trace results: %w", err)
	}
	defer rows.Close()

	results := []harness.TraceResult{}
	for rows.Next() {
		var tr harness.TraceResult
		if err := rows.Scan(&tr.Index, &tr.Path, &tr.Digest, &tr.Steps, &tr.DivergentSteps, &tr.Pass); err != nil {
			return nil, fmt.Errorf("scan trace result: %w", err)
		}
		results = append(results, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trace results: %w", err)
	}
	return results, nil
}

// ReadFindings returns the findings of a run in report order: by trace,
// then step, then the order they were recorded.
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ReadFindings(ctx context.Context, runID string, filter FindingFilter) ([]harness.Finding, error) {
	where := []string{"run_id = ?"}
	args := []any{runID}
	if filter.Trace != nil {
		where = append(where, "trace_index = ?")
		args = append(args, *filter.Trace)
	}
	if filter.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(filter.Kind))
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT trace_index, step, action, kind, key_name, expected, observed
		FROM findings
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY trace_index ASC, step ASC, seq ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query findings: %w", err)
	}
	defer rows.Close()

	findings := []harness.Finding{}
	for rows.Next() {
		var f harness.Finding
		var kind string
		if err := rows.Scan(&f.Trace, &f.Step, &f.Action, &kind, &f.Key, &f.Expected, &f.Observed); err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		f.Kind = harness.FindingKind(kind)
		findings = append(findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate findings: %w", err)
	}
	return findings, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var cfgJSON string
	if err := row.Scan(&run.ID, &run.Seq, &cfgJSON, &run.Traces, &run.Findings, &run.Pass, &run.Finished); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	cfg, err := unmarshalConfig(cfgJSON)
	if err != nil {
		return Run{}, err
	}
	run.Config = cfg
	return run, nil
}
