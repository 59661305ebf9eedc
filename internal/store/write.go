package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/bankcheck/internal/harness"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// BeginRun records the start of a run and returns its id.
//
// The run is assigned the next seq; cfg is stored as canonical JSON so two
// runs with the same configuration store identical text.
func (s *Store) BeginRun(ctx context.Context, cfg map[string]any) (string, error) {
	cfgJSON, err := marshalConfig(cfg)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}

	id := s.ids.Generate()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, seq, config)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs), ?)
	`, id, cfgJSON)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	return id, nil
}

// FinishRun stores the aggregate outcome of a run.
// Returns ErrRunNotFound if runID was never begun.
func (s *Store) FinishRun(ctx context.Context, runID string, result *harness.RunResult) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET traces = ?, findings = ?, pass = ?, finished = 1
		WHERE id = ?
	`, len(result.Traces), result.Findings, result.Pass, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// WriteTraceResult stores a trace result and all of its findings in a
// single transaction. Findings already written (for instance by Sink)
// are skipped, and rewriting the same trace result is a no-op.
//
// Note: The run referenced by runID must exist (foreign key constraint).
func (s *Store) WriteTraceResult(ctx context.Context, runID string, result *harness.TraceResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write trace result: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO trace_results
		(run_id, trace_index, path, digest, steps, divergent_steps, pass)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, trace_index) DO NOTHING
	`,
		runID,
		result.Index,
		result.Path,
		result.Digest,
		result.Steps,
		result.DivergentSteps,
		result.Pass,
	)
	if err != nil {
		return fmt.Errorf("write trace result: %w", err)
	}

	for _, f := range result.Findings {
		if err := writeFinding(ctx, tx, runID, f); err != nil {
			return fmt.Errorf("write trace result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write trace result: commit: %w", err)
	}
	return nil
}

// WriteFinding inserts one finding for a run.
// Uses ON CONFLICT(run_id, id) DO NOTHING for idempotency - the id is the
// finding's content digest, so duplicates are silently ignored.
func (s *Store) WriteFinding(ctx context.Context, runID string, f harness.Finding) error {
	return writeFinding(ctx, s.db, runID, f)
}

func writeFinding(ctx context.Context, db execer, runID string, f harness.Finding) error {
	id, err := f.ID()
	if err != nil {
		return fmt.Errorf("write finding: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO findings
		(id, run_id, trace_index, step, action, kind, key_name, expected, observed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, id) DO NOTHING
	`,
		id,
		runID,
		f.Trace,
		f.Step,
		f.Action,
		string(f.Kind),
		f.Key,
		f.Expected,
		f.Observed,
	)
	if err != nil {
		return fmt.Errorf("write finding: %w", err)
	}
	return nil
}
