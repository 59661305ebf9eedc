package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/bankcheck/internal/itf"
	"github.com/roach88/bankcheck/internal/ledger"
)

// Replayer drives the ledger through traces and reports divergences.
type Replayer struct {
	logger *slog.Logger
	diff   DiffOptions
}

// Option configures a Replayer.
type Option func(*Replayer)

// WithLogger sets the logger. The default discards all output.
func WithLogger(l *slog.Logger) Option {
	return func(r *Replayer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithDiffOptions sets the comparison options.
func WithDiffOptions(opts DiffOptions) Option {
	return func(r *Replayer) {
		r.diff = opts
	}
}

// New creates a Replayer.
func New(opts ...Option) *Replayer {
	r := &Replayer{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReplayTrace replays every step of trace against a fresh ledger seeded
// from the first record and sends each finding to sink.
//
// Ledger errors are outcomes to compare, not failures, so replay always
// runs to the last step. The returned error is non-nil only when ctx is
// cancelled or the sink fails.
func (r *Replayer) ReplayTrace(ctx context.Context, trace *itf.Trace, sink Sink) (*TraceResult, error) {
	if sink == nil {
		sink = Discard
	}
	src := trace.Source
	logger := r.logger.With("trace", src.Index)

	if err := sink.BeginTrace(ctx, src); err != nil {
		return nil, fmt.Errorf("trace %d: begin: %w", src.Index, err)
	}

	state := trace.Initial()
	result := NewTraceResult(src.Index, src.Path, trace.Digest)

	for i := range trace.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		step := &trace.Steps[i]

		findings := r.replayStep(logger, state, step)
		for j := range findings {
			findings[j].Trace = src.Index
			findings[j].Step = step.Index
			findings[j].Action = step.Action
			if err := sink.Record(ctx, findings[j]); err != nil {
				return nil, fmt.Errorf("trace %d step %d: record: %w", src.Index, step.Index, err)
			}
		}
		result.AddStep(findings)
	}

	if err := sink.EndTrace(ctx, result); err != nil {
		return nil, fmt.Errorf("trace %d: end: %w", src.Index, err)
	}

	logger.Info("trace replayed",
		"path", src.Path,
		"steps", result.Steps,
		"divergent_steps", result.DivergentSteps,
		"findings", len(result.Findings),
		"pass", result.Pass,
	)
	return result, nil
}

// replayStep applies one step to state and returns its findings, not yet
// stamped with trace, step and action.
func (r *Replayer) replayStep(logger *slog.Logger, state *ledger.State, step *itf.Step) []Finding {
	var findings []Finding

	observed := ledger.Success
	a, err := ParseAction(*step)
	switch {
	case err != nil:
		// The step cannot be applied, but the state is still compared so
		// later steps report against the same baseline.
		logger.Warn("malformed step", "step", step.Index, "error", err)
		findings = append(findings, Finding{Kind: KindMalformedStep, Observed: err.Error()})
	default:
		switch a.(type) {
		case Init:
			logger.Debug("initializing", "step", step.Index)
		case Unknown:
			logger.Warn("unknown action", "step", step.Index, "action", step.Action)
		}
		observed = Apply(state, a)
	}

	return append(findings, Diff(&step.Expected, state, step.ExpectedError, observed, r.diff)...)
}

// Run replays every trace in catalog, one after another, each against its
// own ledger. A trace that cannot be loaded aborts the run; divergences
// never do.
func (r *Replayer) Run(ctx context.Context, catalog itf.Catalog, sink Sink) (*RunResult, error) {
	if sink == nil {
		sink = Discard
	}
	run := NewRunResult()
	for src := range catalog.Sources() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		trace, err := itf.LoadFile(src)
		if err != nil {
			return nil, fmt.Errorf("load trace %d: %w", src.Index, err)
		}
		tr, err := r.ReplayTrace(ctx, trace, sink)
		if err != nil {
			return nil, err
		}
		run.Add(tr)
	}

	r.logger.Info("run complete",
		"traces", len(run.Traces),
		"passed", run.Passed,
		"failed", run.Failed,
		"findings", run.Findings,
	)
	return run, nil
}
