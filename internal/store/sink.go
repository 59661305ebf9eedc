package store

import (
	"context"

	"github.com/roach88/bankcheck/internal/harness"
	"github.com/roach88/bankcheck/internal/itf"
)

// Sink records a run's findings and trace results as replay produces them.
type Sink struct {
	store *Store
	runID string
}

// NewSink returns a harness.Sink writing into runID.
func NewSink(s *Store, runID string) *Sink {
	return &Sink{store: s, runID: runID}
}

// RunID returns the run the sink writes to.
func (s *Sink) RunID() string {
	return s.runID
}

// BeginTrace implements harness.Sink.
func (s *Sink) BeginTrace(context.Context, itf.Source) error {
	return nil
}

// Record implements harness.Sink.
func (s *Sink) Record(ctx context.Context, f harness.Finding) error {
	return s.store.WriteFinding(ctx, s.runID, f)
}

// EndTrace implements harness.Sink.
func (s *Sink) EndTrace(ctx context.Context, result *harness.TraceResult) error {
	return s.store.WriteTraceResult(ctx, s.runID, result)
}
