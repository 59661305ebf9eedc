package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/roach88/bankcheck/internal/itf"
)

// Sink receives findings as a replay produces them.
//
// BeginTrace is called before the first step of each trace, Record once
// per finding in step order, and EndTrace after the last step with the
// completed result. A returned error stops the run; it signals a broken
// sink, never a divergence.
type Sink interface {
	BeginTrace(ctx context.Context, src itf.Source) error
	Record(ctx context.Context, f Finding) error
	EndTrace(ctx context.Context, result *TraceResult) error
}

// Discard is a Sink that drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) BeginTrace(context.Context, itf.Source) error { return nil }
func (discard) Record(context.Context, Finding) error        { return nil }
func (discard) EndTrace(context.Context, *TraceResult) error { return nil }

// TextSink writes a human-readable report grouped by trace and step.
//
//	Trace #1 (traces/out1.itf.json)
//	  step 1 deposit_action
//	    balance of alice should be 16, but is 15
//	✗ trace #1: 1 divergent step(s), 1 finding(s)
type TextSink struct {
	w        io.Writer
	lastStep int
	// Quiet suppresses the header and summary of conforming traces.
	Quiet bool
	src   itf.Source
}

// NewTextSink creates a TextSink writing to w.
func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

// BeginTrace implements Sink.
func (s *TextSink) BeginTrace(_ context.Context, src itf.Source) error {
	s.src = src
	s.lastStep = -1
	if s.Quiet {
		return nil
	}
	return s.header()
}

func (s *TextSink) header() error {
	_, err := fmt.Fprintf(s.w, "Trace #%d (%s)\n", s.src.Index, s.src.Path)
	return err
}

// Record implements Sink.
func (s *TextSink) Record(_ context.Context, f Finding) error {
	if s.Quiet && s.lastStep == -1 {
		if err := s.header(); err != nil {
			return err
		}
	}
	if f.Step != s.lastStep {
		if _, err := fmt.Fprintf(s.w, "  step %d %s\n", f.Step, f.Action); err != nil {
			return err
		}
		s.lastStep = f.Step
	}
	_, err := fmt.Fprintf(s.w, "    %s\n", f.Message())
	return err
}

// EndTrace implements Sink.
func (s *TextSink) EndTrace(_ context.Context, r *TraceResult) error {
	if r.Pass {
		if s.Quiet {
			return nil
		}
		_, err := fmt.Fprintf(s.w, "✓ trace #%d: %d step(s) conform\n", r.Index, r.Steps)
		return err
	}
	_, err := fmt.Fprintf(s.w, "✗ trace #%d: %d divergent step(s), %d finding(s)\n",
		r.Index, r.DivergentSteps, len(r.Findings))
	return err
}

// Collector keeps every finding in memory. Safe for concurrent use.
type Collector struct {
	mu       sync.Mutex
	findings []Finding
	results  []TraceResult
}

// BeginTrace implements Sink.
func (c *Collector) BeginTrace(context.Context, itf.Source) error { return nil }

// Record implements Sink.
func (c *Collector) Record(_ context.Context, f Finding) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.findings = append(c.findings, f)
	return nil
}

// EndTrace implements Sink.
func (c *Collector) EndTrace(_ context.Context, r *TraceResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, *r)
	return nil
}

// Findings returns a copy of the recorded findings.
func (c *Collector) Findings() []Finding {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Finding(nil), c.findings...)
}

// Results returns a copy of the completed trace results.
func (c *Collector) Results() []TraceResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]TraceResult(nil), c.results...)
}

// MultiSink fans every call out to each sink in order and joins errors.
type MultiSink []Sink

// BeginTrace implements Sink.
func (m MultiSink) BeginTrace(ctx context.Context, src itf.Source) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.BeginTrace(ctx, src))
	}
	return errors.Join(errs...)
}

// Record implements Sink.
func (m MultiSink) Record(ctx context.Context, f Finding) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Record(ctx, f))
	}
	return errors.Join(errs...)
}

// EndTrace implements Sink.
func (m MultiSink) EndTrace(ctx context.Context, r *TraceResult) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.EndTrace(ctx, r))
	}
	return errors.Join(errs...)
}
