package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/bankcheck/internal/canon"
)

// ReportSnapshot is the stable, comparable form of a replay result.
type ReportSnapshot struct {
	Name     string
	Steps    int
	Pass     bool
	Findings []Finding
}

// NewReportSnapshot captures result under name.
func NewReportSnapshot(name string, result *TraceResult) ReportSnapshot {
	return ReportSnapshot{
		Name:     name,
		Steps:    result.Steps,
		Pass:     result.Pass,
		Findings: result.Findings,
	}
}

// toCanonicalMap converts the snapshot for canonical JSON serialization.
// The trace index is left out so a scenario's golden file does not depend
// on where it was replayed.
func (s ReportSnapshot) toCanonicalMap() map[string]any {
	findings := make([]any, len(s.Findings))
	for i, f := range s.Findings {
		findings[i] = map[string]any{
			"step":     f.Step,
			"action":   f.Action,
			"kind":     string(f.Kind),
			"key":      f.Key,
			"expected": f.Expected,
			"observed": f.Observed,
		}
	}
	return map[string]any{
		"name":     s.Name,
		"steps":    s.Steps,
		"pass":     s.Pass,
		"findings": findings,
	}
}

// MarshalCanonical renders the snapshot as canonical JSON.
func (s ReportSnapshot) MarshalCanonical() ([]byte, error) {
	return canon.Marshal(s.toCanonicalMap())
}

// RunWithGolden replays a scenario and compares the report against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, r *Replayer, scenario *Scenario) (*TraceResult, error) {
	t.Helper()

	trace, err := scenario.Trace()
	if err != nil {
		return nil, err
	}
	result, err := r.ReplayTrace(context.Background(), trace, Discard)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// replaying again.
func AssertGolden(t *testing.T, name string, result *TraceResult) error {
	t.Helper()

	data, err := NewReportSnapshot(name, result).MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
