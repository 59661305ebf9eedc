package harness

// TraceResult is the outcome of replaying one trace.
type TraceResult struct {
	Index  int    `json:"index"`
	Path   string `json:"path"`
	Digest string `json:"digest,omitempty"`

	// Steps is the number of records replayed.
	Steps int `json:"steps"`

	// DivergentSteps counts steps with at least one finding.
	DivergentSteps int `json:"divergent_steps"`

	// Pass is true when no step diverged.
	Pass bool `json:"pass"`

	Findings []Finding `json:"findings,omitempty"`
}

// NewTraceResult creates a passing result for the given trace.
func NewTraceResult(index int, path, digest string) *TraceResult {
	return &TraceResult{
		Index:    index,
		Path:     path,
		Digest:   digest,
		Pass:     true,
		Findings: []Finding{},
	}
}

// AddStep records one replayed step and its findings. Any finding marks
// the result as failed.
func (r *TraceResult) AddStep(findings []Finding) {
	r.Steps++
	if len(findings) == 0 {
		return
	}
	r.DivergentSteps++
	r.Findings = append(r.Findings, findings...)
	r.Pass = false
}

// RunResult aggregates every trace replayed in one run.
type RunResult struct {
	Traces   []TraceResult `json:"traces"`
	Passed   int           `json:"passed"`
	Failed   int           `json:"failed"`
	Findings int           `json:"findings"`

	// Pass is true when every trace passed.
	Pass bool `json:"pass"`
}

// NewRunResult creates an empty, passing run result.
func NewRunResult() *RunResult {
	return &RunResult{Traces: []TraceResult{}, Pass: true}
}

// Add appends a trace result and updates the totals.
func (r *RunResult) Add(tr *TraceResult) {
	r.Traces = append(r.Traces, *tr)
	r.Findings += len(tr.Findings)
	if tr.Pass {
		r.Passed++
		return
	}
	r.Failed++
	r.Pass = false
}
