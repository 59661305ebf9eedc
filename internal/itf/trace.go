package itf

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/roach88/bankcheck/internal/canon"
	"github.com/roach88/bankcheck/internal/ledger"
)

// Step is one record of a trace: the action the model took, the arguments
// it picked, and the state and error it expects afterwards.
type Step struct {
	Index         int
	Action        string
	Picks         Picks
	Expected      ledger.State
	ExpectedError ledger.ErrorKind
}

// Trace is a decoded trace file.
type Trace struct {
	Source Source
	Steps  []Step

	// Digest identifies the decoded content, independent of formatting.
	Digest string
}

// Initial returns a copy of the first record's state, the state replay
// starts from. A trace without steps starts from an empty state.
func (t *Trace) Initial() *ledger.State {
	if len(t.Steps) == 0 {
		return ledger.NewState()
	}
	return t.Steps[0].Expected.Clone()
}

// DecodeError reports a malformed record.
type DecodeError struct {
	Path   string
	Record int
	Field  string
	Err    error
}

func (e *DecodeError) Error() string {
	loc := e.Path
	if loc == "" {
		loc = "trace"
	}
	if e.Record < 0 {
		return fmt.Sprintf("%s: %v", loc, e.Err)
	}
	return fmt.Sprintf("%s: record %d: %s: %v", loc, e.Record, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type rawTrace struct {
	States []rawRecord `json:"states"`
}

type rawRecord struct {
	ActionTaken *string         `json:"action_taken"`
	NondetPicks Picks           `json:"nondet_picks"`
	BankState   json.RawMessage `json:"bank_state"`
	Error       *Option         `json:"error"`
}

// LoadFile opens src.Path, decodes it and closes the file before
// returning.
func LoadFile(src Source) (*Trace, error) {
	f, err := os.Open(src.Path)
	if err != nil {
		return nil, fmt.Errorf("open trace %d: %w", src.Index, err)
	}
	defer f.Close()

	return Load(f, src)
}

// Load decodes a trace from r.
func Load(r io.Reader, src Source) (*Trace, error) {
	var rt rawTrace
	if err := json.NewDecoder(r).Decode(&rt); err != nil {
		return nil, &DecodeError{Path: src.Path, Record: -1, Err: err}
	}
	if len(rt.States) == 0 {
		return nil, &DecodeError{Path: src.Path, Record: -1, Err: fmt.Errorf("trace has no states")}
	}

	trace := &Trace{Source: src, Steps: make([]Step, 0, len(rt.States))}
	for i, rec := range rt.States {
		step, err := decodeRecord(i, rec)
		if err != nil {
			err.Path = src.Path
			return nil, err
		}
		trace.Steps = append(trace.Steps, step)
	}

	digest, err := TraceDigest(trace.Steps)
	if err != nil {
		return nil, &DecodeError{Path: src.Path, Record: -1, Err: err}
	}
	trace.Digest = digest
	return trace, nil
}

func decodeRecord(i int, rec rawRecord) (Step, *DecodeError) {
	if rec.ActionTaken == nil {
		return Step{}, &DecodeError{Record: i, Field: "action_taken", Err: fmt.Errorf("missing")}
	}
	if rec.BankState == nil {
		return Step{}, &DecodeError{Record: i, Field: "bank_state", Err: fmt.Errorf("missing")}
	}

	state, err := DecodeState(rec.BankState)
	if err != nil {
		return Step{}, &DecodeError{Record: i, Field: "bank_state", Err: err}
	}

	var expectedErr string
	if rec.Error != nil {
		expectedErr, err = rec.Error.StringValue()
		if err != nil {
			return Step{}, &DecodeError{Record: i, Field: "error", Err: err}
		}
	}

	picks := rec.NondetPicks
	if picks == nil {
		picks = Picks{}
	}

	return Step{
		Index:         i,
		Action:        *rec.ActionTaken,
		Picks:         picks,
		Expected:      state,
		ExpectedError: ledger.ErrorKind(expectedErr),
	}, nil
}

// TraceDigest computes the canonical digest of decoded steps.
func TraceDigest(steps []Step) (string, error) {
	list := make([]any, len(steps))
	for i, s := range steps {
		picks := make(map[string]any, len(s.Picks))
		for name, opt := range s.Picks {
			picks[name] = map[string]any{"some": opt.Some, "value": opt.compact()}
		}
		list[i] = map[string]any{
			"action":   s.Action,
			"picks":    picks,
			"expected": StateDocument(s.Expected),
			"error":    string(s.ExpectedError),
		}
	}
	return canon.Digest(canon.DomainTrace, list)
}

// StateDocument converts a state to a canonical-JSON-friendly document.
// Investment ids become decimal string keys.
func StateDocument(st ledger.State) map[string]any {
	balances := make(map[string]any, len(st.Balances))
	for owner, amount := range st.Balances {
		balances[owner] = amount
	}
	investments := make(map[string]any, len(st.Investments))
	for id, inv := range st.Investments {
		investments[strconv.FormatInt(id, 10)] = map[string]any{
			"owner":  inv.Owner,
			"amount": inv.Amount,
		}
	}
	return map[string]any{
		"balances":    balances,
		"investments": investments,
		"next_id":     st.NextID,
	}
}
