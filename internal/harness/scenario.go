package harness

import (
	"bytes"
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/bankcheck/internal/itf"
	"github.com/roach88/bankcheck/internal/ledger"
)

// Scenario is a hand-written conformance trace.
// It replays through the same driver as generated traces, so a scenario
// states the model's expectations directly in YAML.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are keyed by it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Initial is the state replay starts from. Omitted means empty.
	Initial StateSpec `yaml:"initial,omitempty"`

	// Steps are replayed in order after the implicit init step.
	Steps []ScenarioStep `yaml:"steps"`

	// Path is the file the scenario was loaded from.
	Path string `yaml:"-"`
}

// StateSpec is a full ledger state written in YAML.
type StateSpec struct {
	Balances    map[string]ledger.Amount    `yaml:"balances,omitempty"`
	Investments map[int64]ledger.Investment `yaml:"investments,omitempty"`
	NextID      int64                       `yaml:"next_id,omitempty"`
}

// ScenarioStep is one action and the state expected after it.
type ScenarioStep struct {
	// Action is the trace action name, e.g. "deposit_action".
	Action string `yaml:"action"`

	// Picks are the action's arguments. A null value is an unchosen pick.
	Picks map[string]any `yaml:"picks,omitempty"`

	// Expect describes the state after the step. Nil keeps every facet of
	// the previous expectation.
	Expect *Expectation `yaml:"expect,omitempty"`
}

// Expectation lists the facets a step expects.
//
// A nil map or NextID carries the previous step's value forward; an empty
// map ({}) expects an empty table. Error defaults to success.
type Expectation struct {
	Balances    map[string]ledger.Amount    `yaml:"balances,omitempty"`
	Investments map[int64]ledger.Investment `yaml:"investments,omitempty"`
	NextID      *int64                      `yaml:"next_id,omitempty"`
	Error       string                      `yaml:"error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	scenario.Path = path
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Action == "" {
			return fmt.Errorf("steps[%d]: action is required", i)
		}
		if step.Expect != nil && step.Expect.Error != "" && !ledger.ErrorKind(step.Expect.Error).Known() {
			return fmt.Errorf("steps[%d].expect: unknown error %q", i, step.Expect.Error)
		}
	}

	return nil
}

// Trace converts the scenario into a trace. Record 0 is an init step
// carrying the initial state; scenario step i becomes record i+1.
func (s *Scenario) Trace() (*itf.Trace, error) {
	prev := s.Initial.state()
	steps := make([]itf.Step, 0, len(s.Steps)+1)
	steps = append(steps, itf.Step{
		Index:    0,
		Action:   ActionInit,
		Picks:    itf.Picks{},
		Expected: *prev.Clone(),
	})

	for i, st := range s.Steps {
		picks, err := scenarioPicks(st.Picks)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}

		expected := prev.Clone()
		var expectedErr ledger.ErrorKind
		if e := st.Expect; e != nil {
			if e.Balances != nil {
				expected.Balances = maps.Clone(e.Balances)
			}
			if e.Investments != nil {
				expected.Investments = maps.Clone(e.Investments)
			}
			if e.NextID != nil {
				expected.NextID = *e.NextID
			}
			expectedErr = ledger.ErrorKind(e.Error)
		}

		steps = append(steps, itf.Step{
			Index:         i + 1,
			Action:        st.Action,
			Picks:         picks,
			Expected:      *expected,
			ExpectedError: expectedErr,
		})
		prev = expected
	}

	digest, err := itf.TraceDigest(steps)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return &itf.Trace{
		Source: itf.Source{Path: s.Path},
		Steps:  steps,
		Digest: digest,
	}, nil
}

func (spec StateSpec) state() *ledger.State {
	st := ledger.NewState()
	maps.Copy(st.Balances, spec.Balances)
	maps.Copy(st.Investments, spec.Investments)
	st.NextID = spec.NextID
	return st
}

func scenarioPicks(values map[string]any) (itf.Picks, error) {
	chosen := make(map[string]any, len(values))
	var unchosen []string
	for name, v := range values {
		if v == nil {
			unchosen = append(unchosen, name)
			continue
		}
		chosen[name] = v
	}
	picks, err := itf.NewPicks(chosen)
	if err != nil {
		return nil, err
	}
	for _, name := range unchosen {
		picks[name] = itf.Option{}
	}
	return picks, nil
}
