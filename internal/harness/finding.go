package harness

import (
	"fmt"
	"strconv"

	"github.com/roach88/bankcheck/internal/canon"
)

// FindingKind categorizes a divergence.
type FindingKind string

// Finding kinds.
const (
	KindBalanceMismatch      FindingKind = "balance_mismatch"
	KindBalanceMissing       FindingKind = "balance_missing"
	KindBalanceUnexpected    FindingKind = "balance_unexpected"
	KindInvestmentMissing    FindingKind = "investment_missing"
	KindInvestmentOwner      FindingKind = "investment_owner"
	KindInvestmentAmount     FindingKind = "investment_amount"
	KindInvestmentUnexpected FindingKind = "investment_unexpected"
	KindNextIDMismatch       FindingKind = "next_id_mismatch"
	KindErrorMismatch        FindingKind = "error_mismatch"
	KindMalformedStep        FindingKind = "malformed_step"
)

// Finding is one disagreement between the model and the implementation
// after a step. Expected and Observed are rendered values; either may be
// empty when the kind has nothing to show on that side.
type Finding struct {
	Trace    int         `json:"trace"`
	Step     int         `json:"step"`
	Action   string      `json:"action"`
	Kind     FindingKind `json:"kind"`
	Key      string      `json:"key,omitempty"`
	Expected string      `json:"expected,omitempty"`
	Observed string      `json:"observed,omitempty"`
}

// Message renders the finding as a single human-readable line.
func (f Finding) Message() string {
	switch f.Kind {
	case KindBalanceMismatch:
		return fmt.Sprintf("balance of %s should be %s, but is %s", f.Key, f.Expected, f.Observed)
	case KindBalanceMissing:
		return fmt.Sprintf("balance of %s should be %s, but does not exist", f.Key, f.Expected)
	case KindBalanceUnexpected:
		return fmt.Sprintf("balance of %s should not exist, but is %s", f.Key, f.Observed)
	case KindInvestmentMissing:
		return fmt.Sprintf("investment %s does not exist", f.Key)
	case KindInvestmentOwner:
		return fmt.Sprintf("investment %s: owner should be %s, but is %s", f.Key, f.Expected, f.Observed)
	case KindInvestmentAmount:
		return fmt.Sprintf("investment %s: amount should be %s, but is %s", f.Key, f.Expected, f.Observed)
	case KindInvestmentUnexpected:
		return fmt.Sprintf("investment %s should not exist", f.Key)
	case KindNextIDMismatch:
		return fmt.Sprintf("next_id should be %s, but is %s", f.Expected, f.Observed)
	case KindErrorMismatch:
		return fmt.Sprintf("error should be %q, but is %q", f.Expected, f.Observed)
	case KindMalformedStep:
		return fmt.Sprintf("malformed step: %s", f.Observed)
	default:
		return fmt.Sprintf("%s %s: expected %q, observed %q", f.Kind, f.Key, f.Expected, f.Observed)
	}
}

// String implements fmt.Stringer.
func (f Finding) String() string {
	return fmt.Sprintf("trace %d step %d (%s): %s", f.Trace, f.Step, f.Action, f.Message())
}

// ID is a content-addressed identifier for the finding. Recording the same
// finding twice yields the same ID.
func (f Finding) ID() (string, error) {
	return canon.Digest(canon.DomainFinding, map[string]any{
		"trace":    f.Trace,
		"step":     f.Step,
		"action":   f.Action,
		"kind":     string(f.Kind),
		"key":      f.Key,
		"expected": f.Expected,
		"observed": f.Observed,
	})
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
