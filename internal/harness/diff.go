package harness

import (
	"maps"

	"github.com/roach88/bankcheck/internal/ledger"
)

// DiffOptions tunes the comparison.
type DiffOptions struct {
	// StrictBalances also reports observed accounts that the expected
	// state omits when their balance is zero. By default an absent account
	// and a zero balance are treated as equivalent.
	StrictBalances bool
}

// Diff compares the observed state and error against the expectation and
// returns every disagreement. Facets are checked independently, so a
// balance mismatch does not hide an error mismatch. The returned findings
// carry Kind, Key, Expected and Observed; the caller stamps trace, step
// and action.
func Diff(expected, observed *ledger.State, expectedErr, observedErr ledger.ErrorKind, opts DiffOptions) []Finding {
	var out []Finding
	out = append(out, diffBalances(expected, observed, opts)...)
	out = append(out, diffInvestments(expected, observed)...)

	if expected.NextID != observed.NextID {
		out = append(out, Finding{
			Kind:     KindNextIDMismatch,
			Key:      "next_id",
			Expected: formatInt(expected.NextID),
			Observed: formatInt(observed.NextID),
		})
	}

	if expectedErr != observedErr {
		out = append(out, Finding{
			Kind:     KindErrorMismatch,
			Key:      "error",
			Expected: string(expectedErr),
			Observed: string(observedErr),
		})
	}
	return out
}

func diffBalances(expected, observed *ledger.State, opts DiffOptions) []Finding {
	if maps.Equal(expected.Balances, observed.Balances) {
		return nil
	}

	var out []Finding
	for _, owner := range expected.Owners() {
		want := expected.Balances[owner]
		got, ok := observed.Balances[owner]
		switch {
		case !ok:
			out = append(out, Finding{
				Kind:     KindBalanceMissing,
				Key:      owner,
				Expected: formatInt(want),
			})
		case got != want:
			out = append(out, Finding{
				Kind:     KindBalanceMismatch,
				Key:      owner,
				Expected: formatInt(want),
				Observed: formatInt(got),
			})
		}
	}

	for _, owner := range observed.Owners() {
		if expected.HasAccount(owner) {
			continue
		}
		got := observed.Balances[owner]
		if got == 0 && !opts.StrictBalances {
			continue
		}
		out = append(out, Finding{
			Kind:     KindBalanceUnexpected,
			Key:      owner,
			Observed: formatInt(got),
		})
	}
	return out
}

func diffInvestments(expected, observed *ledger.State) []Finding {
	if maps.Equal(expected.Investments, observed.Investments) {
		return nil
	}

	var out []Finding
	for _, id := range expected.InvestmentIDs() {
		want := expected.Investments[id]
		key := formatInt(id)
		got, ok := observed.Investments[id]
		if !ok {
			out = append(out, Finding{Kind: KindInvestmentMissing, Key: key})
			continue
		}
		if got.Owner != want.Owner {
			out = append(out, Finding{
				Kind:     KindInvestmentOwner,
				Key:      key,
				Expected: want.Owner,
				Observed: got.Owner,
			})
		}
		if got.Amount != want.Amount {
			out = append(out, Finding{
				Kind:     KindInvestmentAmount,
				Key:      key,
				Expected: formatInt(want.Amount),
				Observed: formatInt(got.Amount),
			})
		}
	}

	for _, id := range observed.InvestmentIDs() {
		if _, ok := expected.Investments[id]; !ok {
			out = append(out, Finding{Kind: KindInvestmentUnexpected, Key: formatInt(id)})
		}
	}
	return out
}
