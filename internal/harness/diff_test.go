package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/bankcheck/internal/ledger"
)

func state(balances map[string]ledger.Amount, investments map[int64]ledger.Investment, nextID int64) *ledger.State {
	st := ledger.NewState()
	for k, v := range balances {
		st.Balances[k] = v
	}
	for k, v := range investments {
		st.Investments[k] = v
	}
	st.NextID = nextID
	return st
}

func TestDiff_Equal(t *testing.T) {
	st := state(map[string]ledger.Amount{"alice": 5}, map[int64]ledger.Investment{0: {Owner: "alice", Amount: 1}}, 1)
	assert.Empty(t, Diff(st, st.Clone(), ledger.Success, ledger.Success, DiffOptions{}))
}

func TestDiff_Balances(t *testing.T) {
	expected := state(map[string]ledger.Amount{"alice": 20, "bob": 3}, nil, 0)
	observed := state(map[string]ledger.Amount{"alice": 15, "carol": 7}, nil, 0)

	got := Diff(expected, observed, ledger.Success, ledger.Success, DiffOptions{})

	assert.Equal(t, []Finding{
		{Kind: KindBalanceMismatch, Key: "alice", Expected: "20", Observed: "15"},
		{Kind: KindBalanceMissing, Key: "bob", Expected: "3"},
		{Kind: KindBalanceUnexpected, Key: "carol", Observed: "7"},
	}, got)
	assert.Equal(t, "balance of alice should be 20, but is 15", got[0].Message())
	assert.Equal(t, "balance of bob should be 3, but does not exist", got[1].Message())
	assert.Equal(t, "balance of carol should not exist, but is 7", got[2].Message())
}

func TestDiff_AbsentVersusZero(t *testing.T) {
	expected := state(map[string]ledger.Amount{"alice": 0}, nil, 0)
	observed := state(nil, nil, 0)

	got := Diff(expected, observed, ledger.Success, ledger.Success, DiffOptions{})
	assert.Equal(t, []Finding{{Kind: KindBalanceMissing, Key: "alice", Expected: "0"}}, got)
}

func TestDiff_ExtraZeroBalance(t *testing.T) {
	expected := state(map[string]ledger.Amount{"alice": 1}, nil, 0)
	observed := state(map[string]ledger.Amount{"alice": 1, "bob": 0}, nil, 0)

	assert.Empty(t, Diff(expected, observed, ledger.Success, ledger.Success, DiffOptions{}))

	strict := Diff(expected, observed, ledger.Success, ledger.Success, DiffOptions{StrictBalances: true})
	assert.Equal(t, []Finding{{Kind: KindBalanceUnexpected, Key: "bob", Observed: "0"}}, strict)
}

func TestDiff_Investments(t *testing.T) {
	expected := state(nil, map[int64]ledger.Investment{
		0: {Owner: "bob", Amount: 4},
		1: {Owner: "alice", Amount: 1},
		2: {Owner: "carol", Amount: 9},
	}, 3)
	observed := state(nil, map[int64]ledger.Investment{
		0: {Owner: "alice", Amount: 4},
		2: {Owner: "dave", Amount: 8},
		5: {Owner: "erin", Amount: 2},
	}, 3)

	got := Diff(expected, observed, ledger.Success, ledger.Success, DiffOptions{})

	assert.Equal(t, []Finding{
		{Kind: KindInvestmentOwner, Key: "0", Expected: "bob", Observed: "alice"},
		{Kind: KindInvestmentMissing, Key: "1"},
		{Kind: KindInvestmentOwner, Key: "2", Expected: "carol", Observed: "dave"},
		{Kind: KindInvestmentAmount, Key: "2", Expected: "9", Observed: "8"},
		{Kind: KindInvestmentUnexpected, Key: "5"},
	}, got)
	assert.Equal(t, "investment 0: owner should be bob, but is alice", got[0].Message())
	assert.Equal(t, "investment 1 does not exist", got[1].Message())
	assert.Equal(t, "investment 2: amount should be 9, but is 8", got[3].Message())
	assert.Equal(t, "investment 5 should not exist", got[4].Message())
}

func TestDiff_NextIDAndError(t *testing.T) {
	expected := state(nil, nil, 2)
	observed := state(nil, nil, 1)

	got := Diff(expected, observed, ledger.Success, ledger.InsufficientBalance, DiffOptions{})

	assert.Equal(t, []Finding{
		{Kind: KindNextIDMismatch, Key: "next_id", Expected: "2", Observed: "1"},
		{Kind: KindErrorMismatch, Key: "error", Expected: "", Observed: "Balance is too low"},
	}, got)
	assert.Equal(t, "next_id should be 2, but is 1", got[0].Message())
	assert.Equal(t, `error should be "", but is "Balance is too low"`, got[1].Message())
}

func TestDiff_FacetsIndependent(t *testing.T) {
	expected := state(map[string]ledger.Amount{"alice": 1}, nil, 0)
	observed := state(map[string]ledger.Amount{"alice": 2}, nil, 0)

	got := Diff(expected, observed, ledger.NotOwner, ledger.Success, DiffOptions{})
	assert.Len(t, got, 2)
	assert.Equal(t, KindBalanceMismatch, got[0].Kind)
	assert.Equal(t, KindErrorMismatch, got[1].Kind)
}
