package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinding_String(t *testing.T) {
	f := Finding{Trace: 1, Step: 3, Action: ActionBuyInvestment, Kind: KindInvestmentMissing, Key: "1"}
	assert.Equal(t, "trace 1 step 3 (buy_investment_action): investment 1 does not exist", f.String())
}

func TestFinding_MalformedMessage(t *testing.T) {
	f := Finding{Kind: KindMalformedStep, Observed: `deposit_action: pick "amount": missing`}
	assert.Equal(t, `malformed step: deposit_action: pick "amount": missing`, f.Message())
}

func TestFinding_ID(t *testing.T) {
	f := Finding{Trace: 1, Step: 1, Action: ActionDeposit, Kind: KindBalanceMismatch, Key: "alice", Expected: "16", Observed: "15"}

	id1, err := f.ID()
	require.NoError(t, err)
	id2, err := f.ID()
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 64)

	other := f
	other.Step = 2
	id3, err := other.ID()
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)
}
