package itf

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/bankcheck/internal/ledger"
)

type rawBankState struct {
	Balances    json.RawMessage `json:"balances"`
	Investments json.RawMessage `json:"investments"`
	NextID      json.RawMessage `json:"next_id"`
}

type rawInvestment struct {
	Owner  *string         `json:"owner"`
	Amount json.RawMessage `json:"amount"`
}

// DecodeState decodes a bank_state snapshot.
func DecodeState(raw json.RawMessage) (ledger.State, error) {
	var rs rawBankState
	if err := json.Unmarshal(raw, &rs); err != nil {
		return ledger.State{}, err
	}
	if rs.Balances == nil || rs.Investments == nil || rs.NextID == nil {
		return ledger.State{}, fmt.Errorf("bank_state requires balances, investments and next_id")
	}

	balances, err := decodeBalances(rs.Balances)
	if err != nil {
		return ledger.State{}, fmt.Errorf("balances: %w", err)
	}
	investments, err := decodeInvestments(rs.Investments)
	if err != nil {
		return ledger.State{}, fmt.Errorf("investments: %w", err)
	}
	nextID, err := DecodeBigInt(rs.NextID)
	if err != nil {
		return ledger.State{}, fmt.Errorf("next_id: %w", err)
	}

	return ledger.State{
		Balances:    balances,
		Investments: investments,
		NextID:      nextID,
	}, nil
}

func decodeBalances(raw json.RawMessage) (map[string]ledger.Amount, error) {
	entries, err := decodeMapEntries(raw)
	if err != nil {
		return nil, err
	}
	balances := make(map[string]ledger.Amount, len(entries))
	for i, e := range entries {
		var owner string
		if err := json.Unmarshal(e[0], &owner); err != nil {
			return nil, fmt.Errorf("entry %d: owner must be a string: %w", i, err)
		}
		amount, err := DecodeBigInt(e[1])
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, owner, err)
		}
		if _, dup := balances[owner]; dup {
			return nil, fmt.Errorf("entry %d: duplicate owner %q", i, owner)
		}
		balances[owner] = amount
	}
	return balances, nil
}

func decodeInvestments(raw json.RawMessage) (map[int64]ledger.Investment, error) {
	entries, err := decodeMapEntries(raw)
	if err != nil {
		return nil, err
	}
	investments := make(map[int64]ledger.Investment, len(entries))
	for i, e := range entries {
		id, err := DecodeBigInt(e[0])
		if err != nil {
			return nil, fmt.Errorf("entry %d: id: %w", i, err)
		}
		var ri rawInvestment
		if err := json.Unmarshal(e[1], &ri); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if ri.Owner == nil {
			return nil, fmt.Errorf("entry %d: missing owner", i)
		}
		amount, err := DecodeBigInt(ri.Amount)
		if err != nil {
			return nil, fmt.Errorf("entry %d: amount: %w", i, err)
		}
		if _, dup := investments[id]; dup {
			return nil, fmt.Errorf("entry %d: duplicate id %d", i, id)
		}
		investments[id] = ledger.Investment{Owner: *ri.Owner, Amount: amount}
	}
	return investments, nil
}
