package ledger

import (
	"maps"
	"slices"
)

// Amount is a quantity of currency. Amounts are whole units; magnitudes
// beyond int64 are not supported.
type Amount = int64

// Investment is an open position bought from an owner's balance.
type Investment struct {
	Owner  string `json:"owner" yaml:"owner"`
	Amount Amount `json:"amount" yaml:"amount"`
}

// State is the complete bank state.
//
// NextID is the id the next successful BuyInvestment will use. It only
// grows: selling an investment never frees its id.
type State struct {
	Balances    map[string]Amount    `json:"balances"`
	Investments map[int64]Investment `json:"investments"`
	NextID      int64                `json:"next_id"`
}

// NewState returns an empty state with NextID 0.
func NewState() *State {
	return &State{
		Balances:    make(map[string]Amount),
		Investments: make(map[int64]Investment),
	}
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	c := &State{
		Balances:    make(map[string]Amount, len(s.Balances)),
		Investments: make(map[int64]Investment, len(s.Investments)),
		NextID:      s.NextID,
	}
	maps.Copy(c.Balances, s.Balances)
	maps.Copy(c.Investments, s.Investments)
	return c
}

// Equal reports whether s and o hold the same balances, investments and
// next id. Nil and empty maps compare equal.
func (s *State) Equal(o *State) bool {
	return s.NextID == o.NextID &&
		maps.Equal(s.Balances, o.Balances) &&
		maps.Equal(s.Investments, o.Investments)
}

// Balance returns the balance of owner, or 0 if the account is absent.
func (s *State) Balance(owner string) Amount {
	return s.Balances[owner]
}

// HasAccount reports whether owner has a balance entry.
func (s *State) HasAccount(owner string) bool {
	_, ok := s.Balances[owner]
	return ok
}

// Owners returns the account identifiers in sorted order.
func (s *State) Owners() []string {
	return slices.Sorted(maps.Keys(s.Balances))
}

// InvestmentIDs returns the open investment ids in ascending order.
func (s *State) InvestmentIDs() []int64 {
	return slices.Sorted(maps.Keys(s.Investments))
}

// Deposit credits amount to owner, creating the account if needed.
func (s *State) Deposit(owner string, amount Amount) ErrorKind {
	if amount <= 0 {
		return InvalidAmount
	}
	s.credit(owner, amount)
	return Success
}

// Withdraw debits amount from owner.
func (s *State) Withdraw(owner string, amount Amount) ErrorKind {
	if kind := s.checkDebit(owner, amount); !kind.OK() {
		return kind
	}
	s.Balances[owner] -= amount
	return Success
}

// Transfer moves amount from sender to receiver. Only the sender's balance
// is checked, before any mutation, so a self-transfer needs sufficient
// funds but leaves the balance unchanged.
func (s *State) Transfer(sender, receiver string, amount Amount) ErrorKind {
	if kind := s.checkDebit(sender, amount); !kind.OK() {
		return kind
	}
	s.Balances[sender] -= amount
	s.credit(receiver, amount)
	return Success
}

// BuyInvestment debits amount from buyer and opens an investment under
// the current NextID, then advances NextID.
func (s *State) BuyInvestment(buyer string, amount Amount) ErrorKind {
	if kind := s.checkDebit(buyer, amount); !kind.OK() {
		return kind
	}
	s.Balances[buyer] -= amount
	if s.Investments == nil {
		s.Investments = make(map[int64]Investment)
	}
	s.Investments[s.NextID] = Investment{Owner: buyer, Amount: amount}
	s.NextID++
	return Success
}

// SellInvestment closes investment id and credits its amount back to the
// seller, who must own it. NextID is not affected.
func (s *State) SellInvestment(seller string, id int64) ErrorKind {
	inv, ok := s.Investments[id]
	if !ok {
		return UnknownInvestment
	}
	if inv.Owner != seller {
		return NotOwner
	}
	s.credit(seller, inv.Amount)
	delete(s.Investments, id)
	return Success
}

// checkDebit applies the shared amount-positivity then balance-sufficiency
// rules. It never mutates s.
func (s *State) checkDebit(owner string, amount Amount) ErrorKind {
	if amount <= 0 {
		return InvalidAmount
	}
	if amount > s.Balances[owner] {
		return InsufficientBalance
	}
	return Success
}

func (s *State) credit(owner string, amount Amount) {
	if s.Balances == nil {
		s.Balances = make(map[string]Amount)
	}
	s.Balances[owner] += amount
}
