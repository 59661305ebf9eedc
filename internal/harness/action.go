package harness

import (
	"fmt"

	"github.com/roach88/bankcheck/internal/itf"
	"github.com/roach88/bankcheck/internal/ledger"
)

// Action names as written by the trace generator.
const (
	ActionInit           = "init"
	ActionDeposit        = "deposit_action"
	ActionWithdraw       = "withdraw_action"
	ActionTransfer       = "transfer_action"
	ActionBuyInvestment  = "buy_investment_action"
	ActionSellInvestment = "sell_investment_action"
)

// Action is a parsed trace action. The set of implementations is closed;
// Apply switches over all of them.
type Action interface {
	Name() string
	action()
}

// Init sets up the initial state. It does not touch the ledger.
type Init struct{}

// Deposit credits Amount to Depositor.
type Deposit struct {
	Depositor string
	Amount    ledger.Amount
}

// Withdraw debits Amount from Withdrawer.
type Withdraw struct {
	Withdrawer string
	Amount     ledger.Amount
}

// Transfer moves Amount from Sender to Receiver.
type Transfer struct {
	Sender   string
	Receiver string
	Amount   ledger.Amount
}

// BuyInvestment opens an investment for Buyer.
type BuyInvestment struct {
	Buyer  string
	Amount ledger.Amount
}

// SellInvestment closes investment ID on behalf of Seller.
type SellInvestment struct {
	Seller string
	ID     int64
}

// Unknown is any action the ledger does not model. Applying it is a no-op.
type Unknown struct {
	Action string
}

func (Init) Name() string           { return ActionInit }
func (Deposit) Name() string        { return ActionDeposit }
func (Withdraw) Name() string       { return ActionWithdraw }
func (Transfer) Name() string       { return ActionTransfer }
func (BuyInvestment) Name() string  { return ActionBuyInvestment }
func (SellInvestment) Name() string { return ActionSellInvestment }
func (u Unknown) Name() string      { return u.Action }

func (Init) action()           {}
func (Deposit) action()        {}
func (Withdraw) action()       {}
func (Transfer) action()       {}
func (BuyInvestment) action()  {}
func (SellInvestment) action() {}
func (Unknown) action()        {}

// ParseAction converts a step's action name and picks into an Action.
// An unrecognized name yields Unknown with no error; a recognized name
// whose picks are missing or ill-typed is an error.
func ParseAction(step itf.Step) (Action, error) {
	p := picker{picks: step.Picks}

	var a Action
	switch step.Action {
	case ActionInit:
		a = Init{}
	case ActionDeposit:
		a = Deposit{Depositor: p.str("depositor"), Amount: p.num("amount")}
	case ActionWithdraw:
		a = Withdraw{Withdrawer: p.str("withdrawer"), Amount: p.num("amount")}
	case ActionTransfer:
		a = Transfer{Sender: p.str("sender"), Receiver: p.str("receiver"), Amount: p.num("amount")}
	case ActionBuyInvestment:
		a = BuyInvestment{Buyer: p.str("buyer"), Amount: p.num("amount")}
	case ActionSellInvestment:
		a = SellInvestment{Seller: p.str("seller"), ID: p.num("id")}
	default:
		a = Unknown{Action: step.Action}
	}

	if p.err != nil {
		return nil, fmt.Errorf("%s: %w", step.Action, p.err)
	}
	return a, nil
}

// picker reads picks and keeps the first error.
type picker struct {
	picks itf.Picks
	err   error
}

func (p *picker) str(name string) string {
	if p.err != nil {
		return ""
	}
	s, err := p.picks.String(name)
	p.err = err
	return s
}

func (p *picker) num(name string) int64 {
	if p.err != nil {
		return 0
	}
	n, err := p.picks.Int(name)
	p.err = err
	return n
}

// Apply performs a on st and returns the ledger's outcome.
func Apply(st *ledger.State, a Action) ledger.ErrorKind {
	switch a := a.(type) {
	case Init:
		return ledger.Success
	case Deposit:
		return st.Deposit(a.Depositor, a.Amount)
	case Withdraw:
		return st.Withdraw(a.Withdrawer, a.Amount)
	case Transfer:
		return st.Transfer(a.Sender, a.Receiver, a.Amount)
	case BuyInvestment:
		return st.BuyInvestment(a.Buyer, a.Amount)
	case SellInvestment:
		return st.SellInvestment(a.Seller, a.ID)
	case Unknown:
		return ledger.Success
	default:
		panic(fmt.Sprintf("harness: unhandled action type %T", a))
	}
}
