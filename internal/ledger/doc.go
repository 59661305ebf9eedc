// Package ledger implements the reference bank state machine.
//
// A State holds account balances, open investments and the next investment
// id. The five operations (Deposit, Withdraw, Transfer, BuyInvestment,
// SellInvestment) mutate the state in place and return an ErrorKind. An
// empty ErrorKind means success; any other value names the validation rule
// that rejected the call, and the state is left untouched.
//
// # Validation Order
//
// Amount positivity is always checked before balance sufficiency, and
// investment existence is always checked before ownership:
//
//	st := ledger.NewState()
//	st.Deposit("alice", 100)          // ""
//	st.Withdraw("alice", 0)           // "Amount should be greater than zero"
//	st.Withdraw("alice", 1000)        // "Balance is too low"
//	st.SellInvestment("alice", 7)     // "No investment with this id"
//
// Absent balances read as zero. Reads never create keys; only a credit
// (deposit, incoming transfer, sale) creates an entry.
package ledger
