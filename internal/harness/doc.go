// Package harness replays traces against the ledger and reports where the
// implementation diverges from the model.
//
// For each trace the Replayer seeds a fresh ledger.State from the first
// record, then for every step:
//
//  1. parses the step into a typed Action (ParseAction)
//  2. applies it to the running state (Apply)
//  3. diffs the observed state and error against the step's expectation (Diff)
//  4. hands each Finding to a Sink
//
// Ledger errors are ordinary outcomes and never stop a replay; they are
// compared like any other value. Divergences are reported, not raised, so
// one trace surfaces all of its findings. TraceResult.Pass and
// RunResult.Pass carry the aggregate verdict for callers that need a
// programmatic signal.
//
// # Diff Facets
//
// Four facets are compared independently:
//
//   - balances: every expected owner, then owners only present in the
//     observed state (non-zero balances, or all with StrictBalances)
//   - investments: missing, wrong owner, wrong amount, unexpected
//   - next_id
//   - error string, verbatim
//
// # Scenarios
//
// Hand-written YAML scenarios run through the same replay path:
//
//	name: alice_and_bob
//	description: "Deposit, withdraw and an investment round trip"
//	steps:
//	  - action: deposit_action
//	    picks: { depositor: alice, amount: 100 }
//	    expect:
//	      balances: { alice: 100 }
//
// Omitted expectation fields carry over from the previous step.
package harness
