// Package itf loads model-generated traces in the Informal Trace Format.
//
// A trace file is a JSON object whose "states" array holds one record per
// step:
//
//	{
//	  "action_taken": "deposit_action",
//	  "nondet_picks": {
//	    "depositor": {"tag": "Some", "value": "alice"},
//	    "amount":    {"tag": "Some", "value": {"#bigint": "100"}}
//	  },
//	  "bank_state": {
//	    "balances":    {"#map": [["alice", {"#bigint": "100"}]]},
//	    "investments": {"#map": []},
//	    "next_id":     {"#bigint": "0"}
//	  },
//	  "error": {"tag": "None", "value": {"#tup": []}}
//	}
//
// Integers are wrapped as {"#bigint": "<decimal>"} so the generator can
// emit values beyond 64 bits. DecodeBigInt is the only place that unwraps
// them; it rejects anything that does not fit an int64.
//
// The first record's bank_state is the initial state of the trace. Every
// record's bank_state is the expected state after that record's action.
//
// Traces are discovered through a Catalog, a restartable sequence of
// Sources. NumberedDir reproduces the generator's out0.itf.json,
// out1.itf.json, ... layout.
package itf
