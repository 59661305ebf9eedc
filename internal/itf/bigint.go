package itf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
)

type bigintEnvelope struct {
	BigInt *string `json:"#bigint"`
}

// DecodeBigInt decodes a tagged integer ({"#bigint": "42"}) into an int64.
// A bare JSON integer is also accepted so hand-written fixtures stay
// readable. Values outside the int64 range are an error.
func DecodeBigInt(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, fmt.Errorf("bigint: empty value")
	}

	var digits string
	if raw[0] == '{' {
		var env bigintEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return 0, fmt.Errorf("bigint: %w", err)
		}
		if env.BigInt == nil {
			return 0, fmt.Errorf("bigint: missing #bigint field in %s", raw)
		}
		digits = *env.BigInt
	} else {
		var num json.Number
		if err := json.Unmarshal(raw, &num); err != nil {
			return 0, fmt.Errorf("bigint: expected tagged or bare integer, got %s", raw)
		}
		digits = num.String()
	}

	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return 0, fmt.Errorf("bigint: invalid decimal %q", digits)
	}
	if !n.IsInt64() {
		return 0, fmt.Errorf("bigint: %s out of int64 range", digits)
	}
	return n.Int64(), nil
}

type mapEnvelope struct {
	Map *[]json.RawMessage `json:"#map"`
}

// decodeMapEntries unwraps {"#map": [[k, v], ...]} into key/value pairs,
// preserving order.
func decodeMapEntries(raw json.RawMessage) ([][2]json.RawMessage, error) {
	var env mapEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("map: %w", err)
	}
	if env.Map == nil {
		return nil, fmt.Errorf("map: missing #map field")
	}

	entries := make([][2]json.RawMessage, 0, len(*env.Map))
	for i, item := range *env.Map {
		var pair []json.RawMessage
		if err := json.Unmarshal(item, &pair); err != nil {
			return nil, fmt.Errorf("map entry %d: %w", i, err)
		}
		if len(pair) != 2 {
			return nil, fmt.Errorf("map entry %d: expected [key, value], got %d elements", i, len(pair))
		}
		entries = append(entries, [2]json.RawMessage{pair[0], pair[1]})
	}
	return entries, nil
}
