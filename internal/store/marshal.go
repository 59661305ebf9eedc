package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/bankcheck/internal/canon"
)

// marshalConfig converts a run's resolved configuration to canonical JSON
// TEXT for storage.
func marshalConfig(cfg map[string]any) (string, error) {
	if cfg == nil {
		cfg = map[string]any{}
	}
	data, err := canon.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(data), nil
}

// unmarshalConfig parses stored config TEXT. Numbers come back as int64;
// canonical JSON never holds floats, so a fractional number is an error.
func unmarshalConfig(data string) (map[string]any, error) {
	if data == "" || data == "{}" {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	for k, v := range m {
		n, ok := v.(json.Number)
		if !ok {
			continue
		}
		i, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("unmarshal config: %s: not an integer: %s", k, n)
		}
		m[k] = i
	}
	return m, nil
}
