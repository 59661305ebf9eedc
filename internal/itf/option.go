package itf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Option tags.
const (
	TagSome = "Some"
	TagNone = "None"
)

// Option is a tagged optional value: {"tag": "Some", "value": X} or
// {"tag": "None", ...}. Value holds X undecoded.
type Option struct {
	Some  bool
	Value json.RawMessage
}

// Some wraps v as a present option. Integers are stored bare, which
// DecodeBigInt accepts.
func Some(v any) (Option, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Option{}, fmt.Errorf("option: %w", err)
	}
	return Option{Some: true, Value: raw}, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Option) UnmarshalJSON(data []byte) error {
	var tagged struct {
		Tag   string          `json:"tag"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("option: %w", err)
	}
	switch tagged.Tag {
	case TagSome:
		if len(tagged.Value) == 0 {
			return fmt.Errorf("option: Some without value")
		}
		o.Some = true
		o.Value = tagged.Value
	case TagNone:
		o.Some = false
		o.Value = nil
	default:
		return fmt.Errorf("option: unknown tag %q", tagged.Tag)
	}
	return nil
}

// StringValue decodes a present option as a string. A None option yields
// "" and no error, which is how an absent expected error is read.
func (o Option) StringValue() (string, error) {
	if !o.Some {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(o.Value, &s); err != nil {
		return "", fmt.Errorf("expected string, got %s", o.Value)
	}
	return s, nil
}

// compact returns the value as compact JSON text, or "" for None.
func (o Option) compact() string {
	if !o.Some {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, o.Value); err != nil {
		return string(o.Value)
	}
	return buf.String()
}

// Picks are the arguments the model chose for a step's action, keyed by
// parameter name.
type Picks map[string]Option

// NewPicks builds picks from plain values, each wrapped with Some.
func NewPicks(values map[string]any) (Picks, error) {
	p := make(Picks, len(values))
	for name, v := range values {
		opt, err := Some(v)
		if err != nil {
			return nil, fmt.Errorf("pick %q: %w", name, err)
		}
		p[name] = opt
	}
	return p, nil
}

// Names returns the pick names in sorted order.
func (p Picks) Names() []string {
	return slices.Sorted(maps.Keys(p))
}

func (p Picks) lookup(name string) (Option, error) {
	opt, ok := p[name]
	if !ok {
		return Option{}, fmt.Errorf("pick %q: missing", name)
	}
	if !opt.Some {
		return Option{}, fmt.Errorf("pick %q: not chosen (None)", name)
	}
	return opt, nil
}

// String returns the named pick as a string.
func (p Picks) String(name string) (string, error) {
	opt, err := p.lookup(name)
	if err != nil {
		return "", err
	}
	s, err := opt.StringValue()
	if err != nil {
		return "", fmt.Errorf("pick %q: %w", name, err)
	}
	return s, nil
}

// Int returns the named pick as an integer.
func (p Picks) Int(name string) (int64, error) {
	opt, err := p.lookup(name)
	if err != nil {
		return 0, err
	}
	n, err := DecodeBigInt(opt.Value)
	if err != nil {
		return 0, fmt.Errorf("pick %q: %w", name, err)
	}
	return n, nil
}
