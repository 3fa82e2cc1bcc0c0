package jsontree

import (
	"fmt"

	"github.com/go-json-experiment/json"
)

// FromAny converts an arbitrary Go value into a tree using the json package.
// Map keys are sorted so the output is deterministic.
func FromAny(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case int:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case float64:
		if n, ok := Float(t, 64); ok {
			return n, nil
		}
		return nil, fmt.Errorf("unsupported float value %v", t)
	case []any:
		arr := make(Array, 0, len(t))
		for _, e := range t {
			ev, err := FromAny(e)
			if err != nil {
				return nil, err
			}
			arr = append(arr, ev)
		}
		return arr, nil
	}

	data, err := json.Marshal(v, json.Deterministic(true))
	if err != nil {
		return nil, fmt.Errorf("marshal raw value: %w", err)
	}
	return Parse(data, 0)
}

// ToAny converts a tree into plain Go values: nil, bool, string, int64 for
// integer literals that fit, float64 for other numbers, []any and
// map[string]any.
func ToAny(v Value) any {
	switch t := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(t)
	case String:
		return string(t)
	case Number:
		if t.Kind() == KindInteger {
			if i, err := t.Int64(); err == nil {
				return i
			}
		}
		// out of range literals come back as ±Inf
		f, _ := t.Float64()
		return f
	case Array:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = ToAny(e)
		}
		return out
	case *Object:
		out := make(map[string]any, t.Len())
		for _, m := range t.Members() {
			out[m.Key] = ToAny(m.Value)
		}
		return out
	default:
		return nil
	}
}
