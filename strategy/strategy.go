// Package strategy defines the pluggable strategies consulted while compiling
// and executing a plan, together with the stock implementations.
//
// Strategies must be comparable values (structs without slices, maps or
// funcs) when they are used as coder-level defaults, because compiled plans
// are cached by them.
package strategy

// KeyConverter maps a Go field name to its JSON key.
type KeyConverter interface {
	Key(fieldName string) string
}

// EncodeFilter decides per value whether a field is written.
type EncodeFilter interface {
	ShouldEncode(fieldName string, value any) bool
}

// DecodeFilter decides once per field whether it is read.
type DecodeFilter interface {
	ShouldDecode(fieldName string) bool
}

// EncodeConverter transforms a field value before it is written.
// The result must be representable as JSON.
type EncodeConverter interface {
	EncodeValue(v any) (any, error)
}

// DecodeConverter transforms a raw JSON scalar (nil, bool, string, int64,
// float64) into a value assignable to the field.
type DecodeConverter interface {
	DecodeValue(v any) (any, error)
}
