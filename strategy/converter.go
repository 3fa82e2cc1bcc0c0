package strategy

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// AsInt coerces a value into an int64 in both directions.
// Floats are truncated, numeric strings are parsed, booleans become 0 or 1.
type AsInt struct{}

func (AsInt) EncodeValue(v any) (any, error) { return toInt(v) }
func (AsInt) DecodeValue(v any) (any, error) { return toInt(v) }

// AsFloat coerces a value into a float64 in both directions.
type AsFloat struct{}

func (AsFloat) EncodeValue(v any) (any, error) { return toFloat(v) }
func (AsFloat) DecodeValue(v any) (any, error) { return toFloat(v) }

// ForceString writes the value as its string form; on decode any scalar
// becomes a string.
type ForceString struct{}

func (ForceString) EncodeValue(v any) (any, error) { return toString(v) }
func (ForceString) DecodeValue(v any) (any, error) { return toString(v) }

// Time converts between time.Time and a formatted string.
// An empty Layout means time.RFC3339Nano.
type Time struct {
	Layout string
}

func (t Time) layout() string {
	if t.Layout == "" {
		return time.RFC3339Nano
	}
	return t.Layout
}

func (t Time) EncodeValue(v any) (any, error) {
	switch tv := v.(type) {
	case time.Time:
		return tv.Format(t.layout()), nil
	case *time.Time:
		if tv == nil {
			return nil, nil
		}
		return tv.Format(t.layout()), nil
	default:
		return nil, fmt.Errorf("time converter: cannot encode %T", v)
	}
}

func (t Time) DecodeValue(v any) (any, error) {
	switch tv := v.(type) {
	case nil:
		return nil, nil
	case string:
		parsed, err := time.Parse(t.layout(), tv)
		if err != nil {
			return nil, fmt.Errorf("time converter: %w", err)
		}
		return parsed, nil
	case int64:
		return time.Unix(tv, 0).UTC(), nil
	default:
		return nil, fmt.Errorf("time converter: cannot decode %T", v)
	}
}

func toInt(v any) (any, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Invalid:
		return nil, nil
	case reflect.Bool:
		if rv.Bool() {
			return int64(1), nil
		}
		return int64(0), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("as int: %d overflows int64", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
			return nil, fmt.Errorf("as int: %v out of range", f)
		}
		return int64(f), nil
	case reflect.String:
		s := strings.TrimSpace(rv.String())
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("as int: %q is not a number", rv.String())
		}
		return toInt(f)
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
		return toInt(rv.Elem().Interface())
	default:
		return nil, fmt.Errorf("as int: unsupported %T", v)
	}
}

func toFloat(v any) (any, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Invalid:
		return nil, nil
	case reflect.Bool:
		if rv.Bool() {
			return float64(1), nil
		}
		return float64(0), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(rv.String()), 64)
		if err != nil {
			return nil, fmt.Errorf("as float: %q is not a number", rv.String())
		}
		return f, nil
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
		return toFloat(rv.Elem().Interface())
	default:
		return nil, fmt.Errorf("as float: unsupported %T", v)
	}
}

func toString(v any) (any, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Invalid:
		return nil, nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64), nil
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
		return toString(rv.Elem().Interface())
	default:
		if s, ok := v.(fmt.Stringer); ok {
			return s.String(), nil
		}
		return nil, fmt.Errorf("force string: unsupported %T", v)
	}
}
