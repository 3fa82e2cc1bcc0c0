package coder

import (
	"reflect"
	"slices"
	"strconv"

	"github.com/Yamashou/jsoncoder/errors"
	"github.com/Yamashou/jsoncoder/jsontree"
	"github.com/Yamashou/jsoncoder/plan"
)

// EncodeValue turns struct value v into a JSON object by replaying p.
// A pointer to struct is accepted; a nil pointer encodes as null.
func EncodeValue(v reflect.Value, p *plan.Plan) (jsontree.Value, error) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return jsontree.Null{}, nil
		}
		v = v.Elem()
	}
	if v.Type() != p.Type {
		return nil, errors.Internal(errors.PhaseEncode, nil, "plan for %s used with %s", p.Type, v.Type())
	}
	return encodeStruct(v, p, nil)
}

func encodeStruct(v reflect.Value, p *plan.Plan, path []string) (*jsontree.Object, error) {
	obj := jsontree.NewObject(len(p.Units))
	for i := range p.Units {
		u := &p.Units[i]
		fv := v.Field(u.Index)
		value := filterValue(fv)

		if u.EncodeFilter != nil && !u.EncodeFilter.ShouldEncode(u.Name, value) {
			continue
		}
		if value == nil {
			obj.Set(u.Key, jsontree.Null{})
			continue
		}

		node, err := encodeUnit(u, indirect(fv), value, append(slices.Clip(path), u.Name))
		if err != nil {
			return nil, err
		}
		obj.Set(u.Key, node)
	}
	return obj, nil
}

func encodeUnit(u *plan.FieldUnit, fv reflect.Value, value any, path []string) (jsontree.Value, error) {
	switch u.Mode {
	case plan.ModeDirect:
		switch {
		case u.EncodeConverter != nil:
			out, err := u.EncodeConverter.EncodeValue(value)
			if err != nil {
				return nil, converterError(errors.PhaseEncode, path, err)
			}
			return fromAny(out, path)
		case u.Raw:
			return fromAny(value, path)
		default:
			return encodeScalar(fv, path)
		}
	case plan.ModeNested:
		return encodeStruct(fv, u.Sub, path)
	case plan.ModeList:
		return encodeList(u, fv, path)
	}
	return nil, errors.Internal(errors.PhaseEncode, path, "unit %s has mode %v", u.Name, u.Mode)
}

func encodeList(u *plan.FieldUnit, sv reflect.Value, path []string) (jsontree.Value, error) {
	let := u.List
	arr := make(jsontree.Array, 0, sv.Len())
	for i := range sv.Len() {
		ev := sv.Index(i)
		epath := append(slices.Clip(path), "["+strconv.Itoa(i)+"]")

		var (
			node jsontree.Value
			err  error
		)
		switch let.Kind {
		case plan.ElementRaw:
			node, err = fromAny(filterValue(ev), epath)
		case plan.ElementPrimitive:
			if ev.Kind() == reflect.Interface {
				node, err = fromAny(filterValue(ev), epath)
			} else {
				node, err = encodeScalar(ev, epath)
			}
		case plan.ElementConverted:
			var out any
			out, err = u.EncodeConverter.EncodeValue(filterValue(ev))
			if err != nil {
				return nil, converterError(errors.PhaseEncode, epath, err)
			}
			node, err = fromAny(out, epath)
		case plan.ElementStruct:
			node, err = encodeElement(ev, let, epath)
		default:
			err = errors.Internal(errors.PhaseEncode, epath, "list element kind %v", let.Kind)
		}
		if err != nil {
			return nil, err
		}
		arr = append(arr, node)
	}
	return arr, nil
}

func encodeElement(ev reflect.Value, let *plan.ListElementType, path []string) (jsontree.Value, error) {
	if ev.Kind() == reflect.Interface {
		if ev.IsNil() {
			return jsontree.Null{}, nil
		}
		ev = ev.Elem()
	}
	if ev.Kind() == reflect.Pointer {
		if ev.IsNil() {
			return jsontree.Null{}, nil
		}
		ev = ev.Elem()
	}
	if ev.Type() != let.Struct {
		return nil, errors.TypeMismatch(errors.PhaseEncode, path, ev.Type().String(), let.Struct.String())
	}
	return encodeStruct(ev, let.Plan, path)
}

func encodeScalar(v reflect.Value, path []string) (jsontree.Value, error) {
	switch v.Kind() {
	case reflect.Bool:
		return jsontree.Bool(v.Bool()), nil
	case reflect.String:
		return jsontree.String(v.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return jsontree.Int(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return jsontree.Uint(v.Uint()), nil
	case reflect.Float32, reflect.Float64:
		n, ok := jsontree.Float(v.Float(), v.Type().Bits())
		if !ok {
			return nil, errors.New(errors.PhaseEncode, errors.KindInvalidInput).
				Path(path...).
				Value(v.Float()).
				Detail("%v cannot be represented in JSON", v.Float()).
				Build()
		}
		return n, nil
	}
	return nil, errors.Internal(errors.PhaseEncode, path, "%s is not a scalar", v.Type())
}

// filterValue is what filters and converters see: nil for nil pointers,
// slices and interfaces, the pointed-to value otherwise.
func filterValue(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return filterValue(v.Elem())
	case reflect.Slice, reflect.Map:
		if v.IsNil() {
			return nil
		}
	}
	return v.Interface()
}

func indirect(v reflect.Value) reflect.Value {
	if v.Kind() == reflect.Pointer {
		return v.Elem()
	}
	return v
}

func fromAny(v any, path []string) (jsontree.Value, error) {
	node, err := jsontree.FromAny(v)
	if err != nil {
		return nil, errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Path(path...).
			Value(v).
			Cause(err).
			Detail("%T has no JSON form", v).
			Build()
	}
	return node, nil
}

func converterError(phase errors.Phase, path []string, err error) error {
	return errors.New(phase, errors.KindConverter).
		Path(path...).
		Cause(err).
		Detail("value converter failed").
		Build()
}
