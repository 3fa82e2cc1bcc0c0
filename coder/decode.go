package coder

import (
	"reflect"
	"slices"
	"strconv"

	"github.com/Yamashou/jsoncoder/choice"
	"github.com/Yamashou/jsoncoder/descriptor"
	"github.com/Yamashou/jsoncoder/errors"
	"github.com/Yamashou/jsoncoder/jsontree"
	"github.com/Yamashou/jsoncoder/plan"
)

type decoder struct {
	strictChoices bool
}

// DecodeValue builds a new value of p's struct type from node. The returned
// value is addressable.
func DecodeValue(node jsontree.Value, p *plan.Plan) (reflect.Value, error) {
	return decoder{}.decodeStruct(node, p, nil)
}

func (d decoder) decodeStruct(node jsontree.Value, p *plan.Plan, path []string) (reflect.Value, error) {
	obj, ok := node.(*jsontree.Object)
	if !ok || obj == nil {
		return reflect.Value{}, errors.TypeMismatch(errors.PhaseDecode, path, jsontree.KindOf(node).String(), "object")
	}

	v := reflect.New(p.Type).Elem()
	for i := range p.Units {
		u := &p.Units[i]
		if !u.DecodeAllowed {
			continue
		}
		fieldPath := append(slices.Clip(path), u.Name)

		child, ok := obj.Get(u.Key)
		if !ok {
			if u.Nullable {
				continue
			}
			return reflect.Value{}, errors.FieldMissing(fieldPath, u.Key, u.Name)
		}
		if err := d.decodeUnit(u, child, v.Field(u.Index), fieldPath); err != nil {
			return reflect.Value{}, err
		}
	}

	if p.Choice && d.strictChoices {
		if err := choice.Validate(v.Addr().Interface()); err != nil {
			if e, ok := err.(*errors.Error); ok {
				e.Path = path
			}
			return reflect.Value{}, err
		}
	}
	return v, nil
}

func (d decoder) decodeUnit(u *plan.FieldUnit, node jsontree.Value, fv reflect.Value, path []string) error {
	if _, isNull := node.(jsontree.Null); isNull && u.DecodeConverter == nil {
		if u.Nullable || u.Mode == plan.ModeList || u.Raw {
			return nil
		}
		return errors.TypeMismatch(errors.PhaseDecode, path, "null", expectedKind(u))
	}

	switch u.Mode {
	case plan.ModeDirect:
		switch {
		case u.DecodeConverter != nil:
			return convertInto(u, node, fv, path)
		case u.Raw:
			if raw := jsontree.ToAny(node); raw != nil {
				fv.Set(reflect.ValueOf(raw))
			}
			return nil
		default:
			sv, err := decodeScalar(node, derefType(fv.Type()), u.Primitive, path)
			if err != nil {
				return err
			}
			setMaybePointer(fv, sv)
			return nil
		}
	case plan.ModeNested:
		sv, err := d.decodeStruct(node, u.Sub, path)
		if err != nil {
			return err
		}
		setMaybePointer(fv, sv)
		return nil
	case plan.ModeList:
		return d.decodeList(u, node, fv, path)
	}
	return errors.Internal(errors.PhaseDecode, path, "unit %s has mode %v", u.Name, u.Mode)
}

func (d decoder) decodeList(u *plan.FieldUnit, node jsontree.Value, fv reflect.Value, path []string) error {
	arr, ok := node.(jsontree.Array)
	if !ok {
		return errors.TypeMismatch(errors.PhaseDecode, path, jsontree.KindOf(node).String(), "array")
	}

	let := u.List
	st := derefType(fv.Type())
	out := reflect.MakeSlice(st, 0, len(arr))
	for i, e := range arr {
		epath := append(slices.Clip(path), "["+strconv.Itoa(i)+"]")
		ev, err := d.decodeElement(u, let, e, epath)
		if err != nil {
			return err
		}
		out = reflect.Append(out, ev)
	}
	setMaybePointer(fv, out)
	return nil
}

func (d decoder) decodeElement(u *plan.FieldUnit, let *plan.ListElementType, node jsontree.Value, path []string) (reflect.Value, error) {
	switch let.Kind {
	case plan.ElementRaw:
		return valueOrZero(jsontree.ToAny(node), let.Elem), nil

	case plan.ElementPrimitive:
		if !elementKindMatches(node, let.Primitive) {
			return reflect.Value{}, errors.TypeMismatch(errors.PhaseDecode, path, jsontree.KindOf(node).String(), let.Primitive.String())
		}
		if let.Elem.Kind() == reflect.Interface {
			raw := jsontree.ToAny(node)
			if let.Primitive == descriptor.PrimitiveFloat {
				raw, _ = node.(jsontree.Number).Float64()
			}
			return valueOrZero(raw, let.Elem), nil
		}
		return decodeScalar(node, let.Elem, let.Primitive, path)

	case plan.ElementConverted:
		out, err := u.DecodeConverter.DecodeValue(jsontree.ToAny(node))
		if err != nil {
			return reflect.Value{}, converterError(errors.PhaseDecode, path, err)
		}
		return assignable(out, let.Elem, path)

	case plan.ElementStruct:
		if _, isNull := node.(jsontree.Null); isNull {
			switch let.Elem.Kind() {
			case reflect.Pointer, reflect.Interface:
				return reflect.Zero(let.Elem), nil
			}
			return reflect.Value{}, errors.TypeMismatch(errors.PhaseDecode, path, "null", "object")
		}
		sv, err := d.decodeStruct(node, let.Plan, path)
		if err != nil {
			return reflect.Value{}, err
		}
		if let.Elem.Kind() == reflect.Pointer {
			return sv.Addr(), nil
		}
		return sv, nil
	}
	return reflect.Value{}, errors.Internal(errors.PhaseDecode, path, "list element kind %v", let.Kind)
}

// decodeScalar reads node into a new value of type t. Integers must be
// integer literals that fit t; floats accept any number.
func decodeScalar(node jsontree.Value, t reflect.Type, kind descriptor.PrimitiveKind, path []string) (reflect.Value, error) {
	if !kindMatches(node, kind) {
		return reflect.Value{}, errors.TypeMismatch(errors.PhaseDecode, path, jsontree.KindOf(node).String(), kind.String())
	}

	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Bool:
		v.SetBool(bool(node.(jsontree.Bool)))
	case reflect.String:
		v.SetString(string(node.(jsontree.String)))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := node.(jsontree.Number).Int64()
		if err != nil || v.OverflowInt(n) {
			return reflect.Value{}, outOfRange(node, t, path)
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := node.(jsontree.Number).Uint64()
		if err != nil || v.OverflowUint(n) {
			return reflect.Value{}, outOfRange(node, t, path)
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := node.(jsontree.Number).Float64()
		if err != nil || v.OverflowFloat(f) {
			return reflect.Value{}, outOfRange(node, t, path)
		}
		v.SetFloat(f)
	default:
		return reflect.Value{}, errors.Internal(errors.PhaseDecode, path, "%s is not a scalar", t)
	}
	return v, nil
}

func kindMatches(node jsontree.Value, kind descriptor.PrimitiveKind) bool {
	got := jsontree.KindOf(node)
	switch kind {
	case descriptor.PrimitiveBool:
		return got == jsontree.KindBool
	case descriptor.PrimitiveString:
		return got == jsontree.KindString
	case descriptor.PrimitiveInt:
		return got == jsontree.KindInteger
	case descriptor.PrimitiveFloat:
		return got == jsontree.KindInteger || got == jsontree.KindDouble
	}
	return false
}

// elementKindMatches is kindMatches without the integer to double widening:
// list elements must carry exactly the declared kind.
func elementKindMatches(node jsontree.Value, kind descriptor.PrimitiveKind) bool {
	if kind == descriptor.PrimitiveFloat {
		return jsontree.KindOf(node) == jsontree.KindDouble
	}
	return kindMatches(node, kind)
}

func outOfRange(node jsontree.Value, t reflect.Type, path []string) error {
	return errors.New(errors.PhaseDecode, errors.KindInvalidInput).
		Path(path...).
		Type(t.String()).
		Value(node).
		Detail("%s does not fit %s", node, t).
		Build()
}

func convertInto(u *plan.FieldUnit, node jsontree.Value, fv reflect.Value, path []string) error {
	out, err := u.DecodeConverter.DecodeValue(jsontree.ToAny(node))
	if err != nil {
		return converterError(errors.PhaseDecode, path, err)
	}
	if out == nil {
		return nil
	}
	v, err := assignable(out, fv.Type(), path)
	if err != nil {
		return err
	}
	fv.Set(v)
	return nil
}

// assignable turns a converter result into a value of type t, allocating a
// pointer or converting between numeric kinds when needed.
func assignable(out any, t reflect.Type, path []string) (reflect.Value, error) {
	if out == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(out)
	switch {
	case rv.Type().AssignableTo(t):
		return rv, nil
	case t.Kind() == reflect.Pointer:
		ev, err := assignable(out, t.Elem(), path)
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(ev)
		return p, nil
	case sameFamily(rv.Kind(), t.Kind()) && rv.Type().ConvertibleTo(t):
		cv := rv.Convert(t)
		if !reflect.DeepEqual(cv.Convert(rv.Type()).Interface(), out) {
			return reflect.Value{}, errors.New(errors.PhaseDecode, errors.KindConverter).
				Path(path...).
				Value(out).
				Detail("converter result %v does not fit %s", out, t).
				Build()
		}
		return cv, nil
	}
	return reflect.Value{}, errors.New(errors.PhaseDecode, errors.KindConverter).
		Path(path...).
		Value(out).
		Type(t.String()).
		Detail("converter returned %T", out).
		Build()
}

func sameFamily(a, b reflect.Kind) bool {
	family := func(k reflect.Kind) int {
		switch {
		case k == reflect.Bool:
			return 1
		case k == reflect.String:
			return 2
		case k >= reflect.Int && k <= reflect.Float64:
			return 3
		}
		return 0
	}
	return family(a) != 0 && family(a) == family(b)
}

func valueOrZero(raw any, t reflect.Type) reflect.Value {
	if raw == nil {
		return reflect.Zero(t)
	}
	return reflect.ValueOf(raw)
}

func setMaybePointer(fv, v reflect.Value) {
	if fv.Kind() == reflect.Pointer && v.Kind() != reflect.Pointer {
		p := reflect.New(fv.Type().Elem())
		p.Elem().Set(v)
		fv.Set(p)
		return
	}
	fv.Set(v)
}

func derefType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

func expectedKind(u *plan.FieldUnit) string {
	if u.Mode == plan.ModeNested {
		return "object"
	}
	return u.Primitive.String()
}
