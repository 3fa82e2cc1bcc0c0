// Package choice works with tagged unions expressed as structs that embed
// descriptor.Choice and hold one nullable field per alternative:
//
//	type Shape struct {
//		descriptor.Choice
//		Circle *Circle
//		Square *Square
//	}
//
// At most one alternative is expected to be set. Nothing enforces that when
// values are built by hand; Validate checks it.
package choice

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/Yamashou/jsoncoder/descriptor"
	"github.com/Yamashou/jsoncoder/errors"
)

// Selected returns the type of the first set alternative of v, in field
// order. Pointer alternatives report their element type. ok is false when
// no alternative is set or v is not a choice.
func Selected(v any) (t reflect.Type, ok bool) {
	rv, ok := choiceValue(v)
	if !ok {
		return nil, false
	}
	for _, i := range alternatives(rv.Type()) {
		fv := rv.Field(i)
		if !isSet(fv) {
			continue
		}
		switch fv.Kind() {
		case reflect.Pointer:
			return fv.Type().Elem(), true
		case reflect.Interface:
			return fv.Elem().Type(), true
		default:
			return fv.Type(), true
		}
	}
	return nil, false
}

// FromVariant builds a C with the alternative whose declared type matches
// alt set and every other alternative left nil. A *T field accepts both T
// and *T. ok is false, and no error is implied, when nothing matches.
func FromVariant[C any](alt any) (*C, bool) {
	ct := reflect.TypeFor[C]()
	if alt == nil || !descriptor.IsChoice(ct) || ct.Kind() != reflect.Struct {
		return nil, false
	}
	at := reflect.TypeOf(alt)
	av := reflect.ValueOf(alt)

	out := new(C)
	rv := reflect.ValueOf(out).Elem()
	for _, i := range alternatives(ct) {
		fv := rv.Field(i)
		ft := fv.Type()
		switch {
		case at == ft:
			fv.Set(av)
		case ft.Kind() == reflect.Pointer && at == ft.Elem():
			p := reflect.New(at)
			p.Elem().Set(av)
			fv.Set(p)
		case ft.Kind() == reflect.Interface && ft.NumMethod() > 0 && at.Implements(ft):
			fv.Set(av)
		default:
			continue
		}
		return out, true
	}
	return nil, false
}

// Validate fails with an ambiguous_variant error when more than one
// alternative of v is set.
func Validate(v any) error {
	rv, ok := choiceValue(v)
	if !ok {
		return errors.New(errors.PhaseDecode, errors.KindUnsupportedType).
			Type(fmt.Sprintf("%T", v)).
			Detail("not a choice type").
			Build()
	}

	var set []string
	for _, i := range alternatives(rv.Type()) {
		if isSet(rv.Field(i)) {
			set = append(set, rv.Type().Field(i).Name)
		}
	}
	if len(set) > 1 {
		return errors.New(errors.PhaseDecode, errors.KindAmbiguousVariant).
			Type(descriptor.TypeName(rv.Type())).
			Value(set).
			Detail("%d alternatives set: %s", len(set), strings.Join(set, ", ")).
			Build()
	}
	return nil
}

func choiceValue(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct || !descriptor.IsChoice(rv.Type()) {
		return reflect.Value{}, false
	}
	return rv, true
}

// alternatives lists the field indexes of the alternatives of t.
func alternatives(t reflect.Type) []int {
	var idx []int
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() || (f.Anonymous && f.Type == reflect.TypeFor[descriptor.Choice]()) {
			continue
		}
		idx = append(idx, i)
	}
	return idx
}

func isSet(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
		return !v.IsNil()
	default:
		return !v.IsZero()
	}
}
