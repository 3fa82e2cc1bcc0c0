package plan

import (
	"reflect"
	"strings"

	"github.com/Yamashou/jsoncoder/annotation"
	"github.com/Yamashou/jsoncoder/descriptor"
	"github.com/Yamashou/jsoncoder/errors"
)

// resolveList decides what the elements of list field f are. In order: an
// explicit hint, an @elem annotation in the field documentation, the static
// Go element type. A converted list skips resolution; its elements are
// handed to the converter as they are.
func (c *Compiler) resolveList(d *descriptor.Descriptor, f descriptor.Field, converted bool, dir Direction, inherited Defaults, stack []reflect.Type, path []string) (*ListElementType, error) {
	elem := f.Elem().Elem()

	if converted {
		return &ListElementType{Kind: ElementConverted, Elem: elem}, nil
	}

	hint, source := f.Meta.ListHint, "hint"
	if hint == "" {
		name, found, err := annotation.ParseElem(f.Doc)
		if err != nil {
			return nil, errors.New(errors.PhaseCompile, errors.KindMalformedAnnotation).
				Path(path...).
				Type(d.Name).
				Cause(err).
				Detail("cannot read list element type of field %s", f.Name).
				Build()
		}
		if found {
			hint, source = name, "annotation"
		}
	}

	var (
		let *ListElementType
		err error
	)
	if hint != "" {
		let, err = c.fromHint(d, hint, source, elem, path)
	} else {
		let, err = fromStatic(d, f, elem, path)
	}
	if err != nil {
		return nil, err
	}

	if let.Kind == ElementStruct {
		let.Plan, err = c.compile(let.Struct, dir, inherited, stack, append(path, "[]"))
		if err != nil {
			return nil, err
		}
	}
	return let, nil
}

func (c *Compiler) fromHint(d *descriptor.Descriptor, hint, source string, elem reflect.Type, path []string) (*ListElementType, error) {
	anyElem := isEmptyInterface(elem)

	if descriptor.IsRawHint(hint) {
		if !anyElem {
			return nil, hintMismatch(d, hint, source, elem, path)
		}
		return &ListElementType{Kind: ElementRaw, Elem: elem}, nil
	}

	if kind, ok := descriptor.ParsePrimitive(hint); ok {
		if !anyElem && descriptor.PrimitiveOf(elem) != kind {
			return nil, hintMismatch(d, hint, source, elem, path)
		}
		return &ListElementType{Kind: ElementPrimitive, Primitive: kind, Elem: elem}, nil
	}

	name := qualify(hint, d.Scope)
	st, ok := c.provider.Lookup(name)
	if !ok {
		return nil, errors.UnknownType(path, name)
	}
	if !anyElem && elem != st && elem != reflect.PointerTo(st) {
		return nil, hintMismatch(d, hint, source, elem, path)
	}
	return &ListElementType{Kind: ElementStruct, Elem: elem, Struct: st}, nil
}

func fromStatic(d *descriptor.Descriptor, f descriptor.Field, elem reflect.Type, path []string) (*ListElementType, error) {
	if isEmptyInterface(elem) {
		return nil, errors.New(errors.PhaseCompile, errors.KindMissingListType).
			Path(path...).
			Type(d.Name).
			Detail("field %s needs a list hint or an %s annotation", f.Name, annotation.Tag).
			Build()
	}
	if kind := descriptor.PrimitiveOf(elem); kind != descriptor.PrimitiveInvalid {
		return &ListElementType{Kind: ElementPrimitive, Primitive: kind, Elem: elem}, nil
	}
	st := elem
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() == reflect.Struct {
		return &ListElementType{Kind: ElementStruct, Elem: elem, Struct: st}, nil
	}
	return nil, errors.Unsupported(append(path, "[]"), elem.String())
}

// qualify resolves a type name against the package of the enclosing type.
// A bare name and a name qualified with the last element of that package
// (shop.Item inside example.com/shop) belong to it; any other name must
// carry the full import path (example.com/other.Item).
func qualify(name, scope string) string {
	if scope == "" || strings.Contains(name, "/") {
		return name
	}
	pkg, typeName, found := strings.Cut(name, ".")
	if !found {
		return scope + "." + name
	}
	if pkg == scope[strings.LastIndex(scope, "/")+1:] {
		return scope + "." + typeName
	}
	return name
}

func isEmptyInterface(t reflect.Type) bool {
	return t.Kind() == reflect.Interface && t.NumMethod() == 0
}

func hintMismatch(d *descriptor.Descriptor, hint, source string, elem reflect.Type, path []string) error {
	return errors.New(errors.PhaseCompile, errors.KindInvalidTag).
		Path(path...).
		Type(d.Name).
		Detail("list %s %q does not fit element type %s", source, hint, elem).
		Build()
}
