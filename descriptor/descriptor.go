// Package descriptor describes Go struct types to the plan compiler: their
// fields in declaration order, each field's value category and the metadata
// attached to it through struct tags, explicit configuration or generated
// documentation.
package descriptor

import (
	"reflect"
	"strings"

	"github.com/Yamashou/jsoncoder/strategy"
)

// Category is the declared value category of a field.
type Category int

const (
	CategoryUnsupported Category = iota
	CategoryPrimitive
	CategoryStruct
	CategoryList
	CategoryRaw
)

func (c Category) String() string {
	switch c {
	case CategoryPrimitive:
		return "primitive"
	case CategoryStruct:
		return "struct"
	case CategoryList:
		return "list"
	case CategoryRaw:
		return "raw"
	default:
		return "unsupported"
	}
}

// PrimitiveKind is the JSON scalar kind a primitive field holds.
type PrimitiveKind int

const (
	PrimitiveInvalid PrimitiveKind = iota
	PrimitiveBool
	PrimitiveString
	PrimitiveInt
	PrimitiveFloat
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimitiveBool:
		return "boolean"
	case PrimitiveString:
		return "string"
	case PrimitiveInt:
		return "integer"
	case PrimitiveFloat:
		return "double"
	default:
		return "invalid"
	}
}

// PrimitiveOf reports the primitive kind of t, or PrimitiveInvalid.
func PrimitiveOf(t reflect.Type) PrimitiveKind {
	switch t.Kind() {
	case reflect.Bool:
		return PrimitiveBool
	case reflect.String:
		return PrimitiveString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return PrimitiveInt
	case reflect.Float32, reflect.Float64:
		return PrimitiveFloat
	default:
		return PrimitiveInvalid
	}
}

// ParsePrimitive accepts the short and long primitive names used in list hints.
func ParsePrimitive(name string) (PrimitiveKind, bool) {
	switch strings.ToLower(name) {
	case "bool", "boolean":
		return PrimitiveBool, true
	case "string":
		return PrimitiveString, true
	case "int", "integer":
		return PrimitiveInt, true
	case "float", "double":
		return PrimitiveFloat, true
	default:
		return PrimitiveInvalid, false
	}
}

// IsRawHint reports whether a list hint names the untyped pass-through marker.
func IsRawHint(name string) bool {
	switch strings.ToLower(name) {
	case "raw", "mixed", "any":
		return true
	}
	return false
}

// FieldMeta is the metadata attached to one field. Zero values mean "not set".
type FieldMeta struct {
	Key             strategy.KeyConverter
	EncodeFilter    strategy.EncodeFilter
	DecodeFilter    strategy.DecodeFilter
	EncodeConverter strategy.EncodeConverter
	DecodeConverter strategy.DecodeConverter
	ListHint        string
	Optional        bool
}

// merge overlays the set values of o on m.
func (m FieldMeta) merge(o FieldMeta) FieldMeta {
	if o.Key != nil {
		m.Key = o.Key
	}
	if o.EncodeFilter != nil {
		m.EncodeFilter = o.EncodeFilter
	}
	if o.DecodeFilter != nil {
		m.DecodeFilter = o.DecodeFilter
	}
	if o.EncodeConverter != nil {
		m.EncodeConverter = o.EncodeConverter
	}
	if o.DecodeConverter != nil {
		m.DecodeConverter = o.DecodeConverter
	}
	if o.ListHint != "" {
		m.ListHint = o.ListHint
	}
	m.Optional = m.Optional || o.Optional
	return m
}

// TypeMeta is the metadata attached to a struct type.
type TypeMeta struct {
	KeyConverter strategy.KeyConverter
	EncodeFilter strategy.EncodeFilter
	DecodeFilter strategy.DecodeFilter
}

func (m TypeMeta) merge(o TypeMeta) TypeMeta {
	if o.KeyConverter != nil {
		m.KeyConverter = o.KeyConverter
	}
	if o.EncodeFilter != nil {
		m.EncodeFilter = o.EncodeFilter
	}
	if o.DecodeFilter != nil {
		m.DecodeFilter = o.DecodeFilter
	}
	return m
}

// Field describes one exported struct field.
type Field struct {
	Name     string
	Index    int
	Type     reflect.Type
	Category Category
	// Nullable fields may be absent or null in the input.
	Nullable bool
	Meta     FieldMeta
	Doc      string
}

// Elem returns the field type with one level of pointer removed.
func (f Field) Elem() reflect.Type {
	if f.Type.Kind() == reflect.Pointer {
		return f.Type.Elem()
	}
	return f.Type
}

// Descriptor describes a struct type.
type Descriptor struct {
	Type reflect.Type
	// Name is the fully qualified name, "pkgpath.Name".
	Name string
	// Scope is the package path bare type names are resolved against.
	Scope  string
	Choice bool
	Meta   TypeMeta
	Fields []Field
}

// Provider is what the plan compiler needs to know about types.
type Provider interface {
	Describe(t reflect.Type) (*Descriptor, error)
	Lookup(name string) (reflect.Type, bool)
	New(t reflect.Type) reflect.Value
}

// Choice marks a struct as a tagged union when embedded. Every other
// field of the struct is an alternative and should be nullable.
type Choice struct{}

var choiceType = reflect.TypeFor[Choice]()

// IsChoice reports whether t (or *t) embeds Choice.
func IsChoice(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if f.Anonymous && f.Type == choiceType {
			return true
		}
	}
	return false
}

// TypeName returns the qualified name the registry uses for t.
func TypeName(t reflect.Type) string {
	if t.Name() == "" {
		return t.String()
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

func categorize(t reflect.Type) (Category, bool) {
	nullable := false
	if t.Kind() == reflect.Pointer {
		nullable = true
		t = t.Elem()
	}
	if PrimitiveOf(t) != PrimitiveInvalid {
		return CategoryPrimitive, nullable
	}
	switch t.Kind() {
	case reflect.Slice:
		return CategoryList, nullable
	case reflect.Struct:
		return CategoryStruct, nullable
	case reflect.Interface:
		if t.NumMethod() == 0 && !nullable {
			return CategoryRaw, true
		}
	}
	return CategoryUnsupported, nullable
}
