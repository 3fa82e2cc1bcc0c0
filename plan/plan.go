// Package plan はフィールドごとの処理規則を型ごとに一度だけ組み立てる。
//
// Plan は不変で、同じ型・方向・親のデフォルトに対してはキャッシュされたものが
// 共有される。エンコード/デコードの実行側は Plan を再生するだけで、
// 型の解析やメタデータの探索は行わない。
package plan

import (
	"reflect"

	"github.com/Yamashou/jsoncoder/descriptor"
	"github.com/Yamashou/jsoncoder/strategy"
)

// Direction selects which half of the field metadata a plan uses.
type Direction int

const (
	Encode Direction = iota
	Decode
)

func (d Direction) String() string {
	if d == Decode {
		return "decode"
	}
	return "encode"
}

// Mode is how a FieldUnit moves its value. Exactly one is active per unit.
type Mode int

const (
	// ModeDirect passes a scalar (or a raw value) through, optionally converted.
	ModeDirect Mode = iota
	// ModeNested recurses into a structured value with Sub.
	ModeNested
	// ModeList walks a slice according to List.
	ModeList
)

func (m Mode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	case ModeNested:
		return "nested"
	case ModeList:
		return "list"
	default:
		return "unknown"
	}
}

// ElementKind classifies the elements of a list field.
type ElementKind int

const (
	ElementPrimitive ElementKind = iota
	ElementRaw
	ElementStruct
	// ElementConverted elements go through the unit's value converter one by
	// one, with no kind check.
	ElementConverted
)

func (k ElementKind) String() string {
	switch k {
	case ElementPrimitive:
		return "primitive"
	case ElementRaw:
		return "raw"
	case ElementStruct:
		return "struct"
	case ElementConverted:
		return "converted"
	default:
		return "unknown"
	}
}

// ListElementType is the resolved content of a list field.
type ListElementType struct {
	Kind      ElementKind
	Primitive descriptor.PrimitiveKind
	// Elem is the Go element type of the slice.
	Elem reflect.Type
	// Struct is the element struct type for ElementStruct. Elem is either
	// Struct, *Struct or an empty interface.
	Struct reflect.Type
	Plan   *Plan
}

// FieldUnit is one compiled field rule.
type FieldUnit struct {
	Name  string
	Index int
	Key   string
	Mode  Mode
	// Type is the declared Go type of the field.
	Type reflect.Type
	// Pointer is set when Type is a pointer to the handled value.
	Pointer  bool
	Nullable bool

	// Primitive is the scalar kind of a direct unit; PrimitiveInvalid for raw
	// and converted units.
	Primitive descriptor.PrimitiveKind
	Raw       bool

	// EncodeFilter is consulted per value on encode plans.
	EncodeFilter strategy.EncodeFilter
	// DecodeAllowed is always true on a compiled decode plan: units the
	// decode filter rejects are left out. It is kept so callers can build
	// plans by hand.
	DecodeAllowed bool

	EncodeConverter strategy.EncodeConverter
	DecodeConverter strategy.DecodeConverter

	List *ListElementType
	Sub  *Plan
}

// Plan is the compiled, immutable codec of one struct type in one direction.
type Plan struct {
	Type      reflect.Type
	Name      string
	Direction Direction
	Choice    bool
	Units     []FieldUnit
}

// Defaults are the key converter and filters inherited from the parent
// field, or set on the coder. Type metadata overrides them.
type Defaults struct {
	KeyConverter strategy.KeyConverter
	EncodeFilter strategy.EncodeFilter
	DecodeFilter strategy.DecodeFilter
}
