// Package jsontree is the generic JSON value layer jsoncoder operates on.
//
// A Value is one of Null, Bool, Number, String, Array or *Object. Objects keep
// the insertion order of their members, numbers keep their literal text, so a
// parsed document can be written back without reordering keys or reformatting
// numbers. Text conversion is done by Parse and Marshal on top of jsontext.
package jsontree

import (
	"math"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json"
)

// Kind is the runtime kind of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInteger
	KindDouble
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a node of the JSON tree.
type Value interface {
	Kind() Kind
	isValue()
}

type (
	// Null is the JSON null literal.
	Null struct{}
	// Bool is a JSON boolean.
	Bool bool
	// Number is a JSON number kept as its literal text.
	Number string
	// String is a JSON string.
	String string
	// Array is an ordered JSON array.
	Array []Value
)

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (String) Kind() Kind { return KindString }
func (Array) Kind() Kind  { return KindArray }

// Kind reports KindInteger for literals without fraction or exponent.
func (n Number) Kind() Kind {
	if strings.ContainsAny(string(n), ".eE") {
		return KindDouble
	}
	return KindInteger
}

func (Null) isValue()    {}
func (Bool) isValue()    {}
func (Number) isValue()  {}
func (String) isValue()  {}
func (Array) isValue()   {}
func (*Object) isValue() {}

// Int creates an integer Number.
func Int(i int64) Number {
	return Number(strconv.FormatInt(i, 10))
}

// Uint creates an unsigned integer Number.
func Uint(u uint64) Number {
	return Number(strconv.FormatUint(u, 10))
}

// Float creates a double Number formatted the way json v2 writes floats:
// shortest form, plain digits between 1e-6 and 1e21, exponent otherwise.
// Integral values keep a ".0" on the mantissa so the literal stays a double
// when read back. NaN and infinities have no JSON representation and yield
// ok == false.
func Float(f float64, bitSize int) (n Number, ok bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	var (
		raw []byte
		err error
	)
	if bitSize == 32 {
		raw, err = json.Marshal(float32(f))
	} else {
		raw, err = json.Marshal(f)
	}
	if err != nil {
		return "", false
	}
	s := string(raw)
	if !strings.Contains(s, ".") {
		if i := strings.IndexAny(s, "eE"); i >= 0 {
			s = s[:i] + ".0" + s[i:]
		} else {
			s += ".0"
		}
	}
	return Number(s), true
}

// Int64 parses the literal as a signed integer.
func (n Number) Int64() (int64, error) {
	return strconv.ParseInt(string(n), 10, 64)
}

// Uint64 parses the literal as an unsigned integer.
func (n Number) Uint64() (uint64, error) {
	return strconv.ParseUint(string(n), 10, 64)
}

// Float64 parses the literal as a float.
func (n Number) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// Member is a key/value pair of an Object.
type Member struct {
	Key   string
	Value Value
}

// Object is a JSON object preserving member order.
type Object struct {
	members []Member
	index   map[string]int
}

// NewObject creates an empty object with room for n members.
func NewObject(n int) *Object {
	return &Object{
		members: make([]Member, 0, n),
		index:   make(map[string]int, n),
	}
}

// Kind implements Value.
func (*Object) Kind() Kind { return KindObject }

// Set adds or replaces a member. A replaced member keeps its position.
func (o *Object) Set(key string, v Value) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[key]; ok {
		o.members[i].Value = v
		return
	}
	o.index[key] = len(o.members)
	o.members = append(o.members, Member{Key: key, Value: v})
}

// Get returns the member value for key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.members[i].Value, true
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Len returns the number of members.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.members)
}

// Members returns the members in order. The slice must not be modified.
func (o *Object) Members() []Member {
	if o == nil {
		return nil
	}
	return o.members
}

// Keys returns the member keys in order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.Len())
	for _, m := range o.Members() {
		keys = append(keys, m.Key)
	}
	return keys
}

// KindOf returns the kind of v, treating a nil Value as null.
func KindOf(v Value) Kind {
	if v == nil {
		return KindNull
	}
	return v.Kind()
}
