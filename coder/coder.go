// Package coder は compile 済みの plan を使って Go の構造体と JSON を相互に変換する。
//
//	enc, err := coder.NewEncoder[Point]()
//	data, err := enc.Encode(Point{X: 1.5, Y: -2})   // {"x":1.5,"y":-2.0}
//
//	dec, err := coder.NewDecoder[Point]()
//	p, err := dec.Decode(data)
//
// Encoder と Decoder は生成時に plan を一度だけ compile し、以降は並行に使える。
package coder

import (
	"reflect"
	"strconv"

	"go.uber.org/zap"

	"github.com/Yamashou/jsoncoder/errors"
	"github.com/Yamashou/jsoncoder/jsontree"
	"github.com/Yamashou/jsoncoder/plan"
)

// Encoder writes values of T, a struct or a pointer to struct, as JSON.
type Encoder[T any] struct {
	plan  *plan.Plan
	flags jsontree.Flags
}

// NewEncoder compiles the encode plan of T.
func NewEncoder[T any](opts ...Option) (*Encoder[T], error) {
	o := newOptions(opts)
	p, err := o.compiler.Compile(reflect.TypeFor[T](), plan.Encode, o.defaults)
	if err != nil {
		return nil, err
	}
	Logger().Debug("encoder ready", zap.String("type", p.Name), zap.Int("units", len(p.Units)))

	return &Encoder[T]{plan: p, flags: o.flags}, nil
}

// Plan returns the compiled plan.
func (e *Encoder[T]) Plan() *plan.Plan {
	return e.plan
}

// EncodeNode converts v into a JSON tree.
func (e *Encoder[T]) EncodeNode(v T) (jsontree.Value, error) {
	return EncodeValue(reflect.ValueOf(&v).Elem(), e.plan)
}

// Encode converts v into JSON text.
func (e *Encoder[T]) Encode(v T) ([]byte, error) {
	node, err := e.EncodeNode(v)
	if err != nil {
		return nil, err
	}
	return e.marshal(node)
}

// EncodeMany converts vs into a JSON array, keeping their order.
func (e *Encoder[T]) EncodeMany(vs []T) ([]byte, error) {
	arr := make(jsontree.Array, 0, len(vs))
	for i := range vs {
		node, err := EncodeValue(reflect.ValueOf(&vs[i]).Elem(), e.plan)
		if err != nil {
			return nil, withIndex(err, i)
		}
		arr = append(arr, node)
	}
	return e.marshal(arr)
}

func (e *Encoder[T]) marshal(node jsontree.Value) ([]byte, error) {
	data, err := jsontree.Marshal(node, e.flags)
	if err != nil {
		return nil, errors.New(errors.PhaseParse, errors.KindSyntax).Cause(err).Detail("cannot write JSON").Build()
	}
	return data, nil
}

// Decoder reads JSON into values of T, a struct or a pointer to struct.
type Decoder[T any] struct {
	plan    *plan.Plan
	flags   jsontree.Flags
	decoder decoder
	pointer bool
}

// NewDecoder compiles the decode plan of T.
func NewDecoder[T any](opts ...Option) (*Decoder[T], error) {
	o := newOptions(opts)
	t := reflect.TypeFor[T]()
	p, err := o.compiler.Compile(t, plan.Decode, o.defaults)
	if err != nil {
		return nil, err
	}
	Logger().Debug("decoder ready", zap.String("type", p.Name), zap.Int("units", len(p.Units)))

	return &Decoder[T]{
		plan:    p,
		flags:   o.flags,
		decoder: decoder{strictChoices: o.strictChoices},
		pointer: t.Kind() == reflect.Pointer,
	}, nil
}

// Plan returns the compiled plan.
func (d *Decoder[T]) Plan() *plan.Plan {
	return d.plan
}

// DecodeNode builds a T from a JSON tree. A JSON null yields a nil pointer
// when T is a pointer type.
func (d *Decoder[T]) DecodeNode(node jsontree.Value) (T, error) {
	var zero T
	if _, isNull := node.(jsontree.Null); isNull && d.pointer {
		return zero, nil
	}
	v, err := d.decoder.decodeStruct(node, d.plan, nil)
	if err != nil {
		return zero, err
	}
	if d.pointer {
		return v.Addr().Interface().(T), nil
	}
	return v.Interface().(T), nil
}

// Decode parses data and builds a T.
func (d *Decoder[T]) Decode(data []byte) (T, error) {
	node, err := d.parse(data)
	if err != nil {
		var zero T
		return zero, err
	}
	return d.DecodeNode(node)
}

// DecodeMany parses a JSON array and builds one T per element, in order.
func (d *Decoder[T]) DecodeMany(data []byte) ([]T, error) {
	node, err := d.parse(data)
	if err != nil {
		return nil, err
	}
	arr, ok := node.(jsontree.Array)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseDecode, nil, node.Kind().String(), "array")
	}

	out := make([]T, 0, len(arr))
	for i, e := range arr {
		v, err := d.DecodeNode(e)
		if err != nil {
			return nil, withIndex(err, i)
		}
		out = append(out, v)
	}
	return out, nil
}

func (d *Decoder[T]) parse(data []byte) (jsontree.Value, error) {
	node, err := jsontree.Parse(data, d.flags)
	if err != nil {
		return nil, errors.New(errors.PhaseParse, errors.KindSyntax).Cause(err).Detail("invalid JSON").Build()
	}
	return node, nil
}

func withIndex(err error, i int) error {
	if e, ok := err.(*errors.Error); ok {
		e.Path = append([]string{"[" + strconv.Itoa(i) + "]"}, e.Path...)
	}
	return err
}
