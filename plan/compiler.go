package plan

import (
	stderrors "errors"
	"reflect"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/Yamashou/jsoncoder/descriptor"
	"github.com/Yamashou/jsoncoder/errors"
	"github.com/Yamashou/jsoncoder/strategy"
)

type cacheKey struct {
	typ      reflect.Type
	dir      Direction
	defaults Defaults
}

// Compiler builds plans from type descriptors and memoizes them. A Compiler
// is safe for concurrent use; when two callers compile the same key at once
// the first stored plan wins and both get it.
type Compiler struct {
	provider descriptor.Provider
	cache    sync.Map // cacheKey -> *Plan
}

// NewCompiler returns a compiler reading types from provider.
func NewCompiler(provider descriptor.Provider) *Compiler {
	if provider == nil {
		provider = descriptor.Default
	}
	return &Compiler{provider: provider}
}

// Provider returns the descriptor provider of c.
func (c *Compiler) Provider() descriptor.Provider {
	return c.provider
}

// Reset drops every cached plan. Plans already handed out stay valid.
func (c *Compiler) Reset() {
	c.cache.Clear()
}

// Compile returns the plan of struct type t (a pointer to struct is
// dereferenced) for dir, with defaults applied where the type carries no
// metadata of its own.
func (c *Compiler) Compile(t reflect.Type, dir Direction, defaults Defaults) (*Plan, error) {
	if t == nil {
		return nil, errors.Unsupported(nil, "nil")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return c.compile(t, dir, defaults, nil, nil)
}

func (c *Compiler) compile(t reflect.Type, dir Direction, defaults Defaults, stack []reflect.Type, path []string) (*Plan, error) {
	key := cacheKey{typ: t, dir: dir, defaults: defaults}
	cacheable := isComparable(defaults)
	if cacheable {
		if p, ok := c.cache.Load(key); ok {
			Logger().Debug("plan cache hit", zap.Stringer("type", t), zap.Stringer("direction", dir))
			return p.(*Plan), nil
		}
	}

	if slices.Contains(stack, t) {
		return nil, errors.New(errors.PhaseCompile, errors.KindCyclicType).
			Path(path...).
			Type(descriptor.TypeName(t)).
			Detail("type refers to itself through %s", cycleString(stack, t)).
			Build()
	}
	stack = append(stack, t)

	d, err := c.provider.Describe(t)
	if err != nil {
		return nil, prefixPath(err, path)
	}

	keyConv := firstNonNil[strategy.KeyConverter](d.Meta.KeyConverter, defaults.KeyConverter, strategy.PassThrough{})
	encFilter := firstNonNil[strategy.EncodeFilter](d.Meta.EncodeFilter, defaults.EncodeFilter, strategy.AllowEncode{})
	decFilter := firstNonNil[strategy.DecodeFilter](d.Meta.DecodeFilter, defaults.DecodeFilter, strategy.AllowDecode{})

	p := &Plan{
		Type:      t,
		Name:      d.Name,
		Direction: dir,
		Choice:    d.Choice,
		Units:     make([]FieldUnit, 0, len(d.Fields)),
	}

	keys := map[string]string{}
	for _, f := range d.Fields {
		fieldPath := append(slices.Clip(path), f.Name)

		fieldKey := firstNonNil[strategy.KeyConverter](f.Meta.Key, keyConv)
		fieldEnc := firstNonNil[strategy.EncodeFilter](f.Meta.EncodeFilter, encFilter)
		fieldDec := firstNonNil[strategy.DecodeFilter](f.Meta.DecodeFilter, decFilter)

		if dir == Decode && !fieldDec.ShouldDecode(f.Name) {
			Logger().Debug("field skipped by decode filter", zap.String("type", d.Name), zap.String("field", f.Name))
			continue
		}
		if dir == Encode && neverEncodes(fieldEnc) {
			Logger().Debug("field skipped by encode filter", zap.String("type", d.Name), zap.String("field", f.Name))
			continue
		}

		unit := FieldUnit{
			Name:          f.Name,
			Index:         f.Index,
			Key:           fieldKey.Key(f.Name),
			Type:          f.Type,
			Pointer:       f.Type.Kind() == reflect.Pointer,
			Nullable:      f.Nullable,
			DecodeAllowed: true,
		}
		if dir == Encode {
			unit.EncodeFilter = fieldEnc
			unit.EncodeConverter = f.Meta.EncodeConverter
		} else {
			unit.DecodeConverter = f.Meta.DecodeConverter
		}
		if prev, ok := keys[unit.Key]; ok {
			return nil, errors.New(errors.PhaseCompile, errors.KindInvalidTag).
				Path(fieldPath...).
				Type(d.Name).
				Detail("key %q of field %s is already used by field %s", unit.Key, f.Name, prev).
				Build()
		}
		keys[unit.Key] = f.Name

		converted := unit.EncodeConverter != nil || unit.DecodeConverter != nil

		// a rename names the field only; nested types keep the enclosing converter
		inheritedKey := fieldKey
		if _, ok := fieldKey.(strategy.Rename); ok {
			inheritedKey = keyConv
		}
		inherited := Defaults{KeyConverter: inheritedKey, EncodeFilter: fieldEnc, DecodeFilter: fieldDec}

		switch {
		case f.Category == descriptor.CategoryList:
			unit.Mode = ModeList
			unit.List, err = c.resolveList(d, f, converted, dir, inherited, stack, fieldPath)
			if err != nil {
				return nil, err
			}
		case converted:
			unit.Mode = ModeDirect
		case f.Category == descriptor.CategoryPrimitive:
			unit.Mode = ModeDirect
			unit.Primitive = descriptor.PrimitiveOf(f.Elem())
		case f.Category == descriptor.CategoryRaw:
			unit.Mode = ModeDirect
			unit.Raw = true
		case f.Category == descriptor.CategoryStruct:
			unit.Mode = ModeNested
			unit.Sub, err = c.compile(f.Elem(), dir, inherited, stack, fieldPath)
			if err != nil {
				return nil, err
			}
		default:
			return nil, errors.Unsupported(fieldPath, f.Type.String())
		}

		p.Units = append(p.Units, unit)
	}

	if !cacheable {
		return p, nil
	}
	actual, loaded := c.cache.LoadOrStore(key, p)
	if !loaded {
		Logger().Debug("plan compiled",
			zap.String("type", d.Name),
			zap.Stringer("direction", dir),
			zap.Int("units", len(p.Units)),
		)
	}
	return actual.(*Plan), nil
}

func firstNonNil[T comparable](vs ...T) T {
	var zero T
	for _, v := range vs {
		if v != zero {
			return v
		}
	}
	return zero
}

// isComparable reports whether v can be a map key without panicking.
// Strategies holding slices or funcs make the plan uncacheable.
func isComparable(v Defaults) bool {
	return reflect.ValueOf(v).Comparable()
}

func prefixPath(err error, path []string) error {
	var e *errors.Error
	if len(path) == 0 || !stderrors.As(err, &e) {
		return err
	}
	e.Path = append(slices.Clone(path), e.Path...)
	return e
}

func cycleString(stack []reflect.Type, t reflect.Type) string {
	i := slices.Index(stack, t)
	s := ""
	for _, st := range stack[i:] {
		s += st.Name() + " -> "
	}
	return s + t.Name()
}

// neverEncodes reports filters that drop the field whatever its value, so
// the field type need not be encodable.
func neverEncodes(f strategy.EncodeFilter) bool {
	switch f.(type) {
	case strategy.SkipEncode, strategy.Skip:
		return true
	}
	return false
}
