package descriptor

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/Yamashou/jsoncoder/errors"
	"github.com/Yamashou/jsoncoder/strategy"
)

// Registry is the reflect-backed Provider. It remembers every struct type it
// has seen by qualified name, plus metadata configured in code and field
// documentation registered by generated files.
//
// Configure and SetDocs must run before the first plan of the type is
// compiled; compiled plans are never patched.
type Registry struct {
	strategies *strategy.Registry

	mu        sync.RWMutex
	types     map[string]reflect.Type
	typeMeta  map[reflect.Type]TypeMeta
	fieldMeta map[reflect.Type]map[string]FieldMeta
	docs      map[reflect.Type]map[string]string
}

var _ Provider = (*Registry)(nil)

// NewRegistry returns an empty registry resolving tag names with strategies.
func NewRegistry(strategies *strategy.Registry) *Registry {
	if strategies == nil {
		strategies = strategy.Default
	}
	return &Registry{
		strategies: strategies,
		types:      make(map[string]reflect.Type),
		typeMeta:   make(map[reflect.Type]TypeMeta),
		fieldMeta:  make(map[reflect.Type]map[string]FieldMeta),
		docs:       make(map[reflect.Type]map[string]string),
	}
}

// Default is the registry used by coders unless told otherwise.
var Default = NewRegistry(strategy.Default)

// RegisterType makes T known to the default registry by name, so list hints
// can refer to it before any value of it was described.
func RegisterType[T any]() {
	Default.Register(reflect.TypeFor[T]())
}

// RegisterFieldDocs records field documentation for t in the default
// registry. Generated files call it from init.
func RegisterFieldDocs(t reflect.Type, docs map[string]string) {
	Default.SetDocs(t, docs)
}

// Configure attaches metadata to T in r.
func Configure[T any](r *Registry, meta TypeMeta, fields map[string]FieldMeta) error {
	return r.Configure(reflect.TypeFor[T](), meta, fields)
}

// Register records struct types by name. Pointers are dereferenced.
func (r *Registry) Register(types ...reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range types {
		r.registerLocked(t)
	}
}

func (r *Registry) registerLocked(t reflect.Type) {
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t.Name() == "" {
		return
	}
	r.types[TypeName(t)] = t
}

// Configure attaches type-level and per-field metadata to t. Values set here
// override the struct tags.
func (r *Registry) Configure(t reflect.Type, meta TypeMeta, fields map[string]FieldMeta) error {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return errors.Unsupported(nil, t.String())
	}
	for name := range fields {
		sf, ok := t.FieldByName(name)
		if !ok || !sf.IsExported() || len(sf.Index) != 1 {
			return errors.New(errors.PhaseCompile, errors.KindInvalidTag).
				Path(name).
				Type(TypeName(t)).
				Detail("no exported field %s", name).
				Build()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.registerLocked(t)
	r.typeMeta[t] = r.typeMeta[t].merge(meta)
	if len(fields) > 0 {
		m := r.fieldMeta[t]
		if m == nil {
			m = make(map[string]FieldMeta, len(fields))
			r.fieldMeta[t] = m
		}
		for name, fm := range fields {
			m[name] = m[name].merge(fm)
		}
	}
	return nil
}

// SetDocs records the documentation comment of each named field of t.
func (r *Registry) SetDocs(t reflect.Type, docs map[string]string) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registerLocked(t)
	m := r.docs[t]
	if m == nil {
		m = make(map[string]string, len(docs))
		r.docs[t] = m
	}
	for k, v := range docs {
		m[k] = v
	}
}

// Lookup resolves a qualified type name.
func (r *Registry) Lookup(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// New returns a settable zero value of t.
func (r *Registry) New(t reflect.Type) reflect.Value {
	return reflect.New(t).Elem()
}

// Describe builds the descriptor of struct type t. The result is freshly
// allocated on every call; callers cache what they compile from it.
func (r *Registry) Describe(t reflect.Type) (*Descriptor, error) {
	if t == nil {
		return nil, errors.Unsupported(nil, "nil")
	}
	if t.Kind() != reflect.Struct {
		return nil, errors.Unsupported(nil, t.String())
	}

	r.mu.RLock()
	typeMeta := r.typeMeta[t]
	fieldMeta := r.fieldMeta[t]
	docs := r.docs[t]
	r.mu.RUnlock()

	d := &Descriptor{
		Type:  t,
		Name:  TypeName(t),
		Scope: t.PkgPath(),
	}

	var blankMeta TypeMeta
	seen := []reflect.Type{t}
	for i := range t.NumField() {
		sf := t.Field(i)
		switch {
		case sf.Anonymous && sf.Type == choiceType:
			d.Choice = true
			continue
		case sf.Name == "_":
			tm, err := parseTypeTag(sf.Tag.Get(tagName), r.strategies)
			if err != nil {
				return nil, invalidTag(d.Name, "_", err)
			}
			blankMeta = blankMeta.merge(tm)
			continue
		case !sf.IsExported():
			continue
		}

		meta, err := parseFieldTag(sf.Tag.Get(tagName), sf.Tag.Get("json"), r.strategies)
		if err != nil {
			return nil, invalidTag(d.Name, sf.Name, err)
		}
		if fm, ok := fieldMeta[sf.Name]; ok {
			meta = meta.merge(fm)
		}

		category, nullable := categorize(sf.Type)
		d.Fields = append(d.Fields, Field{
			Name:     sf.Name,
			Index:    i,
			Type:     sf.Type,
			Category: category,
			Nullable: nullable || meta.Optional,
			Meta:     meta,
			Doc:      docs[sf.Name],
		})
		seen = append(seen, sf.Type)
	}
	d.Meta = blankMeta.merge(typeMeta)

	r.Register(seen...)

	return d, nil
}

func invalidTag(typeName, field string, cause error) error {
	return errors.New(errors.PhaseCompile, errors.KindInvalidTag).
		Path(field).
		Type(typeName).
		Cause(cause).
		Detail("invalid %s tag", tagName).
		Build()
}

// String helps when descriptors show up in test failures.
func (d *Descriptor) String() string {
	return fmt.Sprintf("%s(%d fields)", d.Name, len(d.Fields))
}
