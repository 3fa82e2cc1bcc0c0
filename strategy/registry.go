package strategy

import (
	"fmt"
	"sort"
	"sync"
)

// Registry resolves strategy names used in struct tags and configuration.
type Registry struct {
	mu        sync.RWMutex
	keys      map[string]KeyConverter
	encoders  map[string]EncodeConverter
	decoders  map[string]DecodeConverter
	encFilter map[string]EncodeFilter
	decFilter map[string]DecodeFilter
}

// NewRegistry returns a registry preloaded with the stock strategies.
func NewRegistry() *Registry {
	r := &Registry{
		keys: map[string]KeyConverter{
			"passthrough": PassThrough{},
			"lower":       Lower{},
			"upper":       Upper{},
			"upperfirst":  UpperFirst{},
		},
		encoders: map[string]EncodeConverter{
			"int":    AsInt{},
			"float":  AsFloat{},
			"string": ForceString{},
			"time":   Time{},
		},
		decoders: map[string]DecodeConverter{
			"int":    AsInt{},
			"float":  AsFloat{},
			"string": ForceString{},
			"time":   Time{},
		},
		encFilter: map[string]EncodeFilter{
			"allow":    AllowEncode{},
			"skip":     SkipEncode{},
			"skipnull": SkipEncodeIfNull{},
		},
		decFilter: map[string]DecodeFilter{
			"allow": AllowDecode{},
			"skip":  SkipDecode{},
		},
	}
	for _, f := range caseFormats {
		r.keys[string(f)] = Case{Format: f}
	}
	// the plain snake_case rule predates the word-based formats
	r.keys["snake"] = SnakeCase{}

	return r
}

// Default is the registry consulted by struct tags.
var Default = NewRegistry()

func (r *Registry) RegisterKeyConverter(name string, c KeyConverter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[name] = c
}

// RegisterConverter registers c under name for every direction it implements.
func (r *Registry) RegisterConverter(name string, c any) error {
	enc, isEnc := c.(EncodeConverter)
	dec, isDec := c.(DecodeConverter)
	if !isEnc && !isDec {
		return fmt.Errorf("%T implements neither EncodeConverter nor DecodeConverter", c)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if isEnc {
		r.encoders[name] = enc
	}
	if isDec {
		r.decoders[name] = dec
	}
	return nil
}

func (r *Registry) RegisterEncodeFilter(name string, f EncodeFilter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.encFilter[name] = f
}

func (r *Registry) RegisterDecodeFilter(name string, f DecodeFilter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decFilter[name] = f
}

func (r *Registry) KeyConverter(name string) (KeyConverter, error) {
	return lookup(r, r.keys, "key converter", name)
}

func (r *Registry) EncodeConverter(name string) (EncodeConverter, error) {
	return lookup(r, r.encoders, "encode converter", name)
}

func (r *Registry) DecodeConverter(name string) (DecodeConverter, error) {
	return lookup(r, r.decoders, "decode converter", name)
}

func (r *Registry) EncodeFilter(name string) (EncodeFilter, error) {
	return lookup(r, r.encFilter, "encode filter", name)
}

func (r *Registry) DecodeFilter(name string) (DecodeFilter, error) {
	return lookup(r, r.decFilter, "decode filter", name)
}

func lookup[T any](r *Registry, m map[string]T, what, name string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := m[name]
	if !ok {
		var zero T
		return zero, fmt.Errorf("unknown %s %q (known: %v)", what, name, names(m))
	}
	return v, nil
}

func names[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
