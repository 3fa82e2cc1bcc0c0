package coder

import (
	"sync"

	"github.com/Yamashou/jsoncoder/descriptor"
	"github.com/Yamashou/jsoncoder/jsontree"
	"github.com/Yamashou/jsoncoder/plan"
	"github.com/Yamashou/jsoncoder/strategy"
)

type options struct {
	flags         jsontree.Flags
	defaults      plan.Defaults
	compiler      *plan.Compiler
	strictChoices bool
}

type Option func(*options)

// WithFlags passes flags to the JSON reader and writer.
func WithFlags(flags jsontree.Flags) Option {
	return func(o *options) {
		o.flags = flags
	}
}

// WithKeyConverter sets the key converter used by types that declare none.
func WithKeyConverter(k strategy.KeyConverter) Option {
	return func(o *options) {
		o.defaults.KeyConverter = k
	}
}

// WithEncodeFilter sets the encode filter used by types that declare none.
func WithEncodeFilter(f strategy.EncodeFilter) Option {
	return func(o *options) {
		o.defaults.EncodeFilter = f
	}
}

// WithDecodeFilter sets the decode filter used by types that declare none.
func WithDecodeFilter(f strategy.DecodeFilter) Option {
	return func(o *options) {
		o.defaults.DecodeFilter = f
	}
}

// WithRegistry compiles plans from r with a compiler private to the coder.
func WithRegistry(r *descriptor.Registry) Option {
	return WithProvider(r)
}

// WithProvider compiles plans from p with a compiler private to the coder.
func WithProvider(p descriptor.Provider) Option {
	return func(o *options) {
		o.compiler = plan.NewCompiler(p)
	}
}

// WithCompiler shares c, and its plan cache, with other coders.
func WithCompiler(c *plan.Compiler) Option {
	return func(o *options) {
		o.compiler = c
	}
}

// WithStrictChoices makes the decoder reject choice values with more than one
// alternative present instead of keeping all of them.
func WithStrictChoices() Option {
	return func(o *options) {
		o.strictChoices = true
	}
}

var defaultCompiler = sync.OnceValue(func() *plan.Compiler {
	return plan.NewCompiler(descriptor.Default)
})

// DefaultCompiler is the process-wide compiler over descriptor.Default.
func DefaultCompiler() *plan.Compiler {
	return defaultCompiler()
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.compiler == nil {
		o.compiler = defaultCompiler()
	}
	return o
}
