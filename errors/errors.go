package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where the error occurred.
type Phase string

const (
	PhaseCompile Phase = "compile" // plan compilation
	PhaseEncode  Phase = "encode"  // Go value to JSON tree
	PhaseDecode  Phase = "decode"  // JSON tree to Go value
	PhaseParse   Phase = "parse"   // JSON text to tree and back
)

// Kind categorizes the error.
type Kind string

const (
	KindUnsupportedType     Kind = "unsupported_type"
	KindMissingListType     Kind = "missing_list_type"
	KindMalformedAnnotation Kind = "malformed_annotation"
	KindUnknownType         Kind = "unknown_type"
	KindCyclicType          Kind = "cyclic_type"
	KindInvalidTag          Kind = "invalid_tag"
	KindFieldMissing        Kind = "field_missing"
	KindTypeMismatch        Kind = "type_mismatch"
	KindInvalidInput        Kind = "invalid_input"
	KindConverter           Kind = "converter"
	KindAmbiguousVariant    Kind = "ambiguous_variant"
	KindSyntax              Kind = "syntax"
	KindInternal            Kind = "internal"
)

// Class is the coarse taxonomy of an error.
type Class int

const (
	ClassConfiguration Class = iota
	ClassData
	ClassLogic
)

func (c Class) String() string {
	switch c {
	case ClassConfiguration:
		return "configuration"
	case ClassData:
		return "data"
	case ClassLogic:
		return "logic"
	default:
		return "unknown"
	}
}

// Error is the structured error used throughout jsoncoder.
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
	Detail string
	Path   []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(FormatPath(e.Path))
	}

	if e.Type != "" {
		b.WriteString(": type ")
		b.WriteString(e.Type)
	}

	if e.Detail != "" {
		if e.Type != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target has the same phase and kind.
// An empty Phase in target matches any phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Class returns the taxonomy class of the error kind.
func (e *Error) Class() Class {
	switch e.Kind {
	case KindFieldMissing, KindTypeMismatch, KindInvalidInput, KindConverter, KindAmbiguousVariant, KindSyntax:
		return ClassData
	case KindInternal:
		return ClassLogic
	default:
		return ClassConfiguration
	}
}

// FormatPath joins path segments; index segments ("[3]") attach without a dot.
func FormatPath(path []string) string {
	var b strings.Builder
	for i, p := range path {
		if i > 0 && !strings.HasPrefix(p, "[") {
			b.WriteByte('.')
		}
		b.WriteString(p)
	}
	return b.String()
}

// IsConfiguration reports whether err wraps a configuration error.
func IsConfiguration(err error) bool {
	return hasClass(err, ClassConfiguration)
}

// IsData reports whether err wraps a data error.
func IsData(err error) bool {
	return hasClass(err, ClassData)
}

// IsLogic reports whether err wraps a logic error.
func IsLogic(err error) bool {
	return hasClass(err, ClassLogic)
}

func hasClass(err error, c Class) bool {
	var e *Error
	if !stderrors.As(err, &e) {
		return false
	}
	return e.Class() == c
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Type sets the type name involved
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// TypeMismatch creates a type mismatch error naming the expected and actual kind.
func TypeMismatch(phase Phase, path []string, got, expected string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Type:   expected,
		Detail: fmt.Sprintf("type mismatch got %s, expected %s", got, expected),
	}
}

// FieldMissing creates a missing required field error.
func FieldMissing(path []string, key, field string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindFieldMissing,
		Path:   path,
		Detail: fmt.Sprintf("missing required field: %s / %s", key, field),
	}
}

// Unsupported creates an unsupported field type error.
func Unsupported(path []string, typeName string) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindUnsupportedType,
		Path:   path,
		Type:   typeName,
		Detail: "no codec for this field type",
	}
}

// UnknownType creates an error for a type name that cannot be resolved.
func UnknownType(path []string, typeName string) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindUnknownType,
		Path:   path,
		Type:   typeName,
		Detail: "type not found",
	}
}

// Internal creates a logic error; reaching one indicates a compiler bug.
func Internal(phase Phase, path []string, format string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInternal,
		Path:   path,
		Detail: fmt.Sprintf(format, args...),
	}
}
