// Package errors provides the structured error type returned by jsoncoder.
//
// Errors carry the Phase in which they were raised and a Kind. The Kind
// decides the Class of the error:
//
//	Configuration  plan compilation rejected the type metadata
//	Data           a concrete JSON value did not fit the compiled plan
//	Logic          the compiled plan is internally inconsistent
//
// Use the Builder for structured construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
//		Path("order", "items", "[2]").
//		Type("int").
//		Detail("got string, expected integer").
//		Build()
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
