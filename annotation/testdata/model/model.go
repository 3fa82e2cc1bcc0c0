package model

type Item struct {
	Name string
}

// Order is a fixture for the annotation loader.
type Order struct {
	// Items holds the ordered lines.
	// @elem []Item
	Items []any

	Tags []any // @elem list<string>

	// Notes has no declaration.
	Notes []string

	// @elem map[string]Item
	Broken []any

	// @elem []string
	hidden []any
}

type Plain struct {
	A, B string
}

// Generic is skipped, its element types depend on T.
type Generic[T any] struct {
	// @elem []Item
	Values []T
}
