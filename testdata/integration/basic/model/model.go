package model

// Library is the root document of the integration fixture.
type Library struct {
	Name string `json:"name"`
	// Shelves are decoded through the generated registration.
	// @elem []Shelf
	Shelves []any `json:"shelves"`
}

type Shelf struct {
	Label string `json:"label"`
	// @elem list<string>
	Tags []any `json:"tags"`
}
