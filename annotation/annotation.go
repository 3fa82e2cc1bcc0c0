// Package annotation reads list element declarations from field documentation.
//
// Two shapes are understood, the first match wins:
//
//	// @elem []Item
//	// @elem list<Item>
package annotation

import (
	"fmt"
	"regexp"
	"strings"
)

// Tag introduces an element declaration in a doc comment.
const Tag = "@elem"

var shapes = []*regexp.Regexp{
	regexp.MustCompile(`@elem\s+\[\]\s*([\w./]+)`),
	regexp.MustCompile(`@elem\s+list<\s*([\w./]+)\s*>`),
}

// ParseElem extracts the element type name from doc. found is false when doc
// carries no declaration at all; a declaration in neither shape is an error.
func ParseElem(doc string) (name string, found bool, err error) {
	if !strings.Contains(doc, Tag) {
		return "", false, nil
	}
	for _, re := range shapes {
		if m := re.FindStringSubmatch(doc); m != nil {
			return m[1], true, nil
		}
	}
	return "", true, &MalformedError{Doc: strings.TrimSpace(doc)}
}

// MalformedError reports an @elem declaration that matches no known shape.
type MalformedError struct {
	Doc string
}

func (e *MalformedError) Error() string {
	doc := strings.ReplaceAll(e.Doc, "\n", " ")
	if len(doc) > 60 {
		doc = doc[:60] + "..."
	}
	return fmt.Sprintf("expected %q or %q in %q", Tag+" []T", Tag+" list<T>", doc)
}
