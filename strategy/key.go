package strategy

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PassThrough keeps the field name. It is the fallback converter and also
// turns off an inherited conversion on a nested type.
type PassThrough struct{}

func (PassThrough) Key(name string) string { return name }

// Lower lowercases the key.
type Lower struct{}

func (Lower) Key(name string) string { return strings.ToLower(name) }

// Upper uppercases the key.
type Upper struct{}

func (Upper) Key(name string) string { return strings.ToUpper(name) }

var upperRe = regexp.MustCompile(`([A-Z])`)

// SnakeCase puts an underscore before every capital letter and lowercases
// the result: someValue -> some_value, ID -> i_d.
type SnakeCase struct{}

func (SnakeCase) Key(name string) string {
	return strings.TrimLeft(strings.ToLower(upperRe.ReplaceAllString(name, "_$1")), "_")
}

// UpperFirst capitalises the first letter.
type UpperFirst struct{}

func (UpperFirst) Key(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// Rename replaces the key with a fixed name. It is never inherited by the
// fields of a nested type.
type Rename struct {
	Name string
}

func (r Rename) Key(string) string { return r.Name }
