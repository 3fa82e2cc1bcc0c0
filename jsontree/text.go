package jsontree

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-json-experiment/json/jsontext"
)

// Flags are formatting and leniency switches passed through to jsontext.
// The coder layer does not interpret them.
type Flags uint32

const (
	// FlagPretty writes multi-line output indented by two spaces.
	FlagPretty Flags = 1 << iota
	// FlagEscapeHTML escapes <, > and & in strings.
	FlagEscapeHTML
	// FlagAllowInvalidUTF8 accepts invalid UTF-8 in strings.
	FlagAllowInvalidUTF8
	// FlagAllowDuplicateNames accepts repeated object keys; the last one wins.
	FlagAllowDuplicateNames
)

func (f Flags) options() []jsontext.Options {
	var opts []jsontext.Options
	if f&FlagPretty != 0 {
		opts = append(opts, jsontext.Multiline(true), jsontext.WithIndent("  "))
	}
	if f&FlagEscapeHTML != 0 {
		opts = append(opts, jsontext.EscapeForHTML(true))
	}
	if f&FlagAllowInvalidUTF8 != 0 {
		opts = append(opts, jsontext.AllowInvalidUTF8(true))
	}
	if f&FlagAllowDuplicateNames != 0 {
		opts = append(opts, jsontext.AllowDuplicateNames(true))
	}
	return opts
}

// Parse reads exactly one JSON value from data.
func Parse(data []byte, flags Flags) (Value, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data), flags.options()...)

	v, err := readValue(dec)
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	if _, err := dec.ReadToken(); err != io.EOF {
		if err == nil {
			err = fmt.Errorf("unexpected data after top-level value")
		}
		return nil, fmt.Errorf("parse json: %w", err)
	}

	return v, nil
}

func readValue(dec *jsontext.Decoder) (Value, error) {
	switch dec.PeekKind() {
	case '0':
		raw, err := dec.ReadValue()
		if err != nil {
			return nil, err
		}
		return Number(raw), nil
	case '{':
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		obj := NewObject(0)
		for dec.PeekKind() != '}' {
			name, err := dec.ReadToken()
			if err != nil {
				return nil, err
			}
			// the token is only valid until the next read
			key := name.String()
			v, err := readValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, v)
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		arr := Array{}
		for dec.PeekKind() != ']' {
			v, err := readValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return arr, nil
	}

	tok, err := dec.ReadToken()
	if err != nil {
		return nil, err
	}
	switch tok.Kind() {
	case 'n':
		return Null{}, nil
	case 't', 'f':
		return Bool(tok.Bool()), nil
	case '"':
		return String(tok.String()), nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok.Kind())
	}
}

// Marshal writes v as JSON text without a trailing newline.
func Marshal(v Value, flags Flags) ([]byte, error) {
	var buf bytes.Buffer
	enc := jsontext.NewEncoder(&buf, flags.options()...)
	if err := writeValue(enc, v); err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func writeValue(enc *jsontext.Encoder, v Value) error {
	switch t := v.(type) {
	case nil, Null:
		return enc.WriteToken(jsontext.Null)
	case Bool:
		return enc.WriteToken(jsontext.Bool(bool(t)))
	case String:
		return enc.WriteToken(jsontext.String(string(t)))
	case Number:
		return enc.WriteValue(jsontext.Value(t))
	case Array:
		if err := enc.WriteToken(jsontext.BeginArray); err != nil {
			return err
		}
		for _, e := range t {
			if err := writeValue(enc, e); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndArray)
	case *Object:
		if err := enc.WriteToken(jsontext.BeginObject); err != nil {
			return err
		}
		for _, m := range t.Members() {
			if err := enc.WriteToken(jsontext.String(m.Key)); err != nil {
				return err
			}
			if err := writeValue(enc, m.Value); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndObject)
	default:
		return fmt.Errorf("unsupported json tree value %T", v)
	}
}
