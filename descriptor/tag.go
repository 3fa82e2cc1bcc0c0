package descriptor

import (
	"fmt"
	"strings"

	"github.com/Yamashou/jsoncoder/strategy"
)

const tagName = "coder"

// parseFieldTag reads the coder and json tags of a field.
//
//	Name string `coder:"key=name,encode=skipnull"`
//	Tags []any  `coder:"list=string,optional"`
//	At   time.Time `json:"at" coder:"conv=time"`
func parseFieldTag(coderTag, jsonTag string, strategies *strategy.Registry) (FieldMeta, error) {
	var meta FieldMeta

	jsonName, _ := parseJSONTag(jsonTag)
	switch jsonName {
	case "":
	case "-":
		meta.EncodeFilter = strategy.SkipEncode{}
		meta.DecodeFilter = strategy.SkipDecode{}
	default:
		meta.Key = strategy.Rename{Name: jsonName}
	}

	for _, opt := range splitTag(coderTag) {
		name, value, hasValue := strings.Cut(opt, "=")
		if !hasValue && name != "-" && name != "optional" {
			return FieldMeta{}, fmt.Errorf("option %q needs a value", opt)
		}
		if hasValue && value == "" {
			return FieldMeta{}, fmt.Errorf("option %q has an empty value", name)
		}

		var err error
		switch name {
		case "-":
			meta.EncodeFilter = strategy.SkipEncode{}
			meta.DecodeFilter = strategy.SkipDecode{}
		case "optional":
			meta.Optional = true
		case "key":
			meta.Key = strategy.Rename{Name: value}
		case "case":
			meta.Key, err = strategies.KeyConverter(value)
		case "encode":
			meta.EncodeFilter, err = strategies.EncodeFilter(value)
		case "decode":
			meta.DecodeFilter, err = strategies.DecodeFilter(value)
		case "enc":
			meta.EncodeConverter, err = strategies.EncodeConverter(value)
		case "dec":
			meta.DecodeConverter, err = strategies.DecodeConverter(value)
		case "conv":
			if meta.EncodeConverter, err = strategies.EncodeConverter(value); err == nil {
				meta.DecodeConverter, err = strategies.DecodeConverter(value)
			}
		case "list":
			meta.ListHint = value
		default:
			return FieldMeta{}, fmt.Errorf("unknown option %q", name)
		}
		if err != nil {
			return FieldMeta{}, err
		}
	}

	return meta, nil
}

// parseTypeTag reads the tag of a blank field, which carries type-level options:
//
//	type Order struct {
//		_ struct{} `coder:"case=snake,encode=skipnull"`
//		...
//	}
func parseTypeTag(tag string, strategies *strategy.Registry) (TypeMeta, error) {
	var meta TypeMeta
	for _, opt := range splitTag(tag) {
		name, value, ok := strings.Cut(opt, "=")
		if !ok || value == "" {
			return TypeMeta{}, fmt.Errorf("option %q needs a value", opt)
		}

		var err error
		switch name {
		case "case":
			meta.KeyConverter, err = strategies.KeyConverter(value)
		case "encode":
			meta.EncodeFilter, err = strategies.EncodeFilter(value)
		case "decode":
			meta.DecodeFilter, err = strategies.DecodeFilter(value)
		default:
			return TypeMeta{}, fmt.Errorf("unknown type option %q", name)
		}
		if err != nil {
			return TypeMeta{}, err
		}
	}
	return meta, nil
}

func splitTag(tag string) []string {
	if tag == "" {
		return nil
	}
	parts := strings.Split(tag, ",")
	opts := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			opts = append(opts, p)
		}
	}
	return opts
}

func parseJSONTag(tag string) (name string, opts []string) {
	if tag == "" {
		return "", nil
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	if len(parts) > 1 {
		opts = parts[1:]
	}
	return name, opts
}
