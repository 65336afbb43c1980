package patch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

var colorPattern = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// Parse validates raw against schema and returns the resulting Patch.
func Parse(raw []byte, schema Schema) (*Patch, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, &ValidationError{Reason: "payload must be a JSON object"}
	}
	return parseObject(obj, schema, "")
}

func decodeObject(raw []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("not an object")
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func parseObject(obj map[string]json.RawMessage, schema Schema, prefix string) (*Patch, error) {
	if schema.Strict {
		keys := make([]string, 0, len(obj))
		for key := range obj {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if _, ok := schema.field(key); !ok {
				return nil, &ValidationError{Field: joinPath(prefix, key), Reason: "unknown field"}
			}
		}
	}

	p := &Patch{values: make(map[string]Value)}
	for _, spec := range schema.Fields {
		raw, ok := obj[spec.Name]
		if !ok {
			continue
		}
		v, err := decodeField(raw, spec, joinPath(prefix, spec.Name))
		if err != nil {
			return nil, err
		}
		p.values[spec.Name] = v
	}

	if len(schema.RequireOneOf) > 0 && !hasAnyValue(p, schema.RequireOneOf) {
		return nil, &ValidationError{
			Field:  prefix,
			Reason: "requires a non-empty value for one of: " + strings.Join(schema.RequireOneOf, ", "),
		}
	}
	return p, nil
}

func hasAnyValue(p *Patch, names []string) bool {
	for _, name := range names {
		v, ok := p.values[name]
		if !ok || v.null {
			continue
		}
		if s, isString := v.v.(string); isString && s == "" {
			continue
		}
		return true
	}
	return false
}

func decodeField(raw json.RawMessage, spec FieldSpec, path string) (Value, error) {
	if isNull(raw) {
		if !spec.Nullable {
			return Value{}, &ValidationError{Field: path, Reason: "cannot be null"}
		}
		return Value{null: true}, nil
	}

	switch spec.Kind {
	case KindBool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return Value{}, typeError(path, spec.Kind)
		}
		return Value{v: b}, nil

	case KindObjectList:
		return decodeObjectList(raw, spec, path)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return Value{}, typeError(path, spec.Kind)
	}
	if spec.NonBlank && strings.TrimSpace(s) == "" {
		return Value{}, &ValidationError{Field: path, Reason: "must not be empty"}
	}
	if spec.MaxLength > 0 && utf8.RuneCountInString(s) > spec.MaxLength {
		return Value{}, &ValidationError{
			Field:  path,
			Reason: fmt.Sprintf("must be at most %d characters", spec.MaxLength),
		}
	}

	switch spec.Kind {
	case KindString:
		return Value{v: s}, nil

	case KindColor:
		if !colorPattern.MatchString(s) {
			return Value{}, &ValidationError{Field: path, Reason: "must be a 6-digit hex color"}
		}
		return Value{v: strings.ToLower(strings.TrimPrefix(s, "#"))}, nil

	case KindURL:
		u, err := url.Parse(s)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return Value{}, &ValidationError{Field: path, Reason: "must be an absolute http or https URL"}
		}
		return Value{v: s}, nil

	case KindDate:
		d, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return Value{}, &ValidationError{Field: path, Reason: "must be a date in YYYY-MM-DD format"}
		}
		return Value{v: d}, nil

	case KindEnum:
		if !slices.Contains(spec.Options, s) {
			return Value{}, &ValidationError{
				Field:  path,
				Reason: "must be one of: " + strings.Join(spec.Options, ", "),
			}
		}
		return Value{v: s}, nil
	}

	return Value{}, fmt.Errorf("patch: unsupported kind %v for field %s", spec.Kind, path)
}

func decodeObjectList(raw json.RawMessage, spec FieldSpec, path string) (Value, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return Value{}, typeError(path, spec.Kind)
	}
	elem := Schema{}
	if spec.Elem != nil {
		elem = *spec.Elem
	}

	out := make([]*Patch, 0, len(items))
	for i, item := range items {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		obj, err := decodeObject(item)
		if err != nil {
			return Value{}, &ValidationError{Field: itemPath, Reason: "expected an object"}
		}
		p, err := parseObject(obj, elem, itemPath)
		if err != nil {
			return Value{}, err
		}
		out = append(out, p)
	}
	return Value{v: out}, nil
}

func typeError(path string, kind Kind) error {
	expected := "a string"
	switch kind {
	case KindBool:
		expected = "a boolean"
	case KindObjectList:
		expected = "a list of objects"
	}
	return &ValidationError{Field: path, Reason: "expected " + expected}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
