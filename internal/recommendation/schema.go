package recommendation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind is the JSON type a field must have.
type Kind int

const (
	KindString Kind = iota + 1
	KindInteger
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Field describes one key of an object, or the element type of an array.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	NonEmpty bool
	Min      *int
	Max      *int
	MinItems int
	MaxItems int // 0 means unbounded
	Items    *Field
	Fields   []Field
	Hint     string
}

// Schema is a versioned output contract. Discriminators are the keys a parsed
// object must carry before it is worth validating at all.
type Schema struct {
	Version        string
	Description    string
	Discriminators []string
	Fields         []Field
}

// ValidationError names the JSON path of the first violation.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// ErrUnknownVersion is returned by Lookup for unregistered versions.
var ErrUnknownVersion = errors.New("unknown schema version")

// Conform validates value against the schema and returns a copy holding only
// the declared fields. Nothing is coerced, trimmed or padded.
func (s Schema) Conform(value any) (map[string]any, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, &ValidationError{Message: fmt.Sprintf("expected object, got %s", jsonType(value))}
	}
	return conformObject("", s.Fields, obj)
}

// ConformJSON decodes data and conforms it, returning canonical JSON.
func (s Schema) ConformJSON(data []byte) (json.RawMessage, error) {
	value, err := DecodeValue(data)
	if err != nil {
		return nil, err
	}
	projected, err := s.Conform(value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(projected)
}

// DecodeValue decodes a single JSON value, keeping numbers as json.Number.
func DecodeValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if rest := bytes.TrimSpace(data[dec.InputOffset():]); len(rest) > 0 {
		return nil, errors.New("unexpected data after JSON value")
	}
	return value, nil
}

func conformObject(path string, fields []Field, obj map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		fieldPath := joinPath(path, f.Name)
		raw, present := obj[f.Name]
		if !present || raw == nil {
			if f.Required {
				return nil, &ValidationError{Path: fieldPath, Message: "is required"}
			}
			continue
		}
		v, err := conformValue(fieldPath, f, raw)
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	return out, nil
}

func conformValue(path string, f Field, raw any) (any, error) {
	switch f.Kind {
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return nil, typeError(path, f.Kind, raw)
		}
		if f.NonEmpty && strings.TrimSpace(s) == "" {
			return nil, &ValidationError{Path: path, Message: "must not be empty"}
		}
		return s, nil

	case KindInteger:
		n, ok := raw.(json.Number)
		if !ok {
			return nil, typeError(path, f.Kind, raw)
		}
		i, err := n.Int64()
		if err != nil {
			return nil, &ValidationError{Path: path, Message: fmt.Sprintf("must be an integer, got %s", n.String())}
		}
		if f.Min != nil && i < int64(*f.Min) {
			return nil, rangeError(path, f, i)
		}
		if f.Max != nil && i > int64(*f.Max) {
			return nil, rangeError(path, f, i)
		}
		return json.Number(fmt.Sprintf("%d", i)), nil

	case KindObject:
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, typeError(path, f.Kind, raw)
		}
		return conformObject(path, f.Fields, obj)

	case KindArray:
		items, ok := raw.([]any)
		if !ok {
			return nil, typeError(path, f.Kind, raw)
		}
		if err := checkCardinality(path, f, len(items)); err != nil {
			return nil, err
		}
		out := make([]any, 0, len(items))
		for i, item := range items {
			itemPath := fmt.Sprintf("%s[%d]", path, i)
			if item == nil {
				return nil, &ValidationError{Path: itemPath, Message: "must not be null"}
			}
			v, err := conformValue(itemPath, *f.Items, item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	return nil, &ValidationError{Path: path, Message: "field has no kind"}
}

func checkCardinality(path string, f Field, n int) error {
	switch {
	case f.MaxItems > 0 && f.MinItems == f.MaxItems && n != f.MinItems:
		return &ValidationError{Path: path, Message: fmt.Sprintf("must have exactly %d items, got %d", f.MinItems, n)}
	case n < f.MinItems:
		return &ValidationError{Path: path, Message: fmt.Sprintf("must have at least %d items, got %d", f.MinItems, n)}
	case f.MaxItems > 0 && n > f.MaxItems:
		return &ValidationError{Path: path, Message: fmt.Sprintf("must have at most %d items, got %d", f.MaxItems, n)}
	}
	return nil
}

func rangeError(path string, f Field, got int64) error {
	switch {
	case f.Min != nil && f.Max != nil:
		return &ValidationError{Path: path, Message: fmt.Sprintf("must be between %d and %d, got %d", *f.Min, *f.Max, got)}
	case f.Min != nil:
		return &ValidationError{Path: path, Message: fmt.Sprintf("must be at least %d, got %d", *f.Min, got)}
	default:
		return &ValidationError{Path: path, Message: fmt.Sprintf("must be at most %d, got %d", *f.Max, got)}
	}
}

func typeError(path string, want Kind, got any) error {
	return &ValidationError{Path: path, Message: fmt.Sprintf("expected %s, got %s", want, jsonType(got))}
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

var registry = map[string]Schema{}

func register(s Schema) Schema {
	registry[s.Version] = s
	return s
}

// Lookup returns the schema registered under version.
func Lookup(version string) (Schema, error) {
	s, ok := registry[strings.TrimSpace(version)]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %q", ErrUnknownVersion, version)
	}
	return s, nil
}

// Versions lists the registered schema versions in order.
func Versions() []string {
	out := make([]string, 0, len(registry))
	for v := range registry {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Validate reports the first violation of the schema in value, or nil.
func (s Schema) Validate(value any) error {
	_, err := s.Conform(value)
	return err
}
