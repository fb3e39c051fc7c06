package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// StringList accepts either a JSON array or a single JSON scalar.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] != '[' {
		item, err := scalarString(data)
		if err != nil {
			return err
		}
		if item == "" {
			*l = nil
			return nil
		}
		*l = StringList{item}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(StringList, 0, len(raw))
	for i, elem := range raw {
		item, err := scalarString(elem)
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		out = nil
	}
	*l = out
	return nil
}

// Values returns the non-blank entries.
func (l StringList) Values() []string {
	out := make([]string, 0, len(l))
	for _, v := range l {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Join renders the list with ", " or returns fallback when it is empty.
func (l StringList) Join(fallback string) string {
	values := l.Values()
	if len(values) == 0 {
		return fallback
	}
	return strings.Join(values, ", ")
}

func scalarString(data []byte) (string, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return "", err
	}
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(t), nil
	case bool:
		return strconv.FormatBool(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}
