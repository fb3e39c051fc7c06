package extract

import (
	"errors"
	"fmt"
	"strings"

	"sport-backend/internal/recommendation"
)

var (
	// ErrNoObject means no candidate in the text decoded to a JSON object.
	ErrNoObject = errors.New("no JSON object found")
	// ErrMissingDiscriminators means an object decoded but lacked the keys
	// that identify it as the requested document.
	ErrMissingDiscriminators = errors.New("JSON object missing required keys")
)

// Stage names the parse step that produced an object.
type Stage string

const (
	StageDirect   Stage = "direct"
	StageGreedy   Stage = "greedy"
	StageBalanced Stage = "balanced"
)

// Parsed is an object recovered from model text.
type Parsed struct {
	Object map[string]any
	Stage  Stage
}

// Parse recovers a JSON object carrying every discriminator key from text.
// It tries, in order: the fence-stripped text as a whole, the span between the
// first '{' and the last '}', and each balanced top-level object.
func Parse(text string, discriminators []string) (Parsed, error) {
	cleaned := StripFences(text)
	sawObject := false

	try := func(candidate string, stage Stage) (Parsed, bool) {
		obj, ok := decodeObject(candidate)
		if !ok {
			return Parsed{}, false
		}
		sawObject = true
		if !hasKeys(obj, discriminators) {
			return Parsed{}, false
		}
		return Parsed{Object: obj, Stage: stage}, true
	}

	if p, ok := try(cleaned, StageDirect); ok {
		return p, nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if p, ok := try(cleaned[start:end+1], StageGreedy); ok {
			return p, nil
		}
	}

	for _, candidate := range balancedObjects(cleaned) {
		if p, ok := try(candidate, StageBalanced); ok {
			return p, nil
		}
	}

	if sawObject {
		return Parsed{}, fmt.Errorf("%w: %s", ErrMissingDiscriminators, strings.Join(discriminators, ", "))
	}
	return Parsed{}, ErrNoObject
}

func decodeObject(s string) (map[string]any, bool) {
	if s == "" {
		return nil, false
	}
	value, err := recommendation.DecodeValue([]byte(s))
	if err != nil {
		return nil, false
	}
	obj, ok := value.(map[string]any)
	return obj, ok
}

func hasKeys(obj map[string]any, keys []string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			return false
		}
	}
	return true
}

// balancedObjects returns every top-level {...} span, skipping braces that
// appear inside JSON strings.
func balancedObjects(s string) []string {
	var out []string
	depth := 0
	start := -1
	inString := false
	escape := false

	for i := 0; i < len(s); i++ {
		b := s[i]
		if escape {
			escape = false
			continue
		}
		if inString {
			switch b {
			case '\\':
				escape = true
			case '"':
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					out = append(out, s[start:i+1])
					start = -1
				}
			}
		}
	}
	return out
}
