// internal/generate/parse.go
package generate

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrNoJSON means no JSON object could be recovered from the model text.
	ErrNoJSON = errors.New("no JSON object found in model response")
	// ErrEmptyResult means the model returned a JSON value that is not a
	// non-empty object. An empty map is a failure, not a valid empty result.
	ErrEmptyResult = errors.New("model returned no field values")
)

var (
	fencedBlock    = regexp.MustCompile("(?s)```(?:json|javascript)?\\s*(.*?)```")
	trailingCommas = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractValueMap recovers a key-value object from raw model text. Models
// wrap JSON in fenced code blocks, prepend prose, and emit trailing commas;
// all of that is tolerated. Anything that does not decode to a non-empty
// object fails.
func ExtractValueMap(text string) (map[string]any, error) {
	candidate := text
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		candidate = m[1]
	}

	obj, ok := firstBalancedObject(candidate)
	if !ok {
		// The fence may have cut the object off; fall back to the full text.
		if obj, ok = firstBalancedObject(text); !ok {
			return nil, ErrNoJSON
		}
	}

	values, err := decodeObject(obj)
	if err != nil {
		// Trailing commas are the most common malformation; repair and retry.
		values, err = decodeObject(trailingCommas.ReplaceAllString(obj, "$1"))
	}
	if err != nil {
		return nil, ErrNoJSON
	}
	if len(values) == 0 {
		return nil, ErrEmptyResult
	}
	return values, nil
}

func decodeObject(s string) (map[string]any, error) {
	var values map[string]any
	if err := json.Unmarshal([]byte(s), &values); err != nil {
		return nil, err
	}
	return values, nil
}

// firstBalancedObject scans for the first balanced top-level {...} in the
// text, respecting string literals and escapes.
func firstBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
