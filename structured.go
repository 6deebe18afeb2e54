package llmanalysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// DecodeStructured extracts a JSON object payload from assistant text.
// It first attempts a direct decode of the trimmed text. If that fails it
// scans the text for balanced top-level {...} substrings (tracking brace
// depth and string/escape state) and keeps the longest one that decodes.
// This tolerates vendors that wrap the payload in commentary despite a
// schema constraint.
//
// Returns ErrInvalidResponse (wrapped) when no candidate decodes.
func DecodeStructured(text string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(text)
	if decodesAsObject(trimmed) {
		return json.RawMessage(trimmed), nil
	}

	var best string
	depth := 0
	start := -1
	inString := false
	escaped := false
	for i := 0; i < len(trimmed); i++ {
		b := trimmed[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				candidate := trimmed[start : i+1]
				if len(candidate) > len(best) && decodesAsObject(candidate) {
					best = candidate
				}
				start = -1
			}
		}
	}

	if best == "" {
		return nil, fmt.Errorf("no decodable JSON object in response text: %w", ErrInvalidResponse)
	}
	return json.RawMessage(best), nil
}

func decodesAsObject(s string) bool {
	if !strings.HasPrefix(s, "{") {
		return false
	}
	var v map[string]interface{}
	return json.Unmarshal([]byte(s), &v) == nil
}

// ValidateAgainstSchema checks a decoded payload against the request's
// JSON Schema. Vendors occasionally drift from the constraint they were
// given; callers opting in via WithSchemaValidation get a hard failure
// instead of a silently malformed payload.
func ValidateAgainstSchema(payload json.RawMessage, schema *StructuredSchema) error {
	if schema == nil {
		return nil
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema.Schema),
		gojsonschema.NewBytesLoader(payload),
	)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		var reasons []string
		for _, desc := range result.Errors() {
			reasons = append(reasons, desc.String())
		}
		return fmt.Errorf("payload does not match schema '%s' (%s): %w",
			schema.Name, strings.Join(reasons, "; "), ErrInvalidResponse)
	}
	return nil
}
