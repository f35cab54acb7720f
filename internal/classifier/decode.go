package classifier

import (
	"encoding/json"
	"regexp"
)

var (
	// fencedObjectPattern matches an object inside a markdown code block: ```json { ... } ```
	fencedObjectPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*\\})\\s*```")
	// objectPattern spans the first '{' to the last '}'.
	objectPattern = regexp.MustCompile(`(?s)\{.*\}`)
)

// decodeObject decodes LLM output into a JSON object. Output that is not
// valid JSON on its own is searched for an embedded object; that fallback is
// best effort and can still fail or pick up the wrong span.
func decodeObject(op, raw string) (map[string]json.RawMessage, error) {
	if obj, ok := unmarshalObject(raw); ok {
		return obj, nil
	}

	if candidate := extractObject(raw); candidate != "" {
		if obj, ok := unmarshalObject(candidate); ok {
			return obj, nil
		}
	}

	return nil, &ParseError{Op: op, Reason: "no JSON object found", Excerpt: excerpt(raw)}
}

func unmarshalObject(s string) (map[string]json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func extractObject(raw string) string {
	if matches := fencedObjectPattern.FindStringSubmatch(raw); len(matches) > 1 {
		return matches[1]
	}
	return objectPattern.FindString(raw)
}

// stringField reads a string member of obj, returning "" when it is absent
// or not a string.
func stringField(obj map[string]json.RawMessage, key string) string {
	raw, ok := obj[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
