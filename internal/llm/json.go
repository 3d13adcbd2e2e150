package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse is returned when model output cannot be parsed into
// the expected structure.
var ErrMalformedResponse = errors.New("malformed model response")

// ParseJSONObject decodes the outermost JSON object found in raw into v.
// Markdown code fences and any prose around the object are ignored.
// Unknown fields are tolerated; type mismatches are not.
func ParseJSONObject(raw string, v any) error {
	body := stripCodeFence(strings.TrimSpace(raw))

	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("%w: no JSON object in output", ErrMalformedResponse)
	}

	if err := json.Unmarshal([]byte(body[start:end+1]), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop the info string ("json") on the opening fence line.
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
