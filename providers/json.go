package providers

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSONObject decodes the JSON object embedded in model output text,
// taking everything from the first '{' to the last '}'. Models often wrap
// requested JSON in prose or code fences.
func ExtractJSONObject(text string, v any) error {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return fmt.Errorf("no JSON object found in text")
	}

	if err := json.Unmarshal([]byte(text[start:end+1]), v); err != nil {
		return fmt.Errorf("decoding JSON object: %w", err)
	}

	return nil
}
