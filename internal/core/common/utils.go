package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSON extracts the outermost JSON object from an LLM response and
// unmarshals it into T. Markdown fences and surrounding prose are ignored.
func ParseJSON[T any](response string) (T, error) {
	var zero T
	body := strings.TrimSpace(response)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	}

	start := strings.IndexByte(body, '{')
	end := strings.LastIndexByte(body, '}')
	if start == -1 {
		return zero, fmt.Errorf("no JSON object found in response (missing '{')")
	}
	if end < start {
		return zero, fmt.Errorf("no JSON object found in response (missing '}')")
	}

	var result T
	if err := json.Unmarshal([]byte(body[start:end+1]), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, body[start:end+1])
	}
	return result, nil
}

// BulletList renders one "- item" line per entry.
func BulletList(items []string) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString("- ")
		b.WriteString(it)
		b.WriteByte('\n')
	}
	return b.String()
}
