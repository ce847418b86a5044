package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseObject recovers a JSON object from a model response. Models wrap
// output in code fences or chat around it often enough that a bare
// json.Unmarshal is not good enough. Candidates are tried in order:
// the raw response, the response with code fences stripped, and the first
// top-level {...} span. The first candidate that parses as an object wins.
func ParseObject(content string) (map[string]any, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty model response")
	}

	candidates := []string{content}
	if stripped := stripCodeFences(content); stripped != content {
		candidates = append(candidates, stripped)
	}
	if span := firstObjectSpan(content); span != "" && span != content {
		candidates = append(candidates, span)
	}

	seen := make(map[string]bool, len(candidates))
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" || seen[candidate] {
			continue
		}
		seen[candidate] = true

		var obj map[string]any
		if err := json.Unmarshal([]byte(candidate), &obj); err == nil {
			return obj, nil
		}
	}

	return nil, fmt.Errorf("no JSON object found in model response")
}

// stripCodeFences drops markdown fence lines (``` or ```json) and keeps
// everything between them
func stripCodeFences(content string) string {
	var kept []string
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// firstObjectSpan returns the slice from the first '{' to the last '}', or
// empty when the response holds no brace pair
func firstObjectSpan(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return content[start : end+1]
}
