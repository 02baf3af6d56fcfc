package persona

import "strings"

const (
	jsonFence  = "```json"
	plainFence = "```"
)

// ExtractCandidate recovers the most likely JSON payload from a model response.
//
// The first ```json fenced block wins, then the first generic fenced block,
// otherwise the text itself. An unterminated fence yields everything after it.
// The result is trimmed and contains no fence, so the function is idempotent.
// Nothing here checks that the payload actually parses.
func ExtractCandidate(raw string) string {
	if i := strings.Index(raw, jsonFence); i >= 0 {
		return strings.TrimSpace(untilFence(raw[i+len(jsonFence):]))
	}
	if i := strings.Index(raw, plainFence); i >= 0 {
		return strings.TrimSpace(untilFence(raw[i+len(plainFence):]))
	}
	return strings.TrimSpace(raw)
}

func untilFence(s string) string {
	if j := strings.Index(s, plainFence); j >= 0 {
		return s[:j]
	}
	return s
}
