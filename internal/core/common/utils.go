package common

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// ParseJSON decodes the first JSON object in a model reply into T. Code
// fences and chatter around the object are ignored.
func ParseJSON[T any](reply string) (T, error) {
	var out T

	body := reply
	if i := strings.Index(body, "```"); i >= 0 {
		body = body[i+3:]
		body = strings.TrimPrefix(body, "json")
		if j := strings.Index(body, "```"); j >= 0 {
			body = body[:j]
		}
	}

	start := strings.IndexByte(body, '{')
	end := strings.LastIndexByte(body, '}')
	if start < 0 || end < start {
		return out, fmt.Errorf("reply holds no JSON object: %q", truncate(reply, 80))
	}
	if err := json.Unmarshal([]byte(body[start:end+1]), &out); err != nil {
		return out, fmt.Errorf("failed to decode reply: %w", err)
	}
	return out, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
