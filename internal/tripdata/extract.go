// internal/tripdata/extract.go
package tripdata

import (
	"encoding/json"
	"regexp"
	"strings"
)

// bracePattern grabs the widest curly-brace-delimited substring: from
// the first "{" to the last "}". Best effort; the validator downstream
// catches accidental matches.
var bracePattern = regexp.MustCompile(`\{[\s\S]*\}`)

var fencePattern = regexp.MustCompile("```(?:json)?[\\s\\S]*?```")

// ExtractTripPayload locates a JSON-shaped trip payload inside an
// assistant response. Structured metadata wins when it carries a
// non-text discriminator; otherwise the reply text is scanned for an
// embedded JSON object. Returns nil when nothing parseable is found;
// parse failures are never surfaced as errors.
func ExtractTripPayload(reply string, metadata interface{}) map[string]interface{} {
	if m, ok := metadata.(map[string]interface{}); ok && m != nil {
		if t, _ := m["type"].(string); t != "text" {
			return m
		}
	}

	if reply == "" {
		return nil
	}

	if match := bracePattern.FindString(reply); match != "" {
		if obj := parseObject(match); obj != nil {
			return obj
		}
	}

	return parseObject(reply)
}

func parseObject(s string) map[string]interface{} {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil
	}
	return obj
}

// StripPayload removes embedded trip JSON (fenced or bare) from a
// reply so only the conversational text remains. A reply that was
// nothing but payload becomes a fixed acknowledgement line.
func StripPayload(reply string) string {
	text := fencePattern.ReplaceAllString(reply, "")
	text = bracePattern.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	if text == "" {
		return DefaultStrippedReply
	}
	return text
}
