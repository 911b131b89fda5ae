package provider

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/kaptinlin/jsonrepair"

	"github.com/sworddut/myclaw/internal/tool"
)

// candidateToolCall is the only accepted shape for a fallback-parsed tool
// call (spec.md §4.2): {"type":"tool_call","tool":<name>,"input":<object>}.
type candidateToolCall struct {
	Type  string         `json:"type"`
	Tool  string         `json:"tool"`
	Input map[string]any `json:"input"`
}

// ParseFallbackToolCall scans assistant text for the first balanced JSON
// object, or a fenced ```json block if no bare object is found, and
// returns a tool.Call if (and only if) the candidate has the accepted
// tool_call shape. Malformed or differently-shaped candidates are
// silently ignored, matching spec.md §4.2's fallback-parser contract.
func ParseFallbackToolCall(text string) (tool.Call, bool) {
	for _, candidate := range candidateJSONSpans(text) {
		if call, ok := decodeToolCall(candidate); ok {
			return call, true
		}
	}
	return tool.Call{}, false
}

func candidateJSONSpans(text string) []string {
	var spans []string
	if span, ok := firstBalancedObject(text); ok {
		spans = append(spans, span)
	}
	if span, ok := firstFencedJSON(text); ok {
		spans = append(spans, span)
	}
	return spans
}

// firstBalancedObject returns the first top-level {...} span in text,
// tolerating braces nested inside string literals.
func firstBalancedObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
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
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

func firstFencedJSON(text string) (string, bool) {
	const fence = "```json"
	start := strings.Index(text, fence)
	if start < 0 {
		return "", false
	}
	rest := text[start+len(fence):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

func decodeToolCall(candidate string) (tool.Call, bool) {
	var c candidateToolCall
	if err := json.Unmarshal([]byte(candidate), &c); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(candidate)
		if repairErr != nil {
			return tool.Call{}, false
		}
		if err := json.Unmarshal([]byte(repaired), &c); err != nil {
			return tool.Call{}, false
		}
	}
	if c.Type != "tool_call" || c.Tool == "" {
		return tool.Call{}, false
	}
	if c.Input == nil {
		c.Input = map[string]any{}
	}
	return tool.Call{ID: uuid.NewString(), Tool: c.Tool, Input: c.Input}, true
}
