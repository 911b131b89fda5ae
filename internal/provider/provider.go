// Package provider implements the model-provider contract from spec.md
// §4.2: a single chat(messages, toolDefs) operation, a deterministic mock
// for tests, and an HTTP-backed client with timeout/retry and a
// jsonrepair-backed tool-call fallback parser.
//
// Grounded on the teacher's ports.LLMClient/CompletionRequest/
// CompletionResponse contract (_teacher_ref/ports/llm.go) and its
// OllamaClient request/response loop (_teacher_ref/old_internal/llm/
// ollama_client.go).
package provider

import (
	"context"

	"github.com/sworddut/myclaw/internal/tool"
)

// Role mirrors session.Role's string values so this package does not need
// to import internal/session.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is the provider-facing conversation message shape.
type Message struct {
	Role       Role
	Content    string
	ToolCallID string
	ToolName   string
	ToolCalls  []tool.Call
}

// Response is a provider's reply: either plain text, or one or more
// parsed tool calls (spec.md §4.2).
type Response struct {
	Text      string
	ToolCalls []tool.Call
}

// EmptyResponseSentinel is the canonical placeholder spec.md §4.3's
// empty-response normalization step recognizes and replaces with a
// friendlier message before it reaches the user.
const EmptyResponseSentinel = "Model returned an empty response…"

// Chat is the single operation every provider implements.
type Chat interface {
	Chat(ctx context.Context, messages []Message, toolDefs []tool.Definition) (Response, error)
}
