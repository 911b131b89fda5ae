package provider

import (
	"context"
	"fmt"

	"github.com/sworddut/myclaw/internal/tool"
)

// Mock is a deterministic provider used in tests and `myclaw doctor`: it
// echoes the latest user message and never emits tool calls (spec.md
// §4.2 "Mock provider returns a deterministic echo string and no tool
// calls").
type Mock struct{}

func NewMock() *Mock { return &Mock{} }

func (Mock) Chat(_ context.Context, messages []Message, _ []tool.Definition) (Response, error) {
	var last Message
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			last = messages[i]
			break
		}
	}
	if last.Content == "" {
		return Response{Text: "echo: (no user message)"}, nil
	}
	return Response{Text: fmt.Sprintf("echo: %s", last.Content)}, nil
}
