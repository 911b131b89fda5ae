package engine

import (
	"context"
	"testing"

	"github.com/sworddut/myclaw/internal/eventbus"
	"github.com/sworddut/myclaw/internal/interrupt"
	"github.com/sworddut/myclaw/internal/provider"
	"github.com/sworddut/myclaw/internal/session"
	"github.com/sworddut/myclaw/internal/tool"
	"github.com/sworddut/myclaw/internal/workspace"
)

// scriptedChat replays a fixed sequence of Response values, one per Chat
// call, for deterministic turn-engine tests.
type scriptedChat struct {
	responses []provider.Response
	calls     int
}

func (s *scriptedChat) Chat(_ context.Context, _ []provider.Message, _ []tool.Definition) (provider.Response, error) {
	if s.calls >= len(s.responses) {
		return provider.Response{Text: "out of script"}, nil
	}
	r := s.responses[s.calls]
	s.calls++
	return r, nil
}

func newTestEngine(t *testing.T, chat provider.Chat) (*Engine, *session.Session) {
	t.Helper()
	ws, err := workspace.New(t.TempDir())
	if err != nil {
		t.Fatalf("workspace.New failed: %v", err)
	}
	registry := tool.NewRegistry()
	bus := eventbus.New(nil)
	interrupts := interrupt.NewRegistry[session.Message]()
	eng := New(chat, registry, ws, tool.DenyAllApprover{}, bus, interrupts, nil)
	sess := session.New("s1", ws.Root(), "/tmp/s1.jsonl", session.Runtime{MaxSteps: 5, ContextWindowSize: 40}, "system prompt")
	return eng, sess
}

func TestRunTurnReturnsFinalTextWhenNoToolCalls(t *testing.T) {
	chat := &scriptedChat{responses: []provider.Response{
		{Text: "here is your answer"},
	}}
	eng, sess := newTestEngine(t, chat)

	text, err := eng.RunTurn(context.Background(), sess, "what is the answer?")
	if err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}
	if text != "here is your answer" {
		t.Fatalf("expected final text to pass through, got %q", text)
	}
}

func TestRunTurnRejectsMultipleMutationsInOneStep(t *testing.T) {
	chat := &scriptedChat{responses: []provider.Response{
		{ToolCalls: []tool.Call{
			{ID: "1", Tool: "write_file", Input: map[string]any{"path": "a.txt", "content": "a", "allowCreate": true}},
			{ID: "2", Tool: "write_file", Input: map[string]any{"path": "b.txt", "content": "b", "allowCreate": true}},
		}},
		{Text: "done"},
	}}
	eng, sess := newTestEngine(t, chat)

	text, err := eng.RunTurn(context.Background(), sess, "write two files")
	if err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}
	if text != "done" {
		t.Fatalf("expected the turn to continue to a final response, got %q", text)
	}

	found := false
	for _, m := range sess.Messages() {
		if m.Role == session.RoleTool && m.Content == "TOOL_RESULT Batch rejected: at most one mutation tool call is allowed per step." {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a batch-rejected tool message in session history, got %+v", sess.Messages())
	}
	if sess.WorkspaceVersion() != 0 {
		t.Fatalf("expected workspace version to stay at 0 after a rejected batch, got %d", sess.WorkspaceVersion())
	}
}

func TestRunTurnStopsAtMaxSteps(t *testing.T) {
	var responses []provider.Response
	for i := 0; i < 10; i++ {
		responses = append(responses, provider.Response{ToolCalls: []tool.Call{
			{ID: "x", Tool: "list_files", Input: map[string]any{"path": "."}},
		}})
	}
	chat := &scriptedChat{responses: responses}
	eng, sess := newTestEngine(t, chat)

	text, err := eng.RunTurn(context.Background(), sess, "explore forever")
	if err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}
	if text != StandardStoppedMessage {
		t.Fatalf("expected the standard stopped message, got %q", text)
	}
}

func TestRunTurnDispatchesSingleMutationSuccessfully(t *testing.T) {
	chat := &scriptedChat{responses: []provider.Response{
		{ToolCalls: []tool.Call{
			{ID: "1", Tool: "write_file", Input: map[string]any{"path": "a.txt", "content": "hello", "allowCreate": true}},
		}},
		{Text: "wrote the file"},
	}}
	eng, sess := newTestEngine(t, chat)

	text, err := eng.RunTurn(context.Background(), sess, "write a file")
	if err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}
	if text != "wrote the file" {
		t.Fatalf("unexpected final text: %q", text)
	}
	if sess.WorkspaceVersion() != 1 {
		t.Fatalf("expected workspace version to bump to 1, got %d", sess.WorkspaceVersion())
	}
}
