package session

import "testing"

func TestNewSetsSystemMessage(t *testing.T) {
	s := New("s1", "/ws", "/log", Runtime{MaxSteps: 10, ContextWindowSize: 5}, "you are an agent")
	msg, ok := s.SystemMessage()
	if !ok || msg.Content != "you are an agent" {
		t.Fatalf("expected system message to be set, got %+v ok=%v", msg, ok)
	}
}

func TestAppendMessageIsOrderPreserving(t *testing.T) {
	s := New("s1", "/ws", "/log", Runtime{}, "sys")
	s.AppendMessage(Message{Role: RoleUser, Content: "first"})
	s.AppendMessage(Message{Role: RoleAssistant, Content: "second"})

	msgs := s.Messages()
	if len(msgs) != 2 || msgs[0].Content != "first" || msgs[1].Content != "second" {
		t.Fatalf("unexpected message order: %+v", msgs)
	}
	if s.MessageCount() != 2 {
		t.Fatalf("expected MessageCount 2, got %d", s.MessageCount())
	}
}

func TestAppendSummaryEnforcesContiguity(t *testing.T) {
	s := New("s1", "/ws", "/log", Runtime{}, "sys")

	if err := s.AppendSummary(SummaryBlock{From: 0, To: 3, Content: "first chunk"}); err != nil {
		t.Fatalf("first append should succeed: %v", err)
	}
	if err := s.AppendSummary(SummaryBlock{From: 10, To: 12, Content: "gap"}); err == nil {
		t.Fatalf("expected contiguity error for a block that skips ahead")
	}
	if err := s.AppendSummary(SummaryBlock{From: 4, To: 6, Content: "second chunk"}); err != nil {
		t.Fatalf("contiguous append should succeed: %v", err)
	}
	if got := s.CompressedCount(); got != 7 {
		t.Fatalf("expected compressed count 7, got %d", got)
	}
	if len(s.Summaries()) != 2 {
		t.Fatalf("expected 2 summary blocks after the rejected gap, got %d", len(s.Summaries()))
	}
}

func TestReadTracking(t *testing.T) {
	s := New("s1", "/ws", "/log", Runtime{}, "sys")
	if s.HasRead("/ws/a.go") {
		t.Fatalf("expected a.go to be unread initially")
	}
	s.MarkRead("/ws/a.go")
	if !s.HasRead("/ws/a.go") {
		t.Fatalf("expected a.go to be read after MarkRead")
	}
	if s.HasRead("/ws/b.go") {
		t.Fatalf("expected b.go to remain unread")
	}
}

func TestBumpWorkspaceVersionClearsExploration(t *testing.T) {
	s := New("s1", "/ws", "/log", Runtime{}, "sys")
	s.RecordExplored("list_files:.")
	if !s.HasExplored("list_files:.") {
		t.Fatalf("expected signature to be recorded before bump")
	}

	before := s.WorkspaceVersion()
	s.BumpWorkspaceVersion()
	if s.WorkspaceVersion() != before+1 {
		t.Fatalf("expected workspace version to increment")
	}
	if s.HasExplored("list_files:.") {
		t.Fatalf("expected exploration signatures to be cleared after a mutation bump")
	}
}
