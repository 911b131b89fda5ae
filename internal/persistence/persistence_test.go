package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sworddut/myclaw/internal/session"
)

func TestAppendAndReadRecordsRoundTrip(t *testing.T) {
	homeDir := t.TempDir()
	path := PathFor(homeDir, "s1")
	log, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := log.AppendStart("s1", "/ws", path); err != nil {
		t.Fatalf("AppendStart failed: %v", err)
	}
	if err := log.AppendMessage("s1", session.Message{Role: session.RoleUser, Content: "hello"}); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	if err := log.AppendSummary("s1", session.SummaryBlock{From: 0, To: 0, Content: "summarized hello"}); err != nil {
		t.Fatalf("AppendSummary failed: %v", err)
	}
	if err := log.AppendEnd("s1", "done"); err != nil {
		t.Fatalf("AppendEnd failed: %v", err)
	}

	records, err := ReadRecords(path)
	if err != nil {
		t.Fatalf("ReadRecords failed: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}
	if records[0].Type != RecordSessionStart || records[3].Type != RecordSessionEnd {
		t.Fatalf("unexpected record order: %+v", records)
	}
}

func TestReadRecordsSkipsCorruptLines(t *testing.T) {
	homeDir := t.TempDir()
	path := PathFor(homeDir, "s1")
	log, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := log.AppendStart("s1", "/ws", path); err != nil {
		t.Fatalf("AppendStart failed: %v", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("append corrupt line: %v", err)
	}
	if _, err := f.WriteString("{not valid json\n"); err != nil {
		t.Fatalf("write corrupt line: %v", err)
	}
	f.Close()

	if err := log.AppendMessage("s1", session.Message{Role: session.RoleUser, Content: "after corruption"}); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	records, err := ReadRecords(path)
	if err != nil {
		t.Fatalf("ReadRecords should tolerate a corrupt line, got error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected the corrupt line to be skipped, leaving 2 records, got %d", len(records))
	}
}

func TestResumeReconstructsMessagesAndSummaries(t *testing.T) {
	homeDir := t.TempDir()
	path := PathFor(homeDir, "s1")
	log, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := log.AppendStart("s1", "/ws", path); err != nil {
		t.Fatalf("AppendStart failed: %v", err)
	}
	if err := log.AppendMessage("s1", session.Message{Role: session.RoleUser, Content: "hi"}); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	if err := log.AppendMessage("s1", session.Message{Role: session.RoleAssistant, Content: "hello back"}); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	if err := log.AppendSummary("s1", session.SummaryBlock{From: 0, To: 1, Content: "chat so far"}); err != nil {
		t.Fatalf("AppendSummary failed: %v", err)
	}

	sess, messageCount, err := Resume(homeDir, "s1", session.Runtime{MaxSteps: 10, ContextWindowSize: 5}, "default sys")
	if err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if messageCount != 2 {
		t.Fatalf("expected message count 2, got %d", messageCount)
	}
	msgs := sess.Messages()
	if len(msgs) != 2 || msgs[0].Content != "hi" || msgs[1].Content != "hello back" {
		t.Fatalf("unexpected replayed messages: %+v", msgs)
	}
	if sess.CompressedCount() != 2 {
		t.Fatalf("expected compressed count 2, got %d", sess.CompressedCount())
	}
	if sess.Workspace != "/ws" {
		t.Fatalf("expected workspace carried from session_start, got %q", sess.Workspace)
	}
}

func TestResumeFailsOnMissingLog(t *testing.T) {
	homeDir := t.TempDir()
	if _, _, err := Resume(homeDir, "does-not-exist", session.Runtime{}, "sys"); err == nil {
		t.Fatalf("expected an error resuming a session with no log file")
	}
}

func TestListForWorkspaceFiltersAndSortsDescending(t *testing.T) {
	homeDir := t.TempDir()

	writeSession := func(id, workspace string) {
		path := PathFor(homeDir, id)
		log, err := Open(path)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		if err := log.AppendStart(id, workspace, path); err != nil {
			t.Fatalf("AppendStart failed: %v", err)
		}
	}

	writeSession("s1", "/ws-a")
	writeSession("s2", "/ws-b")
	writeSession("s3", "/ws-a")

	summaries, err := ListForWorkspace(homeDir, "/ws-a")
	if err != nil {
		t.Fatalf("ListForWorkspace failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 sessions for /ws-a, got %d: %+v", len(summaries), summaries)
	}
	for _, s := range summaries {
		if s.Workspace != "/ws-a" {
			t.Fatalf("expected only /ws-a sessions, found %q", s.Workspace)
		}
	}
	if summaries[0].SessionID != "s3" {
		t.Fatalf("expected the most recently written /ws-a session (s3) first, got %q", summaries[0].SessionID)
	}
}

func TestPickSessionBySpecifier(t *testing.T) {
	summaries := []PersistedSessionSummary{
		{SessionID: "newest"},
		{SessionID: "middle"},
		{SessionID: "oldest"},
	}

	if picked, ok := PickSession(summaries, "latest"); !ok || picked.SessionID != "newest" {
		t.Fatalf("expected 'latest' to pick the first summary, got %+v ok=%v", picked, ok)
	}
	if picked, ok := PickSession(summaries, "2"); !ok || picked.SessionID != "middle" {
		t.Fatalf("expected index 2 to pick the second summary, got %+v ok=%v", picked, ok)
	}
	if picked, ok := PickSession(summaries, "oldest"); !ok || picked.SessionID != "oldest" {
		t.Fatalf("expected id lookup to pick by SessionID, got %+v ok=%v", picked, ok)
	}
	if _, ok := PickSession(summaries, "unknown-id"); ok {
		t.Fatalf("expected an unmatched specifier to report not found")
	}
	if _, ok := PickSession(summaries, "99"); ok {
		t.Fatalf("expected an out-of-range index to report not found")
	}
}

func TestDirIsHomeDirScopedSessionsSubdirectory(t *testing.T) {
	if got := Dir("/home/.myclaw"); got != filepath.Join("/home/.myclaw", "sessions") {
		t.Fatalf("unexpected sessions dir: %s", got)
	}
}
