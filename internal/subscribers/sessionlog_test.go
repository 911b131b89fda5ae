package subscribers

import (
	"path/filepath"
	"testing"

	"github.com/sworddut/myclaw/internal/eventbus"
	"github.com/sworddut/myclaw/internal/persistence"
)

func TestSessionLogSubscriberWritesStartAndMessage(t *testing.T) {
	homeDir := t.TempDir()
	logPath := persistence.PathFor(homeDir, "s1")

	sub := NewSessionLogSubscriber(nil)
	sub.Handle(eventbus.NewStart("s1", "/ws", logPath, "system prompt"))
	sub.Handle(eventbus.NewMessage("s1", "user", "hello", "", ""))
	sub.Flush()

	records, err := persistence.ReadRecords(logPath)
	if err != nil {
		t.Fatalf("ReadRecords failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected session_start + initial system message + user message, got %d: %+v", len(records), records)
	}
	if records[0].Type != persistence.RecordSessionStart {
		t.Fatalf("expected first record to be session_start, got %s", records[0].Type)
	}
	if records[2].Role != "user" || records[2].Content != "hello" {
		t.Fatalf("expected the user message to be appended last, got %+v", records[2])
	}
}

func TestSessionLogSubscriberAttachDoesNotDuplicateStart(t *testing.T) {
	homeDir := t.TempDir()
	logPath := persistence.PathFor(homeDir, "s1")

	seed := NewSessionLogSubscriber(nil)
	seed.Handle(eventbus.NewStart("s1", "/ws", logPath, "system prompt"))
	seed.Handle(eventbus.NewMessage("s1", "user", "hello", "", ""))
	seed.Flush()
	seed.Handle(eventbus.NewSessionEnd("s1", "done"))
	seed.Flush()

	before, err := persistence.ReadRecords(logPath)
	if err != nil {
		t.Fatalf("ReadRecords failed: %v", err)
	}

	resumed := NewSessionLogSubscriber(nil)
	resumed.Attach("s1", logPath)
	resumed.Handle(eventbus.NewSessionResume("s1", 1))
	resumed.Flush()

	after, err := persistence.ReadRecords(logPath)
	if err != nil {
		t.Fatalf("ReadRecords failed: %v", err)
	}
	if len(after) != len(before)+1 {
		t.Fatalf("expected Attach+resume to append exactly one record, before=%d after=%d", len(before), len(after))
	}
	if after[len(after)-1].Type != persistence.RecordSessionResume {
		t.Fatalf("expected the appended record to be session_resume, got %s", after[len(after)-1].Type)
	}
	startCount := 0
	for _, r := range after {
		if r.Type == persistence.RecordSessionStart {
			startCount++
		}
	}
	if startCount != 1 {
		t.Fatalf("expected exactly one session_start record after resume, got %d", startCount)
	}
}

func TestSessionLogSubscriberIgnoresEventsBeforeStart(t *testing.T) {
	homeDir := t.TempDir()
	logPath := persistence.PathFor(homeDir, "s1")

	sub := NewSessionLogSubscriber(nil)
	sub.Handle(eventbus.NewMessage("s1", "user", "too early", "", ""))
	sub.Flush()

	if _, err := persistence.ReadRecords(logPath); err == nil {
		t.Fatalf("expected no log file to exist before a start event is seen")
	}
}

func TestPathForLayout(t *testing.T) {
	homeDir := "/home/.myclaw"
	got := persistence.PathFor(homeDir, "abc")
	want := filepath.Join(homeDir, "sessions", "abc.jsonl")
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
