package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sworddut/myclaw/internal/session"
)

// PersistedSessionSummary mirrors spec.md §3's PersistedSessionSummary,
// derived by replaying a JSONL file without reconstructing the full
// message list.
type PersistedSessionSummary struct {
	SessionID     string
	Workspace     string
	StartedAt     time.Time
	LastUpdatedAt time.Time
	MessageCount  int
	LogPath       string
}

// ListForWorkspace enumerates every sessions/*.jsonl file under homeDir,
// replays its records into a PersistedSessionSummary, filters to those
// matching workspace (or with no recorded workspace), and sorts by
// LastUpdatedAt (falling back to StartedAt) descending (spec.md §4.6
// "listPersistedSessionsForWorkspace").
func ListForWorkspace(homeDir, workspace string) ([]PersistedSessionSummary, error) {
	dir := Dir(homeDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list session logs: %w", err)
	}

	var out []PersistedSessionSummary
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		summary, err := summarize(path)
		if err != nil {
			continue // skip unreadable file rather than fail the whole list
		}
		if summary.Workspace != "" && summary.Workspace != workspace {
			continue
		}
		out = append(out, summary)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ti := out[i].LastUpdatedAt
		if ti.IsZero() {
			ti = out[i].StartedAt
		}
		tj := out[j].LastUpdatedAt
		if tj.IsZero() {
			tj = out[j].StartedAt
		}
		return ti.After(tj)
	})
	return out, nil
}

func summarize(path string) (PersistedSessionSummary, error) {
	records, err := ReadRecords(path)
	if err != nil {
		return PersistedSessionSummary{}, err
	}
	var out PersistedSessionSummary
	out.LogPath = path
	messageCount := 0
	for _, r := range records {
		if out.SessionID == "" {
			out.SessionID = r.SessionID
		}
		switch r.Type {
		case RecordSessionStart:
			out.Workspace = r.Workspace
			out.StartedAt = r.Timestamp
			out.LastUpdatedAt = r.Timestamp
		case RecordMessage, RecordSummary, RecordSessionResume, RecordSessionEnd:
			out.LastUpdatedAt = r.Timestamp
			if r.Type == RecordMessage {
				messageCount++
			}
		}
	}
	out.MessageCount = messageCount
	if out.SessionID == "" {
		// Fall back to the filename stem when the log has no
		// session_start record (e.g. truncated write).
		base := filepath.Base(path)
		out.SessionID = strings.TrimSuffix(base, ".jsonl")
	}
	return out, nil
}

// Resume reconstructs a *session.Session from its JSONL log at
// PathFor(homeDir, sessionID), preserving message order, tool-call
// metadata, and summary-block boundaries (spec.md §4.6 "resume").
// compressedCount is recomputed as max(to+1) across replayed summary
// blocks, matching spec.md's definition rather than trusting a stored
// field. Returns an error if the log cannot be read (spec.md §7 category
// 7 "Resume failure").
func Resume(homeDir, sessionID string, rt session.Runtime, defaultSystemPrompt string) (*session.Session, int, error) {
	path := PathFor(homeDir, sessionID)
	records, err := ReadRecords(path)
	if err != nil {
		return nil, 0, fmt.Errorf("resume session %q: %w", sessionID, err)
	}
	if len(records) == 0 {
		return nil, 0, fmt.Errorf("resume session %q: log is empty or missing", sessionID)
	}

	workspace := ""
	for _, r := range records {
		if r.Type == RecordSessionStart {
			workspace = r.Workspace
			break
		}
	}

	sess := session.New(sessionID, workspace, path, rt, defaultSystemPrompt)
	sawSystem := false
	messageCount := 0

	for _, r := range records {
		switch r.Type {
		case RecordMessage:
			if session.Role(r.Role) == session.RoleSystem {
				sess.SetSystemMessage(r.Content)
				sawSystem = true
				continue
			}
			sess.AppendMessage(session.Message{
				Role:       session.Role(r.Role),
				Content:    r.Content,
				ToolCallID: r.ToolCallID,
				ToolName:   r.ToolName,
				ToolCalls:  r.ToolCalls,
				Timestamp:  r.Timestamp,
			})
			messageCount++
		case RecordSummary:
			_ = sess.AppendSummary(session.SummaryBlock{
				Timestamp: r.Timestamp,
				From:      r.From,
				To:        r.To,
				Content:   r.Content,
			})
		}
	}

	if !sawSystem && defaultSystemPrompt != "" {
		sess.SetSystemMessage(defaultSystemPrompt)
	}

	return sess, messageCount, nil
}

// PickSession implements spec.md §4.6's pickSession selection: "latest"
// picks summaries[0], a 1-based integer picks by index, anything else is
// matched by session id equality.
func PickSession(summaries []PersistedSessionSummary, specifier string) (PersistedSessionSummary, bool) {
	if len(summaries) == 0 {
		return PersistedSessionSummary{}, false
	}
	if specifier == "" || specifier == "latest" {
		return summaries[0], true
	}
	if n, err := strconv.Atoi(specifier); err == nil {
		idx := n - 1
		if idx >= 0 && idx < len(summaries) {
			return summaries[idx], true
		}
		return PersistedSessionSummary{}, false
	}
	for _, s := range summaries {
		if s.SessionID == specifier {
			return s, true
		}
	}
	return PersistedSessionSummary{}, false
}
