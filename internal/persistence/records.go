// Package persistence implements the JSONL session log from spec.md
// §4.6: append-only records, resume-by-replay, and workspace-scoped
// session listing.
//
// Grounded on the teacher's session.Manager
// (_teacher_ref/old_internal/session/session.go): homeDir-rooted storage
// directory, per-session mutex discipline, and a persistence queue
// pattern — generalized here from whole-file JSON snapshots to an
// append-only JSONL log, since spec.md §4.6 requires a durable,
// crash-safe, line-oriented format rather than an overwritten snapshot.
package persistence

import (
	"time"

	"github.com/sworddut/myclaw/internal/session"
)

// RecordType discriminates a persisted JSONL line.
type RecordType string

const (
	RecordSessionStart  RecordType = "session_start"
	RecordSessionResume RecordType = "session_resume"
	RecordSessionEnd    RecordType = "session_end"
	RecordMessage       RecordType = "message"
	RecordSummary       RecordType = "summary"
)

// Record is the on-disk shape of one JSONL line in a session log. Only
// the fields relevant to RecordType are populated.
type Record struct {
	Type      RecordType `json:"type"`
	Timestamp time.Time  `json:"timestamp"`
	SessionID string     `json:"sessionId"`
	Workspace string     `json:"workspace,omitempty"`
	LogPath   string     `json:"logPath,omitempty"`
	Reason    string     `json:"reason,omitempty"`

	Role       string                    `json:"role,omitempty"`
	Content    string                    `json:"content,omitempty"`
	ToolCallID string                    `json:"toolCallId,omitempty"`
	ToolName   string                    `json:"toolName,omitempty"`
	ToolCalls  []session.ToolCallRequest `json:"toolCalls,omitempty"`

	From int `json:"from,omitempty"`
	To   int `json:"to,omitempty"`
}

func startRecord(sessionID, workspace, logPath string) Record {
	return Record{Type: RecordSessionStart, Timestamp: time.Now(), SessionID: sessionID, Workspace: workspace, LogPath: logPath}
}

func resumeRecord(sessionID string) Record {
	return Record{Type: RecordSessionResume, Timestamp: time.Now(), SessionID: sessionID}
}

func endRecord(sessionID, reason string) Record {
	return Record{Type: RecordSessionEnd, Timestamp: time.Now(), SessionID: sessionID, Reason: reason}
}

func messageRecord(sessionID string, m session.Message) Record {
	return Record{
		Type: RecordMessage, Timestamp: m.Timestamp, SessionID: sessionID,
		Role: string(m.Role), Content: m.Content, ToolCallID: m.ToolCallID,
		ToolName: m.ToolName, ToolCalls: m.ToolCalls,
	}
}

func summaryRecord(sessionID string, b session.SummaryBlock) Record {
	return Record{Type: RecordSummary, Timestamp: b.Timestamp, SessionID: sessionID, From: b.From, To: b.To, Content: b.Content}
}
