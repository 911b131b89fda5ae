package persistence

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sworddut/myclaw/internal/session"
)

// Log is a single session's append-only JSONL file. Writers append
// serialized Record values; Replay reconstructs the records a line at a
// time, skipping any line that fails to parse (spec.md §7 category 6
// "Replay corruption").
//
// Grounded on the teacher's per-session persistence discipline in
// old_internal/session/session.go (one file per session under a homeDir-
// rooted directory), generalized from a whole-file JSON snapshot to an
// append-only line log per spec.md §4.6.
type Log struct {
	mu   sync.Mutex
	path string
}

// Dir returns the directory holding session JSONL logs under homeDir.
func Dir(homeDir string) string {
	return filepath.Join(homeDir, "sessions")
}

// PathFor returns the JSONL log path for sessionID under homeDir.
func PathFor(homeDir, sessionID string) string {
	return filepath.Join(Dir(homeDir), sessionID+".jsonl")
}

// Open returns a Log bound to path, creating parent directories so the
// first Append call always succeeds.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create session log directory: %w", err)
	}
	return &Log{path: path}, nil
}

// Append writes one JSONL line. Serialized per-Log via mu so concurrent
// callers (SessionLogSubscriber's per-session queue plus a direct write)
// never interleave partial lines.
func (l *Log) Append(rec Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open session log %q: %w", l.path, err)
	}
	defer f.Close()

	encoded, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}
	if _, err := f.Write(append(encoded, '\n')); err != nil {
		return fmt.Errorf("append session record: %w", err)
	}
	return nil
}

// AppendStart/AppendResume/AppendEnd/AppendMessage/AppendSummary are
// convenience wrappers building the matching Record shape before
// appending (spec.md §4.6 record types).
func (l *Log) AppendStart(sessionID, workspace, logPath string) error {
	return l.Append(startRecord(sessionID, workspace, logPath))
}

func (l *Log) AppendResume(sessionID string) error {
	return l.Append(resumeRecord(sessionID))
}

func (l *Log) AppendEnd(sessionID, reason string) error {
	return l.Append(endRecord(sessionID, reason))
}

func (l *Log) AppendMessage(sessionID string, m session.Message) error {
	return l.Append(messageRecord(sessionID, m))
}

func (l *Log) AppendSummary(sessionID string, b session.SummaryBlock) error {
	return l.Append(summaryRecord(sessionID, b))
}

// ReadRecords parses every line of the log at path, in order, silently
// skipping lines that fail to unmarshal (spec.md §7 "Replay corruption").
func ReadRecords(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("scan session log %q: %w", path, err)
	}
	return records, nil
}
