// Package session implements the Session/Message/SummaryBlock data model
// from spec.md §3 and the in-memory session store from spec.md §2/§5.
package session

import (
	"fmt"
	"sync"
	"time"
)

// Role identifies who authored a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCallRequest mirrors a provider-issued tool call attached to an
// assistant message, so that a replayed assistant message carries exactly
// the tool calls the model asked for (spec.md §4.2 "must be replayed
// verbatim").
type ToolCallRequest struct {
	ID    string         `json:"id"`
	Tool  string         `json:"tool"`
	Input map[string]any `json:"input"`
}

// Message is an immutable-once-appended record in a Session's message list
// (spec.md §3).
type Message struct {
	Role       Role              `json:"role"`
	Content    string            `json:"content"`
	ToolCallID string            `json:"toolCallId,omitempty"`
	ToolName   string            `json:"toolName,omitempty"`
	ToolCalls  []ToolCallRequest `json:"toolCalls,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// SummaryBlock is an append-only compressed-memory record (spec.md §3).
type SummaryBlock struct {
	Timestamp time.Time `json:"ts"`
	From      int       `json:"from"`
	To        int       `json:"to"`
	Content   string    `json:"content"`
}

// Runtime carries the per-session tunables from spec.md §6.
type Runtime struct {
	MaxSteps          int
	ContextWindowSize int
}

// Session is the mutable unit of conversation state owned exclusively by
// its turn engine while a turn is executing (spec.md §3).
type Session struct {
	mu sync.Mutex

	ID         string
	Workspace  string
	LogPath    string
	Runtime    Runtime
	CreatedAt  time.Time
	UpdatedAt  time.Time

	messages        []Message // non-system messages only; system message kept separately
	systemMessage   Message
	hasSystem       bool
	summaries       []SummaryBlock
	compressedCount int

	readPaths map[string]struct{}

	// workspaceVersion and exploredSignatures are transient turn-engine
	// bookkeeping (SPEC_FULL §3); they are not persisted, and a resumed
	// session starts at version 0 with an empty set.
	workspaceVersion   int
	exploredSignatures map[string]struct{}
}

// New creates a fresh Session with the given system prompt.
func New(id, workspace, logPath string, rt Runtime, systemPrompt string) *Session {
	now := time.Now()
	s := &Session{
		ID:                 id,
		Workspace:          workspace,
		LogPath:            logPath,
		Runtime:            rt,
		CreatedAt:          now,
		UpdatedAt:          now,
		readPaths:          make(map[string]struct{}),
		exploredSignatures: make(map[string]struct{}),
	}
	s.systemMessage = Message{Role: RoleSystem, Content: systemPrompt, Timestamp: now}
	s.hasSystem = true
	return s
}

// SystemMessage returns the session's system message and whether one is set.
func (s *Session) SystemMessage() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.systemMessage, s.hasSystem
}

// SetSystemMessage installs a system message, used by resume when none was
// captured in the log (spec.md §4.6).
func (s *Session) SetSystemMessage(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.systemMessage = Message{Role: RoleSystem, Content: content, Timestamp: time.Now()}
	s.hasSystem = true
}

// AppendMessage appends msg to the non-system message list. Messages are
// append-only (spec.md §3 invariant 5).
func (s *Session) AppendMessage(msg Message) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	s.messages = append(s.messages, msg)
	s.UpdatedAt = time.Now()
	return len(s.messages) - 1
}

// Messages returns a copy of the non-system message list.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// MessageCount returns the number of non-system messages.
func (s *Session) MessageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// AppendSummary appends a SummaryBlock and advances compressedCount,
// enforcing the contiguity invariant from spec.md §3/§8.
func (s *Session) AppendSummary(block SummaryBlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.summaries) > 0 {
		last := s.summaries[len(s.summaries)-1]
		if block.From != last.To+1 {
			return fmt.Errorf("summary block must start at %d, got %d", last.To+1, block.From)
		}
	}
	if block.To+1 > s.compressedCount {
		s.compressedCount = block.To + 1
	}
	s.summaries = append(s.summaries, block)
	s.UpdatedAt = time.Now()
	return nil
}

// Summaries returns a copy of the summary block list.
func (s *Session) Summaries() []SummaryBlock {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SummaryBlock, len(s.summaries))
	copy(out, s.summaries)
	return out
}

// CompressedCount returns the number of non-system messages already folded
// into summaries.
func (s *Session) CompressedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compressedCount
}

// MarkRead records that path has been observed via read_file (spec.md §4.4).
func (s *Session) MarkRead(canonicalPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readPaths[canonicalPath] = struct{}{}
}

// HasRead reports whether canonicalPath has been read in this session.
func (s *Session) HasRead(canonicalPath string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.readPaths[canonicalPath]
	return ok
}

// WorkspaceVersion returns the current mutation-count version (spec.md
// §4.3, GLOSSARY "Workspace version").
func (s *Session) WorkspaceVersion() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workspaceVersion
}

// BumpWorkspaceVersion increments the workspace version and clears the
// per-version exploration-signature set, called after a successful
// mutation (spec.md §4.3 step 5).
func (s *Session) BumpWorkspaceVersion() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaceVersion++
	s.exploredSignatures = make(map[string]struct{})
}

// HasExplored reports whether signature has already been executed at the
// current workspace version (spec.md §4.3 step 1 duplicate-exploration
// check).
func (s *Session) HasExplored(signature string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, seen := s.exploredSignatures[signature]
	return seen
}

// RecordExplored marks signature as executed at the current workspace
// version.
func (s *Session) RecordExplored(signature string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exploredSignatures[signature] = struct{}{}
}
