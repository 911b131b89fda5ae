// Package eventbus implements the in-process, synchronous publish/subscribe
// fan-out described in spec.md §4.5 and the AgentEvent tagged union from
// §3/§6.
package eventbus

import "time"

// Event is the contract every AgentEvent variant satisfies. Consumers
// switch exhaustively on Type().
type Event interface {
	Type() string
	Session() string
	At() time.Time
}

type base struct {
	SessionID string
	Timestamp time.Time
}

func (b base) Session() string { return b.SessionID }
func (b base) At() time.Time   { return b.Timestamp }

func newBase(sessionID string) base {
	return base{SessionID: sessionID, Timestamp: time.Now()}
}

// StartEvent introduces a new session; a resumed session is announced
// with SessionResumeEvent instead.
type StartEvent struct {
	base
	Workspace    string
	LogPath      string
	SystemPrompt string
}

func (StartEvent) Type() string { return "start" }

// NewStart builds a StartEvent.
func NewStart(sessionID, workspace, logPath, systemPrompt string) StartEvent {
	return StartEvent{base: newBase(sessionID), Workspace: workspace, LogPath: logPath, SystemPrompt: systemPrompt}
}

// SessionResumeEvent marks a session reconstructed from its JSONL log.
type SessionResumeEvent struct {
	base
	MessageCount int
}

func (SessionResumeEvent) Type() string { return "session_resume" }

func NewSessionResume(sessionID string, messageCount int) SessionResumeEvent {
	return SessionResumeEvent{base: newBase(sessionID), MessageCount: messageCount}
}

// SessionEndEvent marks session teardown.
type SessionEndEvent struct {
	base
	Reason string
}

func (SessionEndEvent) Type() string { return "session_end" }

func NewSessionEnd(sessionID, reason string) SessionEndEvent {
	return SessionEndEvent{base: newBase(sessionID), Reason: reason}
}

// MessageEvent is emitted whenever a message is appended to a session.
type MessageEvent struct {
	base
	Role       string
	Content    string
	ToolCallID string
	ToolName   string
}

func (MessageEvent) Type() string { return "message" }

func NewMessage(sessionID, role, content, toolCallID, toolName string) MessageEvent {
	return MessageEvent{base: newBase(sessionID), Role: role, Content: content, ToolCallID: toolCallID, ToolName: toolName}
}

// SummaryEvent is emitted each time the sliding-window compressor produces a
// new SummaryBlock.
type SummaryEvent struct {
	base
	From    int
	To      int
	Content string
}

func (SummaryEvent) Type() string { return "summary" }

func NewSummary(sessionID string, from, to int, content string) SummaryEvent {
	return SummaryEvent{base: newBase(sessionID), From: from, To: to, Content: content}
}

// ContextTrimEvent reports that leading orphaned tool-role messages were
// stripped from a constructed context window.
type ContextTrimEvent struct {
	base
	Dropped int
}

func (ContextTrimEvent) Type() string { return "context_trim" }

func NewContextTrim(sessionID string, dropped int) ContextTrimEvent {
	return ContextTrimEvent{base: newBase(sessionID), Dropped: dropped}
}

// ModelRequestStartEvent is emitted immediately before a provider.Chat call.
type ModelRequestStartEvent struct {
	base
	Step            int
	MessageCount    int
	EstimatedTokens int
}

func (ModelRequestStartEvent) Type() string { return "model_request_start" }

func NewModelRequestStart(sessionID string, step, messageCount, estimatedTokens int) ModelRequestStartEvent {
	return ModelRequestStartEvent{base: newBase(sessionID), Step: step, MessageCount: messageCount, EstimatedTokens: estimatedTokens}
}

// ModelResponseEvent is emitted after a provider.Chat call returns.
type ModelResponseEvent struct {
	base
	Step          int
	Text          string
	ToolCallCount int
	Duration      time.Duration
}

func (ModelResponseEvent) Type() string { return "model_response" }

func NewModelResponse(sessionID string, step int, text string, toolCallCount int, d time.Duration) ModelResponseEvent {
	return ModelResponseEvent{base: newBase(sessionID), Step: step, Text: text, ToolCallCount: toolCallCount, Duration: d}
}

// ToolCallEvent is emitted immediately before a tool executes.
type ToolCallEvent struct {
	base
	Step   int
	Tool   string
	CallID string
	Input  map[string]any
}

func (ToolCallEvent) Type() string { return "tool_call" }

func NewToolCall(sessionID string, step int, tool, callID string, input map[string]any) ToolCallEvent {
	return ToolCallEvent{base: newBase(sessionID), Step: step, Tool: tool, CallID: callID, Input: input}
}

// ToolResultEvent is emitted immediately after a tool executes.
type ToolResultEvent struct {
	base
	Step     int
	Tool     string
	CallID   string
	OK       bool
	Output   string
	Duration time.Duration
}

func (ToolResultEvent) Type() string { return "tool_result" }

func NewToolResult(sessionID string, step int, tool, callID string, ok bool, output string, d time.Duration) ToolResultEvent {
	return ToolResultEvent{base: newBase(sessionID), Step: step, Tool: tool, CallID: callID, OK: ok, Output: output, Duration: d}
}

// OscillationObserveEvent reports the ring-buffer metrics computed after a
// step that executed at least one tool call.
type OscillationObserveEvent struct {
	base
	Step                int
	RepeatRatio         float64
	NoveltyRatio        float64
	NoMutationSteps     int
	PossibleOscillation bool
}

func (OscillationObserveEvent) Type() string { return "oscillation_observe" }

func NewOscillationObserve(sessionID string, step int, repeatRatio, noveltyRatio float64, noMutationSteps int, possible bool) OscillationObserveEvent {
	return OscillationObserveEvent{
		base:                newBase(sessionID),
		Step:                step,
		RepeatRatio:         repeatRatio,
		NoveltyRatio:        noveltyRatio,
		NoMutationSteps:     noMutationSteps,
		PossibleOscillation: possible,
	}
}

// FinalEvent marks a turn's completion with the assistant's final text.
type FinalEvent struct {
	base
	Text string
	Step int
}

func (FinalEvent) Type() string { return "final" }

func NewFinal(sessionID, text string, step int) FinalEvent {
	return FinalEvent{base: newBase(sessionID), Text: text, Step: step}
}

// MaxStepsEvent marks a turn that exhausted its step budget.
type MaxStepsEvent struct {
	base
	MaxSteps int
}

func (MaxStepsEvent) Type() string { return "max_steps" }

func NewMaxSteps(sessionID string, maxSteps int) MaxStepsEvent {
	return MaxStepsEvent{base: newBase(sessionID), MaxSteps: maxSteps}
}
