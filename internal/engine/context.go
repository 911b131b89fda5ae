package engine

import (
	"fmt"
	"strings"

	"github.com/sworddut/myclaw/internal/provider"
	"github.com/sworddut/myclaw/internal/session"
	"github.com/sworddut/myclaw/internal/tool"
)

// buildContext assembles the model-visible message list from spec.md
// §4.3 "Context assembly": system message, a tail of summary blocks
// folded into a second system message, a windowed slice of the
// non-system history, with any leading orphaned tool-role messages
// stripped. It returns the assembled messages and the count of messages
// trimmed for the context_trim event.
func (e *Engine) buildContext(sess *session.Session) ([]provider.Message, int) {
	var out []provider.Message

	if sysMsg, ok := sess.SystemMessage(); ok {
		out = append(out, toProviderMessage(sysMsg))
	}

	if summaryMsg, ok := summaryContextMessage(sess); ok {
		out = append(out, summaryMsg)
	}

	window := windowedMessages(sess)
	window, trimmed := stripLeadingToolMessages(window)

	for _, m := range window {
		out = append(out, toProviderMessage(m))
	}
	return out, trimmed
}

// windowedMessages slices the non-system message list to
// [max(compressedCount, len-windowSize) : len] (spec.md §4.3).
func windowedMessages(sess *session.Session) []session.Message {
	messages := sess.Messages()
	compressed := sess.CompressedCount()
	windowSize := sess.Runtime.ContextWindowSize
	if windowSize <= 0 {
		windowSize = 20
	}

	start := len(messages) - windowSize
	if start < compressed {
		start = compressed
	}
	if start < 0 {
		start = 0
	}
	if start > len(messages) {
		start = len(messages)
	}
	return messages[start:]
}

// stripLeadingToolMessages removes leading tool-role messages whose
// prompting assistant message was cut off by the window, preventing
// orphaned tool responses from reaching the model (spec.md §4.3, §8
// "Window invariant").
func stripLeadingToolMessages(window []session.Message) ([]session.Message, int) {
	dropped := 0
	for len(window) > 0 && window[0].Role == session.RoleTool {
		window = window[1:]
		dropped++
	}
	return window, dropped
}

// summaryContextMessage emits the tail of at most maxSummaryBlocksInContext
// summary blocks as a synthetic system message (spec.md §4.3).
func summaryContextMessage(sess *session.Session) (provider.Message, bool) {
	summaries := sess.Summaries()
	if len(summaries) == 0 {
		return provider.Message{}, false
	}

	start := len(summaries) - maxSummaryBlocksInContext
	if start < 0 {
		start = 0
	}
	tail := summaries[start:]

	var b strings.Builder
	b.WriteString("Compressed memory blocks:\n")
	for _, block := range tail {
		fmt.Fprintf(&b, "[%d-%d] %s\n\n", block.From, block.To, block.Content)
	}
	return provider.Message{Role: provider.RoleSystem, Content: b.String()}, true
}

// toSessionMessagesForEstimate adapts provider-facing messages to the
// session.Message shape TokenEstimator.EstimateMessages expects; only
// Content is read by the estimator, so that's all this carries over.
func toSessionMessagesForEstimate(messages []provider.Message) []session.Message {
	out := make([]session.Message, len(messages))
	for i, m := range messages {
		out[i] = session.Message{Content: m.Content}
	}
	return out
}

func toProviderMessage(m session.Message) provider.Message {
	calls := make([]tool.Call, 0, len(m.ToolCalls))
	for _, c := range m.ToolCalls {
		calls = append(calls, tool.Call{ID: c.ID, Tool: c.Tool, Input: c.Input})
	}
	return provider.Message{
		Role:       provider.Role(m.Role),
		Content:    m.Content,
		ToolCallID: m.ToolCallID,
		ToolName:   m.ToolName,
		ToolCalls:  calls,
	}
}
