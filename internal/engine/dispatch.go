package engine

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sworddut/myclaw/internal/eventbus"
	"github.com/sworddut/myclaw/internal/session"
	"github.com/sworddut/myclaw/internal/telemetry"
	"github.com/sworddut/myclaw/internal/tool"
)

// dispatchCalls executes every parsed tool call for one step, following
// spec.md §4.3 "Tool dispatch": exploration-signature dedup, tool_call/
// tool_result event emission, a TOOL_RESULT tool-role message appended
// per call, and a workspaceVersion bump on a successful mutation. It
// feeds each call's signature and output fingerprint into osc and
// returns whether any call performed a successful mutation.
func (e *Engine) dispatchCalls(ctx context.Context, sess *session.Session, step int, calls []tool.Call, osc *oscillationTracker) bool {
	anyMutated := false
	var signatures, fingerprints []string

	for _, call := range calls {
		signature := call.Signature(sess.WorkspaceVersion())
		signatures = append(signatures, signature)

		if tool.IsExploration(call) && sess.HasExplored(signature) {
			result := tool.Failure(call.ID, "duplicate exploration call suppressed for this workspace version")
			e.appendToolResult(sess, step, call, result, 0)
			fingerprints = append(fingerprints, "")
			continue
		}

		e.Bus.Publish(eventbus.NewToolCall(sess.ID, step, call.Tool, call.ID, call.Input))

		toolCtx, span := telemetry.StartTool(ctx, sess.ID, call.Tool, sess.WorkspaceVersion())

		executor, err := e.Registry.Get(call.Tool)
		var result *tool.Result
		start := time.Now()
		if err != nil {
			result = tool.Failure(call.ID, err.Error())
		} else {
			result = executor.Execute(toolCtx, &tool.Deps{Workspace: e.Workspace, Session: sess, Approver: e.Approver}, call)
			if result.OK && executor.IsMutation() {
				anyMutated = true
			}
		}
		duration := time.Since(start)
		span.End()

		sess.RecordExplored(signature)
		e.appendToolResult(sess, step, call, result, duration)
		fingerprints = append(fingerprints, fingerprint(result.Output))
	}

	osc.observe(signatures, fingerprints, anyMutated)
	return anyMutated
}

func (e *Engine) appendToolResult(sess *session.Session, step int, call tool.Call, result *tool.Result, duration time.Duration) {
	e.Bus.Publish(eventbus.NewToolResult(sess.ID, step, call.Tool, call.ID, result.OK, result.Output, duration))
	sess.AppendMessage(session.Message{
		Role:       session.RoleTool,
		Content:    "TOOL_RESULT " + encodeToolResult(result),
		ToolCallID: call.ID,
		ToolName:   call.Tool,
	})
}

// encodeToolResult renders a tool.Result as the {json} payload spec.md
// §4.3 step 4 appends after the "TOOL_RESULT " prefix.
func encodeToolResult(result *tool.Result) string {
	encoded, err := json.Marshal(struct {
		OK     bool   `json:"ok"`
		Output string `json:"output"`
	}{OK: result.OK, Output: result.Output})
	if err != nil {
		return `{"ok":false,"output":"failed to encode tool result"}`
	}
	return string(encoded)
}
