// Package engine implements the agent turn state machine from spec.md
// §4.3: context assembly, sliding-window compression, tool dispatch,
// oscillation observation, and the idle → ... → final/max_steps loop.
//
// Grounded on the teacher's ReactCore turn loop
// (_teacher_ref/old_internal/agent/core.go), generalized from its
// multi-handler (messageProcessor/llmHandler/toolHandler/promptHandler)
// split into the single fixed-catalog loop spec.md §4.3 specifies, with
// the teacher's streaming/parallel-subagent machinery removed (spec.md
// §1 Non-goals: no streaming output, no multi-agent coordination).
package engine

import (
	"context"
	"time"

	"github.com/sworddut/myclaw/internal/eventbus"
	"github.com/sworddut/myclaw/internal/interrupt"
	"github.com/sworddut/myclaw/internal/logging"
	"github.com/sworddut/myclaw/internal/provider"
	"github.com/sworddut/myclaw/internal/session"
	"github.com/sworddut/myclaw/internal/telemetry"
	"github.com/sworddut/myclaw/internal/tool"
	"github.com/sworddut/myclaw/internal/workspace"
)

// Tunable constants from spec.md §4.3.
const (
	maxSummaryBlocksInContext = 3
	compressionTrigger        = 40
	compressionChunk          = 20
	oscillationRingCapacity   = 6
)

// StandardStoppedMessage is returned when a turn exhausts its step
// budget (spec.md §4.3 "maxSteps_reached → return standard 'stopped'
// message").
const StandardStoppedMessage = "Stopped after reaching the maximum number of steps for this turn."

// Engine drives a single session's turns against a provider and tool
// registry. It holds no session-specific state itself; everything it
// needs lives on the *session.Session passed into RunTurn.
type Engine struct {
	Chat       provider.Chat
	Model      string
	Registry   *tool.Registry
	Workspace  *workspace.Workspace
	Approver   tool.Approver
	Bus        *eventbus.Bus
	Estimator  *session.TokenEstimator
	Interrupts *interrupt.Registry[session.Message]
	log        *logging.Logger
}

// New builds an Engine. Bus, interrupts, and log may be nil; a no-op bus,
// a fresh per-session interrupt registry, and a default logger are
// substituted. Callers that also run an AsyncCheckSubscriber must pass
// the same *interrupt.Registry[session.Message] to both so the subscriber's
// enqueued LINT_FAIL messages reach the engine's drain (SPEC_FULL §4.5).
func New(chat provider.Chat, registry *tool.Registry, ws *workspace.Workspace, approver tool.Approver, bus *eventbus.Bus, interrupts *interrupt.Registry[session.Message], log *logging.Logger) *Engine {
	if approver == nil {
		approver = tool.DenyAllApprover{}
	}
	if bus == nil {
		bus = eventbus.New(nil)
	}
	if interrupts == nil {
		interrupts = interrupt.NewRegistry[session.Message]()
	}
	if log == nil {
		log = logging.New("engine", nil, logging.Info)
	}
	return &Engine{
		Chat:       chat,
		Registry:   registry,
		Workspace:  ws,
		Approver:   approver,
		Bus:        bus,
		Estimator:  session.NewTokenEstimator(),
		Interrupts: interrupts,
		log:        log,
	}
}

// RunTurn executes one full turn (spec.md §4.3's state machine) for
// userText appended to sess, and returns the assistant's final text.
func (e *Engine) RunTurn(ctx context.Context, sess *session.Session, userText string) (string, error) {
	ctx, turnSpan := telemetry.StartTurn(ctx, sess.ID)
	defer turnSpan.End()

	sess.AppendMessage(session.Message{Role: session.RoleUser, Content: userText})
	e.Bus.Publish(eventbus.NewMessage(sess.ID, string(session.RoleUser), userText, "", ""))

	e.drainInterrupts(sess)
	e.compress(sess)

	osc := newOscillationTracker()

	for step := 1; step <= sess.Runtime.MaxSteps; step++ {
		messages, trimmed := e.buildContext(sess)
		if trimmed > 0 {
			e.Bus.Publish(eventbus.NewContextTrim(sess.ID, trimmed))
		}

		estTokens := e.Estimator.EstimateMessages(toSessionMessagesForEstimate(messages))
		e.Bus.Publish(eventbus.NewModelRequestStart(sess.ID, step, len(messages), estTokens))

		modelCtx, modelSpan := telemetry.StartModelRequest(ctx, sess.ID, e.Model, step)
		start := time.Now()
		resp, err := e.Chat.Chat(modelCtx, messages, e.Registry.Definitions())
		duration := time.Since(start)
		modelSpan.End()
		if err != nil {
			return "", err
		}

		text := normalizeEmptyResponse(resp.Text)
		e.Bus.Publish(eventbus.NewModelResponse(sess.ID, step, text, len(resp.ToolCalls), duration))

		if len(resp.ToolCalls) == 0 {
			sess.AppendMessage(session.Message{Role: session.RoleAssistant, Content: text})
			e.Bus.Publish(eventbus.NewFinal(sess.ID, text, step))
			return text, nil
		}

		mutationCount := 0
		for _, call := range resp.ToolCalls {
			if e.isMutationTool(call.Tool) {
				mutationCount++
			}
		}

		assistantMsg := session.Message{Role: session.RoleAssistant, Content: text, ToolCalls: toSessionToolCalls(resp.ToolCalls)}
		sess.AppendMessage(assistantMsg)

		if mutationCount > 1 {
			const rejection = "Batch rejected: at most one mutation tool call is allowed per step."
			first := resp.ToolCalls[0]
			sess.AppendMessage(session.Message{
				Role:       session.RoleTool,
				Content:    "TOOL_RESULT " + rejection,
				ToolCallID: first.ID,
				ToolName:   first.Tool,
			})
			osc.observe(nil, nil, false)
			e.emitOscillation(sess, step, osc)
			e.drainInterrupts(sess)
			e.compress(sess)
			continue
		}

		e.dispatchCalls(ctx, sess, step, resp.ToolCalls, osc)
		e.emitOscillation(sess, step, osc)

		e.drainInterrupts(sess)
		e.compress(sess)
	}

	e.Bus.Publish(eventbus.NewMaxSteps(sess.ID, sess.Runtime.MaxSteps))
	return StandardStoppedMessage, nil
}

func (e *Engine) isMutationTool(name string) bool {
	t, err := e.Registry.Get(name)
	if err != nil {
		return false
	}
	return t.IsMutation()
}

func toSessionToolCalls(calls []tool.Call) []session.ToolCallRequest {
	out := make([]session.ToolCallRequest, 0, len(calls))
	for _, c := range calls {
		out = append(out, session.ToolCallRequest{ID: c.ID, Tool: c.Tool, Input: c.Input})
	}
	return out
}

// normalizeEmptyResponse replaces the provider's empty-response sentinel
// with a user-friendly notice; any other text passes through verbatim
// (spec.md §4.3 "Empty-response normalization").
func normalizeEmptyResponse(text string) string {
	if text == provider.EmptyResponseSentinel {
		return "The model did not produce a response for this step."
	}
	return text
}

// drainInterrupts injects any pending LINT_FAIL (or future interrupt
// kinds) synthesized tool messages onto the session before the next
// model request (spec.md §4.7).
func (e *Engine) drainInterrupts(sess *session.Session) {
	for _, msg := range e.Interrupts.For(sess.ID).Drain() {
		sess.AppendMessage(msg)
		e.Bus.Publish(eventbus.NewMessage(sess.ID, string(msg.Role), msg.Content, msg.ToolCallID, msg.ToolName))
	}
}
