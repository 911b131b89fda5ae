// Package tool implements the fixed six-tool catalog and safety rails from
// spec.md §3/§4.4. Each Executor validates its own input against the
// current Session state (read-before-write, create-guard, destructive-
// command approval) and reports failures as {OK:false, Output:<message>}
// rather than a Go error, matching spec.md §7 category 1/2.
//
// Grounded on the teacher's ports.ToolExecutor/ToolCall/ToolResult/
// ToolDefinition shapes (DESIGN.md "§4.4 Safety rails").
package tool

import (
	"context"
	"encoding/json"
	"strconv"
)

// Call is a parsed tool invocation (spec.md §3 "ToolCall (parsed)").
type Call struct {
	ID    string
	Tool  string
	Input map[string]any
}

// Signature returns the exploration-dedup key from spec.md §4.3 step 1:
// "workspaceVersion:tool:json(input)".
func (c Call) Signature(workspaceVersion int) string {
	encoded, err := json.Marshal(c.Input)
	if err != nil {
		encoded = []byte("{}")
	}
	return strconv.Itoa(workspaceVersion) + ":" + c.Tool + ":" + string(encoded)
}

// Result is a tool's outcome. OK=false with a human-readable Output is the
// normal shape for a validation/workspace error (spec.md §7); it is never
// surfaced as a Go error to the turn engine.
type Result struct {
	CallID   string
	OK       bool
	Output   string
	Metadata map[string]any
}

// Success builds an OK result.
func Success(callID, output string) *Result {
	return &Result{CallID: callID, OK: true, Output: output}
}

// Failure builds a failed result carrying an explanatory message.
func Failure(callID, message string) *Result {
	return &Result{CallID: callID, OK: false, Output: message}
}

// ParameterSchema is a JSON-Schema-shaped parameter description, mirroring
// the teacher's ports.ParameterSchema.
type ParameterSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes a single tool parameter.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Enum        []any  `json:"enum,omitempty"`
}

// Definition describes a tool for the provider's tool-calling schema.
type Definition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  ParameterSchema `json:"parameters"`
}

// Executor implements one tool in the catalog.
type Executor interface {
	Definition() Definition
	// IsMutation reports whether a successful call counts toward the
	// single-mutation-per-step limit and bumps workspaceVersion
	// (spec.md §3 invariant 3, §4.3 step 5).
	IsMutation() bool
	Execute(ctx context.Context, deps *Deps, call Call) *Result
}

// stringArg fetches a required string argument, reporting a failure result
// (not a panic) when absent or the wrong type — the duck-typed-payload
// handling spec.md §9 calls for.
func stringArg(input map[string]any, key string) (string, bool) {
	v, ok := input[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func boolArg(input map[string]any, key string, def bool) bool {
	v, ok := input[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}
