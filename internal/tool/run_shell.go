package tool

import (
	"context"
	"regexp"
)

// destructivePatterns mirrors spec.md §4.4's destructive-command set:
// rm, rmdir, unlink, del, rd, "mv ... /dev/null", "git reset --hard",
// "git clean".
var destructivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\brm\b`),
	regexp.MustCompile(`\brmdir\b`),
	regexp.MustCompile(`\bunlink\b`),
	regexp.MustCompile(`\bdel\b`),
	regexp.MustCompile(`\brd\b`),
	regexp.MustCompile(`\bmv\b.*/dev/null`),
	regexp.MustCompile(`\bgit\s+reset\s+--hard\b`),
	regexp.MustCompile(`\bgit\s+clean\b`),
}

func isDestructive(command string) bool {
	for _, p := range destructivePatterns {
		if p.MatchString(command) {
			return true
		}
	}
	return false
}

var lowValueShellProbe = regexp.MustCompile(`^\s*(ls\b.*|pwd\s*|find\s+\S+\s+-maxdepth\s+\d+.*)$`)

func isLowValueShellProbe(command string) bool {
	return lowValueShellProbe.MatchString(command)
}

// RunShell implements the run_shell tool. Commands matching the
// destructive pattern set are routed through the Approver before
// executing; on denial or an absent callback the call fails with
// "destructive command blocked" and nothing runs (spec.md §4.4).
type RunShell struct{}

func NewRunShell() *RunShell { return &RunShell{} }

func (RunShell) Definition() Definition {
	return Definition{
		Name:        "run_shell",
		Description: "Run a shell command inside the workspace and capture its output.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]Property{
				"command": {Type: "string", Description: "Shell command line to run."},
				"cwd":     {Type: "string", Description: "Workspace-relative working directory; defaults to the workspace root."},
			},
			Required: []string{"command"},
		},
	}
}

// IsMutation is false: spec.md §3 invariant 3 scopes the single-mutation-
// per-step rule to write_file/apply_patch only. run_shell may batch freely
// and does not bump workspaceVersion.
func (RunShell) IsMutation() bool { return false }

func (RunShell) Execute(ctx context.Context, deps *Deps, call Call) *Result {
	command, ok := stringArg(call.Input, "command")
	if !ok || command == "" {
		return Failure(call.ID, "run_shell requires a non-empty \"command\" argument")
	}
	cwd, _ := stringArg(call.Input, "cwd")

	if isDestructive(command) {
		approved, err := deps.Approver.RequestApproval(ctx, ApprovalRequest{
			Operation: "run_shell",
			Command:   command,
			Summary:   "run destructive command: " + command,
		})
		if err != nil || !approved {
			return Failure(call.ID, "destructive command blocked")
		}
	}

	resolvedCwd := cwd
	if resolvedCwd != "" {
		r, err := deps.Workspace.ResolvePath(resolvedCwd)
		if err != nil {
			return Failure(call.ID, err.Error())
		}
		resolvedCwd = r
	}

	out, err := deps.Workspace.RunShell(command, resolvedCwd)
	if err != nil {
		return Failure(call.ID, err.Error())
	}

	return Success(call.ID, out.Format())
}
