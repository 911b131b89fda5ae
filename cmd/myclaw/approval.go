package main

import (
	"context"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"

	"github.com/sworddut/myclaw/internal/tool"
)

// promptApprover asks the operator to confirm a sensitive action with an
// interactive promptui select, falling back to deny-by-default when
// asked not to prompt or when the prompt itself fails (e.g. no TTY)
// (spec.md §1 "sensitive-action approval callback", §4.4).
type promptApprover struct {
	disabled bool
}

func newPromptApprover(disabled bool) tool.Approver {
	return &promptApprover{disabled: disabled}
}

func (p *promptApprover) RequestApproval(_ context.Context, req tool.ApprovalRequest) (bool, error) {
	if p.disabled {
		return false, nil
	}

	label := req.Summary
	if label == "" {
		label = req.Operation
	}
	if req.Command != "" {
		label = label + ": " + req.Command
	} else if req.FilePath != "" {
		label = label + ": " + req.FilePath
	}
	if req.Diff != "" {
		fmt.Fprintln(os.Stdout, gray(req.Diff))
	}

	sel := promptui.Select{
		Label: yellow("Approve " + label + "?"),
		Items: []string{"Deny", "Approve"},
	}
	idx, _, err := sel.Run()
	if err != nil {
		// ^C, EOF, or no TTY: deny-by-default rather than propagate an
		// error into the turn (spec.md §4.4 "on deny or absent callback,
		// reject").
		return false, nil
	}
	return idx == 1, nil
}
