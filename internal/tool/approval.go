package tool

import "context"

// ApprovalRequest describes a sensitive action awaiting user sign-off
// (spec.md §1 "sensitive-action approval callback", §4.4 destructive-shell
// approval). Grounded on the teacher's ports.ApprovalRequest shape.
type ApprovalRequest struct {
	Operation string // "run_shell" is the only operation the tool catalog requests
	Command   string // populated for run_shell
	FilePath  string // for file-targeting requests; no current tool sets it
	Diff      string // unified diff preview; no current tool sets it
	Summary   string
}

// Approver is the external collaborator (the CLI) that decides whether a
// sensitive action proceeds (spec.md §1, §4.4).
type Approver interface {
	RequestApproval(ctx context.Context, req ApprovalRequest) (approved bool, err error)
}

// DenyAllApprover always refuses, used when no interactive approval
// callback is configured (spec.md §4.4 "on deny or absent callback,
// reject").
type DenyAllApprover struct{}

func (DenyAllApprover) RequestApproval(context.Context, ApprovalRequest) (bool, error) {
	return false, nil
}
