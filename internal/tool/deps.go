package tool

import (
	"github.com/sworddut/myclaw/internal/session"
	"github.com/sworddut/myclaw/internal/workspace"
)

// Deps bundles the collaborators a tool Executor needs. It never outlives
// the single turn that owns Session (spec.md §3 "Ownership").
type Deps struct {
	Workspace *workspace.Workspace
	Session   *session.Session
	Approver  Approver
}
