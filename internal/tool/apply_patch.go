package tool

import "context"

// ApplyPatch implements the apply_patch tool: a targeted search/replace
// within an existing file. It shares invariant 1 (read-before-write) with
// write_file and additionally requires the search text to be found
// verbatim (spec.md §3/§4.4).
type ApplyPatch struct{}

func NewApplyPatch() *ApplyPatch { return &ApplyPatch{} }

func (ApplyPatch) Definition() Definition {
	return Definition{
		Name:        "apply_patch",
		Description: "Replace an exact snippet of text within a file that has already been read.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]Property{
				"path":       {Type: "string", Description: "Workspace-relative or absolute path to patch."},
				"search":     {Type: "string", Description: "Exact text to find."},
				"replace":    {Type: "string", Description: "Replacement text."},
				"replaceAll": {Type: "boolean", Description: "Replace every occurrence instead of only the first."},
			},
			Required: []string{"path", "search", "replace"},
		},
	}
}

func (ApplyPatch) IsMutation() bool { return true }

func (ApplyPatch) Execute(_ context.Context, deps *Deps, call Call) *Result {
	path, ok := stringArg(call.Input, "path")
	if !ok || path == "" {
		return Failure(call.ID, "apply_patch requires a non-empty \"path\" argument")
	}
	search, ok := stringArg(call.Input, "search")
	if !ok || search == "" {
		return Failure(call.ID, "apply_patch requires a non-empty \"search\" argument")
	}
	replace, ok := stringArg(call.Input, "replace")
	if !ok {
		return Failure(call.ID, "apply_patch requires a \"replace\" argument")
	}
	replaceAll := boolArg(call.Input, "replaceAll", false)

	resolved, err := deps.Workspace.ResolvePath(path)
	if err != nil {
		return Failure(call.ID, err.Error())
	}

	exists, err := deps.Workspace.Exists(resolved)
	if err != nil {
		return Failure(call.ID, err.Error())
	}
	if !exists {
		return Failure(call.ID, "apply_patch target "+path+" does not exist; use write_file with allowCreate to create it")
	}
	if !deps.Session.HasRead(resolved) {
		return Failure(call.ID, "must be read_file first: "+path)
	}

	before, after, err := deps.Workspace.ApplyPatch(resolved, search, replace, replaceAll)
	if err != nil {
		return Failure(call.ID, err.Error())
	}

	deps.Session.MarkRead(resolved)
	deps.Session.BumpWorkspaceVersion()
	result := Success(call.ID, "patched "+path)
	result.Metadata = map[string]any{"before": before, "after": after}
	return result
}
