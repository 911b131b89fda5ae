package tool

import "context"

// ReadFile implements the read_file tool. A successful read satisfies
// invariant 1 (read-before-write) by marking the resolved path as read on
// the owning Session (spec.md §3 invariant 1, §4.4).
type ReadFile struct{}

func NewReadFile() *ReadFile { return &ReadFile{} }

func (ReadFile) Definition() Definition {
	return Definition{
		Name:        "read_file",
		Description: "Read the full text content of a file in the workspace.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]Property{
				"path": {Type: "string", Description: "Workspace-relative or absolute path to read."},
			},
			Required: []string{"path"},
		},
	}
}

func (ReadFile) IsMutation() bool { return false }

func (ReadFile) Execute(_ context.Context, deps *Deps, call Call) *Result {
	path, ok := stringArg(call.Input, "path")
	if !ok || path == "" {
		return Failure(call.ID, "read_file requires a non-empty \"path\" argument")
	}

	resolved, err := deps.Workspace.ResolvePath(path)
	if err != nil {
		return Failure(call.ID, err.Error())
	}

	content, err := deps.Workspace.ReadText(resolved)
	if err != nil {
		return Failure(call.ID, err.Error())
	}

	deps.Session.MarkRead(resolved)
	return Success(call.ID, content)
}
