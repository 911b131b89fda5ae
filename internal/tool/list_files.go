package tool

import (
	"context"
	"encoding/json"
)

// ListFiles implements the list_files tool, a read-only exploration call
// (spec.md §3, §4.3 "low-value exploration").
type ListFiles struct{}

func NewListFiles() *ListFiles { return &ListFiles{} }

func (ListFiles) Definition() Definition {
	return Definition{
		Name:        "list_files",
		Description: "List the entries of a directory in the workspace.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]Property{
				"path": {Type: "string", Description: "Workspace-relative directory path; defaults to the workspace root."},
			},
		},
	}
}

func (ListFiles) IsMutation() bool { return false }

func (ListFiles) Execute(_ context.Context, deps *Deps, call Call) *Result {
	path, _ := stringArg(call.Input, "path")
	if path == "" {
		path = "."
	}

	resolved, err := deps.Workspace.ResolvePath(path)
	if err != nil {
		return Failure(call.ID, err.Error())
	}

	entries, err := deps.Workspace.ListDir(resolved)
	if err != nil {
		return Failure(call.ID, err.Error())
	}

	encoded, err := json.Marshal(entries)
	if err != nil {
		return Failure(call.ID, "failed to encode directory listing: "+err.Error())
	}
	return Success(call.ID, string(encoded))
}
