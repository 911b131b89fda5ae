package tool

import (
	"context"
	"encoding/json"
)

// SearchWorkspace implements the search_workspace tool, a read-only
// exploration call (spec.md §3, §4.3).
type SearchWorkspace struct{}

func NewSearchWorkspace() *SearchWorkspace { return &SearchWorkspace{} }

func (SearchWorkspace) Definition() Definition {
	return Definition{
		Name:        "search_workspace",
		Description: "Search file and directory names under a subtree for a case-insensitive substring match.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]Property{
				"query":   {Type: "string", Description: "Substring to search for."},
				"subtree": {Type: "string", Description: "Workspace-relative subtree to search; defaults to the workspace root."},
			},
			Required: []string{"query"},
		},
	}
}

func (SearchWorkspace) IsMutation() bool { return false }

func (SearchWorkspace) Execute(_ context.Context, deps *Deps, call Call) *Result {
	query, ok := stringArg(call.Input, "query")
	if !ok || query == "" {
		return Failure(call.ID, "search_workspace requires a non-empty \"query\" argument")
	}
	subtree, _ := stringArg(call.Input, "subtree")

	hits, err := deps.Workspace.Search(query, subtree)
	if err != nil {
		return Failure(call.ID, err.Error())
	}

	encoded, err := json.Marshal(hits)
	if err != nil {
		return Failure(call.ID, "failed to encode search results: "+err.Error())
	}
	return Success(call.ID, string(encoded))
}
