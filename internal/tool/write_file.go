package tool

import (
	"context"
	"strings"

	"github.com/sworddut/myclaw/internal/diffutil"
)

// WriteFile implements the write_file tool. It enforces invariant 1
// (read-before-write: an existing file must have been read this session
// before it can be overwritten) and invariant 2 (create-guard: creating a
// new file requires an explicit allowCreate flag) from spec.md §3/§4.4.
type WriteFile struct{}

func NewWriteFile() *WriteFile { return &WriteFile{} }

func (WriteFile) Definition() Definition {
	return Definition{
		Name:        "write_file",
		Description: "Overwrite a file's full content, or create it if allowCreate is set.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]Property{
				"path":        {Type: "string", Description: "Workspace-relative or absolute path to write."},
				"content":     {Type: "string", Description: "Full replacement content."},
				"allowCreate": {Type: "boolean", Description: "Must be true to create a file that does not yet exist."},
			},
			Required: []string{"path", "content"},
		},
	}
}

func (WriteFile) IsMutation() bool { return true }

func (WriteFile) Execute(ctx context.Context, deps *Deps, call Call) *Result {
	path, ok := stringArg(call.Input, "path")
	if !ok || path == "" {
		return Failure(call.ID, "write_file requires a non-empty \"path\" argument")
	}
	content, ok := stringArg(call.Input, "content")
	if !ok {
		return Failure(call.ID, "write_file requires a \"content\" argument")
	}
	allowCreate := boolArg(call.Input, "allowCreate", false)
	content = sanitizeContent(content)

	resolved, err := deps.Workspace.ResolvePath(path)
	if err != nil {
		return Failure(call.ID, err.Error())
	}

	existed, err := deps.Workspace.Exists(resolved)
	if err != nil {
		return Failure(call.ID, err.Error())
	}

	var before string
	if existed {
		if !deps.Session.HasRead(resolved) {
			return Failure(call.ID, "must be read_file first: "+path)
		}
		before, err = deps.Workspace.ReadText(resolved)
		if err != nil {
			return Failure(call.ID, err.Error())
		}
	} else if !allowCreate {
		return Failure(call.ID, path+" does not exist; set allowCreate=true to create it")
	}

	diff := diffutil.Unified(path, before, content)

	if err := deps.Workspace.WriteText(resolved, content); err != nil {
		return Failure(call.ID, err.Error())
	}

	deps.Session.MarkRead(resolved)
	deps.Session.BumpWorkspaceVersion()
	result := Success(call.ID, "wrote "+path)
	result.Metadata = map[string]any{"diff": diff}
	return result
}

// sanitizeContent normalizes line endings: CRLF pairs and bare carriage
// returns become "\n". Nothing is escaped or unescaped; literal
// two-character "\n" sequences are left as they are (spec.md §4.4
// "write_file content normalization").
func sanitizeContent(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return content
}
