package tool

import (
	"context"
	"testing"

	"github.com/sworddut/myclaw/internal/session"
	"github.com/sworddut/myclaw/internal/workspace"
)

func newTestDeps(t *testing.T) *Deps {
	t.Helper()
	ws, err := workspace.New(t.TempDir())
	if err != nil {
		t.Fatalf("workspace.New failed: %v", err)
	}
	sess := session.New("s1", ws.Root(), "/tmp/log", session.Runtime{MaxSteps: 10, ContextWindowSize: 5}, "sys")
	return &Deps{Workspace: ws, Session: sess, Approver: DenyAllApprover{}}
}

func TestWriteFileRefusesCreateWithoutAllowCreate(t *testing.T) {
	deps := newTestDeps(t)
	wf := NewWriteFile()

	result := wf.Execute(context.Background(), deps, Call{ID: "1", Tool: "write_file", Input: map[string]any{
		"path": "new.txt", "content": "hi",
	}})
	if result.OK {
		t.Fatalf("expected write_file to refuse creating a new file without allowCreate")
	}
}

func TestWriteFileCreatesWithAllowCreate(t *testing.T) {
	deps := newTestDeps(t)
	wf := NewWriteFile()

	result := wf.Execute(context.Background(), deps, Call{ID: "1", Tool: "write_file", Input: map[string]any{
		"path": "new.txt", "content": "hi", "allowCreate": true,
	}})
	if !result.OK {
		t.Fatalf("expected write_file to succeed with allowCreate=true, got %q", result.Output)
	}
	if deps.Session.WorkspaceVersion() != 1 {
		t.Fatalf("expected workspace version to bump on a successful write, got %d", deps.Session.WorkspaceVersion())
	}
}

func TestWriteFileRefusesOverwriteWithoutPriorRead(t *testing.T) {
	deps := newTestDeps(t)
	if err := deps.Workspace.WriteText("existing.txt", "original"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	wf := NewWriteFile()
	result := wf.Execute(context.Background(), deps, Call{ID: "1", Tool: "write_file", Input: map[string]any{
		"path": "existing.txt", "content": "changed",
	}})
	if result.OK {
		t.Fatalf("expected write_file to refuse overwriting an unread existing file")
	}
}

func TestReadThenWriteSucceeds(t *testing.T) {
	deps := newTestDeps(t)
	if err := deps.Workspace.WriteText("existing.txt", "original"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	rf := NewReadFile()
	readResult := rf.Execute(context.Background(), deps, Call{ID: "1", Tool: "read_file", Input: map[string]any{
		"path": "existing.txt",
	}})
	if !readResult.OK || readResult.Output != "original" {
		t.Fatalf("expected read_file to succeed with original content, got ok=%v output=%q", readResult.OK, readResult.Output)
	}

	wf := NewWriteFile()
	writeResult := wf.Execute(context.Background(), deps, Call{ID: "2", Tool: "write_file", Input: map[string]any{
		"path": "existing.txt", "content": "changed",
	}})
	if !writeResult.OK {
		t.Fatalf("expected write_file to succeed after a prior read, got %q", writeResult.Output)
	}

	got, err := deps.Workspace.ReadText("existing.txt")
	if err != nil || got != "changed" {
		t.Fatalf("expected file to contain 'changed', got %q err=%v", got, err)
	}
}

func TestWriteFileRejectsPathEscape(t *testing.T) {
	deps := newTestDeps(t)
	wf := NewWriteFile()
	result := wf.Execute(context.Background(), deps, Call{ID: "1", Tool: "write_file", Input: map[string]any{
		"path": "../escape.txt", "content": "x", "allowCreate": true,
	}})
	if result.OK {
		t.Fatalf("expected write_file to reject a path escaping the workspace")
	}
}

func TestRegistryHasFixedSixToolCatalog(t *testing.T) {
	r := NewRegistry()
	defs := r.Definitions()
	names := make(map[string]bool, len(defs))
	for _, d := range defs {
		names[d.Name] = true
	}
	for _, want := range []string{"read_file", "write_file", "apply_patch", "list_files", "search_workspace", "run_shell"} {
		if !names[want] {
			t.Fatalf("expected registry to contain %q, got %v", want, names)
		}
	}
	if _, err := r.Get("does_not_exist"); err == nil {
		t.Fatalf("expected an error for an unknown tool name")
	}
}
