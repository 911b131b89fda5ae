package tool

import "fmt"

// Registry holds the fixed tool catalog (spec.md §3: read_file, write_file,
// apply_patch, list_files, search_workspace, run_shell).
type Registry struct {
	tools map[string]Executor
	order []string
}

// NewRegistry builds a Registry populated with the standard catalog.
func NewRegistry() *Registry {
	r := &Registry{tools: make(map[string]Executor)}
	for _, t := range []Executor{
		NewReadFile(),
		NewWriteFile(),
		NewApplyPatch(),
		NewListFiles(),
		NewSearchWorkspace(),
		NewRunShell(),
	} {
		r.register(t)
	}
	return r
}

func (r *Registry) register(t Executor) {
	name := t.Definition().Name
	r.tools[name] = t
	r.order = append(r.order, name)
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Executor, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", name)
	}
	return t, nil
}

// Definitions returns every tool's Definition, in catalog order, suitable
// for a provider.Chat toolDefs argument.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].Definition())
	}
	return out
}

// IsExploration reports whether a call is a "low-value exploration call"
// eligible for the duplicate-suppression rule in spec.md §4.3 step 1:
// list_files, search_workspace, or a run_shell whose command is a bare
// "ls..."/"pwd" probe or a "find <dir> -maxdepth N ..." listing.
func IsExploration(call Call) bool {
	switch call.Tool {
	case "list_files", "search_workspace":
		return true
	case "run_shell":
		cmd, _ := stringArg(call.Input, "command")
		return isLowValueShellProbe(cmd)
	default:
		return false
	}
}
