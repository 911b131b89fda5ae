package subscribers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sworddut/myclaw/internal/eventbus"
	"github.com/sworddut/myclaw/internal/interrupt"
	"github.com/sworddut/myclaw/internal/logging"
	"github.com/sworddut/myclaw/internal/session"
)

// AsyncCheckConfig selects which soft-gate checks run (SPEC_FULL §4.8's
// runtime.checks.eslint.enabled knob lives here).
type AsyncCheckConfig struct {
	ESLintEnabled bool
}

// AsyncCheckSubscriber is the post-mutation soft gate from spec.md §4.5:
// on a successful write_file/apply_patch it enqueues a background syntax/
// lint check, and on failure hands a synthesized LINT_FAIL tool message to
// the session's InterruptQueue for delivery on the next turn. Checks run
// on a goroutine per event; they never block the publisher (spec.md §5
// "background activity ... never mutates session state directly").
type AsyncCheckSubscriber struct {
	cfg        AsyncCheckConfig
	interrupts *interrupt.Registry[session.Message]
	log        *logging.Logger

	mu         sync.Mutex
	workspaces map[string]string      // sessionID -> workspace root
	pending    map[string]pendingCall // sessionID+":"+callID -> call info

	wg sync.WaitGroup
}

type pendingCall struct {
	tool string
	path string
}

// NewAsyncCheckSubscriber builds an AsyncCheckSubscriber. interrupts must
// be the same *interrupt.Registry[session.Message] the turn engine drains
// from (SPEC_FULL §4.5).
func NewAsyncCheckSubscriber(cfg AsyncCheckConfig, interrupts *interrupt.Registry[session.Message], log *logging.Logger) *AsyncCheckSubscriber {
	if log == nil {
		log = logging.New("subscribers.asynccheck", nil, logging.Info)
	}
	return &AsyncCheckSubscriber{
		cfg:        cfg,
		interrupts: interrupts,
		log:        log,
		workspaces: make(map[string]string),
		pending:    make(map[string]pendingCall),
	}
}

func (a *AsyncCheckSubscriber) Handle(evt eventbus.Event) {
	switch e := evt.(type) {
	case eventbus.StartEvent:
		a.mu.Lock()
		a.workspaces[e.Session()] = e.Workspace
		a.mu.Unlock()

	case eventbus.ToolCallEvent:
		if e.Tool != "write_file" && e.Tool != "apply_patch" {
			return
		}
		path, _ := e.Input["path"].(string)
		a.mu.Lock()
		a.pending[pendingKey(e.Session(), e.CallID)] = pendingCall{tool: e.Tool, path: path}
		a.mu.Unlock()

	case eventbus.ToolResultEvent:
		a.onToolResult(e)

	case eventbus.SessionEndEvent:
		a.mu.Lock()
		delete(a.workspaces, e.Session())
		for k := range a.pending {
			if strings.HasPrefix(k, e.Session()+":") {
				delete(a.pending, k)
			}
		}
		a.mu.Unlock()
	}
}

func pendingKey(sessionID, callID string) string { return sessionID + ":" + callID }

func (a *AsyncCheckSubscriber) onToolResult(e eventbus.ToolResultEvent) {
	key := pendingKey(e.Session(), e.CallID)
	a.mu.Lock()
	call, ok := a.pending[key]
	if ok {
		delete(a.pending, key)
	}
	root := a.workspaces[e.Session()]
	a.mu.Unlock()
	if !ok || !e.OK || call.path == "" {
		return
	}

	abs := call.path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, call.path)
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.runChecks(e.Session(), abs, call.path)
	}()
}

// runChecks selects and executes the check(s) for a written file's
// extension and, on failure, enqueues a LINT_FAIL interrupt (spec.md
// §4.5 "Check selection").
func (a *AsyncCheckSubscriber) runChecks(sessionID, absPath, relPath string) {
	ext := strings.ToLower(filepath.Ext(absPath))

	switch ext {
	case ".js", ".mjs", ".cjs":
		a.runBinaryCheck(sessionID, relPath, "node", []string{"--check", absPath}, "node")
		if (ext == ".js") && a.cfg.ESLintEnabled && a.hasESLintConfig(filepath.Dir(absPath)) {
			a.runBinaryCheck(sessionID, relPath, "eslint", []string{absPath}, "eslint")
		}
	case ".jsx", ".ts", ".tsx":
		if a.cfg.ESLintEnabled && a.hasESLintConfig(filepath.Dir(absPath)) {
			a.runBinaryCheck(sessionID, relPath, "eslint", []string{absPath}, "eslint")
		}
	case ".py":
		a.runPythonCheck(sessionID, relPath, absPath)
	}
}

// eslintConfigNames lists the flat and legacy ESLint config filenames
// (spec.md §4.5 "ESLint only if an ESLint flat/legacy config file
// exists").
var eslintConfigNames = []string{
	"eslint.config.js", "eslint.config.mjs", "eslint.config.cjs", "eslint.config.ts",
	".eslintrc", ".eslintrc.js", ".eslintrc.cjs", ".eslintrc.json", ".eslintrc.yaml", ".eslintrc.yml",
}

// hasESLintConfig walks upward from dir looking for any recognized
// config file, stopping at the filesystem root.
func (a *AsyncCheckSubscriber) hasESLintConfig(dir string) bool {
	for {
		for _, name := range eslintConfigNames {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
}

func (a *AsyncCheckSubscriber) runBinaryCheck(sessionID, relPath, binary string, args []string, linter string) {
	if _, err := exec.LookPath(binary); err != nil {
		return // spec.md §4.5 "missing tool binaries degrade to silent skip"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		a.enqueueLintFail(sessionID, relPath, linter, strings.TrimSpace(out.String()))
	}
}

// runPythonCheck probes python3 first, falling back to python, per
// spec.md §9's open question resolution (DESIGN.md).
func (a *AsyncCheckSubscriber) runPythonCheck(sessionID, relPath, absPath string) {
	binary := ""
	for _, candidate := range []string{"python3", "python"} {
		if _, err := exec.LookPath(candidate); err == nil {
			binary = candidate
			break
		}
	}
	if binary == "" {
		return
	}
	a.runBinaryCheck(sessionID, relPath, binary, []string{"-m", "py_compile", absPath}, binary)
}

// lintFailPayload is the {file,linter,output} shape named in spec.md §4.5
// and the GLOSSARY entry for LINT_FAIL.
type lintFailPayload struct {
	File   string `json:"file"`
	Linter string `json:"linter"`
	Output string `json:"output"`
}

func (a *AsyncCheckSubscriber) enqueueLintFail(sessionID, file, linter, output string) {
	payload, err := json.Marshal(lintFailPayload{File: file, Linter: linter, Output: output})
	if err != nil {
		a.log.Error("encode LINT_FAIL payload for %s: %v", sessionID, err)
		return
	}
	msg := session.Message{
		Role:    session.RoleTool,
		Content: fmt.Sprintf("LINT_FAIL %s", payload),
	}
	a.interrupts.For(sessionID).Push(msg)
}

// Flush waits for every in-flight check goroutine to finish, matching the
// CLI's "terminated process must flush() all subscribers before exiting"
// requirement (spec.md §5).
func (a *AsyncCheckSubscriber) Flush() {
	a.wg.Wait()
}
