package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/sworddut/myclaw/internal/eventbus"
	"github.com/sworddut/myclaw/internal/persistence"
	"github.com/sworddut/myclaw/internal/session"
)

// chatCommands lists the slash commands spec.md §6 names, shown by /help.
var chatCommands = []string{
	"/help", "/exit", "/quit", "/clear", "/history [n]", "/config",
	"/session", "/summary [n]", "/sessions [n]", "/use <id|index|latest>",
}

func newChatCommand(c *cli) *cobra.Command {
	var resume string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive REPL against the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := c.loadConfig()
			if err != nil {
				return err
			}

			rt, err := buildRuntime(cfg, newPromptApprover(c.noApprove))
			if err != nil {
				return err
			}
			defer rt.Close()

			var sess *session.Session
			if resume != "" {
				sess, err = resumeSession(rt, resume)
			} else {
				sess = rt.newSession(defaultSystemPrompt)
			}
			if err != nil {
				return err
			}

			return runChatLoop(rt, sess)
		},
	}

	cmd.Flags().StringVar(&resume, "resume", "", `resume a persisted session by id, 1-based index, or "latest"`)
	return cmd
}

// runChatLoop is the REPL itself, grounded on the teacher's readline-based
// RunInteractive (_examples' cklxx-elephant.ai/cmd/alex/interactive.go),
// adapted from its Container/Coordinator shape to this module's
// runtime/engine/session.Session, and extended with the slash-command set
// spec.md §6 names.
func runChatLoop(rt *runtime, sess *session.Session) error {
	fmt.Println(bold("myclaw chat") + " — session " + blue(sess.ID))
	fmt.Println(gray("Type /help for commands, /exit to quit."))

	historyFile := filepath.Join(rt.cfg.HomeDir, "chat-history")
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "/exit",
		Stdin:           readline.NewCancelableStdin(os.Stdin),
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	ctx := context.Background()
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if line == "" {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if handleSlash(rt, &sess, input) {
				break
			}
			continue
		}

		text, err := rt.engine.RunTurn(ctx, sess, input)
		if err != nil {
			fmt.Println(red("error: " + err.Error()))
			continue
		}
		fmt.Println(green(text))
	}

	rt.bus.Publish(eventbus.NewSessionEnd(sess.ID, "chat_exit"))
	fmt.Println(gray("session ended"))
	return nil
}

// handleSlash executes one slash command against the current session,
// swapping *sess in place for /use, and reports whether the REPL should
// exit.
func handleSlash(rt *runtime, sess **session.Session, input string) (exit bool) {
	fields := strings.Fields(input)
	cmd, rest := fields[0], fields[1:]

	switch cmd {
	case "/exit", "/quit":
		return true

	case "/help":
		fmt.Println(gray(strings.Join(chatCommands, "  ")))

	case "/clear":
		fmt.Print("\033[H\033[2J")

	case "/history":
		n := argInt(rest, 20)
		for _, m := range lastMessages((*sess).Messages(), n) {
			fmt.Printf("%s %s\n", gray(string(m.Role)+":"), m.Content)
		}

	case "/config":
		fmt.Printf("provider=%s model=%s workspace=%s homeDir=%s\n", rt.cfg.Provider, rt.cfg.Model, rt.cfg.Workspace, rt.cfg.HomeDir)

	case "/session":
		fmt.Printf("id=%s workspace=%s messages=%d workspaceVersion=%d\n",
			(*sess).ID, (*sess).Workspace, (*sess).MessageCount(), (*sess).WorkspaceVersion())

	case "/summary":
		n := argInt(rest, 5)
		for _, b := range lastSummaries((*sess).Summaries(), n) {
			fmt.Printf("%s [%d-%d] %s\n", gray("summary"), b.From, b.To, b.Content)
		}

	case "/sessions":
		n := argInt(rest, 10)
		summaries, err := persistence.ListForWorkspace(rt.cfg.HomeDir, rt.cfg.Workspace)
		if err != nil {
			fmt.Println(red("error: " + err.Error()))
			return false
		}
		for i, s := range summaries {
			if i >= n {
				break
			}
			fmt.Printf("%d. %s (%d messages, updated %s)\n", i+1, s.SessionID, s.MessageCount, s.LastUpdatedAt.Format("2006-01-02 15:04"))
		}

	case "/use":
		if len(rest) == 0 {
			fmt.Println(red("error: /use requires an id, index, or \"latest\""))
			return false
		}
		rt.bus.Publish(eventbus.NewSessionEnd((*sess).ID, "switched_session"))
		next, err := resumeSession(rt, rest[0])
		if err != nil {
			fmt.Println(red("error: " + err.Error()))
			return false
		}
		*sess = next
		fmt.Println(blue("switched to session " + next.ID))

	default:
		fmt.Println(red("unknown command " + cmd + ", try /help"))
	}
	return false
}

func argInt(args []string, def int) int {
	if len(args) == 0 {
		return def
	}
	if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
		return n
	}
	return def
}

func lastMessages(msgs []session.Message, n int) []session.Message {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}

func lastSummaries(blocks []session.SummaryBlock, n int) []session.SummaryBlock {
	if len(blocks) <= n {
		return blocks
	}
	return blocks[len(blocks)-n:]
}
