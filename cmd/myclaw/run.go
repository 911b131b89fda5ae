package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sworddut/myclaw/internal/eventbus"
	"github.com/sworddut/myclaw/internal/session"
)

func newRunCommand(c *cli) *cobra.Command {
	var resume string

	cmd := &cobra.Command{
		Use:   "run [task]",
		Short: "Run a single task against the workspace and exit",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			task := strings.TrimSpace(strings.Join(args, " "))
			if task == "" {
				return fmt.Errorf("run requires a task argument")
			}

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

			fmt.Println(blue(fmt.Sprintf("session %s", sess.ID)))

			ctx := context.Background()
			text, err := rt.engine.RunTurn(ctx, sess, task)
			rt.bus.Publish(eventbus.NewSessionEnd(sess.ID, "run_complete"))
			if err != nil {
				return err
			}

			fmt.Println(green(text))
			return nil
		},
	}

	cmd.Flags().StringVar(&resume, "resume", "", `resume a persisted session by id, 1-based index, or "latest"`)
	return cmd
}
