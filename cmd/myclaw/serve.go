package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sworddut/myclaw/internal/httpserver"
)

func newServeCommand(c *cli) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the read-only observability HTTP surface (healthz, metrics, events)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := c.loadConfig()
			if err != nil {
				return err
			}

			rt, err := buildRuntime(cfg, newPromptApprover(true))
			if err != nil {
				return err
			}
			defer rt.Close()

			srv := httpserver.New(httpserver.Config{Addr: addr}, rt.promReg, rt.events, rt.log.With("httpserver"))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Println(blue(fmt.Sprintf("observability surface listening on %s (healthz, metrics, events)", addr)))
			return srv.Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8787", "listen address for the observability HTTP surface")
	return cmd
}
