package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sworddut/myclaw/internal/config"
)

func newConfigCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration and where each value came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, meta, err := c.loadConfig()
			if err != nil {
				return err
			}

			encoded, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(encoded))
			fmt.Println()
			fmt.Println(bold("provenance"))
			for _, field := range []string{
				"provider", "model", "baseURL", "memoryFile",
				"runtime.modelTimeoutMs", "runtime.modelRetryCount", "runtime.maxSteps",
				"runtime.contextWindowSize", "runtime.checks.eslintEnabled",
				"review.enabled", "tracing.exporter", "tracing.endpoint",
				"httpDebug.enabled", "httpDebug.addr",
			} {
				fmt.Printf("  %-32s %s\n", field, sourceLabel(meta.Source(field)))
			}
			return nil
		},
	}
	return cmd
}

func sourceLabel(src config.ValueSource) string {
	switch src {
	case config.SourceFile:
		return green(string(src))
	case config.SourceEnv:
		return cyan(string(src))
	default:
		return gray(string(src))
	}
}
