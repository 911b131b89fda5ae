package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sworddut/myclaw/internal/config"
)

// newInitCommand scaffolds <homeDir>/config.json with the same defaults
// config.Load would otherwise synthesize, so a first run has something
// to edit rather than starting from nothing.
func newInitCommand(c *cli) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a config.json in the myclaw home directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := c.loadConfig()
			if err != nil {
				return err
			}

			if err := os.MkdirAll(cfg.HomeDir, 0o755); err != nil {
				return fmt.Errorf("create home directory %s: %w", cfg.HomeDir, err)
			}

			path := filepath.Join(cfg.HomeDir, "config.json")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, pass --force to overwrite", path)
			}

			template := struct {
				Provider string `json:"provider"`
				Model    string `json:"model"`
				BaseURL  string `json:"baseURL"`
				Runtime  config.RuntimeConfig `json:"runtime"`
				Review   config.ReviewConfig  `json:"review"`
				Tracing  config.TracingConfig `json:"tracing"`
			}{
				Provider: cfg.Provider,
				Model:    cfg.Model,
				BaseURL:  cfg.BaseURL,
				Runtime:  cfg.Runtime,
				Review:   cfg.Review,
				Tracing:  cfg.Tracing,
			}

			encoded, err := json.MarshalIndent(template, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, append(encoded, '\n'), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}

			if err := os.MkdirAll(filepath.Join(cfg.HomeDir, "sessions"), 0o755); err != nil {
				return fmt.Errorf("create sessions directory: %w", err)
			}

			fmt.Println(green("wrote " + path))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config.json")
	return cmd
}
