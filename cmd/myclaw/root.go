package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sworddut/myclaw/internal/config"
)

// Color roles, matching the teacher's semantic palette in cmd/cobra_cli.go
// (blue=status, green=action/success, yellow=thinking/prompt,
// red=error, cyan=reasoning, gray=secondary, bold=emphasis).
var (
	blue   = color.New(color.FgBlue).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// cli holds the flags shared across every subcommand.
type cli struct {
	workspace  string
	configPath string
	noApprove  bool
}

func newRootCommand() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "myclaw",
		Short:         bold("myclaw") + " — a sandboxed coding agent CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: fmt.Sprintf(`%s

%s reads, edits, and patches files within a single workspace through a
fixed tool catalog (read_file, write_file, apply_patch, list_files,
search_workspace, run_shell). Writes to existing files require a prior
read; new files require an explicit allowCreate; destructive shell
commands require interactive approval.`, bold("myclaw"), bold("myclaw")),
	}

	root.PersistentFlags().StringVar(&c.workspace, "workspace", "", "workspace root (default: current directory)")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to config.json (default: <homeDir>/config.json)")
	root.PersistentFlags().BoolVar(&c.noApprove, "no-approve", false, "never prompt for approval; deny every sensitive action")

	// Mirrors the teacher's own cmd-layer viper setup (cobra_cli.go):
	// config.Load does its own provenance-tracked merge and never reads
	// these viper settings.
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.AddConfigPath("$HOME/.myclaw")

	root.AddCommand(newRunCommand(c))
	root.AddCommand(newChatCommand(c))
	root.AddCommand(newConfigCommand(c))
	root.AddCommand(newDoctorCommand(c))
	root.AddCommand(newInitCommand(c))
	root.AddCommand(newServeCommand(c))

	return root
}

func (c *cli) loadConfig() (*config.Config, config.Metadata, error) {
	var opts []config.Option
	if c.workspace != "" {
		opts = append(opts, config.WithWorkspace(c.workspace))
	}
	if c.configPath != "" {
		opts = append(opts, config.WithConfigPath(c.configPath))
	}
	return config.Load(opts...)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, red("error: "+err.Error()))
	os.Exit(1)
}
