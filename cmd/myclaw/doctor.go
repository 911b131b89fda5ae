package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
)

// newDoctorCommand runs a read-only preflight: it never mutates the
// workspace, only reports what a run/chat invocation would find.
func newDoctorCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration validity and environment prerequisites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ok := true

			cfg, _, err := c.loadConfig()
			if err != nil {
				fmt.Println(red("✗ config: " + err.Error()))
				ok = false
			} else {
				fmt.Println(green(fmt.Sprintf("✓ config valid (provider=%s model=%s)", cfg.Provider, cfg.Model)))

				if err := checkWritable(cfg.Workspace); err != nil {
					fmt.Println(red("✗ workspace not writable: " + err.Error()))
					ok = false
				} else {
					fmt.Println(green("✓ workspace writable: " + cfg.Workspace))
				}

				if err := checkWritable(cfg.HomeDir); err != nil {
					fmt.Println(yellow("! home directory not yet writable: " + err.Error()))
				} else {
					fmt.Println(green("✓ home directory writable: " + cfg.HomeDir))
				}
			}

			for _, bin := range []string{"node", "python3", "eslint"} {
				if path, err := exec.LookPath(bin); err == nil {
					fmt.Println(green(fmt.Sprintf("✓ %s found: %s", bin, path)))
				} else {
					fmt.Println(gray(fmt.Sprintf("- %s not found on PATH (async checks using it will no-op)", bin)))
				}
			}

			if !ok {
				return fmt.Errorf("doctor found problems, see above")
			}
			fmt.Println(bold("myclaw is ready"))
			return nil
		},
	}
	return cmd
}

func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	probe := filepath.Join(dir, ".myclaw-doctor-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return err
	}
	return os.Remove(probe)
}
