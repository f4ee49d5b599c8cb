package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Alby-Shinoj7/docker-setup/internal/engine"
	"github.com/Alby-Shinoj7/docker-setup/internal/runner"
)

// NewUninstallCmd creates the uninstall command
func NewUninstallCmd() *cobra.Command {
	uninstallCmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove Docker Engine from this host",
		Long: `Remove the engine packages and the provisioned repository definition.
Images, containers, and volumes under /var/lib/docker are not touched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			run := runner.New(runner.Mode{DryRun: cfg.DryRun, Verbose: cfg.Verbose}, runner.ResolvePrivilege())
			eng := engine.New(cfg, run)
			if err := eng.Resolve(); err != nil {
				return err
			}

			ok, err := Confirm(fmt.Sprintf("Remove Docker Engine from this %s host?", eng.Profile.Family), cfg)
			if err != nil {
				return err
			}
			if !ok {
				logrus.Info("aborted")
				return nil
			}

			if err := eng.Uninstall(cmd.Context()); err != nil {
				return err
			}

			if cfg.DryRun {
				printPlan(run)
				return nil
			}
			color.Green("Docker Engine removed.")
			return nil
		},
	}

	return uninstallCmd
}
