package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Alby-Shinoj7/docker-setup/internal/config"
	"github.com/Alby-Shinoj7/docker-setup/internal/engine"
	"github.com/Alby-Shinoj7/docker-setup/internal/models"
	"github.com/Alby-Shinoj7/docker-setup/internal/runner"
)

// NewInstallCmd creates the install command
func NewInstallCmd() *cobra.Command {
	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Install Docker Engine on this host",
		Long: `Resolve the host distribution, provision the Docker repository with a
verified signing key, and install the engine, CLI, and plugins. The
docker service is enabled and started, and the invoking user is added
to the docker group.`,
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

			ok, err := Confirm(fmt.Sprintf("Install Docker Engine (%s channel) on this %s host?", cfg.Channel, eng.Profile.Family), cfg)
			if err != nil {
				return err
			}
			if !ok {
				logrus.Info("aborted")
				return nil
			}

			if err := eng.Install(cmd.Context()); err != nil {
				return err
			}

			if cfg.DryRun {
				printPlan(run)
				return nil
			}
			return verifyRuntime(cmd, run)
		},
	}

	installCmd.Flags().String("channel", models.ChannelStable, "Release channel (stable or test)")
	installCmd.Flags().Bool("compose", true, "Install the Compose plugin")
	installCmd.Flags().String("user", "", "User to enroll in the docker group (defaults to the invoking user)")
	installCmd.Flags().String("mirror", config.DefaultMirror, "Base URL of the Docker package repository")

	return installCmd
}

func verifyRuntime(cmd *cobra.Command, run *runner.Runner) error {
	res, err := run.Run(cmd.Context(), runner.Command{Name: "docker", Args: []string{"--version"}})
	if err != nil {
		return &models.SetupError{Kind: models.ErrSubprocess, Step: "verify runtime", Err: err}
	}
	logrus.Infof("runtime: %s", strings.TrimSpace(res.Stdout))
	color.Green("Docker Engine installed and running.")
	return nil
}

func printPlan(run *runner.Runner) {
	entries := run.Transcript()
	color.Yellow("dry-run: %d planned actions, nothing was changed:", len(entries))
	for i, e := range entries {
		fmt.Printf("  %2d. %s\n", i+1, e)
	}
}
