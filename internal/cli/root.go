package cli

import (
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Alby-Shinoj7/docker-setup/internal/config"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "docker-setup",
		Short: "Install or remove Docker Engine across Linux distribution families",
		Long: `docker-setup resolves the host distribution from os-release, validates
that its version is supported, provisions the upstream package repository
behind a pinned-fingerprint key verification, and installs or removes the
runtime, CLI, and plugins.

Supported families:
  - Debian/Ubuntu and their derivatives (apt)
  - RHEL, CentOS, Rocky, Alma, Oracle Linux (dnf/yum)
  - Fedora (dnf)
  - Amazon Linux 2 (yum + extras)
  - SLES/openSUSE (zypper)
  - Arch and derivatives (pacman)`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
			if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
				color.NoColor = true
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolP("dry-run", "n", false, "Log every action instead of executing it")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	// Add subcommands
	rootCmd.AddCommand(NewInstallCmd())
	rootCmd.AddCommand(NewUninstallCmd())
	rootCmd.AddCommand(NewStatusCmd())

	return rootCmd
}

// loadConfig assembles the run configuration: defaults, then the YAML file,
// then every flag that was explicitly set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()

	path, _ := cmd.Flags().GetString("config")
	explicit := path != ""
	if !explicit {
		path = config.DefaultPath
	}
	if err := config.Load(path, explicit, &cfg); err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("channel") {
		cfg.Channel, _ = flags.GetString("channel")
	}
	if flags.Changed("compose") {
		cfg.Compose, _ = flags.GetBool("compose")
	}
	if flags.Changed("mirror") {
		cfg.Mirror, _ = flags.GetString("mirror")
	}
	if flags.Changed("user") {
		cfg.User, _ = flags.GetString("user")
	}
	cfg.DryRun, _ = flags.GetBool("dry-run")
	cfg.Verbose, _ = flags.GetBool("verbose")
	cfg.AssumeYes, _ = flags.GetBool("yes")

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
