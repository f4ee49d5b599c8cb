package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Alby-Shinoj7/docker-setup/internal/distro"
	"github.com/Alby-Shinoj7/docker-setup/internal/hostinfo"
	"github.com/Alby-Shinoj7/docker-setup/internal/models"
	"github.com/Alby-Shinoj7/docker-setup/internal/runner"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Report how this host resolves without changing anything",
		Long: `Show the host's distribution identity, the family and package manager it
resolves to, the repository that would be provisioned, and whether the
runtime is already present. Runs no privileged commands.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			run := runner.New(runner.Mode{DryRun: true, Verbose: cfg.Verbose}, runner.ResolvePrivilege())

			ident, err := distro.ReadHostIdentity()
			if err != nil {
				return err
			}
			profile := distro.Resolve(ident, run.Probe)
			snap := hostinfo.Collect()

			bold := color.New(color.Bold)

			bold.Println("host")
			printRow("hostname:", orDash(snap.Hostname))
			printRow("identity:", fmt.Sprintf("%s (%s)", orDash(ident.PrettyName), orDash(ident.ID)))
			printRow("version:", orDash(ident.VersionID))
			printRow("kernel:", fmt.Sprintf("%s (%s)", orDash(snap.Kernel), snap.Arch))
			printRow("environment:", environmentLabel(snap))
			fmt.Println()

			bold.Println("resolution")
			if !profile.Resolved() {
				color.Red("  no supported distribution family matches this host")
				return &models.SetupError{
					Kind: models.ErrPrecondition,
					Step: "resolve distribution",
					Err:  fmt.Errorf("id %q with id_like %v is not supported", ident.ID, ident.IDLike),
				}
			}
			printRow("family:", fmt.Sprintf("%s (matched by %s)", profile.Family, profile.MatchedBy))
			printRow("package manager:", profile.PackageManager.String())
			printRow("repository:", repositoryLabel(cfg.Mirror, profile.RepoIdentity))

			assessment := distro.Validate(profile, ident)
			printRow("support:", supportLabel(assessment))
			for _, w := range assessment.Warnings {
				color.Yellow("  warning: %s", w)
			}
			if assessment.Codename != "" {
				printRow("codename:", assessment.Codename)
			}
			fmt.Println()

			bold.Println("environment")
			printRow("privilege:", run.Privilege().String())
			printRow("service manager:", yesNo(run.Probe("systemctl")))
			printRow("runtime present:", yesNo(run.Probe("docker")))
			return nil
		},
	}

	return statusCmd
}

func printRow(label, value string) {
	fmt.Printf("  %-17s %s\n", label, value)
}

func supportLabel(a distro.Assessment) string {
	switch a.Decision {
	case models.SupportSupported:
		return color.GreenString("supported")
	case models.SupportUnsupported:
		return color.RedString("unsupported: %s", a.Reason)
	default:
		return color.YellowString("unknown")
	}
}

func repositoryLabel(mirror, repoIdentity string) string {
	if repoIdentity == "" {
		return "distribution repositories"
	}
	return strings.TrimRight(mirror, "/") + "/linux/" + repoIdentity
}

func environmentLabel(snap hostinfo.Snapshot) string {
	switch {
	case snap.WSL:
		return "wsl"
	case snap.Container && snap.Virt != "":
		return fmt.Sprintf("container (%s)", snap.Virt)
	case snap.Container:
		return "container"
	case snap.VirtRole == "guest" && snap.Virt != "":
		return fmt.Sprintf("vm (%s)", snap.Virt)
	default:
		return "bare metal"
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
