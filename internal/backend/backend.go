// Package backend holds the per-family provisioning implementations behind
// one interface. The family is selected exactly once, at resolution time;
// nothing downstream switches on it again.
package backend

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Alby-Shinoj7/docker-setup/internal/models"
	"github.com/Alby-Shinoj7/docker-setup/internal/runner"
)

// Backend is the per-family provisioning contract.
type Backend interface {
	// SetupRepository makes the family's package source available: trust
	// prerequisites, verified signing key, repository configuration, and a
	// metadata refresh.
	SetupRepository(ctx context.Context) error

	// Install clears conflicting packages and installs the runtime set.
	// Failures while clearing are tolerated and returned for reporting;
	// the install itself is fatal.
	Install(ctx context.Context) ([]*models.SetupError, error)

	// Uninstall removes the runtime set (tolerated), then the repository
	// configuration and trust key. It converges regardless of the
	// starting state.
	Uninstall(ctx context.Context) ([]*models.SetupError, error)
}

// Deps carries everything a backend needs. The engine fills it once after
// resolution; backends treat it as read-only.
type Deps struct {
	Run        *runner.Runner
	Profile    models.FamilyProfile
	Codename   string
	Channel    string
	Compose    bool
	Mirror     string
	MirrorHost string
}

// Source builds the RepositorySource for the families served by the
// upstream repositories.
func Source(d Deps) models.RepositorySource {
	base := strings.TrimRight(d.Mirror, "/") + "/linux/" + d.Profile.RepoIdentity
	src := models.RepositorySource{
		BaseURL:  base,
		Codename: d.Codename,
		Channel:  d.Channel,
		KeyURL:   base + "/gpg",
	}
	switch d.Profile.Family {
	case models.FamilyDebian:
		src.KeyPath = "/etc/apt/keyrings/docker.asc"
		src.KeyFingerprint = models.DebKeyFingerprint
		src.FilePath = "/etc/apt/sources.list.d/docker.list"
	case models.FamilyRHEL, models.FamilyFedora:
		src.KeyPath = "/etc/pki/rpm-gpg/docker-ce.asc"
		src.KeyFingerprint = models.RPMKeyFingerprint
		src.FilePath = "/etc/yum.repos.d/docker-ce.repo"
	case models.FamilySUSE:
		src.KeyPath = "/etc/pki/rpm-gpg/docker-ce.asc"
		src.KeyFingerprint = models.RPMKeyFingerprint
		src.FilePath = "/etc/zypp/repos.d/docker-ce.repo"
	}
	return src
}

// RemoveEach removes packages one at a time, tolerating failures: a
// conflicting package may legitimately be absent. The tolerated failures
// are returned for reporting, never silently dropped.
func RemoveEach(ctx context.Context, run *runner.Runner, pkgs []string, command func(pkg string) runner.Command) []*models.SetupError {
	var tolerated []*models.SetupError
	for _, pkg := range pkgs {
		if _, err := run.Run(ctx, command(pkg)); err != nil {
			tolerated = append(tolerated, &models.SetupError{
				Kind: models.ErrTolerated,
				Step: pkg,
				Err:  err,
			})
		}
	}
	return tolerated
}

// BackupForeign moves an existing repository file aside when it does not
// reference the mirror host. A file written by an earlier run references
// the host and is overwritten in place. A file that exists but cannot be
// read cannot be confirmed as self-written and is moved aside too.
func BackupForeign(ctx context.Context, run *runner.Runner, path, mirrorHost string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		backup, berr := run.Backup(ctx, path)
		if berr != nil {
			return berr
		}
		logrus.Warnf("existing %s is unreadable (%v); preserved as %s", path, err, backup)
		return nil
	}
	if mirrorHost != "" && strings.Contains(string(data), mirrorHost) {
		return nil
	}
	backup, err := run.Backup(ctx, path)
	if err != nil {
		return err
	}
	logrus.Warnf("existing %s does not reference %s; preserved as %s", path, mirrorHost, backup)
	return nil
}

// RepoINI renders the rpm-family repository descriptor: the stable section
// always present, the test section enabled only when selected.
func RepoINI(src models.RepositorySource) string {
	var sb strings.Builder
	section := func(channel string, enabled bool) {
		en := 0
		if enabled {
			en = 1
		}
		fmt.Fprintf(&sb, "[docker-ce-%s]\n", channel)
		fmt.Fprintf(&sb, "name=Docker CE %s - $basearch\n", strings.ToUpper(channel[:1])+channel[1:])
		fmt.Fprintf(&sb, "baseurl=%s/$releasever/$basearch/%s\n", src.BaseURL, channel)
		fmt.Fprintf(&sb, "enabled=%d\n", en)
		sb.WriteString("gpgcheck=1\n")
		fmt.Fprintf(&sb, "gpgkey=file://%s\n", src.KeyPath)
	}
	section(models.ChannelStable, true)
	sb.WriteString("\n")
	section(models.ChannelTest, src.Channel == models.ChannelTest)
	return sb.String()
}

// DebArch maps the Go architecture to the dpkg names used in source lines.
func DebArch() string {
	switch runtime.GOARCH {
	case "arm":
		return "armhf"
	case "386":
		return "i386"
	case "ppc64le":
		return "ppc64el"
	default:
		return runtime.GOARCH
	}
}
