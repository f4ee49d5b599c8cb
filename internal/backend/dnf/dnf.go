// Package dnf provisions the rhel and fedora families through dnf or yum
// and the upstream rpm repository.
package dnf

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Alby-Shinoj7/docker-setup/internal/backend"
	"github.com/Alby-Shinoj7/docker-setup/internal/models"
	"github.com/Alby-Shinoj7/docker-setup/internal/runner"
	"github.com/Alby-Shinoj7/docker-setup/internal/trust"
)

// conflictingPackages are the legacy packagings cleared before the upstream
// packages go in.
var conflictingPackages = []string{
	"docker",
	"docker-client",
	"docker-client-latest",
	"docker-common",
	"docker-latest",
	"docker-latest-logrotate",
	"docker-logrotate",
	"docker-engine",
	"podman-docker",
}

var removablePackages = []string{
	"docker-ce",
	"docker-ce-cli",
	"containerd.io",
	"docker-buildx-plugin",
	"docker-compose-plugin",
	"docker-ce-rootless-extras",
}

// Backend implements the backend.Backend interface for the rhel and fedora
// families. pm is dnf or yum, fixed at resolution time.
type Backend struct {
	deps backend.Deps
	src  models.RepositorySource
	pm   string
}

// New creates an rpm-family backend
func New(deps backend.Deps) backend.Backend {
	return &Backend{
		deps: deps,
		src:  backend.Source(deps),
		pm:   deps.Profile.PackageManager.String(),
	}
}

// SetupRepository installs the verified signing key and writes the .repo
// descriptor, then refreshes the metadata cache.
func (b *Backend) SetupRepository(ctx context.Context) error {
	run := b.deps.Run

	if _, err := run.Run(ctx, runner.Command{
		Name: b.pm, Args: []string{"install", "-y", "-q", "ca-certificates"}, Privileged: true,
	}); err != nil {
		return &models.SetupError{Kind: models.ErrSubprocess, Step: "prepare " + b.pm, Err: err}
	}

	if err := trust.EnsureKey(ctx, run, b.src); err != nil {
		return err
	}

	if err := backend.BackupForeign(ctx, run, b.src.FilePath, b.deps.MirrorHost); err != nil {
		return err
	}
	if err := run.WriteFile(ctx, b.src.FilePath, backend.RepoINI(b.src), "0644"); err != nil {
		return err
	}
	logrus.Infof("configured %s (%s channel)", b.src.FilePath, b.src.Channel)

	if _, err := run.Run(ctx, runner.Command{
		Name: b.pm, Args: []string{"makecache"}, Privileged: true,
	}); err != nil {
		return &models.SetupError{Kind: models.ErrSubprocess, Step: "refresh metadata", Err: err}
	}
	return nil
}

// Install clears legacy packagings, makes sure the SELinux policy package
// is present on rhel, and installs the runtime set.
func (b *Backend) Install(ctx context.Context) ([]*models.SetupError, error) {
	run := b.deps.Run

	tolerated := backend.RemoveEach(ctx, run, conflictingPackages, func(pkg string) runner.Command {
		return runner.Command{Name: b.pm, Args: []string{"remove", "-y", "-q", pkg}, Privileged: true}
	})

	if b.deps.Profile.Family == models.FamilyRHEL {
		if err := b.ensureSELinuxPolicy(ctx); err != nil {
			return tolerated, err
		}
	}

	pkgs := append([]string{}, models.BasePackages...)
	if b.deps.Compose {
		pkgs = append(pkgs, models.ComposePlugin)
	}
	args := append([]string{"install", "-y", "-q"}, pkgs...)
	if _, err := run.Run(ctx, runner.Command{Name: b.pm, Args: args, Privileged: true}); err != nil {
		return tolerated, &models.SetupError{Kind: models.ErrSubprocess, Step: "install packages", Err: err}
	}
	logrus.Infof("installed %s", strings.Join(pkgs, " "))
	return tolerated, nil
}

// ensureSELinuxPolicy installs container-selinux only when rpm reports it
// missing; a present policy module is left untouched.
func (b *Backend) ensureSELinuxPolicy(ctx context.Context) error {
	run := b.deps.Run
	if run.Note("ensure container-selinux is present") {
		return nil
	}
	if _, err := run.Run(ctx, runner.Command{Name: "rpm", Args: []string{"-q", "container-selinux"}}); err == nil {
		logrus.Debug("container-selinux already present")
		return nil
	}
	if _, err := run.Run(ctx, runner.Command{
		Name: b.pm, Args: []string{"install", "-y", "-q", "container-selinux"}, Privileged: true,
	}); err != nil {
		return &models.SetupError{Kind: models.ErrSubprocess, Step: "install container-selinux", Err: err}
	}
	return nil
}

// Uninstall removes the runtime set, the repository artifacts, and rebuilds
// the metadata cache.
func (b *Backend) Uninstall(ctx context.Context) ([]*models.SetupError, error) {
	run := b.deps.Run

	tolerated := backend.RemoveEach(ctx, run, removablePackages, func(pkg string) runner.Command {
		return runner.Command{Name: b.pm, Args: []string{"remove", "-y", "-q", pkg}, Privileged: true}
	})

	if err := run.Remove(ctx, b.src.FilePath); err != nil {
		return tolerated, err
	}
	if err := run.Remove(ctx, b.src.KeyPath); err != nil {
		return tolerated, err
	}
	if _, err := run.Run(ctx, runner.Command{Name: b.pm, Args: []string{"makecache"}, Privileged: true}); err != nil {
		return tolerated, &models.SetupError{Kind: models.ErrSubprocess, Step: "refresh metadata", Err: err}
	}
	return tolerated, nil
}
