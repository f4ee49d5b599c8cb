// Package zypper provisions the suse family through zypper and the
// upstream rpm repository.
package zypper

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Alby-Shinoj7/docker-setup/internal/backend"
	"github.com/Alby-Shinoj7/docker-setup/internal/models"
	"github.com/Alby-Shinoj7/docker-setup/internal/runner"
	"github.com/Alby-Shinoj7/docker-setup/internal/trust"
)

// conflictingPackages are the distribution's own runtime packagings.
var conflictingPackages = []string{
	"docker",
	"docker-runc",
	"containerd",
}

var removablePackages = []string{
	"docker-ce",
	"docker-ce-cli",
	"containerd.io",
	"docker-buildx-plugin",
	"docker-compose-plugin",
	"docker-ce-rootless-extras",
}

// Backend implements the backend.Backend interface for the suse family
type Backend struct {
	deps backend.Deps
	src  models.RepositorySource
}

// New creates a suse-family backend
func New(deps backend.Deps) backend.Backend {
	return &Backend{deps: deps, src: backend.Source(deps)}
}

// SetupRepository installs and imports the verified signing key, writes the
// .repo descriptor, and refreshes the repositories.
func (b *Backend) SetupRepository(ctx context.Context) error {
	run := b.deps.Run

	if err := trust.EnsureKey(ctx, run, b.src); err != nil {
		return err
	}
	if _, err := run.Run(ctx, runner.Command{
		Name: "rpm", Args: []string{"--import", b.src.KeyPath}, Privileged: true,
	}); err != nil {
		return &models.SetupError{Kind: models.ErrSubprocess, Step: "import signing key", Err: err}
	}

	if err := backend.BackupForeign(ctx, run, b.src.FilePath, b.deps.MirrorHost); err != nil {
		return err
	}
	if err := run.WriteFile(ctx, b.src.FilePath, backend.RepoINI(b.src), "0644"); err != nil {
		return err
	}
	logrus.Infof("configured %s (%s channel)", b.src.FilePath, b.src.Channel)

	if _, err := run.Run(ctx, runner.Command{
		Name: "zypper", Args: []string{"--non-interactive", "refresh"}, Privileged: true,
	}); err != nil {
		return &models.SetupError{Kind: models.ErrSubprocess, Step: "refresh metadata", Err: err}
	}
	return nil
}

// Install clears the distribution packagings and installs the runtime set.
func (b *Backend) Install(ctx context.Context) ([]*models.SetupError, error) {
	run := b.deps.Run

	tolerated := backend.RemoveEach(ctx, run, conflictingPackages, func(pkg string) runner.Command {
		return runner.Command{Name: "zypper", Args: []string{"--non-interactive", "remove", pkg}, Privileged: true}
	})

	pkgs := append([]string{}, models.BasePackages...)
	if b.deps.Compose {
		pkgs = append(pkgs, models.ComposePlugin)
	}
	args := append([]string{"--non-interactive", "install"}, pkgs...)
	if _, err := run.Run(ctx, runner.Command{Name: "zypper", Args: args, Privileged: true}); err != nil {
		return tolerated, &models.SetupError{Kind: models.ErrSubprocess, Step: "install packages", Err: err}
	}
	logrus.Infof("installed %s", strings.Join(pkgs, " "))
	return tolerated, nil
}

// Uninstall removes the runtime set and the repository artifacts.
func (b *Backend) Uninstall(ctx context.Context) ([]*models.SetupError, error) {
	run := b.deps.Run

	tolerated := backend.RemoveEach(ctx, run, removablePackages, func(pkg string) runner.Command {
		return runner.Command{Name: "zypper", Args: []string{"--non-interactive", "remove", pkg}, Privileged: true}
	})

	if err := run.Remove(ctx, b.src.FilePath); err != nil {
		return tolerated, err
	}
	if err := run.Remove(ctx, b.src.KeyPath); err != nil {
		return tolerated, err
	}
	if _, err := run.Run(ctx, runner.Command{
		Name: "zypper", Args: []string{"--non-interactive", "refresh"}, Privileged: true,
	}); err != nil {
		return tolerated, &models.SetupError{Kind: models.ErrSubprocess, Step: "refresh metadata", Err: err}
	}
	return tolerated, nil
}
