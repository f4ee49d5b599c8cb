// Package apt provisions the debian family through apt-get and the
// upstream deb repository.
package apt

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Alby-Shinoj7/docker-setup/internal/backend"
	"github.com/Alby-Shinoj7/docker-setup/internal/models"
	"github.com/Alby-Shinoj7/docker-setup/internal/runner"
	"github.com/Alby-Shinoj7/docker-setup/internal/trust"
)

// noninteractiveEnv keeps dpkg from prompting during unattended runs.
var noninteractiveEnv = []string{"DEBIAN_FRONTEND=noninteractive"}

// conflictingPackages are distribution packagings of the runtime that clash
// with the upstream packages. Most hosts have none of them installed.
var conflictingPackages = []string{
	"docker.io",
	"docker-doc",
	"docker-compose",
	"docker-compose-v2",
	"podman-docker",
	"containerd",
	"runc",
}

// removablePackages is everything uninstall clears, including packages an
// earlier run may have pulled in.
var removablePackages = []string{
	"docker-ce",
	"docker-ce-cli",
	"containerd.io",
	"docker-buildx-plugin",
	"docker-compose-plugin",
	"docker-ce-rootless-extras",
}

// Backend implements the backend.Backend interface for the debian family
type Backend struct {
	deps backend.Deps
	src  models.RepositorySource
}

// New creates a debian-family backend
func New(deps backend.Deps) backend.Backend {
	return &Backend{deps: deps, src: backend.Source(deps)}
}

// sourceLine renders the one-line deb source entry.
func sourceLine(src models.RepositorySource) string {
	return fmt.Sprintf("deb [arch=%s signed-by=%s] %s %s %s\n",
		backend.DebArch(), src.KeyPath, src.BaseURL, src.Codename, src.Channel)
}

// SetupRepository refreshes the index, ensures the trust prerequisites, and
// writes the verified signing key and the source line.
func (b *Backend) SetupRepository(ctx context.Context) error {
	run := b.deps.Run

	prepare := []runner.Command{
		{Name: "apt-get", Args: []string{"update", "-qq"}, Privileged: true, Env: noninteractiveEnv},
		{Name: "apt-get", Args: []string{"install", "-y", "-qq", "ca-certificates"}, Privileged: true, Env: noninteractiveEnv},
	}
	for _, c := range prepare {
		if _, err := run.Run(ctx, c); err != nil {
			return &models.SetupError{Kind: models.ErrSubprocess, Step: "prepare apt", Err: err}
		}
	}

	if err := trust.EnsureKey(ctx, run, b.src); err != nil {
		return err
	}

	line := sourceLine(b.src)

	if err := backend.BackupForeign(ctx, run, b.src.FilePath, b.deps.MirrorHost); err != nil {
		return err
	}
	if err := run.WriteFile(ctx, b.src.FilePath, line, "0644"); err != nil {
		return err
	}
	logrus.Infof("configured apt source %s (%s %s)", b.src.FilePath, b.src.Codename, b.src.Channel)

	if _, err := run.Run(ctx, runner.Command{
		Name: "apt-get", Args: []string{"update", "-qq"}, Privileged: true, Env: noninteractiveEnv,
	}); err != nil {
		return &models.SetupError{Kind: models.ErrSubprocess, Step: "refresh apt metadata", Err: err}
	}
	return nil
}

// Install clears conflicting distribution packages, then installs the
// runtime set in one transaction.
func (b *Backend) Install(ctx context.Context) ([]*models.SetupError, error) {
	run := b.deps.Run

	tolerated := backend.RemoveEach(ctx, run, conflictingPackages, func(pkg string) runner.Command {
		return runner.Command{
			Name: "apt-get", Args: []string{"remove", "-y", "-qq", pkg},
			Privileged: true, Env: noninteractiveEnv,
		}
	})

	pkgs := append([]string{}, models.BasePackages...)
	if b.deps.Compose {
		pkgs = append(pkgs, models.ComposePlugin)
	}
	args := append([]string{"install", "-y", "-qq"}, pkgs...)
	if _, err := run.Run(ctx, runner.Command{
		Name: "apt-get", Args: args, Privileged: true, Env: noninteractiveEnv,
	}); err != nil {
		return tolerated, &models.SetupError{Kind: models.ErrSubprocess, Step: "install packages", Err: err}
	}
	logrus.Infof("installed %s", strings.Join(pkgs, " "))
	return tolerated, nil
}

// Uninstall purges the runtime set, removes the repository artifacts, and
// refreshes metadata.
func (b *Backend) Uninstall(ctx context.Context) ([]*models.SetupError, error) {
	run := b.deps.Run

	tolerated := backend.RemoveEach(ctx, run, removablePackages, func(pkg string) runner.Command {
		return runner.Command{
			Name: "apt-get", Args: []string{"purge", "-y", "-qq", pkg},
			Privileged: true, Env: noninteractiveEnv,
		}
	})
	if _, err := run.Run(ctx, runner.Command{
		Name: "apt-get", Args: []string{"autoremove", "-y", "-qq"}, Privileged: true, Env: noninteractiveEnv,
	}); err != nil {
		tolerated = append(tolerated, &models.SetupError{Kind: models.ErrTolerated, Step: "autoremove", Err: err})
	}

	if err := run.Remove(ctx, b.src.FilePath); err != nil {
		return tolerated, err
	}
	if err := run.Remove(ctx, b.src.KeyPath); err != nil {
		return tolerated, err
	}
	if _, err := run.Run(ctx, runner.Command{
		Name: "apt-get", Args: []string{"update", "-qq"}, Privileged: true, Env: noninteractiveEnv,
	}); err != nil {
		return tolerated, &models.SetupError{Kind: models.ErrSubprocess, Step: "refresh apt metadata", Err: err}
	}
	return tolerated, nil
}
