// Package pacman provisions the arch family from the distribution's own
// repositories; there is no upstream repository for it.
package pacman

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Alby-Shinoj7/docker-setup/internal/backend"
	"github.com/Alby-Shinoj7/docker-setup/internal/models"
	"github.com/Alby-Shinoj7/docker-setup/internal/runner"
)

// basePackages are the distribution's packagings of the runtime and buildx.
var basePackages = []string{"docker", "docker-buildx"}

const composePackage = "docker-compose"

// Backend implements the backend.Backend interface for the arch family
type Backend struct {
	deps backend.Deps
}

// New creates an arch-family backend
func New(deps backend.Deps) backend.Backend {
	return &Backend{deps: deps}
}

// SetupRepository refreshes the package database; the distribution's own
// repositories carry everything.
func (b *Backend) SetupRepository(ctx context.Context) error {
	if _, err := b.deps.Run.Run(ctx, runner.Command{
		Name: "pacman", Args: []string{"-Sy", "--noconfirm"}, Privileged: true,
	}); err != nil {
		return &models.SetupError{Kind: models.ErrSubprocess, Step: "refresh pacman database", Err: err}
	}
	return nil
}

// Install installs the distribution packages. --needed leaves up-to-date
// packages alone on re-runs. Arch has no legacy package set to clear.
func (b *Backend) Install(ctx context.Context) ([]*models.SetupError, error) {
	pkgs := append([]string{}, basePackages...)
	if b.deps.Compose {
		pkgs = append(pkgs, composePackage)
	}
	args := append([]string{"-S", "--noconfirm", "--needed"}, pkgs...)
	if _, err := b.deps.Run.Run(ctx, runner.Command{Name: "pacman", Args: args, Privileged: true}); err != nil {
		return nil, &models.SetupError{Kind: models.ErrSubprocess, Step: "install packages", Err: err}
	}
	logrus.Infof("installed %s", strings.Join(pkgs, " "))
	return nil, nil
}

// Uninstall removes the packages; there are no repository artifacts.
func (b *Backend) Uninstall(ctx context.Context) ([]*models.SetupError, error) {
	pkgs := append(append([]string{}, basePackages...), composePackage)
	tolerated := backend.RemoveEach(ctx, b.deps.Run, pkgs, func(pkg string) runner.Command {
		return runner.Command{Name: "pacman", Args: []string{"-Rns", "--noconfirm", pkg}, Privileged: true}
	})
	return tolerated, nil
}
