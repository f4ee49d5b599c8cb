// Package engine orchestrates a run: resolve the host, gate on the support
// decision, then drive the family backend and the post-provision actions.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Alby-Shinoj7/docker-setup/internal/backend"
	"github.com/Alby-Shinoj7/docker-setup/internal/backend/amazon"
	"github.com/Alby-Shinoj7/docker-setup/internal/backend/apt"
	"github.com/Alby-Shinoj7/docker-setup/internal/backend/dnf"
	"github.com/Alby-Shinoj7/docker-setup/internal/backend/pacman"
	"github.com/Alby-Shinoj7/docker-setup/internal/backend/zypper"
	"github.com/Alby-Shinoj7/docker-setup/internal/config"
	"github.com/Alby-Shinoj7/docker-setup/internal/distro"
	"github.com/Alby-Shinoj7/docker-setup/internal/hostinfo"
	"github.com/Alby-Shinoj7/docker-setup/internal/models"
	"github.com/Alby-Shinoj7/docker-setup/internal/runner"
)

// Engine drives one provisioning or removal run. Resolve fills the exported
// state; Install and Uninstall consume it.
type Engine struct {
	cfg config.Config
	run *runner.Runner

	Identity   distro.HostIdentity
	Profile    models.FamilyProfile
	Assessment distro.Assessment
	Host       hostinfo.Snapshot
}

// New creates an Engine.
func New(cfg config.Config, run *runner.Runner) *Engine {
	return &Engine{cfg: cfg, run: run}
}

// Resolve reads the host identity, maps it to a family profile, and gates
// on the support decision. Every fatal precondition of a run is raised
// here, before anything mutates.
func (e *Engine) Resolve() error {
	ident, err := distro.ReadHostIdentity()
	if err != nil {
		return err
	}
	e.Identity = ident
	logrus.Debugf("host identity: %s (version %q, like %v)", ident.ID, ident.VersionID, ident.IDLike)

	e.Profile = distro.Resolve(ident, e.run.Probe)
	if !e.Profile.Resolved() {
		return &models.SetupError{
			Kind: models.ErrPrecondition,
			Step: "resolve distribution",
			Err:  fmt.Errorf("distribution %q (like %v) is not recognized", ident.ID, ident.IDLike),
		}
	}
	logrus.Infof("resolved %s: family %s, package manager %s (matched by %s)",
		ident.ID, e.Profile.Family, e.Profile.PackageManager, e.Profile.MatchedBy)

	e.Assessment = distro.Validate(e.Profile, ident)
	for _, w := range e.Assessment.Warnings {
		logrus.Warn(w)
	}
	if e.Assessment.Decision == models.SupportUnsupported {
		return &models.SetupError{
			Kind: models.ErrPrecondition,
			Step: "validate version",
			Err:  errors.New(e.Assessment.Reason),
		}
	}

	e.Host = hostinfo.Collect()
	if e.Host.Container {
		logrus.Warn("running inside a container; service activation will likely not work")
	}
	if e.Host.WSL {
		logrus.Warn("running under WSL; the service manager may be unavailable")
	}
	return nil
}

// Install provisions the repository, installs the packages, and performs
// the post-provision actions.
func (e *Engine) Install(ctx context.Context) error {
	if err := e.checkEscalation(); err != nil {
		return err
	}
	b, err := e.backend()
	if err != nil {
		return err
	}

	if err := b.SetupRepository(ctx); err != nil {
		return err
	}
	tolerated, err := b.Install(ctx)
	e.reportTolerated(tolerated)
	if err != nil {
		return err
	}

	if err := e.activateService(ctx); err != nil {
		return err
	}
	return e.enrollOperator(ctx)
}

// Uninstall removes the packages and the repository artifacts.
func (e *Engine) Uninstall(ctx context.Context) error {
	if err := e.checkEscalation(); err != nil {
		return err
	}
	b, err := e.backend()
	if err != nil {
		return err
	}
	tolerated, err := b.Uninstall(ctx)
	e.reportTolerated(tolerated)
	return err
}

// checkEscalation refuses a mutating run with no path to root before any
// action. Under dry-run the missing path is a warning, since nothing will
// execute.
func (e *Engine) checkEscalation() error {
	if e.run.Privilege() != runner.PrivilegeNone {
		logrus.Debugf("privilege path: %s", e.run.Privilege())
		return nil
	}
	if e.run.Mode().DryRun {
		logrus.Warn("no escalation path available; a real run would need root or sudo")
		return nil
	}
	return &models.SetupError{
		Kind: models.ErrPrecondition,
		Step: "check privileges",
		Err:  errors.New("not running as root and sudo is unavailable"),
	}
}

func (e *Engine) reportTolerated(tolerated []*models.SetupError) {
	for _, t := range tolerated {
		logrus.Warnf("tolerated: %v", t)
	}
}

// backend picks the family implementation once from the resolved profile.
func (e *Engine) backend() (backend.Backend, error) {
	deps := backend.Deps{
		Run:        e.run,
		Profile:    e.Profile,
		Codename:   e.Assessment.Codename,
		Channel:    e.cfg.Channel,
		Compose:    e.cfg.Compose,
		Mirror:     e.cfg.Mirror,
		MirrorHost: e.cfg.MirrorHost(),
	}
	switch e.Profile.Family {
	case models.FamilyDebian:
		return apt.New(deps), nil
	case models.FamilyRHEL, models.FamilyFedora:
		return dnf.New(deps), nil
	case models.FamilyAmazon:
		return amazon.New(deps), nil
	case models.FamilySUSE:
		return zypper.New(deps), nil
	case models.FamilyArch:
		return pacman.New(deps), nil
	default:
		return nil, &models.SetupError{
			Kind: models.ErrPrecondition,
			Step: "select backend",
			Err:  fmt.Errorf("no backend for family %s", e.Profile.Family),
		}
	}
}
