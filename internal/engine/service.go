package engine

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/Alby-Shinoj7/docker-setup/internal/models"
	"github.com/Alby-Shinoj7/docker-setup/internal/runner"
)

// systemdMarker exists when systemd is PID 1. Swappable for tests.
var systemdMarker = "/run/systemd/system"

// activateService enables and starts the runtime unit when a service
// manager is available. Hosts without one (containers, some WSL setups)
// warn and skip; an actual activation failure is fatal.
func (e *Engine) activateService(ctx context.Context) error {
	if !e.run.Probe("systemctl") || !dirExists(systemdMarker) {
		logrus.Warn("no systemd service manager detected; skipping service activation")
		return nil
	}
	if _, err := e.run.Run(ctx, runner.Command{
		Name: "systemctl", Args: []string{"enable", "--now", "docker.service"}, Privileged: true,
	}); err != nil {
		return &models.SetupError{Kind: models.ErrSubprocess, Step: "activate service", Err: err}
	}
	logrus.Info("docker.service enabled and started")
	return nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
