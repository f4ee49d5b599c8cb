// Package amazon provisions Amazon Linux 2 through its extras mechanism.
// There is no upstream repository for it, and no packaged compose plugin.
package amazon

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/Alby-Shinoj7/docker-setup/internal/backend"
	"github.com/Alby-Shinoj7/docker-setup/internal/models"
	"github.com/Alby-Shinoj7/docker-setup/internal/runner"
	"github.com/Alby-Shinoj7/docker-setup/internal/trust"
)

const (
	// composeVersion is the pinned standalone artifact staged on hosts
	// whose repositories carry no compose plugin.
	composeVersion = "v2.27.1"
	composeURLBase = "https://github.com/docker/compose/releases/download"
	composePath    = "/usr/local/lib/docker/cli-plugins/docker-compose"

	// maxDigestSize bounds the .sha256 companion; it is a single line.
	maxDigestSize = 4 << 10
)

// Backend implements the backend.Backend interface for Amazon Linux 2
type Backend struct {
	deps backend.Deps
}

// New creates an amazon backend
func New(deps backend.Deps) backend.Backend {
	return &Backend{deps: deps}
}

// SetupRepository enables the distribution's docker extra.
func (b *Backend) SetupRepository(ctx context.Context) error {
	run := b.deps.Run
	if !run.Probe("amazon-linux-extras") {
		return &models.SetupError{
			Kind: models.ErrPrecondition,
			Step: "enable docker extra",
			Err:  fmt.Errorf("amazon-linux-extras not found on PATH"),
		}
	}
	if _, err := run.Run(ctx, runner.Command{
		Name: "amazon-linux-extras", Args: []string{"enable", "docker"}, Privileged: true,
	}); err != nil {
		return &models.SetupError{Kind: models.ErrSubprocess, Step: "enable docker extra", Err: err}
	}
	return nil
}

// Install installs the distribution's docker package and, when requested,
// the standalone compose artifact.
func (b *Backend) Install(ctx context.Context) ([]*models.SetupError, error) {
	run := b.deps.Run
	if _, err := run.Run(ctx, runner.Command{
		Name: "yum", Args: []string{"install", "-y", "-q", "docker"}, Privileged: true,
	}); err != nil {
		return nil, &models.SetupError{Kind: models.ErrSubprocess, Step: "install docker", Err: err}
	}
	if b.deps.Compose {
		if err := b.installCompose(ctx); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// installCompose stages the pinned artifact into the cli-plugins directory
// so `docker compose` works as on the other families.
func (b *Backend) installCompose(ctx context.Context) error {
	run := b.deps.Run
	url := fmt.Sprintf("%s/%s/docker-compose-linux-%s", composeURLBase, composeVersion, composeArch())
	logrus.Warnf("installing standalone compose %s; it will not receive package-managed updates", composeVersion)

	if run.Note(fmt.Sprintf("download %s, verify its published sha256, install to %s (mode 0755)", url, composePath)) {
		return nil
	}

	tmp, err := os.CreateTemp("", "docker-compose-*")
	if err != nil {
		return &models.SetupError{Kind: models.ErrSubprocess, Step: "stage compose", Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := trust.Download(ctx, url, tmp); err != nil {
		tmp.Close()
		return &models.SetupError{Kind: models.ErrSubprocess, Step: "download compose", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &models.SetupError{Kind: models.ErrSubprocess, Step: "stage compose", Err: err}
	}

	var sum bytes.Buffer
	if err := trust.DownloadMax(ctx, url+".sha256", &sum, maxDigestSize); err != nil {
		return &models.SetupError{Kind: models.ErrVerification, Step: "fetch compose digest", Err: err}
	}
	if err := trust.VerifyFileSHA256(tmpPath, sum.String()); err != nil {
		return &models.SetupError{Kind: models.ErrVerification, Step: "verify compose digest", Err: err}
	}

	if err := run.MkdirAll(ctx, filepath.Dir(composePath), "0755"); err != nil {
		return err
	}
	if err := run.InstallFile(ctx, tmpPath, composePath, "0755"); err != nil {
		return err
	}
	logrus.Infof("installed compose to %s", composePath)
	return nil
}

// composeArch maps the Go architecture to the artifact naming.
func composeArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "arm":
		return "armv7"
	default:
		return runtime.GOARCH
	}
}

// Uninstall removes the docker package, the standalone compose artifact,
// and disables the extra again.
func (b *Backend) Uninstall(ctx context.Context) ([]*models.SetupError, error) {
	run := b.deps.Run

	tolerated := backend.RemoveEach(ctx, run, []string{"docker"}, func(pkg string) runner.Command {
		return runner.Command{Name: "yum", Args: []string{"remove", "-y", "-q", pkg}, Privileged: true}
	})

	if err := run.Remove(ctx, composePath); err != nil {
		return tolerated, err
	}
	if _, err := run.Run(ctx, runner.Command{
		Name: "amazon-linux-extras", Args: []string{"disable", "docker"}, Privileged: true,
	}); err != nil {
		tolerated = append(tolerated, &models.SetupError{Kind: models.ErrTolerated, Step: "disable docker extra", Err: err})
	}
	return tolerated, nil
}
