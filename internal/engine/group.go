package engine

import (
	"context"
	"fmt"
	"os"
	"os/user"

	"github.com/sirupsen/logrus"

	"github.com/Alby-Shinoj7/docker-setup/internal/models"
	"github.com/Alby-Shinoj7/docker-setup/internal/runner"
)

const runtimeGroup = "docker"

// enrollOperator adds the operator to the runtime group so the socket works
// without escalation. No operator (a root run without --user) is an
// informational skip; an unknown user warns and skips; an existing member
// is left alone so re-runs never duplicate entries.
func (e *Engine) enrollOperator(ctx context.Context) error {
	name := e.cfg.User
	if name == "" {
		name = os.Getenv("SUDO_USER")
	}
	if name == "" || name == "root" {
		logrus.Infof("no operator user to enroll; pass --user to add one to the %s group", runtimeGroup)
		return nil
	}

	u, err := user.Lookup(name)
	if err != nil {
		logrus.Warnf("user %q not found; skipping group enrollment", name)
		return nil
	}

	if e.run.Note(fmt.Sprintf("enroll %s in the %s group", name, runtimeGroup)) {
		return nil
	}

	if _, err := e.run.Run(ctx, runner.Command{
		Name: "groupadd", Args: []string{"-f", runtimeGroup}, Privileged: true,
	}); err != nil {
		return &models.SetupError{Kind: models.ErrSubprocess, Step: "create runtime group", Err: err}
	}

	if member, err := inGroup(u, runtimeGroup); err == nil && member {
		logrus.Infof("%s is already in the %s group", name, runtimeGroup)
		return nil
	}
	if _, err := e.run.Run(ctx, runner.Command{
		Name: "usermod", Args: []string{"-aG", runtimeGroup, name}, Privileged: true,
	}); err != nil {
		return &models.SetupError{Kind: models.ErrSubprocess, Step: "enroll operator", Err: err}
	}
	logrus.Infof("added %s to the %s group; takes effect on next login", name, runtimeGroup)
	return nil
}

// inGroup reports membership through the user database. Swappable for tests.
var inGroup = func(u *user.User, group string) (bool, error) {
	g, err := user.LookupGroup(group)
	if err != nil {
		return false, err
	}
	ids, err := u.GroupIds()
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == g.Gid {
			return true, nil
		}
	}
	return false, nil
}
