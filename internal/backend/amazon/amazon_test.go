package amazon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alby-Shinoj7/docker-setup/internal/backend"
	"github.com/Alby-Shinoj7/docker-setup/internal/models"
	"github.com/Alby-Shinoj7/docker-setup/internal/runner"
)

func amazonDeps() backend.Deps {
	return backend.Deps{
		Run: runner.New(runner.Mode{DryRun: true}, runner.PrivilegeRoot),
		Profile: models.FamilyProfile{
			Family: models.FamilyAmazon, PackageManager: models.PMYum,
		},
		Channel:    models.ChannelStable,
		Compose:    true,
		Mirror:     "https://download.docker.com",
		MirrorHost: "download.docker.com",
	}
}

// fakeTool points PATH at a directory holding only the named executable so
// probes resolve deterministically.
func fakeTool(t *testing.T, name string) {
	t.Helper()
	dir := t.TempDir()
	script := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nexit 0\n"), 0o755))
	t.Setenv("PATH", dir)
}

func requireInOrder(t *testing.T, entries []string, fragments ...string) {
	t.Helper()
	i := 0
	for _, frag := range fragments {
		found := false
		for ; i < len(entries); i++ {
			if strings.Contains(entries[i], frag) {
				found = true
				i++
				break
			}
		}
		if !found {
			t.Fatalf("fragment %q not found in order; transcript:\n%s", frag, strings.Join(entries, "\n"))
		}
	}
}

func TestSetupRepository_RequiresExtrasTool(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	deps := amazonDeps()
	b := New(deps)

	err := b.SetupRepository(context.Background())
	require.Error(t, err)

	var serr *models.SetupError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, models.ErrPrecondition, serr.Kind)
	assert.Equal(t, "enable docker extra", serr.Step)
	assert.Empty(t, deps.Run.Transcript())
}

func TestSetupRepository_DryRunPlan(t *testing.T) {
	fakeTool(t, "amazon-linux-extras")
	deps := amazonDeps()
	b := New(deps)

	require.NoError(t, b.SetupRepository(context.Background()))
	requireInOrder(t, deps.Run.Transcript(), "amazon-linux-extras enable docker")
}

func TestInstall_DryRunPlan(t *testing.T) {
	deps := amazonDeps()
	b := New(deps)

	tolerated, err := b.Install(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tolerated)

	entries := deps.Run.Transcript()
	require.Len(t, entries, 2)
	assert.Equal(t, "yum install -y -q docker", entries[0])
	assert.Contains(t, entries[1], "download https://github.com/docker/compose/releases/download/"+composeVersion+"/docker-compose-linux-")
	assert.Contains(t, entries[1], composePath)
}

func TestInstall_WithoutCompose(t *testing.T) {
	deps := amazonDeps()
	deps.Compose = false
	b := New(deps)

	_, err := b.Install(context.Background())
	require.NoError(t, err)

	entries := deps.Run.Transcript()
	require.Len(t, entries, 1)
	assert.Equal(t, "yum install -y -q docker", entries[0])
}

func TestUninstall_DryRunPlan(t *testing.T) {
	deps := amazonDeps()
	b := New(deps)

	tolerated, err := b.Uninstall(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tolerated)

	requireInOrder(t, deps.Run.Transcript(),
		"yum remove -y -q docker",
		"remove "+composePath,
		"amazon-linux-extras disable docker",
	)
}

func TestComposeArch(t *testing.T) {
	if runtime.GOARCH == "amd64" {
		assert.Equal(t, "x86_64", composeArch())
	}
	assert.NotEmpty(t, composeArch())
}
