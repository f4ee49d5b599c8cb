package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alby-Shinoj7/docker-setup/internal/config"
	"github.com/Alby-Shinoj7/docker-setup/internal/runner"
)

func swapMarker(t *testing.T, path string) {
	t.Helper()
	restore := systemdMarker
	systemdMarker = path
	t.Cleanup(func() { systemdMarker = restore })
}

func TestActivateService_SkipsWithoutServiceManager(t *testing.T) {
	swapMarker(t, filepath.Join(t.TempDir(), "absent"))

	e := New(config.Default(), runner.New(runner.Mode{DryRun: true}, runner.PrivilegeRoot))
	require.NoError(t, e.activateService(context.Background()))
	assert.Empty(t, e.run.Transcript())
}

func TestActivateService_EnablesUnit(t *testing.T) {
	swapMarker(t, t.TempDir())

	dir := t.TempDir()
	script := filepath.Join(dir, "systemctl")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nexit 0\n"), 0o755))
	t.Setenv("PATH", dir)

	e := New(config.Default(), runner.New(runner.Mode{DryRun: true}, runner.PrivilegeRoot))
	require.NoError(t, e.activateService(context.Background()))

	assert.Equal(t, []string{"systemctl enable --now docker.service"}, e.run.Transcript())
}

func TestDirExists(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, dirExists(dir))
	assert.False(t, dirExists(filepath.Join(dir, "absent")))

	file := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	assert.False(t, dirExists(file))
}
