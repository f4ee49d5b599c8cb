package hostinfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func swapMarkers(t *testing.T, dockerenv, containerenv, procVersion string) {
	t.Helper()
	origDocker, origContainer, origProc := dockerenvPath, containerenvPath, procVersionPath
	dockerenvPath, containerenvPath, procVersionPath = dockerenv, containerenv, procVersion
	t.Cleanup(func() {
		dockerenvPath, containerenvPath, procVersionPath = origDocker, origContainer, origProc
	})
}

func touch(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	return path
}

func absent(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "absent")
}

func TestCollect_BasicFields(t *testing.T) {
	swapMarkers(t, absent(t), absent(t), absent(t))

	snap := Collect()

	assert.NotEmpty(t, snap.Arch)
	assert.NotEmpty(t, snap.Hostname)
}

func TestCollect_DockerenvMarker(t *testing.T) {
	swapMarkers(t, touch(t, ".dockerenv"), absent(t), absent(t))

	snap := Collect()
	assert.True(t, snap.Container)
}

func TestCollect_ContainerenvMarker(t *testing.T) {
	swapMarkers(t, absent(t), touch(t, ".containerenv"), absent(t))

	snap := Collect()
	assert.True(t, snap.Container)
}

func TestCollect_WSLKernelBanner(t *testing.T) {
	proc := filepath.Join(t.TempDir(), "version")
	banner := "Linux version 5.15.153.1-microsoft-standard-WSL2 (root@host) #1 SMP"
	require.NoError(t, os.WriteFile(proc, []byte(banner), 0o644))
	swapMarkers(t, absent(t), absent(t), proc)

	snap := Collect()
	assert.True(t, snap.WSL)
}

func TestCollect_PlainKernelIsNotWSL(t *testing.T) {
	proc := filepath.Join(t.TempDir(), "version")
	banner := "Linux version 6.8.0-31-generic (buildd@host) #31-Ubuntu SMP"
	require.NoError(t, os.WriteFile(proc, []byte(banner), 0o644))
	swapMarkers(t, absent(t), absent(t), proc)

	snap := Collect()
	assert.False(t, snap.WSL)
}

func TestHasMarker(t *testing.T) {
	assert.True(t, hasMarker(touch(t, "marker")))
	assert.False(t, hasMarker(absent(t)))
}
