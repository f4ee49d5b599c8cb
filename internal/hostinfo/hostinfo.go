// Package hostinfo collects a best-effort snapshot of the host environment
// for status output and pre-flight warnings.
package hostinfo

import (
	"os"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// Marker locations, package-level so tests can point them at fixtures.
var (
	dockerenvPath    = "/.dockerenv"
	containerenvPath = "/run/.containerenv"
	procVersionPath  = "/proc/version"
)

// Snapshot describes the environment a run is about to mutate. Collection is
// best-effort: a field that cannot be determined stays zero.
type Snapshot struct {
	Hostname string
	Kernel   string
	Arch     string

	// Virt and VirtRole are the virtualization system and role, e.g.
	// kvm/guest on a VM or docker/guest inside a container.
	Virt     string
	VirtRole string

	// Container and WSL flag environments where service activation is
	// unlikely to work.
	Container bool
	WSL       bool
}

// Collect gathers the snapshot.
func Collect() Snapshot {
	snap := Snapshot{Arch: runtime.GOARCH}

	if h, err := os.Hostname(); err == nil {
		snap.Hostname = h
	}
	if info, err := host.Info(); err == nil {
		snap.Kernel = info.KernelVersion
		if info.KernelArch != "" {
			snap.Arch = info.KernelArch
		}
	}
	if system, role, err := host.Virtualization(); err == nil {
		snap.Virt = system
		snap.VirtRole = role
		if role == "guest" {
			switch system {
			case "docker", "lxc", "podman", "systemd-nspawn":
				snap.Container = true
			}
		}
	}

	// Marker files catch containers gopsutil cannot classify.
	if !snap.Container {
		snap.Container = hasMarker(dockerenvPath) || hasMarker(containerenvPath)
	}
	snap.WSL = isWSL()
	return snap
}

func hasMarker(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// isWSL checks the kernel banner; WSL kernels carry a microsoft tag.
func isWSL() bool {
	data, err := os.ReadFile(procVersionPath)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), "microsoft")
}
