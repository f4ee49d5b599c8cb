package runner

import (
	"os"
	"os/exec"
)

// Privilege is the escalation path for mutating commands. It is resolved
// exactly once at startup and injected; nothing re-derives it per call.
type Privilege int

const (
	// PrivilegeNone means no path to root exists. Mutating commands fail
	// before anything is attempted.
	PrivilegeNone Privilege = iota
	PrivilegeRoot
	PrivilegeSudo
)

// String returns the string representation of Privilege
func (p Privilege) String() string {
	switch p {
	case PrivilegeRoot:
		return "root"
	case PrivilegeSudo:
		return "sudo"
	default:
		return "none"
	}
}

// ResolvePrivilege inspects the process once: root runs commands directly,
// otherwise sudo when available.
func ResolvePrivilege() Privilege {
	if os.Geteuid() == 0 {
		return PrivilegeRoot
	}
	if _, err := exec.LookPath("sudo"); err == nil {
		return PrivilegeSudo
	}
	return PrivilegeNone
}
