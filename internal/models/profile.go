package models

// Family identifies the distribution family a host resolves to.
type Family int

const (
	// FamilyUnresolved is the zero value; every later stage treats it as fatal.
	FamilyUnresolved Family = iota
	FamilyDebian
	FamilyRHEL
	FamilyFedora
	FamilyAmazon
	FamilySUSE
	FamilyArch
)

// String returns the string representation of Family
func (f Family) String() string {
	switch f {
	case FamilyDebian:
		return "debian"
	case FamilyRHEL:
		return "rhel"
	case FamilyFedora:
		return "fedora"
	case FamilyAmazon:
		return "amazon"
	case FamilySUSE:
		return "suse"
	case FamilyArch:
		return "arch"
	default:
		return "unresolved"
	}
}

// PackageManager identifies the package manager driving install and removal.
// String() is the binary name the manager is invoked as.
type PackageManager int

const (
	PMNone PackageManager = iota
	PMApt
	PMDnf
	PMYum
	PMZypper
	PMPacman
)

// String returns the binary name of the package manager
func (p PackageManager) String() string {
	switch p {
	case PMApt:
		return "apt-get"
	case PMDnf:
		return "dnf"
	case PMYum:
		return "yum"
	case PMZypper:
		return "zypper"
	case PMPacman:
		return "pacman"
	default:
		return "none"
	}
}

// SupportDecision classifies how far the host's reported version is trusted.
type SupportDecision int

const (
	// SupportUnknown is the zero value: proceed, but warn. Nothing ever
	// defaults to SupportSupported.
	SupportUnknown SupportDecision = iota
	SupportSupported
	SupportUnsupported
)

// String returns the string representation of SupportDecision
func (d SupportDecision) String() string {
	switch d {
	case SupportSupported:
		return "supported"
	case SupportUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// FamilyProfile is the resolver's output: which family the host belongs to,
// which package manager drives it, and which upstream identity its packages
// are published under. RepoIdentity may differ from the host's own ID;
// derivatives remap to the upstream distribution that actually publishes
// packages. MatchedBy records the token that produced the match, for logs
// and tests.
type FamilyProfile struct {
	Family         Family
	PackageManager PackageManager
	RepoIdentity   string
	MatchedBy      string
}

// Resolved reports whether the profile is usable for provisioning.
func (p FamilyProfile) Resolved() bool {
	return p.Family != FamilyUnresolved && p.PackageManager != PMNone
}
