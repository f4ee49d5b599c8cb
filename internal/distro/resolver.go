package distro

import (
	"os/exec"

	"github.com/Alby-Shinoj7/docker-setup/internal/models"
)

// ProbeFunc reports whether a binary is available on PATH. Injected so
// resolution is testable without the host's toolset.
type ProbeFunc func(name string) bool

// DefaultProbe looks the binary up on PATH.
func DefaultProbe(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// identities maps exact os-release ID tokens to their family profile.
// RepoIdentity is the upstream identity packages are published under, which
// for derivatives differs from the host's own ID. Families without an
// upstream repository (amazon, arch) leave it empty.
var identities = map[string]models.FamilyProfile{
	"ubuntu":    {Family: models.FamilyDebian, PackageManager: models.PMApt, RepoIdentity: "ubuntu"},
	"debian":    {Family: models.FamilyDebian, PackageManager: models.PMApt, RepoIdentity: "debian"},
	"raspbian":  {Family: models.FamilyDebian, PackageManager: models.PMApt, RepoIdentity: "raspbian"},
	"linuxmint": {Family: models.FamilyDebian, PackageManager: models.PMApt, RepoIdentity: "ubuntu"},
	"pop":       {Family: models.FamilyDebian, PackageManager: models.PMApt, RepoIdentity: "ubuntu"},
	"elementary": {
		Family: models.FamilyDebian, PackageManager: models.PMApt, RepoIdentity: "ubuntu",
	},
	"zorin": {Family: models.FamilyDebian, PackageManager: models.PMApt, RepoIdentity: "ubuntu"},
	"neon":  {Family: models.FamilyDebian, PackageManager: models.PMApt, RepoIdentity: "ubuntu"},
	"kali":  {Family: models.FamilyDebian, PackageManager: models.PMApt, RepoIdentity: "debian"},
	"mx":    {Family: models.FamilyDebian, PackageManager: models.PMApt, RepoIdentity: "debian"},

	"rhel":      {Family: models.FamilyRHEL, PackageManager: models.PMDnf, RepoIdentity: "rhel"},
	"centos":    {Family: models.FamilyRHEL, PackageManager: models.PMDnf, RepoIdentity: "centos"},
	"rocky":     {Family: models.FamilyRHEL, PackageManager: models.PMDnf, RepoIdentity: "centos"},
	"almalinux": {Family: models.FamilyRHEL, PackageManager: models.PMDnf, RepoIdentity: "centos"},
	"ol":        {Family: models.FamilyRHEL, PackageManager: models.PMDnf, RepoIdentity: "centos"},

	"fedora": {Family: models.FamilyFedora, PackageManager: models.PMDnf, RepoIdentity: "fedora"},

	"amzn": {Family: models.FamilyAmazon, PackageManager: models.PMYum},

	"sles":                {Family: models.FamilySUSE, PackageManager: models.PMZypper, RepoIdentity: "sles"},
	"opensuse-leap":       {Family: models.FamilySUSE, PackageManager: models.PMZypper, RepoIdentity: "sles"},
	"opensuse-tumbleweed": {Family: models.FamilySUSE, PackageManager: models.PMZypper, RepoIdentity: "sles"},

	"arch":        {Family: models.FamilyArch, PackageManager: models.PMPacman},
	"manjaro":     {Family: models.FamilyArch, PackageManager: models.PMPacman},
	"endeavouros": {Family: models.FamilyArch, PackageManager: models.PMPacman},
}

// likeTokens maps ID_LIKE tokens to a coarse family fallback for hosts whose
// own ID is unknown. The host's tokens are checked in their reported order
// and the first known one wins.
var likeTokens = map[string]struct {
	family       models.Family
	repoIdentity string
}{
	"debian":    {models.FamilyDebian, "debian"},
	"ubuntu":    {models.FamilyDebian, "ubuntu"},
	"rhel":      {models.FamilyRHEL, "centos"},
	"centos":    {models.FamilyRHEL, "centos"},
	"fedora":    {models.FamilyFedora, "fedora"},
	"suse":      {models.FamilySUSE, "sles"},
	"opensuse":  {models.FamilySUSE, "sles"},
	"arch":      {models.FamilyArch, ""},
	"archlinux": {models.FamilyArch, ""},
}

// Resolve maps a host identity to its family profile. A zero profile means
// the host could not be resolved; callers treat that as fatal, never as a
// default.
func Resolve(ident HostIdentity, probe ProbeFunc) models.FamilyProfile {
	if p, ok := identities[ident.ID]; ok {
		p.MatchedBy = ident.ID
		return p
	}

	for _, tok := range ident.IDLike {
		e, ok := likeTokens[tok]
		if !ok {
			continue
		}
		p := models.FamilyProfile{
			Family:       e.family,
			RepoIdentity: e.repoIdentity,
			MatchedBy:    "id_like:" + tok,
		}
		switch e.family {
		case models.FamilyDebian:
			p.PackageManager = models.PMApt
		case models.FamilyRHEL, models.FamilyFedora:
			p.PackageManager = rpmManager(probe)
		case models.FamilySUSE:
			p.PackageManager = models.PMZypper
		case models.FamilyArch:
			p.PackageManager = models.PMPacman
		}
		return p
	}

	return models.FamilyProfile{}
}

// rpmManager probes for the newer manager first. Manager binaries are never
// assumed present; a host with neither leaves the profile unresolved.
func rpmManager(probe ProbeFunc) models.PackageManager {
	if probe("dnf") {
		return models.PMDnf
	}
	if probe("yum") {
		return models.PMYum
	}
	return models.PMNone
}
