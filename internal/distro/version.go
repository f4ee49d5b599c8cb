package distro

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Alby-Shinoj7/docker-setup/internal/models"
)

// Assessment is the validator's verdict plus what later stages need from it.
type Assessment struct {
	Decision models.SupportDecision

	// Codename is the apt suite provisioning will use. Empty outside the
	// debian family.
	Codename string

	// Reason explains an unsupported decision.
	Reason string

	// Warnings accompany unknown decisions and downgraded identities.
	Warnings []string
}

// Upstream codename tables. Derivative releases reduce to one of these; the
// upstream distributions use whatever codename they report.
var (
	ubuntuVersions = map[string]string{
		"focal":  "20.04",
		"jammy":  "22.04",
		"noble":  "24.04",
		"plucky": "25.04",
	}
	debianVersions = map[string]string{
		"bullseye": "11",
		"bookworm": "12",
		"trixie":   "13",
	}
	defaultCodenames = map[string]string{
		"ubuntu":   "noble",
		"debian":   "bookworm",
		"raspbian": "bookworm",
	}
)

var (
	suseIdentities = map[string]bool{"sles": true, "opensuse-leap": true, "opensuse-tumbleweed": true}
	archIdentities = map[string]bool{"arch": true, "manjaro": true, "endeavouros": true}
)

// Validate decides whether provisioning may proceed on this host's version.
// SupportUnsupported is fatal for the caller; SupportUnknown proceeds with
// the returned warnings.
func Validate(profile models.FamilyProfile, ident HostIdentity) Assessment {
	switch profile.Family {
	case models.FamilyDebian:
		return validateDebian(profile, ident)
	case models.FamilyRHEL:
		return validateRHEL(ident)
	case models.FamilyFedora:
		return validateFedora(ident)
	case models.FamilyAmazon:
		return validateAmazon(ident)
	case models.FamilySUSE:
		return validateKnownSet(ident, profile.Family, suseIdentities)
	case models.FamilyArch:
		return validateKnownSet(ident, profile.Family, archIdentities)
	default:
		return Assessment{
			Decision: models.SupportUnsupported,
			Reason:   "distribution family is unresolved",
		}
	}
}

// validateDebian resolves the apt suite. The upstream distributions use
// their reported codename directly; derivatives must reduce to a known
// upstream codename or fall back to a default with an unknown decision.
func validateDebian(profile models.FamilyProfile, ident HostIdentity) Assessment {
	fallback := defaultCodenames[profile.RepoIdentity]

	if ident.ID == profile.RepoIdentity {
		codename := ident.Codename
		if codename == "" {
			codename = codenameForVersion(profile.RepoIdentity, ident.VersionID)
		}
		if codename != "" {
			return Assessment{Decision: models.SupportSupported, Codename: codename}
		}
		return Assessment{
			Decision: models.SupportUnknown,
			Codename: fallback,
			Warnings: []string{fmt.Sprintf("%s reports no usable codename; assuming %s", ident.ID, fallback)},
		}
	}

	table := upstreamVersions(profile.RepoIdentity)
	for _, candidate := range []string{ident.UbuntuCodename, ident.DebianCodename, ident.Codename} {
		if candidate == "" {
			continue
		}
		if _, ok := table[candidate]; ok {
			return Assessment{Decision: models.SupportSupported, Codename: candidate}
		}
	}
	return Assessment{
		Decision: models.SupportUnknown,
		Codename: fallback,
		Warnings: []string{fmt.Sprintf(
			"cannot map %s %q to a known %s release; assuming %s",
			ident.ID, ident.VersionID, profile.RepoIdentity, fallback,
		)},
	}
}

func validateRHEL(ident HostIdentity) Assessment {
	major, ok := majorVersion(ident.VersionID)
	if !ok || (major != 8 && major != 9) {
		return Assessment{
			Decision: models.SupportUnsupported,
			Reason:   fmt.Sprintf("rhel family requires major version 8 or 9, host reports %q", ident.VersionID),
		}
	}
	a := Assessment{Decision: models.SupportSupported}
	if ident.ID != "rhel" && ident.ID != "centos" {
		a.Warnings = append(a.Warnings, fmt.Sprintf("%s is not an upstream rhel identity; proceeding as %d", ident.ID, major))
	}
	return a
}

func validateFedora(ident HostIdentity) Assessment {
	major, ok := majorVersion(ident.VersionID)
	if !ok || major < 38 {
		return Assessment{
			Decision: models.SupportUnsupported,
			Reason:   fmt.Sprintf("fedora requires release 38 or newer, host reports %q", ident.VersionID),
		}
	}
	return Assessment{Decision: models.SupportSupported}
}

func validateAmazon(ident HostIdentity) Assessment {
	if ident.VersionID == "2" {
		return Assessment{Decision: models.SupportSupported}
	}
	return Assessment{
		Decision: models.SupportUnsupported,
		Reason:   fmt.Sprintf("amazon family supports Amazon Linux 2 only, host reports VERSION_ID %q", ident.VersionID),
	}
}

// validateKnownSet covers the families without a version gate: a recognized
// identity is supported as-is, anything else proceeds with a warning.
func validateKnownSet(ident HostIdentity, family models.Family, known map[string]bool) Assessment {
	if known[ident.ID] {
		return Assessment{Decision: models.SupportSupported}
	}
	return Assessment{
		Decision: models.SupportUnknown,
		Warnings: []string{fmt.Sprintf("unrecognized %s-family identity %q; proceeding", family, ident.ID)},
	}
}

func upstreamVersions(repoIdentity string) map[string]string {
	if repoIdentity == "ubuntu" {
		return ubuntuVersions
	}
	return debianVersions
}

// codenameForVersion is the inverse table lookup for upstream hosts that
// report a version but no codename.
func codenameForVersion(repoIdentity, version string) string {
	if version == "" {
		return ""
	}
	for code, ver := range upstreamVersions(repoIdentity) {
		if ver == version {
			return code
		}
	}
	return ""
}

func majorVersion(v string) (int, bool) {
	head, _, _ := strings.Cut(v, ".")
	n, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return 0, false
	}
	return n, true
}
