// Package distro resolves the host's distribution identity and decides how
// far its reported version is supported.
package distro

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/Alby-Shinoj7/docker-setup/internal/models"
)

// os-release locations, in lookup order. Package-level so tests can point
// them at fixtures.
var (
	osReleasePath         = "/etc/os-release"
	osReleaseFallbackPath = "/usr/lib/os-release"
)

// HostIdentity is a snapshot of the host's os-release document, read once
// per run.
type HostIdentity struct {
	// ID is the lowercase-normalized ID token.
	ID string

	// RawID is the ID token exactly as reported.
	RawID string

	// VersionID is the VERSION_ID token, unmodified.
	VersionID string

	// Codename is VERSION_CODENAME, normalized.
	Codename string

	// UbuntuCodename and DebianCodename carry the upstream codename some
	// derivatives report for their base release.
	UbuntuCodename string
	DebianCodename string

	// IDLike holds the normalized ID_LIKE tokens with their order kept.
	IDLike []string

	// PrettyName is used in log output only.
	PrettyName string
}

// ReadHostIdentity reads the os-release document. Neither location being
// readable is fatal: nothing downstream can proceed without an identity.
func ReadHostIdentity() (HostIdentity, error) {
	for _, path := range []string{osReleasePath, osReleaseFallbackPath} {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		return parseOSRelease(string(data)), nil
	}
	return HostIdentity{}, &models.SetupError{
		Kind: models.ErrPrecondition,
		Step: "read os-release",
		Err:  fmt.Errorf("neither %s nor %s is readable", osReleasePath, osReleaseFallbackPath),
	}
}

func parseOSRelease(doc string) HostIdentity {
	fields := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(doc))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(key)] = unquote(value)
	}

	ident := HostIdentity{
		RawID:          fields["ID"],
		ID:             strings.ToLower(strings.TrimSpace(fields["ID"])),
		VersionID:      strings.TrimSpace(fields["VERSION_ID"]),
		Codename:       strings.ToLower(strings.TrimSpace(fields["VERSION_CODENAME"])),
		UbuntuCodename: strings.ToLower(strings.TrimSpace(fields["UBUNTU_CODENAME"])),
		DebianCodename: strings.ToLower(strings.TrimSpace(fields["DEBIAN_CODENAME"])),
		PrettyName:     fields["PRETTY_NAME"],
	}
	for _, tok := range strings.Fields(fields["ID_LIKE"]) {
		ident.IDLike = append(ident.IDLike, strings.ToLower(tok))
	}
	return ident
}

// unquote strips one level of surrounding single or double quotes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
