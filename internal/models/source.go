package models

// Pinned fingerprints of the upstream repository signing keys. A downloaded
// key whose primary fingerprint does not match the pin is never installed.
const (
	DebKeyFingerprint = "9DC858229FC7DD38854AE2D88D81803C0EBFCD88"
	RPMKeyFingerprint = "060A61C51B558A7F742B77AAC52FEB6B621E9F35"
)

// Release channels selectable for the upstream repositories.
const (
	ChannelStable = "stable"
	ChannelTest   = "test"
)

// BasePackages are the upstream packages installed on every family that is
// served by the upstream repositories. Families with their own packaging
// (amazon, arch) carry their own sets in their backends.
var BasePackages = []string{
	"docker-ce",
	"docker-ce-cli",
	"containerd.io",
	"docker-buildx-plugin",
}

// ComposePlugin is the packaged compose plugin, installed when compose is
// requested on families whose repositories carry it.
const ComposePlugin = "docker-compose-plugin"

// RepositorySource describes one upstream package repository: where its
// packages and signing key come from, the pinned fingerprint the key must
// carry, and where its artifacts land on the host.
type RepositorySource struct {
	// BaseURL is the repository root, e.g. <mirror>/linux/<repo-identity>.
	BaseURL string

	// Codename is the suite name for apt repositories, empty elsewhere.
	Codename string

	// Channel is stable or test.
	Channel string

	// KeyURL is where the armored signing key is fetched from.
	KeyURL string

	// KeyPath is where the verified key is installed on the host.
	KeyPath string

	// KeyFingerprint is the pinned value KeyURL's key must match.
	KeyFingerprint string

	// FilePath is the repository configuration file written on the host.
	FilePath string
}
