package distro

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alby-Shinoj7/docker-setup/internal/models"
)

// probeWith reports only the named binaries as present.
func probeWith(names ...string) ProbeFunc {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func TestResolve_DirectIdentities(t *testing.T) {
	tests := []struct {
		id           string
		family       models.Family
		manager      models.PackageManager
		repoIdentity string
	}{
		{"ubuntu", models.FamilyDebian, models.PMApt, "ubuntu"},
		{"debian", models.FamilyDebian, models.PMApt, "debian"},
		{"raspbian", models.FamilyDebian, models.PMApt, "raspbian"},
		{"linuxmint", models.FamilyDebian, models.PMApt, "ubuntu"},
		{"pop", models.FamilyDebian, models.PMApt, "ubuntu"},
		{"kali", models.FamilyDebian, models.PMApt, "debian"},
		{"rhel", models.FamilyRHEL, models.PMDnf, "rhel"},
		{"centos", models.FamilyRHEL, models.PMDnf, "centos"},
		{"rocky", models.FamilyRHEL, models.PMDnf, "centos"},
		{"almalinux", models.FamilyRHEL, models.PMDnf, "centos"},
		{"fedora", models.FamilyFedora, models.PMDnf, "fedora"},
		{"amzn", models.FamilyAmazon, models.PMYum, ""},
		{"sles", models.FamilySUSE, models.PMZypper, "sles"},
		{"opensuse-leap", models.FamilySUSE, models.PMZypper, "sles"},
		{"arch", models.FamilyArch, models.PMPacman, ""},
		{"manjaro", models.FamilyArch, models.PMPacman, ""},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			p := Resolve(HostIdentity{ID: tt.id}, probeWith())

			assert.True(t, p.Resolved())
			assert.Equal(t, tt.family, p.Family)
			assert.Equal(t, tt.manager, p.PackageManager)
			assert.Equal(t, tt.repoIdentity, p.RepoIdentity)
			assert.Equal(t, tt.id, p.MatchedBy)
		})
	}
}

func TestResolve_IDLikeFallback(t *testing.T) {
	ident := HostIdentity{ID: "somederivative", IDLike: []string{"ubuntu", "debian"}}

	p := Resolve(ident, probeWith())

	assert.True(t, p.Resolved())
	assert.Equal(t, models.FamilyDebian, p.Family)
	assert.Equal(t, models.PMApt, p.PackageManager)
	assert.Equal(t, "ubuntu", p.RepoIdentity)
	assert.Equal(t, "id_like:ubuntu", p.MatchedBy)
}

func TestResolve_IDLikeFirstKnownTokenWins(t *testing.T) {
	ident := HostIdentity{ID: "mystery", IDLike: []string{"unheardof", "suse", "debian"}}

	p := Resolve(ident, probeWith())

	assert.Equal(t, models.FamilySUSE, p.Family)
	assert.Equal(t, "id_like:suse", p.MatchedBy)
}

func TestResolve_RHELLikeProbesManager(t *testing.T) {
	ident := HostIdentity{ID: "somerpmclone", IDLike: []string{"rhel", "fedora"}}

	t.Run("dnf preferred", func(t *testing.T) {
		p := Resolve(ident, probeWith("dnf", "yum"))
		assert.Equal(t, models.PMDnf, p.PackageManager)
		assert.Equal(t, "centos", p.RepoIdentity)
	})

	t.Run("yum fallback", func(t *testing.T) {
		p := Resolve(ident, probeWith("yum"))
		assert.Equal(t, models.PMYum, p.PackageManager)
	})

	t.Run("neither leaves profile unresolved", func(t *testing.T) {
		p := Resolve(ident, probeWith())
		assert.Equal(t, models.PMNone, p.PackageManager)
		assert.False(t, p.Resolved())
	})
}

func TestResolve_DirectMatchBeatsIDLike(t *testing.T) {
	// A derivative with its own entry must not fall through to ID_LIKE.
	ident := HostIdentity{ID: "rocky", IDLike: []string{"rhel", "centos", "fedora"}}

	p := Resolve(ident, probeWith())

	assert.Equal(t, "rocky", p.MatchedBy)
	assert.Equal(t, models.PMDnf, p.PackageManager)
}

func TestResolve_UnknownHost(t *testing.T) {
	tests := []struct {
		name  string
		ident HostIdentity
	}{
		{"no id at all", HostIdentity{}},
		{"unknown id, no id_like", HostIdentity{ID: "plan9"}},
		{"unknown id, unknown id_like", HostIdentity{ID: "plan9", IDLike: []string{"inferno"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Resolve(tt.ident, probeWith("dnf", "yum"))
			assert.False(t, p.Resolved())
			assert.Equal(t, models.FamilyProfile{}, p)
		})
	}
}
