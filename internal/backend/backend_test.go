package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alby-Shinoj7/docker-setup/internal/models"
	"github.com/Alby-Shinoj7/docker-setup/internal/runner"
)

func debianDeps() Deps {
	return Deps{
		Profile: models.FamilyProfile{
			Family: models.FamilyDebian, PackageManager: models.PMApt, RepoIdentity: "ubuntu",
		},
		Codename:   "noble",
		Channel:    models.ChannelStable,
		Mirror:     "https://download.docker.com",
		MirrorHost: "download.docker.com",
	}
}

func TestSource_PerFamilyArtifacts(t *testing.T) {
	t.Run("debian", func(t *testing.T) {
		src := Source(debianDeps())

		assert.Equal(t, "https://download.docker.com/linux/ubuntu", src.BaseURL)
		assert.Equal(t, "https://download.docker.com/linux/ubuntu/gpg", src.KeyURL)
		assert.Equal(t, "/etc/apt/keyrings/docker.asc", src.KeyPath)
		assert.Equal(t, models.DebKeyFingerprint, src.KeyFingerprint)
		assert.Equal(t, "/etc/apt/sources.list.d/docker.list", src.FilePath)
		assert.Equal(t, "noble", src.Codename)
	})

	t.Run("rhel", func(t *testing.T) {
		d := debianDeps()
		d.Profile = models.FamilyProfile{Family: models.FamilyRHEL, PackageManager: models.PMDnf, RepoIdentity: "centos"}
		d.Codename = ""
		src := Source(d)

		assert.Equal(t, "https://download.docker.com/linux/centos", src.BaseURL)
		assert.Equal(t, "/etc/pki/rpm-gpg/docker-ce.asc", src.KeyPath)
		assert.Equal(t, models.RPMKeyFingerprint, src.KeyFingerprint)
		assert.Equal(t, "/etc/yum.repos.d/docker-ce.repo", src.FilePath)
	})

	t.Run("suse", func(t *testing.T) {
		d := debianDeps()
		d.Profile = models.FamilyProfile{Family: models.FamilySUSE, PackageManager: models.PMZypper, RepoIdentity: "sles"}
		src := Source(d)

		assert.Equal(t, "https://download.docker.com/linux/sles", src.BaseURL)
		assert.Equal(t, "/etc/zypp/repos.d/docker-ce.repo", src.FilePath)
		assert.Equal(t, models.RPMKeyFingerprint, src.KeyFingerprint)
	})

	t.Run("trailing mirror slash trimmed", func(t *testing.T) {
		d := debianDeps()
		d.Mirror = "https://mirror.internal/docker/"
		src := Source(d)

		assert.Equal(t, "https://mirror.internal/docker/linux/ubuntu", src.BaseURL)
	})
}

func TestRepoINI_StableDefault(t *testing.T) {
	d := debianDeps()
	d.Profile = models.FamilyProfile{Family: models.FamilyRHEL, PackageManager: models.PMDnf, RepoIdentity: "centos"}
	ini := RepoINI(Source(d))

	assert.Contains(t, ini, "[docker-ce-stable]\n")
	assert.Contains(t, ini, "name=Docker CE Stable - $basearch\n")
	assert.Contains(t, ini, "baseurl=https://download.docker.com/linux/centos/$releasever/$basearch/stable\n")
	assert.Contains(t, ini, "gpgcheck=1\n")
	assert.Contains(t, ini, "gpgkey=file:///etc/pki/rpm-gpg/docker-ce.asc\n")

	// The test section is present but disabled on the stable channel.
	assert.Contains(t, ini, "[docker-ce-test]\n")
	stablePart, testPart, found := strings.Cut(ini, "[docker-ce-test]")
	require.True(t, found)
	assert.Contains(t, stablePart, "enabled=1\n")
	assert.Contains(t, testPart, "enabled=0\n")
}

func TestRepoINI_TestChannelEnablesBoth(t *testing.T) {
	d := debianDeps()
	d.Profile = models.FamilyProfile{Family: models.FamilyRHEL, PackageManager: models.PMDnf, RepoIdentity: "centos"}
	d.Channel = models.ChannelTest
	ini := RepoINI(Source(d))

	assert.NotContains(t, ini, "enabled=0")
	assert.Equal(t, 2, strings.Count(ini, "enabled=1"))
}

func TestRemoveEach_ToleratesFailures(t *testing.T) {
	run := runner.New(runner.Mode{}, runner.PrivilegeRoot)
	pkgs := []string{"docker.io", "containerd"}

	tolerated := RemoveEach(context.Background(), run, pkgs, func(pkg string) runner.Command {
		return runner.Command{Name: "false"}
	})

	require.Len(t, tolerated, 2)
	for i, te := range tolerated {
		assert.Equal(t, models.ErrTolerated, te.Kind)
		assert.Equal(t, pkgs[i], te.Step)

		var cmdErr *models.CommandError
		assert.True(t, errors.As(te, &cmdErr))
	}
}

func TestRemoveEach_SuccessYieldsNothing(t *testing.T) {
	run := runner.New(runner.Mode{}, runner.PrivilegeRoot)

	tolerated := RemoveEach(context.Background(), run, []string{"a", "b"}, func(pkg string) runner.Command {
		return runner.Command{Name: "true"}
	})

	assert.Empty(t, tolerated)
}

func TestRemoveEach_DryRunRecordsPlan(t *testing.T) {
	run := runner.New(runner.Mode{DryRun: true}, runner.PrivilegeRoot)

	tolerated := RemoveEach(context.Background(), run, []string{"docker.io"}, func(pkg string) runner.Command {
		return runner.Command{Name: "apt-get", Args: []string{"remove", "-y", pkg}, Privileged: true}
	})

	assert.Empty(t, tolerated)
	assert.Equal(t, []string{"apt-get remove -y docker.io"}, run.Transcript())
}

func TestBackupForeign(t *testing.T) {
	ctx := context.Background()

	t.Run("absent file is a no-op", func(t *testing.T) {
		run := runner.New(runner.Mode{}, runner.PrivilegeRoot)
		path := filepath.Join(t.TempDir(), "docker.list")

		require.NoError(t, BackupForeign(ctx, run, path, "download.docker.com"))
	})

	t.Run("file referencing the mirror is kept in place", func(t *testing.T) {
		run := runner.New(runner.Mode{}, runner.PrivilegeRoot)
		path := filepath.Join(t.TempDir(), "docker.list")
		content := "deb [arch=amd64] https://download.docker.com/linux/ubuntu noble stable\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		require.NoError(t, BackupForeign(ctx, run, path, "download.docker.com"))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, content, string(data))
	})

	t.Run("foreign file is moved aside", func(t *testing.T) {
		run := runner.New(runner.Mode{}, runner.PrivilegeRoot)
		path := filepath.Join(t.TempDir(), "docker.list")
		require.NoError(t, os.WriteFile(path, []byte("deb https://other.example/repo stable main\n"), 0o644))

		require.NoError(t, BackupForeign(ctx, run, path, "download.docker.com"))

		assert.NoFileExists(t, path)
		backups, err := filepath.Glob(path + ".*.bak")
		require.NoError(t, err)
		assert.Len(t, backups, 1)
	})

	t.Run("unreadable file is moved aside", func(t *testing.T) {
		run := runner.New(runner.Mode{DryRun: true}, runner.PrivilegeSudo)
		path := filepath.Join(t.TempDir(), "docker.list")
		// A symlink loop: the path exists but every read of it fails.
		require.NoError(t, os.Symlink(path, path))

		require.NoError(t, BackupForeign(ctx, run, path, "download.docker.com"))

		entries := run.Transcript()
		require.Len(t, entries, 1)
		assert.True(t, strings.HasPrefix(entries[0], "back up "+path+" to "+path+"."))
		assert.True(t, strings.HasSuffix(entries[0], ".bak"))
	})
}

func TestDebArch(t *testing.T) {
	arch := DebArch()
	assert.NotEmpty(t, arch)
	// dpkg has no name with the Go spelling of these two.
	assert.NotEqual(t, "386", arch)
	assert.NotEqual(t, "ppc64le", arch)
}
