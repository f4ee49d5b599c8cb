// Package trust downloads repository signing keys and verifies them against
// pinned fingerprints before anything touches the host.
package trust

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/sirupsen/logrus"

	"github.com/Alby-Shinoj7/docker-setup/internal/models"
	"github.com/Alby-Shinoj7/docker-setup/internal/runner"
)

// httpClient is shared by all downloads. Proxies come from the standard
// environment variables via the default transport.
var httpClient = &http.Client{Timeout: 5 * time.Minute}

// maxKeySize bounds signing-key downloads; armored keys are a few KiB.
const maxKeySize = 1 << 20

// EnsureKey downloads src.KeyURL to a temporary file, verifies its primary
// fingerprint against the pinned value, and only then installs it at
// src.KeyPath. On mismatch nothing is persisted and the prior host state is
// untouched; the temporary file is removed either way.
func EnsureKey(ctx context.Context, run *runner.Runner, src models.RepositorySource) error {
	if run.Note(fmt.Sprintf("download %s, verify fingerprint %s, install to %s",
		src.KeyURL, src.KeyFingerprint, src.KeyPath)) {
		return nil
	}

	tmp, err := os.CreateTemp("", "docker-setup-key-*.asc")
	if err != nil {
		return &models.SetupError{Kind: models.ErrVerification, Step: "stage signing key", Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := DownloadMax(ctx, src.KeyURL, tmp, maxKeySize); err != nil {
		tmp.Close()
		return &models.SetupError{Kind: models.ErrVerification, Step: "fetch signing key", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &models.SetupError{Kind: models.ErrVerification, Step: "stage signing key", Err: err}
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return &models.SetupError{Kind: models.ErrVerification, Step: "stage signing key", Err: err}
	}

	fp, err := Fingerprint(data)
	if err != nil {
		return &models.SetupError{Kind: models.ErrVerification, Step: "parse signing key", Err: err}
	}
	if !FingerprintsEqual(fp, src.KeyFingerprint) {
		return &models.SetupError{
			Kind: models.ErrVerification,
			Step: "verify signing key",
			Err:  fmt.Errorf("fingerprint %s from %s does not match pinned %s", fp, src.KeyURL, src.KeyFingerprint),
		}
	}
	logrus.Debugf("signing key fingerprint verified: %s", fp)

	if err := run.MkdirAll(ctx, filepath.Dir(src.KeyPath), "0755"); err != nil {
		return err
	}
	if err := run.WriteFile(ctx, src.KeyPath, string(data), "0644"); err != nil {
		return err
	}
	logrus.Infof("installed signing key to %s", src.KeyPath)
	return nil
}

// Fingerprint returns the uppercase hex fingerprint of the primary key in
// the given keyring, armored or binary.
func Fingerprint(data []byte) (string, error) {
	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		// Try as binary keyring
		entities, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("failed to read key: %w", err)
		}
	}
	if len(entities) == 0 {
		return "", fmt.Errorf("no keys found in keyring")
	}
	primary := entities[0].PrimaryKey
	if primary == nil {
		return "", fmt.Errorf("keyring has no primary key")
	}
	return strings.ToUpper(hex.EncodeToString(primary.Fingerprint)), nil
}

// FingerprintsEqual compares fingerprints ignoring case and spacing. Two
// empty fingerprints never match.
func FingerprintsEqual(a, b string) bool {
	na, nb := normalizeFingerprint(a), normalizeFingerprint(b)
	return na != "" && na == nb
}

func normalizeFingerprint(s string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}

// Download streams url into w with no size bound. The standalone compose
// artifact is fetched this way.
func Download(ctx context.Context, url string, w io.Writer) error {
	resp, err := fetch(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("failed to read %s: %w", url, err)
	}
	return nil
}

// DownloadMax streams url into w, failing once the body exceeds max bytes.
// At most max+1 bytes are read.
func DownloadMax(ctx context.Context, url string, w io.Writer, max int64) error {
	resp, err := fetch(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, io.LimitReader(resp.Body, max+1))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", url, err)
	}
	if n > max {
		return fmt.Errorf("response from %s exceeds %d bytes", url, max)
	}
	return nil
}

func fetch(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s fetching %s", resp.Status, url)
	}
	return resp, nil
}
