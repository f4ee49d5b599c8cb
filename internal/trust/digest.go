package trust

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// FileSHA256 streams the file through SHA-256 and returns the hex digest.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyFileSHA256 checks the file against a published digest. expected is
// either a bare digest or a `<digest> <filename>` line as release checksum
// files ship it; an empty digest never verifies.
func VerifyFileSHA256(path, expected string) error {
	want := strings.ToLower(strings.TrimSpace(expected))
	if i := strings.IndexAny(want, " \t"); i > 0 {
		want = want[:i]
	}
	if want == "" {
		return fmt.Errorf("empty expected digest")
	}

	got, err := FileSHA256(path)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("sha256 %s does not match published %s", got, want)
	}
	return nil
}
