package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const digestPrefix = "sha256:"

// DigestReader hashes everything read from r and reports how many bytes it saw.
func DigestReader(r io.Reader) (string, int64, error) {
	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return "", n, err
	}
	return digestPrefix + hex.EncodeToString(h.Sum(nil)), n, nil
}

// DigestFile returns the digest of a dataset file as stored on disk. Re-encoding
// the same rows (quoting, line endings, column order) changes the digest.
func DigestFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()

	digest, _, err := DigestReader(f)
	if err != nil {
		return "", fmt.Errorf("hash dataset %s: %w", path, err)
	}
	return digest, nil
}
