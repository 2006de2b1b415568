package documents

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/doeshing/gpa/internal/domain"
	"github.com/doeshing/gpa/internal/ports"
)

// SHA256Fingerprinter keys documents by the SHA-256 of their bytes, so a
// renamed or copied file still hits the cache.
type SHA256Fingerprinter struct{}

// NewFingerprinter builds a SHA256Fingerprinter.
func NewFingerprinter() *SHA256Fingerprinter {
	return &SHA256Fingerprinter{}
}

// Fingerprint streams the file through SHA-256.
func (SHA256Fingerprinter) Fingerprint(path string) (domain.Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", domain.IOError("open for fingerprint", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", domain.IOError("hash", path, err)
	}
	return domain.Fingerprint(hex.EncodeToString(h.Sum(nil))), nil
}

var _ ports.Fingerprinter = SHA256Fingerprinter{}
