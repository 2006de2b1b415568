package documents

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/doeshing/gpa/internal/domain"
)

func TestFingerprintDependsOnContentOnly(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "renamed.pdf")
	c := filepath.Join(dir, "other.pdf")
	for path, body := range map[string]string{a: "same bytes", b: "same bytes", c: "different"} {
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	fp := NewFingerprinter()
	ka, err := fp.Fingerprint(a)
	if err != nil {
		t.Fatalf("Fingerprint error: %v", err)
	}
	kb, _ := fp.Fingerprint(b)
	kc, _ := fp.Fingerprint(c)

	if ka != kb {
		t.Fatalf("identical content should share a key: %s vs %s", ka, kb)
	}
	if ka == kc {
		t.Fatal("different content should not share a key")
	}
	// sha256("same bytes")
	if len(ka) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(ka))
	}
}

func TestFingerprintMissingFile(t *testing.T) {
	_, err := NewFingerprinter().Fingerprint(filepath.Join(t.TempDir(), "nope.pdf"))
	if domain.KindOf(err) != domain.KindIO {
		t.Fatalf("want io error, got %v", err)
	}
}
