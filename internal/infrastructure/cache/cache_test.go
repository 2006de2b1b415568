package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/gpa/internal/domain"
	"github.com/doeshing/gpa/internal/ports"
)

type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) Debug(string, map[string]interface{}) {}
func (l *recordingLogger) Info(string, map[string]interface{}) {}
func (l *recordingLogger) Warn(msg string, _ map[string]interface{}) {
	l.warnings = append(l.warnings, msg)
}
func (l *recordingLogger) Error(string, error, map[string]interface{}) {}

func sampleResult(name string) domain.AnalysisResult {
	return domain.AnalysisResult{
		Filename:    name,
		Path:        "/in/" + name,
		Summary:     "Quarterly numbers are up.",
		KeyEntities: "Acme Corp, Q3",
		ActionItems: "Send the report to finance",
		Keywords:    []string{"revenue", "q3"},
		Model:       "gemini-2.0-flash",
		AnalyzedAt:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

type backend struct {
	name string
	open func(t *testing.T, log ports.Logger) ports.CacheRepository
}

func backends() []backend {
	return []backend{
		{"file", func(t *testing.T, log ports.Logger) ports.CacheRepository {
			return NewFileCache(filepath.Join(t.TempDir(), "cache"), log)
		}},
		{"bolt", func(t *testing.T, log ports.Logger) ports.CacheRepository {
			store, err := OpenBoltCache(filepath.Join(t.TempDir(), "cache", "results.db"), log)
			if err != nil {
				t.Fatalf("open bolt: %v", err)
			}
			t.Cleanup(func() { _ = store.Close() })
			return store
		}},
	}
}

func TestCacheRoundTrip(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			store := b.open(t, &recordingLogger{})
			key := domain.Fingerprint("abc123")

			if _, ok, err := store.Lookup(key); ok || err != nil {
				t.Fatalf("expected miss on empty cache, ok=%v err=%v", ok, err)
			}

			want := sampleResult("a.pdf")
			if err := store.Store(key, want); err != nil {
				t.Fatalf("Store error: %v", err)
			}
			got, ok, err := store.Lookup(key)
			if err != nil || !ok {
				t.Fatalf("expected hit, ok=%v err=%v", ok, err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}

			// Store overwrites.
			updated := sampleResult("a.pdf")
			updated.Summary = "Revised."
			if err := store.Store(key, updated); err != nil {
				t.Fatalf("Store error: %v", err)
			}
			got, _, _ = store.Lookup(key)
			if got.Summary != "Revised." {
				t.Fatalf("overwrite not applied: %q", got.Summary)
			}

			entries, err := store.Entries()
			if err != nil || len(entries) != 1 {
				t.Fatalf("entries=%d err=%v", len(entries), err)
			}
			stats, err := store.Stats()
			if err != nil || stats.Entries != 1 || stats.Backend != b.name {
				t.Fatalf("stats=%+v err=%v", stats, err)
			}
		})
	}
}

func TestCacheClearIsIdempotent(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			store := b.open(t, &recordingLogger{})
			if err := store.Clear(); err != nil {
				t.Fatalf("clear on empty cache: %v", err)
			}
			for _, k := range []domain.Fingerprint{"k1", "k2"} {
				if err := store.Store(k, sampleResult(string(k)+".pdf")); err != nil {
					t.Fatal(err)
				}
			}
			if err := store.Clear(); err != nil {
				t.Fatalf("Clear error: %v", err)
			}
			if err := store.Clear(); err != nil {
				t.Fatalf("second Clear error: %v", err)
			}
			for _, k := range []domain.Fingerprint{"k1", "k2"} {
				if _, ok, _ := store.Lookup(k); ok {
					t.Fatalf("%s survived clear", k)
				}
			}
			entries, _ := store.Entries()
			if len(entries) != 0 {
				t.Fatalf("expected no entries, got %d", len(entries))
			}
		})
	}
}

func TestFileCacheCorruptEntryIsMiss(t *testing.T) {
	log := &recordingLogger{}
	dir := filepath.Join(t.TempDir(), "cache")
	store := NewFileCache(dir, log)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "deadbeef.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, ok, err := store.Lookup("deadbeef")
	if ok || err != nil {
		t.Fatalf("corrupt entry should be a silent miss, ok=%v err=%v", ok, err)
	}
	if len(log.warnings) != 1 {
		t.Fatalf("expected one warning, got %v", log.warnings)
	}

	// A fresh store replaces the corrupt entry.
	if err := store.Store("deadbeef", sampleResult("x.pdf")); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := store.Lookup("deadbeef"); !ok {
		t.Fatal("expected hit after overwrite")
	}
}

func TestFileCacheClearKeepsForeignFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	store := NewFileCache(dir, nil)
	if err := store.Store("k", sampleResult("a.pdf")); err != nil {
		t.Fatal(err)
	}
	foreign := filepath.Join(dir, "results.db")
	if err := os.WriteFile(foreign, []byte("bolt"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Fatalf("clear removed unrelated file: %v", err)
	}
}

func TestFileCacheStoreSyncsDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	store := NewFileCache(dir, nil)
	var synced []string
	store.syncDirFn = func(d string) error {
		if _, err := os.Stat(filepath.Join(d, "k.json")); err != nil {
			t.Errorf("entry not renamed before dir sync: %v", err)
		}
		synced = append(synced, d)
		return nil
	}

	if err := store.Store("k", sampleResult("a.pdf")); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{dir}, synced); diff != "" {
		t.Fatalf("synced dirs (-want +got):\n%s", diff)
	}

	store.syncDirFn = func(string) error { return errors.New("disk gone") }
	err := store.Store("k2", sampleResult("b.pdf"))
	if domain.KindOf(err) != domain.KindCache {
		t.Fatalf("want cache error when the directory sync fails, got %v", err)
	}
}

func TestFileCacheSyncDirOnRealDirectory(t *testing.T) {
	if err := syncDir(t.TempDir()); err != nil {
		t.Fatalf("syncDir: %v", err)
	}
}

func TestBoltCacheSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	store, err := OpenBoltCache(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Store("persist", sampleResult("a.pdf")); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenBoltCache(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	if _, ok, _ := reopened.Lookup("persist"); !ok {
		t.Fatal("entry lost after reopen")
	}
}

func TestOpenOrNoopFallsBack(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := domain.Config{
		Cache: domain.CacheSettings{Backend: "bolt", Dir: filepath.Join(blocker, "sub")},
	}
	store, err := OpenOrNoop(cfg, nil)
	if err == nil {
		t.Fatal("expected an error explaining the fallback")
	}
	if domain.KindOf(err) != domain.KindCache {
		t.Fatalf("want cache error, got %v", err)
	}
	if _, ok := store.(Noop); !ok {
		t.Fatalf("expected Noop fallback, got %T", store)
	}
}
