package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/doeshing/gpa/internal/domain"
	"github.com/doeshing/gpa/internal/pkg/filesystem"
	"github.com/doeshing/gpa/internal/ports"
)

const entrySuffix = ".json"

// FileCache stores analysis results as JSON documents addressed by fingerprint.
type FileCache struct {
	dir    string
	mu     sync.Mutex
	logger ports.Logger
	now    func() time.Time

	syncDirFn func(dir string) error
}

// NewFileCache returns a cache rooted at dir.
func NewFileCache(dir string, logger ports.Logger) *FileCache {
	return &FileCache{dir: dir, logger: logger, now: time.Now}
}

// Lookup retrieves the result stored under key. Unreadable or corrupt entries
// are reported as misses.
func (c *FileCache) Lookup(key domain.Fingerprint) (domain.AnalysisResult, bool, error) {
	if key == "" {
		return domain.AnalysisResult{}, false, nil
	}
	path := c.pathFor(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.AnalysisResult{}, false, nil
		}
		c.warn("cache entry unreadable", path, err)
		return domain.AnalysisResult{}, false, nil
	}
	var entry domain.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Key != key {
		if err == nil {
			err = errors.New("key mismatch")
		}
		c.warn("cache entry corrupt", path, err)
		return domain.AnalysisResult{}, false, nil
	}
	return entry.Result, true, nil
}

// Store writes the entry to a temp file, syncs it and renames it into place.
// The entry is on disk before Store returns.
func (c *FileCache) Store(key domain.Fingerprint, result domain.AnalysisResult) error {
	if key == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.MkdirAll(c.dir, domain.DirectoryPermissions); err != nil {
		return domain.CacheError("create cache dir", err)
	}
	data, err := json.MarshalIndent(domain.CacheEntry{Key: key, Result: result, CachedAt: c.now().UTC()}, "", "  ")
	if err != nil {
		return domain.CacheError("encode entry", err)
	}
	tmp, err := os.CreateTemp(c.dir, ".entry-*")
	if err != nil {
		return domain.CacheError("create temp entry", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return domain.CacheError("write entry", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return domain.CacheError("sync entry", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return domain.CacheError("close entry", err)
	}
	if err := os.Rename(tmp.Name(), c.pathFor(key)); err != nil {
		os.Remove(tmp.Name())
		return domain.CacheError("commit entry", err)
	}
	if err := c.syncDir(); err != nil {
		return domain.CacheError("sync cache dir", err)
	}
	return nil
}

// syncDir flushes the directory so the rename survives a crash.
func (c *FileCache) syncDir() error {
	if c.syncDirFn != nil {
		return c.syncDirFn(c.dir)
	}
	return syncDir(c.dir)
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	if err := d.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return err
	}
	return nil
}

// Clear removes every cached entry. Clearing an empty or missing cache is a no-op.
func (c *FileCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	files, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return domain.CacheError("list cache dir", err)
	}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), entrySuffix) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, f.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return domain.CacheError("remove entry", err)
		}
	}
	return nil
}

// Entries lists cache entries (best-effort), newest first.
func (c *FileCache) Entries() ([]domain.CacheEntry, error) {
	files, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, domain.CacheError("list cache dir", err)
	}
	var entries []domain.CacheEntry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), entrySuffix) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(c.dir, f.Name()))
		if err != nil {
			continue
		}
		var entry domain.CacheEntry
		if err := json.Unmarshal(data, &entry); err == nil {
			entries = append(entries, entry)
		}
	}
	sortEntries(entries)
	return entries, nil
}

// Stats reports entry count and disk usage.
func (c *FileCache) Stats() (domain.CacheStats, error) {
	entries, err := c.Entries()
	if err != nil {
		return domain.CacheStats{}, err
	}
	size, err := filesystem.DirSize(c.dir)
	if err != nil {
		return domain.CacheStats{}, domain.CacheError("measure cache dir", err)
	}
	return domain.CacheStats{
		Backend:   domain.CacheBackendFile,
		Location:  c.dir,
		Entries:   len(entries),
		SizeBytes: size,
	}, nil
}

// Location exposes the cache directory path.
func (c *FileCache) Location() string {
	return c.dir
}

// Close is a no-op for the file backend.
func (c *FileCache) Close() error {
	return nil
}

func (c *FileCache) pathFor(key domain.Fingerprint) string {
	return filepath.Join(c.dir, string(key)+entrySuffix)
}

func (c *FileCache) warn(msg, path string, err error) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(msg, map[string]interface{}{"path": path, "error": err.Error()})
}

func sortEntries(entries []domain.CacheEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CachedAt.Equal(entries[j].CachedAt) {
			return entries[i].Key < entries[j].Key
		}
		return entries[i].CachedAt.After(entries[j].CachedAt)
	})
}

var _ ports.CacheRepository = (*FileCache)(nil)
