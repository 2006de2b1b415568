package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/doeshing/gpa/internal/domain"
	"github.com/doeshing/gpa/internal/ports"
)

var resultsBucket = []byte("results")

// BoltCache keeps every result in a single bbolt database file.
type BoltCache struct {
	path   string
	db     *bolt.DB
	mu     sync.RWMutex
	logger ports.Logger
	now    func() time.Time
}

// OpenBoltCache opens (or creates) the database at path.
func OpenBoltCache(path string, logger ports.Logger) (*BoltCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, domain.CacheError("create cache dir", err)
	}
	db, err := bolt.Open(path, domain.SecureFilePermissions, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, domain.CacheError("open "+path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(resultsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, domain.CacheError("create bucket", err)
	}
	return &BoltCache{path: path, db: db, logger: logger, now: time.Now}, nil
}

// Lookup implements ports.ResultCache.
func (c *BoltCache) Lookup(key domain.Fingerprint) (domain.AnalysisResult, bool, error) {
	if key == "" {
		return domain.AnalysisResult{}, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	var raw []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(resultsBucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		c.warn("cache read failed", string(key), err)
		return domain.AnalysisResult{}, false, nil
	}
	if raw == nil {
		return domain.AnalysisResult{}, false, nil
	}
	var entry domain.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.warn("cache entry corrupt", string(key), err)
		return domain.AnalysisResult{}, false, nil
	}
	return entry.Result, true, nil
}

// Store implements ports.ResultCache. The write is durable once the
// transaction commits.
func (c *BoltCache) Store(key domain.Fingerprint, result domain.AnalysisResult) error {
	if key == "" {
		return nil
	}
	data, err := json.Marshal(domain.CacheEntry{Key: key, Result: result, CachedAt: c.now().UTC()})
	if err != nil {
		return domain.CacheError("encode entry", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(resultsBucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), data)
	})
	if err != nil {
		return domain.CacheError("store entry", err)
	}
	return nil
}

// Clear drops and recreates the results bucket.
func (c *BoltCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(resultsBucket) != nil {
			if err := tx.DeleteBucket(resultsBucket); err != nil {
				return err
			}
		}
		_, err := tx.CreateBucket(resultsBucket)
		return err
	})
	if err != nil {
		return domain.CacheError("clear", err)
	}
	return nil
}

// Entries lists all decodable entries, newest first.
func (c *BoltCache) Entries() ([]domain.CacheEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var entries []domain.CacheEntry
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(resultsBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var entry domain.CacheEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				c.warn("cache entry corrupt", string(k), err)
				return nil
			}
			entries = append(entries, entry)
			return nil
		})
	})
	if err != nil {
		return nil, domain.CacheError("list entries", err)
	}
	sortEntries(entries)
	return entries, nil
}

// Stats reports the entry count and database file size.
func (c *BoltCache) Stats() (domain.CacheStats, error) {
	entries, err := c.Entries()
	if err != nil {
		return domain.CacheStats{}, err
	}
	stats := domain.CacheStats{
		Backend:  domain.CacheBackendBolt,
		Location: c.path,
		Entries:  len(entries),
	}
	if info, err := os.Stat(c.path); err == nil {
		stats.SizeBytes = info.Size()
	}
	return stats, nil
}

// Location returns the database path.
func (c *BoltCache) Location() string {
	return c.path
}

// Close releases the database file lock.
func (c *BoltCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	if err != nil {
		return fmt.Errorf("close bolt cache: %w", err)
	}
	return nil
}

func (c *BoltCache) warn(msg, key string, err error) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(msg, map[string]interface{}{"key": key, "error": err.Error()})
}

var _ ports.CacheRepository = (*BoltCache)(nil)
