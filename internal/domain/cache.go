package domain

import "time"

// Fingerprint is the lowercase hex SHA-256 of a document's bytes.
type Fingerprint string

// String implements fmt.Stringer.
func (f Fingerprint) String() string {
	return string(f)
}

// Short returns the first 12 characters for display.
func (f Fingerprint) Short() string {
	if len(f) <= 12 {
		return string(f)
	}
	return string(f[:12])
}

// CacheEntry stores a successful analysis under its content fingerprint.
type CacheEntry struct {
	Key      Fingerprint    `json:"key"`
	Result   AnalysisResult `json:"result"`
	CachedAt time.Time      `json:"cached_at"`
}

// CacheStats summarizes a cache store.
type CacheStats struct {
	Backend   string
	Location  string
	Entries   int
	SizeBytes int64
}
