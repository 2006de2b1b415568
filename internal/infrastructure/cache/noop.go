package cache

import (
	"github.com/doeshing/gpa/internal/domain"
	"github.com/doeshing/gpa/internal/ports"
)

// Noop never hits and never stores. Used for --no-cache and when the real
// backend cannot be opened.
type Noop struct{}

func (Noop) Lookup(domain.Fingerprint) (domain.AnalysisResult, bool, error) {
	return domain.AnalysisResult{}, false, nil
}

func (Noop) Store(domain.Fingerprint, domain.AnalysisResult) error {
	return nil
}

func (Noop) Clear() error {
	return nil
}

func (Noop) Entries() ([]domain.CacheEntry, error) {
	return nil, nil
}

func (Noop) Stats() (domain.CacheStats, error) {
	return domain.CacheStats{Backend: "none"}, nil
}

func (Noop) Location() string {
	return ""
}

func (Noop) Close() error {
	return nil
}

var _ ports.CacheRepository = Noop{}
