package cache

import (
	"github.com/doeshing/gpa/internal/domain"
	"github.com/doeshing/gpa/internal/ports"
)

// Open builds the backend selected by cfg.
func Open(cfg domain.Config, logger ports.Logger) (ports.CacheRepository, error) {
	switch cfg.CacheBackend() {
	case domain.CacheBackendBolt:
		return OpenBoltCache(cfg.CacheLocation(), logger)
	default:
		return NewFileCache(cfg.CacheLocation(), logger), nil
	}
}

// OpenOrNoop falls back to Noop when the backend cannot be opened. The
// returned error, if any, is the reason for the fallback.
func OpenOrNoop(cfg domain.Config, logger ports.Logger) (ports.CacheRepository, error) {
	store, err := Open(cfg, logger)
	if err != nil {
		return Noop{}, err
	}
	return store, nil
}
