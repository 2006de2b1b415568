// Package doctor checks that gpa can run in the current environment.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/doeshing/gpa/internal/domain"
	"github.com/doeshing/gpa/internal/ports"
)

// Service runs environment diagnostics. OpenCache returns the cache in use;
// the caller owns it and closes it.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Validate       func(domain.Config) error
	OpenCache      func(domain.Config) (ports.CacheRepository, error)
	Uploader       func(domain.Config) (ports.ArtifactUploader, error)
	Getenv         func(string) string
}

// Run executes checks and returns a report. Only a config that fails to load
// is returned as an error; every other problem is a check in the report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("loaded (format %s)", cfg.ConfigFormatVersion)))

	if s.Validate != nil {
		if err := s.Validate(cfg); err != nil {
			checks = append(checks, fail("Config values", err.Error()))
		} else {
			checks = append(checks, ok("Config values", "valid"))
		}
	}

	checks = append(checks, s.credentialCheck(&cfg))
	checks = append(checks, inputCheck(cfg.Paths.InputDir))
	checks = append(checks, outputCheck(cfg.Paths.OutputDir))

	if s.OpenCache != nil && cfg.Cache.Enabled {
		if store, err := s.OpenCache(cfg); err != nil {
			checks = append(checks, warn("Cache", fmt.Sprintf("%s backend unavailable: %v", cfg.CacheBackend(), err)))
		} else {
			stats, statErr := store.Stats()
			if statErr != nil {
				checks = append(checks, warn("Cache", statErr.Error()))
			} else {
				checks = append(checks, ok("Cache", fmt.Sprintf("%s backend, %d entries at %s", stats.Backend, stats.Entries, stats.Location)))
			}
		}
	} else if !cfg.Cache.Enabled {
		checks = append(checks, warn("Cache", "disabled"))
	}

	if s.Uploader != nil && cfg.Storage.Enabled {
		checks = append(checks, s.storageCheck(ctx, cfg))
	}

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) credentialCheck(cfg *domain.Config) domain.HealthCheck {
	getenv := s.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if strings.TrimSpace(cfg.Gemini.APIKey) != "" {
		return ok("API key", "set in config file")
	}
	if cfg.APIKey(getenv) == "" {
		return fail("API key", fmt.Sprintf("%s is not set", cfg.APIKeyEnv()))
	}
	return ok("API key", fmt.Sprintf("found in %s", cfg.APIKeyEnv()))
}

func (s *Service) storageCheck(ctx context.Context, cfg domain.Config) domain.HealthCheck {
	up, err := s.Uploader(cfg)
	if err != nil {
		return fail("Storage", err.Error())
	}
	ctx, cancel := context.WithTimeout(ctx, domain.DefaultDoctorTimeout)
	defer cancel()
	if err := up.Check(ctx); err != nil {
		return fail("Storage", err.Error())
	}
	return ok("Storage", fmt.Sprintf("bucket %s reachable at %s", cfg.Storage.Bucket, cfg.Storage.Endpoint))
}

func inputCheck(dir string) domain.HealthCheck {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fail("Input directory", fmt.Sprintf("%s: %v", dir, err))
	}
	pdfs := 0
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			pdfs++
		}
	}
	if pdfs == 0 {
		return warn("Input directory", fmt.Sprintf("%s contains no PDF files", dir))
	}
	return ok("Input directory", fmt.Sprintf("%s (%d PDF files)", dir, pdfs))
}

// outputCheck accepts a missing directory when its nearest existing ancestor
// is a directory, since the exporter creates it on demand.
func outputCheck(dir string) domain.HealthCheck {
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		return ok("Output directory", dir)
	case err == nil:
		return fail("Output directory", fmt.Sprintf("%s is not a directory", dir))
	case !errors.Is(err, os.ErrNotExist):
		return fail("Output directory", err.Error())
	}
	parent := filepath.Dir(filepath.Clean(dir))
	for {
		info, err := os.Stat(parent)
		if err == nil {
			if !info.IsDir() {
				return fail("Output directory", fmt.Sprintf("%s is not a directory", parent))
			}
			return ok("Output directory", fmt.Sprintf("%s (will be created)", dir))
		}
		next := filepath.Dir(parent)
		if next == parent {
			return fail("Output directory", err.Error())
		}
		parent = next
	}
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
