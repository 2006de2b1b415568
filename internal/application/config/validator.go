package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doeshing/gpa/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if err := validateGemini(cfg.Gemini); err != nil {
		return err
	}
	if err := validatePaths(cfg.Paths); err != nil {
		return err
	}
	if err := validateCache(cfg.Cache); err != nil {
		return err
	}
	if err := validateExport(cfg.Export); err != nil {
		return err
	}
	return cfg.ValidateConsistency()
}

func validateGemini(g domain.GeminiSettings) error {
	switch strings.ToLower(g.SendMode) {
	case "", domain.SendModeText, domain.SendModeInline:
	default:
		return fmt.Errorf("gemini.send_mode must be text|inline, got %s", g.SendMode)
	}
	if g.MaxCharsPerDoc < 0 {
		return fmt.Errorf("gemini.max_chars_per_doc must be >= 0")
	}
	if g.Temperature < 0 || g.Temperature > 2 {
		return fmt.Errorf("gemini.temperature must be within [0, 2]")
	}
	if g.MaxAttempts < 0 {
		return fmt.Errorf("gemini.max_attempts must be >= 0")
	}
	if err := validateDuration("gemini.request_delay", g.RequestDelay); err != nil {
		return err
	}
	return validateDuration("gemini.retry_delay", g.RetryDelay)
}

func validatePaths(p domain.PathSettings) error {
	if p.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func validateCache(cache domain.CacheSettings) error {
	switch strings.ToLower(cache.Backend) {
	case "", domain.CacheBackendFile, domain.CacheBackendBolt:
		return nil
	default:
		return fmt.Errorf("cache.backend must be file|bolt, got %s", cache.Backend)
	}
}

func validateExport(export domain.ExportSettings) error {
	if len(export.Formats) == 0 {
		return nil
	}
	if _, err := domain.ParseFormats(export.Formats); err != nil {
		return fmt.Errorf("export.formats: %w", err)
	}
	if strings.ContainsAny(export.Prefix, `/\`) {
		return fmt.Errorf("export.prefix must be a file name, got %s", export.Prefix)
	}
	return nil
}

func validateDuration(field, raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s invalid: %w", field, err)
	}
	if d < 0 {
		return fmt.Errorf("%s must not be negative", field)
	}
	return nil
}
