package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// APIKey resolves the credential: the inline key wins, then the configured
// environment variable. lookup is usually os.Getenv.
func (c *Config) APIKey(lookup func(string) string) string {
	if key := strings.TrimSpace(c.Gemini.APIKey); key != "" {
		return key
	}
	if lookup == nil {
		return ""
	}
	return strings.TrimSpace(lookup(c.APIKeyEnv()))
}

// APIKeyEnv returns the environment variable holding the credential.
func (c *Config) APIKeyEnv() string {
	if c.Gemini.APIKeyEnv == "" {
		return DefaultAPIKeyEnv
	}
	return c.Gemini.APIKeyEnv
}

// ProviderName returns the configured provider, defaulting to gemini.
func (c *Config) ProviderName() string {
	if c.Gemini.Provider == "" {
		return ProviderGemini
	}
	return strings.ToLower(c.Gemini.Provider)
}

// ModelName returns the model, falling back to the default.
func (c *Config) ModelName() string {
	if c.Gemini.Model == "" {
		return DefaultModel
	}
	return c.Gemini.Model
}

// MaxChars returns the per-document truncation limit.
func (c *Config) MaxChars() int {
	if c.Gemini.MaxCharsPerDoc <= 0 {
		return DefaultMaxCharsPerDoc
	}
	return c.Gemini.MaxCharsPerDoc
}

// SendMode returns text or inline.
func (c *Config) SendMode() string {
	if strings.EqualFold(c.Gemini.SendMode, SendModeInline) {
		return SendModeInline
	}
	return SendModeText
}

// Timeout returns the HTTP timeout for one analysis call.
func (c *Config) Timeout() time.Duration {
	if c.Gemini.TimeoutSeconds <= 0 {
		return DefaultHTTPClientTimeout
	}
	return time.Duration(c.Gemini.TimeoutSeconds) * time.Second
}

// RequestDelay returns the pause between outbound calls.
func (c *Config) RequestDelay() time.Duration {
	return parseDurationOr(c.Gemini.RequestDelay, DefaultRequestDelay)
}

// RetryDelay returns the base back-off between attempts.
func (c *Config) RetryDelay() time.Duration {
	return parseDurationOr(c.Gemini.RetryDelay, DefaultRetryDelay)
}

// MaxAttempts returns how many times one file may be sent.
func (c *Config) MaxAttempts() int {
	if c.Gemini.MaxAttempts <= 0 {
		return 1
	}
	return c.Gemini.MaxAttempts
}

// DataDir returns the directory holding cache and history state.
func (c *Config) DataDir() string {
	return c.Paths.DataDir
}

// CacheBackend returns file or bolt.
func (c *Config) CacheBackend() string {
	if strings.EqualFold(c.Cache.Backend, CacheBackendBolt) {
		return CacheBackendBolt
	}
	return CacheBackendFile
}

// CacheLocation returns the directory (file backend) or database path (bolt).
func (c *Config) CacheLocation() string {
	dir := c.Cache.Dir
	if dir == "" {
		dir = filepath.Join(c.DataDir(), "cache")
	}
	if c.CacheBackend() == CacheBackendBolt {
		return filepath.Join(dir, "results.db")
	}
	return dir
}

// HistoryPath returns the SQLite database path for run history.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return filepath.Join(c.DataDir(), "history", "history.db")
}

// ExportFormats parses the configured default formats.
func (c *Config) ExportFormats() ([]ExportFormat, error) {
	if len(c.Export.Formats) == 0 {
		return DefaultExportFormats(), nil
	}
	return ParseFormats(c.Export.Formats)
}

// ExportPrefix returns the base name of exported files.
func (c *Config) ExportPrefix() string {
	if c.Export.Prefix == "" {
		return DefaultExportPrefix
	}
	return c.Export.Prefix
}

// ValidateConsistency checks cross-field rules that YAML cannot express.
func (c *Config) ValidateConsistency() error {
	switch c.ProviderName() {
	case ProviderGemini, ProviderOpenAI, ProviderLangChain:
	default:
		return fmt.Errorf("gemini.provider must be %s|%s|%s, got %s",
			ProviderGemini, ProviderOpenAI, ProviderLangChain, c.Gemini.Provider)
	}
	if c.SendMode() == SendModeInline && c.ProviderName() != ProviderGemini {
		return fmt.Errorf("gemini.send_mode inline requires provider %s", ProviderGemini)
	}
	if c.Storage.Enabled && (c.Storage.Endpoint == "" || c.Storage.Bucket == "") {
		return fmt.Errorf("storage.endpoint and storage.bucket are required when storage is enabled")
	}
	return nil
}

func parseDurationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
