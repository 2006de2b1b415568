package domain_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/gpa/internal/domain"
)

// TestConfig_APIKey tests credential resolution order
func TestConfig_APIKey(t *testing.T) {
	env := map[string]string{
		"GEMINI_API_KEY": "from-default-env",
		"CUSTOM_KEY":     "  from-custom-env  ",
	}
	lookup := func(key string) string { return env[key] }

	tests := []struct {
		name   string
		config domain.Config
		lookup func(string) string
		want   string
	}{
		{
			name:   "inline key wins",
			config: domain.Config{Gemini: domain.GeminiSettings{APIKey: "inline"}},
			lookup: lookup,
			want:   "inline",
		},
		{
			name:   "default env variable",
			config: domain.Config{},
			lookup: lookup,
			want:   "from-default-env",
		},
		{
			name:   "custom env variable is trimmed",
			config: domain.Config{Gemini: domain.GeminiSettings{APIKeyEnv: "CUSTOM_KEY"}},
			lookup: lookup,
			want:   "from-custom-env",
		},
		{
			name:   "nil lookup",
			config: domain.Config{},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.APIKey(tt.lookup); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

// TestConfig_Defaults tests the fallbacks applied to an empty config
func TestConfig_Defaults(t *testing.T) {
	cfg := domain.Config{Paths: domain.PathSettings{DataDir: "/data"}}

	if cfg.ProviderName() != domain.ProviderGemini {
		t.Errorf("provider = %s", cfg.ProviderName())
	}
	if cfg.ModelName() != domain.DefaultModel {
		t.Errorf("model = %s", cfg.ModelName())
	}
	if cfg.MaxChars() != domain.DefaultMaxCharsPerDoc {
		t.Errorf("max chars = %d", cfg.MaxChars())
	}
	if cfg.SendMode() != domain.SendModeText {
		t.Errorf("send mode = %s", cfg.SendMode())
	}
	if cfg.MaxAttempts() != 1 {
		t.Errorf("max attempts = %d", cfg.MaxAttempts())
	}
	if cfg.RequestDelay() != domain.DefaultRequestDelay {
		t.Errorf("request delay = %s", cfg.RequestDelay())
	}
	if cfg.CacheLocation() != filepath.Join("/data", "cache") {
		t.Errorf("cache location = %s", cfg.CacheLocation())
	}
	if cfg.HistoryPath() != filepath.Join("/data", "history", "history.db") {
		t.Errorf("history path = %s", cfg.HistoryPath())
	}
	if cfg.ExportPrefix() != domain.DefaultExportPrefix {
		t.Errorf("export prefix = %s", cfg.ExportPrefix())
	}

	formats, err := cfg.ExportFormats()
	if err != nil {
		t.Fatalf("ExportFormats: %v", err)
	}
	if diff := cmp.Diff(domain.DefaultExportFormats(), formats); diff != "" {
		t.Errorf("formats mismatch (-want +got):\n%s", diff)
	}
}

// TestConfig_Durations tests that invalid durations fall back to defaults
func TestConfig_Durations(t *testing.T) {
	cfg := domain.Config{Gemini: domain.GeminiSettings{RequestDelay: "250ms", RetryDelay: "-1s"}}

	if got := cfg.RequestDelay(); got != 250*time.Millisecond {
		t.Errorf("request delay = %s", got)
	}
	if got := cfg.RetryDelay(); got != domain.DefaultRetryDelay {
		t.Errorf("retry delay = %s, want default", got)
	}
}

// TestConfig_BoltCacheLocation tests the bolt database path
func TestConfig_BoltCacheLocation(t *testing.T) {
	cfg := domain.Config{Cache: domain.CacheSettings{Backend: "BOLT", Dir: "/tmp/c"}}
	if got := cfg.CacheLocation(); got != filepath.Join("/tmp/c", "results.db") {
		t.Errorf("got %s", got)
	}
}

// TestConfig_ValidateConsistency tests cross-field rules
func TestConfig_ValidateConsistency(t *testing.T) {
	tests := []struct {
		name      string
		config    domain.Config
		wantError bool
	}{
		{
			name:   "defaults are consistent",
			config: domain.Config{},
		},
		{
			name:      "unknown provider",
			config:    domain.Config{Gemini: domain.GeminiSettings{Provider: "claude"}},
			wantError: true,
		},
		{
			name: "inline mode needs the gemini provider",
			config: domain.Config{Gemini: domain.GeminiSettings{
				Provider: domain.ProviderOpenAI,
				SendMode: domain.SendModeInline,
			}},
			wantError: true,
		},
		{
			name:      "enabled storage without bucket",
			config:    domain.Config{Storage: domain.StorageSettings{Enabled: true, Endpoint: "localhost:9000"}},
			wantError: true,
		},
		{
			name: "enabled storage with endpoint and bucket",
			config: domain.Config{Storage: domain.StorageSettings{
				Enabled:  true,
				Endpoint: "localhost:9000",
				Bucket:   "reports",
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.ValidateConsistency()
			if tt.wantError && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// TestParseFormats tests format parsing, aliases and de-duplication
func TestParseFormats(t *testing.T) {
	got, err := domain.ParseFormats([]string{"CSV,xlsx", " json ", "csv"})
	if err != nil {
		t.Fatalf("ParseFormats: %v", err)
	}
	want := []domain.ExportFormat{domain.FormatCSV, domain.FormatExcel, domain.FormatJSON}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("formats mismatch (-want +got):\n%s", diff)
	}

	if _, err := domain.ParseFormats([]string{"pdf"}); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := domain.ParseFormats([]string{" , "}); err == nil {
		t.Error("expected error for empty selection")
	}
}

// TestAnalysisResult_WithSource tests that rebinding copies keywords
func TestAnalysisResult_WithSource(t *testing.T) {
	orig := domain.AnalysisResult{Filename: "a.pdf", Path: "/in/a.pdf", Keywords: []string{"x"}}
	copied := orig.WithSource(domain.Document{Filename: "b.pdf", Path: "/in/b.pdf"})
	copied.Keywords[0] = "changed"

	if copied.Filename != "b.pdf" || copied.Path != "/in/b.pdf" {
		t.Errorf("identity not rebound: %+v", copied)
	}
	if orig.Keywords[0] != "x" {
		t.Error("original keywords were mutated")
	}
}

// TestError_Kinds tests the tagged error helpers
func TestError_Kinds(t *testing.T) {
	err := domain.RemoteError("analyze", "a.pdf", domain.ErrQuotaExceeded)

	if !domain.IsKind(err, domain.KindRemote) {
		t.Errorf("kind = %s", domain.KindOf(err))
	}
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Error("sentinel lost in chain")
	}
	if got := err.Error(); got != "remote error: analyze a.pdf: api quota exceeded" {
		t.Errorf("message = %q", got)
	}
	if domain.KindOf(errors.New("plain")) != "" {
		t.Error("untagged error should have no kind")
	}
}
