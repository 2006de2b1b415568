package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
	// OutputFilePermissions is the permission for exported files (rw-r--r--)
	OutputFilePermissions = 0o644
)

// Provider names accepted by gemini.provider.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderLangChain = "langchain"
)

// Send modes accepted by gemini.send_mode.
const (
	SendModeText   = "text"
	SendModeInline = "inline"
)

// Cache backends accepted by cache.backend.
const (
	CacheBackendFile = "file"
	CacheBackendBolt = "bolt"
)

// Analysis defaults
const (
	DefaultModel          = "gemini-2.0-flash"
	DefaultAPIKeyEnv      = "GEMINI_API_KEY"
	DefaultMaxCharsPerDoc = 15000
	DefaultTemperature    = 0.2
	// RawSummaryLimit caps the summary when the response has no recognizable structure.
	RawSummaryLimit = 500
)

// Timeout and duration constants
const (
	// DefaultHTTPClientTimeout is the timeout for HTTP client requests
	DefaultHTTPClientTimeout = 120 * time.Second
	// DefaultRequestDelay is the pause between outbound analysis calls
	DefaultRequestDelay = 500 * time.Millisecond
	// DefaultRetryDelay is the base linear back-off between attempts
	DefaultRetryDelay = 2 * time.Second
	// DefaultDoctorTimeout bounds remote checks run by the doctor command
	DefaultDoctorTimeout = 10 * time.Second
)

// Export constants
const (
	DefaultExportPrefix = "analysis_results"
	// ExportTimestampLayout is appended to the prefix when export.timestamp is on
	ExportTimestampLayout = "20060102_150405"
)

// History constants
const (
	// DefaultHistoryLimit is the default number of history records to display
	DefaultHistoryLimit = 20
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
