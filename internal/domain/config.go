package domain

// Config mirrors ~/.gpa/config.yaml.
type Config struct {
	ConfigFormatVersion string          `yaml:"config_format_version"`
	Gemini              GeminiSettings  `yaml:"gemini"`
	Paths               PathSettings    `yaml:"paths"`
	Cache               CacheSettings   `yaml:"cache"`
	Export              ExportSettings  `yaml:"export"`
	Storage             StorageSettings `yaml:"storage"`
	History             HistorySettings `yaml:"history"`
}

// GeminiSettings configures the analysis client.
type GeminiSettings struct {
	Provider       string  `yaml:"provider"`
	APIKey         string  `yaml:"api_key,omitempty"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	Model          string  `yaml:"model"`
	Endpoint       string  `yaml:"endpoint,omitempty"`
	SendMode       string  `yaml:"send_mode"`
	MaxCharsPerDoc int     `yaml:"max_chars_per_doc"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout"`
	RequestDelay   string  `yaml:"request_delay"`
	MaxAttempts    int     `yaml:"max_attempts"`
	RetryDelay     string  `yaml:"retry_delay"`
}

// PathSettings holds the default directories.
type PathSettings struct {
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`
	DataDir   string `yaml:"data_dir"`
}

// CacheSettings selects the result cache backend.
type CacheSettings struct {
	Enabled bool   `yaml:"enabled"`
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir,omitempty"`
}

// ExportSettings controls the exporter.
type ExportSettings struct {
	Formats   []string `yaml:"formats"`
	Prefix    string   `yaml:"prefix"`
	Timestamp bool     `yaml:"timestamp"`
}

// StorageSettings configures the optional S3-compatible uploader.
type StorageSettings struct {
	Enabled      bool   `yaml:"enabled"`
	Endpoint     string `yaml:"endpoint"`
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	Region       string `yaml:"region,omitempty"`
	UseSSL       bool   `yaml:"use_ssl"`
	AccessKeyEnv string `yaml:"access_key_env"`
	SecretKeyEnv string `yaml:"secret_key_env"`
}

// HistorySettings toggles run history.
type HistorySettings struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}
