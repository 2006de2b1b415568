package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/gpa/assets"
	"github.com/doeshing/gpa/internal/domain"
	"github.com/doeshing/gpa/internal/pkg/filesystem"
	"github.com/doeshing/gpa/internal/ports"
)

// Environment variables recognised on top of the YAML file.
const (
	EnvConfigPath = "GPA_CONFIG"
	EnvInputDir   = "INPUT_DIR"
	EnvOutputDir  = "OUTPUT_DIR"
	EnvModelName  = "MODEL_NAME"
	EnvMaxChars   = "MAX_CHARS_PER_DOC"
	EnvDataDir    = "GPA_DATA_DIR"
)

// FileLoader loads YAML configuration from ~/.gpa/config.yaml (overridable via GPA_CONFIG).
type FileLoader struct {
	overridePath string
	getenv       func(string) string
}

// NewFileLoader builds a new loader. An empty path uses GPA_CONFIG or the default location.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path, getenv: os.Getenv}
}

// WithEnv swaps the environment lookup, mostly for tests.
func (l *FileLoader) WithEnv(getenv func(string) string) *FileLoader {
	l.getenv = getenv
	return l
}

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, domain.ConfigError("create config dir", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return domain.Config{}, domain.ConfigError("read config", err)
		}
		if err := writeDefault(path); err != nil {
			return domain.Config{}, domain.ConfigError("write default config", err)
		}
		data = assets.DefaultConfigYAML
	}

	cfg, err := defaultConfig()
	if err != nil {
		return domain.Config{}, domain.ConfigError("parse embedded defaults", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, domain.ConfigError("parse "+path, err)
	}

	cfg = l.applyEnv(cfg)
	return hydrateDefaults(cfg), nil
}

// Path returns the config file location.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := l.env(EnvConfigPath); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filepath.Join(filesystem.DefaultDataDir(), "config.yaml")
}

// Init writes the embedded defaults, refusing to overwrite unless force is set.
func (l *FileLoader) Init(force bool) (string, error) {
	path := l.Path()
	if _, err := os.Stat(path); err == nil && !force {
		return path, fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := ensureConfigDir(path); err != nil {
		return path, err
	}
	return path, writeDefault(path)
}

func (l *FileLoader) applyEnv(cfg domain.Config) domain.Config {
	cfg.Paths.InputDir = l.getEnv(EnvInputDir, cfg.Paths.InputDir)
	cfg.Paths.OutputDir = l.getEnv(EnvOutputDir, cfg.Paths.OutputDir)
	cfg.Paths.DataDir = l.getEnv(EnvDataDir, cfg.Paths.DataDir)
	cfg.Gemini.Model = l.getEnv(EnvModelName, cfg.Gemini.Model)
	cfg.Gemini.MaxCharsPerDoc = l.getEnvAsInt(EnvMaxChars, cfg.Gemini.MaxCharsPerDoc)
	return cfg
}

func (l *FileLoader) env(key string) string {
	if l.getenv == nil {
		return os.Getenv(key)
	}
	return l.getenv(key)
}

func (l *FileLoader) getEnv(key, defaultValue string) string {
	if value := l.env(key); value != "" {
		return value
	}
	return defaultValue
}

func (l *FileLoader) getEnvAsInt(key string, defaultValue int) int {
	if value := l.env(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func ensureConfigDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, domain.DirectoryPermissions)
}

func writeDefault(path string) error {
	return os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions)
}

// DefaultConfig returns the embedded defaults with paths expanded and no
// environment overrides applied.
func DefaultConfig() (domain.Config, error) {
	cfg, err := defaultConfig()
	if err != nil {
		return domain.Config{}, domain.ConfigError("parse embedded defaults", err)
	}
	return hydrateDefaults(cfg), nil
}

func defaultConfig() (domain.Config, error) {
	var cfg domain.Config
	err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg)
	return cfg, err
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = domain.DefaultModel
	}
	if cfg.Gemini.MaxCharsPerDoc <= 0 {
		cfg.Gemini.MaxCharsPerDoc = domain.DefaultMaxCharsPerDoc
	}
	if cfg.Gemini.APIKeyEnv == "" {
		cfg.Gemini.APIKeyEnv = domain.DefaultAPIKeyEnv
	}
	if cfg.Gemini.MaxAttempts <= 0 {
		cfg.Gemini.MaxAttempts = 1
	}
	if cfg.Paths.DataDir == "" {
		cfg.Paths.DataDir = filesystem.DefaultDataDir()
	}
	if cfg.Export.Prefix == "" {
		cfg.Export.Prefix = domain.DefaultExportPrefix
	}
	cfg.Paths.InputDir = filesystem.ExpandPath(cfg.Paths.InputDir)
	cfg.Paths.OutputDir = filesystem.ExpandPath(cfg.Paths.OutputDir)
	cfg.Paths.DataDir = filesystem.ExpandPath(cfg.Paths.DataDir)
	cfg.Cache.Dir = filesystem.ExpandPath(cfg.Cache.Dir)
	cfg.History.Path = filesystem.ExpandPath(cfg.History.Path)
	return cfg
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
