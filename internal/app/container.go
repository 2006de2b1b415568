// Package app wires application services to their infrastructure adapters.
package app

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/doeshing/gpa/internal/application/analyze"
	appconfig "github.com/doeshing/gpa/internal/application/config"
	"github.com/doeshing/gpa/internal/application/doctor"
	"github.com/doeshing/gpa/internal/domain"
	"github.com/doeshing/gpa/internal/infrastructure/ai"
	"github.com/doeshing/gpa/internal/infrastructure/cache"
	"github.com/doeshing/gpa/internal/infrastructure/config"
	"github.com/doeshing/gpa/internal/infrastructure/documents"
	"github.com/doeshing/gpa/internal/infrastructure/export"
	"github.com/doeshing/gpa/internal/infrastructure/history"
	"github.com/doeshing/gpa/internal/infrastructure/storage"
	"github.com/doeshing/gpa/internal/pkg/logger"
	"github.com/doeshing/gpa/internal/ports"
)

// Options controls how the container is built.
type Options struct {
	ConfigPath string
	LogLevel   logger.Level
	LogWriter  io.Writer
	HTTPClient *http.Client
	Getenv     func(string) string
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigLoader   *config.FileLoader
	Logger         ports.Logger
	AnalyzeService *analyze.Service
	DoctorService  *doctor.Service
	CacheStore     ports.CacheRepository
	HistoryStore   ports.HistoryRepository
	Uploader       ports.ArtifactUploader
}

// BuildContainer constructs the dependency graph. Cache and storage problems
// are logged and replaced by no-op adapters; only a config that cannot be
// loaded is an error.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	cfgLoader := config.NewFileLoader(opts.ConfigPath).WithEnv(getenv)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	w := opts.LogWriter
	if w == nil {
		w = os.Stderr
	}
	log := logger.NewWithWriter(w, opts.LogLevel)

	cacheStore := openCache(cfg, log)
	historyStore := openHistory(cfg)
	uploader := openUploader(cfg, getenv, log)

	// A disabled cache is still inspectable but never consulted by runs.
	var runCache ports.ResultCache
	if cfg.Cache.Enabled {
		runCache = cacheStore
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout()}
	}

	analyzeService := &analyze.Service{
		ConfigProvider: cfgLoader,
		Documents:      documents.NewDirSource(),
		Fingerprinter:  documents.NewFingerprinter(),
		Extractor:      documents.NewPDFExtractor(),
		Analyzers:      ai.NewFactory(client, log),
		Cache:          runCache,
		Exporter:       export.NewFileExporter(cfg.ExportPrefix(), cfg.Export.Timestamp),
		Uploader:       uploader,
		History:        historyStore,
		Logger:         log,
		Getenv:         getenv,
	}

	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		Validate:       appconfig.Validate,
		OpenCache: func(domain.Config) (ports.CacheRepository, error) {
			return cacheStore, nil
		},
		Uploader: func(cfg domain.Config) (ports.ArtifactUploader, error) {
			return newUploader(cfg, getenv)
		},
		Getenv: getenv,
	}

	return &Container{
		Config:         cfg,
		ConfigLoader:   cfgLoader,
		Logger:         log,
		AnalyzeService: analyzeService,
		DoctorService:  doctorService,
		CacheStore:     cacheStore,
		HistoryStore:   historyStore,
		Uploader:       uploader,
	}, nil
}

// Close releases the cache and history handles.
func (c *Container) Close() error {
	var firstErr error
	if c.CacheStore != nil {
		firstErr = c.CacheStore.Close()
	}
	if closer, ok := c.HistoryStore.(io.Closer); ok {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// openCache opens the configured backend even when cache.enabled is off, so
// `gpa cache` and --clear-cache still reach entries written by earlier runs.
func openCache(cfg domain.Config, log ports.Logger) ports.CacheRepository {
	store, err := cache.OpenOrNoop(cfg, log)
	if err != nil {
		log.Warn("cache unavailable, continuing without it", map[string]interface{}{
			"backend": cfg.CacheBackend(),
			"error":   err.Error(),
		})
	}
	return store
}

func openHistory(cfg domain.Config) ports.HistoryRepository {
	if !cfg.History.Enabled {
		return history.Nop{}
	}
	return history.NewSQLiteStore(cfg.HistoryPath())
}

func openUploader(cfg domain.Config, getenv func(string) string, log ports.Logger) ports.ArtifactUploader {
	if !cfg.Storage.Enabled {
		return storage.Disabled{}
	}
	up, err := newUploader(cfg, getenv)
	if err != nil {
		log.Warn("storage disabled", map[string]interface{}{"error": err.Error()})
		return storage.Disabled{}
	}
	return up
}

func newUploader(cfg domain.Config, getenv func(string) string) (ports.ArtifactUploader, error) {
	s := cfg.Storage
	up, err := storage.NewMinioUploader(s, getenv(s.AccessKeyEnv), getenv(s.SecretKeyEnv))
	if err != nil {
		return nil, err
	}
	return up, nil
}
