// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and external
// adapters (infrastructure). Following the Ports and Adapters (Hexagonal) pattern,
// these interfaces allow the analysis pipeline to remain independent of specific
// implementations like the Gemini HTTP API, the cache backend, or the CLI framework.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., Analyzer, ResultCache)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"

	"github.com/doeshing/gpa/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.gpa/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// DocumentSource enumerates the PDFs of an input directory.
// Results are sorted by lowercase file name, filtered and capped.
type DocumentSource interface {
	List(ctx context.Context, dir, filter string, maxDocs int) ([]domain.Document, error)
}

// Fingerprinter derives the cache key of a document from its content.
type Fingerprinter interface {
	Fingerprint(path string) (domain.Fingerprint, error)
}

// TextExtractor pulls plain text out of a PDF.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (domain.ExtractedText, error)
}

// Analyzer sends one document to the remote model and parses the reply.
// Each call performs exactly one outbound request; retrying is the caller's job.
type Analyzer interface {
	Name() string
	Model() string
	Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error)
}

// AnalyzerFactory builds an Analyzer for the active configuration.
type AnalyzerFactory interface {
	ForConfig(cfg domain.Config, apiKey string) (Analyzer, error)
}

// ResultCache maps content fingerprints to successful analysis results.
type ResultCache interface {
	Lookup(key domain.Fingerprint) (domain.AnalysisResult, bool, error)
	Store(key domain.Fingerprint, result domain.AnalysisResult) error
	Clear() error
}

// CacheRepository extends ResultCache with inspection used by `gpa cache`.
type CacheRepository interface {
	ResultCache
	Entries() ([]domain.CacheEntry, error)
	Stats() (domain.CacheStats, error)
	Location() string
	Close() error
}

// Exporter renders ordered results into one file per format.
type Exporter interface {
	Export(results []domain.AnalysisResult, formats []domain.ExportFormat, outputDir string) (map[domain.ExportFormat]string, error)
}

// ArtifactUploader mirrors exported files to remote storage.
type ArtifactUploader interface {
	Upload(ctx context.Context, paths []string) ([]string, error)
	Check(ctx context.Context) error
	Enabled() bool
}

// HistoryRepository persists one record per pipeline run.
type HistoryRepository interface {
	Save(record domain.RunRecord) error
	Records(limit int) ([]domain.RunRecord, error)
	Clear() error
	Path() string
}

// ProgressReporter receives per-file progress from the pipeline.
type ProgressReporter interface {
	Start(total int)
	Advance(doc domain.Document, status string)
	Finish()
}

// ConfirmationPrompter asks the user before destructive operations.
type ConfirmationPrompter interface {
	Confirm(title, description string) (bool, error)
	Enabled() bool
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stderr, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
