// Package analyze runs the batch pipeline: enumerate PDFs, reuse cached
// results, analyze the rest one at a time, then export and record the run.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/gpa/internal/domain"
	"github.com/doeshing/gpa/internal/ports"
)

// Progress statuses passed to the reporter.
const (
	StatusCached   = "cached"
	StatusAnalyzed = "analyzed"
	StatusFailed   = "failed"
)

// Service orchestrates one pipeline run end-to-end.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Documents      ports.DocumentSource
	Fingerprinter  ports.Fingerprinter
	Extractor      ports.TextExtractor
	Analyzers      ports.AnalyzerFactory
	Cache          ports.ResultCache
	Exporter       ports.Exporter
	Uploader       ports.ArtifactUploader
	History        ports.HistoryRepository
	Progress       ports.ProgressReporter
	Logger         ports.Logger

	Getenv func(string) string
	Now    func() time.Time
	Sleep  func(ctx context.Context, d time.Duration) error
	NewID  func() string
}

// Run processes every matching document in req.InputDir.
//
// Per-file failures are recorded in the report and do not stop the run. A
// missing credential, an invalid request or a failed export aborts it.
func (s *Service) Run(ctx context.Context, req domain.RunRequest) (domain.RunReport, error) {
	if s.ConfigProvider == nil || s.Documents == nil || s.Fingerprinter == nil || s.Extractor == nil ||
		s.Analyzers == nil || s.Exporter == nil || s.Logger == nil {
		return domain.RunReport{}, errors.New("analyze.Service dependencies not satisfied")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		return domain.RunReport{}, fmt.Errorf("load config: %w", err)
	}
	req, err = resolveRequest(cfg, req)
	if err != nil {
		return domain.RunReport{}, err
	}
	cfg.Gemini.Model = req.Model

	apiKey := cfg.APIKey(s.getenv())
	if apiKey == "" {
		return domain.RunReport{}, domain.ConfigError("credential",
			fmt.Errorf("%w: set %s or gemini.api_key", domain.ErrMissingCredential, cfg.APIKeyEnv()))
	}
	analyzer, err := s.Analyzers.ForConfig(cfg, apiKey)
	if err != nil {
		return domain.RunReport{}, err
	}

	report := domain.RunReport{ID: s.newID(), StartedAt: s.now()}

	s.Logger.Info("starting run", map[string]interface{}{
		"input":  req.InputDir,
		"output": req.OutputDir,
		"model":  analyzer.Model(),
		"filter": req.Filter,
	})

	docs, err := s.Documents.List(ctx, req.InputDir, req.Filter, req.MaxDocs)
	if err != nil {
		return report, err
	}
	report.Documents = len(docs)
	if len(docs) == 0 {
		s.Logger.Warn("no PDF documents found in input directory", map[string]interface{}{"dir": req.InputDir})
		report.Duration = s.now().Sub(report.StartedAt)
		return report, nil
	}
	s.Logger.Info("documents loaded", map[string]interface{}{"count": len(docs)})

	cache := s.Cache
	if !req.UseCache {
		cache = nil
	}

	run := &pass{
		svc:      s,
		analyzer: analyzer,
		cache:    cache,
		sendMode: cfg.SendMode(),
		delay:    cfg.RequestDelay(),
		attempts: cfg.MaxAttempts(),
		backoff:  cfg.RetryDelay(),
	}
	progress := s.progress()
	progress.Start(len(docs))
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			progress.Finish()
			report.Duration = s.now().Sub(report.StartedAt)
			return report, err
		}
		result, status, err := run.process(ctx, doc)
		switch {
		case err != nil && ctx.Err() != nil:
			progress.Finish()
			report.Duration = s.now().Sub(report.StartedAt)
			return report, ctx.Err()
		case err != nil:
			s.Logger.Error("document failed", err, map[string]interface{}{"file": doc.Filename})
			report.Failures = append(report.Failures, domain.FileFailure{
				Filename: doc.Filename,
				Path:     doc.Path,
				Kind:     domain.KindOf(err),
				Message:  err.Error(),
			})
			result = domain.FailedResult(doc, err, s.now())
		case status == StatusCached:
			report.CacheHits++
		default:
			report.Analyzed++
		}
		report.Results = append(report.Results, result)
		progress.Advance(doc, status)
	}
	progress.Finish()

	outputs, err := s.Exporter.Export(report.Results, req.Formats, req.OutputDir)
	if err != nil {
		return report, fmt.Errorf("export results: %w", err)
	}
	report.Outputs = outputs

	s.upload(ctx, &report)
	report.Duration = s.now().Sub(report.StartedAt)
	s.record(req, report)
	return report, nil
}

func (s *Service) upload(ctx context.Context, report *domain.RunReport) {
	if s.Uploader == nil || !s.Uploader.Enabled() {
		return
	}
	var paths []string
	for _, f := range domain.AllExportFormats {
		if p, ok := report.Outputs[f]; ok {
			paths = append(paths, p)
		}
	}
	urls, err := s.Uploader.Upload(ctx, paths)
	report.Uploaded = urls
	if err != nil {
		s.Logger.Warn("upload failed", map[string]interface{}{"error": err.Error()})
		return
	}
	s.Logger.Info("exports uploaded", map[string]interface{}{"count": len(urls)})
}

func (s *Service) record(req domain.RunRequest, report domain.RunReport) {
	if s.History == nil {
		return
	}
	if err := s.History.Save(report.Record(req)); err != nil {
		s.Logger.Warn("history save failed", map[string]interface{}{"error": err.Error()})
	}
}

// pass holds the per-run state of the document loop.
type pass struct {
	svc      *Service
	analyzer ports.Analyzer
	cache    ports.ResultCache
	sendMode string
	delay    time.Duration
	attempts int
	backoff  time.Duration
	calls    int
}

func (p *pass) process(ctx context.Context, doc domain.Document) (domain.AnalysisResult, string, error) {
	log := p.svc.Logger
	var key domain.Fingerprint
	if p.cache != nil {
		fp, err := p.svc.Fingerprinter.Fingerprint(doc.Path)
		if err != nil {
			return domain.AnalysisResult{}, StatusFailed, err
		}
		key = fp
		cached, ok, err := p.cache.Lookup(key)
		if err != nil {
			log.Warn("cache lookup failed", map[string]interface{}{"file": doc.Filename, "error": err.Error()})
		}
		if ok {
			log.Debug("cache hit", map[string]interface{}{"file": doc.Filename, "key": key.Short()})
			return cached.WithSource(doc), StatusCached, nil
		}
	}

	text, err := p.svc.Extractor.Extract(ctx, doc.Path)
	if err != nil {
		if p.sendMode != domain.SendModeInline {
			return domain.AnalysisResult{}, StatusFailed, err
		}
		log.Warn("text extraction failed, sending PDF only", map[string]interface{}{"file": doc.Filename, "error": err.Error()})
		text = domain.ExtractedText{}
	}
	for _, w := range text.Warnings {
		log.Debug("extraction warning", map[string]interface{}{"file": doc.Filename, "warning": w})
	}

	result, err := p.analyze(ctx, domain.AnalysisRequest{Document: doc, Text: text})
	if err != nil {
		return domain.AnalysisResult{}, StatusFailed, err
	}

	if p.cache != nil && result.IsSuccessful() {
		if err := p.cache.Store(key, result); err != nil {
			log.Warn("cache store failed", map[string]interface{}{"file": doc.Filename, "error": err.Error()})
		}
	}
	return result, StatusAnalyzed, nil
}

// analyze calls the remote model, retrying transient remote failures with a
// linear back-off.
func (p *pass) analyze(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error) {
	var lastErr error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		wait := time.Duration(0)
		if p.calls > 0 {
			wait = p.delay
		}
		if attempt > 1 {
			wait = p.backoff * time.Duration(attempt-1)
		}
		if wait > 0 {
			if err := p.svc.sleep(ctx, wait); err != nil {
				return domain.AnalysisResult{}, err
			}
		}
		p.calls++
		result, err := p.analyzer.Analyze(ctx, req)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retryable(err) || ctx.Err() != nil {
			break
		}
		p.svc.Logger.Debug("retrying analysis", map[string]interface{}{
			"file":    req.Document.Filename,
			"attempt": attempt,
			"error":   err.Error(),
		})
	}
	return domain.AnalysisResult{}, lastErr
}

func retryable(err error) bool {
	if domain.KindOf(err) != domain.KindRemote {
		return false
	}
	return !errors.Is(err, domain.ErrAuthFailed) && !errors.Is(err, domain.ErrMissingCredential)
}

// resolveRequest fills unset request fields from the configuration.
func resolveRequest(cfg domain.Config, req domain.RunRequest) (domain.RunRequest, error) {
	if strings.TrimSpace(req.InputDir) == "" {
		req.InputDir = cfg.Paths.InputDir
	}
	if strings.TrimSpace(req.OutputDir) == "" {
		req.OutputDir = cfg.Paths.OutputDir
	}
	if strings.TrimSpace(req.Model) == "" {
		req.Model = cfg.ModelName()
	}
	if req.MaxDocs < 0 {
		return req, domain.Errorf(domain.KindConfig, "max docs", "", "must be >= 0, got %d", req.MaxDocs)
	}
	if len(req.Formats) == 0 {
		formats, err := cfg.ExportFormats()
		if err != nil {
			return req, domain.ConfigError("export formats", err)
		}
		req.Formats = formats
	}
	if req.InputDir == "" {
		return req, domain.Errorf(domain.KindConfig, "input dir", "", "not configured")
	}
	if req.OutputDir == "" {
		return req, domain.Errorf(domain.KindConfig, "output dir", "", "not configured")
	}
	return req, nil
}

func (s *Service) getenv() func(string) string {
	if s.Getenv != nil {
		return s.Getenv
	}
	return os.Getenv
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s *Service) sleep(ctx context.Context, d time.Duration) error {
	if s.Sleep != nil {
		return s.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Service) progress() ports.ProgressReporter {
	if s.Progress != nil {
		return s.Progress
	}
	return silentProgress{}
}

type silentProgress struct{}

func (silentProgress) Start(int) {}

func (silentProgress) Advance(domain.Document, string) {}

func (silentProgress) Finish() {}
