package domain

import "time"

// RunRequest captures the CLI inputs for one pipeline run.
type RunRequest struct {
	InputDir  string
	OutputDir string
	Model     string
	MaxDocs   int
	Filter    string
	Formats   []ExportFormat
	UseCache  bool
}

// FileFailure records a per-file error without aborting the run.
type FileFailure struct {
	Filename string
	Path     string
	Kind     ErrorKind
	Message  string
}

// RunReport is returned by the pipeline after export.
type RunReport struct {
	ID        string
	Results   []AnalysisResult
	Failures  []FileFailure
	Documents int
	Analyzed  int
	CacheHits int
	Outputs   map[ExportFormat]string
	Uploaded  []string
	StartedAt time.Time
	Duration  time.Duration
}

// Failed returns the number of files that produced an error.
func (r RunReport) Failed() int {
	return len(r.Failures)
}

// HasFailures reports whether any file failed.
func (r RunReport) HasFailures() bool {
	return len(r.Failures) > 0
}

// Record converts the report into its persisted form.
func (r RunReport) Record(req RunRequest) RunRecord {
	rec := RunRecord{
		ID:         r.ID,
		StartedAt:  r.StartedAt,
		DurationMS: r.Duration.Milliseconds(),
		InputDir:   req.InputDir,
		OutputDir:  req.OutputDir,
		Model:      req.Model,
		Documents:  r.Documents,
		Analyzed:   r.Analyzed,
		CacheHits:  r.CacheHits,
		Failed:     r.Failed(),
	}
	for _, f := range AllExportFormats {
		if path, ok := r.Outputs[f]; ok {
			rec.Outputs = append(rec.Outputs, path)
		}
	}
	return rec
}
