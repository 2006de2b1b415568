// Package domain defines the core entities of gpa: documents found on disk,
// the analysis results produced for them, the cache entries that remember
// those results, and the reports a pipeline run hands back to the CLI.
//
// The domain layer is independent of infrastructure concerns: nothing here
// touches the network, the filesystem or a particular storage backend.
package domain

import (
	"strings"
	"time"
)

// Document is a PDF discovered by the enumerator.
type Document struct {
	Path     string
	Filename string
	Size     int64
	ModTime  time.Time
}

// ExtractedText is the plain text pulled out of a PDF.
type ExtractedText struct {
	Text     string
	Pages    int
	Warnings []string
}

// Empty reports whether the extraction produced no usable text.
func (t ExtractedText) Empty() bool {
	return strings.TrimSpace(t.Text) == ""
}

// AnalysisRequest carries everything an analyzer needs for one document.
type AnalysisRequest struct {
	Document Document
	Text     ExtractedText
}

// AnalysisResult is the structured outcome of analyzing a single document.
// Values are treated as immutable once produced; callers copy before changing
// the identifier of a cached result.
type AnalysisResult struct {
	Filename    string    `json:"filename"`
	Path        string    `json:"path"`
	Summary     string    `json:"summary"`
	KeyEntities string    `json:"key_entities"`
	ActionItems string    `json:"action_items"`
	Keywords    []string  `json:"keywords"`
	RawResponse string    `json:"raw_response,omitempty"`
	Model       string    `json:"model,omitempty"`
	Pages       int       `json:"pages,omitempty"`
	Error       string    `json:"error,omitempty"`
	AnalyzedAt  time.Time `json:"analyzed_at"`
}

// IsSuccessful reports whether the analysis completed without error.
func (r AnalysisResult) IsSuccessful() bool {
	return r.Error == ""
}

// WithSource returns a copy bound to another document's identity.
func (r AnalysisResult) WithSource(doc Document) AnalysisResult {
	out := r
	out.Filename = doc.Filename
	out.Path = doc.Path
	if r.Keywords != nil {
		out.Keywords = append([]string(nil), r.Keywords...)
	}
	return out
}

// ExportColumns lists the tabular columns in output order.
var ExportColumns = []string{"filename", "summary", "key_entities", "action_items", "keywords", "error"}

// Row flattens the result into ExportColumns order.
func (r AnalysisResult) Row() []string {
	return []string{
		r.Filename,
		r.Summary,
		r.KeyEntities,
		r.ActionItems,
		strings.Join(r.Keywords, ", "),
		r.Error,
	}
}

// FailedResult builds the placeholder result kept in exports for a failed file.
func FailedResult(doc Document, err error, at time.Time) AnalysisResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return AnalysisResult{
		Filename:   doc.Filename,
		Path:       doc.Path,
		Error:      msg,
		AnalyzedAt: at,
	}
}
