// Package ai turns extracted document text into structured analyses by
// calling a generative model.
//
// Every provider implements the same small backend contract: one request in,
// raw model text out. The shared analyzer builds the prompt, enforces the
// character budget and parses whatever comes back (schema-checked JSON,
// labelled sections, or raw text as a last resort).
package ai

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/doeshing/gpa/internal/domain"
	"github.com/doeshing/gpa/internal/ports"
)

// payload is what a backend sends for one document.
type payload struct {
	Prompt      string
	PDF         []byte
	Temperature float64
	RequestID   string
}

// backend performs exactly one outbound call.
type backend interface {
	name() string
	complete(ctx context.Context, p payload) (string, error)
}

type analyzer struct {
	backend  backend
	model    string
	maxChars int
	inline   bool
	temp     float64
	schema   *responseSchema
	logger   ports.Logger
	newID    func() string
	now      func() time.Time
	readFile func(string) ([]byte, error)
}

func (a *analyzer) Name() string {
	return a.backend.name()
}

func (a *analyzer) Model() string {
	return a.model
}

// Analyze implements ports.Analyzer.
func (a *analyzer) Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error) {
	doc := req.Document
	p := payload{Temperature: a.temp, RequestID: a.newID()}

	if a.inline {
		data, err := a.readFile(doc.Path)
		if err != nil {
			return domain.AnalysisResult{}, domain.IOError("read pdf", doc.Path, err)
		}
		p.PDF = data
	} else if req.Text.Empty() {
		return domain.AnalysisResult{}, domain.IOError("analyze", doc.Path, domain.ErrEmptyDocument)
	}

	text, truncated := truncateChars(req.Text.Text, a.maxChars)
	if truncated {
		a.logger.Debug("document truncated", map[string]interface{}{
			"file":  doc.Filename,
			"limit": a.maxChars,
		})
	}
	prompt, err := renderPrompt(doc.Filename, text, a.inline)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("render prompt: %w", err)
	}
	p.Prompt = prompt

	a.logger.Debug("calling model", map[string]interface{}{
		"provider":   a.backend.name(),
		"model":      a.model,
		"file":       doc.Filename,
		"request_id": p.RequestID,
	})
	raw, err := a.backend.complete(ctx, p)
	if err != nil {
		return domain.AnalysisResult{}, domain.RemoteError(a.backend.name(), doc.Path, err)
	}

	fields, err := parseResponse(raw, a.schema)
	if err != nil {
		return domain.AnalysisResult{}, domain.RemoteError(a.backend.name(), doc.Path, err)
	}

	return domain.AnalysisResult{
		Filename:    doc.Filename,
		Path:        doc.Path,
		Summary:     fields.Summary,
		KeyEntities: fields.KeyEntities,
		ActionItems: fields.ActionItems,
		Keywords:    fields.Keywords,
		RawResponse: strings.TrimSpace(raw),
		Model:       a.model,
		Pages:       req.Text.Pages,
		AnalyzedAt:  a.now().UTC(),
	}, nil
}

func defaultReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

var _ ports.Analyzer = (*analyzer)(nil)
