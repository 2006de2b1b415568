package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"

	"github.com/doeshing/gpa/internal/domain"
)

// langchainBackend routes the call through a langchaingo model so the
// provider can be swapped without touching the analyzer.
type langchainBackend struct {
	llm llms.Model
}

func newLangchainBackend(apiKey, endpoint, model string, httpClient *http.Client) (*langchainBackend, error) {
	llm, err := lcopenai.New(
		lcopenai.WithToken(apiKey),
		lcopenai.WithModel(model),
		lcopenai.WithBaseURL(strings.TrimRight(valueOrDefault(endpoint, DefaultOpenAICompatEndpoint), "/")),
		lcopenai.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("init langchain model: %w", err)
	}
	return &langchainBackend{llm: llm}, nil
}

func (l *langchainBackend) name() string {
	return domain.ProviderLangChain
}

func (l *langchainBackend) complete(ctx context.Context, p payload) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, l.llm, p.Prompt, llms.WithTemperature(p.Temperature))
	if err != nil {
		return "", classifyMessage(err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("%w: empty response", domain.ErrMalformedResponse)
	}
	return out, nil
}
