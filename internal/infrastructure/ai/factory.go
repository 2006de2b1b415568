package ai

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/gpa/internal/domain"
	"github.com/doeshing/gpa/internal/pkg/logger"
	"github.com/doeshing/gpa/internal/ports"
)

// Factory builds analyzers for the configured provider.
type Factory struct {
	httpClient *http.Client
	logger     ports.Logger
}

// NewFactory creates a factory. A nil client gets one with the default timeout.
func NewFactory(client *http.Client, log ports.Logger) *Factory {
	if client == nil {
		client = &http.Client{Timeout: domain.DefaultHTTPClientTimeout}
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Factory{httpClient: client, logger: log}
}

// ForConfig implements ports.AnalyzerFactory.
func (f *Factory) ForConfig(cfg domain.Config, apiKey string) (ports.Analyzer, error) {
	if apiKey == "" {
		return nil, domain.ConfigError("build analyzer", fmt.Errorf("%w: set %s or gemini.api_key", domain.ErrMissingCredential, cfg.APIKeyEnv()))
	}
	schema, err := compileResponseSchema()
	if err != nil {
		return nil, err
	}

	client := f.httpClient
	if timeout := cfg.Timeout(); timeout != client.Timeout {
		clone := *client
		clone.Timeout = timeout
		client = &clone
	}

	model := cfg.ModelName()
	var b backend
	switch cfg.ProviderName() {
	case domain.ProviderGemini:
		b = &geminiBackend{endpoint: cfg.Gemini.Endpoint, model: model, apiKey: apiKey, httpClient: client}
	case domain.ProviderOpenAI:
		b = newOpenAIBackend(apiKey, cfg.Gemini.Endpoint, model, client)
	case domain.ProviderLangChain:
		lc, err := newLangchainBackend(apiKey, cfg.Gemini.Endpoint, model, client)
		if err != nil {
			return nil, domain.ConfigError("build analyzer", err)
		}
		b = lc
	default:
		return nil, domain.ConfigError("build analyzer", fmt.Errorf("unsupported provider: %s", cfg.Gemini.Provider))
	}

	return &analyzer{
		backend:  b,
		model:    model,
		maxChars: cfg.MaxChars(),
		inline:   cfg.SendMode() == domain.SendModeInline,
		temp:     cfg.Gemini.Temperature,
		schema:   schema,
		logger:   f.logger,
		newID:    uuid.NewString,
		now:      time.Now,
		readFile: defaultReadFile,
	}, nil
}

var _ ports.AnalyzerFactory = (*Factory)(nil)
