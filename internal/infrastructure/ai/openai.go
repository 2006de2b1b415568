package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/doeshing/gpa/internal/domain"
)

// DefaultOpenAICompatEndpoint is Gemini's OpenAI-compatible API root.
const DefaultOpenAICompatEndpoint = "https://generativelanguage.googleapis.com/v1beta/openai"

// openAIBackend talks to any OpenAI-compatible chat completion endpoint.
type openAIBackend struct {
	client *openai.Client
	model  string
}

func newOpenAIBackend(apiKey, endpoint, model string, httpClient *http.Client) *openAIBackend {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = strings.TrimRight(valueOrDefault(endpoint, DefaultOpenAICompatEndpoint), "/")
	config.HTTPClient = httpClient
	return &openAIBackend{client: openai.NewClientWithConfig(config), model: model}
}

func (o *openAIBackend) name() string {
	return domain.ProviderOpenAI
}

func (o *openAIBackend) complete(ctx context.Context, p payload) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: float32(p.Temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: p.Prompt},
		},
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", domain.ErrMalformedResponse)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: empty response", domain.ErrMalformedResponse)
	}
	return content, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, "", apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode, "", reqErr.Error())
	}
	return err
}

func valueOrDefault(value string, def string) string {
	if value == "" {
		return def
	}
	return value
}
