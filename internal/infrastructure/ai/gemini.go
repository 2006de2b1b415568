package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/doeshing/gpa/internal/domain"
)

// DefaultGeminiEndpoint is the public Generative Language API root.
const DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"

const maxErrorBody = 64 << 10

// geminiBackend calls models/{model}:generateContent directly.
type geminiBackend struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (g *geminiBackend) name() string {
	return domain.ProviderGemini
}

func (g *geminiBackend) complete(ctx context.Context, p payload) (string, error) {
	body, err := buildGeminiRequest(p)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("content-type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)
	if p.RequestID != "" {
		req.Header.Set("x-request-id", p.RequestID)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var apiErr geminiError
		_ = json.Unmarshal(raw, &apiErr)
		msg := apiErr.Error.Message
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return "", classifyStatus(resp.StatusCode, apiErr.Error.Status, msg)
	}

	var responseBody bytes.Buffer
	if _, err := responseBody.ReadFrom(resp.Body); err != nil {
		return "", err
	}
	return parseGeminiResponse(responseBody.Bytes())
}

func (g *geminiBackend) url() string {
	endpoint := strings.TrimRight(g.endpoint, "/")
	if endpoint == "" {
		endpoint = DefaultGeminiEndpoint
	}
	model := strings.TrimPrefix(g.model, "models/")
	return fmt.Sprintf("%s/models/%s:generateContent", endpoint, url.PathEscape(model))
}

func buildGeminiRequest(p payload) ([]byte, error) {
	parts := []geminiPart{{Text: p.Prompt}}
	if len(p.PDF) > 0 {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: "application/pdf",
			Data:     base64.StdEncoding.EncodeToString(p.PDF),
		}})
	}
	return json.Marshal(geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      p.Temperature,
			ResponseMimeType: "application/json",
		},
	})
}

func parseGeminiResponse(body []byte) (string, error) {
	var response geminiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if reason := response.PromptFeedback.BlockReason; reason != "" {
		return "", fmt.Errorf("%w: prompt blocked (%s)", domain.ErrMalformedResponse, reason)
	}
	if len(response.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", domain.ErrMalformedResponse)
	}
	var b strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty response (finish reason %s)", domain.ErrMalformedResponse, response.Candidates[0].FinishReason)
	}
	return text, nil
}
