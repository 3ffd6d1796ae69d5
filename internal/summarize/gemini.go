package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"filecat/internal/config"
	serr "filecat/internal/errors"
	"filecat/internal/log"
	"filecat/pkg/types"
)

// ServiceName identifies the remote service in errors and logs.
const ServiceName = "gemini"

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// GeminiClient calls the Gemini generateContent REST endpoint. There is no
// retry: a failed call is reported once and left to the user.
type GeminiClient struct {
	model   string
	baseURL string
	apiKey  string
	maxRows int
	client  *http.Client
}

// NewGeminiClient creates a client from the summarize section of cfg. The API
// key is read from the environment variable the config names.
func NewGeminiClient(cfg *config.Config) (*GeminiClient, error) {
	key := cfg.APIKey()
	if key == "" {
		return nil, serr.NewConfigError("API key not set", cfg.Summarize.APIKeyEnv, serr.ConfigNotSet, nil)
	}
	return NewGeminiClientWithKey(cfg.Summarize.BaseURL, cfg.Summarize.Model, key, cfg.Summarize.Timeout, cfg.Summarize.MaxRows), nil
}

// NewGeminiClientWithKey creates a client with explicit settings.
func NewGeminiClientWithKey(baseURL, model, apiKey string, timeout time.Duration, maxRows int) *GeminiClient {
	return &GeminiClient{
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		maxRows: maxRows,
		client:  &http.Client{Timeout: timeout},
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Summarize builds the inventory prompt and sends it to the model.
func (g *GeminiClient) Summarize(ctx context.Context, records []types.InventoryRecord) (string, error) {
	return g.Generate(ctx, BuildPrompt(records, g.maxRows))
}

// Generate sends prompt to the model and returns the concatenated text of
// the first candidate. Every failure is a *errors.RemoteError.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	logger := log.LogWithFields(log.F("service", ServiceName), log.F("model", g.model))

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", serr.NewRemoteError("failed to encode request", ServiceName, 0, err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", serr.NewRemoteError("failed to create request", ServiceName, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	logger.With(log.F("prompt_bytes", len(prompt))).Debug("Sending summarize request")
	start := time.Now()

	resp, err := g.client.Do(req)
	if err != nil {
		return "", serr.NewRemoteError("request failed", ServiceName, 0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", serr.NewRemoteError("failed to read response", ServiceName, resp.StatusCode, err)
	}

	var parsed generateResponse
	decodeErr := json.Unmarshal(data, &parsed)

	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return "", serr.NewRemoteError(msg, ServiceName, resp.StatusCode, nil)
	}
	if decodeErr != nil {
		return "", serr.NewRemoteError("malformed response", ServiceName, resp.StatusCode, decodeErr)
	}
	if parsed.Error != nil {
		return "", serr.NewRemoteError(parsed.Error.Message, ServiceName, parsed.Error.Code, nil)
	}

	text := candidateText(parsed)
	if text == "" {
		msg := "response contained no text"
		if parsed.PromptFeedback != nil && parsed.PromptFeedback.BlockReason != "" {
			msg = "prompt blocked: " + parsed.PromptFeedback.BlockReason
		}
		return "", serr.NewRemoteError(msg, ServiceName, resp.StatusCode, nil)
	}

	logger.With(log.F("duration", time.Since(start).String()), log.F("chars", len(text))).Info("Summary received")
	return text, nil
}

func candidateText(resp generateResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}
