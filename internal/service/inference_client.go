package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const maxInferenceResponseBytes = 1 << 20

// InferenceClient talks to the hosted text generation endpoint
type InferenceClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type inferenceClient struct {
	url    string
	token  string
	client *http.Client
	logger zerolog.Logger
}

func NewInferenceClient(url, token string, timeout time.Duration, logger zerolog.Logger) InferenceClient {
	return &inferenceClient{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: timeout},
		logger: logger.With().Str("service", "InferenceClient").Logger(),
	}
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

// Generate returns the raw generated text, before any cleanup.
func (c *inferenceClient) Generate(ctx context.Context, prompt string) (string, error) {
	jsonBody, err := json.Marshal(inferenceRequest{Inputs: prompt})
	if err != nil {
		return "", fmt.Errorf("marshaling request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: calling inference endpoint: %v", ErrUpstream, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn().Err(closeErr).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxInferenceResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: reading inference response: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error().
			Int("status_code", resp.StatusCode).
			Str("error_body", string(body)).
			Msg("Inference endpoint returned error")
		return "", fmt.Errorf("%w: inference endpoint returned status %d", ErrUpstream, resp.StatusCode)
	}
	return extractGeneratedText(body), nil
}

type generated struct {
	GeneratedText *string `json:"generated_text"`
}

// extractGeneratedText accepts the response shapes in use by hosted
// endpoints: [{"generated_text"}], {"generated_text"}, {"data":[...]} and
// plain text.
func extractGeneratedText(body []byte) string {
	trimmed := bytes.TrimSpace(body)

	var list []generated
	if err := json.Unmarshal(trimmed, &list); err == nil && len(list) > 0 && list[0].GeneratedText != nil {
		return *list[0].GeneratedText
	}

	var single generated
	if err := json.Unmarshal(trimmed, &single); err == nil && single.GeneratedText != nil {
		return *single.GeneratedText
	}

	var wrapped struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err == nil && len(wrapped.Data) > 0 {
		var s string
		if err := json.Unmarshal(wrapped.Data[0], &s); err == nil {
			return s
		}
		return extractGeneratedText(wrapped.Data[0])
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(body))
}
