// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reasoning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// openaiAPIURL is the chat completions endpoint. Package-level var for test
// substitution. Any OpenAI-compatible provider works by pointing this (or
// the config) elsewhere.
var openaiAPIURL = "https://api.openai.com/v1/chat/completions"

// OpenAIService calls an OpenAI-compatible chat completions API.
// Per prd008-reasoning R4.1.
type OpenAIService struct {
	APIKey string
	Model  string
	Client *http.Client
}

var _ Service = (*OpenAIService)(nil)

// chatRequest is the request body for the chat completions API.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// responseFormat asks the provider for structured output when jsonMode is set.
type responseFormat struct {
	Type string `json:"type"`
}

// chatResponse is the response body from the chat completions API.
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// chatChoice is one completion candidate in the response.
type chatChoice struct {
	Message Message `json:"message"`
}

// Complete sends one chat completion request. HTTP 429 maps to
// *RateLimitError carrying the Retry-After header; every other failure wraps
// ErrUnavailable (R4.2, R4.3).
func (s *OpenAIService) Complete(ctx context.Context, messages []Message, jsonMode bool) (string, error) {
	reqBody := chatRequest{
		Model:    s.Model,
		Messages: messages,
	}
	if jsonMode {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openaiAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return "", &RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: reasoning API returned %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var cResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("%w: decoding reasoning response: %v", ErrUnavailable, err)
	}

	if len(cResp.Choices) == 0 {
		return "", fmt.Errorf("%w: reasoning API returned no choices", ErrUnavailable)
	}

	return cResp.Choices[0].Message.Content, nil
}

// parseRetryAfter reads a Retry-After header in delay-seconds form. Returns
// zero for an absent or unparseable header so the caller applies its own
// fallback delay.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
