package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/runoshun/taskboard/internal/domain"
)

const (
	openaiBaseURL      = "https://api.openai.com/v1"
	openaiMaxRetries   = 3
	openaiInitialDelay = 1 * time.Second
	openaiTemperature  = 0.3
	openaiMaxBodyBytes = 4 << 20
)

// OpenAI extracts actions with the OpenAI chat completions API.
type OpenAI struct {
	client       *http.Client
	apiKey       string
	baseURL      string
	model        string
	initialDelay time.Duration
	maxBodyBytes int64
}

// Ensure OpenAI implements domain.Extractor interface.
var _ domain.Extractor = (*OpenAI)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type openaiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// NewOpenAI creates an OpenAI extractor. An empty baseURL uses the public API.
func NewOpenAI(apiKey, baseURL, model string) *OpenAI {
	if baseURL == "" {
		baseURL = openaiBaseURL
	}
	if model == "" {
		model = domain.DefaultModel
	}
	return &OpenAI{
		client:       &http.Client{},
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		model:        model,
		initialDelay: openaiInitialDelay,
		maxBodyBytes: openaiMaxBodyBytes,
	}
}

// Extract sends the transcript to the model and decodes its JSON answer.
// Rate limits and server errors are retried with exponential backoff.
func (c *OpenAI) Extract(ctx context.Context, req domain.ExtractionRequest) (*domain.ExtractionResult, error) {
	if c.apiKey == "" {
		return nil, errors.New("openai API key not set")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(req)},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
		Temperature:    openaiTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := range openaiMaxRetries {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, ...
			delay := c.initialDelay << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		content, retry, err := c.complete(ctx, body)
		if err == nil {
			return Decode([]byte(content))
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !retry {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("max retries (%d) exceeded: %w", openaiMaxRetries, lastErr)
}

// complete performs one request. retry reports whether a failure is transient.
func (c *OpenAI) complete(ctx context.Context, body []byte) (content string, retry bool, err error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", true, fmt.Errorf("HTTP request failed: %w", err)
	}
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	_ = resp.Body.Close()
	if err != nil {
		return "", true, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(respBody)) > c.maxBodyBytes {
		return "", false, fmt.Errorf("response body exceeds %d bytes", c.maxBodyBytes)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr openaiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			err = fmt.Errorf("OpenAI API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		} else {
			err = fmt.Errorf("OpenAI API error (%d): %s", resp.StatusCode, string(respBody))
		}
		retry = resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", retry, err
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return "", false, fmt.Errorf("decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return "", false, errors.New("response has no choices")
	}
	return chat.Choices[0].Message.Content, false, nil
}
