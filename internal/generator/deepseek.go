// internal/generator/deepseek.go
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	commonhttp "unipath-planner/internal/common/http"
)

const DeepSeekName = "deepseek"

// DeepSeekBackend calls an OpenAI-compatible chat completions endpoint in
// JSON mode. The shape of the returned object is advisory.
type DeepSeekBackend struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	client      *commonhttp.Client
}

type DeepSeekOptions struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
}

func NewDeepSeekBackend(opts DeepSeekOptions, client *commonhttp.Client) *DeepSeekBackend {
	return &DeepSeekBackend{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		apiKey:      strings.TrimSpace(opts.APIKey),
		model:       opts.Model,
		temperature: opts.Temperature,
		client:      client,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (b *DeepSeekBackend) Name() string { return DeepSeekName }

func (b *DeepSeekBackend) Configured() bool { return b.apiKey != "" }

func (b *DeepSeekBackend) Complete(ctx context.Context, prompt Prompt) (string, error) {
	if !b.Configured() {
		return "", ErrNotConfigured
	}

	reqBody := chatRequest{
		Model: b.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		Temperature:    b.temperature,
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	resp, err := b.client.PostJSON(ctx, b.baseURL+"/chat/completions", reqBody, map[string]string{
		"Authorization": "Bearer " + b.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("deepseek request: %w", err)
	}
	if !resp.OK() {
		return "", &StatusError{Code: resp.StatusCode, Body: string(resp.Body)}
	}

	var out chatResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return "", fmt.Errorf("decode deepseek envelope: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("deepseek error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("deepseek returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}
