// internal/generator/gemini.go
package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"unipath-planner/internal/plan"

	"google.golang.org/genai"
)

const GeminiName = "gemini"

// GeminiBackend requests schema-constrained structured output through the
// Gemini API.
type GeminiBackend struct {
	client *genai.Client
	model  string
	schema *genai.Schema
}

type GeminiOptions struct {
	APIKey  string
	Model   string
	BaseURL string
}

// NewGeminiBackend builds the backend. Without an API key the backend is
// returned unconfigured so the failure surfaces per request.
func NewGeminiBackend(ctx context.Context, opts GeminiOptions, httpClient *http.Client) (*GeminiBackend, error) {
	b := &GeminiBackend{
		model:  opts.Model,
		schema: toGenaiSchema(plan.Schema(), plan.KeyOrder),
	}
	if b.model == "" {
		b.model = "gemini-2.5-flash"
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return b, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      opts.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: opts.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	b.client = client
	return b, nil
}

func (b *GeminiBackend) Name() string { return GeminiName }

func (b *GeminiBackend) Configured() bool { return b.client != nil }

func (b *GeminiBackend) Complete(ctx context.Context, prompt Prompt) (string, error) {
	if !b.Configured() {
		return "", ErrNotConfigured
	}

	resp, err := b.client.Models.GenerateContent(ctx, b.model,
		genai.Text(prompt.User),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    b.schema,
		},
	)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &StatusError{Code: apiErr.Code, Status: apiErr.Status, Body: apiErr.Message}
		}
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return resp.Text(), nil
}

// toGenaiSchema converts the JSON-schema map produced by plan.Schema.
// order ranks property names; unknown names follow alphabetically.
func toGenaiSchema(m map[string]interface{}, order []string) *genai.Schema {
	s := &genai.Schema{}
	switch m["type"] {
	case "object":
		s.Type = genai.TypeObject
	case "array":
		s.Type = genai.TypeArray
	case "number":
		s.Type = genai.TypeNumber
	case "boolean":
		s.Type = genai.TypeBoolean
	default:
		s.Type = genai.TypeString
	}

	if enum, ok := m["enum"].([]string); ok {
		s.Enum = enum
	}
	if req, ok := m["required"].([]string); ok {
		s.Required = req
	}
	if items, ok := m["items"].(map[string]interface{}); ok {
		s.Items = toGenaiSchema(items, order)
	}
	if props, ok := m["properties"].(map[string]interface{}); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if child, ok := raw.(map[string]interface{}); ok {
				s.Properties[name] = toGenaiSchema(child, order)
			}
		}
		s.PropertyOrdering = orderedKeys(s.Properties, order)
	}
	return s
}

func orderedKeys(props map[string]*genai.Schema, order []string) []string {
	rank := make(map[string]int, len(order))
	for i, k := range order {
		rank[k] = i
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, iok := rank[keys[i]]
		rj, jok := rank[keys[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}
