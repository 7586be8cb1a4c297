// internal/generator/factory.go
package generator

import (
	"context"
	"fmt"

	"unipath-planner/internal/common/config"
	commonhttp "unipath-planner/internal/common/http"
)

// NewBackend selects the backend named by cfg.Provider.
func NewBackend(ctx context.Context, cfg config.GenerationConfig) (Backend, error) {
	timeout := config.GetDuration(cfg.Timeout)

	switch cfg.Provider {
	case config.ProviderDeepSeek, "":
		return NewDeepSeekBackend(DeepSeekOptions{
			BaseURL:     cfg.DeepSeek.BaseURL,
			APIKey:      cfg.DeepSeek.APIKey,
			Model:       cfg.DeepSeek.Model,
			Temperature: cfg.DeepSeek.Temperature,
		}, commonhttp.NewClient(timeout)), nil
	case config.ProviderGemini:
		b, err := NewGeminiBackend(ctx, GeminiOptions{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			BaseURL: cfg.Gemini.BaseURL,
		}, nil)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}
