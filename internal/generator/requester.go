// internal/generator/requester.go
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "unipath-planner/internal/common/errors"
	"unipath-planner/internal/common/logger"
	"unipath-planner/internal/common/metrics"
	"unipath-planner/internal/models"
	"unipath-planner/internal/plan"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("unipath-planner/generator")

// Generator produces a plan for a profile.
type Generator interface {
	Generate(ctx context.Context, profile models.Profile) (models.Plan, error)
}

// Requester turns a profile into a validated, sanitized plan using a single
// backend call. It never retries.
type Requester struct {
	backend Backend
	timeout time.Duration
	logger  logger.Logger
}

func NewRequester(backend Backend, timeout time.Duration, log logger.Logger) *Requester {
	return &Requester{
		backend: backend,
		timeout: timeout,
		logger:  log.WithFields(map[string]interface{}{"backend": backend.Name()}),
	}
}

// Backend exposes the configured backend, e.g. for readiness reporting.
func (r *Requester) Backend() Backend { return r.backend }

func (r *Requester) Generate(ctx context.Context, profile models.Profile) (models.Plan, error) {
	ctx, span := tracer.Start(ctx, "generator.Generate")
	span.SetAttributes(attribute.String("backend", r.backend.Name()))
	defer span.End()

	start := time.Now()
	p, err := r.generate(ctx, profile)
	metrics.PlanGenerationDuration.WithLabelValues(r.backend.Name()).Observe(time.Since(start).Seconds())

	if err != nil {
		stdErr := apperrors.AsStandardError(err)
		metrics.PlanGenerations.WithLabelValues(r.backend.Name(), metrics.OutcomeFailure).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, string(stdErr.Code))
		r.logger.Error("plan generation failed", map[string]interface{}{
			"code":     stdErr.Code,
			"details":  stdErr.Details,
			"duration": time.Since(start).String(),
		})
		return models.Plan{}, stdErr
	}

	metrics.PlanGenerations.WithLabelValues(r.backend.Name(), metrics.OutcomeSuccess).Inc()
	r.logger.Info("plan generated", map[string]interface{}{
		"recommendation": p.ProductRecommendation,
		"duration":       time.Since(start).String(),
	})
	return p, nil
}

func (r *Requester) generate(ctx context.Context, profile models.Profile) (models.Plan, error) {
	if err := profile.Validate(); err != nil {
		return models.Plan{}, err
	}
	if !r.backend.Configured() {
		return models.Plan{}, apperrors.NewConfigurationError(r.backend.Name() + ": API key not configured")
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	text, err := r.backend.Complete(ctx, NewPrompt(profile))
	if err != nil {
		return models.Plan{}, classify(r.backend.Name(), err)
	}

	raw, err := DecodeObject(text)
	if err != nil {
		return models.Plan{}, apperrors.NewUpstreamError(err)
	}
	if err := plan.Validate(raw); err != nil {
		return models.Plan{}, err
	}
	return plan.Sanitize(raw), nil
}

// classify maps a backend failure onto the error taxonomy.
func classify(backend string, err error) error {
	if errors.Is(err, ErrNotConfigured) {
		return apperrors.NewConfigurationError(backend + ": API key not configured")
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.credentialRejected():
			return apperrors.NewConfigurationError(statusErr.Error()).WithMetadata("status", statusErr.Code)
		case statusErr.quotaExhausted():
			return apperrors.NewQuotaExhaustedError(statusErr.Error()).WithMetadata("status", statusErr.Code)
		default:
			return apperrors.NewUpstreamStatusError(statusErr.Code, statusErr.Body)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewUpstreamError(fmt.Errorf("%s timed out: %w", backend, err))
	}
	return apperrors.NewUpstreamError(err)
}

// DecodeObject strips Markdown fences and surrounding prose from a model
// reply and decodes the outermost JSON object.
func DecodeObject(text string) (map[string]interface{}, error) {
	body := strings.TrimSpace(text)
	if body == "" {
		return nil, errors.New("empty completion")
	}

	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```JSON")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	}

	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start == -1 || end < start {
		return nil, errors.New("completion contains no JSON object")
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(body[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("decode completion: %w", err)
	}
	return raw, nil
}
