// Package planner runs a submission end to end: generate, store, notify.
package planner

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "unipath-planner/internal/common/errors"
	"unipath-planner/internal/common/logger"
	"unipath-planner/internal/generator"
	"unipath-planner/internal/models"
	"unipath-planner/internal/store"
)

// LeadNotifier receives every successful submission. Implementations must not
// block.
type LeadNotifier interface {
	Notify(profile models.Profile, plan models.Plan)
}

// Recorder receives per-submission telemetry.
type Recorder interface {
	StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span)
	RecordPlanProcessed(ctx context.Context, status string)
	RecordPlanDuration(ctx context.Context, duration time.Duration, status string)
}

type nopRecorder struct{}

func (nopRecorder) StartSpan(ctx context.Context, _ string, _ ...attribute.KeyValue) (context.Context, trace.Span) {
	return ctx, trace.SpanFromContext(ctx)
}

func (nopRecorder) RecordPlanProcessed(context.Context, string)                {}
func (nopRecorder) RecordPlanDuration(context.Context, time.Duration, string) {}

type Service struct {
	generator generator.Generator
	store     store.Store
	notifier  LeadNotifier
	recorder  Recorder
	logger    logger.Logger
	now       func() time.Time
}

func NewService(gen generator.Generator, st store.Store, n LeadNotifier, log logger.Logger) *Service {
	return &Service{
		generator: gen,
		store:     st,
		notifier:  n,
		recorder:  nopRecorder{},
		logger:    log.WithFields(map[string]interface{}{"component": "planner"}),
		now:       time.Now,
	}
}

// WithRecorder sets the telemetry sink and returns s.
func (s *Service) WithRecorder(r Recorder) *Service {
	if r != nil {
		s.recorder = r
	}
	return s
}

// Submit generates a plan for profile. On failure nothing is stored and no
// notification is sent. A storage failure is logged and the record is still
// returned.
func (s *Service) Submit(ctx context.Context, profile models.Profile) (rec store.Record, err error) {
	start := time.Now()
	ctx, span := s.recorder.StartSpan(ctx, "planner.Submit",
		attribute.Bool("newEngineering", profile.IsNewEngineering))
	defer func() {
		status := "success"
		if err != nil {
			status = string(apperrors.CodeOf(err))
			span.SetStatus(codes.Error, status)
		} else {
			span.SetAttributes(attribute.String("planId", rec.ID))
		}
		span.End()
		s.recorder.RecordPlanProcessed(ctx, status)
		s.recorder.RecordPlanDuration(ctx, time.Since(start), status)
	}()

	if err := profile.Validate(); err != nil {
		return store.Record{}, err
	}

	p, err := s.generator.Generate(ctx, profile)
	if err != nil {
		return store.Record{}, err
	}

	rec = store.Record{
		ID:        store.NewID(),
		Profile:   profile,
		Plan:      p,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Save(ctx, rec); err != nil {
		s.logger.Warn("plan record not saved", map[string]interface{}{
			"planId": rec.ID,
			"error":  apperrors.NewStorageError("save", err),
		})
	}

	s.notifier.Notify(profile, p)

	s.logger.Info("plan submitted", map[string]interface{}{
		"planId":         rec.ID,
		"recommendation": p.ProductRecommendation,
	})
	return rec, nil
}

// Lookup returns a stored record, or PLAN_NOT_FOUND.
func (s *Service) Lookup(ctx context.Context, id string) (store.Record, error) {
	rec, err := s.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return store.Record{}, apperrors.NewPlanNotFoundError(id)
	}
	if err != nil {
		return store.Record{}, apperrors.NewStorageError("get", err)
	}
	return rec, nil
}

// Ready reports whether the store answers.
func (s *Service) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}
