package generateplan

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "unipath-planner/internal/common/errors"
	"unipath-planner/internal/common/logger"
	"unipath-planner/internal/common/metrics"
	"unipath-planner/internal/models"
	"unipath-planner/internal/store"
)

const TaskType = "generate-plan"

// Planner is the part of planner.Service the worker needs.
type Planner interface {
	Submit(ctx context.Context, profile models.Profile) (store.Record, error)
}

type Handler struct {
	config  *Config
	planner Planner
	logger  logger.Logger
	errors  *apperrors.ErrorHandler
}

func NewHandler(config *Config, p Planner, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		planner: p,
		logger:  l,
		errors:  apperrors.NewErrorHandler(l).WithMaxRetries(config.MaxRetries),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, apperrors.NewInvalidProfileError([]string{"profile"}))
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}
	h.completeJob(ctx, client, job, output)
}

// Execute generates and stores a plan. Errors are StandardErrors.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	rec, err := h.planner.Submit(ctx, input.Profile)
	if err != nil {
		return nil, err
	}
	return &Output{
		PlanID:                rec.ID,
		Plan:                  rec.Plan,
		ProductRecommendation: rec.Plan.ProductRecommendation,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.CodeOf(err))).Inc()
	h.errors.HandleJobError(ctx, client, job, err)
}
