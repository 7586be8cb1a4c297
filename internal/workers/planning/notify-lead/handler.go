package notifylead

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"unipath-planner/internal/common/logger"
	"unipath-planner/internal/common/metrics"
	"unipath-planner/internal/models"
)

const TaskType = "notify-lead"

// Sender delivers a lead synchronously.
type Sender interface {
	Send(ctx context.Context, profile models.Profile, plan models.Plan) (bool, error)
	Channel() string
}

// Handler announces a lead. The job always completes: a lost notification
// must not stall the process instance.
type Handler struct {
	config *Config
	sender Sender
	logger logger.Logger
}

func NewHandler(config *Config, sender Sender, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		sender: sender,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		h.logger.Warn("unreadable lead variables", map[string]interface{}{"error": err})
		h.completeJob(ctx, client, job, &Output{Channel: h.sender.Channel()})
		return
	}

	h.completeJob(ctx, client, job, h.Execute(ctx, &input))
}

// Execute never fails; a delivery error is logged and reported as not
// notified.
func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	sent, err := h.sender.Send(ctx, input.Profile, input.Plan)
	if err != nil {
		h.logger.Warn("lead not delivered", map[string]interface{}{
			"error":   err,
			"student": input.Profile.Name,
		})
	}
	return &Output{Notified: sent, Channel: h.sender.Channel()}
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
