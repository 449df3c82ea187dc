// internal/workers/insights/fetch-insights/handler.go
package fetchinsights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "culturis/internal/common/errors"
	"culturis/internal/common/logger"
	"culturis/internal/common/metrics"
	"culturis/internal/common/qloo"
	"culturis/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "fetch-insights"
)

// Fetcher executes a planned request against the recommendation API.
type Fetcher interface {
	Get(ctx context.Context, endpoint string, params map[string]interface{}) (*models.InsightsResponse, error)
}

type Handler struct {
	config     *Config
	fetcher    Fetcher
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, fetcher Fetcher, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		fetcher:    fetcher,
		logger:     log,
		errHandler: apperrors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, apperrors.NewValidationError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Plan.Endpoint == "" {
		return nil, apperrors.NewValidationError("plan has no endpoint")
	}

	start := time.Now()
	resp, err := h.fetcher.Get(ctx, input.Plan.Endpoint, input.Plan.Params)
	if err != nil {
		status := 0
		var upstream *qloo.UpstreamError
		if errors.As(err, &upstream) {
			status = upstream.StatusCode
		}
		return nil, apperrors.NewUpstreamAPIError(status, err)
	}

	h.logger.WithContext(ctx).Info("insights fetched", map[string]interface{}{
		"endpoint":    input.Plan.Endpoint,
		"entityCount": len(resp.Entities()),
		"durationMs":  time.Since(start).Milliseconds(),
	})

	return &Output{QlooData: resp}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
	})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	h.errHandler.HandleJobError(context.Background(), client, job, err)
}

// Execute runs the stage without a Zeebe job, as the HTTP API does.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
