// internal/workers/tastes/extract-tastes/handler.go
package extracttastes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "culturis/internal/common/errors"
	"culturis/internal/common/logger"
	"culturis/internal/common/metrics"
	"culturis/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "extract-tastes"
)

type Handler struct {
	config     *Config
	primary    Extractor
	fallback   Extractor
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

// NewHandler extracts with the model and falls back to keywords. A nil
// model leaves keyword extraction only.
func NewHandler(config *Config, model Completer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	h := &Handler{
		config:     config,
		fallback:   KeywordExtractor{},
		logger:     log,
		errHandler: apperrors.NewErrorHandler(log),
	}
	if model != nil {
		h.primary = NewModelExtractor(model, config.Temperature, config.MaxTokens)
	}
	return h
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
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, apperrors.NewValidationError("Empty message")
	}
	location := input.Location
	if location == "" {
		location = h.config.DefaultLocation
	}

	start := time.Now()
	strategy, tastes := h.extract(ctx, message, input.ExistingTastes, location)

	h.logger.WithContext(ctx).Info("tastes extracted", map[string]interface{}{
		"strategy":   strategy,
		"tasteCount": len(tastes),
		"durationMs": time.Since(start).Milliseconds(),
	})

	return &Output{
		ExtractedTastes: tastes,
		Message:         message,
		Location:        location,
		Strategy:        strategy,
	}, nil
}

func (h *Handler) extract(ctx context.Context, message string, existing []string, location string) (string, []models.TasteTag) {
	if h.primary != nil {
		tastes, err := h.primary.Extract(ctx, message, existing, location)
		if err == nil {
			return h.primary.Name(), tastes
		}
		h.logger.WithContext(ctx).Warn("falling back to keyword taste extraction", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// keyword extraction cannot fail
	tastes, _ := h.fallback.Extract(ctx, message, existing, location)
	return h.fallback.Name(), tastes
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
