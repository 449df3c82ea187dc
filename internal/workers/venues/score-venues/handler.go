// internal/workers/venues/score-venues/handler.go
package scorevenues

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "culturis/internal/common/errors"
	"culturis/internal/common/logger"
	"culturis/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "score-venues"
)

type Handler struct {
	config     *Config
	scorer     *Scorer
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

// NewHandler builds the stage. rnd is the jitter source, nil for math/rand.
func NewHandler(config *Config, rnd func() float64, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		scorer:     NewScorer(config, rnd),
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
	if len(input.Tastes) == 0 {
		return nil, apperrors.NewValidationError("No cultural tastes provided")
	}
	start := time.Now()

	location := input.Location
	if location == "" {
		location = h.config.DefaultLocation
	}
	coords := h.config.DefaultCoordinates
	if input.Coordinates != nil {
		coords = *input.Coordinates
	}

	results := input.Insights.Entities()
	selection := h.scorer.ScoreAndSelect(results, input.Tastes, location, coords)
	categories, filters := CategorizeTastes(input.Tastes)

	h.logger.WithContext(ctx).Info("venues scored", map[string]interface{}{
		"entityCount":  len(results),
		"venueCount":   len(selection.Venues),
		"distribution": selection.Distribution,
		"location":     location,
		"durationMs":   time.Since(start).Milliseconds(),
	})

	return &Output{
		Venues:                selection.Venues,
		TotalFound:            len(selection.Venues),
		VenueTypeDistribution: selection.Distribution,
		TasteCategories:       categories,
		SuggestedFilters:      filters,
		TasteURNs:             TasteURNs(input.Tastes),
	}, nil
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
