// internal/workers/grounding/retrieve-context/handler.go
package retrievecontext

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
	TaskType = "retrieve-context"
)

type Handler struct {
	config     *Config
	retriever  *Retriever
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, embedder Embedder, searcher VectorSearcher, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		retriever:  NewRetriever(embedder, searcher, config.TagIndex, config.FewShotIndex, log),
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
	start := time.Now()
	k := input.K
	if k <= 0 {
		k = h.config.K
	}

	tags, shots := h.retriever.Retrieve(ctx, input.Query, k)

	h.logger.WithContext(ctx).Info("grounding context built", map[string]interface{}{
		"k":            k,
		"tagCount":     len(tags),
		"fewShotCount": len(shots),
		"durationMs":   time.Since(start).Milliseconds(),
	})

	return &Output{
		Context:         BuildContext(tags, shots),
		TagSnippets:     tags,
		FewShotSnippets: shots,
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

// Execute runs the stage without a Zeebe job, as the HTTP API does.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
