// internal/workers/data-access/record-chat-log/handler.go
package recordchatlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	apperrors "culturis/internal/common/errors"
	"culturis/internal/common/logger"
	"culturis/internal/common/metrics"
	"culturis/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "record-chat-log"
)

// Handler records chat exchanges. Recording is best effort: a database
// failure is logged and reported as recorded=false, never as a job failure.
type Handler struct {
	config     *Config
	store      *Store
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		store:      NewStore(db),
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

	var qloo interface{} = input.QlooData
	if len(input.QlooData) == 0 {
		qloo = map[string]interface{}{}
	}

	saved, err := h.store.Insert(ctx, models.ChatLog{
		UserQuery:      input.UserQuery,
		PlannerResult:  input.Plan,
		QlooResponse:   qloo,
		PrettyResponse: input.Pretty,
	})
	if err != nil {
		h.logger.WithContext(ctx).Warn("chat log not recorded", map[string]interface{}{
			"error": err.Error(),
		})
		return &Output{Recorded: false}, nil
	}

	h.logger.WithContext(ctx).Info("chat log recorded", map[string]interface{}{
		"chatLogId":  saved.ID,
		"durationMs": time.Since(start).Milliseconds(),
	})

	return &Output{ChatLogID: saved.ID, Recorded: true}, nil
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
