// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"culturis/internal/common/config"
	apperrors "culturis/internal/common/errors"
	"culturis/internal/common/logger"
	"culturis/internal/common/metrics"
	"culturis/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// StageWorker is an open job worker for one pipeline stage.
type StageWorker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// CheckVariables validates the job variables against schema. A nil schema
// accepts everything.
func CheckVariables(schema *validation.Schema, job entities.Job) error {
	if schema == nil {
		return nil
	}
	variables := job.Variables
	if variables == "" {
		variables = "{}"
	}
	result, err := schema.ValidateJSON(variables)
	if err != nil {
		return apperrors.NewValidationError("unreadable job variables: " + err.Error())
	}
	if !result.Valid {
		return apperrors.NewValidationError("invalid job variables: " + result.Summary())
	}
	return nil
}

// Guard wraps a stage handler with the input schema check and the active
// jobs gauge. Rejected jobs are thrown as VALIDATION_ERROR and never reach
// the handler.
func Guard(taskType string, schema *validation.Schema, handler worker.JobHandler, log logger.Logger) worker.JobHandler {
	errHandler := apperrors.NewErrorHandler(log)
	return func(client worker.JobClient, job entities.Job) {
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()

		if err := CheckVariables(schema, job); err != nil {
			errHandler.HandleJobError(context.Background(), client, job, err)
			return
		}
		handler(client, job)
	}
}

// StartWorker opens a job worker for taskType. Disabled stages are skipped
// and yield nil.
func StartWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, schema *validation.Schema, handler worker.JobHandler, log logger.Logger) *StageWorker {
	log = log.WithFields(map[string]interface{}{"taskType": taskType})
	if !wcfg.Enabled {
		log.Info("worker disabled", nil)
		return nil
	}

	maxJobs := wcfg.MaxJobsActive
	if maxJobs <= 0 {
		maxJobs = 10
	}

	builder := client.NewJobWorker().
		JobType(taskType).
		Handler(Guard(taskType, schema, handler, log)).
		MaxJobsActive(maxJobs).
		Name(fmt.Sprintf("culturis-%s", taskType))
	if wcfg.Timeout > 0 {
		builder = builder.Timeout(time.Duration(wcfg.Timeout) * time.Millisecond)
	}
	jobWorker := builder.Open()

	log.Info("worker started", map[string]interface{}{
		"maxJobsActive":  maxJobs,
		"timeoutMs":      wcfg.Timeout,
		"schemaEnforced": schema != nil,
	})

	return &StageWorker{worker: jobWorker, logger: log, taskType: taskType}
}

// Stop closes the worker and waits for in-flight jobs.
func (w *StageWorker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}
