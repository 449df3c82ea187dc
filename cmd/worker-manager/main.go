// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"culturis/internal/common/camunda"
	"culturis/internal/common/config"
	"culturis/internal/common/database"
	"culturis/internal/common/logger"
	"culturis/internal/common/observability"
	"culturis/internal/pipeline"
	"culturis/pkg/registry"

	rcl "culturis/internal/workers/data-access/record-chat-log"
	rc "culturis/internal/workers/grounding/retrieve-context"
	ec "culturis/internal/workers/insights/extract-clusters"
	fi "culturis/internal/workers/insights/fetch-insights"
	cup "culturis/internal/workers/onboarding/create-user-profile"
	pr "culturis/internal/workers/planning/plan-request"
	gr "culturis/internal/workers/reporting/generate-report"
	rr "culturis/internal/workers/routes/refine-route"
	et "culturis/internal/workers/tastes/extract-tastes"
	sv "culturis/internal/workers/venues/score-venues"
)

type stageJob struct {
	taskType string
	handler  worker.JobHandler
}

// stageJobs lists the handlers of every constructed stage. Database stages
// are absent when Postgres is unavailable.
func stageJobs(stages pipeline.Stages) []stageJob {
	jobs := []stageJob{
		{rc.TaskType, stages.Retrieve.Handle},
		{pr.TaskType, stages.Plan.Handle},
		{fi.TaskType, stages.Fetch.Handle},
		{ec.TaskType, stages.Clusters.Handle},
		{gr.TaskType, stages.Report.Handle},
		{sv.TaskType, stages.Venues.Handle},
		{et.TaskType, stages.Tastes.Handle},
		{rr.TaskType, stages.Refine.Handle},
	}
	if stages.ChatLog != nil {
		jobs = append(jobs, stageJob{rcl.TaskType, stages.ChatLog.Handle})
	}
	if stages.Profiles != nil {
		jobs = append(jobs, stageJob{cup.TaskType, stages.Profiles.Handle})
	}
	return jobs
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	obs := observability.New("worker-manager", cfg.Tracing, log)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(ctx)
	}()

	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err == nil {
		err = reg.Validate()
	}
	if err != nil {
		zapLog.Fatal("stage registry invalid", zap.String("path", cfg.Registry.Path), zap.Error(err))
	}

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = database.RetryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, log, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	deps, cleanup, err := pipeline.Connect(context.Background(), cfg, log)
	if err != nil {
		zapLog.Fatal("client initialization failed", zap.Error(err))
	}
	defer cleanup()

	// --- Register stage workers ---
	var workers []*camunda.StageWorker
	for _, job := range stageJobs(pipeline.NewStages(cfg, deps, log)) {
		schema, err := reg.InputSchema(job.taskType)
		if err != nil {
			zapLog.Fatal("stage input schema unavailable", zap.String("taskType", job.taskType), zap.Error(err))
		}
		w := camunda.StartWorker(zeebe.GetClient(), job.taskType, config.GetWorkerConfig(cfg, job.taskType), schema, job.handler, log)
		if w != nil {
			workers = append(workers, w)
		}
	}
	zapLog.Info("Stage workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())

	healthSrv := &http.Server{Addr: ":8080", Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Health/Metrics server shutdown failed", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
