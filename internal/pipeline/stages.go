// internal/pipeline/stages.go
package pipeline

import (
	"database/sql"
	"math/rand"
	"time"

	"culturis/internal/common/config"
	"culturis/internal/common/llm"
	"culturis/internal/common/logger"
	recordchatlog "culturis/internal/workers/data-access/record-chat-log"
	retrievecontext "culturis/internal/workers/grounding/retrieve-context"
	extractclusters "culturis/internal/workers/insights/extract-clusters"
	fetchinsights "culturis/internal/workers/insights/fetch-insights"
	createuserprofile "culturis/internal/workers/onboarding/create-user-profile"
	planrequest "culturis/internal/workers/planning/plan-request"
	generatereport "culturis/internal/workers/reporting/generate-report"
	refineroute "culturis/internal/workers/routes/refine-route"
	extracttastes "culturis/internal/workers/tastes/extract-tastes"
	scorevenues "culturis/internal/workers/venues/score-venues"
)

// Dependencies are the clients shared by all stages. DB may be nil.
type Dependencies struct {
	Model    *llm.Client
	Searcher retrievecontext.VectorSearcher
	Fetcher  fetchinsights.Fetcher
	DB       *sql.DB
	Random   func() float64
}

// stageTimeout returns the configured timeout of a stage, or def.
func stageTimeout(cfg *config.Config, taskType string, def time.Duration) time.Duration {
	if w, ok := cfg.Workers[taskType]; ok && w.Timeout > 0 {
		return time.Duration(w.Timeout) * time.Millisecond
	}
	return def
}

// NewStages builds every stage handler from the application config.
func NewStages(cfg *config.Config, deps Dependencies, log logger.Logger) Stages {
	retrieveCfg := retrievecontext.LoadConfig()
	retrieveCfg.Timeout = stageTimeout(cfg, retrievecontext.TaskType, retrieveCfg.Timeout)
	if cfg.Retriever.TagIndex != "" {
		retrieveCfg.TagIndex = cfg.Retriever.TagIndex
	}
	if cfg.Retriever.FewShotIndex != "" {
		retrieveCfg.FewShotIndex = cfg.Retriever.FewShotIndex
	}
	if cfg.Retriever.K > 0 {
		retrieveCfg.K = cfg.Retriever.K
	}

	planCfg := planrequest.LoadConfig()
	planCfg.Timeout = stageTimeout(cfg, planrequest.TaskType, planCfg.Timeout)

	fetchCfg := fetchinsights.LoadConfig()
	fetchCfg.Timeout = stageTimeout(cfg, fetchinsights.TaskType, fetchCfg.Timeout)

	clustersCfg := extractclusters.LoadConfig()
	clustersCfg.Timeout = stageTimeout(cfg, extractclusters.TaskType, clustersCfg.Timeout)

	reportCfg := generatereport.LoadConfig()
	reportCfg.Timeout = stageTimeout(cfg, generatereport.TaskType, reportCfg.Timeout)

	venuesCfg := scorevenues.LoadConfig()
	venuesCfg.Timeout = stageTimeout(cfg, scorevenues.TaskType, venuesCfg.Timeout)
	if cfg.Pipeline.VenueCap > 0 {
		venuesCfg.Cap = cfg.Pipeline.VenueCap
	}
	if len(cfg.Pipeline.DefaultCoordinates) == 2 {
		venuesCfg.DefaultCoordinates = [2]float64{cfg.Pipeline.DefaultCoordinates[0], cfg.Pipeline.DefaultCoordinates[1]}
	}

	tastesCfg := extracttastes.LoadConfig()
	tastesCfg.Timeout = stageTimeout(cfg, extracttastes.TaskType, tastesCfg.Timeout)

	refineCfg := refineroute.LoadConfig()
	refineCfg.Timeout = stageTimeout(cfg, refineroute.TaskType, refineCfg.Timeout)

	if loc := cfg.Pipeline.DefaultLocation; loc != "" {
		planCfg.DefaultLocation = loc
		venuesCfg.DefaultLocation = loc
		tastesCfg.DefaultLocation = loc
	}

	rnd := deps.Random
	if rnd == nil {
		rnd = rand.Float64
	}

	// A nil client must stay a nil interface so the taste stage falls back
	// to keyword extraction.
	var completer extracttastes.Completer
	if deps.Model != nil {
		completer = deps.Model
	}

	stages := Stages{
		Retrieve: retrievecontext.NewHandler(retrieveCfg, deps.Model, deps.Searcher, log),
		Plan:     planrequest.NewHandler(planCfg, deps.Model, log),
		Fetch:    fetchinsights.NewHandler(fetchCfg, deps.Fetcher, log),
		Clusters: extractclusters.NewHandler(clustersCfg, log),
		Report:   generatereport.NewHandler(reportCfg, log),
		Venues:   scorevenues.NewHandler(venuesCfg, rnd, log),
		Tastes:   extracttastes.NewHandler(tastesCfg, completer, log),
		Refine:   refineroute.NewHandler(refineCfg, log),
	}

	if deps.DB != nil {
		chatCfg := recordchatlog.LoadConfig()
		chatCfg.Timeout = stageTimeout(cfg, recordchatlog.TaskType, chatCfg.Timeout)
		stages.ChatLog = recordchatlog.NewHandler(chatCfg, deps.DB, log)

		profileCfg := createuserprofile.LoadConfig()
		profileCfg.Timeout = stageTimeout(cfg, createuserprofile.TaskType, profileCfg.Timeout)
		stages.Profiles = createuserprofile.NewHandler(profileCfg, deps.DB, log)
	}

	return stages
}
