// internal/pipeline/connect.go
package pipeline

import (
	"context"
	"time"

	"culturis/internal/common/config"
	"culturis/internal/common/database"
	"culturis/internal/common/llm"
	"culturis/internal/common/logger"
	"culturis/internal/common/qloo"
)

// Connect builds the shared clients from cfg. Only Elasticsearch is
// required to construct; an unreachable Redis disables the response cache
// and an unreachable Postgres disables chat logs and onboarding. The
// returned func closes whatever was opened.
func Connect(ctx context.Context, cfg *config.Config, log logger.Logger) (Dependencies, func(), error) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		return Dependencies{}, cleanup, err
	}
	if err := database.RetryWithBackoff(func() error { return es.Ping(ctx) }, 5, 2*time.Second, log, "Elasticsearch connection"); err != nil {
		log.Warn("similarity index unreachable, grounding will be empty", map[string]interface{}{"error": err.Error()})
	}

	var cache qloo.Cache
	redis := database.NewRedis(cfg.Database.Redis)
	if err := database.RetryWithBackoff(func() error { return redis.Ping(ctx) }, 3, time.Second, log, "Redis connection"); err != nil {
		log.Warn("response cache disabled", map[string]interface{}{"error": err.Error()})
		_ = redis.Close()
	} else {
		cache = redis
		closers = append(closers, redis.Close)
	}

	deps := Dependencies{
		Model:    llm.New(cfg.APIs.OpenAI, nil),
		Searcher: es,
		Fetcher:  qloo.NewClient(cfg.APIs.Qloo, cache, log),
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		log.Warn("relational store disabled", map[string]interface{}{"error": err.Error()})
		return deps, cleanup, nil
	}
	err = database.RetryWithBackoff(func() error { return pg.Ping(ctx) }, 5, 2*time.Second, log, "PostgreSQL connection")
	if err == nil {
		err = pg.EnsureSchema(ctx)
	}
	if err != nil {
		log.Warn("relational store disabled", map[string]interface{}{"error": err.Error()})
		_ = pg.Close()
		return deps, cleanup, nil
	}
	closers = append(closers, pg.Close)
	deps.DB = pg.DB

	return deps, cleanup, nil
}
