// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"encoding/json"
	"strings"

	"culturis/internal/common/config"
	apperrors "culturis/internal/common/errors"
	"culturis/internal/common/logger"
	"culturis/internal/common/observability"
	"culturis/internal/models"
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

	"github.com/samber/lo"
)

// Stages holds one handler per pipeline stage. The same handlers serve Zeebe
// jobs in the worker manager. ChatLog and Profiles may be nil when no
// database is configured.
type Stages struct {
	Retrieve *retrievecontext.Handler
	Plan     *planrequest.Handler
	Fetch    *fetchinsights.Handler
	Clusters *extractclusters.Handler
	Report   *generatereport.Handler
	Venues   *scorevenues.Handler
	Tastes   *extracttastes.Handler
	Refine   *refineroute.Handler
	ChatLog  *recordchatlog.Handler
	Profiles *createuserprofile.Handler
}

type Options struct {
	DefaultLocation string
	ChatClusters    int
	InsightClusters int
	SearchLimit     int
}

func OptionsFromConfig(cfg config.PipelineConfig) Options {
	opts := Options{
		DefaultLocation: cfg.DefaultLocation,
		ChatClusters:    cfg.ChatClusters,
		InsightClusters: cfg.InsightClusters,
		SearchLimit:     10,
	}
	if opts.DefaultLocation == "" {
		opts.DefaultLocation = "New York, NY"
	}
	if opts.ChatClusters <= 0 {
		opts.ChatClusters = 3
	}
	if opts.InsightClusters <= 0 {
		opts.InsightClusters = 5
	}
	return opts
}

// Pipeline runs the request flows of the HTTP API by chaining stage handlers
// in process.
type Pipeline struct {
	stages Stages
	opts   Options
	obs    *observability.Observability
	logger logger.Logger
}

func New(stages Stages, opts Options, obs *observability.Observability, log logger.Logger) *Pipeline {
	if obs == nil {
		obs = observability.NewNoop()
	}
	return &Pipeline{
		stages: stages,
		opts:   opts,
		obs:    obs,
		logger: log.WithFields(map[string]interface{}{"component": "pipeline"}),
	}
}

func run[I, O any](ctx context.Context, p *Pipeline, stage string, exec func(context.Context, *I) (*O, error), input *I) (*O, error) {
	ctx, done := p.obs.TrackStage(ctx, stage)
	out, err := exec(ctx, input)
	done(err)
	return out, err
}

type ChatResult struct {
	Plan     models.PlannedRequest
	Package  models.InsightPackage
	Insights *models.InsightsResponse
	Pretty   string
}

// Chat answers a free-text query: retrieve, plan, fetch, cluster, report.
// Grounding and chat-log failures are logged and do not fail the request.
func (p *Pipeline) Chat(ctx context.Context, query string) (*ChatResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewValidationError("Empty query")
	}

	grounding := ""
	retrieved, err := run(ctx, p, retrievecontext.TaskType, p.stages.Retrieve.Execute, &retrievecontext.Input{Query: query})
	if err != nil {
		p.logger.WithContext(ctx).Warn("grounding unavailable", map[string]interface{}{"error": err.Error()})
	} else {
		grounding = retrieved.Context
	}

	planned, err := run(ctx, p, planrequest.TaskType, p.stages.Plan.Execute, &planrequest.Input{Query: query, Context: grounding})
	if err != nil {
		return nil, err
	}

	fetched, err := run(ctx, p, fetchinsights.TaskType, p.stages.Fetch.Execute, &fetchinsights.Input{Plan: planned.Plan})
	if err != nil {
		return nil, err
	}

	clustered, err := run(ctx, p, extractclusters.TaskType, p.stages.Clusters.Execute, &extractclusters.Input{
		UserPrompt: query,
		Params:     planned.Plan.Params,
		Insights:   *fetched.QlooData,
		K:          p.opts.ChatClusters,
	})
	if err != nil {
		return nil, err
	}

	report, err := run(ctx, p, generatereport.TaskType, p.stages.Report.Execute, &generatereport.Input{
		UserQuery:      query,
		InsightPackage: clustered.InsightPackage,
	})
	if err != nil {
		return nil, err
	}

	p.recordChat(ctx, query, planned.Plan, fetched.QlooData, report.Pretty)

	return &ChatResult{
		Plan:     planned.Plan,
		Package:  clustered.InsightPackage,
		Insights: fetched.QlooData,
		Pretty:   report.Pretty,
	}, nil
}

func (p *Pipeline) recordChat(ctx context.Context, query string, plan models.PlannedRequest, insights *models.InsightsResponse, pretty string) {
	if p.stages.ChatLog == nil {
		return
	}
	raw, err := json.Marshal(insights)
	if err != nil {
		p.logger.WithContext(ctx).Warn("chat log not recorded", map[string]interface{}{"error": err.Error()})
		return
	}
	_, _ = run(ctx, p, recordchatlog.TaskType, p.stages.ChatLog.Execute, &recordchatlog.Input{
		UserQuery: query,
		Plan:      plan,
		QlooData:  raw,
		Pretty:    pretty,
	})
}

func (p *Pipeline) fetch(ctx context.Context, params map[string]interface{}) (*models.InsightsResponse, error) {
	out, err := run(ctx, p, fetchinsights.TaskType, p.stages.Fetch.Execute, &fetchinsights.Input{
		Plan: models.PlannedRequest{Endpoint: planrequest.InsightsEndpoint, Params: params},
	})
	if err != nil {
		return nil, err
	}
	return out.QlooData, nil
}

// Search returns up to SearchLimit places in New York whose name, tags or
// keywords contain q.
func (p *Pipeline) Search(ctx context.Context, q string) ([]models.RawEntity, error) {
	needle := strings.ToLower(strings.TrimSpace(q))
	if needle == "" {
		return nil, apperrors.NewValidationError("Empty search query")
	}

	resp, err := p.fetch(ctx, map[string]interface{}{
		"filter.type":            "urn:entity:place",
		"filter.location.query":  "New York, NY",
		"filter.location.radius": "50000",
		"limit":                  20,
	})
	if err != nil {
		return nil, err
	}

	matches := lo.Filter(resp.Entities(), func(e models.RawEntity, _ int) bool {
		return entityMentions(&e, needle)
	})
	matches = lo.UniqBy(matches, func(e models.RawEntity) string {
		return e.Identifier() + "|" + e.Name
	})
	if len(matches) > p.opts.SearchLimit {
		matches = matches[:p.opts.SearchLimit]
	}
	return matches, nil
}

func entityMentions(e *models.RawEntity, needle string) bool {
	if strings.Contains(strings.ToLower(e.Name), needle) {
		return true
	}
	if lo.SomeBy(e.Tags, func(t models.EntityTag) bool {
		return strings.Contains(strings.ToLower(t.Name), needle)
	}) {
		return true
	}
	return lo.SomeBy(e.Properties.Keywords, func(kw models.Keyword) bool {
		return strings.Contains(strings.ToLower(kw.Name), needle)
	})
}

type InsightsQuery struct {
	FilterType     string
	LocationQuery  string
	LocationRadius string
	Limit          string
}

type InsightsResult struct {
	Entities []models.RawEntity
	Clusters []models.CulturalCluster
}

// Insights fetches trending entities for a location and clusters them.
func (p *Pipeline) Insights(ctx context.Context, q InsightsQuery) (*InsightsResult, error) {
	params := map[string]interface{}{
		"filter.type":            lo.Ternary(q.FilterType != "", q.FilterType, "urn:entity:place"),
		"filter.location.query":  lo.Ternary(q.LocationQuery != "", q.LocationQuery, p.opts.DefaultLocation),
		"filter.location.radius": lo.Ternary(q.LocationRadius != "", q.LocationRadius, "10000"),
		"limit":                  lo.Ternary(q.Limit != "", q.Limit, "0"),
	}

	resp, err := p.fetch(ctx, params)
	if err != nil {
		return nil, err
	}

	clustered, err := run(ctx, p, extractclusters.TaskType, p.stages.Clusters.Execute, &extractclusters.Input{
		Params:   params,
		Insights: *resp,
		K:        p.opts.InsightClusters,
	})
	if err != nil {
		return nil, err
	}

	entities := resp.Entities()
	if entities == nil {
		entities = []models.RawEntity{}
	}
	return &InsightsResult{Entities: entities, Clusters: clustered.Clusters}, nil
}

// VenuesQuery describes one venue search. A nil Coordinates uses the
// configured map centre.
type VenuesQuery struct {
	Tastes      []models.TasteTag
	Location    string
	Coordinates *[2]float64
}

// Venues fetches places around a location and scores them against tastes.
func (p *Pipeline) Venues(ctx context.Context, q VenuesQuery) (*scorevenues.Output, error) {
	if len(q.Tastes) == 0 {
		return nil, apperrors.NewValidationError("No cultural tastes provided")
	}
	location := lo.Ternary(q.Location != "", q.Location, p.opts.DefaultLocation)

	resp, err := p.fetch(ctx, map[string]interface{}{
		"filter.type":            "urn:entity:place",
		"filter.location.query":  location,
		"filter.location.radius": "10000",
		"limit":                  "20",
	})
	if err != nil {
		return nil, err
	}

	return run(ctx, p, scorevenues.TaskType, p.stages.Venues.Execute, &scorevenues.Input{
		Tastes:      q.Tastes,
		Location:    location,
		Coordinates: q.Coordinates,
		Insights:    *resp,
	})
}

func (p *Pipeline) ExtractTastes(ctx context.Context, input *extracttastes.Input) (*extracttastes.Output, error) {
	return run(ctx, p, extracttastes.TaskType, p.stages.Tastes.Execute, input)
}

func (p *Pipeline) RefineRoute(ctx context.Context, input *refineroute.Input) (*refineroute.Output, error) {
	return run(ctx, p, refineroute.TaskType, p.stages.Refine.Execute, input)
}

// Onboard creates a user profile. It fails when no database is configured.
func (p *Pipeline) Onboard(ctx context.Context, input *createuserprofile.Input) (*createuserprofile.Output, error) {
	if p.stages.Profiles == nil {
		return nil, apperrors.NewInternalError(errProfilesDisabled)
	}
	return run(ctx, p, createuserprofile.TaskType, p.stages.Profiles.Execute, input)
}
