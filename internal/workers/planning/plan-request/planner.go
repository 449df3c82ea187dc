// internal/workers/planning/plan-request/planner.go
package planrequest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"culturis/internal/common/llm"
	"culturis/internal/common/logger"
	"culturis/internal/common/validation"
	"culturis/internal/models"

	"github.com/samber/lo"
)

const (
	ToolName         = "build_qloo_request"
	InsightsEndpoint = "/v2/insights"
)

var (
	ErrPlanningFailed     = errors.New("PLANNING_FAILED")
	ErrNoToolCall         = fmt.Errorf("%w: model returned no tool call", ErrPlanningFailed)
	ErrMalformedArguments = fmt.Errorf("%w: tool arguments are not valid JSON", ErrPlanningFailed)
	ErrEndpointNotAllowed = fmt.Errorf("%w: endpoint not allowed", ErrPlanningFailed)
	ErrInvalidParams      = fmt.Errorf("%w: params failed validation", ErrPlanningFailed)
)

// AllowedEndpoints is the endpoint allow-list.
var AllowedEndpoints = []string{InsightsEndpoint}

// AllowedParams are the only param keys forwarded to the recommendation API.
var AllowedParams = []string{
	"filter.type",
	"filter.location.query",
	"filter.location.radius",
	"filter.tags",
	"signal.interests.tags",
	"limit",
}

// PlanTool is the function the model is forced to call.
var PlanTool = llm.Tool{
	Name:        ToolName,
	Description: "Return the Qloo endpoint and query parameters",
	Parameters: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"endpoint": map[string]interface{}{
				"type": "string",
				"enum": AllowedEndpoints,
			},
			"params": map[string]interface{}{
				"type":        "object",
				"description": "Parameters to send to the endpoint",
				"properties": map[string]interface{}{
					"filter.type":            map[string]interface{}{"type": "string"},
					"filter.location.query":  map[string]interface{}{"type": "string"},
					"filter.location.radius": map[string]interface{}{"type": "string"},
					"signal.interests.tags":  map[string]interface{}{"type": "string"},
					"limit":                  map[string]interface{}{"type": "integer"},
				},
			},
			"reasoning": map[string]interface{}{
				"type":        "string",
				"description": "Explanation of why this endpoint was chosen",
			},
		},
		"required": []string{"endpoint", "params", "reasoning"},
	},
}

// paramsSchema is what the planned params must satisfy once unknown keys are
// stripped. The radius is accepted as a string or a whole number since the
// prompt asks for metres.
var paramsSchema = validation.MustCompile(map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"filter.type":            map[string]interface{}{"type": "string", "pattern": "^urn:entity:"},
		"filter.location.query":  map[string]interface{}{"type": "string", "minLength": 1},
		"filter.location.radius": map[string]interface{}{"type": []string{"string", "integer"}},
		"filter.tags":            map[string]interface{}{"type": "string"},
		"signal.interests.tags":  map[string]interface{}{"type": "string"},
		"limit":                  map[string]interface{}{"type": "integer", "minimum": 1},
	},
	"additionalProperties": false,
})

// ToolCaller is the language-model call the planner depends on.
type ToolCaller interface {
	ForcedToolCall(ctx context.Context, prompt string, tool llm.Tool) (*llm.ToolCall, error)
}

// Planner turns a query and its grounding into a PlannedRequest. It makes
// exactly one model call and never retries.
type Planner struct {
	model           ToolCaller
	defaultLocation string
	logger          logger.Logger
}

func NewPlanner(model ToolCaller, defaultLocation string, log logger.Logger) *Planner {
	return &Planner{model: model, defaultLocation: defaultLocation, logger: log}
}

type toolArguments struct {
	Endpoint  string                 `json:"endpoint"`
	Params    map[string]interface{} `json:"params"`
	Reasoning string                 `json:"reasoning"`
}

func (p *Planner) Plan(ctx context.Context, query, grounding string) (*models.PlannedRequest, error) {
	call, err := p.model.ForcedToolCall(ctx, BuildPrompt(query, grounding, p.defaultLocation), PlanTool)
	if errors.Is(err, llm.ErrNoToolCall) {
		return nil, ErrNoToolCall
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlanningFailed, err)
	}

	var args toolArguments
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedArguments, err)
	}
	if !lo.Contains(AllowedEndpoints, args.Endpoint) {
		return nil, fmt.Errorf("%w: %q", ErrEndpointNotAllowed, args.Endpoint)
	}

	params := p.sanitizeParams(ctx, args.Params)
	result, err := paramsSchema.Validate(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidParams, result.Summary())
	}

	return &models.PlannedRequest{
		Endpoint:  args.Endpoint,
		Params:    params,
		Reasoning: args.Reasoning,
	}, nil
}

// sanitizeParams drops unknown keys and turns whole-number floats into ints.
func (p *Planner) sanitizeParams(ctx context.Context, params map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(params))
	var dropped []string
	for key, value := range params {
		if !lo.Contains(AllowedParams, key) {
			dropped = append(dropped, key)
			continue
		}
		out[key] = normalizeNumber(value)
	}

	if len(dropped) > 0 {
		sort.Strings(dropped)
		p.logger.WithContext(ctx).Warn("dropping unsupported planner params", map[string]interface{}{
			"keys": dropped,
		})
	}
	return out
}

func normalizeNumber(v interface{}) interface{} {
	f, ok := v.(float64)
	if !ok || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return v
	}
	return int(f)
}
