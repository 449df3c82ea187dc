// internal/workers/planning/plan-request/handler_test.go
package planrequest

import (
	"context"
	"errors"
	"net/http"
	"testing"

	apperrors "culturis/internal/common/errors"
	"culturis/internal/common/llm"
	"culturis/internal/common/llm/llmtest"
	"culturis/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const brooklynQuery = "I want to open a matcha shop with vinyl records in Brooklyn"

const brooklynArguments = `{
	"endpoint": "/v2/insights",
	"params": {
		"filter.type": "urn:entity:place",
		"filter.location.query": "Brooklyn, NY",
		"filter.location.radius": 5000,
		"signal.interests.tags": "urn:tag:venue_type:restaurant,urn:tag:taste:tea,urn:tag:cuisine:japanese,urn:tag:interest:music,urn:tag:interest:vinyl",
		"limit": 25
	},
	"reasoning": "Matcha and vinyl in Brooklyn"
}`

type stubCaller struct {
	call   *llm.ToolCall
	err    error
	prompt string
}

func (s *stubCaller) ForcedToolCall(_ context.Context, prompt string, _ llm.Tool) (*llm.ToolCall, error) {
	s.prompt = prompt
	return s.call, s.err
}

func withArguments(args string) *stubCaller {
	return &stubCaller{call: &llm.ToolCall{Name: ToolName, Arguments: args}}
}

// ==========================
// Prompt Tests
// ==========================

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(brooklynQuery, "Retriever tags:\n---\nMatcha (taste) -> urn:tag:taste:tea", "New York, NY")

	assert.Contains(t, prompt, `"filter.type": "urn:entity:place"`)
	assert.Contains(t, prompt, `"limit": 25`)
	assert.Contains(t, prompt, `"Brooklyn" -> "Brooklyn, NY"`)
	assert.Contains(t, prompt, `use "New York, NY"`)
	assert.Contains(t, prompt, `"coffee shop" -> urn:tag:venue_type:restaurant,urn:tag:taste:coffee`)
	assert.Contains(t, prompt, `"matcha" -> urn:tag:taste:tea,urn:tag:cuisine:japanese`)
	assert.Contains(t, prompt, `"city-pop" -> urn:tag:genre:pop,urn:tag:interest:music`)
	assert.Contains(t, prompt, "Matcha (taste) -> urn:tag:taste:tea")
	assert.Contains(t, prompt, "User query: "+brooklynQuery)
}

func TestBuildPrompt_NoGrounding(t *testing.T) {
	prompt := BuildPrompt("bar", "  ", "Austin, TX")
	assert.NotContains(t, prompt, "Supported vocabulary")
	assert.Contains(t, prompt, `use "Austin, TX"`)
}

// ==========================
// Planner Tests
// ==========================

func TestPlanner_Plan_Brooklyn(t *testing.T) {
	fake := llmtest.NewServer(t)
	fake.ToolArguments = brooklynArguments
	planner := NewPlanner(llm.New(fake.Config(), nil), "New York, NY", logger.NewTestLogger(t))

	plan, err := planner.Plan(context.Background(), brooklynQuery, "Retriever tags:")
	require.NoError(t, err)

	assert.Equal(t, InsightsEndpoint, plan.Endpoint)
	assert.Equal(t, "Brooklyn, NY", plan.Params["filter.location.query"])
	assert.Equal(t, "urn:entity:place", plan.Params["filter.type"])
	assert.Equal(t, 25, plan.Params["limit"])
	assert.Equal(t, 5000, plan.Params["filter.location.radius"])
	assert.Contains(t, plan.Params["signal.interests.tags"], "urn:tag:interest:vinyl")
	assert.Equal(t, "Matcha and vinyl in Brooklyn", plan.Reasoning)

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	choice := reqs[0]["tool_choice"].(map[string]interface{})
	assert.Equal(t, ToolName, choice["function"].(map[string]interface{})["name"])
}

func TestPlanner_Plan_Params(t *testing.T) {
	tests := []struct {
		name string
		args string
		want map[string]interface{}
	}{
		{
			name: "missing params become empty",
			args: `{"endpoint":"/v2/insights","reasoning":"none"}`,
			want: map[string]interface{}{},
		},
		{
			name: "unknown keys stripped",
			args: `{"endpoint":"/v2/insights","params":{"filter.type":"urn:entity:place","sort_by":"popularity","bias.trends":"high"},"reasoning":"r"}`,
			want: map[string]interface{}{"filter.type": "urn:entity:place"},
		},
		{
			name: "string radius kept",
			args: `{"endpoint":"/v2/insights","params":{"filter.location.radius":"10000","limit":20.0},"reasoning":"r"}`,
			want: map[string]interface{}{"filter.location.radius": "10000", "limit": 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			planner := NewPlanner(withArguments(tt.args), "New York, NY", logger.NewNoOpLogger())

			plan, err := planner.Plan(context.Background(), "q", "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, plan.Params)
		})
	}
}

func TestPlanner_Plan_Failures(t *testing.T) {
	tests := []struct {
		name    string
		caller  *stubCaller
		wantErr error
	}{
		{"no tool call", &stubCaller{err: llm.ErrNoToolCall}, ErrNoToolCall},
		{"transport failure", &stubCaller{err: errors.New("chat completion: 500")}, ErrPlanningFailed},
		{"malformed arguments", withArguments(`{"endpoint":`), ErrMalformedArguments},
		{"endpoint not allowed", withArguments(`{"endpoint":"/v2/search","params":{},"reasoning":"r"}`), ErrEndpointNotAllowed},
		{"fractional limit", withArguments(`{"endpoint":"/v2/insights","params":{"limit":2.5},"reasoning":"r"}`), ErrInvalidParams},
		{"zero limit", withArguments(`{"endpoint":"/v2/insights","params":{"limit":0},"reasoning":"r"}`), ErrInvalidParams},
		{"non-place entity type", withArguments(`{"endpoint":"/v2/insights","params":{"filter.type":"place"},"reasoning":"r"}`), ErrInvalidParams},
		{"object tags", withArguments(`{"endpoint":"/v2/insights","params":{"signal.interests.tags":{"a":1}},"reasoning":"r"}`), ErrInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			planner := NewPlanner(tt.caller, "New York, NY", logger.NewNoOpLogger())

			plan, err := planner.Plan(context.Background(), "q", "")
			require.Error(t, err)
			assert.Nil(t, plan)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrPlanningFailed)
		})
	}
}

func TestNormalizeNumber(t *testing.T) {
	assert.Equal(t, 25, normalizeNumber(25.0))
	assert.Equal(t, 2.5, normalizeNumber(2.5))
	assert.Equal(t, "25", normalizeNumber("25"))
	assert.Equal(t, true, normalizeNumber(true))
}

// ==========================
// Handler Tests
// ==========================

func TestHandler_Execute(t *testing.T) {
	fake := llmtest.NewServer(t)
	fake.ToolArguments = brooklynArguments
	h := NewHandler(LoadConfig(), llm.New(fake.Config(), nil), logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{Query: brooklynQuery, Context: "Retriever tags:"})
	require.NoError(t, err)
	assert.Equal(t, "Brooklyn, NY", out.Plan.Params["filter.location.query"])
}

func TestHandler_Execute_PlanningFailed(t *testing.T) {
	fake := llmtest.NewServer(t)
	fake.Content = "I cannot call tools today"
	h := NewHandler(LoadConfig(), llm.New(fake.Config(), nil), logger.NewNoOpLogger())

	_, err := h.Execute(context.Background(), &Input{Query: brooklynQuery})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoToolCall)
	assert.Equal(t, apperrors.ErrCodePlanningFailed, apperrors.AsStandardError(err).Code)
	assert.Equal(t, http.StatusInternalServerError, apperrors.HTTPStatus(err))
}

func TestHandler_Execute_EmptyQuery(t *testing.T) {
	h := NewHandler(LoadConfig(), &stubCaller{}, logger.NewNoOpLogger())

	_, err := h.Execute(context.Background(), &Input{Query: "   "})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatus(err))
}
