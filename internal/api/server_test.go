// internal/api/server_test.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "culturis/internal/common/errors"
	"culturis/internal/common/logger"
	"culturis/internal/models"
	"culturis/internal/pipeline"
	createuserprofile "culturis/internal/workers/onboarding/create-user-profile"
	refineroute "culturis/internal/workers/routes/refine-route"
	extracttastes "culturis/internal/workers/tastes/extract-tastes"
	scorevenues "culturis/internal/workers/venues/score-venues"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubService records the last arguments and returns canned results.
type stubService struct {
	err error

	chatQuery     string
	searchQuery   string
	insightsQuery pipeline.InsightsQuery
	venuesQuery   pipeline.VenuesQuery
	tastesInput   *extracttastes.Input
	refineInput   *refineroute.Input
	onboardInput  *createuserprofile.Input

	chat     *pipeline.ChatResult
	search   []models.RawEntity
	insights *pipeline.InsightsResult
	venues   *scorevenues.Output
	tastes   *extracttastes.Output
	refine   *refineroute.Output
	onboard  *createuserprofile.Output
}

func (s *stubService) Chat(_ context.Context, query string) (*pipeline.ChatResult, error) {
	s.chatQuery = query
	return s.chat, s.err
}

func (s *stubService) Search(_ context.Context, q string) ([]models.RawEntity, error) {
	s.searchQuery = q
	return s.search, s.err
}

func (s *stubService) Insights(_ context.Context, q pipeline.InsightsQuery) (*pipeline.InsightsResult, error) {
	s.insightsQuery = q
	return s.insights, s.err
}

func (s *stubService) Venues(_ context.Context, q pipeline.VenuesQuery) (*scorevenues.Output, error) {
	s.venuesQuery = q
	return s.venues, s.err
}

func (s *stubService) ExtractTastes(_ context.Context, in *extracttastes.Input) (*extracttastes.Output, error) {
	s.tastesInput = in
	return s.tastes, s.err
}

func (s *stubService) RefineRoute(_ context.Context, in *refineroute.Input) (*refineroute.Output, error) {
	s.refineInput = in
	return s.refine, s.err
}

func (s *stubService) Onboard(_ context.Context, in *createuserprofile.Input) (*createuserprofile.Output, error) {
	s.onboardInput = in
	return s.onboard, s.err
}

var testOrigins = []string{"http://localhost:3000", "http://127.0.0.1:5001"}

func newTestServer(t *testing.T, svc Service) http.Handler {
	t.Helper()
	return NewServer(svc, Options{AllowedOrigins: testOrigins}, logger.NewTestLogger(t)).Routes()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// ==========================
// Health and CORS Tests
// ==========================

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t, &stubService{}), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","message":"CultureCanvas backend is running"}`, rec.Body.String())
}

func TestMetrics(t *testing.T) {
	h := newTestServer(t, &stubService{})
	do(t, h, http.MethodGet, "/health", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "culturis_http_requests_total")
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name      string
		origin    string
		wantAllow string
	}{
		{"localhost 3000", "http://localhost:3000", "http://localhost:3000"},
		{"loopback 5001", "http://127.0.0.1:5001", "http://127.0.0.1:5001"},
		{"unknown origin", "http://evil.example", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()
			newTestServer(t, &stubService{}).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantAllow, rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantAllow != "" {
				assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	svc := &stubService{search: []models.RawEntity{}}
	h := NewServer(svc, Options{RateLimit: 2}, logger.NewNoOpLogger()).Routes()

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/qloo-search?q=tea", "").Code)
	}
	rec := do(t, h, http.MethodGet, "/api/qloo-search?q=tea", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests", decodeBody(t, rec)["detail"])
}

// ==========================
// Endpoint Tests
// ==========================

func TestChat(t *testing.T) {
	svc := &stubService{chat: &pipeline.ChatResult{
		Plan: models.PlannedRequest{
			Endpoint:  "/v2/insights",
			Params:    map[string]interface{}{"filter.location.query": "Brooklyn, NY"},
			Reasoning: "internal",
		},
		Package: models.InsightPackage{UserPrompt: "matcha in Brooklyn"},
		Pretty:  "### 1. Japanese Culture Enthusiasts",
	}}

	rec := do(t, newTestServer(t, svc), http.MethodPost, "/api/chat", `{"query":"matcha in Brooklyn"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "matcha in Brooklyn", svc.chatQuery)

	body := decodeBody(t, rec)
	plan := body["plan"].(map[string]interface{})
	assert.Equal(t, "/v2/insights", plan["endpoint"])
	assert.NotContains(t, plan, "reasoning")
	assert.Equal(t, "matcha in Brooklyn", body["qlooData"].(map[string]interface{})["user_prompt"])
	assert.Equal(t, "### 1. Japanese Culture Enthusiasts", body["pretty"])
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		err          error
		wantStatus   int
		wantDetail   string
		wantUpstream interface{}
	}{
		{
			name:       "malformed body",
			body:       `{"query":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "query too long",
			body:       `{"query":"` + strings.Repeat("a", 2001) + `"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty query",
			body:       `{"query":""}`,
			err:        apperrors.NewValidationError("Empty query"),
			wantStatus: http.StatusBadRequest,
			wantDetail: "Empty query",
		},
		{
			name:       "planning failed",
			body:       `{"query":"q"}`,
			err:        apperrors.NewPlanningFailedError(errors.New("model produced no tool call")),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "Request planning failed: model produced no tool call",
		},
		{
			name:         "upstream failure",
			body:         `{"query":"q"}`,
			err:          apperrors.NewUpstreamAPIError(http.StatusForbidden, errors.New("forbidden")),
			wantStatus:   http.StatusBadGateway,
			wantDetail:   "Recommendation API call failed: forbidden",
			wantUpstream: float64(http.StatusForbidden),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{err: tt.err}
			rec := do(t, newTestServer(t, svc), http.MethodPost, "/api/chat", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			require.Contains(t, body, "detail")
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, body["detail"])
			}
			assert.Equal(t, tt.wantUpstream, body["upstream_status"])
		})
	}
}

func TestQlooSearch(t *testing.T) {
	svc := &stubService{search: []models.RawEntity{{EntityID: "E1", Name: "Cha Cha Matcha"}}}

	rec := do(t, newTestServer(t, svc), http.MethodGet, "/api/qloo-search?q=matcha", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "matcha", svc.searchQuery)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	entities := body["results"].(map[string]interface{})["entities"].([]interface{})
	require.Len(t, entities, 1)
	assert.Equal(t, "Cha Cha Matcha", entities[0].(map[string]interface{})["name"])
}

func TestQlooInsights(t *testing.T) {
	svc := &stubService{insights: &pipeline.InsightsResult{}}

	rec := do(t, newTestServer(t, svc), http.MethodGet,
		"/api/qloo-insights?filter_type=urn:entity:artist&filter_location_query=Austin,+TX&filter_location_radius=2000&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pipeline.InsightsQuery{
		FilterType:     "urn:entity:artist",
		LocationQuery:  "Austin, TX",
		LocationRadius: "2000",
		Limit:          "5",
	}, svc.insightsQuery)
	assert.JSONEq(t, `{"success":true,"results":{"entities":[],"clusters":[]}}`, rec.Body.String())
}

func TestExtractTastes(t *testing.T) {
	svc := &stubService{tastes: &extracttastes.Output{
		ExtractedTastes: []models.TasteTag{{ID: "jazz_music", Name: "Jazz Music"}},
		Message:         "jazz tonight",
		Location:        "New York, NY",
		Strategy:        extracttastes.StrategyKeyword,
	}}

	rec := do(t, newTestServer(t, svc), http.MethodPost, "/api/extract-tastes",
		`{"message":"jazz tonight","existing_tastes":["Museums"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Museums"}, svc.tastesInput.ExistingTastes)

	body := decodeBody(t, rec)
	assert.NotContains(t, body, "strategy")
	assert.Len(t, body["extracted_tastes"], 1)
	assert.Equal(t, "New York, NY", body["location"])
}

func TestVenues(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantCoords [2]float64
		wantLoc    string
	}{
		{
			name:       "defaults",
			body:       `{"tastes":[{"id":"jazz_music","name":"Jazz Music"}]}`,
			wantCoords: [2]float64{40.7589, -73.9851},
			wantLoc:    "New York, NY",
		},
		{
			name:       "explicit",
			body:       `{"tastes":[{"id":"matcha","name":"Matcha"}],"location":"Austin, TX","coordinates":[30.2672,-97.7431]}`,
			wantCoords: [2]float64{30.2672, -97.7431},
			wantLoc:    "Austin, TX",
		},
		{
			name:       "southern hemisphere",
			body:       `{"tastes":[{"id":"matcha","name":"Matcha"}],"location":"Sydney","coordinates":[-33.86,151.2]}`,
			wantCoords: [2]float64{-33.86, 151.2},
			wantLoc:    "Sydney",
		},
		{
			name:       "zero coordinates are kept",
			body:       `{"tastes":[{"id":"matcha","name":"Matcha"}],"location":"Gulf of Guinea","coordinates":[0,0]}`,
			wantCoords: [2]float64{0, 0},
			wantLoc:    "Gulf of Guinea",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{venues: &scorevenues.Output{
				Venues:                []models.VenueRecord{{ID: 1, Number: 1, Name: "Blue Note", Type: "Jazz Club"}},
				TotalFound:            1,
				VenueTypeDistribution: map[string]int{"Jazz Club": 1},
			}}

			rec := do(t, newTestServer(t, svc), http.MethodPost, "/api/venues", tt.body)
			require.Equal(t, http.StatusOK, rec.Code)
			require.NotNil(t, svc.venuesQuery.Coordinates)
			assert.Equal(t, tt.wantCoords, *svc.venuesQuery.Coordinates)
			assert.Equal(t, tt.wantLoc, svc.venuesQuery.Location)

			body := decodeBody(t, rec)
			assert.Equal(t, true, body["diversity_applied"])
			assert.Equal(t, float64(1), body["total_found"])
			assert.Equal(t, []interface{}{}, body["taste_urns_used"])
			assert.Equal(t, tt.wantLoc, body["location"])
		})
	}
}

func TestVenues_BadCoordinates(t *testing.T) {
	tests := []struct {
		name   string
		coords string
	}{
		{"single value", `[40.7]`},
		{"latitude past the pole", `[95, 10]`},
		{"latitude below the pole", `[-120.5, 10]`},
		{"longitude out of range", `[40.7, 181]`},
		{"three values", `[40.7, -73.9, 0]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			rec := do(t, newTestServer(t, svc), http.MethodPost, "/api/venues", `{"tastes":[],"coordinates":`+tt.coords+`}`)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, svc.venuesQuery.Location)
		})
	}
}

func TestRefineRoute(t *testing.T) {
	svc := &stubService{refine: &refineroute.Output{
		Success: true,
		Message: refineroute.UpdatedMessage,
		UpdatedRoute: &models.Route{
			Venues: []models.VenueRecord{{ID: 2, Name: "Sushi Nakazawa"}},
			Extra:  map[string]json.RawMessage{"title": json.RawMessage(`"Evening"`)},
		},
	}}

	rec := do(t, newTestServer(t, svc), http.MethodPost, "/api/refine-route",
		`{"current_route":{"title":"Evening","venues":[{"id":1,"name":"Katz"}]},"user_request":"replace the first","available_venues":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "replace the first", svc.refineInput.UserRequest)
	assert.Equal(t, json.RawMessage(`"Evening"`), svc.refineInput.CurrentRoute.Extra["title"])

	body := decodeBody(t, rec)
	route := body["updated_route"].(map[string]interface{})
	assert.Equal(t, "Evening", route["title"])
	assert.NotContains(t, body, "venue_details")
}

func TestOnboarding(t *testing.T) {
	svc := &stubService{onboard: &createuserprofile.Output{
		Success: true,
		User:    &models.UserProfile{ID: "u-1", FirstName: "Ada", AgreeToTerms: true},
	}}

	rec := do(t, newTestServer(t, svc), http.MethodPost, "/api/onboarding", `{"firstName":"Ada","agreeToTerms":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ada", svc.onboardInput.FirstName)

	body := decodeBody(t, rec)
	assert.Equal(t, "u-1", body["user"].(map[string]interface{})["_id"])
}

func TestOnboarding_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"agreeToTerms":true}`},
		{"name too long", `{"firstName":"` + strings.Repeat("x", 101) + `"}`},
		{"not json", `firstName=Ada`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			rec := do(t, newTestServer(t, svc), http.MethodPost, "/api/onboarding", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, svc.onboardInput)
		})
	}
}

func TestOnboarding_StoreFailure(t *testing.T) {
	svc := &stubService{err: apperrors.NewDatabaseError("insert user profile", errors.New("connection refused"))}

	rec := do(t, newTestServer(t, svc), http.MethodPost, "/api/onboarding", `{"firstName":"Ada"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Database insert user profile failed: connection refused", decodeBody(t, rec)["detail"])
}
