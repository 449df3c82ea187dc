// internal/workers/routes/refine-route/handler_test.go
package refineroute

import (
	"context"
	"encoding/json"
	"testing"

	"culturis/internal/common/logger"
	"culturis/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func venue(id int, name, venueType string) models.VenueRecord {
	return models.VenueRecord{ID: id, Number: id, Name: name, Type: venueType, Affinity: 82, Rating: 4.36}
}

func sampleRoute() models.Route {
	return models.Route{Venues: []models.VenueRecord{
		venue(1, "Whitney Museum", "Museum"),
		venue(2, "Katz's Delicatessen", "Restaurant"),
		venue(3, "Blue Note", "Bar"),
	}}
}

func available() []models.VenueRecord {
	return []models.VenueRecord{
		venue(1, "Whitney Museum", "Museum"),
		venue(3, "Blue Note", "Bar"),
		venue(7, "Dead Rabbit", "Bar"),
		venue(8, "MoMA", "Museum"),
		venue(9, "Ippudo", "Restaurant"),
	}
}

func routeIDs(r *models.Route) []int {
	ids := make([]int, 0, len(r.Venues))
	for _, v := range r.Venues {
		ids = append(ids, v.ID)
	}
	return ids
}

// ==========================
// Replacement Tests
// ==========================

func TestRefine_Replace(t *testing.T) {
	tests := []struct {
		name    string
		request string
		wantIDs []int
	}{
		{"first venue", "Replace the first venue", []int{8, 2, 3}},
		{"last venue", "can you find a different last stop", []int{1, 2, 7}},
		{"restaurant", "I'd like a different restaurant", []int{1, 9, 3}},
		{"ordinal wins over restaurant", "replace the third one, not the restaurant", []int{1, 2, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route := sampleRoute()
			out := Refine(route, tt.request, available())

			assert.True(t, out.Success)
			assert.Equal(t, UpdatedMessage, out.Message)
			require.NotNil(t, out.UpdatedRoute)
			assert.Equal(t, tt.wantIDs, routeIDs(out.UpdatedRoute))
			assert.Equal(t, []int{1, 2, 3}, routeIDs(&route), "input route must not change")
		})
	}
}

func TestRefine_Replace_NoAlternative(t *testing.T) {
	tests := []struct {
		name      string
		venues    []models.VenueRecord
		request   string
		available []models.VenueRecord
	}{
		{"only venues already on the route", sampleRoute().Venues, "replace the first venue", sampleRoute().Venues},
		{"ordinal past the end", sampleRoute().Venues[:2], "replace the third venue", available()},
		{"no restaurant alternatives", sampleRoute().Venues, "different restaurant please", []models.VenueRecord{venue(7, "Dead Rabbit", "Bar")}},
		{"nothing to match", sampleRoute().Venues, "replace something", available()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Refine(models.Route{Venues: tt.venues}, tt.request, tt.available)

			assert.True(t, out.Success)
			assert.Equal(t, ClarifyMessage, out.Message)
			assert.Nil(t, out.UpdatedRoute)
			assert.Equal(t, Suggestions, out.Suggestions)
		})
	}
}

func TestRefine_PreservesExtraRouteFields(t *testing.T) {
	var route models.Route
	require.NoError(t, json.Unmarshal([]byte(`{"venues":[{"id":1,"name":"Whitney Museum","type":"Museum"}],"totalTime":"3h"}`), &route))

	out := Refine(route, "replace the first venue", available())
	require.NotNil(t, out.UpdatedRoute)

	body, err := json.Marshal(out.UpdatedRoute)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"totalTime":"3h"`)
	assert.Contains(t, string(body), `"name":"MoMA"`)
}

// ==========================
// Details Tests
// ==========================

func TestRefine_Details(t *testing.T) {
	out := Refine(sampleRoute(), "Tell me about the second venue", nil)

	assert.True(t, out.Success)
	assert.Equal(t, "The second venue is Katz's Delicatessen, a Restaurant with a 82% cultural match. It's rated 4.4 stars.", out.Message)
	require.NotNil(t, out.VenueDetails)
	assert.Equal(t, 2, out.VenueDetails.ID)
	assert.Nil(t, out.UpdatedRoute)
}

func TestRefine_Details_WithoutOrdinal(t *testing.T) {
	out := Refine(sampleRoute(), "more details please", nil)
	assert.Equal(t, ClarifyMessage, out.Message)
	assert.Nil(t, out.VenueDetails)
}

func TestRefine_Clarification(t *testing.T) {
	out := Refine(models.Route{}, "adjust the timing", nil)
	assert.True(t, out.Success)
	assert.Equal(t, ClarifyMessage, out.Message)
	assert.Len(t, out.Suggestions, 4)
}

// ==========================
// Handler Tests
// ==========================

func TestHandler_Execute(t *testing.T) {
	h := NewHandler(LoadConfig(), logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{
		CurrentRoute:    sampleRoute(),
		UserRequest:     "replace the first venue",
		AvailableVenues: available(),
	})
	require.NoError(t, err)
	require.NotNil(t, out.UpdatedRoute)
	assert.Equal(t, "MoMA", out.UpdatedRoute.Venues[0].Name)
}

func TestHandler_Execute_EmptyRequest(t *testing.T) {
	h := NewHandler(LoadConfig(), logger.NewNoOpLogger())

	out, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.Equal(t, ClarifyMessage, out.Message)
}
