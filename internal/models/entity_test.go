package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptFloat_Unmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  OptFloat
	}{
		{"number", `0.82`, Float(0.82)},
		{"numeric string", `"0.4"`, Float(0.4)},
		{"null", `null`, OptFloat{}},
		{"garbage string", `"high"`, OptFloat{}},
		{"bool", `true`, OptFloat{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got OptFloat
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRawEntity_DecodesPartialRecords(t *testing.T) {
	raw := `{"entity_id":"E1","name":"Katz's Delicatessen","popularity":"0.9",
		"query":{"affinity":null},"location":{"lat":40.72,"lon":-73.98},"extra":{"kept":true}}`

	var e RawEntity
	require.NoError(t, json.Unmarshal([]byte(raw), &e))

	assert.Equal(t, "E1", e.Identifier())
	assert.Equal(t, 0.9, e.Popularity.Or(0.5))
	assert.Equal(t, 0.0, e.Affinity())
	assert.Equal(t, 5000.0, e.Query.Distance.Or(5000))

	lat, lng, ok := e.Location.Coordinates()
	require.True(t, ok)
	assert.Equal(t, 40.72, lat)
	assert.Equal(t, -73.98, lng)

	out, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out), "unknown fields survive re-encoding")
}

func TestEntityLocation_Coordinates(t *testing.T) {
	tests := []struct {
		name string
		loc  *EntityLocation
		ok   bool
	}{
		{"nil", nil, false},
		{"missing lng", &EntityLocation{Lat: Float(40)}, false},
		{"out of range", &EntityLocation{Lat: Float(140), Lng: Float(10)}, false},
		{"valid", &EntityLocation{Lat: Float(40.7), Lng: Float(-74)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ok := tt.loc.Coordinates()
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestInsightsResponse_Passthrough(t *testing.T) {
	raw := `{"success":true,"duration":12,"results":{"entities":[{"name":"MoMA","tags":[{"name":"Museum","type":"urn:tag:genre:place"}]}]}}`

	var resp InsightsResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	require.Len(t, resp.Entities(), 1)
	assert.Equal(t, "MoMA", resp.Entities()[0].Name)

	out, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))

	var empty *InsightsResponse
	assert.Nil(t, empty.Entities())
}

func TestRawEntity_KeywordNames(t *testing.T) {
	e := RawEntity{Properties: EntityProperties{Keywords: []Keyword{{Name: "a"}, {Name: "b"}, {Name: "c"}}}}
	assert.Equal(t, []string{"a", "b"}, e.KeywordNames(2))
	assert.Equal(t, []string{"a", "b", "c"}, e.KeywordNames(0))
}
