// internal/models/entity.go
package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// OptFloat is a number the recommendation API may omit, send as null, or
// send as a numeric string. Anything unparseable decodes as absent.
type OptFloat struct {
	Value float64
	Valid bool
}

func Float(v float64) OptFloat {
	return OptFloat{Value: v, Valid: true}
}

func (f *OptFloat) UnmarshalJSON(b []byte) error {
	*f = OptFloat{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		*f = Float(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	*f = Float(v)
	return nil
}

func (f OptFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Or returns the value, or def when absent.
func (f OptFloat) Or(def float64) float64 {
	if !f.Valid {
		return def
	}
	return f.Value
}

type EntityTag struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type Keyword struct {
	Name  string   `json:"name"`
	Count OptFloat `json:"count"`
}

type EntityProperties struct {
	Keywords    []Keyword `json:"keywords,omitempty"`
	Description string    `json:"description,omitempty"`
	Address     string    `json:"address,omitempty"`
}

type EntityQuery struct {
	Affinity OptFloat `json:"affinity"`
	Distance OptFloat `json:"distance"`
}

// EntityLocation accepts both "lng" and "lon" for the longitude.
type EntityLocation struct {
	Lat OptFloat `json:"lat"`
	Lng OptFloat `json:"lng"`
	Lon OptFloat `json:"lon"`
}

// Coordinates reports the entity position when both parts are present and
// inside WGS84 bounds.
func (l *EntityLocation) Coordinates() (lat, lng float64, ok bool) {
	if l == nil || !l.Lat.Valid {
		return 0, 0, false
	}
	lon := l.Lng
	if !lon.Valid {
		lon = l.Lon
	}
	if !lon.Valid {
		return 0, 0, false
	}
	if l.Lat.Value < -90 || l.Lat.Value > 90 || lon.Value < -180 || lon.Value > 180 {
		return 0, 0, false
	}
	return l.Lat.Value, lon.Value, true
}

// RawEntity is one result of the recommendation API. Only the fields the
// scorers read are decoded; the original bytes are kept so the entity can be
// passed back to clients unchanged.
type RawEntity struct {
	EntityID   string           `json:"entity_id,omitempty"`
	ID         string           `json:"id,omitempty"`
	Name       string           `json:"name"`
	Subtype    string           `json:"subtype,omitempty"`
	Tags       []EntityTag      `json:"tags,omitempty"`
	Properties EntityProperties `json:"properties"`
	Popularity OptFloat         `json:"popularity"`
	Query      EntityQuery      `json:"query"`
	Location   *EntityLocation  `json:"location,omitempty"`

	raw json.RawMessage
}

func (e *RawEntity) UnmarshalJSON(b []byte) error {
	type plain RawEntity
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*e = RawEntity(p)
	e.raw = append(json.RawMessage(nil), b...)
	return nil
}

func (e RawEntity) MarshalJSON() ([]byte, error) {
	if len(e.raw) > 0 {
		return e.raw, nil
	}
	type plain RawEntity
	return json.Marshal(plain(e))
}

// Identifier prefers entity_id and falls back to id.
func (e *RawEntity) Identifier() string {
	if e.EntityID != "" {
		return e.EntityID
	}
	return e.ID
}

// Affinity is the raw query affinity, 0 when absent.
func (e *RawEntity) Affinity() float64 {
	return e.Query.Affinity.Or(0)
}

// KeywordNames returns up to n keyword names; n <= 0 means all.
func (e *RawEntity) KeywordNames(n int) []string {
	kws := e.Properties.Keywords
	if n > 0 && len(kws) > n {
		kws = kws[:n]
	}
	names := make([]string, 0, len(kws))
	for _, kw := range kws {
		names = append(names, kw.Name)
	}
	return names
}

type InsightsResults struct {
	Entities []RawEntity `json:"entities"`
}

// InsightsResponse is the body of GET /v2/insights. Like RawEntity it
// re-encodes to the bytes it was decoded from.
type InsightsResponse struct {
	Success bool            `json:"success"`
	Results InsightsResults `json:"results"`

	raw json.RawMessage
}

func (r *InsightsResponse) UnmarshalJSON(b []byte) error {
	type plain InsightsResponse
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = InsightsResponse(p)
	r.raw = append(json.RawMessage(nil), b...)
	return nil
}

func (r InsightsResponse) MarshalJSON() ([]byte, error) {
	if len(r.raw) > 0 {
		return r.raw, nil
	}
	type plain InsightsResponse
	return json.Marshal(plain(r))
}

// Entities returns the result entities, nil-safe.
func (r *InsightsResponse) Entities() []RawEntity {
	if r == nil {
		return nil
	}
	return r.Results.Entities
}
