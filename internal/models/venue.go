// internal/models/venue.go
package models

import "encoding/json"

type VenueQlooData struct {
	EntityID   string   `json:"entity_id"`
	Popularity float64  `json:"popularity"`
	Keywords   []string `json:"keywords"`
}

// VenueRecord is a scored venue as shown to the user. Affinity is in
// [60, 95] and Rating in [3.0, 5.0].
type VenueRecord struct {
	ID            int           `json:"id"`
	Number        int           `json:"number"`
	Name          string        `json:"name"`
	Type          string        `json:"type"`
	Affinity      int           `json:"affinity"`
	Rating        float64       `json:"rating"`
	Coordinates   [2]float64    `json:"coordinates"`
	Address       string        `json:"address"`
	CulturalMatch string        `json:"culturalMatch"`
	QlooData      VenueQlooData `json:"qloo_data"`
}

// Route is an ordered itinerary of venues. Fields other than venues are
// kept in Extra and written back unchanged.
type Route struct {
	Venues []VenueRecord              `json:"venues"`
	Extra  map[string]json.RawMessage `json:"-"`
}

func (r *Route) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	r.Venues = nil
	if raw, ok := fields["venues"]; ok {
		if err := json.Unmarshal(raw, &r.Venues); err != nil {
			return err
		}
		delete(fields, "venues")
	}
	r.Extra = nil
	if len(fields) > 0 {
		r.Extra = fields
	}
	return nil
}

func (r Route) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Extra)+1)
	for k, v := range r.Extra {
		out[k] = v
	}
	venues := r.Venues
	if venues == nil {
		venues = []VenueRecord{}
	}
	out["venues"] = venues
	return json.Marshal(out)
}
