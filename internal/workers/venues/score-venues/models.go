// internal/workers/venues/score-venues/models.go
package scorevenues

import "culturis/internal/models"

type Input struct {
	Tastes      []models.TasteTag       `json:"tastes"`
	Location    string                  `json:"location"`
	Coordinates *[2]float64             `json:"coordinates,omitempty"`
	Insights    models.InsightsResponse `json:"qlooData"`
}

type Output struct {
	Venues                []models.VenueRecord `json:"venues"`
	TotalFound            int                  `json:"totalFound"`
	VenueTypeDistribution map[string]int       `json:"venueTypeDistribution"`
	TasteCategories       []string             `json:"tasteCategories"`
	SuggestedFilters      []string             `json:"suggestedFilters"`
	TasteURNs             []string             `json:"tasteUrns"`
}

// Selection is the result of scoring and diversifying one entity list.
type Selection struct {
	Venues       []models.VenueRecord
	Distribution map[string]int
}
