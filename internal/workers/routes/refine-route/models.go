// internal/workers/routes/refine-route/models.go
package refineroute

import "culturis/internal/models"

type Input struct {
	CurrentRoute    models.Route         `json:"currentRoute"`
	UserRequest     string               `json:"userRequest"`
	AvailableVenues []models.VenueRecord `json:"availableVenues"`
}

type Output struct {
	Success      bool                `json:"success"`
	Message      string              `json:"message"`
	UpdatedRoute *models.Route       `json:"updatedRoute,omitempty"`
	VenueDetails *models.VenueRecord `json:"venueDetails,omitempty"`
	Suggestions  []string            `json:"suggestions,omitempty"`
}
