// internal/api/dto.go
package api

import "culturis/internal/models"

type OnboardingRequest struct {
	AgreeToTerms bool   `json:"agreeToTerms"`
	FirstName    string `json:"firstName" validate:"required,max=100"`
}

type OnboardingResponse struct {
	Success bool                `json:"success"`
	User    *models.UserProfile `json:"user"`
}

type ChatRequest struct {
	Query string `json:"query" validate:"max=2000"`
}

type PlanView struct {
	Endpoint string                 `json:"endpoint"`
	Params   map[string]interface{} `json:"params"`
}

type ChatResponse struct {
	Plan     PlanView              `json:"plan"`
	QlooData models.InsightPackage `json:"qlooData"`
	Pretty   string                `json:"pretty"`
}

type EntitiesResults struct {
	Entities []models.RawEntity `json:"entities"`
}

type SearchResponse struct {
	Success bool            `json:"success"`
	Results EntitiesResults `json:"results"`
}

type InsightsResults struct {
	Entities []models.RawEntity       `json:"entities"`
	Clusters []models.CulturalCluster `json:"clusters"`
}

type InsightsResponse struct {
	Success bool            `json:"success"`
	Results InsightsResults `json:"results"`
}

type ExtractTastesRequest struct {
	Message        string   `json:"message" validate:"max=2000"`
	ExistingTastes []string `json:"existing_tastes"`
	Location       string   `json:"location"`
}

type ExtractTastesResponse struct {
	Success         bool              `json:"success"`
	ExtractedTastes []models.TasteTag `json:"extracted_tastes"`
	Message         string            `json:"message"`
	Location        string            `json:"location"`
}

type VenuesRequest struct {
	Tastes      []models.TasteTag `json:"tastes"`
	Location    string            `json:"location"`
	Coordinates []float64         `json:"coordinates" validate:"omitempty,latlng"`
}

type VenuesResponse struct {
	Success               bool                 `json:"success"`
	Venues                []models.VenueRecord `json:"venues"`
	Location              string               `json:"location"`
	Coordinates           []float64            `json:"coordinates"`
	TotalFound            int                  `json:"total_found"`
	TasteURNsUsed         []string             `json:"taste_urns_used"`
	TasteCategories       []string             `json:"taste_categories"`
	DiversityApplied      bool                 `json:"diversity_applied"`
	VenueTypeDistribution map[string]int       `json:"venue_type_distribution"`
}

type RefineRouteRequest struct {
	CurrentRoute    models.Route         `json:"current_route"`
	UserRequest     string               `json:"user_request" validate:"max=500"`
	AvailableVenues []models.VenueRecord `json:"available_venues"`
}

type RefineRouteResponse struct {
	Success      bool                `json:"success"`
	Message      string              `json:"message"`
	UpdatedRoute *models.Route       `json:"updated_route,omitempty"`
	VenueDetails *models.VenueRecord `json:"venue_details,omitempty"`
	Suggestions  []string            `json:"suggestions,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Detail         string `json:"detail"`
	UpstreamStatus *int   `json:"upstream_status,omitempty"`
}

// orEmpty keeps JSON null out of list fields.
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

