// internal/workers/tastes/extract-tastes/models.go
package extracttastes

import "culturis/internal/models"

type Input struct {
	Message        string   `json:"message"`
	ExistingTastes []string `json:"existingTastes"`
	Location       string   `json:"location"`
}

type Output struct {
	ExtractedTastes []models.TasteTag `json:"extractedTastes"`
	Message         string            `json:"message"`
	Location        string            `json:"location"`
	Strategy        string            `json:"strategy"`
}
