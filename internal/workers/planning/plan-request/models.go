// internal/workers/planning/plan-request/models.go
package planrequest

import "culturis/internal/models"

type Input struct {
	Query   string `json:"query"`
	Context string `json:"context"`
}

type Output struct {
	Plan models.PlannedRequest `json:"plan"`
}
