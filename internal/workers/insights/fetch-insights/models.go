// internal/workers/insights/fetch-insights/models.go
package fetchinsights

import "culturis/internal/models"

type Input struct {
	Plan models.PlannedRequest `json:"plan"`
}

type Output struct {
	QlooData *models.InsightsResponse `json:"qlooData"`
}
