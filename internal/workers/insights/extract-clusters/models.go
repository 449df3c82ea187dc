// internal/workers/insights/extract-clusters/models.go
package extractclusters

import "culturis/internal/models"

type Input struct {
	UserPrompt string                  `json:"userPrompt"`
	Params     map[string]interface{}  `json:"params"`
	Insights   models.InsightsResponse `json:"qlooData"`
	K          int                     `json:"k,omitempty"`
}

type Output struct {
	Clusters       []models.CulturalCluster `json:"clusters"`
	InsightPackage models.InsightPackage    `json:"insightPackage"`
}
