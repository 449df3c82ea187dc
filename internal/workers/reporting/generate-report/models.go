// internal/workers/reporting/generate-report/models.go
package generatereport

import "culturis/internal/models"

type Input struct {
	UserQuery      string                `json:"userQuery"`
	InsightPackage models.InsightPackage `json:"insightPackage"`
}

type Output struct {
	Pretty string `json:"pretty"`
}
