// internal/models/cluster.go
package models

// EntitySummary is an example member shown under a cluster.
type EntitySummary struct {
	Type     string   `json:"type"`
	Name     string   `json:"name"`
	Affinity float64  `json:"affinity"`
	Keywords []string `json:"keywords"`
}

// CulturalCluster groups entities sharing an inferred cultural signal.
// LiftScore is in [50, 90].
type CulturalCluster struct {
	ClusterName     string          `json:"cluster_name"`
	LiftScore       float64         `json:"lift_score"`
	AudienceSize    int             `json:"audience_size"`
	ExampleEntities []EntitySummary `json:"example_entities"`
}

type ClusterSummary struct {
	RadiusM  float64           `json:"radius_m"`
	Clusters []CulturalCluster `json:"clusters"`
}

// InsightPackage is what the report generator renders.
type InsightPackage struct {
	UserPrompt string         `json:"user_prompt"`
	QlooJSON   ClusterSummary `json:"qloo_json"`
}
