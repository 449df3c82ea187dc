// internal/workers/insights/extract-clusters/clusters.go
package extractclusters

import (
	"hash/fnv"
	"math"
	"sort"
	"strconv"
	"strings"

	"culturis/internal/models"
)

const (
	defaultDistance = 5000.0
	distanceCap     = 6000.0
	defaultRadiusM  = 6000.0
	exampleCount    = 4
)

type clusterStats struct {
	name    string
	members []*models.RawEntity
	total   float64
	avg     float64
	max     float64
	min     float64
}

// NameVariance maps an entity name to a stable offset in [-0.15, 0.147].
func NameVariance(name string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	bucket := h.Sum32() % 100
	return (float64(bucket)/100 - 0.5) * 0.3
}

// RealisticAffinity adjusts the raw API affinity by popularity, distance,
// keyword density and a name-derived variance. Result is in [50, 90] with
// one decimal.
func RealisticAffinity(e *models.RawEntity) float64 {
	raw := e.Affinity()
	popularity := e.Popularity.Or(0)
	distance := e.Query.Distance.Or(defaultDistance)
	keywords := float64(len(e.Properties.Keywords))

	score := raw +
		(popularity-0.5)*0.2 +
		(1-distance/distanceCap)*0.15 - 0.075 +
		(keywords-3)*0.02 +
		NameVariance(e.Name)

	score = math.Max(0.5, math.Min(0.9, score))
	return math.Round(score*100*10) / 10
}

// AudienceSize estimates reach from popularity and tag count, truncating
// per entity.
func AudienceSize(members []*models.RawEntity) int {
	total := 0
	for _, e := range members {
		multiplier := 3000 + 1000*len(e.Tags)
		total += int(e.Popularity.Or(0) * float64(multiplier))
	}
	return total
}

func signalsFor(e *models.RawEntity) []string {
	var signals []string
	for _, tag := range e.Tags {
		if label, ok := matchTag(tag.Name, tag.Type, signals); ok {
			signals = append(signals, label)
		}
	}
	for _, kw := range e.KeywordNames(5) {
		if label, ok := matchText(kw, keywordRules); ok {
			signals = append(signals, label)
		}
	}
	if label, ok := matchText(e.Properties.Description, descriptionRules); ok {
		signals = append(signals, label)
	}
	return signals
}

// ClassifyEntity returns the cluster an entity belongs to.
func ClassifyEntity(e *models.RawEntity) string {
	return chooseCluster(signalsFor(e))
}

// ExtractClusters groups entities into at most k clusters ordered by lift.
func ExtractClusters(entities []models.RawEntity, k int) []models.CulturalCluster {
	if len(entities) == 0 || k <= 0 {
		return []models.CulturalCluster{}
	}

	sorted := make([]*models.RawEntity, len(entities))
	for i := range entities {
		sorted[i] = &entities[i]
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Affinity() > sorted[j].Affinity()
	})

	var order []*clusterStats
	byName := make(map[string]*clusterStats)
	for _, e := range sorted {
		name := ClassifyEntity(e)
		stats, ok := byName[name]
		if !ok {
			stats = &clusterStats{name: name, min: 1.0}
			byName[name] = stats
			order = append(order, stats)
		}
		affinity := e.Affinity()
		stats.members = append(stats.members, e)
		stats.total += affinity
		stats.max = math.Max(stats.max, affinity)
		stats.min = math.Min(stats.min, affinity)
		stats.avg = stats.total / float64(len(stats.members))
	}

	clusters := make([]models.CulturalCluster, 0, len(order))
	for _, stats := range order {
		lift := 0.0
		for _, e := range stats.members {
			lift = math.Max(lift, RealisticAffinity(e))
		}

		examples := stats.members
		if len(examples) > exampleCount {
			examples = examples[:exampleCount]
		}
		summaries := make([]models.EntitySummary, 0, len(examples))
		for _, e := range examples {
			entityType := e.Subtype
			if entityType == "" {
				entityType = "place"
			}
			summaries = append(summaries, models.EntitySummary{
				Type:     entityType,
				Name:     e.Name,
				Affinity: RealisticAffinity(e),
				Keywords: e.KeywordNames(3),
			})
		}

		clusters = append(clusters, models.CulturalCluster{
			ClusterName:     stats.name,
			LiftScore:       lift,
			AudienceSize:    AudienceSize(stats.members),
			ExampleEntities: summaries,
		})
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].LiftScore > clusters[j].LiftScore
	})
	if len(clusters) > k {
		clusters = clusters[:k]
	}
	return clusters
}

// BuildInsightPackage wraps clusters with the prompt and search radius for
// the report generator.
func BuildInsightPackage(userPrompt string, params map[string]interface{}, clusters []models.CulturalCluster) models.InsightPackage {
	if clusters == nil {
		clusters = []models.CulturalCluster{}
	}
	return models.InsightPackage{
		UserPrompt: userPrompt,
		QlooJSON: models.ClusterSummary{
			RadiusM:  radiusFromParams(params),
			Clusters: clusters,
		},
	}
}

func radiusFromParams(params map[string]interface{}) float64 {
	switch v := params["filter.location.radius"].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return defaultRadiusM
}
