// internal/workers/reporting/generate-report/handler_test.go
package generatereport

import (
	"context"
	"strings"
	"testing"

	"culturis/internal/common/logger"
	"culturis/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePackage() models.InsightPackage {
	return models.InsightPackage{
		UserPrompt: "matcha bar with vinyl in Brooklyn",
		QlooJSON: models.ClusterSummary{
			RadiusM: 4000,
			Clusters: []models.CulturalCluster{
				{
					ClusterName:  "Japanese Culture Enthusiasts",
					LiftScore:    82.5,
					AudienceSize: 2450,
					ExampleEntities: []models.EntitySummary{
						{Type: "place", Name: "Cha Cha Matcha", Affinity: 91.2, Keywords: []string{"matcha", "tea", "latte", "cozy"}},
						{Type: "place", Name: "Ippudo", Affinity: 88},
					},
				},
				{
					ClusterName:  "Vinyl & Music Lovers",
					LiftScore:    70,
					AudienceSize: 800,
				},
			},
		},
	}
}

// ==========================
// Formatting Tests
// ==========================

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "70.0", formatScore(70))
	assert.Equal(t, "82.5", formatScore(82.5))
	assert.Equal(t, "4.0", formatScore(4))
}

func TestFormatThousands(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{3250, "3,250"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatThousands(tt.in))
	}
}

func TestFormatAudience(t *testing.T) {
	assert.Equal(t, "2K", formatAudience(2450))
	assert.Equal(t, "800", formatAudience(800))
}

// ==========================
// Recommendation Tests
// ==========================

func TestClusterRecommendations(t *testing.T) {
	tests := []struct {
		name      string
		cluster   string
		lift      float64
		firstLine string
		band      string
	}{
		{"japanese exceptional", "Japanese Culture Enthusiasts", 85, "• Partner with authentic Japanese suppliers and cultural centers", "Exceptional affinity (85.0%)"},
		{"coffee strong", "Third Wave Coffee Devotees", 77.5, "• Source single-origin beans from specialty micro-roasters", "Strong affinity (77.5%)"},
		{"default solid", "Local Cultural Enthusiasts", 66, "• Engage authentically with local cultural preferences and traditions", "Solid affinity (66.0%)"},
		{"moderate", "Vinyl & Music Lovers", 51, "• Curate rare and limited-edition vinyl collections", "Moderate affinity (51.0%)"},
		{"no band", "Premium Experience Seekers", 40, "• Curate exclusive, members-only cultural experiences", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := ClusterRecommendations(tt.cluster, tt.lift)
			lines := strings.Split(recs, "\n")
			assert.Equal(t, tt.firstLine, lines[0])
			if tt.band == "" {
				assert.Len(t, lines, 4)
				return
			}
			require.Len(t, lines, 5)
			assert.Contains(t, lines[4], tt.band)
		})
	}
}

func TestStrategicInsights(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, NoInsights, StrategicInsights(nil))
	})

	t.Run("dominant and totals", func(t *testing.T) {
		out := StrategicInsights(samplePackage().QlooJSON.Clusters)
		assert.Contains(t, out, "- **Total Addressable Audience:** 3,250 potential customers")
		assert.Contains(t, out, "- **Average Cultural Affinity:** 76.2%")
		assert.Contains(t, out, "- **Primary Target Segment:** Japanese Culture Enthusiasts (82.5% affinity)")
		assert.Contains(t, out, "**Cultural Authenticity First:**")
		assert.Contains(t, out, "- Track engagement with japanese culture enthusiasts through social media")
		assert.Contains(t, out, "between the 2 identified cultural segments")
	})

	t.Run("first maximum wins ties", func(t *testing.T) {
		out := StrategicInsights([]models.CulturalCluster{
			{ClusterName: "Arts & Culture Creatives", LiftScore: 70},
			{ClusterName: "Vinyl & Music Lovers", LiftScore: 70},
		})
		assert.Contains(t, out, "Primary Target Segment:** Arts & Culture Creatives")
	})

	t.Run("music focus", func(t *testing.T) {
		out := StrategicInsights([]models.CulturalCluster{{ClusterName: "Vinyl & Music Lovers", LiftScore: 60}})
		assert.Contains(t, out, "**Sound Strategy:**")
	})
}

// ==========================
// Render Tests
// ==========================

func TestRender(t *testing.T) {
	out := Render(samplePackage())

	assert.True(t, strings.HasPrefix(out, "\nBased on Qloo's cultural data analysis for: **matcha bar with vinyl in Brooklyn**\n"))
	assert.Contains(t, out, "We've identified 2 distinct cultural segments within 4.0km radius")
	assert.Contains(t, out, "### 1. Japanese Culture Enthusiasts\n**Affinity Score:** 82.5% | **Estimated Audience:** 2K\n")
	assert.Contains(t, out, "- **Cha Cha Matcha** (place) - 91.2% affinity\n  *Cultural markers: matcha, tea, latte*\n")
	assert.Contains(t, out, "- **Ippudo** (place) - 88.0% affinity\n\n")
	assert.Contains(t, out, "### 2. Vinyl & Music Lovers\n**Affinity Score:** 70.0% | **Estimated Audience:** 800\n**Strategic Recommendations:**")
	assert.NotContains(t, out, "cozy")
}

func TestRender_NoClusters(t *testing.T) {
	out := Render(models.InsightPackage{QlooJSON: models.ClusterSummary{RadiusM: 6000}})

	assert.Contains(t, out, "**Business planning query**")
	assert.Contains(t, out, "identified 0 distinct cultural segments within 6.0km radius")
	assert.True(t, strings.HasSuffix(out, NoInsights))
}

// ==========================
// Handler Tests
// ==========================

func TestHandler_Execute(t *testing.T) {
	h := NewHandler(LoadConfig(), logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{
		UserQuery:      "ignored when package carries a prompt",
		InsightPackage: samplePackage(),
	})
	require.NoError(t, err)
	assert.Contains(t, out.Pretty, "**matcha bar with vinyl in Brooklyn**")
}

func TestHandler_Execute_FallsBackToUserQuery(t *testing.T) {
	h := NewHandler(LoadConfig(), logger.NewNoOpLogger())

	out, err := h.Execute(context.Background(), &Input{UserQuery: "natural wine bar"})
	require.NoError(t, err)
	assert.Contains(t, out.Pretty, "**natural wine bar**")
	assert.Contains(t, out.Pretty, NoInsights)
}
