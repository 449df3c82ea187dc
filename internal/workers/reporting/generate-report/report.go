// internal/workers/reporting/generate-report/report.go
package generatereport

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"culturis/internal/models"
)

const (
	NoInsights = "No strategic insights available for the current clusters."
	footer     = "*This analysis is powered by Qloo's cultural intelligence platform, analyzing real affinity data from local venues and cultural patterns.*"
)

// recommendationRule attaches advice to clusters whose name contains marker.
type recommendationRule struct {
	marker string
	advice []string
}

var recommendationRules = []recommendationRule{
	{"Japanese Culture", []string{
		"Partner with authentic Japanese suppliers and cultural centers",
		"Create traditional tea ceremony spaces for matcha service",
		"Host Japanese cultural events and language exchange meetups",
		"Source vintage Japanese vinyl and city-pop records directly from Japan",
	}},
	{"Vinyl & Music", []string{
		"Curate rare and limited-edition vinyl collections",
		"Install high-quality listening stations with audiophile equipment",
		"Host intimate listening parties and album release events",
		"Create vinyl care and education workshops",
	}},
	{"Arts & Culture", []string{
		"Feature rotating exhibitions from local and international artists",
		"Design Instagram-worthy, gallery-quality interior spaces",
		"Host creative workshops and artistic collaboration events",
		"Partner with museums and cultural institutions for cross-promotion",
	}},
	{"Third Wave Coffee", []string{
		"Source single-origin beans from specialty micro-roasters",
		"Design cozy workspaces optimized for remote professionals",
		"Offer coffee education, cupping sessions, and brewing workshops",
		"Create seasonal menu rotations highlighting coffee terroir",
	}},
	{"Craft Cocktail", []string{
		"Develop signature cocktails inspired by Japanese flavors",
		"Design sophisticated evening ambiance with premium spirits",
		"Host sake tastings and Japanese whisky education events",
		"Create craft cocktail pairing experiences with vinyl listening",
	}},
	{"Mindful Wellness", []string{
		"Incorporate organic, health-conscious menu options",
		"Design calming environments with natural materials",
		"Partner with local yoga studios and wellness practitioners",
		"Offer meditation spaces and mindfulness workshops",
	}},
	{"Authenticity Seekers", []string{
		"Emphasize transparent sourcing and cultural storytelling",
		"Build relationships with cultural community elders and experts",
		"Create authentic cultural experiences, not superficial aesthetics",
		"Document and share the cultural heritage behind your offerings",
	}},
	{"Cultural Trendsetters", []string{
		"Stay ahead of emerging cultural trends and seasonal movements",
		"Create highly shareable, social media-optimized experiences",
		"Partner with local influencers and cultural tastemakers",
		"Launch limited-time cultural collaborations and pop-ups",
	}},
	{"Neighborhood Loyalists", []string{
		"Build deep relationships with long-term neighborhood residents",
		"Create loyalty programs and community member benefits",
		"Host neighborhood-specific events and local celebrations",
		"Support local causes and community organizations",
	}},
	{"Premium Experience", []string{
		"Curate exclusive, members-only cultural experiences",
		"Source rare and luxury cultural products and services",
		"Design sophisticated, upscale environments and service",
		"Create VIP cultural experiences and private events",
	}},
	{"Conscious Culture", []string{
		"Implement sustainable and ethical cultural practices",
		"Partner with fair-trade and socially responsible suppliers",
		"Create transparency in cultural sourcing and operations",
		"Support cultural preservation and community empowerment",
	}},
}

var defaultAdvice = []string{
	"Engage authentically with local cultural preferences and traditions",
	"Build genuine connections with cultural community leaders",
	"Adapt offerings to reflect neighborhood cultural diversity",
	"Create experiences that honor and celebrate local cultural heritage",
}

// liftBand phrases the strength of a lift score; bands are checked top-down
// and a score must exceed above.
type liftBand struct {
	above  float64
	format string
}

var liftBands = []liftBand{
	{80, "Exceptional affinity (%s%%) - this segment should be your primary focus"},
	{75, "Strong affinity (%s%%) suggests excellent market fit - prioritize investment here"},
	{65, "Solid affinity (%s%%) - test and iterate to strengthen connection"},
	{50, "Moderate affinity (%s%%) - explore ways to deepen cultural resonance"},
}

// focusRule picks the aggregate advice by the dominant cluster name.
type focusRule struct {
	marker string
	lines  []string
}

var focusRules = []focusRule{
	{"Culture", []string{
		"**Cultural Authenticity First:** Prioritize genuine cultural connections over trendy aesthetics",
		"**Community Integration:** Build relationships with cultural community leaders and venues",
		"**Authentic Sourcing:** Work directly with cultural suppliers and artisans",
	}},
	{"Music", []string{
		"**Sound Strategy:** Invest in quality audio systems and acoustic design",
		"**Programming Focus:** Develop consistent music programming that reflects local tastes",
		"**Artist Partnerships:** Build relationships with local musicians and promoters",
	}},
	{"Arts", []string{
		"**Visual Impact:** Design spaces that serve as canvases for artistic expression",
		"**Creative Partnerships:** Collaborate with local galleries, artists, and creative spaces",
		"**Experience Design:** Create Instagram-worthy moments and artistic interactions",
	}},
}

var defaultFocus = []string{
	"**Local-First Approach:** Prioritize community integration and neighborhood fit",
	"**Authentic Positioning:** Build genuine connections rather than surface-level trends",
	"**Adaptive Strategy:** Stay flexible to evolve with local preferences and feedback",
}

// formatScore prints a score the way the dashboard expects: shortest form,
// always with a decimal point.
func formatScore(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// formatThousands renders n with comma separators.
func formatThousands(n int) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.Itoa(n)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + b.String()
}

func formatAudience(n int) string {
	if n >= 1000 {
		return fmt.Sprintf("%dK", n/1000)
	}
	return strconv.Itoa(n)
}

// ClusterRecommendations returns the bullet list for one cluster.
func ClusterRecommendations(clusterName string, liftScore float64) string {
	advice := defaultAdvice
	for _, rule := range recommendationRules {
		if strings.Contains(clusterName, rule.marker) {
			advice = rule.advice
			break
		}
	}

	lines := make([]string, 0, len(advice)+1)
	for _, a := range advice {
		lines = append(lines, "• "+a)
	}
	for _, band := range liftBands {
		if liftScore > band.above {
			lines = append(lines, "• "+fmt.Sprintf(band.format, formatScore(liftScore)))
			break
		}
	}
	return strings.Join(lines, "\n")
}

// StrategicInsights summarises all clusters into aggregate advice.
func StrategicInsights(clusters []models.CulturalCluster) string {
	if len(clusters) == 0 {
		return NoInsights
	}

	total := 0
	sum := 0.0
	dominant := clusters[0]
	for _, c := range clusters {
		total += c.AudienceSize
		sum += c.LiftScore
		if c.LiftScore > dominant.LiftScore {
			dominant = c
		}
	}
	avg := sum / float64(len(clusters))

	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "- **Total Addressable Audience:** %s potential customers\n", formatThousands(total))
	fmt.Fprintf(&b, "- **Average Cultural Affinity:** %.1f%%\n", avg)
	fmt.Fprintf(&b, "- **Primary Target Segment:** %s (%s%% affinity)\n", dominant.ClusterName, formatScore(dominant.LiftScore))

	focus := defaultFocus
	for _, rule := range focusRules {
		if strings.Contains(dominant.ClusterName, rule.marker) {
			focus = rule.lines
			break
		}
	}
	for _, line := range focus {
		b.WriteString("- " + line + "\n")
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "- Track engagement with %s through social media and foot traffic\n", strings.ToLower(dominant.ClusterName))
	fmt.Fprintf(&b, "- Monitor cross-pollination between the %d identified cultural segments\n", len(clusters))
	b.WriteString("- Measure authentic community integration through local partnerships and word-of-mouth\n")
	b.WriteString(footer + "\n")
	return b.String()
}

// Render produces the markdown report for an insight package.
func Render(pkg models.InsightPackage) string {
	prompt := pkg.UserPrompt
	if prompt == "" {
		prompt = "Business planning query"
	}
	clusters := pkg.QlooJSON.Clusters
	radiusKm := math.Round(pkg.QlooJSON.RadiusM/100) / 10

	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "Based on Qloo's cultural data analysis for: **%s**\n", prompt)
	fmt.Fprintf(&b, "We've identified %d distinct cultural segments within %skm radius, each with unique affinity patterns and audience characteristics.\n", len(clusters), formatScore(radiusKm))
	b.WriteString("---\n")

	for i, c := range clusters {
		name := c.ClusterName
		if name == "" {
			name = fmt.Sprintf("Segment %d", i+1)
		}
		fmt.Fprintf(&b, "\n### %d. %s\n", i+1, name)
		fmt.Fprintf(&b, "**Affinity Score:** %s%% | **Estimated Audience:** %s\n", formatScore(c.LiftScore), formatAudience(c.AudienceSize))

		if len(c.ExampleEntities) > 0 {
			b.WriteString("**Key Cultural Signals:**\n")
			examples := c.ExampleEntities
			if len(examples) > 3 {
				examples = examples[:3]
			}
			for _, e := range examples {
				fmt.Fprintf(&b, "- **%s** (%s) - %s%% affinity\n", e.Name, e.Type, formatScore(e.Affinity))
				if len(e.Keywords) > 0 {
					kws := e.Keywords
					if len(kws) > 3 {
						kws = kws[:3]
					}
					fmt.Fprintf(&b, "  *Cultural markers: %s*\n", strings.Join(kws, ", "))
				}
			}
			b.WriteString("\n")
		}

		fmt.Fprintf(&b, "**Strategic Recommendations:**\n%s\n", ClusterRecommendations(name, c.LiftScore))
		b.WriteString("---\n\n")
	}

	b.WriteString(StrategicInsights(clusters))
	return b.String()
}
