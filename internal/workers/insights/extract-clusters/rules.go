// internal/workers/insights/extract-clusters/rules.go
package extractclusters

import "strings"

const DefaultCluster = "Local Cultural Enthusiasts"

// tagRule fires when the lowercased tag name contains one of words, or,
// for rules without words, when the tag type contains typeContains.
type tagRule struct {
	label            string
	words            []string
	typeContains     string
	requireNoSignals bool
}

type textRule struct {
	label string
	words []string
}

// Evaluated in order; the first rule that fires for a tag wins.
var tagRules = []tagRule{
	{label: "Japanese Culture Enthusiasts", words: []string{"japanese", "asian"}},
	{label: "European Culture Seekers", words: []string{"italian", "mediterranean"}},
	{label: "Latin Culture Community", words: []string{"mexican", "latin", "caribbean"}},
	{label: "Culinary Adventurers", typeContains: "cuisine", requireNoSignals: true},
	{label: "Vinyl & Music Collectors", words: []string{"vinyl", "record", "music"}},
	{label: "Live Music Scene", words: []string{"live", "concert", "dj", "performance"}},
	{label: "Craft Cocktail Enthusiasts", words: []string{"bar", "cocktail", "wine", "beer", "nightlife"}},
	{label: "Arts & Culture Connoisseurs", words: []string{"art", "gallery", "museum", "creative", "design"}},
	{label: "Artisan Craft Community", words: []string{"craft", "artisan", "maker", "handmade"}},
	{label: "Mindful Wellness Community", words: []string{"yoga", "fitness", "health", "organic", "wellness"}},
	{label: "Third Wave Coffee Culture", words: []string{"coffee", "cafe"}},
}

// Applied to each of the first five keywords.
var keywordRules = []textRule{
	{label: "Authenticity Seekers", words: []string{"authentic", "traditional", "heritage", "original"}},
	{label: "Cultural Trendsetters", words: []string{"trendy", "hip", "cool", "modern", "contemporary", "instagram"}},
	{label: "Neighborhood Loyalists", words: []string{"local", "neighborhood", "community", "family"}},
	{label: "Premium Experience Seekers", words: []string{"premium", "luxury", "upscale", "fine", "exclusive"}},
	{label: "Conscious Culture Advocates", words: []string{"sustainable", "eco", "green", "ethical", "conscious"}},
}

// Applied once to the description.
var descriptionRules = []textRule{
	{label: "Intimate Experience Seekers", words: []string{"intimate", "cozy", "hideaway", "secret"}},
	{label: "Innovation Pioneers", words: []string{"innovative", "unique", "creative", "experimental", "cutting-edge"}},
	{label: "Classic Culture Appreciators", words: []string{"classic", "timeless", "established", "renowned"}},
}

// clusterPriority breaks ties when an entity emits several signals.
var clusterPriority = []string{
	"Japanese Culture Enthusiasts",
	"Vinyl & Music Collectors",
	"Arts & Culture Connoisseurs",
	"Third Wave Coffee Culture",
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func (r tagRule) matches(name, tagType string, signals []string) bool {
	if len(r.words) > 0 {
		return containsAny(name, r.words)
	}
	if !strings.Contains(tagType, r.typeContains) {
		return false
	}
	return !r.requireNoSignals || len(signals) == 0
}

func matchTag(name, tagType string, signals []string) (string, bool) {
	name = strings.ToLower(name)
	for _, r := range tagRules {
		if r.matches(name, tagType, signals) {
			return r.label, true
		}
	}
	return "", false
}

func matchText(text string, rules []textRule) (string, bool) {
	text = strings.ToLower(text)
	for _, r := range rules {
		if containsAny(text, r.words) {
			return r.label, true
		}
	}
	return "", false
}

// chooseCluster picks the highest-priority signal, else the first one.
func chooseCluster(signals []string) string {
	if len(signals) == 0 {
		return DefaultCluster
	}
	for _, p := range clusterPriority {
		for _, s := range signals {
			if s == p {
				return p
			}
		}
	}
	return signals[0]
}
