// internal/workers/venues/score-venues/cultural_match.go
package scorevenues

import (
	"fmt"
	"strings"

	"culturis/internal/models"

	"github.com/samber/lo"
)

const matchedTasteLimit = 4

// typedTagRule lets a taste of tasteType match any tag of one of tagTypes
// whose name contains one of words.
type typedTagRule struct {
	tasteType string
	tagTypes  []string
	words     []string
}

var typedTagRules = []typedTagRule{
	{
		tasteType: models.TasteFoodBeverage,
		tagTypes:  []string{"venue_type", "business_type"},
		words:     []string{"restaurant", "cafe", "coffee", "bar", "dining", "food", "drink"},
	},
	{
		tasteType: models.TasteVisualArts,
		tagTypes:  []string{"venue_type", "category"},
		words:     []string{"gallery", "museum", "art", "studio", "exhibition", "creative"},
	},
}

// phraseKeywords expands well-known taste names into the words a matching
// venue would carry.
var phraseKeywords = map[string][]string{
	"contemporary art": {"gallery", "museum", "art", "creative", "design"},
	"specialty coffee": {"coffee", "cafe", "espresso", "roast", "brew"},
	"craft beer":       {"brewery", "beer", "tap", "ale", "lager", "craft"},
	"vintage fashion":  {"vintage", "boutique", "thrift", "retro", "second hand"},
	"fine dining":      {"restaurant", "dining", "cuisine", "chef", "gourmet"},
	"live music":       {"music", "concert", "live", "band", "venue", "stage"},
	"wine":             {"wine", "vineyard", "tasting", "cellar", "sommelier"},
	"street food":      {"food truck", "street", "casual", "quick", "takeout"},
}

func tagMatchesTaste(tag models.EntityTag, tasteType string, words []string) bool {
	tagName := strings.ToLower(tag.Name)
	if anyWordIn(tagName, words) {
		return true
	}
	tagType := strings.ToLower(tag.Type)
	for _, rule := range typedTagRules {
		if rule.tasteType == tasteType && lo.Contains(rule.tagTypes, tagType) && anyWordIn(tagName, rule.words) {
			return true
		}
	}
	return false
}

func keywordMatchesTaste(keywords []string, words []string) bool {
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if kw == "" {
			continue
		}
		for _, w := range words {
			if strings.Contains(kw, w) || strings.Contains(w, kw) {
				return true
			}
		}
	}
	return false
}

func phraseMatches(phrase, name string, tags []models.EntityTag, keywords []string) bool {
	mapped, ok := phraseKeywords[phrase]
	if !ok {
		return false
	}
	return lo.SomeBy(mapped, func(w string) bool {
		if nameOrTagsMention(name, tags, w) {
			return true
		}
		return lo.SomeBy(keywords, func(kw string) bool {
			return strings.Contains(strings.ToLower(kw), w)
		})
	})
}

// MatchedTastes lists the names of the first four tastes the entity
// reflects, deduplicated in first-seen order.
func MatchedTastes(e *models.RawEntity, tastes []models.TasteTag) []string {
	if len(tastes) > matchedTasteLimit {
		tastes = tastes[:matchedTasteLimit]
	}
	name := strings.ToLower(e.Name)
	keywords := e.KeywordNames(0)
	firstKeywords := e.KeywordNames(8)

	var matches []string
	for _, taste := range tastes {
		phrase := strings.ToLower(taste.Name)
		tasteType := strings.ToLower(taste.Type)

		words := significantWords(phrase, 2)
		if anyWordIn(name, words) {
			matches = append(matches, taste.Name)
			continue
		}
		if lo.ContainsBy(e.Tags, func(tag models.EntityTag) bool { return tagMatchesTaste(tag, tasteType, words) }) {
			matches = append(matches, taste.Name)
			continue
		}

		if keywordMatchesTaste(firstKeywords, significantWords(phrase, 3)) {
			matches = append(matches, taste.Name)
		}
		if phraseMatches(phrase, name, e.Tags, keywords) {
			matches = append(matches, taste.Name)
		}
	}
	return lo.Uniq(matches)
}

// CulturalMatchLabel renders matched taste names, or a fallback phrase keyed
// by venue type when nothing matched.
func CulturalMatchLabel(matches []string, venueType string, tastes []models.TasteTag) string {
	switch {
	case len(matches) >= 2:
		label := matches[0] + " + " + matches[1]
		if len(matches) > 2 {
			label += fmt.Sprintf(" + %d more", len(matches)-2)
		}
		return label
	case len(matches) == 1:
		return matches[0]
	}

	hasType := func(t string) bool {
		return lo.ContainsBy(tastes, func(taste models.TasteTag) bool { return taste.Type == t })
	}

	switch venueType {
	case "Restaurant", "Bar", "Cafe":
		if hasType(models.TasteFoodBeverage) {
			return strings.ToLower(venueType) + " culture"
		}
		return "dining experience"
	case "Art Gallery", "Museum", "Creative Space":
		if hasType(models.TasteVisualArts) {
			return "arts & culture"
		}
		return "creative space"
	case "Boutique":
		return "curated shopping"
	}
	if len(tastes) > 0 {
		return tastes[0].Name + " adjacent"
	}
	return "local culture"
}
