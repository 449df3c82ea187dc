// internal/workers/venues/score-venues/categories.go
package scorevenues

import (
	"strings"

	"culturis/internal/models"
)

const (
	CategoryMusic    = "music_entertainment"
	CategoryFood     = "food_beverage"
	CategoryArts     = "arts_culture"
	CategoryShopping = "shopping_markets"
	CategoryGeneral  = "general_cultural"
)

type categoryRule struct {
	idMarkers []string
	nameWords []string
	category  string
}

var categoryRules = []categoryRule{
	{[]string{"artist:"}, []string{"music", "concert", "jazz", "live", "band", "artist"}, CategoryMusic},
	{[]string{"beverage:"}, []string{"coffee", "cafe", "beer", "wine", "cocktail", "bar", "brew"}, CategoryFood},
	{[]string{"food:", "cuisine:"}, []string{"restaurant", "food", "dining", "cuisine", "kitchen"}, CategoryFood},
	{nil, []string{"art", "gallery", "museum", "creative", "contemporary", "design"}, CategoryArts},
	{nil, []string{"shop", "boutique", "vintage", "fashion", "market"}, CategoryShopping},
}

// categoryFilters are the venue tag filters each category suggests.
var categoryFilters = []struct {
	category string
	filters  []string
}{
	{CategoryFood, []string{"urn:tag:genre:place:Restaurant", "urn:tag:category:place:Restaurant"}},
	{CategoryArts, []string{"urn:tag:genre:place:Museum", "urn:tag:category:place:Art Museum"}},
	{CategoryMusic, []string{"urn:tag:category:place:Event Venue", "urn:tag:genre:place:Arena"}},
	{CategoryShopping, []string{"urn:tag:category:place:Market", "urn:tag:category:place:Shopping Mall"}},
}

// CategorizeTaste assigns a taste to one broad category by its id and name.
func CategorizeTaste(taste models.TasteTag) string {
	name := strings.ToLower(taste.Name)
	for _, rule := range categoryRules {
		if anyWordIn(taste.ID, rule.idMarkers) || anyWordIn(name, rule.nameWords) {
			return rule.category
		}
	}
	return CategoryGeneral
}

// CategorizeTastes returns one category per taste and the venue filters the
// categories suggest.
func CategorizeTastes(tastes []models.TasteTag) (categories []string, filters []string) {
	categories = make([]string, 0, len(tastes))
	present := make(map[string]bool)
	for _, taste := range tastes {
		c := CategorizeTaste(taste)
		categories = append(categories, c)
		present[c] = true
	}

	filters = []string{}
	for _, cf := range categoryFilters {
		if present[cf.category] {
			filters = append(filters, cf.filters...)
		}
	}
	return categories, filters
}

// TasteURNs lists the taste ids in request order.
func TasteURNs(tastes []models.TasteTag) []string {
	urns := make([]string, 0, len(tastes))
	for _, t := range tastes {
		urns = append(urns, t.ID)
	}
	return urns
}
