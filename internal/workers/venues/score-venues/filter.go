// internal/workers/venues/score-venues/filter.go
package scorevenues

import (
	"strings"

	"culturis/internal/models"

	"github.com/samber/lo"
)

// serviceSkipList names services that are never venues.
var serviceSkipList = []string{
	"airport", "international airport", "medical center", "hospital", "urgent care",
	"gas station", "auto repair", "car wash", "pharmacy chain", "cvs", "walgreens",
	"dentist office", "veterinary", "bank branch", "atm", "post office",
}

// chainDenyList names chains and services that are never cultural venues.
var chainDenyList = []string{
	"veterinary", "hospital", "medical", "pharmacy", "gas station", "auto", "car wash",
	"applebee", "wendy", "mcdonald", "burger king", "taco bell", "subway", "domino",
	"pizza hut", "kfc", "popeyes", "chipotle", "panera", "starbucks chain",
	"cvs", "walgreens", "rite aid", "walmart", "target", "home depot",
	"harley-davidson", "ford", "toyota", "honda", "bmw", "mercedes",
}

var denyList = lo.Uniq(append(append([]string{}, serviceSkipList...), chainDenyList...))

// culturalTagWords lists, per tag type, the tag-name words that mark a venue
// as cultural.
var culturalTagWords = map[string][]string{
	"urn:tag:category:place":  {"restaurant", "museum", "art museum", "market", "cafe", "deli", "event venue"},
	"urn:tag:genre:place":     {"restaurant", "museum", "art museum", "market", "deli", "arena"},
	"urn:tag:amenity:place":   {"restaurant", "bar", "cafe"},
	"urn:tag:offerings:place": {"comfort food", "happy hour", "live music"},
}

var culturalNameIndicators = []string{
	"museum", "gallery", "market", "deli", "restaurant", "cafe", "bar", "lounge",
	"center", "house", "theater", "studio", "kitchen", "bistro", "tavern",
	"club", "palace", "hall", "room", "eataly", "katz", "beauty & essex",
}

var landmarkTags = []string{"tourist attraction", "historical landmark", "monument"}

const (
	minCultural      = 8
	backfillCultural = 12
)

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// IsDenied reports whether a venue name hits the chain/service denylist.
func IsDenied(name string) bool {
	return containsAny(strings.ToLower(name), denyList)
}

// IsCultural reports whether an entity looks like a cultural venue by its
// tags, its name, or a landmark tag.
func IsCultural(e *models.RawEntity) bool {
	for _, tag := range e.Tags {
		words, ok := culturalTagWords[tag.Type]
		if ok && containsAny(strings.ToLower(tag.Name), words) {
			return true
		}
	}
	if containsAny(strings.ToLower(e.Name), culturalNameIndicators) {
		return true
	}
	return lo.ContainsBy(e.Tags, func(tag models.EntityTag) bool {
		return lo.Contains(landmarkTags, strings.ToLower(tag.Name))
	})
}

// FilterCultural drops denylisted entities, then keeps cultural ones in
// input order. When fewer than eight survive, the list is topped up to
// twelve from the remaining entities that are not denylisted.
func FilterCultural(entities []models.RawEntity) []*models.RawEntity {
	kept := make([]*models.RawEntity, 0, len(entities))
	taken := make(map[int]bool, len(entities))

	for i := range entities {
		e := &entities[i]
		if IsDenied(e.Name) {
			taken[i] = true
			continue
		}
		if IsCultural(e) {
			kept = append(kept, e)
			taken[i] = true
		}
	}

	if len(kept) >= minCultural {
		return kept
	}
	for i := range entities {
		if len(kept) >= backfillCultural {
			break
		}
		if taken[i] {
			continue
		}
		kept = append(kept, &entities[i])
		taken[i] = true
	}
	return kept
}
