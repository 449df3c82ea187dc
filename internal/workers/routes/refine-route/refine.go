// internal/workers/routes/refine-route/refine.go
package refineroute

import (
	"fmt"
	"strings"

	"culturis/internal/models"

	"github.com/samber/lo"
)

const (
	UpdatedMessage = "Route updated with your requested changes"
	ClarifyMessage = "I understand you want to refine your route. Could you be more specific about what you'd like to change?"
)

var Suggestions = []string{
	"Replace the first venue",
	"Find a different restaurant",
	"Tell me about the second venue",
	"Adjust the timing",
}

// ordinal maps a word in the request to a route position. last resolves
// against the route length.
type ordinal struct {
	word  string
	index int
}

var ordinals = []ordinal{
	{"first", 0},
	{"second", 1},
	{"third", 2},
	{"last", -1},
}

// findOrdinal returns the first ordinal mentioned that points inside a route
// of n venues.
func findOrdinal(request string, n int) (string, int, bool) {
	for _, o := range ordinals {
		if !strings.Contains(request, o.word) {
			continue
		}
		idx := o.index
		if idx < 0 {
			idx = n - 1
		}
		if idx >= 0 && idx < n {
			return o.word, idx, true
		}
		return "", 0, false
	}
	return "", 0, false
}

func isRestaurant(v models.VenueRecord) bool {
	return strings.Contains(strings.ToLower(v.Type), "restaurant")
}

// firstAlternative picks the first available venue accepted by match that is
// not the venue being replaced and not already on the route.
func firstAlternative(route []models.VenueRecord, current models.VenueRecord, available []models.VenueRecord, match func(models.VenueRecord) bool) (models.VenueRecord, bool) {
	onRoute := lo.Map(route, func(v models.VenueRecord, _ int) int { return v.ID })
	return lo.Find(available, func(v models.VenueRecord) bool {
		return match(v) && v.ID != current.ID && !lo.Contains(onRoute, v.ID)
	})
}

// Refine applies a natural-language change request to a route. It never
// fails: requests it cannot act on get a clarification with suggestions.
func Refine(route models.Route, request string, available []models.VenueRecord) *Output {
	lower := strings.ToLower(request)
	venues := append([]models.VenueRecord(nil), route.Venues...)

	switch {
	case strings.Contains(lower, "replace") || strings.Contains(lower, "different"):
		if replaceVenue(venues, lower, available) {
			updated := models.Route{Venues: venues, Extra: route.Extra}
			return &Output{Success: true, Message: UpdatedMessage, UpdatedRoute: &updated}
		}
	case strings.Contains(lower, "details") || strings.Contains(lower, "tell me about"):
		if word, idx, ok := findOrdinal(lower, len(venues)); ok {
			v := venues[idx]
			return &Output{Success: true, Message: describe(word, v), VenueDetails: &v}
		}
	}

	return &Output{Success: true, Message: ClarifyMessage, Suggestions: Suggestions}
}

func replaceVenue(venues []models.VenueRecord, request string, available []models.VenueRecord) bool {
	if _, idx, ok := findOrdinal(request, len(venues)); ok {
		current := venues[idx]
		alt, found := firstAlternative(venues, current, available, func(v models.VenueRecord) bool {
			return v.Type == current.Type
		})
		if found {
			venues[idx] = alt
		}
		return found
	}

	if !strings.Contains(request, "restaurant") {
		return false
	}
	for i, v := range venues {
		if !isRestaurant(v) {
			continue
		}
		alt, found := firstAlternative(venues, v, available, isRestaurant)
		if found {
			venues[i] = alt
		}
		return found
	}
	return false
}

func describe(word string, v models.VenueRecord) string {
	name := v.Name
	if name == "" {
		name = "Unknown"
	}
	venueType := v.Type
	if venueType == "" {
		venueType = "venue"
	}
	return fmt.Sprintf("The %s venue is %s, a %s with a %d%% cultural match. It's rated %.1f stars.", word, name, venueType, v.Affinity, v.Rating)
}
