// internal/workers/venues/score-venues/scoring.go
package scorevenues

import (
	"math"
	"strings"
	"unicode/utf8"

	"culturis/internal/models"

	"github.com/samber/lo"
)

const (
	baseTasteScore = 0.5
	maxTasteScore  = 0.95

	defaultBaseAffinity = 0.7
	defaultPopularity   = 0.5
	defaultDistance     = 2000.0

	minDisplayAffinity = 60
	maxDisplayAffinity = 95

	jitterSpan = 0.02
)

// tasteIndicator adds a bonus when a taste id carries one of markers and a
// venue name or tag mentions one of words. Only the first rule whose markers
// match is considered.
type tasteIndicator struct {
	markers []string
	words   []string
}

var tasteIndicators = []tasteIndicator{
	{markers: []string{"artist:"}, words: []string{"music", "concert", "venue", "club", "bar", "lounge"}},
	{markers: []string{"beverage:"}, words: []string{"bar", "cafe", "coffee", "brewery", "wine", "cocktail"}},
	{markers: []string{"food:", "cuisine:"}, words: []string{"restaurant", "kitchen", "dining", "food", "eatery", "bistro"}},
}

// significantWords splits a lowercased phrase into words longer than minLen runes.
func significantWords(phrase string, minLen int) []string {
	return lo.Filter(strings.Fields(strings.ToLower(phrase)), func(w string, _ int) bool {
		return utf8.RuneCountInString(w) > minLen
	})
}

func anyWordIn(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func nameOrTagsMention(name string, tags []models.EntityTag, word string) bool {
	if strings.Contains(name, word) {
		return true
	}
	return lo.ContainsBy(tags, func(t models.EntityTag) bool {
		return strings.Contains(strings.ToLower(t.Name), word)
	})
}

// TasteMatchScore rates how well an entity fits the user's tastes, in
// [0.5, 0.95].
func TasteMatchScore(e *models.RawEntity, tastes []models.TasteTag) float64 {
	score := baseTasteScore
	name := strings.ToLower(e.Name)
	keywords := e.KeywordNames(5)

	for _, taste := range tastes {
		words := significantWords(taste.Name, 3)
		if anyWordIn(name, words) {
			score += 0.2
		}

		for _, ind := range tasteIndicators {
			if !anyWordIn(taste.ID, ind.markers) {
				continue
			}
			if lo.SomeBy(ind.words, func(w string) bool { return nameOrTagsMention(name, e.Tags, w) }) {
				score += 0.15
			}
			break
		}

		for _, tag := range e.Tags {
			if anyWordIn(strings.ToLower(tag.Name), words) {
				score += 0.1
			}
		}
		for _, kw := range keywords {
			if anyWordIn(strings.ToLower(kw), words) {
				score += 0.05
			}
		}
	}
	return math.Min(score, maxTasteScore)
}

// DisplayAffinity converts raw affinity to the 60..95 percentage shown to
// users, with bonuses for popular and nearby venues.
func DisplayAffinity(base, popularity, distance float64) int {
	score := base * 100
	if popularity > 0.7 {
		score += 10
	}
	if distance < 1000 {
		score += 5
	}
	score = math.Min(maxDisplayAffinity, math.Max(minDisplayAffinity, score))
	return int(math.RoundToEven(score))
}

// Rating derives a 3.0..5.0 star rating, rounded to one decimal.
func Rating(popularity, base float64) float64 {
	r := 3.5 + popularity*1.3 + base*0.5
	r = math.Min(5.0, math.Max(3.0, r))
	return math.Round(r*10) / 10
}

// VenueCoordinates returns the entity position when valid, otherwise a point
// within ±0.01° of the user so markers do not stack.
func VenueCoordinates(e *models.RawEntity, user [2]float64, rnd func() float64) [2]float64 {
	if lat, lng, ok := e.Location.Coordinates(); ok {
		return [2]float64{lat, lng}
	}
	return [2]float64{
		user[0] + (rnd()-0.5)*jitterSpan,
		user[1] + (rnd()-0.5)*jitterSpan,
	}
}
