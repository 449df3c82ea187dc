// internal/workers/venues/score-venues/diversity.go
package scorevenues

import (
	"sort"

	"culturis/internal/models"
)

const defaultTypeCap = 3

// typeCaps bounds how many venues of one type a list may hold.
var typeCaps = map[string]int{
	"Restaurant":          4,
	"Deli":                2,
	"Cafe":                2,
	"Bar":                 2,
	"Art Museum":          3,
	"Museum":              3,
	"Market":              2,
	"Event Venue":         2,
	"Arena":               1,
	"Park":                2,
	"Tourist Attraction":  2,
	"Historical Landmark": 1,
}

// TypeCap returns the diversity cap for a venue type.
func TypeCap(venueType string) int {
	if c, ok := typeCaps[venueType]; ok {
		return c
	}
	return defaultTypeCap
}

// Diversify orders venues by affinity and admits them while their type is
// under its cap, up to limit. If fewer than minBeforeBackfill are admitted,
// the rest are added in affinity order regardless of type. The result is
// renumbered from 1.
func Diversify(venues []models.VenueRecord, limit, minBeforeBackfill int) ([]models.VenueRecord, map[string]int) {
	sorted := append([]models.VenueRecord(nil), venues...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Affinity > sorted[j].Affinity
	})

	selected := make([]models.VenueRecord, 0, limit)
	admitted := make([]bool, len(sorted))
	counts := make(map[string]int)

	for i, v := range sorted {
		if len(selected) >= limit {
			break
		}
		if counts[v.Type] >= TypeCap(v.Type) {
			continue
		}
		selected = append(selected, v)
		admitted[i] = true
		counts[v.Type]++
	}

	if len(selected) < minBeforeBackfill {
		for i, v := range sorted {
			if len(selected) >= limit {
				break
			}
			if admitted[i] {
				continue
			}
			selected = append(selected, v)
			admitted[i] = true
		}
	}

	distribution := make(map[string]int)
	for i := range selected {
		selected[i].ID = i + 1
		selected[i].Number = i + 1
		distribution[selected[i].Type]++
	}
	return selected, distribution
}
