// internal/workers/venues/score-venues/scorer.go
package scorevenues

import (
	"fmt"
	"math/rand"
	"sort"

	"culturis/internal/models"
)

// Scorer turns raw entities into a ranked, type-diverse venue list.
// It holds no per-request state.
type Scorer struct {
	cap               int
	minBeforeBackfill int
	rnd               func() float64
}

// NewScorer builds a scorer. rnd supplies jitter for venues without a
// position; nil uses math/rand.
func NewScorer(config *Config, rnd func() float64) *Scorer {
	if rnd == nil {
		rnd = rand.Float64
	}
	return &Scorer{
		cap:               config.Cap,
		minBeforeBackfill: config.MinBeforeBackfill,
		rnd:               rnd,
	}
}

type candidate struct {
	entity *models.RawEntity
	score  float64
}

// ScoreAndSelect filters, scores and diversifies entities for the given
// tastes. location only feeds the display address.
func (s *Scorer) ScoreAndSelect(entities []models.RawEntity, tastes []models.TasteTag, location string, user [2]float64) Selection {
	cultural := FilterCultural(entities)

	candidates := make([]candidate, 0, len(cultural))
	for _, e := range cultural {
		candidates = append(candidates, candidate{entity: e, score: TasteMatchScore(e, tastes)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > s.cap {
		candidates = candidates[:s.cap]
	}

	venues := make([]models.VenueRecord, 0, len(candidates))
	for i, c := range candidates {
		venues = append(venues, s.buildVenue(i+1, c.entity, tastes, location, user))
	}

	selected, distribution := Diversify(venues, s.cap, s.minBeforeBackfill)
	return Selection{Venues: selected, Distribution: distribution}
}

func (s *Scorer) buildVenue(position int, e *models.RawEntity, tastes []models.TasteTag, location string, user [2]float64) models.VenueRecord {
	venueType := ResolveVenueType(e)
	base := e.Query.Affinity.Or(defaultBaseAffinity)
	popularity := e.Popularity.Or(defaultPopularity)
	distance := e.Query.Distance.Or(defaultDistance)

	name := e.Name
	if name == "" {
		name = fmt.Sprintf("Local Venue %d", position)
	}

	return models.VenueRecord{
		ID:            position,
		Number:        position,
		Name:          name,
		Type:          venueType,
		Affinity:      DisplayAffinity(base, popularity, distance),
		Rating:        Rating(popularity, base),
		Coordinates:   VenueCoordinates(e, user, s.rnd),
		Address:       location + " Area",
		CulturalMatch: CulturalMatchLabel(MatchedTastes(e, tastes), venueType, tastes),
		QlooData: models.VenueQlooData{
			EntityID:   e.Identifier(),
			Popularity: popularity,
			Keywords:   e.KeywordNames(3),
		},
	}
}
