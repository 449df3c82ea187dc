// internal/workers/venues/score-venues/venue_type.go
package scorevenues

import (
	"strings"

	"culturis/internal/models"
)

const DefaultVenueType = "Cultural Venue"

// typeRule maps "tagType:tagName" pairs to a canonical venue type. Rules are
// tried in order and the first one any tag satisfies wins.
type typeRule struct {
	patterns []string
	label    string
}

var venueTypeRules = []typeRule{
	{[]string{"urn:tag:category:place:American Restaurant", "urn:tag:category:place:Italian Restaurant", "urn:tag:category:place:Jewish Restaurant"}, "Restaurant"},
	{[]string{"urn:tag:category:place:Deli", "urn:tag:genre:place:Deli"}, "Deli"},
	{[]string{"urn:tag:category:place:Cafe", "urn:tag:amenity:place:Cafe"}, "Cafe"},
	{[]string{"urn:tag:genre:place:Restaurant"}, "Restaurant"},
	{[]string{"urn:tag:amenity:place:Bar", "urn:tag:amenity:place:Bar / Lounge"}, "Bar"},
	{[]string{"urn:tag:category:place:Art Museum", "urn:tag:genre:place:Art Museum"}, "Art Museum"},
	{[]string{"urn:tag:category:place:Modern Art Museum", "urn:tag:genre:place:Modern Art Museum"}, "Modern Art Museum"},
	{[]string{"urn:tag:category:place:Museum", "urn:tag:genre:place:Museum"}, "Museum"},
	{[]string{"urn:tag:category:place:Market", "urn:tag:genre:place:Market"}, "Market"},
	{[]string{"urn:tag:category:place:Shopping Mall"}, "Shopping Mall"},
	{[]string{"urn:tag:category:place:Event Venue", "urn:tag:genre:place:Event Venue"}, "Event Venue"},
	{[]string{"urn:tag:category:place:Arena", "urn:tag:genre:place:Arena"}, "Arena"},
	{[]string{"urn:tag:genre:place:Stadium"}, "Stadium"},
	{[]string{"urn:tag:genre:place:Tourist Attraction"}, "Tourist Attraction"},
	{[]string{"urn:tag:category:place:Tourist Attraction"}, "Tourist Attraction"},
	{[]string{"urn:tag:category:place:Historical Landmark"}, "Historical Landmark"},
	{[]string{"urn:tag:category:place:Park", "urn:tag:genre:place:Park"}, "Park"},
	{[]string{"urn:tag:category:place:Garden"}, "Garden"},
}

// nameRule is a fallback on the venue name. A rule fires when the name
// contains any of words and none of unless.
type nameRule struct {
	words  []string
	unless []string
	label  string
}

var venueNameRules = []nameRule{
	{words: []string{"deli", "delicatessen"}, label: "Deli"},
	{words: []string{"museum", "guggenheim", "whitney"}, label: "Museum"},
	{words: []string{"market"}, label: "Market"},
	{words: []string{"restaurant", "kitchen", "house"}, unless: []string{"museum"}, label: "Restaurant"},
	{words: []string{"cafe", "coffee"}, label: "Cafe"},
	{words: []string{"bar", "tavern", "lounge"}, label: "Bar"},
	{words: []string{"garden"}, unless: []string{"medical"}, label: "Garden"},
	{words: []string{"center", "arena"}, unless: []string{"medical"}, label: "Event Venue"},
	{words: []string{"park"}, label: "Park"},
}

// ResolveVenueType picks a canonical type from the entity tags, then from its
// name, defaulting to "Cultural Venue".
func ResolveVenueType(e *models.RawEntity) string {
	for _, rule := range venueTypeRules {
		for _, tag := range e.Tags {
			key := tag.Type + ":" + tag.Name
			for _, p := range rule.patterns {
				if key == p {
					return rule.label
				}
			}
		}
	}

	name := strings.ToLower(e.Name)
	for _, rule := range venueNameRules {
		if anyWordIn(name, rule.words) && !anyWordIn(name, rule.unless) {
			return rule.label
		}
	}
	return DefaultVenueType
}
