// internal/workers/planning/plan-request/prompt.go
package planrequest

import (
	"fmt"
	"strings"
)

// urnHint tells the model which URNs a phrase in the query stands for.
type urnHint struct {
	phrase string
	urns   []string
}

var venueTypeHints = []urnHint{
	{"coffee shop", []string{"urn:tag:venue_type:restaurant", "urn:tag:taste:coffee"}},
	{"gallery", []string{"urn:tag:venue_type:art_gallery"}},
	{"bar", []string{"urn:tag:venue_type:bar"}},
	{"pop-up store", []string{"urn:tag:venue_type:retail"}},
	{"record store", []string{"urn:tag:venue_type:retail"}},
}

var tasteHints = []urnHint{
	{"natural wine", []string{"urn:tag:taste:natural_wine"}},
	{"craft beer", []string{"urn:tag:taste:craft_beer"}},
	{"matcha", []string{"urn:tag:taste:tea", "urn:tag:cuisine:japanese"}},
	{"vinyls", []string{"urn:tag:interest:music", "urn:tag:interest:vinyl"}},
	{"Japanese", []string{"urn:tag:cuisine:japanese"}},
	{"city-pop", []string{"urn:tag:genre:pop", "urn:tag:interest:music"}},
	{"art", []string{"urn:tag:interest:art"}},
}

const (
	defaultEntityType = "urn:entity:place"
	defaultLimit      = 25
)

func writeHints(b *strings.Builder, hints []urnHint) {
	for _, h := range hints {
		fmt.Fprintf(b, "   - %q -> %s\n", h.phrase, strings.Join(h.urns, ","))
	}
}

// BuildPrompt renders the planner instructions for query, grounded by the
// retrieved context.
func BuildPrompt(query, grounding, defaultLocation string) string {
	var b strings.Builder

	b.WriteString("You are the Qloo request builder.\n")
	b.WriteString("Call build_qloo_request exactly once with the endpoint, params and a short reasoning.\n\n")

	b.WriteString("Params template:\n")
	fmt.Fprintf(&b, "  \"filter.type\": %q\n", defaultEntityType)
	b.WriteString("  \"filter.location.query\": \"<exact city from the user query>\"\n")
	b.WriteString("  \"filter.location.radius\": <int, metres>\n")
	b.WriteString("  \"signal.interests.tags\": \"<comma-separated URNs for venue types AND cultural interests>\"\n")
	fmt.Fprintf(&b, "  \"limit\": %d\n\n", defaultLimit)

	b.WriteString("Location rules:\n")
	b.WriteString("- Use the EXACT city the user mentions (e.g. \"Brooklyn\" -> \"Brooklyn, NY\")\n")
	fmt.Fprintf(&b, "- If no city is mentioned, use %q\n\n", defaultLocation)

	b.WriteString("signal.interests.tags rules:\n")
	b.WriteString("1. ALWAYS include venue type URNs for the business type:\n")
	writeHints(&b, venueTypeHints)
	b.WriteString("2. ADD cultural and taste URNs for what the user mentions:\n")
	writeHints(&b, tasteHints)
	b.WriteString("3. Combine venue type and cultural URNs into one comma-separated value\n")
	b.WriteString("4. Be specific and extract ALL relevant cultural elements from the query\n\n")

	if strings.TrimSpace(grounding) != "" {
		b.WriteString("Supported vocabulary and worked examples:\n")
		b.WriteString(grounding)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "User query: %s\n", query)
	return b.String()
}
