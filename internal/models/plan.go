// internal/models/plan.go
package models

// PlannedRequest is the recommendation API call chosen by the planner.
// Params values are strings or integers only.
type PlannedRequest struct {
	Endpoint  string                 `json:"endpoint"`
	Params    map[string]interface{} `json:"params"`
	Reasoning string                 `json:"reasoning,omitempty"`
}

// Snippet is one grounding text returned by the retriever.
type Snippet struct {
	Text string `json:"text"`
	Kind string `json:"kind"`
}

const (
	SnippetKindTag     = "tag"
	SnippetKindFewShot = "fewshot"
)

// VocabularyTag is a seed entry of the tag vocabulary corpus.
type VocabularyTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// FewShotExample pairs a user request with the API request it should produce.
type FewShotExample struct {
	User        string                 `json:"user"`
	QlooRequest map[string]interface{} `json:"qloo_request"`
}
