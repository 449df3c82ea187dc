// internal/workers/grounding/retrieve-context/models.go
package retrievecontext

import "culturis/internal/models"

type Input struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
}

type Output struct {
	Context         string           `json:"context"`
	TagSnippets     []models.Snippet `json:"tagSnippets"`
	FewShotSnippets []models.Snippet `json:"fewShotSnippets"`
}

// indexedDoc is the stored shape of both tag and few-shot documents.
type indexedDoc struct {
	Text        string                 `json:"text"`
	Kind        string                 `json:"kind"`
	ID          string                 `json:"id,omitempty"`
	Name        string                 `json:"name,omitempty"`
	Type        string                 `json:"type,omitempty"`
	User        string                 `json:"user,omitempty"`
	QlooRequest map[string]interface{} `json:"qloo_request,omitempty"`
	Embedding   []float64              `json:"embedding,omitempty"`
}
