// internal/workers/grounding/retrieve-context/retriever.go
package retrievecontext

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"culturis/internal/common/logger"
	"culturis/internal/common/metrics"
	"culturis/internal/models"

	"github.com/samber/lo"
)

// Embedder turns a query into a vector.
type Embedder interface {
	Embed(ctx context.Context, input string) ([]float64, error)
}

// VectorSearcher returns the sources of the k nearest documents.
type VectorSearcher interface {
	KNNSearch(ctx context.Context, index string, vector []float64, k int) ([]json.RawMessage, error)
}

// Retriever reads the tag and few-shot indices. It never fails: any
// problem degrades to empty snippet lists.
type Retriever struct {
	embedder     Embedder
	searcher     VectorSearcher
	tagIndex     string
	fewShotIndex string
	logger       logger.Logger
}

func NewRetriever(embedder Embedder, searcher VectorSearcher, tagIndex, fewShotIndex string, log logger.Logger) *Retriever {
	return &Retriever{
		embedder:     embedder,
		searcher:     searcher,
		tagIndex:     tagIndex,
		fewShotIndex: fewShotIndex,
		logger:       log,
	}
}

// TagText is the indexed text of a vocabulary tag.
func TagText(tag models.VocabularyTag) string {
	return fmt.Sprintf("%s (%s) -> %s", tag.Name, tag.Type, tag.ID)
}

// FewShotText is the indexed text of a few-shot example.
func FewShotText(shot models.FewShotExample) string {
	request, err := json.Marshal(shot.QlooRequest)
	if err != nil {
		request = []byte("{}")
	}
	return fmt.Sprintf("USER: %s\nQLOO: %s", shot.User, request)
}

// Retrieve returns the k nearest tag snippets and the k nearest few-shot
// snippets, each in relevance order.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]models.Snippet, []models.Snippet) {
	tags := []models.Snippet{}
	shots := []models.Snippet{}
	if k <= 0 {
		return tags, shots
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).Warn("grounding degraded: embedding failed", map[string]interface{}{
			"error": err.Error(),
		})
		return tags, shots
	}

	tags = r.search(ctx, r.tagIndex, models.SnippetKindTag, vector, k)
	shots = r.search(ctx, r.fewShotIndex, models.SnippetKindFewShot, vector, k)
	return tags, shots
}

func (r *Retriever) search(ctx context.Context, index, kind string, vector []float64, k int) []models.Snippet {
	sources, err := r.searcher.KNNSearch(ctx, index, vector, k)
	if err != nil {
		r.logger.WithContext(ctx).Warn("grounding degraded: index search failed", map[string]interface{}{
			"index": index,
			"error": err.Error(),
		})
		return []models.Snippet{}
	}

	snippets := make([]models.Snippet, 0, len(sources))
	for _, src := range sources {
		var doc indexedDoc
		if err := json.Unmarshal(src, &doc); err != nil {
			r.logger.WithContext(ctx).Warn("skipping malformed grounding document", map[string]interface{}{
				"index": index,
				"error": err.Error(),
			})
			continue
		}
		if text := docText(doc, kind); text != "" {
			snippets = append(snippets, models.Snippet{Text: text, Kind: kind})
		}
	}
	metrics.GroundingSnippets.WithLabelValues(kind).Observe(float64(len(snippets)))
	return snippets
}

// docText prefers the stored text and rebuilds it from source fields for
// documents indexed without one.
func docText(doc indexedDoc, kind string) string {
	if doc.Text != "" {
		return doc.Text
	}
	switch kind {
	case models.SnippetKindTag:
		if doc.ID == "" {
			return ""
		}
		return TagText(models.VocabularyTag{ID: doc.ID, Name: doc.Name, Type: doc.Type})
	case models.SnippetKindFewShot:
		if doc.User == "" {
			return ""
		}
		return FewShotText(models.FewShotExample{User: doc.User, QlooRequest: doc.QlooRequest})
	}
	return ""
}

// BuildContext joins the snippets into the grounding block given to the planner.
func BuildContext(tags, shots []models.Snippet) string {
	text := func(s models.Snippet, _ int) string { return s.Text }

	sections := []string{"Retriever tags:"}
	sections = append(sections, lo.Map(tags, text)...)
	sections = append(sections, "\nFew-shot examples")
	sections = append(sections, lo.Map(shots, text)...)
	return strings.Join(sections, "\n---\n")
}
