// internal/workers/grounding/retrieve-context/indexer.go
package retrievecontext

import (
	"context"
	"fmt"

	"culturis/internal/common/database"
	"culturis/internal/common/logger"
	"culturis/internal/models"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const defaultEmbedBatch = 64

// BatchEmbedder embeds many inputs in one call, preserving order.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, inputs []string) ([][]float64, error)
}

// IndexWriter is the write side of the similarity index.
type IndexWriter interface {
	RecreateVectorIndex(ctx context.Context, index string, dims int) error
	BulkIndex(ctx context.Context, index string, docs []database.Document) error
}

// Indexer rebuilds both grounding indices from the seed corpora.
type Indexer struct {
	embedder     BatchEmbedder
	writer       IndexWriter
	tagIndex     string
	fewShotIndex string
	dimensions   int
	batchSize    int
	logger       logger.Logger
}

func NewIndexer(embedder BatchEmbedder, writer IndexWriter, tagIndex, fewShotIndex string, dimensions int, log logger.Logger) *Indexer {
	return &Indexer{
		embedder:     embedder,
		writer:       writer,
		tagIndex:     tagIndex,
		fewShotIndex: fewShotIndex,
		dimensions:   dimensions,
		batchSize:    defaultEmbedBatch,
		logger:       log,
	}
}

// IndexStats counts the documents written per index.
type IndexStats struct {
	Tags     int `json:"tags"`
	FewShots int `json:"fewShots"`
}

// Index drops and recreates both indices, then loads every tag and example.
// Unlike retrieval, any failure here is returned.
func (ix *Indexer) Index(ctx context.Context, tags []models.VocabularyTag, shots []models.FewShotExample) (*IndexStats, error) {
	tagDocs := lo.Map(tags, func(t models.VocabularyTag, _ int) indexedDoc {
		return indexedDoc{Text: TagText(t), Kind: models.SnippetKindTag, ID: t.ID, Name: t.Name, Type: t.Type}
	})
	shotDocs := lo.Map(shots, func(s models.FewShotExample, _ int) indexedDoc {
		return indexedDoc{Text: FewShotText(s), Kind: models.SnippetKindFewShot, User: s.User, QlooRequest: s.QlooRequest}
	})

	if err := ix.load(ctx, ix.tagIndex, tagDocs); err != nil {
		return nil, err
	}
	if err := ix.load(ctx, ix.fewShotIndex, shotDocs); err != nil {
		return nil, err
	}

	stats := &IndexStats{Tags: len(tagDocs), FewShots: len(shotDocs)}
	ix.logger.WithContext(ctx).Info("grounding indices rebuilt", map[string]interface{}{
		"tagIndex":     ix.tagIndex,
		"fewShotIndex": ix.fewShotIndex,
		"tags":         stats.Tags,
		"fewShots":     stats.FewShots,
	})
	return stats, nil
}

func (ix *Indexer) load(ctx context.Context, index string, docs []indexedDoc) error {
	if err := ix.writer.RecreateVectorIndex(ctx, index, ix.dimensions); err != nil {
		return err
	}

	for _, batch := range lo.Chunk(docs, ix.batchSize) {
		texts := lo.Map(batch, func(d indexedDoc, _ int) string { return d.Text })
		vectors, err := ix.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed %s batch: %w", index, err)
		}

		out := make([]database.Document, 0, len(batch))
		for i, d := range batch {
			if len(vectors[i]) != ix.dimensions {
				return fmt.Errorf("embed %s: vector has %d dimensions, index expects %d", index, len(vectors[i]), ix.dimensions)
			}
			d.Embedding = vectors[i]
			out = append(out, database.Document{ID: uuid.NewString(), Source: d})
		}
		if err := ix.writer.BulkIndex(ctx, index, out); err != nil {
			return err
		}
	}
	return nil
}
