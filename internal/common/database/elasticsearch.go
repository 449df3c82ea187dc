// internal/common/database/elasticsearch.go
package database

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"culturis/internal/common/config"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ElasticsearchClient wraps the Elasticsearch client backing the grounding index.
type ElasticsearchClient struct {
	Client *elasticsearch.Client
}

// Document is one entry written by BulkIndex.
type Document struct {
	ID     string
	Source interface{}
}

// NewElasticsearch creates a new Elasticsearch client
func NewElasticsearch(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	addresses := cfg.Addresses
	if len(addresses) == 0 && cfg.URL != "" {
		addresses = []string{cfg.URL}
	}

	esCfg := elasticsearch.Config{Addresses: addresses}
	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &ElasticsearchClient{Client: es}, nil
}

// Ping tests the Elasticsearch connection
func (c *ElasticsearchClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := c.Client.Ping(c.Client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}
	return nil
}

// RecreateVectorIndex drops index if present and creates it with a
// dense_vector "embedding" field of the given dimensions.
func (c *ElasticsearchClient) RecreateVectorIndex(ctx context.Context, index string, dims int) error {
	del, err := c.Client.Indices.Delete(
		[]string{index},
		c.Client.Indices.Delete.WithContext(ctx),
		c.Client.Indices.Delete.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return fmt.Errorf("delete index %s: %w", index, err)
	}
	del.Body.Close()

	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"text": map[string]interface{}{"type": "text"},
				"kind": map[string]interface{}{"type": "keyword"},
				"embedding": map[string]interface{}{
					"type":       "dense_vector",
					"dims":       dims,
					"index":      true,
					"similarity": "cosine",
				},
			},
		},
	}
	body, err := json.Marshal(mapping)
	if err != nil {
		return err
	}

	res, err := c.Client.Indices.Create(
		index,
		c.Client.Indices.Create.WithContext(ctx),
		c.Client.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("create index %s: %s", index, res.Status())
	}
	return nil
}

// BulkIndex writes docs into index and refreshes it so they are searchable on return.
func (c *ElasticsearchClient) BulkIndex(ctx context.Context, index string, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, doc := range docs {
		meta := map[string]interface{}{"index": map[string]interface{}{"_id": doc.ID}}
		if err := enc.Encode(meta); err != nil {
			return err
		}
		if err := enc.Encode(doc.Source); err != nil {
			return fmt.Errorf("encode document %s: %w", doc.ID, err)
		}
	}

	res, err := c.Client.Bulk(
		&buf,
		c.Client.Bulk.WithContext(ctx),
		c.Client.Bulk.WithIndex(index),
		c.Client.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("bulk index %s: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk index %s: %s", index, res.Status())
	}

	var result struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if result.Errors {
		return fmt.Errorf("bulk index %s: one or more documents were rejected", index)
	}
	return nil
}

// KNNSearch returns the _source of the k nearest documents to vector, in
// relevance order. The embedding field is excluded from the returned sources.
func (c *ElasticsearchClient) KNNSearch(ctx context.Context, index string, vector []float64, k int) ([]json.RawMessage, error) {
	numCandidates := k * 10
	if numCandidates < 50 {
		numCandidates = 50
	}
	query := map[string]interface{}{
		"size": k,
		"knn": map[string]interface{}{
			"field":          "embedding",
			"query_vector":   vector,
			"k":              k,
			"num_candidates": numCandidates,
		},
		"_source": map[string]interface{}{"excludes": []string{"embedding"}},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	req := esapi.SearchRequest{
		Index: []string{index},
		Body:  strings.NewReader(string(body)),
	}
	res, err := req.Do(ctx, c.Client)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", index, res.Status())
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	sources := make([]json.RawMessage, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		sources = append(sources, hit.Source)
	}
	return sources, nil
}
