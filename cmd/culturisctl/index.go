// cmd/culturisctl/index.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"culturis/internal/common/database"
	"culturis/internal/common/llm"
	"culturis/internal/common/logger"
	"culturis/internal/models"
	retrievecontext "culturis/internal/workers/grounding/retrieve-context"
)

func newIndexCmd(load configLoader) *cobra.Command {
	var tagsPath, shotsPath string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Rebuild the tag and few-shot similarity indices",
		Long: `Drops and recreates both grounding indices with a dense_vector mapping,
embeds every seed entry and bulk loads it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			log := logger.NewStructured(cfg.Logging.Level, "console")

			es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			indexer := retrievecontext.NewIndexer(
				llm.New(cfg.APIs.OpenAI, nil), es,
				cfg.Retriever.TagIndex, cfg.Retriever.FewShotIndex, cfg.Retriever.Dimensions, log,
			)
			return runIndex(cmd.Context(), indexer, tagsPath, shotsPath, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&tagsPath, "tags", "data/qloo_tags.json", "Tag vocabulary seed file")
	cmd.Flags().StringVar(&shotsPath, "shots", "data/few_shots.json", "Few-shot example seed file")
	return cmd
}

type seedIndexer interface {
	Index(ctx context.Context, tags []models.VocabularyTag, shots []models.FewShotExample) (*retrievecontext.IndexStats, error)
}

func runIndex(ctx context.Context, indexer seedIndexer, tagsPath, shotsPath string, out io.Writer) error {
	var tags []models.VocabularyTag
	if err := readJSON(tagsPath, &tags); err != nil {
		return err
	}
	var shots []models.FewShotExample
	if err := readJSON(shotsPath, &shots); err != nil {
		return err
	}

	stats, err := indexer.Index(ctx, tags, shots)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Indexed %d tags and %d few-shot examples\n", stats.Tags, stats.FewShots)
	return nil
}

func readJSON(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
