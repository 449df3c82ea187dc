// cmd/culturisctl/categorize.go
package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"culturis/internal/common/logger"
	"culturis/internal/common/qloo"
	"culturis/internal/models"
	fetchinsights "culturis/internal/workers/insights/fetch-insights"
	planrequest "culturis/internal/workers/planning/plan-request"
)

const (
	placeCategoryTag = "urn:tag:category:place"
	placeGenreTag    = "urn:tag:genre:place"
)

func newCategorizeCmd(load configLoader) *cobra.Command {
	var location, radius string
	var limit int

	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Print the place categories and genres the recommendation API returns",
		Example: `  culturisctl categorize
  culturisctl categorize --location "Austin, TX" --radius 5000 --limit 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			client := qloo.NewClient(cfg.APIs.Qloo, nil, logger.NewNoOpLogger())
			params := map[string]interface{}{
				"filter.type":            "urn:entity:place",
				"filter.location.query":  location,
				"filter.location.radius": radius,
				"limit":                  limit,
			}
			return runCategorize(cmd.Context(), client, params, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&location, "location", "New York, NY", "Location query")
	cmd.Flags().StringVar(&radius, "radius", "8000", "Search radius in metres")
	cmd.Flags().IntVar(&limit, "limit", 50, "Number of entities to analyse")
	return cmd
}

type tagCount struct {
	Name  string
	Count int
}

// placeTally counts category and genre tags over a set of entities.
type placeTally struct {
	Categories []tagCount
	Genres     []tagCount
}

func tallyPlaceTags(entities []models.RawEntity) placeTally {
	var categories, genres []string
	for _, e := range entities {
		for _, tag := range e.Tags {
			switch tag.Type {
			case placeCategoryTag:
				categories = append(categories, tag.Name)
			case placeGenreTag:
				genres = append(genres, tag.Name)
			}
		}
	}
	return placeTally{Categories: byFrequency(categories), Genres: byFrequency(genres)}
}

// byFrequency orders by count descending, then by name.
func byFrequency(names []string) []tagCount {
	counts := lo.MapToSlice(lo.CountValues(names), func(name string, n int) tagCount {
		return tagCount{Name: name, Count: n}
	})
	slices.SortFunc(counts, func(a, b tagCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Name, b.Name)
	})
	return counts
}

func runCategorize(ctx context.Context, fetcher fetchinsights.Fetcher, params map[string]interface{}, out io.Writer) error {
	resp, err := fetcher.Get(ctx, planrequest.InsightsEndpoint, params)
	if err != nil {
		return err
	}
	entities := resp.Entities()
	fmt.Fprintf(out, "Analyzing %d entities\n\n", len(entities))

	tally := tallyPlaceTags(entities)
	printCounts(out, "Place categories", tally.Categories)
	printCounts(out, "Place genres", tally.Genres)
	return nil
}

func printCounts(out io.Writer, title string, counts []tagCount) {
	fmt.Fprintf(out, "%s (%d):\n", title, len(counts))
	for _, c := range counts {
		fmt.Fprintf(out, "  %s: %d\n", c.Name, c.Count)
	}
	fmt.Fprintln(out)
}
