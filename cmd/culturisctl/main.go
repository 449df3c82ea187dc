// Command culturisctl maintains the grounding indices and the stage registry.
//
// Usage:
//
//	culturisctl index --tags data/qloo_tags.json --shots data/few_shots.json
//	culturisctl categorize --location "Brooklyn, NY" --radius 5000 --limit 50
//	culturisctl registry validate --path configs/activity-registry.json
package main

import (
	"os"

	"github.com/spf13/cobra"

	"culturis/internal/common/config"
)

type configLoader func() (*config.Config, error)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "culturisctl",
		Short:        "Maintenance commands for the culturis pipeline",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: configs/config.yaml)")

	load := func() (*config.Config, error) {
		if configPath != "" {
			return config.LoadFromFile(configPath)
		}
		return config.Load()
	}

	root.AddCommand(
		newIndexCmd(load),
		newCategorizeCmd(load),
		newRegistryCmd(),
	)
	return root
}
