// cmd/culturisctl/registry.go
package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"culturis/pkg/registry"

	rcl "culturis/internal/workers/data-access/record-chat-log"
	rc "culturis/internal/workers/grounding/retrieve-context"
	ec "culturis/internal/workers/insights/extract-clusters"
	fi "culturis/internal/workers/insights/fetch-insights"
	cup "culturis/internal/workers/onboarding/create-user-profile"
	pr "culturis/internal/workers/planning/plan-request"
	gr "culturis/internal/workers/reporting/generate-report"
	rr "culturis/internal/workers/routes/refine-route"
	et "culturis/internal/workers/tastes/extract-tastes"
	sv "culturis/internal/workers/venues/score-venues"
)

var stageTaskTypes = []string{
	rc.TaskType, pr.TaskType, fi.TaskType, ec.TaskType, sv.TaskType,
	gr.TaskType, et.TaskType, rr.TaskType, rcl.TaskType, cup.TaskType,
}

func newRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the stage registry",
	}

	var path string
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check the registry loads, its schemas compile and every stage is declared",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegistryValidate(path, cmd.OutOrStdout())
		},
	}
	validate.Flags().StringVar(&path, "path", "configs/activity-registry.json", "Path to registry file")

	cmd.AddCommand(validate)
	return cmd
}

func runRegistryValidate(path string, out io.Writer) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return err
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	if err := reg.Require(stageTaskTypes...); err != nil {
		return err
	}
	fmt.Fprintf(out, "Registry %s is valid: %d activities (version %s)\n", path, len(reg.Activities), reg.Version)
	return nil
}
