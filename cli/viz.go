// ABOUTME: Dashboard and graph CLI commands
// ABOUTME: Renders the terminal dashboard and writes GraphViz DOT for the pipeline or a contact
package cli

import (
	"fmt"
	"os"

	"github.com/harperreed/dealdesk/viz"
	"github.com/spf13/cobra"
)

func newDashboardCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Pipeline metrics, stage bars, and recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := viz.GenerateDashboardStats(cmd.Context(), app.Store, app.Config.RecentLimit)
			if err != nil {
				return fmt.Errorf("failed to load dashboard: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), viz.RenderDashboard(stats, app.now()))
			return nil
		},
	}
}

func newGraphCommand(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:       "graph <pipeline|contact> [contact-id]",
		Short:     "Generate a GraphViz DOT graph",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"pipeline", "contact"},
		RunE: func(cmd *cobra.Command, args []string) error {
			generator := viz.NewGraphGenerator(app.Store)

			var dot string
			var err error
			switch args[0] {
			case "pipeline":
				dot, err = generator.GeneratePipelineGraph(cmd.Context())
			case "contact":
				if len(args) < 2 {
					return fmt.Errorf("contact graph requires a contact ID")
				}
				id, perr := parseID("contact", args[1])
				if perr != nil {
					return perr
				}
				dot, err = generator.GenerateContactGraph(cmd.Context(), id)
			default:
				return fmt.Errorf("unknown graph type: %s (valid types: pipeline, contact)", args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to generate graph: %w", err)
			}

			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), dot)
				return nil
			}
			if err := os.WriteFile(output, []byte(dot), 0644); err != nil {
				return fmt.Errorf("failed to write graph: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Graph written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write DOT to this file instead of stdout")
	return cmd
}
