// ABOUTME: Stage CLI commands
// ABOUTME: Lists pipeline stages, adds new ones, and reorders columns
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/dealdesk/models"
	"github.com/spf13/cobra"
)

func newStagesCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stages",
		Aliases: []string{"stage"},
		Short:   "Manage pipeline stages",
	}

	cmd.AddCommand(
		newStagesListCommand(app),
		newStagesAddCommand(app),
		newStagesReorderCommand(app),
	)
	return cmd
}

func newStagesListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stages in pipeline order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stages, err := app.Store.Stages.GetAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list stages: %w", err)
			}
			printStages(cmd, stages)
			return nil
		},
	}
}

func newStagesAddCommand(app *App) *cobra.Command {
	var f models.StageFields

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a stage at the end of the pipeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.Name == "" {
				return fmt.Errorf("--name is required")
			}
			ctx := cmd.Context()

			if _, exists, err := app.Store.Stages.GetByName(ctx, f.Name); err != nil {
				return err
			} else if exists {
				return fmt.Errorf("stage %q already exists", f.Name)
			}

			stage, err := app.Store.Stages.Create(ctx, f)
			if err != nil {
				return fmt.Errorf("failed to create stage: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Stage created: %s (ID: %d, order %d)\n", stage.Name, stage.ID, stage.Order)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.Name, "name", "", "Stage name (required)")
	cmd.Flags().StringVar(&f.Color, "color", "#6b7280", "Column color")
	return cmd
}

func newStagesReorderCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <id=order>...",
		Short: "Set stage positions; unknown stage IDs are ignored",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := parseStageOrders(args)
			if err != nil {
				return err
			}

			stages, err := app.Store.Stages.Reorder(cmd.Context(), orders)
			if err != nil {
				return fmt.Errorf("failed to reorder stages: %w", err)
			}
			printStages(cmd, stages)
			return nil
		},
	}
}

func parseStageOrders(args []string) ([]models.StageOrder, error) {
	orders := make([]models.StageOrder, 0, len(args))
	for _, arg := range args {
		idStr, orderStr, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid position %q: want id=order", arg)
		}
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid stage ID in %q", arg)
		}
		order, err := strconv.Atoi(orderStr)
		if err != nil {
			return nil, fmt.Errorf("invalid order in %q", arg)
		}
		orders = append(orders, models.StageOrder{ID: id, Order: order})
	}
	return orders, nil
}

func printStages(cmd *cobra.Command, stages []models.Stage) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ORDER\tID\tNAME\tCOLOR\tDEFAULT PROB")
	for _, st := range stages {
		prob := "-"
		if p, ok := models.ProbabilityForStage(st.Name); ok {
			prob = fmt.Sprintf("%d%%", p)
		}
		_, _ = fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", st.Order, st.ID, st.Name, st.Color, prob)
	}
	_ = w.Flush()
}
