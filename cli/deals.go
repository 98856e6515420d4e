// ABOUTME: Deal CLI commands
// ABOUTME: Lists, creates, updates, moves, and deletes deals and prints pipeline metrics
package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/viz"
	"github.com/spf13/cobra"
)

func newDealsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deals",
		Aliases: []string{"deal"},
		Short:   "Manage deals and the sales pipeline",
	}

	cmd.AddCommand(
		newDealsListCommand(app),
		newDealsShowCommand(app),
		newDealsAddCommand(app),
		newDealsUpdateCommand(app),
		newDealsMoveCommand(app),
		newDealsDeleteCommand(app),
		newDealsMetricsCommand(app),
	)
	return cmd
}

func newDealsListCommand(app *App) *cobra.Command {
	var stage string
	var contactID int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List deals, optionally by stage or contact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var deals []models.Deal
			var err error
			switch {
			case contactID != 0:
				deals, err = app.Store.Deals.GetByContactID(ctx, contactID)
			case stage != "":
				deals, err = app.Store.Deals.GetByStage(ctx, stage)
			default:
				deals, err = app.Store.Deals.GetAll(ctx)
			}
			if err != nil {
				return fmt.Errorf("failed to list deals: %w", err)
			}
			if contactID != 0 && stage != "" {
				kept := deals[:0]
				for _, d := range deals {
					if d.Stage == stage {
						kept = append(kept, d)
					}
				}
				deals = kept
			}

			out := cmd.OutOrStdout()
			if len(deals) == 0 {
				fmt.Fprintln(out, "No deals found.")
				return nil
			}

			contacts, err := contactNames(cmd, app)
			if err != nil {
				return err
			}

			var total float64
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tTITLE\tCONTACT\tVALUE\tSTAGE\tPROB\tCLOSE")
			_, _ = fmt.Fprintln(w, "--\t-----\t-------\t-----\t-----\t----\t-----")
			for _, d := range deals {
				closeDate := "-"
				if d.ExpectedCloseDate != nil {
					closeDate = d.ExpectedCloseDate.Format(dateLayout)
				}
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d%%\t%s\n",
					d.ID, d.Title, contactLabel(contacts, d.ContactID), viz.FormatMoney(d.Value), d.Stage, d.Probability, closeDate)
				total += d.Value
			}
			_ = w.Flush()

			fmt.Fprintf(out, "\nTotal: %d deal(s), %s\n", len(deals), viz.FormatMoney(total))
			return nil
		},
	}

	cmd.Flags().StringVar(&stage, "stage", "", "Only deals in this stage")
	cmd.Flags().IntVar(&contactID, "contact", 0, "Only deals for this contact ID")
	return cmd
}

func newDealsShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a deal and its activity history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("deal", args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			deal, err := app.Store.Deals.GetByID(ctx, id)
			if err != nil {
				return err
			}
			activities, err := app.Store.Activities.GetByDealID(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to load activities: %w", err)
			}
			contacts, err := contactNames(cmd, app)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (ID: %d)\n", deal.Title, deal.ID)
			fmt.Fprintf(out, "  Contact: %s\n", contactLabel(contacts, deal.ContactID))
			fmt.Fprintf(out, "  Value: %s\n", viz.FormatMoney(deal.Value))
			fmt.Fprintf(out, "  Stage: %s (%d%%)\n", deal.Stage, deal.Probability)
			if deal.ExpectedCloseDate != nil {
				fmt.Fprintf(out, "  Expected close: %s\n", deal.ExpectedCloseDate.Format(dateLayout))
			}
			if deal.Notes != "" {
				fmt.Fprintf(out, "  Notes: %s\n", deal.Notes)
			}

			fmt.Fprintf(out, "\nActivity (%d):\n", len(activities))
			now := app.now()
			for _, a := range activities {
				fmt.Fprintf(out, "  %-8s %s  %s\n", a.Type, a.Description, viz.DayLabel(a.Timestamp, now))
			}
			return nil
		},
	}
}

func newDealsAddCommand(app *App) *cobra.Command {
	var title, stage, closeDate, notes string
	var contactID, probability int
	var value float64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new deal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" {
				return fmt.Errorf("--title is required")
			}
			if contactID == 0 {
				return fmt.Errorf("--contact is required")
			}
			if value < 0 {
				return fmt.Errorf("--value must not be negative")
			}
			ctx := cmd.Context()

			if _, err := app.Store.Contacts.GetByID(ctx, contactID); err != nil {
				return err
			}

			f := models.DealFields{
				Title:       title,
				ContactID:   contactID,
				Value:       value,
				Stage:       stage,
				Probability: changedInt(cmd.Flags(), "probability", probability),
				Notes:       notes,
			}
			if f.Probability != nil && (*f.Probability < 0 || *f.Probability > 100) {
				return fmt.Errorf("--probability must be between 0 and 100")
			}
			if closeDate != "" {
				date, err := parseDate(closeDate)
				if err != nil {
					return fmt.Errorf("invalid --close-date: %w", err)
				}
				f.ExpectedCloseDate = date
			}

			deal, err := app.Store.Deals.Create(ctx, f)
			if err != nil {
				return fmt.Errorf("failed to create deal: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Deal created: %s (ID: %d)\n", deal.Title, deal.ID)
			fmt.Fprintf(out, "  Value: %s\n", viz.FormatMoney(deal.Value))
			fmt.Fprintf(out, "  Stage: %s (%d%%)\n", deal.Stage, deal.Probability)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&title, "title", "", "Deal title (required)")
	flags.IntVar(&contactID, "contact", 0, "Contact ID (required)")
	flags.Float64Var(&value, "value", 0, "Deal value")
	flags.StringVar(&stage, "stage", models.StageLead, "Pipeline stage")
	flags.IntVar(&probability, "probability", 0, "Close probability 0-100 (default: from stage)")
	flags.StringVar(&closeDate, "close-date", "", "Expected close date (YYYY-MM-DD)")
	flags.StringVar(&notes, "notes", "", "Deal notes")
	return cmd
}

func newDealsUpdateCommand(app *App) *cobra.Command {
	var title, closeDate, notes string
	var contactID, probability int
	var value float64

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a deal; use 'deals move' to change its stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("deal", args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			patch := models.DealPatch{
				Title:       changedString(flags, "title", title),
				ContactID:   changedInt(flags, "contact", contactID),
				Value:       changedFloat(flags, "value", value),
				Probability: changedInt(flags, "probability", probability),
				Notes:       changedString(flags, "notes", notes),
			}
			if patch.Title != nil && *patch.Title == "" {
				return fmt.Errorf("--title cannot be empty")
			}
			if patch.Value != nil && *patch.Value < 0 {
				return fmt.Errorf("--value must not be negative")
			}
			if patch.Probability != nil && (*patch.Probability < 0 || *patch.Probability > 100) {
				return fmt.Errorf("--probability must be between 0 and 100")
			}
			if flags.Changed("close-date") {
				date, err := parseDate(closeDate)
				if err != nil {
					return fmt.Errorf("invalid --close-date: %w", err)
				}
				patch.ExpectedCloseDate = date
			}

			deal, err := app.Store.Deals.Update(cmd.Context(), id, patch)
			if err != nil {
				return fmt.Errorf("failed to update deal: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deal updated: %s (ID: %d)\n", deal.Title, deal.ID)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&title, "title", "", "Deal title")
	flags.IntVar(&contactID, "contact", 0, "Contact ID")
	flags.Float64Var(&value, "value", 0, "Deal value")
	flags.IntVar(&probability, "probability", 0, "Close probability 0-100")
	flags.StringVar(&closeDate, "close-date", "", "Expected close date (YYYY-MM-DD)")
	flags.StringVar(&notes, "notes", "", "Deal notes")
	return cmd
}

func newDealsMoveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <stage>",
		Short: "Move a deal to another stage and log the change",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("deal", args[0])
			if err != nil {
				return err
			}

			move, err := app.Store.MoveDeal(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !move.Moved {
				fmt.Fprintf(out, "Deal %q is already in %s\n", move.Deal.Title, move.Deal.Stage)
				return nil
			}
			fmt.Fprintf(out, "✓ %s: %s → %s (%d%%)\n", move.Deal.Title, move.From, move.Deal.Stage, move.Deal.Probability)
			return nil
		},
	}
}

func newDealsDeleteCommand(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a deal and note it in the activity feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("deal", args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			deal, err := app.Store.Deals.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if !force && !app.confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete deal %q?", deal.Title)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}

			if _, _, err := app.Store.RemoveDeal(ctx, id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deal deleted: %s (ID: %d)\n", deal.Title, id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")
	return cmd
}

func newDealsMetricsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show pipeline metrics and the stage breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			metrics, err := app.Store.Deals.GetPipelineMetrics(ctx)
			if err != nil {
				return fmt.Errorf("failed to compute metrics: %w", err)
			}
			stages, err := app.Store.Stages.GetAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to load stages: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total value:    %s\n", viz.FormatMoney(metrics.TotalValue))
			fmt.Fprintf(out, "Deals:          %d (%d active, %d won, %d lost)\n",
				metrics.TotalDeals, metrics.ActiveDeals, metrics.WonDeals, metrics.LostDeals)
			fmt.Fprintf(out, "Win rate:       %.1f%%\n", metrics.WinRate)
			fmt.Fprintf(out, "Avg deal size:  %s\n\n", viz.FormatMoney(metrics.AverageDealSize))

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "STAGE\tDEALS\tVALUE\tAVG")
			for _, row := range viz.StageRows(metrics.StageBreakdown, stages) {
				_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", row.Stage, row.Count, viz.FormatMoney(row.Value), viz.FormatMoney(row.Average()))
			}
			return w.Flush()
		},
	}
}

func contactNames(cmd *cobra.Command, app *App) (map[int]string, error) {
	contacts, err := app.Store.Contacts.GetAll(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to load contacts: %w", err)
	}
	names := make(map[int]string, len(contacts))
	for _, c := range contacts {
		names[c.ID] = c.Name
	}
	return names, nil
}

func contactLabel(names map[int]string, id int) string {
	if name, ok := names[id]; ok {
		return name
	}
	return "no contact"
}
