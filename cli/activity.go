// ABOUTME: Activity CLI commands
// ABOUTME: Day-grouped feed with filters, recent list, logging, and summary counts
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/viz"
	"github.com/spf13/cobra"
)

func newActivityCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "activity",
		Aliases: []string{"activities"},
		Short:   "Browse and log activity",
	}

	cmd.AddCommand(
		newActivityListCommand(app),
		newActivityRecentCommand(app),
		newActivityLogCommand(app),
		newActivityStatsCommand(app),
	)
	return cmd
}

func newActivityListCommand(app *App) *cobra.Command {
	var kind, date, sortBy string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the activity feed grouped by day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := app.now()
			filter := viz.ActivityFilter{Type: models.ActivityType(kind)}
			if kind != "" && !filter.Type.Valid() {
				return fmt.Errorf("invalid --type %q: want one of %s", kind, activityTypeNames())
			}
			sort, ok := viz.ParseSortOrder(sortBy)
			if !ok {
				return fmt.Errorf("invalid --sort %q: want recent, oldest, or type", sortBy)
			}
			filter.Sort = sort
			if date != "" {
				day, err := time.ParseInLocation(dateLayout, date, now.Location())
				if err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
				filter.Day = &day
			}

			all, err := app.Store.Activities.GetAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load activities: %w", err)
			}
			names, titles, err := subjectNames(cmd, app)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			list := viz.FilterActivities(all, filter)
			if len(list) == 0 {
				fmt.Fprintln(out, "No activities found.")
				return nil
			}

			for _, group := range viz.GroupActivitiesByDate(list, now) {
				fmt.Fprintf(out, "%s\n", group.Label)
				for _, a := range group.Activities {
					fmt.Fprintf(out, "  %s  %-8s %s\n", a.Timestamp.In(now.Location()).Format("15:04"), a.Type, a.Description)
					fmt.Fprintf(out, "         %s\n", viz.ActivitySubject(a, names, titles))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "type", "", "Only this activity type")
	cmd.Flags().StringVar(&date, "date", "", "Only this day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&sortBy, "sort", "recent", "Sort order: recent, oldest, or type")
	return cmd
}

func newActivityRecentCommand(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show the most recent activities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("limit") {
				limit = app.Config.RecentLimit
			}

			list, err := app.Store.Activities.GetRecent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to load activities: %w", err)
			}
			names, titles, err := subjectNames(cmd, app)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			now := app.now()
			for _, a := range list {
				fmt.Fprintf(out, "%-8s %s\n", a.Type, a.Description)
				fmt.Fprintf(out, "         %s · %s\n", viz.ActivitySubject(a, names, titles), viz.DayLabel(a.Timestamp, now))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum activities to show")
	return cmd
}

func newActivityLogCommand(app *App) *cobra.Command {
	var kind, description string
	var contactID, dealID int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log a call, email, meeting, note, task, or demo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			activityType := models.ActivityType(kind)
			if !activityType.Valid() {
				return fmt.Errorf("invalid --type %q: want one of %s", kind, activityTypeNames())
			}
			if description == "" {
				return fmt.Errorf("--description is required")
			}

			f := models.ActivityFields{Type: activityType, Description: description}
			if cmd.Flags().Changed("contact") {
				f.ContactID = models.Ref(contactID)
			}
			if cmd.Flags().Changed("deal") {
				f.DealID = models.Ref(dealID)
			}

			activity, err := app.Store.Activities.Create(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("failed to log activity: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Logged %s (ID: %d)\n", activity.Type, activity.ID)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&kind, "type", string(models.ActivityNote), "Activity type")
	flags.StringVarP(&description, "description", "d", "", "What happened (required)")
	flags.IntVar(&contactID, "contact", 0, "Related contact ID")
	flags.IntVar(&dealID, "deal", 0, "Related deal ID")
	return cmd
}

func newActivityStatsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count activities by type and by recency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := app.Store.Activities.GetAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load activities: %w", err)
			}

			out := cmd.OutOrStdout()
			recent := viz.RecentActivityStats(all, app.now())
			fmt.Fprintf(out, "Today:      %d\n", recent.Today)
			fmt.Fprintf(out, "Yesterday:  %d\n", recent.Yesterday)
			fmt.Fprintf(out, "This week:  %d\n\n", recent.Week)

			byType := viz.ActivityTypeStats(all)
			for _, t := range models.ActivityTypes {
				fmt.Fprintf(out, "%-8s %d\n", t, byType[t])
			}
			return nil
		},
	}
}

func subjectNames(cmd *cobra.Command, app *App) (map[int]string, map[int]string, error) {
	names, err := contactNames(cmd, app)
	if err != nil {
		return nil, nil, err
	}
	deals, err := app.Store.Deals.GetAll(cmd.Context())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load deals: %w", err)
	}
	titles := make(map[int]string, len(deals))
	for _, d := range deals {
		titles[d.ID] = d.Title
	}
	return names, titles, nil
}

func activityTypeNames() string {
	names := make([]string, len(models.ActivityTypes))
	for i, t := range models.ActivityTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
