// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Loads metrics, recent activity, contacts, deals, and stages concurrently and renders an ASCII overview
package viz

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/models"
	"golang.org/x/sync/errgroup"
)

// DefaultDashboardActivities is how many recent activities the dashboard shows.
const DefaultDashboardActivities = 8

type DashboardStats struct {
	Metrics        models.PipelineMetrics `json:"metrics"`
	Stages         []models.Stage         `json:"stages"`
	RecentActivity []models.Activity      `json:"recent_activity"`
	TotalContacts  int                    `json:"total_contacts"`

	// Activities is the whole feed, for counts that must not stop at the
	// recent limit.
	Activities []models.Activity `json:"-"`

	// Lookups for rendering activity references. Missing keys are dangling
	// references to deleted records.
	ContactNames map[int]string `json:"contact_names"`
	DealTitles   map[int]string `json:"deal_titles"`
}

// GenerateDashboardStats issues the dashboard's reads in parallel. Any failure
// cancels the rest and is returned.
func GenerateDashboardStats(ctx context.Context, store *db.Store, recentLimit int) (*DashboardStats, error) {
	if recentLimit <= 0 {
		recentLimit = DefaultDashboardActivities
	}

	var (
		metrics  models.PipelineMetrics
		recent   []models.Activity
		all      []models.Activity
		contacts []models.Contact
		deals    []models.Deal
		stages   []models.Stage
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		metrics, err = store.Deals.GetPipelineMetrics(egCtx)
		if err != nil {
			return fmt.Errorf("failed to load pipeline metrics: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		recent, err = store.Activities.GetRecent(egCtx, recentLimit)
		if err != nil {
			return fmt.Errorf("failed to load recent activity: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		all, err = store.Activities.GetAll(egCtx)
		if err != nil {
			return fmt.Errorf("failed to load activities: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		contacts, err = store.Contacts.GetAll(egCtx)
		if err != nil {
			return fmt.Errorf("failed to load contacts: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		deals, err = store.Deals.GetAll(egCtx)
		if err != nil {
			return fmt.Errorf("failed to load deals: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		stages, err = store.Stages.GetAll(egCtx)
		if err != nil {
			return fmt.Errorf("failed to load stages: %w", err)
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		Metrics:        metrics,
		Stages:         stages,
		RecentActivity: recent,
		TotalContacts:  len(contacts),
		Activities:     all,
		ContactNames:   make(map[int]string, len(contacts)),
		DealTitles:     make(map[int]string, len(deals)),
	}
	for _, c := range contacts {
		stats.ContactNames[c.ID] = c.Name
	}
	for _, d := range deals {
		stats.DealTitles[d.ID] = d.Title
	}

	return stats, nil
}

// StageRow is one line of the stage breakdown.
type StageRow struct {
	Stage string
	Color string
	Count int
	Value float64
}

// Average is the mean deal value in this stage, 0 when empty.
func (r StageRow) Average() float64 {
	if r.Count == 0 {
		return 0
	}
	return r.Value / float64(r.Count)
}

// StageRows orders the breakdown by pipeline stage order. Stages with no deals
// are included; breakdown entries for stages that have no Stage record come
// last, alphabetically.
func StageRows(breakdown map[string]models.StageStats, stages []models.Stage) []StageRow {
	rows := make([]StageRow, 0, len(stages))
	seen := make(map[string]bool, len(stages))

	for _, st := range stages {
		if seen[st.Name] {
			continue
		}
		seen[st.Name] = true
		s := breakdown[st.Name]
		rows = append(rows, StageRow{Stage: st.Name, Color: st.Color, Count: s.Count, Value: s.Value})
	}

	var extra []string
	for name := range breakdown {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	slices.Sort(extra)
	for _, name := range extra {
		s := breakdown[name]
		rows = append(rows, StageRow{Stage: name, Count: s.Count, Value: s.Value})
	}

	return rows
}

// FormatMoney renders a dollar amount rounded to whole dollars.
func FormatMoney(v float64) string {
	return "$" + humanize.Comma(int64(math.Round(v)))
}

func RenderDashboard(stats *DashboardStats, now time.Time) string {
	var out strings.Builder
	m := stats.Metrics

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  DEALDESK DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("PIPELINE\n")
	out.WriteString(fmt.Sprintf("  Total value   %s\n", FormatMoney(m.TotalValue)))
	out.WriteString(fmt.Sprintf("  Active deals  %d of %d\n", m.ActiveDeals, m.TotalDeals))
	out.WriteString(fmt.Sprintf("  Win rate      %.1f%% (%d won, %d lost)\n", m.WinRate, m.WonDeals, m.LostDeals))
	out.WriteString(fmt.Sprintf("  Avg deal size %s\n", FormatMoney(m.AverageDealSize)))
	out.WriteString(fmt.Sprintf("  Contacts      %s\n\n", humanize.Comma(int64(stats.TotalContacts))))

	out.WriteString("STAGE BREAKDOWN\n")
	renderStageBars(&out, StageRows(m.StageBreakdown, stats.Stages))
	out.WriteString("\n")

	out.WriteString("RECENT ACTIVITY\n")
	if len(stats.RecentActivity) == 0 {
		out.WriteString("  No activity yet\n")
	}
	for _, a := range stats.RecentActivity {
		out.WriteString(fmt.Sprintf("  %-8s %s\n", a.Type, a.Description))
		out.WriteString(fmt.Sprintf("           %s · %s\n",
			ActivitySubject(a, stats.ContactNames, stats.DealTitles),
			humanize.RelTime(a.Timestamp, now, "ago", "from now")))
	}

	return out.String()
}

// ActivitySubject describes who and what an activity refers to.
func ActivitySubject(a models.Activity, contacts, deals map[int]string) string {
	contact := "no contact"
	if a.ContactID != nil {
		if name, ok := contacts[*a.ContactID]; ok {
			contact = name
		}
	}
	deal := "no deal"
	if a.DealID != nil {
		if title, ok := deals[*a.DealID]; ok {
			deal = title
		}
	}
	return contact + " · " + deal
}

func renderStageBars(out *strings.Builder, rows []StageRow) {
	maxCount := 0
	for _, r := range rows {
		maxCount = max(maxCount, r.Count)
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, r := range rows {
		barLength := (r.Count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)

		out.WriteString(fmt.Sprintf("  %-13s %s  %2d  %10s  avg %s\n",
			r.Stage, bar, r.Count, FormatMoney(r.Value), FormatMoney(r.Average())))
	}
}
