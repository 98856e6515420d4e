// ABOUTME: Tests for dashboard stats loading, stage ordering, and text rendering
// ABOUTME: Uses a fresh seeded store with no latency per test
package viz

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newStore(t *testing.T) *db.Store {
	t.Helper()
	store, err := db.New()
	require.NoError(t, err)
	return store
}

func TestGenerateDashboardStats(t *testing.T) {
	defer goleak.VerifyNone(t)
	store := newStore(t)

	stats, err := GenerateDashboardStats(context.Background(), store, 0)
	require.NoError(t, err)

	assert.Len(t, stats.RecentActivity, DefaultDashboardActivities)
	assert.Len(t, stats.Activities, 8)
	assert.Equal(t, 6, stats.TotalContacts)
	assert.Equal(t, 7, stats.Metrics.TotalDeals)
	assert.Len(t, stats.Stages, 6)
	assert.Equal(t, "Sarah Johnson", stats.ContactNames[1])
	assert.Equal(t, "Innovate Labs Pilot", stats.DealTitles[2])
}

func TestGenerateDashboardStatsCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)
	store, err := db.New(db.WithLatency(db.OriginalLatency()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = GenerateDashboardStats(ctx, store, 8)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStageRowsOrder(t *testing.T) {
	stages := []models.Stage{
		{ID: 1, Name: "Lead", Order: 1},
		{ID: 2, Name: "Won", Order: 2},
	}
	breakdown := map[string]models.StageStats{
		"Won":     {Count: 2, Value: 300},
		"Zombie":  {Count: 1, Value: 10},
		"Archive": {Count: 1, Value: 5},
	}

	rows := StageRows(breakdown, stages)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Lead", "Won", "Archive", "Zombie"},
		[]string{rows[0].Stage, rows[1].Stage, rows[2].Stage, rows[3].Stage})
	assert.Equal(t, 0, rows[0].Count)
	assert.Equal(t, 150.0, rows[1].Average())
	assert.Equal(t, 0.0, rows[0].Average())
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$0", FormatMoney(0))
	assert.Equal(t, "$1,500", FormatMoney(1499.5))
	assert.Equal(t, "$337,500", FormatMoney(337500))
}

func TestRenderDashboard(t *testing.T) {
	now := time.Date(2024, 2, 3, 12, 0, 0, 0, time.UTC)
	stats := &DashboardStats{
		Metrics: db.ComputePipelineMetrics([]models.Deal{
			{ID: 1, Value: 1000, Stage: models.StageLead},
			{ID: 2, Value: 2000, Stage: models.StageClosedWon},
		}),
		Stages: []models.Stage{
			{ID: 1, Name: models.StageLead, Order: 1},
			{ID: 5, Name: models.StageClosedWon, Order: 5},
		},
		RecentActivity: []models.Activity{
			{ID: 1, Type: models.ActivityCall, ContactID: models.Ref(1), DealID: models.Ref(99),
				Description: "Intro call", Timestamp: now.Add(-48 * time.Hour)},
		},
		TotalContacts: 1,
		ContactNames:  map[int]string{1: "Ada"},
		DealTitles:    map[int]string{},
	}

	out := RenderDashboard(stats, now)

	assert.Contains(t, out, "DEALDESK DASHBOARD")
	assert.Contains(t, out, "$3,000")
	assert.Contains(t, out, "50.0%")
	assert.Contains(t, out, "$1,500")
	assert.Contains(t, out, "Ada · no deal")
	assert.Contains(t, out, "2 days ago")
	assert.Less(t, strings.Index(out, models.StageLead), strings.Index(out, models.StageClosedWon))
}

func TestRenderDashboardNoActivity(t *testing.T) {
	out := RenderDashboard(&DashboardStats{}, time.Now())
	assert.Contains(t, out, "No activity yet")
}
