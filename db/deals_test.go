// ABOUTME: Tests for the deal service and pipeline metrics
// ABOUTME: Covers probability derivation, stage transitions, and metric aggregation
package db

import (
	"testing"

	"github.com/harperreed/dealdesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestDealCreateDerivesProbability(t *testing.T) {
	s := newTestStore(t, Fixtures{})

	tests := []struct {
		stage string
		want  int
	}{
		{models.StageLead, 20},
		{models.StageProposal, 60},
		{models.StageClosedWon, 100},
		{"Discovery", 0},
	}

	for _, tt := range tests {
		d, err := s.Deals.Create(bg, models.DealFields{Title: tt.stage, ContactID: 1, Value: 100, Stage: tt.stage})
		require.NoError(t, err)
		assert.Equal(t, tt.want, d.Probability, tt.stage)
	}
}

func TestDealCreateExplicitProbability(t *testing.T) {
	s := newTestStore(t, Fixtures{})

	d, err := s.Deals.Create(bg, models.DealFields{
		Title:       "Override",
		Stage:       models.StageLead,
		Probability: intPtr(55),
	})
	require.NoError(t, err)
	assert.Equal(t, 55, d.Probability)

	got, err := s.Deals.GetByID(bg, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d, got)
}

func TestDealUpdateStageSetsProbability(t *testing.T) {
	s := seededStore(t)

	before, err := s.Deals.GetByID(bg, 2)
	require.NoError(t, err)

	d, err := s.Deals.UpdateStage(bg, 2, models.StageClosedWon)
	require.NoError(t, err)
	assert.Equal(t, models.StageClosedWon, d.Stage)
	assert.Equal(t, 100, d.Probability)
	assert.True(t, d.UpdatedAt.After(before.UpdatedAt))

	d, err = s.Deals.UpdateStage(bg, 2, models.StageClosedLost)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Probability)
}

func TestDealUpdateStageUnknownKeepsProbability(t *testing.T) {
	s := seededStore(t)

	d, err := s.Deals.UpdateStage(bg, 1, "On Hold")
	require.NoError(t, err)
	assert.Equal(t, "On Hold", d.Stage)
	assert.Equal(t, 75, d.Probability)
}

func TestDealUpdateStageDoesNotLogActivity(t *testing.T) {
	s := seededStore(t)

	before, err := s.Activities.GetAll(bg)
	require.NoError(t, err)

	_, err = s.Deals.UpdateStage(bg, 1, models.StageClosedWon)
	require.NoError(t, err)

	after, err := s.Activities.GetAll(bg)
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestDealUpdateStageNotFound(t *testing.T) {
	s := newTestStore(t, Fixtures{})

	_, err := s.Deals.UpdateStage(bg, 7, models.StageLead)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "deal with ID 7")
}

func TestDealUpdatePatchKeepsProbabilityOnStageChange(t *testing.T) {
	s := seededStore(t)
	stage := models.StageClosedWon

	d, err := s.Deals.Update(bg, 3, models.DealPatch{Stage: &stage})
	require.NoError(t, err)
	assert.Equal(t, models.StageClosedWon, d.Stage)
	assert.Equal(t, 40, d.Probability)
}

func TestDealUpdateEmptyPatchOnlyBumpsUpdatedAt(t *testing.T) {
	s := seededStore(t)

	before, err := s.Deals.GetByID(bg, 1)
	require.NoError(t, err)

	after, err := s.Deals.Update(bg, 1, models.DealPatch{})
	require.NoError(t, err)

	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
	after.UpdatedAt = before.UpdatedAt
	assert.Equal(t, before, after)
}

func TestDealUpdateExplicitZeroValue(t *testing.T) {
	s := seededStore(t)
	zero := 0.0

	d, err := s.Deals.Update(bg, 1, models.DealPatch{Value: &zero, Probability: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, d.Value)
	assert.Equal(t, 0, d.Probability)
}

func TestDealGetByContactAndStage(t *testing.T) {
	s := seededStore(t)

	byContact, err := s.Deals.GetByContactID(bg, 1)
	require.NoError(t, err)
	require.Len(t, byContact, 2)
	assert.Equal(t, 1, byContact[0].ID)
	assert.Equal(t, 7, byContact[1].ID)

	leads, err := s.Deals.GetByStage(bg, models.StageLead)
	require.NoError(t, err)
	assert.Len(t, leads, 2)

	none, err := s.Deals.GetByStage(bg, "lead")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDealDelete(t *testing.T) {
	s := seededStore(t)

	removed, err := s.Deals.Delete(bg, 4)
	require.NoError(t, err)
	assert.Equal(t, "FinancePlus Analytics Add-on", removed.Title)

	_, err = s.Deals.GetByID(bg, 4)
	assert.True(t, IsNotFound(err))

	_, err = s.Deals.Delete(bg, 4)
	assert.True(t, IsNotFound(err))
}

func TestPipelineMetricsEmpty(t *testing.T) {
	s := newTestStore(t, Fixtures{})

	m, err := s.Deals.GetPipelineMetrics(bg)
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.WinRate)
	assert.Equal(t, 0.0, m.AverageDealSize)
	assert.Equal(t, 0, m.TotalDeals)
	assert.Empty(t, m.StageBreakdown)
}

func TestPipelineMetricsTwoDeals(t *testing.T) {
	s := newTestStore(t, Fixtures{Deals: []models.Deal{
		{ID: 1, Title: "A", Value: 1000, Stage: models.StageLead},
		{ID: 2, Title: "B", Value: 2000, Stage: models.StageClosedWon},
	}})

	m, err := s.Deals.GetPipelineMetrics(bg)
	require.NoError(t, err)

	assert.Equal(t, 3000.0, m.TotalValue)
	assert.Equal(t, 2, m.TotalDeals)
	assert.Equal(t, 1, m.ActiveDeals)
	assert.Equal(t, 1, m.WonDeals)
	assert.Equal(t, 0, m.LostDeals)
	assert.Equal(t, 50.0, m.WinRate)
	assert.Equal(t, 1500.0, m.AverageDealSize)
	assert.Equal(t, map[string]models.StageStats{
		models.StageLead:      {Count: 1, Value: 1000},
		models.StageClosedWon: {Count: 1, Value: 2000},
	}, m.StageBreakdown)
}

func TestPipelineMetricsUnknownStageCountsAsActive(t *testing.T) {
	m := ComputePipelineMetrics([]models.Deal{
		{ID: 1, Value: 500, Stage: "On Hold"},
		{ID: 2, Value: 700, Stage: models.StageClosedLost},
	})

	assert.Equal(t, 1, m.ActiveDeals)
	assert.Equal(t, 1, m.LostDeals)
	assert.Equal(t, 0.0, m.WinRate)
	assert.Equal(t, models.StageStats{Count: 1, Value: 500}, m.StageBreakdown["On Hold"])
}

func TestPipelineMetricsSeeded(t *testing.T) {
	s := seededStore(t)

	m, err := s.Deals.GetPipelineMetrics(bg)
	require.NoError(t, err)

	assert.Equal(t, 7, m.TotalDeals)
	assert.Equal(t, 5, m.ActiveDeals)
	assert.Equal(t, 337500.0, m.TotalValue)
	assert.Equal(t, models.StageStats{Count: 2, Value: 41500}, m.StageBreakdown[models.StageLead])
}
