// ABOUTME: Pipeline metrics aggregation over a set of deals
// ABOUTME: Totals, win rate, average size, and per-stage breakdown in one pass
package db

import "github.com/harperreed/dealdesk/models"

// ComputePipelineMetrics aggregates deals. The breakdown is keyed by the
// deal's stage string and does not consult Stage records, so deals in
// unknown stages still appear.
func ComputePipelineMetrics(deals []models.Deal) models.PipelineMetrics {
	m := models.PipelineMetrics{
		TotalDeals:     len(deals),
		StageBreakdown: make(map[string]models.StageStats),
	}

	for _, d := range deals {
		m.TotalValue += d.Value

		switch d.Stage {
		case models.StageClosedWon:
			m.WonDeals++
		case models.StageClosedLost:
			m.LostDeals++
		default:
			m.ActiveDeals++
		}

		stats := m.StageBreakdown[d.Stage]
		stats.Count++
		stats.Value += d.Value
		m.StageBreakdown[d.Stage] = stats
	}

	if m.TotalDeals > 0 {
		m.WinRate = float64(m.WonDeals) / float64(m.TotalDeals) * 100
		m.AverageDealSize = m.TotalValue / float64(m.TotalDeals)
	}

	return m
}
