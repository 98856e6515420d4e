// ABOUTME: Tests for activity feed helpers
// ABOUTME: Covers type/day filters, sort orders, day grouping labels, and summary counts
package viz

import (
	"testing"
	"time"

	"github.com/harperreed/dealdesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var feedNow = time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC)

func feed() []models.Activity {
	return []models.Activity{
		{ID: 1, Type: models.ActivityCall, Description: "call today", Timestamp: feedNow.Add(-2 * time.Hour)},
		{ID: 2, Type: models.ActivityEmail, Description: "email yesterday", Timestamp: feedNow.AddDate(0, 0, -1)},
		{ID: 3, Type: models.ActivityCall, Description: "call last week", Timestamp: feedNow.AddDate(0, 0, -5)},
		{ID: 4, Type: models.ActivityDemo, Description: "old demo", Timestamp: feedNow.AddDate(0, -1, 0)},
		{ID: 5, Type: models.ActivityNote, Description: "note today", Timestamp: feedNow.Add(-30 * time.Minute)},
	}
}

func ids(list []models.Activity) []int {
	out := make([]int, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}

func TestFilterActivitiesSort(t *testing.T) {
	tests := []struct {
		sort SortOrder
		want []int
	}{
		{SortRecent, []int{5, 1, 2, 3, 4}},
		{SortOldest, []int{4, 3, 2, 1, 5}},
		{SortType, []int{1, 3, 4, 2, 5}},
	}

	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			got := FilterActivities(feed(), ActivityFilter{Sort: tt.sort})
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilterActivitiesByTypeAndDay(t *testing.T) {
	calls := FilterActivities(feed(), ActivityFilter{Type: models.ActivityCall})
	assert.Equal(t, []int{1, 3}, ids(calls))

	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	today := FilterActivities(feed(), ActivityFilter{Day: &day})
	assert.Equal(t, []int{5, 1}, ids(today))

	none := FilterActivities(feed(), ActivityFilter{Type: models.ActivityEmail, Day: &day})
	assert.Empty(t, none)
}

func TestFilterActivitiesDoesNotReorderInput(t *testing.T) {
	list := feed()
	_ = FilterActivities(list, ActivityFilter{Sort: SortOldest})
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(list))
}

func TestGroupActivitiesByDate(t *testing.T) {
	sorted := FilterActivities(feed(), ActivityFilter{Sort: SortRecent})
	groups := GroupActivitiesByDate(sorted, feedNow)

	require.Len(t, groups, 4)
	assert.Equal(t, "Today", groups[0].Label)
	assert.Equal(t, []int{5, 1}, ids(groups[0].Activities))
	assert.Equal(t, "Yesterday", groups[1].Label)
	assert.Equal(t, "March 10, 2024", groups[2].Label)
	assert.Equal(t, "February 15, 2024", groups[3].Label)
}

func TestDayLabelUsesNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*60*60)
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, loc)

	// 03:00 UTC on the 16th is still the 15th at UTC-8
	ts := time.Date(2024, 3, 16, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, "Today", DayLabel(ts, now))
}

func TestActivityTypeStats(t *testing.T) {
	stats := ActivityTypeStats(feed())
	assert.Equal(t, map[models.ActivityType]int{
		models.ActivityCall:  2,
		models.ActivityEmail: 1,
		models.ActivityDemo:  1,
		models.ActivityNote:  1,
	}, stats)
}

func TestRecentActivityStats(t *testing.T) {
	stats := RecentActivityStats(feed(), feedNow)
	assert.Equal(t, RecentStats{Today: 2, Yesterday: 1, Week: 4}, stats)
}

func TestParseSortOrder(t *testing.T) {
	for in, want := range map[string]SortOrder{"": SortRecent, "Oldest": SortOldest, "type": SortType} {
		got, ok := ParseSortOrder(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok := ParseSortOrder("alphabetical")
	assert.False(t, ok)
}
