// ABOUTME: Activity feed filtering, sorting, and day grouping
// ABOUTME: Shared by the CLI activity list, the HTTP feed endpoint, and the TUI activity tab
package viz

import (
	"slices"
	"strings"
	"time"

	"github.com/harperreed/dealdesk/models"
)

type SortOrder string

const (
	SortRecent SortOrder = "recent"
	SortOldest SortOrder = "oldest"
	SortType   SortOrder = "type"
)

// ParseSortOrder maps a user-supplied name to a SortOrder. Empty means recent.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(strings.ToLower(s)) {
	case "", SortRecent:
		return SortRecent, true
	case SortOldest:
		return SortOldest, true
	case SortType:
		return SortType, true
	}
	return "", false
}

// ActivityFilter selects part of the feed. A zero Type matches all types and
// a nil Day matches all days.
type ActivityFilter struct {
	Type models.ActivityType
	Day  *time.Time
	Sort SortOrder
}

// FilterActivities returns a new slice holding the activities that pass f,
// in f.Sort order. Day matching uses the calendar day in Day's location.
func FilterActivities(list []models.Activity, f ActivityFilter) []models.Activity {
	out := make([]models.Activity, 0, len(list))
	for _, a := range list {
		if f.Type != "" && a.Type != f.Type {
			continue
		}
		if f.Day != nil && !sameDay(a.Timestamp.In(f.Day.Location()), *f.Day) {
			continue
		}
		out = append(out, a)
	}

	switch f.Sort {
	case SortOldest:
		slices.SortStableFunc(out, func(a, b models.Activity) int {
			return a.Timestamp.Compare(b.Timestamp)
		})
	case SortType:
		slices.SortStableFunc(out, func(a, b models.Activity) int {
			return strings.Compare(string(a.Type), string(b.Type))
		})
	default:
		slices.SortStableFunc(out, func(a, b models.Activity) int {
			return b.Timestamp.Compare(a.Timestamp)
		})
	}
	return out
}

// ActivityGroup is one day's worth of the feed.
type ActivityGroup struct {
	Label      string            `json:"label"`
	Activities []models.Activity `json:"activities"`
}

// GroupActivitiesByDate buckets activities by calendar day relative to now,
// labelled "Today", "Yesterday", or "January 2, 2006". Groups appear in the
// order their first activity appears in list.
func GroupActivitiesByDate(list []models.Activity, now time.Time) []ActivityGroup {
	var groups []ActivityGroup
	index := make(map[string]int)

	for _, a := range list {
		label := DayLabel(a.Timestamp, now)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, ActivityGroup{Label: label})
		}
		groups[i].Activities = append(groups[i].Activities, a)
	}
	return groups
}

// DayLabel names the calendar day of t as seen from now.
func DayLabel(t, now time.Time) string {
	t = t.In(now.Location())
	switch {
	case sameDay(t, now):
		return "Today"
	case sameDay(t, now.AddDate(0, 0, -1)):
		return "Yesterday"
	default:
		return t.Format("January 2, 2006")
	}
}

// ActivityTypeStats counts activities per type.
func ActivityTypeStats(list []models.Activity) map[models.ActivityType]int {
	stats := make(map[models.ActivityType]int)
	for _, a := range list {
		stats[a.Type]++
	}
	return stats
}

type RecentStats struct {
	Today     int `json:"today"`
	Yesterday int `json:"yesterday"`
	Week      int `json:"week"`
}

// RecentActivityStats counts activities from today, yesterday, and the last
// seven days (a rolling window ending at now).
func RecentActivityStats(list []models.Activity, now time.Time) RecentStats {
	var stats RecentStats
	weekAgo := now.AddDate(0, 0, -7)
	yesterday := now.AddDate(0, 0, -1)

	for _, a := range list {
		ts := a.Timestamp.In(now.Location())
		if sameDay(ts, now) {
			stats.Today++
		}
		if sameDay(ts, yesterday) {
			stats.Yesterday++
		}
		if ts.After(weekAgo) {
			stats.Week++
		}
	}
	return stats
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
