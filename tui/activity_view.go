// ABOUTME: Activity feed tab for the TUI
// ABOUTME: Day-grouped feed with type filter and sort order cycling
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/viz"
)

var sortOrders = []viz.SortOrder{viz.SortRecent, viz.SortOldest, viz.SortType}

func (m Model) renderActivityView() string {
	now := m.now()
	filtered := viz.FilterActivities(m.activities, viz.ActivityFilter{
		Type: m.activityType,
		Sort: m.activitySort,
	})
	recent := viz.RecentActivityStats(m.activities, now)

	var s strings.Builder

	kind := "all"
	if m.activityType != "" {
		kind = string(m.activityType)
	}
	s.WriteString(mutedStyle.Render(fmt.Sprintf(
		"Type: %s · Sort: %s · Today %d · Yesterday %d · This week %d",
		kind, m.activitySort, recent.Today, recent.Yesterday, recent.Week)))
	s.WriteString("\n\n")

	if len(filtered) == 0 {
		s.WriteString("No activities found.\n")
	}

	contacts, deals := m.lookups()
	var lines []string
	for _, group := range viz.GroupActivitiesByDate(filtered, now) {
		lines = append(lines, sectionStyle.Render(group.Label))
		for _, a := range group.Activities {
			lines = append(lines,
				fmt.Sprintf("  %s  %-8s %s", a.Timestamp.In(now.Location()).Format("15:04"), a.Type, a.Description),
				mutedStyle.Render("         "+viz.ActivitySubject(a, contacts, deals)),
			)
		}
	}

	offset := clamp(m.feedOffset, len(lines))
	visible := lines[offset:]
	if limit := m.height - 10; limit > 0 && len(visible) > limit {
		visible = visible[:limit]
	}
	s.WriteString(strings.Join(visible, "\n"))
	s.WriteString("\n")

	s.WriteString(renderHelp(
		"↑/↓: Scroll",
		"t: Cycle type",
		"s: Cycle sort",
		"r: Refresh",
		"q: Quit",
	))
	return s.String()
}

func (m Model) handleActivityKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.feedOffset > 0 {
			m.feedOffset--
		}
	case "down", "j":
		m.feedOffset++
	case "t":
		m.activityType = nextActivityType(m.activityType)
		m.feedOffset = 0
	case "s":
		m.activitySort = nextSortOrder(m.activitySort)
		m.feedOffset = 0
	}
	return m, nil
}

// nextActivityType cycles all → call → email → ... → demo → all.
func nextActivityType(current models.ActivityType) models.ActivityType {
	if current == "" {
		return models.ActivityTypes[0]
	}
	for i, t := range models.ActivityTypes {
		if t == current && i+1 < len(models.ActivityTypes) {
			return models.ActivityTypes[i+1]
		}
	}
	return ""
}

func nextSortOrder(current viz.SortOrder) viz.SortOrder {
	for i, o := range sortOrders {
		if o == current {
			return sortOrders[(i+1)%len(sortOrders)]
		}
	}
	return viz.SortRecent
}
