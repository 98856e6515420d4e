// ABOUTME: Pipeline board tab for the TUI
// ABOUTME: One column per stage; h/l move the selected deal through the stage transition
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/viz"
)

const minColumnWidth = 18

var (
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	focusedColumnStyle = columnStyle.
				BorderForeground(lipgloss.Color("170"))

	cardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedCardStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("57"))
)

func (m Model) renderPipelineView() string {
	if len(m.stages) == 0 {
		return "No stages defined.\n"
	}

	width := max(m.width/len(m.stages)-4, minColumnWidth)

	columns := make([]string, 0, len(m.stages))
	for i, st := range m.stages {
		deals := m.columnDeals(i)

		var total float64
		for _, d := range deals {
			total += d.Value
		}

		var col strings.Builder
		header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(st.Color))
		col.WriteString(header.Render(truncate(st.Name, width)))
		col.WriteString("\n")
		col.WriteString(mutedStyle.Render(fmt.Sprintf("%d · %s", len(deals), viz.FormatMoney(total))))
		col.WriteString("\n")

		for j, d := range deals {
			card := fmt.Sprintf("%s\n%s %d%%", truncate(d.Title, width), viz.FormatMoney(d.Value), d.Probability)
			style := cardStyle
			if i == m.stageCol && j == m.dealRow {
				style = selectedCardStyle
			}
			col.WriteString("\n")
			col.WriteString(style.Width(width).Render(card))
		}

		style := columnStyle
		if i == m.stageCol {
			style = focusedColumnStyle
		}
		columns = append(columns, style.Width(width+2).Render(col.String()))
	}

	var s strings.Builder
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columns...))
	s.WriteString("\n")
	s.WriteString(renderHelp(
		"←/→: Column",
		"↑/↓: Deal",
		"h/l: Move deal to previous/next stage",
		"d: Delete deal",
		"q: Quit",
	))
	return s.String()
}

func (m Model) handlePipelineKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left":
		if m.stageCol > 0 {
			m.stageCol--
			m.dealRow = clamp(m.dealRow, len(m.columnDeals(m.stageCol)))
		}
	case "right":
		if m.stageCol < len(m.stages)-1 {
			m.stageCol++
			m.dealRow = clamp(m.dealRow, len(m.columnDeals(m.stageCol)))
		}
	case "up", "k":
		if m.dealRow > 0 {
			m.dealRow--
		}
	case "down", "j":
		if m.dealRow < len(m.columnDeals(m.stageCol))-1 {
			m.dealRow++
		}
	case "h":
		return m.moveSelected(-1)
	case "l":
		return m.moveSelected(1)
	case "d":
		if d, ok := m.selectedDeal(); ok {
			m = m.confirmDelete(deleteTarget{kind: deleteDeal, id: d.ID, label: d.Title})
		}
	}
	return m, nil
}

// moveSelected moves the focused deal one column left or right. The cursor
// follows the deal into its new column once the store reloads.
func (m Model) moveSelected(step int) (tea.Model, tea.Cmd) {
	deal, ok := m.selectedDeal()
	if !ok {
		return m, nil
	}
	target := m.stageCol + step
	if target < 0 || target >= len(m.stages) {
		return m, nil
	}

	stage := m.stages[target].Name
	m.followDeal = deal.ID

	ctx, store := m.ctx, m.store
	return m, func() tea.Msg {
		move, err := store.MoveDeal(ctx, deal.ID, stage)
		if err != nil {
			return errMsg{fmt.Errorf("failed to move deal: %w", err)}
		}
		if !move.Moved {
			return statusMsg{fmt.Sprintf("%s is already in %s", move.Deal.Title, stage)}
		}
		return statusMsg{fmt.Sprintf("✓ %s: %s → %s (%d%%)", move.Deal.Title, move.From, move.Deal.Stage, move.Deal.Probability)}
	}
}

// columnDeals returns the deals in the stage at column i, in store order.
func (m Model) columnDeals(i int) []models.Deal {
	if i < 0 || i >= len(m.stages) {
		return nil
	}
	var out []models.Deal
	for _, d := range m.deals {
		if d.Stage == m.stages[i].Name {
			out = append(out, d)
		}
	}
	return out
}

func (m Model) selectedDeal() (models.Deal, bool) {
	deals := m.columnDeals(m.stageCol)
	if m.dealRow < 0 || m.dealRow >= len(deals) {
		return models.Deal{}, false
	}
	return deals[m.dealRow], true
}

// focusDeal points the cursor at the deal with id, wherever it now is.
func (m *Model) focusDeal(id int) {
	for i := range m.stages {
		for j, d := range m.columnDeals(i) {
			if d.ID == id {
				m.stageCol, m.dealRow = i, j
				return
			}
		}
	}
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
