// ABOUTME: Graph view for the TUI
// ABOUTME: Shows the GraphViz DOT source for the selected contact's deals and activity
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/dealdesk/viz"
)

func (m Model) renderGraphView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("GRAPH VIEW"))
	s.WriteString("\n")

	lines := strings.Split(m.graphDOT, "\n")
	if limit := m.height - 6; limit > 0 && len(lines) > limit {
		lines = append(lines[:limit], fmt.Sprintf("... %d more lines (use `dealdesk graph contact` to save)", len(lines)-limit))
	}
	s.WriteString(lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Render(strings.Join(lines, "\n")))

	s.WriteString("\n")
	s.WriteString(renderHelp("Esc: Back", "q: Quit"))

	return s.String()
}

func (m Model) handleGraphKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.viewMode = ViewDetail
		m.graphDOT = ""
	}
	return m, nil
}

func (m Model) contactGraph(contactID int) tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		dot, err := viz.NewGraphGenerator(store).GenerateContactGraph(ctx, contactID)
		if err != nil {
			return errMsg{fmt.Errorf("failed to generate graph: %w", err)}
		}
		return graphMsg{dot: dot}
	}
}
