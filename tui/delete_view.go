// ABOUTME: Delete confirmation view for TUI
// ABOUTME: Confirms removal of a contact or a deal; deleting a deal also logs a note
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type deleteKind int

const (
	deleteContact deleteKind = iota
	deleteDeal
)

func (k deleteKind) String() string {
	if k == deleteDeal {
		return "deal"
	}
	return "contact"
}

type deleteTarget struct {
	kind  deleteKind
	id    int
	label string
}

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("9")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

// confirmDelete opens the dialog; cancelling returns to the current view.
func (m Model) confirmDelete(target deleteTarget) Model {
	m.pendingDelete = &target
	m.returnMode = m.viewMode
	m.viewMode = ViewConfirmDelete
	return m
}

func (m Model) renderConfirmDeleteView() string {
	target := m.pendingDelete
	if target == nil {
		return ""
	}

	title := warningStyle.Render("⚠  DELETE CONFIRMATION  ⚠")
	message := fmt.Sprintf("Are you sure you want to delete this %s?", target.kind)
	entityInfo := fmt.Sprintf("\n%s: %s\n", strings.ToUpper(target.kind.String()), target.label)

	warning := "\nThis action cannot be undone!"
	switch target.kind {
	case deleteContact:
		warning = "\nTheir deals and activities are kept.\nThis action cannot be undone!"
	case deleteDeal:
		warning = "\nA note is added to the activity feed.\nThis action cannot be undone!"
	}

	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		confirmButtonStyle.Render("Yes, Delete (y)"),
		cancelButtonStyle.Render("Cancel (n/esc)"),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		message,
		entityInfo,
		warning,
		"",
		buttons,
	)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		confirmBoxStyle.Render(content),
	)
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		target := *m.pendingDelete
		m.pendingDelete = nil
		m.viewMode = ViewList
		return m, m.performDelete(target)
	case "n", "N", "esc":
		m.pendingDelete = nil
		m.viewMode = m.returnMode
	}

	return m, nil
}

func (m Model) performDelete(target deleteTarget) tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		switch target.kind {
		case deleteContact:
			if _, err := store.Contacts.Delete(ctx, target.id); err != nil {
				return errMsg{fmt.Errorf("failed to delete contact: %w", err)}
			}
		case deleteDeal:
			if _, _, err := store.RemoveDeal(ctx, target.id); err != nil {
				return errMsg{fmt.Errorf("failed to delete deal: %w", err)}
			}
		}
		return statusMsg{fmt.Sprintf("✓ Deleted %s %q", target.kind, target.label)}
	}
}
