// ABOUTME: Contact detail view for the TUI
// ABOUTME: Shows one contact's fields, deals, and activity history
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/dealdesk/viz"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(12)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	sectionStyle = lipgloss.NewStyle().Bold(true)
)

func (m Model) renderDetailView() string {
	contact, ok := m.selectedContact()
	if !ok {
		return "Contact no longer exists.\n\n" + renderHelp("Esc: Back")
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render(contact.Name))
	s.WriteString("\n")

	s.WriteString(m.renderField("Position", contact.Position))
	s.WriteString(m.renderField("Company", contact.Company))
	s.WriteString(m.renderField("Email", contact.Email))
	s.WriteString(m.renderField("Phone", contact.Phone))
	s.WriteString(m.renderField("Tags", strings.Join(contact.Tags, ", ")))
	s.WriteString(m.renderField("Notes", contact.Notes))

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("DEALS"))
	s.WriteString("\n")
	found := false
	for _, d := range m.deals {
		if d.ContactID != contact.ID {
			continue
		}
		found = true
		s.WriteString(fmt.Sprintf("  • %s  %s  %s (%d%%)\n", d.Title, viz.FormatMoney(d.Value), d.Stage, d.Probability))
	}
	if !found {
		s.WriteString(mutedStyle.Render("  none"))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("ACTIVITY"))
	s.WriteString("\n")
	now := m.now()
	found = false
	for _, a := range viz.FilterActivities(m.activities, viz.ActivityFilter{Sort: viz.SortRecent}) {
		if a.ContactID == nil || *a.ContactID != contact.ID {
			continue
		}
		found = true
		s.WriteString(fmt.Sprintf("  • [%s] %s: %s\n", viz.DayLabel(a.Timestamp, now), a.Type, a.Description))
	}
	if !found {
		s.WriteString(mutedStyle.Render("  none"))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(renderHelp(
		"Esc: Back",
		"d: Delete",
		"g: View graph",
		"q: Quit",
	))

	return s.String()
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("%s %s\n",
		fieldLabelStyle.Render(label+":"),
		fieldValueStyle.Render(value))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	contact, ok := m.selectedContact()

	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
	case "d":
		if ok {
			m = m.confirmDelete(deleteTarget{kind: deleteContact, id: contact.ID, label: contact.Name})
		}
	case "g":
		if ok {
			return m, m.contactGraph(contact.ID)
		}
	}

	return m, nil
}
