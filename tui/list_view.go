// ABOUTME: Contacts tab for the TUI
// ABOUTME: Table of contacts with store-backed search and navigation into the detail view
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/dealdesk/models"
)

func (m Model) renderContactsView() string {
	var s strings.Builder

	if m.searching {
		s.WriteString(m.search.View())
		s.WriteString("\n\n")
	} else if m.searchQuery != "" {
		s.WriteString(mutedStyle.Render(fmt.Sprintf("Search: %q (%d match(es), esc to clear)", m.searchQuery, len(m.visible))))
		s.WriteString("\n\n")
	}

	if len(m.visible) == 0 {
		s.WriteString("No contacts found.\n")
	} else {
		s.WriteString(m.renderContactsTable())
	}
	s.WriteString("\n")

	s.WriteString(renderHelp(
		"↑/↓: Navigate",
		"Enter: Details",
		"/: Search",
		"d: Delete",
		"Tab: Switch tabs",
		"q: Quit",
	))

	return s.String()
}

func (m Model) renderContactsTable() string {
	columns := []table.Column{
		{Title: "ID", Width: 4},
		{Title: "Name", Width: 22},
		{Title: "Company", Width: 20},
		{Title: "Email", Width: 28},
		{Title: "Tags", Width: 20},
	}

	rows := make([]table.Row, 0, len(m.visible))
	for _, c := range m.visible {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", c.ID),
			c.Name,
			c.Company,
			c.Email,
			strings.Join(c.Tags, ", "),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10, 3)),
	)
	t.SetCursor(m.selectedRow)

	return t.View()
}

func (m Model) handleContactsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < len(m.visible)-1 {
			m.selectedRow++
		}
	case "enter":
		if _, ok := m.selectedContact(); ok {
			m.viewMode = ViewDetail
		}
	case "/":
		m.searching = true
		m.search.SetValue(m.searchQuery)
		m.search.Focus()
	case "esc":
		m.searchQuery = ""
		m.visible = m.contacts
		m.selectedRow = clamp(m.selectedRow, len(m.visible))
	case "d":
		if c, ok := m.selectedContact(); ok {
			m = m.confirmDelete(deleteTarget{kind: deleteContact, id: c.ID, label: c.Name})
		}
	}

	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		query := strings.TrimSpace(m.search.Value())
		m.selectedRow = 0
		if query == "" {
			m.searchQuery = ""
			m.visible = m.contacts
			return m, nil
		}
		return m, m.searchContacts(query)
	case "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) searchContacts(query string) tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		contacts, err := store.Contacts.Search(ctx, query)
		if err != nil {
			return errMsg{fmt.Errorf("search failed: %w", err)}
		}
		return searchMsg{query: query, contacts: contacts}
	}
}

func (m Model) selectedContact() (models.Contact, bool) {
	if m.selectedRow < 0 || m.selectedRow >= len(m.visible) {
		return models.Contact{}, false
	}
	return m.visible[m.selectedRow], true
}
