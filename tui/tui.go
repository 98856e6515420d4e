// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Contacts table, pipeline board, and activity feed over the in-memory store
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/viz"
	"go.uber.org/zap"
)

// Tab is one of the top-level screens.
type Tab int

const (
	TabContacts Tab = iota
	TabPipeline
	TabActivity
)

var tabNames = []string{"Contacts", "Pipeline", "Activity"}

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewGraph
	ViewConfirmDelete
)

// Model is the main bubbletea model
type Model struct {
	ctx    context.Context
	store  *db.Store
	logger *zap.Logger
	now    func() time.Time

	tab      Tab
	viewMode ViewMode

	// Last loaded store contents. visible is contacts narrowed by the search.
	contacts   []models.Contact
	visible    []models.Contact
	deals      []models.Deal
	activities []models.Activity
	stages     []models.Stage
	loaded     bool

	// Contacts tab
	selectedRow int
	search      textinput.Model
	searching   bool
	searchQuery string
	graphDOT    string

	// Pipeline tab. followDeal keeps the cursor on a deal across reloads.
	stageCol   int
	dealRow    int
	followDeal int

	// Activity tab
	activityType models.ActivityType
	activitySort viz.SortOrder
	feedOffset   int

	pendingDelete *deleteTarget
	returnMode    ViewMode

	status string
	err    error

	width  int
	height int
}

type dataMsg struct {
	contacts   []models.Contact
	deals      []models.Deal
	activities []models.Activity
	stages     []models.Stage
}

type searchMsg struct {
	query    string
	contacts []models.Contact
}

type graphMsg struct {
	dot string
}

// statusMsg reports a finished mutation; the model reloads after it.
type statusMsg struct {
	text string
}

type errMsg struct {
	err error
}

// NewModel creates a new TUI model
func NewModel(ctx context.Context, store *db.Store, logger *zap.Logger) Model {
	search := textinput.New()
	search.Placeholder = "name, email, company, or tag"
	search.Prompt = "/ "
	search.CharLimit = 64
	search.Cursor.SetMode(cursor.CursorStatic)

	return Model{
		ctx:          ctx,
		store:        store,
		logger:       logger,
		now:          time.Now,
		tab:          TabContacts,
		viewMode:     ViewList,
		search:       search,
		activitySort: viz.SortRecent,
		width:        80,
		height:       24,
	}
}

// Run starts the full-screen program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, store *db.Store, logger *zap.Logger) error {
	p := tea.NewProgram(NewModel(ctx, store, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case dataMsg:
		return m.applyData(msg)
	case searchMsg:
		m.searchQuery = msg.query
		m.visible = msg.contacts
		m.selectedRow = clamp(m.selectedRow, len(m.visible))
		return m, nil
	case graphMsg:
		m.graphDOT = msg.dot
		m.viewMode = ViewGraph
		return m, nil
	case statusMsg:
		m.status = msg.text
		m.err = nil
		return m, m.load()
	case errMsg:
		m.err = msg.err
		m.status = "Error: " + msg.err.Error()
		m.logger.Debug("tui action failed", zap.Error(msg.err))
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if !m.loaded {
		if m.err != nil {
			return fmt.Sprintf("Error: %v\n", m.err)
		}
		return "Loading...\n"
	}

	switch m.viewMode {
	case ViewDetail:
		return m.renderDetailView()
	case ViewGraph:
		return m.renderGraphView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("DEALDESK"))
	s.WriteString("\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch m.tab {
	case TabContacts:
		s.WriteString(m.renderContactsView())
	case TabPipeline:
		s.WriteString(m.renderPipelineView())
	case TabActivity:
		s.WriteString(m.renderActivityView())
	}

	if m.status != "" {
		s.WriteString("\n")
		style := statusStyle
		if m.err != nil {
			style = errorStyle
		}
		s.WriteString(style.Render(m.status))
	}

	return s.String()
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.searching {
		return m.handleSearchKeys(msg)
	}
	if msg.String() == "q" && m.viewMode != ViewConfirmDelete {
		return m, tea.Quit
	}

	switch m.viewMode {
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewGraph:
		return m.handleGraphKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	}

	switch msg.String() {
	case "tab":
		return m.switchTab((m.tab + 1) % Tab(len(tabNames))), nil
	case "shift+tab":
		return m.switchTab((m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))), nil
	case "1", "2", "3":
		return m.switchTab(Tab(msg.String()[0] - '1')), nil
	case "r":
		m.status = ""
		return m, m.load()
	}

	switch m.tab {
	case TabContacts:
		return m.handleContactsKeys(msg)
	case TabPipeline:
		return m.handlePipelineKeys(msg)
	case TabActivity:
		return m.handleActivityKeys(msg)
	}
	return m, nil
}

func (m Model) switchTab(tab Tab) Model {
	m.tab = tab
	m.status = ""
	m.err = nil
	return m
}

func (m Model) renderTabs() string {
	var rendered []string
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if Tab(i) == m.tab {
			rendered = append(rendered, tabActiveStyle.Render(label))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// load reads every collection the screens draw from.
func (m Model) load() tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		contacts, err := store.Contacts.GetAll(ctx)
		if err != nil {
			return errMsg{fmt.Errorf("failed to load contacts: %w", err)}
		}
		deals, err := store.Deals.GetAll(ctx)
		if err != nil {
			return errMsg{fmt.Errorf("failed to load deals: %w", err)}
		}
		activities, err := store.Activities.GetAll(ctx)
		if err != nil {
			return errMsg{fmt.Errorf("failed to load activities: %w", err)}
		}
		stages, err := store.Stages.GetAll(ctx)
		if err != nil {
			return errMsg{fmt.Errorf("failed to load stages: %w", err)}
		}
		return dataMsg{contacts: contacts, deals: deals, activities: activities, stages: stages}
	}
}

func (m Model) applyData(msg dataMsg) (tea.Model, tea.Cmd) {
	m.contacts = msg.contacts
	m.deals = msg.deals
	m.activities = msg.activities
	m.stages = msg.stages
	m.loaded = true

	m.stageCol = clamp(m.stageCol, len(m.stages))
	if m.followDeal != 0 {
		m.focusDeal(m.followDeal)
		m.followDeal = 0
	}
	m.dealRow = clamp(m.dealRow, len(m.columnDeals(m.stageCol)))

	if m.searchQuery != "" {
		return m, m.searchContacts(m.searchQuery)
	}
	m.visible = m.contacts
	m.selectedRow = clamp(m.selectedRow, len(m.visible))
	return m, nil
}

// lookups maps IDs to display names for activity subjects.
func (m Model) lookups() (contacts, deals map[int]string) {
	contacts = make(map[int]string, len(m.contacts))
	for _, c := range m.contacts {
		contacts[c.ID] = c.Name
	}
	deals = make(map[int]string, len(m.deals))
	for _, d := range m.deals {
		deals[d.ID] = d.Title
	}
	return contacts, deals
}

// clamp keeps a cursor inside a list of n items.
func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func renderHelp(keys ...string) string {
	return helpStyle.Render(strings.Join(keys, " • "))
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)
