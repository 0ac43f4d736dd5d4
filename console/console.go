// ABOUTME: Terminal console for browsing and editing the record system
// ABOUTME: Bubbletea model owning navigator, editor, and session state
package console

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/rosterdesk/api"
	"github.com/harperreed/rosterdesk/models"
	"github.com/harperreed/rosterdesk/schema"
	"github.com/harperreed/rosterdesk/session"
)

// Level is the navigator's position in the browse hierarchy.
type Level int

const (
	LevelGroups Level = iota
	LevelMembers
)

// EditorMode is the editor's workflow state.
type EditorMode int

const (
	ModeViewing EditorMode = iota
	ModeCreating
	ModeEditing
)

// Model is the console's bubbletea model. All mutable console state lives
// here; nothing is read from ambient scope.
type Model struct {
	client  *api.Client
	session *session.Session

	// Navigator state
	kind         schema.Kind
	level        Level
	gen          int // navigation generation, stale completions are dropped
	groups       []string
	members      []models.Record
	cursor       int
	currentGroup string
	searchActive bool // member list came from a text search
	lastQuery    string
	loading      bool
	booted       bool // a group list arrived at least once this session

	// Search box
	searching   bool
	searchInput textinput.Model

	// Editor state
	mode     EditorMode
	selected models.Record // record the editor was loaded from, nil if none
	inputs   []textinput.Model
	focus    int
	formErr  string
	busy     bool // mutation in flight, submit affordances disabled

	// Session teardown
	sessionDead bool
	teardownMsg string

	stats    models.Stats
	modalErr string // blocking error, "" when no modal is open

	width  int
	height int
}

// New creates the console model for an authenticated session.
func New(client *api.Client, sess *session.Session) Model {
	search := textinput.New()
	search.Placeholder = "Search"
	search.CharLimit = 100

	return Model{
		client:      client,
		session:     sess,
		kind:        schema.KindUser,
		level:       LevelGroups,
		searchInput: search,
		width:       80,
		height:      24,
	}
}

// SessionDead reports whether the console quit because the credential was
// rejected. The caller clears the session and sends the user back to login.
func (m Model) SessionDead() (bool, string) {
	return m.sessionDead, m.teardownMsg
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadGroups(), m.loadStats())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case groupsLoadedMsg:
		return m.handleGroupsLoaded(msg)
	case membersLoadedMsg:
		return m.handleMembersLoaded(msg)
	case recordLoadedMsg:
		return m.handleRecordLoaded(msg)
	case mutationDoneMsg:
		return m.handleMutationDone(msg)
	case statsLoadedMsg:
		return m.handleStatsLoaded(msg)
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A blocking error modal eats everything until dismissed.
	if m.modalErr != "" {
		switch msg.String() {
		case "esc", "enter", "q":
			m.modalErr = ""
		}
		return m, nil
	}

	if m.searching {
		return m.handleSearchKeys(msg)
	}

	switch m.mode {
	case ModeCreating, ModeEditing:
		return m.handleEditorKeys(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		return m.switchKind()
	}

	return m.handleListKeys(msg)
}

// switchKind activates the next record kind. The navigator falls back to the
// group level and any in-progress draft is discarded without a backend call.
func (m Model) switchKind() (tea.Model, tea.Cmd) {
	m.kind = schema.Kinds[(int(m.kind)+1)%len(schema.Kinds)]
	m.resetNavigation()
	return m, m.loadGroups()
}

// resetNavigation returns the console to a fresh group list. Bumping the
// generation makes any in-flight response stale.
func (m *Model) resetNavigation() {
	m.gen++
	m.level = LevelGroups
	m.groups = nil
	m.members = nil
	m.cursor = 0
	m.currentGroup = ""
	m.searchActive = false
	m.lastQuery = ""
	m.searching = false
	m.searchInput.SetValue("")
	m.clearEditor()
}

// clearEditor drops the draft and the selection and returns to Viewing.
func (m *Model) clearEditor() {
	m.mode = ModeViewing
	m.selected = nil
	m.inputs = nil
	m.focus = 0
	m.formErr = ""
	m.busy = false
}

// permission returns the session's access level for the active kind.
func (m Model) permission() models.Permission {
	return schema.Permission(m.kind, m.session.Permissions)
}

func (m Model) View() string {
	if m.modalErr != "" {
		return m.renderModal()
	}

	var left string
	switch m.level {
	case LevelGroups:
		left = m.renderGroupList()
	case LevelMembers:
		left = m.renderMemberList()
	}

	var right string
	switch m.mode {
	case ModeCreating, ModeEditing:
		right = m.renderForm()
	default:
		if m.selected != nil {
			right = m.renderDetail()
		} else {
			right = m.renderStats()
		}
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Width(m.width/3).Render(left),
		paneStyle.Render(right),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("ROSTERDESK"),
		m.renderTabs(),
		body,
		m.renderHelp(),
	)
}

func (m Model) renderTabs() string {
	var rendered []string
	for _, kind := range schema.Kinds {
		label := kind.String()
		if perm := schema.Permission(kind, m.session.Permissions); !perm.CanWrite() {
			label += " (" + perm.String() + ")"
		}
		if kind == m.kind {
			rendered = append(rendered, tabActiveStyle.Render(label))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderHelp() string {
	if m.mode == ModeCreating || m.mode == ModeEditing {
		return helpStyle.Render("Tab: Next field • Enter: Save • Esc: Cancel")
	}
	help := "↑/↓: Navigate • Tab: Switch kind • Enter: Select • /: Search"
	if m.permission().CanWrite() {
		help += " • a: Add • e: Edit • d: Delete"
	}
	return helpStyle.Render(help + " • q: Quit")
}

// Styles, same palette as the rest of our tools.
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

	paneStyle = lipgloss.NewStyle().
			Padding(0, 1)

	entryStyle = lipgloss.NewStyle().
			Padding(0, 1)

	entryActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("255")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	fieldNameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Width(10)

	modalBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)
)
