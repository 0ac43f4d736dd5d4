// ABOUTME: Two-level browse hierarchy over the active record kind
// ABOUTME: Group list, member list, text search, selection, and back navigation
package console

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/rosterdesk/api"
	"github.com/harperreed/rosterdesk/models"
	"github.com/harperreed/rosterdesk/schema"
)

// loadGroups fetches the first-level group labels for the active kind.
func (m Model) loadGroups() tea.Cmd {
	client, kind, gen := m.client, m.kind, m.gen
	return func() tea.Msg {
		labels, err := client.Groups(context.Background(), kind)
		return groupsLoadedMsg{gen: gen, labels: labels, err: err}
	}
}

// selectGroup fetches the member records of one group label.
func (m Model) selectGroup(label string) tea.Cmd {
	client, kind, gen := m.client, m.kind, m.gen
	return func() tea.Msg {
		records, err := client.SearchByGroup(context.Background(), kind, label)
		return membersLoadedMsg{gen: gen, group: label, records: records, err: err}
	}
}

// textSearch fetches records matching a free-text query, bypassing the
// group level.
func (m Model) textSearch(query string) tea.Cmd {
	client, kind, gen := m.client, m.kind, m.gen
	return func() tea.Msg {
		records, err := client.SearchByText(context.Background(), kind, query)
		return membersLoadedMsg{gen: gen, records: records, fromSearch: true, query: query, err: err}
	}
}

// fetchRecord loads the full record when the member list only returned a
// partial one.
func (m Model) fetchRecord(key models.Record) tea.Cmd {
	client, kind, gen := m.client, m.kind, m.gen
	return func() tea.Msg {
		record, err := client.Fetch(context.Background(), kind, key)
		return recordLoadedMsg{gen: gen, record: record, err: err}
	}
}

func (m Model) loadStats() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		stats, err := client.Stats(context.Background())
		return statsLoadedMsg{stats: stats, err: err}
	}
}

// teardown ends the console because the credential is no longer valid.
func (m *Model) teardown(err error) tea.Cmd {
	m.sessionDead = true
	m.teardownMsg = err.Error()
	return tea.Quit
}

// fail routes a navigation failure: an invalid credential forces logout,
// everything else opens the blocking modal and leaves the UI recoverable.
func (m *Model) fail(err error, bootstrap bool) tea.Cmd {
	var remote *api.RemoteError
	if errors.As(err, &remote) && (remote.SessionInvalid() || bootstrap) {
		return m.teardown(err)
	}
	m.modalErr = err.Error()
	return nil
}

func (m Model) handleGroupsLoaded(msg groupsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen {
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		// A backend error before any group list ever arrived means the
		// stored credential is stale. Once browsing has begun, only the
		// authentication kinds force a logout.
		cmd := m.fail(msg.err, !m.booted)
		return m, cmd
	}
	m.booted = true
	m.groups = msg.labels
	m.level = LevelGroups
	m.cursor = 0
	return m, nil
}

func (m Model) handleMembersLoaded(msg membersLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen {
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		cmd := m.fail(msg.err, false)
		return m, cmd
	}
	m.level = LevelMembers
	m.members = msg.records
	m.currentGroup = msg.group
	m.searchActive = msg.fromSearch
	m.lastQuery = msg.query
	m.cursor = 0
	return m, nil
}

func (m Model) handleRecordLoaded(msg recordLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen {
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		cmd := m.fail(msg.err, false)
		return m, cmd
	}
	m.selected = msg.record
	return m, nil
}

func (m Model) handleStatsLoaded(msg statsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		var remote *api.RemoteError
		if errors.As(msg.err, &remote) {
			return m, m.teardown(msg.err)
		}
		m.modalErr = msg.err.Error()
		return m, nil
	}
	m.stats = msg.stats
	return m, nil
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.listLen()-1 {
			m.cursor++
		}
	case "enter":
		return m.activateEntry()
	case "esc", "backspace":
		return m.back()
	case "/":
		m.searching = true
		m.searchInput.Focus()
		return m, nil
	case "a":
		return m.startCreate()
	case "e":
		return m.startEdit()
	case "d":
		return m.deleteSelected()
	}
	return m, nil
}

func (m Model) listLen() int {
	if m.level == LevelGroups {
		return len(m.groups)
	}
	return len(m.members) + 1 // back entry is always first
}

// activateEntry handles enter on the focused list entry.
func (m Model) activateEntry() (tea.Model, tea.Cmd) {
	if m.level == LevelGroups {
		if m.cursor >= len(m.groups) {
			return m, nil
		}
		m.gen++
		m.loading = true
		m.clearEditor()
		return m, m.selectGroup(m.groups[m.cursor])
	}

	if m.cursor == 0 {
		return m.back()
	}
	idx := m.cursor - 1
	if idx >= len(m.members) {
		return m, nil
	}
	return m.selectRecord(m.members[idx])
}

// selectRecord makes a member record the active one. A record missing its
// grouping field came back partial and is fetched in full first.
func (m Model) selectRecord(rec models.Record) (tea.Model, tea.Cmd) {
	m.clearEditor()
	if _, ok := rec[schema.GroupField(m.kind)]; !ok {
		m.loading = true
		return m, m.fetchRecord(rec)
	}
	m.selected = rec.Clone()
	return m, nil
}

// back pops one navigation level. The member list falls back to a fresh
// group list; at the group level the groups are re-fetched. Selection and
// editor state never survive back navigation.
func (m Model) back() (tea.Model, tea.Cmd) {
	m.resetNavigation()
	m.loading = true
	return m, m.loadGroups()
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		return m, nil
	case "enter":
		query := m.searchInput.Value()
		m.searching = false
		m.searchInput.Blur()
		m.gen++
		m.loading = true
		m.clearEditor()
		return m, m.textSearch(query)
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) renderGroupList() string {
	var s strings.Builder
	s.WriteString(fieldNameStyle.Render(schema.GroupField(m.kind)))
	s.WriteString("\n")

	if m.searching {
		s.WriteString(m.searchInput.View())
		s.WriteString("\n")
	}
	if m.loading {
		s.WriteString(placeholderStyle.Render("Loading..."))
		return s.String()
	}
	if len(m.groups) == 0 {
		s.WriteString(placeholderStyle.Render("Nothing here yet."))
		return s.String()
	}

	for i, label := range m.groups {
		style := entryStyle
		if i == m.cursor {
			style = entryActiveStyle
		}
		s.WriteString(style.Render(m.displayGroup(label)))
		s.WriteString("\n")
	}
	return s.String()
}

func (m Model) renderMemberList() string {
	var s strings.Builder
	if m.searchActive {
		s.WriteString(fieldNameStyle.Render("search"))
	} else {
		s.WriteString(fieldNameStyle.Render(m.displayGroup(m.currentGroup)))
	}
	s.WriteString("\n")

	if m.searching {
		s.WriteString(m.searchInput.View())
		s.WriteString("\n")
	}

	// The back entry renders first so an empty result can still be left.
	backStyle := entryStyle
	if m.cursor == 0 {
		backStyle = entryActiveStyle
	}
	s.WriteString(backStyle.Render("← Back"))
	s.WriteString("\n")

	if m.loading {
		s.WriteString(placeholderStyle.Render("Loading..."))
		return s.String()
	}
	if len(m.members) == 0 {
		s.WriteString(placeholderStyle.Render("Nothing found."))
		return s.String()
	}

	for i, rec := range m.members {
		style := entryStyle
		if i+1 == m.cursor {
			style = entryActiveStyle
		}
		s.WriteString(style.Render(schema.Label(m.kind, rec)))
		s.WriteString("\n")
	}
	return s.String()
}

// displayGroup converts a group label to its display form. Absence groups
// are ISO dates and shown in the local date format.
func (m Model) displayGroup(label string) string {
	if m.kind == schema.KindAbsence {
		if display, err := schema.EncodeDate(label); err == nil {
			return display
		}
	}
	return label
}

func (m Model) renderStats() string {
	var s strings.Builder
	s.WriteString(fieldNameStyle.Render("stats"))
	s.WriteString("\n")
	if m.stats.Name != "" {
		s.WriteString(entryStyle.Render(m.stats.Name + " " + m.stats.Version))
		s.WriteString("\n")
	}
	s.WriteString(entryStyle.Render("Users: " + strconv.Itoa(m.stats.Users)))
	s.WriteString("\n")
	s.WriteString(entryStyle.Render("Criminal records: " + strconv.Itoa(m.stats.Criminals)))
	return s.String()
}

func (m Model) renderModal() string {
	box := modalBoxStyle.Render(
		errorStyle.Render("Error") + "\n\n" +
			m.modalErr + "\n\n" +
			helpStyle.Render("Esc: Close"),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
