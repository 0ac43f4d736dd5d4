// ABOUTME: Tests for navigator browsing behavior
// ABOUTME: Covers list ordering, empty results, stale responses, and teardown
package console

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/rosterdesk/api"
	"github.com/harperreed/rosterdesk/models"
	"github.com/harperreed/rosterdesk/schema"
)

func TestGroupsRenderInBackendOrder(t *testing.T) {
	m := newTestModel(allWrite())
	updated, _ := m.handleGroupsLoaded(groupsLoadedMsg{gen: m.gen, labels: []string{"Admin", "Staff"}})
	m = updated.(Model)

	output := m.renderGroupList()
	admin := strings.Index(output, "Admin")
	staff := strings.Index(output, "Staff")
	if admin < 0 || staff < 0 {
		t.Fatal("Both groups should render")
	}
	if admin > staff {
		t.Error("Groups must keep the backend's order")
	}
}

func TestEmptyMemberListShowsOnlyBackEntry(t *testing.T) {
	m := newTestModel(allWrite())
	updated, _ := m.handleMembersLoaded(membersLoadedMsg{gen: m.gen, group: "Staff"})
	m = updated.(Model)

	if m.listLen() != 1 {
		t.Errorf("Expected only the back entry, got %d entries", m.listLen())
	}
	output := m.renderMemberList()
	if !strings.Contains(output, "Back") {
		t.Error("The back entry must render first even for empty results")
	}
	if !strings.Contains(output, "Nothing found.") {
		t.Error("Empty results are a normal state, not an error")
	}
}

func TestStaleResponseIsDropped(t *testing.T) {
	m := newTestModel(allWrite())
	m.gen = 3
	m.groups = []string{"Admin"}

	updated, _ := m.handleMembersLoaded(membersLoadedMsg{
		gen:     2,
		group:   "Staff",
		records: []models.Record{{"account": "jdoe"}},
	})
	m = updated.(Model)

	if m.level != LevelGroups {
		t.Error("A stale member list must not move the navigator")
	}
	if len(m.members) != 0 {
		t.Error("Stale records must not be applied")
	}
}

func TestStaleErrorIsDropped(t *testing.T) {
	m := newTestModel(allWrite())
	m.gen = 5
	m.groups = []string{"Admin"}

	updated, _ := m.handleGroupsLoaded(groupsLoadedMsg{gen: 4, err: &api.RemoteError{Kind: "Unauthorized"}})
	m = updated.(Model)

	if m.sessionDead {
		t.Error("A stale failure must not tear the session down")
	}
}

func TestBackClearsSelectionAndEditor(t *testing.T) {
	m := newTestModel(allWrite())
	m.level = LevelMembers
	m.currentGroup = "Staff"
	m.members = []models.Record{{"account": "jdoe"}}
	m.selected = m.members[0].Clone()
	m.mode = ModeEditing
	m.initForm(m.selected)

	updated, cmd := m.back()
	m = updated.(Model)

	if m.level != LevelGroups {
		t.Error("Back should pop to the group level")
	}
	if m.selected != nil {
		t.Error("Back should clear the active selection")
	}
	if m.mode != ModeViewing {
		t.Error("Back should return the editor to Viewing")
	}
	if cmd == nil {
		t.Error("Back should re-fetch the group list")
	}
}

func TestBootstrapRemoteErrorTearsDown(t *testing.T) {
	m := newTestModel(allWrite())

	updated, cmd := m.handleGroupsLoaded(groupsLoadedMsg{gen: m.gen, err: &api.RemoteError{Kind: "Unauthorized"}})
	m = updated.(Model)

	if !m.sessionDead {
		t.Error("A backend error before the first group list means the credential is stale")
	}
	if cmd == nil {
		t.Error("Teardown should quit the program")
	}
}

func TestLaterRemoteErrorOpensModal(t *testing.T) {
	m := newTestModel(allWrite())
	updated, _ := m.handleGroupsLoaded(groupsLoadedMsg{gen: m.gen, labels: []string{"Admin"}})
	m = updated.(Model)

	updated, _ = m.handleGroupsLoaded(groupsLoadedMsg{gen: m.gen, err: &api.RemoteError{Kind: "NothingFound"}})
	m = updated.(Model)

	if m.sessionDead {
		t.Error("A recoverable backend error must not tear the session down")
	}
	if m.modalErr == "" {
		t.Error("Recoverable failures surface as a blocking modal")
	}
}

func TestKindSwitchErrorStaysRecoverable(t *testing.T) {
	m := newTestModel(allWrite())
	updated, _ := m.handleGroupsLoaded(groupsLoadedMsg{gen: m.gen, labels: []string{"Admin"}})
	m = updated.(Model)

	// Switching kinds resets the navigator but not the session's boot state.
	updated, _ = m.handleKeyPress(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)

	updated, _ = m.handleGroupsLoaded(groupsLoadedMsg{gen: m.gen, err: &api.RemoteError{Kind: "NothingFound"}})
	m = updated.(Model)

	if m.sessionDead {
		t.Error("A list failure after the first boot must not log the user out")
	}
	if m.modalErr == "" {
		t.Error("The failure should surface as a dismissable modal")
	}
}

func TestBackNavigationErrorStaysRecoverable(t *testing.T) {
	m := newTestModel(allWrite())
	updated, _ := m.handleGroupsLoaded(groupsLoadedMsg{gen: m.gen, labels: []string{"Admin"}})
	m = updated.(Model)
	m.level = LevelMembers
	m.currentGroup = "Admin"

	updated, _ = m.back()
	m = updated.(Model)

	updated, _ = m.handleGroupsLoaded(groupsLoadedMsg{gen: m.gen, err: &api.RemoteError{Kind: "NothingFound"}})
	m = updated.(Model)

	if m.sessionDead {
		t.Error("Back navigation must not reopen the bootstrap error path")
	}
	if m.modalErr == "" {
		t.Error("The failure should surface as a dismissable modal")
	}
}

func TestSelectRecordFetchesPartialResults(t *testing.T) {
	m := newTestModel(allWrite())
	m.level = LevelMembers
	// Missing the grouping field marks a partial search result.
	m.members = []models.Record{{"account": "jdoe"}}
	m.cursor = 1

	updated, cmd := m.activateEntry()
	m = updated.(Model)

	if m.selected != nil {
		t.Error("A partial record must be fetched before selection")
	}
	if cmd == nil {
		t.Error("Expected a fetch command for the partial record")
	}

	full := models.Record{"account": "jdoe", "forename": "J", "surname": "Doe", "role": "Staff"}
	updated, _ = m.handleRecordLoaded(recordLoadedMsg{gen: m.gen, record: full})
	m = updated.(Model)
	if m.selected == nil || m.selected["role"] != "Staff" {
		t.Error("The fetched record should become the selection")
	}
}

func TestSelectCompleteRecordDirectly(t *testing.T) {
	m := newTestModel(allWrite())
	m.level = LevelMembers
	m.members = []models.Record{{"account": "jdoe", "forename": "J", "surname": "Doe", "role": "Staff"}}
	m.cursor = 1

	updated, cmd := m.activateEntry()
	m = updated.(Model)

	if cmd != nil {
		t.Error("A complete record needs no extra fetch")
	}
	if m.selected == nil || m.selected["account"] != "jdoe" {
		t.Error("The record should be selected as loaded")
	}
}

func TestSearchIssuesTextSearch(t *testing.T) {
	m := newTestModel(allWrite())
	m.groups = []string{"Admin"}

	updated, _ := m.handleKeyPress(keyRune('/'))
	m = updated.(Model)
	if !m.searching {
		t.Fatal("Slash should focus the search box")
	}

	m.searchInput.SetValue("doe")
	gen := m.gen
	updated, cmd := m.handleKeyPress(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if cmd == nil {
		t.Error("Submitting the search should issue a backend call")
	}
	if m.gen <= gen {
		t.Error("A search is a navigation transition and bumps the generation")
	}

	updated, _ = m.handleMembersLoaded(membersLoadedMsg{
		gen:        m.gen,
		records:    []models.Record{{"account": "jdoe", "forename": "J", "surname": "Doe", "role": "Staff"}},
		fromSearch: true,
		query:      "doe",
	})
	m = updated.(Model)
	if m.level != LevelMembers || !m.searchActive {
		t.Error("Search results render as a member list")
	}
}

func TestAbsenceGroupsDisplayLocalDates(t *testing.T) {
	m := newTestModel(allWrite())
	m.kind = schema.KindAbsence
	updated, _ := m.handleGroupsLoaded(groupsLoadedMsg{gen: m.gen, labels: []string{"2026-01-02"}})
	m = updated.(Model)

	output := m.renderGroupList()
	if !strings.Contains(output, "02.01.2026") {
		t.Error("Absence group dates should render in the display format")
	}
}
