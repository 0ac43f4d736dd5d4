// ABOUTME: Tests for the console model
// ABOUTME: Covers kind switching, permission gating, and modal behavior
package console

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/rosterdesk/api"
	"github.com/harperreed/rosterdesk/models"
	"github.com/harperreed/rosterdesk/schema"
	"github.com/harperreed/rosterdesk/session"
)

func newTestModel(perms models.Permissions) Model {
	// The client points nowhere; tests never execute returned commands.
	client := api.NewClient("http://127.0.0.1:0", "token")
	sess := &session.Session{User: "admin", Token: "token", Permissions: perms}
	return New(client, sess)
}

func allWrite() models.Permissions {
	return models.Permissions{
		User:     models.PermissionReadWrite,
		Absence:  models.PermissionReadWrite,
		Criminal: models.PermissionReadWrite,
	}
}

func allReadOnly() models.Permissions {
	return models.Permissions{
		User:     models.PermissionReadOnly,
		Absence:  models.PermissionReadOnly,
		Criminal: models.PermissionReadOnly,
	}
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestSwitchKindResetsEverything(t *testing.T) {
	m := newTestModel(allWrite())
	m.level = LevelMembers
	m.currentGroup = "Staff"
	m.members = []models.Record{{"account": "jdoe"}}
	m.selected = models.Record{"account": "jdoe"}
	gen := m.gen

	updated, cmd := m.handleKeyPress(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)

	if m.kind != schema.KindAbsence {
		t.Errorf("Expected kind Absence, got %v", m.kind)
	}
	if m.level != LevelGroups {
		t.Error("Kind switch should reset to the group level")
	}
	if m.selected != nil {
		t.Error("Kind switch should clear the selection")
	}
	if m.gen <= gen {
		t.Error("Kind switch should bump the generation")
	}
	if cmd == nil {
		t.Error("Kind switch should load the new group list")
	}
}

func TestReadOnlyPermissionGatesMutations(t *testing.T) {
	m := newTestModel(allReadOnly())
	m.level = LevelMembers
	m.members = []models.Record{{"account": "jdoe", "forename": "J", "surname": "Doe", "role": "Staff"}}
	m.selected = m.members[0].Clone()

	for _, key := range []rune{'a', 'e', 'd'} {
		updated, cmd := m.handleKeyPress(keyRune(key))
		m = updated.(Model)
		if cmd != nil {
			t.Errorf("Key %q should be a no-op without write access", key)
		}
		if m.mode != ModeViewing {
			t.Errorf("Key %q should not leave Viewing without write access", key)
		}
	}
}

func TestModalBlocksInput(t *testing.T) {
	m := newTestModel(allWrite())
	m.modalErr = "backend error: NothingFound"

	updated, cmd := m.handleKeyPress(keyRune('a'))
	m = updated.(Model)
	if cmd != nil || m.mode != ModeViewing {
		t.Error("Keys besides dismiss should be swallowed by the modal")
	}
	if m.modalErr == "" {
		t.Error("Modal should stay open")
	}

	updated, _ = m.handleKeyPress(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	if m.modalErr != "" {
		t.Error("Esc should dismiss the modal")
	}
}

func TestModalViewShowsError(t *testing.T) {
	m := newTestModel(allWrite())
	m.modalErr = "backend error: InvalidUser"

	output := m.View()
	if !strings.Contains(output, "InvalidUser") {
		t.Error("Modal should carry the backend error payload verbatim")
	}
}

func TestTabsShowAccessLevels(t *testing.T) {
	perms := allWrite()
	perms.Criminal = models.PermissionReadOnly
	m := newTestModel(perms)

	tabs := m.renderTabs()
	if !strings.Contains(tabs, "read-only") {
		t.Error("Tabs should annotate kinds without write access")
	}
}
