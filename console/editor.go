// ABOUTME: Add/edit/delete/cancel workflow for the selected record
// ABOUTME: Permission-gated state machine emitting backend mutations
package console

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/rosterdesk/api"
	"github.com/harperreed/rosterdesk/models"
	"github.com/harperreed/rosterdesk/schema"
)

// startCreate opens an empty form. The grouping field is pre-seeded from the
// group being browsed, so a record added "under" a group lands in it.
func (m Model) startCreate() (tea.Model, tea.Cmd) {
	if !m.permission().CanWrite() {
		return m, nil
	}
	m.initForm(nil)
	if m.currentGroup != "" && !m.searchActive {
		seed := m.displayGroup(m.currentGroup)
		for i, field := range schema.Fields(m.kind) {
			if field == schema.GroupField(m.kind) {
				m.inputs[i].SetValue(seed)
			}
		}
	}
	m.mode = ModeCreating
	return m, nil
}

// startEdit loads the selected record into the form. The record as loaded
// stays around to build the update path from its natural key.
func (m Model) startEdit() (tea.Model, tea.Cmd) {
	if m.selected == nil || !m.permission().CanWrite() {
		return m, nil
	}
	m.initForm(m.selected)
	m.mode = ModeEditing
	return m, nil
}

// deleteSelected removes the selected record. Viewing to Viewing; the
// selection survives a failure so the user can retry.
func (m Model) deleteSelected() (tea.Model, tea.Cmd) {
	if m.selected == nil || !m.permission().CanWrite() || m.busy {
		return m, nil
	}
	m.busy = true
	client, kind, gen := m.client, m.kind, m.gen
	key := m.selected.Clone()
	return m, func() tea.Msg {
		err := client.Delete(context.Background(), kind, key)
		return mutationDoneMsg{gen: gen, op: "delete", err: err}
	}
}

func (m *Model) initForm(rec models.Record) {
	fields := schema.Fields(m.kind)
	m.inputs = make([]textinput.Model, len(fields))
	for i, field := range fields {
		input := textinput.New()
		input.Placeholder = field
		input.CharLimit = 100
		if rec != nil {
			input.SetValue(m.displayValue(field, rec[field]))
		}
		m.inputs[i] = input
	}
	m.focus = 0
	m.formErr = ""
	m.updateFormFocus()
}

func (m *Model) updateFormFocus() {
	for i := range m.inputs {
		if i == m.focus {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m Model) handleEditorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.cancelEdit()
	case "tab":
		m.focus = (m.focus + 1) % len(m.inputs)
		m.updateFormFocus()
		return m, nil
	case "shift+tab":
		m.focus = (m.focus + len(m.inputs) - 1) % len(m.inputs)
		m.updateFormFocus()
		return m, nil
	case "enter":
		return m.submit()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// cancelEdit discards the draft. A previously selected record stays selected
// and is shown read-only again.
func (m Model) cancelEdit() (tea.Model, tea.Cmd) {
	m.mode = ModeViewing
	m.inputs = nil
	m.focus = 0
	m.formErr = ""
	m.busy = false
	return m, nil
}

// submit validates the draft locally and issues the create or update call.
// While the call is in flight further submits are ignored.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	if !m.permission().CanWrite() {
		return m, nil
	}

	draft, err := m.buildDraft()
	if err != nil {
		m.formErr = err.Error()
		return m, nil
	}
	if err := schema.ValidateKey(m.kind, draft); err != nil {
		m.formErr = err.Error()
		return m, nil
	}

	m.formErr = ""
	m.busy = true
	client, kind, gen := m.client, m.kind, m.gen

	if m.mode == ModeCreating {
		return m, func() tea.Msg {
			err := client.Create(context.Background(), kind, draft)
			return mutationDoneMsg{gen: gen, op: "create", err: err}
		}
	}

	original := m.selected.Clone()
	return m, func() tea.Msg {
		err := client.Update(context.Background(), kind, original, draft)
		return mutationDoneMsg{gen: gen, op: "update", err: err}
	}
}

// buildDraft assembles the record from the form inputs, converting display
// values back to the backend's wire format.
func (m Model) buildDraft() (models.Record, error) {
	draft := make(models.Record)
	for i, field := range schema.Fields(m.kind) {
		value := strings.TrimSpace(m.inputs[i].Value())
		if m.kind == schema.KindAbsence && field == "date" && value != "" {
			iso, err := schema.DecodeDate(value)
			if err != nil {
				return nil, err
			}
			value = iso
		}
		draft[field] = value
	}
	return draft, nil
}

func (m Model) handleMutationDone(msg mutationDoneMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen {
		// The console navigated away while the call was in flight.
		return m, nil
	}
	m.busy = false

	if msg.err != nil {
		var remote *api.RemoteError
		if errors.As(msg.err, &remote) && remote.SessionInvalid() {
			cmd := m.teardown(msg.err)
			return m, cmd
		}
		// The form and the selection stay as they are, the user may retry.
		m.modalErr = msg.err.Error()
		return m, nil
	}

	m.clearEditor()
	return m.refreshList()
}

// refreshList re-issues the list call that was active before editing began.
func (m Model) refreshList() (tea.Model, tea.Cmd) {
	m.gen++
	m.loading = true
	if m.searchActive {
		return m, m.textSearch(m.lastQuery)
	}
	if m.level == LevelMembers {
		return m, m.selectGroup(m.currentGroup)
	}
	return m, m.loadGroups()
}

// displayValue converts a wire value to its display form.
func (m Model) displayValue(field, value string) string {
	if m.kind == schema.KindAbsence && field == "date" && value != "" {
		if display, err := schema.EncodeDate(value); err == nil {
			return display
		}
	}
	return value
}

func (m Model) renderForm() string {
	var s strings.Builder
	if m.mode == ModeCreating {
		s.WriteString(fieldNameStyle.Render("new " + strings.ToLower(m.kind.String())))
	} else {
		s.WriteString(fieldNameStyle.Render("edit " + strings.ToLower(m.kind.String())))
	}
	s.WriteString("\n")

	for i, input := range m.inputs {
		if i == m.focus {
			s.WriteString("> ")
		} else {
			s.WriteString("  ")
		}
		s.WriteString(input.View())
		s.WriteString("\n")
	}

	if m.busy {
		s.WriteString(placeholderStyle.Render("Saving..."))
		s.WriteString("\n")
	}
	if m.formErr != "" {
		s.WriteString(errorStyle.Render(m.formErr))
		s.WriteString("\n")
	}
	return s.String()
}

func (m Model) renderDetail() string {
	var s strings.Builder
	s.WriteString(fieldNameStyle.Render(strings.ToLower(m.kind.String())))
	s.WriteString("\n")
	for _, field := range schema.Fields(m.kind) {
		s.WriteString(fieldNameStyle.Render(field))
		s.WriteString(" ")
		s.WriteString(m.displayValue(field, m.selected[field]))
		s.WriteString("\n")
	}
	if m.busy {
		s.WriteString(placeholderStyle.Render("Working..."))
		s.WriteString("\n")
	}
	return s.String()
}
