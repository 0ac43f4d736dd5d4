// ABOUTME: Completion messages for backend calls issued by the console
// ABOUTME: Every message carries the generation it was issued under
package console

import "github.com/harperreed/rosterdesk/models"

// groupsLoadedMsg completes a group-list fetch.
type groupsLoadedMsg struct {
	gen    int
	labels []string
	err    error
}

// membersLoadedMsg completes a member-list fetch, either for a group or for
// a free-text search.
type membersLoadedMsg struct {
	gen        int
	group      string
	records    []models.Record
	fromSearch bool
	query      string
	err        error
}

// recordLoadedMsg completes a single-record fetch for selection.
type recordLoadedMsg struct {
	gen    int
	record models.Record
	err    error
}

// mutationDoneMsg completes a create, update, or delete.
type mutationDoneMsg struct {
	gen int
	op  string
	err error
}

// statsLoadedMsg completes the stats fetch.
type statsLoadedMsg struct {
	stats models.Stats
	err   error
}
