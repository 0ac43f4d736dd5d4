// ABOUTME: Static registry describing the three record kinds
// ABOUTME: Field sets, natural keys, grouping dimension, and endpoint builders
package schema

import (
	"fmt"
	"net/url"

	"github.com/harperreed/rosterdesk/models"
)

// Kind identifies one of the three manageable record kinds.
type Kind int

const (
	KindUser Kind = iota
	KindAbsence
	KindCriminal
)

// Kinds lists every record kind in tab order.
var Kinds = []Kind{KindUser, KindAbsence, KindCriminal}

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "User"
	case KindAbsence:
		return "Absence"
	case KindCriminal:
		return "Criminal"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// definition is the per-kind schema entry. Query parameter names differ per
// kind on purpose: the backend grew them one at a time and they never
// converged (role= vs name= vs text=).
type definition struct {
	fields     []string
	naturalKey []string
	groupField string
	groupPath  string
	groupParam string
	textParam  string
	basePath   string
}

var registry = map[Kind]definition{
	KindUser: {
		fields:     []string{"forename", "surname", "account", "role"},
		naturalKey: []string{"account"},
		groupField: "role",
		groupPath:  "/user/all_roles",
		groupParam: "role",
		textParam:  "name",
		basePath:   "/user",
	},
	KindAbsence: {
		fields:     []string{"account", "date", "time"},
		naturalKey: []string{"account", "date"},
		groupField: "date",
		groupPath:  "/absence/all_dates",
		groupParam: "date",
		textParam:  "text",
		basePath:   "/absence",
	},
	KindCriminal: {
		fields:     []string{"account", "kind", "data"},
		naturalKey: []string{"account", "kind"},
		groupField: "account",
		groupPath:  "/criminal/all_accounts",
		groupParam: "name",
		textParam:  "text",
		basePath:   "/criminal",
	},
}

// Fields returns the ordered field names of the kind.
func Fields(kind Kind) []string {
	return registry[kind].fields
}

// NaturalKey returns the ordered field names that identify a record instance
// to the backend for update and delete.
func NaturalKey(kind Kind) []string {
	return registry[kind].naturalKey
}

// GroupField returns the field used for first-level grouping.
func GroupField(kind Kind) string {
	return registry[kind].groupField
}

// Permission returns the access level the session grants for the kind.
func Permission(kind Kind, p models.Permissions) models.Permission {
	switch kind {
	case KindUser:
		return p.User
	case KindAbsence:
		return p.Absence
	case KindCriminal:
		return p.Criminal
	}
	return models.PermissionNone
}

// GroupListPath returns the endpoint listing the first-level group labels.
func GroupListPath(kind Kind) string {
	return registry[kind].groupPath
}

// SearchByGroupPath returns the member search endpoint for one group label.
// The label is percent-encoded; unescaped interpolation corrupted queries in
// earlier console builds.
func SearchByGroupPath(kind Kind, label string) string {
	def := registry[kind]
	return fmt.Sprintf("%s/search?%s=%s", def.basePath, def.groupParam, url.QueryEscape(label))
}

// SearchByTextPath returns the free-text search endpoint.
func SearchByTextPath(kind Kind, query string) string {
	def := registry[kind]
	return fmt.Sprintf("%s/search?%s=%s", def.basePath, def.textParam, url.QueryEscape(query))
}

// FetchPath returns the single-record fetch endpoint for a natural key.
func FetchPath(kind Kind, rec models.Record) string {
	return registry[kind].basePath + "/fetch" + keyPath(kind, rec)
}

// CreatePath returns the collection endpoint records are POSTed to.
func CreatePath(kind Kind) string {
	return registry[kind].basePath
}

// UpdatePath returns the endpoint an updated record is PUT to. The natural
// key comes from the record as it was loaded, not from the draft.
func UpdatePath(kind Kind, original models.Record) string {
	return registry[kind].basePath + keyPath(kind, original)
}

// DeletePath returns the endpoint a record delete is sent to.
func DeletePath(kind Kind, rec models.Record) string {
	return registry[kind].basePath + keyPath(kind, rec)
}

func keyPath(kind Kind, rec models.Record) string {
	var path string
	for _, field := range registry[kind].naturalKey {
		path += "/" + url.PathEscape(rec[field])
	}
	return path
}

// ValidateKey checks that every natural-key field of the record is non-empty.
// An incomplete key is rejected locally and never sent to the backend.
func ValidateKey(kind Kind, rec models.Record) error {
	for _, field := range registry[kind].naturalKey {
		if rec[field] == "" {
			return fmt.Errorf("%s must not be empty", field)
		}
	}
	return nil
}

// Label returns the member-list label of a record, which is its natural key
// joined the way the backend paths spell it.
func Label(kind Kind, rec models.Record) string {
	var label string
	for i, field := range registry[kind].naturalKey {
		if i > 0 {
			label += "/"
		}
		label += rec[field]
	}
	return label
}
