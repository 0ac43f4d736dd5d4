// ABOUTME: Data models for the record system entities
// ABOUTME: Defines Permission levels, records, login payloads, and stats
package models

// Permission is the access level a login holds for one record kind.
// The wire format is the backend's integer encoding (0/1/2).
type Permission int

const (
	PermissionNone Permission = iota
	PermissionReadOnly
	PermissionReadWrite
)

func (p Permission) String() string {
	switch p {
	case PermissionReadOnly:
		return "read-only"
	case PermissionReadWrite:
		return "read-write"
	}
	return "none"
}

// CanRead reports whether records may be listed and fetched.
func (p Permission) CanRead() bool {
	return p == PermissionReadOnly || p == PermissionReadWrite
}

// CanWrite reports whether records may be created, updated, or deleted.
func (p Permission) CanWrite() bool {
	return p == PermissionReadWrite
}

// Permissions holds the per-kind access grants of the authenticated login.
type Permissions struct {
	User     Permission `json:"access_user"`
	Absence  Permission `json:"access_absence"`
	Criminal Permission `json:"access_criminal"`
}

// Record is one instance of a record kind: a plain mapping from field name
// to string value. Records have no identity beyond their natural key and are
// fetched fresh on every navigation step.
type Record map[string]string

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// User is the wire shape of a user record.
type User struct {
	Forename string `json:"forename"`
	Surname  string `json:"surname"`
	Account  string `json:"account"`
	Role     string `json:"role"`
}

// Absence is the wire shape of an absence record. Date travels as an ISO
// date string (2006-01-02).
type Absence struct {
	Account string `json:"account"`
	Date    string `json:"date"`
	Time    string `json:"time,omitempty"`
}

// Criminal is the wire shape of a criminal record.
type Criminal struct {
	Account string `json:"account"`
	Kind    string `json:"kind"`
	Data    string `json:"data,omitempty"`
}

// NewLogin is the creation payload for login administration.
type NewLogin struct {
	User           string     `json:"user"`
	Password       string     `json:"password"`
	AccessUser     Permission `json:"access_user"`
	AccessAbsence  Permission `json:"access_absence"`
	AccessCriminal Permission `json:"access_criminal"`
}

// Stats is the system summary reported by the backend.
type Stats struct {
	Name        string `json:"name,omitempty"`
	Version     string `json:"version,omitempty"`
	Developer   string `json:"developer,omitempty"`
	Repo        string `json:"repo,omitempty"`
	Description string `json:"description,omitempty"`
	Users       int    `json:"users"`
	Criminals   int    `json:"criminals"`
}
