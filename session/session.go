// ABOUTME: Persisted session state written by login and read at console start
// ABOUTME: Holds the Basic credential and permission grants at an XDG path
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/harperreed/rosterdesk/models"
)

const (
	// AppName is the directory name under the XDG data home.
	AppName = "rosterdesk"

	sessionFileName = "session.json"
)

// Session is the authenticated principal. It is created once by the login
// flow and immutable for the console's lifetime; only a password change
// replaces the token in place.
type Session struct {
	User        string             `json:"user"`
	Token       string             `json:"token"`
	Permissions models.Permissions `json:"permissions"`
}

// Path returns the session file location.
func Path() string {
	return filepath.Join(xdg.DataHome, AppName, sessionFileName)
}

// Load reads the persisted session. A missing file means the user has to
// log in first.
func Load() (*Session, error) {
	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no session found, run `rosterdesk login` first")
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if s.User == "" || s.Token == "" {
		return nil, fmt.Errorf("session is incomplete, run `rosterdesk login` again")
	}
	return &s, nil
}

// Save persists the session with restricted permissions.
func (s *Session) Save() error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Clear removes the persisted session. Clearing an absent session is fine.
func Clear() error {
	if err := os.Remove(Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
