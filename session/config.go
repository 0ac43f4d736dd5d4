// ABOUTME: Backend server configuration
// ABOUTME: Reads ROSTERDESK_SERVER from the environment or a local .env file
package session

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultServer is used when no server address is configured.
const DefaultServer = "http://localhost:8000"

// ServerURL returns the backend base URL without a trailing slash. A .env
// file in the working directory is honored, the process environment wins.
func ServerURL() string {
	_ = godotenv.Load()

	url := os.Getenv("ROSTERDESK_SERVER")
	if url == "" {
		url = DefaultServer
	}
	return strings.TrimRight(url, "/")
}
