// ABOUTME: Error taxonomy for backend calls
// ABOUTME: Distinguishes transport failures from backend-reported errors
package api

import "fmt"

// RemoteError is a failure the backend reported through the {Err: ...}
// envelope. Kind carries the backend's error variant verbatim (for example
// "NothingFound", "InvalidUser", "Unauthorized").
type RemoteError struct {
	Kind string
}

func (e *RemoteError) Error() string {
	return "backend error: " + e.Kind
}

// SessionInvalid reports whether the error means the stored credential is no
// longer accepted. Only the authentication kinds count; validation kinds also
// ride on non-200 responses and must stay recoverable.
func (e *RemoteError) SessionInvalid() bool {
	return e.Kind == "Unauthorized" || e.Kind == "InvalidLogin"
}

// TransportError means no usable response reached the client at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
