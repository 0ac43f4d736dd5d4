// ABOUTME: Date conversion between the backend's ISO format and the display format
// ABOUTME: EncodeDate and DecodeDate invert each other for every valid date
package schema

import (
	"fmt"
	"time"
)

const (
	isoDateLayout     = "2006-01-02"
	displayDateLayout = "02.01.2006"
)

// EncodeDate converts a backend ISO date (2006-01-02) to the display format
// shown in the console (02.01.2006).
func EncodeDate(iso string) (string, error) {
	t, err := time.Parse(isoDateLayout, iso)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", iso, err)
	}
	return t.Format(displayDateLayout), nil
}

// DecodeDate converts a display date back to the backend's ISO format.
// DecodeDate(EncodeDate(d)) == d for every valid ISO date d.
func DecodeDate(display string) (string, error) {
	t, err := time.Parse(displayDateLayout, display)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", display, err)
	}
	return t.Format(isoDateLayout), nil
}
