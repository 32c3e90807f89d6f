package model

import (
	"strings"
	"time"
)

// Timestamp layouts used by the API, without and with a sub-second fraction.
const (
	LayoutSeconds  = "2006-01-02T15:04:05Z"
	LayoutFraction = "2006-01-02T15:04:05.999999Z"
)

// ParseTime parses an API timestamp. Returns false for empty or invalid input.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range []string{LayoutSeconds, LayoutFraction} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
