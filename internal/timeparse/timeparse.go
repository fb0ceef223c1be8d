// Package timeparse turns the free-form scheduled-time strings found in the
// sheet into absolute instants. Operators type times by hand, so several
// layouts are accepted and failure is reported via ok=false rather than an
// error.
package timeparse

import (
	"strings"
	"time"
)

const nowToken = "now"

// Explicit layouts tried in order; first match wins.
var layouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
}

// Fallback layouts for values pasted from other tools.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// IsNow reports whether raw is the send-immediately token.
func IsNow(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), nowToken)
}

// Parse resolves raw against loc. The "now" token yields the current
// instant. An unparsable value yields ok=false; callers treat that as
// "cannot determine due state" and skip the row.
func Parse(raw string, loc *time.Location) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	if strings.EqualFold(trimmed, nowToken) {
		return time.Now().In(loc), true
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, trimmed, loc); err == nil {
			return t, true
		}
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
