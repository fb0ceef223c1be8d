// Package status encodes and decodes the per-row status strings persisted
// to the spreadsheet. The format is read by humans in the sheet as well as
// by this tool, so the markers are fixed and must stay round-trip safe.
package status

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	sentMarker    = "✅ Sent"
	errorMarker   = "❌ Error"
	invalidPhone  = "❌ Invalid phone number"
	missingFields = "Missing required fields"
)

// Anchored: a retry status is exactly "Retry <n>", never a substring of
// some other message.
var retryRe = regexp.MustCompile(`^Retry (\d+)$`)

// Kind classifies a decoded status string.
type Kind int

const (
	KindEmpty Kind = iota
	KindSent
	KindRetry
	KindError
	KindInvalidPhone
	KindOther
)

// Status is the structured form of a persisted status string. Rows are
// decoded once at the read boundary; encoding happens only on write.
type Status struct {
	Kind    Kind
	Retries int
	Reason  string
}

// Parse decodes a raw status cell. Malformed input never fails: an
// unrecognized string decodes as KindOther with zero retries.
func Parse(raw string) Status {
	trimmed := strings.TrimSpace(raw)
	switch {
	case trimmed == "":
		return Status{Kind: KindEmpty}
	case strings.Contains(trimmed, sentMarker):
		return Status{Kind: KindSent}
	case trimmed == invalidPhone:
		return Status{Kind: KindInvalidPhone}
	case strings.Contains(trimmed, errorMarker):
		return Status{Kind: KindError, Reason: errorReason(trimmed)}
	}
	if m := retryRe.FindStringSubmatch(trimmed); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			n = 0
		}
		return Status{Kind: KindRetry, Retries: n}
	}
	return Status{Kind: KindOther}
}

func errorReason(s string) string {
	if i := strings.Index(s, ": "); i >= 0 {
		return s[i+2:]
	}
	return ""
}

// IsSent reports whether the raw status carries the sent marker.
func IsSent(raw string) bool {
	return strings.Contains(raw, sentMarker)
}

// RetryCount extracts the embedded retry counter, defaulting to 0 when the
// counter is absent or malformed.
func RetryCount(raw string) int {
	m := retryRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// NextRetry produces the status written after one more failed attempt.
// RetryCount(NextRetry(s)) == RetryCount(s) + 1 for any s.
func NextRetry(raw string) string {
	return fmt.Sprintf("Retry %d", RetryCount(raw)+1)
}

// Sent is the terminal success status for a single-target row.
func Sent() string {
	return sentMarker
}

// InvalidPhone marks a row whose phone field yielded no usable number.
func InvalidPhone() string {
	return invalidPhone
}

// MissingFields marks a row rejected by the required-fields gate.
func MissingFields() string {
	return Error(missingFields)
}

// Error is the terminal failure status embedding the last failure reason.
func Error(reason string) string {
	return fmt.Sprintf("%s: %s", errorMarker, reason)
}

// SentCount is the bulk success status for a fan-out row.
func SentCount(n int, at time.Time) string {
	return fmt.Sprintf("%s to %d numbers at %s", sentMarker, n, at.Format("02/01/2006 15:04:05"))
}

// Failure records one unreachable target and its last error.
type Failure struct {
	Target string
	Reason string
}

// Partial is the bulk status when some targets failed. Failures are listed
// in dispatch order.
func Partial(total int, failures []Failure, at time.Time) string {
	parts := make([]string, 0, len(failures))
	for _, f := range failures {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Target, f.Reason))
	}
	return fmt.Sprintf("⚠️ %d/%d Sent at %s (Failed: %s)",
		total-len(failures), total, at.Format("02/01/2006 15:04:05"), strings.Join(parts, "; "))
}
