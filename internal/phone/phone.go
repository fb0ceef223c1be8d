// Package phone cleans raw phone-number cells into dialable international
// numbers. Fields may hold several numbers separated by commas, tabs or
// line breaks; spaces inside a number are stray formatting and are
// stripped, not treated as separators. Invalid candidates are dropped
// rather than failing the row.
package phone

import (
	"regexp"
	"strings"
)

// Strictness selects how much validation runs after digit cleanup.
type Strictness int

const (
	// LengthOnly accepts any candidate with 10-15 digits.
	LengthOnly Strictness = iota
	// StrictIndian additionally requires 12-digit numbers to match the
	// Indian mobile format after country-code expansion.
	StrictIndian
)

var (
	sepRe      = regexp.MustCompile(`[,\t\r\n]+`)
	nonDigitRe = regexp.MustCompile(`\D`)
	indianRe   = regexp.MustCompile(`^91[6-9]\d{9}$`)
)

// Normalize splits, cleans and validates a multi-number field. A 10-digit
// candidate starting 6-9 is treated as a local mobile number and prefixed
// with 91. Rejected candidates are silently excluded.
func Normalize(raw string, strict Strictness) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var out []string
	for _, token := range sepRe.Split(strings.TrimSpace(raw), -1) {
		num, ok := clean(token, strict)
		if !ok {
			continue
		}
		out = append(out, num)
	}
	return out
}

// NormalizeOne handles the single-target path: the whole field is one
// number, possibly with stray spacing or punctuation.
func NormalizeOne(raw string, strict Strictness) (string, bool) {
	return clean(raw, strict)
}

func clean(token string, strict Strictness) (string, bool) {
	num := nonDigitRe.ReplaceAllString(token, "")
	if len(num) < 10 || len(num) > 15 {
		return "", false
	}
	if len(num) == 10 && num[0] >= '6' && num[0] <= '9' {
		num = "91" + num
	}
	if strict == StrictIndian && len(num) == 12 && !indianRe.MatchString(num) {
		return "", false
	}
	return num, true
}
