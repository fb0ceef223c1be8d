package sheet

import (
	"fmt"
	"strings"

	"github.com/whatsheet/whatsheet/internal/model"
)

// headerFields maps recognized header titles (lowercased) to row fields.
// Both the queue sheet ("Phone", "Message") and the bulk sheet
// ("Phone Numbers", "Message Text") vocabularies are accepted.
var headerFields = map[string]func(*model.Row, string){
	"phone":         func(r *model.Row, v string) { r.Phone = v },
	"phone numbers": func(r *model.Row, v string) { r.Phone = v },
	"message":       func(r *model.Row, v string) { r.Message = v },
	"message text":  func(r *model.Row, v string) { r.Message = v },
	"name":          func(r *model.Row, v string) { r.Name = v },
	"image":         func(r *model.Row, v string) { r.ImageURL = v },
	"image url":     func(r *model.Row, v string) { r.ImageURL = v },
	"time":          func(r *model.Row, v string) { r.Time = v },
	"run":           func(r *model.Row, v string) { r.Run = v },
	"handled by":    func(r *model.Row, v string) { r.HandledBy = v },
	"status":        func(r *model.Row, v string) { r.Status = v },
}

// decodeRows turns a raw value grid (header first) into rows. Cells beyond
// a short row are absent; unrecognized headers are ignored.
func decodeRows(values [][]any) []model.Row {
	if len(values) < 2 {
		return nil
	}

	header := values[0]
	setters := make([]func(*model.Row, string), len(header))
	for i, h := range header {
		setters[i] = headerFields[strings.ToLower(strings.TrimSpace(cellString(h)))]
	}

	rows := make([]model.Row, 0, len(values)-1)
	for i, raw := range values[1:] {
		row := model.Row{Index: i + 2}
		for col, cell := range raw {
			if col >= len(setters) || setters[col] == nil {
				continue
			}
			setters[col](&row, strings.TrimSpace(cellString(cell)))
		}
		rows = append(rows, row)
	}
	return rows
}

func cellString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// resolveColumn turns a column spec into an A1 letter. The spec is matched
// against the header row by title first, so a short header like "OK" is
// still addressable by name; only when no title matches does a letter run
// ("I", "AB") pass through as-is.
func resolveColumn(spec string, header []any) (string, error) {
	trimmed := strings.TrimSpace(spec)
	if trimmed == "" {
		return "", fmt.Errorf("empty column spec")
	}
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(cellString(h)), trimmed) {
			return columnLetter(i), nil
		}
	}
	if isColumnLetters(trimmed) {
		return strings.ToUpper(trimmed), nil
	}
	return "", fmt.Errorf("column %q not found in header", spec)
}

func isColumnLetters(s string) bool {
	if len(s) > 2 {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

// columnLetter converts a zero-based column index to its A1 letters.
func columnLetter(i int) string {
	letters := ""
	for i >= 0 {
		letters = string(rune('A'+i%26)) + letters
		i = i/26 - 1
	}
	return letters
}
