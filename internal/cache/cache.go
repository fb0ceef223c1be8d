package cache

import (
	"context"
	"time"
)

// SentCache records rows that were delivered, keyed by sheet and row index.
// The spreadsheet stays the system of record; the cache only lets other
// tooling check recent sends without hitting the Sheets API.
type SentCache interface {
	StoreSent(ctx context.Context, sheetName string, rowIndex int, target string, sentAt time.Time) error
}
