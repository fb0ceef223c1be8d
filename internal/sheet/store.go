package sheet

import (
	"context"

	"github.com/whatsheet/whatsheet/internal/model"
)

// Store reads rows from and writes status cells back to a tabular source.
// Row indices are 1-based and include the header row, so the first data row
// is index 2.
type Store interface {
	Rows(ctx context.Context, sheetName string) ([]model.Row, error)
	WriteCell(ctx context.Context, sheetName string, rowIndex int, column, value string) error
}
