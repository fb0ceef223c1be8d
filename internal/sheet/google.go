package sheet

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/whatsheet/whatsheet/internal/model"
)

// GoogleStore is the production Store backed by the Google Sheets API.
type GoogleStore struct {
	svc           *sheets.Service
	spreadsheetID string

	mu      sync.Mutex
	headers map[string][]any
}

// NewGoogleStore authenticates with a service-account credentials file and
// binds to one spreadsheet.
func NewGoogleStore(ctx context.Context, spreadsheetID, credentialsFile string) (*GoogleStore, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &GoogleStore{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		headers:       make(map[string][]any),
	}, nil
}

// Rows fetches the sheet's value grid and decodes it against the header
// row. A missing or empty sheet yields an error; processing a sheet that
// cannot be read is a batch-level failure.
func (s *GoogleStore) Rows(ctx context.Context, sheetName string) ([]model.Row, error) {
	resp, err := s.svc.Spreadsheets.Values.
		Get(s.spreadsheetID, sheetName+"!A1:Z").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to read range %s!A1:Z: %w", sheetName, err)
	}
	rows := decodeRows(resp.Values)
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in sheet %s", sheetName)
	}
	return rows, nil
}

// WriteCell updates one cell. Column may be a header title or an A1
// letter; the header row is read once per sheet and cached.
func (s *GoogleStore) WriteCell(ctx context.Context, sheetName string, rowIndex int, column, value string) error {
	header, err := s.header(ctx, sheetName)
	if err != nil {
		return err
	}
	letter, err := resolveColumn(column, header)
	if err != nil {
		return err
	}

	rng := fmt.Sprintf("%s!%s%d", sheetName, letter, rowIndex)
	_, err = s.svc.Spreadsheets.Values.
		Update(s.spreadsheetID, rng, &sheets.ValueRange{Values: [][]any{{value}}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func (s *GoogleStore) header(ctx context.Context, sheetName string) ([]any, error) {
	s.mu.Lock()
	h, ok := s.headers[sheetName]
	s.mu.Unlock()
	if ok {
		return h, nil
	}

	resp, err := s.svc.Spreadsheets.Values.
		Get(s.spreadsheetID, sheetName+"!1:1").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", sheetName, err)
	}
	if len(resp.Values) == 0 {
		return nil, fmt.Errorf("sheet %s has no header row", sheetName)
	}

	s.mu.Lock()
	s.headers[sheetName] = resp.Values[0]
	s.mu.Unlock()
	return resp.Values[0], nil
}
