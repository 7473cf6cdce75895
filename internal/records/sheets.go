package records

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/ziadkadry99/apptagent/internal/business"
)

const sheetRange = "A:Z"

// SheetsStore appends customer rows to a Google spreadsheet.
type SheetsStore struct {
	svc          *sheets.Service
	sheetID      string
	businessType business.Type
}

// NewSheetsStore creates a Sheets client for sheetID.
func NewSheetsStore(ctx context.Context, sheetID string, businessType business.Type, opts ...option.ClientOption) (*SheetsStore, error) {
	if sheetID == "" {
		return nil, fmt.Errorf("sheets store: spreadsheet id is required")
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return &SheetsStore{svc: svc, sheetID: sheetID, businessType: businessType}, nil
}

// Setup writes the vertical's header row into the first row.
func (s *SheetsStore) Setup(ctx context.Context) error {
	headers := Headers(s.businessType)
	_, err := s.svc.Spreadsheets.Values.Update(s.sheetID, "A1:Z1", &sheets.ValueRange{
		Values: [][]any{toCells(headers)},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("writing header row: %w", err)
	}
	return nil
}

// Append adds one row below the existing data.
func (s *SheetsStore) Append(ctx context.Context, rec Record) error {
	if rec.BusinessType == "" {
		rec.BusinessType = s.businessType
	}
	_, err := s.svc.Spreadsheets.Values.Append(s.sheetID, sheetRange, &sheets.ValueRange{
		Values: [][]any{toCells(rec.Row())},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("appending customer row: %w", err)
	}
	return nil
}

// History reads the whole sheet and keeps the rows matching phone or name.
// The first row is taken as the header row.
func (s *SheetsStore) History(ctx context.Context, phone, name string) ([]Entry, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.sheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading customer sheet: %w", err)
	}
	if len(resp.Values) < 2 {
		return nil, nil
	}
	headers := fromCells(resp.Values[0])
	var entries []Entry
	for _, raw := range resp.Values[1:] {
		e := entryFrom(headers, fromCells(raw))
		if e.Matches(phone, name) {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func fromCells(cells []any) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = fmt.Sprint(c)
	}
	return out
}
