package records

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ziadkadry99/apptagent/internal/business"
	"github.com/ziadkadry99/apptagent/internal/db"
)

// SQLiteStore keeps customer rows in the local database.
type SQLiteStore struct {
	db      *db.DB
	sheetID string
}

// NewSQLiteStore creates a Store backed by the given database. sheetID
// partitions rows the same way a spreadsheet id would.
func NewSQLiteStore(database *db.DB, sheetID string) *SQLiteStore {
	return &SQLiteStore{db: database, sheetID: sheetID}
}

// Append inserts one row.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	row, err := json.Marshal(rec.Row())
	if err != nil {
		return fmt.Errorf("marshalling row: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO customer_records (
			id, sheet_id, business_type, recorded_at, name, phone,
			appointment_date, appointment_time, event_id, row_values
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(),
		s.sheetID,
		string(rec.BusinessType),
		rec.RecordedAt.UTC().Format(TimestampLayout),
		rec.Customer["name"],
		rec.Customer["phone"],
		rec.AppointmentDate,
		rec.AppointmentTime,
		rec.EventID,
		string(row),
	)
	if err != nil {
		return fmt.Errorf("inserting customer record: %w", err)
	}
	return nil
}

// History returns the rows for a phone number or a name, oldest first.
func (s *SQLiteStore) History(ctx context.Context, phone, name string) ([]Entry, error) {
	phone, name = strings.TrimSpace(phone), strings.TrimSpace(name)
	var (
		clauses []string
		args    = []any{s.sheetID}
	)
	if phone != "" {
		clauses = append(clauses, "TRIM(phone) = ?")
		args = append(args, phone)
	}
	if name != "" {
		clauses = append(clauses, "LOWER(TRIM(name)) = LOWER(?)")
		args = append(args, name)
	}
	if len(clauses) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT business_type, row_values FROM customer_records
		WHERE sheet_id = ? AND (`+strings.Join(clauses, " OR ")+`)
		ORDER BY recorded_at, rowid`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying customer records: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var typ, raw string
		if err := rows.Scan(&typ, &raw); err != nil {
			return nil, fmt.Errorf("scanning customer record: %w", err)
		}
		var values []string
		if err := json.Unmarshal([]byte(raw), &values); err != nil {
			return nil, fmt.Errorf("decoding customer record: %w", err)
		}
		entries = append(entries, entryFrom(Headers(business.Type(typ)), values))
	}
	return entries, rows.Err()
}
