package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	appErrors "github.com/noah-isme/absensi-karyawan/pkg/errors"
	"github.com/noah-isme/absensi-karyawan/pkg/sheets"
)

type sheetRow struct {
	ID        int64     `db:"id"`
	Payload   []byte    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
}

// PostgresRowStore keeps sheets in the sheet_rows table and answers like the
// spreadsheet web app: fetched rows carry column headers, and appends to the
// employee sheet return the generated id.
type PostgresRowStore struct {
	db            *sqlx.DB
	employeeSheet string
}

// NewPostgresRowStore constructs the store. employeeSheet names the sheet whose
// rows are keyed by the generated row id.
func NewPostgresRowStore(db *sqlx.DB, employeeSheet string) *PostgresRowStore {
	return &PostgresRowStore{db: db, employeeSheet: employeeSheet}
}

// Fetch returns the rows of sheet in insertion order.
func (s *PostgresRowStore) Fetch(ctx context.Context, sheet string) ([]sheets.Row, error) {
	const query = `SELECT id, payload, created_at FROM sheet_rows WHERE sheet = $1 ORDER BY id`
	var stored []sheetRow
	if err := s.db.SelectContext(ctx, &stored, query, sheet); err != nil {
		return nil, unavailable(err, fmt.Sprintf("fetch sheet %s", sheet))
	}

	rows := make([]sheets.Row, 0, len(stored))
	for _, r := range stored {
		var payload map[string]interface{}
		if err := json.Unmarshal(r.Payload, &payload); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrBackendFormat.Code, appErrors.ErrBackendFormat.Status,
				fmt.Sprintf("sheet %s row %d holds invalid JSON", sheet, r.ID))
		}
		row := make(sheets.Row, len(payload)+1)
		for key, value := range payload {
			if column, ok := payloadColumns[key]; ok {
				row[column] = value
				continue
			}
			row[key] = value
		}
		if sheet == s.employeeSheet {
			row[ColEmployeeID] = r.ID
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Append inserts one row.
func (s *PostgresRowStore) Append(ctx context.Context, sheet string, row sheets.Row) (sheets.Row, error) {
	payload, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("encode row for %s: %w", sheet, err)
	}

	const query = `INSERT INTO sheet_rows (sheet, payload) VALUES ($1, $2) RETURNING id`
	var id int64
	if err := s.db.QueryRowxContext(ctx, query, sheet, payload).Scan(&id); err != nil {
		return nil, unavailable(err, fmt.Sprintf("append to sheet %s", sheet))
	}
	if sheet == s.employeeSheet {
		return sheets.Row{KeyID: id}, nil
	}
	return nil, nil
}

func unavailable(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, message)
}
