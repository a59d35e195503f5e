// Package sqlite stores activity rows in a local SQLite file.
package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"example.com/activitylog/internal/domain"
)

const backend = "sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS activity_log (
    row_id       INTEGER PRIMARY KEY AUTOINCREMENT,
    entry_date   TEXT NOT NULL,
    start_time   TEXT NOT NULL,
    end_time     TEXT NOT NULL,
    category     TEXT NOT NULL,
    sub_category TEXT NOT NULL DEFAULT '',
    comments     TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_activity_log_entry_date ON activity_log(entry_date);`

type activityRow struct {
	Date        string `db:"entry_date"`
	StartTime   string `db:"start_time"`
	EndTime     string `db:"end_time"`
	Category    string `db:"category"`
	SubCategory string `db:"sub_category"`
	Comments    string `db:"comments"`
}

// Repository provides SQLite-backed persistence using the canonical text encoding.
type Repository struct {
	db *sqlx.DB
}

// Open creates or opens the database file at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*Repository, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, domain.NewStoreError(backend, "open", err)
	}
	// one writer keeps appends strictly ordered and avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, domain.NewStoreError(backend, "open", fmt.Errorf("create schema: %w", err))
	}
	return &Repository{db: db}, nil
}

// Close releases the database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Append implements domain.ActivityStore.
func (r *Repository) Append(ctx context.Context, record domain.Record) error {
	row := record.Row()
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO activity_log (entry_date, start_time, end_time, category, sub_category, comments)
        VALUES (:entry_date, :start_time, :end_time, :category, :sub_category, :comments)`, activityRow{
		Date:        row[0],
		StartTime:   row[1],
		EndTime:     row[2],
		Category:    row[3],
		SubCategory: row[4],
		Comments:    row[5],
	})
	return domain.NewStoreError(backend, "append", err)
}

// ReadAll implements domain.ActivityStore.
func (r *Repository) ReadAll(ctx context.Context) ([]domain.Record, error) {
	rows := []activityRow{}
	if err := r.db.SelectContext(ctx, &rows, `SELECT entry_date, start_time, end_time, category, sub_category, comments
        FROM activity_log ORDER BY row_id`); err != nil {
		return nil, domain.NewStoreError(backend, "read_all", err)
	}

	records := make([]domain.Record, 0, len(rows))
	for i, row := range rows {
		rec, err := domain.ParseRow(i+1, []string{row.Date, row.StartTime, row.EndTime, row.Category, row.SubCategory, row.Comments})
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
