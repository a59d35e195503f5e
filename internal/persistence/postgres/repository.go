// Package postgres stores activity rows in PostgreSQL.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/activitylog/internal/domain"
)

const backend = "postgres"

// Repository provides Postgres-backed persistence for activity rows.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Append inserts one row. Row order is the identity column, so reads return entry order.
func (r *Repository) Append(ctx context.Context, record domain.Record) error {
	row := record.Row()
	const stmt = `INSERT INTO activity_log (entry_date, start_time, end_time, category, sub_category, comments)
        VALUES ($1::date, $2::time, $3::time, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, stmt, row[0], row[1], row[2], row[3], row[4], row[5])
	return domain.NewStoreError(backend, "append", err)
}

// ReadAll returns every row in insertion order. A row the codec rejects fails the whole read.
func (r *Repository) ReadAll(ctx context.Context) ([]domain.Record, error) {
	const query = `SELECT to_char(entry_date, 'YYYY-MM-DD'), to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
        category, sub_category, comments
        FROM activity_log ORDER BY row_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, domain.NewStoreError(backend, "read_all", err)
	}
	defer rows.Close()

	results := make([]domain.Record, 0)
	n := 0
	for rows.Next() {
		n++
		cols := make([]string, 6)
		if err := rows.Scan(&cols[0], &cols[1], &cols[2], &cols[3], &cols[4], &cols[5]); err != nil {
			return nil, domain.NewStoreError(backend, "read_all", err)
		}
		rec, err := domain.ParseRow(n, cols)
		if err != nil {
			return nil, err
		}
		results = append(results, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError(backend, "read_all", err)
	}
	return results, nil
}

// Ping verifies connectivity at startup.
func (r *Repository) Ping(ctx context.Context) error {
	return domain.NewStoreError(backend, "ping", r.pool.Ping(ctx))
}
