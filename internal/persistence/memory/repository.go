// Package memory provides a process-local activity store for development and tests.
package memory

import (
	"context"
	"sync"

	"example.com/activitylog/internal/domain"
)

// Repository keeps rows in their serialised form so reads exercise the same codec as remote
// backends.
type Repository struct {
	mu   sync.RWMutex
	rows [][]string
}

// NewRepository constructs an empty Repository, optionally seeded with records.
func NewRepository(seed ...domain.Record) *Repository {
	repo := &Repository{}
	for _, rec := range seed {
		repo.rows = append(repo.rows, rec.Row())
	}
	return repo
}

// Append implements domain.ActivityStore.
func (r *Repository) Append(ctx context.Context, record domain.Record) error {
	if err := ctx.Err(); err != nil {
		return domain.NewStoreError("memory", "append", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, record.Row())
	return nil
}

// ReadAll implements domain.ActivityStore.
func (r *Repository) ReadAll(ctx context.Context) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStoreError("memory", "read_all", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	table := make([][]string, 0, len(r.rows)+1)
	table = append(table, domain.Headers())
	table = append(table, r.rows...)
	return domain.ParseTable(table)
}

// AppendRaw inserts an unvalidated row, letting tests simulate corrupted backend data.
func (r *Repository) AppendRaw(row []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]string, len(row))
	copy(cp, row)
	r.rows = append(r.rows, cp)
}
