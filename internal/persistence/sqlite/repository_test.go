package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/activitylog/internal/domain"
)

func openTemp(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(context.Background(), filepath.Join(t.TempDir(), "activities.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openTemp(t)

	first, err := domain.NewRecord(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), 9*60, 9*60+30, "Productive", "Academic Study", "linear algebra")
	require.NoError(t, err)
	second, err := domain.NewRecord(time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), 10*60, 10*60+15, "Not-Productive", "Smoke", "")
	require.NoError(t, err)

	require.NoError(t, repo.Append(ctx, first))
	require.NoError(t, repo.Append(ctx, second))

	all, err := repo.ReadAll(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.Record{first, second}, all)
}

func TestRepositoryEmpty(t *testing.T) {
	all, err := openTemp(t).ReadAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestRepositoryReopenKeepsRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "activities.db")

	repo, err := Open(ctx, path)
	require.NoError(t, err)
	rec, err := domain.NewRecord(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), 60, 90, "Productive", "Workout", "")
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, rec))
	require.NoError(t, repo.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	all, err := reopened.ReadAll(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.Record{rec}, all)
}

func TestRepositoryCorruptRowFailsRead(t *testing.T) {
	ctx := context.Background()
	repo := openTemp(t)
	_, err := repo.db.ExecContext(ctx, `INSERT INTO activity_log (entry_date, start_time, end_time, category) VALUES ('2024-03-15', '9h', '10:00', 'Productive')`)
	require.NoError(t, err)

	_, err = repo.ReadAll(ctx)
	var perr *domain.ParseError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, domain.HeaderStartTime, perr.Column)
}
