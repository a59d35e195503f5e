package sheets

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/activitylog/internal/domain"
)

type fakeValues struct {
	rows      [][]interface{}
	ranges    []string
	appendErr error
	getErr    error
}

func (f *fakeValues) AppendRow(ctx context.Context, spreadsheetID, rng string, row []interface{}) error {
	f.ranges = append(f.ranges, rng)
	if f.appendErr != nil {
		return f.appendErr
	}
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeValues) UpdateRow(ctx context.Context, spreadsheetID, rng string, row []interface{}) error {
	f.ranges = append(f.ranges, rng)
	if len(f.rows) == 0 {
		f.rows = append(f.rows, row)
		return nil
	}
	f.rows[0] = row
	return nil
}

func (f *fakeValues) GetRows(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	f.ranges = append(f.ranges, rng)
	if f.getErr != nil {
		return nil, f.getErr
	}
	if strings.HasSuffix(rng, "A1:F1") {
		if len(f.rows) == 0 {
			return nil, nil
		}
		return f.rows[:1], nil
	}
	return f.rows, nil
}

func newTestRepo(fake *fakeValues) *Repository {
	return newRepository(fake, Config{SpreadsheetID: "sheet-123"})
}

func TestSpreadsheetID(t *testing.T) {
	id, err := SpreadsheetID("https://docs.google.com/spreadsheets/d/1AbC_d-9/edit#gid=0")
	require.NoError(t, err)
	require.Equal(t, "1AbC_d-9", id)

	id, err = SpreadsheetID(" 1AbC_d-9 ")
	require.NoError(t, err)
	require.Equal(t, "1AbC_d-9", id)

	_, err = SpreadsheetID("https://example.com/not-a-sheet")
	require.ErrorIs(t, err, ErrInvalidSheetURL)
	_, err = SpreadsheetID("")
	require.ErrorIs(t, err, ErrInvalidSheetURL)
}

func TestEnsureHeaderWritesIntoEmptySheet(t *testing.T) {
	fake := &fakeValues{}
	repo := newTestRepo(fake)

	require.NoError(t, repo.EnsureHeader(context.Background()))
	require.Len(t, fake.rows, 1)
	require.Equal(t, domain.Headers(), toStrings(fake.rows[0]))
	require.Equal(t, "'Sheet1'!A1:F1", fake.ranges[0])
}

func TestEnsureHeaderRejectsMismatch(t *testing.T) {
	fake := &fakeValues{rows: [][]interface{}{
		{"Date", "Start Time", "End Time", "Category", "Sub-Category", "Comments"},
	}}
	err := newTestRepo(fake).EnsureHeader(context.Background())
	require.ErrorIs(t, err, domain.ErrHeaderMismatch)
	var serr *domain.StoreError
	require.ErrorAs(t, err, &serr)
}

func TestAppendThenReadAll(t *testing.T) {
	ctx := context.Background()
	fake := &fakeValues{}
	repo := newTestRepo(fake)
	require.NoError(t, repo.EnsureHeader(ctx))

	rec, err := domain.NewRecord(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), 9*60, 9*60+30, "Productive", "Read Book", "")
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, rec))

	require.Equal(t, []interface{}{"2024-03-15", "09:00", "09:30", "Productive", "Read Book", ""}, fake.rows[1])

	all, err := repo.ReadAll(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.Record{rec}, all)
}

func TestReadAllHandlesTrimmedTrailingCells(t *testing.T) {
	fake := &fakeValues{rows: [][]interface{}{
		toCells(domain.Headers()),
		{"2024-03-15", "09:00", "09:30", "Productive", "Workout"},
	}}
	all, err := newTestRepo(fake).ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Empty(t, all[0].Comments)
}

func TestReadAllEmptySheet(t *testing.T) {
	all, err := newTestRepo(&fakeValues{}).ReadAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestBackendFailuresAreStoreErrors(t *testing.T) {
	cause := errors.New("quota exceeded")
	repo := newTestRepo(&fakeValues{appendErr: cause, getErr: cause})

	err := repo.Append(context.Background(), domain.Record{})
	var serr *domain.StoreError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, "append", serr.Op)
	require.ErrorIs(t, err, cause)

	_, err = repo.ReadAll(context.Background())
	require.ErrorAs(t, err, &serr)
	require.Equal(t, "read_all", serr.Op)
}

func TestSheetNameIsQuoted(t *testing.T) {
	repo := newRepository(&fakeValues{}, Config{SheetName: "Bob's log"})
	require.Equal(t, "'Bob''s log'!A:F", repo.rangeFor("A:F"))
}
