// Package sheets stores activity rows in a Google Sheets worksheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"example.com/activitylog/internal/domain"
)

const backend = "sheets"

// ErrInvalidSheetURL is returned when a spreadsheet identifier cannot be extracted.
var ErrInvalidSheetURL = errors.New("invalid spreadsheet url")

var sheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// SpreadsheetID accepts either a bare spreadsheet ID or a full docs.google.com URL.
func SpreadsheetID(urlOrID string) (string, error) {
	value := strings.TrimSpace(urlOrID)
	if value == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidSheetURL)
	}
	if m := sheetIDPattern.FindStringSubmatch(value); m != nil {
		return m[1], nil
	}
	if strings.ContainsAny(value, "/:?") {
		return "", fmt.Errorf("%w: %s", ErrInvalidSheetURL, value)
	}
	return value, nil
}

// valuesClient is the subset of the Sheets values API the repository needs.
type valuesClient interface {
	AppendRow(ctx context.Context, spreadsheetID, rng string, row []interface{}) error
	UpdateRow(ctx context.Context, spreadsheetID, rng string, row []interface{}) error
	GetRows(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error)
}

// Config identifies the worksheet and supplies service-account credentials.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON []byte
	Timeout         time.Duration
}

// Repository appends and reads activity rows from one worksheet. Row 1 holds the canonical headers.
type Repository struct {
	client        valuesClient
	spreadsheetID string
	sheetName     string
	timeout       time.Duration
}

// New authenticates with the service account and returns a Repository.
func New(ctx context.Context, cfg Config) (*Repository, error) {
	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsJSON(cfg.CredentialsJSON),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, domain.NewStoreError(backend, "connect", err)
	}
	return newRepository(&googleValues{values: svc.Spreadsheets.Values}, cfg), nil
}

func newRepository(client valuesClient, cfg Config) *Repository {
	name := cfg.SheetName
	if name == "" {
		name = "Sheet1"
	}
	return &Repository{
		client:        client,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     name,
		timeout:       cfg.Timeout,
	}
}

// EnsureHeader writes the canonical header into an empty sheet and rejects a sheet whose first row
// differs from it.
func (r *Repository) EnsureHeader(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.client.GetRows(ctx, r.spreadsheetID, r.rangeFor("A1:F1"))
	if err != nil {
		return domain.NewStoreError(backend, "ensure_header", err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		err := r.client.UpdateRow(ctx, r.spreadsheetID, r.rangeFor("A1:F1"), toCells(domain.Headers()))
		return domain.NewStoreError(backend, "ensure_header", err)
	}
	if got := toStrings(rows[0]); !domain.HeaderMatches(got) {
		return domain.NewStoreError(backend, "ensure_header",
			fmt.Errorf("%w: got %q", domain.ErrHeaderMismatch, got))
	}
	return nil
}

// Append implements domain.ActivityStore.
func (r *Repository) Append(ctx context.Context, record domain.Record) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := r.client.AppendRow(ctx, r.spreadsheetID, r.rangeFor("A:F"), toCells(record.Row()))
	return domain.NewStoreError(backend, "append", err)
}

// ReadAll implements domain.ActivityStore.
func (r *Repository) ReadAll(ctx context.Context) ([]domain.Record, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	raw, err := r.client.GetRows(ctx, r.spreadsheetID, r.rangeFor("A:F"))
	if err != nil {
		return nil, domain.NewStoreError(backend, "read_all", err)
	}
	table := make([][]string, 0, len(raw))
	for _, row := range raw {
		table = append(table, toStrings(row))
	}
	return domain.ParseTable(table)
}

func (r *Repository) rangeFor(cells string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(r.sheetName, "'", "''"), cells)
}

func (r *Repository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func toStrings(values []interface{}) []string {
	out := make([]string, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}

// googleValues adapts the generated Sheets client to valuesClient. RAW input keeps dates and times
// as literal strings instead of letting Sheets reinterpret them.
type googleValues struct {
	values *gsheets.SpreadsheetsValuesService
}

func (g *googleValues) AppendRow(ctx context.Context, spreadsheetID, rng string, row []interface{}) error {
	_, err := g.values.Append(spreadsheetID, rng, &gsheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

func (g *googleValues) UpdateRow(ctx context.Context, spreadsheetID, rng string, row []interface{}) error {
	_, err := g.values.Update(spreadsheetID, rng, &gsheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (g *googleValues) GetRows(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	resp, err := g.values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}
