package domain

import (
	"fmt"
	"strings"
	"time"
)

// Canonical column headers shared by every tabular backend and the CSV export.
const (
	HeaderDate        = "Date"
	HeaderStartTime   = "Start Time"
	HeaderEndTime     = "End Time"
	HeaderCategory    = "Category"
	HeaderSubCategory = "Sub Category"
	HeaderComments    = "Comments"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Headers returns the canonical column order.
func Headers() []string {
	return []string{HeaderDate, HeaderStartTime, HeaderEndTime, HeaderCategory, HeaderSubCategory, HeaderComments}
}

// Row serialises the record in canonical column order.
func (r Record) Row() []string {
	return []string{
		r.Date.Format(DateLayout),
		r.Start.String(),
		r.End.String(),
		string(r.Category),
		r.SubCategory,
		r.Comments,
	}
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// ParseTimeOfDay parses a 24-hour HH:MM time.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	t, err := time.Parse(TimeLayout, strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// ParseRow converts positional columns back into a Record. Missing trailing columns are treated as
// empty strings. row is the 1-based data row number used in ParseError.
func ParseRow(row int, cols []string) (Record, error) {
	get := func(i int) string {
		if i < len(cols) {
			return cols[i]
		}
		return ""
	}

	date, err := ParseDate(get(0))
	if err != nil {
		return Record{}, &ParseError{Row: row, Column: HeaderDate, Value: get(0), Err: err}
	}
	start, err := ParseTimeOfDay(get(1))
	if err != nil {
		return Record{}, &ParseError{Row: row, Column: HeaderStartTime, Value: get(1), Err: err}
	}
	end, err := ParseTimeOfDay(get(2))
	if err != nil {
		return Record{}, &ParseError{Row: row, Column: HeaderEndTime, Value: get(2), Err: err}
	}
	cat, err := ParseCategory(get(3))
	if err != nil {
		return Record{}, &ParseError{Row: row, Column: HeaderCategory, Value: get(3), Err: err}
	}

	return Record{
		Date:        date,
		Start:       start,
		End:         end,
		Category:    cat,
		SubCategory: get(4),
		Comments:    get(5),
	}, nil
}

// ParseTable reads a header-keyed table: the first row names the columns, the rest are data.
// Columns may appear in any order; all canonical headers must be present. Fully blank rows are
// ignored; any other unparseable row fails the whole table.
func ParseTable(rows [][]string) ([]Record, error) {
	if len(rows) == 0 {
		return []Record{}, nil
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.TrimSpace(name)] = i
	}
	positions := make([]int, 0, 6)
	for _, h := range Headers() {
		pos, ok := index[h]
		if !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrHeaderMismatch, h)
		}
		positions = append(positions, pos)
	}

	records := make([]Record, 0, len(rows)-1)
	for i, raw := range rows[1:] {
		if isBlank(raw) {
			continue
		}
		cols := make([]string, len(positions))
		for j, pos := range positions {
			if pos < len(raw) {
				cols[j] = raw[pos]
			}
		}
		rec, err := ParseRow(i+1, cols)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// HeaderMatches reports whether row is exactly the canonical header row.
func HeaderMatches(row []string) bool {
	want := Headers()
	if len(row) != len(want) {
		return false
	}
	for i := range want {
		if strings.TrimSpace(row[i]) != want[i] {
			return false
		}
	}
	return true
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
