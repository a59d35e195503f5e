package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidPeriod is returned for an unrecognised period tag.
var ErrInvalidPeriod = errors.New("invalid period")

// Period is the aggregation window kind.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod accepts day/week/month and the Daily/Weekly/Monthly labels used by the form.
func ParsePeriod(raw string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "day", "daily":
		return PeriodDay, nil
	case "week", "weekly":
		return PeriodWeek, nil
	case "month", "monthly":
		return PeriodMonth, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, raw)
}

// Filter selects records whose date falls in the same period as Reference.
//
// Week compares ISO week numbers and Month compares calendar month numbers; neither looks at the
// year unless SameYear is set, so week 11 of 2023 matches week 11 of 2024.
type Filter struct {
	Period    Period
	Reference time.Time
	SameYear  bool
}

// NewFilter validates the period and returns a year-agnostic Filter.
func NewFilter(period Period, reference time.Time) (Filter, error) {
	switch period {
	case PeriodDay, PeriodWeek, PeriodMonth:
	default:
		return Filter{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, string(period))
	}
	return Filter{Period: period, Reference: CalendarDate(reference)}, nil
}

// WithSameYear returns a copy that also requires the year (ISO year for weeks) to match.
func (f Filter) WithSameYear() Filter {
	f.SameYear = true
	return f
}

// Match reports whether date falls inside the filter's period.
func (f Filter) Match(date time.Time) bool {
	date = CalendarDate(date)
	switch f.Period {
	case PeriodDay:
		return date.Equal(f.Reference)
	case PeriodWeek:
		ry, rw := f.Reference.ISOWeek()
		dy, dw := date.ISOWeek()
		return rw == dw && (!f.SameYear || ry == dy)
	case PeriodMonth:
		return date.Month() == f.Reference.Month() && (!f.SameYear || date.Year() == f.Reference.Year())
	}
	return false
}

// Apply returns the matching records, preserving input order.
func (f Filter) Apply(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.Match(r.Date) {
			out = append(out, r)
		}
	}
	return out
}

// Label renders the heading shown above a period's charts.
func (f Filter) Label() string {
	switch f.Period {
	case PeriodDay:
		return f.Reference.Format("Jan 02, 2006")
	case PeriodWeek:
		_, week := f.Reference.ISOWeek()
		return fmt.Sprintf("Week %d", week)
	case PeriodMonth:
		return f.Reference.Format("January 2006")
	}
	return ""
}
