package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidCategory is returned when a category is outside the closed enumeration.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrMissingDate is returned when a record is built without a calendar date.
	ErrMissingDate = errors.New("date is required")
	// ErrInvalidTime is returned when a time-of-day value is out of range or malformed.
	ErrInvalidTime = errors.New("invalid time of day")
)

// Category is the top-level classification of an activity.
type Category string

const (
	CategoryProductive    Category = "Productive"
	CategoryNotProductive Category = "Not-Productive"
)

// Categories lists the closed enumeration in display order.
func Categories() []Category {
	return []Category{CategoryProductive, CategoryNotProductive}
}

// ParseCategory validates a raw category label. Matching is exact.
func ParseCategory(raw string) (Category, error) {
	switch c := Category(raw); c {
	case CategoryProductive, CategoryNotProductive:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, raw)
}

// TimeOfDay is a wall-clock time with minute precision, stored as minutes since midnight.
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay from an hour and minute pair.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %02d:%02d", ErrInvalidTime, hour, minute)
	}
	return TimeOfDay(hour*60 + minute), nil
}

// Hour returns the hour component.
func (t TimeOfDay) Hour() int { return int(t) / 60 }

// Minute returns the minute component.
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// String renders the 24-hour zero padded HH:MM form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Record is one logged activity.
type Record struct {
	Date        time.Time
	Start       TimeOfDay
	End         TimeOfDay
	Category    Category
	SubCategory string
	Comments    string
}

// NewRecord validates input and returns a Record. An end time at or before the start time is
// accepted and produces a zero or negative duration.
func NewRecord(date time.Time, start, end TimeOfDay, category, subCategory, comments string) (Record, error) {
	if date.IsZero() {
		return Record{}, ErrMissingDate
	}
	cat, err := ParseCategory(category)
	if err != nil {
		return Record{}, err
	}
	for _, t := range []TimeOfDay{start, end} {
		if t < 0 || t >= 24*60 {
			return Record{}, fmt.Errorf("%w: %d minutes", ErrInvalidTime, int(t))
		}
	}
	return Record{
		Date:        CalendarDate(date),
		Start:       start,
		End:         end,
		Category:    cat,
		SubCategory: subCategory,
		Comments:    comments,
	}, nil
}

// DurationMinutes is End minus Start. It is negative when End precedes Start.
func (r Record) DurationMinutes() int {
	return int(r.End) - int(r.Start)
}

// CalendarDate drops the clock and zone, keeping the date as seen in t's own location.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
