package domain

import (
	"math"
	"sort"
)

// Summary is the aggregated time spent over a set of records.
type Summary struct {
	Records              int
	TotalMinutes         int
	ProductiveMinutes    int
	NotProductiveMinutes int
	ByCategory           map[Category]int
	BySubCategory        map[string]int
}

// Bucket is one labelled bar in a breakdown chart.
type Bucket struct {
	Label   string
	Minutes int
}

// Aggregate groups records by category and sub-category, summing durations. Durations keep their
// sign. Both categories are always present in ByCategory.
func Aggregate(records []Record) Summary {
	s := Summary{
		ByCategory:    make(map[Category]int, 2),
		BySubCategory: make(map[string]int),
	}
	for _, c := range Categories() {
		s.ByCategory[c] = 0
	}

	for _, r := range records {
		d := r.DurationMinutes()
		s.Records++
		s.TotalMinutes += d
		s.ByCategory[r.Category] += d
		s.BySubCategory[r.SubCategory] += d
	}

	s.ProductiveMinutes = s.ByCategory[CategoryProductive]
	s.NotProductiveMinutes = s.ByCategory[CategoryNotProductive]
	return s
}

// Empty reports whether no records were aggregated.
func (s Summary) Empty() bool { return s.Records == 0 }

// CategoryBreakdown returns the per-category sums in enumeration order.
func (s Summary) CategoryBreakdown() []Bucket {
	out := make([]Bucket, 0, len(s.ByCategory))
	for _, c := range Categories() {
		out = append(out, Bucket{Label: string(c), Minutes: s.ByCategory[c]})
	}
	return out
}

// SubCategoryBreakdown returns the per-sub-category sums sorted by label.
func (s Summary) SubCategoryBreakdown() []Bucket {
	out := make([]Bucket, 0, len(s.BySubCategory))
	for label, minutes := range s.BySubCategory {
		out = append(out, Bucket{Label: label, Minutes: minutes})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// Share returns the category's rounded percentage of the total. It is 0 when the total is not
// positive.
func (s Summary) Share(c Category) int {
	if s.TotalMinutes <= 0 {
		return 0
	}
	return int(math.Round(float64(s.ByCategory[c]) * 100 / float64(s.TotalMinutes)))
}
