package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"example.com/activitylog/internal/domain"
)

// Stat card messages.
const (
	MessageNoData     = "No data for selected period."
	MessageNoActivity = "No activity yet."
)

// CreateActivityRequest is the payload for POST /v1/activities.
type CreateActivityRequest struct {
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
	Comments    string `json:"comments"`
}

// Input converts the request into domain input. An empty date is passed through as the zero time so
// the domain reports it as missing.
func (r CreateActivityRequest) Input() (domain.LogActivityInput, error) {
	var input domain.LogActivityInput
	if raw := strings.TrimSpace(r.Date); raw != "" {
		date, err := domain.ParseDate(raw)
		if err != nil {
			return input, errors.New("date must be YYYY-MM-DD")
		}
		input.Date = date
	}
	if strings.TrimSpace(r.StartTime) == "" || strings.TrimSpace(r.EndTime) == "" {
		return input, errors.New("start_time and end_time are required")
	}
	start, err := domain.ParseTimeOfDay(r.StartTime)
	if err != nil {
		return input, err
	}
	end, err := domain.ParseTimeOfDay(r.EndTime)
	if err != nil {
		return input, err
	}
	input.Start = start
	input.End = end
	input.Category = r.Category
	input.SubCategory = r.SubCategory
	input.Comments = r.Comments
	return input, nil
}

// RecordView exposes one stored activity.
type RecordView struct {
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Category        string `json:"category"`
	SubCategory     string `json:"sub_category"`
	Comments        string `json:"comments"`
	DurationMinutes int    `json:"duration_minutes"`
}

// ListActivitiesResponse packages list results.
type ListActivitiesResponse struct {
	Items []RecordView `json:"items"`
}

// BucketView is one bar of a breakdown chart.
type BucketView struct {
	Label   string `json:"label"`
	Minutes int    `json:"minutes"`
}

// SummaryResponse is the stat card and chart data for one period.
type SummaryResponse struct {
	Period               string         `json:"period"`
	Date                 string         `json:"date"`
	Label                string         `json:"label"`
	SameYear             bool           `json:"same_year"`
	Records              int            `json:"records"`
	TotalMinutes         int            `json:"total_minutes"`
	ProductiveMinutes    int            `json:"productive_minutes"`
	NotProductiveMinutes int            `json:"not_productive_minutes"`
	Shares               map[string]int `json:"shares"`
	ByCategory           []BucketView   `json:"by_category"`
	BySubCategory        []BucketView   `json:"by_sub_category"`
	Empty                bool           `json:"empty"`
	StoreEmpty           bool           `json:"store_empty"`
	Message              string         `json:"message,omitempty"`
}

// SubcategoriesResponse lists sub-category labels.
type SubcategoriesResponse struct {
	Items []string `json:"items"`
}

func toRecordView(rec domain.Record) RecordView {
	return RecordView{
		Date:            rec.Date.Format(domain.DateLayout),
		StartTime:       rec.Start.String(),
		EndTime:         rec.End.String(),
		Category:        string(rec.Category),
		SubCategory:     rec.SubCategory,
		Comments:        rec.Comments,
		DurationMinutes: rec.DurationMinutes(),
	}
}

func toBucketViews(buckets []domain.Bucket) []BucketView {
	out := make([]BucketView, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, BucketView{Label: b.Label, Minutes: b.Minutes})
	}
	return out
}

func toSummaryResponse(report domain.PeriodReport) SummaryResponse {
	s := report.Summary
	resp := SummaryResponse{
		Period:               string(report.Filter.Period),
		Date:                 report.Filter.Reference.Format(domain.DateLayout),
		Label:                report.Label,
		SameYear:             report.Filter.SameYear,
		Records:              s.Records,
		TotalMinutes:         s.TotalMinutes,
		ProductiveMinutes:    s.ProductiveMinutes,
		NotProductiveMinutes: s.NotProductiveMinutes,
		Shares:               make(map[string]int, len(domain.Categories())),
		ByCategory:           toBucketViews(s.CategoryBreakdown()),
		BySubCategory:        toBucketViews(s.SubCategoryBreakdown()),
		Empty:                s.Empty(),
		StoreEmpty:           report.StoreEmpty,
	}
	for _, c := range domain.Categories() {
		resp.Shares[string(c)] = s.Share(c)
	}
	switch {
	case report.StoreEmpty:
		resp.Message = MessageNoActivity
	case resp.Empty:
		resp.Message = MessageNoData
	}
	return resp
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
