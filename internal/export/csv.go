// Package export renders activity records as downloadable files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"example.com/activitylog/internal/domain"
)

// Filename is the attachment name offered to browsers.
const Filename = "activities.csv"

// ContentType is the MIME type of WriteCSV output.
const ContentType = "text/csv; charset=utf-8"

// WriteCSV writes the canonical header row followed by one row per record, in the same column layout
// the stores use, so the file can be re-imported with domain.ParseTable.
func WriteCSV(w io.Writer, records []domain.Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(domain.Headers()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, rec := range records {
		if err := writer.Write(rec.Row()); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
