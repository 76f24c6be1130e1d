// Package export appends discovered listings to a CSV file for spreadsheet
// review outside the tool.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"jobradar/internal/model"
)

var csvHeader = []string{
	"title", "company", "location", "url", "date_posted",
	"source", "description", "score", "discovered",
}

// CSVExporter appends listings to a single CSV file, creating it (and its
// parent directory) with a header row on first use.
type CSVExporter struct {
	path string
}

// NewCSVExporter returns an exporter writing to path.
func NewCSVExporter(path string) *CSVExporter {
	return &CSVExporter{path: path}
}

// Path reports the export file location.
func (e *CSVExporter) Path() string { return e.path }

// Append writes the listings to the end of the file. A nil or empty slice is
// a no-op. Each call opens and closes the file so a long-running daemon never
// holds it open between runs.
func (e *CSVExporter) Append(listings []model.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	if dir := filepath.Dir(e.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export directory %s: %w", dir, err)
		}
	}

	_, statErr := os.Stat(e.path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(e.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening export file %s: %w", e.path, err)
	}

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(csvHeader); err != nil {
			f.Close()
			return fmt.Errorf("writing csv header: %w", err)
		}
	}

	for _, l := range listings {
		record := []string{
			l.Title,
			l.Company,
			l.Location,
			l.URL,
			l.DatePosted,
			l.Source,
			l.Description,
			strconv.FormatFloat(l.Score, 'f', 0, 64),
			l.Discovered.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("writing csv record for %s: %w", l.URL, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flushing csv: %w", err)
	}
	return f.Close()
}
