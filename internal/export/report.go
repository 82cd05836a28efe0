package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Report locations relative to the base directory
var (
	SummaryReport  = filepath.Join("data", "reports", "document_summaries_overview.csv")
	RevisionReport = filepath.Join("data", "reports", "revision_sheets_overview.csv")
)

const reportTimeLayout = "2006-01-02 15:04:05"

// SummaryEntry is one row of the summaries overview
type SummaryEntry struct {
	DocumentID    int64
	DocumentTitle string
	SummaryPDF    string
	LastUpdated   time.Time
}

// RevisionEntry is one row of the revision sheets overview
type RevisionEntry struct {
	Theme       string
	PDFPath     string
	Sources     string // Comma-joined source titles
	LastUpdated time.Time
}

// WriteSummaryReport rewrites the summaries overview. With no entries
// only the header is written.
func WriteSummaryReport(baseDir string, entries []SummaryEntry) (string, error) {
	rows := [][]string{{"document_id", "document_title", "summary_pdf", "last_updated"}}
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.FormatInt(e.DocumentID, 10),
			e.DocumentTitle,
			e.SummaryPDF,
			formatTime(e.LastUpdated),
		})
	}
	path := filepath.Join(baseDir, SummaryReport)
	return path, writeCSV(path, rows)
}

// WriteRevisionReport rewrites the revision sheets overview. With no
// entries only the header is written.
func WriteRevisionReport(baseDir string, entries []RevisionEntry) (string, error) {
	rows := [][]string{{"theme", "pdf_path", "sources", "last_updated"}}
	for _, e := range entries {
		rows = append(rows, []string{e.Theme, e.PDFPath, e.Sources, formatTime(e.LastUpdated)})
	}
	path := filepath.Join(baseDir, RevisionReport)
	return path, writeCSV(path, rows)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(reportTimeLayout)
}

// writeCSV replaces path atomically
func writeCSV(path string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create reports dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*.csv")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace report: %w", err)
	}
	return nil
}
