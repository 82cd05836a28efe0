// Package export writes summaries and revision sheets to PDF and keeps the
// CSV overview reports current.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
)

// Output directories relative to the base directory
var (
	SummariesDir      = filepath.Join("data", "summaries")
	RevisionSheetsDir = filepath.Join("data", "revision_sheets")
)

const (
	bodyFontSize = 11
	lineHeight   = 8
)

// SafeName maps a title to a file stem: '/' becomes '-' and ' ' becomes '_'
func SafeName(title string) string {
	return strings.NewReplacer("/", "-", " ", "_").Replace(title)
}

// SummaryPDF writes content under the summaries directory and returns the path
func SummaryPDF(baseDir, title, content string) (string, error) {
	path := filepath.Join(baseDir, SummariesDir, SafeName(title)+".pdf")
	if err := writePDF(path, title, []string{content}); err != nil {
		return "", fmt.Errorf("summary pdf: %w", err)
	}
	return path, nil
}

// RevisionPDF writes a rendered sheet under the revision sheets directory.
// Each blank-line separated markdown block becomes its own paragraph.
func RevisionPDF(baseDir, theme, markdown string) (string, error) {
	path := filepath.Join(baseDir, RevisionSheetsDir, SafeName(theme)+".pdf")
	if err := writePDF(path, theme, strings.Split(markdown, "\n\n")); err != nil {
		return "", fmt.Errorf("revision pdf: %w", err)
	}
	return path, nil
}

func writePDF(path, title string, blocks []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; translate so French accents survive
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(title, true)
	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	})
	pdf.AddPage()

	for _, block := range blocks {
		pdf.SetFont("Helvetica", "", bodyFontSize)
		pdf.MultiCell(0, lineHeight, tr(block), "", "", false)
		pdf.Ln(2)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
