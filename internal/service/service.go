// Package service orchestrates ingestion, summaries, revision sheets and
// their exported artifacts on top of the store.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/savoir/internal/export"
	"github.com/ppiankov/savoir/internal/logger"
	"github.com/ppiankov/savoir/internal/model"
)

// DefaultSummarySentences is the summary length used by BuildSummary callers
const DefaultSummarySentences = 12

// summaryFallbackRunes bounds the raw-text fallback for an empty summary
const summaryFallbackRunes = 2000

// ErrEmptyTheme is returned when a revision sheet is requested without a theme
var ErrEmptyTheme = errors.New("theme is empty")

// DocumentStore persists the knowledge base
type DocumentStore interface {
	InsertDocument(ctx context.Context, doc model.NewDocument) (int64, error)
	ListDocuments(ctx context.Context) ([]model.Document, error)
	GetDocument(ctx context.Context, id int64) (*model.Document, error)
	UpsertSummary(ctx context.Context, documentID int64, summary, pdfPath string) error
	ListSummaries(ctx context.Context) ([]model.Summary, error)
	UpsertRevisionSheet(ctx context.Context, theme, content, pdfPath string, sources []string) error
	ListRevisionSheets(ctx context.Context) ([]model.SavedSheet, error)
}

// Summarizer produces an extractive summary of one text
type Summarizer interface {
	Summarise(text string, maxSentences int) (string, error)
}

// SheetGenerator builds a revision sheet from the corpus
type SheetGenerator interface {
	CreateRevisionSheet(ctx context.Context, theme string, docs []model.Document) (*model.RevisionSheet, error)
}

// GeneratedSheet is a revision sheet with its rendered and exported forms
type GeneratedSheet struct {
	Sheet    *model.RevisionSheet
	Markdown string
	PDFPath  string
}

// KnowledgeService is the application facade used by the CLI
type KnowledgeService struct {
	baseDir    string
	store      DocumentStore
	summarizer Summarizer
	generator  SheetGenerator
	log        *logger.Logger
}

// New creates the service; artifacts are written under baseDir
func New(baseDir string, store DocumentStore, summarizer Summarizer, generator SheetGenerator, log *logger.Logger) *KnowledgeService {
	if log == nil {
		log = logger.Nop()
	}
	return &KnowledgeService{
		baseDir:    baseDir,
		store:      store,
		summarizer: summarizer,
		generator:  generator,
		log:        log,
	}
}

// ==================== Documents ====================

// AddDocument stores doc, then regenerates every saved revision sheet so
// that they account for it. The id is returned even if regeneration fails.
func (s *KnowledgeService) AddDocument(ctx context.Context, doc model.NewDocument) (int64, error) {
	id, err := s.store.InsertDocument(ctx, doc)
	if err != nil {
		return 0, err
	}
	s.log.Info("document added", "id", id, "title", doc.Title, "source_type", doc.SourceType)

	if err := s.RegenerateSavedRevisionSheets(ctx); err != nil {
		return id, fmt.Errorf("regenerate saved sheets: %w", err)
	}
	return id, nil
}

// ListDocuments returns every document, newest first
func (s *KnowledgeService) ListDocuments(ctx context.Context) ([]model.Document, error) {
	return s.store.ListDocuments(ctx)
}

// GetDocument returns a document by id
func (s *KnowledgeService) GetDocument(ctx context.Context, id int64) (*model.Document, error) {
	return s.store.GetDocument(ctx, id)
}

// ==================== Summaries ====================

// BuildSummary summarises a document, exports it to PDF, stores it and
// refreshes the summaries report. An empty summary is replaced by the
// beginning of the text.
func (s *KnowledgeService) BuildSummary(ctx context.Context, id int64, maxSentences int) (string, error) {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return "", err
	}

	summary, err := s.summarizer.Summarise(doc.TextContent, maxSentences)
	if err != nil {
		return "", fmt.Errorf("summarise document %d: %w", id, err)
	}
	if summary == "" {
		summary = truncateRunes(doc.TextContent, summaryFallbackRunes)
		s.log.Debug("empty summary, using leading text", "id", id)
	}

	pdfPath, err := export.SummaryPDF(s.baseDir, doc.Title, summary)
	if err != nil {
		return "", err
	}
	if err := s.store.UpsertSummary(ctx, id, summary, pdfPath); err != nil {
		return "", err
	}
	if err := s.RefreshSummaryReport(ctx); err != nil {
		return "", err
	}

	s.log.Info("summary built", "id", id, "pdf", pdfPath)
	return summary, nil
}

// RefreshSummaryReport rewrites the summaries CSV from the store.
// Summaries whose document no longer exists are skipped.
func (s *KnowledgeService) RefreshSummaryReport(ctx context.Context) error {
	summaries, err := s.store.ListSummaries(ctx)
	if err != nil {
		return err
	}
	docs, err := s.store.ListDocuments(ctx)
	if err != nil {
		return err
	}
	titles := make(map[int64]string, len(docs))
	for _, d := range docs {
		titles[d.ID] = d.Title
	}

	entries := make([]export.SummaryEntry, 0, len(summaries))
	for _, sum := range summaries {
		title, ok := titles[sum.DocumentID]
		if !ok {
			continue
		}
		entries = append(entries, export.SummaryEntry{
			DocumentID:    sum.DocumentID,
			DocumentTitle: title,
			SummaryPDF:    sum.PDFPath,
			LastUpdated:   sum.UpdatedAt,
		})
	}

	if _, err := export.WriteSummaryReport(s.baseDir, entries); err != nil {
		return fmt.Errorf("summary report: %w", err)
	}
	return nil
}

// ==================== Revision sheets ====================

// GenerateRevisionSheet builds the sheet for theme over the whole corpus,
// exports it, stores it and refreshes the revision report. It returns nil
// when the corpus is empty.
func (s *KnowledgeService) GenerateRevisionSheet(ctx context.Context, theme string) (*GeneratedSheet, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return nil, ErrEmptyTheme
	}

	docs, err := s.store.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	sheet, err := s.generator.CreateRevisionSheet(ctx, theme, docs)
	if err != nil {
		return nil, err
	}
	markdown := sheet.ToMarkdown()

	pdfPath, err := export.RevisionPDF(s.baseDir, theme, markdown)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpsertRevisionSheet(ctx, theme, markdown, pdfPath, sheet.Sources); err != nil {
		return nil, err
	}
	if err := s.RefreshRevisionReport(ctx); err != nil {
		return nil, err
	}

	return &GeneratedSheet{Sheet: sheet, Markdown: markdown, PDFPath: pdfPath}, nil
}

// RegenerateSavedRevisionSheets rebuilds every saved sheet, one at a time
func (s *KnowledgeService) RegenerateSavedRevisionSheets(ctx context.Context) error {
	saved, err := s.store.ListRevisionSheets(ctx)
	if err != nil {
		return err
	}
	for _, sheet := range saved {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.GenerateRevisionSheet(ctx, sheet.Theme); err != nil {
			return fmt.Errorf("theme %q: %w", sheet.Theme, err)
		}
	}
	if len(saved) > 0 {
		s.log.Info("saved sheets regenerated", "count", len(saved))
	}
	return nil
}

// ListRevisionSheets returns the saved sheets, most recently updated first
func (s *KnowledgeService) ListRevisionSheets(ctx context.Context) ([]model.SavedSheet, error) {
	return s.store.ListRevisionSheets(ctx)
}

// RefreshRevisionReport rewrites the revision sheets CSV from the store
func (s *KnowledgeService) RefreshRevisionReport(ctx context.Context) error {
	sheets, err := s.store.ListRevisionSheets(ctx)
	if err != nil {
		return err
	}

	entries := make([]export.RevisionEntry, 0, len(sheets))
	for _, sheet := range sheets {
		entries = append(entries, export.RevisionEntry{
			Theme:       sheet.Theme,
			PDFPath:     sheet.PDFPath,
			Sources:     strings.Join(sheet.Sources, ", "),
			LastUpdated: sheet.UpdatedAt,
		})
	}

	if _, err := export.WriteRevisionReport(s.baseDir, entries); err != nil {
		return fmt.Errorf("revision report: %w", err)
	}
	return nil
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
