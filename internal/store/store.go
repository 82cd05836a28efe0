// Package store persists documents, summaries and revision sheets in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ppiankov/savoir/internal/model"
	"github.com/ppiankov/savoir/internal/store/migrations"
)

// ErrNotFound is returned when a row does not exist
var ErrNotFound = errors.New("not found")

// DBPath is the database location relative to the base directory
var DBPath = filepath.Join("data", "app.db")

// Fixed width so that text ordering matches time ordering
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is the SQLite-backed knowledge base
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens (creating if needed) the database under baseDir and applies
// pending migrations.
func Open(baseDir string) (*Store, error) {
	dbPath := filepath.Join(baseDir, DBPath)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath, now: time.Now}
	if err := s.migrate(migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil || version <= current {
			continue
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
			version, s.timestamp()); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

// ==================== Documents ====================

const documentColumns = `id, title, source_type, source_path, url, text_content, created_at, updated_at`

// InsertDocument stores a new document and returns its id
func (s *Store) InsertDocument(ctx context.Context, doc model.NewDocument) (int64, error) {
	now := s.timestamp()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (title, source_type, source_path, url, text_content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.Title, doc.SourceType, nullable(doc.SourcePath), nullable(doc.URL), doc.TextContent, now, now)
	if err != nil {
		return 0, fmt.Errorf("inserting document: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading document id: %w", err)
	}
	return id, nil
}

// ListDocuments returns every document, newest first
func (s *Store) ListDocuments(ctx context.Context) ([]model.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []model.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// GetDocument returns a document by id, or ErrNotFound
func (s *Store) GetDocument(ctx context.Context, id int64) (*model.Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %d: %w", id, ErrNotFound)
	}
	return doc, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*model.Document, error) {
	var (
		doc                  model.Document
		sourcePath, url      sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&doc.ID, &doc.Title, &doc.SourceType, &sourcePath, &url,
		&doc.TextContent, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	doc.SourcePath = sourcePath.String
	doc.URL = url.String
	doc.CreatedAt = parseTime(createdAt)
	doc.UpdatedAt = parseTime(updatedAt)
	return &doc, nil
}

// ==================== Summaries ====================

// UpsertSummary stores the summary of a document, replacing any previous one
func (s *Store) UpsertSummary(ctx context.Context, documentID int64, summary, pdfPath string) error {
	now := s.timestamp()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO summaries (document_id, summary, pdf_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			summary = excluded.summary,
			pdf_path = excluded.pdf_path,
			updated_at = excluded.updated_at`,
		documentID, summary, pdfPath, now, now)
	if err != nil {
		return fmt.Errorf("upserting summary: %w", err)
	}
	return nil
}

// ListSummaries returns every stored summary, ordered by document id
func (s *Store) ListSummaries(ctx context.Context) ([]model.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT document_id, summary, pdf_path, created_at, updated_at
		FROM summaries ORDER BY document_id`)
	if err != nil {
		return nil, fmt.Errorf("querying summaries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Summary
	for rows.Next() {
		var (
			sum                  model.Summary
			createdAt, updatedAt string
		)
		if err := rows.Scan(&sum.DocumentID, &sum.Summary, &sum.PDFPath, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		sum.CreatedAt = parseTime(createdAt)
		sum.UpdatedAt = parseTime(updatedAt)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating summaries: %w", err)
	}
	return out, nil
}

// ==================== Revision sheets ====================

// UpsertRevisionSheet stores the rendered sheet for a theme, replacing any previous one
func (s *Store) UpsertRevisionSheet(ctx context.Context, theme, content, pdfPath string, sources []string) error {
	if sources == nil {
		sources = []string{}
	}
	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("marshalling sources: %w", err)
	}

	now := s.timestamp()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO revision_sheets (theme, content, pdf_path, sources, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(theme) DO UPDATE SET
			content = excluded.content,
			pdf_path = excluded.pdf_path,
			sources = excluded.sources,
			updated_at = excluded.updated_at`,
		theme, content, pdfPath, string(sourcesJSON), now, now)
	if err != nil {
		return fmt.Errorf("upserting revision sheet: %w", err)
	}
	return nil
}

// ListRevisionSheets returns saved sheets, most recently updated first
func (s *Store) ListRevisionSheets(ctx context.Context) ([]model.SavedSheet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT theme, content, pdf_path, sources, created_at, updated_at
		FROM revision_sheets ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying revision sheets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.SavedSheet
	for rows.Next() {
		var (
			sheet                model.SavedSheet
			sourcesJSON          string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&sheet.Theme, &sheet.Content, &sheet.PDFPath, &sourcesJSON, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning revision sheet: %w", err)
		}
		if err := json.Unmarshal([]byte(sourcesJSON), &sheet.Sources); err != nil {
			return nil, fmt.Errorf("decoding sources of %q: %w", sheet.Theme, err)
		}
		sheet.CreatedAt = parseTime(createdAt)
		sheet.UpdatedAt = parseTime(updatedAt)
		out = append(out, sheet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating revision sheets: %w", err)
	}
	return out, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
