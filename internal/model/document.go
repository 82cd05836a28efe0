package model

import "time"

// Document is a stored text blob plus the metadata the store keeps about it.
// The core treats it as read-only for the duration of a request.
type Document struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	SourceType  string    `json:"source_type"`           // file, text, url
	SourcePath  string    `json:"source_path,omitempty"` // Saved original on disk
	URL         string    `json:"url,omitempty"`
	TextContent string    `json:"text_content"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Source types recorded for ingested documents
const (
	SourceFile = "file"
	SourceText = "text"
	SourceURL  = "url"
)

// NewDocument is the input for inserting a document
type NewDocument struct {
	Title       string
	SourceType  string
	SourcePath  string
	URL         string
	TextContent string
}

// Summary is a persisted per-document summary
type Summary struct {
	DocumentID int64     `json:"document_id"`
	Summary    string    `json:"summary"`
	PDFPath    string    `json:"pdf_path"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SavedSheet is a persisted revision sheet, keyed by theme
type SavedSheet struct {
	Theme     string    `json:"theme"`
	Content   string    `json:"content"` // Rendered markdown
	PDFPath   string    `json:"pdf_path"`
	Sources   []string  `json:"sources"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
