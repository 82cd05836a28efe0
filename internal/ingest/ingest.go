// Package ingest turns uploaded files, pasted text and web pages into
// documents ready for the store.
package ingest

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// UntitledDocument is the title given when none can be derived
const UntitledDocument = "Document sans titre"

const maxTextTitleRunes = 80

var (
	// ErrUnsupportedFormat is returned for file extensions with no extractor
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrEmptyContent is returned when pasted text or a page yields no text
	ErrEmptyContent = errors.New("empty content")
)

// FetchError describes a failed web page retrieval
type FetchError struct {
	URL        string
	StatusCode int // Zero when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

var whitespace = regexp.MustCompile(`\s+`)

// NormaliseTitle collapses whitespace runs and trims; empty input yields
// UntitledDocument.
func NormaliseTitle(value string) string {
	cleaned := strings.TrimSpace(whitespace.ReplaceAllString(value, " "))
	if cleaned == "" {
		return UntitledDocument
	}
	return cleaned
}
