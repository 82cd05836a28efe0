package biblio

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/savoir/internal/logger"
)

// DefaultExternalLimit is the number of external references requested
const DefaultExternalLimit = 3

var placeholderSources = []string{
	"Encyclopædia Universalis",
	"Cairn.info",
	"OpenEdition Journals",
}

// ReferenceLookup searches an external source for references about a theme
type ReferenceLookup interface {
	SearchAndFetch(ctx context.Context, theme string, limit int) ([]string, error)
}

// ExternalFetcher wraps a lookup so that it never fails
type ExternalFetcher struct {
	lookup  ReferenceLookup
	timeout time.Duration
	log     *logger.Logger
}

// NewExternalFetcher creates a fetcher. A nil lookup always yields placeholders.
func NewExternalFetcher(lookup ReferenceLookup, timeout time.Duration, log *logger.Logger) *ExternalFetcher {
	if log == nil {
		log = logger.Nop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ExternalFetcher{lookup: lookup, timeout: timeout, log: log}
}

// FetchExternal returns up to limit references. Any lookup failure, panic or
// timeout yields the placeholder list instead.
func (f *ExternalFetcher) FetchExternal(ctx context.Context, theme string, limit int) (refs []string) {
	if limit <= 0 {
		limit = DefaultExternalLimit
	}
	if f.lookup == nil {
		return Placeholders(theme, limit)
	}

	defer func() {
		if r := recover(); r != nil {
			f.log.Warn("reference lookup panicked, using placeholders", "theme", theme, "panic", fmt.Sprint(r))
			refs = Placeholders(theme, limit)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	found, err := f.lookup.SearchAndFetch(ctx, theme, limit)
	if err != nil {
		f.log.Warn("reference lookup failed, using placeholders", "theme", theme, "error", err)
		return Placeholders(theme, limit)
	}
	if len(found) > limit {
		found = found[:limit]
	}
	return found
}

// Placeholders returns deterministic generic references for theme
func Placeholders(theme string, limit int) []string {
	if limit > len(placeholderSources) {
		limit = len(placeholderSources)
	}
	if limit < 0 {
		limit = 0
	}
	out := make([]string, 0, limit)
	for _, src := range placeholderSources[:limit] {
		out = append(out, theme+" — "+src)
	}
	return out
}
