// Package biblio collects bibliographic references for a revision sheet:
// citation-like lines from the corpus and best-effort external lookups.
package biblio

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/savoir/internal/model"
)

const (
	// MaxInternal caps references taken from the corpus
	MaxInternal = 6
	// MaxBibliography caps the formatted bibliography
	MaxBibliography = 8

	minLineRunes    = 40
	maxSnippetRunes = 160
)

var (
	yearPattern   = regexp.MustCompile(`(19|20)\d{2}`)
	lineSplit     = regexp.MustCompile(`[\n\r]`)
	sentenceBreak = regexp.MustCompile(`[.!?]\s+`)
)

// ExtractInternal returns up to six unique citation-like snippets. A line
// qualifies when it holds at least 40 runes and a year or a DOI.
func ExtractInternal(docs []model.Document) []string {
	var refs []string
	seen := make(map[string]bool)

	for _, doc := range docs {
		for _, line := range lineSplit.Split(doc.TextContent, -1) {
			line = strings.TrimSpace(line)
			if utf8.RuneCountInString(line) < minLineRunes || !looksLikeCitation(line) {
				continue
			}
			snippet := truncateSnippet(citationSnippet(line))
			if snippet == "" || seen[snippet] {
				continue
			}
			seen[snippet] = true
			refs = append(refs, snippet)
			if len(refs) == MaxInternal {
				return refs
			}
		}
	}
	return refs
}

func looksLikeCitation(s string) bool {
	return yearPattern.MatchString(s) || strings.Contains(strings.ToLower(s), "doi")
}

// citationSnippet keeps sentences until the snippet cites a year/DOI or holds two sentences
func citationSnippet(line string) string {
	var parts []string
	for _, sentence := range splitAfterPunctuation(line) {
		parts = append(parts, sentence)
		if len(parts) > 1 || looksLikeCitation(strings.Join(parts, " ")) {
			break
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func splitAfterPunctuation(text string) []string {
	var out []string
	last := 0
	for _, loc := range sentenceBreak.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[last : loc[0]+1]); s != "" {
			out = append(out, s)
		}
		last = loc[1]
	}
	if s := strings.TrimSpace(text[last:]); s != "" {
		out = append(out, s)
	}
	return out
}

// truncateSnippet cuts snippets over 160 runes at the last space and appends an ellipsis
func truncateSnippet(s string) string {
	if utf8.RuneCountInString(s) <= maxSnippetRunes {
		return s
	}
	head := string([]rune(s)[:maxSnippetRunes])
	if i := strings.LastIndex(head, " "); i > 0 {
		head = head[:i]
	}
	return head + "…"
}

// FormatBibliography marks corpus references and appends non-blank external
// ones, keeping at most eight entries.
func FormatBibliography(internal, external []string) []string {
	out := make([]string, 0, MaxBibliography)
	for _, ref := range internal {
		out = append(out, "**"+ref+"** (Corpus)")
	}
	for _, ref := range external {
		if strings.TrimSpace(ref) != "" {
			out = append(out, ref)
		}
	}
	if len(out) > MaxBibliography {
		out = out[:MaxBibliography]
	}
	return out
}
