package ingest

import (
	"strings"

	"github.com/ppiankov/savoir/internal/model"
)

// Text builds a document from pasted text. The text is dedented and trimmed;
// without an explicit title the first line (at most 80 runes) is used.
func Text(text, title string) (*model.NewDocument, error) {
	cleaned := strings.TrimSpace(dedent(text))
	if cleaned == "" {
		return nil, ErrEmptyContent
	}

	if strings.TrimSpace(title) == "" {
		first, _, _ := strings.Cut(cleaned, "\n")
		title = truncateRunes(first, maxTextTitleRunes)
	}

	return &model.NewDocument{
		Title:       NormaliseTitle(title),
		SourceType:  model.SourceText,
		TextContent: cleaned,
	}, nil
}

// dedent removes the longest leading whitespace prefix shared by all
// non-blank lines. Blank lines are reduced to empty lines.
func dedent(text string) string {
	lines := strings.Split(text, "\n")
	prefix := ""
	first := true

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			prefix = indent
			first = false
			continue
		}
		prefix = commonPrefix(prefix, indent)
		if prefix == "" {
			break
		}
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = strings.TrimPrefix(line, prefix)
	}
	return strings.Join(lines, "\n")
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
