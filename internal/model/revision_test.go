package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevisionSheet_ToMarkdown_Fallbacks(t *testing.T) {
	sheet := RevisionSheet{Theme: "Sujet"}

	md := sheet.ToMarkdown()

	assert.True(t, strings.HasPrefix(md, "# Sujet\n"))
	assert.Contains(t, md, SynthesisUnavailable)
	assert.Contains(t, md, NoSourceIdentified)
	assert.Contains(t, md, NoReference)
	assert.True(t, strings.HasSuffix(md, "## 4. Sujets possibles"))
}

func TestRevisionSheet_ToMarkdown_SynthesisSectionIsVerbatim(t *testing.T) {
	sheet := RevisionSheet{
		Theme: "Thème",
		Synthesis: []string{
			"- Point un.",
			"- Point deux.",
			"- Point trois.",
			"- Point quatre.",
		},
		Sources:      []string{"Document 1"},
		Bibliography: []string{"**Dupont (2020)** (Corpus)"},
		EssayTopics:  []string{"Sujet A.", "Sujet B.", "Sujet C."},
	}

	md := sheet.ToMarkdown()
	parts := strings.SplitN(md, "## 1. Synthèse\n", 2)
	require.Len(t, parts, 2)
	section := strings.SplitN(parts[1], "\n## 2.", 2)[0]

	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(section), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	assert.Equal(t, sheet.Synthesis, lines)
	assert.Contains(t, md, "- Document 1")
	assert.Contains(t, md, "- **Dupont (2020)** (Corpus)")
	assert.Contains(t, md, "- Sujet C.")
}

func TestRevisionSheet_ToMarkdown_Deterministic(t *testing.T) {
	sheet := RevisionSheet{Theme: "X", Sources: []string{"a", "b"}}
	assert.Equal(t, sheet.ToMarkdown(), sheet.ToMarkdown())
}
