package model

import "strings"

// Fallback lines rendered when a section of a sheet is empty
const (
	SynthesisUnavailable = "(Synthèse indisponible)"
	NoSourceIdentified   = "- Aucune source identifiée"
	NoReference          = "- Aucune référence disponible"
)

// RevisionSheet is the theme-scoped artifact combining synthesis, sources,
// bibliography and essay prompts. It is built whole and never patched.
type RevisionSheet struct {
	Theme        string   `json:"theme"`
	Synthesis    []string `json:"synthesis"`    // Bullets, each already prefixed with "- "
	Sources      []string `json:"sources"`      // Titles of the selected documents
	Bibliography []string `json:"bibliography"` // Formatted references
	EssayTopics  []string `json:"essay_topics"`
}

// ToMarkdown renders the sheet. The output depends only on the sheet fields.
func (s RevisionSheet) ToMarkdown() string {
	lines := []string{"# " + s.Theme, "", "## 1. Synthèse"}
	if len(s.Synthesis) > 0 {
		lines = append(lines, s.Synthesis...)
	} else {
		lines = append(lines, SynthesisUnavailable)
	}

	lines = append(lines, "", "## 2. Sources du corpus")
	if len(s.Sources) > 0 {
		for _, source := range s.Sources {
			lines = append(lines, "- "+source)
		}
	} else {
		lines = append(lines, NoSourceIdentified)
	}

	lines = append(lines, "", "## 3. Références bibliographiques")
	if len(s.Bibliography) > 0 {
		for _, ref := range s.Bibliography {
			lines = append(lines, "- "+ref)
		}
	} else {
		lines = append(lines, NoReference)
	}

	lines = append(lines, "", "## 4. Sujets possibles")
	for _, topic := range s.EssayTopics {
		lines = append(lines, "- "+topic)
	}

	return strings.Join(lines, "\n")
}
