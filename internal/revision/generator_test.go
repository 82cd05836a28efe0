package revision

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/savoir/internal/biblio"
	"github.com/ppiankov/savoir/internal/model"
	"github.com/ppiankov/savoir/internal/rank"
	"github.com/ppiankov/savoir/internal/summarize"
	"github.com/ppiankov/savoir/internal/synthesis"
)

type fixedReferences []string

func (f fixedReferences) FetchExternal(context.Context, string, int) []string { return f }

type failingSynthesis struct{}

func (failingSynthesis) BuildSynthesis(context.Context, string, []model.Document) ([]string, error) {
	return nil, errors.New("resources unavailable")
}

func newGenerator(refs []string) *Generator {
	return NewGenerator(
		rank.New(),
		synthesis.NewComposer(summarize.New(nil)),
		fixedReferences(refs),
		Config{},
		nil,
	)
}

func TestCreateRevisionSheet(t *testing.T) {
	docs := []model.Document{
		{ID: 1, Title: "Cuisine", TextContent: "Recipes for pasta and bread."},
		{ID: 2, Title: "Révolution", TextContent: "The revolution of 1789 changed France.\n" +
			"Furet, F. (1978). Penser la Révolution française. Paris: Gallimard."},
		{ID: 3, Title: "Industrie", TextContent: "The industrial revolution began in England."},
	}
	g := newGenerator([]string{"Révolution — https://fr.wikipedia.org/wiki/R"})

	sheet, err := g.CreateRevisionSheet(context.Background(), "revolution", docs)
	require.NoError(t, err)

	assert.Equal(t, "revolution", sheet.Theme)
	// The shorter document concentrates more weight on the shared term
	assert.Equal(t, []string{"Industrie", "Révolution"}, sheet.Sources)
	assert.NotEmpty(t, sheet.Synthesis)
	for _, b := range sheet.Synthesis {
		assert.True(t, strings.HasPrefix(b, "- "), b)
	}
	assert.Equal(t, []string{
		"**Furet, F. (1978).** (Corpus)",
		"Révolution — https://fr.wikipedia.org/wiki/R",
	}, sheet.Bibliography)
	assert.Equal(t, GenerateTopics("revolution"), sheet.EssayTopics)
}

func TestCreateRevisionSheetNoRelevantDocuments(t *testing.T) {
	g := newGenerator(biblio.Placeholders("astronomie", 3))
	docs := []model.Document{{ID: 1, Title: "Cuisine", TextContent: "Recipes for pasta."}}

	sheet, err := g.CreateRevisionSheet(context.Background(), "astronomie", docs)
	require.NoError(t, err)

	assert.Empty(t, sheet.Synthesis)
	assert.Empty(t, sheet.Sources)
	assert.Len(t, sheet.Bibliography, 3)

	md := sheet.ToMarkdown()
	assert.Contains(t, md, model.SynthesisUnavailable)
	assert.Contains(t, md, model.NoSourceIdentified)
}

func TestCreateRevisionSheetSynthesisError(t *testing.T) {
	g := NewGenerator(rank.New(), failingSynthesis{}, fixedReferences(nil), Config{}, nil)

	_, err := g.CreateRevisionSheet(context.Background(), "x", nil)
	require.Error(t, err)
}

func TestGenerateTopics(t *testing.T) {
	first := GenerateTopics("La guerre froide")
	second := GenerateTopics("La guerre froide")

	require.Len(t, first, 3)
	assert.Equal(t, first, second)

	seen := map[string]bool{}
	for _, topic := range first {
		assert.Contains(t, topic, "La guerre froide")
		assert.False(t, seen[topic], "duplicate topic %q", topic)
		seen[topic] = true
	}
}

func TestGenerateTopicsIgnoresSurroundingSpace(t *testing.T) {
	assert.Equal(t, GenerateTopics("Climat"), GenerateTopics("  Climat \n"))
}

func TestGenerateTopicsVariesWithTheme(t *testing.T) {
	// At least two themes among a handful should draw different prompts
	distinct := map[string]bool{}
	for _, theme := range []string{"a", "b", "c", "d", "e", "f"} {
		topics := GenerateTopics(theme)
		key := strings.Join(topics, "|")
		distinct[strings.ReplaceAll(key, theme, "")] = true
	}
	assert.Greater(t, len(distinct), 1)
}
