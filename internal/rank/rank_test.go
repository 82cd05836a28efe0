package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/savoir/internal/model"
)

func docs(texts ...string) []model.Document {
	out := make([]model.Document, len(texts))
	for i, t := range texts {
		out[i] = model.Document{ID: int64(i + 1), Title: t, TextContent: t}
	}
	return out
}

func TestRankOrdersBySimilarity(t *testing.T) {
	r := New()
	corpus := docs(
		"cooking recipes pasta",
		"french revolution history revolution",
		"revolution industrial",
	)

	ranked := r.Rank("revolution history", corpus)
	require.Len(t, ranked, 3)
	assert.Equal(t, int64(2), ranked[0].Document.ID)
	assert.Equal(t, int64(3), ranked[1].Document.ID)
	assert.Equal(t, int64(1), ranked[2].Document.ID)
	assert.Zero(t, ranked[2].Similarity)
	for _, rd := range ranked {
		assert.GreaterOrEqual(t, rd.Similarity, 0.0)
		assert.LessOrEqual(t, rd.Similarity, 1.0+1e-9)
	}
}

func TestSelectRelevantDropsZeroSimilarity(t *testing.T) {
	r := New()
	corpus := docs("cooking pasta", "revolution france", "gardening tips")

	got := r.SelectRelevant("revolution", corpus, 8)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
}

func TestSelectRelevantRespectsLimit(t *testing.T) {
	r := New()
	corpus := docs("war peace", "war treaty", "war empire", "war navy")

	got := r.SelectRelevant("war", corpus, 2)
	require.Len(t, got, 2)
	// Equal scores keep input order
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
}

func TestRankEmptyInputs(t *testing.T) {
	r := New()

	assert.Empty(t, r.Rank("anything", nil))
	assert.Empty(t, r.SelectRelevant("anything", nil, 8))
	// Only stopwords and single letters: no vocabulary
	assert.Empty(t, r.Rank("the a", docs("and of the", "x y z")))
}

func TestRankVocabularyCap(t *testing.T) {
	r := New()
	r.maxFeatures = 1
	corpus := docs("alpha alpha alpha beta", "beta gamma")

	ranked := r.Rank("beta", corpus)
	// Only "alpha" survives the cap, so the theme vector is empty
	for _, rd := range ranked {
		assert.Zero(t, rd.Similarity)
	}
}
