package summarize

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/savoir/internal/textproc"
)

func TestSummariseShortTextUnchanged(t *testing.T) {
	s := New(nil)

	got, err := s.Summarise("Une phrase.   Deux phrases ! ", 3)
	require.NoError(t, err)
	assert.Equal(t, "Une phrase. Deux phrases !", got)
}

func TestSummariseKeepsOriginalOrder(t *testing.T) {
	s := New(nil)

	got, err := s.Summarise("A. B. C. D. E.", 3)
	require.NoError(t, err)
	// "a", "c" and "d" are stopwords; the zero-score tie keeps first order
	assert.Equal(t, "A. B. E.", got)
}

func TestSummarisePrefersFrequentTerms(t *testing.T) {
	s := New(nil)
	text := strings.Join([]string{
		"La révolution transforme la société.",
		"Il pleuvait ce jour-là.",
		"La révolution française inspire une révolution européenne.",
		"Les chats dorment.",
	}, " ")

	got, err := s.Summarise(text, 2)
	require.NoError(t, err)
	assert.Equal(t, "La révolution transforme la société. La révolution française inspire une révolution européenne.", got)
}

func TestSummariseAllStopwords(t *testing.T) {
	s := New(nil)

	got, err := s.Summarise("The. And. Of. Le. La.", 2)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSummariseDuplicatesScoredOnce(t *testing.T) {
	s := New(nil)

	got, err := s.Summarise("Guerre froide. Guerre froide. Paix. Traité signé.", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(got, "Guerre froide."))
}

func TestSummariseLimitHonoured(t *testing.T) {
	s := New(nil)
	var b strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "Phrase numéro %d sur l'histoire moderne. ", i)
	}
	seg := textproc.NewSegmenter(mustResources(t))

	got, err := s.Summarise(b.String(), 12)
	require.NoError(t, err)
	assert.Len(t, seg.Sentences(got), 12)
}

func TestSummariseResourceFailure(t *testing.T) {
	s := New(func() (*textproc.Resources, error) {
		return nil, textproc.ErrResourcesUnavailable
	})

	_, err := s.Summarise("Du texte.", 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, textproc.ErrResourcesUnavailable))
}

func TestSummariseDocuments(t *testing.T) {
	s := New(nil)

	got, err := s.SummariseDocuments([]string{"  ", "Premier texte.", "\n", "Second texte."}, 12)
	require.NoError(t, err)
	assert.Equal(t, "Premier texte. Second texte.", got)

	got, err = s.SummariseDocuments(nil, 12)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScoreSkipsTokenlessSentences(t *testing.T) {
	seg := textproc.NewSegmenter(mustResources(t))
	sentences := []string{"...", "Histoire."}

	scored := Score(seg, "... Histoire.", sentences)
	require.Len(t, scored, 1)
	assert.Equal(t, "Histoire.", scored[0].Sentence)
	assert.InDelta(t, 1.0, scored[0].Score, 1e-9)
}

func mustResources(t *testing.T) *textproc.Resources {
	t.Helper()
	res, err := textproc.LoadResources()
	require.NoError(t, err)
	return res
}
