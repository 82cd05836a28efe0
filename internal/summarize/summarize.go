// Package summarize builds extractive summaries by ranking sentences on word
// frequency. Stopwords (French and English) are ignored when counting.
package summarize

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ppiankov/savoir/internal/textproc"
)

// DefaultMaxSentences is used when callers pass a non-positive limit
const DefaultMaxSentences = 10

// ScoredSentence is a sentence with its frequency score
type ScoredSentence struct {
	Sentence string
	Score    float64
	index    int
}

// Summarizer produces extractive summaries
type Summarizer struct {
	load textproc.Loader
}

// New creates a summarizer. Resources are resolved on the first call that needs them.
func New(load textproc.Loader) *Summarizer {
	if load == nil {
		load = textproc.LoadResources
	}
	return &Summarizer{load: load}
}

// Summarise returns up to maxSentences of text, chosen by score and kept in
// their original order.
func (s *Summarizer) Summarise(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}

	seg, err := s.segmenter()
	if err != nil {
		return "", err
	}

	sentences := seg.Sentences(text)
	if len(sentences) <= maxSentences {
		return strings.Join(sentences, " "), nil
	}

	scored := Score(seg, text, sentences)
	if len(scored) == 0 {
		return "", nil
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > maxSentences {
		scored = scored[:maxSentences]
	}
	// Restore original order among selected
	sort.Slice(scored, func(i, j int) bool { return scored[i].index < scored[j].index })

	out := make([]string, len(scored))
	for i, sc := range scored {
		out[i] = sc.Sentence
	}
	return strings.Join(out, " "), nil
}

// SummariseDocuments joins the non-empty texts with newlines and summarises the result
func (s *Summarizer) SummariseDocuments(texts []string, maxSentences int) (string, error) {
	parts := make([]string, 0, len(texts))
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	return s.Summarise(strings.Join(parts, "\n"), maxSentences)
}

// Score rates every distinct sentence of text. Frequencies come from the
// whole text; the result is in sentence order and is empty when text holds
// only stopwords.
func Score(seg *textproc.Segmenter, text string, sentences []string) []ScoredSentence {
	freq := make(map[string]float64)
	for _, tok := range seg.Tokens(text) {
		if seg.IsStopword(tok) {
			continue
		}
		freq[tok]++
	}
	if len(freq) == 0 {
		return nil
	}

	maxF := 0.0
	for _, v := range freq {
		maxF = math.Max(maxF, v)
	}
	for k, v := range freq {
		freq[k] = v / maxF
	}

	seen := make(map[string]struct{}, len(sentences))
	scored := make([]ScoredSentence, 0, len(sentences))
	for i, sentence := range sentences {
		if _, dup := seen[sentence]; dup {
			continue
		}
		tokens := seg.Tokens(sentence)
		if len(tokens) == 0 {
			continue
		}
		seen[sentence] = struct{}{}

		sum := 0.0
		for _, tok := range tokens {
			sum += freq[tok]
		}
		scored = append(scored, ScoredSentence{
			Sentence: sentence,
			Score:    sum / math.Sqrt(float64(len(tokens))),
			index:    i,
		})
	}
	return scored
}

func (s *Summarizer) segmenter() (*textproc.Segmenter, error) {
	res, err := s.load()
	if err != nil {
		return nil, fmt.Errorf("load language resources: %w", err)
	}
	return textproc.NewSegmenter(res), nil
}
