// Package rank orders documents by TF-IDF cosine similarity to a theme.
package rank

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/savoir/internal/model"
)

const (
	// DefaultMaxDocs caps the number of selected documents
	DefaultMaxDocs = 8
	// MaxFeatures caps the vocabulary size
	MaxFeatures = 5000
)

var termPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// RankedDocument is a document paired with its similarity to the theme
type RankedDocument struct {
	Document   model.Document
	Similarity float64
}

// Ranker scores documents against a theme. It holds no per-call state.
type Ranker struct {
	stopwords   map[string]struct{}
	maxFeatures int
}

// New creates a ranker using the built-in English stopword list
func New() *Ranker {
	return &Ranker{stopwords: englishStopwords(), maxFeatures: MaxFeatures}
}

// SelectRelevant returns at most maxDocs documents with a positive similarity,
// most similar first.
func (r *Ranker) SelectRelevant(theme string, docs []model.Document, maxDocs int) []model.Document {
	if maxDocs <= 0 {
		maxDocs = DefaultMaxDocs
	}
	ranked := r.Rank(theme, docs)
	out := make([]model.Document, 0, maxDocs)
	for _, rd := range ranked {
		if len(out) == maxDocs {
			break
		}
		if rd.Similarity <= 0 {
			continue
		}
		out = append(out, rd.Document)
	}
	return out
}

// Rank scores every document and sorts them by similarity, descending.
// Equal similarities keep input order.
func (r *Ranker) Rank(theme string, docs []model.Document) []RankedDocument {
	if len(docs) == 0 {
		return nil
	}

	corpus := make([][]string, 0, len(docs)+1)
	for _, d := range docs {
		corpus = append(corpus, r.terms(d.TextContent))
	}
	corpus = append(corpus, r.terms(theme))

	vocab := r.vocabulary(corpus)
	if len(vocab) == 0 {
		return nil
	}
	idf := inverseFrequencies(corpus, vocab)

	themeVec := vectorize(corpus[len(corpus)-1], vocab, idf)
	ranked := make([]RankedDocument, len(docs))
	for i, d := range docs {
		ranked[i] = RankedDocument{
			Document:   d,
			Similarity: dot(themeVec, vectorize(corpus[i], vocab, idf)),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Similarity > ranked[j].Similarity })
	return ranked
}

func (r *Ranker) terms(text string) []string {
	raw := termPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, stop := r.stopwords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// vocabulary keeps the maxFeatures most frequent terms; ties break alphabetically
func (r *Ranker) vocabulary(corpus [][]string) map[string]int {
	counts := make(map[string]int)
	for _, doc := range corpus {
		for _, t := range doc {
			counts[t]++
		}
	}
	terms := make([]string, 0, len(counts))
	for t := range counts {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > r.maxFeatures {
		terms = terms[:r.maxFeatures]
	}
	sort.Strings(terms)

	vocab := make(map[string]int, len(terms))
	for i, t := range terms {
		vocab[t] = i
	}
	return vocab
}

// inverseFrequencies computes smoothed IDF: ln((1+n)/(1+df)) + 1
func inverseFrequencies(corpus [][]string, vocab map[string]int) []float64 {
	df := make([]int, len(vocab))
	for _, doc := range corpus {
		seen := make(map[int]struct{})
		for _, t := range doc {
			idx, ok := vocab[t]
			if !ok {
				continue
			}
			if _, dup := seen[idx]; dup {
				continue
			}
			seen[idx] = struct{}{}
			df[idx]++
		}
	}
	n := float64(len(corpus))
	idf := make([]float64, len(vocab))
	for i, f := range df {
		idf[i] = math.Log((1+n)/(1+float64(f))) + 1
	}
	return idf
}

// vectorize returns an L2-normalized sparse TF-IDF vector using raw counts
func vectorize(terms []string, vocab map[string]int, idf []float64) map[int]float64 {
	vec := make(map[int]float64)
	for _, t := range terms {
		if idx, ok := vocab[t]; ok {
			vec[idx]++
		}
	}
	norm := 0.0
	for idx, c := range vec {
		vec[idx] = c * idf[idx]
		norm += vec[idx] * vec[idx]
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for idx := range vec {
		vec[idx] /= norm
	}
	return vec
}

func dot(a, b map[int]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	sum := 0.0
	for idx, v := range a {
		sum += v * b[idx]
	}
	return sum
}
