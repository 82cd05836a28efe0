// Package synthesis turns a set of documents into 4 to 6 revision bullets.
//
// A BulletProducer (typically an LLM) is tried first. When it fails, panics,
// times out or returns a count outside [MinBullets, MaxBullets], the composer
// falls back to an extractive summary split into bullets.
package synthesis

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ppiankov/savoir/internal/logger"
	"github.com/ppiankov/savoir/internal/model"
)

const (
	MinBullets = 4
	MaxBullets = 6

	// fallbackSentences is the summary length fed to the fallback splitter
	fallbackSentences = 12
	// segmentLimit is the rune offset past which segments are cut at a sentence boundary
	segmentLimit = 160

	defaultTimeout = 60 * time.Second
	trimSet        = " -•\t"
)

var (
	segmentSplit  = regexp.MustCompile(`[.!?]\s+|\n+`)
	clauseSplit   = regexp.MustCompile(`[;:]`)
	boundaryAfter = regexp.MustCompile(`[.!?]\s`)
)

// BulletProducer generates bullets for a theme from document snippets
type BulletProducer interface {
	Generate(ctx context.Context, theme string, snippets []string) ([]string, error)
}

// NopProducer produces nothing, forcing the extractive fallback
type NopProducer struct{}

func (NopProducer) Generate(context.Context, string, []string) ([]string, error) {
	return nil, nil
}

// DocumentSummarizer condenses several texts into one extractive summary
type DocumentSummarizer interface {
	SummariseDocuments(texts []string, maxSentences int) (string, error)
}

// Composer builds the synthesis section of a revision sheet
type Composer struct {
	summarizer DocumentSummarizer
	producer   BulletProducer
	timeout    time.Duration
	log        *logger.Logger
}

// Option configures a Composer
type Option func(*Composer)

// WithProducer sets the primary bullet producer
func WithProducer(p BulletProducer) Option {
	return func(c *Composer) {
		if p != nil {
			c.producer = p
		}
	}
}

// WithTimeout bounds a single producer call
func WithTimeout(d time.Duration) Option {
	return func(c *Composer) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used to report fallbacks
func WithLogger(l *logger.Logger) Option {
	return func(c *Composer) {
		if l != nil {
			c.log = l
		}
	}
}

// NewComposer creates a composer. Without WithProducer it always uses the fallback.
func NewComposer(summarizer DocumentSummarizer, opts ...Option) *Composer {
	c := &Composer{
		summarizer: summarizer,
		producer:   NopProducer{},
		timeout:    defaultTimeout,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildSynthesis returns the bullets for theme. An empty slice means no content.
// The error is non-nil only when the fallback summarizer fails.
func (c *Composer) BuildSynthesis(ctx context.Context, theme string, docs []model.Document) ([]string, error) {
	contents := make([]string, 0, len(docs))
	for _, d := range docs {
		contents = append(contents, d.TextContent)
	}
	if len(contents) == 0 {
		return []string{}, nil
	}

	primary := normalizeBullets(c.produce(ctx, theme, contents))
	if len(primary) >= MinBullets && len(primary) <= MaxBullets {
		return primary, nil
	}
	if len(primary) > 0 {
		c.log.Warn("discarding generated bullets", "theme", theme, "count", len(primary))
	}

	return c.fallback(contents)
}

// produce calls the producer under a deadline; errors and panics yield nil
func (c *Composer) produce(ctx context.Context, theme string, contents []string) (bullets []string) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			c.log.Warn("bullet producer panicked, using extractive fallback", "theme", theme, "panic", fmt.Sprint(r))
			bullets = nil
		}
	}()

	out, err := c.producer.Generate(ctx, theme, contents)
	if err != nil {
		c.log.Warn("bullet producer failed, using extractive fallback", "theme", theme, "error", err)
		return nil
	}
	return out
}

func (c *Composer) fallback(contents []string) ([]string, error) {
	summary, err := c.summarizer.SummariseDocuments(contents, fallbackSentences)
	if err != nil {
		return nil, fmt.Errorf("summarise documents: %w", err)
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return []string{}, nil
	}

	segments := dedupe(splitSegments(summary))
	if len(segments) < MinBullets {
		segments = splitClauses(segments)
	}

	bullets := make([]string, 0, MaxBullets)
	// Truncation can still make two segments collide
	seen := make(map[string]bool)
	for _, seg := range segments {
		sentence := truncateAtBoundary(seg, segmentLimit)
		if sentence == "" {
			continue
		}
		bullet := "- " + ensureTerminal(sentence)
		if seen[bullet] {
			continue
		}
		seen[bullet] = true
		bullets = append(bullets, bullet)
		if len(bullets) == MaxBullets {
			break
		}
	}
	return bullets, nil
}

// normalizeBullets drops blank lines and forces the "- " prefix and terminal punctuation
func normalizeBullets(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		body := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		if body == "" {
			continue
		}
		out = append(out, "- "+ensureTerminal(body))
	}
	return out
}

// splitSegments splits after sentence punctuation followed by whitespace, and on newlines
func splitSegments(text string) []string {
	var raw []string
	last := 0
	for _, loc := range segmentSplit.FindAllStringIndex(text, -1) {
		end := loc[0]
		if text[loc[0]] != '\n' {
			end++ // keep the punctuation
		}
		raw = append(raw, text[last:end])
		last = loc[1]
	}
	raw = append(raw, text[last:])

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.Trim(s, trimSet); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func dedupe(segments []string) []string {
	seen := make(map[string]bool, len(segments))
	out := segments[:0]
	for _, s := range segments {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// splitClauses re-splits each segment on ';' and ':'
func splitClauses(segments []string) []string {
	var out []string
	for _, seg := range segments {
		var parts []string
		for _, p := range clauseSplit.Split(seg, -1) {
			if p = strings.Trim(p, trimSet); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) > 1 {
			out = append(out, parts...)
		} else {
			out = append(out, seg)
		}
	}
	return out
}

// truncateAtBoundary cuts text after the last sentence end whose following
// whitespace sits at or before rune offset limit. Text without such a
// boundary is returned unchanged.
func truncateAtBoundary(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	cut := -1
	for _, loc := range boundaryAfter.FindAllStringIndex(text, -1) {
		space := loc[0] + 1 // byte offset of the whitespace
		if utf8.RuneCountInString(text[:space]) > limit {
			break
		}
		cut = space
	}
	if cut < 0 {
		return text
	}
	return strings.TrimSpace(text[:cut])
}

func ensureTerminal(s string) string {
	s = strings.TrimRight(s, " \t")
	if strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?") || strings.HasSuffix(s, "…") {
		return s
	}
	return s + "."
}
