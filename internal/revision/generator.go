// Package revision assembles revision sheets for a theme from the corpus.
package revision

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/savoir/internal/biblio"
	"github.com/ppiankov/savoir/internal/logger"
	"github.com/ppiankov/savoir/internal/model"
	"github.com/ppiankov/savoir/internal/rank"
)

const topicCount = 3

var topicTemplates = []string{
	"Analysez les enjeux historiques, économiques et sociaux liés à %s.",
	"Discutez des débats théoriques majeurs entourant %s.",
	"Proposez une étude comparative mettant en perspective %s et un autre cas d'étude.",
	"Évaluez l'impact des politiques publiques sur %s.",
	"Expliquez comment %s transforme les pratiques contemporaines.",
}

// DocumentSelector picks the documents relevant to a theme
type DocumentSelector interface {
	SelectRelevant(theme string, docs []model.Document, maxDocs int) []model.Document
}

// SynthesisBuilder writes the synthesis bullets
type SynthesisBuilder interface {
	BuildSynthesis(ctx context.Context, theme string, docs []model.Document) ([]string, error)
}

// ReferenceFetcher returns external references; it never fails
type ReferenceFetcher interface {
	FetchExternal(ctx context.Context, theme string, limit int) []string
}

// Generator builds revision sheets
type Generator struct {
	selector      DocumentSelector
	synthesis     SynthesisBuilder
	references    ReferenceFetcher
	maxDocs       int
	externalLimit int
	log           *logger.Logger
}

// Config holds generator limits
type Config struct {
	MaxDocs       int
	ExternalLimit int
}

// NewGenerator creates a generator; zero limits use the defaults
func NewGenerator(selector DocumentSelector, synthesis SynthesisBuilder, references ReferenceFetcher, cfg Config, log *logger.Logger) *Generator {
	if cfg.MaxDocs <= 0 {
		cfg.MaxDocs = rank.DefaultMaxDocs
	}
	if cfg.ExternalLimit <= 0 {
		cfg.ExternalLimit = biblio.DefaultExternalLimit
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Generator{
		selector:      selector,
		synthesis:     synthesis,
		references:    references,
		maxDocs:       cfg.MaxDocs,
		externalLimit: cfg.ExternalLimit,
		log:           log,
	}
}

// CreateRevisionSheet ranks the corpus against theme and assembles a fresh sheet
func (g *Generator) CreateRevisionSheet(ctx context.Context, theme string, docs []model.Document) (*model.RevisionSheet, error) {
	log := g.log.With("request_id", uuid.NewString(), "theme", theme)
	start := time.Now()

	selected := g.selector.SelectRelevant(theme, docs, g.maxDocs)
	log.Debug("selected documents", "corpus", len(docs), "selected", len(selected))

	bullets, err := g.synthesis.BuildSynthesis(ctx, theme, selected)
	if err != nil {
		return nil, fmt.Errorf("build synthesis: %w", err)
	}

	sources := make([]string, len(selected))
	for i, d := range selected {
		sources[i] = d.Title
	}

	internal := biblio.ExtractInternal(selected)
	external := g.references.FetchExternal(ctx, theme, g.externalLimit)

	sheet := &model.RevisionSheet{
		Theme:        theme,
		Synthesis:    bullets,
		Sources:      sources,
		Bibliography: biblio.FormatBibliography(internal, external),
		EssayTopics:  GenerateTopics(theme),
	}

	log.Info("revision sheet generated",
		"bullets", len(sheet.Synthesis),
		"sources", len(sheet.Sources),
		"references", len(sheet.Bibliography),
		"duration", time.Since(start),
	)
	return sheet, nil
}

// GenerateTopics returns three essay prompts drawn from fixed templates.
// The same theme always yields the same prompts in the same order.
func GenerateTopics(theme string) []string {
	theme = strings.TrimSpace(theme)
	h := fnv.New64a()
	_, _ = h.Write([]byte(theme))
	rng := rand.New(rand.NewPCG(h.Sum64(), 0))

	idx := make([]int, len(topicTemplates))
	for i := range idx {
		idx[i] = i
	}
	// Partial Fisher-Yates: the first topicCount slots are the sample
	for i := 0; i < topicCount; i++ {
		j := i + rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	topics := make([]string, topicCount)
	for i := 0; i < topicCount; i++ {
		topics[i] = fmt.Sprintf(topicTemplates[idx[i]], theme)
	}
	return topics
}
