package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrProviderDisabled is returned when no provider is configured
var ErrProviderDisabled = errors.New("llm provider disabled")

const (
	maxBullets       = 6
	minSnippetBudget = 256
	bulletTemp       = 0.7
)

const systemPrompt = "Tu es un assistant pédagogique francophone chargé de synthétiser un corpus."

const promptInstructions = "Produis une synthèse analytique en français sous forme de 4 à 6 puces. " +
	"Chaque puce doit commencer par un tiret et contenir une idée clé en une ou deux phrases, " +
	"en faisant implicitement référence aux sources (auteur, institution, année) lorsque l'information est disponible. " +
	"Chaque phrase doit être complète et terminer par un point. " +
	"N'invente aucune information et reste fidèle au contenu fourni."

const promptSuffix = "\n\nConsignes :\n" +
	"- 4 à 6 puces maximum.\n" +
	"- Pas d'introduction ni de conclusion.\n" +
	"- Pas de listes imbriquées.\n" +
	"- Chaque puce doit rester concise (deux phrases au plus).\n" +
	"- Chaque phrase écrite dans une puce doit être complète et se terminer par un point.\n" +
	"- Mention implicite des sources lorsqu'elles apparaissent dans les extraits.\n" +
	"\nSynthèse attendue :"

var (
	bulletMarker   = regexp.MustCompile(`^[\-•*\t ]+`)
	numberedMarker = regexp.MustCompile(`^\d+[.)\-]\s*`)
	sentenceSplit  = regexp.MustCompile(`[.!?]\s+`)
)

// BulletWriter turns document snippets into revision bullets with a Provider
type BulletWriter struct {
	provider Provider
	config   Config
}

// NewBulletWriter creates a writer; a nil provider yields ErrProviderDisabled on use
func NewBulletWriter(provider Provider, config Config) *BulletWriter {
	return &BulletWriter{provider: provider, config: config}
}

// IsEnabled returns true if a provider is configured
func (w *BulletWriter) IsEnabled() bool {
	return w.provider != nil
}

// ProviderName returns the configured provider name, or "" when disabled
func (w *BulletWriter) ProviderName() string {
	if w.provider == nil {
		return ""
	}
	return w.provider.Name()
}

// ModelName returns the model the provider completes with
func (w *BulletWriter) ModelName() string {
	if w.provider == nil {
		return ""
	}
	return w.provider.Model()
}

// Check pings the provider; ErrProviderDisabled when none is configured
func (w *BulletWriter) Check(ctx context.Context) error {
	if w.provider == nil {
		return ErrProviderDisabled
	}
	return w.provider.Ping(ctx)
}

// Generate asks the provider for 4 to 6 bullets about theme. Returned bullets
// start with "- ", are unique and at most six.
func (w *BulletWriter) Generate(ctx context.Context, theme string, snippets []string) ([]string, error) {
	if w.provider == nil {
		return nil, ErrProviderDisabled
	}

	cleaned := make([]string, 0, len(snippets))
	for _, s := range snippets {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) == 0 {
		return nil, nil
	}

	resp, err := w.provider.Complete(ctx, CompletionRequest{
		System:      systemPrompt,
		Prompt:      BuildPrompt(theme, cleaned, w.config.maxInputTokens(), w.config.maxTokens(0)),
		MaxTokens:   w.config.maxTokens(0),
		Temperature: bulletTemp,
	})
	if err != nil {
		return nil, fmt.Errorf("generate bullets with %s: %w", w.provider.Name(), err)
	}

	return ExtractBullets(resp.Text), nil
}

// BuildPrompt assembles the French prompt, fitting as many snippets as the
// input budget allows. The last snippet that does not fit is truncated.
func BuildPrompt(theme string, snippets []string, maxInputTokens, maxNewTokens int) string {
	intro := fmt.Sprintf("%s\n\nThème : %s\n\nExtraits du corpus :\n", promptInstructions, theme)
	base := EstimateTokens(intro + promptSuffix)
	budget := maxInputTokens - maxNewTokens - base
	if budget < minSnippetBudget {
		budget = minSnippetBudget
	}

	selected := prepareSnippets(snippets, budget)
	sections := make([]string, len(selected))
	for i, s := range selected {
		sections[i] = fmt.Sprintf("[Document %d]\n%s", i+1, s)
	}
	return intro + strings.Join(sections, "\n\n") + promptSuffix
}

func prepareSnippets(snippets []string, budget int) []string {
	var selected []string
	used := 0
	for _, s := range snippets {
		words := strings.Fields(s)
		if len(words) == 0 {
			continue
		}
		if used+len(words) <= budget {
			selected = append(selected, s)
			used += len(words)
			continue
		}
		remaining := budget - used
		if remaining > 0 {
			selected = append(selected, strings.Join(words[:remaining], " "))
		}
		break
	}
	return selected
}

// EstimateTokens approximates the token count as the number of words
func EstimateTokens(text string) int {
	return len(strings.Fields(text))
}

// ExtractBullets normalizes generated text into "- " bullets. Markers and
// numbering are stripped; text without lines falls back to a sentence split.
func ExtractBullets(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var candidates []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		line = bulletMarker.ReplaceAllString(line, "")
		line = numberedMarker.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		candidates = append(candidates, "- "+line)
	}

	if len(candidates) == 0 {
		for _, sentence := range splitSentences(text) {
			candidates = append(candidates, "- "+sentence)
		}
	}

	seen := make(map[string]bool, len(candidates))
	out := make([]string, 0, maxBullets)
	for _, c := range candidates {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
		if len(out) == maxBullets {
			break
		}
	}
	return out
}

// splitSentences splits after terminal punctuation followed by whitespace
func splitSentences(text string) []string {
	var out []string
	last := 0
	for _, loc := range sentenceSplit.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[last : loc[0]+1]); s != "" {
			out = append(out, s)
		}
		last = loc[1]
	}
	if s := strings.TrimSpace(text[last:]); s != "" {
		out = append(out, s)
	}
	return out
}
