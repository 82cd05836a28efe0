package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/savoir/internal/biblio"
	"github.com/ppiankov/savoir/internal/export"
	"github.com/ppiankov/savoir/internal/model"
	"github.com/ppiankov/savoir/internal/rank"
	"github.com/ppiankov/savoir/internal/revision"
	"github.com/ppiankov/savoir/internal/store"
	"github.com/ppiankov/savoir/internal/summarize"
	"github.com/ppiankov/savoir/internal/synthesis"
)

type offlineLookup struct{}

func (offlineLookup) SearchAndFetch(context.Context, string, int) ([]string, error) {
	return nil, errors.New("offline")
}

func newTestService(t *testing.T) (*KnowledgeService, *store.Store, string) {
	t.Helper()
	base := t.TempDir()

	st, err := store.Open(base)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	summarizer := summarize.New(nil)
	generator := revision.NewGenerator(
		rank.New(),
		synthesis.NewComposer(summarizer),
		biblio.NewExternalFetcher(offlineLookup{}, time.Second, nil),
		revision.Config{},
		nil,
	)
	return New(base, st, summarizer, generator, nil), st, base
}

func TestAddAndListDocuments(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.AddDocument(ctx, model.NewDocument{
		Title: "Guerre froide", SourceType: model.SourceText, TextContent: "La guerre froide oppose deux blocs.",
	})
	require.NoError(t, err)

	docs, err := svc.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, id, docs[0].ID)

	doc, err := svc.GetDocument(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Guerre froide", doc.Title)

	_, err = svc.GetDocument(ctx, id+100)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestBuildSummary(t *testing.T) {
	svc, st, base := newTestService(t)
	ctx := context.Background()

	id, err := svc.AddDocument(ctx, model.NewDocument{
		Title:       "Cours",
		SourceType:  model.SourceText,
		TextContent: "The economy grew quickly. The economy then slowed. Cats sleep.",
	})
	require.NoError(t, err)

	summary, err := svc.BuildSummary(ctx, id, 2)
	require.NoError(t, err)
	assert.NotEmpty(t, summary)

	sums, err := st.ListSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.Equal(t, summary, sums[0].Summary)
	assert.FileExists(t, filepath.Join(base, export.SummariesDir, "Cours.pdf"))

	report, err := os.ReadFile(filepath.Join(base, export.SummaryReport))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(report)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "1,Cours,"), lines[1])
}

func TestBuildSummaryFallsBackToText(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	// Only stopwords: no sentence can be scored
	id, err := svc.AddDocument(ctx, model.NewDocument{Title: "Vide", SourceType: model.SourceText, TextContent: "The. Of. And."})
	require.NoError(t, err)

	summary, err := svc.BuildSummary(ctx, id, 2)
	require.NoError(t, err)
	assert.Equal(t, "The. Of. And.", summary)
}

func TestBuildSummaryUnknownDocument(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.BuildSummary(context.Background(), 7, DefaultSummarySentences)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGenerateRevisionSheetEmptyCorpus(t *testing.T) {
	svc, _, _ := newTestService(t)

	got, err := svc.GenerateRevisionSheet(context.Background(), "révolution")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGenerateRevisionSheetEmptyTheme(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.GenerateRevisionSheet(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyTheme)
}

func TestGenerateRevisionSheet(t *testing.T) {
	svc, st, base := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddDocument(ctx, model.NewDocument{
		Title: "Industrie", SourceType: model.SourceText,
		TextContent: "The industrial revolution began in England. Factories spread across Europe.",
	})
	require.NoError(t, err)

	got, err := svc.GenerateRevisionSheet(ctx, "industrial revolution")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, []string{"Industrie"}, got.Sheet.Sources)
	assert.True(t, strings.HasPrefix(got.Markdown, "# industrial revolution\n"))
	assert.Equal(t, filepath.Join(base, export.RevisionSheetsDir, "industrial_revolution.pdf"), got.PDFPath)
	assert.FileExists(t, got.PDFPath)
	// Offline lookup falls back to placeholders
	assert.Contains(t, got.Markdown, "industrial revolution — Cairn.info")

	saved, err := st.ListRevisionSheets(ctx)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, got.Markdown, saved[0].Content)

	report, err := os.ReadFile(filepath.Join(base, export.RevisionReport))
	require.NoError(t, err)
	assert.Contains(t, string(report), "industrial revolution,")
}

func TestAddDocumentRegeneratesSavedSheets(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddDocument(ctx, model.NewDocument{
		Title: "Industrie", SourceType: model.SourceText, TextContent: "The industrial revolution began in England.",
	})
	require.NoError(t, err)
	_, err = svc.GenerateRevisionSheet(ctx, "revolution")
	require.NoError(t, err)

	_, err = svc.AddDocument(ctx, model.NewDocument{
		Title: "Politique", SourceType: model.SourceText, TextContent: "The French revolution overthrew the monarchy.",
	})
	require.NoError(t, err)

	saved, err := st.ListRevisionSheets(ctx)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.ElementsMatch(t, []string{"Industrie", "Politique"}, saved[0].Sources)
}
