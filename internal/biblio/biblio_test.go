package biblio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/savoir/internal/cache"
	"github.com/ppiankov/savoir/internal/model"
	"github.com/ppiankov/savoir/internal/worker"
)

func doc(text string) model.Document {
	return model.Document{TextContent: text}
}

func TestExtractInternal(t *testing.T) {
	docs := []model.Document{
		doc("Introduction courte.\nDupont, J. (1998). Histoire de la France moderne. Paris: PUF.\nNé en 1990."),
		doc("Voir l'article publié dans la revue, doi:10.1000/xyz123 pour les détails\r" +
			"Une ligne assez longue mais sans aucune date ni identifiant de publication."),
	}

	got := ExtractInternal(docs)
	assert.Equal(t, []string{
		"Dupont, J. (1998).",
		"Voir l'article publié dans la revue, doi:10.1000/xyz123 pour les détails",
	}, got)
}

func TestExtractInternalYearInFirstSentence(t *testing.T) {
	got := ExtractInternal([]model.Document{doc("Le traité de 1919 redessine l'Europe. Il fixe les frontières. Il crée la SDN.")})
	assert.Equal(t, []string{"Le traité de 1919 redessine l'Europe."}, got)
}

func TestExtractInternalTruncatesLongSnippets(t *testing.T) {
	line := "En 1995 " + strings.Repeat("événement ", 30)

	got := ExtractInternal([]model.Document{doc(line)})
	require.Len(t, got, 1)
	assert.True(t, strings.HasSuffix(got[0], "…"))
	assert.LessOrEqual(t, utf8.RuneCountInString(got[0]), 161)
	assert.False(t, strings.HasSuffix(strings.TrimSuffix(got[0], "…"), " "))
}

func TestExtractInternalDedupesAndCaps(t *testing.T) {
	var lines []string
	for i := 0; i < 10; i++ {
		lines = append(lines, fmt.Sprintf("Référence numéro %d publiée en 2001 dans une revue savante.", i))
	}
	dup := strings.Join(lines[:2], "\n")

	got := ExtractInternal([]model.Document{doc(dup), doc(strings.Join(lines, "\n"))})
	require.Len(t, got, MaxInternal)
	assert.Equal(t, lines[0], got[0])
	assert.Equal(t, lines[1], got[1])
	assert.Equal(t, lines[2], got[2])
}

func TestExtractInternalEmpty(t *testing.T) {
	assert.Empty(t, ExtractInternal(nil))
	assert.Empty(t, ExtractInternal([]model.Document{doc("")}))
}

func TestFormatBibliography(t *testing.T) {
	got := FormatBibliography([]string{"Dupont (1998)."}, []string{"", "Révolution — https://fr.wikipedia.org/wiki/R", "  "})
	assert.Equal(t, []string{"**Dupont (1998).** (Corpus)", "Révolution — https://fr.wikipedia.org/wiki/R"}, got)

	internal := make([]string, 6)
	external := make([]string, 3)
	for i := range internal {
		internal[i] = fmt.Sprintf("ref %d", i)
	}
	for i := range external {
		external[i] = fmt.Sprintf("ext %d", i)
	}
	got = FormatBibliography(internal, external)
	require.Len(t, got, MaxBibliography)
	assert.Equal(t, "ext 1", got[7])

	assert.Empty(t, FormatBibliography(nil, nil))
}

type stubLookup struct {
	refs   []string
	err    error
	panics bool
	block  bool
}

func (s stubLookup) SearchAndFetch(ctx context.Context, _ string, _ int) ([]string, error) {
	if s.panics {
		panic("lookup exploded")
	}
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.refs, s.err
}

func TestFetchExternal(t *testing.T) {
	placeholders := []string{
		"Climat — Encyclopædia Universalis",
		"Climat — Cairn.info",
		"Climat — OpenEdition Journals",
	}

	tests := []struct {
		name   string
		lookup ReferenceLookup
		want   []string
	}{
		{"success", stubLookup{refs: []string{"A — u1", "B — u2", "C — u3", "D — u4"}}, []string{"A — u1", "B — u2", "C — u3"}},
		{"empty success", stubLookup{refs: []string{}}, []string{}},
		{"error", stubLookup{err: errors.New("offline")}, placeholders},
		{"panic", stubLookup{panics: true}, placeholders},
		{"timeout", stubLookup{block: true}, placeholders},
		{"no lookup", nil, placeholders},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewExternalFetcher(tt.lookup, 20*time.Millisecond, nil)
			assert.Equal(t, tt.want, f.FetchExternal(context.Background(), "Climat", 3))
		})
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"X — Encyclopædia Universalis"}, Placeholders("X", 1))
	assert.Len(t, Placeholders("X", 10), 3)
	assert.Empty(t, Placeholders("X", -1))
}

const searchResponse = `{
	"query": {
		"pages": {
			"42": {"pageid": 42, "title": "Révolution industrielle", "fullurl": "https://fr.wikipedia.org/wiki/R%C3%A9volution_industrielle", "index": 2},
			"7": {"pageid": 7, "title": "Révolution française", "fullurl": "https://fr.wikipedia.org/wiki/R%C3%A9volution_fran%C3%A7aise", "index": 1}
		}
	}
}`

func TestWikipediaLookup(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		q := r.URL.Query()
		assert.Equal(t, "search", q.Get("generator"))
		assert.Equal(t, "Révolution", q.Get("gsrsearch"))
		assert.Equal(t, "2", q.Get("gsrlimit"))
		assert.Equal(t, "savoir-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(searchResponse))
	}))
	defer server.Close()

	lookup := NewWikipediaLookup("fr", "savoir-test",
		WithAPIURL(server.URL+"/w/api.php"),
		WithLimiter(worker.NewLimiter(100, 10)),
		WithCache(cache.NewLayered(time.Minute, t.TempDir(), time.Minute), time.Minute),
	)

	want := []string{
		"Révolution française — https://fr.wikipedia.org/wiki/R%C3%A9volution_fran%C3%A7aise",
		"Révolution industrielle — https://fr.wikipedia.org/wiki/R%C3%A9volution_industrielle",
	}
	got, err := lookup.SearchAndFetch(context.Background(), "Révolution", 2)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Second call is served from cache
	got, err = lookup.SearchAndFetch(context.Background(), "Révolution", 2)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestWikipediaLookupErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{"server error", http.StatusInternalServerError, "oops"},
		{"malformed", http.StatusOK, "{not json"},
		{"api error", http.StatusOK, `{"error": {"code": "badvalue", "info": "bad"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.payload))
			}))
			defer server.Close()

			lookup := NewWikipediaLookup("fr", "savoir-test", WithAPIURL(server.URL))
			_, err := lookup.SearchAndFetch(context.Background(), "Thème", 3)
			assert.Error(t, err)

			// Through the fetcher the failure becomes placeholders
			refs := NewExternalFetcher(lookup, time.Second, nil).FetchExternal(context.Background(), "Thème", 3)
			assert.Equal(t, Placeholders("Thème", 3), refs)
		})
	}
}

func TestWikipediaLookupNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"batchcomplete": ""}`))
	}))
	defer server.Close()

	lookup := NewWikipediaLookup("fr", "savoir-test", WithAPIURL(server.URL))
	got, err := lookup.SearchAndFetch(context.Background(), "zzzz", 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}
