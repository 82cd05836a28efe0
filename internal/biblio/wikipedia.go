package biblio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/savoir/internal/cache"
	"github.com/ppiankov/savoir/internal/worker"
)

const (
	defaultWikipediaLang = "fr"
	maxAPIResponseBytes  = 2 << 20
)

// WikipediaLookup searches Wikipedia and returns references formatted as title and URL
type WikipediaLookup struct {
	apiURL     string
	lang       string
	userAgent  string
	httpClient *http.Client
	limiter    *worker.Limiter
	cache      cache.Cache
	cacheTTL   time.Duration
}

// WikipediaOption configures a WikipediaLookup
type WikipediaOption func(*WikipediaLookup)

// WithAPIURL overrides the api.php endpoint
func WithAPIURL(apiURL string) WikipediaOption {
	return func(w *WikipediaLookup) { w.apiURL = apiURL }
}

// WithHTTPClient sets the HTTP client
func WithHTTPClient(c *http.Client) WikipediaOption {
	return func(w *WikipediaLookup) {
		if c != nil {
			w.httpClient = c
		}
	}
}

// WithLimiter rate limits API calls
func WithLimiter(l *worker.Limiter) WikipediaOption {
	return func(w *WikipediaLookup) { w.limiter = l }
}

// WithCache stores successful lookups
func WithCache(c cache.Cache, ttl time.Duration) WikipediaOption {
	return func(w *WikipediaLookup) {
		w.cache = c
		w.cacheTTL = ttl
	}
}

// NewWikipediaLookup creates a lookup for the given language edition
func NewWikipediaLookup(lang, userAgent string, opts ...WikipediaOption) *WikipediaLookup {
	if lang == "" {
		lang = defaultWikipediaLang
	}
	w := &WikipediaLookup{
		apiURL:     fmt.Sprintf("https://%s.wikipedia.org/w/api.php", lang),
		lang:       lang,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      cache.Nop{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type wikipediaSearchResponse struct {
	Query struct {
		Pages map[string]struct {
			PageID  int    `json:"pageid"`
			Title   string `json:"title"`
			FullURL string `json:"fullurl"`
			Index   int    `json:"index"`
		} `json:"pages"`
	} `json:"query"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// SearchAndFetch searches for theme and resolves each hit to its canonical URL
func (w *WikipediaLookup) SearchAndFetch(ctx context.Context, theme string, limit int) ([]string, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" || limit <= 0 {
		return []string{}, nil
	}

	key := cache.Key("wikipedia", w.lang, theme, strconv.Itoa(limit))
	var cached []string
	if cache.GetJSON(w.cache, key, &cached) {
		return cached, nil
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("generator", "search")
	params.Set("gsrsearch", theme)
	params.Set("gsrlimit", strconv.Itoa(limit))
	params.Set("prop", "info")
	params.Set("inprop", "url")
	params.Set("format", "json")
	apiURL := w.apiURL + "?" + params.Encode()

	if w.limiter != nil {
		if err := w.limiter.Wait(ctx, apiURL); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	// Wikipedia API requires a descriptive User-Agent
	req.Header.Set("User-Agent", w.userAgent)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch wikipedia search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia API returned status %d", resp.StatusCode)
	}

	var apiResp wikipediaSearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxAPIResponseBytes)).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode wikipedia response: %w", err)
	}
	if apiResp.Error != nil {
		return nil, fmt.Errorf("wikipedia API error %s: %s", apiResp.Error.Code, apiResp.Error.Info)
	}

	type hit struct {
		title, url string
		index      int
	}
	hits := make([]hit, 0, len(apiResp.Query.Pages))
	for _, p := range apiResp.Query.Pages {
		if p.Title == "" || p.FullURL == "" {
			continue
		}
		hits = append(hits, hit{title: p.Title, url: p.FullURL, index: p.Index})
	}
	// Pages come back as a map; the search rank is in "index"
	sort.Slice(hits, func(i, j int) bool { return hits[i].index < hits[j].index })

	refs := make([]string, 0, len(hits))
	for _, h := range hits {
		refs = append(refs, h.title+" — "+h.url)
		if len(refs) == limit {
			break
		}
	}

	_ = cache.SetJSON(w.cache, key, refs, w.cacheTTL)
	return refs, nil
}
