package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/ppiankov/savoir/internal/extract"
	"github.com/ppiankov/savoir/internal/logger"
	"github.com/ppiankov/savoir/internal/model"
	"github.com/ppiankov/savoir/internal/util"
	"github.com/ppiankov/savoir/internal/worker"
)

// WebDir is where fetched pages are kept, relative to the base directory
var WebDir = filepath.Join("data", "corpus", "web")

// ErrRobotsDisallowed is returned when robots.txt forbids fetching a URL
var ErrRobotsDisallowed = errors.New("disallowed by robots.txt")

const (
	maxAttempts    = 3
	maxSafeNameLen = 80
)

// fetchSleepFunc is swapped in tests to skip retry backoff
var fetchSleepFunc = time.Sleep

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// WebFetcher retrieves web pages for ingestion
type WebFetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	limiter    *worker.Limiter
	robots     *util.RobotsChecker
	log        *logger.Logger
}

// WebOption configures a WebFetcher
type WebOption func(*WebFetcher)

// WithRateLimiter throttles requests per host
func WithRateLimiter(l *worker.Limiter) WebOption {
	return func(f *WebFetcher) { f.limiter = l }
}

// WithRobots checks robots.txt before each fetch
func WithRobots(r *util.RobotsChecker) WebOption {
	return func(f *WebFetcher) { f.robots = r }
}

// WithWebLogger sets the logger
func WithWebLogger(l *logger.Logger) WebOption {
	return func(f *WebFetcher) { f.log = l }
}

// NewWebFetcher creates a fetcher; a nil client gets a 10s default
func NewWebFetcher(client *http.Client, userAgent string, maxBytes int64, opts ...WebOption) *WebFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if maxBytes <= 0 {
		maxBytes = 5_000_000
	}
	f := &WebFetcher{
		httpClient: client,
		userAgent:  userAgent,
		maxBytes:   maxBytes,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchResult contains the fetched body and where it came from
type FetchResult struct {
	Body        []byte
	ContentType string
	FinalURL    string
}

// Fetch retrieves rawURL once. Any status other than 200 is a FetchError.
func (f *WebFetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9,en;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}

	return &FetchResult{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// FetchWithRetry retries transport errors, 429 and 5xx with linear backoff
func (f *WebFetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retryable(err) || ctx.Err() != nil || attempt == maxAttempts {
			break
		}
		f.log.Debug("retrying fetch", "url", rawURL, "attempt", attempt, "error", err)
		fetchSleepFunc(time.Duration(attempt) * 500 * time.Millisecond)
	}
	return nil, lastErr
}

func retryable(err error) bool {
	var fe *FetchError
	if !errors.As(err, &fe) {
		return false
	}
	if fe.StatusCode == 0 {
		return !errors.Is(fe.Err, context.Canceled) && !errors.Is(fe.Err, context.DeadlineExceeded)
	}
	return fe.StatusCode == http.StatusTooManyRequests || fe.StatusCode >= 500
}

// Page fetches rawURL and builds a document from its text. The raw HTML is
// saved under the web directory of baseDir.
func (f *WebFetcher) Page(ctx context.Context, baseDir, rawURL string) (*model.NewDocument, error) {
	var crawlDelay time.Duration
	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, &FetchError{URL: rawURL, Err: err}
		}
		if !allowed {
			return nil, &FetchError{URL: rawURL, Err: ErrRobotsDisallowed}
		}
		crawlDelay = delay
	}

	if f.limiter != nil {
		if err := f.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
			return nil, &FetchError{URL: rawURL, Err: err}
		}
	}

	result, err := f.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	page, err := extract.HTML(bytes.NewReader(result.Body))
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", rawURL, err)
	}
	if page.Text == "" {
		return nil, fmt.Errorf("%s: %w", rawURL, ErrEmptyContent)
	}

	title := page.Title
	if title == "" {
		title = rawURL
	}
	title = NormaliseTitle(title)

	saved, err := saveHTML(baseDir, title, result.Body)
	if err != nil {
		return nil, err
	}

	f.log.Info("page fetched", "url", rawURL, "title", title, "bytes", len(result.Body))
	return &model.NewDocument{
		Title:       title,
		SourceType:  model.SourceURL,
		SourcePath:  saved,
		URL:         rawURL,
		TextContent: page.Text,
	}, nil
}

// SafeHTMLName maps a title to a file stem of ASCII letters, digits, '_' and '-'
func SafeHTMLName(title string) string {
	safe := unsafeNameChars.ReplaceAllString(title, "_")
	if len(safe) > maxSafeNameLen {
		safe = safe[:maxSafeNameLen]
	}
	return safe
}

func saveHTML(baseDir, title string, body []byte) (string, error) {
	dir := filepath.Join(baseDir, WebDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create web dir: %w", err)
	}
	path := filepath.Join(dir, SafeHTMLName(title)+".html")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("save page: %w", err)
	}
	return path, nil
}
