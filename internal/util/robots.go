package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// robots.txt bodies above this size are truncated before parsing
const maxRobotsBytes = 512 << 10

// RobotsChecker answers whether a URL may be fetched. Parsed robots.txt
// files are kept per scheme and host for the lifetime of the checker.
type RobotsChecker struct {
	httpClient *http.Client
	userAgent  string
	agent      string

	mu    sync.RWMutex
	cache map[string]*robotstxt.RobotsData
}

// NewRobotsChecker creates a checker; a nil client gets a 10s default
func NewRobotsChecker(client *http.Client, userAgent string) *RobotsChecker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RobotsChecker{
		httpClient: client,
		userAgent:  userAgent,
		agent:      NormalizeUserAgent(userAgent),
		cache:      make(map[string]*robotstxt.RobotsData),
	}
}

// CanFetch reports whether rawURL is allowed and the crawl delay to honor.
// An unreachable or malformed robots.txt allows the fetch.
func (r *RobotsChecker) CanFetch(ctx context.Context, rawURL string) (bool, time.Duration, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, 0, fmt.Errorf("parse URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false, 0, fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}

	data, err := r.robotsFor(ctx, parsed)
	if err != nil {
		return true, 0, nil
	}

	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	if parsed.RawQuery != "" {
		path += "?" + parsed.RawQuery
	}

	group := data.FindGroup(r.agent)
	if group == nil {
		return true, 0, nil
	}
	return group.Test(path), group.CrawlDelay, nil
}

func (r *RobotsChecker) robotsFor(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	key := strings.ToLower(u.Scheme + "://" + u.Host)

	r.mu.RLock()
	data, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, key+"/robots.txt", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}

	// 4xx allows everything, 5xx disallows everything
	data, err = robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	r.mu.Lock()
	r.cache[key] = data
	r.mu.Unlock()
	return data, nil
}

// NormalizeUserAgent returns the product token of a user agent string,
// e.g. "Savoir/0.1 (+https://...)" becomes "Savoir".
func NormalizeUserAgent(ua string) string {
	parts := strings.Fields(ua)
	if len(parts) == 0 {
		return ua
	}
	return strings.Split(parts[0], "/")[0]
}
