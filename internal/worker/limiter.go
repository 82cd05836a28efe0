package worker

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultBurst = 4

// Limiter spaces outbound requests per host (web pages and reference APIs)
type Limiter struct {
	mu    sync.Mutex
	hosts map[string]*rate.Limiter
	limit rate.Limit
	burst int
}

// NewLimiter creates a per-host limiter. A non-positive rate disables limiting
// until a host announces a crawl delay.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = defaultBurst
	}
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}
	return &Limiter{
		hosts: make(map[string]*rate.Limiter),
		limit: limit,
		burst: burst,
	}
}

// Wait blocks until a request to the host of rawURL is allowed
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	return l.WaitWithDelay(ctx, rawURL, 0)
}

// WaitWithDelay is Wait for a host that asked for crawlDelay between requests
// (robots.txt). Once seen, the slower pace sticks to the host.
func (l *Limiter) WaitWithDelay(ctx context.Context, rawURL string, crawlDelay time.Duration) error {
	host, err := extractHost(rawURL)
	if err != nil {
		return err
	}
	return l.forHost(host, crawlDelay).Wait(ctx)
}

func (l *Limiter) forHost(host string, crawlDelay time.Duration) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.hosts[host]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.hosts[host] = lim
	}
	if crawlDelay > 0 {
		if slower := rate.Every(crawlDelay); slower < lim.Limit() {
			lim.SetLimit(slower)
			lim.SetBurst(1)
		}
	}
	return lim
}

// extractHost returns the lower-cased host of an absolute URL
func extractHost(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("URL has no host: %s", rawURL)
	}
	return strings.ToLower(parsed.Host), nil
}
