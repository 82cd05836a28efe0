package util

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://proxy:3128", "http://secure-proxy:3128", "internal.example, 10.0.0.0/8")

	cases := []struct {
		target string
		want   string
	}{
		{"http://fr.wikipedia.org/w/api.php", "http://proxy:3128"},
		{"https://fr.wikipedia.org/w/api.php", "http://secure-proxy:3128"},
		{"https://internal.example/page", ""},
		{"http://10.1.2.3/page", ""},
	}
	for _, tc := range cases {
		u, _ := url.Parse(tc.target)
		got, err := proxy(&http.Request{URL: u})
		if err != nil {
			t.Fatalf("%s: %v", tc.target, err)
		}
		gotStr := ""
		if got != nil {
			gotStr = got.String()
		}
		if gotStr != tc.want {
			t.Errorf("%s: expected proxy %q, got %q", tc.target, tc.want, gotStr)
		}
	}
}

func TestRobotsChecker_CanFetch(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		_, _ = fmt.Fprint(w, "User-agent: Savoir\nDisallow: /private\nCrawl-delay: 2\n\nUser-agent: *\nDisallow: /\n")
	}))
	defer server.Close()

	checker := NewRobotsChecker(server.Client(), "Savoir/0.1 (+https://example.com)")
	ctx := context.Background()

	allowed, delay, err := checker.CanFetch(ctx, server.URL+"/articles/1")
	if err != nil {
		t.Fatalf("CanFetch failed: %v", err)
	}
	if !allowed {
		t.Error("expected /articles/1 to be allowed")
	}
	if delay != 2*time.Second {
		t.Errorf("expected crawl delay 2s, got %v", delay)
	}

	allowed, _, _ = checker.CanFetch(ctx, server.URL+"/private/notes")
	if allowed {
		t.Error("expected /private to be disallowed")
	}

	if n := hits.Load(); n != 1 {
		t.Errorf("expected robots.txt fetched once, got %d", n)
	}
}

func TestRobotsChecker_MissingRobotsAllows(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	checker := NewRobotsChecker(server.Client(), "Savoir/0.1")
	allowed, _, err := checker.CanFetch(context.Background(), server.URL+"/anything")
	if err != nil || !allowed {
		t.Errorf("expected allowed with no error, got %v %v", allowed, err)
	}
}

func TestRobotsChecker_RejectsNonHTTP(t *testing.T) {
	checker := NewRobotsChecker(nil, "Savoir/0.1")
	if _, _, err := checker.CanFetch(context.Background(), "ftp://example.com/file"); err == nil {
		t.Error("expected error for ftp scheme")
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	if got := NormalizeUserAgent("Savoir/0.1 (+https://github.com/ppiankov/savoir)"); got != "Savoir" {
		t.Errorf("expected Savoir, got %q", got)
	}
	if got := NormalizeUserAgent(""); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}
