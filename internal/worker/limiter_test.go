package worker

import (
	"context"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.burst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.burst)
	}

	l2 := NewLimiter(10, -1)
	if l2.burst != defaultBurst {
		t.Errorf("expected default burst for negative input, got %d", l2.burst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "http://example.com/foo"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "https://fr.wikipedia.org/w/api.php"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "not a url"); err == nil {
		t.Error("expected error for URL without host")
	}
}

func TestLimiter_CrawlDelay(t *testing.T) {
	limiter := NewLimiter(100, 4)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 2; i++ {
		if err := limiter.WaitWithDelay(ctx, "http://example.com/page", 50*time.Millisecond); err != nil {
			t.Fatalf("WaitWithDelay failed: %v", err)
		}
	}
	if d := time.Since(start); d < 40*time.Millisecond {
		t.Errorf("expected the second request to wait for the crawl delay, took %v", d)
	}

	// The slower pace sticks to the host
	if got := limiter.forHost("example.com", 0).Limit(); got != rate.Every(50*time.Millisecond) {
		t.Errorf("expected crawl-delay rate, got %v", got)
	}

	// A delay faster than the configured rate changes nothing
	if got := limiter.forHost("fast.example", time.Millisecond).Limit(); got != rate.Limit(100) {
		t.Errorf("expected configured rate, got %v", got)
	}
}

func TestLimiter_PerHost(t *testing.T) {
	// 1 rps, burst 1: the second call on the same host must wait
	limiter := NewLimiter(1, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "http://example.com"); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(short, "http://EXAMPLE.com/other"); err == nil {
		t.Error("expected second request on same host to be throttled")
	}

	if err := limiter.Wait(ctx, "http://other.com"); err != nil {
		t.Errorf("expected other host to pass: %v", err)
	}
}

func TestLimiter_DisabledHonorsCrawlDelay(t *testing.T) {
	limiter := NewLimiter(0, 1)
	if got := limiter.forHost("slow.example", time.Second).Limit(); got != rate.Every(time.Second) {
		t.Errorf("expected crawl delay to apply without a configured rate, got %v", got)
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(0, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	for i := 0; i < 10; i++ {
		if err := limiter.Wait(ctx, "http://example.com"); err != nil {
			t.Fatalf("expected unlimited rate, got %v", err)
		}
	}
}

func TestExtractHost(t *testing.T) {
	host, err := extractHost("http://Example.com:8080/foo")
	if err != nil {
		t.Fatalf("extractHost failed: %v", err)
	}
	if host != "example.com:8080" {
		t.Errorf("expected example.com:8080, got %s", host)
	}

	if _, err := extractHost("::invalid"); err == nil {
		t.Errorf("expected error for invalid URL")
	}
}
