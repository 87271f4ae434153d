package middleware

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterEnforcesWindowLimit(t *testing.T) {
	limiter := NewRateLimiter()

	for i := 0; i < 3; i++ {
		if !limiter.Allow("stu-1", 3, time.Hour) {
			t.Fatalf("request %d denied inside the limit", i+1)
		}
	}
	if limiter.Allow("stu-1", 3, time.Hour) {
		t.Fatal("request over the limit was allowed")
	}
	// Another key has its own bucket.
	if !limiter.Allow("stu-2", 3, time.Hour) {
		t.Fatal("separate key shared a bucket")
	}
}

func TestRateLimiterResetsAfterWindow(t *testing.T) {
	limiter := NewRateLimiter()

	if !limiter.Allow("stu-1", 1, 10*time.Millisecond) {
		t.Fatal("first request denied")
	}
	if limiter.Allow("stu-1", 1, 10*time.Millisecond) {
		t.Fatal("second request allowed inside the window")
	}
	time.Sleep(20 * time.Millisecond)
	if !limiter.Allow("stu-1", 1, 10*time.Millisecond) {
		t.Fatal("request denied after the window expired")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	if got := ClientIP(req); got != "203.0.113.7" {
		t.Fatalf("ClientIP = %q, want the host part", got)
	}

	req.Header.Set("X-Forwarded-For", "198.51.100.9")
	if got := ClientIP(req); got != "198.51.100.9" {
		t.Fatalf("ClientIP = %q, want the forwarded address", got)
	}
}
