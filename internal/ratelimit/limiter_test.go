package ratelimit

import (
	"testing"
	"time"
)

func TestNewLimiterBurst(t *testing.T) {
	limiter := newLimiter("test", 60) // 60 per minute = 1 per second

	if limiter.Key() != "test" {
		t.Errorf("Expected key 'test', got '%s'", limiter.Key())
	}

	// First few requests should be allowed immediately (burst)
	for i := 0; i < 3; i++ {
		if !limiter.Allow() {
			t.Errorf("Request %d should have been allowed", i)
		}
	}
}

func TestClientLimiterIsolation(t *testing.T) {
	cl := NewClientLimiter(60)

	// Exhaust one client's burst
	for i := 0; i < 10; i++ {
		cl.Allow("client-a")
	}
	if cl.Allow("client-a") {
		t.Error("client-a should be rate limited after burst")
	}

	// A different client still has its full burst
	if !cl.Allow("client-b") {
		t.Error("client-b should not be affected by client-a's usage")
	}
}

func TestClientLimiterLazyCreation(t *testing.T) {
	cl := NewClientLimiter(60)

	if cl.Get("unseen") != nil {
		t.Error("Limiter should not exist before first request")
	}

	cl.Allow("seen")
	if cl.Get("seen") == nil {
		t.Error("Limiter should exist after first request")
	}
}

func TestClientLimiterEvict(t *testing.T) {
	cl := NewClientLimiter(60)

	cl.Allow("stale")
	cl.Get("stale").lastSeen = time.Now().Add(-10 * time.Minute)
	cl.Allow("fresh")

	evicted := cl.Evict(5 * time.Minute)
	if evicted != 1 {
		t.Errorf("Expected 1 evicted limiter, got %d", evicted)
	}
	if cl.Get("stale") != nil {
		t.Error("Stale limiter should have been evicted")
	}
	if cl.Get("fresh") == nil {
		t.Error("Fresh limiter should survive eviction")
	}
}

func TestClientLimiterMinimumBurst(t *testing.T) {
	cl := NewClientLimiter(1) // very slow rate, burst clamps to 1

	if !cl.Allow("slow") {
		t.Error("First request should always be allowed")
	}
	if cl.Allow("slow") {
		t.Error("Second immediate request should be rejected at 1/min")
	}
}
