package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter for a single client
type Limiter struct {
	limiter  *rate.Limiter
	key      string
	lastSeen time.Time
}

// newLimiter creates a limiter for one client key
// perMinute specifies the number of requests allowed per minute
func newLimiter(key string, perMinute int) *Limiter {
	// Convert per-minute rate to per-second
	rps := float64(perMinute) / 60.0
	// Allow burst of up to 5 requests or 1/10th of per-minute limit
	burst := perMinute / 10
	if burst < 1 {
		burst = 1
	}
	if burst > 5 {
		burst = 5
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		key:     key,
	}
}

// Allow reports whether an event may happen now
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Key returns the client key this limiter belongs to
func (l *Limiter) Key() string {
	return l.key
}

// ClientLimiter manages one rate limiter per client key, creating
// limiters lazily and evicting clients not seen for a while.
type ClientLimiter struct {
	limiters  map[string]*Limiter
	perMinute int
	mu        sync.Mutex
}

// NewClientLimiter creates a per-client limiter with a shared rate
func NewClientLimiter(perMinute int) *ClientLimiter {
	return &ClientLimiter{
		limiters:  make(map[string]*Limiter),
		perMinute: perMinute,
	}
}

// Allow reports whether the client identified by key may proceed now
func (c *ClientLimiter) Allow(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.limiters[key]
	if !ok {
		l = newLimiter(key, c.perMinute)
		c.limiters[key] = l
	}
	l.lastSeen = time.Now()
	return l.Allow()
}

// Get returns the limiter for a key, or nil if none exists yet
func (c *ClientLimiter) Get(key string) *Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.limiters[key]
}

// Evict removes client limiters idle for longer than maxIdle and
// returns how many were removed.
func (c *ClientLimiter) Evict(maxIdle time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	evicted := 0
	for key, l := range c.limiters {
		if l.lastSeen.Before(cutoff) {
			delete(c.limiters, key)
			evicted++
		}
	}
	return evicted
}
