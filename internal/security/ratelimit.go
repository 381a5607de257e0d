package security

import (
	"sync"
	"time"
)

// RateLimiter implements a token-bucket limiter keyed by an identifier
// (client IP or user id). Thread-safe.
type RateLimiter struct {
	buckets map[string]*bucket
	mu      sync.Mutex

	maxTokens  int           // bucket capacity
	refillRate time.Duration // time to earn one token back

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// NewRateLimiter creates a limiter allowing maxTokens requests per
// identifier, refilling one token every refillRate.
//
//	// 5 login attempts per minute:
//	limiter := NewRateLimiter(5, 12*time.Second)
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:     make(map[string]*bucket),
		maxTokens:   maxTokens,
		refillRate:  refillRate,
		stopCleanup: make(chan struct{}),
	}

	rl.cleanupTicker = time.NewTicker(10 * time.Minute)
	go rl.cleanupLoop()

	return rl
}

// Allow reports whether a request from the identifier may proceed, and
// consumes a token if so.
func (rl *RateLimiter) Allow(identifier string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[identifier]
	if !ok {
		rl.buckets[identifier] = &bucket{
			tokens:     rl.maxTokens - 1,
			lastRefill: time.Now(),
		}
		return true
	}

	elapsed := time.Since(b.lastRefill)
	if refill := int(elapsed / rl.refillRate); refill > 0 {
		b.tokens += refill
		if b.tokens > rl.maxTokens {
			b.tokens = rl.maxTokens
		}
		b.lastRefill = time.Now()
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

// Reset clears the limiter state for an identifier.
func (rl *RateLimiter) Reset(identifier string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, identifier)
}

// Stop terminates the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.cleanupTicker.Stop()
	close(rl.stopCleanup)
}

// cleanupLoop drops buckets idle long enough to be fully refilled, so the
// map does not grow without bound.
func (rl *RateLimiter) cleanupLoop() {
	for {
		select {
		case <-rl.cleanupTicker.C:
			cutoff := time.Duration(rl.maxTokens) * rl.refillRate
			rl.mu.Lock()
			for id, b := range rl.buckets {
				if time.Since(b.lastRefill) > cutoff {
					delete(rl.buckets, id)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCleanup:
			return
		}
	}
}
