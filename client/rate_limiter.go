package client

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket in front of API requests. It keeps an
// interactive client below the server's per-IP limit and slows down
// further after a 429.
type RateLimiter struct {
	mu sync.Mutex

	tokens         float64
	maxTokens      float64
	refillRate     float64 // tokens per second
	baseRate       float64
	lastRefillTime time.Time
}

// RateLimiterConfig holds configuration for the rate limiter
type RateLimiterConfig struct {
	MaxTokens  float64 // burst capacity
	RefillRate float64 // tokens per second
}

// DefaultRateLimiterConfig stays under the server's 100 requests a minute
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{MaxTokens: 10, RefillRate: 1.5}
}

// NewRateLimiter creates a new rate limiter with the given config
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.MaxTokens < 1 {
		config.MaxTokens = 1
	}
	if config.RefillRate <= 0 {
		config.RefillRate = DefaultRateLimiterConfig().RefillRate
	}
	return &RateLimiter{
		tokens:         config.MaxTokens,
		maxTokens:      config.MaxTokens,
		refillRate:     config.RefillRate,
		baseRate:       config.RefillRate,
		lastRefillTime: time.Now(),
	}
}

// Wait blocks until a token is available or ctx is done
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		r.refillTokens()
		if r.tokens >= 1 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		waitTime := time.Duration((1 - r.tokens) / r.refillRate * float64(time.Second))
		r.mu.Unlock()

		timer := time.NewTimer(waitTime)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// TryAcquire takes a token without blocking
func (r *RateLimiter) TryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refillTokens()
	if r.tokens >= 1 {
		r.tokens--
		return true
	}
	return false
}

// Backoff divides the refill rate after the server rejected a request,
// down to a tenth of the configured rate
func (r *RateLimiter) Backoff(multiplier float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refillTokens()
	r.tokens = 0
	r.refillRate = max(r.refillRate/multiplier, r.baseRate/10)
}

// Reset restores the configured refill rate
func (r *RateLimiter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refillRate = r.baseRate
}

// refillTokens adds tokens based on elapsed time (must be called with lock held)
func (r *RateLimiter) refillTokens() {
	now := time.Now()
	elapsed := now.Sub(r.lastRefillTime).Seconds()
	r.tokens = min(r.tokens+elapsed*r.refillRate, r.maxTokens)
	r.lastRefillTime = now
}

func (r *RateLimiter) rate() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refillRate
}
