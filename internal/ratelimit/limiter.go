package ratelimit

import (
	"context"
	"sync"
	"time"
)

// NotifyFunc is called when a caller is about to wait a noticeable time for
// capacity. wait is the expected delay.
type NotifyFunc func(scope Scope, wait time.Duration)

// RateLimiter implements a token bucket rate limiter.
// It allows bursts up to maxTokens, then refills at refillRate tokens/second.
type RateLimiter struct {
	scope         Scope
	tokens        float64   // Current number of tokens available
	maxTokens     float64   // Maximum bucket capacity
	refillRate    float64   // Tokens added per second
	lastRefill    time.Time // Last time tokens were refilled
	cooldownUntil time.Time // No tokens are handed out before this time
	lastNotify    time.Time
	notify        NotifyFunc
	mu            sync.Mutex
}

// NewRateLimiter creates a new rate limiter.
//
// Parameters:
//   - tokensPerSecond: Rate at which tokens are added (e.g., 3.0 for 3 tokens/second)
//   - burstSize: Maximum tokens that can accumulate (allows brief bursts)
func NewRateLimiter(tokensPerSecond float64, burstSize float64) *RateLimiter {
	return &RateLimiter{
		tokens:     burstSize, // Start with full bucket
		maxTokens:  burstSize,
		refillRate: tokensPerSecond,
		lastRefill: time.Now(),
	}
}

// SetNotify installs a callback for long waits. nil disables notifications.
func (rl *RateLimiter) SetNotify(scope Scope, fn NotifyFunc) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.scope = scope
	rl.notify = fn
}

// Wait blocks until a token is available or context is cancelled.
// Returns an error if the context is cancelled before a token becomes available.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl.tryAcquire() {
		return nil
	}

	rl.maybeNotify(rl.timeUntilNextToken())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if rl.tryAcquire() {
			return nil
		}

		timer := time.NewTimer(rl.timeUntilNextToken())
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (rl *RateLimiter) maybeNotify(wait time.Duration) {
	if wait < WarnWaitThreshold {
		return
	}
	rl.mu.Lock()
	fn, scope := rl.notify, rl.scope
	if fn == nil || time.Since(rl.lastNotify) < NotifyMinInterval {
		rl.mu.Unlock()
		return
	}
	rl.lastNotify = time.Now()
	rl.mu.Unlock()
	fn(scope, wait)
}

// tryAcquire attempts to acquire one token without blocking.
// Returns true if a token was acquired, false otherwise.
func (rl *RateLimiter) tryAcquire() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.refillLocked(now)

	if now.Before(rl.cooldownUntil) {
		return false
	}
	if rl.tokens >= 1.0 {
		rl.tokens -= 1.0
		return true
	}
	return false
}

func (rl *RateLimiter) refillLocked(now time.Time) {
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now
}

// timeUntilNextToken calculates how long to wait until at least one token is
// available, including any active cooldown.
func (rl *RateLimiter) timeUntilNextToken() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	var wait time.Duration
	if now.Before(rl.cooldownUntil) {
		wait = rl.cooldownUntil.Sub(now)
	}

	tokensNeeded := 1.0 - rl.tokens
	if tokensNeeded > 0 {
		refill := time.Duration(tokensNeeded / rl.refillRate * float64(time.Second))
		if refill > wait {
			wait = refill
		}
	}
	if wait <= 0 {
		// Float rounding can leave the bucket a hair under one token.
		wait = time.Millisecond
	}
	return wait
}

// Drain empties the bucket. Used when the server answers 429.
func (rl *RateLimiter) Drain() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refillLocked(time.Now())
	rl.tokens = 0
}

// SetCooldown blocks acquisition for d. A cooldown never shortens one that is
// already running.
func (rl *RateLimiter) SetCooldown(d time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	until := time.Now().Add(d)
	if until.After(rl.cooldownUntil) {
		rl.cooldownUntil = until
	}
}

// CooldownRemaining returns the time left on the current cooldown, or zero.
func (rl *RateLimiter) CooldownRemaining() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	d := time.Until(rl.cooldownUntil)
	if d < 0 {
		return 0
	}
	return d
}

// GetCurrentTokens returns the current number of tokens (for testing/debugging).
func (rl *RateLimiter) GetCurrentTokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	elapsed := time.Since(rl.lastRefill).Seconds()
	tokens := rl.tokens + (elapsed * rl.refillRate)
	if tokens > rl.maxTokens {
		tokens = rl.maxTokens
	}
	return tokens
}
