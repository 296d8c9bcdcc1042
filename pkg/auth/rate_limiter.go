package auth

import (
	"context"
	"sync"
	"time"
)

// RateLimiter provides rate limiting functionality
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// TokenBucketLimiter implements token bucket rate limiting
type TokenBucketLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	maxTokens  int
	refillRate time.Duration
	idleTTL    time.Duration
	now        func() time.Time
	stop       chan struct{}
	stopOnce   sync.Once
}

type bucket struct {
	tokens     int
	lastRefill time.Time
	lastSeen   time.Time
}

// NewTokenBucketLimiter creates a limiter holding up to maxTokens per key,
// adding one token every refillRate
func NewTokenBucketLimiter(maxTokens int, refillRate time.Duration) *TokenBucketLimiter {
	l := &TokenBucketLimiter{
		buckets:    make(map[string]*bucket),
		maxTokens:  maxTokens,
		refillRate: refillRate,
		idleTTL:    time.Hour,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	go l.cleanup(5 * time.Minute)
	return l
}

// NewPerMinuteLimiter allows requestsPerMinute with a burst of the same size
func NewPerMinuteLimiter(requestsPerMinute int) *TokenBucketLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 1
	}
	return NewTokenBucketLimiter(requestsPerMinute, time.Minute/time.Duration(requestsPerMinute))
}

// Allow checks if a request is allowed
func (l *TokenBucketLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.maxTokens, lastRefill: now}
		l.buckets[key] = b
	}
	b.lastSeen = now

	if add := int(now.Sub(b.lastRefill) / l.refillRate); add > 0 {
		b.tokens += add
		if b.tokens > l.maxTokens {
			b.tokens = l.maxTokens
		}
		b.lastRefill = b.lastRefill.Add(time.Duration(add) * l.refillRate)
	}

	if b.tokens == 0 {
		return false, nil
	}
	b.tokens--
	return true, nil
}

// Reset resets the rate limit for a key
func (l *TokenBucketLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
	return nil
}

// Stop ends the cleanup goroutine
func (l *TokenBucketLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *TokenBucketLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.evictIdle()
		}
	}
}

func (l *TokenBucketLimiter) evictIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idleTTL {
			delete(l.buckets, key)
		}
	}
}

// ScopedLimiter prefixes keys so one limiter can back several scopes
type ScopedLimiter struct {
	scope   string
	limiter RateLimiter
}

// NewScopedLimiter wraps limiter under scope, e.g. "ip" or "user"
func NewScopedLimiter(scope string, limiter RateLimiter) *ScopedLimiter {
	return &ScopedLimiter{scope: scope, limiter: limiter}
}

// Allow checks if a request for key is allowed in this scope
func (l *ScopedLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return l.limiter.Allow(ctx, l.scope+":"+key)
}

// Reset resets key in this scope
func (l *ScopedLimiter) Reset(ctx context.Context, key string) error {
	return l.limiter.Reset(ctx, l.scope+":"+key)
}
