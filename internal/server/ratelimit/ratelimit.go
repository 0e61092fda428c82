// Package ratelimit provides per-client token bucket rate limiting for the
// HTTP API.
package ratelimit

import (
	"strings"
	"sync"
	"time"
)

// idleBucketTTL is how long an unused bucket is kept.
const idleBucketTTL = time.Hour

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int // Zero for unlimited requests
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// bucket refills continuously at rate tokens per second up to capacity.
type bucket struct {
	capacity float64
	rate     float64
	tokens   float64
	last     time.Time
}

func newBucket(capacity int, rate float64, now time.Time) *bucket {
	return &bucket{capacity: float64(capacity), rate: rate, tokens: float64(capacity), last: now}
}

func (b *bucket) refill(now time.Time) {
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = min(b.capacity, b.tokens+elapsed*b.rate)
	}
	b.last = now
}

// take consumes one token when available. reset is when the bucket will be
// full again and retry is the wait until the next whole token.
func (b *bucket) take(now time.Time) (ok bool, remaining int, reset time.Time, retry time.Duration) {
	b.refill(now)
	if b.tokens >= 1 {
		b.tokens--
		ok = true
	}
	reset = now
	if b.rate <= 0 {
		return ok, int(b.tokens), reset, 0
	}
	if missing := b.capacity - b.tokens; missing > 0 {
		reset = now.Add(seconds(missing / b.rate))
	}
	if !ok {
		retry = seconds((1 - b.tokens) / b.rate)
	}
	return ok, int(b.tokens), reset, retry
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Limiter manages rate limiting for multiple clients. Buckets are keyed by
// client, path and method. It is safe for concurrent use.
type Limiter struct {
	config *Config
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewLimiter creates a rate limiter. A nil config uses DefaultConfig. A
// background sweep of idle buckets runs until Stop when CleanupInterval is
// positive.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = DefaultConfig()
	}
	l := &Limiter{
		config:  config,
		now:     time.Now,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if config.Enabled && config.CleanupInterval > 0 {
		go l.cleanup(config.CleanupInterval)
	} else {
		close(l.done)
	}
	return l
}

// Allow checks whether a request from clientID to path is allowed and
// consumes a token when it is.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{}
	}

	endpoint := MatchEndpoint(path, method, l.config.EndpointConfigs)
	if endpoint == nil {
		endpoint = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
		}
	}
	if endpoint.Limit <= 0 || endpoint.Window <= 0 {
		return true, Info{Allowed: true}
	}

	now := l.now()
	key := clientID + ":" + path + ":" + method

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		capacity := endpoint.Burst
		if capacity <= 0 {
			capacity = endpoint.Limit
		}
		b = newBucket(capacity, float64(endpoint.Limit)/endpoint.Window.Seconds(), now)
		l.buckets[key] = b
	}
	allowed, remaining, reset, retry := b.take(now)
	l.mu.Unlock()

	return allowed, Info{
		Allowed:    allowed,
		Limit:      endpoint.Limit,
		Remaining:  remaining,
		ResetTime:  reset,
		RetryAfter: retry,
	}
}

// MatchEndpoint returns the configuration for a request. Exact paths win
// over prefixes; a configured path ending in "/" matches every path below
// it. GET /health is unlimited. It returns nil when nothing matches.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == "GET" {
		return &EndpointConfig{Path: path, Method: method}
	}
	for i := range configs {
		if configs[i].Method == method && configs[i].Path == path {
			return &configs[i]
		}
	}
	for i := range configs {
		c := &configs[i]
		if c.Method == method && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			return c
		}
	}
	return nil
}

func (l *Limiter) cleanup(interval time.Duration) {
	defer close(l.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep(idleBucketTTL)
		case <-l.stop:
			return
		}
	}
}

// sweep drops buckets untouched for longer than idle.
func (l *Limiter) sweep(idle time.Duration) {
	cutoff := l.now().Add(-idle)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.last.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Stop stops the cleanup goroutine and waits for it to exit.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
	<-l.done
}
