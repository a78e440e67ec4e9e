// Package ratelimit provides per-domain request throttling so clients do
// not overwhelm the sites they scrape.
package ratelimit

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter controls request rates, typically per host.
type RateLimiter interface {
	// Wait blocks until a request for the given URL may proceed, or the
	// context is cancelled.
	Wait(ctx context.Context, urlStr string) error

	// Allow reports whether a request for the given URL may proceed
	// immediately without blocking.
	Allow(urlStr string) bool
}

// DomainLimiter applies a token-bucket limit independently per host.
type DomainLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	perHost  rate.Limit
	burst    int
}

// NewDomainLimiter creates a limiter allowing requestsPerSecond per host
// with the given burst capacity. Non-positive arguments fall back to
// 2 req/s and a burst of 5, matching the configuration defaults.
func NewDomainLimiter(requestsPerSecond float64, burst int) *DomainLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2.0
	}
	if burst <= 0 {
		burst = 5
	}
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// Wait blocks until the request for urlStr may proceed.
func (dl *DomainLimiter) Wait(ctx context.Context, urlStr string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return dl.limiterFor(urlStr).Wait(ctx)
}

// Allow reports whether the request for urlStr may proceed immediately.
func (dl *DomainLimiter) Allow(urlStr string) bool {
	return dl.limiterFor(urlStr).Allow()
}

// limiterFor returns the per-host limiter, creating it on first use.
// Unparsable URLs share one bucket under the empty host.
func (dl *DomainLimiter) limiterFor(urlStr string) *rate.Limiter {
	host := ""
	if u, err := url.Parse(urlStr); err == nil {
		host = u.Host
	}

	dl.mu.RLock()
	lim, ok := dl.limiters[host]
	dl.mu.RUnlock()
	if ok {
		return lim
	}

	dl.mu.Lock()
	defer dl.mu.Unlock()
	if lim, ok = dl.limiters[host]; ok {
		return lim
	}
	lim = rate.NewLimiter(dl.perHost, dl.burst)
	dl.limiters[host] = lim
	return lim
}
