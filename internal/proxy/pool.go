// Package proxy rotates outbound requests across a pool of proxies,
// skipping ones that recently failed.
package proxy

import "sync"

// Pool is a round-robin proxy rotation with failure tracking.
type Pool struct {
	mu      sync.Mutex
	proxies []string
	failed  map[string]bool
	index   int
}

// NewPool creates a pool over the given proxy URLs.
func NewPool(proxies []string) *Pool {
	return &Pool{
		proxies: proxies,
		failed:  make(map[string]bool),
	}
}

// Next returns the next healthy proxy in rotation, or "" when the pool is
// empty or every proxy is marked failed.
func (p *Pool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}
	for range p.proxies {
		candidate := p.proxies[p.index]
		p.index = (p.index + 1) % len(p.proxies)
		if !p.failed[candidate] {
			return candidate
		}
	}
	return ""
}

// MarkFailed removes a proxy from rotation until MarkHealthy.
func (p *Pool) MarkFailed(proxy string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[proxy] = true
}

// MarkHealthy returns a proxy to rotation.
func (p *Pool) MarkHealthy(proxy string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failed, proxy)
}

// Size returns the number of proxies in the pool, healthy or not.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.proxies)
}
