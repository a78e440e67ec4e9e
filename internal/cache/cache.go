// Package cache provides in-memory caching of fetched pages with LRU
// eviction, keeping repeated catalog walks from re-fetching unchanged pages.
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scrapeworks/discovery/pkg/models"
)

// Cache stores fetched pages by key.
type Cache interface {
	// Get retrieves a cached page. The second return reports a hit.
	Get(key string) (*models.PageData, bool)

	// Set stores a page with the given TTL, evicting old entries as needed.
	Set(key string, data *models.PageData, ttl time.Duration)

	// Delete removes a cached page; no-op for an absent key.
	Delete(key string)

	// Clear removes all cached pages.
	Clear()
}

type entry struct {
	data      *models.PageData
	expiresAt time.Time
	key       string
	size      int64
}

// MemoryCache is an in-memory Cache with byte-budget LRU eviction.
type MemoryCache struct {
	mu      sync.Mutex
	store   map[string]*list.Element
	lru     *list.List
	maxSize int64
	size    int64
	hits    uint64
	misses  uint64
}

// NewMemoryCache creates a cache bounded to maxSizeBytes (100MB when
// non-positive).
func NewMemoryCache(maxSizeBytes int64) *MemoryCache {
	if maxSizeBytes <= 0 {
		maxSizeBytes = 100 * 1024 * 1024
	}
	return &MemoryCache{
		store:   make(map[string]*list.Element),
		lru:     list.New(),
		maxSize: maxSizeBytes,
	}
}

// Get retrieves a cached page, expiring it lazily and refreshing its LRU
// position on a hit.
func (mc *MemoryCache) Get(key string) (*models.PageData, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	el, ok := mc.store[key]
	if !ok {
		mc.misses++
		return nil, false
	}

	e := el.Value.(*entry)
	if time.Now().After(e.expiresAt) {
		mc.removeLocked(el)
		mc.misses++
		return nil, false
	}

	mc.lru.MoveToFront(el)
	mc.hits++
	return e.data, true
}

// Set stores a page under key with the given TTL (5 minutes when
// non-positive), evicting least-recently-used entries to stay within the
// byte budget.
func (mc *MemoryCache) Set(key string, data *models.PageData, ttl time.Duration) {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	// Rough size: payload strings plus fixed struct overhead.
	size := int64(len(data.HTML)+len(data.Content)+len(data.Title)) + 1024

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if el, ok := mc.store[key]; ok {
		mc.removeLocked(el)
	}

	for mc.size+size > mc.maxSize && mc.lru.Len() > 0 {
		mc.removeLocked(mc.lru.Back())
	}

	e := &entry{data: data, expiresAt: time.Now().Add(ttl), key: key, size: size}
	mc.store[key] = mc.lru.PushFront(e)
	mc.size += size

	log.Debug().
		Str("key", key).
		Dur("ttl", ttl).
		Int64("size_bytes", size).
		Msg("Cached page")
}

// Delete removes a cached page.
func (mc *MemoryCache) Delete(key string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if el, ok := mc.store[key]; ok {
		mc.removeLocked(el)
	}
}

// Clear removes all cached pages and resets counters.
func (mc *MemoryCache) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.store = make(map[string]*list.Element)
	mc.lru = list.New()
	mc.size = 0
	mc.hits = 0
	mc.misses = 0
}

// Stats returns hit and miss counts since creation or the last Clear.
func (mc *MemoryCache) Stats() (hits, misses uint64) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.hits, mc.misses
}

// removeLocked unlinks an element; caller holds mu.
func (mc *MemoryCache) removeLocked(el *list.Element) {
	e := el.Value.(*entry)
	mc.lru.Remove(el)
	delete(mc.store, e.key)
	mc.size -= e.size
}
