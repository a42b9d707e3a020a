package llm

import (
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/claimdesk/internal/model"
)

const defaultCacheTTL = 30 * time.Minute

// cacheEntry represents cached shop suggestions for one location.
type cacheEntry struct {
	expiry time.Time
	shops  []model.RepairShopSuggestion
}

// suggestionCache provides thread-safe caching of repair shop suggestions
// keyed by normalized location.
type suggestionCache struct {
	entries map[string]cacheEntry
	now     func() time.Time
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.RWMutex
	once    sync.Once
}

// newSuggestionCache creates a new cache with the specified TTL.
func newSuggestionCache(ttl time.Duration) *suggestionCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	cache := &suggestionCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

// locationKey normalizes case and whitespace so equivalent locations share an entry.
func locationKey(location string) string {
	return strings.ToLower(strings.Join(strings.Fields(location), " "))
}

// get returns a copy of the cached shops for location if present and fresh.
func (c *suggestionCache) get(location string) ([]model.RepairShopSuggestion, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[locationKey(location)]
	if !exists || c.now().After(entry.expiry) {
		return nil, false
	}

	return copyShops(entry.shops), true
}

// set stores shops for location.
func (c *suggestionCache) set(location string, shops []model.RepairShopSuggestion) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[locationKey(location)] = cacheEntry{
		shops:  copyShops(shops),
		expiry: c.now().Add(c.ttl),
	}
}

// cleanup periodically removes expired entries.
func (c *suggestionCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *suggestionCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiry) {
			delete(c.entries, key)
		}
	}
}

// size returns the number of entries in the cache.
func (c *suggestionCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *suggestionCache) Close() {
	c.once.Do(func() { close(c.stopCh) })
}

func copyShops(shops []model.RepairShopSuggestion) []model.RepairShopSuggestion {
	out := make([]model.RepairShopSuggestion, len(shops))
	for i, shop := range shops {
		out[i] = shop
		if shop.Rating != nil {
			rating := *shop.Rating
			out[i].Rating = &rating
		}
	}
	return out
}
