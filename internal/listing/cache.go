package listing

import "sync"

// cache memoizes fetch results by URL for the lifetime of a session.
// Entries live until Invalidate; there is no TTL because a dashboard
// session works against one consistent snapshot of the listing.
type cache struct {
	mu      sync.Mutex
	entries map[string]any
}

func newCache() *cache {
	return &cache{entries: make(map[string]any)}
}

func (c *cache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *cache) put(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = v
}

func (c *cache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]any)
}
