package http

import (
	"container/list"
	"sync"
)

// pageCache is a thread-safe LRU of rendered pages.
type pageCache struct {
	maxEntries int

	mu      sync.Mutex
	order   *list.List // front is most recently used
	entries map[string]*list.Element
}

type page struct {
	key  string
	body []byte
}

// newPageCache returns a cache holding up to maxEntries pages. A size below
// one disables caching.
func newPageCache(maxEntries int) *pageCache {
	return &pageCache{
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

func (c *pageCache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(e)
	return e.Value.(*page).body, true
}

func (c *pageCache) put(key string, body []byte) {
	if c.maxEntries < 1 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.Value.(*page).body = body
		c.order.MoveToFront(e)
		return
	}

	c.entries[key] = c.order.PushFront(&page{key: key, body: body})
	for c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*page).key)
	}
}

func (c *pageCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
