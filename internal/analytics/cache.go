package analytics

import (
	"container/list"
	"sync"
	"time"
)

// reportCache is a thread-safe LRU cache for computed project reports,
// keyed by a fingerprint of the input snapshot.
type reportCache struct {
	mu      sync.RWMutex
	items   map[string]*list.Element
	lru     *list.List
	maxSize int
	ttl     time.Duration
}

type cacheItem struct {
	key       string
	value     *Report
	expiresAt time.Time
}

func newReportCache(maxSize int, ttl time.Duration) *reportCache {
	return &reportCache{
		items:   make(map[string]*list.Element),
		lru:     list.New(),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// Get returns a copy of the cached report, or nil on miss or expiry.
func (c *reportCache) Get(key string) *Report {
	c.mu.RLock()
	defer c.mu.RUnlock()

	elem, exists := c.items[key]
	if !exists {
		return nil
	}

	item := elem.Value.(*cacheItem)
	if time.Now().After(item.expiresAt) {
		// Expired items are dropped lazily on the next Set sweep.
		return nil
	}

	report := *item.value
	return &report
}

func (c *reportCache) Set(key string, value *Report) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.lru.MoveToFront(elem)
		item := elem.Value.(*cacheItem)
		item.value = value
		item.expiresAt = time.Now().Add(c.ttl)
		return
	}

	item := &cacheItem{
		key:       key,
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
	elem := c.lru.PushFront(item)
	c.items[key] = elem

	if c.lru.Len() > c.maxSize {
		c.evictOldest()
	}
	if c.lru.Len()%100 == 0 {
		c.cleanExpired()
	}
}

func (c *reportCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.lru = list.New()
}

func (c *reportCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lru.Len()
}

func (c *reportCache) evictOldest() {
	if elem := c.lru.Back(); elem != nil {
		c.removeElement(elem)
	}
}

func (c *reportCache) removeElement(elem *list.Element) {
	c.lru.Remove(elem)
	item := elem.Value.(*cacheItem)
	delete(c.items, item.key)
}

func (c *reportCache) cleanExpired() {
	now := time.Now()
	for elem := c.lru.Back(); elem != nil; {
		prev := elem.Prev()
		item := elem.Value.(*cacheItem)
		if now.After(item.expiresAt) {
			c.removeElement(elem)
		}
		elem = prev
	}
}
