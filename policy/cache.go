package policy

import (
	"container/list"
	"sync"
)

// kindCache is a concurrency-safe LRU of statement text to statement kind.
type kindCache struct {
	mu    sync.Mutex
	ll    *list.List // most recently used at the front
	cache map[string]*list.Element
	cap   int
}

type cacheEntry struct {
	key   string
	value string
}

func newKindCache(capacity int) *kindCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &kindCache{
		ll:    list.New(),
		cache: make(map[string]*list.Element, capacity),
		cap:   capacity,
	}
}

// Get returns the cached kind and promotes the entry.
func (c *kindCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ele, ok := c.cache[key]
	if !ok {
		return "", false
	}
	c.ll.MoveToFront(ele)
	return ele.Value.(*cacheEntry).value, true
}

// Put stores kind for key, evicting the least recently used entry on overflow.
func (c *kindCache) Put(key string, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.cache[key]; ok {
		c.ll.MoveToFront(ele)
		ele.Value.(*cacheEntry).value = value
		return
	}
	c.cache[key] = c.ll.PushFront(&cacheEntry{key: key, value: value})
	if c.ll.Len() <= c.cap {
		return
	}
	if lru := c.ll.Back(); lru != nil {
		c.ll.Remove(lru)
		delete(c.cache, lru.Value.(*cacheEntry).key)
	}
}

func (c *kindCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
