package filter

import (
	"container/list"
	"sync"
)

// lruCache is a thread-safe LRU cache of compiled selectors keyed by
// expression
type lruCache struct {
	size      int
	evictList *list.List
	items     map[string]*list.Element
	mu        sync.Mutex
}

type cacheEntry struct {
	expression string
	selector   Selector
}

func newLRUCache(size int) *lruCache {
	return &lruCache{
		size:      size,
		evictList: list.New(),
		items:     make(map[string]*list.Element, size),
	}
}

// Get returns the cached selector and marks it most recently used
func (c *lruCache) Get(expression string) (Selector, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.items[expression]
	if !ok {
		return nil, false
	}
	c.evictList.MoveToFront(node)
	return node.Value.(*cacheEntry).selector, true
}

// Put stores sel, evicting the least recently used entry when full
func (c *lruCache) Put(expression string, sel Selector) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.items[expression]; ok {
		c.evictList.MoveToFront(node)
		node.Value.(*cacheEntry).selector = sel
		return
	}

	c.items[expression] = c.evictList.PushFront(&cacheEntry{expression: expression, selector: sel})

	if c.evictList.Len() > c.size {
		if oldest := c.evictList.Back(); oldest != nil {
			c.evictList.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).expression)
		}
	}
}

func (c *lruCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element, c.size)
	c.evictList.Init()
}

func (c *lruCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.evictList.Len()
}
