package search

import (
	"container/list"
	"sync"

	"github.com/hyperjump/schoolfinder/internal/dataset"
	"github.com/hyperjump/schoolfinder/internal/models"
)

// ResultCache is an LRU cache of search results keyed by query text.
// Entries belong to one dataset; a lookup against any other dataset empties the cache.
type ResultCache struct {
	capacity int
	ds       *dataset.Dataset
	cache    map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex
}

type cacheEntry struct {
	key   string
	value *models.SearchResult
}

// NewResultCache creates a new cache with the given capacity.
func NewResultCache(capacity int) *ResultCache {
	return &ResultCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Get returns the cached result for key computed against ds, if present.
func (c *ResultCache) Get(ds *dataset.Dataset, key string) (*models.SearchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetFor(ds)

	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		return elem.Value.(*cacheEntry).value, true
	}
	return nil, false
}

// Set stores the result for key, evicting the oldest entry if at capacity.
func (c *ResultCache) Set(ds *dataset.Dataset, key string, value *models.SearchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetFor(ds)

	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = value
		return
	}

	entry := &cacheEntry{key: key, value: value}
	elem := c.lru.PushFront(entry)
	c.cache[key] = elem

	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			c.lru.Remove(oldest)
			delete(c.cache, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Len returns the number of cached results.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *ResultCache) resetFor(ds *dataset.Dataset) {
	if c.ds == ds {
		return
	}
	c.ds = ds
	c.cache = make(map[string]*list.Element)
	c.lru.Init()
}
