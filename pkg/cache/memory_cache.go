package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/vietfact/newsguard/pkg/classification"
)

const defaultMaxEntries = 1024

// memoryCache is an in-process LRU cache with optional TTL expiry.
type memoryCache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List // front = most recently used
	maxEntries int
	ttl        time.Duration
}

type memoryEntry struct {
	key       string
	out       classification.ModelOutput
	expiresAt time.Time // zero means no expiry
}

func newMemoryCache(maxEntries, ttlSeconds int) *memoryCache {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	var ttl time.Duration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	return &memoryCache{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
}

func (c *memoryCache) Get(_ context.Context, text string) (*classification.ModelOutput, bool) {
	key := cacheKey(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	entry := elem.Value.(*memoryEntry)
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.order.Remove(elem)
		delete(c.entries, key)
		return nil, false
	}
	c.order.MoveToFront(elem)

	out := entry.out
	return &out, true
}

func (c *memoryCache) Set(_ context.Context, text string, out *classification.ModelOutput) {
	if out == nil {
		return
	}
	key := cacheKey(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &memoryEntry{key: key, out: *out}
	if c.ttl > 0 {
		entry.expiresAt = time.Now().Add(c.ttl)
	}

	if elem, ok := c.entries[key]; ok {
		elem.Value = entry
		c.order.MoveToFront(elem)
		return
	}
	c.entries[key] = c.order.PushFront(entry)

	for c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*memoryEntry).key)
	}
}

func (c *memoryCache) Close() error { return nil }
