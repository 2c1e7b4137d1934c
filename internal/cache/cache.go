// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache provides the in-process TTL caches that sit in front
// of every backend call. Entries expire a fixed duration after they
// are written; capacity overflow evicts the least recently used entry.
package cache

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

type entry struct {
	key       string
	value     any
	expiresAt time.Time
}

// Cache is a bounded TTL cache. All methods are safe for concurrent
// use; a single mutex guards the map and the recency list.
type Cache struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	ll         *list.List // front is most recently used
	items      map[string]*list.Element
	hits       uint64
	misses     uint64
	now        func() time.Time
}

// New returns a cache holding at most maxEntries values, each expiring
// ttl after its last Set.
func New(maxEntries int, ttl time.Duration) *Cache {
	return &Cache{
		maxEntries: maxEntries,
		ttl:        ttl,
		ll:         list.New(),
		items:      make(map[string]*list.Element),
		now:        time.Now,
	}
}

// Get returns the value stored under key. Expired entries are removed
// and reported as absent. Every call counts toward hit accounting.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}
	ent := el.Value.(*entry)
	if c.now().After(ent.expiresAt) {
		c.removeElement(el)
		c.misses++
		return nil, false
	}
	c.ll.MoveToFront(el)
	c.hits++
	return ent.value, true
}

// Set stores value under key, resetting its TTL. When the cache is
// full the least recently used entry is evicted first.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(c.ttl)
	if el, ok := c.items[key]; ok {
		ent := el.Value.(*entry)
		ent.value = value
		ent.expiresAt = expires
		c.ll.MoveToFront(el)
		return
	}
	el := c.ll.PushFront(&entry{key: key, value: value, expiresAt: expires})
	c.items[key] = el
	if c.ll.Len() > c.maxEntries {
		if back := c.ll.Back(); back != nil {
			c.removeElement(back)
		}
	}
}

// Invalidate removes key and reports whether it was present.
func (c *Cache) Invalidate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return false
	}
	c.removeElement(el)
	return true
}

// Clear drops every entry. Hit counters are not reset.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ll.Init()
	c.items = make(map[string]*list.Element)
}

// Len returns the number of live entries, pruning expired ones.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneExpired()
	return c.ll.Len()
}

// Stats reports the cache's size, limits, and hit accounting.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneExpired()
	return Stats{
		Size:       c.ll.Len(),
		MaxSize:    c.maxEntries,
		TTLSeconds: int(c.ttl / time.Second),
		Hits:       c.hits,
		Misses:     c.misses,
		HitRate:    hitRate(c.hits, c.misses),
	}
}

// pruneExpired walks the whole list because recency order does not
// match expiry order. Callers hold c.mu.
func (c *Cache) pruneExpired() {
	now := c.now()
	for el := c.ll.Back(); el != nil; {
		prev := el.Prev()
		if now.After(el.Value.(*entry).expiresAt) {
			c.removeElement(el)
		}
		el = prev
	}
}

func (c *Cache) removeElement(el *list.Element) {
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry).key)
}

// Stats is one cache's reportable state.
type Stats struct {
	Size       int    `json:"size" yaml:"size"`
	MaxSize    int    `json:"maxsize" yaml:"maxsize"`
	TTLSeconds int    `json:"ttl" yaml:"ttl"`
	Hits       uint64 `json:"hits" yaml:"hits"`
	Misses     uint64 `json:"misses" yaml:"misses"`
	HitRate    string `json:"hit_rate" yaml:"hit_rate"`
}

func hitRate(hits, misses uint64) string {
	total := hits + misses
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(hits)/float64(total)*100)
}
