package cache

import (
	"container/list"
	"sort"
	"strings"
	"sync"
	"time"
)

// Entry wraps a cached value with its insertion time and hit count.
type Entry[T any] struct {
	Key       string
	Data      T
	Timestamp time.Time
	Hits      int
}

// Cache is a capacity-bounded TTL cache with LRU eviction. Expired
// entries are dropped lazily on read; Cleanup sweeps the rest. The list
// front is least recently used.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

// New creates a cache holding at most maxSize entries, each living for
// ttl after insertion. Reads do not extend an entry's life.
func New[T any](maxSize int, ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// NewRecommendationCache returns a cache sized for recommendation
// result sets: 50 entries, 15 minute TTL.
func NewRecommendationCache[T any]() *Cache[T] {
	return New[T](50, 15*time.Minute)
}

// NewGeneralCache returns a cache sized for general lookups: 100
// entries, 30 minute TTL.
func NewGeneralCache[T any]() *Cache[T] {
	return New[T](100, 30*time.Minute)
}

// Get returns the cached value for key. An expired entry is removed and
// reported as a miss. A hit marks the entry most recently used.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.entries[key]
	if !ok {
		return zero, false
	}

	entry := elem.Value.(*Entry[T])
	if c.now().Sub(entry.Timestamp) > c.ttl {
		c.removeLocked(elem)
		return zero, false
	}

	entry.Hits++
	c.order.MoveToBack(elem)
	return entry.Data, true
}

// Set stores a value under key, replacing any existing entry and
// evicting the least recently used entry when at capacity.
func (c *Cache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.removeLocked(elem)
	}

	if c.order.Len() >= c.maxSize {
		if oldest := c.order.Front(); oldest != nil {
			c.removeLocked(oldest)
		}
	}

	elem := c.order.PushBack(&Entry[T]{
		Key:       key,
		Data:      data,
		Timestamp: c.now(),
	})
	c.entries[key] = elem
}

// Has reports whether a live entry exists for key, without touching its
// recency or hit count.
func (c *Cache[T]) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return false
	}
	return c.now().Sub(elem.Value.(*Entry[T]).Timestamp) <= c.ttl
}

// Delete removes the entry for key if present.
func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.removeLocked(elem)
	}
}

// Clear drops every entry.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

// Size returns the number of stored entries, live or expired.
func (c *Cache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Cleanup removes all expired entries and reports how many were dropped.
func (c *Cache[T]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.now()
	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()
		if now.Sub(elem.Value.(*Entry[T]).Timestamp) > c.ttl {
			c.removeLocked(elem)
			removed++
		}
		elem = next
	}
	return removed
}

func (c *Cache[T]) removeLocked(elem *list.Element) {
	delete(c.entries, elem.Value.(*Entry[T]).Key)
	c.order.Remove(elem)
}

// ====================== Stats ======================

// EntryStats describes one cached entry for the stats dump.
type EntryStats struct {
	Key        string  `json:"key"`
	Hits       int     `json:"hits"`
	AgeSeconds float64 `json:"age_seconds"`
}

// Stats summarizes the cache contents.
type Stats struct {
	Size        int          `json:"size"`
	MaxSize     int          `json:"max_size"`
	AverageHits float64      `json:"average_hits"`
	Entries     []EntryStats `json:"entries"`
}

// DumpStats reports size, hit distribution, and per-entry details,
// hottest entries first.
func (c *Cache[T]) DumpStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		Size:    c.order.Len(),
		MaxSize: c.maxSize,
	}

	now := c.now()
	totalHits := 0
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		entry := elem.Value.(*Entry[T])
		totalHits += entry.Hits
		stats.Entries = append(stats.Entries, EntryStats{
			Key:        entry.Key,
			Hits:       entry.Hits,
			AgeSeconds: now.Sub(entry.Timestamp).Seconds(),
		})
	}

	if stats.Size > 0 {
		stats.AverageHits = float64(totalHits) / float64(stats.Size)
	}
	sort.SliceStable(stats.Entries, func(i, j int) bool {
		return stats.Entries[i].Hits > stats.Entries[j].Hits
	})
	return stats
}

// ====================== Key generation ======================

// GenerateKey builds a cache key from the request dimensions. Empty
// dimensions collapse to fixed defaults so equivalent requests share an
// entry.
func GenerateKey(query, profileHash, contextHash, category string) string {
	if query == "" {
		query = "default"
	}
	if profileHash == "" {
		profileHash = "no-profile"
	}
	if contextHash == "" {
		contextHash = "no-context"
	}
	if category == "" {
		category = "all"
	}
	return strings.Join([]string{
		strings.ToLower(strings.TrimSpace(query)),
		profileHash,
		contextHash,
		category,
	}, ":")
}
