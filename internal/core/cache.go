package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
)

// DefaultCacheCapacity bounds the AI assist cache.
const DefaultCacheCapacity = 100

// AssistCache remembers AI scoring results by content hash so identical inputs
// never trigger a second API call. Eviction is strictly insertion-order FIFO:
// a cache hit does not refresh an entry's position.
type AssistCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]ScoreResult
	order    []string
	hits     uint64
	misses   uint64
}

func NewAssistCache(capacity int) *AssistCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &AssistCache{
		capacity: capacity,
		entries:  make(map[string]ScoreResult, capacity),
	}
}

// CacheKey derives a stable content hash over the normalized scoring input, so
// logically identical inputs map to the same key regardless of formatting.
func CacheKey(parts ...string) string {
	normalized := make([]string, 0, len(parts))
	for _, p := range parts {
		normalized = append(normalized, strings.ToLower(NormalizeAnswer(p)))
	}
	sum := sha256.Sum256([]byte(strings.Join(normalized, "\n")))
	return hex.EncodeToString(sum[:])
}

func (c *AssistCache) Get(key string) (ScoreResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Put inserts the entry, evicting the single oldest-inserted entry first when
// the cache is full. Overwriting an existing key keeps its original position.
func (c *AssistCache) Put(key string, value ScoreResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; exists {
		c.entries[key] = value
		return
	}
	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = value
	c.order = append(c.order, key)
}

func (c *AssistCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats reports hit/miss counters for the status endpoint.
func (c *AssistCache) Stats() (size int, hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries), c.hits, c.misses
}
