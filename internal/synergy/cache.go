package synergy

import (
	"fmt"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/wsloan/spellforge/internal/cards"
)

// Cache memoizes synergy evaluations keyed by content fingerprints. One
// cache instance serves one build invocation; nothing is shared across
// invocations, so no eviction or expiry is needed within the bounded key
// space of pool size x build steps.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	stats   CacheStats
}

// cacheEntry holds one computed value. done is closed once value is
// valid, so concurrent requests for an in-flight key wait for the first
// computation instead of recomputing.
type cacheEntry struct {
	done  chan struct{}
	value float64
}

// CacheStats tracks cache effectiveness over a build invocation.
type CacheStats struct {
	Hits   int64
	Misses int64
	Size   int
}

// NewCache creates an empty analysis cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*cacheEntry)}
}

// Score returns the cached value for key, computing it with compute on
// first request. Compute-once-store: the second request for a key always
// observes the first's stored result, including when the first is still
// in flight.
func (c *Cache) Score(key string, compute func() float64) float64 {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.stats.Hits++
		c.mu.Unlock()
		<-e.done
		return e.value
	}
	e := &cacheEntry{done: make(chan struct{})}
	c.entries[key] = e
	c.stats.Misses++
	c.mu.Unlock()

	e.value = compute()
	close(e.done)
	return e.value
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = len(c.entries)
	return s
}

// ContextFingerprint produces an order-insensitive fingerprint of a deck
// context's composition. Any addition or removal changes the
// fingerprint; reordering the same multiset of cards does not.
func ContextFingerprint(context []*cards.Card) string {
	counts := make(map[string]int, len(context))
	for _, c := range context {
		counts[c.Name]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	h := fnv.New64a()
	for _, name := range names {
		fmt.Fprintf(h, "%s=%d;", name, counts[name])
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// scoreKey builds the cache key for a (card, context) synergy evaluation.
func scoreKey(card *cards.Card, contextFP string) string {
	return "synergy|" + card.Name + "|" + contextFP
}

// detectKey builds the cache key for a detection total over a context.
func detectKey(contextFP string) string {
	return "detect|" + contextFP
}
