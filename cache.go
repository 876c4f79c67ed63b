package formula

import (
	"sort"
	"sync"
	"time"

	"github.com/ncobase/formula/ast"
)

// CacheStats is a snapshot of the AST cache counters
type CacheStats struct {
	Size      int   `json:"size"`
	MaxSize   int   `json:"maxSize"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

type cacheEntry struct {
	program    *ast.Program
	insertedAt time.Time
}

// astCache memoizes parsed programs keyed by formula source. Parsed
// trees are immutable, so cached programs are shared across callers.
type astCache struct {
	mu        sync.Mutex
	entries   map[string]cacheEntry
	maxSize   int
	hits      int64
	misses    int64
	evictions int64
}

func newASTCache(maxSize int) *astCache {
	return &astCache{
		entries: make(map[string]cacheEntry),
		maxSize: maxSize,
	}
}

func (c *astCache) get(source string) (*ast.Program, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[source]
	if ok {
		c.hits++
		return entry.program, true
	}
	c.misses++
	return nil, false
}

func (c *astCache) put(source string, program *ast.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[source]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[source] = cacheEntry{program: program, insertedAt: time.Now()}
}

// evictOldest drops the oldest quarter of the cache so a full cache does
// not evict on every subsequent insert. Called with the lock held.
func (c *astCache) evictOldest() {
	type aged struct {
		source     string
		insertedAt time.Time
	}
	all := make([]aged, 0, len(c.entries))
	for src, entry := range c.entries {
		all = append(all, aged{src, entry.insertedAt})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].insertedAt.Before(all[j].insertedAt) })

	drop := len(all) / 4
	if drop < 1 {
		drop = 1
	}
	for _, a := range all[:drop] {
		delete(c.entries, a.source)
		c.evictions++
	}
}

func (c *astCache) clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

func (c *astCache) stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Size:      len(c.entries),
		MaxSize:   c.maxSize,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}
