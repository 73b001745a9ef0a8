// Package cache memoizes query answers for the server, where the same
// queries tend to arrive over and over from polling clients.
package cache

import (
	"encoding/binary"
	"slices"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru"

	"modefind/finder"
	"modefind/internal/metrics"
	"modefind/internal/query"
)

// Cache is a bounded LRU of finder results keyed by a 64-bit digest of
// the strategy and the counted values.  Each entry keeps its own copy
// of the counted query, and a hit only counts when that copy matches,
// so digest collisions miss.  A nil *Cache never hits.
type Cache struct {
	lru      *lru.Cache
	strategy string
	metrics  *metrics.Collector
}

// New returns a cache holding up to size entries for answers computed
// with strategy.  size <= 0 returns nil, which disables caching.
func New(size int, strategy string, m *metrics.Collector) (*Cache, error) {
	if size <= 0 {
		return nil, nil
	}
	l, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l, strategy: strategy, metrics: m}, nil
}

// Key digests q.  Only the counted prefix of the sequence takes part,
// so queries differing only past Size share an entry.
func (c *Cache) Key(q query.Query) uint64 {
	d := xxhash.New()
	d.WriteString(c.strategy) //nolint:errcheck
	var word [4]byte
	binary.LittleEndian.PutUint32(word[:], uint32(q.Flag))
	d.Write(word[:]) //nolint:errcheck
	binary.LittleEndian.PutUint32(word[:], uint32(q.Size))
	d.Write(word[:]) //nolint:errcheck
	for _, v := range q.Values() {
		binary.LittleEndian.PutUint32(word[:], uint32(v))
		d.Write(word[:]) //nolint:errcheck
	}
	return d.Sum64()
}

// entry is one cached answer together with the query it answers.
type entry struct {
	flag   int32
	values []int32
	result finder.Result
}

func (e entry) answers(q query.Query) bool {
	return e.flag == q.Flag && slices.Equal(e.values, q.Values())
}

// Get returns the memoized result for q.
func (c *Cache) Get(q query.Query) (finder.Result, bool) {
	if c == nil {
		return finder.Result{}, false
	}
	v, ok := c.lru.Get(c.Key(q))
	if !ok || !v.(entry).answers(q) {
		c.metrics.CacheMiss()
		return finder.Result{}, false
	}
	c.metrics.CacheHit()
	return v.(entry).result, true
}

// Put stores r as the answer to q.
func (c *Cache) Put(q query.Query, r finder.Result) {
	if c == nil {
		return
	}
	// q.Seq is usually a pooled buffer, so the values are copied.
	c.lru.Add(c.Key(q), entry{flag: q.Flag, values: slices.Clone(q.Values()), result: r})
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

// Evaluate answers q from the cache, computing and storing it with f on
// a miss.
func (c *Cache) Evaluate(f *finder.Finder, q query.Query) finder.Result {
	if r, ok := c.Get(q); ok {
		return r
	}
	r := query.Evaluate(f, q)
	c.Put(q, r)
	return r
}
