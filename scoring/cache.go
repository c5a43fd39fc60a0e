// Package scoring provides the local-score oracle and its cache (spec.md
// §4.3): local_score(child, parents) returns a cached value or builds a CPT
// projection and invokes its log-marginal-likelihood, populating the cache
// on miss.
package scoring

import (
	"hash/fnv"
	"sort"

	"github.com/bnstruct/pebl/cpd"
	"github.com/bnstruct/pebl/data"
)

// key is the cache key: (child, sorted parents), with the parents encoded
// as a byte string so the struct is comparable and usable directly as a Go
// map key.
type key struct {
	child   int
	parents string // sorted parent ids, fixed-width encoded; see makeKey
}

func makeKey(child int, sortedParents []int32) key {
	// Encode as a byte string rather than relying on a slice (which isn't
	// comparable / hashable as a map key); this keeps the hot-path lookup
	// to one allocation rather than building a `[child]+parents` slice and
	// converting it with fmt.
	buf := make([]byte, 4+4*len(sortedParents))
	putInt32(buf[0:4], int32(child))
	for i, p := range sortedParents {
		putInt32(buf[4+4*i:8+4*i], p)
	}
	return key{child: child, parents: string(buf)}
}

func putInt32(b []byte, v int32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// fnv1a is retained for callers that want a pure hash (e.g. sharding a
// bounded cache); the cache itself uses a Go map keyed on the encoded
// string above.
func fnv1a(b []byte) uint64 {
	h := fnv.New64a()
	h.Write(b)
	return h.Sum64()
}

// Cache is the local-score oracle of spec.md §4.3: keyed on (child, sorted
// parents), populated on miss, publishing hit/miss counters. Entries are
// immutable once inserted and the cache is unbounded by default; set MaxSize
// to a positive value to cap it (the reference design leaves it unbounded,
// per spec.md §4.3, "implementations MAY cap it by configuration").
type Cache struct {
	dataset *data.Dataset
	entries map[key]float64
	order   []key // insertion order, for the optional LRU-ish eviction

	Hits, Misses int64

	// MaxSize, when > 0, bounds the number of cached entries; the oldest
	// entry (by insertion order) is evicted to make room for a new one.
	MaxSize int
}

// New creates a local-score cache backed by ds.
func New(ds *data.Dataset) *Cache {
	return &Cache{
		dataset: ds,
		entries: make(map[key]float64),
	}
}

// parentsToSortedInt32 canonicalizes a parent list into ascending int32
// order without mutating the caller's slice.
func parentsToSortedInt32(parents []int) []int32 {
	sorted := make([]int32, len(parents))
	for i, p := range parents {
		sorted[i] = int32(p)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}

// LocalScore returns the cached log-marginal-likelihood for (child, parents)
// if present, else builds the family's CPT, scores it, caches the result
// and returns it (spec.md §4.3).
func (c *Cache) LocalScore(child int, parents []int) float64 {
	sortedParents := parentsToSortedInt32(parents)
	k := makeKey(child, sortedParents)

	if score, ok := c.entries[k]; ok {
		c.Hits++
		return score
	}

	c.Misses++
	intParents := make([]int, len(sortedParents))
	for i, p := range sortedParents {
		intParents[i] = int(p)
	}

	family := cpd.Family{Child: child, Parents: intParents}
	table := cpd.Build(c.dataset, family)
	score := table.LogMarginalLikelihood()

	c.set(k, score)
	return score
}

func (c *Cache) set(k key, score float64) {
	if c.MaxSize > 0 && len(c.entries) >= c.MaxSize {
		if len(c.order) > 0 {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
	}
	c.entries[k] = score
	if c.MaxSize > 0 {
		c.order = append(c.order, k)
	}
}

// Len reports the number of cached entries.
func (c *Cache) Len() int { return len(c.entries) }
