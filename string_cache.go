package tsodbc

// Strings at or above this length are never interned.
const maxInternedStringLen = 64

// Once this many strings are interned, new text is stored as is.
const maxInternedStrings = 10000

// StringCache interns short materialized cell text for one result set, so the
// repeated values of low-cardinality columns share storage. Reset drops every
// interned string.
// A StringCache belongs to one materializer and is not safe for concurrent use.
type StringCache struct {
	internMap map[string]string

	hits   int
	misses int
}

// NewStringCache creates an empty string cache.
func NewStringCache() *StringCache {
	return &StringCache{internMap: make(map[string]string, 256)}
}

// Get returns the interned copy of value.
func (sc *StringCache) Get(value string) string {
	if value == "" || len(value) >= maxInternedStringLen {
		return value
	}
	if cached, ok := sc.internMap[value]; ok {
		sc.hits++
		return cached
	}
	sc.misses++
	if len(sc.internMap) < maxInternedStrings {
		sc.internMap[value] = value
	}
	return value
}

// Len returns the number of interned strings.
func (sc *StringCache) Len() int {
	return len(sc.internMap)
}

// Reset drops every interned string.
func (sc *StringCache) Reset() {
	clear(sc.internMap)
	sc.hits = 0
	sc.misses = 0
}

// Stats returns cache hit/miss statistics.
func (sc *StringCache) Stats() (hits, misses int) {
	return sc.hits, sc.misses
}
