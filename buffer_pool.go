package tsodbc

import (
	"sync"
	"sync/atomic"
)

// Rows wider than this are not recycled.
const maxPooledTupleWidth = 1024

// TuplePool recycles row storage between result sets so a re-executed statement
// does not reallocate every tuple.
type TuplePool struct {
	tuples sync.Pool

	// statistics, updated atomically
	gets     uint64
	puts     uint64
	misses   uint64
	discards uint64
}

// NewTuplePool creates an empty tuple pool.
func NewTuplePool() *TuplePool {
	pool := &TuplePool{}
	pool.tuples = sync.Pool{
		New: func() interface{} {
			atomic.AddUint64(&pool.misses, 1)
			return new([]ValueText)
		},
	}
	return pool
}

// Get returns a zeroed tuple of the given width.
func (p *TuplePool) Get(columns int) []ValueText {
	atomic.AddUint64(&p.gets, 1)

	ptr := p.tuples.Get().(*[]ValueText)
	tuple := *ptr
	if cap(tuple) < columns {
		return make([]ValueText, columns)
	}
	// Put clears tuples before pooling them
	return tuple[:columns]
}

// Put returns a tuple to the pool. The caller must not use it afterwards.
func (p *TuplePool) Put(tuple []ValueText) {
	if tuple == nil {
		return
	}
	atomic.AddUint64(&p.puts, 1)

	if cap(tuple) > maxPooledTupleWidth {
		atomic.AddUint64(&p.discards, 1)
		return
	}
	tuple = tuple[:cap(tuple)]
	clear(tuple)
	p.tuples.Put(&tuple)
}

// Stats returns statistics about the tuple pool.
func (p *TuplePool) Stats() map[string]uint64 {
	return map[string]uint64{
		"gets":     atomic.LoadUint64(&p.gets),
		"puts":     atomic.LoadUint64(&p.puts),
		"misses":   atomic.LoadUint64(&p.misses),
		"discards": atomic.LoadUint64(&p.discards),
	}
}

// Global tuple pool shared by row caches that are not given their own.
var globalTuplePool = NewTuplePool()
