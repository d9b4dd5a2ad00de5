package tsodbc

import (
	"fmt"
	"log/slog"
)

// Initial tuple capacity of a row cache; it doubles when full.
const initialRowCapacity = 100

// RowCache holds the materialized tuples of one result set.
// Every tuple has exactly ColumnCount cells.
type RowCache struct {
	columns   []Column
	schemaSet bool
	tuples    [][]ValueText
	totalRead int64
	eof       bool
	pool      *TuplePool
	logger    *slog.Logger
}

// NewRowCache creates an empty row cache. A nil pool uses the global tuple pool.
func NewRowCache(pool *TuplePool, logger *slog.Logger) *RowCache {
	if pool == nil {
		pool = globalTuplePool
	}
	return &RowCache{
		pool:   pool,
		logger: withComponent(logger, "rowcache"),
	}
}

// SetSchema records the column schema. It fails once tuples have been stored.
func (c *RowCache) SetSchema(cols []Column) error {
	if len(c.tuples) > 0 {
		return NewError(ErrSchema, CodeGeneralError, "schema cannot change while rows are cached")
	}
	c.columns = append(c.columns[:0], cols...)
	c.schemaSet = true
	return nil
}

// HasSchema reports whether a schema has been recorded.
func (c *RowCache) HasSchema() bool {
	return c.schemaSet
}

// Columns returns the column schema. The slice is owned by the cache.
func (c *RowCache) Columns() []Column {
	return c.columns
}

// ColumnCount returns the number of cells per tuple.
func (c *RowCache) ColumnCount() int {
	return len(c.columns)
}

// newTuple returns an empty tuple of the cache's width from the pool.
func (c *RowCache) newTuple() []ValueText {
	return c.pool.Get(len(c.columns))
}

// Append stores a tuple, growing the cache by doubling when it is full.
func (c *RowCache) Append(tuple []ValueText) error {
	if len(tuple) != len(c.columns) {
		return NewError(ErrSchema, CodeGeneralError,
			fmt.Sprintf("tuple has %d cells, expected %d", len(tuple), len(c.columns)))
	}
	if len(c.tuples) == cap(c.tuples) {
		newCap := initialRowCapacity
		if cap(c.tuples) > 0 {
			newCap = cap(c.tuples) * 2
		}
		grown := make([][]ValueText, len(c.tuples), newCap)
		copy(grown, c.tuples)
		c.tuples = grown
		c.logger.Debug("row cache grown", "capacity", newCap)
	}
	c.tuples = append(c.tuples, tuple)
	c.totalRead++
	return nil
}

// Len returns the number of cached tuples.
func (c *RowCache) Len() int {
	return len(c.tuples)
}

// Capacity returns the allocated tuple capacity.
func (c *RowCache) Capacity() int {
	return cap(c.tuples)
}

// Row returns tuple i.
func (c *RowCache) Row(i int) ([]ValueText, bool) {
	if i < 0 || i >= len(c.tuples) {
		return nil, false
	}
	return c.tuples[i], true
}

// Cell returns the value at row i, column col (both 0-based).
func (c *RowCache) Cell(i, col int) (ValueText, bool) {
	row, ok := c.Row(i)
	if !ok || col < 0 || col >= len(row) {
		return ValueText{}, false
	}
	return row[col], true
}

// TotalRead returns the number of tuples read since the last reset.
func (c *RowCache) TotalRead() int64 {
	return c.totalRead
}

// EOF reports whether the backend has no more pages.
func (c *RowCache) EOF() bool {
	return c.eof
}

func (c *RowCache) markEOF() {
	c.eof = true
}

// Reset recycles every tuple and forgets the schema.
func (c *RowCache) Reset() {
	for i, tuple := range c.tuples {
		c.pool.Put(tuple)
		c.tuples[i] = nil
	}
	c.tuples = c.tuples[:0]
	c.columns = c.columns[:0]
	c.schemaSet = false
	c.totalRead = 0
	c.eof = false
}
