package tsodbc

import (
	"testing"
)

func TestTuplePool(t *testing.T) {
	pool := NewTuplePool()

	tuple := pool.Get(3)
	if len(tuple) != 3 {
		t.Fatalf("Expected tuple of 3 cells, got %d", len(tuple))
	}
	tuple[0] = Text("a")
	pool.Put(tuple)

	again := pool.Get(2)
	if len(again) != 2 {
		t.Fatalf("Expected tuple of 2 cells, got %d", len(again))
	}
	for i, v := range again {
		if v != (ValueText{}) {
			t.Errorf("Expected cleared cell %d, got %+v", i, v)
		}
	}

	pool.Put(make([]ValueText, maxPooledTupleWidth+1))
	pool.Put(nil)

	stats := pool.Stats()
	if stats["gets"] != 2 {
		t.Errorf("Expected 2 gets, got %d", stats["gets"])
	}
	if stats["puts"] != 2 {
		t.Errorf("Expected 2 puts, got %d", stats["puts"])
	}
	if stats["discards"] != 1 {
		t.Errorf("Expected 1 discard, got %d", stats["discards"])
	}
}

func TestRowCache(t *testing.T) {
	cols := []Column{
		{Name: "a", Type: TypeVarchar, Size: varcharSize, TypeMod: -1, DisplaySize: -1},
		{Name: "b", Type: TypeBigint, Size: 8, TypeMod: -1, DisplaySize: -1},
	}

	t.Run("Schema", func(t *testing.T) {
		cache := NewRowCache(NewTuplePool(), nil)
		if cache.HasSchema() {
			t.Fatalf("Expected no schema on a new cache")
		}
		if err := cache.SetSchema(nil); err != nil {
			t.Fatalf("Failed to set empty schema: %v", err)
		}
		if !cache.HasSchema() || cache.ColumnCount() != 0 {
			t.Errorf("Expected an empty schema to count as recorded")
		}
	})

	t.Run("AppendAndGrow", func(t *testing.T) {
		cache := NewRowCache(NewTuplePool(), nil)
		if err := cache.SetSchema(cols); err != nil {
			t.Fatalf("Failed to set schema: %v", err)
		}
		for i := 0; i < initialRowCapacity+1; i++ {
			tuple := cache.newTuple()
			tuple[0] = Text("x")
			tuple[1] = NullValue
			if err := cache.Append(tuple); err != nil {
				t.Fatalf("Failed to append row %d: %v", i, err)
			}
		}
		if cache.Len() != initialRowCapacity+1 {
			t.Errorf("Expected %d rows, got %d", initialRowCapacity+1, cache.Len())
		}
		if cache.Capacity() != 2*initialRowCapacity {
			t.Errorf("Expected capacity %d, got %d", 2*initialRowCapacity, cache.Capacity())
		}
		if cache.TotalRead() != int64(initialRowCapacity+1) {
			t.Errorf("Expected total read %d, got %d", initialRowCapacity+1, cache.TotalRead())
		}

		v, ok := cache.Cell(0, 1)
		if !ok || !v.IsNull {
			t.Errorf("Expected null cell, got %+v (ok=%v)", v, ok)
		}
		if _, ok := cache.Cell(cache.Len(), 0); ok {
			t.Errorf("Expected out of range row to be missing")
		}
		if _, ok := cache.Cell(0, 2); ok {
			t.Errorf("Expected out of range column to be missing")
		}

		if err := cache.SetSchema(cols[:1]); err == nil {
			t.Errorf("Expected schema change with cached rows to fail")
		}
	})

	t.Run("WrongWidth", func(t *testing.T) {
		cache := NewRowCache(NewTuplePool(), nil)
		if err := cache.SetSchema(cols); err != nil {
			t.Fatalf("Failed to set schema: %v", err)
		}
		err := cache.Append([]ValueText{Text("only one")})
		if !IsError(err, ErrSchema) {
			t.Errorf("Expected schema error, got %v", err)
		}
	})

	t.Run("Reset", func(t *testing.T) {
		pool := NewTuplePool()
		cache := NewRowCache(pool, nil)
		if err := cache.SetSchema(cols); err != nil {
			t.Fatalf("Failed to set schema: %v", err)
		}
		for i := 0; i < 3; i++ {
			if err := cache.Append(cache.newTuple()); err != nil {
				t.Fatalf("Failed to append: %v", err)
			}
		}
		cache.markEOF()
		cache.Reset()

		if cache.Len() != 0 || cache.HasSchema() || cache.EOF() || cache.TotalRead() != 0 {
			t.Errorf("Expected an empty cache after reset")
		}
		if pool.Stats()["puts"] != 3 {
			t.Errorf("Expected 3 tuples recycled, got %d", pool.Stats()["puts"])
		}
	})
}
