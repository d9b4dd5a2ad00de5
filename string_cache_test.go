package tsodbc

import (
	"fmt"
	"testing"
)

func TestStringCache(t *testing.T) {
	cache := NewStringCache()

	t.Run("Get", func(t *testing.T) {
		if s := cache.Get(""); s != "" {
			t.Errorf("Expected empty string, got %q", s)
		}

		s := cache.Get(string([]byte("small")))
		if s != "small" {
			t.Errorf("Expected 'small', got %q", s)
		}
		if s2 := cache.Get(string([]byte("small"))); s2 != "small" {
			t.Errorf("Expected 'small', got %q", s2)
		}
		hits, misses := cache.Stats()
		if hits != 1 || misses != 1 {
			t.Errorf("Expected 1 hit and 1 miss, got %d and %d", hits, misses)
		}
		if cache.Len() != 1 {
			t.Errorf("Expected 1 interned string, got %d", cache.Len())
		}

		long := generateString(maxInternedStringLen)
		if s := cache.Get(long); s != long {
			t.Errorf("Expected string of length %d, got length %d", len(long), len(s))
		}
		if cache.Len() != 1 {
			t.Errorf("Expected long strings not to be interned, got %d entries", cache.Len())
		}
	})

	t.Run("Reset", func(t *testing.T) {
		cache.Get("before reset")
		cache.Reset()
		if cache.Len() != 0 {
			t.Errorf("Expected an empty cache after reset, got %d entries", cache.Len())
		}
		if hits, misses := cache.Stats(); hits != 0 || misses != 0 {
			t.Errorf("Expected stats cleared, got %d and %d", hits, misses)
		}
	})
}

func TestStringCacheBounded(t *testing.T) {
	cache := NewStringCache()
	for i := 0; i < maxInternedStrings+500; i++ {
		v := generateStringWithNumber(i)
		if s := cache.Get(v); s != v {
			t.Fatalf("Expected %q, got %q", v, s)
		}
	}
	if cache.Len() != maxInternedStrings {
		t.Errorf("Expected %d interned strings, got %d", maxInternedStrings, cache.Len())
	}

	// text seen before the cap still hits
	cache.Get(generateStringWithNumber(0))
	if hits, _ := cache.Stats(); hits != 1 {
		t.Errorf("Expected 1 hit, got %d", hits)
	}
}

func BenchmarkStringCache(b *testing.B) {
	cache := NewStringCache()

	smallStrings := make([]string, 1000)
	for i := 0; i < 1000; i++ {
		smallStrings[i] = generateStringWithNumber(i % 50)
	}

	b.Run("LowCardinality", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			cache.Get(smallStrings[i%5])
		}
	})

	b.Run("MixedWorkload", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			switch i % 20 {
			case 0, 1, 2, 3, 4, 5, 6, 7, 8, 9:
				cache.Get(smallStrings[i%15])
			default:
				cache.Get(fmt.Sprintf("unique-string-%d", i))
			}
		}
	})
}

// Helper to generate a deterministic string of given length
func generateString(length int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)

	for i := 0; i < length; i++ {
		result[i] = chars[i%len(chars)]
	}

	return string(result)
}

// Helper to generate a string with a number
func generateStringWithNumber(n int) string {
	return generateString(5) + "-" + fmt.Sprintf("%d", n)
}
