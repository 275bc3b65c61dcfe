package cache

import (
	"testing"
	"time"
)

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache[string](2, time.Hour)
	c.Set("a", "1")
	c.Set("b", "2")
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("a should be cached")
	}
	c.Set("c", "3") // evicts b, the least recently used

	if _, ok := c.Get("b"); ok {
		t.Errorf("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Errorf("a = %q, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("size = %d, want 2", c.Size())
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](10, time.Minute).WithClock(func() time.Time { return now })
	c.Set("k", 42)
	c.Set("j", 7)

	now = now.Add(30 * time.Second)
	if v, ok := c.Get("k"); !ok || v != 42 {
		t.Fatalf("k should still be live")
	}

	now = now.Add(time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Errorf("k should have expired")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired = %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Errorf("size = %d, want 0", c.Size())
	}
}

func TestLRUCacheNoTTL(t *testing.T) {
	now := time.Now()
	c := NewLRUCache[int](1, 0).WithClock(func() time.Time { return now })
	c.Set("k", 1)
	now = now.Add(24 * time.Hour)
	if _, ok := c.Get("k"); !ok {
		t.Fatalf("entries without ttl must not expire")
	}
}

func TestJanitorSweep(t *testing.T) {
	now := time.Now()
	a := NewLRUCache[int](10, time.Second).WithClock(func() time.Time { return now })
	b := NewLRUCache[int](10, time.Second).WithClock(func() time.Time { return now })
	a.Set("x", 1)
	b.Set("y", 2)
	b.Set("z", 3)

	j := NewJanitor(nil)
	j.Register(a)
	j.Register(b)
	now = now.Add(2 * time.Second)

	if n := j.Sweep(); n != 3 {
		t.Fatalf("Sweep = %d, want 3", n)
	}
}

func TestLRUCacheClear(t *testing.T) {
	c := NewLRUCache[int](4, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	if n := c.Clear(); n != 2 {
		t.Errorf("Clear = %d, want 2", n)
	}
	if _, ok := c.Get("a"); ok || c.Size() != 0 {
		t.Errorf("cache not empty after Clear")
	}
	c.Set("c", 3)
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Errorf("cache unusable after Clear")
	}
}
