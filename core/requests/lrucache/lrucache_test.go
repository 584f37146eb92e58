// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package lrucache

import (
	"bytes"
	"strconv"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.now = f.now.Add(d)
}

// TestNew checks creation with both valid and invalid sizes.
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("ValidSize", func(t *testing.T) {
		t.Parallel()

		cache, err := New(3, WithTTL(time.Minute))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, ok := cache.Get("missing"); ok {
			t.Error("expected a new cache to be empty")
		}
	})

	t.Run("InvalidSize", func(t *testing.T) {
		t.Parallel()

		cache, err := New(0)
		if err != ErrInvalidSize {
			t.Fatalf("expected ErrInvalidSize, got %v", err)
		}

		if cache != nil {
			t.Error("expected no cache to be returned on error")
		}
	})
}

// TestCache_AddAndGet verifies retrieval and eviction of the least recently used entry.
func TestCache_AddAndGet(t *testing.T) {
	t.Parallel()

	cache, _ := New(2)

	if cache.Add("foo", []byte("bar")) {
		t.Error("eviction should not occur when the cache is not full")
	}

	value, ok := cache.Get("foo")
	if !ok || string(value) != "bar" {
		t.Errorf("expected 'bar', got %q (found=%v)", value, ok)
	}

	cache.Add("hello", []byte("world"))

	// "foo" was used before "hello" was added, so it is now the oldest.
	if !cache.Add("key3", []byte("value3")) {
		t.Error("expected eviction when adding third key to size 2 cache")
	}

	if _, ok := cache.Get("foo"); ok {
		t.Error("expected 'foo' to be evicted, but it still exists")
	}
}

// TestCache_AddExistingKey ensures re-adding a key updates it in place.
func TestCache_AddExistingKey(t *testing.T) {
	t.Parallel()

	cache, _ := New(2)

	cache.Add("k1", []byte("v1"))
	cache.Add("k2", []byte("v2"))

	if cache.Add("k1", []byte("v1-updated")) {
		t.Error("re-adding an existing key should not evict anything")
	}

	if val, _ := cache.Get("k1"); string(val) != "v1-updated" {
		t.Errorf("expected 'v1-updated', got %q", val)
	}

	if _, ok := cache.Get("k2"); !ok {
		t.Error("expected 'k2' to survive an in-place update")
	}
}

func TestCache_Remove(t *testing.T) {
	t.Parallel()

	cache, _ := New(2)
	cache.Add("k", []byte("v"))

	if !cache.Remove("k") {
		t.Error("expected Remove to report a present key")
	}

	if cache.Remove("k") {
		t.Error("expected Remove to report a missing key")
	}

	if _, ok := cache.Get("k"); ok {
		t.Error("expected 'k' to be gone")
	}
}

func TestCache_Expiry(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	cache, _ := New(2, WithTTL(time.Minute), WithClock(clock.Now))

	cache.Add("k", []byte("v"))

	clock.Advance(59 * time.Second)

	if _, ok := cache.Get("k"); !ok {
		t.Error("expected 'k' to be alive before its TTL")
	}

	clock.Advance(time.Second)

	if _, ok := cache.Get("k"); ok {
		t.Error("expected 'k' to be expired at its TTL")
	}

	cache.Add("k", []byte("again"))

	if v, ok := cache.Get("k"); !ok || string(v) != "again" {
		t.Error("expected a re-added entry to get a fresh lifetime")
	}
}

func TestCache_NoTTLNeverExpires(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	cache, _ := New(1, WithClock(clock.Now))

	cache.Add("k", []byte("v"))
	clock.Advance(24 * 365 * time.Hour)

	if _, ok := cache.Get("k"); !ok {
		t.Error("expected entry without TTL to survive")
	}
}

func TestCache_ReturnsCopies(t *testing.T) {
	t.Parallel()

	cache, _ := New(1)

	in := []byte("abc")
	cache.Add("k", in)
	in[0] = 'x'

	out, _ := cache.Get("k")
	out[1] = 'y'

	again, _ := cache.Get("k")
	if string(again) != "abc" {
		t.Errorf("cached value was mutated through a caller slice: %q", again)
	}
}

// TestCache_Concurrency runs concurrent Add/Get/Remove.
func TestCache_Concurrency(t *testing.T) {
	t.Parallel()

	cache, err := New(16, WithTTL(time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup

	for i := range 64 {
		key := "key-" + strconv.Itoa(i%8)
		payload := []byte(key)

		wg.Add(3)

		go func() {
			defer wg.Done()

			cache.Add(key, payload)
		}()

		go func() {
			defer wg.Done()

			if v, ok := cache.Get(key); ok && !bytes.Equal(v, payload) {
				t.Errorf("corrupted value for %s", key)
			}
		}()

		go func() {
			defer wg.Done()

			cache.Remove(key)
		}()
	}

	wg.Wait()
}
