// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package lrucache provides a thread-safe, fixed-capacity least-recently-used (LRU) cache
of byte values that expire after a fixed lifetime.

Expired entries are never returned; they are dropped lazily by [Cache.Get] or
pushed out by newer entries.
*/
package lrucache

import (
	"container/list"
	"errors"
	"sync"
	"time"
)

var ErrInvalidSize = errors.New("must provide a positive size")

// Cache is a fixed-capacity LRU cache safe for concurrent use.
// Instances must be constructed with [New]; the zero value is not ready for use.
type Cache struct {
	capacity int
	ttl      time.Duration // zero means entries never expire
	now      func() time.Time

	mu    sync.Mutex
	order *list.List // front is the most recently used
	items map[string]*list.Element
}

type entry struct {
	key     string
	data    []byte
	expires time.Time // zero means never
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the lifetime of entries. A non-positive ttl keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates a cache holding at most capacity entries.
//
// It returns ErrInvalidSize if capacity is not a positive integer.
func New(capacity int, opts ...Option) (*Cache, error) {
	if capacity <= 0 {
		return nil, ErrInvalidSize
	}

	c := &Cache{
		capacity: capacity,
		now:      time.Now,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Add stores a copy of value under key.
// It reports whether an older entry was evicted to make room.
func (c *Cache) Add(key string, value []byte) bool {
	data := append([]byte{}, value...)

	var expires time.Time
	if c.ttl > 0 {
		expires = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)

		ent := el.Value.(*entry)
		ent.data, ent.expires = data, expires

		return false
	}

	c.items[key] = c.order.PushFront(&entry{key: key, data: data, expires: expires})

	if c.order.Len() <= c.capacity {
		return false
	}

	if oldest := c.order.Back(); oldest != nil {
		c.removeElement(oldest)
	}

	return true
}

// Get returns a copy of the value for key and marks it most recently used.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}

	ent := el.Value.(*entry)
	if !ent.expires.IsZero() && !c.now().Before(ent.expires) {
		c.removeElement(el)

		return nil, false
	}

	c.order.MoveToFront(el)

	return append([]byte{}, ent.data...), true
}

// Remove deletes key and reports whether it was present.
func (c *Cache) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if ok {
		c.removeElement(el)
	}

	return ok
}

func (c *Cache) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry).key)
}
