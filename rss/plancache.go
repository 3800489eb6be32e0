/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package rss

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/willf/bitset"
)

// PlanCache caches Plans by fingerprint to save planning efforts across requests. Entries, once
// inserted, are never mutated.
type PlanCache interface {
	// Get looks up the plan for the given fingerprint.
	Get(fingerprint uint64) (plan *Plan, ok bool)

	// Add adds a plan associated with the fingerprint to the cache.
	Add(fingerprint uint64, plan *Plan)
}

type lruEntry struct {
	fingerprint uint64
	plan        *Plan

	// Next and previous pointers in the doubly-linked list of elements. To simplify the
	// implementation, internally a list l is implemented as a ring, such that &l.root is both the
	// next element of the last list element (l.Back()) and the previous element of the first list
	// element (l.Front()).
	next, prev *lruEntry
}

const sizeOfLRUEntry = unsafe.Sizeof(lruEntry{})

// lruEntryAllocator hands out entries from a fixed pool, tracking occupancy in a bitset so a full
// cache never allocates.
type lruEntryAllocator struct {
	entries []lruEntry
	// Allocated entries have their corresponding bits set in the bitset.
	allocated bitset.BitSet
}

func newLRUEntryAllocator(maxEntries uint) lruEntryAllocator {
	return lruEntryAllocator{
		entries:   make([]lruEntry, maxEntries),
		allocated: *bitset.New(maxEntries),
	}
}

// New allocates an entry to store the given fingerprint and plan. It panics if there's no entry
// available; callers evict before inserting into a full cache.
func (allocator *lruEntryAllocator) New(fingerprint uint64, plan *Plan) *lruEntry {
	allocated := &allocator.allocated

	i, found := allocated.NextClear(0)
	if !found || i >= uint(len(allocator.entries)) {
		panic("LRUPlanCache: no available entry to return")
	}

	// Reserve the entry.
	entry := &allocator.entries[i]
	allocated.Set(i)

	entry.fingerprint = fingerprint
	entry.plan = plan

	return entry
}

func (allocator *lruEntryAllocator) indexOf(entry *lruEntry) uint {
	entryAddr := uintptr(unsafe.Pointer(entry))
	firstEntryAddr := uintptr(unsafe.Pointer(&allocator.entries[0]))
	return uint((entryAddr - firstEntryAddr) / sizeOfLRUEntry)
}

// Free deallocates the entry. It doesn't free the memory (in fact we're unable to do that.)
// Instead, it marks the entry to be free for later reuse.
func (allocator *lruEntryAllocator) Free(entry *lruEntry) {
	// Clear reference.
	entry.plan = nil
	// Find the index of the given entry from its address.
	i := allocator.indexOf(entry)
	// Unset the bit in allocated.
	allocator.allocated.Clear(i)
}

// lruEvictList is a doubly linked list that maintains the eviction order for LRUPlanCache. Its
// implementation mirrors container/list [0] and only provides operations used by LRUPlanCache.
//
// [0]: https://go.googlesource.com/go/+/5bc1fd4/src/container/list/list.go
type lruEvictList struct {
	// Allocator that manages allocation and deallocation for the entry
	allocator lruEntryAllocator

	// sentinel list element, only &root, root.prev, and root.next are used
	root lruEntry

	// current list length excluding (this) sentinel element
	len uint
}

func newLRUEvictList(maxEntries uint) *lruEvictList {
	l := &lruEvictList{
		allocator: newLRUEntryAllocator(maxEntries),
	}
	l.root.next = &l.root
	l.root.prev = &l.root
	return l
}

// Len returns the number of elements of list l.
// The complexity is O(1).
func (l *lruEvictList) Len() uint { return l.len }

// Back returns the last element of list l or nil if the list is empty.
func (l *lruEvictList) Back() *lruEntry {
	if l.len == 0 {
		return nil
	}
	return l.root.prev
}

// insert inserts e after at, increments l.len, and returns e.
func (l *lruEvictList) insert(e, at *lruEntry) *lruEntry {
	n := at.next
	at.next = e
	e.prev = at
	e.next = n
	n.prev = e
	l.len++
	return e
}

// remove removes e from its list, decrements l.len, and notifies allocator to mark it as free.
func (l *lruEvictList) remove(e *lruEntry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.next = nil // avoid memory leaks
	e.prev = nil // avoid memory leaks
	l.len--
	l.allocator.Free(e)
}

// move moves e to next to at and returns e.
func (l *lruEvictList) move(e, at *lruEntry) *lruEntry {
	if e == at {
		return e
	}
	e.prev.next = e.next
	e.next.prev = e.prev

	n := at.next
	at.next = e
	e.prev = at
	e.next = n
	n.prev = e

	return e
}

// Remove removes e from l if e is an element of list l.
// The given entry must not be nil.
func (l *lruEvictList) Remove(e *lruEntry) {
	l.remove(e)
}

// PushFront inserts a new entry with the given values at the front of list l and returns it.
func (l *lruEvictList) PushFront(fingerprint uint64, plan *Plan) *lruEntry {
	return l.insert(l.allocator.New(fingerprint, plan), &l.root)
}

// MoveToFront moves element e to the front of list l.
// If e is not an element of l, the list is not modified.
// The element must not be nil.
func (l *lruEvictList) MoveToFront(e *lruEntry) {
	if l.root.next == e {
		return
	}
	l.move(e, &l.root)
}

// LRUPlanCache is a thread-safe LRU cache that implements PlanCache. It serves as the default
// plan cache for the execution driver. Most of the implementation directly derives from
// groupcache/lru [0] with a sync.Mutex added to make it safe for concurrent access and a
// fixed-pool bitset allocator to bound memory.
//
// [0]: https://github.com/golang/groupcache/tree/master/lru
type LRUPlanCache struct {
	// The maximum number of cached plans before an item is evicted. It must be greater than 0.
	maxEntries uint

	// m guards cache and evictList.
	m         sync.Mutex
	cache     map[uint64]*lruEntry
	evictList *lruEvictList
}

var _ PlanCache = (*LRUPlanCache)(nil)

var errZeroCacheSize = errors.New("LRUPlanCache: must specify a non-zero cache size")

// NewLRUPlanCache creates a new LRUPlanCache with the given size.
func NewLRUPlanCache(maxEntries uint) (*LRUPlanCache, error) {
	if maxEntries == 0 {
		return nil, errZeroCacheSize
	}

	return &LRUPlanCache{
		maxEntries: maxEntries,
		cache:      make(map[uint64]*lruEntry, maxEntries),
		evictList:  newLRUEvictList(maxEntries),
	}, nil
}

// Get implements PlanCache.
func (c *LRUPlanCache) Get(fingerprint uint64) (plan *Plan, ok bool) {
	var (
		m         = &c.m
		cache     = c.cache
		evictList = c.evictList
	)

	m.Lock()

	if entry, hit := cache[fingerprint]; hit {
		evictList.MoveToFront(entry)
		// Set up return values.
		plan = entry.plan
		ok = true
	}

	m.Unlock()
	return
}

// Add implements PlanCache.
func (c *LRUPlanCache) Add(fingerprint uint64, plan *Plan) {
	var (
		m         = &c.m
		cache     = c.cache
		evictList = c.evictList
	)

	m.Lock()
	if e, ok := cache[fingerprint]; ok {
		evictList.MoveToFront(e)
		e.plan = plan
		m.Unlock()
		return
	}

	if evictList.Len() >= c.maxEntries {
		c.removeOldestLocked()
	}
	e := evictList.PushFront(fingerprint, plan)
	cache[fingerprint] = e

	m.Unlock()
}

// removeOldestLocked removes the oldest entry from the cache. Callers must hold c.m.
func (c *LRUPlanCache) removeOldestLocked() {
	var (
		cache     = c.cache
		evictList = c.evictList
	)

	e := evictList.Back()
	if e != nil {
		key := e.fingerprint
		evictList.Remove(e)
		delete(cache, key)
	}
}

// NopPlanCache does nothing; every Get misses.
type NopPlanCache struct{}

var _ PlanCache = NopPlanCache{}

// Get implements PlanCache.
func (NopPlanCache) Get(fingerprint uint64) (plan *Plan, ok bool) {
	return
}

// Add implements PlanCache.
func (NopPlanCache) Add(fingerprint uint64, plan *Plan) {}
