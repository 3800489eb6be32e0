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

package dataloader

// CacheMap memoizes tasks per key. The DataLoader serializes access under its own lock, so
// implementations need no locking of their own; a custom implementation can bound size or add
// TTLs.
type CacheMap interface {
	// Get returns the cached task for key, or nil.
	Get(key Key) *Task

	// Set caches the task under its key, replacing any previous entry.
	Set(task *Task)

	// Delete drops the entry for key.
	Delete(key Key)
}

// DefaultCacheMap is the unbounded map used when Config.CacheMap is nil.
type DefaultCacheMap struct {
	m map[Key]*Task
}

var _ CacheMap = (*DefaultCacheMap)(nil)

// Get implements CacheMap.
func (cache *DefaultCacheMap) Get(key Key) *Task {
	return cache.m[key]
}

// Set implements CacheMap.
func (cache *DefaultCacheMap) Set(task *Task) {
	if cache.m == nil {
		cache.m = map[Key]*Task{}
	}
	cache.m[task.Key()] = task
}

// Delete implements CacheMap.
func (cache *DefaultCacheMap) Delete(key Key) {
	delete(cache.m, key)
}

// noCacheMap is the sentinel type behind NoCacheMap.
type noCacheMap int

func (noCacheMap) Get(Key) *Task { return nil }
func (noCacheMap) Set(*Task)     {}
func (noCacheMap) Delete(Key)    {}

// NoCacheMap disables caching when given as Config.CacheMap — the right choice when a layer above
// (the OER) already deduplicates logical work.
const NoCacheMap noCacheMap = 0
