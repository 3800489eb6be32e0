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

// Package dataloader accumulates keyed load requests and hands them to a batch loader in one
// call. It is the engine under the dispatcher's batch coalescer: Load enqueues and returns a
// promise, Dispatch cuts the accumulated queue loose as one batch, and a Manager groups loaders
// so a whole tick flushes together.
package dataloader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/viaduct-dev/viaduct/concurrent"
	"github.com/viaduct-dev/viaduct/concurrent/promise"
)

// Key identifies one value to load. Keys must be usable as map keys when caching is enabled; with
// caching off they are opaque.
type Key interface{}

// BatchLoader fetches every task of one batch. Implementations must settle every task in the list
// (Complete or SetError); the dispatcher completes any leftovers with an error so a forgotten
// task can never wedge its waiters.
type BatchLoader interface {
	Load(ctx context.Context, tasks *TaskList)
}

// BatchLoadFunc adapts a function to BatchLoader.
type BatchLoadFunc func(ctx context.Context, tasks *TaskList)

// Load calls f.
func (f BatchLoadFunc) Load(ctx context.Context, tasks *TaskList) {
	f(ctx, tasks)
}

// Config assembles a DataLoader.
type Config struct {
	// BatchLoader fetches batches. Required.
	BatchLoader BatchLoader

	// Runner, when non-nil, executes batch jobs instead of the goroutine that called Dispatch.
	Runner concurrent.Executor

	// MaxBatchSize splits an oversized queue into batches of at most this many tasks; 0 means
	// unbounded.
	MaxBatchSize int

	// CacheMap memoizes tasks by key: nil enables the default map, NoCacheMap disables caching
	// entirely (the right choice when a layer above already deduplicates).
	CacheMap CacheMap
}

// DataLoader accumulates load requests between dispatches.
type DataLoader struct {
	config Config
	cache  CacheMap

	// mu guards queue; the queue pointer is swapped out whole at dispatch, so an in-flight batch
	// never races new enqueues.
	mu    sync.Mutex
	queue *TaskList
}

var errNoBatchLoader = errors.New("dataloader: a BatchLoader is required")

// New builds a DataLoader from config.
func New(config Config) (*DataLoader, error) {
	if config.BatchLoader == nil {
		return nil, errNoBatchLoader
	}

	loader := &DataLoader{config: config, queue: &TaskList{}}
	switch config.CacheMap {
	case nil:
		loader.cache = &DefaultCacheMap{}
	case NoCacheMap:
		loader.cache = nil
	default:
		loader.cache = config.CacheMap
	}
	return loader, nil
}

// Load enqueues a request for key and returns the promise of its value. With caching enabled, a
// key that was ever loaded (or is already queued) shares its task.
func (loader *DataLoader) Load(key Key) (*promise.Promise, error) {
	if key == nil {
		return nil, errors.New("dataloader: a key is required")
	}

	loader.mu.Lock()
	if loader.cache != nil {
		if cached := loader.cache.Get(key); cached != nil {
			loader.mu.Unlock()
			return cached.promise, nil
		}
	}
	task := newTask(key)
	if loader.cache != nil {
		loader.cache.Set(task)
	}
	loader.queue.push(task)
	loader.mu.Unlock()

	return task.promise, nil
}

// Dispatch cuts the queue accumulated so far loose and runs it through the batch loader, split
// per MaxBatchSize. Requests enqueued after Dispatch begins belong to the next batch.
func (loader *DataLoader) Dispatch(ctx context.Context) {
	loader.mu.Lock()
	pending := loader.queue
	if pending.Empty() {
		loader.mu.Unlock()
		return
	}
	loader.queue = &TaskList{}
	loader.mu.Unlock()

	for _, batch := range pending.split(loader.config.MaxBatchSize) {
		loader.runBatch(ctx, batch)
	}
}

// runBatch executes one batch on the configured runner, or inline.
func (loader *DataLoader) runBatch(ctx context.Context, batch *TaskList) {
	job := concurrent.TaskFunc(func() (interface{}, error) {
		loader.config.BatchLoader.Load(ctx, batch)

		// Settle anything the loader forgot so waiters can't hang.
		for iter, end := batch.Begin(), batch.End(); iter != end; iter = iter.Next() {
			if !iter.Settled() {
				iter.SetError(fmt.Errorf(
					"dataloader: %T left the task for key %v unsettled", loader.config.BatchLoader, iter.Key()))
			}
		}
		return nil, nil
	})

	if loader.config.Runner != nil {
		if _, err := loader.config.Runner.Submit(job); err == nil {
			return
		}
		// A rejected submission (runner shut down) falls through to inline execution.
	}
	job.Run()
}

// Prime seeds the cache with an already-known value; an existing entry wins.
func (loader *DataLoader) Prime(key Key, value interface{}) {
	if loader.cache == nil {
		return
	}
	loader.mu.Lock()
	if loader.cache.Get(key) == nil {
		task := newTask(key)
		task.Complete(value)
		loader.cache.Set(task)
	}
	loader.mu.Unlock()
}

// Clear drops a cached key so the next Load refetches it.
func (loader *DataLoader) Clear(key Key) {
	if loader.cache == nil {
		return
	}
	loader.mu.Lock()
	loader.cache.Delete(key)
	loader.mu.Unlock()
}
