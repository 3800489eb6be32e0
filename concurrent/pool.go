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

package concurrent

import (
	"errors"
	"fmt"
	"sync"

	"github.com/viaduct-dev/viaduct/concurrent/promise"
)

// ErrPoolClosed is returned by Submit after Shutdown.
var ErrPoolClosed = errors.New("concurrent: pool is shut down")

// Pool is a bounded worker pool: at most the configured number of tasks run at once, a small
// buffer absorbs bursts, and submissions beyond that block until a worker frees a slot. It is the
// process-wide executor the driver hands batch-load jobs to. Workers are goroutines and park on
// the task channel when idle.
type Pool struct {
	tasks chan poolTask

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

var _ Executor = (*Pool)(nil)

type poolTask struct {
	task     Task
	resolver *promise.Resolver
}

// NewPool starts a pool with the given number of workers.
func NewPool(workers int) (*Pool, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("concurrent: pool requires at least one worker, got %d", workers)
	}

	pool := &Pool{
		// A small buffer absorbs submission bursts without making callers wait for a free worker.
		tasks: make(chan poolTask, workers*2),
	}
	pool.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go pool.worker()
	}
	return pool, nil
}

// worker drains the task channel until it closes, settling each task's promise.
func (pool *Pool) worker() {
	defer pool.wg.Done()
	for pending := range pool.tasks {
		value, err := runTask(pending.task)
		if err != nil {
			pending.resolver.Reject(err)
			continue
		}
		pending.resolver.Resolve(value)
	}
}

// runTask runs one task, converting a panic into an error so a misbehaving job never kills a
// worker.
func runTask(task Task) (value interface{}, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("concurrent: task panicked: %v", recovered)
		}
	}()
	return task.Run()
}

// Submit implements Executor.
func (pool *Pool) Submit(task Task) (TaskHandle, error) {
	pool.mu.Lock()
	if pool.closed {
		pool.mu.Unlock()
		return nil, ErrPoolClosed
	}
	p, resolver := promise.New()
	// Enqueue under the lock so Shutdown can't close the channel between the check and the send.
	pool.tasks <- poolTask{task: task, resolver: resolver}
	pool.mu.Unlock()

	return taskHandle{p: p}, nil
}

// Shutdown stops accepting tasks, lets queued tasks finish, and waits for the workers to exit.
func (pool *Pool) Shutdown() {
	pool.mu.Lock()
	if pool.closed {
		pool.mu.Unlock()
		return
	}
	pool.closed = true
	close(pool.tasks)
	pool.mu.Unlock()

	pool.wg.Wait()
}
