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

package concurrent_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/viaduct-dev/viaduct/concurrent"
)

func TestPoolRunsEverySubmittedTask(t *testing.T) {
	pool, err := concurrent.NewPool(4)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer pool.Shutdown()

	var ran int64
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		i := i
		handle, err := pool.Submit(concurrent.TaskFunc(func() (interface{}, error) {
			atomic.AddInt64(&ran, 1)
			return i, nil
		}))
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := handle.Result()
			if err != nil {
				t.Errorf("Result: %v", err)
				return
			}
			if value != i {
				t.Errorf("got %v, want %d", value, i)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt64(&ran); got != 64 {
		t.Fatalf("ran %d tasks, want 64", got)
	}
}

func TestPoolDeliversTaskErrors(t *testing.T) {
	pool, err := concurrent.NewPool(1)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer pool.Shutdown()

	boom := errors.New("boom")
	handle, err := pool.Submit(concurrent.TaskFunc(func() (interface{}, error) {
		return nil, boom
	}))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := handle.Result(); !errors.Is(err, boom) {
		t.Fatalf("got %v, want %v", err, boom)
	}
}

func TestPoolRecoversFromPanickingTasks(t *testing.T) {
	pool, err := concurrent.NewPool(1)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer pool.Shutdown()

	handle, err := pool.Submit(concurrent.TaskFunc(func() (interface{}, error) {
		panic("kaboom")
	}))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := handle.Result(); err == nil {
		t.Fatal("expected an error from a panicking task")
	}

	// The worker must survive to run the next task.
	handle, err = pool.Submit(concurrent.TaskFunc(func() (interface{}, error) {
		return "still alive", nil
	}))
	if err != nil {
		t.Fatalf("Submit after panic: %v", err)
	}
	value, err := handle.Result()
	if err != nil || value != "still alive" {
		t.Fatalf("got (%v, %v), want (still alive, nil)", value, err)
	}
}

func TestPoolRejectsSubmissionsAfterShutdown(t *testing.T) {
	pool, err := concurrent.NewPool(1)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	pool.Shutdown()

	if _, err := pool.Submit(concurrent.TaskFunc(func() (interface{}, error) {
		return nil, nil
	})); !errors.Is(err, concurrent.ErrPoolClosed) {
		t.Fatalf("got %v, want ErrPoolClosed", err)
	}
}

func TestInlineRunsOnTheCallingGoroutine(t *testing.T) {
	ran := false
	handle, err := concurrent.Inline{}.Submit(concurrent.TaskFunc(func() (interface{}, error) {
		ran = true
		return 42, nil
	}))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !ran {
		t.Fatal("inline executor should run the task before Submit returns")
	}
	value, err := handle.Result()
	if err != nil || value != 42 {
		t.Fatalf("got (%v, %v), want (42, nil)", value, err)
	}
}
