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

// Package concurrent provides the small task/executor abstraction the engine submits background
// work to: batch-load jobs from the dispatcher's coalescers, primarily. An Executor decouples
// "this work should run" from "on which goroutine", so embedders can cap the engine's background
// parallelism with a bounded pool or run everything inline.
package concurrent

import (
	"github.com/viaduct-dev/viaduct/concurrent/promise"
)

// Task is one unit of work an Executor can run.
type Task interface {
	// Run performs the work. The returned value and error are delivered through the TaskHandle the
	// executor handed out at submission.
	Run() (interface{}, error)
}

// TaskFunc adapts a plain function to Task.
type TaskFunc func() (interface{}, error)

var _ Task = (TaskFunc)(nil)

// Run implements Task.
func (f TaskFunc) Run() (interface{}, error) {
	return f()
}

// TaskHandle tracks one submitted task.
type TaskHandle interface {
	// Result returns the settled outcome of the task, suspending the calling goroutine until the
	// task finished.
	Result() (interface{}, error)
}

// Executor runs submitted tasks. Implementations must be safe for concurrent submission from many
// request goroutines.
type Executor interface {
	// Submit schedules task and returns a handle to its eventual result. Submission fails when the
	// executor has been shut down.
	Submit(task Task) (TaskHandle, error)
}

// taskHandle is the promise-backed handle both built-in executors hand out.
type taskHandle struct {
	p *promise.Promise
}

// Result implements TaskHandle.
func (h taskHandle) Result() (interface{}, error) {
	return promise.BlockOn(h.p)
}

// Inline is an Executor that runs every task synchronously on the submitting goroutine. It is the
// degenerate pool, useful in tests and as an explicit "no background parallelism" choice.
type Inline struct{}

var _ Executor = Inline{}

// Submit implements Executor.
func (Inline) Submit(task Task) (TaskHandle, error) {
	p, resolver := promise.New()
	value, err := task.Run()
	if err != nil {
		resolver.Reject(err)
	} else {
		resolver.Resolve(value)
	}
	return taskHandle{p: p}, nil
}
