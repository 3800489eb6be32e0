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

// Package promise provides a channel-backed asynchronous value: a handle that a producer
// resolves exactly once and that any number of consumers can await without blocking an OS thread.
//
// Poll/Waker-style futures earn their keep in runtimes without a scheduler. Go's goroutines
// already park on channel receives without blocking a platform thread, so a Promise just closes
// a channel when it settles, and every Await (any number of them, concurrently) wakes up on that
// close.
package promise

import (
	"context"
	"sync"
)

// Promise is an asynchronous value that settles at most once, to either a value or an error. It
// plays the role of OER's Pending entry and of a dataloader/batch-coalescer slot.
type Promise struct {
	done  chan struct{}
	once  sync.Once
	value interface{}
	err   error
}

// New creates an unsettled Promise along with the Resolver used to settle it.
func New() (*Promise, *Resolver) {
	p := &Promise{done: make(chan struct{})}
	return p, &Resolver{p: p}
}

// Ready returns a Promise already settled with value.
func Ready(value interface{}) *Promise {
	p := &Promise{done: make(chan struct{}), value: value}
	close(p.done)
	return p
}

// Err returns a Promise already settled with err.
func Err(err error) *Promise {
	p := &Promise{done: make(chan struct{}), err: err}
	close(p.done)
	return p
}

// Resolver settles the Promise it was created alongside. Only the first call to Resolve or Reject
// has an effect; subsequent calls are no-ops, matching OER's "exactly-once completion" invariant.
type Resolver struct {
	p *Promise
}

// Resolve settles the promise with a value.
func (r *Resolver) Resolve(value interface{}) {
	r.p.once.Do(func() {
		r.p.value = value
		close(r.p.done)
	})
}

// Reject settles the promise with an error.
func (r *Resolver) Reject(err error) {
	r.p.once.Do(func() {
		r.p.err = err
		close(r.p.done)
	})
}

// Settled reports whether the promise has already settled.
func (p *Promise) Settled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Await blocks the calling goroutine (not a platform thread -- Go's scheduler parks the goroutine
// on the channel receive) until the promise settles, or ctx is done first.
func (p *Promise) Await(ctx context.Context) (interface{}, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// BlockOn awaits p against context.Background(). It is a convenience for call sites (and tests)
// that have no cancellation signal to propagate.
func BlockOn(p *Promise) (interface{}, error) {
	return p.Await(context.Background())
}

// Join returns a Promise that settles once every input promise has settled. On success its value
// is a []interface{} of the inputs' values in the same order they were passed; if any input
// settles with an error, Join settles with the first such error (by input order) once all inputs
// have settled.
func Join(promises ...*Promise) *Promise {
	joined, resolver := New()
	if len(promises) == 0 {
		resolver.Resolve([]interface{}{})
		return joined
	}

	go func() {
		values := make([]interface{}, len(promises))
		var firstErr error
		for i, p := range promises {
			v, err := BlockOn(p)
			if err != nil && firstErr == nil {
				firstErr = err
				continue
			}
			values[i] = v
		}
		if firstErr != nil {
			resolver.Reject(firstErr)
			return
		}
		resolver.Resolve(values)
	}()

	return joined
}
