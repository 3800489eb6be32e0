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

package dispatch

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/viaduct-dev/viaduct/concurrent"
	"github.com/viaduct-dev/viaduct/concurrent/promise"
	"github.com/viaduct-dev/viaduct/dataloader"
	"github.com/viaduct-dev/viaduct/errs"
)

// Coalescers is the per-request set of batch coalescers: one DataLoader per (typeName, fieldName)
// whose resolver declared itself batching. Contexts enqueued before
// a tick boundary are delivered to batchResolve together, exactly once per tick; the driver
// triggers the boundary through Flush when the current tick has quiesced.
//
// The coalescer is the dataloader substrate re-pointed at resolver contexts: Enqueue plays
// DataLoader.Load (the key is the context itself; OER already deduplicates logical work, so the
// loader's own cache is disabled) and Flush plays DataLoader.Dispatch across all loaders via the
// Manager.
type Coalescers struct {
	manager  dataloader.Manager
	provider Provider
	runner   concurrent.Executor

	// parked counts contexts enqueued and not yet flushed, used by the driver's tick detection.
	parked int64
}

// NewCoalescers creates the per-request coalescer set. runner, when non-nil, is the shared
// executor batch jobs are submitted to; a nil runner runs batches on the flushing goroutine.
func NewCoalescers(provider Provider, runner concurrent.Executor) *Coalescers {
	return &Coalescers{provider: provider, runner: runner}
}

// Parked returns the number of contexts awaiting a tick boundary.
func (c *Coalescers) Parked() int64 {
	return atomic.LoadInt64(&c.parked)
}

// Enqueue places ctx into the coalescer for registration's field and returns the promise that
// settles to the context's FieldValue when the batch runs.
func (c *Coalescers) Enqueue(registration *Registration, ctx *Ctx) (*promise.Promise, error) {
	loader, err := c.manager.GetOrCreate(&dataloader.RegisterInfo{
		Key: registration.TypeName + "." + registration.FieldName,
		Factory: dataloader.FactoryFunc(func() (*dataloader.DataLoader, error) {
			return dataloader.New(dataloader.Config{
				BatchLoader: &batchAdapter{registration: registration, provider: c.provider},
				Runner:      c.runner,
				CacheMap:    dataloader.NoCacheMap,
			})
		}),
	})
	if err != nil {
		return nil, err
	}

	future, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	atomic.AddInt64(&c.parked, 1)
	return future, nil
}

// Flush closes the current tick: every coalescer delivers its accumulated contexts to its batch
// resolver exactly once. Contexts enqueued after Flush begins belong to the next tick.
func (c *Coalescers) Flush(ctx context.Context) {
	atomic.StoreInt64(&c.parked, 0)
	c.manager.DispatchAll(ctx)
}

// batchAdapter bridges the dataloader's BatchLoader contract onto a BatchResolver registration.
type batchAdapter struct {
	registration *Registration
	provider     Provider
}

var _ dataloader.BatchLoader = (*batchAdapter)(nil)

// Load implements dataloader.BatchLoader: it constructs a fresh resolver instance, invokes
// BatchResolve once with the accumulated contexts in arrival order, and fans the positional
// results back out to the tasks.
func (adapter *batchAdapter) Load(goctx context.Context, tasks *dataloader.TaskList) {
	const op errs.Op = "dispatch.Coalescers"

	var ctxs []*Ctx
	for iter, end := tasks.Begin(), tasks.End(); iter != end; iter = iter.Next() {
		ctxs = append(ctxs, iter.Key().(*Ctx))
	}

	failAll := func(err error) {
		for iter, end := tasks.Begin(), tasks.End(); iter != end; iter = iter.Next() {
			iter.SetError(err)
		}
	}

	instance, err := adapter.provider.New(adapter.registration)
	if err != nil {
		failAll(err)
		return
	}

	batch, ok := instance.(BatchResolver)
	if !ok {
		failAll(errs.New(op, errs.KindResolver, fmt.Sprintf(
			"resolver for %s.%s is registered as batching but %T does not implement BatchResolver",
			adapter.registration.TypeName, adapter.registration.FieldName, instance)))
		return
	}

	results, err := invokeBatch(batch, ctxs)
	if err != nil {
		// The batch call itself threw: every context in it fails with the thrown error, attributed
		// to its own field path by the driver.
		failAll(errs.New(op, errs.KindResolver, err))
		return
	}

	if len(results) != len(ctxs) {
		failAll(errs.New(op, errs.KindBatchContract, fmt.Sprintf(
			"batch resolver for %s.%s returned %d results for %d contexts",
			adapter.registration.TypeName, adapter.registration.FieldName, len(results), len(ctxs))))
		return
	}

	i := 0
	for iter, end := tasks.Begin(), tasks.End(); iter != end; iter = iter.Next() {
		result := results[i]
		i++
		if result.Err != nil {
			iter.SetError(result.Err)
			continue
		}
		iter.Complete(result.Value)
	}
}

// invokeBatch calls BatchResolve, converting a panic into an error so a misbehaving resolver
// never crashes the request.
func invokeBatch(batch BatchResolver, ctxs []*Ctx) (results []FieldValue, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("batch resolver panicked: %v", recovered)
		}
	}()
	return batch.BatchResolve(ctxs)
}

// Invoke constructs a fresh (non-batching) resolver instance and runs it, converting a panic into
// an error.
func Invoke(provider Provider, registration *Registration, ctx *Ctx) (value interface{}, err error) {
	const op errs.Op = "dispatch.Invoke"

	instance, err := provider.New(registration)
	if err != nil {
		return nil, err
	}
	resolver, ok := instance.(Resolver)
	if !ok {
		return nil, errs.New(op, errs.KindResolver, fmt.Sprintf(
			"resolver instance %T for %s.%s does not implement Resolver",
			instance, registration.TypeName, registration.FieldName))
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			err = errs.New(op, errs.KindResolver, fmt.Sprintf("resolver panicked: %v", recovered))
		}
	}()
	value, err = resolver.Resolve(ctx)
	if err != nil {
		if _, isErrs := err.(*errs.Error); !isErrs {
			err = errs.New(op, errs.KindResolver, err)
		}
	}
	return value, err
}
