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

import (
	"context"
	"fmt"
	"sync"
)

// Factory creates a DataLoader on first use of its registration key.
type Factory interface {
	Create() (*DataLoader, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func() (*DataLoader, error)

// Create calls f.
func (f FactoryFunc) Create() (*DataLoader, error) {
	return f()
}

// RegisterInfo names a loader registration: a unique string key plus the factory that builds the
// loader lazily.
type RegisterInfo struct {
	Key     string
	Factory Factory
}

// Manager is a keyed registry of DataLoaders whose queues flush together: the dispatcher keeps
// one Manager per tick frame and calls DispatchAll at each tick boundary. The zero Manager is
// ready to use.
type Manager struct {
	loaders sync.Map // string -> *DataLoader
}

// GetOrCreate returns the loader registered under info.Key, building it through info.Factory on
// first use. Concurrent first uses race benignly: one instance wins, the others are dropped
// before any task is enqueued on them.
func (manager *Manager) GetOrCreate(info *RegisterInfo) (*DataLoader, error) {
	if existing, ok := manager.loaders.Load(info.Key); ok {
		return existing.(*DataLoader), nil
	}

	if info.Factory == nil {
		return nil, fmt.Errorf("dataloader: registration %q has no factory", info.Key)
	}
	created, err := info.Factory.Create()
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("dataloader: factory for %q returned nil", info.Key)
	}

	winner, _ := manager.loaders.LoadOrStore(info.Key, created)
	return winner.(*DataLoader), nil
}

// DispatchAll flushes every registered loader's queue.
func (manager *Manager) DispatchAll(ctx context.Context) {
	manager.loaders.Range(func(_, value interface{}) bool {
		value.(*DataLoader).Dispatch(ctx)
		return true
	})
}
