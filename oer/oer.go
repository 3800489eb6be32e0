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

// Package oer implements the Object Engine Result: the per-request, per-logical-object memoized
// result graph that deduplicates field work and mediates concurrency.
//
// Each Node maps (fieldName, argumentFingerprint) to one of Pending, Value or Error. The first
// requester of a key installs a Pending entry and becomes responsible for computing it; every
// concurrent requester attaches to the same entry and awaits its settlement, which guarantees
// at-most-one resolver invocation per key. Entries, once settled, are immutable. Nodes form a
// graph paralleling the response shape; re-entrant subqueries share the same Graph, which is what
// makes deduplication span re-entries.
package oer

import (
	"context"
	"sync"

	"github.com/viaduct-dev/viaduct/concurrent/promise"
	"github.com/viaduct-dev/viaduct/errs"
)

// Key identifies one memoized computation on a Node.
type Key struct {
	// Field is the schema field name (not the alias: two aliases of the same field with the same
	// arguments share one computation).
	Field string

	// Arguments is the canonical fingerprint of the field's coerced arguments (see
	// FingerprintArguments).
	Arguments string
}

// entry is one slot of the memoization map: a promise that the computing goroutine settles
// exactly once.
type entry struct {
	p *promise.Promise
	r *promise.Resolver
}

// Handle is a consumer's reference to an entry.
type Handle struct {
	p *promise.Promise
}

// Await suspends the calling goroutine until the entry settles. It never blocks a platform
// thread: the goroutine parks on a channel receive.
func (h Handle) Await(ctx context.Context) (interface{}, error) {
	return h.p.Await(ctx)
}

// Settled reports whether the entry has already settled.
func (h Handle) Settled() bool {
	return h.p.Settled()
}

// A Node holds the memoization map for one logical object.
type Node struct {
	graph *Graph

	// typeName is the static type the node was allocated for; concrete overrides it once the
	// runtime object type is known (abstract-typed fields).
	typeName string
	concrete string

	mu      sync.Mutex
	entries map[Key]*entry

	// aliases records, per response key, which entry produced it, so the snapshot pass can walk
	// the plan without re-fingerprinting arguments.
	aliases map[string]Key
}

// TypeName returns the node's concrete type name if one was recorded, the static type otherwise.
func (n *Node) TypeName() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.concrete != "" {
		return n.concrete
	}
	return n.typeName
}

// SetConcreteType records the runtime object type of the node's value, used to match conditional
// (fragment-typed) selections during snapshot.
func (n *Node) SetConcreteType(name string) {
	n.mu.Lock()
	n.concrete = name
	n.mu.Unlock()
}

// GetOrStart atomically looks up the entry for key, installing a Pending entry when absent. It
// returns started=true to exactly one caller per key; that caller must eventually settle the
// entry through Complete or CompleteError.
func (n *Node) GetOrStart(key Key) (started bool, handle Handle) {
	n.mu.Lock()
	if e, ok := n.entries[key]; ok {
		n.mu.Unlock()
		return false, Handle{p: e.p}
	}

	p, r := promise.New()
	e := &entry{p: p, r: r}
	n.entries[key] = e
	n.mu.Unlock()

	// Registered outside n.mu: the graph lock and the node lock are never held together.
	n.graph.noteEntry(e)
	return true, Handle{p: p}
}

// Complete transitions the entry for key from Pending to Value. Completing an already-settled
// entry is a no-op (exactly-once).
func (n *Node) Complete(key Key, value interface{}) {
	if e := n.lookup(key); e != nil {
		e.r.Resolve(value)
	}
}

// CompleteError transitions the entry for key from Pending to Error. Completing an
// already-settled entry is a no-op (exactly-once).
func (n *Node) CompleteError(key Key, err error) {
	if e := n.lookup(key); e != nil {
		e.r.Reject(err)
	}
}

// Await suspends until the entry for key settles. Awaiting a key that was never started fails
// with an internal error rather than deadlocking.
func (n *Node) Await(ctx context.Context, key Key) (interface{}, error) {
	e := n.lookup(key)
	if e == nil {
		return nil, errs.Internalf("oer.Node.Await", "no entry for key %s(%s)", key.Field, key.Arguments)
	}
	return e.p.Await(ctx)
}

// BindAlias records that the response key alias was produced by the entry at key.
func (n *Node) BindAlias(alias string, key Key) {
	n.mu.Lock()
	n.aliases[alias] = key
	n.mu.Unlock()
}

// AliasKey returns the entry key bound to a response key.
func (n *Node) AliasKey(alias string) (Key, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	key, ok := n.aliases[alias]
	return key, ok
}

func (n *Node) lookup(key Key) *entry {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.entries[key]
}

// Peek returns the settled result for an alias without suspending. ok is false when the alias was
// never bound or its entry hasn't settled (a conditional selection whose type condition didn't
// match, or an engine bug).
func (n *Node) Peek(alias string) (value interface{}, err error, ok bool) {
	key, bound := n.AliasKey(alias)
	if !bound {
		return nil, nil, false
	}
	e := n.lookup(key)
	if e == nil || !e.p.Settled() {
		return nil, nil, false
	}
	value, err = promise.BlockOn(e.p)
	return value, err, true
}

// A Graph is the per-request OER: a root Node plus every node allocated during the request.
// Created at the start of an operation and discarded at its end; never shared across requests,
// but shared by design with re-entrant subqueries and submutations.
type Graph struct {
	root *Node

	mu        sync.Mutex
	entries   []*entry
	cancelled error
}

// NewGraph allocates a Graph rooted at an object of rootType.
func NewGraph(rootType string) *Graph {
	g := &Graph{}
	g.root = g.NewNode(rootType)
	return g
}

// Root returns the root node.
func (g *Graph) Root() *Node { return g.root }

// NewNode allocates a node for an object of typeName within this graph.
func (g *Graph) NewNode(typeName string) *Node {
	return &Node{
		graph:    g,
		typeName: typeName,
		entries:  map[Key]*entry{},
		aliases:  map[string]Key{},
	}
}

// noteEntry registers a pending entry for cancellation. If the graph is already cancelled the
// entry is rejected immediately.
func (g *Graph) noteEntry(e *entry) {
	g.mu.Lock()
	cancelled := g.cancelled
	if cancelled == nil {
		g.entries = append(g.entries, e)
	}
	g.mu.Unlock()

	if cancelled != nil {
		e.r.Reject(cancelled)
	}
}

// Cancel transitions every pending entry to a Cancelled error. In-flight resolvers observe the
// cancellation cooperatively through their context; cancellation never leaks into sibling
// operations because each request owns its Graph.
func (g *Graph) Cancel(cause error) {
	cancelErr := errs.New("oer.Graph.Cancel", errs.KindCancelled, "operation cancelled", cause)

	g.mu.Lock()
	if g.cancelled != nil {
		g.mu.Unlock()
		return
	}
	g.cancelled = cancelErr
	entries := g.entries
	g.entries = nil
	g.mu.Unlock()

	for _, e := range entries {
		// Reject is a no-op on settled entries.
		e.r.Reject(cancelErr)
	}
}

// Cancelled returns the cancellation error if Cancel was called.
func (g *Graph) Cancelled() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cancelled
}
