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

package dispatch_test

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/viaduct-dev/viaduct/concurrent/promise"
	"github.com/viaduct-dev/viaduct/dispatch"
	"github.com/viaduct-dev/viaduct/errs"
	"github.com/viaduct-dev/viaduct/oer"
	"github.com/viaduct-dev/viaduct/rss"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Registry", func() {
	It("rejects a second resolver for the same field", func() {
		registry := dispatch.NewRegistry()
		registration := &dispatch.Registration{TypeName: "Query", FieldName: "x"}
		Expect(registry.Register(registration)).Should(Succeed())
		Expect(registry.Register(registration)).ShouldNot(Succeed())
	})

	It("exposes registrations to the planner through ResolverFor", func() {
		registry := dispatch.NewRegistry()
		registry.MustRegister(&dispatch.Registration{
			TypeName:         "Item",
			FieldName:        "owner",
			ObjectSelections: "id",
			Batch:            true,
		})

		binding, ok := registry.ResolverFor("Item", "owner")
		Expect(ok).Should(BeTrue())
		Expect(binding.Batch).Should(BeTrue())
		Expect(binding.Decl.ObjectSelections).Should(Equal("id"))

		_, ok = registry.ResolverFor("Item", "missing")
		Expect(ok).Should(BeFalse())
	})

	It("keeps checkers in registration order", func() {
		registry := dispatch.NewRegistry()
		registry.RegisterFieldChecker(&dispatch.CheckerRegistration{
			TypeName: "Query", FieldName: "x", Checker: "first",
		})
		registry.RegisterFieldChecker(&dispatch.CheckerRegistration{
			TypeName: "Query", FieldName: "x", Checker: "second",
		})

		bindings := registry.FieldCheckersFor("Query", "x")
		Expect(bindings).Should(HaveLen(2))
		Expect(bindings[0].Ref.(*dispatch.CheckerRegistration).Checker).Should(Equal("first"))
		Expect(bindings[1].Ref.(*dispatch.CheckerRegistration).Checker).Should(Equal("second"))
	})
})

var _ = Describe("DefaultProvider", func() {
	It("constructs through the registered factory", func() {
		instance, err := dispatch.DefaultProvider{}.New(&dispatch.Registration{
			TypeName: "Query", FieldName: "x",
			Factory: func() (interface{}, error) {
				return dispatch.ResolverFunc(func(*dispatch.Ctx) (interface{}, error) {
					return "ok", nil
				}), nil
			},
		})
		Expect(err).ShouldNot(HaveOccurred())
		Expect(instance).ShouldNot(BeNil())
	})

	It("fails with a resolver construction error when no factory is registered", func() {
		_, err := dispatch.DefaultProvider{}.New(&dispatch.Registration{TypeName: "Query", FieldName: "x"})
		Expect(errs.KindOf(err)).Should(Equal(errs.KindResolver))
	})
})

var _ = Describe("TypedView", func() {
	// Builds a view over a node holding {id: "1", name: "N"} restricted to a fragment declaring
	// only id.
	buildView := func() *dispatch.TypedView {
		graph := oer.NewGraph("Item")
		node := graph.Root()

		idKey := oer.Key{Field: "id"}
		node.BindAlias("id", idKey)
		node.GetOrStart(idKey)
		node.Complete(idKey, "1")

		nameKey := oer.Key{Field: "name"}
		node.BindAlias("name", nameKey)
		node.GetOrStart(nameKey)
		node.Complete(nameKey, "N")

		declared := &rss.PlannedSelectionSet{
			TypeName: "Item",
			Fields: []*rss.PlannedField{
				{Alias: "id", Name: "id", ParentType: "Item"},
			},
		}
		return dispatch.NewTypedView(node, declared)
	}

	It("reads a declared selection", func() {
		view := buildView()
		value, err := view.Get("id")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(value).Should(Equal("1"))
	})

	It("fails an undeclared selection with UnrequestedSelection", func() {
		view := buildView()
		_, err := view.Get("name")
		Expect(err).Should(HaveOccurred())
		Expect(errs.KindOf(err)).Should(Equal(errs.KindUnrequestedSelection))
	})
})

var _ = Describe("Coalescers", func() {
	newCtx := func(name string) *dispatch.Ctx {
		return dispatch.NewCtx(dispatch.CtxConfig{
			Context:   context.Background(),
			TypeName:  "Item",
			FieldName: name,
		})
	}

	It("delivers one batch per flush with input ordering preserved", func() {
		var calls int64
		var observed []string
		registration := &dispatch.Registration{
			TypeName: "Item", FieldName: "owner", Batch: true,
			Factory: func() (interface{}, error) {
				return dispatch.BatchResolverFunc(func(ctxs []*dispatch.Ctx) ([]dispatch.FieldValue, error) {
					atomic.AddInt64(&calls, 1)
					results := make([]dispatch.FieldValue, len(ctxs))
					for i, ctx := range ctxs {
						observed = append(observed, ctx.FieldName)
						results[i] = dispatch.Of(i)
					}
					return results, nil
				}), nil
			},
		}

		coalescers := dispatch.NewCoalescers(dispatch.DefaultProvider{}, nil)
		futures := make([]*promise.Promise, 3)
		for i, name := range []string{"owner", "owner", "owner"} {
			future, err := coalescers.Enqueue(registration, newCtx(name))
			Expect(err).ShouldNot(HaveOccurred())
			futures[i] = future
		}
		Expect(coalescers.Parked()).Should(Equal(int64(3)))

		coalescers.Flush(context.Background())

		for i, future := range futures {
			value, err := promise.BlockOn(future)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(value).Should(Equal(i))
		}
		Expect(atomic.LoadInt64(&calls)).Should(Equal(int64(1)))
		Expect(observed).Should(HaveLen(3))
	})

	It("fails every context on a length-contract violation", func() {
		registration := &dispatch.Registration{
			TypeName: "Item", FieldName: "owner", Batch: true,
			Factory: func() (interface{}, error) {
				return dispatch.BatchResolverFunc(func(ctxs []*dispatch.Ctx) ([]dispatch.FieldValue, error) {
					return nil, nil
				}), nil
			},
		}

		coalescers := dispatch.NewCoalescers(dispatch.DefaultProvider{}, nil)
		future, err := coalescers.Enqueue(registration, newCtx("owner"))
		Expect(err).ShouldNot(HaveOccurred())

		coalescers.Flush(context.Background())

		_, err = promise.BlockOn(future)
		Expect(errs.KindOf(err)).Should(Equal(errs.KindBatchContract))
	})

	It("fails every context with the thrown error when the batch call errors", func() {
		boom := errors.New("backend down")
		registration := &dispatch.Registration{
			TypeName: "Item", FieldName: "owner", Batch: true,
			Factory: func() (interface{}, error) {
				return dispatch.BatchResolverFunc(func(ctxs []*dispatch.Ctx) ([]dispatch.FieldValue, error) {
					return nil, boom
				}), nil
			},
		}

		coalescers := dispatch.NewCoalescers(dispatch.DefaultProvider{}, nil)
		future, err := coalescers.Enqueue(registration, newCtx("owner"))
		Expect(err).ShouldNot(HaveOccurred())

		coalescers.Flush(context.Background())

		_, err = promise.BlockOn(future)
		Expect(err).Should(HaveOccurred())
		Expect(err.Error()).Should(ContainSubstring("backend down"))
	})
})
