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

package oer_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/viaduct-dev/viaduct/oer"
	"github.com/viaduct-dev/viaduct/schema"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("OER node", func() {
	var graph *oer.Graph

	BeforeEach(func() {
		graph = oer.NewGraph("Query")
	})

	It("hands the computation to exactly one requester per key", func() {
		node := graph.Root()
		key := oer.Key{Field: "greeting"}

		var started int64
		var wg sync.WaitGroup
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, handle := node.GetOrStart(key)
				if ok {
					atomic.AddInt64(&started, 1)
					node.Complete(key, "hello")
				}
				value, err := handle.Await(context.Background())
				Expect(err).ShouldNot(HaveOccurred())
				Expect(value).Should(Equal("hello"))
			}()
		}
		wg.Wait()

		Expect(atomic.LoadInt64(&started)).Should(Equal(int64(1)))
	})

	It("ignores completes after the first (exactly-once)", func() {
		node := graph.Root()
		key := oer.Key{Field: "field"}

		_, handle := node.GetOrStart(key)
		node.Complete(key, "first")
		node.Complete(key, "second")
		node.CompleteError(key, errors.New("too late"))

		value, err := handle.Await(context.Background())
		Expect(err).ShouldNot(HaveOccurred())
		Expect(value).Should(Equal("first"))
	})

	It("wakes awaiters with the error on CompleteError", func() {
		node := graph.Root()
		key := oer.Key{Field: "field"}

		_, handle := node.GetOrStart(key)
		boom := errors.New("boom")
		node.CompleteError(key, boom)

		_, err := handle.Await(context.Background())
		Expect(err).Should(MatchError(boom))
	})

	It("transitions pending entries to Cancelled on graph cancellation", func() {
		node := graph.Root()
		key := oer.Key{Field: "slow"}

		_, handle := node.GetOrStart(key)
		graph.Cancel(context.Canceled)

		_, err := handle.Await(context.Background())
		Expect(err).Should(HaveOccurred())

		// Entries started after cancellation fail immediately.
		_, late := node.GetOrStart(oer.Key{Field: "late"})
		_, err = late.Await(context.Background())
		Expect(err).Should(HaveOccurred())
	})
})

var _ = Describe("Argument fingerprinting", func() {
	It("is insensitive to input object key order", func() {
		a := oer.FingerprintArgumentMap(map[string]interface{}{
			"filter": map[string]interface{}{"b": 2, "a": 1},
		})
		b := oer.FingerprintArgumentMap(map[string]interface{}{
			"filter": map[string]interface{}{"a": 1, "b": 2},
		})
		Expect(a).Should(Equal(b))
	})

	It("normalizes equivalent numeric representations", func() {
		a := oer.FingerprintArgumentMap(map[string]interface{}{"n": int32(7)})
		b := oer.FingerprintArgumentMap(map[string]interface{}{"n": int64(7)})
		Expect(a).Should(Equal(b))
	})

	It("distinguishes different values", func() {
		a := oer.FingerprintArgumentMap(map[string]interface{}{"n": 1})
		b := oer.FingerprintArgumentMap(map[string]interface{}{"n": 2})
		Expect(a).ShouldNot(Equal(b))
	})

	It("fingerprints ArgumentValues and plain maps identically", func() {
		values := map[string]interface{}{"x": "y", "n": 3}
		Expect(oer.FingerprintArguments(schema.NewArgumentValues(values))).
			Should(Equal(oer.FingerprintArgumentMap(values)))
	})
})

var _ = Describe("OrderedMap", func() {
	It("marshals keys in insertion order", func() {
		m := oer.NewOrderedMap()
		m.Set("zulu", 1)
		m.Set("alpha", 2)

		encoded, err := m.MarshalJSON()
		Expect(err).ShouldNot(HaveOccurred())
		Expect(string(encoded)).Should(Equal(`{"zulu":1,"alpha":2}`))
	})
})
