/**
 * Copyright (c) 2018, The Artemis Authors.
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

package schema_test

import (
	"github.com/viaduct-dev/viaduct/schema"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Literal coercion", func() {
	It("coerces Int literals for the Int type", func() {
		v, err := schema.Int().CoerceArgumentValue(schema.IntLiteral("42"))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(v).Should(Equal(42))
	})

	It("rejects a String literal for the Int type", func() {
		_, err := schema.Int().CoerceArgumentValue(schema.StringLiteral("42"))
		Expect(err).Should(HaveOccurred())
	})

	It("coerces Int and Float literals for the Float type", func() {
		v, err := schema.Float().CoerceArgumentValue(schema.FloatLiteral("3.14"))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(v).Should(Equal(3.14))

		v, err = schema.Float().CoerceArgumentValue(schema.IntLiteral("3"))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(v).Should(Equal(3.0))
	})

	It("coerces String literals for the String type", func() {
		v, err := schema.String().CoerceArgumentValue(schema.StringLiteral("hi"))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(v).Should(Equal("hi"))
	})

	It("coerces Boolean literals for the Boolean type", func() {
		v, err := schema.Boolean().CoerceArgumentValue(schema.BooleanLiteral(true))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(v).Should(Equal(true))
	})

	It("coerces String and Int literals for the ID type", func() {
		v, err := schema.ID().CoerceArgumentValue(schema.StringLiteral("abc"))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(v).Should(Equal("abc"))

		v, err = schema.ID().CoerceArgumentValue(schema.IntLiteral("4"))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(v).Should(Equal("4"))
	})
})
