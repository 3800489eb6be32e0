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

package schema_test

import (
	"math"

	"github.com/viaduct-dev/viaduct/schema"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Built-in scalars", func() {
	Describe("Int", func() {
		It("accepts integral result values of any numeric kind", func() {
			for _, value := range []interface{}{42, int32(42), int64(42), uint8(42), 42.0} {
				coerced, err := schema.Int().CoerceResultValue(value)
				Expect(err).ShouldNot(HaveOccurred())
				Expect(coerced).Should(Equal(42))
			}
		})

		It("rejects results outside the 32-bit range", func() {
			_, err := schema.Int().CoerceResultValue(int64(math.MaxInt32) + 1)
			Expect(err).Should(HaveOccurred())
		})

		It("rejects fractional results", func() {
			_, err := schema.Int().CoerceResultValue(1.5)
			Expect(err).Should(HaveOccurred())
		})

		It("accepts integral JSON numbers as variables but not strings", func() {
			coerced, err := schema.Int().CoerceVariableValue(float64(7))
			Expect(err).ShouldNot(HaveOccurred())
			Expect(coerced).Should(Equal(7))

			_, err = schema.Int().CoerceVariableValue("7")
			Expect(err).Should(HaveOccurred())
		})
	})

	Describe("Float", func() {
		It("widens integer results", func() {
			coerced, err := schema.Float().CoerceResultValue(3)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(coerced).Should(Equal(3.0))
		})

		It("rejects non-finite results", func() {
			_, err := schema.Float().CoerceResultValue(math.NaN())
			Expect(err).Should(HaveOccurred())
			_, err = schema.Float().CoerceResultValue(math.Inf(1))
			Expect(err).Should(HaveOccurred())
		})
	})

	Describe("String", func() {
		It("accepts strings and rejects non-string variables", func() {
			coerced, err := schema.String().CoerceVariableValue("hi")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(coerced).Should(Equal("hi"))

			_, err = schema.String().CoerceVariableValue(1)
			Expect(err).Should(HaveOccurred())
		})

		It("serializes integer results", func() {
			coerced, err := schema.String().CoerceResultValue(12)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(coerced).Should(Equal("12"))
		})
	})

	Describe("Boolean", func() {
		It("accepts bools and rejects strings as variables", func() {
			coerced, err := schema.Boolean().CoerceVariableValue(true)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(coerced).Should(Equal(true))

			_, err = schema.Boolean().CoerceVariableValue("true")
			Expect(err).Should(HaveOccurred())
		})
	})

	Describe("ID", func() {
		It("serializes strings and integers alike", func() {
			coerced, err := schema.ID().CoerceVariableValue("u1")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(coerced).Should(Equal("u1"))

			coerced, err = schema.ID().CoerceVariableValue(float64(4))
			Expect(err).ShouldNot(HaveOccurred())
			Expect(coerced).Should(Equal("4"))
		})
	})
})

var _ = Describe("Enum coercion", func() {
	buildEnum := func() *schema.Enum {
		queryConfig := &schema.ObjectConfig{
			Name: "Query",
			Fields: schema.Fields{
				"role": {Type: &schema.EnumConfig{
					Name: "Role",
					Values: schema.EnumValueDefinitionMap{
						"ADMIN":  {Value: 1},
						"MEMBER": {Value: 2},
					},
				}},
			},
		}
		built, err := schema.NewSchema(&schema.SchemaConfig{Query: queryConfig})
		Expect(err).ShouldNot(HaveOccurred())
		return built.TypeMap().Lookup("Role").(*schema.Enum)
	}

	It("serializes by name or internal value", func() {
		enum := buildEnum()

		name, err := enum.CoerceResultValue("ADMIN")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(name).Should(Equal("ADMIN"))

		name, err = enum.CoerceResultValue(2)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(name).Should(Equal("MEMBER"))
	})

	It("maps variable names to internal values", func() {
		enum := buildEnum()
		value, err := enum.CoerceVariableValue("ADMIN")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(value).Should(Equal(1))

		_, err = enum.CoerceVariableValue("NOPE")
		Expect(err).Should(HaveOccurred())
	})

	It("requires enum notation in documents", func() {
		enum := buildEnum()
		value, err := enum.CoerceArgumentValue(schema.EnumLiteral("MEMBER"))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(value).Should(Equal(2))

		_, err = enum.CoerceArgumentValue(schema.StringLiteral("MEMBER"))
		Expect(err).Should(HaveOccurred())
	})
})
