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
	"github.com/viaduct-dev/viaduct/schema"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Schema construction", func() {
	It("links a self-referential type", func() {
		userConfig := &schema.ObjectConfig{Name: "User"}
		userConfig.Fields = schema.Fields{
			"id":   {Type: schema.NonNullOfType(schema.ID())},
			"best": {Type: userConfig},
		}
		queryConfig := &schema.ObjectConfig{
			Name:   "Query",
			Fields: schema.Fields{"me": {Type: userConfig}},
		}

		built, err := schema.NewSchema(&schema.SchemaConfig{Query: queryConfig})
		Expect(err).ShouldNot(HaveOccurred())

		user, ok := built.TypeMap().Lookup("User").(*schema.Object)
		Expect(ok).Should(BeTrue())
		// The cycle closes onto the same instance.
		Expect(user.Fields()["best"].Type()).Should(BeIdenticalTo(user))
	})

	It("indexes every type reachable from the roots", func() {
		roleConfig := &schema.EnumConfig{
			Name:   "Role",
			Values: schema.EnumValueDefinitionMap{"ADMIN": {}, "MEMBER": {}},
		}
		queryConfig := &schema.ObjectConfig{
			Name: "Query",
			Fields: schema.Fields{
				"role": {Type: roleConfig},
			},
		}

		built, err := schema.NewSchema(&schema.SchemaConfig{Query: queryConfig})
		Expect(err).ShouldNot(HaveOccurred())
		Expect(built.TypeMap().Lookup("Role")).ShouldNot(BeNil())
		Expect(built.TypeMap().Lookup("String")).ShouldNot(BeNil())
		Expect(built.Directives().Lookup("skip")).ShouldNot(BeNil())
	})

	It("collects interface implementors into possible-type sets", func() {
		nodeConfig := &schema.InterfaceConfig{
			Name:   "Node",
			Fields: schema.Fields{"id": {Type: schema.NonNullOfType(schema.ID())}},
		}
		userConfig := &schema.ObjectConfig{
			Name:       "User",
			Interfaces: []schema.TypeDefinition{nodeConfig},
			Fields:     schema.Fields{"id": {Type: schema.NonNullOfType(schema.ID())}},
		}
		queryConfig := &schema.ObjectConfig{
			Name:   "Query",
			Fields: schema.Fields{"user": {Type: userConfig}},
		}

		built, err := schema.NewSchema(&schema.SchemaConfig{Query: queryConfig})
		Expect(err).ShouldNot(HaveOccurred())

		node := built.TypeMap().Lookup("Node").(*schema.Interface)
		user := built.TypeMap().Lookup("User").(*schema.Object)
		Expect(built.PossibleTypes(node).Has(user)).Should(BeTrue())
	})

	It("rejects a union member that is not an object type", func() {
		queryConfig := &schema.ObjectConfig{
			Name: "Query",
			Fields: schema.Fields{
				"anything": {Type: &schema.UnionConfig{
					Name:          "Anything",
					PossibleTypes: []schema.TypeDefinition{schema.T(schema.String())},
				}},
			},
		}
		_, err := schema.NewSchema(&schema.SchemaConfig{Query: queryConfig})
		Expect(err).Should(HaveOccurred())
	})

	It("rejects two distinct types under one name", func() {
		aConfig := &schema.ObjectConfig{Name: "Thing",
			Fields: schema.Fields{"a": {Type: schema.T(schema.String())}}}
		bConfig := &schema.ObjectConfig{Name: "Thing",
			Fields: schema.Fields{"b": {Type: schema.T(schema.String())}}}
		queryConfig := &schema.ObjectConfig{
			Name: "Query",
			Fields: schema.Fields{
				"a": {Type: aConfig},
				"b": {Type: bConfig},
			},
		}
		_, err := schema.NewSchema(&schema.SchemaConfig{Query: queryConfig})
		Expect(err).Should(HaveOccurred())
	})

	It("resolves document type references against the schema", func() {
		queryConfig := &schema.ObjectConfig{
			Name:   "Query",
			Fields: schema.Fields{"n": {Type: schema.T(schema.Int())}},
		}
		built, err := schema.NewSchema(&schema.SchemaConfig{Query: queryConfig})
		Expect(err).ShouldNot(HaveOccurred())

		ref := schema.NonNullTypeRef(schema.ListTypeRef(schema.NamedTypeRef("Int")))
		t := built.TypeFromAST(ref)
		Expect(t).ShouldNot(BeNil())
		Expect(t.String()).Should(Equal("[Int]!"))

		Expect(built.TypeFromAST(schema.NamedTypeRef("Nope"))).Should(BeNil())
	})
})
