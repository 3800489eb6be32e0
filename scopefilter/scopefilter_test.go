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

package scopefilter_test

import (
	"github.com/viaduct-dev/viaduct/schema"
	"github.com/viaduct-dev/viaduct/scopefilter"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// buildScopedSchema builds a schema where Secret is only reachable through scoped fields:
//
//	Query { user: User, audit: Audit }
//	User { name (public, internal), email (internal), secret: Secret (admin) }
//	Audit { entry: Secret (admin) }
//	Secret { value: String }
//
// Secret itself is also declared "admin". Under scopes excluding "admin", Secret is hidden; Audit
// then loses its only field and must be pruned transitively.
func buildScopedSchema() *schema.CentralSchema {
	secretType := &schema.ObjectConfig{
		Name: "Secret",
		Fields: schema.Fields{
			"value": {Type: schema.T(schema.String())},
		},
	}
	userType := &schema.ObjectConfig{
		Name: "User",
		Fields: schema.Fields{
			"name":   {Type: schema.T(schema.String())},
			"email":  {Type: schema.T(schema.String())},
			"secret": {Type: secretType},
		},
	}
	auditType := &schema.ObjectConfig{
		Name: "Audit",
		Fields: schema.Fields{
			"entry": {Type: secretType},
		},
	}
	queryType := &schema.ObjectConfig{
		Name: "Query",
		Fields: schema.Fields{
			"user":  {Type: userType},
			"audit": {Type: auditType},
		},
	}

	central, err := schema.NewBuilder(schema.NewScopeUniverse()).
		SetQuery(queryType).
		AddModule(schema.ModuleFragment{
			Name:  "core",
			Types: []schema.TypeDefinition{queryType, userType, auditType, secretType},
			ElementScopes: map[schema.ElementKey][]string{
				schema.FieldKey("User", "name"):   {"public", "internal"},
				schema.FieldKey("User", "email"):  {"internal"},
				schema.FieldKey("User", "secret"): {"admin"},
				schema.TypeKey("Secret"):          {"admin"},
				schema.FieldKey("Audit", "entry"): {"admin"},
			},
		}).
		Build()
	Expect(err).ShouldNot(HaveOccurred())
	return central
}

var _ = Describe("Scope filter", func() {
	var filter *scopefilter.Filter

	BeforeEach(func() {
		filter = scopefilter.NewFilter(buildScopedSchema())
	})

	It("rejects an empty scope id set at view construction", func() {
		_, err := filter.View(scopefilter.Scoped("empty"))
		Expect(err).Should(HaveOccurred())
	})

	It("fails every lookup under the None schema id", func() {
		view, err := filter.View(scopefilter.None())
		Expect(err).ShouldNot(HaveOccurred())
		Expect(view.LookupType("User")).Should(BeNil())
		Expect(view.LookupField("Query", "user")).Should(BeNil())
	})

	It("hides fields whose declared scopes exclude the active set", func() {
		view, err := filter.View(scopefilter.Scoped("public", "public"))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(view.LookupField("User", "name")).ShouldNot(BeNil())
		Expect(view.LookupField("User", "email")).Should(BeNil())
	})

	It("matches any requested scope through the wildcard", func() {
		wildcardSchema := func() *schema.CentralSchema {
			queryType := &schema.ObjectConfig{
				Name: "Query",
				Fields: schema.Fields{
					"anything": {Type: schema.T(schema.String())},
				},
			}
			central, err := schema.NewBuilder(schema.NewScopeUniverse()).
				SetQuery(queryType).
				AddModule(schema.ModuleFragment{
					Name:  "core",
					Types: []schema.TypeDefinition{queryType},
					ElementScopes: map[schema.ElementKey][]string{
						schema.FieldKey("Query", "anything"): {schema.WildcardScope},
					},
				}).
				Build()
			Expect(err).ShouldNot(HaveOccurred())
			return central
		}()

		view, err := scopefilter.NewFilter(wildcardSchema).View(scopefilter.Scoped("whatever", "whatever"))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(view.LookupField("Query", "anything")).ShouldNot(BeNil())
	})

	It("prunes empty object types transitively to a fixpoint", func() {
		view, err := filter.View(scopefilter.Scoped("internal", "internal"))
		Expect(err).ShouldNot(HaveOccurred())

		// Secret is out of scope, so User.secret and Audit.entry vanish; Audit becomes empty and
		// vanishes too, along with Query.audit whose type it was.
		Expect(view.LookupType("Secret")).Should(BeNil())
		Expect(view.LookupType("Audit")).Should(BeNil())
		Expect(view.LookupField("Query", "audit")).Should(BeNil())
		Expect(view.LookupField("Query", "user")).ShouldNot(BeNil())
	})

	It("is monotonic: everything visible under a subset stays visible under a superset", func() {
		smaller, err := filter.View(scopefilter.Scoped("s1", "public"))
		Expect(err).ShouldNot(HaveOccurred())
		larger, err := filter.View(scopefilter.Scoped("s2", "public", "internal", "admin"))
		Expect(err).ShouldNot(HaveOccurred())

		for _, typeName := range []string{"Query", "User", "Audit", "Secret"} {
			if smaller.LookupType(typeName) == nil {
				continue
			}
			Expect(larger.LookupType(typeName)).ShouldNot(BeNil(),
				"type %s visible under the subset but not the superset", typeName)
			for fieldName := range smaller.FieldsOf(typeName) {
				Expect(larger.LookupField(typeName, fieldName)).ShouldNot(BeNil(),
					"field %s.%s visible under the subset but not the superset", typeName, fieldName)
			}
		}
	})

	It("memoizes views per schema id", func() {
		first, err := filter.View(scopefilter.Scoped("internal", "internal"))
		Expect(err).ShouldNot(HaveOccurred())
		second, err := filter.View(scopefilter.Scoped("internal", "internal"))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(first).Should(BeIdenticalTo(second))
	})
})
