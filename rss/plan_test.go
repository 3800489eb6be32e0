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

package rss_test

import (
	"errors"

	"github.com/viaduct-dev/viaduct/flags"
	"github.com/viaduct-dev/viaduct/rss"
	"github.com/viaduct-dev/viaduct/schema"
	"github.com/viaduct-dev/viaduct/scopefilter"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// fixedSource is a ResolverSource with a static resolver table for planner tests.
type fixedSource struct {
	resolvers map[string]*rss.ResolverBinding
}

func (s *fixedSource) ResolverFor(typeName, fieldName string) (*rss.ResolverBinding, bool) {
	binding, ok := s.resolvers[typeName+"."+fieldName]
	return binding, ok
}

func (s *fixedSource) FieldCheckersFor(typeName, fieldName string) []*rss.CheckerBinding {
	return nil
}

func (s *fixedSource) TypeCheckersFor(typeName string) []*rss.CheckerBinding {
	return nil
}

func buildPlannerFixture(resolvers map[string]*rss.ResolverBinding) *rss.Planner {
	addressType := &schema.InputObjectConfig{
		Name: "AddressInput",
		Fields: schema.InputFields{
			"city": {Type: schema.T(schema.String())},
			"zip":  {Type: schema.NonNullOfType(schema.String())},
		},
	}
	userType := &schema.ObjectConfig{
		Name: "User",
		Fields: schema.Fields{
			"id":      {Type: schema.NonNullOfType(schema.ID())},
			"name":    {Type: schema.T(schema.String())},
			"friends": {Type: schema.ListOf(schema.T(schema.String()))},
		},
	}
	queryType := &schema.ObjectConfig{
		Name: "Query",
		Fields: schema.Fields{
			"user": {Type: userType},
			"find": {
				Type: userType,
				Args: schema.ArgumentConfigMap{
					"address": {Type: addressType},
					"id":      {Type: schema.NonNullOfType(schema.ID())},
				},
			},
		},
	}

	central, err := schema.NewBuilder(schema.NewScopeUniverse()).
		SetQuery(queryType).
		AddModule(schema.ModuleFragment{
			Name:  "core",
			Types: []schema.TypeDefinition{queryType, userType, addressType},
		}).
		Build()
	Expect(err).ShouldNot(HaveOccurred())

	return rss.NewPlanner(
		scopefilter.NewFilter(central),
		&fixedSource{resolvers: resolvers},
		rss.NopPlanCache{},
		flags.Defaults())
}

func planErrorCode(err error) rss.PlanErrorCode {
	var planErr *rss.PlanError
	Expect(errors.As(err, &planErr)).Should(BeTrue(), "expected a PlanError, got %v", err)
	return planErr.Code
}

var _ = Describe("Selection planner", func() {
	It("plans a simple operation with fields in textual order", func() {
		planner := buildPlannerFixture(nil)
		plan, err := planner.Plan(`{ user { name id } }`, "", scopefilter.Full())
		Expect(err).ShouldNot(HaveOccurred())
		Expect(plan.Operation).Should(Equal(rss.QueryOperation))
		Expect(plan.RootType).Should(Equal("Query"))
		Expect(plan.Selections.Fields).Should(HaveLen(1))

		user := plan.Selections.Fields[0]
		Expect(user.Name).Should(Equal("user"))
		Expect(user.Selections.Fields[0].Name).Should(Equal("name"))
		Expect(user.Selections.Fields[1].Name).Should(Equal("id"))
	})

	It("fails on a field the schema does not define", func() {
		planner := buildPlannerFixture(nil)
		_, err := planner.Plan(`{ user { nope } }`, "", scopefilter.Full())
		Expect(planErrorCode(err)).Should(Equal(rss.PlanErrorUnknownField))
	})

	It("expands the bare field-name shorthand into an anchored fragment", func() {
		planner := buildPlannerFixture(map[string]*rss.ResolverBinding{
			"User.name": {
				Decl: rss.SelectionDecl{ObjectSelections: "id"},
				Ref:  "name-resolver",
			},
		})
		plan, err := planner.Plan(`{ user { name } }`, "", scopefilter.Full())
		Expect(err).ShouldNot(HaveOccurred())

		name := plan.Selections.Fields[0].Selections.Fields[0]
		Expect(name.Resolver).ShouldNot(BeNil())
		Expect(name.Resolver.ObjectRSS).ShouldNot(BeNil())
		Expect(name.Resolver.ObjectRSS.TypeCondition).Should(Equal("User"))
		Expect(name.Resolver.ObjectRSS.Selections.Fields[0].Name).Should(Equal("id"))
	})

	It("rejects a fragment anchored on the wrong type", func() {
		planner := buildPlannerFixture(map[string]*rss.ResolverBinding{
			"User.name": {
				Decl: rss.SelectionDecl{ObjectSelections: "fragment _ on Query { user { id } }"},
				Ref:  "name-resolver",
			},
		})
		_, err := planner.Plan(`{ user { name } }`, "", scopefilter.Full())
		Expect(planErrorCode(err)).Should(Equal(rss.PlanErrorInvalidFragment))
	})

	It("rejects a variable path that traverses a list", func() {
		planner := buildPlannerFixture(map[string]*rss.ResolverBinding{
			"User.name": {
				Decl: rss.SelectionDecl{
					ObjectSelections: "id",
					Variables:        []rss.VariableDecl{{Name: "v", Source: "fromObjectField:friends"}},
				},
				Ref: "name-resolver",
			},
		})
		_, err := planner.Plan(`{ user { name } }`, "", scopefilter.Full())
		Expect(planErrorCode(err)).Should(Equal(rss.PlanErrorListTraversal))
	})

	It("rejects a variable path terminating on a non-leaf type", func() {
		planner := buildPlannerFixture(map[string]*rss.ResolverBinding{
			"Query.user": {
				Decl: rss.SelectionDecl{
					QuerySelections: "fragment _ on Query { find(id: \"1\") { id } }",
					Variables:       []rss.VariableDecl{{Name: "v", Source: "fromQueryField:user"}},
				},
				Ref: "user-resolver",
			},
		})
		_, err := planner.Plan(`{ user { id } }`, "", scopefilter.Full())
		Expect(planErrorCode(err)).Should(Equal(rss.PlanErrorIncompatibleVariableType))
	})

	It("rejects a nullable source path bound to a non-null argument position", func() {
		planner := buildPlannerFixture(map[string]*rss.ResolverBinding{
			"User.name": {
				Decl: rss.SelectionDecl{
					QuerySelections: "fragment _ on Query { find(id: $v) { id } }",
					Variables:       []rss.VariableDecl{{Name: "v", Source: "fromObjectField:name"}},
				},
				Ref: "name-resolver",
			},
		})
		_, err := planner.Plan(`{ user { name } }`, "", scopefilter.Full())
		Expect(planErrorCode(err)).Should(Equal(rss.PlanErrorNullabilityMismatch))
	})

	It("walks fromArgument paths into nested input objects", func() {
		planner := buildPlannerFixture(map[string]*rss.ResolverBinding{
			"Query.find": {
				Decl: rss.SelectionDecl{
					ObjectSelections: "fragment _ on Query { user { id } }",
					Variables:        []rss.VariableDecl{{Name: "city", Source: "fromArgument:address.city"}},
				},
				Ref: "find-resolver",
			},
		})
		_, err := planner.Plan(`{ find(id: "u1") { id } }`, "", scopefilter.Full())
		Expect(err).ShouldNot(HaveOccurred())
	})

	It("caches plans by fingerprint", func() {
		cache, err := rss.NewLRUPlanCache(4)
		Expect(err).ShouldNot(HaveOccurred())

		fingerprint := rss.Fingerprint(`{ user { id } }`, "", nil, scopefilter.Full())
		plan := &rss.Plan{Fingerprint: fingerprint}
		cache.Add(fingerprint, plan)

		cached, ok := cache.Get(fingerprint)
		Expect(ok).Should(BeTrue())
		Expect(cached).Should(BeIdenticalTo(plan))

		_, ok = cache.Get(fingerprint + 1)
		Expect(ok).Should(BeFalse())
	})

	It("evicts the least recently used plan at capacity", func() {
		cache, err := rss.NewLRUPlanCache(2)
		Expect(err).ShouldNot(HaveOccurred())

		cache.Add(1, &rss.Plan{Fingerprint: 1})
		cache.Add(2, &rss.Plan{Fingerprint: 2})

		// Touch 1 so 2 becomes the eviction candidate.
		_, ok := cache.Get(1)
		Expect(ok).Should(BeTrue())

		cache.Add(3, &rss.Plan{Fingerprint: 3})

		_, ok = cache.Get(2)
		Expect(ok).Should(BeFalse())
		_, ok = cache.Get(1)
		Expect(ok).Should(BeTrue())
		_, ok = cache.Get(3)
		Expect(ok).Should(BeTrue())
	})
})
