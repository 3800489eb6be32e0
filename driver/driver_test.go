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

package driver_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/viaduct-dev/viaduct/dispatch"
	"github.com/viaduct-dev/viaduct/driver"
	"github.com/viaduct-dev/viaduct/flags"
	"github.com/viaduct-dev/viaduct/oer"
	"github.com/viaduct-dev/viaduct/policy"
	"github.com/viaduct-dev/viaduct/rss"
	"github.com/viaduct-dev/viaduct/schema"
	"github.com/viaduct-dev/viaduct/scopefilter"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// engineCounters observes resolver activity for the call-count and ordering properties.
type engineCounters struct {
	greetingCalls     int64
	userCalls         int64
	ownerBatchCalls   int64
	deniedCalls       int64
	badOwnerBatchSize int64

	mu          sync.Mutex
	mutationLog []string
}

func (c *engineCounters) logMutation(event string) {
	c.mu.Lock()
	c.mutationLog = append(c.mutationLog, event)
	c.mu.Unlock()
}

type testEngine struct {
	driver   *driver.Driver
	counters *engineCounters
}

func resolverOf(f func(ctx *dispatch.Ctx) (interface{}, error)) dispatch.ResolverFactory {
	return func() (interface{}, error) { return dispatch.ResolverFunc(f), nil }
}

func batchResolverOf(f func(ctxs []*dispatch.Ctx) ([]dispatch.FieldValue, error)) dispatch.ResolverFactory {
	return func() (interface{}, error) { return dispatch.BatchResolverFunc(f), nil }
}

// buildTestEngine assembles the shared test schema and resolver registry.
func buildTestEngine() *testEngine {
	counters := &engineCounters{}

	userType := &schema.ObjectConfig{
		Name: "User",
		Fields: schema.Fields{
			"id":    {Type: schema.NonNullOfType(schema.ID())},
			"name":  {Type: schema.T(schema.String())},
			"email": {Type: schema.T(schema.String())},
		},
	}

	itemType := &schema.ObjectConfig{
		Name: "Item",
		Fields: schema.Fields{
			"id":       {Type: schema.NonNullOfType(schema.ID())},
			"owner":    {Type: userType},
			"badOwner": {Type: userType},
		},
	}

	queryType := &schema.ObjectConfig{
		Name: "Query",
		Fields: schema.Fields{
			"greeting": {Type: schema.T(schema.String())},
			"items":    {Type: schema.ListOf(itemType)},
			"user":     {Type: userType},
			"canNotAccessField": {
				Type: schema.T(schema.String()),
			},
			"workingField":          {Type: schema.T(schema.String())},
			"fromVariablesProvider": {Type: schema.T(schema.String())},
			"errorSource":           {Type: schema.T(schema.String())},
			"echo": {
				Type: schema.T(schema.String()),
				Args: schema.ArgumentConfigMap{
					"msg": {Type: schema.T(schema.String())},
				},
			},
			"isolationProbe": {Type: schema.T(schema.String())},
			"alpha":          {Type: schema.T(schema.String())},
			"zulu":           {Type: schema.T(schema.String())},
		},
	}

	mutationType := &schema.ObjectConfig{
		Name: "Mutation",
		Fields: schema.Fields{
			"tri": {
				Type: schema.T(schema.Int()),
				Args: schema.ArgumentConfigMap{
					"n": {Type: schema.NonNullOfType(schema.Int())},
				},
			},
			"first":  {Type: schema.T(schema.String())},
			"second": {Type: schema.T(schema.String())},
		},
	}

	universe := schema.NewScopeUniverse()
	central, err := schema.NewBuilder(universe).
		SetQuery(queryType).
		SetMutation(mutationType).
		AddModule(schema.ModuleFragment{
			Name:  "core",
			Types: []schema.TypeDefinition{queryType, mutationType, userType, itemType},
			ElementScopes: map[schema.ElementKey][]string{
				schema.TypeKey("User"):           {"public", "internal"},
				schema.FieldKey("User", "name"):  {"public", "internal"},
				schema.FieldKey("User", "email"): {"internal"},
			},
			ElementDirectives: map[schema.ElementKey]schema.DirectiveApplicationList{
				schema.FieldKey("Query", "greeting"): {{Name: schema.DirectiveResolver}},
			},
		}).
		Build()
	Expect(err).ShouldNot(HaveOccurred())

	registry := dispatch.NewRegistry()

	registry.MustRegister(&dispatch.Registration{
		TypeName: "Query", FieldName: "greeting",
		Factory: resolverOf(func(ctx *dispatch.Ctx) (interface{}, error) {
			atomic.AddInt64(&counters.greetingCalls, 1)
			return "Hello, World!", nil
		}),
	})

	registry.MustRegister(&dispatch.Registration{
		TypeName: "Query", FieldName: "items",
		Factory: resolverOf(func(ctx *dispatch.Ctx) (interface{}, error) {
			return []interface{}{
				map[string]interface{}{"id": "1"},
				map[string]interface{}{"id": "2"},
				map[string]interface{}{"id": "3"},
			}, nil
		}),
	})

	registry.MustRegister(&dispatch.Registration{
		TypeName: "Item", FieldName: "owner",
		ObjectSelections: "id",
		Batch:            true,
		Factory: batchResolverOf(func(ctxs []*dispatch.Ctx) ([]dispatch.FieldValue, error) {
			atomic.AddInt64(&counters.ownerBatchCalls, 1)
			results := make([]dispatch.FieldValue, len(ctxs))
			for i, ctx := range ctxs {
				id, err := ctx.ObjectValue().Get("id")
				if err != nil {
					results[i] = dispatch.OfError(err)
					continue
				}
				results[i] = dispatch.Of(map[string]interface{}{
					"id":   fmt.Sprintf("owner-of-%v", id),
					"name": fmt.Sprintf("Owner %v", id),
				})
			}
			return results, nil
		}),
	})

	registry.MustRegister(&dispatch.Registration{
		TypeName: "Item", FieldName: "badOwner",
		Batch: true,
		Factory: batchResolverOf(func(ctxs []*dispatch.Ctx) ([]dispatch.FieldValue, error) {
			atomic.StoreInt64(&counters.badOwnerBatchSize, int64(len(ctxs)))
			// Contract violation: wrong result count.
			return []dispatch.FieldValue{dispatch.Of(nil)}, nil
		}),
	})

	registry.MustRegister(&dispatch.Registration{
		TypeName: "Query", FieldName: "user",
		Factory: resolverOf(func(ctx *dispatch.Ctx) (interface{}, error) {
			atomic.AddInt64(&counters.userCalls, 1)
			return map[string]interface{}{
				"id":    "u1",
				"name":  "Ursula",
				"email": "ursula@example.com",
			}, nil
		}),
	})

	registry.MustRegister(&dispatch.Registration{
		TypeName: "Query", FieldName: "canNotAccessField",
		Factory: resolverOf(func(ctx *dispatch.Ctx) (interface{}, error) {
			atomic.AddInt64(&counters.deniedCalls, 1)
			return "should never run", nil
		}),
	})
	registry.RegisterFieldChecker(&dispatch.CheckerRegistration{
		TypeName: "Query", FieldName: "canNotAccessField",
		Checker: policy.CheckerFunc(func(ctx *policy.CheckCtx) policy.CheckerResult {
			return policy.Denied(errors.New("access to canNotAccessField is denied"))
		}),
	})

	registry.MustRegister(&dispatch.Registration{
		TypeName: "Query", FieldName: "workingField",
		Factory: resolverOf(func(ctx *dispatch.Ctx) (interface{}, error) {
			return "success", nil
		}),
	})

	registry.MustRegister(&dispatch.Registration{
		TypeName: "Query", FieldName: "errorSource",
		Factory: resolverOf(func(ctx *dispatch.Ctx) (interface{}, error) {
			return nil, errors.New("variables provider blew up")
		}),
	})

	registry.MustRegister(&dispatch.Registration{
		TypeName: "Query", FieldName: "fromVariablesProvider",
		ObjectSelections: "errorSource",
		Variables: []rss.VariableDecl{
			{Name: "seed", Source: "fromObjectField:errorSource"},
		},
		Factory: resolverOf(func(ctx *dispatch.Ctx) (interface{}, error) {
			return "should never run", nil
		}),
	})

	registry.MustRegister(&dispatch.Registration{
		TypeName: "Query", FieldName: "echo",
		Factory: resolverOf(func(ctx *dispatch.Ctx) (interface{}, error) {
			return ctx.Arguments().Get("msg"), nil
		}),
	})

	registry.MustRegister(&dispatch.Registration{
		TypeName: "Query", FieldName: "isolationProbe",
		Factory: resolverOf(func(ctx *dispatch.Ctx) (interface{}, error) {
			selections, err := ctx.SelectionsFor(rss.QueryOperation, "echo(msg: $outer)", nil)
			if err != nil {
				return nil, err
			}
			view, err := ctx.Query(selections)
			if err != nil {
				return nil, err
			}
			echoed, err := view.Get("echo")
			if err != nil {
				return nil, err
			}
			if echoed == nil {
				return "isolated", nil
			}
			return "inherited", nil
		}),
	})

	registry.MustRegister(&dispatch.Registration{
		TypeName: "Query", FieldName: "alpha",
		Factory: resolverOf(func(ctx *dispatch.Ctx) (interface{}, error) {
			return nil, errors.New("alpha failed")
		}),
	})
	registry.MustRegister(&dispatch.Registration{
		TypeName: "Query", FieldName: "zulu",
		Factory: resolverOf(func(ctx *dispatch.Ctx) (interface{}, error) {
			return nil, errors.New("zulu failed")
		}),
	})

	registry.MustRegister(&dispatch.Registration{
		TypeName: "Mutation", FieldName: "tri",
		Factory: resolverOf(func(ctx *dispatch.Ctx) (interface{}, error) {
			n, ok := ctx.Arguments().Get("n").(int)
			if !ok {
				return nil, fmt.Errorf("tri expects an Int argument, got %T", ctx.Arguments().Get("n"))
			}
			if n <= 1 {
				return 1, nil
			}
			selections, err := ctx.SelectionsFor(rss.MutationOperation, fmt.Sprintf("tri(n: %d)", n-1), nil)
			if err != nil {
				return nil, err
			}
			view, err := ctx.Mutation(selections)
			if err != nil {
				return nil, err
			}
			inner, err := view.Get("tri")
			if err != nil {
				return nil, err
			}
			return n + inner.(int), nil
		}),
	})

	registry.MustRegister(&dispatch.Registration{
		TypeName: "Mutation", FieldName: "first",
		Factory: resolverOf(func(ctx *dispatch.Ctx) (interface{}, error) {
			counters.logMutation("first:start")
			counters.logMutation("first:end")
			return "first", nil
		}),
	})
	registry.MustRegister(&dispatch.Registration{
		TypeName: "Mutation", FieldName: "second",
		Factory: resolverOf(func(ctx *dispatch.Ctx) (interface{}, error) {
			counters.logMutation("second:start")
			counters.logMutation("second:end")
			return "second", nil
		}),
	})

	d, err := driver.New(driver.Config{
		Schema:   central,
		Registry: registry,
		Flags: flags.NewStatic(map[flags.Flag]bool{
			flags.EnableSubqueryExecutionViaHandle: true,
		}),
	})
	Expect(err).ShouldNot(HaveOccurred())

	return &testEngine{driver: d, counters: counters}
}

func (e *testEngine) execute(operation string, variables map[string]interface{}) *driver.ExecutionResult {
	return e.executeUnder(operation, variables, scopefilter.Full())
}

func (e *testEngine) executeUnder(
	operation string,
	variables map[string]interface{},
	schemaID scopefilter.SchemaID) *driver.ExecutionResult {
	return e.driver.Execute(context.Background(), driver.ExecutionInput{
		OperationText: operation,
		Variables:     variables,
	}, schemaID)
}

func dataValue(result *driver.ExecutionResult, key string) interface{} {
	Expect(result.Data).ShouldNot(BeNil())
	value, ok := result.Data.Get(key)
	Expect(ok).Should(BeTrue(), "data is missing key %q", key)
	return value
}

var _ = Describe("Execution driver", func() {
	var engine *testEngine

	BeforeEach(func() {
		engine = buildTestEngine()
	})

	Describe("simple field resolution", func() {
		It("resolves a resolver-backed root field", func() {
			result := engine.execute(`{ greeting }`, nil)
			Expect(result.Errors).Should(BeEmpty())
			Expect(dataValue(result, "greeting")).Should(Equal("Hello, World!"))
		})

		It("omits fields excluded by @skip and @include", func() {
			result := engine.execute(
				`query ($on: Boolean!) { greeting workingField @skip(if: true) echo @include(if: $on) }`,
				map[string]interface{}{"on": false})
			Expect(result.Errors).Should(BeEmpty())
			Expect(result.Data.Keys()).Should(Equal([]string{"greeting"}))
		})

		It("preserves the query's textual field order in the response", func() {
			result := engine.execute(`{ workingField greeting }`, nil)
			Expect(result.Errors).Should(BeEmpty())
			Expect(result.Data.Keys()).Should(Equal([]string{"workingField", "greeting"}))
		})
	})

	Describe("batching", func() {
		It("coalesces sibling resolutions into a single batch call", func() {
			result := engine.execute(`{ items { id owner { name } } }`, nil)
			Expect(result.Errors).Should(BeEmpty())

			Expect(atomic.LoadInt64(&engine.counters.ownerBatchCalls)).Should(Equal(int64(1)))

			items := dataValue(result, "items").([]interface{})
			Expect(items).Should(HaveLen(3))
			for i, item := range items {
				owner, ok := item.(*oer.OrderedMap).Get("owner")
				Expect(ok).Should(BeTrue())
				name, ok := owner.(*oer.OrderedMap).Get("name")
				Expect(ok).Should(BeTrue())
				Expect(name).Should(Equal(fmt.Sprintf("Owner %d", i+1)))
			}
		})

		It("fails every context when the batch breaks the length contract", func() {
			result := engine.execute(`{ items { badOwner { name } } }`, nil)
			Expect(result.Errors).ShouldNot(BeEmpty())
			Expect(atomic.LoadInt64(&engine.counters.badOwnerBatchSize)).Should(Equal(int64(3)))
			for _, graphqlErr := range result.Errors {
				Expect(graphqlErr.Message).Should(ContainSubstring("3 contexts"))
			}
		})
	})

	Describe("deduplication", func() {
		It("invokes the resolver at most once per OER key", func() {
			result := engine.execute(`{ a: user { name } b: user { name } }`, nil)
			Expect(result.Errors).Should(BeEmpty())
			Expect(atomic.LoadInt64(&engine.counters.userCalls)).Should(Equal(int64(1)))

			a, _ := result.Data.Get("a")
			b, _ := result.Data.Get("b")
			aName, _ := a.(*oer.OrderedMap).Get("name")
			bName, _ := b.(*oer.OrderedMap).Get("name")
			Expect(aName).Should(Equal("Ursula"))
			Expect(bName).Should(Equal("Ursula"))
		})
	})

	Describe("mutations", func() {
		It("serializes top-level mutation fields in textual order", func() {
			result := engine.execute(`mutation { first second }`, nil)
			Expect(result.Errors).Should(BeEmpty())
			Expect(engine.counters.mutationLog).Should(Equal([]string{
				"first:start", "first:end", "second:start", "second:end",
			}))
		})

		It("executes a recursive submutation", func() {
			result := engine.execute(`mutation { tri(n: 4) }`, nil)
			Expect(result.Errors).Should(BeEmpty())
			Expect(dataValue(result, "tri")).Should(Equal(10))
		})

		It("handles the submutation base case", func() {
			result := engine.execute(`mutation { tri(n: 1) }`, nil)
			Expect(result.Errors).Should(BeEmpty())
			Expect(dataValue(result, "tri")).Should(Equal(1))
		})
	})

	Describe("scope filtering", func() {
		It("rejects an out-of-scope field as an unknown field", func() {
			result := engine.executeUnder(`{ user { email } }`,
				nil, scopefilter.Scoped("public", "public"))
			Expect(result.Data).Should(BeNil())
			Expect(result.Errors).Should(HaveLen(1))
			Expect(result.Errors[0].Message).Should(ContainSubstring("email"))
		})

		It("serves the same field under a scope that declares it", func() {
			result := engine.executeUnder(`{ user { email } }`,
				nil, scopefilter.Scoped("internal", "internal"))
			Expect(result.Errors).Should(BeEmpty())
			user, _ := result.Data.Get("user")
			email, _ := user.(*oer.OrderedMap).Get("email")
			Expect(email).Should(Equal("ursula@example.com"))
		})
	})

	Describe("policy checks", func() {
		It("short-circuits a denied field to null without running its resolver", func() {
			result := engine.execute(`{ canNotAccessField }`, nil)
			Expect(dataValue(result, "canNotAccessField")).Should(BeNil())
			Expect(result.Errors).Should(HaveLen(1))
			Expect(result.Errors[0].Path).Should(Equal([]interface{}{"canNotAccessField"}))
			Expect(atomic.LoadInt64(&engine.counters.deniedCalls)).Should(Equal(int64(0)))
		})
	})

	Describe("required selection sets", func() {
		It("turns a failing variable provider into a field error and leaves siblings intact", func() {
			result := engine.execute(`{ workingField fromVariablesProvider }`, nil)
			Expect(dataValue(result, "workingField")).Should(Equal("success"))
			Expect(dataValue(result, "fromVariablesProvider")).Should(BeNil())
			Expect(result.Errors).Should(HaveLen(1))
			Expect(result.Errors[0].Path).Should(Equal([]interface{}{"fromVariablesProvider"}))
		})
	})

	Describe("subqueries", func() {
		It("does not inherit the outer operation's variables", func() {
			result := engine.execute(
				`query ($outer: String) { isolationProbe }`,
				map[string]interface{}{"outer": "leaky"})
			Expect(result.Errors).Should(BeEmpty())
			Expect(dataValue(result, "isolationProbe")).Should(Equal("isolated"))
		})
	})

	Describe("error reporting", func() {
		It("sorts the errors list by path then message", func() {
			result := engine.execute(`{ zulu alpha }`, nil)
			Expect(result.Errors).Should(HaveLen(2))
			Expect(result.Errors[0].Path).Should(Equal([]interface{}{"alpha"}))
			Expect(result.Errors[1].Path).Should(Equal([]interface{}{"zulu"}))
		})
	})
})
