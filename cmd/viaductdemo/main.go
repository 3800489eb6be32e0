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

// Command viaductdemo wires a small two-tenant schema into the execution driver and either runs a
// sample query or serves the execution surface over HTTP.
//
//	viaductdemo                  # execute the sample query and print the result
//	viaductdemo -listen :8080    # POST {"query": "..."} to /graphql
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/viaduct-dev/viaduct/dispatch"
	"github.com/viaduct-dev/viaduct/driver"
	"github.com/viaduct-dev/viaduct/flags"
	"github.com/viaduct-dev/viaduct/instrumentation"
	"github.com/viaduct-dev/viaduct/instrumentation/otelinstr"
	"github.com/viaduct-dev/viaduct/jsonwriter"
	"github.com/viaduct-dev/viaduct/rss"
	"github.com/viaduct-dev/viaduct/schema"
	"github.com/viaduct-dev/viaduct/scopefilter"
)

func buildSchema() *schema.CentralSchema {
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
			"id":    {Type: schema.NonNullOfType(schema.ID())},
			"owner": {Type: userType},
		},
	}
	queryType := &schema.ObjectConfig{
		Name: "Query",
		Fields: schema.Fields{
			"greeting": {Type: schema.T(schema.String())},
			"items":    {Type: schema.ListOf(itemType)},
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
		},
	}

	central, err := schema.NewBuilder(schema.NewScopeUniverse()).
		SetQuery(queryType).
		SetMutation(mutationType).
		AddModule(schema.ModuleFragment{
			Name:  "greetings",
			Types: []schema.TypeDefinition{queryType, mutationType},
			ElementDirectives: map[schema.ElementKey]schema.DirectiveApplicationList{
				schema.FieldKey("Query", "greeting"): {{Name: schema.DirectiveResolver}},
				schema.FieldKey("Query", "items"):    {{Name: schema.DirectiveResolver}},
			},
		}).
		AddModule(schema.ModuleFragment{
			Name:         "accounts",
			Dependencies: []string{"greetings"},
			Types:        []schema.TypeDefinition{userType, itemType},
			ElementScopes: map[schema.ElementKey][]string{
				schema.FieldKey("User", "email"): {"internal"},
			},
		}).
		Build()
	if err != nil {
		log.Fatalf("building central schema: %v", err)
	}
	return central
}

func buildRegistry() *dispatch.Registry {
	registry := dispatch.NewRegistry()

	registry.MustRegister(&dispatch.Registration{
		TypeName: "Query", FieldName: "greeting",
		Factory: func() (interface{}, error) {
			return dispatch.ResolverFunc(func(ctx *dispatch.Ctx) (interface{}, error) {
				return "Hello, World!", nil
			}), nil
		},
	})

	registry.MustRegister(&dispatch.Registration{
		TypeName: "Query", FieldName: "items",
		Factory: func() (interface{}, error) {
			return dispatch.ResolverFunc(func(ctx *dispatch.Ctx) (interface{}, error) {
				return []interface{}{
					map[string]interface{}{"id": "1"},
					map[string]interface{}{"id": "2"},
					map[string]interface{}{"id": "3"},
				}, nil
			}), nil
		},
	})

	// Item.owner batches: one backend call per tick regardless of how many items were selected.
	registry.MustRegister(&dispatch.Registration{
		TypeName: "Item", FieldName: "owner",
		ObjectSelections: "id",
		Batch:            true,
		Factory: func() (interface{}, error) {
			return dispatch.BatchResolverFunc(func(ctxs []*dispatch.Ctx) ([]dispatch.FieldValue, error) {
				log.Printf("owner batch: %d contexts", len(ctxs))
				results := make([]dispatch.FieldValue, len(ctxs))
				for i, ctx := range ctxs {
					id, err := ctx.ObjectValue().Get("id")
					if err != nil {
						results[i] = dispatch.OfError(err)
						continue
					}
					results[i] = dispatch.Of(map[string]interface{}{
						"id":   fmt.Sprintf("owner-%v", id),
						"name": fmt.Sprintf("Owner of item %v", id),
					})
				}
				return results, nil
			}), nil
		},
	})

	registry.MustRegister(&dispatch.Registration{
		TypeName: "Mutation", FieldName: "tri",
		Factory: func() (interface{}, error) {
			return dispatch.ResolverFunc(func(ctx *dispatch.Ctx) (interface{}, error) {
				n := ctx.Arguments().Get("n").(int)
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
			}), nil
		},
	})

	return registry
}

func main() {
	listen := flag.String("listen", "", "serve the execution surface over HTTP at this address")
	flag.Parse()

	shutdown := otelinstr.Setup()
	defer shutdown(context.Background())

	d, err := driver.New(driver.Config{
		Schema:   buildSchema(),
		Registry: buildRegistry(),
		Flags: flags.NewStatic(map[flags.Flag]bool{
			flags.EnableSubqueryExecutionViaHandle: true,
		}),
		Instrumentations: []instrumentation.Instrumentation{otelinstr.New()},
	})
	if err != nil {
		log.Fatalf("building driver: %v", err)
	}

	if *listen != "" {
		http.Handle("/graphql", &driver.HTTPHandler{Driver: d, SchemaID: scopefilter.Full()})
		log.Printf("serving /graphql on %s", *listen)
		log.Fatal(http.ListenAndServe(*listen, nil))
	}

	for _, operation := range []string{
		`{ greeting items { id owner { name } } }`,
		`mutation { tri(n: 4) }`,
	} {
		result := d.Execute(context.Background(), driver.ExecutionInput{
			OperationText: operation,
		}, scopefilter.Full())

		stream := jsonwriter.NewStream(os.Stdout)
		stream.WriteValue(result)
		if err := stream.Flush(); err != nil {
			log.Fatalf("writing result: %v", err)
		}
		fmt.Println()
	}
}
