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

package dispatch

import (
	"context"

	"github.com/viaduct-dev/viaduct/errs"
	"github.com/viaduct-dev/viaduct/rss"
	"github.com/viaduct-dev/viaduct/schema"
)

// Engine is the re-entry surface the driver exposes to resolvers: subqueries, submutations,
// selection-set handles, and Global ID services. The driver implements it; this
// package only declares the contract to avoid a dependency cycle.
type Engine interface {
	// Query executes a Query selection set against the same request (shared OER) and returns a
	// typed view of the result.
	Query(ctx context.Context, selections *SelectionSet) (*TypedView, error)

	// Mutation executes a Mutation selection set serialized relative to the caller's mutation slot.
	Mutation(ctx context.Context, selections *SelectionSet) (*TypedView, error)

	// SelectionsFor builds a raw selection set handle referencing the Query or Mutation root.
	// Variables from the outer operation are not inherited; callers pass them explicitly.
	SelectionsFor(root rss.OperationKind, fragmentSource string, variables map[string]interface{}) (*SelectionSet, error)

	// GlobalIDFor serializes (typeName, internalID) with the deployment's codec.
	GlobalIDFor(typeName, internalID string) string

	// NodeFor decodes an opaque Global ID into a node reference.
	NodeFor(globalID string) (*NodeReference, error)
}

// SelectionSet is the raw handle returned by SelectionsFor: a parsed selection set anchored at an
// operation root plus explicit variables, executable through Engine.Query / Engine.Mutation.
type SelectionSet struct {
	// Root is the operation root the selections reference.
	Root rss.OperationKind

	// Source is the fragment text the handle was built from.
	Source string

	// Plan is the planned form, built when the handle was created.
	Plan *rss.Plan

	// Variables are the explicit variable values for the execution.
	Variables map[string]interface{}
}

// Ctx is the single argument to a resolver invocation. It carries the request
// context, the coerced field arguments, the materialized required-selection views, and the
// re-entry surface.
type Ctx struct {
	context.Context

	// TypeName and FieldName identify the planned field being resolved.
	TypeName  string
	FieldName string

	// Path is the response path of the field.
	Path []interface{}

	engine         Engine
	arguments      schema.ArgumentValues
	objectValue    *TypedView
	queryValue     *TypedView
	selections     *rss.PlannedSelectionSet
	requestContext interface{}
	mutationField  bool
}

// CtxConfig carries everything the driver assembles before invoking a resolver.
type CtxConfig struct {
	Context        context.Context
	TypeName       string
	FieldName      string
	Path           []interface{}
	Engine         Engine
	Arguments      schema.ArgumentValues
	ObjectValue    *TypedView
	QueryValue     *TypedView
	Selections     *rss.PlannedSelectionSet
	RequestContext interface{}
	MutationField  bool
}

// NewCtx builds a Ctx. Only the driver calls this.
func NewCtx(config CtxConfig) *Ctx {
	return &Ctx{
		Context:        config.Context,
		TypeName:       config.TypeName,
		FieldName:      config.FieldName,
		Path:           config.Path,
		engine:         config.Engine,
		arguments:      config.Arguments,
		objectValue:    config.ObjectValue,
		queryValue:     config.QueryValue,
		selections:     config.Selections,
		requestContext: config.RequestContext,
		mutationField:  config.MutationField,
	}
}

// Arguments returns the field's coerced arguments.
func (ctx *Ctx) Arguments() schema.ArgumentValues {
	return ctx.arguments
}

// ObjectValue returns the typed view populated with exactly the resolver's declared object RSS.
// It is nil when no object RSS was declared.
func (ctx *Ctx) ObjectValue() *TypedView {
	return ctx.objectValue
}

// QueryValue returns the typed view populated with exactly the resolver's declared query RSS. It
// is nil when no query RSS was declared.
func (ctx *Ctx) QueryValue() *TypedView {
	return ctx.queryValue
}

// Selections returns the caller's selection set beneath this field.
func (ctx *Ctx) Selections() *rss.PlannedSelectionSet {
	return ctx.selections
}

// RequestContext returns the embedder-supplied opaque request context.
func (ctx *Ctx) RequestContext() interface{} {
	return ctx.requestContext
}

// GlobalIDFor serializes (typeReflection, internalID) with the deployment's codec.
func (ctx *Ctx) GlobalIDFor(typeName, internalID string) string {
	return ctx.engine.GlobalIDFor(typeName, internalID)
}

// NodeFor constructs a node reference from an opaque Global ID.
func (ctx *Ctx) NodeFor(globalID string) (*NodeReference, error) {
	return ctx.engine.NodeFor(globalID)
}

// SelectionsFor builds a raw selection set handle against an operation root.
func (ctx *Ctx) SelectionsFor(root rss.OperationKind, fragmentSource string, variables map[string]interface{}) (*SelectionSet, error) {
	return ctx.engine.SelectionsFor(root, fragmentSource, variables)
}

// Query executes a subquery against the same request, sharing the OER with the enclosing
// operation.
func (ctx *Ctx) Query(selections *SelectionSet) (*TypedView, error) {
	return ctx.engine.Query(ctx.Context, selections)
}

// Mutation executes a submutation. Only resolvers of mutation fields may call it.
func (ctx *Ctx) Mutation(selections *SelectionSet) (*TypedView, error) {
	if !ctx.mutationField {
		return nil, errs.New("dispatch.Ctx.Mutation", errs.KindSubqueryExecution,
			"mutation() is only available to mutation-field resolvers")
	}
	return ctx.engine.Mutation(ctx.Context, selections)
}
