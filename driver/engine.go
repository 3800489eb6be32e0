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

package driver

import (
	"context"
	"fmt"

	"github.com/viaduct-dev/viaduct/dispatch"
	"github.com/viaduct-dev/viaduct/errs"
	"github.com/viaduct-dev/viaduct/flags"
	"github.com/viaduct-dev/viaduct/rss"
	"github.com/viaduct-dev/viaduct/schema"
)

// engine is the dispatch.Engine implementation handed to resolver contexts: the re-entry surface
// for subqueries and submutations plus Global ID services. It carries the frame of
// the invoking resolver so re-entries park correctly in the enclosing tick frame while opening a
// tick frame of their own.
type engine struct {
	req   *request
	frame *frame
}

var _ dispatch.Engine = (*engine)(nil)

// SelectionsFor implements dispatch.Engine: it parses a fragment (or bare-field shorthand)
// anchored at the requested operation root and plans it eagerly, so malformed selections fail at
// handle construction.
func (e *engine) SelectionsFor(
	root rss.OperationKind,
	fragmentSource string,
	variables map[string]interface{}) (*dispatch.SelectionSet, error) {
	const op errs.Op = "driver.engine.SelectionsFor"

	plan, err := e.req.driver.planner.PlanFragmentSelections(root, fragmentSource, e.req.schemaID)
	if err != nil {
		// A mismatched or unparsable root selection is a subquery failure, not a plan failure of the
		// outer operation.
		return nil, errs.New(op, errs.KindSubqueryExecution, err)
	}

	return &dispatch.SelectionSet{
		Root:      root,
		Source:    fragmentSource,
		Plan:      plan,
		Variables: variables,
	}, nil
}

// Query implements dispatch.Engine.
func (e *engine) Query(goctx context.Context, selections *dispatch.SelectionSet) (*dispatch.TypedView, error) {
	return e.execute(goctx, rss.QueryOperation, selections)
}

// Mutation implements dispatch.Engine.
func (e *engine) Mutation(goctx context.Context, selections *dispatch.SelectionSet) (*dispatch.TypedView, error) {
	return e.execute(goctx, rss.MutationOperation, selections)
}

// execute runs a re-entrant selection set against the same request. The re-entry shares the
// request's OER (deduplication spans re-entries) but opens a new tick frame: batch slots queued
// inside the subquery never coalesce with the enclosing tick (see DESIGN.md on the tick-boundary
// Open Question).
func (e *engine) execute(
	goctx context.Context,
	kind rss.OperationKind,
	selections *dispatch.SelectionSet) (*dispatch.TypedView, error) {
	const op errs.Op = "driver.engine.execute"

	r := e.req
	if !r.driver.flags.Enabled(flags.EnableSubqueryExecutionViaHandle) {
		return nil, errs.New(op, errs.KindSubqueryExecution,
			"re-entrant subquery execution is disabled (ENABLE_SUBQUERY_EXECUTION_VIA_HANDLE)")
	}
	if selections == nil || selections.Plan == nil {
		return nil, errs.New(op, errs.KindSubqueryExecution, "nil selection set handle")
	}
	if selections.Root != kind {
		return nil, errs.New(op, errs.KindSubqueryExecution, fmt.Sprintf(
			"selection set is anchored at the %s root but was executed as a %s", selections.Root, kind))
	}

	plan := selections.Plan
	rootNode := r.rootNode(kind, plan.RootType)

	// Variables of the outer operation are not inherited; the handle's explicit variables are the
	// whole variable scope.
	vars := schema.NewVariableValues(selections.Variables)

	subFrame := r.newFrame(goctx)
	st := &execState{req: r, frame: subFrame, vars: vars}
	serial := kind == rss.MutationOperation

	var source interface{}
	if kind == rss.QueryOperation {
		source = r.view.FilteredSchema()
	}

	// The enclosing resolver parks in its own frame while the subquery's frame runs to
	// completion.
	_, _ = e.frame.park(func() (interface{}, error) {
		r.runSelections(st, goctx, rootNode, plan.Selections, source, nil, serial, serial)
		subFrame.wait()
		return nil, nil
	})

	// A selection may have attached to an entry the enclosing operation is still computing; await
	// those in the enclosing frame so its ticks keep flowing, then surface the first failed root
	// field as a SubqueryExecutionException wrapping the original error (the resolver may handle
	// or propagate it).
	for _, field := range plan.Selections.Fields {
		key, bound := rootNode.AliasKey(field.Alias)
		if !bound {
			continue
		}
		if _, fieldErr := e.frame.park(func() (interface{}, error) {
			return rootNode.Await(goctx, key)
		}); fieldErr != nil {
			return nil, errs.New(op, errs.KindSubqueryExecution, fieldErr)
		}
	}

	return dispatch.NewTypedView(rootNode, plan.Selections), nil
}

// GlobalIDFor implements dispatch.Engine.
func (e *engine) GlobalIDFor(typeName, internalID string) string {
	return e.req.driver.central.GlobalIDCodec().Encode(schema.GlobalID{
		TypeName:   typeName,
		InternalID: internalID,
	})
}

// NodeFor implements dispatch.Engine.
func (e *engine) NodeFor(globalID string) (*dispatch.NodeReference, error) {
	const op errs.Op = "driver.engine.NodeFor"

	id, err := e.req.driver.central.GlobalIDCodec().Decode(globalID)
	if err != nil {
		return nil, errs.New(op, errs.KindResolver, err)
	}
	if !e.req.driver.central.IsNode(id.TypeName) {
		return nil, errs.New(op, errs.KindResolver, fmt.Sprintf(
			"type %q referenced by global id does not implement Node", id.TypeName))
	}
	return &dispatch.NodeReference{ID: id}, nil
}

// resolveInfo implements schema.ResolveInfo for trivial field resolution (introspection and meta
// fields run through the schema definitions' own FieldResolvers).
type resolveInfo struct {
	req   *request
	field *rss.PlannedField
	args  schema.ArgumentValues
	path  []interface{}
}

var _ schema.ResolveInfo = (*resolveInfo)(nil)

// Schema implements schema.ResolveInfo. Introspection observes the scope-filtered schema so a
// scoped client only ever introspects what it can query.
func (info *resolveInfo) Schema() schema.Schema {
	return info.req.view.FilteredSchema()
}

// Object implements schema.ResolveInfo.
func (info *resolveInfo) Object() *schema.Object {
	if t, ok := info.req.view.LookupType(info.field.ParentType).(*schema.Object); ok {
		return t
	}
	return nil
}

// Field implements schema.ResolveInfo.
func (info *resolveInfo) Field() *schema.Field {
	return info.field.Def
}

// Path implements schema.ResolveInfo.
func (info *resolveInfo) Path() schema.ResponsePath {
	var path schema.ResponsePath
	for _, key := range info.path {
		switch key := key.(type) {
		case int:
			path.AppendIndex(key)
		default:
			path.AppendFieldName(fmt.Sprint(key))
		}
	}
	return path
}

// Args implements schema.ResolveInfo.
func (info *resolveInfo) Args() schema.ArgumentValues {
	return info.args
}

// VariableValues implements schema.ResolveInfo.
func (info *resolveInfo) VariableValues() schema.VariableValues {
	return schema.NoVariableValues()
}
