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
	"fmt"

	"github.com/viaduct-dev/viaduct/errs"
	"github.com/viaduct-dev/viaduct/oer"
	"github.com/viaduct-dev/viaduct/rss"
)

// TypedView is the read-only window a resolver reads its required selections through: it is
// populated with exactly the selections the fragment declared and no others. Accessing an
// undeclared field fails with UnrequestedSelection -- the programmer error
// that catches a resolver depending on data it never asked for.
//
// The engine core works on an untyped field-name -> value model; generated or handwritten typed
// accessors wrap a TypedView at the public API layer.
type TypedView struct {
	node       *oer.Node
	selections *rss.PlannedSelectionSet
}

// NewTypedView wraps an OER node restricted to the given planned selections. Only the driver
// calls this.
func NewTypedView(node *oer.Node, selections *rss.PlannedSelectionSet) *TypedView {
	return &TypedView{node: node, selections: selections}
}

// TypeName returns the concrete type name of the viewed object.
func (v *TypedView) TypeName() string {
	return v.node.TypeName()
}

// Has reports whether alias is declared by the view's selections.
func (v *TypedView) Has(alias string) bool {
	return v.lookupField(alias) != nil
}

// lookupField finds the planned field for alias among the declared selections, honoring
// conditional groups that match the node's concrete type.
func (v *TypedView) lookupField(alias string) *rss.PlannedField {
	if v.selections == nil {
		return nil
	}
	for _, field := range v.selections.Fields {
		if field.Alias == alias {
			return field
		}
	}
	concrete := v.node.TypeName()
	for _, group := range v.selections.Conditional {
		if group.TypeCondition != concrete {
			continue
		}
		for _, field := range group.Selections.Fields {
			if field.Alias == alias {
				return field
			}
		}
	}
	return nil
}

// Get returns the resolved value of a declared selection. Object-typed selections come back as
// nested *TypedView, lists as []interface{} with nested views in object positions. Accessing an
// alias the fragment didn't declare fails with an UnrequestedSelection error.
func (v *TypedView) Get(alias string) (interface{}, error) {
	const op errs.Op = "dispatch.TypedView.Get"

	field := v.lookupField(alias)
	if field == nil {
		return nil, errs.New(op, errs.KindUnrequestedSelection,
			fmt.Sprintf("field %q was not declared in the required selection set on %s",
				alias, v.node.TypeName()))
	}

	value, err, ok := v.node.Peek(alias)
	if !ok {
		return nil, errs.Internalf(op, "declared selection %q was never resolved", alias)
	}
	if err != nil {
		return nil, err
	}
	return v.wrap(value, field), nil
}

// MustGet is Get panicking on error, a convenience for resolver code that treats an undeclared
// access as the programming error it is.
func (v *TypedView) MustGet(alias string) interface{} {
	value, err := v.Get(alias)
	if err != nil {
		panic(err)
	}
	return value
}

// GetView returns a declared object-typed selection as a nested view.
func (v *TypedView) GetView(alias string) (*TypedView, error) {
	value, err := v.Get(alias)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, nil
	}
	view, ok := value.(*TypedView)
	if !ok {
		return nil, errs.Internalf("dispatch.TypedView.GetView",
			"selection %q is not object-typed", alias)
	}
	return view, nil
}

// wrap converts stored OER values into their view forms.
func (v *TypedView) wrap(value interface{}, field *rss.PlannedField) interface{} {
	switch value := value.(type) {
	case *oer.Node:
		return NewTypedView(value, field.Selections)
	case []interface{}:
		wrapped := make([]interface{}, len(value))
		for i, elem := range value {
			if elemError, ok := elem.(*oer.ElemError); ok {
				wrapped[i] = elemError.Err
				continue
			}
			wrapped[i] = v.wrap(elem, field)
		}
		return wrapped
	default:
		return value
	}
}
