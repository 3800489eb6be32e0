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
	"github.com/viaduct-dev/viaduct/errs"
	"github.com/viaduct-dev/viaduct/schema"
)

// FieldValue is the outcome a resolver produces for one field: a materialized value or an error
//. Batch resolvers return one FieldValue per input context, positionally.
type FieldValue struct {
	Value interface{}
	Err   error
}

// Of wraps a plain value.
func Of(value interface{}) FieldValue {
	return FieldValue{Value: value}
}

// OfError wraps an error.
func OfError(err error) FieldValue {
	return FieldValue{Err: err}
}

// NodeReference is the value a resolver returns for an object-typed field when it only knows the
// object's identity: the engine transparently resolves the node's fields downstream. Accessing
// any field other than the id from the producing resolver fails.
type NodeReference struct {
	// ID is the node's Global ID.
	ID schema.GlobalID
}

// TypeName returns the referenced node's type.
func (ref *NodeReference) TypeName() string {
	return ref.ID.TypeName
}

// Get fails for every field except "id"; the producing resolver only holds the reference.
func (ref *NodeReference) Get(field string) (interface{}, error) {
	if field == "id" {
		return ref.ID, nil
	}
	return nil, errs.New("dispatch.NodeReference.Get", errs.KindUnrequestedSelection,
		"field "+field+" is not materialized on a node reference; only id is available to the producing resolver")
}
