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

package oer

import (
	"github.com/viaduct-dev/viaduct/jsonwriter"
	"github.com/viaduct-dev/viaduct/rss"
	"github.com/viaduct-dev/viaduct/schema"
)

// ElemError marks a failed list element inside a completed list value.
type ElemError struct {
	Err error
}

// FieldError is one error surfaced by snapshot construction, attributed to a response path.
type FieldError struct {
	Message    string
	Path       []interface{}
	Extensions map[string]interface{}

	// Err is the underlying error, kept for kind inspection (e.g. filtering Cancelled).
	Err error
}

// OrderedMap is a JSON object whose keys marshal in insertion order, used for the data tree so
// the response map's key order equals the query's textual field order regardless of completion
// order.
type OrderedMap struct {
	keys   []string
	values map[string]interface{}
}

var _ jsonwriter.ValueMarshaler = (*OrderedMap)(nil)

// NewOrderedMap creates an empty OrderedMap.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: map[string]interface{}{}}
}

// Set inserts or replaces a key; first insertion fixes its position.
func (m *OrderedMap) Set(key string, value interface{}) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored at key.
func (m *OrderedMap) Get(key string) (interface{}, bool) {
	value, ok := m.values[key]
	return value, ok
}

// Len returns the number of keys.
func (m *OrderedMap) Len() int { return len(m.keys) }

// Keys returns the keys in insertion order.
func (m *OrderedMap) Keys() []string { return m.keys }

// MarshalJSONTo implements jsonwriter.ValueMarshaler.
func (m *OrderedMap) MarshalJSONTo(stream *jsonwriter.Stream) error {
	if m.Len() == 0 {
		stream.WriteEmptyObject()
		return stream.Error()
	}
	stream.WriteObjectStart()
	for i, key := range m.keys {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(key)
		value := m.values[key]
		if nested, ok := value.(*OrderedMap); ok {
			stream.WriteValue(nested)
			continue
		}
		stream.WriteInterface(value)
	}
	stream.WriteObjectEnd()
	return stream.Error()
}

// MarshalJSON implements json.Marshaler via jsonwriter.
func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	return jsonwriter.Marshal(m)
}

// snapshotter carries the state of one snapshot pass.
type snapshotter struct {
	errors []*FieldError
}

// Snapshot materializes the graph into a plain ordered tree following the plan, applying
// GraphQL's null-bubbling rules: a non-null field that resolved to null or to an error nulls the
// nearest nullable ancestor, with the error attached at the field's own path. The returned data
// is nil when bubbling reached the root.
func (g *Graph) Snapshot(plan *rss.Plan) (*OrderedMap, []*FieldError) {
	s := &snapshotter{}
	data, bubbled := s.selections(g.root, plan.Selections, nil)
	if bubbled {
		return nil, s.errors
	}
	return data, s.errors
}

// record appends an error entry.
func (s *snapshotter) record(err error, path []interface{}) {
	fe := &FieldError{
		Message: err.Error(),
		Path:    append([]interface{}(nil), path...),
		Err:     err,
	}
	if withExtensions, ok := err.(schema.ErrorWithExtensions); ok {
		fe.Extensions = withExtensions.Extensions()
	}
	s.errors = append(s.errors, fe)
}

// selections renders one node against a planned selection set. bubbled is true when a non-null
// child nulled out and the null must propagate through this object.
func (s *snapshotter) selections(node *Node, set *rss.PlannedSelectionSet, path []interface{}) (*OrderedMap, bool) {
	result := NewOrderedMap()

	render := func(field *rss.PlannedField) bool {
		value, err, ok := node.Peek(field.Alias)
		if !ok {
			// Never dispatched: a conditional selection whose type condition didn't match.
			return false
		}
		fieldPath := append(path, field.Alias)
		rendered, bubbled := s.value(value, err, field.Def.Type(), field.Selections, fieldPath)
		if bubbled {
			return true
		}
		result.Set(field.Alias, rendered)
		return false
	}

	for _, field := range set.Fields {
		if render(field) {
			return nil, true
		}
	}
	for _, group := range set.Conditional {
		for _, field := range group.Selections.Fields {
			if render(field) {
				return nil, true
			}
		}
	}

	return result, false
}

// value renders one completed value. bubbled reports that the value position was non-null but
// had to become null.
func (s *snapshotter) value(
	value interface{},
	err error,
	fieldType schema.Type,
	selections *rss.PlannedSelectionSet,
	path []interface{}) (interface{}, bool) {

	nonNull := schema.IsNonNullType(fieldType)

	if err != nil {
		s.record(err, path)
		return nil, nonNull
	}

	switch value := value.(type) {
	case nil:
		return nil, nonNull

	case *Node:
		sub, bubbled := s.selections(value, selections, path)
		if bubbled {
			return nil, nonNull
		}
		return sub, false

	case []interface{}:
		elemType := listElementType(fieldType)
		rendered := make([]interface{}, 0, len(value))
		for i, elem := range value {
			elemPath := append(path, i)
			var (
				elemValue interface{}
				elemErr   error
			)
			if elemError, ok := elem.(*ElemError); ok {
				elemErr = elemError.Err
			} else {
				elemValue = elem
			}
			renderedElem, bubbled := s.value(elemValue, elemErr, elemType, selections, elemPath)
			if bubbled {
				// A non-null element nulled out: the list itself becomes null.
				return nil, nonNull
			}
			rendered = append(rendered, renderedElem)
		}
		return rendered, false

	default:
		// Leaf value, already coerced at completion time.
		return value, false
	}
}

// listElementType unwraps a (possibly non-null) list type to its element type.
func listElementType(t schema.Type) schema.Type {
	t = schema.NullableTypeOf(t)
	if list, ok := t.(*schema.List); ok {
		return list.ElementType()
	}
	return t
}
