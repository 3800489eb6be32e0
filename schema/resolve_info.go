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

package schema

import (
	"encoding/json"
)

// ResolveInfo is the execution state a FieldResolver can read. The execution driver provides the
// implementation.
type ResolveInfo interface {
	// Schema being executed against (a scope-filtered view under a scoped schema id).
	Schema() Schema

	// Object returns the enclosing object type, or nil at an operation root.
	Object() *Object

	// Field being resolved.
	Field() *Field

	// Path of the field in the response.
	Path() ResponsePath

	// Args holds the field's coerced arguments.
	Args() ArgumentValues

	// VariableValues holds the operation's coerced variables.
	VariableValues() VariableValues
}

// ArgumentValues is an immutable set of coerced argument values.
type ArgumentValues struct {
	values map[string]interface{}
}

var emptyArguments = ArgumentValues{values: map[string]interface{}{}}

// NoArgumentValues returns the empty set.
func NoArgumentValues() ArgumentValues {
	return emptyArguments
}

// NewArgumentValues wraps values; the caller must not mutate the map afterwards.
func NewArgumentValues(values map[string]interface{}) ArgumentValues {
	if len(values) == 0 {
		return emptyArguments
	}
	return ArgumentValues{values: values}
}

// Lookup returns the value for name and whether it was present.
func (args ArgumentValues) Lookup(name string) (interface{}, bool) {
	value, ok := args.values[name]
	return value, ok
}

// Get returns the value for name, or nil.
func (args ArgumentValues) Get(name string) interface{} {
	return args.values[name]
}

// Each calls fn per name/value pair, in unspecified order.
func (args ArgumentValues) Each(fn func(name string, value interface{})) {
	for name, value := range args.values {
		fn(name, value)
	}
}

// MarshalJSON serializes the values; tests assert against this.
func (args ArgumentValues) MarshalJSON() ([]byte, error) {
	return json.Marshal(args.values)
}

// VariableValues is an immutable set of coerced operation variables.
type VariableValues struct {
	values map[string]interface{}
}

var emptyVariables = VariableValues{values: map[string]interface{}{}}

// NoVariableValues returns the empty set.
func NoVariableValues() VariableValues {
	return emptyVariables
}

// NewVariableValues wraps values; the caller must not mutate the map afterwards.
func NewVariableValues(values map[string]interface{}) VariableValues {
	if len(values) == 0 {
		return emptyVariables
	}
	return VariableValues{values: values}
}

// Lookup returns the value for name and whether it was present.
func (vars VariableValues) Lookup(name string) (interface{}, bool) {
	value, ok := vars.values[name]
	return value, ok
}

// Get returns the value for name, or nil.
func (vars VariableValues) Get(name string) interface{} {
	return vars.values[name]
}

// MarshalJSON serializes the values; tests assert against this.
func (vars VariableValues) MarshalJSON() ([]byte, error) {
	return json.Marshal(vars.values)
}
