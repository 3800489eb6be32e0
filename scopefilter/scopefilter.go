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

// Package scopefilter derives per-request read-only views of the central schema from a set of
// active scope ids. A requester names a scope set with a SchemaID; the filter hides types, fields,
// enum values and interface-implementation edges that are out of scope and then prunes object
// types whose field set becomes empty, repeating until a fixpoint.
//
// Filtering is deterministic: the same central schema and the same scope-id set always produce a
// structurally identical view, so views are memoized per SchemaID.
package scopefilter

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/viaduct-dev/viaduct/schema"
)

// SchemaIDKind discriminates the variants of SchemaID.
type SchemaIDKind uint8

// Enumeration of SchemaIDKind.
const (
	// SchemaIDFull designates the unfiltered central schema.
	SchemaIDFull SchemaIDKind = iota
	// SchemaIDNone designates a schema under which every lookup fails.
	SchemaIDNone
	// SchemaIDScoped designates a schema filtered by a named set of scope ids.
	SchemaIDScoped
)

// SchemaID identifies a scope set exposed as a schema.
type SchemaID struct {
	Kind SchemaIDKind

	// Name identifies the scope set; empty for Full and None.
	Name string

	// ScopeIDs are the active scope ids; only meaningful for Scoped.
	ScopeIDs []string
}

// Full returns the SchemaID for the unfiltered schema.
func Full() SchemaID {
	return SchemaID{Kind: SchemaIDFull}
}

// None returns the SchemaID under which all lookups fail.
func None() SchemaID {
	return SchemaID{Kind: SchemaIDNone}
}

// Scoped returns a SchemaID naming a scope-id set. An empty scope-id set is invalid; the filter
// rejects it when the view is constructed.
func Scoped(name string, scopeIDs ...string) SchemaID {
	ids := make([]string, len(scopeIDs))
	copy(ids, scopeIDs)
	sort.Strings(ids)
	return SchemaID{Kind: SchemaIDScoped, Name: name, ScopeIDs: ids}
}

// cacheKey returns the canonical string form used to memoize views.
func (id SchemaID) cacheKey() string {
	switch id.Kind {
	case SchemaIDFull:
		return "\x00full"
	case SchemaIDNone:
		return "\x00none"
	default:
		return id.Name + "\x00" + strings.Join(id.ScopeIDs, "\x00")
	}
}

// String returns a human-readable form for error messages and cache keys.
func (id SchemaID) String() string {
	switch id.Kind {
	case SchemaIDFull:
		return "Full"
	case SchemaIDNone:
		return "None"
	default:
		return fmt.Sprintf("Scoped(%s: %s)", id.Name, strings.Join(id.ScopeIDs, ","))
	}
}

// Filter produces and memoizes Views of one central schema. It is safe for concurrent use by
// multiple requests; views are constructed at most once per SchemaID cache key (the same
// install-then-publish discipline the plan cache uses).
type Filter struct {
	central *schema.CentralSchema

	mu    sync.Mutex
	views map[string]*View
}

// NewFilter creates a Filter over the given central schema.
func NewFilter(central *schema.CentralSchema) *Filter {
	return &Filter{
		central: central,
		views:   map[string]*View{},
	}
}

// Central returns the central schema the filter derives views from.
func (f *Filter) Central() *schema.CentralSchema { return f.central }

// View returns the (possibly cached) view for id. Construction fails when id is Scoped with an
// empty scope-id set.
func (f *Filter) View(id SchemaID) (*View, error) {
	if id.Kind == SchemaIDScoped && len(id.ScopeIDs) == 0 {
		return nil, schema.NewError(
			fmt.Sprintf("schema id %q declares an empty scope id set", id.Name),
			schema.ErrKindValidation)
	}

	key := id.cacheKey()
	f.mu.Lock()
	defer f.mu.Unlock()
	if view, ok := f.views[key]; ok {
		return view, nil
	}
	view := newView(f.central, id)
	f.views[key] = view
	return view, nil
}

// A View is a read-only scope-filtered projection of the central schema. The zero visibility rules
// are:
//
//   - An element with a declared scope set is visible iff the set intersects the active scope ids
//     or contains the wildcard "*".
//   - An element with no declared scope set is unscoped and always visible (built-in scalars,
//     introspection types).
//   - A field with no declared scope set inherits its containing type's visibility.
//   - After hiding fields, an object type with zero remaining fields is hidden; hiding a type hides
//     every field whose named type it is, so hiding repeats until a fixpoint.
type View struct {
	central *schema.CentralSchema
	id      SchemaID

	// hiddenTypes and hiddenFields are the fixpoint of the pruning pass; nil maps on a Full view.
	hiddenTypes  map[string]bool
	hiddenFields map[schema.ElementKey]bool
}

func newView(central *schema.CentralSchema, id SchemaID) *View {
	view := &View{
		central: central,
		id:      id,
	}
	if id.Kind == SchemaIDScoped {
		view.hiddenTypes, view.hiddenFields = computeHidden(central, id.ScopeIDs)
	}
	return view
}

// computeHidden runs the scope test on every type and field and then prunes empty object types to
// a fixpoint.
func computeHidden(central *schema.CentralSchema, scopeIDs []string) (map[string]bool, map[schema.ElementKey]bool) {
	active := central.Universe().NewScopeSet(scopeIDs...)

	hiddenTypes := map[string]bool{}
	hiddenFields := map[schema.ElementKey]bool{}

	visible := func(key schema.ElementKey) bool {
		declared := central.ScopesOf(key)
		if declared.Empty() {
			// Unscoped element.
			return true
		}
		return declared.VisibleUnder(active)
	}

	// First pass: direct scope tests.
	typeMap := central.TypeMap()
	iter := typeMap.Iterator()
	for {
		v, err := iter.Next()
		if err != nil {
			break
		}
		named, ok := v.(schema.TypeWithName)
		if !ok {
			continue
		}
		name := named.Name()
		if !visible(schema.TypeKey(name)) {
			hiddenTypes[name] = true
			continue
		}
		for fieldName := range fieldsOf(v.(schema.Type)) {
			key := schema.FieldKey(name, fieldName)
			if declared := central.ScopesOf(key); !declared.Empty() && !declared.VisibleUnder(active) {
				hiddenFields[key] = true
			}
		}
	}

	// Prune to fixpoint: a field whose named type is hidden becomes hidden; an object whose fields
	// are all hidden becomes hidden.
	for {
		changed := false

		iter := typeMap.Iterator()
		for {
			v, err := iter.Next()
			if err != nil {
				break
			}
			obj, ok := v.(*schema.Object)
			if !ok {
				continue
			}
			if hiddenTypes[obj.Name()] {
				continue
			}

			remaining := 0
			for fieldName, field := range obj.Fields() {
				key := schema.FieldKey(obj.Name(), fieldName)
				if hiddenFields[key] {
					continue
				}
				if named, ok := schema.NamedTypeOf(field.Type()).(schema.TypeWithName); ok && hiddenTypes[named.Name()] {
					hiddenFields[key] = true
					changed = true
					continue
				}
				remaining++
			}
			if remaining == 0 {
				hiddenTypes[obj.Name()] = true
				changed = true
			}
		}

		if !changed {
			break
		}
	}

	return hiddenTypes, hiddenFields
}

// fieldsOf returns the field map of a record-like type, or nil.
func fieldsOf(t schema.Type) schema.FieldMap {
	switch t := t.(type) {
	case *schema.Object:
		return t.Fields()
	case *schema.Interface:
		return t.Fields()
	}
	return nil
}

// ID returns the SchemaID this view was derived for.
func (v *View) ID() SchemaID { return v.id }

// Central returns the underlying central schema. Callers must go through the View's filtered
// lookups for anything scope-sensitive.
func (v *View) Central() *schema.CentralSchema { return v.central }

// Schema returns the underlying schema.Schema for unfiltered concerns (root types, directives).
func (v *View) Schema() schema.Schema { return v.central.Schema }

// LookupType finds a type by name, or nil when the type doesn't exist or is out of scope.
func (v *View) LookupType(name string) schema.Type {
	if v.id.Kind == SchemaIDNone {
		return nil
	}
	if v.hiddenTypes[name] {
		return nil
	}
	return v.central.TypeMap().Lookup(name)
}

// VisibleType reports whether t is visible under this view.
func (v *View) VisibleType(t schema.Type) bool {
	named, ok := schema.NamedTypeOf(t).(schema.TypeWithName)
	if !ok {
		// Unnamed (wrapper-only) types don't occur in a TypeMap; treat as visible.
		return v.id.Kind != SchemaIDNone
	}
	return v.LookupType(named.Name()) != nil
}

// LookupField finds the named field on typeName, or nil when the containing type, the field, or
// the field's own type is out of scope. Meta-fields (__typename and friends) are not handled here;
// the planner resolves those before consulting the view.
func (v *View) LookupField(typeName, fieldName string) *schema.Field {
	t := v.LookupType(typeName)
	if t == nil {
		return nil
	}
	fields := fieldsOf(t)
	if fields == nil {
		return nil
	}
	if v.hiddenFields[schema.FieldKey(typeName, fieldName)] {
		return nil
	}
	return fields[fieldName]
}

// FieldsOf returns the visible fields of typeName in a freshly allocated map.
func (v *View) FieldsOf(typeName string) schema.FieldMap {
	t := v.LookupType(typeName)
	if t == nil {
		return nil
	}
	all := fieldsOf(t)
	if all == nil {
		return nil
	}
	result := make(schema.FieldMap, len(all))
	for name, field := range all {
		if v.hiddenFields[schema.FieldKey(typeName, name)] {
			continue
		}
		if named, ok := schema.NamedTypeOf(field.Type()).(schema.TypeWithName); ok && v.hiddenTypes[named.Name()] {
			continue
		}
		result[name] = field
	}
	return result
}

// EnumValues returns the visible values of an enum type in name order, filtered by any
// per-value scope declarations.
func (v *View) EnumValues(enum *schema.Enum) []*schema.EnumValue {
	if v.LookupType(enum.Name()) == nil {
		return nil
	}
	if v.id.Kind != SchemaIDScoped {
		return enum.Values()
	}
	active := v.central.Universe().NewScopeSet(v.id.ScopeIDs...)
	values := enum.Values()
	result := make([]*schema.EnumValue, 0, len(values))
	for _, value := range values {
		declared := v.central.ScopesOf(schema.EnumValueKey(enum.Name(), value.Name()))
		if !declared.Empty() && !declared.VisibleUnder(active) {
			continue
		}
		result = append(result, value)
	}
	return result
}

// PossibleTypes returns the visible concrete object types for an abstract type, dropping
// interface-implementation and union-membership edges whose member type is out of scope.
func (v *View) PossibleTypes(t schema.AbstractType) []*schema.Object {
	if v.id.Kind == SchemaIDNone {
		return nil
	}
	set := v.central.Schema.PossibleTypes(t)
	members := set.Types()
	result := make([]*schema.Object, 0, len(members))
	for _, member := range members {
		if v.hiddenTypes[member.Name()] {
			continue
		}
		result = append(result, member)
	}
	// Deterministic order for byte-identical views.
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result
}

// DirectivesOf exposes directive applications on a schema element; directive applications are not
// scope-filtered.
func (v *View) DirectivesOf(key schema.ElementKey) schema.DirectiveApplicationList {
	return v.central.DirectivesOf(key)
}
