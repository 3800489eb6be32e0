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
	"fmt"
)

// TypeMap is the name index over every named type a schema reaches.
type TypeMap struct {
	types map[string]Type
}

// NewTypeMap builds a TypeMap directly from a name-to-type map. Collaborators that derive
// filtered views of an existing schema (the scope filter) use this to bypass the reachability
// walk; types must already belong to some built schema.
func NewTypeMap(types map[string]Type) TypeMap {
	return TypeMap{types: types}
}

// Lookup finds a type by name, or nil.
func (typeMap TypeMap) Lookup(name string) Type {
	return typeMap.types[name]
}

// Size returns the number of named types.
func (typeMap TypeMap) Size() int {
	return len(typeMap.types)
}

// Iterator implements Iterable over the named types (unspecified order).
func (typeMap TypeMap) Iterator() Iterator {
	return NewMapValuesIterator(typeMap.types)
}

// register walks t and every type reachable from it, adding named types under their names. Two
// distinct types under one name is a construction error.
func (typeMap TypeMap) register(t Type) error {
	stack := []Type{t}
	for len(stack) > 0 {
		t, stack = stack[len(stack)-1], stack[:len(stack)-1]
		if t == nil {
			continue
		}

		switch t := t.(type) {
		case *List:
			stack = append(stack, t.elementType)
			continue
		case *NonNull:
			stack = append(stack, t.innerType)
			continue
		}

		named := t.(TypeWithName)
		if existing, ok := typeMap.types[named.Name()]; ok {
			if existing != t {
				return NewError(fmt.Sprintf(
					"schema contains two distinct types named %q", named.Name()))
			}
			continue
		}
		typeMap.types[named.Name()] = t

		switch t := t.(type) {
		case *Object:
			for _, iface := range t.interfaces {
				stack = append(stack, iface)
			}
			for _, field := range t.fields {
				stack = append(stack, field.fieldType)
				for i := range field.args {
					stack = append(stack, field.args[i].argType)
				}
			}
		case *Interface:
			for _, field := range t.fields {
				stack = append(stack, field.fieldType)
				for i := range field.args {
					stack = append(stack, field.args[i].argType)
				}
			}
		case *Union:
			for _, member := range t.possibleTypes.Types() {
				stack = append(stack, member)
			}
		case *InputObject:
			for _, field := range t.fields {
				stack = append(stack, field.fieldType)
			}
		}
	}
	return nil
}

// DirectiveList is the directive definitions a schema understands.
type DirectiveList []*Directive

// Lookup finds a directive definition by name, or nil.
func (directives DirectiveList) Lookup(name string) *Directive {
	for _, directive := range directives {
		if directive.Name() == name {
			return directive
		}
	}
	return nil
}

// SchemaConfig assembles a Schema: its root operation types, any types unreachable from the
// roots, and its directive definitions.
type SchemaConfig struct {
	Query        TypeDefinition
	Mutation     TypeDefinition
	Subscription TypeDefinition

	// Types registers definitions not reachable from the roots (union members behind interfaces,
	// extension targets).
	Types []TypeDefinition

	// Directives to add beside the standard @skip/@include/@deprecated; set
	// ExcludeStandardDirectives to replace instead of extend.
	Directives                DirectiveList
	ExcludeStandardDirectives bool
}

// Schema is a built, immutable type system: the name index, the root operation types, and the
// possible-type sets for its abstract types. The scope filter implements this same interface over
// a filtered view.
type Schema interface {
	TypeMap() TypeMap
	Directives() DirectiveList

	Query() *Object
	Mutation() *Object
	Subscription() *Object

	// PossibleTypes returns the concrete object types satisfying an abstract type.
	PossibleTypes(t AbstractType) PossibleTypeSet

	// TypeFromAST resolves a type reference written in a document against this schema, or nil when
	// the named type doesn't exist.
	TypeFromAST(ref *TypeRef) Type
}

// builtSchema is the Schema produced by NewSchema.
type builtSchema struct {
	query        *Object
	mutation     *Object
	subscription *Object

	typeMap          TypeMap
	directives       DirectiveList
	possibleTypeSets map[AbstractType]PossibleTypeSet
}

var _ Schema = (*builtSchema)(nil)

// NewSchema links the configured definitions into a Schema and indexes everything reachable.
func NewSchema(config *SchemaConfig) (Schema, error) {
	link := newLinker()

	resolveRoot := func(def TypeDefinition, role string) (*Object, error) {
		if def == nil {
			return nil, nil
		}
		t, err := link.resolve(def)
		if err != nil {
			return nil, err
		}
		object, ok := t.(*Object)
		if !ok {
			return nil, NewError(fmt.Sprintf("the %s root must be an object type, got %s", role, t))
		}
		return object, nil
	}

	schema := &builtSchema{
		typeMap:          TypeMap{types: map[string]Type{}},
		possibleTypeSets: map[AbstractType]PossibleTypeSet{},
	}

	var err error
	if schema.query, err = resolveRoot(config.Query, "query"); err != nil {
		return nil, err
	}
	if schema.mutation, err = resolveRoot(config.Mutation, "mutation"); err != nil {
		return nil, err
	}
	if schema.subscription, err = resolveRoot(config.Subscription, "subscription"); err != nil {
		return nil, err
	}
	if schema.query == nil {
		return nil, NewError("a schema requires a query root type")
	}

	// Directives, standard ones included unless excluded.
	schema.directives = append(schema.directives, config.Directives...)
	if !config.ExcludeStandardDirectives {
		schema.directives = append(schema.directives, StandardDirectives()...)
	}

	// Index the roots, the built-in scalars, the enumerated extras, and directive argument types.
	roots := []Type{Int(), Float(), String(), Boolean(), ID()}
	if schema.query != nil {
		roots = append(roots, schema.query)
	}
	if schema.mutation != nil {
		roots = append(roots, schema.mutation)
	}
	if schema.subscription != nil {
		roots = append(roots, schema.subscription)
	}
	for _, t := range roots {
		if err := schema.typeMap.register(t); err != nil {
			return nil, err
		}
	}
	for _, def := range config.Types {
		t, err := link.resolve(def)
		if err != nil {
			return nil, err
		}
		if err := schema.typeMap.register(t); err != nil {
			return nil, err
		}
	}
	for _, directive := range schema.directives {
		for i := range directive.args {
			if err := schema.typeMap.register(directive.args[i].argType); err != nil {
				return nil, err
			}
		}
	}

	// Possible-type sets: unions carry their members; interfaces collect their implementors.
	for _, t := range schema.typeMap.types {
		switch t := t.(type) {
		case *Object:
			for _, iface := range t.interfaces {
				set, ok := schema.possibleTypeSets[iface]
				if !ok {
					set = NewPossibleTypeSet()
					schema.possibleTypeSets[iface] = set
				}
				set.Add(t)
			}
		case *Union:
			schema.possibleTypeSets[t] = t.possibleTypes
		}
	}

	return schema, nil
}

// TypeMap implements Schema.
func (schema *builtSchema) TypeMap() TypeMap { return schema.typeMap }

// Directives implements Schema.
func (schema *builtSchema) Directives() DirectiveList { return schema.directives }

// Query implements Schema.
func (schema *builtSchema) Query() *Object { return schema.query }

// Mutation implements Schema.
func (schema *builtSchema) Mutation() *Object { return schema.mutation }

// Subscription implements Schema.
func (schema *builtSchema) Subscription() *Object { return schema.subscription }

// PossibleTypes implements Schema.
func (schema *builtSchema) PossibleTypes(t AbstractType) PossibleTypeSet {
	return schema.possibleTypeSets[t]
}

// TypeFromAST implements Schema.
func (schema *builtSchema) TypeFromAST(ref *TypeRef) Type {
	return typeFromRef(schema.typeMap, ref)
}

// typeFromRef rebuilds the wrapper chain of a document type reference over the schema's named
// types.
func typeFromRef(typeMap TypeMap, ref *TypeRef) Type {
	if ref == nil {
		return nil
	}
	switch ref.Kind {
	case TypeRefNamed:
		return typeMap.Lookup(ref.Name)
	case TypeRefList:
		element := typeFromRef(typeMap, ref.OfType)
		if element == nil {
			return nil
		}
		return &List{elementType: element, notation: "[" + element.String() + "]"}
	case TypeRefNonNull:
		inner := typeFromRef(typeMap, ref.OfType)
		if inner == nil {
			return nil
		}
		return &NonNull{innerType: inner, notation: inner.String() + "!"}
	}
	return nil
}
