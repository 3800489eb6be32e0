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

// The configuration layer tenant modules declare their types in. A TypeDefinition is either one
// of the *Config structs below, an already-built Type wrapped by T, or a List/NonNull application
// built with ListOf / NonNullOf. Configs are plain data; the linker (link.go) turns a set of
// definitions into connected Type instances, tolerating cycles by registering a shell before
// populating it.

// TypeDefinition is anything the linker can turn into a Type.
type TypeDefinition interface {
	typeDefinition()
}

// Fields maps field names to their configurations.
type Fields map[string]FieldConfig

// FieldConfig declares one output field.
type FieldConfig struct {
	Description string

	// Type of the field's value.
	Type TypeDefinition

	// Args the field accepts.
	Args ArgumentConfigMap

	// Resolver computes the field from its source value; nil fields resolve by property lookup.
	Resolver FieldResolver

	// Deprecation marks the field deprecated.
	Deprecation *Deprecation
}

// ArgumentConfigMap maps argument names to their configurations.
type ArgumentConfigMap map[string]ArgumentConfig

// ArgumentConfig declares one field argument.
type ArgumentConfig struct {
	Description string

	// Type of the values the argument accepts.
	Type TypeDefinition

	// DefaultValue applies when the argument is omitted; nil means no default.
	DefaultValue interface{}
}

// ObjectConfig declares an Object type.
type ObjectConfig struct {
	Name        string
	Description string

	// Interfaces the object implements.
	Interfaces []TypeDefinition

	// Fields of the object.
	Fields Fields
}

func (*ObjectConfig) typeDefinition() {}

// InterfaceConfig declares an Interface type.
type InterfaceConfig struct {
	Name        string
	Description string

	// Fields every implementor must provide.
	Fields Fields

	// TypeResolver maps values to their concrete Object type.
	TypeResolver TypeResolver
}

func (*InterfaceConfig) typeDefinition() {}

// UnionConfig declares a Union type.
type UnionConfig struct {
	Name        string
	Description string

	// PossibleTypes are the member object types.
	PossibleTypes []TypeDefinition

	// TypeResolver maps values to their concrete Object type.
	TypeResolver TypeResolver
}

func (*UnionConfig) typeDefinition() {}

// EnumValueDefinitionMap maps enum value names to their configurations.
type EnumValueDefinitionMap map[string]EnumValueDefinition

// EnumValueDefinition declares one enum value.
type EnumValueDefinition struct {
	Description string

	// Value is the internal value the name stands for; nil defaults to the name itself.
	Value interface{}

	// Deprecation marks the value deprecated.
	Deprecation *Deprecation
}

// EnumConfig declares an Enum type.
type EnumConfig struct {
	Name        string
	Description string
	Values      EnumValueDefinitionMap
}

func (*EnumConfig) typeDefinition() {}

// ScalarConfig declares a custom Scalar by its three coercion directions. Omitted coercers
// default to the identity.
type ScalarConfig struct {
	Name        string
	Description string

	CoerceResult   func(value interface{}) (interface{}, error)
	CoerceVariable func(value interface{}) (interface{}, error)
	CoerceArgument func(value Literal) (interface{}, error)
}

func (*ScalarConfig) typeDefinition() {}

// InputFields maps input field names to their configurations.
type InputFields map[string]InputFieldDefinition

// InputFieldDefinition declares one input object field.
type InputFieldDefinition struct {
	Description string

	// Type of the field's values.
	Type TypeDefinition

	// DefaultValue applies when the field is omitted; nil means no default.
	DefaultValue interface{}
}

// InputObjectConfig declares an InputObject type.
type InputObjectConfig struct {
	Name        string
	Description string
	Fields      InputFields
}

func (*InputObjectConfig) typeDefinition() {}

// typeRef wraps an already-built Type as a TypeDefinition, so built-in scalars and introspection
// types can appear inside configs.
type typeRef struct {
	t Type
}

func (typeRef) typeDefinition() {}

// T wraps an existing Type for use in a config.
func T(t Type) TypeDefinition {
	return typeRef{t: t}
}

// listOfDef applies a List wrapper to an element definition.
type listOfDef struct {
	element TypeDefinition
}

func (listOfDef) typeDefinition() {}

// ListOf declares a list of the element definition.
func ListOf(element TypeDefinition) TypeDefinition {
	return listOfDef{element: element}
}

// ListOfType declares a list of an existing type.
func ListOfType(element Type) TypeDefinition {
	return listOfDef{element: T(element)}
}

// nonNullOfDef applies a NonNull wrapper to an inner definition.
type nonNullOfDef struct {
	inner TypeDefinition
}

func (nonNullOfDef) typeDefinition() {}

// NonNullOf declares a non-null wrapper around the inner definition.
func NonNullOf(inner TypeDefinition) TypeDefinition {
	return nonNullOfDef{inner: inner}
}

// NonNullOfType declares a non-null wrapper around an existing type.
func NonNullOfType(inner Type) TypeDefinition {
	return nonNullOfDef{inner: T(inner)}
}
