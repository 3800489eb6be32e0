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

// Package schema provides the in-memory type system for the central schema: the type variants,
// fields, directives, scope metadata, Global IDs, and the module builder that assembles and
// validates tenant contributions.
//
// Every type variant has exactly one implementation, so the variants are concrete structs and the
// engine recognizes them by pointer type switch. The handful of interfaces that remain
// (TypeWithName, AbstractType, LeafType) group variants that genuinely share behavior.
package schema

import (
	"context"
)

// Type is one node of the type system: a named type or a List/NonNull wrapper.
type Type interface {
	// String returns the type's notation as written in a schema document ("User", "[User!]!").
	String() string

	// typ restricts the implementations to this package's variants.
	typ()
}

// TypeWithName is satisfied by every named (non-wrapper) type.
type TypeWithName interface {
	Name() string
}

// AbstractType groups the variants whose concrete object type is only known at runtime.
type AbstractType interface {
	Type
	Name() string

	// TypeResolver maps a resolved value onto the concrete Object it represents.
	TypeResolver() TypeResolver
}

// LeafType groups the variants execution terminates on.
type LeafType interface {
	Type
	Name() string

	// CoerceResultValue converts a resolver-produced value into the leaf's serialized form.
	CoerceResultValue(value interface{}) (interface{}, error)
}

// Deprecation marks a field or enum value as deprecated.
type Deprecation struct {
	Reason string
}

// Defined reports whether the deprecation is active.
func (d *Deprecation) Defined() bool {
	return d != nil
}

//===----------------------------------------------------------------------------------------====//
// Scalar
//===----------------------------------------------------------------------------------------====//

// Scalar is a leaf type defined by its three coercion directions: result values out, variable
// values in, and document literals in.
type Scalar struct {
	name        string
	description string

	coerceResult   func(value interface{}) (interface{}, error)
	coerceVariable func(value interface{}) (interface{}, error)
	coerceArgument func(value Literal) (interface{}, error)
}

var (
	_ Type     = (*Scalar)(nil)
	_ LeafType = (*Scalar)(nil)
)

func (*Scalar) typ() {}

// Name returns the scalar's name.
func (s *Scalar) Name() string { return s.name }

// Description returns the scalar's documentation.
func (s *Scalar) Description() string { return s.description }

// String implements Type.
func (s *Scalar) String() string { return s.name }

// CoerceResultValue implements LeafType.
func (s *Scalar) CoerceResultValue(value interface{}) (interface{}, error) {
	return s.coerceResult(value)
}

// CoerceVariableValue coerces a request-supplied variable value.
func (s *Scalar) CoerceVariableValue(value interface{}) (interface{}, error) {
	return s.coerceVariable(value)
}

// CoerceArgumentValue coerces a document literal.
func (s *Scalar) CoerceArgumentValue(value Literal) (interface{}, error) {
	return s.coerceArgument(value)
}

//===----------------------------------------------------------------------------------------====//
// Enum
//===----------------------------------------------------------------------------------------====//

// EnumValue is one value of an Enum: a name, an internal value, and optional deprecation.
type EnumValue struct {
	name        string
	description string
	value       interface{}
	deprecation *Deprecation
}

// Name returns the value's name.
func (v *EnumValue) Name() string { return v.name }

// Description returns the value's documentation.
func (v *EnumValue) Description() string { return v.description }

// Value returns the internal value the name stands for.
func (v *EnumValue) Value() interface{} { return v.value }

// Deprecation returns the value's deprecation, or nil.
func (v *EnumValue) Deprecation() *Deprecation { return v.deprecation }

// Enum is a leaf type whose values are drawn from a closed set of names.
type Enum struct {
	name        string
	description string
	values      []*EnumValue
	byName      map[string]*EnumValue
}

var (
	_ Type     = (*Enum)(nil)
	_ LeafType = (*Enum)(nil)
)

func (*Enum) typ() {}

// Name returns the enum's name.
func (e *Enum) Name() string { return e.name }

// Description returns the enum's documentation.
func (e *Enum) Description() string { return e.description }

// String implements Type.
func (e *Enum) String() string { return e.name }

// Values returns the enum's values sorted by name.
func (e *Enum) Values() []*EnumValue { return e.values }

// Value finds a value by name, or nil.
func (e *Enum) Value(name string) *EnumValue { return e.byName[name] }

// CoerceResultValue implements LeafType: a result is accepted when it is a value's name or a
// value's internal value, and serializes to the name.
func (e *Enum) CoerceResultValue(value interface{}) (interface{}, error) {
	if name, ok := value.(string); ok {
		if v := e.byName[name]; v != nil {
			return v.name, nil
		}
	}
	for _, v := range e.values {
		if v.value == value {
			return v.name, nil
		}
	}
	return nil, NewError(
		"cannot serialize "+Inspect(value)+" as a value of enum "+e.name, ErrKindCoercion)
}

// CoerceVariableValue coerces a request-supplied variable: the value name as a string.
func (e *Enum) CoerceVariableValue(value interface{}) (interface{}, error) {
	name, ok := value.(string)
	if !ok {
		return nil, NewError(
			"enum "+e.name+" expects a value name, got "+Inspect(value), ErrKindCoercion)
	}
	v := e.byName[name]
	if v == nil {
		return nil, NewError(Inspect(name)+" is not a value of enum "+e.name, ErrKindCoercion)
	}
	return v.value, nil
}

// CoerceArgumentValue coerces a document literal, which must be written in enum notation.
func (e *Enum) CoerceArgumentValue(value Literal) (interface{}, error) {
	if value.Kind != LiteralEnum {
		return nil, NewError(
			"enum "+e.name+" expects enum notation, got "+Inspect(value.Interface()), ErrKindCoercion)
	}
	v := e.byName[value.Raw.(string)]
	if v == nil {
		return nil, NewError(
			Inspect(value.Raw)+" is not a value of enum "+e.name, ErrKindCoercion)
	}
	return v.value, nil
}

//===----------------------------------------------------------------------------------------====//
// Object and Interface
//===----------------------------------------------------------------------------------------====//

// Field is one output field of an Object or Interface.
type Field struct {
	name        string
	description string
	fieldType   Type
	args        []Argument
	resolver    FieldResolver
	deprecation *Deprecation
}

// Name returns the field's name.
func (f *Field) Name() string { return f.name }

// Description returns the field's documentation.
func (f *Field) Description() string { return f.description }

// Type returns the field's declared type.
func (f *Field) Type() Type { return f.fieldType }

// Args returns the field's argument definitions.
func (f *Field) Args() []Argument { return f.args }

// Resolver returns the field's own resolver, or nil for fields resolved from their source value.
func (f *Field) Resolver() FieldResolver { return f.resolver }

// Deprecation returns the field's deprecation, or nil.
func (f *Field) Deprecation() *Deprecation { return f.deprecation }

// FieldMap maps field names to their definitions.
type FieldMap map[string]*Field

// Argument is one argument a field accepts.
type Argument struct {
	name         string
	description  string
	argType      Type
	defaultValue interface{}
}

// Name returns the argument's name.
func (a *Argument) Name() string { return a.name }

// Description returns the argument's documentation.
func (a *Argument) Description() string { return a.description }

// Type returns the argument's declared type.
func (a *Argument) Type() Type { return a.argType }

// HasDefaultValue reports whether a default was declared.
func (a *Argument) HasDefaultValue() bool { return a.defaultValue != nil }

// DefaultValue returns the declared default.
func (a *Argument) DefaultValue() interface{} { return a.defaultValue }

// Object is a concrete record type.
type Object struct {
	name        string
	description string
	fields      FieldMap
	interfaces  []*Interface
}

var _ Type = (*Object)(nil)

func (*Object) typ() {}

// Name returns the object's name.
func (o *Object) Name() string { return o.name }

// Description returns the object's documentation.
func (o *Object) Description() string { return o.description }

// String implements Type.
func (o *Object) String() string { return o.name }

// Fields returns the object's fields.
func (o *Object) Fields() FieldMap { return o.fields }

// Interfaces returns the interfaces the object implements.
func (o *Object) Interfaces() []*Interface { return o.interfaces }

// Interface declares a field set shared by a family of object types.
type Interface struct {
	name         string
	description  string
	fields       FieldMap
	typeResolver TypeResolver
}

var (
	_ Type         = (*Interface)(nil)
	_ AbstractType = (*Interface)(nil)
)

func (*Interface) typ() {}

// Name returns the interface's name.
func (i *Interface) Name() string { return i.name }

// Description returns the interface's documentation.
func (i *Interface) Description() string { return i.description }

// String implements Type.
func (i *Interface) String() string { return i.name }

// Fields returns the fields every implementor must provide.
func (i *Interface) Fields() FieldMap { return i.fields }

// TypeResolver implements AbstractType.
func (i *Interface) TypeResolver() TypeResolver { return i.typeResolver }

// Union declares a closed set of possible object types.
type Union struct {
	name          string
	description   string
	possibleTypes PossibleTypeSet
	typeResolver  TypeResolver
}

var (
	_ Type         = (*Union)(nil)
	_ AbstractType = (*Union)(nil)
)

func (*Union) typ() {}

// Name returns the union's name.
func (u *Union) Name() string { return u.name }

// Description returns the union's documentation.
func (u *Union) Description() string { return u.description }

// String implements Type.
func (u *Union) String() string { return u.name }

// PossibleTypes returns the union's member set.
func (u *Union) PossibleTypes() PossibleTypeSet { return u.possibleTypes }

// TypeResolver implements AbstractType.
func (u *Union) TypeResolver() TypeResolver { return u.typeResolver }

//===----------------------------------------------------------------------------------------====//
// InputObject
//===----------------------------------------------------------------------------------------====//

// InputField is one field of an InputObject.
type InputField struct {
	name         string
	description  string
	fieldType    Type
	defaultValue interface{}
}

// Name returns the input field's name.
func (f *InputField) Name() string { return f.name }

// Description returns the input field's documentation.
func (f *InputField) Description() string { return f.description }

// Type returns the input field's declared type.
func (f *InputField) Type() Type { return f.fieldType }

// HasDefaultValue reports whether a default was declared.
func (f *InputField) HasDefaultValue() bool { return f.defaultValue != nil }

// DefaultValue returns the declared default.
func (f *InputField) DefaultValue() interface{} { return f.defaultValue }

// InputFieldMap maps input field names to their definitions.
type InputFieldMap map[string]*InputField

// InputObject is a record type usable in argument position.
type InputObject struct {
	name        string
	description string
	fields      InputFieldMap
}

var _ Type = (*InputObject)(nil)

func (*InputObject) typ() {}

// Name returns the input object's name.
func (o *InputObject) Name() string { return o.name }

// Description returns the input object's documentation.
func (o *InputObject) Description() string { return o.description }

// String implements Type.
func (o *InputObject) String() string { return o.name }

// Fields returns the input object's fields.
func (o *InputObject) Fields() InputFieldMap { return o.fields }

//===----------------------------------------------------------------------------------------====//
// Wrappers
//===----------------------------------------------------------------------------------------====//

// List wraps an element type into a list position.
type List struct {
	elementType Type
	notation    string
}

var _ Type = (*List)(nil)

func (*List) typ() {}

// ElementType returns the wrapped type.
func (l *List) ElementType() Type { return l.elementType }

// String implements Type.
func (l *List) String() string { return l.notation }

// NonNull forbids null in the wrapped position.
type NonNull struct {
	innerType Type
	notation  string
}

var _ Type = (*NonNull)(nil)

func (*NonNull) typ() {}

// InnerType returns the wrapped type.
func (n *NonNull) InnerType() Type { return n.innerType }

// String implements Type.
func (n *NonNull) String() string { return n.notation }

//===----------------------------------------------------------------------------------------====//
// Resolver hooks
//===----------------------------------------------------------------------------------------====//

// FieldResolver computes a field's value from its parent's source value. The execution core uses
// it for introspection and meta fields; tenant resolvers dispatch through their own registry and
// never appear here.
type FieldResolver interface {
	Resolve(ctx context.Context, source interface{}, info ResolveInfo) (interface{}, error)
}

// FieldResolverFunc adapts a function to FieldResolver.
type FieldResolverFunc func(ctx context.Context, source interface{}, info ResolveInfo) (interface{}, error)

var _ FieldResolver = FieldResolverFunc(nil)

// Resolve calls f.
func (f FieldResolverFunc) Resolve(ctx context.Context, source interface{}, info ResolveInfo) (interface{}, error) {
	return f(ctx, source, info)
}

// TypeResolver maps a value of an abstract-typed position onto its concrete Object.
type TypeResolver interface {
	Resolve(ctx context.Context, value interface{}, info ResolveInfo) (*Object, error)
}

// TypeResolverFunc adapts a function to TypeResolver.
type TypeResolverFunc func(ctx context.Context, value interface{}, info ResolveInfo) (*Object, error)

var _ TypeResolver = TypeResolverFunc(nil)

// Resolve calls f.
func (f TypeResolverFunc) Resolve(ctx context.Context, value interface{}, info ResolveInfo) (*Object, error) {
	return f(ctx, value, info)
}

//===----------------------------------------------------------------------------------------====//
// Predicates
//===----------------------------------------------------------------------------------------====//

// NamedTypeOf unwraps List/NonNull wrappers down to the named type.
func NamedTypeOf(t Type) Type {
	for {
		switch wrapper := t.(type) {
		case *List:
			if wrapper == nil {
				return nil
			}
			t = wrapper.elementType
		case *NonNull:
			if wrapper == nil {
				return nil
			}
			t = wrapper.innerType
		default:
			return t
		}
	}
}

// NullableTypeOf strips at most one NonNull wrapper.
func NullableTypeOf(t Type) Type {
	if nonNull, ok := t.(*NonNull); ok && nonNull != nil {
		return nonNull.innerType
	}
	return t
}

// IsNullableType reports whether t accepts null.
func IsNullableType(t Type) bool {
	_, ok := t.(*NonNull)
	return !ok
}

// IsNonNullType reports whether t is a NonNull wrapper.
func IsNonNullType(t Type) bool {
	_, ok := t.(*NonNull)
	return ok
}

// IsListType reports whether t is a List wrapper.
func IsListType(t Type) bool {
	_, ok := t.(*List)
	return ok
}

// IsLeafType reports whether t is a Scalar or Enum.
func IsLeafType(t Type) bool {
	_, ok := t.(LeafType)
	return ok
}

// IsAbstractType reports whether t is an Interface or Union.
func IsAbstractType(t Type) bool {
	_, ok := t.(AbstractType)
	return ok
}

// IsCompositeType reports whether t is an Object, Interface or Union.
func IsCompositeType(t Type) bool {
	switch t.(type) {
	case *Object, *Interface, *Union:
		return true
	}
	return false
}

// IsInputType reports whether t may appear in argument or variable position.
func IsInputType(t Type) bool {
	switch NamedTypeOf(t).(type) {
	case *Scalar, *Enum, *InputObject:
		return true
	}
	return false
}
