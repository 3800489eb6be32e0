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
	"sort"
)

// linker turns TypeDefinitions into connected Type instances. Definitions routinely form cycles
// (User.friends: [User], Query.node: Node), so a named type's shell is registered in built before
// its fields resolve; a cyclic reference then receives the shell and is completed by the
// outermost visit.
//
// A linker is scoped to one schema construction: the same config instance resolves to the same
// Type within a build, and distinct builds share nothing but the types wrapped via T.
type linker struct {
	built map[TypeDefinition]Type
}

func newLinker() *linker {
	return &linker{built: map[TypeDefinition]Type{}}
}

// resolve returns the Type for def, building it on first visit.
func (l *linker) resolve(def TypeDefinition) (Type, error) {
	if def == nil {
		return nil, NewError("cannot resolve a nil type definition")
	}
	if t, ok := l.built[def]; ok {
		return t, nil
	}

	switch def := def.(type) {
	case typeRef:
		if def.t == nil {
			return nil, NewError("T() wraps a nil type")
		}
		return def.t, nil

	case listOfDef:
		element, err := l.resolve(def.element)
		if err != nil {
			return nil, err
		}
		return &List{elementType: element, notation: "[" + element.String() + "]"}, nil

	case nonNullOfDef:
		inner, err := l.resolve(def.inner)
		if err != nil {
			return nil, err
		}
		if _, ok := inner.(*NonNull); ok {
			return nil, NewError(fmt.Sprintf("cannot wrap %s in a second non-null", inner))
		}
		return &NonNull{innerType: inner, notation: inner.String() + "!"}, nil

	case *ObjectConfig:
		return l.linkObject(def)

	case *InterfaceConfig:
		return l.linkInterface(def)

	case *UnionConfig:
		return l.linkUnion(def)

	case *EnumConfig:
		return l.linkEnum(def)

	case *ScalarConfig:
		return l.linkScalar(def)

	case *InputObjectConfig:
		return l.linkInputObject(def)
	}

	return nil, NewError(fmt.Sprintf("unsupported type definition %T", def))
}

func (l *linker) linkObject(config *ObjectConfig) (Type, error) {
	if config.Name == "" {
		return nil, NewError("an object type requires a name")
	}

	object := &Object{name: config.Name, description: config.Description}
	l.built[config] = object

	fields, err := l.linkFields(config.Name, config.Fields)
	if err != nil {
		return nil, err
	}
	object.fields = fields

	for _, ifaceDef := range config.Interfaces {
		t, err := l.resolve(ifaceDef)
		if err != nil {
			return nil, err
		}
		iface, ok := t.(*Interface)
		if !ok {
			return nil, NewError(fmt.Sprintf(
				"%s declares it implements %s, which is not an interface type", config.Name, t))
		}
		object.interfaces = append(object.interfaces, iface)
	}

	return object, nil
}

func (l *linker) linkInterface(config *InterfaceConfig) (Type, error) {
	if config.Name == "" {
		return nil, NewError("an interface type requires a name")
	}

	iface := &Interface{
		name:         config.Name,
		description:  config.Description,
		typeResolver: config.TypeResolver,
	}
	l.built[config] = iface

	fields, err := l.linkFields(config.Name, config.Fields)
	if err != nil {
		return nil, err
	}
	iface.fields = fields

	return iface, nil
}

func (l *linker) linkUnion(config *UnionConfig) (Type, error) {
	if config.Name == "" {
		return nil, NewError("a union type requires a name")
	}

	union := &Union{
		name:          config.Name,
		description:   config.Description,
		possibleTypes: NewPossibleTypeSet(),
		typeResolver:  config.TypeResolver,
	}
	l.built[config] = union

	for _, memberDef := range config.PossibleTypes {
		t, err := l.resolve(memberDef)
		if err != nil {
			return nil, err
		}
		member, ok := t.(*Object)
		if !ok {
			return nil, NewError(fmt.Sprintf(
				"union %s lists member %s, which is not an object type", config.Name, t))
		}
		union.possibleTypes.Add(member)
	}

	return union, nil
}

func (l *linker) linkEnum(config *EnumConfig) (Type, error) {
	if config.Name == "" {
		return nil, NewError("an enum type requires a name")
	}

	enum := &Enum{
		name:        config.Name,
		description: config.Description,
		byName:      make(map[string]*EnumValue, len(config.Values)),
	}
	l.built[config] = enum

	// Declaration maps carry no order; sort by name for a deterministic Values().
	names := make([]string, 0, len(config.Values))
	for name := range config.Values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		valueDef := config.Values[name]
		internal := valueDef.Value
		if internal == nil {
			internal = name
		}
		value := &EnumValue{
			name:        name,
			description: valueDef.Description,
			value:       internal,
			deprecation: valueDef.Deprecation,
		}
		enum.values = append(enum.values, value)
		enum.byName[name] = value
	}

	return enum, nil
}

func (l *linker) linkScalar(config *ScalarConfig) (Type, error) {
	if config.Name == "" {
		return nil, NewError("a scalar type requires a name")
	}

	identity := func(value interface{}) (interface{}, error) { return value, nil }

	scalar := &Scalar{
		name:           config.Name,
		description:    config.Description,
		coerceResult:   config.CoerceResult,
		coerceVariable: config.CoerceVariable,
	}
	if scalar.coerceResult == nil {
		scalar.coerceResult = identity
	}
	if scalar.coerceVariable == nil {
		scalar.coerceVariable = identity
	}
	scalar.coerceArgument = config.CoerceArgument
	if scalar.coerceArgument == nil {
		scalar.coerceArgument = func(value Literal) (interface{}, error) {
			return value.Interface(), nil
		}
	}

	l.built[config] = scalar
	return scalar, nil
}

func (l *linker) linkInputObject(config *InputObjectConfig) (Type, error) {
	if config.Name == "" {
		return nil, NewError("an input object type requires a name")
	}

	inputObject := &InputObject{
		name:        config.Name,
		description: config.Description,
		fields:      make(InputFieldMap, len(config.Fields)),
	}
	l.built[config] = inputObject

	for name, fieldDef := range config.Fields {
		fieldType, err := l.resolve(fieldDef.Type)
		if err != nil {
			return nil, err
		}
		if !IsInputType(fieldType) {
			return nil, NewError(fmt.Sprintf(
				"input field %s.%s uses non-input type %s", config.Name, name, fieldType))
		}
		inputObject.fields[name] = &InputField{
			name:         name,
			description:  fieldDef.Description,
			fieldType:    fieldType,
			defaultValue: fieldDef.DefaultValue,
		}
	}

	return inputObject, nil
}

// linkFields builds a FieldMap from its configuration.
func (l *linker) linkFields(typeName string, configs Fields) (FieldMap, error) {
	if len(configs) == 0 {
		return nil, nil
	}

	fields := make(FieldMap, len(configs))
	for name, fieldConfig := range configs {
		fieldType, err := l.resolve(fieldConfig.Type)
		if err != nil {
			return nil, err
		}
		if fieldType == nil {
			return nil, NewError(fmt.Sprintf("field %s.%s has no type", typeName, name))
		}

		args, err := l.linkArguments(typeName, name, fieldConfig.Args)
		if err != nil {
			return nil, err
		}

		fields[name] = &Field{
			name:        name,
			description: fieldConfig.Description,
			fieldType:   fieldType,
			args:        args,
			resolver:    fieldConfig.Resolver,
			deprecation: fieldConfig.Deprecation,
		}
	}
	return fields, nil
}

// linkArguments builds a field's argument list, sorted by name for deterministic iteration.
func (l *linker) linkArguments(typeName, fieldName string, configs ArgumentConfigMap) ([]Argument, error) {
	if len(configs) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	args := make([]Argument, 0, len(configs))
	for _, name := range names {
		argConfig := configs[name]
		argType, err := l.resolve(argConfig.Type)
		if err != nil {
			return nil, err
		}
		if !IsInputType(argType) {
			return nil, NewError(fmt.Sprintf(
				"argument %q of %s.%s uses non-input type %s", name, typeName, fieldName, argType))
		}
		args = append(args, Argument{
			name:         name,
			description:  argConfig.Description,
			argType:      argType,
			defaultValue: argConfig.DefaultValue,
		})
	}
	return args, nil
}
