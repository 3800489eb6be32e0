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

// The introspection system: the __Schema/__Type/__Field/__InputValue/__EnumValue/__Directive
// object cluster and the __schema/__type/__typename meta fields. The resolvers read whatever
// Schema the ResolveInfo carries, so a scope-filtered view introspects as exactly the schema it
// serves.

import (
	"context"
)

// Meta field names, matched by the planner before normal field lookup.
const (
	SchemaMetaFieldName   = "__schema"
	TypeMetaFieldName     = "__type"
	TypenameMetaFieldName = "__typename"
)

// resolveFn shortens the resolver declarations below.
func resolveFn(f func(ctx context.Context, source interface{}, info ResolveInfo) (interface{}, error)) FieldResolver {
	return FieldResolverFunc(f)
}

// inputValue unifies Argument and InputField for the __InputValue resolvers.
type inputValue interface {
	Name() string
	Description() string
	Type() Type
	HasDefaultValue() bool
	DefaultValue() interface{}
}

// fieldsIterable feeds __Type.fields, optionally hiding deprecated fields.
type fieldsIterable struct {
	fields            FieldMap
	includeDeprecated bool
}

func (iterable fieldsIterable) Iterator() Iterator {
	all := make([]*Field, 0, len(iterable.fields))
	for _, field := range iterable.fields {
		if !iterable.includeDeprecated && field.deprecation.Defined() {
			continue
		}
		all = append(all, field)
	}
	return NewSliceIterable(all).Iterator()
}

// enumValuesIterable feeds __Type.enumValues.
type enumValuesIterable struct {
	values            []*EnumValue
	includeDeprecated bool
}

func (iterable enumValuesIterable) Iterator() Iterator {
	kept := make([]*EnumValue, 0, len(iterable.values))
	for _, value := range iterable.values {
		if !iterable.includeDeprecated && value.deprecation.Defined() {
			continue
		}
		kept = append(kept, value)
	}
	return NewSliceIterable(kept).Iterator()
}

// argumentPointers converts a field's argument list into the pointer form the __InputValue
// resolvers read.
func argumentPointers(args []Argument) []interface{} {
	result := make([]interface{}, len(args))
	for i := range args {
		result[i] = &args[i]
	}
	return result
}

// typeKindOf maps a type to its __TypeKind name.
func typeKindOf(t Type) (string, error) {
	switch t.(type) {
	case *Scalar:
		return "SCALAR", nil
	case *Object:
		return "OBJECT", nil
	case *Interface:
		return "INTERFACE", nil
	case *Union:
		return "UNION", nil
	case *Enum:
		return "ENUM", nil
	case *InputObject:
		return "INPUT_OBJECT", nil
	case *List:
		return "LIST", nil
	case *NonNull:
		return "NON_NULL", nil
	}
	return "", NewError("unexpected type " + Inspect(t))
}

// The introspection cluster is cyclic (__Type.ofType: __Type), so the configs are declared with
// forward references and linked once at package initialization.
var (
	introspectionSchemaType     *Object
	introspectionTypeType       *Object
	introspectionFieldType      *Object
	introspectionInputValueType *Object
	introspectionEnumValueType  *Object
	introspectionDirectiveType  *Object

	schemaMetaField   *Field
	typeMetaField     *Field
	typenameMetaField *Field
)

func init() {
	typeConfig := &ObjectConfig{Name: "__Type"}
	inputValueConfig := &ObjectConfig{Name: "__InputValue"}

	typeKindConfig := &EnumConfig{
		Name:        "__TypeKind",
		Description: "An enum describing what kind of type a given `__Type` is.",
		Values: EnumValueDefinitionMap{
			"SCALAR":       {Description: "Indicates this type is a scalar."},
			"OBJECT":       {Description: "Indicates this type is an object. `fields` and `interfaces` are valid fields."},
			"INTERFACE":    {Description: "Indicates this type is an interface. `fields` and `possibleTypes` are valid fields."},
			"UNION":        {Description: "Indicates this type is a union. `possibleTypes` is a valid field."},
			"ENUM":         {Description: "Indicates this type is an enum. `enumValues` is a valid field."},
			"INPUT_OBJECT": {Description: "Indicates this type is an input object. `inputFields` is a valid field."},
			"LIST":         {Description: "Indicates this type is a list. `ofType` is a valid field."},
			"NON_NULL":     {Description: "Indicates this type is a non-null. `ofType` is a valid field."},
		},
	}

	directiveLocationConfig := &EnumConfig{
		Name: "__DirectiveLocation",
		Description: "A Directive can be adjacent to many parts of the GraphQL language, a " +
			"__DirectiveLocation describes one such possible adjacencies.",
		Values: EnumValueDefinitionMap{
			"QUERY":                  {Value: DirectiveLocationQuery},
			"MUTATION":               {Value: DirectiveLocationMutation},
			"SUBSCRIPTION":           {Value: DirectiveLocationSubscription},
			"FIELD":                  {Value: DirectiveLocationField},
			"FRAGMENT_DEFINITION":    {Value: DirectiveLocationFragmentDefinition},
			"FRAGMENT_SPREAD":        {Value: DirectiveLocationFragmentSpread},
			"INLINE_FRAGMENT":        {Value: DirectiveLocationInlineFragment},
			"SCHEMA":                 {Value: DirectiveLocationSchema},
			"SCALAR":                 {Value: DirectiveLocationScalar},
			"OBJECT":                 {Value: DirectiveLocationObject},
			"FIELD_DEFINITION":       {Value: DirectiveLocationFieldDefinition},
			"ARGUMENT_DEFINITION":    {Value: DirectiveLocationArgumentDefinition},
			"INTERFACE":              {Value: DirectiveLocationInterface},
			"UNION":                  {Value: DirectiveLocationUnion},
			"ENUM":                   {Value: DirectiveLocationEnum},
			"ENUM_VALUE":             {Value: DirectiveLocationEnumValue},
			"INPUT_OBJECT":           {Value: DirectiveLocationInputObject},
			"INPUT_FIELD_DEFINITION": {Value: DirectiveLocationInputFieldDefinition},
		},
	}

	enumValueConfig := &ObjectConfig{
		Name: "__EnumValue",
		Description: "One possible value for a given Enum. Enum values are unique values, not " +
			"a placeholder for a string or numeric value.",
		Fields: Fields{
			"name": {
				Type: NonNullOfType(String()),
				Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
					return source.(*EnumValue).name, nil
				}),
			},
			"description": {
				Type: T(String()),
				Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
					return source.(*EnumValue).description, nil
				}),
			},
			"isDeprecated": {
				Type: NonNullOfType(Boolean()),
				Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
					return source.(*EnumValue).deprecation.Defined(), nil
				}),
			},
			"deprecationReason": {
				Type: T(String()),
				Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
					if deprecation := source.(*EnumValue).deprecation; deprecation.Defined() {
						return deprecation.Reason, nil
					}
					return nil, nil
				}),
			},
		},
	}

	fieldConfig := &ObjectConfig{
		Name: "__Field",
		Description: "Object and Interface types are described by a list of Fields, each of " +
			"which has a name, potentially a list of arguments, and a return type.",
		Fields: Fields{
			"name": {
				Type: NonNullOfType(String()),
				Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
					return source.(*Field).name, nil
				}),
			},
			"description": {
				Type: T(String()),
				Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
					return source.(*Field).description, nil
				}),
			},
			"args": {
				Type: NonNullOf(ListOf(NonNullOf(inputValueConfig))),
				Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
					return argumentPointers(source.(*Field).args), nil
				}),
			},
			"type": {
				Type: NonNullOf(typeConfig),
				Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
					return source.(*Field).fieldType, nil
				}),
			},
			"isDeprecated": {
				Type: NonNullOfType(Boolean()),
				Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
					return source.(*Field).deprecation.Defined(), nil
				}),
			},
			"deprecationReason": {
				Type: T(String()),
				Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
					if deprecation := source.(*Field).deprecation; deprecation.Defined() {
						return deprecation.Reason, nil
					}
					return nil, nil
				}),
			},
		},
	}

	inputValueConfig.Description = "Arguments provided to Fields or Directives and the input " +
		"fields of an InputObject are represented as Input Values."
	inputValueConfig.Fields = Fields{
		"name": {
			Type: NonNullOfType(String()),
			Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
				return source.(inputValue).Name(), nil
			}),
		},
		"description": {
			Type: T(String()),
			Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
				return source.(inputValue).Description(), nil
			}),
		},
		"type": {
			Type: NonNullOf(typeConfig),
			Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
				return source.(inputValue).Type(), nil
			}),
		},
		"defaultValue": {
			Type: T(String()),
			Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
				value := source.(inputValue)
				if !value.HasDefaultValue() {
					return nil, nil
				}
				return Inspect(value.DefaultValue()), nil
			}),
		},
	}

	typeConfig.Description = "The fundamental unit of any GraphQL Schema is the type. There " +
		"are many kinds of types; which kind a type is, is given by the `kind` field."
	typeConfig.Fields = Fields{
		"kind": {
			Type: NonNullOf(typeKindConfig),
			Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
				return typeKindOf(source.(Type))
			}),
		},
		"name": {
			Type: T(String()),
			Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
				if named, ok := source.(TypeWithName); ok {
					return named.Name(), nil
				}
				return nil, nil
			}),
		},
		"description": {
			Type: T(String()),
			Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
				type withDescription interface{ Description() string }
				if described, ok := source.(withDescription); ok {
					return described.Description(), nil
				}
				return nil, nil
			}),
		},
		"fields": {
			Type: ListOf(NonNullOf(fieldConfig)),
			Args: ArgumentConfigMap{
				"includeDeprecated": {Type: T(Boolean()), DefaultValue: false},
			},
			Resolver: resolveFn(func(_ context.Context, source interface{}, info ResolveInfo) (interface{}, error) {
				includeDeprecated, _ := info.Args().Get("includeDeprecated").(bool)
				switch t := source.(type) {
				case *Object:
					return fieldsIterable{fields: t.fields, includeDeprecated: includeDeprecated}, nil
				case *Interface:
					return fieldsIterable{fields: t.fields, includeDeprecated: includeDeprecated}, nil
				}
				return nil, nil
			}),
		},
		"interfaces": {
			Type: ListOf(NonNullOf(typeConfig)),
			Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
				if object, ok := source.(*Object); ok {
					return object.interfaces, nil
				}
				return nil, nil
			}),
		},
		"possibleTypes": {
			Type: ListOf(NonNullOf(typeConfig)),
			Resolver: resolveFn(func(_ context.Context, source interface{}, info ResolveInfo) (interface{}, error) {
				if abstract, ok := source.(AbstractType); ok {
					return info.Schema().PossibleTypes(abstract), nil
				}
				return nil, nil
			}),
		},
		"enumValues": {
			Type: ListOf(NonNullOf(enumValueConfig)),
			Args: ArgumentConfigMap{
				"includeDeprecated": {Type: T(Boolean()), DefaultValue: false},
			},
			Resolver: resolveFn(func(_ context.Context, source interface{}, info ResolveInfo) (interface{}, error) {
				if enum, ok := source.(*Enum); ok {
					includeDeprecated, _ := info.Args().Get("includeDeprecated").(bool)
					return enumValuesIterable{values: enum.values, includeDeprecated: includeDeprecated}, nil
				}
				return nil, nil
			}),
		},
		"inputFields": {
			Type: ListOf(NonNullOf(inputValueConfig)),
			Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
				if inputObject, ok := source.(*InputObject); ok {
					result := make([]interface{}, 0, len(inputObject.fields))
					for _, field := range inputObject.fields {
						result = append(result, field)
					}
					return result, nil
				}
				return nil, nil
			}),
		},
		"ofType": {
			Type: T(nil),
			Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
				switch t := source.(type) {
				case *List:
					return t.elementType, nil
				case *NonNull:
					return t.innerType, nil
				}
				return nil, nil
			}),
		},
	}
	// ofType's type is __Type itself; patch the forward reference in place.
	ofType := typeConfig.Fields["ofType"]
	ofType.Type = typeConfig
	typeConfig.Fields["ofType"] = ofType

	directiveConfig := &ObjectConfig{
		Name: "__Directive",
		Description: "A Directive provides a way to describe alternate runtime execution and " +
			"type validation behavior in a GraphQL document.",
		Fields: Fields{
			"name": {
				Type: NonNullOfType(String()),
				Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
					return source.(*Directive).name, nil
				}),
			},
			"description": {
				Type: T(String()),
				Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
					return source.(*Directive).description, nil
				}),
			},
			"locations": {
				Type: NonNullOf(ListOf(NonNullOf(directiveLocationConfig))),
				Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
					return source.(*Directive).locations, nil
				}),
			},
			"args": {
				Type: NonNullOf(ListOf(NonNullOf(inputValueConfig))),
				Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
					return argumentPointers(source.(*Directive).args), nil
				}),
			},
		},
	}

	schemaConfig := &ObjectConfig{
		Name: "__Schema",
		Description: "A GraphQL Schema defines the capabilities of a GraphQL server. It " +
			"exposes all available types and directives on the server, as well as the entry " +
			"points for query and mutation operations.",
		Fields: Fields{
			"types": {
				Description: "A list of all types supported by this server.",
				Type:        NonNullOf(ListOf(NonNullOf(typeConfig))),
				Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
					return source.(Schema).TypeMap(), nil
				}),
			},
			"queryType": {
				Description: "The type that query operations will be rooted at.",
				Type:        NonNullOf(typeConfig),
				Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
					return source.(Schema).Query(), nil
				}),
			},
			"mutationType": {
				Description: "If this server supports mutation, the type that mutation operations will be rooted at.",
				Type:        T(nil),
				Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
					if mutation := source.(Schema).Mutation(); mutation != nil {
						return mutation, nil
					}
					return nil, nil
				}),
			},
			"subscriptionType": {
				Description: "If this server supports subscription, the type that subscription operations will be rooted at.",
				Type:        T(nil),
				Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
					if subscription := source.(Schema).Subscription(); subscription != nil {
						return subscription, nil
					}
					return nil, nil
				}),
			},
			"directives": {
				Description: "A list of all directives supported by this server.",
				Type:        NonNullOf(ListOf(NonNullOf(directiveConfig))),
				Resolver: resolveFn(func(_ context.Context, source interface{}, _ ResolveInfo) (interface{}, error) {
					return source.(Schema).Directives(), nil
				}),
			},
		},
	}
	// mutationType / subscriptionType are __Type positions; patch the forward references.
	mutationType := schemaConfig.Fields["mutationType"]
	mutationType.Type = typeConfig
	schemaConfig.Fields["mutationType"] = mutationType
	subscriptionType := schemaConfig.Fields["subscriptionType"]
	subscriptionType.Type = typeConfig
	schemaConfig.Fields["subscriptionType"] = subscriptionType

	// Link the cluster once; every schema shares these instances.
	link := newLinker()
	mustLink := func(config *ObjectConfig) *Object {
		t, err := link.resolve(config)
		if err != nil {
			panic(err)
		}
		return t.(*Object)
	}
	introspectionTypeType = mustLink(typeConfig)
	introspectionFieldType = mustLink(fieldConfig)
	introspectionInputValueType = mustLink(inputValueConfig)
	introspectionEnumValueType = mustLink(enumValueConfig)
	introspectionDirectiveType = mustLink(directiveConfig)
	introspectionSchemaType = mustLink(schemaConfig)

	schemaMetaField = &Field{
		name:        SchemaMetaFieldName,
		description: "Access the current type schema of this server.",
		fieldType:   &NonNull{innerType: introspectionSchemaType, notation: "__Schema!"},
		resolver: resolveFn(func(_ context.Context, _ interface{}, info ResolveInfo) (interface{}, error) {
			return info.Schema(), nil
		}),
	}

	typeMetaField = &Field{
		name:        TypeMetaFieldName,
		description: "Request the type information of a single type.",
		fieldType:   introspectionTypeType,
		args: []Argument{{
			name:    "name",
			argType: &NonNull{innerType: stringScalar, notation: "String!"},
		}},
		resolver: resolveFn(func(_ context.Context, _ interface{}, info ResolveInfo) (interface{}, error) {
			name, _ := info.Args().Get("name").(string)
			if t := info.Schema().TypeMap().Lookup(name); t != nil {
				return t, nil
			}
			return nil, nil
		}),
	}

	typenameMetaField = &Field{
		name:        TypenameMetaFieldName,
		description: "The name of the current Object type at runtime.",
		fieldType:   &NonNull{innerType: stringScalar, notation: "String!"},
	}
}

// SchemaMetaFieldDef returns the __schema meta field.
func SchemaMetaFieldDef() *Field { return schemaMetaField }

// TypeMetaFieldDef returns the __type meta field.
func TypeMetaFieldDef() *Field { return typeMetaField }

// TypenameMetaFieldDef returns the __typename meta field; the driver resolves it from the OER
// node's concrete type, so it declares no resolver here.
func TypenameMetaFieldDef() *Field { return typenameMetaField }

// IntrospectionType finds an introspection object type by name, used by the planner when a
// selection descends into the introspection cluster.
func IntrospectionType(name string) *Object {
	switch name {
	case "__Schema":
		return introspectionSchemaType
	case "__Type":
		return introspectionTypeType
	case "__Field":
		return introspectionFieldType
	case "__InputValue":
		return introspectionInputValueType
	case "__EnumValue":
		return introspectionEnumValueType
	case "__Directive":
		return introspectionDirectiveType
	}
	return nil
}
