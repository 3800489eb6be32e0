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

package rss

// Per-request value coercion: operation variables from their JSON-decoded inputs, and field
// arguments from their planned literals plus the coerced variables. The rules follow
// CoerceVariableValues and CoerceArgumentValues from the June 2018 specification.

import (
	"fmt"

	"github.com/viaduct-dev/viaduct/schema"
	"github.com/viaduct-dev/viaduct/scopefilter"

	"github.com/vektah/gqlparser/v2/ast"
)

// CoerceVariableValues coerces the request-supplied variable inputs against the operation's
// variable definitions.
func CoerceVariableValues(
	view *scopefilter.View,
	defs ast.VariableDefinitionList,
	inputs map[string]interface{}) (schema.VariableValues, error) {

	if len(defs) == 0 {
		return schema.NoVariableValues(), nil
	}

	values := make(map[string]interface{}, len(defs))
	for _, def := range defs {
		varType := view.Schema().TypeFromAST(typeRefFromAST(def.Type))
		if varType == nil || !schema.IsInputType(varType) {
			return schema.VariableValues{}, schema.NewError(fmt.Sprintf(
				`Variable "$%s" expected value of type "%s" which cannot be used as an input type.`,
				def.Variable, def.Type.String()))
		}

		input, provided := inputs[def.Variable]
		if !provided {
			if def.DefaultValue != nil {
				coerced, err := coerceLiteral(view, varType, literalFromAST(def.DefaultValue), schema.NoVariableValues())
				if err != nil {
					return schema.VariableValues{}, err
				}
				values[def.Variable] = coerced
				continue
			}
			if schema.IsNonNullType(varType) {
				return schema.VariableValues{}, schema.NewError(fmt.Sprintf(
					`Variable "$%s" of required type "%s" was not provided.`, def.Variable, def.Type.String()))
			}
			continue
		}

		coerced, err := coerceInput(varType, input)
		if err != nil {
			return schema.VariableValues{}, schema.WrapError(err, fmt.Sprintf(
				`Variable "$%s" got invalid value`, def.Variable))
		}
		values[def.Variable] = coerced
	}

	return schema.NewVariableValues(values), nil
}

// CoerceArgumentValues coerces one planned field's arguments against the given variable values,
// applying argument default values for omitted arguments.
func CoerceArgumentValues(
	view *scopefilter.View,
	field *PlannedField,
	variables schema.VariableValues) (schema.ArgumentValues, error) {

	defs := field.Def.Args()
	if len(defs) == 0 {
		return schema.NoArgumentValues(), nil
	}

	supplied := make(map[string]schema.Literal, len(field.Args))
	for _, arg := range field.Args {
		supplied[arg.Name] = arg.Value
	}

	values := make(map[string]interface{}, len(defs))
	for i := range defs {
		def := &defs[i]
		lit, provided := supplied[def.Name()]

		if provided && lit.Kind == schema.LiteralVariable {
			value, ok := variables.Lookup(lit.VariableName)
			if !ok {
				provided = false
			} else {
				if value == nil && schema.IsNonNullType(def.Type()) {
					return schema.ArgumentValues{}, schema.NewError(fmt.Sprintf(
						`Argument "%s" of non-null type "%s" must not be null.`,
						def.Name(), schema.Inspect(def.Type())), schema.ErrKindCoercion)
				}
				values[def.Name()] = value
				continue
			}
		}

		if !provided {
			if def.HasDefaultValue() {
				values[def.Name()] = def.DefaultValue()
				continue
			}
			if schema.IsNonNullType(def.Type()) {
				return schema.ArgumentValues{}, schema.NewError(fmt.Sprintf(
					`Argument "%s" of required type "%s" was not provided.`,
					def.Name(), schema.Inspect(def.Type())), schema.ErrKindCoercion)
			}
			continue
		}

		coerced, err := coerceLiteral(view, def.Type(), lit, variables)
		if err != nil {
			return schema.ArgumentValues{}, err
		}
		values[def.Name()] = coerced
	}

	return schema.NewArgumentValues(values), nil
}

// coerceLiteral coerces a document literal against t, resolving variable references through
// variables.
func coerceLiteral(
	view *scopefilter.View,
	t schema.Type,
	lit schema.Literal,
	variables schema.VariableValues) (interface{}, error) {

	if lit.Kind == schema.LiteralVariable {
		value, _ := variables.Lookup(lit.VariableName)
		if value == nil && schema.IsNonNullType(t) {
			return nil, schema.NewError(fmt.Sprintf(
				`Variable "$%s" must not be null for non-null type "%s".`,
				lit.VariableName, schema.Inspect(t)), schema.ErrKindCoercion)
		}
		return value, nil
	}

	switch t := t.(type) {
	case *schema.NonNull:
		if lit.IsNull() {
			return nil, schema.NewError(fmt.Sprintf(
				`Expected non-null value of type "%s".`, schema.Inspect(t)), schema.ErrKindCoercion)
		}
		return coerceLiteral(view, t.InnerType(), lit, variables)

	case *schema.List:
		if lit.IsNull() {
			return nil, nil
		}
		if lit.Kind != schema.LiteralList {
			// A non-list literal in a list position coerces to a single-element list.
			elem, err := coerceLiteral(view, t.ElementType(), lit, variables)
			if err != nil {
				return nil, err
			}
			return []interface{}{elem}, nil
		}
		result := make([]interface{}, len(lit.List))
		for i, elemLit := range lit.List {
			elem, err := coerceLiteral(view, t.ElementType(), elemLit, variables)
			if err != nil {
				return nil, err
			}
			result[i] = elem
		}
		return result, nil

	case *schema.InputObject:
		if lit.IsNull() {
			return nil, nil
		}
		if lit.Kind != schema.LiteralObject {
			return nil, schema.NewError(fmt.Sprintf(
				`Expected object value for input object type "%s".`, schema.Inspect(t)), schema.ErrKindCoercion)
		}
		result := make(map[string]interface{}, len(t.Fields()))
		for name, inputField := range t.Fields() {
			fieldLit, ok := lit.Fields[name]
			if !ok {
				if inputField.HasDefaultValue() {
					result[name] = inputField.DefaultValue()
					continue
				}
				if schema.IsNonNullType(inputField.Type()) {
					return nil, schema.NewError(fmt.Sprintf(
						`Input field "%s.%s" of required type "%s" was not provided.`,
						schema.Inspect(t), name, schema.Inspect(inputField.Type())), schema.ErrKindCoercion)
				}
				continue
			}
			coerced, err := coerceLiteral(view, inputField.Type(), fieldLit, variables)
			if err != nil {
				return nil, err
			}
			result[name] = coerced
		}
		for name := range lit.Fields {
			if _, ok := t.Fields()[name]; !ok {
				return nil, schema.NewError(fmt.Sprintf(
					`Field "%s" is not defined by input object type "%s".`, name, schema.Inspect(t)),
					schema.ErrKindCoercion)
			}
		}
		return result, nil

	case *schema.Scalar:
		if lit.IsNull() {
			return nil, nil
		}
		return t.CoerceArgumentValue(lit)

	case *schema.Enum:
		if lit.IsNull() {
			return nil, nil
		}
		return t.CoerceArgumentValue(lit)
	}

	return nil, schema.NewError(fmt.Sprintf(
		`Type "%s" cannot be used as an input type.`, schema.Inspect(t)), schema.ErrKindCoercion)
}

// coerceInput coerces a request-supplied (JSON-decoded) value against t.
func coerceInput(t schema.Type, input interface{}) (interface{}, error) {
	switch t := t.(type) {
	case *schema.NonNull:
		if input == nil {
			return nil, schema.NewError(fmt.Sprintf(
				`Expected non-null value of type "%s".`, schema.Inspect(t)), schema.ErrKindCoercion)
		}
		return coerceInput(t.InnerType(), input)

	case *schema.List:
		if input == nil {
			return nil, nil
		}
		list, ok := input.([]interface{})
		if !ok {
			elem, err := coerceInput(t.ElementType(), input)
			if err != nil {
				return nil, err
			}
			return []interface{}{elem}, nil
		}
		result := make([]interface{}, len(list))
		for i, elemInput := range list {
			elem, err := coerceInput(t.ElementType(), elemInput)
			if err != nil {
				return nil, err
			}
			result[i] = elem
		}
		return result, nil

	case *schema.InputObject:
		if input == nil {
			return nil, nil
		}
		object, ok := input.(map[string]interface{})
		if !ok {
			return nil, schema.NewError(fmt.Sprintf(
				`Expected object value for input object type "%s".`, schema.Inspect(t)), schema.ErrKindCoercion)
		}
		result := make(map[string]interface{}, len(t.Fields()))
		for name, inputField := range t.Fields() {
			fieldInput, provided := object[name]
			if !provided {
				if inputField.HasDefaultValue() {
					result[name] = inputField.DefaultValue()
					continue
				}
				if schema.IsNonNullType(inputField.Type()) {
					return nil, schema.NewError(fmt.Sprintf(
						`Input field "%s.%s" of required type "%s" was not provided.`,
						schema.Inspect(t), name, schema.Inspect(inputField.Type())), schema.ErrKindCoercion)
				}
				continue
			}
			coerced, err := coerceInput(inputField.Type(), fieldInput)
			if err != nil {
				return nil, err
			}
			result[name] = coerced
		}
		for name := range object {
			if _, ok := t.Fields()[name]; !ok {
				return nil, schema.NewError(fmt.Sprintf(
					`Field "%s" is not defined by input object type "%s".`, name, schema.Inspect(t)),
					schema.ErrKindCoercion)
			}
		}
		return result, nil

	case *schema.Scalar:
		if input == nil {
			return nil, nil
		}
		return t.CoerceVariableValue(input)

	case *schema.Enum:
		if input == nil {
			return nil, nil
		}
		return t.CoerceVariableValue(input)
	}

	return nil, schema.NewError(fmt.Sprintf(
		`Type "%s" cannot be used as an input type.`, schema.Inspect(t)), schema.ErrKindCoercion)
}
