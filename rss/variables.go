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

import (
	"strings"

	"github.com/viaduct-dev/viaduct/errs"
	"github.com/viaduct-dev/viaduct/schema"
	"github.com/viaduct-dev/viaduct/scopefilter"
)

// VariableSourceKind discriminates where a declared variable draws its value from. Exactly one
// source applies per variable.
type VariableSourceKind uint8

// Enumeration of VariableSourceKind.
const (
	// FromArgument binds the variable to an argument of the field being resolved, optionally with a
	// dot-path into nested input objects.
	FromArgument VariableSourceKind = iota + 1
	// FromObjectField binds the variable to a dot-path selection from the parent object.
	FromObjectField
	// FromQueryField binds the variable to a dot-path selection from the Query root.
	FromQueryField
)

func (kind VariableSourceKind) String() string {
	switch kind {
	case FromArgument:
		return "fromArgument"
	case FromObjectField:
		return "fromObjectField"
	case FromQueryField:
		return "fromQueryField"
	}
	return "unknown"
}

// VariableDecl is the literal (name, source) pair declared on a resolver or checker, e.g.
// ("ownerId", "fromObjectField:owner.id").
type VariableDecl struct {
	Name   string
	Source string
}

// VariableBinding is a parsed and validated VariableDecl.
type VariableBinding struct {
	Name string
	Kind VariableSourceKind

	// Path is the dot-separated source path split into steps. Never empty.
	Path []string

	// Nullable records whether any step of the source path may yield null; computed by Validate.
	Nullable bool
}

// ParseVariableDecl parses the "<kind>:<path>" source form.
func ParseVariableDecl(decl VariableDecl) (VariableBinding, error) {
	const op errs.Op = "rss.ParseVariableDecl"

	idx := strings.IndexByte(decl.Source, ':')
	if idx < 0 {
		return VariableBinding{}, newPlanError(op, PlanErrorInvalidFragment,
			"variable %q source %q is missing the <kind>:<path> separator", decl.Name, decl.Source)
	}

	var kind VariableSourceKind
	switch decl.Source[:idx] {
	case "fromArgument":
		kind = FromArgument
	case "fromObjectField":
		kind = FromObjectField
	case "fromQueryField":
		kind = FromQueryField
	default:
		return VariableBinding{}, newPlanError(op, PlanErrorInvalidFragment,
			"variable %q declares unknown source kind %q", decl.Name, decl.Source[:idx])
	}

	path := strings.Split(decl.Source[idx+1:], ".")
	if len(path) == 0 || path[0] == "" {
		return VariableBinding{}, newPlanError(op, PlanErrorInvalidFragment,
			"variable %q declares an empty source path", decl.Name)
	}

	return VariableBinding{Name: decl.Name, Kind: kind, Path: path}, nil
}

// Validate statically walks the binding's source path against the schema view and enforces its
// invariants: the path must terminate on a scalar or enum, must not traverse a list-typed step,
// and a path that can yield null must not feed a non-null position (requiredNonNull).
//
// field is the definition of the field being resolved (the anchor for FromArgument paths);
// parentType names the parent object type (the anchor for FromObjectField paths); queryType names
// the Query root (the anchor for FromQueryField paths).
func (binding *VariableBinding) Validate(
	view *scopefilter.View,
	field *schema.Field,
	parentType string,
	queryType string,
	requiredNonNull bool) error {
	const op errs.Op = "rss.VariableBinding.Validate"

	var (
		current  schema.Type
		nullable bool
	)

	switch binding.Kind {
	case FromArgument:
		arg := lookupArgument(field, binding.Path[0])
		if arg == nil {
			return newPlanError(op, PlanErrorUnknownField,
				"variable %q references unknown argument %q of field %q",
				binding.Name, binding.Path[0], field.Name())
		}
		current = arg.Type()
		if schema.IsNullableType(current) {
			nullable = true
		}
		var err error
		current, nullable, err = walkInputPath(binding, current, nullable, binding.Path[1:])
		if err != nil {
			return err
		}

	case FromObjectField:
		var err error
		current, nullable, err = walkOutputPath(binding, view, parentType, binding.Path)
		if err != nil {
			return err
		}

	case FromQueryField:
		var err error
		current, nullable, err = walkOutputPath(binding, view, queryType, binding.Path)
		if err != nil {
			return err
		}
	}

	// The terminal type must be a leaf (scalar or enum).
	if !schema.IsLeafType(schema.NamedTypeOf(current)) {
		return newPlanError(op, PlanErrorIncompatibleVariableType,
			"variable %q source path %s terminates on non-leaf type %s",
			binding.Name, strings.Join(binding.Path, "."), schema.Inspect(schema.NamedTypeOf(current)))
	}

	if requiredNonNull && nullable {
		return newPlanError(op, PlanErrorNullabilityMismatch,
			"variable %q may be null but is bound to a non-null position", binding.Name)
	}

	binding.Nullable = nullable
	return nil
}

// lookupArgument finds an argument definition on a field by name.
func lookupArgument(field *schema.Field, name string) *schema.Argument {
	args := field.Args()
	for i := range args {
		if args[i].Name() == name {
			return &args[i]
		}
	}
	return nil
}

// walkInputPath walks the remainder of a fromArgument path through nested input objects.
func walkInputPath(
	binding *VariableBinding,
	current schema.Type,
	nullable bool,
	rest []string) (schema.Type, bool, error) {
	const op errs.Op = "rss.VariableBinding.Validate"

	for _, step := range rest {
		named := schema.NamedTypeOf(current)
		if schema.IsListType(current) || schema.IsListType(schema.NullableTypeOf(current)) {
			return nil, false, newPlanError(op, PlanErrorListTraversal,
				"variable %q source path traverses a list at %q", binding.Name, step)
		}
		inputObject, ok := named.(*schema.InputObject)
		if !ok {
			return nil, false, newPlanError(op, PlanErrorIncompatibleVariableType,
				"variable %q source path steps into non-input-object type %s at %q",
				binding.Name, schema.Inspect(named), step)
		}
		inputField, ok := inputObject.Fields()[step]
		if !ok {
			return nil, false, newPlanError(op, PlanErrorUnknownField,
				"variable %q source path references unknown input field %q on %s",
				binding.Name, step, schema.Inspect(inputObject))
		}
		current = inputField.Type()
		if schema.IsNullableType(current) {
			nullable = true
		}
	}
	if schema.IsListType(schema.NullableTypeOf(current)) {
		return nil, false, newPlanError(op, PlanErrorListTraversal,
			"variable %q source path terminates on a list", binding.Name)
	}
	return current, nullable, nil
}

// walkOutputPath walks a fromObjectField / fromQueryField path through object fields.
func walkOutputPath(
	binding *VariableBinding,
	view *scopefilter.View,
	anchorType string,
	path []string) (schema.Type, bool, error) {
	const op errs.Op = "rss.VariableBinding.Validate"

	var (
		currentType = anchorType
		current     schema.Type
		nullable    bool
	)

	for i, step := range path {
		field := view.LookupField(currentType, step)
		if field == nil {
			return nil, false, newPlanError(op, PlanErrorUnknownField,
				"variable %q source path references unknown field %q on %s", binding.Name, step, currentType)
		}
		current = field.Type()
		if schema.IsNullableType(current) {
			nullable = true
		}
		if schema.IsListType(schema.NullableTypeOf(current)) {
			return nil, false, newPlanError(op, PlanErrorListTraversal,
				"variable %q source path traverses list-typed field %q", binding.Name, step)
		}
		if i != len(path)-1 {
			named, ok := schema.NamedTypeOf(current).(schema.TypeWithName)
			if !ok {
				return nil, false, newPlanError(op, PlanErrorIncompatibleVariableType,
					"variable %q source path steps through unnamed type after %q", binding.Name, step)
			}
			currentType = named.Name()
		}
	}

	return current, nullable, nil
}
