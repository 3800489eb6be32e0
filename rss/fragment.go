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
	"fmt"
	"strings"
	"sync"

	"github.com/viaduct-dev/viaduct/errs"
	"github.com/viaduct-dev/viaduct/schema"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// ParsedFragment is the cached, parsed form of a resolver-declared fragment string: its anchor
// type and its raw selection set.
type ParsedFragment struct {
	// Source is the literal fragment string as declared on the resolver.
	Source string

	// TypeCondition is the anchor type name ("fragment _ on T" gives T).
	TypeCondition string

	// Selections is the parsed selection set body.
	Selections ast.SelectionSet

	// Fragments carries any named fragment definitions declared alongside the anchor fragment, so
	// spreads inside the body resolve.
	Fragments ast.FragmentDefinitionList
}

// FragmentCache caches ParsedFragment by (source text, containing type). Fragment strings are
// bounded by the number of resolver and checker registrations made at startup, not by request
// traffic, so a plain sync.Map suffices -- the LRU treatment is reserved for the per-operation
// PlanCache.
type FragmentCache struct {
	m sync.Map
}

type fragmentCacheKey struct {
	source         string
	containingType string
}

// Parse returns the parsed form of a declared fragment, consulting the cache first.
//
// Two shorthands are accepted:
//
//   - A bare field name ("fieldName") is interpreted as
//     "fragment _ on <ContainingType> { fieldName }".
//   - An absent fragment (empty string) means no required selection set; Parse returns (nil, nil).
func (cache *FragmentCache) Parse(source, containingType string) (*ParsedFragment, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, nil
	}

	key := fragmentCacheKey{source: source, containingType: containingType}
	if cached, ok := cache.m.Load(key); ok {
		switch cached := cached.(type) {
		case *ParsedFragment:
			return cached, nil
		case *PlanError:
			return nil, cached
		}
	}

	parsed, err := parseFragment(source, containingType)
	if err != nil {
		cache.m.Store(key, err)
		return nil, err
	}
	cache.m.Store(key, parsed)
	return parsed, nil
}

// parseFragment does the uncached work for FragmentCache.Parse.
func parseFragment(source, containingType string) (*ParsedFragment, *PlanError) {
	const op errs.Op = "rss.ParseFragment"

	text := source
	if !strings.HasPrefix(source, "fragment") {
		// Shorthand: a bare field name (possibly with a sub-selection, e.g. "owner { id }").
		text = fmt.Sprintf("fragment _ on %s { %s }", containingType, source)
	}

	// ParseQuery accepts fragment-only documents; the anchor fragment is the first definition.
	doc, gqlErr := parser.ParseQuery(&ast.Source{Name: "rss", Input: text})
	if gqlErr != nil {
		return nil, newPlanError(op, PlanErrorInvalidFragment, "cannot parse fragment %q: %s", source, gqlErr.Error())
	}
	if len(doc.Fragments) == 0 {
		return nil, newPlanError(op, PlanErrorInvalidFragment, "fragment %q declares no fragment definition", source)
	}

	anchor := doc.Fragments[0]
	if containingType != "" && anchor.TypeCondition != containingType {
		return nil, newPlanError(op, PlanErrorInvalidFragment,
			"fragment %q is anchored on %s but is declared for %s", source, anchor.TypeCondition, containingType)
	}

	return &ParsedFragment{
		Source:        source,
		TypeCondition: anchor.TypeCondition,
		Selections:    anchor.SelectionSet,
		Fragments:     doc.Fragments,
	}, nil
}

// ParseOperationDocument parses a full operation document (query/mutation source text) and selects
// the requested operation.
func ParseOperationDocument(operationText, operationName string) (*ast.QueryDocument, *ast.OperationDefinition, error) {
	const op errs.Op = "rss.ParseOperationDocument"

	doc, gqlErr := parser.ParseQuery(&ast.Source{Name: "operation", Input: operationText})
	if gqlErr != nil {
		return nil, nil, newPlanError(op, PlanErrorInvalidFragment, "cannot parse operation: %s", gqlErr.Error())
	}

	var operation *ast.OperationDefinition
	if operationName == "" {
		if len(doc.Operations) != 1 {
			return nil, nil, newPlanError(op, PlanErrorInvalidFragment,
				"operation name is required when the document defines %d operations", len(doc.Operations))
		}
		operation = doc.Operations[0]
	} else {
		operation = doc.Operations.ForName(operationName)
		if operation == nil {
			return nil, nil, newPlanError(op, PlanErrorInvalidFragment,
				"operation %q is not defined by the document", operationName)
		}
	}

	return doc, operation, nil
}

// literalFromAST translates a gqlparser value node into the parser-agnostic schema.Literal the
// type system coerces from, keeping the schema package free of a gqlparser dependency.
func literalFromAST(value *ast.Value) schema.Literal {
	if value == nil {
		return schema.NullLiteral()
	}
	switch value.Kind {
	case ast.Variable:
		return schema.VariableLiteral(value.Raw)
	case ast.IntValue:
		return schema.IntLiteral(value.Raw)
	case ast.FloatValue:
		return schema.FloatLiteral(value.Raw)
	case ast.StringValue, ast.BlockValue:
		return schema.StringLiteral(value.Raw)
	case ast.BooleanValue:
		return schema.BooleanLiteral(value.Raw == "true")
	case ast.NullValue:
		return schema.NullLiteral()
	case ast.EnumValue:
		return schema.EnumLiteral(value.Raw)
	case ast.ListValue:
		elems := make([]schema.Literal, len(value.Children))
		for i, child := range value.Children {
			elems[i] = literalFromAST(child.Value)
		}
		return schema.ListLiteral(elems)
	case ast.ObjectValue:
		fields := make(map[string]schema.Literal, len(value.Children))
		for _, child := range value.Children {
			fields[child.Name] = literalFromAST(child.Value)
		}
		return schema.ObjectLiteral(fields)
	}
	return schema.NullLiteral()
}

// typeRefFromAST translates a gqlparser type node into schema.TypeRef.
func typeRefFromAST(t *ast.Type) *schema.TypeRef {
	if t == nil {
		return nil
	}
	var ref *schema.TypeRef
	if t.NamedType != "" {
		ref = schema.NamedTypeRef(t.NamedType)
	} else {
		ref = schema.ListTypeRef(typeRefFromAST(t.Elem))
	}
	if t.NonNull {
		ref = schema.NonNullTypeRef(ref)
	}
	return ref
}
