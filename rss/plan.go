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
	"hash/fnv"
	"sort"
	"strings"

	"github.com/viaduct-dev/viaduct/errs"
	"github.com/viaduct-dev/viaduct/flags"
	"github.com/viaduct-dev/viaduct/schema"
	"github.com/viaduct-dev/viaduct/scopefilter"

	"github.com/vektah/gqlparser/v2/ast"
)

// OperationKind discriminates the operation types the execution core supports. Subscriptions are
// out of scope.
type OperationKind uint8

// Enumeration of OperationKind.
const (
	QueryOperation OperationKind = iota + 1
	MutationOperation
)

func (kind OperationKind) String() string {
	if kind == MutationOperation {
		return "mutation"
	}
	return "query"
}

// SelectionDecl carries the literal RSS metadata declared on a resolver or checker.
type SelectionDecl struct {
	// ObjectSelections is the object-RSS fragment string ("fragment _ on T { ... }" or the bare
	// field-name shorthand). Empty means no object RSS.
	ObjectSelections string

	// QuerySelections is the query-RSS fragment string ("fragment _ on Query { ... }"). Empty means
	// no query RSS.
	QuerySelections string

	// Variables lists the declared variable bindings.
	Variables []VariableDecl
}

// ResolverBinding associates a field's resolver registration with its declared metadata. Ref is an
// opaque handle the dispatcher understands; the planner only threads it through.
type ResolverBinding struct {
	Decl  SelectionDecl
	Batch bool
	Ref   interface{}
}

// CheckerBinding associates a policy checker registration with its declared metadata.
type CheckerBinding struct {
	Decl SelectionDecl
	Ref  interface{}
}

// ResolverSource lets the planner discover which fields carry resolvers and checkers. The
// dispatcher's registry implements it.
type ResolverSource interface {
	// ResolverFor returns the resolver bound to (typeName, fieldName), if any.
	ResolverFor(typeName, fieldName string) (*ResolverBinding, bool)

	// FieldCheckersFor returns the checkers gating (typeName, fieldName), in registration order.
	FieldCheckersFor(typeName, fieldName string) []*CheckerBinding

	// TypeCheckersFor returns the checkers gating values of typeName, in registration order.
	TypeCheckersFor(typeName string) []*CheckerBinding
}

// PlannedArgument is one argument of a planned field, with its literal translated out of the
// parser's AST. The literal may reference operation variables (LiteralVariable); per-request
// coercion happens in the driver.
type PlannedArgument struct {
	Name  string
	Def   *schema.Argument
	Value schema.Literal
}

// PlannedField is one field occurrence in a Plan.
type PlannedField struct {
	// Alias is the response key (the alias if one was written, the field name otherwise).
	Alias string

	// Name is the schema field name.
	Name string

	// ParentType names the enclosing type.
	ParentType string

	// Def is the schema definition of the field.
	Def *schema.Field

	// Args are the field's planned arguments in textual order.
	Args []PlannedArgument

	// SkipIf and IncludeIf hold the `if` literals of @skip / @include applications on the field;
	// nil when the directive is absent. Plans carry no per-request data, so variable-valued
	// conditions are evaluated by the driver against each request's variables.
	SkipIf    *schema.Literal
	IncludeIf *schema.Literal

	// Resolver is non-nil when a resolver is registered for this field.
	Resolver *PlannedResolver

	// FieldCheckers gate this field, in registration order.
	FieldCheckers []*PlannedChecker

	// TypeCheckers gate the value produced by this field, keyed off the field's named type.
	TypeCheckers []*PlannedChecker

	// Selections is non-nil for composite-typed fields.
	Selections *PlannedSelectionSet
}

// PlannedSelectionSet is the planned form of one selection set: unconditional fields in textual
// order (merged by response key), plus conditional groups contributed by typed fragments, applied
// at runtime when the concrete object type matches.
type PlannedSelectionSet struct {
	// TypeName is the static parent type the set was planned against.
	TypeName string

	// Fields are the unconditional planned fields in textual order.
	Fields []*PlannedField

	// Conditional are the fragment-contributed groups in textual order.
	Conditional []*ConditionalSelections
}

// ConditionalSelections is a typed fragment's contribution to a selection set.
type ConditionalSelections struct {
	TypeCondition string
	Selections    *PlannedSelectionSet
}

// PlannedRSS is the planned expansion of a required selection set.
type PlannedRSS struct {
	// TypeCondition is the anchor type.
	TypeCondition string

	// Selections is the planned selection set.
	Selections *PlannedSelectionSet
}

// PlannedResolver carries everything the dispatcher needs to invoke a field's resolver.
type PlannedResolver struct {
	// Ref is the opaque registration handle from ResolverBinding.
	Ref interface{}

	// Batch marks a batching resolver whose invocations coalesce per tick.
	Batch bool

	// ObjectRSS and QueryRSS are the planned required selection sets; either may be nil.
	ObjectRSS *PlannedRSS
	QueryRSS  *PlannedRSS

	// Bindings are the validated variable bindings.
	Bindings []VariableBinding
}

// PlannedChecker carries everything the policy runner needs to run one checker.
type PlannedChecker struct {
	// Ref is the opaque registration handle from CheckerBinding.
	Ref interface{}

	// ObjectRSS and QueryRSS are the checker's planned required selection sets; either may be nil.
	ObjectRSS *PlannedRSS
	QueryRSS  *PlannedRSS

	// Bindings are the validated variable bindings.
	Bindings []VariableBinding
}

// Plan is the immutable planned form of one operation against one schema view. Plans carry no
// per-request data, so they are shared across requests through the PlanCache.
type Plan struct {
	// Fingerprint is the content-address used as the cache key.
	Fingerprint uint64

	// Operation is the operation kind.
	Operation OperationKind

	// RootType names the operation's root type in the schema (honoring custom root type names).
	RootType string

	// VariableDefinitions are the operation's declared variables, used for per-request coercion.
	VariableDefinitions ast.VariableDefinitionList

	// Selections is the planned root selection set.
	Selections *PlannedSelectionSet
}

// Fingerprint computes the plan cache key for an operation: an FNV-1a hash over the operation
// text, the operation name, the sorted declared variable names, and the schema id.
func Fingerprint(operationText, operationName string, variableNames []string, schemaID scopefilter.SchemaID) uint64 {
	names := make([]string, len(variableNames))
	copy(names, variableNames)
	sort.Strings(names)

	h := fnv.New64a()
	h.Write([]byte(operationText))
	h.Write([]byte{0})
	h.Write([]byte(operationName))
	h.Write([]byte{0})
	for _, name := range names {
		h.Write([]byte(name))
		h.Write([]byte{0})
	}
	h.Write([]byte(schemaID.String()))
	return h.Sum64()
}

// Planner builds and caches execution plans.
type Planner struct {
	filter    *scopefilter.Filter
	source    ResolverSource
	fragments FragmentCache
	cache     PlanCache
	flags     flags.Manager
}

// NewPlanner creates a Planner. cache may be nil to always rebuild; flagManager gates the cache
// through flags.DisableQueryPlanCache.
func NewPlanner(filter *scopefilter.Filter, source ResolverSource, cache PlanCache, flagManager flags.Manager) *Planner {
	if cache == nil {
		cache = NopPlanCache{}
	}
	if flagManager == nil {
		flagManager = flags.Defaults()
	}
	return &Planner{
		filter: filter,
		source: source,
		cache:  cache,
		flags:  flagManager,
	}
}

// Filter returns the scope filter the planner resolves views from.
func (p *Planner) Filter() *scopefilter.Filter { return p.filter }

// Plan parses operationText, selects operationName, and builds (or retrieves from cache) the
// execution plan under schemaID.
func (p *Planner) Plan(operationText, operationName string, schemaID scopefilter.SchemaID) (*Plan, error) {
	useCache := !p.flags.Enabled(flags.DisableQueryPlanCache)

	// Variable names are a function of the operation text, so the fingerprint is computed before
	// parsing and without them; a cache hit therefore skips the parse entirely.
	fingerprint := Fingerprint(operationText, operationName, nil, schemaID)
	if useCache {
		if plan, ok := p.cache.Get(fingerprint); ok {
			return plan, nil
		}
	}

	doc, operation, err := ParseOperationDocument(operationText, operationName)
	if err != nil {
		return nil, err
	}

	plan, err := p.buildPlan(doc, operation, schemaID, fingerprint)
	if err != nil {
		return nil, err
	}

	if useCache {
		p.cache.Add(fingerprint, plan)
	}
	return plan, nil
}

// PlanFragmentSelections parses a fragment (or bare-field shorthand) anchored at the root type of
// kind and plans its selections; this is the selectionsFor handle-construction path.
func (p *Planner) PlanFragmentSelections(
	kind OperationKind,
	fragmentSource string,
	schemaID scopefilter.SchemaID) (*Plan, error) {
	const op errs.Op = "rss.Planner.PlanFragmentSelections"

	view, err := p.filter.View(schemaID)
	if err != nil {
		return nil, err
	}
	rootType, err := rootTypeFor(view, kind)
	if err != nil {
		return nil, err
	}

	parsed, err := p.fragments.Parse(fragmentSource, rootType)
	if err != nil {
		return nil, err
	}
	if parsed == nil {
		return nil, newPlanError(op, PlanErrorInvalidFragment, "selection set source is empty")
	}

	return p.PlanSelections(kind, parsed.Selections, parsed.Fragments, schemaID)
}

// PlanSelections builds a plan for a raw selection set handle (the ctx.query / ctx.mutation
// re-entry path). Selection-set plans are not cached: they are anchored in resolver
// code whose fragment strings are already cached by the FragmentCache.
func (p *Planner) PlanSelections(
	kind OperationKind,
	selections ast.SelectionSet,
	fragments ast.FragmentDefinitionList,
	schemaID scopefilter.SchemaID) (*Plan, error) {
	view, err := p.filter.View(schemaID)
	if err != nil {
		return nil, err
	}

	rootType, err := rootTypeFor(view, kind)
	if err != nil {
		return nil, err
	}

	builder := &planBuilder{
		planner:   p,
		view:      view,
		fragments: fragments,
		queryRoot: queryRootName(view),
	}
	planned, err := builder.buildSelectionSet(rootType, selections, map[string]bool{})
	if err != nil {
		return nil, err
	}

	return &Plan{
		Operation:  kind,
		RootType:   rootType,
		Selections: planned,
	}, nil
}

// buildPlan expands one parsed operation into a Plan.
func (p *Planner) buildPlan(
	doc *ast.QueryDocument,
	operation *ast.OperationDefinition,
	schemaID scopefilter.SchemaID,
	fingerprint uint64) (*Plan, error) {
	const op errs.Op = "rss.Planner.Plan"

	view, err := p.filter.View(schemaID)
	if err != nil {
		return nil, err
	}

	var kind OperationKind
	switch operation.Operation {
	case ast.Query:
		kind = QueryOperation
	case ast.Mutation:
		kind = MutationOperation
	default:
		return nil, newPlanError(op, PlanErrorInvalidFragment,
			"operation type %q is not supported by the execution core", operation.Operation)
	}

	rootType, err := rootTypeFor(view, kind)
	if err != nil {
		return nil, err
	}

	builder := &planBuilder{
		planner:   p,
		view:      view,
		fragments: doc.Fragments,
		queryRoot: queryRootName(view),
	}
	planned, err := builder.buildSelectionSet(rootType, operation.SelectionSet, map[string]bool{})
	if err != nil {
		return nil, err
	}

	return &Plan{
		Fingerprint:         fingerprint,
		Operation:           kind,
		RootType:            rootType,
		VariableDefinitions: operation.VariableDefinitions,
		Selections:          planned,
	}, nil
}

// queryRootName returns the Query root type's name, honoring custom root type declarations.
func queryRootName(view *scopefilter.View) string {
	if query := view.Schema().Query(); query != nil {
		return query.Name()
	}
	return "Query"
}

// rootTypeFor resolves the root type name for an operation kind, failing when the schema declares
// no such root.
func rootTypeFor(view *scopefilter.View, kind OperationKind) (string, error) {
	const op errs.Op = "rss.rootTypeFor"

	switch kind {
	case MutationOperation:
		mutation := view.Schema().Mutation()
		if mutation == nil {
			return "", errs.New(op, errs.KindSubqueryExecution,
				"schema does not declare a Mutation root type")
		}
		return mutation.Name(), nil
	default:
		query := view.Schema().Query()
		if query == nil {
			return "", errs.New(op, errs.KindSubqueryExecution,
				"schema does not declare a Query root type")
		}
		return query.Name(), nil
	}
}

// planBuilder carries the state of one plan expansion.
type planBuilder struct {
	planner   *Planner
	view      *scopefilter.View
	fragments ast.FragmentDefinitionList
	queryRoot string
}

// buildSelectionSet expands one AST selection set against parentType. visiting guards against
// cyclic RSS declarations (resolver A requiring a field resolved by B whose RSS requires A).
func (b *planBuilder) buildSelectionSet(
	parentType string,
	selections ast.SelectionSet,
	visiting map[string]bool) (*PlannedSelectionSet, error) {
	const op errs.Op = "rss.planBuilder.buildSelectionSet"

	planned := &PlannedSelectionSet{TypeName: parentType}
	byAlias := map[string]*PlannedField{}

	for _, selection := range selections {
		switch selection := selection.(type) {
		case *ast.Field:
			field, err := b.buildField(parentType, selection, visiting)
			if err != nil {
				return nil, err
			}
			if existing, ok := byAlias[field.Alias]; ok {
				// Same response key selected twice: merge sub-selections in textual order.
				if existing.Selections != nil && field.Selections != nil {
					existing.Selections.Fields = append(existing.Selections.Fields, field.Selections.Fields...)
					existing.Selections.Conditional = append(existing.Selections.Conditional, field.Selections.Conditional...)
				}
				continue
			}
			byAlias[field.Alias] = field
			planned.Fields = append(planned.Fields, field)

		case *ast.InlineFragment:
			if err := b.buildFragmentGroup(planned, byAlias, parentType,
				selection.TypeCondition, selection.SelectionSet, visiting); err != nil {
				return nil, err
			}

		case *ast.FragmentSpread:
			def := b.fragments.ForName(selection.Name)
			if def == nil {
				return nil, newPlanError(op, PlanErrorInvalidFragment,
					"fragment %q is spread but never defined", selection.Name)
			}
			if err := b.buildFragmentGroup(planned, byAlias, parentType,
				def.TypeCondition, def.SelectionSet, visiting); err != nil {
				return nil, err
			}
		}
	}

	return planned, nil
}

// buildFragmentGroup expands a typed fragment's selections, inlining them when the condition
// matches the static parent and recording a conditional group otherwise.
func (b *planBuilder) buildFragmentGroup(
	planned *PlannedSelectionSet,
	byAlias map[string]*PlannedField,
	parentType string,
	typeCondition string,
	selections ast.SelectionSet,
	visiting map[string]bool) error {
	const op errs.Op = "rss.planBuilder.buildFragmentGroup"

	if typeCondition == "" || typeCondition == parentType {
		inner, err := b.buildSelectionSet(parentType, selections, visiting)
		if err != nil {
			return err
		}
		for _, field := range inner.Fields {
			if _, ok := byAlias[field.Alias]; ok {
				continue
			}
			byAlias[field.Alias] = field
			planned.Fields = append(planned.Fields, field)
		}
		planned.Conditional = append(planned.Conditional, inner.Conditional...)
		return nil
	}

	if b.view.LookupType(typeCondition) == nil {
		return newPlanError(op, PlanErrorUnknownField,
			"fragment condition references unknown type %q", typeCondition)
	}

	inner, err := b.buildSelectionSet(typeCondition, selections, visiting)
	if err != nil {
		return err
	}
	planned.Conditional = append(planned.Conditional, &ConditionalSelections{
		TypeCondition: typeCondition,
		Selections:    inner,
	})
	return nil
}

// buildField expands a single AST field.
func (b *planBuilder) buildField(
	parentType string,
	astField *ast.Field,
	visiting map[string]bool) (*PlannedField, error) {
	const op errs.Op = "rss.planBuilder.buildField"

	fieldDef, err := b.lookupFieldDef(parentType, astField.Name)
	if err != nil {
		return nil, err
	}

	alias := astField.Alias
	if alias == "" {
		alias = astField.Name
	}

	planned := &PlannedField{
		Alias:      alias,
		Name:       astField.Name,
		ParentType: parentType,
		Def:        fieldDef,
	}

	// @skip / @include.
	for _, directive := range astField.Directives {
		switch directive.Name {
		case "skip", "include":
			arg := directive.Arguments.ForName("if")
			if arg == nil {
				return nil, newPlanError(op, PlanErrorInvalidFragment,
					"@%s on %s.%s requires an `if` argument", directive.Name, parentType, astField.Name)
			}
			lit := literalFromAST(arg.Value)
			if directive.Name == "skip" {
				planned.SkipIf = &lit
			} else {
				planned.IncludeIf = &lit
			}
		}
	}

	// Arguments.
	for _, astArg := range astField.Arguments {
		argDef := lookupArgument(fieldDef, astArg.Name)
		if argDef == nil {
			return nil, newPlanError(op, PlanErrorUnknownField,
				"unknown argument %q on field %s.%s", astArg.Name, parentType, astField.Name)
		}
		planned.Args = append(planned.Args, PlannedArgument{
			Name:  astArg.Name,
			Def:   argDef,
			Value: literalFromAST(astArg.Value),
		})
	}

	// Resolver and checkers. Meta fields never carry either.
	if !strings.HasPrefix(astField.Name, "__") {
		if binding, ok := b.planner.source.ResolverFor(parentType, astField.Name); ok {
			resolver, err := b.buildResolver(parentType, fieldDef, binding, visiting)
			if err != nil {
				return nil, err
			}
			planned.Resolver = resolver
		}
		for _, checker := range b.planner.source.FieldCheckersFor(parentType, astField.Name) {
			built, err := b.buildChecker(parentType, fieldDef, checker, visiting)
			if err != nil {
				return nil, err
			}
			planned.FieldCheckers = append(planned.FieldCheckers, built)
		}
		if named, ok := schema.NamedTypeOf(fieldDef.Type()).(schema.TypeWithName); ok {
			for _, checker := range b.planner.source.TypeCheckersFor(named.Name()) {
				built, err := b.buildChecker(named.Name(), fieldDef, checker, visiting)
				if err != nil {
					return nil, err
				}
				planned.TypeCheckers = append(planned.TypeCheckers, built)
			}
		}
	}

	// Sub-selections.
	namedType := schema.NamedTypeOf(fieldDef.Type())
	if schema.IsCompositeType(namedType) {
		if len(astField.SelectionSet) == 0 {
			return nil, newPlanError(op, PlanErrorInvalidFragment,
				"field %s.%s of composite type requires a sub-selection", parentType, astField.Name)
		}
		subParent := namedType.(schema.TypeWithName).Name()
		sub, err := b.buildSelectionSet(subParent, astField.SelectionSet, visiting)
		if err != nil {
			return nil, err
		}
		planned.Selections = sub
	} else if len(astField.SelectionSet) != 0 {
		return nil, newPlanError(op, PlanErrorInvalidFragment,
			"field %s.%s of leaf type cannot take a sub-selection", parentType, astField.Name)
	}

	return planned, nil
}

// lookupFieldDef resolves a field definition, handling the introspection meta fields.
func (b *planBuilder) lookupFieldDef(parentType, fieldName string) (*schema.Field, error) {
	const op errs.Op = "rss.planBuilder.lookupFieldDef"

	switch fieldName {
	case schema.TypenameMetaFieldName:
		return schema.TypenameMetaFieldDef(), nil
	case schema.SchemaMetaFieldName:
		if parentType == b.queryRoot {
			return schema.SchemaMetaFieldDef(), nil
		}
	case schema.TypeMetaFieldName:
		if parentType == b.queryRoot {
			return schema.TypeMetaFieldDef(), nil
		}
	}

	// Introspection's own types (__Type, __Field, ...) are not part of the central schema's scope
	// tables; look their fields up directly.
	if strings.HasPrefix(parentType, "__") {
		if obj := schema.IntrospectionType(parentType); obj != nil {
			if field, ok := obj.Fields()[fieldName]; ok {
				return field, nil
			}
		}
	}

	field := b.view.LookupField(parentType, fieldName)
	if field == nil {
		return nil, newPlanError(op, PlanErrorUnknownField,
			"field %q is not defined on type %q", fieldName, parentType)
	}
	return field, nil
}

// buildResolver plans a resolver binding's RSS and variable bindings.
func (b *planBuilder) buildResolver(
	parentType string,
	fieldDef *schema.Field,
	binding *ResolverBinding,
	visiting map[string]bool) (*PlannedResolver, error) {
	objectRSS, queryRSS, bindings, err := b.buildSelectionDecl(
		parentType, fieldDef, binding.Decl, visiting, fmt.Sprintf("%s.%s", parentType, fieldDef.Name()))
	if err != nil {
		return nil, err
	}
	return &PlannedResolver{
		Ref:       binding.Ref,
		Batch:     binding.Batch,
		ObjectRSS: objectRSS,
		QueryRSS:  queryRSS,
		Bindings:  bindings,
	}, nil
}

// buildChecker plans a checker binding's RSS and variable bindings.
func (b *planBuilder) buildChecker(
	anchorType string,
	fieldDef *schema.Field,
	binding *CheckerBinding,
	visiting map[string]bool) (*PlannedChecker, error) {
	objectRSS, queryRSS, bindings, err := b.buildSelectionDecl(
		anchorType, fieldDef, binding.Decl, visiting, fmt.Sprintf("check:%s.%s", anchorType, fieldDef.Name()))
	if err != nil {
		return nil, err
	}
	return &PlannedChecker{
		Ref:       binding.Ref,
		ObjectRSS: objectRSS,
		QueryRSS:  queryRSS,
		Bindings:  bindings,
	}, nil
}

// buildSelectionDecl plans the object and query RSS of one declaration plus its variable
// bindings.
func (b *planBuilder) buildSelectionDecl(
	parentType string,
	fieldDef *schema.Field,
	decl SelectionDecl,
	visiting map[string]bool,
	visitKey string) (objectRSS *PlannedRSS, queryRSS *PlannedRSS, bindings []VariableBinding, err error) {
	const op errs.Op = "rss.planBuilder.buildSelectionDecl"

	if visiting[visitKey] {
		return nil, nil, nil, newPlanError(op, PlanErrorInvalidFragment,
			"required selection set of %s is cyclic", visitKey)
	}
	visiting[visitKey] = true
	defer delete(visiting, visitKey)

	if decl.ObjectSelections != "" {
		parsed, err := b.planner.fragments.Parse(decl.ObjectSelections, parentType)
		if err != nil {
			return nil, nil, nil, err
		}
		inner := &planBuilder{
			planner:   b.planner,
			view:      b.view,
			fragments: parsed.Fragments,
			queryRoot: b.queryRoot,
		}
		selections, err := inner.buildSelectionSet(parsed.TypeCondition, parsed.Selections, visiting)
		if err != nil {
			return nil, nil, nil, err
		}
		objectRSS = &PlannedRSS{TypeCondition: parsed.TypeCondition, Selections: selections}
	}

	if decl.QuerySelections != "" {
		parsed, err := b.planner.fragments.Parse(decl.QuerySelections, b.queryRoot)
		if err != nil {
			return nil, nil, nil, err
		}
		inner := &planBuilder{
			planner:   b.planner,
			view:      b.view,
			fragments: parsed.Fragments,
			queryRoot: b.queryRoot,
		}
		selections, err := inner.buildSelectionSet(parsed.TypeCondition, parsed.Selections, visiting)
		if err != nil {
			return nil, nil, nil, err
		}
		queryRSS = &PlannedRSS{TypeCondition: parsed.TypeCondition, Selections: selections}
	}

	for _, varDecl := range decl.Variables {
		binding, err := ParseVariableDecl(varDecl)
		if err != nil {
			return nil, nil, nil, err
		}
		requiredNonNull := variableRequiredNonNull(binding.Name, objectRSS, queryRSS)
		if err := binding.Validate(b.view, fieldDef, parentType, b.queryRoot, requiredNonNull); err != nil {
			return nil, nil, nil, err
		}
		bindings = append(bindings, binding)
	}

	return objectRSS, queryRSS, bindings, nil
}

// variableRequiredNonNull reports whether the named variable is used in a non-null argument
// position anywhere in the planned RSS.
func variableRequiredNonNull(name string, sets ...*PlannedRSS) bool {
	var walk func(set *PlannedSelectionSet) bool
	walk = func(set *PlannedSelectionSet) bool {
		if set == nil {
			return false
		}
		for _, field := range set.Fields {
			for _, arg := range field.Args {
				if arg.Value.Kind == schema.LiteralVariable && arg.Value.VariableName == name &&
					schema.IsNonNullType(arg.Def.Type()) {
					return true
				}
			}
			if walk(field.Selections) {
				return true
			}
		}
		for _, group := range set.Conditional {
			if walk(group.Selections) {
				return true
			}
		}
		return false
	}

	for _, set := range sets {
		if set != nil && walk(set.Selections) {
			return true
		}
	}
	return false
}
