/**
 * Copyright (c) 2018, The Artemis Authors.
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
	"encoding/base64"
	"fmt"
	"strings"
)

// ElementKey names a schema element that can carry scope metadata and directive applications --
// metadata the type-system structs themselves have no room for. The Builder keeps it in side
// tables keyed by ElementKey instead of widening every config shape, so modules that never use
// scopes or directive applications declare nothing extra.
type ElementKey struct {
	// TypeName is always set.
	TypeName string
	// FieldName names a field on TypeName. Empty for a type-level key.
	FieldName string
	// EnumValueName names an enum value of TypeName (an Enum). Empty unless this key identifies an
	// enum value.
	EnumValueName string
}

// TypeKey builds an ElementKey naming a type itself.
func TypeKey(typeName string) ElementKey { return ElementKey{TypeName: typeName} }

// FieldKey builds an ElementKey naming a field of a type.
func FieldKey(typeName, fieldName string) ElementKey {
	return ElementKey{TypeName: typeName, FieldName: fieldName}
}

// EnumValueKey builds an ElementKey naming an enum value.
func EnumValueKey(typeName, valueName string) ElementKey {
	return ElementKey{TypeName: typeName, EnumValueName: valueName}
}

// ModuleFragment is a tenant module's contribution to the central schema. A module contributes type
// definitions plus, per element, a declared scope-id list and directive applications.
type ModuleFragment struct {
	// Name identifies the contributing module, used by union-member / interface-implementor
	// visibility validation and by Dependencies below.
	Name string

	// Dependencies lists module names whose types this module's definitions may reference as union
	// members or interface implementors.
	Dependencies []string

	// Types are the TypeDefinition values this module contributes to the central schema.
	Types []TypeDefinition

	// ElementScopes declares the scope-id set for a schema element. A type's own ElementKey
	// (TypeKey) establishes its base scope set. Elements with no entry are unscoped: visible under
	// every requested scope (this is what keeps built-in scalars and introspection types reachable
	// from every scoped schema). A field with no entry inherits its containing type's visibility.
	ElementScopes map[ElementKey][]string

	// ElementDirectives declares applied directives (name + parsed literal args) on a schema
	// element: plain data, no reflective directive discovery.
	ElementDirectives map[ElementKey]DirectiveApplicationList
}

// Builder assembles the central schema from a list of ModuleFragment.
type Builder struct {
	universe *ScopeUniverse
	query    TypeDefinition
	mutation TypeDefinition
	modules  []ModuleFragment
}

// NewBuilder creates a Builder sharing universe for scope-id interning. Pass the same universe to
// every Builder in a process so ScopeSets remain comparable.
func NewBuilder(universe *ScopeUniverse) *Builder {
	return &Builder{universe: universe}
}

// SetQuery sets the central schema's Query root type.
func (b *Builder) SetQuery(query TypeDefinition) *Builder {
	b.query = query
	return b
}

// SetMutation sets the central schema's Mutation root type.
func (b *Builder) SetMutation(mutation TypeDefinition) *Builder {
	b.mutation = mutation
	return b
}

// AddModule registers a tenant module's contribution.
func (b *Builder) AddModule(module ModuleFragment) *Builder {
	b.modules = append(b.modules, module)
	return b
}

// GlobalIDCodec serializes and deserializes the opaque Global ID string. One codec serves a whole
// deployment so ids minted by any tenant API decode anywhere.
type GlobalIDCodec interface {
	Encode(id GlobalID) string
	Decode(opaque string) (GlobalID, error)
}

// GlobalID is a pair (typeName, internalID); equality is structural.
type GlobalID struct {
	TypeName   string
	InternalID string
}

// Base64GlobalIDCodec is the default GlobalIDCodec: it base64-encodes "typeName:internalID" into
// an opaque token.
type Base64GlobalIDCodec struct{}

var _ GlobalIDCodec = Base64GlobalIDCodec{}

// Encode implements GlobalIDCodec.
func (Base64GlobalIDCodec) Encode(id GlobalID) string {
	raw := id.TypeName + ":" + id.InternalID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// Decode implements GlobalIDCodec.
func (Base64GlobalIDCodec) Decode(opaque string) (GlobalID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(opaque)
	if err != nil {
		return GlobalID{}, fmt.Errorf("invalid global id %q: %w", opaque, err)
	}
	s := string(raw)
	i := strings.IndexByte(s, ':')
	if i < 0 {
		return GlobalID{}, fmt.Errorf("invalid global id %q: missing type/id separator", opaque)
	}
	return GlobalID{TypeName: s[:i], InternalID: s[i+1:]}, nil
}

// CentralSchema is the process-wide, immutable-after-construction central schema: the built
// Schema plus the scope/directive side tables Build populated and the module-visibility graph
// used to validate union/interface edges.
type CentralSchema struct {
	Schema

	universe *ScopeUniverse

	scopes     map[ElementKey]ScopeSet
	directives map[ElementKey]DirectiveApplicationList

	moduleOf map[string]string // type name -> contributing module name
	deps     map[string]map[string]bool

	nodeTypes map[string]bool

	codec GlobalIDCodec
}

// Universe returns the ScopeUniverse shared by every ScopeSet this schema hands out.
func (s *CentralSchema) Universe() *ScopeUniverse { return s.universe }

// ScopesOf returns the declared ScopeSet for key, or the empty set if none was declared.
func (s *CentralSchema) ScopesOf(key ElementKey) ScopeSet {
	if set, ok := s.scopes[key]; ok {
		return set
	}
	return s.universe.NewScopeSet()
}

// DirectivesOf returns the directive applications declared on key.
func (s *CentralSchema) DirectivesOf(key ElementKey) DirectiveApplicationList {
	return s.directives[key]
}

// IsNode reports whether typeName is a Node (has a non-null `id: ID!` field).
func (s *CentralSchema) IsNode(typeName string) bool {
	return s.nodeTypes[typeName]
}

// GlobalIDCodec returns the codec this schema uses to serialize Global IDs.
func (s *CentralSchema) GlobalIDCodec() GlobalIDCodec { return s.codec }

// SetGlobalIDCodec overrides the default Base64GlobalIDCodec. Must be called before the schema is
// shared across requests.
func (s *CentralSchema) SetGlobalIDCodec(codec GlobalIDCodec) { s.codec = codec }

// ModuleOf returns the name of the module that contributed typeName, or "" if unknown.
func (s *CentralSchema) ModuleOf(typeName string) string { return s.moduleOf[typeName] }

// ModuleVisibleTo reports whether a type contributed by fromModule may be referenced (as a union
// member or interface implementor) by a definition owned by toModule: fromModule itself, or any
// module toModule transitively depends on.
func (s *CentralSchema) ModuleVisibleTo(fromModule, toModule string) bool {
	if fromModule == toModule {
		return true
	}
	visited := map[string]bool{toModule: true}
	stack := []string{toModule}
	for len(stack) > 0 {
		m := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for dep := range s.deps[m] {
			if dep == fromModule {
				return true
			}
			if !visited[dep] {
				visited[dep] = true
				stack = append(stack, dep)
			}
		}
	}
	return false
}

// Build assembles and validates the central schema. Failures are reported as ErrKindValidation
// errors, fatal to the owning process.
func (b *Builder) Build() (*CentralSchema, error) {
	if b.universe == nil {
		b.universe = NewScopeUniverse()
	}

	cs := &CentralSchema{
		universe:   b.universe,
		scopes:     map[ElementKey]ScopeSet{},
		directives: map[ElementKey]DirectiveApplicationList{},
		moduleOf:   map[string]string{},
		deps:       map[string]map[string]bool{},
		nodeTypes:  map[string]bool{},
		codec:      Base64GlobalIDCodec{},
	}

	var allTypes []TypeDefinition
	for _, m := range b.modules {
		cs.deps[m.Name] = map[string]bool{}
		for _, dep := range m.Dependencies {
			cs.deps[m.Name][dep] = true
		}
		for k, v := range m.ElementScopes {
			cs.scopes[k] = b.universe.NewScopeSet(v...)
		}
		for k, v := range m.ElementDirectives {
			cs.directives[k] = v
		}
		for _, typeDef := range m.Types {
			allTypes = append(allTypes, typeDef)
			if name := typeDefinitionName(typeDef); name != "" {
				cs.moduleOf[name] = m.Name
			}
		}
	}

	built, err := NewSchema(&SchemaConfig{
		Query:    b.query,
		Mutation: b.mutation,
		Types:    allTypes,
	})
	if err != nil {
		return nil, NewError(err.Error(), err, ErrKindValidation)
	}
	cs.Schema = built

	if err := cs.validateExtensionScopes(b.modules); err != nil {
		return nil, err
	}
	if err := cs.validateInterfaceCompleteness(); err != nil {
		return nil, err
	}
	if err := cs.validateModuleVisibility(); err != nil {
		return nil, err
	}
	cs.computeNodeTypes()

	return cs, nil
}

// typeDefinitionName extracts a type's name from whichever *Config shape it is, without requiring
// the definition to have been linked yet.
func typeDefinitionName(t TypeDefinition) string {
	switch c := t.(type) {
	case *ObjectConfig:
		return c.Name
	case *InterfaceConfig:
		return c.Name
	case *UnionConfig:
		return c.Name
	case *EnumConfig:
		return c.Name
	case *InputObjectConfig:
		return c.Name
	case *ScalarConfig:
		return c.Name
	case typeRef:
		if named, ok := c.t.(TypeWithName); ok {
			return named.Name()
		}
	}
	return ""
}

// validateExtensionScopes enforces "scopes used on a type extension are not a subset of those
// declared on the base type": every field/enum-value ElementScopes entry must be a
// subset of its owning type's ElementScopes entry.
func (cs *CentralSchema) validateExtensionScopes(modules []ModuleFragment) error {
	for _, m := range modules {
		for key, ids := range m.ElementScopes {
			if key.FieldName == "" && key.EnumValueName == "" {
				continue // a type-level declaration is the base; nothing to check it against.
			}
			base, ok := cs.scopes[TypeKey(key.TypeName)]
			if !ok {
				continue // no base declared: treat as unrestricted.
			}
			ext := cs.universe.NewScopeSet(ids...)
			if !ext.IsSubsetOf(base) {
				return NewError(
					fmt.Sprintf("type extension scope for %s is not a subset of %s's declared scope set",
						elementDescription(key), key.TypeName),
					ErrKindValidation)
			}
		}
	}
	return nil
}

func elementDescription(key ElementKey) string {
	switch {
	case key.FieldName != "":
		return fmt.Sprintf("%s.%s", key.TypeName, key.FieldName)
	case key.EnumValueName != "":
		return fmt.Sprintf("%s.%s", key.TypeName, key.EnumValueName)
	default:
		return key.TypeName
	}
}

// validateInterfaceCompleteness enforces "an object implements an interface but omits one of the
// interface's required fields at a narrower scope".
func (cs *CentralSchema) validateInterfaceCompleteness() error {
	for _, t := range cs.Schema.TypeMap().types {
		obj, ok := t.(*Object)
		if !ok {
			continue
		}
		for _, iface := range obj.Interfaces() {
			for fieldName := range iface.Fields() {
				if _, has := obj.Fields()[fieldName]; !has {
					return NewError(fmt.Sprintf(
						"%s implements %s but is missing required field %q",
						obj.Name(), iface.Name(), fieldName), ErrKindValidation)
				}
				ifaceFieldScope := cs.ScopesOf(FieldKey(iface.Name(), fieldName))
				objFieldScope := cs.ScopesOf(FieldKey(obj.Name(), fieldName))
				if !ifaceFieldScope.IsSubsetOf(objFieldScope) {
					return NewError(fmt.Sprintf(
						"%s.%s narrows the scope of %s.%s required by the interface",
						obj.Name(), fieldName, iface.Name(), fieldName), ErrKindValidation)
				}
			}
		}
	}
	return nil
}

// validateModuleVisibility enforces "a union member or interface implementor is defined in a
// module that is not transitively visible to the definer of the union/interface".
func (cs *CentralSchema) validateModuleVisibility() error {
	for _, t := range cs.Schema.TypeMap().types {
		switch abstract := t.(type) {
		case *Interface:
			definerModule := cs.moduleOf[abstract.Name()]
			set := cs.Schema.PossibleTypes(abstract)
			for _, member := range set.Types() {
				memberModule := cs.moduleOf[member.Name()]
				if !cs.ModuleVisibleTo(memberModule, definerModule) {
					return NewError(fmt.Sprintf(
						"%s implements %s but %s's module %q is not visible to %q",
						member.Name(), abstract.Name(), member.Name(), memberModule, definerModule),
						ErrKindValidation)
				}
			}
		case *Union:
			definerModule := cs.moduleOf[abstract.Name()]
			set := cs.Schema.PossibleTypes(abstract)
			for _, member := range set.Types() {
				memberModule := cs.moduleOf[member.Name()]
				if !cs.ModuleVisibleTo(memberModule, definerModule) {
					return NewError(fmt.Sprintf(
						"%s is a member of %s but %s's module %q is not visible to %q",
						member.Name(), abstract.Name(), member.Name(), memberModule, definerModule),
						ErrKindValidation)
				}
			}
		}
	}
	return nil
}

// computeNodeTypes marks every Object with a non-null `id: ID!` field as a Node.
func (cs *CentralSchema) computeNodeTypes() {
	for _, t := range cs.Schema.TypeMap().types {
		obj, ok := t.(*Object)
		if !ok {
			continue
		}
		idField, has := obj.Fields()["id"]
		if !has {
			continue
		}
		nonNull, ok := idField.Type().(*NonNull)
		if !ok {
			continue
		}
		if namedType, ok := nonNull.InnerType().(TypeWithName); ok && namedType.Name() == "ID" {
			cs.nodeTypes[obj.Name()] = true
		}
	}
}
