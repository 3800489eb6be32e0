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

// Package dispatch owns the protocol for invoking user resolvers: the registry populated at
// startup, the injection interface that constructs resolver instances per invocation, the typed
// views a resolver reads its required selections through, and the per-request batch coalescer.
// There is no reflective resolver discovery; everything dispatches through the explicit registry
// keyed by (type, field).
package dispatch

import (
	"fmt"
	"sync"

	"github.com/viaduct-dev/viaduct/errs"
	"github.com/viaduct-dev/viaduct/rss"
)

// Resolver computes one field's value.
type Resolver interface {
	Resolve(ctx *Ctx) (interface{}, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx *Ctx) (interface{}, error)

// Resolve calls f(ctx).
func (f ResolverFunc) Resolve(ctx *Ctx) (interface{}, error) {
	return f(ctx)
}

// BatchResolver computes values for every context that arrived in one tick. The returned list
// must have the same length and ordering as ctxs.
type BatchResolver interface {
	BatchResolve(ctxs []*Ctx) ([]FieldValue, error)
}

// BatchResolverFunc adapts a function to BatchResolver.
type BatchResolverFunc func(ctxs []*Ctx) ([]FieldValue, error)

// BatchResolve calls f(ctxs).
func (f BatchResolverFunc) BatchResolve(ctxs []*Ctx) ([]FieldValue, error) {
	return f(ctxs)
}

// ResolverFactory constructs a fresh resolver instance. It is the Go rendering of the source
// system's zero-argument constructor path.
type ResolverFactory func() (interface{}, error)

// Registration is one resolver's entry in the Registry: the marker metadata (typeName, fieldName)
// plus the declared required selection sets and the construction recipe.
type Registration struct {
	// TypeName and FieldName key the registration. Node resolvers register with FieldName "" and
	// are keyed by TypeName alone.
	TypeName  string
	FieldName string

	// ObjectSelections, QuerySelections and Variables are the literal declared metadata.
	ObjectSelections string
	QuerySelections  string
	Variables        []rss.VariableDecl

	// Batch marks the resolver as batching: instances must implement BatchResolver instead of
	// Resolver.
	Batch bool

	// Factory constructs instances. The default Provider requires it; an embedder-supplied
	// Provider may ignore it.
	Factory ResolverFactory
}

// decl converts the registration's literal metadata into the planner's form.
func (r *Registration) decl() rss.SelectionDecl {
	return rss.SelectionDecl{
		ObjectSelections: r.ObjectSelections,
		QuerySelections:  r.QuerySelections,
		Variables:        r.Variables,
	}
}

// Provider is the embedder-supplied injection interface: it returns a fresh resolver instance per
// invocation.
type Provider interface {
	New(registration *Registration) (interface{}, error)
}

// DefaultProvider constructs instances through Registration.Factory, failing with an
// errs.KindResolver error when no factory was registered.
type DefaultProvider struct{}

var _ Provider = DefaultProvider{}

// New implements Provider.
func (DefaultProvider) New(registration *Registration) (interface{}, error) {
	if registration.Factory == nil {
		return nil, errs.New("dispatch.DefaultProvider.New", errs.KindResolver,
			fmt.Sprintf("no factory registered to construct the resolver for %s.%s",
				registration.TypeName, registration.FieldName))
	}
	instance, err := registration.Factory()
	if err != nil {
		return nil, errs.New("dispatch.DefaultProvider.New", errs.KindResolver,
			fmt.Sprintf("constructing resolver for %s.%s", registration.TypeName, registration.FieldName), err)
	}
	return instance, nil
}

// CheckerRegistration is one policy checker's entry: its declared required selections plus the
// checker instance itself (opaque to this package; the policy runner owns its type).
type CheckerRegistration struct {
	// TypeName keys a type-level checker; TypeName+FieldName key a field-level checker.
	TypeName  string
	FieldName string

	ObjectSelections string
	QuerySelections  string
	Variables        []rss.VariableDecl

	// Checker is the policy checker instance.
	Checker interface{}
}

func (r *CheckerRegistration) decl() rss.SelectionDecl {
	return rss.SelectionDecl{
		ObjectSelections: r.ObjectSelections,
		QuerySelections:  r.QuerySelections,
		Variables:        r.Variables,
	}
}

// Registry is the startup-populated dispatch table keyed by (type, field). It implements
// rss.ResolverSource so the planner can discover resolvers and checkers while remaining ignorant
// of their implementations. Registration happens before serving; lookups take the same mutex
// as registration.
type Registry struct {
	mu            sync.Mutex
	resolvers     map[registryKey]*Registration
	fieldCheckers map[registryKey][]*CheckerRegistration
	typeCheckers  map[string][]*CheckerRegistration
}

type registryKey struct {
	typeName  string
	fieldName string
}

var _ rss.ResolverSource = (*Registry)(nil)

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		resolvers:     map[registryKey]*Registration{},
		fieldCheckers: map[registryKey][]*CheckerRegistration{},
		typeCheckers:  map[string][]*CheckerRegistration{},
	}
}

// Register adds a resolver registration. Registering the same (type, field) twice fails: each
// field has at most one owning resolver.
func (r *Registry) Register(registration *Registration) error {
	key := registryKey{registration.TypeName, registration.FieldName}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.resolvers[key]; exists {
		return errs.New("dispatch.Registry.Register", errs.KindInternal,
			fmt.Sprintf("resolver for %s.%s registered twice", registration.TypeName, registration.FieldName))
	}
	r.resolvers[key] = registration
	return nil
}

// MustRegister is Register panicking on failure, for startup wiring.
func (r *Registry) MustRegister(registration *Registration) {
	if err := r.Register(registration); err != nil {
		panic(err)
	}
}

// RegisterFieldChecker attaches a checker to (type, field).
func (r *Registry) RegisterFieldChecker(registration *CheckerRegistration) {
	key := registryKey{registration.TypeName, registration.FieldName}
	r.mu.Lock()
	r.fieldCheckers[key] = append(r.fieldCheckers[key], registration)
	r.mu.Unlock()
}

// RegisterTypeChecker attaches a checker to every value of a type.
func (r *Registry) RegisterTypeChecker(registration *CheckerRegistration) {
	r.mu.Lock()
	r.typeCheckers[registration.TypeName] = append(r.typeCheckers[registration.TypeName], registration)
	r.mu.Unlock()
}

// ResolverFor implements rss.ResolverSource.
func (r *Registry) ResolverFor(typeName, fieldName string) (*rss.ResolverBinding, bool) {
	r.mu.Lock()
	registration, ok := r.resolvers[registryKey{typeName, fieldName}]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	return &rss.ResolverBinding{
		Decl:  registration.decl(),
		Batch: registration.Batch,
		Ref:   registration,
	}, true
}

// FieldCheckersFor implements rss.ResolverSource.
func (r *Registry) FieldCheckersFor(typeName, fieldName string) []*rss.CheckerBinding {
	r.mu.Lock()
	registrations := r.fieldCheckers[registryKey{typeName, fieldName}]
	r.mu.Unlock()
	return checkerBindings(registrations)
}

// TypeCheckersFor implements rss.ResolverSource.
func (r *Registry) TypeCheckersFor(typeName string) []*rss.CheckerBinding {
	r.mu.Lock()
	registrations := r.typeCheckers[typeName]
	r.mu.Unlock()
	return checkerBindings(registrations)
}

func checkerBindings(registrations []*CheckerRegistration) []*rss.CheckerBinding {
	if len(registrations) == 0 {
		return nil
	}
	bindings := make([]*rss.CheckerBinding, len(registrations))
	for i, registration := range registrations {
		bindings[i] = &rss.CheckerBinding{
			Decl: registration.decl(),
			Ref:  registration,
		}
	}
	return bindings
}
