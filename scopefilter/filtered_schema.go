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

package scopefilter

import (
	"sync"

	"github.com/viaduct-dev/viaduct/schema"
)

// filteredSchema presents a View as a schema.Schema, so introspection resolvers operating on a
// Schema source only ever see in-scope types and interface/union edges. Built lazily, once per
// View.
type filteredSchema struct {
	view *View

	once    sync.Once
	typeMap schema.TypeMap
}

var _ schema.Schema = (*filteredSchema)(nil)

// FilteredSchema returns a schema.Schema whose type map and possible-type sets reflect this
// view's visibility, suitable as the source value for introspection fields.
func (v *View) FilteredSchema() schema.Schema {
	if v.id.Kind == SchemaIDFull {
		return v.central.Schema
	}
	return &filteredSchema{view: v}
}

func (fs *filteredSchema) buildTypeMap() {
	fs.once.Do(func() {
		visible := map[string]schema.Type{}
		iter := fs.view.central.TypeMap().Iterator()
		for {
			value, err := iter.Next()
			if err != nil {
				break
			}
			t := value.(schema.Type)
			named, ok := t.(schema.TypeWithName)
			if !ok {
				continue
			}
			if fs.view.LookupType(named.Name()) == nil {
				continue
			}
			visible[named.Name()] = t
		}
		fs.typeMap = schema.NewTypeMap(visible)
	})
}

// TypeMap implements schema.Schema.
func (fs *filteredSchema) TypeMap() schema.TypeMap {
	fs.buildTypeMap()
	return fs.typeMap
}

// Directives implements schema.Schema; directive definitions are not scope-filtered.
func (fs *filteredSchema) Directives() schema.DirectiveList {
	return fs.view.central.Directives()
}

// Query implements schema.Schema.
func (fs *filteredSchema) Query() *schema.Object {
	return fs.view.central.Query()
}

// Mutation implements schema.Schema.
func (fs *filteredSchema) Mutation() *schema.Object {
	return fs.view.central.Mutation()
}

// Subscription implements schema.Schema.
func (fs *filteredSchema) Subscription() *schema.Object {
	return fs.view.central.Subscription()
}

// PossibleTypes implements schema.Schema, dropping out-of-scope members.
func (fs *filteredSchema) PossibleTypes(t schema.AbstractType) schema.PossibleTypeSet {
	set := schema.NewPossibleTypeSet()
	for _, member := range fs.view.PossibleTypes(t) {
		set.Add(member)
	}
	return set
}

// TypeFromAST implements schema.Schema.
func (fs *filteredSchema) TypeFromAST(t *schema.TypeRef) schema.Type {
	return fs.view.central.TypeFromAST(t)
}
