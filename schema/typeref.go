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

// TypeRefKind enumerates the shapes a TypeRef can take.
type TypeRefKind uint8

// Enumeration of TypeRefKind.
const (
	TypeRefNamed TypeRefKind = iota
	TypeRefList
	TypeRefNonNull
)

// TypeRef is a parser-agnostic representation of a type reference written in a GraphQL document
// (a variable definition's type, e.g. `[User!]!`). Like Literal, it decouples Schema.TypeFromAST
// from any particular parser's AST shape; a document parser's collaborator (the rss package)
// translates its own AST type nodes into TypeRef before calling into the type system.
type TypeRef struct {
	Kind TypeRefKind

	// Name holds the referenced named type's name when Kind is TypeRefNamed.
	Name string

	// OfType holds the wrapped type reference when Kind is TypeRefList or TypeRefNonNull.
	OfType *TypeRef
}

// NamedTypeRef returns a TypeRef referencing a named type.
func NamedTypeRef(name string) *TypeRef {
	return &TypeRef{Kind: TypeRefNamed, Name: name}
}

// ListTypeRef returns a TypeRef wrapping of as a list type.
func ListTypeRef(of *TypeRef) *TypeRef {
	return &TypeRef{Kind: TypeRefList, OfType: of}
}

// NonNullTypeRef returns a TypeRef wrapping of as a non-null type.
func NonNullTypeRef(of *TypeRef) *TypeRef {
	return &TypeRef{Kind: TypeRefNonNull, OfType: of}
}
