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

// LiteralKind enumerates the shapes a Literal can take. A Literal is how the schema package
// receives an input value written directly in a GraphQL document (as opposed to one supplied via
// variables), without depending on the AST type of whichever document parser produced it.
type LiteralKind uint8

// Enumeration of LiteralKind.
const (
	LiteralNull LiteralKind = iota
	LiteralInt
	LiteralFloat
	LiteralString
	LiteralBoolean
	LiteralEnum
	LiteralList
	LiteralObject
	LiteralVariable
)

// Literal is a parser-agnostic representation of a value written in a GraphQL document (an
// argument literal, a default value, a directive argument). Coercers on Scalar, Enum and
// InputObject types accept a Literal instead of any particular parser's AST value node, which
// keeps the type system package free of a dependency on the document parser.
//
// A collaborator that parses GraphQL documents (e.g., the rss package) is responsible for
// translating its parser's AST value nodes into Literal before calling into the type system.
type Literal struct {
	Kind LiteralKind

	// Raw holds the literal's scalar payload for LiteralInt, LiteralFloat, LiteralString,
	// LiteralBoolean and LiteralEnum. It is the token text for Int/Float (so coercers can decide
	// how to parse it), the string value for String/Enum, and a bool for Boolean.
	Raw interface{}

	// List holds the literal's elements when Kind is LiteralList.
	List []Literal

	// Fields holds the literal's field values when Kind is LiteralObject.
	Fields map[string]Literal

	// VariableName holds the referenced variable's name when Kind is LiteralVariable.
	VariableName string
}

// IsNull reports whether the literal is the null literal.
func (lit Literal) IsNull() bool {
	return lit.Kind == LiteralNull
}

// Interface returns a best-effort Go representation of the literal for use in error messages. It
// is not a coercion; coercers should switch on Kind instead of relying on this value's type.
func (lit Literal) Interface() interface{} {
	switch lit.Kind {
	case LiteralList:
		return lit.List
	case LiteralObject:
		return lit.Fields
	case LiteralVariable:
		return "$" + lit.VariableName
	default:
		return lit.Raw
	}
}

// NullLiteral returns the Literal representing the null value.
func NullLiteral() Literal {
	return Literal{Kind: LiteralNull}
}

// IntLiteral returns a Literal wrapping an integer token's raw text.
func IntLiteral(raw string) Literal {
	return Literal{Kind: LiteralInt, Raw: raw}
}

// FloatLiteral returns a Literal wrapping a float token's raw text.
func FloatLiteral(raw string) Literal {
	return Literal{Kind: LiteralFloat, Raw: raw}
}

// StringLiteral returns a Literal wrapping a string value.
func StringLiteral(value string) Literal {
	return Literal{Kind: LiteralString, Raw: value}
}

// BooleanLiteral returns a Literal wrapping a boolean value.
func BooleanLiteral(value bool) Literal {
	return Literal{Kind: LiteralBoolean, Raw: value}
}

// EnumLiteral returns a Literal wrapping an enum value's name.
func EnumLiteral(name string) Literal {
	return Literal{Kind: LiteralEnum, Raw: name}
}

// ListLiteral returns a Literal wrapping a list of element literals.
func ListLiteral(elems []Literal) Literal {
	return Literal{Kind: LiteralList, List: elems}
}

// ObjectLiteral returns a Literal wrapping a set of field literals.
func ObjectLiteral(fields map[string]Literal) Literal {
	return Literal{Kind: LiteralObject, Fields: fields}
}

// VariableLiteral returns a Literal referencing a variable by name.
func VariableLiteral(name string) Literal {
	return Literal{Kind: LiteralVariable, VariableName: name}
}
