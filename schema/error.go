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

import (
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Op names the operation that raised an error, usually "package.Func".
type Op string

// ErrKind classifies schema-layer errors.
type ErrKind uint8

// Enumeration of ErrKind.
const (
	ErrKindOther ErrKind = iota
	// ErrKindCoercion marks a value that failed input or result coercion.
	ErrKindCoercion
	// ErrKindSyntax marks a malformed document.
	ErrKindSyntax
	// ErrKindValidation marks an invalid schema; fatal at construction.
	ErrKindValidation
	// ErrKindExecution marks a failure while executing an operation.
	ErrKindExecution
	// ErrKindInternal marks a bug.
	ErrKindInternal
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindCoercion:
		return "coercion error"
	case ErrKindSyntax:
		return "syntax error"
	case ErrKindValidation:
		return "validation error"
	case ErrKindExecution:
		return "execution error"
	case ErrKindInternal:
		return "internal error"
	}
	return "error"
}

// ErrorLocation points into a source document, 1-based.
type ErrorLocation struct {
	Line   uint
	Column uint
}

// ErrorWithLocations lets a wrapped error contribute source locations to the Error built over it.
type ErrorWithLocations interface {
	Locations() []ErrorLocation
}

// ErrorExtensions carries vendor data on an error.
type ErrorExtensions map[string]interface{}

// ErrorWithExtensions lets a wrapped error contribute extensions to the Error built over it.
type ErrorWithExtensions interface {
	Extensions() ErrorExtensions
}

// ResponsePath addresses a position in the response tree: a sequence of field names and list
// indices.
type ResponsePath struct {
	keys []interface{}
}

// Empty reports whether no key was appended.
func (path ResponsePath) Empty() bool {
	return len(path.keys) == 0
}

// AppendFieldName extends the path by a field name.
func (path *ResponsePath) AppendFieldName(name string) {
	path.keys = append(path.keys, name)
}

// AppendIndex extends the path by a list index.
func (path *ResponsePath) AppendIndex(index int) {
	path.keys = append(path.keys, index)
}

// Keys returns the path's keys in order.
func (path ResponsePath) Keys() []interface{} {
	return path.keys
}

// Clone returns an independent copy.
func (path ResponsePath) Clone() ResponsePath {
	return ResponsePath{keys: append([]interface{}(nil), path.keys...)}
}

// String renders the path in dotted/bracketed notation ("user.friends[2].name").
func (path ResponsePath) String() string {
	var b strings.Builder
	for _, key := range path.keys {
		switch key := key.(type) {
		case int:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(key))
			b.WriteByte(']')
		default:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			fmt.Fprint(&b, key)
		}
	}
	return b.String()
}

// MarshalJSON renders the path as the spec's key array.
func (path ResponsePath) MarshalJSON() ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(path.keys)
}

// Error is the schema layer's error value: the response-facing message, locations, path and
// extensions, plus the Op/ErrKind pair for operators reading logs.
type Error struct {
	Message    string
	Locations  []ErrorLocation
	Path       ResponsePath
	Extensions ErrorExtensions

	// Err is the wrapped cause, if any.
	Err error

	Op   Op
	Kind ErrKind
}

var _ error = (*Error)(nil)

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// MarshalJSON renders the spec error shape.
func (e *Error) MarshalJSON() ([]byte, error) {
	shadow := struct {
		Message    string          `json:"message"`
		Locations  []ErrorLocation `json:"locations,omitempty"`
		Path       ResponsePath    `json:"path,omitempty"`
		Extensions ErrorExtensions `json:"extensions,omitempty"`
	}{
		Message:    e.Message,
		Locations:  e.Locations,
		Extensions: e.Extensions,
	}
	if !e.Path.Empty() {
		shadow.Path = e.Path
	}
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(shadow)
}

// NewError builds an *Error (typed as error) from a message plus optional arguments in any
// order: an ErrKind, an Op, a wrapped error, []ErrorLocation, a ResponsePath, ErrorExtensions.
// Locations and extensions not given explicitly are pulled from the wrapped error when it
// implements the corresponding interface.
func NewError(message string, args ...interface{}) error {
	e := &Error{Message: message}
	for _, arg := range args {
		switch arg := arg.(type) {
		case ErrKind:
			e.Kind = arg
		case Op:
			e.Op = arg
		case []ErrorLocation:
			e.Locations = arg
		case ErrorLocation:
			e.Locations = append(e.Locations, arg)
		case ResponsePath:
			e.Path = arg
		case ErrorExtensions:
			e.Extensions = arg
		case error:
			e.Err = arg
		}
	}

	if e.Err != nil {
		if e.Locations == nil {
			if withLocations, ok := e.Err.(ErrorWithLocations); ok {
				e.Locations = withLocations.Locations()
			}
		}
		if e.Extensions == nil {
			if withExtensions, ok := e.Err.(ErrorWithExtensions); ok {
				e.Extensions = withExtensions.Extensions()
			}
		}
	}
	return e
}

// WrapError builds an Error around err with a contextual message prefix.
func WrapError(err error, message string) error {
	return NewError(message+": "+err.Error(), err)
}

// NewSyntaxError builds an ErrKindSyntax error pointing at a document position.
func NewSyntaxError(line, column uint, description string) error {
	return NewError("Syntax Error: "+description, ErrKindSyntax,
		ErrorLocation{Line: line, Column: column})
}

// NewCoercionError builds an ErrKindCoercion error with a formatted message. Coercion failures
// surface as field errors during execution rather than failing the whole request.
func NewCoercionError(format string, args ...interface{}) error {
	return NewError(fmt.Sprintf(format, args...), ErrKindCoercion)
}
