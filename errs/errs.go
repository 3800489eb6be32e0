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

// Package errs implements the execution-core error taxonomy: one Kind per failure mode
// that the driver, dispatcher, and policy runner can produce, carried on an Op/Kind/Path error
// value in the same shape as schema.Error's Op/ErrKind (schema/error.go), generalized from one
// ErrKind enum to the nine kinds below.
package errs

import (
	"fmt"
)

// Op describes the operation that produced an error, usually "package.Func".
type Op string

// Kind enumerates the execution-core error taxonomy: one value per failure mode the engine
// distinguishes.
type Kind uint8

// Enumeration of Kind.
const (
	KindOther Kind = iota
	// KindSchemaValidation is fatal to the owning process; raised at schema construction.
	KindSchemaValidation
	// KindPlanBuild is surfaced as a single top-level error; execution data is null.
	KindPlanBuild
	// KindUnrequestedSelection is a programmer error: a resolver accessed a field its RSS didn't
	// declare.
	KindUnrequestedSelection
	// KindResolver wraps any exception thrown by a resolver.
	KindResolver
	// KindBatchContract marks a batch resolver's returned list failing the length/order contract.
	KindBatchContract
	// KindPolicyDenied is produced by a checker.
	KindPolicyDenied
	// KindSubqueryExecution wraps a failure surfaced from ctx.query/ctx.mutation.
	KindSubqueryExecution
	// KindCancelled marks cooperative cancellation.
	KindCancelled
	// KindInternal is any other unhandled engine exception.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindSchemaValidation:
		return "schema validation error"
	case KindPlanBuild:
		return "plan build error"
	case KindUnrequestedSelection:
		return "unrequested selection"
	case KindResolver:
		return "resolver error"
	case KindBatchContract:
		return "batch resolver contract error"
	case KindPolicyDenied:
		return "policy denied"
	case KindSubqueryExecution:
		return "subquery execution error"
	case KindCancelled:
		return "cancelled"
	case KindInternal:
		return "internal error"
	default:
		return "error"
	}
}

// Error is the execution core's error value. Path, when non-empty, is the GraphQL response path
// the error is attributed to.
type Error struct {
	Op      Op
	Kind    Kind
	Path    []interface{}
	Message string
	Err     error
}

var _ error = (*Error)(nil)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

// Unwrap lets errors.Is/errors.As reach the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an *Error from an Op, a Kind, optionally a path, and either a message string or a
// wrapped error (or both).
func New(op Op, kind Kind, args ...interface{}) *Error {
	e := &Error{Op: op, Kind: kind}
	for _, arg := range args {
		switch a := arg.(type) {
		case string:
			e.Message = a
		case error:
			e.Err = a
			if e.Message == "" {
				e.Message = a.Error()
			}
		case []interface{}:
			e.Path = a
		}
	}
	return e
}

// WithPath returns a copy of e with Path set, used when a per-field error bubbles and needs its
// response path attached (or rewritten as it bubbles through an ancestor).
func (e *Error) WithPath(path []interface{}) *Error {
	cp := *e
	cp.Path = path
	return &cp
}

// KindOf extracts the Kind from err's outermost *Error, or KindInternal if err isn't one.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindInternal
}

// HasKind reports whether err, or any error in its Unwrap chain, is an *Error of kind. This lets a
// caller see through wrapping -- e.g. a KindSubqueryExecution error wrapping a KindCancelled one
//.
func HasKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Cancelled reports whether err is, or wraps, a KindCancelled error.
func Cancelled(err error) bool {
	return HasKind(err, KindCancelled)
}

// Internalf builds a KindInternal error with a formatted message, for failures the engine didn't
// anticipate.
func Internalf(op Op, format string, args ...interface{}) *Error {
	return New(op, KindInternal, fmt.Sprintf(format, args...))
}
