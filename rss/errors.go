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

	"github.com/viaduct-dev/viaduct/errs"
)

// PlanErrorCode refines errs.KindPlanBuild into the specific planner failure.
type PlanErrorCode uint8

// Enumeration of PlanErrorCode.
const (
	// PlanErrorInvalidFragment marks a resolver fragment that failed to parse or whose anchor type
	// doesn't match its declaration site.
	PlanErrorInvalidFragment PlanErrorCode = iota + 1
	// PlanErrorUnknownField marks a selected field that doesn't exist on its parent type under the
	// requested schema view.
	PlanErrorUnknownField
	// PlanErrorIncompatibleVariableType marks a variable source path terminating on a non-leaf type.
	PlanErrorIncompatibleVariableType
	// PlanErrorListTraversal marks a variable source path traversing a list-typed step.
	PlanErrorListTraversal
	// PlanErrorNullabilityMismatch marks a nullable variable source path bound to a non-null
	// argument position.
	PlanErrorNullabilityMismatch
)

func (code PlanErrorCode) String() string {
	switch code {
	case PlanErrorInvalidFragment:
		return "InvalidFragment"
	case PlanErrorUnknownField:
		return "UnknownField"
	case PlanErrorIncompatibleVariableType:
		return "IncompatibleVariableType"
	case PlanErrorListTraversal:
		return "ListTraversalInVariablePath"
	case PlanErrorNullabilityMismatch:
		return "NullabilityMismatch"
	}
	return "Unknown"
}

// PlanError is the error type produced by fragment parsing, variable binding validation and plan
// building. It always carries errs.KindPlanBuild so the driver can surface it as a single
// top-level error with null data.
type PlanError struct {
	Code PlanErrorCode
	Err  *errs.Error
}

var _ error = (*PlanError)(nil)

// Error implements the error interface.
func (e *PlanError) Error() string {
	return e.Err.Error()
}

// Unwrap exposes the underlying errs.Error.
func (e *PlanError) Unwrap() error {
	return e.Err
}

// newPlanError builds a PlanError with a formatted message.
func newPlanError(op errs.Op, code PlanErrorCode, format string, args ...interface{}) *PlanError {
	return &PlanError{
		Code: code,
		Err: errs.New(op, errs.KindPlanBuild,
			fmt.Sprintf("%s: %s", code, fmt.Sprintf(format, args...))),
	}
}
