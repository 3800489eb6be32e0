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

// Package policy implements the policy check runner: declared checkers gate fields
// and types, consuming their own required selection sets, and produce results that integrate
// with GraphQL null-bubbling. A field whose checker denies is short-circuited to null with the
// error attributed to its path; the resolver never runs.
package policy

import (
	"context"

	"github.com/viaduct-dev/viaduct/dispatch"
	"github.com/viaduct-dev/viaduct/errs"
	"github.com/viaduct-dev/viaduct/flags"
	"github.com/viaduct-dev/viaduct/schema"
)

// CheckType tells a checker whether it gates a field access or a type value.
type CheckType uint8

// Enumeration of CheckType.
const (
	FieldCheck CheckType = iota + 1
	TypeCheck
)

func (t CheckType) String() string {
	if t == TypeCheck {
		return "type"
	}
	return "field"
}

// CheckCtx is the argument to a checker execution: the gated field's arguments, the checker's
// materialized required selections, the embedder request context, and the check type.
type CheckCtx struct {
	context.Context

	Arguments      schema.ArgumentValues
	ObjectValue    *dispatch.TypedView
	QueryValue     *dispatch.TypedView
	RequestContext interface{}
	CheckType      CheckType
}

// Checker is a policy checker attached to a field or a type.
type Checker interface {
	Check(ctx *CheckCtx) CheckerResult
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx *CheckCtx) CheckerResult

// Check calls f(ctx).
func (f CheckerFunc) Check(ctx *CheckCtx) CheckerResult {
	return f(ctx)
}

// CheckerResult is either Success (zero Err) or an Error carrying the denial plus the policy
// governing its propagation.
type CheckerResult struct {
	// Err is nil on success.
	Err error

	// ErrorForResolver decides whether the error short-circuits the field (true: the field nulls
	// and the resolver never runs) or is advisory under the current context. A nil func means
	// always true.
	ErrorForResolver func(ctx *CheckCtx) bool

	// Specificity orders errors for the default Combine: higher wins. Checkers that can articulate
	// a more precise denial (e.g. "this row" over "this table") set it higher.
	Specificity int
}

// Success returns the successful result.
func Success() CheckerResult {
	return CheckerResult{}
}

// Denied builds an error result that always short-circuits the field.
func Denied(err error) CheckerResult {
	return CheckerResult{Err: err}
}

// IsSuccess reports whether the result carries no error.
func (r CheckerResult) IsSuccess() bool {
	return r.Err == nil
}

// IsErrorForResolver reports whether the error should short-circuit the gated field under ctx.
func (r CheckerResult) IsErrorForResolver(ctx *CheckCtx) bool {
	if r.Err == nil {
		return false
	}
	if r.ErrorForResolver == nil {
		return true
	}
	return r.ErrorForResolver(ctx)
}

// Combine merges two results monoidally: success is the identity, and between two errors the
// more specific one wins (ties keep the receiver, preserving registration order).
func (r CheckerResult) Combine(other CheckerResult) CheckerResult {
	if r.Err == nil {
		return other
	}
	if other.Err == nil {
		return r
	}
	if other.Specificity > r.Specificity {
		return other
	}
	return r
}

// DeniedError wraps a checker denial into the engine's error taxonomy with the gated field's
// path attached.
func DeniedError(err error, path []interface{}) *errs.Error {
	if e, ok := err.(*errs.Error); ok && e.Kind == errs.KindPolicyDenied {
		return e.WithPath(path)
	}
	return errs.New("policy.Run", errs.KindPolicyDenied, err).WithPath(path)
}

// Runner executes the checkers attached to one field or type value.
type Runner struct {
	flags flags.Manager
}

// NewRunner creates a Runner gated by the EXECUTE_ACCESS_CHECKS flag.
func NewRunner(flagManager flags.Manager) *Runner {
	if flagManager == nil {
		flagManager = flags.Defaults()
	}
	return &Runner{flags: flagManager}
}

// Enabled reports whether policy enforcement is on.
func (r *Runner) Enabled() bool {
	return r.flags.Enabled(flags.ExecuteAccessChecks)
}

// PreparedCheck pairs a checker with its assembled context; the driver resolves the checker's
// required selections before preparing it.
type PreparedCheck struct {
	Checker Checker
	Ctx     *CheckCtx
}

// Run executes all prepared checks and combines their results. All Success means the gated
// access proceeds. Any error whose policy says it is an error for the resolver short-circuits;
// multiple errors combine per CheckerResult.Combine.
func (r *Runner) Run(checks []PreparedCheck) (result CheckerResult, shortCircuit bool) {
	if !r.Enabled() || len(checks) == 0 {
		return Success(), false
	}

	for _, check := range checks {
		checkResult := check.Checker.Check(check.Ctx)
		if checkResult.Err != nil && checkResult.IsErrorForResolver(check.Ctx) {
			shortCircuit = true
		}
		result = result.Combine(checkResult)
	}
	return result, shortCircuit
}
