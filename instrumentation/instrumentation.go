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

// Package instrumentation declares the collaborator interface for observing execution and composes a list of implementations into one. Instrumentations may
// observe every phase but must not change the observable contract.
package instrumentation

import (
	"context"
)

// OperationInfo describes an operation to instrumentation hooks.
type OperationInfo struct {
	OperationID string
	ExecutionID string
	Operation   string // "query" or "mutation"
	SchemaID    string
}

// FieldInfo describes a field event.
type FieldInfo struct {
	TypeName  string
	FieldName string
	Path      []interface{}
}

// EndFunc closes a begin/end pair; err is the phase's failure, if any.
type EndFunc func(err error)

// NopEnd is the EndFunc that does nothing.
func NopEnd(error) {}

// Instrumentation observes execution. Every hook returns the matching end callback; a hook may
// return nil, which the driver treats as NopEnd.
type Instrumentation interface {
	OperationBegin(ctx context.Context, info *OperationInfo) EndFunc
	PlanBegin(ctx context.Context, info *OperationInfo) EndFunc
	FieldFetchBegin(ctx context.Context, info *FieldInfo) EndFunc
	FieldCompleteBegin(ctx context.Context, info *FieldInfo) EndFunc
	AccessCheckBegin(ctx context.Context, info *FieldInfo) EndFunc
}

// Nop is a no-op Instrumentation, convenient for embedding so implementations only override the
// hooks they care about.
type Nop struct{}

var _ Instrumentation = Nop{}

// OperationBegin implements Instrumentation.
func (Nop) OperationBegin(context.Context, *OperationInfo) EndFunc { return NopEnd }

// PlanBegin implements Instrumentation.
func (Nop) PlanBegin(context.Context, *OperationInfo) EndFunc { return NopEnd }

// FieldFetchBegin implements Instrumentation.
func (Nop) FieldFetchBegin(context.Context, *FieldInfo) EndFunc { return NopEnd }

// FieldCompleteBegin implements Instrumentation.
func (Nop) FieldCompleteBegin(context.Context, *FieldInfo) EndFunc { return NopEnd }

// AccessCheckBegin implements Instrumentation.
func (Nop) AccessCheckBegin(context.Context, *FieldInfo) EndFunc { return NopEnd }

// Chain composes a list of instrumentations into one: begins run in list order, ends in reverse
// order, mirroring nested spans.
type Chain []Instrumentation

var _ Instrumentation = Chain(nil)

func (chain Chain) begin(begin func(Instrumentation) EndFunc) EndFunc {
	if len(chain) == 0 {
		return NopEnd
	}
	ends := make([]EndFunc, 0, len(chain))
	for _, instr := range chain {
		end := begin(instr)
		if end == nil {
			end = NopEnd
		}
		ends = append(ends, end)
	}
	return func(err error) {
		for i := len(ends) - 1; i >= 0; i-- {
			ends[i](err)
		}
	}
}

// OperationBegin implements Instrumentation.
func (chain Chain) OperationBegin(ctx context.Context, info *OperationInfo) EndFunc {
	return chain.begin(func(instr Instrumentation) EndFunc { return instr.OperationBegin(ctx, info) })
}

// PlanBegin implements Instrumentation.
func (chain Chain) PlanBegin(ctx context.Context, info *OperationInfo) EndFunc {
	return chain.begin(func(instr Instrumentation) EndFunc { return instr.PlanBegin(ctx, info) })
}

// FieldFetchBegin implements Instrumentation.
func (chain Chain) FieldFetchBegin(ctx context.Context, info *FieldInfo) EndFunc {
	return chain.begin(func(instr Instrumentation) EndFunc { return instr.FieldFetchBegin(ctx, info) })
}

// FieldCompleteBegin implements Instrumentation.
func (chain Chain) FieldCompleteBegin(ctx context.Context, info *FieldInfo) EndFunc {
	return chain.begin(func(instr Instrumentation) EndFunc { return instr.FieldCompleteBegin(ctx, info) })
}

// AccessCheckBegin implements Instrumentation.
func (chain Chain) AccessCheckBegin(ctx context.Context, info *FieldInfo) EndFunc {
	return chain.begin(func(instr Instrumentation) EndFunc { return instr.AccessCheckBegin(ctx, info) })
}

// ErrorReporter is the collaborator resolver exceptions are reported through before conversion
// into GraphQL errors. Implementations must be safe for concurrent use.
type ErrorReporter interface {
	Report(ctx context.Context, err error, info *FieldInfo)
}

// ErrorReporterFunc adapts a function to ErrorReporter.
type ErrorReporterFunc func(ctx context.Context, err error, info *FieldInfo)

// Report calls f.
func (f ErrorReporterFunc) Report(ctx context.Context, err error, info *FieldInfo) {
	f(ctx, err, info)
}

// NopErrorReporter drops reports.
type NopErrorReporter struct{}

// Report implements ErrorReporter.
func (NopErrorReporter) Report(context.Context, error, *FieldInfo) {}
