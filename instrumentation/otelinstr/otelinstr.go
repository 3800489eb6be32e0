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

// Package otelinstr is the default OpenTelemetry-backed Instrumentation: every begin/end pair
// becomes a span on the engine's tracer.
package otelinstr

import (
	"context"
	"fmt"

	"github.com/viaduct-dev/viaduct/instrumentation"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/viaduct-dev/viaduct"

// Setup installs a TracerProvider built from the given options as the process-global provider and
// returns its shutdown function. Embedders that manage their own provider can skip Setup and just
// use New.
func Setup(opts ...sdktrace.TracerProviderOption) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}

// Instrumentation traces execution phases as spans.
type Instrumentation struct {
	tracer trace.Tracer
}

var _ instrumentation.Instrumentation = (*Instrumentation)(nil)

// New creates an Instrumentation on the process-global tracer provider.
func New() *Instrumentation {
	return &Instrumentation{tracer: otel.Tracer(tracerName)}
}

func endSpan(span trace.Span) instrumentation.EndFunc {
	return func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// OperationBegin implements instrumentation.Instrumentation.
func (instr *Instrumentation) OperationBegin(ctx context.Context, info *instrumentation.OperationInfo) instrumentation.EndFunc {
	_, span := instr.tracer.Start(ctx, "graphql.operation",
		trace.WithAttributes(
			attribute.String("graphql.operation.id", info.OperationID),
			attribute.String("graphql.execution.id", info.ExecutionID),
			attribute.String("graphql.operation.type", info.Operation),
			attribute.String("graphql.schema.id", info.SchemaID),
		))
	return endSpan(span)
}

// PlanBegin implements instrumentation.Instrumentation.
func (instr *Instrumentation) PlanBegin(ctx context.Context, info *instrumentation.OperationInfo) instrumentation.EndFunc {
	_, span := instr.tracer.Start(ctx, "graphql.plan",
		trace.WithAttributes(attribute.String("graphql.operation.id", info.OperationID)))
	return endSpan(span)
}

func (instr *Instrumentation) fieldSpan(ctx context.Context, name string, info *instrumentation.FieldInfo) instrumentation.EndFunc {
	_, span := instr.tracer.Start(ctx, name,
		trace.WithAttributes(
			attribute.String("graphql.field.parent", info.TypeName),
			attribute.String("graphql.field.name", info.FieldName),
			attribute.String("graphql.field.path", fmt.Sprint(info.Path)),
		))
	return endSpan(span)
}

// FieldFetchBegin implements instrumentation.Instrumentation.
func (instr *Instrumentation) FieldFetchBegin(ctx context.Context, info *instrumentation.FieldInfo) instrumentation.EndFunc {
	return instr.fieldSpan(ctx, "graphql.field.fetch", info)
}

// FieldCompleteBegin implements instrumentation.Instrumentation.
func (instr *Instrumentation) FieldCompleteBegin(ctx context.Context, info *instrumentation.FieldInfo) instrumentation.EndFunc {
	return instr.fieldSpan(ctx, "graphql.field.complete", info)
}

// AccessCheckBegin implements instrumentation.Instrumentation.
func (instr *Instrumentation) AccessCheckBegin(ctx context.Context, info *instrumentation.FieldInfo) instrumentation.EndFunc {
	return instr.fieldSpan(ctx, "graphql.access_check", info)
}
