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

// The five built-in scalars. Result coercion is permissive about Go's integer and float kinds so
// resolvers can return whatever their backends hand them; variable coercion is strict about the
// JSON-decoded shapes the June 2018 specification allows.

import (
	"fmt"
	"math"
	"strconv"
)

// The scalars are plain package-level values (not set in an init func) so that package-level
// directive and introspection definitions referencing them initialize in dependency order.

// Int returns the built-in Int scalar: signed 32-bit integers.
func Int() *Scalar { return intScalar }

// Float returns the built-in Float scalar: finite double-precision values.
func Float() *Scalar { return floatScalar }

// String returns the built-in String scalar.
func String() *Scalar { return stringScalar }

// Boolean returns the built-in Boolean scalar.
func Boolean() *Scalar { return booleanScalar }

// ID returns the built-in ID scalar: opaque identifiers serialized as strings.
func ID() *Scalar { return idScalar }

// asInt64 extracts an integral value from any Go numeric kind.
func asInt64(value interface{}) (int64, bool) {
	switch value := value.(type) {
	case int:
		return int64(value), true
	case int8:
		return int64(value), true
	case int16:
		return int64(value), true
	case int32:
		return int64(value), true
	case int64:
		return value, true
	case uint:
		return int64(value), value <= math.MaxInt64
	case uint8:
		return int64(value), true
	case uint16:
		return int64(value), true
	case uint32:
		return int64(value), true
	case uint64:
		return int64(value), value <= math.MaxInt64
	case float32:
		return int64(value), float32(int64(value)) == value
	case float64:
		return int64(value), float64(int64(value)) == value
	}
	return 0, false
}

// asFloat64 extracts a floating-point value from any Go numeric kind.
func asFloat64(value interface{}) (float64, bool) {
	if i, ok := asInt64(value); ok {
		return float64(i), true
	}
	switch value := value.(type) {
	case float32:
		return float64(value), true
	case float64:
		return value, true
	}
	return 0, false
}

// checkInt32 enforces Int's 32-bit range.
func checkInt32(i int64, value interface{}) (interface{}, error) {
	if i < math.MinInt32 || i > math.MaxInt32 {
		return nil, NewCoercionError("Int cannot represent %s: out of 32-bit range", Inspect(value))
	}
	return int(i), nil
}

func coerceIntResult(value interface{}) (interface{}, error) {
	if i, ok := asInt64(value); ok {
		return checkInt32(i, value)
	}
	if s, ok := value.(string); ok {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return checkInt32(i, value)
		}
	}
	return nil, NewCoercionError("Int cannot represent %s", Inspect(value))
}

func coerceIntVariable(value interface{}) (interface{}, error) {
	// JSON numbers decode as float64; only integral values pass.
	if i, ok := asInt64(value); ok {
		if _, isString := value.(string); !isString {
			return checkInt32(i, value)
		}
	}
	return nil, NewCoercionError("Int cannot represent %s", Inspect(value))
}

func coerceIntArgument(value Literal) (interface{}, error) {
	if value.Kind == LiteralInt {
		if i, err := strconv.ParseInt(value.Raw.(string), 10, 64); err == nil {
			return checkInt32(i, value.Raw)
		}
	}
	return nil, NewCoercionError("Int cannot represent %s", Inspect(value.Interface()))
}

func coerceFloatResult(value interface{}) (interface{}, error) {
	if f, ok := asFloat64(value); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, NewCoercionError("Float cannot represent a non-finite value")
		}
		return f, nil
	}
	if s, ok := value.(string); ok {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, nil
		}
	}
	return nil, NewCoercionError("Float cannot represent %s", Inspect(value))
}

func coerceFloatVariable(value interface{}) (interface{}, error) {
	if _, isString := value.(string); !isString {
		if f, ok := asFloat64(value); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, nil
		}
	}
	return nil, NewCoercionError("Float cannot represent %s", Inspect(value))
}

func coerceFloatArgument(value Literal) (interface{}, error) {
	switch value.Kind {
	case LiteralFloat, LiteralInt:
		if f, err := strconv.ParseFloat(value.Raw.(string), 64); err == nil {
			return f, nil
		}
	}
	return nil, NewCoercionError("Float cannot represent %s", Inspect(value.Interface()))
}

func coerceStringResult(value interface{}) (interface{}, error) {
	switch value := value.(type) {
	case string:
		return value, nil
	case bool:
		return strconv.FormatBool(value), nil
	case fmt.Stringer:
		return value.String(), nil
	}
	if i, ok := asInt64(value); ok {
		return strconv.FormatInt(i, 10), nil
	}
	return nil, NewCoercionError("String cannot represent %s", Inspect(value))
}

func coerceStringVariable(value interface{}) (interface{}, error) {
	if s, ok := value.(string); ok {
		return s, nil
	}
	return nil, NewCoercionError("String cannot represent %s", Inspect(value))
}

func coerceStringArgument(value Literal) (interface{}, error) {
	if value.Kind == LiteralString {
		return value.Raw.(string), nil
	}
	return nil, NewCoercionError("String cannot represent %s", Inspect(value.Interface()))
}

func coerceBooleanResult(value interface{}) (interface{}, error) {
	if b, ok := value.(bool); ok {
		return b, nil
	}
	if i, ok := asInt64(value); ok {
		return i != 0, nil
	}
	return nil, NewCoercionError("Boolean cannot represent %s", Inspect(value))
}

func coerceBooleanVariable(value interface{}) (interface{}, error) {
	if b, ok := value.(bool); ok {
		return b, nil
	}
	return nil, NewCoercionError("Boolean cannot represent %s", Inspect(value))
}

func coerceBooleanArgument(value Literal) (interface{}, error) {
	if value.Kind == LiteralBoolean {
		return value.Raw.(bool), nil
	}
	return nil, NewCoercionError("Boolean cannot represent %s", Inspect(value.Interface()))
}

func coerceIDResult(value interface{}) (interface{}, error) {
	switch value := value.(type) {
	case string:
		return value, nil
	case fmt.Stringer:
		return value.String(), nil
	}
	if i, ok := asInt64(value); ok {
		return strconv.FormatInt(i, 10), nil
	}
	return nil, NewCoercionError("ID cannot represent %s", Inspect(value))
}

func coerceIDVariable(value interface{}) (interface{}, error) {
	if s, ok := value.(string); ok {
		return s, nil
	}
	// Integral numbers are accepted and serialized.
	if i, ok := asInt64(value); ok {
		return strconv.FormatInt(i, 10), nil
	}
	return nil, NewCoercionError("ID cannot represent %s", Inspect(value))
}

func coerceIDArgument(value Literal) (interface{}, error) {
	switch value.Kind {
	case LiteralString:
		return value.Raw.(string), nil
	case LiteralInt:
		return value.Raw.(string), nil
	}
	return nil, NewCoercionError("ID cannot represent %s", Inspect(value.Interface()))
}

var intScalar = &Scalar{
	name: "Int",
	description: "The `Int` scalar type represents non-fractional signed whole numeric " +
		"values. Int can represent values between -(2^31) and 2^31 - 1.",
	coerceResult:   coerceIntResult,
	coerceVariable: coerceIntVariable,
	coerceArgument: coerceIntArgument,
}

var floatScalar = &Scalar{
	name: "Float",
	description: "The `Float` scalar type represents signed double-precision fractional " +
		"values as specified by IEEE 754.",
	coerceResult:   coerceFloatResult,
	coerceVariable: coerceFloatVariable,
	coerceArgument: coerceFloatArgument,
}

var stringScalar = &Scalar{
	name: "String",
	description: "The `String` scalar type represents textual data, represented as UTF-8 " +
		"character sequences.",
	coerceResult:   coerceStringResult,
	coerceVariable: coerceStringVariable,
	coerceArgument: coerceStringArgument,
}

var booleanScalar = &Scalar{
	name:           "Boolean",
	description:    "The `Boolean` scalar type represents `true` or `false`.",
	coerceResult:   coerceBooleanResult,
	coerceVariable: coerceBooleanVariable,
	coerceArgument: coerceBooleanArgument,
}

var idScalar = &Scalar{
	name: "ID",
	description: "The `ID` scalar type represents a unique identifier. It serializes as a " +
		"String, but accepts both string and integer input.",
	coerceResult:   coerceIDResult,
	coerceVariable: coerceIDVariable,
	coerceArgument: coerceIDArgument,
}
