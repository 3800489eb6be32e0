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

package driver

import (
	"fmt"
	"sort"

	"github.com/viaduct-dev/viaduct/jsonwriter"
	"github.com/viaduct-dev/viaduct/oer"
)

// GraphQLError is one entry of the response's errors list.
type GraphQLError struct {
	Message    string                 `json:"message"`
	Path       []interface{}          `json:"path,omitempty"`
	Locations  []ErrorLocation        `json:"locations,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

// ErrorLocation points into the operation source.
type ErrorLocation struct {
	Line   uint `json:"line"`
	Column uint `json:"column"`
}

// ExecutionResult is the spec-compliant response shape: data, optional errors sorted by (path,
// message), optional extensions.
type ExecutionResult struct {
	// Data is the result tree; nil when the operation failed before or during root execution.
	Data *oer.OrderedMap

	// Errors is the sorted error list.
	Errors []*GraphQLError

	// Extensions carries vendor data.
	Extensions map[string]interface{}
}

var _ jsonwriter.ValueMarshaler = (*ExecutionResult)(nil)

// HasErrors reports whether any error was collected.
func (result *ExecutionResult) HasErrors() bool {
	return len(result.Errors) > 0
}

// MarshalJSONTo implements jsonwriter.ValueMarshaler, streaming the response JSON shape.
func (result *ExecutionResult) MarshalJSONTo(stream *jsonwriter.Stream) error {
	stream.WriteObjectStart()

	stream.WriteObjectField("data")
	if result.Data == nil {
		stream.WriteNil()
	} else {
		stream.WriteValue(result.Data)
	}

	if len(result.Errors) > 0 {
		stream.WriteMore()
		stream.WriteObjectField("errors")
		stream.WriteArrayStart()
		for i, graphqlErr := range result.Errors {
			if i > 0 {
				stream.WriteMore()
			}
			writeGraphQLError(stream, graphqlErr)
		}
		stream.WriteArrayEnd()
	}

	if len(result.Extensions) > 0 {
		stream.WriteMore()
		stream.WriteObjectField("extensions")
		stream.WriteInterface(result.Extensions)
	}

	stream.WriteObjectEnd()
	return stream.Error()
}

func writeGraphQLError(stream *jsonwriter.Stream, graphqlErr *GraphQLError) {
	stream.WriteObjectStart()
	stream.WriteObjectField("message")
	stream.WriteString(graphqlErr.Message)
	if len(graphqlErr.Path) > 0 {
		stream.WriteMore()
		stream.WriteObjectField("path")
		stream.WriteInterface(graphqlErr.Path)
	}
	if len(graphqlErr.Locations) > 0 {
		stream.WriteMore()
		stream.WriteObjectField("locations")
		stream.WriteArrayStart()
		for i, location := range graphqlErr.Locations {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectStart()
			stream.WriteObjectField("line")
			stream.WriteUint(uint64(location.Line))
			stream.WriteMore()
			stream.WriteObjectField("column")
			stream.WriteUint(uint64(location.Column))
			stream.WriteObjectEnd()
		}
		stream.WriteArrayEnd()
	}
	if len(graphqlErr.Extensions) > 0 {
		stream.WriteMore()
		stream.WriteObjectField("extensions")
		stream.WriteInterface(graphqlErr.Extensions)
	}
	stream.WriteObjectEnd()
}

// MarshalJSON implements json.Marshaler via jsonwriter.
func (result *ExecutionResult) MarshalJSON() ([]byte, error) {
	return jsonwriter.Marshal(result)
}

// sortErrors orders the errors list by (path-lexicographic, message), stably.
func sortErrors(errors []*GraphQLError) {
	sort.SliceStable(errors, func(i, j int) bool {
		cmp := comparePaths(errors[i].Path, errors[j].Path)
		if cmp != 0 {
			return cmp < 0
		}
		return errors[i].Message < errors[j].Message
	})
}

// comparePaths compares response paths lexicographically; field names compare as strings, list
// indices as integers, and an index sorts before a name at the same position.
func comparePaths(a, b []interface{}) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		cmp := comparePathKeys(a[i], b[i])
		if cmp != 0 {
			return cmp
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func comparePathKeys(a, b interface{}) int {
	aIdx, aIsIdx := pathIndex(a)
	bIdx, bIsIdx := pathIndex(b)
	switch {
	case aIsIdx && bIsIdx:
		return aIdx - bIdx
	case aIsIdx:
		return -1
	case bIsIdx:
		return 1
	}
	aName := fmt.Sprint(a)
	bName := fmt.Sprint(b)
	switch {
	case aName < bName:
		return -1
	case aName > bName:
		return 1
	}
	return 0
}

func pathIndex(key interface{}) (int, bool) {
	switch key := key.(type) {
	case int:
		return key, true
	case int64:
		return int(key), true
	}
	return 0, false
}
