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

// Package jsonwriter streams JSON without building an intermediate document tree: the execution
// result marshaler walks its data once and emits tokens directly into a buffered writer. The
// token-level API (WriteObjectStart / WriteObjectField / WriteMore / ...) exists because the
// response's key order is semantically meaningful and must not pass through a Go map.
package jsonwriter

import (
	"encoding/json"
	"io"
	"reflect"
	"strconv"
	"unicode/utf8"
)

// Stream emits JSON tokens into an io.Writer through an internal buffer. Errors are sticky: the
// first failure is retained and every later call becomes a no-op, so call sites check Error (or
// Flush) once at the end instead of after every token.
type Stream struct {
	w   io.Writer
	buf []byte
	err error
}

// flushThreshold is the buffer size at which a write to the underlying writer is forced.
const flushThreshold = 4096

// NewStream creates a Stream writing to w.
func NewStream(w io.Writer) *Stream {
	return &Stream{
		w:   w,
		buf: make([]byte, 0, flushThreshold),
	}
}

// Error returns the sticky error, if any write failed.
func (stream *Stream) Error() error {
	return stream.err
}

// Flush forces buffered bytes out to the underlying writer and returns the sticky error.
func (stream *Stream) Flush() error {
	if stream.err != nil {
		return stream.err
	}
	if len(stream.buf) > 0 {
		if _, err := stream.w.Write(stream.buf); err != nil {
			stream.err = err
		}
		stream.buf = stream.buf[:0]
	}
	return stream.err
}

// push appends raw bytes, flushing when the buffer runs large.
func (stream *Stream) push(b ...byte) {
	if stream.err != nil {
		return
	}
	stream.buf = append(stream.buf, b...)
	if len(stream.buf) >= flushThreshold {
		stream.Flush()
	}
}

// pushString appends a raw (pre-encoded) string.
func (stream *Stream) pushString(s string) {
	if stream.err != nil {
		return
	}
	stream.buf = append(stream.buf, s...)
	if len(stream.buf) >= flushThreshold {
		stream.Flush()
	}
}

// Structural tokens.

// WriteObjectStart emits '{'.
func (stream *Stream) WriteObjectStart() { stream.push('{') }

// WriteObjectEnd emits '}'.
func (stream *Stream) WriteObjectEnd() { stream.push('}') }

// WriteEmptyObject emits '{}'.
func (stream *Stream) WriteEmptyObject() { stream.push('{', '}') }

// WriteArrayStart emits '['.
func (stream *Stream) WriteArrayStart() { stream.push('[') }

// WriteArrayEnd emits ']'.
func (stream *Stream) WriteArrayEnd() { stream.push(']') }

// WriteMore emits the ',' between members.
func (stream *Stream) WriteMore() { stream.push(',') }

// WriteObjectField emits the quoted field name followed by ':'.
func (stream *Stream) WriteObjectField(field string) {
	stream.WriteString(field)
	stream.push(':')
}

// Scalars.

// WriteNil emits JSON null.
func (stream *Stream) WriteNil() { stream.pushString("null") }

// WriteBool emits a JSON boolean.
func (stream *Stream) WriteBool(b bool) {
	stream.pushString(strconv.FormatBool(b))
}

// WriteInt emits a signed integer.
func (stream *Stream) WriteInt(i int64) {
	if stream.err != nil {
		return
	}
	stream.buf = strconv.AppendInt(stream.buf, i, 10)
}

// WriteUint emits an unsigned integer.
func (stream *Stream) WriteUint(i uint64) {
	if stream.err != nil {
		return
	}
	stream.buf = strconv.AppendUint(stream.buf, i, 10)
}

// WriteFloat emits a float in the shortest round-trip form.
func (stream *Stream) WriteFloat(f float64) {
	if stream.err != nil {
		return
	}
	stream.buf = strconv.AppendFloat(stream.buf, f, 'g', -1, 64)
}

const hexDigits = "0123456789abcdef"

// WriteString emits s as a JSON string with RFC 8259 escaping. The common all-safe case copies
// the string in one append.
func (stream *Stream) WriteString(s string) {
	if stream.err != nil {
		return
	}

	stream.push('"')
	start := 0
	for i := 0; i < len(s); {
		b := s[i]
		if b >= utf8.RuneSelf {
			// Multi-byte runes pass through untouched; JSON strings are UTF-8.
			_, size := utf8.DecodeRuneInString(s[i:])
			i += size
			continue
		}
		if b >= 0x20 && b != '"' && b != '\\' {
			i++
			continue
		}

		stream.pushString(s[start:i])
		switch b {
		case '"':
			stream.push('\\', '"')
		case '\\':
			stream.push('\\', '\\')
		case '\n':
			stream.push('\\', 'n')
		case '\r':
			stream.push('\\', 'r')
		case '\t':
			stream.push('\\', 't')
		default:
			stream.push('\\', 'u', '0', '0', hexDigits[b>>4], hexDigits[b&0xF])
		}
		i++
		start = i
	}
	stream.pushString(s[start:])
	stream.push('"')
}

// ValueMarshaler is implemented by values that stream themselves.
type ValueMarshaler interface {
	MarshalJSONTo(stream *Stream) error
}

// WriteValue writes a value that implements ValueMarshaler, treating a typed-nil pointer as null
// the way encoding/json does.
func (stream *Stream) WriteValue(marshaler ValueMarshaler) {
	if stream.err != nil {
		return
	}
	if v := reflect.ValueOf(marshaler); v.Kind() == reflect.Ptr && v.IsNil() {
		stream.WriteNil()
		return
	}
	if err := marshaler.MarshalJSONTo(stream); err != nil && stream.err == nil {
		stream.err = err
	}
}

// WriteInterface writes an arbitrary value: the JSON-native kinds are emitted directly, and
// anything else round-trips through encoding/json.
func (stream *Stream) WriteInterface(v interface{}) {
	if stream.err != nil {
		return
	}

	switch v := v.(type) {
	case nil:
		stream.WriteNil()
	case bool:
		stream.WriteBool(v)
	case string:
		stream.WriteString(v)
	case int:
		stream.WriteInt(int64(v))
	case int8:
		stream.WriteInt(int64(v))
	case int16:
		stream.WriteInt(int64(v))
	case int32:
		stream.WriteInt(int64(v))
	case int64:
		stream.WriteInt(v)
	case uint:
		stream.WriteUint(uint64(v))
	case uint8:
		stream.WriteUint(uint64(v))
	case uint16:
		stream.WriteUint(uint64(v))
	case uint32:
		stream.WriteUint(uint64(v))
	case uint64:
		stream.WriteUint(v)
	case float32:
		stream.WriteFloat(float64(v))
	case float64:
		stream.WriteFloat(v)
	case ValueMarshaler:
		stream.WriteValue(v)
	case []interface{}:
		stream.WriteArrayStart()
		for i, elem := range v {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteInterface(elem)
		}
		stream.WriteArrayEnd()
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			if stream.err == nil {
				stream.err = err
			}
			return
		}
		stream.pushString(string(encoded))
	}
}

// Marshal renders a ValueMarshaler to bytes, adapting the streaming API to encoding/json-style
// call sites (a type's MarshalJSON can simply return jsonwriter.Marshal(v)).
func Marshal(v ValueMarshaler) ([]byte, error) {
	if value := reflect.ValueOf(v); value.Kind() == reflect.Ptr && value.IsNil() {
		return []byte("null"), nil
	}

	var sink sliceWriter
	stream := NewStream(&sink)
	stream.WriteValue(v)
	if err := stream.Flush(); err != nil {
		return nil, err
	}
	return sink, nil
}

// sliceWriter is the minimal io.Writer for Marshal.
type sliceWriter []byte

func (w *sliceWriter) Write(p []byte) (int, error) {
	*w = append(*w, p...)
	return len(p), nil
}
