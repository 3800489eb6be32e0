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

package oer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/viaduct-dev/viaduct/schema"
)

// FingerprintArguments canonicalizes coerced argument values into a stable string: input-object
// keys are sorted and scalar representations normalized, so two invocations that differ only in
// key order or in equivalent numeric spellings share one OER entry.
func FingerprintArguments(args schema.ArgumentValues) string {
	values := map[string]interface{}{}
	args.Each(func(name string, value interface{}) {
		values[name] = value
	})
	return FingerprintArgumentMap(values)
}

// FingerprintArgumentMap canonicalizes a plain argument map.
func FingerprintArgumentMap(values map[string]interface{}) string {
	var b strings.Builder
	writeCanonicalMapJSON(&b, values)
	return b.String()
}

func writeCanonicalMapJSON(b *strings.Builder, values map[string]interface{}) {
	b.WriteByte('{')
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(name))
		b.WriteByte(':')
		writeCanonicalValue(b, values[name])
	}
	b.WriteByte('}')
}

// writeCanonicalValue normalizes scalar representations: all integer kinds print in base 10, all
// float kinds in the shortest round-trip form, strings quoted, nested maps with sorted keys.
func writeCanonicalValue(b *strings.Builder, value interface{}) {
	switch value := value.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		b.WriteString(strconv.FormatBool(value))
	case string:
		b.WriteString(strconv.Quote(value))
	case int:
		b.WriteString(strconv.FormatInt(int64(value), 10))
	case int8:
		b.WriteString(strconv.FormatInt(int64(value), 10))
	case int16:
		b.WriteString(strconv.FormatInt(int64(value), 10))
	case int32:
		b.WriteString(strconv.FormatInt(int64(value), 10))
	case int64:
		b.WriteString(strconv.FormatInt(value, 10))
	case uint:
		b.WriteString(strconv.FormatUint(uint64(value), 10))
	case uint8:
		b.WriteString(strconv.FormatUint(uint64(value), 10))
	case uint16:
		b.WriteString(strconv.FormatUint(uint64(value), 10))
	case uint32:
		b.WriteString(strconv.FormatUint(uint64(value), 10))
	case uint64:
		b.WriteString(strconv.FormatUint(value, 10))
	case float32:
		b.WriteString(strconv.FormatFloat(float64(value), 'g', -1, 64))
	case float64:
		b.WriteString(strconv.FormatFloat(value, 'g', -1, 64))
	case map[string]interface{}:
		writeCanonicalMapJSON(b, value)
	case []interface{}:
		b.WriteByte('[')
		for i, elem := range value {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonicalValue(b, elem)
		}
		b.WriteByte(']')
	default:
		fmt.Fprintf(b, "%v", value)
	}
}
