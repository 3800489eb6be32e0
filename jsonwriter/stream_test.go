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

package jsonwriter_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/viaduct-dev/viaduct/jsonwriter"
)

func render(t *testing.T, emit func(stream *jsonwriter.Stream)) string {
	t.Helper()
	var buf bytes.Buffer
	stream := jsonwriter.NewStream(&buf)
	emit(stream)
	if err := stream.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	return buf.String()
}

func TestStructuralTokens(t *testing.T) {
	got := render(t, func(stream *jsonwriter.Stream) {
		stream.WriteObjectStart()
		stream.WriteObjectField("a")
		stream.WriteInt(-3)
		stream.WriteMore()
		stream.WriteObjectField("b")
		stream.WriteArrayStart()
		stream.WriteBool(true)
		stream.WriteMore()
		stream.WriteNil()
		stream.WriteArrayEnd()
		stream.WriteMore()
		stream.WriteObjectField("c")
		stream.WriteEmptyObject()
		stream.WriteObjectEnd()
	})
	want := `{"a":-3,"b":[true,null],"c":{}}`
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestStringEscaping(t *testing.T) {
	cases := []string{
		"plain",
		`quote " and backslash \`,
		"line\nbreak\ttab\rreturn",
		"control \x01 byte",
		"unicode: héllo, 世界",
		"",
	}
	for _, input := range cases {
		got := render(t, func(stream *jsonwriter.Stream) { stream.WriteString(input) })

		// The emitted form must round-trip through encoding/json to the original string.
		var decoded string
		if err := json.Unmarshal([]byte(got), &decoded); err != nil {
			t.Fatalf("unmarshal %q: %v", got, err)
		}
		if decoded != input {
			t.Fatalf("round-trip of %q produced %q", input, decoded)
		}
	}
}

func TestNumbers(t *testing.T) {
	got := render(t, func(stream *jsonwriter.Stream) {
		stream.WriteArrayStart()
		stream.WriteUint(18446744073709551615)
		stream.WriteMore()
		stream.WriteFloat(3.25)
		stream.WriteArrayEnd()
	})
	if got != `[18446744073709551615,3.25]` {
		t.Fatalf("got %s", got)
	}
}

func TestWriteInterfaceFallsBackToEncodingJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	got := render(t, func(stream *jsonwriter.Stream) {
		stream.WriteInterface(payload{Name: "x"})
	})
	if got != `{"name":"x"}` {
		t.Fatalf("got %s", got)
	}
}

type marshalerValue struct {
	fail bool
}

func (m *marshalerValue) MarshalJSONTo(stream *jsonwriter.Stream) error {
	if m.fail {
		return errors.New("marshal failed")
	}
	stream.WriteObjectStart()
	stream.WriteObjectField("ok")
	stream.WriteBool(true)
	stream.WriteObjectEnd()
	return nil
}

func TestWriteValue(t *testing.T) {
	got := render(t, func(stream *jsonwriter.Stream) {
		stream.WriteValue(&marshalerValue{})
	})
	if got != `{"ok":true}` {
		t.Fatalf("got %s", got)
	}

	// A typed-nil marshaler renders as null.
	got = render(t, func(stream *jsonwriter.Stream) {
		stream.WriteValue((*marshalerValue)(nil))
	})
	if got != "null" {
		t.Fatalf("got %s, want null", got)
	}
}

func TestStickyError(t *testing.T) {
	var buf bytes.Buffer
	stream := jsonwriter.NewStream(&buf)
	stream.WriteValue(&marshalerValue{fail: true})
	if stream.Error() == nil {
		t.Fatal("expected sticky error")
	}
	// Later writes are no-ops and the error survives Flush.
	stream.WriteString("ignored")
	if err := stream.Flush(); err == nil || !strings.Contains(err.Error(), "marshal failed") {
		t.Fatalf("Flush error = %v", err)
	}
}

func TestMarshal(t *testing.T) {
	encoded, err := jsonwriter.Marshal(&marshalerValue{})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(encoded) != `{"ok":true}` {
		t.Fatalf("got %s", encoded)
	}
}
