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
	"encoding/json"
	"net/http"

	"github.com/viaduct-dev/viaduct/jsonwriter"
	"github.com/viaduct-dev/viaduct/scopefilter"
)

// HTTPHandler is a thin net/http adapter: it decodes a JSON POST body into an ExecutionInput,
// executes it under a fixed SchemaID, and streams the spec-shaped result. It is deliberately not
// a development server -- no UI, no GET parsing -- just the execution surface.
type HTTPHandler struct {
	Driver   *Driver
	SchemaID scopefilter.SchemaID

	// RequestContextFunc, when set, derives the opaque request context from the HTTP request.
	RequestContextFunc func(r *http.Request) interface{}
}

var _ http.Handler = (*HTTPHandler)(nil)

// ServeHTTP implements http.Handler.
func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var input ExecutionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if h.RequestContextFunc != nil {
		input.RequestContext = h.RequestContextFunc(r)
	}

	result := h.Driver.Execute(r.Context(), input, h.SchemaID)

	w.Header().Set("Content-Type", "application/json")
	stream := jsonwriter.NewStream(w)
	stream.WriteValue(result)
	if err := stream.Flush(); err != nil {
		// The status line is already out; nothing to do but drop the connection.
		return
	}
}
