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
	"hash/fnv"
	"strings"

	"github.com/google/uuid"
)

// ExecutionInput is the request envelope the driver executes.
type ExecutionInput struct {
	// OperationText is the GraphQL source of the operation.
	OperationText string `json:"query"`

	// OperationName selects the operation when the document defines several.
	OperationName string `json:"operationName,omitempty"`

	// OperationID identifies the operation for instrumentation. Required non-blank; Normalize
	// derives it from the text hash when blank.
	OperationID string `json:"operationId,omitempty"`

	// Variables are the operation's variable inputs.
	Variables map[string]interface{} `json:"variables,omitempty"`

	// ExecutionID identifies this execution. Required non-blank; Normalize derives a UUID when
	// blank.
	ExecutionID string `json:"executionId,omitempty"`

	// RequestContext is the embedder-supplied opaque context exposed to resolvers.
	RequestContext interface{} `json:"-"`
}

// Normalize fills the derivable defaults and validates the required fields.
func (input *ExecutionInput) Normalize() error {
	if strings.TrimSpace(input.OperationText) == "" {
		return fmt.Errorf("execution input requires a non-blank operation text")
	}
	if strings.TrimSpace(input.OperationID) == "" {
		h := fnv.New64a()
		h.Write([]byte(input.OperationText))
		input.OperationID = fmt.Sprintf("op-%016x", h.Sum64())
	}
	if strings.TrimSpace(input.ExecutionID) == "" {
		input.ExecutionID = uuid.NewString()
	}
	return nil
}
