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

// Package rss implements required-selection-set parsing and the selection planner.
//
// Resolvers and policy checkers declare the data they need before they run as literal GraphQL
// fragments -- a "required selection set" anchored either on the parent object's type or on the
// Query root -- together with a list of variable bindings whose values are drawn from the resolved
// field's arguments, from the parent object, or from the Query root. This package parses and
// caches those fragments (via vektah/gqlparser), statically validates the variable bindings'
// source paths, and expands a top-level operation into an immutable execution Plan that the driver
// walks. Plans are content-addressed and cached in a PlanCache.
package rss
