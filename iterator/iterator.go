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

// Package iterator holds the sentinel shared by every pull-style iterator in the module (most
// prominently the schema package's iterables, which drive list completion).
//
// An iterator's Next returns (value, nil) per element and (_, iterator.Done) past the end.
// Signaling the end through the error return instead of an extra (ok bool) lets Next surface real
// failures through the same channel:
//
//	for {
//		v, err := iter.Next()
//		if err == iterator.Done {
//			break
//		} else if err != nil {
//			return err
//		}
//		use(v)
//	}
package iterator

// doneSentinel gives Done a constant, unforgeable identity: a constant of an unexported type
// cannot be reassigned or recreated outside this package, which keeps `err == iterator.Done`
// comparisons sound.
type doneSentinel int

// Error implements the error interface.
func (doneSentinel) Error() string {
	return "no more items in iterator"
}

// Done is returned by an iterator's Next once iteration moved past the final element. It marks
// ordinary exhaustion, not a failure, and is never wrapped; compare with ==.
const Done doneSentinel = 0
