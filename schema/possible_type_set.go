/**
 * Copyright (c) 2018, The Artemis Authors.
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

// PossibleTypeSet is the set of concrete Object types that can satisfy an abstract type: an
// Interface's implementors or a Union's members.
type PossibleTypeSet struct {
	types map[*Object]bool
}

// NewPossibleTypeSet creates an empty PossibleTypeSet.
func NewPossibleTypeSet() PossibleTypeSet {
	return PossibleTypeSet{types: map[*Object]bool{}}
}

// Add inserts t into the set.
func (s PossibleTypeSet) Add(t *Object) {
	s.types[t] = true
}

// Has reports whether t is a member of the set.
func (s PossibleTypeSet) Has(t *Object) bool {
	return s.types[t]
}

// Types returns the members of the set in unspecified order.
func (s PossibleTypeSet) Types() []*Object {
	result := make([]*Object, 0, len(s.types))
	for t := range s.types {
		result = append(result, t)
	}
	return result
}

// Size returns the number of types in the set.
func (s PossibleTypeSet) Size() int {
	return len(s.types)
}

// Iterator implements Iterable to loop over the member types.
func (s PossibleTypeSet) Iterator() Iterator {
	return NewSliceIterable(s.Types()).Iterator()
}
