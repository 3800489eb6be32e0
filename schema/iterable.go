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

import (
	"reflect"

	"github.com/viaduct-dev/viaduct/iterator"
)

// Iterable is recognized by the execution driver in a list-typed field position: the value's
// Iterator drives list completion. Introspection's field/value collections implement it, as can
// any resolver-produced sequence that isn't a plain slice.
type Iterable interface {
	Iterator() Iterator
}

// SizedIterable additionally hints the sequence length, letting consumers pre-allocate.
type SizedIterable interface {
	Iterable
	Size() int
}

// Iterator pulls values one at a time: (value, nil) per element, (_, iterator.Done) past the end.
type Iterator interface {
	Next() (interface{}, error)
}

// mapValuesIterator walks a Go map's values via reflection.
type mapValuesIterator struct {
	iter *reflect.MapIter
}

// Next implements Iterator.
func (it *mapValuesIterator) Next() (interface{}, error) {
	if !it.iter.Next() {
		return nil, iterator.Done
	}
	return it.iter.Value().Interface(), nil
}

// NewMapValuesIterator returns an Iterator over the values of m, which must be a Go map. The map
// must not be mutated during iteration; order is unspecified.
func NewMapValuesIterator(m interface{}) Iterator {
	return &mapValuesIterator{iter: reflect.ValueOf(m).MapRange()}
}

// SliceIterable wraps a Go slice or array as a (sized) Iterable.
type SliceIterable struct {
	s reflect.Value
}

var _ SizedIterable = (*SliceIterable)(nil)

// NewSliceIterable wraps s, which must be a Go slice or array.
func NewSliceIterable(s interface{}) *SliceIterable {
	return &SliceIterable{s: reflect.ValueOf(s)}
}

// Iterator implements Iterable.
func (iterable *SliceIterable) Iterator() Iterator {
	return &sliceIterator{s: iterable.s}
}

// Size implements SizedIterable.
func (iterable *SliceIterable) Size() int {
	return iterable.s.Len()
}

type sliceIterator struct {
	s    reflect.Value
	next int
}

// Next implements Iterator.
func (it *sliceIterator) Next() (interface{}, error) {
	if it.next >= it.s.Len() {
		return nil, iterator.Done
	}
	v := it.s.Index(it.next).Interface()
	it.next++
	return v, nil
}
