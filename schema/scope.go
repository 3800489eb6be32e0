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
	"sort"
	"sync"

	"github.com/willf/bitset"
)

// WildcardScope is the scope id that, matches any requested scope: "A type is in
// scope S iff S is in its declared scope set or the set contains the wildcard *."
const WildcardScope = "*"

// ScopeUniverse interns scope id strings to small integers so that ScopeSet can be backed by a
// willf/bitset.BitSet instead of a map[string]struct{} per type/field -- the same allocator
// pattern the plan cache uses for its LRU slots, applied here to scope ids. A single
// ScopeUniverse is shared by every ScopeSet in one central schema.
type ScopeUniverse struct {
	mu    sync.RWMutex
	ids   map[string]uint
	names []string
}

// NewScopeUniverse creates an empty interner.
func NewScopeUniverse() *ScopeUniverse {
	return &ScopeUniverse{ids: map[string]uint{}}
}

// intern returns the id for name, allocating one if name hasn't been seen before.
func (u *ScopeUniverse) intern(name string) uint {
	u.mu.RLock()
	id, ok := u.ids[name]
	u.mu.RUnlock()
	if ok {
		return id
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if id, ok := u.ids[name]; ok {
		return id
	}
	id = uint(len(u.names))
	u.ids[name] = id
	u.names = append(u.names, name)
	return id
}

// Name returns the scope id string for an interned id.
func (u *ScopeUniverse) Name(id uint) string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.names[id]
}

// NewScopeSet builds a ScopeSet over this universe from a list of scope id strings. An empty
// names list is valid here (it represents "no scopes declared"); an empty set is rejected only
// for a *request's* active scope ids, not for a schema element's declared set.
func (u *ScopeUniverse) NewScopeSet(names ...string) ScopeSet {
	set := ScopeSet{universe: u}
	for _, name := range names {
		if name == WildcardScope {
			set.wildcard = true
			continue
		}
		set.bits.Set(u.intern(name))
	}
	return set
}

// ScopeSet is a finite set of scope ids, either a type/field's declared set or a
// request's active set, interned against a shared ScopeUniverse.
type ScopeSet struct {
	universe *ScopeUniverse
	bits     bitset.BitSet
	wildcard bool
}

// IsWildcard reports whether this set was declared with the `*` wildcard scope.
func (s ScopeSet) IsWildcard() bool {
	return s.wildcard
}

// Empty reports whether the set declares no scopes at all (and isn't the wildcard).
func (s ScopeSet) Empty() bool {
	return !s.wildcard && s.bits.None()
}

// Has reports whether name is a member of the set (ignoring wildcard).
func (s ScopeSet) Has(name string) bool {
	if s.universe == nil {
		return false
	}
	id, ok := s.universe.ids[name]
	if !ok {
		return false
	}
	return s.bits.Test(id)
}

// VisibleUnder reports whether a schema element whose declared scope set is s is visible to a
// request whose active scope ids are active: wildcard always matches, otherwise
// the element is visible iff its declared set intersects the request's active set.
func (s ScopeSet) VisibleUnder(active ScopeSet) bool {
	if s.wildcard {
		return true
	}
	if active.Empty() {
		return false
	}
	return s.bits.IntersectionCardinality(&active.bits) > 0
}

// IsSubsetOf reports whether every scope in s is also in other. The builder uses it to require
// extension scopes to stay within their base type's declared set.
func (s ScopeSet) IsSubsetOf(other ScopeSet) bool {
	if other.wildcard {
		return true
	}
	if s.wildcard {
		return false
	}
	return s.bits.DifferenceCardinality(&other.bits) == 0
}

// Names returns the set's scope ids in sorted order (wildcard, if present, sorts first).
func (s ScopeSet) Names() []string {
	var names []string
	if s.wildcard {
		names = append(names, WildcardScope)
	}
	if s.universe == nil {
		return names
	}
	for i, e := s.bits.NextSet(0); e; i, e = s.bits.NextSet(i + 1) {
		names = append(names, s.universe.Name(i))
	}
	sort.Strings(names[boolToInt(s.wildcard):])
	return names
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
