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

// DirectiveApplication is an applied directive on a schema element -- a directive *use*, as
// opposed to the Directive type in directive.go which models a directive *definition* (its name,
// locations, and argument shape). An application is plain data, a name with an argument mapping;
// the engine makes decisions about an application purely by pattern-matching on Name and Args --
// there is no reflective directive dispatch.
type DirectiveApplication struct {
	Name string
	Args map[string]Literal
}

// Arg returns the literal bound to an argument name, and whether it was present.
func (d DirectiveApplication) Arg(name string) (Literal, bool) {
	lit, ok := d.Args[name]
	return lit, ok
}

// DirectiveApplicationList is an ordered list of applications on one schema element.
type DirectiveApplicationList []DirectiveApplication

// Lookup returns the first application named name, if any.
func (l DirectiveApplicationList) Lookup(name string) (DirectiveApplication, bool) {
	for _, app := range l {
		if app.Name == name {
			return app, true
		}
	}
	return DirectiveApplication{}, false
}

// Has reports whether an application named name is present.
func (l DirectiveApplicationList) Has(name string) bool {
	_, ok := l.Lookup(name)
	return ok
}

// Well-known directive names recognized by the execution core.
const (
	DirectiveResolver = "resolver"
	DirectiveScope    = "scope"
	DirectiveIdOf     = "idOf"
)
