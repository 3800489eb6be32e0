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

// DirectiveLocation names a position a directive may be applied at.
type DirectiveLocation string

// The locations of the June 2018 specification.
const (
	DirectiveLocationQuery              DirectiveLocation = "QUERY"
	DirectiveLocationMutation           DirectiveLocation = "MUTATION"
	DirectiveLocationSubscription       DirectiveLocation = "SUBSCRIPTION"
	DirectiveLocationField              DirectiveLocation = "FIELD"
	DirectiveLocationFragmentDefinition DirectiveLocation = "FRAGMENT_DEFINITION"
	DirectiveLocationFragmentSpread     DirectiveLocation = "FRAGMENT_SPREAD"
	DirectiveLocationInlineFragment     DirectiveLocation = "INLINE_FRAGMENT"

	DirectiveLocationSchema               DirectiveLocation = "SCHEMA"
	DirectiveLocationScalar               DirectiveLocation = "SCALAR"
	DirectiveLocationObject               DirectiveLocation = "OBJECT"
	DirectiveLocationFieldDefinition      DirectiveLocation = "FIELD_DEFINITION"
	DirectiveLocationArgumentDefinition   DirectiveLocation = "ARGUMENT_DEFINITION"
	DirectiveLocationInterface            DirectiveLocation = "INTERFACE"
	DirectiveLocationUnion                DirectiveLocation = "UNION"
	DirectiveLocationEnum                 DirectiveLocation = "ENUM"
	DirectiveLocationEnumValue            DirectiveLocation = "ENUM_VALUE"
	DirectiveLocationInputObject          DirectiveLocation = "INPUT_OBJECT"
	DirectiveLocationInputFieldDefinition DirectiveLocation = "INPUT_FIELD_DEFINITION"
)

// DirectiveConfig declares a directive definition.
type DirectiveConfig struct {
	Name        string
	Description string
	Locations   []DirectiveLocation
	Args        ArgumentConfigMap
}

// Directive is a directive definition: its name, valid locations, and argument shape. (Directive
// applications on schema elements are a separate concern; see DirectiveApplication.)
type Directive struct {
	name        string
	description string
	locations   []DirectiveLocation
	args        []Argument
}

// NewDirective builds a directive definition.
func NewDirective(config *DirectiveConfig) (*Directive, error) {
	if config.Name == "" {
		return nil, NewError("a directive requires a name")
	}

	link := newLinker()
	args, err := link.linkArguments("@"+config.Name, "", config.Args)
	if err != nil {
		return nil, err
	}

	return &Directive{
		name:        config.Name,
		description: config.Description,
		locations:   config.Locations,
		args:        args,
	}, nil
}

// MustNewDirective is NewDirective panicking on failure, for package-level definitions.
func MustNewDirective(config *DirectiveConfig) *Directive {
	directive, err := NewDirective(config)
	if err != nil {
		panic(err)
	}
	return directive
}

// Name returns the directive's name.
func (d *Directive) Name() string { return d.name }

// Description returns the directive's documentation.
func (d *Directive) Description() string { return d.description }

// Locations returns where the directive may be applied.
func (d *Directive) Locations() []DirectiveLocation { return d.locations }

// Args returns the directive's argument definitions.
func (d *Directive) Args() []Argument { return d.args }

// String renders the directive in @name notation.
func (d *Directive) String() string { return "@" + d.name }

var (
	skipDirective = MustNewDirective(&DirectiveConfig{
		Name:        "skip",
		Description: "Directs the executor to skip this field or fragment when the `if` argument is true.",
		Locations: []DirectiveLocation{
			DirectiveLocationField,
			DirectiveLocationFragmentSpread,
			DirectiveLocationInlineFragment,
		},
		Args: ArgumentConfigMap{
			"if": {Type: NonNullOfType(Boolean()), Description: "Skipped when true."},
		},
	})

	includeDirective = MustNewDirective(&DirectiveConfig{
		Name:        "include",
		Description: "Directs the executor to include this field or fragment only when the `if` argument is true.",
		Locations: []DirectiveLocation{
			DirectiveLocationField,
			DirectiveLocationFragmentSpread,
			DirectiveLocationInlineFragment,
		},
		Args: ArgumentConfigMap{
			"if": {Type: NonNullOfType(Boolean()), Description: "Included when true."},
		},
	})

	deprecatedDirective = MustNewDirective(&DirectiveConfig{
		Name:        "deprecated",
		Description: "Marks an element of a GraphQL schema as no longer supported.",
		Locations: []DirectiveLocation{
			DirectiveLocationFieldDefinition,
			DirectiveLocationEnumValue,
		},
		Args: ArgumentConfigMap{
			"reason": {
				Type:         T(String()),
				Description:  "Explains why this element was deprecated.",
				DefaultValue: DefaultDeprecationReason,
			},
		},
	})
)

// DefaultDeprecationReason is @deprecated's default reason.
const DefaultDeprecationReason = "No longer supported"

// SkipDirective returns the standard @skip definition.
func SkipDirective() *Directive { return skipDirective }

// IncludeDirective returns the standard @include definition.
func IncludeDirective() *Directive { return includeDirective }

// DeprecatedDirective returns the standard @deprecated definition.
func DeprecatedDirective() *Directive { return deprecatedDirective }

// StandardDirectives returns the directive definitions every schema carries by default.
func StandardDirectives() DirectiveList {
	return DirectiveList{skipDirective, includeDirective, deprecatedDirective}
}
