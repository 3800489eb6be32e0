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
	"reflect"
	"strings"

	"github.com/viaduct-dev/viaduct/dispatch"
	"github.com/viaduct-dev/viaduct/rss"
	"github.com/viaduct-dev/viaduct/schema"
)

// defaultResolve resolves a field with no registered resolver from the parent's source value: the
// property of the same name on a map or struct source. An unresolvable field yields null rather
// than an error, matching the permissive default of comparable engines.
func defaultResolve(source interface{}, field *rss.PlannedField) (interface{}, error) {
	switch source := source.(type) {
	case nil:
		return nil, nil

	case *dispatch.NodeReference:
		// A node reference materializes nothing but its id for the producing resolver; every other
		// field must come from a registered resolver downstream.
		if field.Name == "id" {
			return source.ID.InternalID, nil
		}
		return nil, nil

	case map[string]interface{}:
		return source[field.Name], nil

	case schema.ArgumentValues:
		return source.Get(field.Name), nil
	}

	value := reflect.ValueOf(source)
	if value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return nil, nil
		}
		value = value.Elem()
	}

	switch value.Kind() {
	case reflect.Map:
		if value.Type().Key().Kind() == reflect.String {
			entry := value.MapIndex(reflect.ValueOf(field.Name))
			if entry.IsValid() {
				return entry.Interface(), nil
			}
		}
		return nil, nil

	case reflect.Struct:
		return resolveFromStruct(value, field.Name), nil
	}

	return nil, nil
}

// resolveFromStruct matches an exported struct field by exact name, by ExportedCamelCase of the
// GraphQL name, or by a `graphql:"name"` tag.
func resolveFromStruct(value reflect.Value, name string) interface{} {
	structType := value.Type()
	exported := exportedName(name)

	for i := 0; i < structType.NumField(); i++ {
		structField := structType.Field(i)
		if tag, ok := structField.Tag.Lookup("graphql"); ok {
			if tagName := strings.Split(tag, ",")[0]; tagName == name {
				return value.Field(i).Interface()
			}
			continue
		}
		if structField.Name == name || structField.Name == exported {
			return value.Field(i).Interface()
		}
	}
	return nil
}

// exportedName upper-cases the first rune of a GraphQL field name.
func exportedName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
