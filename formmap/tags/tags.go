package tags

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/pasqal-io/formmap/assertions/initialized"
)

// The public name that hides a field from form data, e.g. `form:"-"`.
const Ignored = "-"

// A representation of the tags for a given field.
type Tags struct {
	tags    map[string][]string
	witness initialized.IsInitialized
}

func Empty() Tags {
	return Tags{
		tags:    make(map[string][]string),
		witness: initialized.Make(),
	}
}

// Parse the tag associated to a struct field, according to the specs
// of Go tags.
func Parse(tag reflect.StructTag) (Tags, error) {
	tags := make(map[string][]string)
	// Same scanner as reflect.StructTag.Lookup.
	for tag != "" {
		// Skip leading space.
		i := 0
		for i < len(tag) && tag[i] == ' ' {
			i++
		}
		tag = tag[i:]
		if tag == "" {
			break
		}

		// Scan to colon. A space, a quote or a control character is a syntax error.
		i = 0
		for i < len(tag) && tag[i] > ' ' && tag[i] != ':' && tag[i] != '"' && tag[i] != 0x7f {
			i++
		}
		if i == 0 || i+1 >= len(tag) || tag[i] != ':' || tag[i+1] != '"' {
			// Give up on parsing.
			break
		}
		name := string(tag[:i])
		if name == "" {
			return Tags{}, errors.New("invalid tag with empty name")
		}
		if _, exists := tags[name]; exists {
			return Tags{}, fmt.Errorf("invalid tag, name %s should only be defined once", name)
		}

		tag = tag[i+1:]

		// Scan quoted string to find value.
		i = 1
		for i < len(tag) && tag[i] != '"' {
			if tag[i] == '\\' {
				i++
			}
			i++
		}
		if i >= len(tag) {
			break
		}
		qvalue := string(tag[:i+1])
		tag = tag[i+1:]

		list, err := strconv.Unquote(qvalue)
		if err != nil {
			return Tags{}, fmt.Errorf("ill-formed tag %s:\n\t * %w", name, err)
		}

		split := strings.Split(list, ",")
		trimmed := make([]string, 0)
		for _, s := range split {
			t := strings.Trim(s, " ")
			if t != "" {
				trimmed = append(trimmed, t)
			}
		}
		// Make sure that we always have at least an empty string.
		if len(trimmed) == 0 {
			trimmed = append(trimmed, "")
		}
		tags[name] = trimmed
	}
	return Tags{
		tags:    tags,
		witness: initialized.Make(),
	}, nil
}

// Return the public field name for a field.
//
// e.g. for forms, if there's a tag `form:"city"`, this means
// that the field should be looked up as `city`.
//
// Returns nil if there is no renaming, including `form:""`.
func (tags Tags) PublicFieldName(key string) *string {
	tags.witness.Assert()
	result, ok := tags.tags[key]
	if !ok || len(result) == 0 || result[0] == "" {
		return nil
	}
	return &result[0]
}

// Return `true` if this field is hidden from key `key`, i.e. `form:"-"`.
func (tags Tags) IsIgnored(key string) bool {
	name := tags.PublicFieldName(key)
	return name != nil && *name == Ignored
}

// Lookup a key.
func (tags Tags) Lookup(key string) ([]string, bool) {
	tags.witness.Assert()
	result, ok := tags.tags[key]
	return result, ok
}
