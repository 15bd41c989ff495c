// Conversion of untyped form values into the types of destination fields.
//
// A `Registry` is an ordered table of rules, at most one per target type.
// Lookup is by exact type identity: a rule for `string` does not apply to
// `type Name string`, nor a rule for `int64` to `int`. Fields whose type has
// no rule are meant to be skipped by callers.
//
// Registries are immutable once built and may be shared between goroutines.
package conversion

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/pasqal-io/formmap/assertions/initialized"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// A conversion from an untyped input (typically a string) to a typed value.
//
// Returning `nil, nil` means "no value", i.e. the destination should be
// reset to its zero value.
type Converter func(input any) (any, error)

// A conversion rule for a target type.
type Rule struct {
	Type    reflect.Type
	Convert Converter
}

// An ordered table of rules.
type Registry struct {
	rules   []Rule
	byType  map[reflect.Type]int
	witness initialized.IsInitialized
}

// Build a registry.
//
// Fails if two rules share a target type or if a rule is incomplete.
func NewRegistry(rules ...Rule) (*Registry, error) {
	byType := make(map[reflect.Type]int, len(rules))
	for i, rule := range rules {
		if rule.Type == nil || rule.Convert == nil {
			return nil, fmt.Errorf("incomplete conversion rule at index %d", i)
		}
		if _, exists := byType[rule.Type]; exists {
			return nil, fmt.Errorf("type %s should only have one conversion rule", rule.Type)
		}
		byType[rule.Type] = i
	}
	copied := make([]Rule, len(rules))
	copy(copied, rules)
	return &Registry{
		rules:   copied,
		byType:  byType,
		witness: initialized.Make(),
	}, nil
}

// Build a registry, panicking in case of error.
//
// Use this only for registries built from static tables.
func MustRegistry(rules ...Rule) *Registry {
	registry, err := NewRegistry(rules...)
	if err != nil {
		panic(err)
	}
	return registry
}

// Find the rule for exactly `typ`.
func (r *Registry) Lookup(typ reflect.Type) (Rule, bool) {
	r.witness.Assert()
	index, ok := r.byType[typ]
	if !ok {
		return Rule{}, false //nolint:exhaustruct
	}
	return r.rules[index], true
}

// Return a copy of the rules, in registration order.
func (r *Registry) Rules() []Rule {
	r.witness.Assert()
	result := make([]Rule, len(r.rules))
	copy(result, r.rules)
	return result
}

// Convert `input` into a value of type `typ`.
//
// Returns `false` if there is no rule for `typ`.
func (r *Registry) Convert(typ reflect.Type, input any) (any, bool, error) {
	rule, ok := r.Lookup(typ)
	if !ok {
		return nil, false, nil
	}
	result, err := rule.Convert(input)
	return result, true, err
}

// The process-wide registry: en-US date order, local time zone.
//
// Never mutated after initialization.
var Default = ForLocale(language.AmericanEnglish, time.Local)

// Build a registry with the standard rules, parsing dates as they are
// written in `tag`, in `location`.
func ForLocale(tag language.Tag, location *time.Location) *Registry {
	return MustRegistry(StandardRules(NewDateParser(tag, location))...)
}

// The standard rules, in lookup order.
func StandardRules(dates DateParser) []Rule {
	return []Rule{
		{Type: reflect.TypeFor[string](), Convert: toString},
		{Type: reflect.TypeFor[int16](), Convert: toInt[int16](16)},
		{Type: reflect.TypeFor[int32](), Convert: toInt[int32](32)},
		{Type: reflect.TypeFor[int64](), Convert: toInt[int64](64)},
		{Type: reflect.TypeFor[float32](), Convert: toFloat32},
		{Type: reflect.TypeFor[decimal.Decimal](), Convert: toDecimal},
		{Type: reflect.TypeFor[time.Time](), Convert: dates.toTime},
		{Type: reflect.TypeFor[*time.Time](), Convert: dates.toOptionalTime},
		{Type: reflect.TypeFor[[]string](), Convert: toStrings},
		{Type: reflect.TypeFor[bool](), Convert: toBool},
	}
}

// Return the string form of an untyped input.
//
// Lists of strings are joined with commas, the way repeated form keys are
// presented.
func Text(input any) string {
	switch typed := input.(type) {
	case nil:
		return ""
	case string:
		return typed
	case []string:
		return strings.Join(typed, ",")
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprint(input)
	}
}

func toString(input any) (any, error) {
	return Text(input), nil
}

type integer interface {
	int16 | int32 | int64
}

func toInt[T integer](bitSize int) Converter {
	return func(input any) (any, error) {
		source := strings.TrimSpace(Text(input))
		parsed, err := strconv.ParseInt(source, 10, bitSize)
		if err != nil {
			return nil, fmt.Errorf("expected a %d-bit integer, got %q:\n\t * %w", bitSize, source, err)
		}
		return T(parsed), nil
	}
}

func toFloat32(input any) (any, error) {
	source := strings.TrimSpace(Text(input))
	parsed, err := strconv.ParseFloat(source, 32)
	if err != nil {
		return nil, fmt.Errorf("expected a number, got %q:\n\t * %w", source, err)
	}
	return float32(parsed), nil
}

func toDecimal(input any) (any, error) {
	source := strings.TrimSpace(Text(input))
	parsed, err := decimal.NewFromString(source)
	if err != nil {
		return nil, fmt.Errorf("expected a decimal number, got %q:\n\t * %w", source, err)
	}
	return parsed, nil
}

// Split sequences on commas, without trimming. Anything that is not a
// sequence of text becomes "no value".
func toStrings(input any) (any, error) {
	switch input.(type) {
	case string, []string:
		return strings.Split(Text(input), ","), nil
	default:
		return nil, nil
	}
}

// Any input containing "true", in any case, is true. Note that this
// includes e.g. "falsetrue".
func toBool(input any) (any, error) {
	return strings.Contains(strings.ToLower(Text(input)), "true"), nil
}
