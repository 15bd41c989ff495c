// Resolution of dotted field paths (e.g. `Address.City`) against Go values.
//
// A path is resolved once, from the root down to the struct that contains
// the last segment. The resulting `FieldHandle` is used both to inspect the
// declared type of the field and to write it, so reads and writes always
// target the same object.
//
// Missing intermediates are never allocated: if `Address` is a nil pointer,
// `Address.City` does not resolve. Callers must pre-initialize nested
// structs they expect to receive data.
package path

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/pasqal-io/formmap/assertions/initialized"
	tagsPkg "github.com/pasqal-io/formmap/formmap/tags"
)

// The separator between segments of a path.
const Separator = "."

// An ordered, non-empty sequence of field names.
type FieldPath []string

// Split a key into a path.
//
// Returns `false` if the key is empty or contains an empty segment
// (e.g. "Address..City" or ".City"). Such keys cannot name a field.
func Parse(key string) (FieldPath, bool) {
	if key == "" {
		return nil, false
	}
	segments := strings.Split(key, Separator)
	for _, segment := range segments {
		if segment == "" {
			return nil, false
		}
	}
	return FieldPath(segments), true
}

func (p FieldPath) String() string {
	return strings.Join(p, Separator)
}

// The fields of a struct type, indexed by public name.
type record struct {
	fields map[string]reflect.StructField

	// If the struct carries ill-formed tags, the first such error.
	err error
}

// A resolver for dotted paths.
//
// Resolvers cache the field table of every struct type they encounter and
// may be shared between goroutines.
type Resolver struct {
	// The name of tag used for renamings (e.g. "form").
	tagName string

	// reflect.Type -> *record
	records *sync.Map
}

// Create a resolver.
//
// Field names are matched against the first value of the `tagName` struct
// tag if there is one, against the Go field name otherwise.
func NewResolver(tagName string) *Resolver {
	return &Resolver{
		tagName: tagName,
		records: new(sync.Map),
	}
}

// Fetch or build the record for a struct type.
func (r *Resolver) record(typ reflect.Type) *record {
	if cached, ok := r.records.Load(typ); ok {
		return cached.(*record) //nolint:forcetypeassert
	}
	built := buildRecord(typ, r.tagName)
	actual, _ := r.records.LoadOrStore(typ, built)
	return actual.(*record) //nolint:forcetypeassert
}

func buildRecord(typ reflect.Type, tagName string) *record {
	result := &record{
		fields: make(map[string]reflect.StructField),
		err:    nil,
	}
	// Depth of the field currently registered under each name, to let
	// shallower fields shadow promoted ones.
	depths := make(map[string]int)
	ambiguous := make(map[string]bool)
	for _, field := range reflect.VisibleFields(typ) {
		if !field.IsExported() {
			// Go will not let us write to private fields.
			continue
		}
		tags, err := tagsPkg.Parse(field.Tag)
		if err != nil {
			if result.err == nil {
				result.err = fmt.Errorf("invalid tags on field %s.%s:\n\t * %w", typ.Name(), field.Name, err)
			}
			continue
		}
		if tags.IsIgnored(tagName) {
			continue
		}
		name := field.Name
		if renamed := tags.PublicFieldName(tagName); renamed != nil {
			name = *renamed
		}
		depth := len(field.Index)
		if previous, ok := depths[name]; ok {
			switch {
			case previous < depth:
				continue
			case previous == depth:
				ambiguous[name] = true
				continue
			}
		}
		depths[name] = depth
		delete(ambiguous, name)
		result.fields[name] = field
	}
	for name := range ambiguous {
		delete(result.fields, name)
	}
	return result
}

// Build the records for `typ` and every struct reachable from its fields.
//
// Returns an error if any of these structs carries ill-formed tags. Calling
// `Prepare` is optional, `Resolve` builds records lazily, but lets callers
// detect errors before receiving any data.
func (r *Resolver) Prepare(typ reflect.Type) error {
	return r.prepare(typ, make(map[reflect.Type]bool))
}

func (r *Resolver) prepare(typ reflect.Type, visited map[reflect.Type]bool) error {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct || visited[typ] {
		return nil
	}
	visited[typ] = true
	rec := r.record(typ)
	if rec.err != nil {
		return rec.err
	}
	for _, field := range rec.fields {
		if err := r.prepare(field.Type, visited); err != nil {
			return fmt.Errorf("at %s.%s:\n\t * %w", typ.Name(), field.Name, err)
		}
	}
	return nil
}

// A resolved field.
//
// Only obtain a `FieldHandle` through `Resolver.Resolve`.
type FieldHandle struct {
	// The path used to reach this field.
	Path FieldPath

	// The Go name of the field.
	Name string

	// The declared type of the field.
	Type reflect.Type

	// The field itself, within the container reached while resolving.
	slot    reflect.Value
	witness initialized.IsInitialized
}

func (h FieldHandle) CanRead() bool {
	return h.witness.IsSet() && h.slot.CanInterface()
}

func (h FieldHandle) CanWrite() bool {
	return h.witness.IsSet() && h.slot.CanSet()
}

// Return the current value of the field.
func (h FieldHandle) Get() (any, bool) {
	if !h.CanRead() {
		return nil, false
	}
	return h.slot.Interface(), true
}

// Write a value into the field.
//
// `nil` stores the zero value of the field's type. Any other value must be
// assignable or convertible to the field's type.
func (h FieldHandle) Set(value any) error {
	h.witness.Assert()
	if !h.slot.CanSet() {
		return fmt.Errorf("field %s cannot be written", h.Path)
	}
	if value == nil {
		h.slot.SetZero()
		return nil
	}
	reflected := reflect.ValueOf(value)
	switch {
	case reflected.Type().AssignableTo(h.Type):
		h.slot.Set(reflected)
	case reflected.CanConvert(h.Type):
		h.slot.Set(reflected.Convert(h.Type))
	default:
		return fmt.Errorf("cannot store a %s into field %s of type %s", reflected.Type(), h.Path, h.Type)
	}
	return nil
}

// Resolve a path against `root`.
//
// `root` must be a pointer to a struct (or an addressable struct). Every
// segment but the last must name a struct field, a non-nil pointer to a
// struct or a non-nil interface holding a pointer to a struct.
//
// Returns `false` if any segment cannot be resolved. This is the expected
// outcome for unknown keys, not an error.
func (r *Resolver) Resolve(root reflect.Value, p FieldPath) (FieldHandle, bool) {
	if len(p) == 0 {
		return FieldHandle{}, false //nolint:exhaustruct
	}
	current, ok := container(root)
	if !ok {
		return FieldHandle{}, false //nolint:exhaustruct
	}
	last := len(p) - 1
	for i, segment := range p {
		rec := r.record(current.Type())
		field, ok := rec.fields[segment]
		if !ok {
			return FieldHandle{}, false //nolint:exhaustruct
		}
		// Fails if the field is promoted through a nil embedded pointer.
		value, err := current.FieldByIndexErr(field.Index)
		if err != nil {
			return FieldHandle{}, false //nolint:exhaustruct
		}
		if i == last {
			return FieldHandle{
				Path:    p,
				Name:    field.Name,
				Type:    field.Type,
				slot:    value,
				witness: initialized.Make(),
			}, true
		}
		current, ok = container(value)
		if !ok {
			return FieldHandle{}, false //nolint:exhaustruct
		}
	}
	panic("unreachable")
}

// Read the current value at `key`.
//
// `root` may be a struct or a pointer to a struct.
func (r *Resolver) Get(root any, key string) (any, bool) {
	p, ok := Parse(key)
	if !ok {
		return nil, false
	}
	reflected := reflect.ValueOf(root)
	if reflected.Kind() == reflect.Struct {
		// Resolution needs an addressable value, work on a copy.
		copied := reflect.New(reflected.Type())
		copied.Elem().Set(reflected)
		reflected = copied
	}
	handle, ok := r.Resolve(reflected, p)
	if !ok {
		return nil, false
	}
	return handle.Get()
}

// The addressable struct reached through `value`, if any.
func container(value reflect.Value) (reflect.Value, bool) {
	for value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface {
		if value.IsNil() {
			return reflect.Value{}, false
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct || !value.CanAddr() {
		return reflect.Value{}, false
	}
	return value, true
}
