// Mapping of form data (flat (key, value) pairs of strings) onto Go structs.
//
// Keys name fields, using dots for nested structs:
//
//	type Address struct {
//	    City string
//	}
//	type Person struct {
//	    Name    string
//	    Age     int16
//	    Address *Address
//	}
//
// accepts keys `Name`, `Age` and `Address.City`.
//
// # Behavior
//
//   - pairs with an empty key or an empty value are ignored;
//   - keys that do not name a field are ignored;
//   - fields whose type has no conversion rule are ignored (see package
//     `conversion` for the supported types);
//   - nested structs reached through pointers or interfaces are never
//     allocated, if `Address` is nil, `Address.City` is ignored;
//   - if a value cannot be converted (e.g. "abc" for an `int16`), mapping
//     stops with a `ConversionError`. Fields mapped before the failure
//     remain mapped. Callers that need all-or-nothing semantics should map
//     onto a copy and swap on success;
//   - if two keys reach the same field (e.g. through an embedded struct),
//     the last one applied wins. With a `kvlist.KVList`, the order is
//     unspecified.
//
// Same behavior as the standard library:
//   - lower-case field names mean that we NEVER accept external data;
//   - a tag `form:"XXXX"` renames a field;
//   - a field renamed to `form:"-"` will not accept external data.
//
// # Concurrency
//
// A `Mapper` may be shared between goroutines. A destination value must
// not be mapped from several goroutines at once.
package formmap

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/pasqal-io/formmap/formmap/conversion"
	"github.com/pasqal-io/formmap/formmap/kvlist"
	"github.com/pasqal-io/formmap/formmap/path"
)

// -------- Public API --------

// Options for building a mapper.
//
// See also FormOptions for reasonable default values.
type Options struct {
	// The name of tags used for renamings (e.g. "form").
	//
	// Required.
	MainTagName string

	// Human-readable information on the nature of data
	// you'll be mapping with this mapper.
	//
	// Used for logging and error messages.
	//
	// For instance, if you're mapping for an endpoint
	// "POST /api/v1/profile", string "POST /api/v1/profile" is an
	// acceptable value for RootPath.
	//
	// Optional.
	RootPath string

	// The conversion rules.
	//
	// Optional. If you leave this nil, defaults to `conversion.Default`.
	Registry *conversion.Registry

	// The logger receiving one debug entry per skipped key.
	//
	// Optional. If you leave this nil, defaults to `slog.Default()`.
	Logger *slog.Logger
}

// A preset fit for consuming HTML forms.
//
// The tag name is `form`.
//
// Params:
//   - root A human-readable root (e.g. the name of the endpoint). Used only
//     for error reporting. `""` is a perfectly acceptable root.
func FormOptions(root string) Options {
	return Options{
		MainTagName: "form",
		RootPath:    root,
		Registry:    conversion.Default,
		Logger:      slog.Default(),
	}
}

// A mapper onto values of type `To`.
type Mapper[To any] interface {
	// Apply all pairs of `source` onto `out`. Returns `out`.
	MapSource(out *To, source kvlist.Source) (*To, error)

	// Apply all pairs of `list` onto `out`. Returns `out`.
	MapKVList(out *To, list kvlist.KVList) (*To, error)

	// Apply the form data of `request` (body and query) onto `out`.
	// Returns `out`.
	MapRequest(out *To, request *http.Request) (*To, error)
}

// A mapper onto values whose type is only known at runtime.
type ReflectMapper interface {
	// Apply all pairs of `source` onto `out`, a pointer to a value of
	// the type provided to `MakeMapperFromReflect`.
	MapSourceTo(source kvlist.Source, out *reflect.Value) error
}

// Create a mapper onto `T`.
//
// `T` MUST be a struct.
func MakeMapper[T any](options Options) (Mapper[T], error) {
	inner, err := makeReflectMapper(options, reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return mapper[T]{
		inner: inner,
	}, nil
}

// Create a mapper onto values of type `typ`.
//
// `typ` MUST be a struct type.
func MakeMapperFromReflect(options Options, typ reflect.Type) (ReflectMapper, error) {
	inner, err := makeReflectMapper(options, typ)
	if err != nil {
		return nil, err
	}
	return inner, nil
}

// Map `source` onto `out` with the options of `FormOptions("")`.
//
// Prefer `MakeMapper` when mapping repeatedly onto the same type, to detect
// ill-formed tags once.
func Map[T any](out *T, source kvlist.Source) (*T, error) {
	m, err := MakeMapper[T](FormOptions(""))
	if err != nil {
		return out, err
	}
	return m.MapSource(out, source)
}

// An error that arises because a value could not be converted to the type
// of its destination field.
type ConversionError struct {
	// The key, as provided by the source.
	Key string

	// The human-readable root of the mapper, see `Options.RootPath`.
	RootPath string

	// The declared type of the destination field.
	Type reflect.Type

	// The value that failed to convert.
	Input string

	// The underlying error.
	Wrapped error
}

// Return the user-facing message.
func (e ConversionError) Error() string {
	where := e.Key
	if e.RootPath != "" {
		where = fmt.Sprint(e.RootPath, ".", e.Key)
	}
	return fmt.Sprintf("invalid value at %s, expected %s:\n\t * %s", where, typeName(e.Type), e.Wrapped)
}

// Unwrap the error.
func (e ConversionError) Unwrap() error {
	return e.Wrapped
}

var _ error = ConversionError{} //nolint:exhaustruct

// ----------------- Private

// Reasons for skipping a key, as logged.
const (
	reasonEmpty       = "empty key or value"
	reasonUnknown     = "no such field"
	reasonReadOnly    = "field cannot be written"
	reasonUnsupported = "unsupported type"
)

type reflectMapper struct {
	typ      reflect.Type
	rootPath string
	resolver *path.Resolver
	registry *conversion.Registry
	logger   *slog.Logger
}

func makeReflectMapper(options Options, typ reflect.Type) (*reflectMapper, error) {
	tagName := options.MainTagName
	if tagName == "" {
		return nil, errors.New("missing option MainTagName")
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot map form data onto %v, expected a struct", typ)
	}
	registry := options.Registry
	if registry == nil {
		registry = conversion.Default
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	resolver := path.NewResolver(tagName)
	if err := resolver.Prepare(typ); err != nil {
		return nil, fmt.Errorf("could not generate a mapper for %s:\n\t * %w", typeName(typ), err)
	}
	return &reflectMapper{
		typ:      typ,
		rootPath: options.RootPath,
		resolver: resolver,
		registry: registry,
		logger:   logger,
	}, nil
}

func (m *reflectMapper) MapSourceTo(source kvlist.Source, out *reflect.Value) error {
	if out == nil || !out.IsValid() {
		return errors.New("cannot map form data onto nil")
	}
	root := *out
	if root.Kind() != reflect.Pointer || root.IsNil() {
		return fmt.Errorf("cannot map form data onto %s, expected a non-nil pointer", root.Type())
	}
	if root.Type().Elem() != m.typ {
		return fmt.Errorf("this mapper expects a *%s, got %s", typeName(m.typ), root.Type())
	}
	for _, key := range source.Keys() {
		value, ok := source.Lookup(key)
		if !ok || key == "" || value == "" {
			m.skip(key, reasonEmpty)
			continue
		}
		if err := m.apply(root, key, value); err != nil {
			return err
		}
	}
	return nil
}

// Resolve, convert and write a single pair.
func (m *reflectMapper) apply(root reflect.Value, key string, value string) error {
	fieldPath, ok := path.Parse(key)
	if !ok {
		m.skip(key, reasonUnknown)
		return nil
	}
	handle, ok := m.resolver.Resolve(root, fieldPath)
	if !ok {
		m.skip(key, reasonUnknown)
		return nil
	}
	if !handle.CanWrite() {
		m.skip(key, reasonReadOnly)
		return nil
	}
	converted, ok, err := m.registry.Convert(handle.Type, value)
	if !ok {
		m.skip(key, reasonUnsupported, slog.String("type", handle.Type.String()))
		return nil
	}
	if err != nil {
		return ConversionError{
			Key:      key,
			RootPath: m.rootPath,
			Type:     handle.Type,
			Input:    value,
			Wrapped:  err,
		}
	}
	if err := handle.Set(converted); err != nil {
		// The registry returned a value of the wrong type.
		err = fmt.Errorf("at %s, internal error while writing converted value:\n\t * %w", key, err)
		m.logger.Error("Internal error during mapping", "path", m.rootPath, "error", err)
		return err
	}
	return nil
}

func (m *reflectMapper) skip(key string, reason string, attrs ...any) {
	args := append([]any{"path", m.rootPath, "key", key, "reason", reason}, attrs...)
	m.logger.Debug("Skipping form key", args...)
}

// A statically-typed mapper, built on top of the reflect mapper.
type mapper[T any] struct {
	inner *reflectMapper
}

func (me mapper[T]) MapSource(out *T, source kvlist.Source) (*T, error) {
	if out == nil {
		return nil, errors.New("cannot map form data onto nil")
	}
	reflected := reflect.ValueOf(out)
	err := me.inner.MapSourceTo(source, &reflected)
	return out, err
}

func (me mapper[T]) MapKVList(out *T, list kvlist.KVList) (*T, error) {
	return me.MapSource(out, list)
}

func (me mapper[T]) MapRequest(out *T, request *http.Request) (*T, error) {
	list, err := kvlist.FromRequest(request)
	if err != nil {
		return out, err //nolint:wrapcheck
	}
	return me.MapSource(out, list)
}

// Return a (mostly) human-readable type name for a Go type.
//
// This type name is used for user error messages.
func typeName(typ reflect.Type) string {
	if typ == nil {
		return "<nil>"
	}
	if typ.Name() == "" {
		return typ.String()
	}
	return typ.Name()
}
