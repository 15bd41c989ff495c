package formmap_test

import (
	"reflect"
	"testing"

	"github.com/pasqal-io/formmap/formmap"
	"github.com/pasqal-io/formmap/formmap/kvlist"
	"gotest.tools/v3/assert"
)

func mapReflect[Output any](t *testing.T, out *Output, source kvlist.Source) error {
	t.Helper()
	typeOutput := reflect.TypeFor[Output]()
	mapper, err := formmap.MakeMapperFromReflect(formmap.Options{
		MainTagName: "form",
		RootPath:    "",
		Registry:    nil,
		Logger:      nil,
	}, typeOutput)
	if err != nil {
		t.Error(err)
		return err //nolint:wrapcheck
	}
	reflectOut := reflect.ValueOf(out)
	return mapper.MapSourceTo(source, &reflectOut) //nolint:wrapcheck
}

func TestReflectMapper(t *testing.T) {
	type Test struct {
		String string
		Int    int16
	}
	out := Test{}
	err := mapReflect(t, &out, kvlist.Of("String", "abc", "Int", "123"))
	assert.NilError(t, err)
	assert.DeepEqual(t, out, Test{String: "abc", Int: 123})
}

func TestReflectNestedMapper(t *testing.T) {
	type Inner struct {
		Value int64 `form:"value"`
	}
	type Outer struct {
		Inner Inner `form:"inner"`
		Ptr   *Inner
	}
	out := Outer{Ptr: &Inner{}} //nolint:exhaustruct
	err := mapReflect(t, &out, kvlist.Of("inner.value", "1", "Ptr.value", "2"))
	assert.NilError(t, err)
	assert.Equal(t, out.Inner.Value, int64(1))
	assert.Equal(t, out.Ptr.Value, int64(2))
}

func TestReflectAnonymousStruct(t *testing.T) {
	out := struct {
		Name    string
		Address struct {
			City string
		}
	}{}
	err := mapReflect(t, &out, kvlist.Of("Name", "Joshua", "Address.City", "Boston"))
	assert.NilError(t, err)
	assert.Equal(t, out.Name, "Joshua")
	assert.Equal(t, out.Address.City, "Boston")
}

func TestReflectMapperRejectsOtherTypes(t *testing.T) {
	type First struct{ Name string }
	type Second struct{ Name string }
	mapper, err := formmap.MakeMapperFromReflect(formmap.FormOptions(""), reflect.TypeFor[First]())
	assert.NilError(t, err)

	wrong := reflect.ValueOf(&Second{}) //nolint:exhaustruct
	err = mapper.MapSourceTo(kvlist.Of("Name", "x"), &wrong)
	assert.ErrorContains(t, err, "this mapper expects a *First")

	byValue := reflect.ValueOf(First{}) //nolint:exhaustruct
	err = mapper.MapSourceTo(kvlist.Of("Name", "x"), &byValue)
	assert.ErrorContains(t, err, "expected a non-nil pointer")

	err = mapper.MapSourceTo(kvlist.Of("Name", "x"), nil)
	assert.ErrorContains(t, err, "cannot map form data onto nil")
}
