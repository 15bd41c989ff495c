package testutils

import (
	"fmt"
	"reflect"
	"regexp"
	"testing"
	"time"
)

// Fail if two values are different.
//
// Does not stop the test.
func AssertEqual[T comparable](t *testing.T, actual, expected T, explanation string) {
	t.Helper()
	if expected != actual {
		t.Errorf("got: %+v; want: %+v (%s)", actual, expected, explanation)
		if reflect.ValueOf(expected).Kind() == reflect.Pointer {
			t.Error("Warning: you're comparing two pointers -- pointers are only equal if they point to the same physical object")
		}
	}
}

func AssertEqualArrays[T comparable](t *testing.T, actual, expected []T, explanation string) {
	t.Helper()
	AssertEqual(t, len(actual), len(expected), fmt.Sprintf("%s - invalid length", explanation))
	for i := 0; i < len(actual) && i < len(expected); i++ {
		AssertEqual(t, actual[i], expected[i], fmt.Sprintf("%s - invalid item %d", explanation, i))
	}
}

func AssertRegexp(t *testing.T, actual string, pattern *regexp.Regexp, explanation string) {
	t.Helper()
	if pattern.FindStringIndex(actual) != nil {
		return
	}
	t.Errorf("got: %+v; expected: %+v (%s)", actual, pattern, explanation)
}

// Fail unless `actual` falls on the given calendar day.
//
// Does not stop the test.
func AssertDate(t *testing.T, actual time.Time, year int, month time.Month, day int, explanation string) {
	t.Helper()
	gotYear, gotMonth, gotDay := actual.Date()
	if gotYear != year || gotMonth != month || gotDay != day {
		t.Errorf("got: %04d-%02d-%02d; want: %04d-%02d-%02d (%s)", gotYear, gotMonth, gotDay, year, month, day, explanation)
	}
}
