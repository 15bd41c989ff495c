package conversion_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/pasqal-io/formmap/assertions/testutils"
	"github.com/pasqal-io/formmap/formmap/conversion"
	"golang.org/x/text/language"
	"gotest.tools/v3/assert"
)

func TestOrderFor(t *testing.T) {
	cases := []struct {
		tag      string
		expected conversion.DateOrder
	}{
		{"en-US", conversion.MonthFirst},
		{"en", conversion.MonthFirst},
		{"fil-PH", conversion.MonthFirst},
		{"en-GB", conversion.DayFirst},
		{"fr", conversion.DayFirst},
		{"de-DE", conversion.DayFirst},
		{"ja-JP", conversion.YearFirst},
		{"zh", conversion.YearFirst},
		{"hu", conversion.YearFirst},
		{"sv-SE", conversion.YearFirst},
	}
	for _, c := range cases {
		got := conversion.OrderFor(language.MustParse(c.tag))
		assert.Equal(t, got, c.expected, "order for %s, got %s", c.tag, got)
	}
}

func TestParseByLocale(t *testing.T) {
	cases := []struct {
		tag    language.Tag
		source string
	}{
		{language.AmericanEnglish, "01/28/1988"},
		{language.AmericanEnglish, "1/28/1988 3:04 PM"},
		{language.BritishEnglish, "28/01/1988"},
		{language.German, "28.01.1988"},
		{language.French, "28/01/1988 10:30"},
		{language.Japanese, "1988/01/28"},
		{language.Korean, "1988. 1. 28."},
		{language.Hungarian, "1988.01.28"},
	}
	for _, c := range cases {
		parser := conversion.NewDateParser(c.tag, time.UTC)
		result, err := parser.Parse(c.source)
		assert.NilError(t, err, "%s should parse %q", c.tag, c.source)
		testutils.AssertDate(t, result, 1988, time.January, 28, c.tag.String())
	}
}

func TestParseKeepsTime(t *testing.T) {
	parser := conversion.NewDateParser(language.AmericanEnglish, time.UTC)
	result, err := parser.Parse("01/28/1988 15:04:05")
	assert.NilError(t, err)
	assert.Assert(t, result.Equal(time.Date(1988, time.January, 28, 15, 4, 5, 0, time.UTC)), "got %s", result)
}

func TestParseUsesLocation(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skip("time zone database unavailable")
	}
	parser := conversion.NewDateParser(language.French, paris)
	result, err := parser.Parse("28/01/1988")
	assert.NilError(t, err)
	assert.Equal(t, result.Location(), paris)
}

func TestParseFallsBackToISO(t *testing.T) {
	for _, tag := range []language.Tag{language.AmericanEnglish, language.German, language.Japanese} {
		parser := conversion.NewDateParser(tag, time.UTC)
		result, err := parser.Parse("1988-01-28T10:00:00Z")
		assert.NilError(t, err, "%s should accept RFC 3339", tag)
		assert.Assert(t, result.Equal(time.Date(1988, time.January, 28, 10, 0, 0, 0, time.UTC)), "got %s", result)
	}
}

func TestAmbiguousDateFollowsLocale(t *testing.T) {
	american := conversion.NewDateParser(language.AmericanEnglish, time.UTC)
	result, err := american.Parse("02/03/2001")
	assert.NilError(t, err)
	testutils.AssertDate(t, result, 2001, time.February, 3, "month first")

	british := conversion.NewDateParser(language.BritishEnglish, time.UTC)
	result, err = british.Parse("02/03/2001")
	assert.NilError(t, err)
	testutils.AssertDate(t, result, 2001, time.March, 2, "day first")

	_, err = british.Parse("13/13/2001")
	assert.ErrorContains(t, err, "expected a day-first date")
}

func TestForLocale(t *testing.T) {
	registry := conversion.ForLocale(language.German, time.UTC)
	rule, ok := registry.Lookup(reflect.TypeOf(time.Time{}))
	assert.Assert(t, ok)
	result, err := rule.Convert("28.01.1988")
	assert.NilError(t, err)
	testutils.AssertDate(t, result.(time.Time), 1988, time.January, 28, "German registry") //nolint:forcetypeassert

	// The other rules are unaffected by the locale.
	rule, ok = registry.Lookup(reflect.TypeOf(int16(0)))
	assert.Assert(t, ok)
	converted, err := rule.Convert("28")
	assert.NilError(t, err)
	assert.Equal(t, converted, any(int16(28)))
}

func TestNilLocationIsLocal(t *testing.T) {
	parser := conversion.NewDateParser(language.AmericanEnglish, nil)
	result, err := parser.Parse("01/28/1988")
	assert.NilError(t, err)
	assert.Equal(t, result.Location(), time.Local)
	assert.Equal(t, parser.Order(), conversion.MonthFirst)
}
