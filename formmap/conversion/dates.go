package conversion

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"golang.org/x/text/language"
)

// The order in which a locale writes numeric dates.
type DateOrder int

const (
	DayFirst DateOrder = iota
	MonthFirst
	YearFirst
)

func (o DateOrder) String() string {
	switch o {
	case MonthFirst:
		return "month-first"
	case YearFirst:
		return "year-first"
	default:
		return "day-first"
	}
}

// Regions writing dates as 01/28/1988.
var monthFirstRegions = map[string]bool{
	"US": true, "AS": true, "GU": true, "MP": true, "PR": true, "UM": true, "VI": true,
	"FM": true, "MH": true, "PW": true, "PH": true,
}

// Regions writing dates as 1988/01/28.
var yearFirstRegions = map[string]bool{
	"CN": true, "JP": true, "KR": true, "TW": true, "HU": true, "LT": true,
	"MN": true, "SE": true, "ZA": true, "IR": true,
}

var layoutsByOrder = map[DateOrder][]string{
	MonthFirst: {
		"01/02/2006",
		"1/2/2006",
		"01/02/2006 15:04:05",
		"1/2/2006 15:04:05",
		"1/2/2006 15:04",
		"1/2/2006 3:04:05 PM",
		"1/2/2006 3:04 PM",
		"01-02-2006",
		"1/2/06",
	},
	DayFirst: {
		"02/01/2006",
		"2/1/2006",
		"02/01/2006 15:04:05",
		"2/1/2006 15:04:05",
		"2/1/2006 15:04",
		"02.01.2006",
		"2.1.2006",
		"02.01.2006 15:04:05",
		"02-01-2006",
		"2/1/06",
	},
	YearFirst: {
		"2006/01/02",
		"2006/1/2",
		"2006/01/02 15:04:05",
		"2006/1/2 15:04",
		"2006.01.02",
		"2006. 1. 2.",
		"2006. 01. 02.",
		"2006-01-02 15:04",
	},
}

// Return the numeric date order of a locale.
//
// If `tag` has no explicit region, the most likely one is used, e.g. "fr"
// reads as "fr-FR" and "en" as "en-US".
func OrderFor(tag language.Tag) DateOrder {
	region, _ := tag.Region()
	code := region.String()
	switch {
	case monthFirstRegions[code]:
		return MonthFirst
	case yearFirstRegions[code]:
		return YearFirst
	default:
		return DayFirst
	}
}

// A locale-aware parser for dates.
type DateParser struct {
	order    DateOrder
	layouts  []string
	location *time.Location
}

// Create a parser for dates as written in `tag`.
//
// Dates without a time zone are interpreted in `location`, `time.Local`
// if `nil`.
func NewDateParser(tag language.Tag, location *time.Location) DateParser {
	if location == nil {
		location = time.Local
	}
	order := OrderFor(tag)
	return DateParser{
		order:    order,
		layouts:  layoutsByOrder[order],
		location: location,
	}
}

func (p DateParser) Order() DateOrder {
	return p.order
}

// Parse a date.
//
// Numeric layouts of the locale are tried first, then ISO 8601, RFC and
// other unambiguous layouts.
func (p DateParser) Parse(source string) (time.Time, error) {
	source = strings.TrimSpace(source)
	for _, layout := range p.layouts {
		if parsed, err := time.ParseInLocation(layout, source, p.location); err == nil {
			return parsed, nil
		}
	}
	parsed, err := cast.ToTimeInDefaultLocationE(source, p.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected a %s date, got %q:\n\t * %w", p.order, source, err)
	}
	return parsed, nil
}

func (p DateParser) toTime(input any) (any, error) {
	return p.Parse(Text(input))
}

// Unparsable dates become "no value".
func (p DateParser) toOptionalTime(input any) (any, error) {
	parsed, err := p.Parse(Text(input))
	if err != nil {
		return nil, nil //nolint:nilerr
	}
	return &parsed, nil
}
