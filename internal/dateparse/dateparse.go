// Package dateparse provides the tolerant date parser shared by the
// Validator's field-type checks and the Expression Engine's date helpers.
// It never errors: a value that cannot be parsed is reported as "not a
// date" (errors='coerce' semantics, spec.md §8 "Boundary behaviors").
package dateparse

import (
	"strings"
	"time"
)

// TwoDigitYearPivot controls how ambiguous 2-digit years are resolved:
// years that would land more than this many years in the future are
// assumed to belong to the previous century.
var TwoDigitYearPivot = 20

var fourDigitYearLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"01.02.2006",
	"1.2.2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"20060102",
	time.RFC3339,
}

var twoDigitYearLayouts = []string{
	"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
}

// Parse attempts to interpret s as a date using the layouts above, trying
// unambiguous 4-digit-year forms first. ok is false if no layout matched.
func Parse(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range fourDigitYearLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			return v, true
		}
	}

	currentYear := time.Now().Year()
	pivotYear := currentYear + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			if v.Year() > pivotYear {
				v = v.AddDate(-100, 0, 0)
			}
			return v, true
		}
	}

	return time.Time{}, false
}
