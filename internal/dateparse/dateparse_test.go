package dateparse

import (
	"fmt"
	"testing"
	"time"
)

func TestParse_FourDigitYearLayouts(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2024/03/15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"03/15/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"3/15/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"Mar 15, 2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"20240315", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if !ok {
			t.Errorf("Parse(%q) not ok", tt.in)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParse_TwoDigitYearPivot(t *testing.T) {
	orig := TwoDigitYearPivot
	TwoDigitYearPivot = 20
	defer func() { TwoDigitYearPivot = orig }()

	currentYear := time.Now().Year()

	// A two-digit year 5 years out stays within the pivot window.
	nearYY := (currentYear + 5) % 100
	got, ok := Parse(fmt.Sprintf("01/02/%02d", nearYY))
	if !ok {
		t.Fatal("Parse near-pivot date not ok")
	}
	if got.Year()%100 != nearYY || got.Year() < currentYear {
		t.Errorf("near-pivot year = %d, want a year >= %d ending in %02d", got.Year(), currentYear, nearYY)
	}

	// A two-digit year 50 years out should roll back a century rather than
	// resolve to a year far in the future.
	farYY := (currentYear + 50) % 100
	got, ok = Parse(fmt.Sprintf("01/02/%02d", farYY))
	if !ok {
		t.Fatal("Parse far-future date not ok")
	}
	if got.Year() >= currentYear+TwoDigitYearPivot {
		t.Errorf("far-future two-digit year %02d should have rolled back a century, got %d", farYY, got.Year())
	}
}

func TestParse_EmptyAndUnparseable(t *testing.T) {
	if _, ok := Parse(""); ok {
		t.Error("Parse(\"\") should not be ok")
	}
	if _, ok := Parse("   "); ok {
		t.Error("Parse whitespace-only should not be ok")
	}
	if _, ok := Parse("not a date"); ok {
		t.Error("Parse garbage should not be ok")
	}
}
