package core

import (
	"fmt"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/valter-silva-au/iar/pkg/models"
)

var monthSpellings = []string{
	"Jan", "January", "Feb", "February", "Mar", "March", "Apr", "April", "May",
	"Jun", "June", "Jul", "July", "Aug", "August", "Sep", "Sept", "September",
	"Oct", "October", "Nov", "November", "Dec", "December",
}

// Feature: iar, Property 1: Parsed ranges are ordered
func TestProperty_ParsedRangesAreOrdered(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		month := rapid.SampledFrom(monthSpellings).Draw(t, "month")
		start := rapid.IntRange(0, 40).Draw(t, "start")
		text := fmt.Sprintf("Task %s %d", month, start)
		if rapid.Bool().Draw(t, "hasEnd") {
			text += fmt.Sprintf("-%d", rapid.IntRange(0, 40).Draw(t, "end"))
		}
		if rapid.Bool().Draw(t, "hasYear") {
			text += fmt.Sprintf(", %d", rapid.IntRange(1900, 2200).Draw(t, "year"))
		}
		text += " " + rapid.StringMatching(`[0-9/ \-a-z]{0,12}`).Draw(t, "suffix")

		for _, r := range ParseDateRanges(text, 2025, time.June) {
			if r.Start.After(r.End) {
				t.Fatalf("range %v - %v from %q is reversed", r.Start, r.End, text)
			}
		}
	})
}

// Feature: iar, Property 2: Arbitrary text never breaks parsing
func TestProperty_ParseDateRangesArbitraryText(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.String().Draw(t, "text")
		for _, r := range ParseDateRanges(text, 2025, time.November) {
			if r.Start.After(r.End) {
				t.Fatalf("range %v - %v from %q is reversed", r.Start, r.End, text)
			}
		}
	})
}

// Feature: iar, Property 3: Week keys parse back to their week
func TestProperty_WeekKeyRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		year := rapid.IntRange(1900, 2200).Draw(t, "year")
		month := rapid.IntRange(1, 12).Draw(t, "month")
		half := models.Half(rapid.IntRange(1, 2).Draw(t, "half"))
		p, err := models.NewPeriod(year, month, half)
		if err != nil {
			t.Fatal(err)
		}

		for _, w := range PlanWeeks(p) {
			// A default year far from the period proves the key carries its own.
			ranges := ParseDateRanges(w.Key(), 1000, time.January)
			if len(ranges) == 0 {
				t.Fatalf("key %q produced no range", w.Key())
			}
			if !ranges[0].Start.Equal(w.Start) || !ranges[0].End.Equal(w.End) {
				t.Fatalf("key %q parsed to %v - %v, want %v - %v",
					w.Key(), ranges[0].Start, ranges[0].End, w.Start, w.End)
			}
		}
	})
}
