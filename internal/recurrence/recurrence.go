// Package recurrence expands recurring schedule anchors into concrete
// occurrence dates. All functions are pure date math.
package recurrence

import (
	"time"

	"github.com/paycheckplan/backend/internal/types"
)

// Frequency is the interval at which a schedule repeats.
type Frequency string

const (
	Once      Frequency = "once"
	Weekly    Frequency = "weekly"
	Biweekly  Frequency = "biweekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Annual    Frequency = "annual"
)

// MaxOccurrences bounds an expansion so that pathological windows cannot
// produce unbounded sequences.
const MaxOccurrences = 500

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case Once, Weekly, Biweekly, Monthly, Quarterly, Annual:
		return true
	}

	return false
}

// months returns the month step for month-based frequencies and 0 for all
// others.
func (f Frequency) months() int {
	switch f {
	case Monthly:
		return 1
	case Quarterly:
		return 3
	case Annual:
		return 12
	}

	return 0
}

// days returns the day step for day-based frequencies and 0 for all others.
func (f Frequency) days() int {
	switch f {
	case Weekly:
		return 7
	case Biweekly:
		return 14
	}

	return 0
}

// Next computes the occurrence following the anchor date. The second return
// value is false when the frequency does not repeat.
func Next(anchor types.Date, frequency Frequency) (types.Date, bool) {
	return nth(anchor, frequency, 1)
}

// Expand returns all occurrences of the anchor strictly before windowEnd,
// in ascending order, starting with the anchor itself. The result is capped
// at MaxOccurrences entries.
func Expand(anchor types.Date, frequency Frequency, windowEnd types.Date) []types.Date {
	occurrences := []types.Date{}
	if !anchor.Before(windowEnd) {
		return occurrences
	}

	occurrences = append(occurrences, anchor)
	if frequency == Once {
		return occurrences
	}

	for n := 1; len(occurrences) < MaxOccurrences; n++ {
		occurrence, ok := nth(anchor, frequency, n)
		if !ok || !occurrence.Before(windowEnd) {
			break
		}

		occurrences = append(occurrences, occurrence)
	}

	return occurrences
}

// nth computes the n-th occurrence after the anchor. Month-based
// frequencies step from the anchor's day-of-month every time so that a
// clamped occurrence does not shift all following ones, e.g. monthly from
// Jan 31 yields Feb 29 and then Mar 31 again.
func nth(anchor types.Date, frequency Frequency, n int) (types.Date, bool) {
	if !frequency.Valid() || frequency == Once {
		return types.Date{}, false
	}

	if days := frequency.days(); days > 0 {
		return anchor.AddDate(0, 0, n*days), true
	}

	return addMonthsClamped(anchor, n*frequency.months()), true
}

// addMonthsClamped adds months to a date, clamping the day to the last
// valid day of the resulting month.
func addMonthsClamped(d types.Date, months int) types.Date {
	first := types.NewDate(d.Year(), d.Month(), 1)
	target := types.MonthOf(time.Time(first.AddDate(0, months, 0)))

	day := d.Day()
	if last := target.Last().Day(); day > last {
		day = last
	}

	return types.NewDate(target.First().Year(), target.First().Month(), day)
}
