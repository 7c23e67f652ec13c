package generic

import "time"

// =============================================================================
// PERIOD - Inclusive calendar window
// =============================================================================

// Period is an inclusive range of calendar days [Start, End].
// Every aggregation in the engine is scoped to one.
//
// Examples:
//   - Week of 2025-01-15: Mon 2025-01-13 - Sun 2025-01-19
//   - Last 90 days from 2025-04-01: 2025-01-01 - 2025-04-01
type Period struct {
	Start TimePoint
	End   TimePoint
}

// NewPeriod builds a period; an inverted range stays inverted and is empty.
func NewPeriod(start, end TimePoint) Period {
	return Period{Start: start, End: end}
}

// Contains returns true if the day is within [Start, End].
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// IsEmpty reports an inverted period.
func (p Period) IsEmpty() bool {
	return p.End.Before(p.Start)
}

// NumDays is the number of calendar days covered; 0 for an inverted period.
func (p Period) NumDays() int {
	if p.IsEmpty() {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

// Days returns every day in the period.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Overlaps is true when the two periods share at least one day.
func (p Period) Overlaps(other Period) bool {
	return p.Start.BeforeOrEqual(other.End) && p.End.AfterOrEqual(other.Start)
}

// Intersect returns the common days of both periods. The result is empty
// (End before Start) when they are disjoint.
func (p Period) Intersect(other Period) Period {
	return Period{
		Start: MaxTimePoint(p.Start, other.Start),
		End:   MinTimePoint(p.End, other.End),
	}
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// WINDOWS
// =============================================================================

// DefaultWeekStart is the first day of the reporting week.
const DefaultWeekStart = time.Monday

// WeekOf returns the seven-day week containing ref.
func WeekOf(ref TimePoint, weekStart time.Weekday) Period {
	offset := (int(ref.Weekday()) - int(weekStart) + 7) % 7
	start := ref.AddDays(-offset)
	return Period{Start: start, End: start.AddDays(6)}
}

// LastNDays returns [today - n, today] anchored at the moment of the call.
func LastNDays(n int) Period {
	return LastNDaysFrom(Today(), n)
}

// LastNDaysFrom returns [anchor - n, anchor].
func LastNDaysFrom(anchor TimePoint, n int) Period {
	if n < 0 {
		n = 0
	}
	return Period{Start: anchor.AddDays(-n), End: anchor}
}

// MonthOf returns the calendar month containing ref.
func MonthOf(ref TimePoint) Period {
	return Period{
		Start: StartOfMonth(ref.Year(), ref.Month()),
		End:   EndOfMonth(ref.Year(), ref.Month()),
	}
}

// CountDaysInPeriod returns how many days of [intervalStart, intervalEnd]
// fall inside [windowStart, windowEnd]. Disjoint or inverted ranges give 0.
// Swapping the interval and the window gives the same answer.
func CountDaysInPeriod(intervalStart, intervalEnd, windowStart, windowEnd TimePoint) int {
	return Period{Start: intervalStart, End: intervalEnd}.
		Intersect(Period{Start: windowStart, End: windowEnd}).
		NumDays()
}
