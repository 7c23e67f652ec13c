package attendance

import "github.com/dexim234/apevaultteams/generic"

// Counts maps each status type to the days it covers inside a window.
type Counts map[StatusType]int

// Days returns the count for t, zero when absent.
func (c Counts) Days(t StatusType) int {
	return c[t]
}

// Total sums every type.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// CountByType counts, per status type, the days of userID's statuses that
// fall inside window.
//
// Each record is clipped to the window on its own and the results are added.
// Two records of the same type covering the same day count that day twice;
// overlapping bookings are not merged.
func CountByType(records []DayStatus, userID generic.MemberID, window generic.Period) Counts {
	counts := make(Counts, len(StatusTypes))
	for _, t := range StatusTypes {
		counts[t] = 0
	}
	for _, r := range records {
		if r.UserID != userID {
			continue
		}
		interval := r.Interval()
		if !interval.Overlaps(window) {
			continue
		}
		counts[r.Type] += generic.CountDaysInPeriod(interval.Start, interval.End, window.Start, window.End)
	}
	return counts
}

// DaysOfType is CountByType for a single status type.
func DaysOfType(records []DayStatus, userID generic.MemberID, t StatusType, window generic.Period) int {
	return CountByType(records, userID, window).Days(t)
}
